package kafka_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func pendingEvent() kafka.OutboxEvent {
	return kafka.OutboxEvent{
		ID:            "8a3a2d8e-8e4d-4c2a-9a3e-1f2b3c4d5e6f",
		RequestID:     "req-1",
		AggregateType: "payroll",
		AggregateID:   "1a2b3c4d-0000-0000-0000-000000000000",
		EventType:     "payroll_generated",
		Topic:         "payroll.lifecycle",
		Payload:       []byte(`{"event_type":"payroll_generated"}`),
		Status:        kafka.OutboxStatusPending,
	}
}

func TestOutboxRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := kafka.NewOutboxRepository(db)
	event := pendingEvent()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
		WithArgs(
			event.ID, event.RequestID, event.AggregateType,
			event.AggregateID, event.EventType, event.Topic, event.Payload, event.Status,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Create(context.Background(), event)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_Create_RejectsInvalidEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := kafka.NewOutboxRepository(db)

	tests := []struct {
		name   string
		mutate func(e *kafka.OutboxEvent)
	}{
		{"missing id", func(e *kafka.OutboxEvent) { e.ID = "" }},
		{"missing topic", func(e *kafka.OutboxEvent) { e.Topic = "" }},
		{"empty payload", func(e *kafka.OutboxEvent) { e.Payload = nil }},
		{"unknown status", func(e *kafka.OutboxEvent) { e.Status = "queued" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := pendingEvent()
			tt.mutate(&event)

			err := repo.Create(context.Background(), event)

			assert.Error(t, err)
		})
	}

	// No SQL may reach the database for an invalid event.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_ListPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := kafka.NewOutboxRepository(db)
	createdAt := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "aggregate_type", "aggregate_id", "event_type",
		"topic", "payload", "status", "retry_count", "coalesce",
	}).AddRow(
		"evt-1", "advance", "adv-1", "advance_closed",
		"advance.lifecycle", []byte(`{}`), kafka.OutboxStatusPending, 0, createdAt,
	).AddRow(
		"evt-2", "payroll", "pay-1", "payroll_paid",
		"payroll.lifecycle", []byte(`{}`), kafka.OutboxStatusFailed, 2, createdAt,
	)

	mock.ExpectQuery(regexp.QuoteMeta("FROM outbox_events")).
		WithArgs(kafka.OutboxStatusPending, kafka.OutboxStatusFailed, 50).
		WillReturnRows(rows)

	events, err := repo.ListPending(context.Background(), 50)

	assert.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, "evt-1", events[0].ID)
	assert.Equal(t, "advance_closed", events[0].EventType)
	assert.Equal(t, 2, events[1].RetryCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_MarkSent(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := kafka.NewOutboxRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE outbox_events")).
		WithArgs("evt-1", kafka.OutboxStatusSent).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.MarkSent(context.Background(), "evt-1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_MarkFailed(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := kafka.NewOutboxRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE outbox_events")).
		WithArgs("evt-1", kafka.OutboxStatusFailed, "broker unreachable").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.MarkFailed(context.Background(), "evt-1", "broker unreachable")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
