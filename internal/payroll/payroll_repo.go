package payroll

import (
	"context"
	"errors"
	"time"

	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/periodguard"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=payroll_repo.go -destination=mock/payroll_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, payroll *Payroll) error
	FindByID(ctx context.Context, id string) (*Payroll, error)
	FindAllByAgent(ctx context.Context, agentID string) ([]Payroll, error)
	Update(ctx context.Context, payroll *Payroll) error
	Delete(ctx context.Context, id uuid.UUID) error
	// FindIntersecting returns the agent's payrolls whose period intersects
	// [rangeStart, rangeEnd], most recent first.
	FindIntersecting(ctx context.Context, agentID uuid.UUID, rangeStart, rangeEnd time.Time) ([]Payroll, error)
	// ListPaidWithAdvances returns paid payrolls intersecting the window
	// that recovered at least one advance.
	ListPaidWithAdvances(ctx context.Context, rangeStart, rangeEnd time.Time) ([]Payroll, error)

	periodguard.PayrollFinder
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, payroll *Payroll) error {
	return r.db.WithContext(ctx).Create(payroll).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Payroll, error) {
	var payroll Payroll
	err := r.db.WithContext(ctx).First(&payroll, "id = ?", id).Error
	return &payroll, err
}

func (r *repository) FindAllByAgent(ctx context.Context, agentID string) ([]Payroll, error) {
	var payrolls []Payroll
	db := r.db.WithContext(ctx)
	if agentID != "" {
		db = db.Where("agent_id = ?", agentID)
	}
	err := db.Order("period_start DESC").Find(&payrolls).Error
	return payrolls, err
}

func (r *repository) Update(ctx context.Context, payroll *Payroll) error {
	return r.db.WithContext(ctx).Save(payroll).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Payroll{}, "id = ?", id).Error
}

// Two periods overlap when start <= otherEnd AND end >= otherStart.
func (r *repository) FindOverlappingPeriod(ctx context.Context, agentID uuid.UUID, periodStart, periodEnd time.Time, excludeID *uuid.UUID) (*periodguard.PayrollRef, error) {
	var payroll Payroll
	db := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Where("period_start <= ?", periodEnd).
		Where("period_end >= ?", periodStart)
	if excludeID != nil {
		db = db.Where("id <> ?", *excludeID)
	}

	err := db.Order("period_start ASC").First(&payroll).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &periodguard.PayrollRef{
		ID:          payroll.ID,
		Reference:   payroll.Reference,
		PeriodStart: payroll.PeriodStart,
		PeriodEnd:   payroll.PeriodEnd,
	}, nil
}

func (r *repository) HasPaidPayrollInRange(ctx context.Context, agentID uuid.UUID, rangeStart, rangeEnd time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Payroll{}).
		Where("agent_id = ?", agentID).
		Where("paid = ?", true).
		Where("period_start <= ?", rangeEnd).
		Where("period_end >= ?", rangeStart).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) FindIntersecting(ctx context.Context, agentID uuid.UUID, rangeStart, rangeEnd time.Time) ([]Payroll, error) {
	var payrolls []Payroll
	err := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Where("period_start <= ?", rangeEnd).
		Where("period_end >= ?", rangeStart).
		Order("period_start DESC").
		Find(&payrolls).Error
	return payrolls, err
}

func (r *repository) ListPaidWithAdvances(ctx context.Context, rangeStart, rangeEnd time.Time) ([]Payroll, error) {
	var payrolls []Payroll
	err := r.db.WithContext(ctx).
		Where("paid = ?", true).
		Where("period_start <= ?", rangeEnd).
		Where("period_end >= ?", rangeStart).
		Where("advances_applied IS NOT NULL").
		Where("advances_applied::text <> '[]'").
		Order("period_start ASC").
		Find(&payrolls).Error
	return payrolls, err
}
