package advance

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	advanceerrors "github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/advance/errors"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/events"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/messaging/kafka"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/periodguard"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/shared/apperror"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/shared/contextutil"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/shared/counter"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=advance_service.go -destination=mock/advance_service_mock.go -package=mock
type Service interface {
	Request(ctx context.Context, req RequestAdvanceRequest) (AdvanceResponse, error)
	GetAll(ctx context.Context, agentID string) ([]AdvanceResponse, error)
	GetByID(ctx context.Context, id string) (AdvanceResponse, error)
	Submit(ctx context.Context, id string) (AdvanceResponse, error)
	Approve(ctx context.Context, id string) (AdvanceResponse, error)
	Reject(ctx context.Context, id string, reason string) (AdvanceResponse, error)
	Cancel(ctx context.Context, id string, reason string) (AdvanceResponse, error)
	Disburse(ctx context.Context, id string) (AdvanceResponse, error)
	AddManualRepayment(ctx context.Context, id string, req ManualRepaymentRequest) (AdvanceResponse, error)

	// Ledger operations used by the payroll generator.
	ListRecoverable(ctx context.Context, agentID uuid.UUID) ([]Advance, error)
	CanRecover(ctx context.Context, advanceID uuid.UUID, payrollNetAmount int64) (int64, error)
	AddRepayment(ctx context.Context, advanceID uuid.UUID, amount int64, payrollID uuid.UUID, method string) error
	RemoveRepayment(ctx context.Context, advanceID, payrollID uuid.UUID) error
}

type service struct {
	repo    Repository
	guard   *periodguard.Guard
	counter counter.Repository
	outbox  kafka.OutboxRepository
	logger  *zap.Logger
}

func NewService(
	repo Repository,
	guard *periodguard.Guard,
	counterRepo counter.Repository,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("advance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("advance.service")
	}
	return &service{
		repo:    repo,
		guard:   guard,
		counter: counterRepo,
		outbox:  outboxRepo,
		logger:  l,
	}
}

func (s *service) Request(ctx context.Context, req RequestAdvanceRequest) (AdvanceResponse, error) {
	agentID, err := uuid.Parse(req.AgentID)
	if err != nil {
		return AdvanceResponse{}, advanceerrors.ErrInvalidAgentID
	}
	if req.Amount <= 0 {
		return AdvanceResponse{}, advanceerrors.ErrInvalidAmount
	}
	if req.MonthlyRecovery < 0 || req.MaxRecoveryAmount < 0 ||
		req.RecoveryPercentage < 0 || req.RecoveryPercentage > 100 {
		return AdvanceResponse{}, advanceerrors.ErrInvalidRecoveryPolicy
	}

	requestDate := time.Now()
	if req.RequestDate != "" {
		parsed, err := time.Parse("2006-01-02", req.RequestDate)
		if err != nil {
			return AdvanceResponse{}, apperror.InvalidField("Request Date")
		}
		requestDate = parsed
	}

	// No advance against a month whose payroll is already settled.
	if err := s.guard.AssertMonthNotSettled(ctx, agentID, requestDate); err != nil {
		return AdvanceResponse{}, err
	}

	status := StatusRequested
	if req.Draft {
		status = StatusDraft
	}

	reference, err := counter.NextReference(ctx, s.counter, "AVC", counter.TypeAdvance, requestDate)
	if err != nil {
		s.logger.Error("generate advance reference failed", zap.Error(err))
		return AdvanceResponse{}, apperror.WithDetail(apperror.ErrPersistence, err)
	}

	a := &Advance{
		ID:                 uuid.New(),
		Reference:          reference,
		AgentID:            agentID,
		Amount:             req.Amount,
		Remaining:          req.Amount,
		TotalRepaid:        0,
		MonthlyRecovery:    req.MonthlyRecovery,
		RecoveryPercentage: req.RecoveryPercentage,
		MaxRecoveryAmount:  req.MaxRecoveryAmount,
		Status:             status,
		Reason:             req.Reason,
		RequestedAt:        requestDate,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		if isUniqueViolation(err) {
			a.Reference = counter.FallbackReference("AVC", time.Now())
			if retryErr := s.repo.Create(ctx, a); retryErr == nil {
				s.logger.Info("advance created with fallback reference",
					zap.String("advance_id", a.ID.String()),
					zap.String("reference", a.Reference),
				)
				return mapToResponse(*a), nil
			}
		}
		s.logger.Error("create advance persist failed", zap.Error(err))
		return AdvanceResponse{}, apperror.WithDetail(apperror.ErrPersistence, err)
	}

	s.logger.Info("advance requested",
		zap.String("advance_id", a.ID.String()),
		zap.String("agent_id", req.AgentID),
		zap.Int64("amount", req.Amount),
	)
	return mapToResponse(*a), nil
}

func (s *service) GetAll(ctx context.Context, agentID string) ([]AdvanceResponse, error) {
	advances, err := s.repo.FindAllByAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(advances), nil
}

func (s *service) GetByID(ctx context.Context, id string) (AdvanceResponse, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return AdvanceResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*a), nil
}

func (s *service) Submit(ctx context.Context, id string) (AdvanceResponse, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return AdvanceResponse{}, mapRepositoryError(err)
	}

	if a.Status != StatusDraft {
		return AdvanceResponse{}, advanceerrors.ErrNotDraft
	}

	a.Status = StatusRequested
	if err := s.repo.Update(ctx, a); err != nil {
		return AdvanceResponse{}, err
	}

	return mapToResponse(*a), nil
}

func (s *service) Approve(ctx context.Context, id string) (AdvanceResponse, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return AdvanceResponse{}, mapRepositoryError(err)
	}

	if a.Status != StatusRequested {
		return AdvanceResponse{}, advanceerrors.ErrNotRequested
	}

	now := time.Now()
	a.Status = StatusApproved
	a.ApprovedAt = &now
	if actor := contextutil.GetActorID(ctx); actor != "" {
		if actorID, err := uuid.Parse(actor); err == nil {
			a.ApprovedBy = &actorID
		}
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return AdvanceResponse{}, err
	}

	s.queueEvent(ctx, a, "advance_approved", events.AdvanceApprovedEvent{
		EventType:  "advance_approved",
		RequestID:  contextutil.GetRequestID(ctx),
		AdvanceID:  a.ID.String(),
		Reference:  a.Reference,
		AgentID:    a.AgentID.String(),
		Amount:     a.Amount,
		OccurredAt: now.UTC(),
	})

	s.logger.Info("advance approved", zap.String("advance_id", id))
	return mapToResponse(*a), nil
}

func (s *service) Reject(ctx context.Context, id string, reason string) (AdvanceResponse, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return AdvanceResponse{}, mapRepositoryError(err)
	}

	if a.Status != StatusRequested {
		return AdvanceResponse{}, advanceerrors.ErrNotRequested
	}

	now := time.Now()
	a.Status = StatusRejected
	a.RejectedAt = &now
	if reason != "" {
		a.CancelReason = reason
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return AdvanceResponse{}, err
	}

	s.logger.Info("advance rejected", zap.String("advance_id", id))
	return mapToResponse(*a), nil
}

func (s *service) Cancel(ctx context.Context, id string, reason string) (AdvanceResponse, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return AdvanceResponse{}, mapRepositoryError(err)
	}

	if a.IsTerminal() {
		return AdvanceResponse{}, advanceerrors.ErrAlreadyTerminal
	}

	now := time.Now()
	a.Status = StatusCancelled
	a.CancelledAt = &now
	a.CancelReason = reason

	if err := s.repo.Update(ctx, a); err != nil {
		return AdvanceResponse{}, err
	}

	s.logger.Info("advance cancelled", zap.String("advance_id", id), zap.String("reason", reason))
	return mapToResponse(*a), nil
}

func (s *service) Disburse(ctx context.Context, id string) (AdvanceResponse, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return AdvanceResponse{}, mapRepositoryError(err)
	}

	if a.Status != StatusApproved {
		return AdvanceResponse{}, advanceerrors.ErrNotApproved
	}
	if a.DisbursedAt != nil {
		return AdvanceResponse{}, advanceerrors.ErrAlreadyDisbursed
	}

	// Disbursement is a one-way flag, not a status: the advance stays
	// approved so payroll recovery keeps consuming it.
	now := time.Now()
	a.DisbursedAt = &now

	if err := s.repo.Update(ctx, a); err != nil {
		return AdvanceResponse{}, err
	}

	s.logger.Info("advance disbursed", zap.String("advance_id", id))
	return mapToResponse(*a), nil
}

func (s *service) AddManualRepayment(ctx context.Context, id string, req ManualRepaymentRequest) (AdvanceResponse, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return AdvanceResponse{}, mapRepositoryError(err)
	}

	if a.Status != StatusApproved {
		return AdvanceResponse{}, advanceerrors.ErrNotApproved
	}

	repaymentDate := time.Now()
	if req.RepaymentDate != "" {
		parsed, err := time.Parse("2006-01-02", req.RepaymentDate)
		if err != nil {
			return AdvanceResponse{}, apperror.InvalidField("Repayment Date")
		}
		repaymentDate = parsed
	}

	if err := s.applyRepayment(ctx, a, req.Amount, nil, req.PaymentMethod, repaymentDate); err != nil {
		return AdvanceResponse{}, err
	}

	return mapToResponse(*a), nil
}

func (s *service) ListRecoverable(ctx context.Context, agentID uuid.UUID) ([]Advance, error) {
	return s.repo.FindRecoverable(ctx, agentID)
}

// CanRecover re-reads the advance and applies the recovery policy against the
// payroll's running net amount. Aggregation snapshots go stale under
// concurrency; the fresh read is the eligibility source of truth.
func (s *service) CanRecover(ctx context.Context, advanceID uuid.UUID, payrollNetAmount int64) (int64, error) {
	a, err := s.repo.FindByID(ctx, advanceID.String())
	if err != nil {
		return 0, mapRepositoryError(err)
	}

	amount, reason := a.RecoverableAmount(payrollNetAmount)
	if reason != "" {
		return 0, apperror.WithDetail(advanceerrors.ErrNotRecoverable, errors.New(reason))
	}
	return amount, nil
}

func (s *service) AddRepayment(ctx context.Context, advanceID uuid.UUID, amount int64, payrollID uuid.UUID, method string) error {
	a, err := s.repo.FindByID(ctx, advanceID.String())
	if err != nil {
		return mapRepositoryError(err)
	}

	return s.applyRepayment(ctx, a, amount, &payrollID, method, time.Now())
}

func (s *service) applyRepayment(ctx context.Context, a *Advance, amount int64, payrollID *uuid.UUID, method string, repaymentDate time.Time) error {
	if amount <= 0 {
		return advanceerrors.ErrInvalidRepaymentAmount
	}
	// Re-validated against the stored balance immediately before the write.
	if amount > a.Remaining {
		return advanceerrors.ErrRepaymentExceedsRemaining
	}

	if method == "" {
		method = MethodPayroll
	}

	repayment := &Repayment{
		ID:            uuid.New(),
		AdvanceID:     a.ID,
		Amount:        amount,
		RepaymentDate: repaymentDate,
		PayrollID:     payrollID,
		PaymentMethod: method,
	}
	if err := s.repo.CreateRepayment(ctx, repayment); err != nil {
		s.logger.Error("create repayment persist failed",
			zap.String("advance_id", a.ID.String()),
			zap.Int64("amount", amount),
			zap.Error(err),
		)
		return apperror.WithDetail(apperror.ErrPersistence, err)
	}

	return s.recomputeAndSave(ctx, a)
}

// RemoveRepayment rolls back the repayments a payroll recorded on an advance
// and reopens it when it had auto-closed. It is idempotent: removing a
// repayment that is already gone succeeds, so a crashed compensation can be
// retried safely.
func (s *service) RemoveRepayment(ctx context.Context, advanceID, payrollID uuid.UUID) error {
	a, err := s.repo.FindByID(ctx, advanceID.String())
	if err != nil {
		return mapRepositoryError(err)
	}

	removed, err := s.repo.DeleteRepaymentsByPayroll(ctx, advanceID, payrollID)
	if err != nil {
		return apperror.WithDetail(apperror.ErrPersistence, err)
	}
	if removed == 0 {
		return nil
	}

	return s.recomputeAndSave(ctx, a)
}

// recomputeAndSave rebuilds the ledger totals from the full repayment list
// and applies the closed/reopened transitions.
func (s *service) recomputeAndSave(ctx context.Context, a *Advance) error {
	repayments, err := s.repo.ListRepayments(ctx, a.ID)
	if err != nil {
		return apperror.WithDetail(apperror.ErrPersistence, err)
	}

	wasClosed := a.Status == StatusClosed
	a.RecomputeTotals(repayments)

	now := time.Now()
	switch {
	case a.Remaining == 0 && a.Status == StatusApproved:
		a.Status = StatusClosed
		a.ClosedAt = &now
	case wasClosed && a.Remaining > 0:
		a.Status = StatusApproved
		a.ClosedAt = nil
	}

	if err := a.CheckInvariants(); err != nil {
		s.logger.Error("advance ledger invariant violated", zap.Error(err))
		return apperror.WithDetail(apperror.ErrPersistence, err)
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return apperror.WithDetail(apperror.ErrPersistence, err)
	}

	if a.Status == StatusClosed && !wasClosed {
		s.queueEvent(ctx, a, "advance_closed", events.AdvanceClosedEvent{
			EventType:   "advance_closed",
			RequestID:   contextutil.GetRequestID(ctx),
			AdvanceID:   a.ID.String(),
			Reference:   a.Reference,
			AgentID:     a.AgentID.String(),
			TotalRepaid: a.TotalRepaid,
			OccurredAt:  now.UTC(),
		})
		s.logger.Info("advance fully repaid, closed",
			zap.String("advance_id", a.ID.String()),
			zap.Int64("total_repaid", a.TotalRepaid),
		)
	}

	return nil
}

func (s *service) queueEvent(ctx context.Context, a *Advance, eventType string, payload any) {
	if s.outbox == nil {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("marshal advance event failed", zap.Error(err))
		return
	}

	// Event loss is tolerable, ledger consistency is not: a failed outbox
	// write is logged and the operation still succeeds.
	if err := s.outbox.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "advance",
		AggregateID:   a.ID.String(),
		EventType:     eventType,
		Topic:         events.AdvanceLifecycleTopic,
		Payload:       body,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("queue advance event failed",
			zap.String("advance_id", a.ID.String()),
			zap.Error(err),
		)
	}
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return advanceerrors.ErrAdvanceNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
