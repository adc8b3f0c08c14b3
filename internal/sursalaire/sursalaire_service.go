package sursalaire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/advance"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/events"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/messaging/kafka"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/payroll"
	payrollerrors "github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/payroll/errors"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/shared/apperror"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/shared/contextutil"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/shared/counter"
	sursalaireerrors "github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/sursalaire/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// PayrollSource is the read side of the aggregation scan.
// Satisfied by payroll.Repository.
type PayrollSource interface {
	ListPaidWithAdvances(ctx context.Context, rangeStart, rangeEnd time.Time) ([]payroll.Payroll, error)
	FindIntersecting(ctx context.Context, agentID uuid.UUID, rangeStart, rangeEnd time.Time) ([]payroll.Payroll, error)
}

// PayrollCreditor writes the credited amount into the target payroll through
// the generator's own totals recompute. Satisfied by payroll.Service.
type PayrollCreditor interface {
	ApplySursalaire(ctx context.Context, payrollID uuid.UUID, amount int64) (*payroll.Payroll, error)
}

// AdvanceResolver resolves an advance reference to its owning agent.
// Satisfied by advance.Repository.
type AdvanceResolver interface {
	FindByID(ctx context.Context, id string) (*advance.Advance, error)
}

//go:generate mockgen -source=sursalaire_service.go -destination=mock/sursalaire_service_mock.go -package=mock
type Service interface {
	// CalculatePeriod reports the advance recoveries withheld by paid
	// payrolls intersecting the window, grouped per owning agent.
	CalculatePeriod(ctx context.Context, periodStart, periodEnd string) (PeriodReportResponse, error)
	Create(ctx context.Context, req CreateSursalaireRequest) (SursalaireResponse, error)
	GetAll(ctx context.Context, beneficiaryID string) ([]SursalaireResponse, error)
	GetByID(ctx context.Context, id string) (SursalaireResponse, error)
	Credit(ctx context.Context, id string, req CreditSursalaireRequest) (SursalaireResponse, error)
	Cancel(ctx context.Context, id string, reason string) (SursalaireResponse, error)
}

type service struct {
	repo     Repository
	payrolls PayrollSource
	creditor PayrollCreditor
	advances AdvanceResolver
	counter  counter.Repository
	outbox   kafka.OutboxRepository
	sf       singleflight.Group
	logger   *zap.Logger
}

func NewService(
	repo Repository,
	payrolls PayrollSource,
	creditor PayrollCreditor,
	advances AdvanceResolver,
	counterRepo counter.Repository,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("sursalaire.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("sursalaire.service")
	}
	return &service{
		repo:     repo,
		payrolls: payrolls,
		creditor: creditor,
		advances: advances,
		counter:  counterRepo,
		outbox:   outboxRepo,
		logger:   l,
	}
}

func (s *service) CalculatePeriod(ctx context.Context, periodStart, periodEnd string) (PeriodReportResponse, error) {
	start, end, err := parsePeriod(periodStart, periodEnd)
	if err != nil {
		return PeriodReportResponse{}, err
	}

	// Concurrent reporting calls for the same window collapse into one scan.
	key := fmt.Sprintf("%s|%s", periodStart, periodEnd)
	v, err, _ := s.sf.Do(key, func() (any, error) {
		deductions, err := s.scanDeductions(ctx, start, end)
		if err != nil {
			return nil, err
		}
		return buildReport(periodStart, periodEnd, deductions), nil
	})
	if err != nil {
		return PeriodReportResponse{}, err
	}

	return v.(PeriodReportResponse), nil
}

// scanDeductions walks paid payrolls intersecting the window and resolves
// each applied advance to its owning agent. Entries whose advance cannot be
// resolved are skipped with a warning, never silently folded into totals.
func (s *service) scanDeductions(ctx context.Context, start, end time.Time) ([]AdvanceDeduction, error) {
	payrolls, err := s.payrolls.ListPaidWithAdvances(ctx, start, end)
	if err != nil {
		return nil, apperror.WithDetail(apperror.ErrPersistence, err)
	}

	var deductions []AdvanceDeduction
	for _, p := range payrolls {
		for _, applied := range p.AdvancesApplied {
			adv, err := s.advances.FindByID(ctx, applied.AdvanceID.String())
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					s.logger.Warn("advance reference unresolvable, entry skipped",
						zap.String("payroll_id", p.ID.String()),
						zap.String("advance_id", applied.AdvanceID.String()),
						zap.Int64("amount", applied.Amount),
					)
					continue
				}
				return nil, apperror.WithDetail(apperror.ErrPersistence, err)
			}

			deductionDate := p.PeriodEnd
			if p.PaidAt != nil {
				deductionDate = *p.PaidAt
			}
			deductions = append(deductions, AdvanceDeduction{
				AdvanceID:       applied.AdvanceID,
				PayrollID:       p.ID,
				AgentID:         adv.AgentID,
				DeductionAmount: applied.Amount,
				DeductionDate:   deductionDate,
			})
		}
	}

	return deductions, nil
}

func buildReport(periodStart, periodEnd string, deductions []AdvanceDeduction) PeriodReportResponse {
	byAgent := make(map[uuid.UUID][]AdvanceDeduction)
	for _, d := range deductions {
		byAgent[d.AgentID] = append(byAgent[d.AgentID], d)
	}

	report := PeriodReportResponse{
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Groups:      make([]AgentDeductionGroup, 0, len(byAgent)),
	}
	for agentID, group := range byAgent {
		var total int64
		for _, d := range group {
			total += d.DeductionAmount
		}
		report.Groups = append(report.Groups, AgentDeductionGroup{
			AgentID:    agentID.String(),
			Total:      total,
			Deductions: mapDeductions(group),
		})
		report.Total += total
	}
	sort.Slice(report.Groups, func(i, j int) bool {
		return report.Groups[i].AgentID < report.Groups[j].AgentID
	})

	return report
}

func (s *service) Create(ctx context.Context, req CreateSursalaireRequest) (SursalaireResponse, error) {
	beneficiaryID, err := uuid.Parse(req.BeneficiaryID)
	if err != nil {
		return SursalaireResponse{}, sursalaireerrors.ErrInvalidBeneficiaryID
	}

	start, end, err := parsePeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return SursalaireResponse{}, err
	}

	existing, err := s.repo.FindNonCancelledOverlapping(ctx, beneficiaryID, start, end)
	if err != nil {
		return SursalaireResponse{}, apperror.WithDetail(apperror.ErrPersistence, err)
	}
	if existing != nil {
		return SursalaireResponse{}, apperror.WithDetail(
			sursalaireerrors.ErrOverlappingSursalaire,
			fmt.Errorf("conflicts with sursalaire %s", existing.Reference),
		)
	}

	deductions, err := s.scanDeductions(ctx, start, end)
	if err != nil {
		return SursalaireResponse{}, err
	}

	var total int64
	for _, d := range deductions {
		total += d.DeductionAmount
	}
	if total == 0 {
		return SursalaireResponse{}, sursalaireerrors.ErrEmptyAggregate
	}

	reference, err := counter.NextReference(ctx, s.counter, "SUR", counter.TypeSursalaire, end)
	if err != nil {
		return SursalaireResponse{}, apperror.WithDetail(apperror.ErrPersistence, err)
	}

	sur := &Sursalaire{
		ID:                     uuid.New(),
		Reference:              reference,
		BeneficiaryID:          beneficiaryID,
		PeriodStart:            start,
		PeriodEnd:              end,
		AdvanceDeductions:      deductions,
		TotalAdvanceDeductions: total,
		Status:                 StatusPending,
	}
	if actor := contextutil.GetActorID(ctx); actor != "" {
		if actorID, err := uuid.Parse(actor); err == nil {
			sur.CreatedBy = &actorID
		}
	}

	if err := s.repo.Create(ctx, sur); err != nil {
		if isUniqueViolation(err) {
			sur.Reference = counter.FallbackReference("SUR", time.Now())
			if retryErr := s.repo.Create(ctx, sur); retryErr == nil {
				return s.attemptImmediateCredit(ctx, sur), nil
			}
		}
		return SursalaireResponse{}, apperror.WithDetail(apperror.ErrPersistence, err)
	}

	s.logger.Info("sursalaire created",
		zap.String("sursalaire_id", sur.ID.String()),
		zap.String("beneficiary_id", req.BeneficiaryID),
		zap.Int64("total", total),
	)
	return s.attemptImmediateCredit(ctx, sur), nil
}

// attemptImmediateCredit tries to credit right after creation. Failure is not
// an error: the sursalaire simply stays pending for a later explicit credit.
func (s *service) attemptImmediateCredit(ctx context.Context, sur *Sursalaire) SursalaireResponse {
	credited, err := s.credit(ctx, sur, nil)
	if err != nil {
		s.logger.Info("immediate credit not possible, left pending",
			zap.String("sursalaire_id", sur.ID.String()),
			zap.Error(err),
		)
		return mapToResponse(*sur)
	}
	return mapToResponse(*credited)
}

func (s *service) GetAll(ctx context.Context, beneficiaryID string) ([]SursalaireResponse, error) {
	list, err := s.repo.FindAllByBeneficiary(ctx, beneficiaryID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(list), nil
}

func (s *service) GetByID(ctx context.Context, id string) (SursalaireResponse, error) {
	sur, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return SursalaireResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*sur), nil
}

func (s *service) Credit(ctx context.Context, id string, req CreditSursalaireRequest) (SursalaireResponse, error) {
	sur, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return SursalaireResponse{}, mapRepositoryError(err)
	}

	credited, err := s.credit(ctx, sur, req.TargetPayrollID)
	if err != nil {
		return SursalaireResponse{}, err
	}
	return mapToResponse(*credited), nil
}

func (s *service) credit(ctx context.Context, sur *Sursalaire, targetPayrollID *string) (*Sursalaire, error) {
	switch sur.Status {
	case StatusCredited:
		return nil, sursalaireerrors.ErrAlreadyCredited
	case StatusCancelled:
		return nil, sursalaireerrors.ErrNotPending
	}

	target, err := s.resolveTarget(ctx, sur, targetPayrollID)
	if err != nil {
		return nil, err
	}

	// The write goes through the payroll totals path; an unpaid target is
	// enforced there as well.
	credited, err := s.creditor.ApplySursalaire(ctx, target, sur.TotalAdvanceDeductions)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sur.Status = StatusCredited
	sur.CreditedAmount = sur.TotalAdvanceDeductions
	sur.BeneficiaryPayrollID = &credited.ID
	sur.CreditedAt = &now
	if actor := contextutil.GetActorID(ctx); actor != "" {
		if actorID, err := uuid.Parse(actor); err == nil {
			sur.CreditedBy = &actorID
		}
	}

	if err := s.repo.Update(ctx, sur); err != nil {
		return nil, apperror.WithDetail(apperror.ErrPersistence, err)
	}

	s.queueCreditedEvent(ctx, sur)
	s.logger.Info("sursalaire credited",
		zap.String("sursalaire_id", sur.ID.String()),
		zap.String("payroll_id", credited.ID.String()),
		zap.Int64("amount", sur.CreditedAmount),
	)
	return sur, nil
}

// resolveTarget picks the payroll receiving the credit: the explicit id when
// given, else the beneficiary's first unpaid payroll intersecting the period.
func (s *service) resolveTarget(ctx context.Context, sur *Sursalaire, targetPayrollID *string) (uuid.UUID, error) {
	if targetPayrollID != nil {
		id, err := uuid.Parse(*targetPayrollID)
		if err != nil {
			return uuid.Nil, apperror.InvalidField("Target Payroll Id")
		}
		return id, nil
	}

	candidates, err := s.payrolls.FindIntersecting(ctx, sur.BeneficiaryID, sur.PeriodStart, sur.PeriodEnd)
	if err != nil {
		return uuid.Nil, apperror.WithDetail(apperror.ErrPersistence, err)
	}
	for _, p := range candidates {
		if !p.Paid {
			return p.ID, nil
		}
	}

	return uuid.Nil, sursalaireerrors.ErrNoTargetPayroll
}

func (s *service) Cancel(ctx context.Context, id string, reason string) (SursalaireResponse, error) {
	sur, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return SursalaireResponse{}, mapRepositoryError(err)
	}

	// A credited sursalaire is immutable: it already perturbed a payroll.
	if sur.Status != StatusPending {
		return SursalaireResponse{}, sursalaireerrors.ErrNotPending
	}

	now := time.Now()
	sur.Status = StatusCancelled
	sur.CancelledAt = &now
	sur.CancelReason = reason

	if err := s.repo.Update(ctx, sur); err != nil {
		return SursalaireResponse{}, apperror.WithDetail(apperror.ErrPersistence, err)
	}

	s.logger.Info("sursalaire cancelled", zap.String("sursalaire_id", id), zap.String("reason", reason))
	return mapToResponse(*sur), nil
}

func (s *service) queueCreditedEvent(ctx context.Context, sur *Sursalaire) {
	if s.outbox == nil {
		return
	}

	payrollID := ""
	if sur.BeneficiaryPayrollID != nil {
		payrollID = sur.BeneficiaryPayrollID.String()
	}
	body, err := json.Marshal(events.SursalaireCreditedEvent{
		EventType:      "sursalaire_credited",
		RequestID:      contextutil.GetRequestID(ctx),
		SursalaireID:   sur.ID.String(),
		Reference:      sur.Reference,
		BeneficiaryID:  sur.BeneficiaryID.String(),
		PayrollID:      payrollID,
		CreditedAmount: sur.CreditedAmount,
		OccurredAt:     time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("marshal sursalaire event failed", zap.Error(err))
		return
	}

	if err := s.outbox.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "sursalaire",
		AggregateID:   sur.ID.String(),
		EventType:     "sursalaire_credited",
		Topic:         events.SursalaireLifecycleTopic,
		Payload:       body,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("queue sursalaire event failed",
			zap.String("sursalaire_id", sur.ID.String()),
			zap.Error(err),
		)
	}
}

func parsePeriod(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, payrollerrors.ErrInvalidDateFormat
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, payrollerrors.ErrInvalidDateFormat
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, payrollerrors.ErrInvalidDateRange
	}
	return start, end, nil
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sursalaireerrors.ErrSursalaireNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
