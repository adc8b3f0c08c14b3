package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/advance"
	advanceerrors "github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/advance/errors"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/agent"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/contract"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/events"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/messaging/kafka"
	payrollerrors "github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/payroll/errors"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/periodguard"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/shared/apperror"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/shared/contextutil"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/shared/counter"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/shared/saga"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AgentDirectory is the read-only worker lookup the generator needs.
// Satisfied by agent.Service.
type AgentDirectory interface {
	GetByID(ctx context.Context, id string) (agent.AgentResponse, error)
}

// ContractRegistry answers "active contract covering date X for agent Y".
// Satisfied by contract.Service.
type ContractRegistry interface {
	ActiveCovering(ctx context.Context, agentID string, date time.Time) (*contract.Contract, error)
}

// AdvanceLedger is the slice of the advance service the generator consumes.
// Satisfied by advance.Service.
type AdvanceLedger interface {
	ListRecoverable(ctx context.Context, agentID uuid.UUID) ([]advance.Advance, error)
	CanRecover(ctx context.Context, advanceID uuid.UUID, payrollNetAmount int64) (int64, error)
	AddRepayment(ctx context.Context, advanceID uuid.UUID, amount int64, payrollID uuid.UUID, method string) error
	RemoveRepayment(ctx context.Context, advanceID, payrollID uuid.UUID) error
}

//go:generate mockgen -source=payroll_service.go -destination=mock/payroll_service_mock.go -package=mock
type Service interface {
	Generate(ctx context.Context, req GeneratePayrollRequest) (PayrollResponse, error)
	GetAll(ctx context.Context, agentID string) ([]PayrollResponse, error)
	GetByID(ctx context.Context, id string) (PayrollResponse, error)
	Update(ctx context.Context, id string, req UpdatePayrollRequest) (PayrollResponse, error)
	Delete(ctx context.Context, id string) error
	MarkAsPaid(ctx context.Context, id string) (PayrollResponse, error)

	// ApplySursalaire credits amount into the target payroll's sursalaire
	// gain through the same totals recompute every other persist path uses.
	// The target must be unpaid.
	ApplySursalaire(ctx context.Context, payrollID uuid.UUID, amount int64) (*Payroll, error)
}

type service struct {
	repo      Repository
	agents    AgentDirectory
	contracts ContractRegistry
	ledger    AdvanceLedger
	guard     *periodguard.Guard
	counter   counter.Repository
	outbox    kafka.OutboxRepository
	saga      *saga.Runner
	logger    *zap.Logger
}

func NewService(
	repo Repository,
	agents AgentDirectory,
	contracts ContractRegistry,
	ledger AdvanceLedger,
	guard *periodguard.Guard,
	counterRepo counter.Repository,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("payroll.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.service")
	}
	return &service{
		repo:      repo,
		agents:    agents,
		contracts: contracts,
		ledger:    ledger,
		guard:     guard,
		counter:   counterRepo,
		outbox:    outboxRepo,
		saga:      saga.NewRunner(l),
		logger:    l,
	}
}

func (s *service) Generate(ctx context.Context, req GeneratePayrollRequest) (PayrollResponse, error) {
	agentID, err := uuid.Parse(req.AgentID)
	if err != nil {
		return PayrollResponse{}, payrollerrors.ErrInvalidAgentID
	}

	periodStart, periodEnd, err := parsePeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return PayrollResponse{}, err
	}

	if err := validateNonNegative(
		req.Transport, req.Risk, req.OvertimeHours,
		req.Accompte, req.Absences, req.ManualRetenues,
	); err != nil {
		return PayrollResponse{}, err
	}
	if err := validateNonNegativePtr(req.BaseSalary, req.TotalIndemnities); err != nil {
		return PayrollResponse{}, err
	}

	if _, err := s.agents.GetByID(ctx, req.AgentID); err != nil {
		return PayrollResponse{}, err
	}

	if err := s.guard.AssertNoOverlap(ctx, agentID, periodStart, periodEnd, nil); err != nil {
		return PayrollResponse{}, err
	}

	activeContract, err := s.contracts.ActiveCovering(ctx, req.AgentID, periodEnd)
	if err != nil {
		return PayrollResponse{}, err
	}

	baseSalary := resolveBaseSalary(req.BaseSalary, activeContract.Salary.BaseSalary)
	indemnities := resolveIndemnities(req.TotalIndemnities, activeContract.Salary.Indemnities, baseSalary)

	p := &Payroll{
		ID:             uuid.New(),
		AgentID:        agentID,
		WorkContractID: activeContract.ID,
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
		Gains: Gains{
			BaseSalary:       baseSalary,
			Transport:        req.Transport,
			Risk:             req.Risk,
			TotalIndemnities: indemnities,
			OvertimeHours:    req.OvertimeHours,
		},
		Deductions: Deductions{
			Accompte:       req.Accompte,
			AutresRetenues: req.ManualRetenues,
			Absences:       req.Absences,
		},
	}
	if actor := contextutil.GetActorID(ctx); actor != "" {
		if actorID, err := uuid.Parse(actor); err == nil {
			p.CreatedBy = &actorID
		}
	}

	applyTotals(p)
	if err := s.consumeAdvances(ctx, p); err != nil {
		return PayrollResponse{}, err
	}
	applyTotals(p)

	p.Reference, err = counter.NextReference(ctx, s.counter, "PAY", counter.TypePayroll, periodEnd)
	if err != nil {
		s.logger.Error("generate payroll reference failed", zap.Error(err))
		return PayrollResponse{}, apperror.WithDetail(apperror.ErrPersistence, err)
	}

	if err := s.persistGeneration(ctx, p); err != nil {
		return PayrollResponse{}, err
	}

	s.queueEvent(ctx, p, "payroll_generated", events.PayrollGeneratedEvent{
		EventType:   "payroll_generated",
		RequestID:   contextutil.GetRequestID(ctx),
		PayrollID:   p.ID.String(),
		Reference:   p.Reference,
		AgentID:     p.AgentID.String(),
		PeriodStart: p.PeriodStart.Format("2006-01-02"),
		PeriodEnd:   p.PeriodEnd.Format("2006-01-02"),
		NetAmount:   p.NetAmount,
		OccurredAt:  time.Now().UTC(),
	})

	s.logger.Info("payroll generated",
		zap.String("payroll_id", p.ID.String()),
		zap.String("reference", p.Reference),
		zap.String("agent_id", p.AgentID.String()),
		zap.Int64("net_amount", p.NetAmount),
		zap.Int("advances_applied", len(p.AdvancesApplied)),
	)
	return mapToResponse(*p), nil
}

// consumeAdvances walks the agent's recoverable advances oldest first and
// applies the recovery policy against the running net, so the payroll never
// recovers more in total than its own net pay. Eligibility is re-checked per
// advance by the ledger on a fresh read.
func (s *service) consumeAdvances(ctx context.Context, p *Payroll) error {
	recoverable, err := s.ledger.ListRecoverable(ctx, p.AgentID)
	if err != nil {
		return err
	}

	runningNet := p.NetAmount
	for _, a := range recoverable {
		if runningNet <= 0 {
			break
		}

		amount, err := s.ledger.CanRecover(ctx, a.ID, runningNet)
		if err != nil {
			if errors.Is(err, advanceerrors.ErrNotRecoverable) {
				continue
			}
			return err
		}
		if amount <= 0 {
			continue
		}

		p.Deductions.AutresRetenues += amount
		p.AdvancesApplied = append(p.AdvancesApplied, AdvanceApplied{
			AdvanceID: a.ID,
			Amount:    amount,
		})
		runningNet -= amount
	}

	return nil
}

// persistGeneration runs the write sequence as a saga: insert the payroll,
// re-verify period exclusivity now that the row is visible, then record one
// repayment per consumed advance. A failed step removes the repayments
// already recorded and deletes the payroll.
func (s *service) persistGeneration(ctx context.Context, p *Payroll) error {
	steps := []saga.Step{{
		Name: "insert_payroll",
		Apply: func(ctx context.Context) error {
			return s.createWithConflictHandling(ctx, p)
		},
		Compensate: func(ctx context.Context) error {
			return s.repo.Delete(ctx, p.ID)
		},
	}, {
		// The unique index only nets the exact (agent, start, end) tuple.
		// Two generators with overlapping but non-identical periods pass the
		// pre-write assertion on stale reads and both insert without a 23505;
		// this re-read after the insert is visible catches the race, and the
		// saga rolls the losing payroll back.
		Name: "verify_period",
		Apply: func(ctx context.Context) error {
			return s.assertPeriodStillExclusive(ctx, p)
		},
	}}

	for _, applied := range p.AdvancesApplied {
		applied := applied
		steps = append(steps, saga.Step{
			Name: fmt.Sprintf("repay_advance_%s", applied.AdvanceID),
			Apply: func(ctx context.Context) error {
				return s.ledger.AddRepayment(ctx, applied.AdvanceID, applied.Amount, p.ID, advance.MethodPayroll)
			},
			Compensate: func(ctx context.Context) error {
				return s.ledger.RemoveRepayment(ctx, applied.AdvanceID, p.ID)
			},
		})
	}

	return s.saga.Run(ctx, "payroll_generate", steps)
}

// createWithConflictHandling performs the final write where concurrent
// generators meet. A reference collision is recovered locally with a
// timestamp fallback; a period collision surfaces as CONFLICT for the caller
// to retry.
func (s *service) createWithConflictHandling(ctx context.Context, p *Payroll) error {
	err := s.repo.Create(ctx, p)
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return apperror.WithDetail(apperror.ErrPersistence, err)
	}

	if pgErr.ConstraintName == "uq_payroll_reference" {
		p.Reference = counter.FallbackReference("PAY", time.Now())
		if retryErr := s.repo.Create(ctx, p); retryErr == nil {
			s.logger.Info("payroll created with fallback reference",
				zap.String("payroll_id", p.ID.String()),
				zap.String("reference", p.Reference),
			)
			return nil
		}
	}

	return apperror.WithDetail(payrollerrors.ErrDuplicatePeriod, err)
}

// assertPeriodStillExclusive re-runs the overlap check against committed rows
// after this payroll's own write became visible. Both racers may see each
// other and both roll back; that is safe, the callers retry.
func (s *service) assertPeriodStillExclusive(ctx context.Context, p *Payroll) error {
	conflict, err := s.repo.FindOverlappingPeriod(ctx, p.AgentID, p.PeriodStart, p.PeriodEnd, &p.ID)
	if err != nil {
		return apperror.WithDetail(apperror.ErrPersistence, err)
	}
	if conflict != nil {
		return apperror.WithDetail(payrollerrors.ErrDuplicatePeriod, fmt.Errorf(
			"period intersects payroll %s (%s .. %s)",
			conflict.Reference,
			conflict.PeriodStart.Format("2006-01-02"),
			conflict.PeriodEnd.Format("2006-01-02"),
		))
	}
	return nil
}

func (s *service) GetAll(ctx context.Context, agentID string) ([]PayrollResponse, error) {
	payrolls, err := s.repo.FindAllByAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(payrolls), nil
}

func (s *service) GetByID(ctx context.Context, id string) (PayrollResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return PayrollResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*p), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdatePayrollRequest) (PayrollResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return PayrollResponse{}, mapRepositoryError(err)
	}

	if p.Paid {
		return PayrollResponse{}, payrollerrors.ErrPayrollAlreadyPaid
	}

	orig := *p
	periodChanged := false
	if req.PeriodStart != nil || req.PeriodEnd != nil {
		startStr := p.PeriodStart.Format("2006-01-02")
		endStr := p.PeriodEnd.Format("2006-01-02")
		if req.PeriodStart != nil {
			startStr = *req.PeriodStart
		}
		if req.PeriodEnd != nil {
			endStr = *req.PeriodEnd
		}

		periodStart, periodEnd, err := parsePeriod(startStr, endStr)
		if err != nil {
			return PayrollResponse{}, err
		}

		if err := s.guard.AssertNoOverlap(ctx, p.AgentID, periodStart, periodEnd, &p.ID); err != nil {
			return PayrollResponse{}, err
		}
		periodChanged = !periodStart.Equal(p.PeriodStart) || !periodEnd.Equal(p.PeriodEnd)
		p.PeriodStart = periodStart
		p.PeriodEnd = periodEnd
	}

	if err := validateNonNegativePtr(
		req.BaseSalary, req.TotalIndemnities, req.Transport, req.Risk,
		req.OvertimeHours, req.Accompte, req.Absences, req.ManualRetenues,
	); err != nil {
		return PayrollResponse{}, err
	}

	setIfPresent(&p.Gains.BaseSalary, req.BaseSalary)
	setIfPresent(&p.Gains.TotalIndemnities, req.TotalIndemnities)
	setIfPresent(&p.Gains.Transport, req.Transport)
	setIfPresent(&p.Gains.Risk, req.Risk)
	setIfPresent(&p.Gains.OvertimeHours, req.OvertimeHours)
	setIfPresent(&p.Deductions.Accompte, req.Accompte)
	setIfPresent(&p.Deductions.Absences, req.Absences)

	// autres_retenues = manual component + recorded advance recoveries; a
	// manual change never disturbs the ledger-backed part.
	if req.ManualRetenues != nil {
		p.Deductions.AutresRetenues = *req.ManualRetenues + p.TotalAdvancesApplied()
	}

	applyTotals(p)

	if err := s.repo.Update(ctx, p); err != nil {
		return PayrollResponse{}, apperror.WithDetail(apperror.ErrPersistence, err)
	}

	if periodChanged {
		// Same post-write race as generation: re-read once this row's new
		// period is visible, and restore the old period on a clash.
		if err := s.assertPeriodStillExclusive(ctx, p); err != nil {
			if revertErr := s.repo.Update(ctx, &orig); revertErr != nil {
				return PayrollResponse{}, apperror.Wrap(
					errors.Join(err, revertErr),
					apperror.CodePersistence,
					fmt.Sprintf("revert payroll %s after period conflict", p.Reference),
					http.StatusInternalServerError,
				)
			}
			return PayrollResponse{}, err
		}
	}

	s.logger.Info("payroll updated", zap.String("payroll_id", id))
	return mapToResponse(*p), nil
}

// Delete restores every advance this payroll recovered from, then removes the
// record. Restoration runs first and is idempotent, so a crash midway leaves
// a state a retry completes safely.
func (s *service) Delete(ctx context.Context, id string) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}

	if p.Paid {
		return payrollerrors.ErrPayrollAlreadyPaid
	}

	for _, applied := range p.AdvancesApplied {
		if err := s.ledger.RemoveRepayment(ctx, applied.AdvanceID, p.ID); err != nil {
			return apperror.Wrap(
				err,
				apperror.CodePersistence,
				fmt.Sprintf("restore advance %s (amount %d) while deleting payroll %s",
					applied.AdvanceID, applied.Amount, p.Reference),
				http.StatusInternalServerError,
			)
		}
	}

	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return apperror.WithDetail(apperror.ErrPersistence, err)
	}

	s.logger.Info("payroll deleted, advances restored",
		zap.String("payroll_id", id),
		zap.Int("advances_restored", len(p.AdvancesApplied)),
	)
	return nil
}

func (s *service) MarkAsPaid(ctx context.Context, id string) (PayrollResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return PayrollResponse{}, mapRepositoryError(err)
	}

	if p.Paid {
		return PayrollResponse{}, payrollerrors.ErrPayrollAlreadyPaid
	}

	now := time.Now()
	p.Paid = true
	p.PaidAt = &now

	if err := s.repo.Update(ctx, p); err != nil {
		return PayrollResponse{}, apperror.WithDetail(apperror.ErrPersistence, err)
	}

	s.queueEvent(ctx, p, "payroll_paid", events.PayrollPaidEvent{
		EventType:  "payroll_paid",
		RequestID:  contextutil.GetRequestID(ctx),
		PayrollID:  p.ID.String(),
		Reference:  p.Reference,
		AgentID:    p.AgentID.String(),
		NetAmount:  p.NetAmount,
		OccurredAt: now.UTC(),
	})

	s.logger.Info("payroll marked as paid", zap.String("payroll_id", id))
	return mapToResponse(*p), nil
}

func (s *service) ApplySursalaire(ctx context.Context, payrollID uuid.UUID, amount int64) (*Payroll, error) {
	p, err := s.repo.FindByID(ctx, payrollID.String())
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	if p.Paid {
		return nil, payrollerrors.ErrPayrollAlreadyPaid
	}
	if amount <= 0 {
		return nil, payrollerrors.ErrInvalidMoneyValue
	}

	p.Gains.Sursalaire = amount
	applyTotals(p)

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, apperror.WithDetail(apperror.ErrPersistence, err)
	}

	s.logger.Info("sursalaire credited into payroll",
		zap.String("payroll_id", payrollID.String()),
		zap.Int64("amount", amount),
	)
	return p, nil
}

func (s *service) queueEvent(ctx context.Context, p *Payroll, eventType string, payload any) {
	if s.outbox == nil {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("marshal payroll event failed", zap.Error(err))
		return
	}

	if err := s.outbox.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "payroll",
		AggregateID:   p.ID.String(),
		EventType:     eventType,
		Topic:         events.PayrollLifecycleTopic,
		Payload:       body,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("queue payroll event failed",
			zap.String("payroll_id", p.ID.String()),
			zap.Error(err),
		)
	}
}

func parsePeriod(startStr, endStr string) (time.Time, time.Time, error) {
	periodStart, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, payrollerrors.ErrInvalidDateFormat
	}
	periodEnd, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, payrollerrors.ErrInvalidDateFormat
	}
	if periodStart.After(periodEnd) {
		return time.Time{}, time.Time{}, payrollerrors.ErrInvalidDateRange
	}
	return periodStart, periodEnd, nil
}

func validateNonNegative(values ...int64) error {
	for _, v := range values {
		if v < 0 {
			return payrollerrors.ErrInvalidMoneyValue
		}
	}
	return nil
}

func validateNonNegativePtr(values ...*int64) error {
	for _, v := range values {
		if v != nil && *v < 0 {
			return payrollerrors.ErrInvalidMoneyValue
		}
	}
	return nil
}

func setIfPresent(dst *int64, src *int64) {
	if src != nil {
		*dst = *src
	}
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return payrollerrors.ErrPayrollNotFound
	}
	return err
}
