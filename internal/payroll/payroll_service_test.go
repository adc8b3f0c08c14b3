package payroll_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/advance"
	advanceerrors "github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/advance/errors"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/agent"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/contract"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/messaging/kafka"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/payroll"
	payrollerrors "github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/payroll/errors"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/periodguard"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakePayrollRepository struct {
	createFn                func(ctx context.Context, p *payroll.Payroll) error
	findByIDFn              func(ctx context.Context, id string) (*payroll.Payroll, error)
	findAllByAgentFn        func(ctx context.Context, agentID string) ([]payroll.Payroll, error)
	updateFn                func(ctx context.Context, p *payroll.Payroll) error
	deleteFn                func(ctx context.Context, id uuid.UUID) error
	findIntersectingFn      func(ctx context.Context, agentID uuid.UUID, rangeStart, rangeEnd time.Time) ([]payroll.Payroll, error)
	listPaidWithAdvancesFn  func(ctx context.Context, rangeStart, rangeEnd time.Time) ([]payroll.Payroll, error)
	findOverlappingPeriodFn func(ctx context.Context, agentID uuid.UUID, periodStart, periodEnd time.Time, excludeID *uuid.UUID) (*periodguard.PayrollRef, error)
	hasPaidInRangeFn        func(ctx context.Context, agentID uuid.UUID, rangeStart, rangeEnd time.Time) (bool, error)
}

func (f *fakePayrollRepository) Create(ctx context.Context, p *payroll.Payroll) error {
	if f.createFn != nil {
		return f.createFn(ctx, p)
	}
	return nil
}

func (f *fakePayrollRepository) FindByID(ctx context.Context, id string) (*payroll.Payroll, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, errors.New("not stubbed")
}

func (f *fakePayrollRepository) FindAllByAgent(ctx context.Context, agentID string) ([]payroll.Payroll, error) {
	if f.findAllByAgentFn != nil {
		return f.findAllByAgentFn(ctx, agentID)
	}
	return nil, nil
}

func (f *fakePayrollRepository) Update(ctx context.Context, p *payroll.Payroll) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, p)
	}
	return nil
}

func (f *fakePayrollRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakePayrollRepository) FindIntersecting(ctx context.Context, agentID uuid.UUID, rangeStart, rangeEnd time.Time) ([]payroll.Payroll, error) {
	if f.findIntersectingFn != nil {
		return f.findIntersectingFn(ctx, agentID, rangeStart, rangeEnd)
	}
	return nil, nil
}

func (f *fakePayrollRepository) ListPaidWithAdvances(ctx context.Context, rangeStart, rangeEnd time.Time) ([]payroll.Payroll, error) {
	if f.listPaidWithAdvancesFn != nil {
		return f.listPaidWithAdvancesFn(ctx, rangeStart, rangeEnd)
	}
	return nil, nil
}

func (f *fakePayrollRepository) FindOverlappingPeriod(ctx context.Context, agentID uuid.UUID, periodStart, periodEnd time.Time, excludeID *uuid.UUID) (*periodguard.PayrollRef, error) {
	if f.findOverlappingPeriodFn != nil {
		return f.findOverlappingPeriodFn(ctx, agentID, periodStart, periodEnd, excludeID)
	}
	return nil, nil
}

func (f *fakePayrollRepository) HasPaidPayrollInRange(ctx context.Context, agentID uuid.UUID, rangeStart, rangeEnd time.Time) (bool, error) {
	if f.hasPaidInRangeFn != nil {
		return f.hasPaidInRangeFn(ctx, agentID, rangeStart, rangeEnd)
	}
	return false, nil
}

type fakeAgentDirectory struct {
	getByIDFn func(ctx context.Context, id string) (agent.AgentResponse, error)
}

func (f *fakeAgentDirectory) GetByID(ctx context.Context, id string) (agent.AgentResponse, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return agent.AgentResponse{ID: id, Status: "active"}, nil
}

type fakeContractRegistry struct {
	activeCoveringFn func(ctx context.Context, agentID string, date time.Time) (*contract.Contract, error)
}

func (f *fakeContractRegistry) ActiveCovering(ctx context.Context, agentID string, date time.Time) (*contract.Contract, error) {
	if f.activeCoveringFn != nil {
		return f.activeCoveringFn(ctx, agentID, date)
	}
	return &contract.Contract{
		ID:     uuid.New(),
		Status: "active",
		Salary: contract.Salary{BaseSalary: 150000},
	}, nil
}

// fakeLedger keeps real advance entities and applies the real recovery
// policy, recording the repayment calls the generator makes.
type fakeLedger struct {
	advances []advance.Advance

	addCalls    []repaymentCall
	removeCalls []repaymentCall
	addErr      map[uuid.UUID]error
}

type repaymentCall struct {
	AdvanceID uuid.UUID
	Amount    int64
	PayrollID uuid.UUID
}

func (f *fakeLedger) ListRecoverable(ctx context.Context, agentID uuid.UUID) ([]advance.Advance, error) {
	return f.advances, nil
}

func (f *fakeLedger) CanRecover(ctx context.Context, advanceID uuid.UUID, payrollNetAmount int64) (int64, error) {
	for _, a := range f.advances {
		if a.ID == advanceID {
			amount, reason := a.RecoverableAmount(payrollNetAmount)
			if reason != "" {
				return 0, apperror.WithDetail(advanceerrors.ErrNotRecoverable, errors.New(reason))
			}
			return amount, nil
		}
	}
	return 0, errors.New("advance not found")
}

func (f *fakeLedger) AddRepayment(ctx context.Context, advanceID uuid.UUID, amount int64, payrollID uuid.UUID, method string) error {
	if err := f.addErr[advanceID]; err != nil {
		return err
	}
	f.addCalls = append(f.addCalls, repaymentCall{AdvanceID: advanceID, Amount: amount, PayrollID: payrollID})
	return nil
}

func (f *fakeLedger) RemoveRepayment(ctx context.Context, advanceID, payrollID uuid.UUID) error {
	f.removeCalls = append(f.removeCalls, repaymentCall{AdvanceID: advanceID, PayrollID: payrollID})
	return nil
}

type fakeCounterRepository struct {
	next int64
}

func (f *fakeCounterRepository) GetNextValue(ctx context.Context, entityType string, year int) (int64, error) {
	f.next++
	return f.next, nil
}

type fakeOutboxRepository struct {
	events []kafka.OutboxEvent
}

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type payrollServiceDeps struct {
	service payroll.Service
	repo    *fakePayrollRepository
	ledger  *fakeLedger
	outbox  *fakeOutboxRepository
}

func setupPayrollServiceTest(t *testing.T) *payrollServiceDeps {
	t.Helper()

	repo := &fakePayrollRepository{}
	ledger := &fakeLedger{addErr: map[uuid.UUID]error{}}
	outbox := &fakeOutboxRepository{}

	svc := payroll.NewService(
		repo,
		&fakeAgentDirectory{},
		&fakeContractRegistry{},
		ledger,
		periodguard.New(repo),
		&fakeCounterRepository{},
		outbox,
	)

	return &payrollServiceDeps{service: svc, repo: repo, ledger: ledger, outbox: outbox}
}

func approvedAdvance(agentID uuid.UUID, amount, monthly int64, requestedAt time.Time) advance.Advance {
	return advance.Advance{
		ID:              uuid.New(),
		AgentID:         agentID,
		Amount:          amount,
		Remaining:       amount,
		MonthlyRecovery: monthly,
		Status:          advance.StatusApproved,
		RequestedAt:     requestedAt,
	}
}

func TestPayrollService_Generate_RecoversAdvance(t *testing.T) {
	ctx := context.Background()
	agentID := uuid.New()
	deps := setupPayrollServiceTest(t)

	adv := approvedAdvance(agentID, 60000, 20000, time.Now())
	deps.ledger.advances = []advance.Advance{adv}

	var created *payroll.Payroll
	deps.repo.createFn = func(ctx context.Context, p *payroll.Payroll) error {
		created = p
		return nil
	}

	resp, err := deps.service.Generate(ctx, payroll.GeneratePayrollRequest{
		AgentID:     agentID.String(),
		PeriodStart: "2025-01-01",
		PeriodEnd:   "2025-01-31",
	})

	assert.NoError(t, err)
	assert.NotNil(t, created)
	assert.Equal(t, int64(150000), resp.Gains.BaseSalary)
	// 5% default indemnity on top of the base.
	assert.Equal(t, int64(7500), resp.Gains.TotalIndemnities)
	assert.Equal(t, int64(157500), resp.Gains.GrossSalary)
	assert.Equal(t, int64(20000), resp.Deductions.AutresRetenues)
	assert.Equal(t, int64(137500), resp.NetAmount)
	assert.Equal(t, "PAY-2025-0001", resp.Reference)

	assert.Len(t, deps.ledger.addCalls, 1)
	assert.Equal(t, adv.ID, deps.ledger.addCalls[0].AdvanceID)
	assert.Equal(t, int64(20000), deps.ledger.addCalls[0].Amount)

	assert.Len(t, deps.outbox.events, 1)
	assert.Equal(t, "payroll_generated", deps.outbox.events[0].EventType)
}

func TestPayrollService_Generate_ZeroIndemnityOverride(t *testing.T) {
	ctx := context.Background()
	deps := setupPayrollServiceTest(t)

	zero := int64(0)
	resp, err := deps.service.Generate(ctx, payroll.GeneratePayrollRequest{
		AgentID:          uuid.New().String(),
		PeriodStart:      "2025-02-01",
		PeriodEnd:        "2025-02-28",
		TotalIndemnities: &zero,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(0), resp.Gains.TotalIndemnities)
	assert.Equal(t, int64(150000), resp.Gains.GrossSalary)
}

func TestPayrollService_Generate_PeriodConflict(t *testing.T) {
	ctx := context.Background()
	agentID := uuid.New()
	deps := setupPayrollServiceTest(t)

	existing := &periodguard.PayrollRef{
		ID:          uuid.New(),
		Reference:   "PAY-2025-0007",
		PeriodStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	deps.repo.findOverlappingPeriodFn = func(ctx context.Context, aid uuid.UUID, start, end time.Time, exclude *uuid.UUID) (*periodguard.PayrollRef, error) {
		return existing, nil
	}

	_, err := deps.service.Generate(ctx, payroll.GeneratePayrollRequest{
		AgentID:     agentID.String(),
		PeriodStart: "2025-01-15",
		PeriodEnd:   "2025-02-15",
	})

	assert.ErrorIs(t, err, periodguard.ErrPeriodOverlap)
	assert.ErrorContains(t, err, "PAY-2025-0007")
	assert.Empty(t, deps.ledger.addCalls)
}

func TestPayrollService_Generate_RecoveryCappedByRunningNet(t *testing.T) {
	ctx := context.Background()
	agentID := uuid.New()
	deps := setupPayrollServiceTest(t)

	// Oldest advance takes 100000 of the ~157500 net; the second one's
	// 80000 would exceed what is left, so it is skipped entirely.
	older := approvedAdvance(agentID, 100000, 100000, time.Now().Add(-48*time.Hour))
	newer := approvedAdvance(agentID, 80000, 80000, time.Now())
	deps.ledger.advances = []advance.Advance{older, newer}

	resp, err := deps.service.Generate(ctx, payroll.GeneratePayrollRequest{
		AgentID:     agentID.String(),
		PeriodStart: "2025-03-01",
		PeriodEnd:   "2025-03-31",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(100000), resp.Deductions.AutresRetenues)
	assert.Len(t, deps.ledger.addCalls, 1)
	assert.Equal(t, older.ID, deps.ledger.addCalls[0].AdvanceID)
	// Total recovery never exceeds the payroll's own net.
	assert.GreaterOrEqual(t, resp.NetAmount, int64(0))
}

func TestPayrollService_Generate_RollbackOnRepaymentFailure(t *testing.T) {
	ctx := context.Background()
	agentID := uuid.New()
	deps := setupPayrollServiceTest(t)

	first := approvedAdvance(agentID, 30000, 10000, time.Now().Add(-48*time.Hour))
	second := approvedAdvance(agentID, 30000, 10000, time.Now())
	deps.ledger.advances = []advance.Advance{first, second}
	deps.ledger.addErr[second.ID] = errors.New("write refused")

	var deleted []uuid.UUID
	deps.repo.deleteFn = func(ctx context.Context, id uuid.UUID) error {
		deleted = append(deleted, id)
		return nil
	}

	_, err := deps.service.Generate(ctx, payroll.GeneratePayrollRequest{
		AgentID:     agentID.String(),
		PeriodStart: "2025-04-01",
		PeriodEnd:   "2025-04-30",
	})

	assert.Error(t, err)
	// The successful repayment was reverted and the payroll removed.
	assert.Len(t, deps.ledger.removeCalls, 1)
	assert.Equal(t, first.ID, deps.ledger.removeCalls[0].AdvanceID)
	assert.Len(t, deleted, 1)
}

func TestPayrollService_Generate_PostInsertPeriodRace(t *testing.T) {
	ctx := context.Background()
	agentID := uuid.New()
	deps := setupPayrollServiceTest(t)

	adv := approvedAdvance(agentID, 60000, 20000, time.Now())
	deps.ledger.advances = []advance.Advance{adv}

	// The pre-write check sees nothing; a concurrent generator's row with an
	// overlapping but non-identical period lands in between, so the re-read
	// after our own insert finds it.
	overlapChecks := 0
	deps.repo.findOverlappingPeriodFn = func(ctx context.Context, agentID uuid.UUID, periodStart, periodEnd time.Time, excludeID *uuid.UUID) (*periodguard.PayrollRef, error) {
		overlapChecks++
		if overlapChecks == 1 {
			return nil, nil
		}
		return &periodguard.PayrollRef{
			ID:          uuid.New(),
			Reference:   "PAY-2025-0099",
			PeriodStart: time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC),
			PeriodEnd:   time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC),
		}, nil
	}

	var deleted []uuid.UUID
	deps.repo.deleteFn = func(ctx context.Context, id uuid.UUID) error {
		deleted = append(deleted, id)
		return nil
	}

	_, err := deps.service.Generate(ctx, payroll.GeneratePayrollRequest{
		AgentID:     agentID.String(),
		PeriodStart: "2025-05-01",
		PeriodEnd:   "2025-05-31",
	})

	assert.ErrorIs(t, err, payrollerrors.ErrDuplicatePeriod)
	assert.Equal(t, 2, overlapChecks)
	// The losing payroll was rolled back before any repayment ran.
	assert.Len(t, deleted, 1)
	assert.Empty(t, deps.ledger.addCalls)
	assert.Empty(t, deps.outbox.events)
}

func TestPayrollService_Update_PeriodRaceRevertsChange(t *testing.T) {
	ctx := context.Background()
	deps := setupPayrollServiceTest(t)

	stored := &payroll.Payroll{
		ID:          uuid.New(),
		AgentID:     uuid.New(),
		Reference:   "PAY-2025-0004",
		PeriodStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		Gains:       payroll.Gains{BaseSalary: 150000},
	}
	deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.Payroll, error) {
		return stored, nil
	}

	overlapChecks := 0
	deps.repo.findOverlappingPeriodFn = func(ctx context.Context, agentID uuid.UUID, periodStart, periodEnd time.Time, excludeID *uuid.UUID) (*periodguard.PayrollRef, error) {
		overlapChecks++
		if overlapChecks == 1 {
			return nil, nil
		}
		return &periodguard.PayrollRef{
			ID:          uuid.New(),
			Reference:   "PAY-2025-0100",
			PeriodStart: time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
			PeriodEnd:   time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
		}, nil
	}

	var updates []payroll.Payroll
	deps.repo.updateFn = func(ctx context.Context, p *payroll.Payroll) error {
		updates = append(updates, *p)
		return nil
	}

	newStart := "2025-02-01"
	newEnd := "2025-02-28"
	_, err := deps.service.Update(ctx, stored.ID.String(), payroll.UpdatePayrollRequest{
		PeriodStart: &newStart,
		PeriodEnd:   &newEnd,
	})

	assert.ErrorIs(t, err, payrollerrors.ErrDuplicatePeriod)
	// First write carried the new period, the second restored the old one.
	assert.Len(t, updates, 2)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), updates[0].PeriodStart)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), updates[1].PeriodStart)
	assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), updates[1].PeriodEnd)
}

func TestPayrollService_Delete_RestoresAdvances(t *testing.T) {
	ctx := context.Background()
	deps := setupPayrollServiceTest(t)

	payrollID := uuid.New()
	advA := uuid.New()
	advB := uuid.New()
	deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.Payroll, error) {
		return &payroll.Payroll{
			ID:        payrollID,
			Reference: "PAY-2025-0003",
			AdvancesApplied: []payroll.AdvanceApplied{
				{AdvanceID: advA, Amount: 20000},
				{AdvanceID: advB, Amount: 15000},
			},
		}, nil
	}

	var deleted []uuid.UUID
	deps.repo.deleteFn = func(ctx context.Context, id uuid.UUID) error {
		deleted = append(deleted, id)
		return nil
	}

	err := deps.service.Delete(ctx, payrollID.String())

	assert.NoError(t, err)
	assert.Len(t, deps.ledger.removeCalls, 2)
	assert.Equal(t, advA, deps.ledger.removeCalls[0].AdvanceID)
	assert.Equal(t, advB, deps.ledger.removeCalls[1].AdvanceID)
	assert.Equal(t, []uuid.UUID{payrollID}, deleted)
}

func TestPayrollService_Delete_RejectedWhenPaid(t *testing.T) {
	ctx := context.Background()
	deps := setupPayrollServiceTest(t)

	deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.Payroll, error) {
		return &payroll.Payroll{ID: uuid.New(), Paid: true}, nil
	}

	err := deps.service.Delete(ctx, uuid.New().String())

	assert.ErrorIs(t, err, payrollerrors.ErrPayrollAlreadyPaid)
	assert.Empty(t, deps.ledger.removeCalls)
}

func TestPayrollService_MarkAsPaid_OneWay(t *testing.T) {
	ctx := context.Background()
	deps := setupPayrollServiceTest(t)

	stored := &payroll.Payroll{ID: uuid.New(), AgentID: uuid.New()}
	deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.Payroll, error) {
		return stored, nil
	}

	resp, err := deps.service.MarkAsPaid(ctx, stored.ID.String())
	assert.NoError(t, err)
	assert.True(t, resp.Paid)
	assert.NotNil(t, resp.PaidAt)

	_, err = deps.service.MarkAsPaid(ctx, stored.ID.String())
	assert.ErrorIs(t, err, payrollerrors.ErrPayrollAlreadyPaid)
}

func TestPayrollService_Update_RejectedWhenPaid(t *testing.T) {
	ctx := context.Background()
	deps := setupPayrollServiceTest(t)

	deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.Payroll, error) {
		return &payroll.Payroll{ID: uuid.New(), Paid: true}, nil
	}

	_, err := deps.service.Update(ctx, uuid.New().String(), payroll.UpdatePayrollRequest{})
	assert.ErrorIs(t, err, payrollerrors.ErrPayrollAlreadyPaid)
}

func TestPayrollService_Update_ManualRetenuesKeepsAdvanceShare(t *testing.T) {
	ctx := context.Background()
	deps := setupPayrollServiceTest(t)

	advID := uuid.New()
	deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.Payroll, error) {
		return &payroll.Payroll{
			ID:      uuid.New(),
			AgentID: uuid.New(),
			Gains:   payroll.Gains{BaseSalary: 150000},
			Deductions: payroll.Deductions{
				// 5000 manual + 20000 recovered.
				AutresRetenues: 25000,
			},
			AdvancesApplied: []payroll.AdvanceApplied{{AdvanceID: advID, Amount: 20000}},
		}, nil
	}

	manual := int64(8000)
	resp, err := deps.service.Update(ctx, uuid.New().String(), payroll.UpdatePayrollRequest{
		ManualRetenues: &manual,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(28000), resp.Deductions.AutresRetenues)
}

func TestPayrollService_ApplySursalaire_UnpaidOnly(t *testing.T) {
	ctx := context.Background()
	deps := setupPayrollServiceTest(t)

	target := &payroll.Payroll{ID: uuid.New(), Gains: payroll.Gains{BaseSalary: 100000}}
	deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.Payroll, error) {
		return target, nil
	}

	updated, err := deps.service.ApplySursalaire(ctx, target.ID, 35000)
	assert.NoError(t, err)
	assert.Equal(t, int64(35000), updated.Gains.Sursalaire)
	assert.Equal(t, int64(135000), updated.Gains.GrossSalary)

	target.Paid = true
	_, err = deps.service.ApplySursalaire(ctx, target.ID, 35000)
	assert.ErrorIs(t, err, payrollerrors.ErrPayrollAlreadyPaid)
}
