package advance_test

import (
	"testing"
	"time"

	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/advance"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRecoverableAmount(t *testing.T) {
	base := advance.Advance{
		ID:        uuid.New(),
		Amount:    60000,
		Remaining: 60000,
		Status:    advance.StatusApproved,
	}

	t.Run("monthly recovery capped by remaining", func(t *testing.T) {
		a := base
		a.MonthlyRecovery = 20000
		a.Remaining = 15000

		amount, reason := a.RecoverableAmount(150000)
		assert.Empty(t, reason)
		assert.Equal(t, int64(15000), amount)
	})

	t.Run("monthly takes precedence over percentage", func(t *testing.T) {
		a := base
		a.MonthlyRecovery = 20000
		a.RecoveryPercentage = 50

		amount, reason := a.RecoverableAmount(150000)
		assert.Empty(t, reason)
		assert.Equal(t, int64(20000), amount)
	})

	t.Run("percentage of net rounds half up", func(t *testing.T) {
		a := base
		a.RecoveryPercentage = 15

		// 15% of 77777 is 11666.55, rounds to 11667.
		amount, reason := a.RecoverableAmount(77777)
		assert.Empty(t, reason)
		assert.Equal(t, int64(11667), amount)
	})

	t.Run("max recovery caps the amount", func(t *testing.T) {
		a := base
		a.MonthlyRecovery = 20000
		a.MaxRecoveryAmount = 12000

		amount, reason := a.RecoverableAmount(150000)
		assert.Empty(t, reason)
		assert.Equal(t, int64(12000), amount)
	})

	t.Run("still recoverable after disbursement", func(t *testing.T) {
		disbursedAt := time.Now()
		a := base
		a.MonthlyRecovery = 20000
		a.DisbursedAt = &disbursedAt

		amount, reason := a.RecoverableAmount(150000)
		assert.Empty(t, reason)
		assert.Equal(t, int64(20000), amount)
	})

	t.Run("ineligible when not approved", func(t *testing.T) {
		for _, status := range []string{
			advance.StatusDraft, advance.StatusRequested, advance.StatusRejected,
			advance.StatusClosed, advance.StatusCancelled,
		} {
			a := base
			a.Status = status
			a.MonthlyRecovery = 20000

			amount, reason := a.RecoverableAmount(150000)
			assert.Equal(t, advance.ReasonNotApproved, reason, status)
			assert.Zero(t, amount)
		}
	})

	t.Run("ineligible when nothing remains", func(t *testing.T) {
		a := base
		a.MonthlyRecovery = 20000
		a.Remaining = 0

		_, reason := a.RecoverableAmount(150000)
		assert.Equal(t, advance.ReasonNothingLeft, reason)
	})

	t.Run("ineligible without net pay", func(t *testing.T) {
		a := base
		a.MonthlyRecovery = 20000

		_, reason := a.RecoverableAmount(0)
		assert.Equal(t, advance.ReasonNoNetPay, reason)
	})

	t.Run("ineligible without a policy", func(t *testing.T) {
		a := base

		_, reason := a.RecoverableAmount(150000)
		assert.Equal(t, advance.ReasonNoPolicy, reason)
	})

	t.Run("ineligible when recovery would exceed net", func(t *testing.T) {
		a := base
		a.MonthlyRecovery = 20000

		amount, reason := a.RecoverableAmount(12000)
		assert.Equal(t, advance.ReasonExceedsNet, reason)
		assert.Zero(t, amount)
	})
}

func TestRecomputeTotals_SelfHealsFromDrift(t *testing.T) {
	a := advance.Advance{
		Amount: 60000,
		// Drifted values that must be overwritten from the list.
		Remaining:   123,
		TotalRepaid: 456,
	}

	repayments := []advance.Repayment{
		{Amount: 20000, RepaymentDate: time.Now()},
		{Amount: 15000, RepaymentDate: time.Now()},
	}
	a.RecomputeTotals(repayments)

	assert.Equal(t, int64(35000), a.TotalRepaid)
	assert.Equal(t, int64(25000), a.Remaining)
	assert.NoError(t, a.CheckInvariants())
}

func TestCheckInvariants(t *testing.T) {
	a := advance.Advance{
		Reference:   "AVC-2025-0001",
		Amount:      60000,
		Remaining:   40000,
		TotalRepaid: 20000,
		Status:      advance.StatusApproved,
		Repayments:  []advance.Repayment{{Amount: 20000}},
	}
	assert.NoError(t, a.CheckInvariants())

	bad := a
	bad.TotalRepaid = 25000
	assert.Error(t, bad.CheckInvariants())

	closedWithBalance := a
	closedWithBalance.Status = advance.StatusClosed
	assert.Error(t, closedWithBalance.CheckInvariants())
}

func TestIsTerminal(t *testing.T) {
	terminal := []string{advance.StatusRejected, advance.StatusClosed, advance.StatusCancelled}
	for _, status := range terminal {
		a := advance.Advance{Status: status}
		assert.True(t, a.IsTerminal(), status)
	}

	open := []string{advance.StatusDraft, advance.StatusRequested, advance.StatusApproved}
	for _, status := range open {
		a := advance.Advance{Status: status}
		assert.False(t, a.IsTerminal(), status)
	}
}
