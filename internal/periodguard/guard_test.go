package periodguard_test

import (
	"context"
	"testing"
	"time"

	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/periodguard"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeFinder struct {
	conflict  *periodguard.PayrollRef
	settled   bool
	lastStart time.Time
	lastEnd   time.Time
}

func (f *fakeFinder) FindOverlappingPeriod(ctx context.Context, agentID uuid.UUID, periodStart, periodEnd time.Time, excludeID *uuid.UUID) (*periodguard.PayrollRef, error) {
	f.lastStart, f.lastEnd = periodStart, periodEnd
	return f.conflict, nil
}

func (f *fakeFinder) HasPaidPayrollInRange(ctx context.Context, agentID uuid.UUID, rangeStart, rangeEnd time.Time) (bool, error) {
	f.lastStart, f.lastEnd = rangeStart, rangeEnd
	return f.settled, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAssertNoOverlap(t *testing.T) {
	ctx := context.Background()

	t.Run("passes when no conflict", func(t *testing.T) {
		guard := periodguard.New(&fakeFinder{})
		err := guard.AssertNoOverlap(ctx, uuid.New(), date(2025, 1, 1), date(2025, 1, 31), nil)
		assert.NoError(t, err)
	})

	t.Run("fails with the conflicting reference attached", func(t *testing.T) {
		guard := periodguard.New(&fakeFinder{conflict: &periodguard.PayrollRef{
			ID:          uuid.New(),
			Reference:   "PAY-2025-0042",
			PeriodStart: date(2025, 1, 1),
			PeriodEnd:   date(2025, 1, 31),
		}})

		err := guard.AssertNoOverlap(ctx, uuid.New(), date(2025, 1, 15), date(2025, 2, 15), nil)

		assert.ErrorIs(t, err, periodguard.ErrPeriodOverlap)
		assert.ErrorContains(t, err, "PAY-2025-0042")
	})
}

func TestAssertMonthNotSettled(t *testing.T) {
	ctx := context.Background()

	t.Run("queries the calendar month bounds", func(t *testing.T) {
		finder := &fakeFinder{}
		guard := periodguard.New(finder)

		err := guard.AssertMonthNotSettled(ctx, uuid.New(), date(2025, 2, 14))

		assert.NoError(t, err)
		assert.Equal(t, date(2025, 2, 1), finder.lastStart)
		assert.Equal(t, date(2025, 2, 28), finder.lastEnd)
	})

	t.Run("fails when a paid payroll settles the month", func(t *testing.T) {
		guard := periodguard.New(&fakeFinder{settled: true})

		err := guard.AssertMonthNotSettled(ctx, uuid.New(), date(2025, 2, 14))
		assert.ErrorIs(t, err, periodguard.ErrMonthSettled)
	})
}

func TestMonthBounds(t *testing.T) {
	start, end := periodguard.MonthBounds(date(2024, 2, 10))
	assert.Equal(t, date(2024, 2, 1), start)
	// Leap year.
	assert.Equal(t, date(2024, 2, 29), end)

	start, end = periodguard.MonthBounds(date(2025, 12, 31))
	assert.Equal(t, date(2025, 12, 1), start)
	assert.Equal(t, date(2025, 12, 31), end)
}
