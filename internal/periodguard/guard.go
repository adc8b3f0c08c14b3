// Package periodguard holds the pre-write assertions shared by payroll
// generation and advance requests: a pay period may never overlap an existing
// payroll for the same agent, and no advance may be requested against a month
// that already has a settled payroll.
package periodguard

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/shared/apperror"

	"github.com/google/uuid"
)

var (
	ErrPeriodOverlap = apperror.New(
		apperror.CodePeriodConflict,
		"a payroll already exists in an overlapping period",
		http.StatusConflict,
	)
	ErrMonthSettled = apperror.New(
		apperror.CodeBusinessRule,
		"a paid payroll already settles this month",
		http.StatusUnprocessableEntity,
	)
)

// PayrollRef identifies the conflicting payroll attached to a period
// conflict.
type PayrollRef struct {
	ID          uuid.UUID
	Reference   string
	PeriodStart time.Time
	PeriodEnd   time.Time
}

//go:generate mockgen -source=guard.go -destination=mock/guard_mock.go -package=mock
type PayrollFinder interface {
	// FindOverlappingPeriod returns the first payroll for agentID whose period
	// intersects [periodStart, periodEnd], nil when none. Two periods overlap
	// when start <= otherEnd AND end >= otherStart.
	FindOverlappingPeriod(ctx context.Context, agentID uuid.UUID, periodStart, periodEnd time.Time, excludeID *uuid.UUID) (*PayrollRef, error)
	// HasPaidPayrollInRange reports whether a paid payroll intersects the range.
	HasPaidPayrollInRange(ctx context.Context, agentID uuid.UUID, rangeStart, rangeEnd time.Time) (bool, error)
}

type Guard struct {
	payrolls PayrollFinder
}

func New(payrolls PayrollFinder) *Guard {
	return &Guard{payrolls: payrolls}
}

// AssertNoOverlap fails with a PERIOD_CONFLICT carrying the conflicting
// payroll reference. excludeID skips the record being updated.
func (g *Guard) AssertNoOverlap(ctx context.Context, agentID uuid.UUID, periodStart, periodEnd time.Time, excludeID *uuid.UUID) error {
	conflict, err := g.payrolls.FindOverlappingPeriod(ctx, agentID, periodStart, periodEnd, excludeID)
	if err != nil {
		return err
	}
	if conflict != nil {
		return apperror.WithDetail(ErrPeriodOverlap, fmt.Errorf(
			"conflicts with payroll %s (%s .. %s)",
			conflict.Reference,
			conflict.PeriodStart.Format("2006-01-02"),
			conflict.PeriodEnd.Format("2006-01-02"),
		))
	}
	return nil
}

// AssertMonthNotSettled fails with a BUSINESS_RULE error when a paid payroll
// intersects the calendar month containing referenceDate.
func (g *Guard) AssertMonthNotSettled(ctx context.Context, agentID uuid.UUID, referenceDate time.Time) error {
	monthStart, monthEnd := MonthBounds(referenceDate)

	settled, err := g.payrolls.HasPaidPayrollInRange(ctx, agentID, monthStart, monthEnd)
	if err != nil {
		return err
	}
	if settled {
		return apperror.WithDetail(ErrMonthSettled, fmt.Errorf(
			"month %s is already settled for agent %s",
			referenceDate.Format("2006-01"),
			agentID,
		))
	}
	return nil
}

// MonthBounds returns the first and last day of the calendar month containing t.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 1, -1)
	return start, end
}
