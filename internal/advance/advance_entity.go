package advance

import (
	"fmt"
	"time"

	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/shared/money"

	"github.com/google/uuid"
)

const (
	StatusDraft     = "draft"
	StatusRequested = "requested"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusClosed    = "closed"
	StatusCancelled = "cancelled"
)

const (
	MethodPayroll  = "payroll"
	MethodCash     = "cash"
	MethodTransfer = "transfer"
)

// Repayment is one entry in an advance's repayment ledger. PayrollID links
// repayments withheld by payroll generation; manual repayments leave it nil.
type Repayment struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AdvanceID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	Amount        int64      `gorm:"type:bigint;not null"`
	RepaymentDate time.Time  `gorm:"type:date;not null"`
	PayrollID     *uuid.UUID `gorm:"type:uuid;index"`
	PaymentMethod string     `gorm:"type:varchar(20);not null;default:'payroll'"`
	CreatedAt     time.Time
}

// Advance is a cash advance against future salary. Amounts are integer FCFA.
type Advance struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Reference string    `gorm:"type:varchar(30);not null;uniqueIndex:uq_advance_reference"`
	AgentID   uuid.UUID `gorm:"type:uuid;not null;index"`

	Amount      int64 `gorm:"type:bigint;not null"`
	Remaining   int64 `gorm:"type:bigint;not null"`
	TotalRepaid int64 `gorm:"type:bigint;not null;default:0"`

	// Recovery policy: a fixed monthly amount wins over a percentage of net
	// pay; MaxRecoveryAmount caps either.
	MonthlyRecovery    int64 `gorm:"type:bigint;not null;default:0"`
	RecoveryPercentage int64 `gorm:"type:bigint;not null;default:0"`
	MaxRecoveryAmount  int64 `gorm:"type:bigint;not null;default:0"`

	Status string `gorm:"type:varchar(20);not null;default:'requested';index"`
	Reason string `gorm:"type:text"`

	RequestedAt time.Time `gorm:"not null"`
	ApprovedBy  *uuid.UUID
	ApprovedAt  *time.Time
	RejectedAt  *time.Time
	// DisbursedAt is the one-way disbursement flag: the advance stays
	// approved (and recoverable) after funds are handed out.
	DisbursedAt  *time.Time
	ClosedAt     *time.Time
	CancelledAt  *time.Time
	CancelReason string `gorm:"type:text"`

	Repayments []Repayment `gorm:"foreignKey:AdvanceID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Ineligibility reasons returned by RecoverableAmount.
const (
	ReasonNotApproved = "advance is not in approved status"
	ReasonNothingLeft = "advance has no remaining balance"
	ReasonNoNetPay    = "payroll net amount is not positive"
	ReasonNoPolicy    = "no recovery policy configured"
	ReasonExceedsNet  = "recovery amount exceeds payroll net pay"
)

// RecoverableAmount applies the recovery policy against a payroll's running
// net amount. It returns the amount to withhold and an empty reason when
// eligible; otherwise zero and why not. Recovery must never push a payroll's
// net pay negative.
func (a *Advance) RecoverableAmount(payrollNetAmount int64) (int64, string) {
	if a.Status != StatusApproved {
		return 0, ReasonNotApproved
	}
	if a.Remaining <= 0 {
		return 0, ReasonNothingLeft
	}
	if payrollNetAmount <= 0 {
		return 0, ReasonNoNetPay
	}

	var amount int64
	switch {
	case a.MonthlyRecovery > 0:
		amount = min(a.MonthlyRecovery, a.Remaining)
	case a.RecoveryPercentage > 0:
		amount = min(money.Percent(payrollNetAmount, a.RecoveryPercentage), a.Remaining)
	}

	if a.MaxRecoveryAmount > 0 && amount > a.MaxRecoveryAmount {
		amount = a.MaxRecoveryAmount
	}

	if amount <= 0 {
		return 0, ReasonNoPolicy
	}
	if amount > payrollNetAmount {
		return 0, ReasonExceedsNet
	}

	return amount, ""
}

// RecomputeTotals derives TotalRepaid and Remaining from the full repayment
// list. Deriving from the list (instead of incremental arithmetic) lets the
// ledger self-heal from any prior drift.
func (a *Advance) RecomputeTotals(repayments []Repayment) {
	var totalRepaid int64
	for _, r := range repayments {
		totalRepaid += r.Amount
	}
	a.TotalRepaid = totalRepaid
	a.Remaining = a.Amount - totalRepaid
	a.Repayments = repayments
}

// IsTerminal reports whether the advance can no longer change state.
func (a *Advance) IsTerminal() bool {
	switch a.Status {
	case StatusRejected, StatusClosed, StatusCancelled:
		return true
	}
	return false
}

// CheckInvariants verifies the ledger's numeric invariants. Used by tests and
// the repayment paths as a final consistency gate.
func (a *Advance) CheckInvariants() error {
	var sum int64
	for _, r := range a.Repayments {
		sum += r.Amount
	}
	if a.TotalRepaid != sum {
		return fmt.Errorf("advance %s: totalRepaid=%d but repayments sum to %d", a.Reference, a.TotalRepaid, sum)
	}
	if a.Remaining != a.Amount-a.TotalRepaid {
		return fmt.Errorf("advance %s: remaining=%d, expected %d", a.Reference, a.Remaining, a.Amount-a.TotalRepaid)
	}
	if a.Remaining < 0 {
		return fmt.Errorf("advance %s: remaining is negative (%d)", a.Reference, a.Remaining)
	}
	if a.Status == StatusClosed && a.Remaining != 0 {
		return fmt.Errorf("advance %s: closed with remaining=%d", a.Reference, a.Remaining)
	}
	return nil
}
