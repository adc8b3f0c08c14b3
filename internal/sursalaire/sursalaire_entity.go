package sursalaire

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "pending"
	StatusCredited  = "credited"
	StatusCancelled = "cancelled"
)

// AdvanceDeduction is one advance recovery captured by the aggregation scan.
// The list on a sursalaire is an immutable snapshot: later payroll edits do
// not retroactively change an already-created sursalaire.
type AdvanceDeduction struct {
	AdvanceID       uuid.UUID `json:"advance_id"`
	PayrollID       uuid.UUID `json:"payroll_id"`
	AgentID         uuid.UUID `json:"agent_id"`
	DeductionAmount int64     `json:"deduction_amount"`
	DeductionDate   time.Time `json:"deduction_date"`
}

type Sursalaire struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Reference     string    `gorm:"type:varchar(30);not null;uniqueIndex:uq_sursalaire_reference"`
	BeneficiaryID uuid.UUID `gorm:"type:uuid;not null;index"`

	PeriodStart time.Time `gorm:"type:date;not null;index"`
	PeriodEnd   time.Time `gorm:"type:date;not null;index"`

	AdvanceDeductions      []AdvanceDeduction `gorm:"type:jsonb;serializer:json"`
	TotalAdvanceDeductions int64              `gorm:"type:bigint;not null;default:0"`
	// CreditedAmount never exceeds TotalAdvanceDeductions.
	CreditedAmount int64 `gorm:"type:bigint;not null;default:0"`

	Status string `gorm:"type:varchar(20);not null;default:'pending';index"`

	BeneficiaryPayrollID *uuid.UUID `gorm:"type:uuid"`
	CreditedAt           *time.Time
	CreditedBy           *uuid.UUID `gorm:"type:uuid"`
	CancelledAt          *time.Time
	CancelReason         string `gorm:"type:text"`

	CreatedBy *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Sursalaire) TableName() string {
	return "sursalaires"
}
