package payroll

import (
	"time"

	"github.com/google/uuid"
)

// Financials are stored in whole FCFA (int64) to avoid floating point error.

// Gains are the earning components of a payroll. GrossSalary is derived by
// ComputeTotals and must equal the sum of the other fields.
type Gains struct {
	BaseSalary       int64 `gorm:"type:bigint;not null;default:0"`
	Transport        int64 `gorm:"type:bigint;not null;default:0"`
	Risk             int64 `gorm:"type:bigint;not null;default:0"`
	TotalIndemnities int64 `gorm:"type:bigint;not null;default:0"`
	// Overtime pay amount, not an hour count.
	OvertimeHours int64 `gorm:"type:bigint;not null;default:0"`
	Sursalaire    int64 `gorm:"type:bigint;not null;default:0"`
	GrossSalary   int64 `gorm:"type:bigint;not null;default:0"`
}

// Deductions are the withholding components. AutresRetenues carries both
// manual deductions and advance recoveries. TotalRetenues is derived by
// ComputeTotals.
type Deductions struct {
	Accompte       int64 `gorm:"type:bigint;not null;default:0"`
	AutresRetenues int64 `gorm:"type:bigint;not null;default:0"`
	Absences       int64 `gorm:"type:bigint;not null;default:0"`
	TotalRetenues  int64 `gorm:"type:bigint;not null;default:0"`
}

// EmployerCharges are employer-side contributions, derived from gross and
// excluded from the net amount.
type EmployerCharges struct {
	CnpsEmployer int64 `gorm:"type:bigint;not null;default:0"`
}

// AdvanceApplied records one advance recovery performed by this payroll. The
// list is the payroll's own snapshot; deleting the payroll walks it to
// restore each advance.
type AdvanceApplied struct {
	AdvanceID uuid.UUID `json:"advance_id"`
	Amount    int64     `json:"amount"`
}

type Payroll struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Reference      string    `gorm:"type:varchar(30);not null;uniqueIndex:uq_payroll_reference"`
	AgentID        uuid.UUID `gorm:"type:uuid;not null;index:idx_payroll_agent_period,unique"`
	WorkContractID uuid.UUID `gorm:"type:uuid;not null"`

	PeriodStart time.Time `gorm:"type:date;not null;index:idx_payroll_agent_period,unique"`
	PeriodEnd   time.Time `gorm:"type:date;not null;index:idx_payroll_agent_period,unique"`

	Gains           Gains           `gorm:"embedded;embeddedPrefix:gain_"`
	Deductions      Deductions      `gorm:"embedded;embeddedPrefix:deduction_"`
	EmployerCharges EmployerCharges `gorm:"embedded;embeddedPrefix:charge_"`

	AdvancesApplied []AdvanceApplied `gorm:"type:jsonb;serializer:json"`

	NetAmount int64 `gorm:"type:bigint;not null;default:0"`

	// Paid is one-way false -> true. A paid payroll is immutable.
	Paid   bool       `gorm:"not null;default:false;index"`
	PaidAt *time.Time `gorm:"index"`

	CreatedBy *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Payroll) TableName() string {
	return "payrolls"
}

// AppliedAmount returns the recovery recorded against advanceID, 0 when none.
func (p *Payroll) AppliedAmount(advanceID uuid.UUID) int64 {
	for _, a := range p.AdvancesApplied {
		if a.AdvanceID == advanceID {
			return a.Amount
		}
	}
	return 0
}

// TotalAdvancesApplied sums the recoveries this payroll performed.
func (p *Payroll) TotalAdvancesApplied() int64 {
	var total int64
	for _, a := range p.AdvancesApplied {
		total += a.Amount
	}
	return total
}
