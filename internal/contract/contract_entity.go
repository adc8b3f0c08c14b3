package contract

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusDraft      = "draft"
	StatusActive     = "active"
	StatusTerminated = "terminated"
)

const (
	TypeCDI     = "cdi"
	TypeCDD     = "cdd"
	TypeMission = "mission"
)

type Salary struct {
	BaseSalary  int64 `gorm:"type:bigint;not null;default:0"`
	Indemnities int64 `gorm:"type:bigint;not null;default:0"`
}

// Contract is the work contract. Financials are stored as integer FCFA.
type Contract struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Reference string     `gorm:"type:varchar(30);not null;uniqueIndex:uq_contract_reference"`
	AgentID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	Type      string     `gorm:"type:varchar(20);not null"`
	StartDate time.Time  `gorm:"type:date;not null;index"`
	EndDate   *time.Time `gorm:"type:date"`
	Salary    Salary     `gorm:"embedded;embeddedPrefix:salary_"`
	Status    string     `gorm:"type:varchar(20);not null;default:'draft';index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Covers reports whether the contract validity window contains date.
func (c *Contract) Covers(date time.Time) bool {
	if date.Before(c.StartDate) {
		return false
	}
	if c.EndDate != nil && date.After(*c.EndDate) {
		return false
	}
	return true
}
