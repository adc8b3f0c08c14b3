package agent

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Agent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Matricule string    `gorm:"type:varchar(30);not null;uniqueIndex:uq_agent_matricule"`
	FullName  string    `gorm:"type:varchar(120);not null"`
	Email     string    `gorm:"type:varchar(120)"`
	Phone     string    `gorm:"type:varchar(30)"`
	Status    string    `gorm:"type:varchar(20);not null;default:'active';index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
