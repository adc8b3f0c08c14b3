package counter

import (
	"context"
	"fmt"
	"time"
)

// Entity type keys handed to the counter table.
const (
	TypeAgent      = "agent"
	TypeContract   = "contract"
	TypePayroll    = "payroll"
	TypeAdvance    = "advance"
	TypeSursalaire = "sursalaire"
)

// ReferenceCounter is the gorm model backing reference_counters.
type ReferenceCounter struct {
	EntityType string `gorm:"primaryKey;type:varchar(30)"`
	Year       int    `gorm:"primaryKey"`
	LastValue  int64  `gorm:"not null;default:0"`
	UpdatedAt  time.Time
}

// NextReference formats the next sequential human-readable identifier for an
// entity type, e.g. PAY-2025-0042.
func NextReference(ctx context.Context, repo Repository, prefix, entityType string, at time.Time) (string, error) {
	year := at.Year()
	n, err := repo.GetNextValue(ctx, entityType, year)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%04d", prefix, year, n), nil
}

// FallbackReference derives an identifier from the clock for the rare case
// where the sequential one collides at insert time. Nanosecond suffix keeps
// two retries in the same millisecond apart.
func FallbackReference(prefix string, at time.Time) string {
	return fmt.Sprintf("%s-%d-%s%03d", prefix, at.Year(), at.Format("150405"), at.Nanosecond()/1_000_000)
}
