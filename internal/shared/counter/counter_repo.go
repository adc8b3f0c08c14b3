package counter

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -destination=mock/counter_repo_mock.go -package=mock . Repository
type Repository interface {
	GetNextValue(ctx context.Context, entityType string, year int) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// GetNextValue issues the next sequence number for one entity type within one
// year. The raw UPSERT keeps increment-and-read atomic under concurrent
// issuance.
func (r *repository) GetNextValue(ctx context.Context, entityType string, year int) (int64, error) {
	var nextValue int64

	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO reference_counters (entity_type, year, last_value, updated_at)
		VALUES (?, ?, 1, now())
		ON CONFLICT (entity_type, year) DO UPDATE
		SET last_value = reference_counters.last_value + 1, updated_at = now()
		RETURNING last_value
	`, entityType, year).Scan(&nextValue).Error

	if err != nil {
		return 0, err
	}

	return nextValue, nil
}
