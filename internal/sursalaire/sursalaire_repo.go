package sursalaire

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=sursalaire_repo.go -destination=mock/sursalaire_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, sursalaire *Sursalaire) error
	FindByID(ctx context.Context, id string) (*Sursalaire, error)
	FindAllByBeneficiary(ctx context.Context, beneficiaryID string) ([]Sursalaire, error)
	Update(ctx context.Context, sursalaire *Sursalaire) error
	// FindNonCancelledOverlapping returns the beneficiary's first pending or
	// credited sursalaire whose period intersects [periodStart, periodEnd],
	// nil when none.
	FindNonCancelledOverlapping(ctx context.Context, beneficiaryID uuid.UUID, periodStart, periodEnd time.Time) (*Sursalaire, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, sursalaire *Sursalaire) error {
	return r.db.WithContext(ctx).Create(sursalaire).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Sursalaire, error) {
	var s Sursalaire
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *repository) FindAllByBeneficiary(ctx context.Context, beneficiaryID string) ([]Sursalaire, error) {
	var list []Sursalaire
	db := r.db.WithContext(ctx)
	if beneficiaryID != "" {
		db = db.Where("beneficiary_id = ?", beneficiaryID)
	}
	err := db.Order("period_start DESC").Find(&list).Error
	return list, err
}

func (r *repository) Update(ctx context.Context, sursalaire *Sursalaire) error {
	return r.db.WithContext(ctx).Save(sursalaire).Error
}

func (r *repository) FindNonCancelledOverlapping(ctx context.Context, beneficiaryID uuid.UUID, periodStart, periodEnd time.Time) (*Sursalaire, error) {
	var s Sursalaire
	err := r.db.WithContext(ctx).
		Where("beneficiary_id = ?", beneficiaryID).
		Where("status <> ?", StatusCancelled).
		Where("period_start <= ?", periodEnd).
		Where("period_end >= ?", periodStart).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
