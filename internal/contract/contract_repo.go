package contract

import (
	"context"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=contract_repo.go -destination=mock/contract_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, contract *Contract) error
	FindByID(ctx context.Context, id string) (*Contract, error)
	FindAllByAgent(ctx context.Context, agentID string) ([]Contract, error)
	Update(ctx context.Context, contract *Contract) error
	// FindActiveCovering resolves the active contract whose validity window
	// covers date, preferring the most recently started one.
	FindActiveCovering(ctx context.Context, agentID string, date time.Time) (*Contract, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, contract *Contract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Contract, error) {
	var c Contract
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *repository) FindAllByAgent(ctx context.Context, agentID string) ([]Contract, error) {
	var contracts []Contract
	err := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("start_date DESC").
		Find(&contracts).Error
	return contracts, err
}

func (r *repository) Update(ctx context.Context, contract *Contract) error {
	return r.db.WithContext(ctx).Save(contract).Error
}

func (r *repository) FindActiveCovering(ctx context.Context, agentID string, date time.Time) (*Contract, error) {
	var c Contract
	err := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Where("status = ?", StatusActive).
		Where("start_date <= ?", date).
		Where("end_date IS NULL OR end_date >= ?", date).
		Order("start_date DESC").
		First(&c).Error
	return &c, err
}
