package agent

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=agent_repo.go -destination=mock/agent_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, agent *Agent) error
	FindAll(ctx context.Context) ([]Agent, error)
	FindByID(ctx context.Context, id string) (*Agent, error)
	Update(ctx context.Context, agent *Agent) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, agent *Agent) error {
	return r.db.WithContext(ctx).Create(agent).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Agent, error) {
	var agents []Agent
	err := r.db.WithContext(ctx).
		Order("full_name ASC").
		Find(&agents).Error
	return agents, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Agent, error) {
	var agent Agent
	err := r.db.WithContext(ctx).
		First(&agent, "id = ?", id).Error
	return &agent, err
}

func (r *repository) Update(ctx context.Context, agent *Agent) error {
	return r.db.WithContext(ctx).Save(agent).Error
}
