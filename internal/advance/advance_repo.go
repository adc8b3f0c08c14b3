package advance

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=advance_repo.go -destination=mock/advance_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, advance *Advance) error
	FindByID(ctx context.Context, id string) (*Advance, error)
	FindAllByAgent(ctx context.Context, agentID string) ([]Advance, error)
	// FindRecoverable lists approved advances with a remaining balance,
	// oldest requested first.
	FindRecoverable(ctx context.Context, agentID uuid.UUID) ([]Advance, error)
	Update(ctx context.Context, advance *Advance) error
	CreateRepayment(ctx context.Context, repayment *Repayment) error
	ListRepayments(ctx context.Context, advanceID uuid.UUID) ([]Repayment, error)
	// DeleteRepaymentsByPayroll removes the repayment entries a payroll
	// recorded on this advance and returns how many rows went away. Zero is
	// not an error: restoration must be idempotent.
	DeleteRepaymentsByPayroll(ctx context.Context, advanceID, payrollID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, advance *Advance) error {
	return r.db.WithContext(ctx).Create(advance).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Advance, error) {
	var advance Advance
	err := r.db.WithContext(ctx).
		Preload("Repayments").
		First(&advance, "id = ?", id).Error
	return &advance, err
}

func (r *repository) FindAllByAgent(ctx context.Context, agentID string) ([]Advance, error) {
	var advances []Advance
	db := r.db.WithContext(ctx).Preload("Repayments")
	if agentID != "" {
		db = db.Where("agent_id = ?", agentID)
	}
	err := db.Order("requested_at DESC").Find(&advances).Error
	return advances, err
}

func (r *repository) FindRecoverable(ctx context.Context, agentID uuid.UUID) ([]Advance, error) {
	var advances []Advance
	err := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Where("status = ?", StatusApproved).
		Where("remaining > 0").
		Order("requested_at ASC").
		Find(&advances).Error
	return advances, err
}

func (r *repository) Update(ctx context.Context, advance *Advance) error {
	// Save would also write the association; repayment rows are managed
	// through their own methods.
	return r.db.WithContext(ctx).
		Omit("Repayments").
		Save(advance).Error
}

func (r *repository) CreateRepayment(ctx context.Context, repayment *Repayment) error {
	return r.db.WithContext(ctx).Create(repayment).Error
}

func (r *repository) ListRepayments(ctx context.Context, advanceID uuid.UUID) ([]Repayment, error) {
	var repayments []Repayment
	err := r.db.WithContext(ctx).
		Where("advance_id = ?", advanceID).
		Order("repayment_date ASC, created_at ASC").
		Find(&repayments).Error
	return repayments, err
}

func (r *repository) DeleteRepaymentsByPayroll(ctx context.Context, advanceID, payrollID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("advance_id = ?", advanceID).
		Where("payroll_id = ?", payrollID).
		Delete(&Repayment{})
	return res.RowsAffected, res.Error
}
