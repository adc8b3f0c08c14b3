package contract_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/contract"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeContractRepository struct {
	createFn             func(ctx context.Context, c *contract.Contract) error
	findByIDFn           func(ctx context.Context, id string) (*contract.Contract, error)
	findAllByAgentFn     func(ctx context.Context, agentID string) ([]contract.Contract, error)
	updateFn             func(ctx context.Context, c *contract.Contract) error
	findActiveCoveringFn func(ctx context.Context, agentID string, date time.Time) (*contract.Contract, error)
}

func (f *fakeContractRepository) Create(ctx context.Context, c *contract.Contract) error {
	if f.createFn != nil {
		return f.createFn(ctx, c)
	}
	return nil
}

func (f *fakeContractRepository) FindByID(ctx context.Context, id string) (*contract.Contract, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeContractRepository) FindAllByAgent(ctx context.Context, agentID string) ([]contract.Contract, error) {
	if f.findAllByAgentFn != nil {
		return f.findAllByAgentFn(ctx, agentID)
	}
	return nil, nil
}

func (f *fakeContractRepository) Update(ctx context.Context, c *contract.Contract) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, c)
	}
	return nil
}

func (f *fakeContractRepository) FindActiveCovering(ctx context.Context, agentID string, date time.Time) (*contract.Contract, error) {
	if f.findActiveCoveringFn != nil {
		return f.findActiveCoveringFn(ctx, agentID, date)
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeCounterRepository struct {
	next int64
}

func (f *fakeCounterRepository) GetNextValue(ctx context.Context, entityType string, year int) (int64, error) {
	f.next++
	return f.next, nil
}

func newContractService(repo *fakeContractRepository) contract.Service {
	return contract.NewService(repo, &fakeCounterRepository{})
}

func TestContractService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a draft contract", func(t *testing.T) {
		repo := &fakeContractRepository{}
		var created *contract.Contract
		repo.createFn = func(ctx context.Context, c *contract.Contract) error {
			created = c
			return nil
		}

		resp, err := newContractService(repo).Create(ctx, contract.CreateContractRequest{
			AgentID:    uuid.New().String(),
			Type:       "cdi",
			StartDate:  "2025-01-01",
			BaseSalary: 150000,
		})

		assert.NoError(t, err)
		assert.NotNil(t, created)
		assert.Equal(t, contract.StatusDraft, resp.Status)
		assert.Equal(t, fmt.Sprintf("CTR-%d-0001", time.Now().Year()), resp.Reference)
	})

	t.Run("rejects a malformed agent id", func(t *testing.T) {
		repo := &fakeContractRepository{}
		repo.createFn = func(ctx context.Context, c *contract.Contract) error {
			t.Fatal("create must not be reached")
			return nil
		}

		_, err := newContractService(repo).Create(ctx, contract.CreateContractRequest{
			AgentID:    "not-a-uuid",
			Type:       "cdi",
			StartDate:  "2025-01-01",
			BaseSalary: 150000,
		})

		assert.ErrorIs(t, err, contract.ErrInvalidAgentID)
	})

	t.Run("rejects end date before start date", func(t *testing.T) {
		_, err := newContractService(&fakeContractRepository{}).Create(ctx, contract.CreateContractRequest{
			AgentID:    uuid.New().String(),
			Type:       "cdd",
			StartDate:  "2025-03-01",
			EndDate:    "2025-02-01",
			BaseSalary: 150000,
		})

		assert.ErrorIs(t, err, contract.ErrInvalidContractDates)
	})
}

func TestContractService_Activate(t *testing.T) {
	ctx := context.Background()

	t.Run("activates a draft", func(t *testing.T) {
		repo := &fakeContractRepository{}
		repo.findByIDFn = func(ctx context.Context, id string) (*contract.Contract, error) {
			return &contract.Contract{ID: uuid.New(), Status: contract.StatusDraft}, nil
		}

		resp, err := newContractService(repo).Activate(ctx, uuid.New().String())
		assert.NoError(t, err)
		assert.Equal(t, contract.StatusActive, resp.Status)
	})

	t.Run("rejects non-draft", func(t *testing.T) {
		repo := &fakeContractRepository{}
		repo.findByIDFn = func(ctx context.Context, id string) (*contract.Contract, error) {
			return &contract.Contract{ID: uuid.New(), Status: contract.StatusActive}, nil
		}

		_, err := newContractService(repo).Activate(ctx, uuid.New().String())
		assert.ErrorIs(t, err, contract.ErrContractNotDraft)
	})
}

func TestContractService_Terminate_AlreadyTerminated(t *testing.T) {
	repo := &fakeContractRepository{}
	repo.findByIDFn = func(ctx context.Context, id string) (*contract.Contract, error) {
		return &contract.Contract{ID: uuid.New(), Status: contract.StatusTerminated}, nil
	}

	_, err := newContractService(repo).Terminate(context.Background(), uuid.New().String(), "")
	assert.ErrorIs(t, err, contract.ErrContractTerminated)
}

func TestContractService_ActiveCovering_NoneFound(t *testing.T) {
	repo := &fakeContractRepository{}
	repo.findActiveCoveringFn = func(ctx context.Context, agentID string, date time.Time) (*contract.Contract, error) {
		return nil, gorm.ErrRecordNotFound
	}

	_, err := newContractService(repo).ActiveCovering(context.Background(), uuid.New().String(), time.Now())
	assert.ErrorIs(t, err, contract.ErrNoActiveContract)
}

func TestContractService_GetByID_NotFound(t *testing.T) {
	repo := &fakeContractRepository{}
	repo.findByIDFn = func(ctx context.Context, id string) (*contract.Contract, error) {
		return nil, gorm.ErrRecordNotFound
	}

	_, err := newContractService(repo).GetByID(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, contract.ErrContractNotFound)
}
