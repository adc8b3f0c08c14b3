package agent_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/agent"
	agentMock "github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/agent/mock"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type agentServiceDeps struct {
	service agent.Service
	repo    *agentMock.MockRepository
}

type stubCounterRepository struct {
	next int64
}

func (s *stubCounterRepository) GetNextValue(ctx context.Context, entityType string, year int) (int64, error) {
	s.next++
	return s.next, nil
}

func setupAgentServiceTest(t *testing.T) *agentServiceDeps {
	t.Helper()
	ctrl := gomock.NewController(t)

	repo := agentMock.NewMockRepository(ctrl)
	svc := agent.NewService(repo, &stubCounterRepository{})

	return &agentServiceDeps{service: svc, repo: repo}
}

func TestAgentService_Create(t *testing.T) {
	ctx := context.Background()
	deps := setupAgentServiceTest(t)

	var created *agent.Agent
	deps.repo.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, a *agent.Agent) error {
			created = a
			return nil
		})

	resp, err := deps.service.Create(ctx, agent.CreateAgentRequest{
		FullName: "Awa Ndiaye",
		Email:    "awa.ndiaye@example.com",
		Phone:    "+221770000000",
	})

	assert.NoError(t, err)
	assert.NotNil(t, created)
	assert.Equal(t, "Awa Ndiaye", resp.FullName)
	assert.Equal(t, agent.StatusActive, resp.Status)
	assert.Regexp(t, `^AGT-\d{4}-0001$`, resp.Matricule)
}

func TestAgentService_Create_FallbackMatriculeOnCollision(t *testing.T) {
	ctx := context.Background()
	deps := setupAgentServiceTest(t)

	uniqueViolation := &pgconn.PgError{Code: "23505", ConstraintName: "uq_agent_matricule"}
	first := deps.repo.EXPECT().Create(ctx, gomock.Any()).Return(uniqueViolation)
	deps.repo.EXPECT().Create(ctx, gomock.Any()).After(first).Return(nil)

	resp, err := deps.service.Create(ctx, agent.CreateAgentRequest{FullName: "Moussa Diop"})

	assert.NoError(t, err)
	// The retried matricule is clock-derived, not the sequential one.
	assert.NotRegexp(t, `^AGT-\d{4}-0001$`, resp.Matricule)
	assert.Regexp(t, `^AGT-\d{4}-\d{9}$`, resp.Matricule)
}

func TestAgentService_Create_PersistFailure(t *testing.T) {
	ctx := context.Background()
	deps := setupAgentServiceTest(t)

	deps.repo.EXPECT().Create(ctx, gomock.Any()).Return(errors.New("connection refused"))

	_, err := deps.service.Create(ctx, agent.CreateAgentRequest{FullName: "Fatou Sarr"})

	assert.Error(t, err)
}

func TestAgentService_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	deps := setupAgentServiceTest(t)

	id := uuid.NewString()
	deps.repo.EXPECT().FindByID(ctx, id).Return(nil, gorm.ErrRecordNotFound)

	_, err := deps.service.GetByID(ctx, id)

	assert.ErrorIs(t, err, agent.ErrAgentNotFound)
}

func TestAgentService_Update(t *testing.T) {
	ctx := context.Background()
	deps := setupAgentServiceTest(t)

	existing := &agent.Agent{
		ID:        uuid.New(),
		Matricule: "AGT-2025-0001",
		FullName:  "Awa Ndiaye",
		Status:    agent.StatusActive,
	}
	deps.repo.EXPECT().FindByID(ctx, existing.ID.String()).Return(existing, nil)
	deps.repo.EXPECT().Update(ctx, existing).Return(nil)

	resp, err := deps.service.Update(ctx, existing.ID.String(), agent.UpdateAgentRequest{
		FullName: "Awa Ndiaye Fall",
		Phone:    "+221770000001",
	})

	assert.NoError(t, err)
	assert.Equal(t, "Awa Ndiaye Fall", resp.FullName)
	// The matricule never changes after creation.
	assert.Equal(t, "AGT-2025-0001", resp.Matricule)
}

func TestAgentService_Deactivate(t *testing.T) {
	ctx := context.Background()
	deps := setupAgentServiceTest(t)

	existing := &agent.Agent{ID: uuid.New(), Status: agent.StatusActive}
	deps.repo.EXPECT().FindByID(ctx, existing.ID.String()).Return(existing, nil)
	deps.repo.EXPECT().
		Update(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, a *agent.Agent) error {
			assert.Equal(t, agent.StatusInactive, a.Status)
			return nil
		})

	err := deps.service.Deactivate(ctx, existing.ID.String())

	assert.NoError(t, err)
}
