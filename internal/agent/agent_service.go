package agent

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/shared/apperror"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/shared/counter"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrAgentNotFound = apperror.New(
	apperror.CodeNotFound,
	"agent not found",
	http.StatusNotFound,
)

var ErrAgentInactive = apperror.New(
	apperror.CodeBusinessRule,
	"agent is inactive",
	http.StatusUnprocessableEntity,
)

//go:generate mockgen -source=agent_service.go -destination=mock/agent_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateAgentRequest) (AgentResponse, error)
	GetAll(ctx context.Context) ([]AgentResponse, error)
	GetByID(ctx context.Context, id string) (AgentResponse, error)
	Update(ctx context.Context, id string, req UpdateAgentRequest) (AgentResponse, error)
	Deactivate(ctx context.Context, id string) error
}

type service struct {
	repo    Repository
	counter counter.Repository
	logger  *zap.Logger
}

func NewService(repo Repository, counterRepo counter.Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("agent.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("agent.service")
	}
	return &service{repo: repo, counter: counterRepo, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateAgentRequest) (AgentResponse, error) {
	now := time.Now()
	matricule, err := counter.NextReference(ctx, s.counter, "AGT", counter.TypeAgent, now)
	if err != nil {
		s.logger.Error("generate matricule failed", zap.Error(err))
		return AgentResponse{}, apperror.WithDetail(apperror.ErrPersistence, err)
	}

	a := &Agent{
		ID:        uuid.New(),
		Matricule: matricule,
		FullName:  req.FullName,
		Email:     req.Email,
		Phone:     req.Phone,
		Status:    StatusActive,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		if isUniqueViolation(err) {
			// Sequential matricule collided with a concurrent insert;
			// fall back to a clock-derived one rather than failing.
			a.Matricule = counter.FallbackReference("AGT", now)
			if retryErr := s.repo.Create(ctx, a); retryErr == nil {
				s.logger.Info("agent created with fallback matricule",
					zap.String("agent_id", a.ID.String()),
					zap.String("matricule", a.Matricule),
				)
				return mapToResponse(*a), nil
			}
		}
		s.logger.Error("create agent persist failed", zap.Error(err))
		return AgentResponse{}, apperror.WithDetail(apperror.ErrPersistence, err)
	}

	s.logger.Info("agent created",
		zap.String("agent_id", a.ID.String()),
		zap.String("matricule", a.Matricule),
	)
	return mapToResponse(*a), nil
}

func (s *service) GetAll(ctx context.Context) ([]AgentResponse, error) {
	agents, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(agents), nil
}

func (s *service) GetByID(ctx context.Context, id string) (AgentResponse, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return AgentResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*a), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateAgentRequest) (AgentResponse, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return AgentResponse{}, mapRepositoryError(err)
	}

	a.FullName = req.FullName
	a.Email = req.Email
	a.Phone = req.Phone

	if err := s.repo.Update(ctx, a); err != nil {
		return AgentResponse{}, err
	}

	return mapToResponse(*a), nil
}

func (s *service) Deactivate(ctx context.Context, id string) error {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}

	a.Status = StatusInactive
	if err := s.repo.Update(ctx, a); err != nil {
		return err
	}

	s.logger.Info("agent deactivated", zap.String("agent_id", id))
	return nil
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAgentNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
