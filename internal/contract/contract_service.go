package contract

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/shared/apperror"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/shared/counter"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrContractNotFound = apperror.New(
		apperror.CodeNotFound,
		"contract not found",
		http.StatusNotFound,
	)
	ErrNoActiveContract = apperror.New(
		apperror.CodeBusinessRule,
		"no active contract covers the requested date",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidContractDates = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before end_date, format YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrContractNotDraft = apperror.New(
		apperror.CodeInvalidState,
		"contract can only be activated from draft",
		http.StatusConflict,
	)
	ErrContractTerminated = apperror.New(
		apperror.CodeInvalidState,
		"contract is already terminated",
		http.StatusConflict,
	)
	ErrInvalidAgentID = apperror.New(
		apperror.CodeInvalidInput,
		"agent_id must be a valid UUID",
		http.StatusBadRequest,
	)
)

//go:generate mockgen -source=contract_service.go -destination=mock/contract_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateContractRequest) (ContractResponse, error)
	GetByID(ctx context.Context, id string) (ContractResponse, error)
	GetAllByAgent(ctx context.Context, agentID string) ([]ContractResponse, error)
	Activate(ctx context.Context, id string) (ContractResponse, error)
	Terminate(ctx context.Context, id string, endDate string) (ContractResponse, error)
	// ActiveCovering is the registry query used by the payroll generator.
	ActiveCovering(ctx context.Context, agentID string, date time.Time) (*Contract, error)
}

type service struct {
	repo    Repository
	counter counter.Repository
	logger  *zap.Logger
}

func NewService(repo Repository, counterRepo counter.Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("contract.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("contract.service")
	}
	return &service{repo: repo, counter: counterRepo, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateContractRequest) (ContractResponse, error) {
	agentID, err := uuid.Parse(req.AgentID)
	if err != nil {
		return ContractResponse{}, apperror.WithDetail(ErrInvalidAgentID, err)
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return ContractResponse{}, ErrInvalidContractDates
	}

	var endDate *time.Time
	if req.EndDate != "" {
		ed, err := parseDate(req.EndDate)
		if err != nil || ed.Before(startDate) {
			return ContractResponse{}, ErrInvalidContractDates
		}
		endDate = &ed
	}

	reference, err := counter.NextReference(ctx, s.counter, "CTR", counter.TypeContract, time.Now())
	if err != nil {
		s.logger.Error("generate contract reference failed", zap.Error(err))
		return ContractResponse{}, apperror.WithDetail(apperror.ErrPersistence, err)
	}

	c := &Contract{
		ID:        uuid.New(),
		Reference: reference,
		AgentID:   agentID,
		Type:      req.Type,
		StartDate: startDate,
		EndDate:   endDate,
		Salary: Salary{
			BaseSalary:  req.BaseSalary,
			Indemnities: req.Indemnities,
		},
		Status: StatusDraft,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		s.logger.Error("create contract persist failed", zap.Error(err))
		return ContractResponse{}, apperror.WithDetail(apperror.ErrPersistence, err)
	}

	s.logger.Info("contract created",
		zap.String("contract_id", c.ID.String()),
		zap.String("agent_id", req.AgentID),
	)
	return mapToResponse(*c), nil
}

func (s *service) GetByID(ctx context.Context, id string) (ContractResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ContractResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*c), nil
}

func (s *service) GetAllByAgent(ctx context.Context, agentID string) ([]ContractResponse, error) {
	contracts, err := s.repo.FindAllByAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(contracts), nil
}

func (s *service) Activate(ctx context.Context, id string) (ContractResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ContractResponse{}, mapRepositoryError(err)
	}

	if c.Status != StatusDraft {
		return ContractResponse{}, ErrContractNotDraft
	}

	c.Status = StatusActive
	if err := s.repo.Update(ctx, c); err != nil {
		return ContractResponse{}, err
	}

	s.logger.Info("contract activated", zap.String("contract_id", id))
	return mapToResponse(*c), nil
}

func (s *service) Terminate(ctx context.Context, id string, endDate string) (ContractResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ContractResponse{}, mapRepositoryError(err)
	}

	if c.Status == StatusTerminated {
		return ContractResponse{}, ErrContractTerminated
	}

	if endDate != "" {
		ed, err := parseDate(endDate)
		if err != nil {
			return ContractResponse{}, ErrInvalidContractDates
		}
		c.EndDate = &ed
	}

	c.Status = StatusTerminated
	if err := s.repo.Update(ctx, c); err != nil {
		return ContractResponse{}, err
	}

	s.logger.Info("contract terminated", zap.String("contract_id", id))
	return mapToResponse(*c), nil
}

func (s *service) ActiveCovering(ctx context.Context, agentID string, date time.Time) (*Contract, error) {
	c, err := s.repo.FindActiveCovering(ctx, agentID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveContract
		}
		return nil, err
	}
	return c, nil
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrContractNotFound
	}
	return err
}
