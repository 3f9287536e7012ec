package contracts

import (
	"context"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/contractpay_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/models"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/services/authz"
)

// Service is the read side used by the handlers: every lookup is checked
// against the authorization guard before it is returned.
type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetContract(ctx context.Context, callerID, contractID uuid.UUID) (*models.Contract, error) {
	contract, err := s.repo.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccessContract(callerID, contract) {
		return nil, apperr.Forbidden("contract does not belong to the calling profile")
	}
	return contract, nil
}

func (s *Service) GetJob(ctx context.Context, callerID, jobID uuid.UUID) (*models.Job, error) {
	job, contract, err := s.repo.GetJobWithContract(s.repo.DB.WithContext(ctx), jobID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if !authz.CanAccessJob(callerID, job, contract) {
		return nil, apperr.Forbidden("job does not belong to the calling profile")
	}
	return job, nil
}

func (s *Service) ListActiveContracts(ctx context.Context, callerID uuid.UUID) ([]models.Contract, error) {
	return s.repo.ListActiveContractsFor(ctx, callerID)
}

func (s *Service) ListUnpaidJobs(ctx context.Context, callerID uuid.UUID) ([]models.Job, error) {
	return s.repo.ListUnpaidJobsFor(ctx, callerID)
}
