package contracts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/contractpay_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/models"
)

// Repository reads contracts and jobs and performs the single job mutation
// this service allows: marking a job paid.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) GetContract(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	var c models.Contract
	err := r.DB.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return &c, nil
}

// GetJobWithContract loads a job and its parent contract. Pass a transaction
// handle as db to read inside it; the rows are not locked.
func (r *Repository) GetJobWithContract(db *gorm.DB, jobID uuid.UUID) (*models.Job, *models.Contract, error) {
	var job models.Job
	err := db.First(&job, "id = ?", jobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	var contract models.Contract
	err = db.First(&contract, "id = ?", job.ContractID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// a job without its contract is a broken row, not a missing job
		return nil, nil, errors.New("job " + jobID.String() + " references missing contract")
	}
	if err != nil {
		return nil, nil, err
	}
	return &job, &contract, nil
}

// LockJob re-reads a job under a row lock.
// This should be called within a DB transaction.
func (r *Repository) LockJob(tx *gorm.DB, jobID uuid.UUID) (*models.Job, error) {
	var job models.Job
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&job, "id = ?", jobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// MarkPaid flips paid and stamps the payment date in one conditional update.
// A job that is already paid is reported as ErrAlreadyPaid and left as is.
// This should be called within a DB transaction.
func (r *Repository) MarkPaid(tx *gorm.DB, jobID uuid.UUID, paymentDate time.Time) error {
	result := tx.Model(&models.Job{}).
		Where("id = ? AND paid = ?", jobID, false).
		Updates(map[string]interface{}{
			"paid":         true,
			"payment_date": paymentDate,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.ErrAlreadyPaid
	}
	return nil
}

func (r *Repository) ListActiveContractsFor(ctx context.Context, profileID uuid.UUID) ([]models.Contract, error) {
	contracts := []models.Contract{}
	err := r.DB.WithContext(ctx).
		Where("(client_id = ? OR contractor_id = ?) AND status <> ?", profileID, profileID, models.ContractStatusTerminated).
		Order("created_at ASC").
		Find(&contracts).Error
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return contracts, nil
}

func (r *Repository) ListUnpaidJobsFor(ctx context.Context, profileID uuid.UUID) ([]models.Job, error) {
	jobs := []models.Job{}
	err := r.DB.WithContext(ctx).
		Joins("JOIN contracts ON contracts.id = jobs.contract_id").
		Where("(contracts.client_id = ? OR contracts.contractor_id = ?)", profileID, profileID).
		Where("contracts.status <> ?", models.ContractStatusTerminated).
		Where("jobs.paid = ?", false).
		Order("jobs.created_at ASC").
		Find(&jobs).Error
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return jobs, nil
}
