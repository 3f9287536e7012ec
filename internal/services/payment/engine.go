package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/contractpay_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/models"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/services/authz"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/services/contracts"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/services/wallet"
)

const defaultTimeout = 5 * time.Second

// JobPaidEvent is emitted once per committed payment.
type JobPaidEvent struct {
	JobID        uuid.UUID       `json:"job_id"`
	ContractID   uuid.UUID       `json:"contract_id"`
	ClientID     uuid.UUID       `json:"client_id"`
	ContractorID uuid.UUID       `json:"contractor_id"`
	Amount       decimal.Decimal `json:"amount"`
	PaidAt       time.Time       `json:"paid_at"`
}

// Notifier is told about payments after they commit. It never takes part in
// the transaction.
type Notifier interface {
	JobPaid(ctx context.Context, event JobPaidEvent) error
}

type Engine struct {
	db       *gorm.DB
	jobs     *contracts.Repository
	wallet   *wallet.WalletService
	notifier Notifier
	log      zerolog.Logger
	timeout  time.Duration
	now      func() time.Time
}

type Option func(*Engine)

func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithTimeout bounds the whole payment transaction, lock waits included.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(db *gorm.DB, jobs *contracts.Repository, wallet *wallet.WalletService, log zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		db:      db,
		jobs:    jobs,
		wallet:  wallet,
		log:     log.With().Str("component", "payment").Logger(),
		timeout: defaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PayJob moves the job price from the contract's client to its contractor
// and marks the job paid, all in one transaction. Checks run in this order
// and the first failure is returned with nothing written:
//
//  1. the job exists (ErrNotFound)
//  2. the caller is a client (ErrForbidden, "not a client")
//  3. the caller is the client on the job's contract (ErrForbidden, "not owner")
//  4. the job is not paid yet (ErrAlreadyPaid)
//  5. the client balance covers the price (ErrInsufficientFunds)
//
// Any other failure, including the timeout, aborts the transaction and is
// returned as a StorageError. The engine never retries.
func (e *Engine) PayJob(ctx context.Context, caller *models.Profile, jobID uuid.UUID) (*models.Job, error) {
	txCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var (
		paid     *models.Job
		contract *models.Contract
	)

	err := e.db.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		job, c, err := e.jobs.GetJobWithContract(tx, jobID)
		if err != nil {
			return err
		}
		if !authz.RequireRole(caller, models.RoleClient) {
			return apperr.Forbidden("not a client")
		}
		if !authz.IsContractClient(caller.ID, c) {
			return apperr.Forbidden("not owner")
		}
		if job.Paid {
			return apperr.ErrAlreadyPaid
		}

		// profiles first (ascending id), then the job
		profiles, err := e.wallet.LockProfiles(tx, c.ClientID, c.ContractorID)
		if err != nil {
			return err
		}
		locked, err := e.jobs.LockJob(tx, job.ID)
		if err != nil {
			return err
		}
		if locked.Paid {
			return apperr.ErrAlreadyPaid
		}
		if profiles[c.ClientID].Balance.LessThan(locked.Price) {
			return apperr.ErrInsufficientFunds
		}

		paidAt := e.now().UTC()
		ref := wallet.Reference{
			ID: locked.ID,
			Metadata: map[string]any{
				"job_id":      locked.ID.String(),
				"contract_id": c.ID.String(),
			},
		}

		ref.Description = "payment for job " + locked.ID.String()
		ref.Metadata["counterparty_id"] = c.ContractorID.String()
		if _, err := e.wallet.ApplyDelta(tx, c.ClientID, locked.Price.Neg(), ref); err != nil {
			return err
		}

		ref.Description = "earning for job " + locked.ID.String()
		ref.Metadata["counterparty_id"] = c.ClientID.String()
		if _, err := e.wallet.ApplyDelta(tx, c.ContractorID, locked.Price, ref); err != nil {
			return err
		}

		if err := e.jobs.MarkPaid(tx, locked.ID, paidAt); err != nil {
			return err
		}

		locked.Paid = true
		locked.PaymentDate = &paidAt
		paid = locked
		contract = c
		return nil
	})

	if err != nil {
		if apperr.IsDomain(err) {
			e.log.Debug().Err(err).Str("job_id", jobID.String()).Msg("payment rejected")
			return nil, err
		}
		e.log.Error().Err(err).Str("job_id", jobID.String()).Msg("payment aborted")
		return nil, apperr.Storage(err)
	}

	e.log.Info().
		Str("job_id", paid.ID.String()).
		Str("client_id", contract.ClientID.String()).
		Str("contractor_id", contract.ContractorID.String()).
		Str("amount", paid.Price.String()).
		Msg("job paid")

	if e.notifier != nil {
		event := JobPaidEvent{
			JobID:        paid.ID,
			ContractID:   contract.ID,
			ClientID:     contract.ClientID,
			ContractorID: contract.ContractorID,
			Amount:       paid.Price,
			PaidAt:       *paid.PaymentDate,
		}
		if err := e.notifier.JobPaid(ctx, event); err != nil {
			e.log.Warn().Err(err).Str("job_id", paid.ID.String()).Msg("job paid notification failed")
		}
	}

	return paid, nil
}
