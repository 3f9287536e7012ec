package payment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/contractpay_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/models"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/services/contracts"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/services/wallet"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/testutil"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []JobPaidEvent
	err    error
}

func (n *recordingNotifier) JobPaid(_ context.Context, event JobPaidEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.err
}

type fixture struct {
	db         *gorm.DB
	engine     *Engine
	notifier   *recordingNotifier
	client     *models.Profile
	contractor *models.Profile
	contract   *models.Contract
}

var fixedNow = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

func newFixture(t *testing.T, clientBalance, contractorBalance string) *fixture {
	t.Helper()

	gdb := testutil.NewDB(t)
	n := &recordingNotifier{}
	engine := NewEngine(gdb, contracts.NewRepository(gdb), wallet.NewWalletService(gdb), zerolog.Nop(),
		WithNotifier(n),
		WithClock(func() time.Time { return fixedNow }),
	)

	client := testutil.CreateProfile(t, gdb, models.RoleClient, clientBalance)
	contractor := testutil.CreateProfile(t, gdb, models.RoleContractor, contractorBalance)
	contract := testutil.CreateContract(t, gdb, client, contractor, models.ContractStatusInProgress)

	return &fixture{db: gdb, engine: engine, notifier: n, client: client, contractor: contractor, contract: contract}
}

func (f *fixture) balances(t *testing.T) (string, string) {
	return testutil.Balance(t, f.db, f.client.ID).String(), testutil.Balance(t, f.db, f.contractor.ID).String()
}

func TestPayJobTransfersPrice(t *testing.T) {
	f := newFixture(t, "500", "100")
	job := testutil.CreateJob(t, f.db, f.contract, "200", false)

	paid, err := f.engine.PayJob(context.Background(), f.client, job.ID)
	require.NoError(t, err)
	assert.True(t, paid.Paid)
	require.NotNil(t, paid.PaymentDate)
	assert.True(t, fixedNow.Equal(*paid.PaymentDate))

	client, contractor := f.balances(t)
	assert.Equal(t, "300", client)
	assert.Equal(t, "300", contractor)

	var stored models.Job
	require.NoError(t, f.db.First(&stored, "id = ?", job.ID).Error)
	assert.True(t, stored.Paid)
	require.NotNil(t, stored.PaymentDate)

	require.Len(t, f.notifier.events, 1)
	ev := f.notifier.events[0]
	assert.Equal(t, job.ID, ev.JobID)
	assert.Equal(t, f.client.ID, ev.ClientID)
	assert.Equal(t, f.contractor.ID, ev.ContractorID)
	assert.True(t, testutil.Dec("200").Equal(ev.Amount))
}

func TestPayJobSecondCallIsAlreadyPaid(t *testing.T) {
	f := newFixture(t, "500", "100")
	job := testutil.CreateJob(t, f.db, f.contract, "200", false)

	_, err := f.engine.PayJob(context.Background(), f.client, job.ID)
	require.NoError(t, err)

	_, err = f.engine.PayJob(context.Background(), f.client, job.ID)
	assert.ErrorIs(t, err, apperr.ErrAlreadyPaid)

	client, contractor := f.balances(t)
	assert.Equal(t, "300", client)
	assert.Equal(t, "300", contractor)
	assert.Len(t, f.notifier.events, 1)
}

func TestPayJobInsufficientFunds(t *testing.T) {
	f := newFixture(t, "50", "100")
	job := testutil.CreateJob(t, f.db, f.contract, "200", false)

	_, err := f.engine.PayJob(context.Background(), f.client, job.ID)
	assert.ErrorIs(t, err, apperr.ErrInsufficientFunds)

	client, contractor := f.balances(t)
	assert.Equal(t, "50", client)
	assert.Equal(t, "100", contractor)

	var stored models.Job
	require.NoError(t, f.db.First(&stored, "id = ?", job.ID).Error)
	assert.False(t, stored.Paid)
	assert.Nil(t, stored.PaymentDate)
	assert.Empty(t, f.notifier.events)
}

func TestPayJobExactBalanceEmptiesClient(t *testing.T) {
	f := newFixture(t, "200.50", "0")
	job := testutil.CreateJob(t, f.db, f.contract, "200.50", false)

	_, err := f.engine.PayJob(context.Background(), f.client, job.ID)
	require.NoError(t, err)

	client, contractor := f.balances(t)
	assert.Equal(t, "0", client)
	assert.Equal(t, "200.5", contractor)
}

func TestPayJobPreconditionOrder(t *testing.T) {
	f := newFixture(t, "10", "0")
	paidJob := testutil.CreateJob(t, f.db, f.contract, "200", true)
	unpaidJob := testutil.CreateJob(t, f.db, f.contract, "200", false)

	otherClient := testutil.CreateProfile(t, f.db, models.RoleClient, "1000")

	tests := []struct {
		name   string
		caller *models.Profile
		jobID  uuid.UUID
		want   error
		reason string
	}{
		{"missing job beats role", f.contractor, uuid.New(), apperr.ErrNotFound, ""},
		{"contractor on own job", f.contractor, unpaidJob.ID, apperr.ErrForbidden, "not a client"},
		{"client not party to contract", otherClient, unpaidJob.ID, apperr.ErrForbidden, "not owner"},
		{"ownership beats already paid", otherClient, paidJob.ID, apperr.ErrForbidden, "not owner"},
		{"already paid beats funds", f.client, paidJob.ID, apperr.ErrAlreadyPaid, ""},
		{"insufficient funds", f.client, unpaidJob.ID, apperr.ErrInsufficientFunds, ""},
		{"no caller", nil, unpaidJob.ID, apperr.ErrForbidden, "not a client"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.PayJob(context.Background(), tt.caller, tt.jobID)
			require.ErrorIs(t, err, tt.want)
			if tt.reason != "" {
				assert.Contains(t, err.Error(), tt.reason)
			}
			assert.False(t, apperr.Retryable(err))
		})
	}

	client, contractor := f.balances(t)
	assert.Equal(t, "10", client)
	assert.Equal(t, "0", contractor)
	assert.True(t, testutil.Dec("1000").Equal(testutil.Balance(t, f.db, otherClient.ID)))
}

// Transactions serialize on the single sqlite connection; row locks are not
// taken here.
func TestPayJobConcurrentSameJobPaysOnce(t *testing.T) {
	f := newFixture(t, "1000", "0")
	job := testutil.CreateJob(t, f.db, f.contract, "200", false)

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.engine.PayJob(context.Background(), f.client, job.ID)
		}(i)
	}
	close(start)
	wg.Wait()

	var ok, already int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperr.ErrAlreadyPaid):
			already++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, already)

	client, contractor := f.balances(t)
	assert.Equal(t, "800", client)
	assert.Equal(t, "200", contractor)

	var entries int64
	require.NoError(t, f.db.Model(&models.BalanceEntry{}).Count(&entries).Error)
	assert.EqualValues(t, 2, entries)
}

func TestPayJobConcurrentSharedContractorLosesNoCredit(t *testing.T) {
	f := newFixture(t, "1000", "0")
	second := testutil.CreateProfile(t, f.db, models.RoleClient, "1000")
	secondContract := testutil.CreateContract(t, f.db, second, f.contractor, models.ContractStatusInProgress)

	type payment struct {
		caller *models.Profile
		job    *models.Job
	}
	var payments []payment
	for i := 0; i < 5; i++ {
		payments = append(payments,
			payment{f.client, testutil.CreateJob(t, f.db, f.contract, "10", false)},
			payment{second, testutil.CreateJob(t, f.db, secondContract, "15", false)},
		)
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(payments))
	for _, p := range payments {
		wg.Add(1)
		go func(p payment) {
			defer wg.Done()
			_, err := f.engine.PayJob(context.Background(), p.caller, p.job.ID)
			errs <- err
		}(p)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, "950", testutil.Balance(t, f.db, f.client.ID).String())
	assert.Equal(t, "925", testutil.Balance(t, f.db, second.ID).String())
	assert.Equal(t, "125", testutil.Balance(t, f.db, f.contractor.ID).String())
}

func TestPayJobLedgerConservesMoney(t *testing.T) {
	f := newFixture(t, "500", "100")
	job := testutil.CreateJob(t, f.db, f.contract, "123.45", false)

	_, err := f.engine.PayJob(context.Background(), f.client, job.ID)
	require.NoError(t, err)

	var entries []models.BalanceEntry
	require.NoError(t, f.db.Where("reference_id = ?", job.ID).Find(&entries).Error)
	require.Len(t, entries, 2)

	sum := entries[0].Amount.Add(entries[1].Amount)
	assert.True(t, sum.IsZero(), "ledger entries must cancel out, got %s", sum)
	for _, e := range entries {
		switch e.ProfileID {
		case f.client.ID:
			assert.Equal(t, models.BalanceEntryDebit, e.Type)
			assert.Equal(t, "-123.45", e.Amount.String())
		case f.contractor.ID:
			assert.Equal(t, models.BalanceEntryCredit, e.Type)
			assert.Equal(t, "123.45", e.Amount.String())
		default:
			t.Fatalf("unexpected ledger profile %s", e.ProfileID)
		}
	}
}

func TestPayJobStorageFailure(t *testing.T) {
	f := newFixture(t, "500", "100")
	job := testutil.CreateJob(t, f.db, f.contract, "200", false)

	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = f.engine.PayJob(context.Background(), f.client, job.ID)
	require.ErrorIs(t, err, apperr.ErrStorage)
	assert.True(t, apperr.Retryable(err))
	assert.Empty(t, f.notifier.events)
}

func TestPayJobFailedMarkPaidRollsBackTransfer(t *testing.T) {
	f := newFixture(t, "500", "100")
	job := testutil.CreateJob(t, f.db, f.contract, "200", false)

	// both balance updates and ledger inserts run before the job update fails
	err := f.db.Callback().Update().Before("gorm:update").Register("test:fail_jobs_update", func(tx *gorm.DB) {
		if tx.Statement.Table == "jobs" {
			_ = tx.AddError(errors.New("disk full"))
		}
	})
	require.NoError(t, err)

	_, err = f.engine.PayJob(context.Background(), f.client, job.ID)
	require.ErrorIs(t, err, apperr.ErrStorage)
	assert.Empty(t, f.notifier.events)

	client, contractor := f.balances(t)
	assert.Equal(t, "500", client)
	assert.Equal(t, "100", contractor)

	var entries int64
	require.NoError(t, f.db.Model(&models.BalanceEntry{}).Count(&entries).Error)
	assert.Zero(t, entries)

	var stored models.Job
	require.NoError(t, f.db.First(&stored, "id = ?", job.ID).Error)
	assert.False(t, stored.Paid)
	assert.Nil(t, stored.PaymentDate)
}

func TestPayJobCancelledContextAborts(t *testing.T) {
	f := newFixture(t, "500", "100")
	job := testutil.CreateJob(t, f.db, f.contract, "200", false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.engine.PayJob(ctx, f.client, job.ID)
	require.ErrorIs(t, err, apperr.ErrStorage)
	assert.ErrorIs(t, err, context.Canceled)

	client, contractor := f.balances(t)
	assert.Equal(t, "500", client)
	assert.Equal(t, "100", contractor)
}

func TestPayJobNotifierFailureKeepsPayment(t *testing.T) {
	f := newFixture(t, "500", "100")
	f.notifier.err = errors.New("redis down")
	job := testutil.CreateJob(t, f.db, f.contract, "200", false)

	paid, err := f.engine.PayJob(context.Background(), f.client, job.ID)
	require.NoError(t, err)
	assert.True(t, paid.Paid)

	client, _ := f.balances(t)
	assert.Equal(t, "300", client)
}
