// Package testutil provides fixtures shared by storage-backed tests.
package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Windi-Fikriyansyah/contractpay_be/internal/db"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/models"
)

// NewDB opens a migrated in-memory SQLite database. It is limited to one
// connection, so concurrent transactions queue behind each other whole.
// The sqlite dialect drops FOR UPDATE, so postgres row-lock contention and
// lock ordering are not exercised by tests built on it.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(0)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func CreateProfile(t testing.TB, gdb *gorm.DB, role models.Role, balance string) *models.Profile {
	t.Helper()

	id := uuid.New()
	p := &models.Profile{
		ID:           id,
		FirstName:    "Test",
		LastName:     string(role),
		Profession:   "Programmer",
		Email:        id.String() + "@example.com",
		PasswordHash: "x",
		Role:         role,
		Balance:      Dec(balance),
	}
	require.NoError(t, gdb.Create(p).Error)
	return p
}

func CreateContract(t testing.TB, gdb *gorm.DB, client, contractor *models.Profile, status models.ContractStatus) *models.Contract {
	t.Helper()

	c := &models.Contract{
		ClientID:     client.ID,
		ContractorID: contractor.ID,
		Terms:        "bla bla bla",
		Status:       status,
	}
	require.NoError(t, gdb.Create(c).Error)
	return c
}

func CreateJob(t testing.TB, gdb *gorm.DB, contract *models.Contract, price string, paid bool) *models.Job {
	t.Helper()

	j := &models.Job{
		ContractID:  contract.ID,
		Description: "work",
		Price:       Dec(price),
		Paid:        paid,
	}
	if paid {
		now := time.Now().UTC()
		j.PaymentDate = &now
	}
	require.NoError(t, gdb.Create(j).Error)
	return j
}

// Balance reads the stored balance, bypassing every service.
func Balance(t testing.TB, gdb *gorm.DB, id uuid.UUID) decimal.Decimal {
	t.Helper()

	var p models.Profile
	require.NoError(t, gdb.First(&p, "id = ?", id).Error)
	return p.Balance
}
