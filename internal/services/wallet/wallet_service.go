package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/contractpay_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/models"
)

// WalletService owns profile balances. Reads go to the database every time;
// nothing is cached between calls.
type WalletService struct {
	DB *gorm.DB
}

func NewWalletService(db *gorm.DB) *WalletService {
	return &WalletService{DB: db}
}

// Reference describes why a balance moved. It is copied into the ledger.
type Reference struct {
	ID          uuid.UUID
	Description string
	Metadata    map[string]any
}

func (s *WalletService) GetBalance(ctx context.Context, profileID uuid.UUID) (decimal.Decimal, error) {
	var p models.Profile
	err := s.DB.WithContext(ctx).Select("id", "balance").First(&p, "id = ?", profileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, apperr.ErrNotFound
	}
	if err != nil {
		return decimal.Zero, apperr.Storage(err)
	}
	return p.Balance, nil
}

// LockProfiles takes row locks on the given profiles in ascending id order,
// so two transactions touching the same pair never wait on each other in
// opposite directions. Must be called within a DB transaction.
func (s *WalletService) LockProfiles(tx *gorm.DB, ids ...uuid.UUID) (map[uuid.UUID]*models.Profile, error) {
	ordered := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			ordered = append(ordered, id)
		}
	}
	sort.Slice(ordered, func(i, j int) bool {
		return bytes.Compare(ordered[i][:], ordered[j][:]) < 0
	})

	locked := make(map[uuid.UUID]*models.Profile, len(ordered))
	for _, id := range ordered {
		var p models.Profile
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile %s: %w", id, apperr.ErrNotFound)
		}
		if err != nil {
			return nil, err
		}
		locked[id] = &p
	}
	return locked, nil
}

// ApplyDelta adds delta (negative for a debit) to the profile balance and
// writes the matching ledger entry. A result below zero is rejected with
// ErrInsufficientFunds and nothing is written.
// This should be called within a DB transaction.
func (s *WalletService) ApplyDelta(tx *gorm.DB, profileID uuid.UUID, delta decimal.Decimal, ref Reference) (decimal.Decimal, error) {
	if delta.IsZero() {
		return decimal.Zero, errors.New("balance delta must not be zero")
	}

	var p models.Profile
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", profileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, fmt.Errorf("profile %s: %w", profileID, apperr.ErrNotFound)
	}
	if err != nil {
		return decimal.Zero, err
	}

	next := p.Balance.Add(delta)
	if next.IsNegative() {
		return decimal.Zero, apperr.ErrInsufficientFunds
	}

	result := tx.Model(&models.Profile{}).
		Where("id = ?", profileID).
		Update("balance", next)
	if result.Error != nil {
		return decimal.Zero, result.Error
	}
	if result.RowsAffected == 0 {
		return decimal.Zero, fmt.Errorf("profile %s: balance not updated", profileID)
	}

	entryType := models.BalanceEntryCredit
	if delta.IsNegative() {
		entryType = models.BalanceEntryDebit
	}

	entry := models.BalanceEntry{
		ID:          uuid.New(),
		ProfileID:   profileID,
		Amount:      delta,
		Type:        entryType,
		Description: ref.Description,
	}
	if ref.ID != uuid.Nil {
		refID := ref.ID
		entry.ReferenceID = &refID
	}
	if len(ref.Metadata) > 0 {
		raw, err := json.Marshal(ref.Metadata)
		if err != nil {
			return decimal.Zero, err
		}
		entry.Metadata = datatypes.JSON(raw)
	}

	if err := tx.Create(&entry).Error; err != nil {
		return decimal.Zero, err
	}

	return next, nil
}

func (s *WalletService) ListEntries(ctx context.Context, profileID uuid.UUID, limit int) ([]models.BalanceEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	entries := []models.BalanceEntry{}
	err := s.DB.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return entries, nil
}
