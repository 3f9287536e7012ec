package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BalanceEntryType string

const (
	BalanceEntryCredit BalanceEntryType = "credit" // contractor receives job price
	BalanceEntryDebit  BalanceEntryType = "debit"  // client pays job price
)

// BalanceEntry is the ledger row written next to every balance change.
// Amount is signed: debits are negative.
type BalanceEntry struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID   uuid.UUID        `gorm:"type:uuid;index;not null" json:"profile_id"`
	Amount      decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"amount"`
	Type        BalanceEntryType `gorm:"type:varchar(20);not null" json:"type"`
	Description string           `gorm:"type:text" json:"description"`
	ReferenceID *uuid.UUID       `gorm:"type:uuid;index" json:"reference_id,omitempty"`
	Metadata    datatypes.JSON   `json:"metadata,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

func (e *BalanceEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}

// All lists every model managed by AutoMigrate, in dependency order.
func All() []interface{} {
	return []interface{}{&Profile{}, &Contract{}, &Job{}, &BalanceEntry{}}
}
