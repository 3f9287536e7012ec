package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContractStatus string

const (
	ContractStatusNew        ContractStatus = "new"
	ContractStatusInProgress ContractStatus = "in_progress"
	ContractStatusTerminated ContractStatus = "terminated"
)

// Contract binds one client profile to one contractor profile. Parties are
// plain foreign keys; nothing is loaded implicitly.
type Contract struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID     uuid.UUID      `gorm:"type:uuid;index;not null;check:chk_contracts_parties,client_id <> contractor_id" json:"client_id"`
	ContractorID uuid.UUID      `gorm:"type:uuid;index;not null" json:"contractor_id"`
	Terms        string         `gorm:"type:text" json:"terms"`
	Status       ContractStatus `gorm:"type:varchar(20);not null;default:'new';index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Contract) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

func (c *Contract) Active() bool {
	return c.Status != ContractStatusTerminated
}
