package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Job is a priced unit of work under a contract. Paid only moves from false
// to true, and PaymentDate is set in the same update.
type Job struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID  uuid.UUID       `gorm:"type:uuid;index;not null" json:"contract_id"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null;check:chk_jobs_price,price > 0" json:"price"`
	Paid        bool            `gorm:"not null;default:false;index" json:"paid"`
	PaymentDate *time.Time      `json:"payment_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) (err error) {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return
}
