package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Role string

const (
	RoleClient     Role = "client"
	RoleContractor Role = "contractor"
)

func (r Role) Valid() bool {
	return r == RoleClient || r == RoleContractor
}

// Profile is a marketplace participant. Balance is only ever changed by the
// wallet service inside a payment transaction.
type Profile struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName    string          `gorm:"type:varchar(80);not null" json:"first_name"`
	LastName     string          `gorm:"type:varchar(80);not null" json:"last_name"`
	Profession   string          `gorm:"type:varchar(120)" json:"profession"`
	Email        string          `gorm:"type:varchar(150);uniqueIndex;not null" json:"email"`
	PasswordHash string          `gorm:"not null" json:"-"`
	Role         Role            `gorm:"type:varchar(20);not null;index" json:"role"`
	Balance      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0;check:chk_profiles_balance,balance >= 0" json:"balance"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

func (p *Profile) FullName() string {
	return p.FirstName + " " + p.LastName
}
