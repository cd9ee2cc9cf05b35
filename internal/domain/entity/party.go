package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bizledger-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Party is a customer or supplier. Transactions and invoices reference parties but never own them.
type Party struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Type         enum.PartyType  `gorm:"size:20;not null;index" json:"type"`
	Name         string          `gorm:"size:255;not null" json:"name"`
	Email        *string         `gorm:"size:255" json:"email,omitempty"`
	Phone        *string         `gorm:"size:50" json:"phone,omitempty"`
	Address      *string         `gorm:"type:text" json:"address,omitempty"`
	TaxNumber    *string         `gorm:"size:50" json:"tax_number,omitempty"`
	CreditLimit  decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"credit_limit"`
	PaymentTerms int             `gorm:"not null;default:0" json:"payment_terms"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new party
func (p *Party) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Party model
func (Party) TableName() string {
	return "parties"
}

// HasEmail reports whether the party can receive reminders.
func (p *Party) HasEmail() bool {
	return p.Email != nil && *p.Email != ""
}
