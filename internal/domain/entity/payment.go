package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bizledger-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment settles money against exactly one invoice or one transaction
type Payment struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID     *uuid.UUID         `gorm:"type:uuid;index" json:"invoice_id,omitempty"`
	TransactionID *uuid.UUID         `gorm:"type:uuid;index" json:"transaction_id,omitempty"`
	Amount        decimal.Decimal    `gorm:"type:decimal(15,2);not null" json:"amount"`
	PaymentDate   time.Time          `gorm:"not null;index" json:"payment_date"`
	Status        enum.PaymentStatus `gorm:"size:20;not null;default:'COMPLETED';index" json:"status"`
	PaymentMethod string             `gorm:"size:50" json:"payment_method"`
	Reference     *string            `gorm:"size:100" json:"reference,omitempty"`
	Notes         *string            `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new payment
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}
