package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bizledger-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice is a bill issued to a customer. It may be copied from a sale, but it
// only points at that transaction and never owns it.
type Invoice struct {
	ID               uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceNo        string             `gorm:"size:50;uniqueIndex;not null" json:"invoice_no"`
	Status           enum.InvoiceStatus `gorm:"size:20;not null;default:'DRAFT';index" json:"status"`
	CustomerID       uuid.UUID          `gorm:"type:uuid;not null;index" json:"customer_id"`
	TransactionID    *uuid.UUID         `gorm:"type:uuid;index" json:"transaction_id,omitempty"`
	IssueDate        time.Time          `gorm:"not null;index" json:"issue_date"`
	DueDate          time.Time          `gorm:"not null;index" json:"due_date"`
	Subtotal         decimal.Decimal    `gorm:"type:decimal(15,2);not null;default:0" json:"subtotal"`
	TaxAmount        decimal.Decimal    `gorm:"type:decimal(15,2);not null;default:0" json:"tax_amount"`
	DiscountAmount   decimal.Decimal    `gorm:"type:decimal(15,2);not null;default:0" json:"discount_amount"`
	TotalAmount      decimal.Decimal    `gorm:"type:decimal(15,2);not null;default:0" json:"total_amount"`
	PaidAmount       decimal.Decimal    `gorm:"type:decimal(15,2);not null;default:0" json:"paid_amount"`
	BalanceAmount    decimal.Decimal    `gorm:"type:decimal(15,2);not null;default:0" json:"balance_amount"`
	RemindersSent    int                `gorm:"not null;default:0" json:"reminders_sent"`
	LastReminderDate *time.Time         `json:"last_reminder_date,omitempty"`
	Notes            *string            `gorm:"type:text" json:"notes,omitempty"`
	Terms            *string            `gorm:"type:text" json:"terms,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`

	// Relationships
	Customer    *Party        `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Transaction *Transaction  `gorm:"foreignKey:TransactionID;constraint:OnDelete:SET NULL" json:"-"`
	Items       []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
	Payments    []Payment     `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"payments"`
}

// BeforeCreate generates a UUID before creating a new invoice
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// BeforeSave keeps the balance consistent with the totals on every write
func (i *Invoice) BeforeSave(tx *gorm.DB) error {
	i.SyncBalance()
	return nil
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// SyncBalance sets BalanceAmount = max(0, TotalAmount - PaidAmount).
func (i *Invoice) SyncBalance() {
	balance := i.TotalAmount.Sub(i.PaidAmount)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	i.BalanceAmount = balance
}

// DaysOverdue is the number of started days since the due date; negative while not yet due.
func (i *Invoice) DaysOverdue(now time.Time) int {
	return ceilDays(now.Sub(i.DueDate))
}

// InvoiceItem is a line on an invoice
type InvoiceItem struct {
	ID          uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID   uuid.UUID           `gorm:"type:uuid;not null;index" json:"invoice_id"`
	ItemID      *uuid.UUID          `gorm:"type:uuid;index" json:"item_id,omitempty"`
	Position    int                 `gorm:"not null;default:0" json:"position"`
	Description string              `gorm:"size:500;not null" json:"description"`
	Quantity    int                 `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal     `gorm:"type:decimal(15,2);not null" json:"unit_price"`
	Discount    decimal.Decimal     `gorm:"type:decimal(15,2);not null;default:0" json:"discount"`
	TaxRate     decimal.Decimal     `gorm:"type:decimal(5,2);not null;default:0" json:"tax_rate"`
	CGSTRate    decimal.NullDecimal `gorm:"type:decimal(5,2);column:cgst_rate" json:"cgst_rate"`
	SGSTRate    decimal.NullDecimal `gorm:"type:decimal(5,2);column:sgst_rate" json:"sgst_rate"`
	IGSTRate    decimal.NullDecimal `gorm:"type:decimal(5,2);column:igst_rate" json:"igst_rate"`
	CGSTAmount  decimal.NullDecimal `gorm:"type:decimal(15,2);column:cgst_amount" json:"cgst_amount"`
	SGSTAmount  decimal.NullDecimal `gorm:"type:decimal(15,2);column:sgst_amount" json:"sgst_amount"`
	IGSTAmount  decimal.NullDecimal `gorm:"type:decimal(15,2);column:igst_amount" json:"igst_amount"`
	TaxAmount   decimal.Decimal     `gorm:"type:decimal(15,2);not null;default:0" json:"tax_amount"`
	TotalAmount decimal.Decimal     `gorm:"type:decimal(15,2);not null" json:"total_amount"`
	CreatedAt   time.Time           `json:"created_at"`

	// Relationships
	Item *Item `gorm:"foreignKey:ItemID" json:"item,omitempty"`
}

// BeforeCreate generates a UUID before creating a new invoice item
func (i *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the InvoiceItem model
func (InvoiceItem) TableName() string {
	return "invoice_items"
}

func ceilDays(d time.Duration) int {
	days := d / (24 * time.Hour)
	if d > days*24*time.Hour {
		days++
	}
	return int(days)
}
