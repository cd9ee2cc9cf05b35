package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bizledger-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction is a single ledger entry: a sale, purchase, expense or income
type Transaction struct {
	ID             uuid.UUID            `gorm:"type:uuid;primary_key" json:"id"`
	TransactionNo  string               `gorm:"size:50;uniqueIndex;not null" json:"transaction_no"`
	Type           enum.TransactionType `gorm:"size:20;not null;index" json:"type"`
	Date           time.Time            `gorm:"not null;index" json:"date"`
	Subtotal       decimal.Decimal      `gorm:"type:decimal(15,2);not null;default:0" json:"subtotal"`
	TaxAmount      decimal.Decimal      `gorm:"type:decimal(15,2);not null;default:0" json:"tax_amount"`
	DiscountAmount decimal.Decimal      `gorm:"type:decimal(15,2);not null;default:0" json:"discount_amount"`
	TotalAmount    decimal.Decimal      `gorm:"type:decimal(15,2);not null;default:0" json:"total_amount"`
	PaymentStatus  enum.PaymentStatus   `gorm:"size:20;not null;default:'PENDING';index" json:"payment_status"`
	PaymentMethod  string               `gorm:"size:50" json:"payment_method"`
	CustomerID     *uuid.UUID           `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	SupplierID     *uuid.UUID           `gorm:"type:uuid;index" json:"supplier_id,omitempty"`
	Category       *string              `gorm:"size:100" json:"category,omitempty"`
	Description    *string              `gorm:"type:text" json:"description,omitempty"`
	Notes          *string              `gorm:"type:text" json:"notes,omitempty"`
	Currency       string               `gorm:"size:3;not null;default:'INR'" json:"currency"`
	ExchangeRate   decimal.Decimal      `gorm:"type:decimal(15,6);not null;default:1" json:"exchange_rate"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`

	// Relationships
	Customer *Party            `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Supplier *Party            `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Items    []TransactionItem `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE" json:"items"`
	Payments []Payment         `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE" json:"payments"`
}

// BeforeCreate generates a UUID before creating a new transaction
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}

// TransactionItem is a line on a SALE or PURCHASE
type TransactionItem struct {
	ID            uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	TransactionID uuid.UUID           `gorm:"type:uuid;not null;index" json:"transaction_id"`
	ItemID        uuid.UUID           `gorm:"type:uuid;not null;index" json:"item_id"`
	Position      int                 `gorm:"not null;default:0" json:"position"`
	Quantity      int                 `gorm:"not null" json:"quantity"`
	UnitPrice     decimal.Decimal     `gorm:"type:decimal(15,2);not null" json:"unit_price"`
	Discount      decimal.Decimal     `gorm:"type:decimal(15,2);not null;default:0" json:"discount"`
	TaxRate       decimal.Decimal     `gorm:"type:decimal(5,2);not null;default:0" json:"tax_rate"`
	CGSTRate      decimal.NullDecimal `gorm:"type:decimal(5,2);column:cgst_rate" json:"cgst_rate"`
	SGSTRate      decimal.NullDecimal `gorm:"type:decimal(5,2);column:sgst_rate" json:"sgst_rate"`
	IGSTRate      decimal.NullDecimal `gorm:"type:decimal(5,2);column:igst_rate" json:"igst_rate"`
	CGSTAmount    decimal.NullDecimal `gorm:"type:decimal(15,2);column:cgst_amount" json:"cgst_amount"`
	SGSTAmount    decimal.NullDecimal `gorm:"type:decimal(15,2);column:sgst_amount" json:"sgst_amount"`
	IGSTAmount    decimal.NullDecimal `gorm:"type:decimal(15,2);column:igst_amount" json:"igst_amount"`
	TaxAmount     decimal.Decimal     `gorm:"type:decimal(15,2);not null;default:0" json:"tax_amount"`
	TotalAmount   decimal.Decimal     `gorm:"type:decimal(15,2);not null" json:"total_amount"`
	CreatedAt     time.Time           `json:"created_at"`

	// Relationships
	Item *Item `gorm:"foreignKey:ItemID" json:"item,omitempty"`
}

// BeforeCreate generates a UUID before creating a new transaction item
func (i *TransactionItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the TransactionItem model
func (TransactionItem) TableName() string {
	return "transaction_items"
}
