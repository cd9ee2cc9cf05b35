package request

import (
	"github.com/google/uuid"
	"github.com/sangkips/bizledger-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// TransactionLineRequest represents one item line of a sale or purchase
type TransactionLineRequest struct {
	ItemID    uuid.UUID           `json:"item_id" binding:"required"`
	Quantity  int                 `json:"quantity"`
	UnitPrice *decimal.Decimal    `json:"unit_price"`
	Discount  decimal.Decimal     `json:"discount"`
	TaxRate   *decimal.Decimal    `json:"tax_rate"`
	CGSTRate  decimal.NullDecimal `json:"cgst_rate"`
	SGSTRate  decimal.NullDecimal `json:"sgst_rate"`
	IGSTRate  decimal.NullDecimal `json:"igst_rate"`
}

// TransactionRequest is the body of both create and update; update replaces every field
type TransactionRequest struct {
	Type           enum.TransactionType     `json:"type" binding:"required"`
	Date           string                   `json:"date"`
	Amount         *decimal.Decimal         `json:"amount"`
	TaxAmount      decimal.Decimal          `json:"tax_amount"`
	DiscountAmount decimal.Decimal          `json:"discount_amount"`
	PaymentStatus  enum.PaymentStatus       `json:"payment_status"`
	PaymentMethod  string                   `json:"payment_method" binding:"omitempty,max=50"`
	CustomerID     *uuid.UUID               `json:"customer_id"`
	SupplierID     *uuid.UUID               `json:"supplier_id"`
	Category       *string                  `json:"category"`
	Description    *string                  `json:"description"`
	Notes          *string                  `json:"notes"`
	Currency       string                   `json:"currency" binding:"omitempty,len=3"`
	ExchangeRate   decimal.NullDecimal      `json:"exchange_rate"`
	Items          []TransactionLineRequest `json:"items" binding:"dive"`
}

// TransactionFilterRequest represents transaction list parameters
type TransactionFilterRequest struct {
	Type          string `form:"type"`
	CustomerID    string `form:"customer_id"`
	SupplierID    string `form:"supplier_id"`
	PaymentStatus string `form:"payment_status"`
	Search        string `form:"search"`
	StartDate     string `form:"start_date"`
	EndDate       string `form:"end_date"`
	Page          int    `form:"page"`
	PerPage       int    `form:"per_page"`
	Limit         int    `form:"limit"`
}
