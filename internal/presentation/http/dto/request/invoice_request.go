package request

import (
	"github.com/google/uuid"
	"github.com/sangkips/bizledger-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// InvoiceLineRequest represents one invoice line; item_id is optional for free-text lines
type InvoiceLineRequest struct {
	ItemID      *uuid.UUID          `json:"item_id"`
	Description string              `json:"description" binding:"omitempty,max=500"`
	Quantity    int                 `json:"quantity"`
	UnitPrice   *decimal.Decimal    `json:"unit_price"`
	Discount    decimal.Decimal     `json:"discount"`
	TaxRate     *decimal.Decimal    `json:"tax_rate"`
	CGSTRate    decimal.NullDecimal `json:"cgst_rate"`
	SGSTRate    decimal.NullDecimal `json:"sgst_rate"`
	IGSTRate    decimal.NullDecimal `json:"igst_rate"`
}

// InvoiceRequest is the body of both create and update
type InvoiceRequest struct {
	CustomerID uuid.UUID            `json:"customer_id" binding:"required"`
	IssueDate  string               `json:"issue_date"`
	DueDate    string               `json:"due_date"`
	Status     enum.InvoiceStatus   `json:"status"`
	Notes      *string              `json:"notes"`
	Terms      *string              `json:"terms"`
	Items      []InvoiceLineRequest `json:"items" binding:"dive"`
}

// FromTransactionRequest optionally overrides fields copied from the sale
type FromTransactionRequest struct {
	IssueDate string  `json:"issue_date"`
	DueDate   string  `json:"due_date"`
	Notes     *string `json:"notes"`
	Terms     *string `json:"terms"`
}

// PaymentRequest represents a payment received against an invoice
type PaymentRequest struct {
	Amount        *decimal.Decimal   `json:"amount" binding:"required"`
	PaymentDate   string             `json:"payment_date"`
	Status        enum.PaymentStatus `json:"status"`
	PaymentMethod string             `json:"payment_method" binding:"omitempty,max=50"`
	Reference     *string            `json:"reference"`
	Notes         *string            `json:"notes"`
}

// ReminderRequest selects the reminder template or overrides it
type ReminderRequest struct {
	ReminderType  string `json:"reminder_type"`
	CustomMessage string `json:"custom_message"`
}

// InvoiceFilterRequest represents invoice list parameters
type InvoiceFilterRequest struct {
	Status     string `form:"status"`
	CustomerID string `form:"customer_id"`
	Search     string `form:"search"`
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
	Limit      int    `form:"limit"`
}

// InvoiceAnalyticsRequest represents invoice analytics parameters
type InvoiceAnalyticsRequest struct {
	Days       int    `form:"days" binding:"omitempty,min=1,max=3650"`
	CustomerID string `form:"customer_id"`
}
