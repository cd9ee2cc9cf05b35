package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bizledger-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// AggregateFilter narrows transaction aggregates. Zero values mean "no constraint".
type AggregateFilter struct {
	From          time.Time
	To            time.Time
	Types         []enum.TransactionType
	PaymentStatus enum.PaymentStatus
	CustomerID    *uuid.UUID
}

// TypeTotalsRow is the per-type sum of transaction amounts
type TypeTotalsRow struct {
	Type           enum.TransactionType
	Count          int64
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
}

// TransactionPointRow is one transaction reduced to what time-bucketing needs
type TransactionPointRow struct {
	ID            uuid.UUID
	Type          enum.TransactionType
	Date          time.Time
	TotalAmount   decimal.Decimal
	TaxAmount     decimal.Decimal
	PaymentMethod string
	PaymentStatus enum.PaymentStatus
	CustomerID    *uuid.UUID
}

// ItemMovementRow is the quantity and value of one item moved by one transaction type
type ItemMovementRow struct {
	ItemID      uuid.UUID
	ItemName    string
	SKU         string
	Type        enum.TransactionType
	Quantity    int64
	TotalAmount decimal.Decimal
}

// StockItemRow is an item with its category name, for valuation
type StockItemRow struct {
	ID            uuid.UUID
	Name          string
	SKU           string
	CategoryID    *uuid.UUID
	CategoryName  *string
	StockQuantity int
	MinStock      int
	UnitPrice     decimal.Decimal
	CostPrice     decimal.NullDecimal
	TaxRate       decimal.Decimal
	IsService     bool
	IsActive      bool
}

// PartyTotalRow ranks customers or suppliers by transacted value
type PartyTotalRow struct {
	PartyID     uuid.UUID
	PartyName   string
	Count       int64
	TotalAmount decimal.Decimal
}

// OutstandingInvoiceRow is an open receivable
type OutstandingInvoiceRow struct {
	ID            uuid.UUID
	InvoiceNo     string
	CustomerID    uuid.UUID
	CustomerName  string
	Status        enum.InvoiceStatus
	DueDate       time.Time
	BalanceAmount decimal.Decimal
}

// PendingPurchaseRow is an unpaid purchase, i.e. an open payable
type PendingPurchaseRow struct {
	ID            uuid.UUID
	TransactionNo string
	SupplierID    *uuid.UUID
	SupplierName  *string
	PaymentTerms  *int
	Date          time.Time
	TotalAmount   decimal.Decimal
}

// InvoicePointRow is one invoice reduced to what invoice analytics needs
type InvoicePointRow struct {
	ID            uuid.UUID
	InvoiceNo     string
	Status        enum.InvoiceStatus
	CustomerID    uuid.UUID
	CustomerName  string
	IssueDate     time.Time
	DueDate       time.Time
	TotalAmount   decimal.Decimal
	PaidAmount    decimal.Decimal
	BalanceAmount decimal.Decimal
}

// TaxLineRow is one taxed line as stored, tagged with the owning document type
type TaxLineRow struct {
	Type          enum.TransactionType
	TaxRate       decimal.Decimal
	CGSTRate      decimal.NullDecimal
	SGSTRate      decimal.NullDecimal
	IGSTRate      decimal.NullDecimal
	TaxableAmount decimal.Decimal
	TaxAmount     decimal.Decimal
	CGSTAmount    decimal.NullDecimal
	SGSTAmount    decimal.NullDecimal
	IGSTAmount    decimal.NullDecimal
}

// CustomerExposureRow is a customer's credit limit against their open invoice balance
type CustomerExposureRow struct {
	PartyID     uuid.UUID
	PartyName   string
	Email       *string
	CreditLimit decimal.Decimal
	Outstanding decimal.Decimal
}

// ComplianceCountsRow holds the record-keeping gaps that lower the compliance score
type ComplianceCountsRow struct {
	MissingTaxTransactions  int64
	MissingTaxInvoices      int64
	MissingTaxNumberParties int64
	MissingTaxRateItems     int64
}

// AnalyticsRepository defines interface for analytics/aggregation queries.
// Every amount is coerced to decimal at this boundary.
type AnalyticsRepository interface {
	// SumByType returns one row per transaction type present in the filter window
	SumByType(ctx context.Context, f AggregateFilter) ([]TypeTotalsRow, error)

	// ListTransactionPoints returns matching transactions ordered by date
	ListTransactionPoints(ctx context.Context, f AggregateFilter) ([]TransactionPointRow, error)

	// ItemMovements sums item quantities and line totals per item and type
	ItemMovements(ctx context.Context, f AggregateFilter) ([]ItemMovementRow, error)

	// TopParties ranks customers (SALE) or suppliers (PURCHASE) by total amount
	TopParties(ctx context.Context, f AggregateFilter, limit int) ([]PartyTotalRow, error)

	// SumReceipts totals completed payments received: invoice payments and sale payments
	SumReceipts(ctx context.Context, from, to time.Time) (decimal.Decimal, error)

	// ListStockItems returns every item with its category name
	ListStockItems(ctx context.Context) ([]StockItemRow, error)

	// ListOutstandingInvoices returns SENT/OVERDUE invoices with a balance, issued by asOf
	ListOutstandingInvoices(ctx context.Context, asOf time.Time, customerID *uuid.UUID) ([]OutstandingInvoiceRow, error)

	// SumReceivablesDue totals SENT/OVERDUE balances whose due date is on or before asOf
	SumReceivablesDue(ctx context.Context, asOf time.Time) (decimal.Decimal, error)

	// ListPendingPurchases returns PENDING purchases dated on or before asOf
	ListPendingPurchases(ctx context.Context, asOf time.Time) ([]PendingPurchaseRow, error)

	// ListInvoicePoints returns invoices issued within the window
	ListInvoicePoints(ctx context.Context, from, to time.Time, customerID *uuid.UUID) ([]InvoicePointRow, error)

	// ListTaxLines returns SALE and PURCHASE item lines within the window
	ListTaxLines(ctx context.Context, from, to time.Time) ([]TaxLineRow, error)

	// SumIssuedInvoiceTax totals tax on issued invoices that were not copied from a transaction
	SumIssuedInvoiceTax(ctx context.Context, from, to time.Time) (decimal.Decimal, error)

	// ComplianceCounts counts the tax record-keeping gaps within the window
	ComplianceCounts(ctx context.Context, from, to time.Time) (*ComplianceCountsRow, error)

	// CustomerExposure returns every customer with their open invoice balance
	CustomerExposure(ctx context.Context) ([]CustomerExposureRow, error)
}
