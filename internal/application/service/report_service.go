package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bizledger-api/internal/domain/enum"
	"github.com/sangkips/bizledger-api/internal/domain/repository"
	"github.com/sangkips/bizledger-api/pkg/analytics"
	"github.com/sangkips/bizledger-api/pkg/apperror"
	"github.com/sangkips/bizledger-api/pkg/period"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Report domains served by Generate
const (
	DomainDashboard = "dashboard"
	DomainFinancial = "financial"
	DomainSales     = "sales"
	DomainInventory = "inventory"
	DomainParties   = "parties"
	DomainTax       = "tax"
)

const defaultTopLimit = 10

// ReportService builds read-only reports. Each report reads one snapshot of
// the ledger and fails as a whole when any of its queries fails or times out.
type ReportService struct {
	store   repository.Store
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewReportService creates a new report service
func NewReportService(store repository.Store, timeout time.Duration, logger *zap.Logger) *ReportService {
	return &ReportService{
		store:   store,
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
	}
}

// ReportQuery holds the parameters shared by every report
type ReportQuery struct {
	Type       string
	Range      period.Range
	AsOf       time.Time
	CustomerID *uuid.UUID
	CategoryID *uuid.UUID
	Limit      int
	Interval   string
}

func (q ReportQuery) limit() int {
	if q.Limit <= 0 {
		return defaultTopLimit
	}
	return q.Limit
}

// asOf is the explicit as-of date or the end of the report range
func (q ReportQuery) asOf() time.Time {
	if q.AsOf.IsZero() {
		return q.Range.To
	}
	return q.AsOf
}

// Generate dispatches to the report named by domain and q.Type
func (s *ReportService) Generate(ctx context.Context, domain string, q ReportQuery) (interface{}, error) {
	q.Type = strings.ToLower(strings.TrimSpace(q.Type))

	switch strings.ToLower(domain) {
	case DomainDashboard:
		return s.Dashboard(ctx, q)
	case DomainFinancial:
		return s.financial(ctx, q)
	case DomainSales:
		return s.sales(ctx, q)
	case DomainInventory:
		return s.inventory(ctx, q)
	case DomainParties:
		return s.parties(ctx, q)
	case DomainTax:
		return s.tax(ctx, q)
	}
	return nil, apperror.NewFieldError("domain", "unknown report domain "+domain)
}

func invalidReportType(reportType string) error {
	return apperror.NewFieldError("type", "Invalid report type "+reportType)
}

// run executes fn against one read-only snapshot under the report timeout.
// A deadline hit anywhere yields a timeout error and no data.
func (s *ReportService) run(ctx context.Context, name string, fn func(ctx context.Context, tx repository.Store) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	err := s.store.WithinSnapshot(ctx, func(tx repository.Store) error {
		return fn(ctx, tx)
	})
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		s.logger.Warn("report timed out", zap.String("report", name), zap.Duration("timeout", s.timeout))
		return apperror.NewTimeoutError(name)
	}
	if err != nil {
		if !apperror.IsAppError(err) {
			s.logger.Error("report failed", zap.String("report", name), zap.Error(err))
		}
		return err
	}
	return nil
}

// typeTotals is SumByType keyed by transaction type
type typeTotals map[enum.TransactionType]repository.TypeTotalsRow

func (t typeTotals) total(types ...enum.TransactionType) decimal.Decimal {
	sum := decimal.Zero
	for _, tt := range types {
		sum = sum.Add(t[tt].TotalAmount)
	}
	return sum
}

func (t typeTotals) tax(tt enum.TransactionType) decimal.Decimal {
	return t[tt].TaxAmount
}

func (t typeTotals) count(types ...enum.TransactionType) int64 {
	var n int64
	for _, tt := range types {
		n += t[tt].Count
	}
	return n
}

func loadTypeTotals(ctx context.Context, tx repository.Store, f repository.AggregateFilter) (typeTotals, error) {
	rows, err := tx.Analytics().SumByType(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make(typeTotals, len(rows))
	for _, r := range rows {
		out[r.Type] = r
	}
	return out, nil
}

func rangeFilter(r period.Range, types ...enum.TransactionType) repository.AggregateFilter {
	return repository.AggregateFilter{From: r.From, To: r.To, Types: types}
}

// profitAndLoss computes the statement for one range
func profitAndLoss(ctx context.Context, tx repository.Store, r period.Range) (analytics.ProfitAndLoss, error) {
	totals, err := loadTypeTotals(ctx, tx, rangeFilter(r))
	if err != nil {
		return analytics.ProfitAndLoss{}, err
	}
	return analytics.ComputeProfitAndLoss(
		totals.total(enum.TransactionTypeSale),
		totals.total(enum.TransactionTypeIncome),
		totals.total(enum.TransactionTypePurchase),
		totals.total(enum.TransactionTypeExpense),
	), nil
}

// cashFlow counts completed money movements in the range
func cashFlow(ctx context.Context, tx repository.Store, r period.Range) (analytics.CashFlow, error) {
	receipts, err := tx.Analytics().SumReceipts(ctx, r.From, r.To)
	if err != nil {
		return analytics.CashFlow{}, err
	}
	f := rangeFilter(r, enum.TransactionTypeIncome, enum.TransactionTypePurchase, enum.TransactionTypeExpense)
	f.PaymentStatus = enum.PaymentStatusCompleted
	completed, err := loadTypeTotals(ctx, tx, f)
	if err != nil {
		return analytics.CashFlow{}, err
	}
	return analytics.ComputeCashFlow(
		receipts,
		completed.total(enum.TransactionTypeIncome),
		completed.total(enum.TransactionTypePurchase),
		completed.total(enum.TransactionTypeExpense),
	), nil
}

// stockSnapshot is the current stock position of every item
type stockSnapshot struct {
	items []repository.StockItemRow
}

func loadStock(ctx context.Context, tx repository.Store) (*stockSnapshot, error) {
	rows, err := tx.Analytics().ListStockItems(ctx)
	if err != nil {
		return nil, err
	}
	return &stockSnapshot{items: rows}, nil
}

func effectiveCost(r repository.StockItemRow) decimal.Decimal {
	if r.CostPrice.Valid {
		return r.CostPrice.Decimal
	}
	return r.UnitPrice
}

// stocked reports whether the item counts towards inventory value
func stocked(r repository.StockItemRow) bool {
	return r.IsActive && !r.IsService && r.StockQuantity > 0
}

func lowStock(r repository.StockItemRow) bool {
	return r.IsActive && !r.IsService && r.StockQuantity <= r.MinStock
}

// inventoryValue is the cost value of active non-service items with stock on hand
func (s *stockSnapshot) inventoryValue() decimal.Decimal {
	total := decimal.Zero
	for _, r := range s.items {
		if stocked(r) {
			total = total.Add(effectiveCost(r).Mul(decimal.NewFromInt(int64(r.StockQuantity))))
		}
	}
	return total
}

func (s *stockSnapshot) lowStockCount() int {
	n := 0
	for _, r := range s.items {
		if lowStock(r) {
			n++
		}
	}
	return n
}

// receivablesAging buckets open invoices as of asOf
func receivablesAging(ctx context.Context, tx repository.Store, asOf time.Time, customerID *uuid.UUID) (analytics.AgingSummary, error) {
	rows, err := tx.Analytics().ListOutstandingInvoices(ctx, asOf, customerID)
	if err != nil {
		return analytics.AgingSummary{}, err
	}
	entries := make([]analytics.AgingEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, analytics.AgingEntry{
			ID:        r.ID.String(),
			Reference: r.InvoiceNo,
			PartyID:   r.CustomerID.String(),
			PartyName: r.CustomerName,
			DueDate:   r.DueDate,
			Balance:   r.BalanceAmount,
		})
	}
	return analytics.BuildAging(entries, asOf), nil
}

// sortByAmountDesc orders any slice by a decimal key, largest first, stable on ties
func sortByAmountDesc[T any](items []T, key func(T) decimal.Decimal) {
	sort.SliceStable(items, func(i, j int) bool {
		return key(items[i]).GreaterThan(key(items[j]))
	})
}
