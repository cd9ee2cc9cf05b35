package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bizledger-api/internal/domain/enum"
	domainRepo "github.com/sangkips/bizledger-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	openInvoiceStatuses   = []enum.InvoiceStatus{enum.InvoiceStatusSent, enum.InvoiceStatusOverdue}
	unissuedInvoiceStatus = []enum.InvoiceStatus{enum.InvoiceStatusDraft, enum.InvoiceStatusCancelled}
	stockMovingTypes      = []enum.TransactionType{enum.TransactionTypeSale, enum.TransactionTypePurchase}
)

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *gorm.DB) domainRepo.AnalyticsRepository {
	return &analyticsRepository{db: db}
}

// transactionConditions renders the filter as a WHERE fragment over the given alias.
func transactionConditions(alias string, f domainRepo.AggregateFilter) (string, []interface{}) {
	conds := []string{"1 = 1"}
	var args []interface{}
	if !f.From.IsZero() {
		conds = append(conds, alias+".date >= ?")
		args = append(args, f.From.UTC())
	}
	if !f.To.IsZero() {
		conds = append(conds, alias+".date <= ?")
		args = append(args, f.To.UTC())
	}
	if len(f.Types) > 0 {
		conds = append(conds, alias+".type IN ?")
		args = append(args, f.Types)
	}
	if f.PaymentStatus != "" {
		conds = append(conds, alias+".payment_status = ?")
		args = append(args, f.PaymentStatus)
	}
	if f.CustomerID != nil {
		conds = append(conds, alias+".customer_id = ?")
		args = append(args, *f.CustomerID)
	}
	return strings.Join(conds, " AND "), args
}

func (r *analyticsRepository) SumByType(ctx context.Context, f domainRepo.AggregateFilter) ([]domainRepo.TypeTotalsRow, error) {
	var results []domainRepo.TypeTotalsRow
	where, args := transactionConditions("t", f)

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			t.type AS type,
			COUNT(*) AS count,
			COALESCE(SUM(t.subtotal), 0) AS subtotal,
			COALESCE(SUM(t.tax_amount), 0) AS tax_amount,
			COALESCE(SUM(t.discount_amount), 0) AS discount_amount,
			COALESCE(SUM(t.total_amount), 0) AS total_amount
		FROM transactions t
		WHERE `+where+`
		GROUP BY t.type
	`, args...).Scan(&results).Error

	if err != nil {
		return nil, err
	}
	for i := range results {
		row := &results[i]
		row.Subtotal = row.Subtotal.Round(2)
		row.TaxAmount = row.TaxAmount.Round(2)
		row.DiscountAmount = row.DiscountAmount.Round(2)
		row.TotalAmount = row.TotalAmount.Round(2)
	}
	return results, nil
}

func (r *analyticsRepository) ListTransactionPoints(ctx context.Context, f domainRepo.AggregateFilter) ([]domainRepo.TransactionPointRow, error) {
	var results []domainRepo.TransactionPointRow
	where, args := transactionConditions("t", f)

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			t.id AS id,
			t.type AS type,
			t.date AS date,
			t.total_amount AS total_amount,
			t.tax_amount AS tax_amount,
			t.payment_method AS payment_method,
			t.payment_status AS payment_status,
			t.customer_id AS customer_id
		FROM transactions t
		WHERE `+where+`
		ORDER BY t.date ASC
	`, args...).Scan(&results).Error

	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *analyticsRepository) ItemMovements(ctx context.Context, f domainRepo.AggregateFilter) ([]domainRepo.ItemMovementRow, error) {
	var results []domainRepo.ItemMovementRow
	if len(f.Types) == 0 {
		f.Types = stockMovingTypes
	}
	where, args := transactionConditions("t", f)

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			ti.item_id AS item_id,
			i.name AS item_name,
			i.sku AS sku,
			t.type AS type,
			COALESCE(SUM(ti.quantity), 0) AS quantity,
			COALESCE(SUM(ti.total_amount), 0) AS total_amount
		FROM transaction_items ti
		JOIN transactions t ON t.id = ti.transaction_id
		JOIN items i ON i.id = ti.item_id
		WHERE `+where+`
		GROUP BY ti.item_id, i.name, i.sku, t.type
		ORDER BY total_amount DESC
	`, args...).Scan(&results).Error

	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *analyticsRepository) TopParties(ctx context.Context, f domainRepo.AggregateFilter, limit int) ([]domainRepo.PartyTotalRow, error) {
	var results []domainRepo.PartyTotalRow
	partyColumn := "customer_id"
	if len(f.Types) == 1 && f.Types[0] == enum.TransactionTypePurchase {
		partyColumn = "supplier_id"
	}
	where, args := transactionConditions("t", f)
	args = append(args, limit)

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			p.id AS party_id,
			p.name AS party_name,
			COUNT(t.id) AS count,
			COALESCE(SUM(t.total_amount), 0) AS total_amount
		FROM transactions t
		JOIN parties p ON p.id = t.`+partyColumn+`
		WHERE `+where+`
		GROUP BY p.id, p.name
		ORDER BY total_amount DESC
		LIMIT ?
	`, args...).Scan(&results).Error

	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *analyticsRepository) SumReceipts(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	return r.scalarDecimal(ctx, `
		SELECT COALESCE(SUM(pm.amount), 0)
		FROM payments pm
		LEFT JOIN transactions t ON t.id = pm.transaction_id
		WHERE pm.status = ?
			AND pm.payment_date >= ? AND pm.payment_date <= ?
			AND (pm.invoice_id IS NOT NULL OR t.type = ?)
	`, enum.PaymentStatusCompleted, from.UTC(), to.UTC(), enum.TransactionTypeSale)
}

func (r *analyticsRepository) ListStockItems(ctx context.Context) ([]domainRepo.StockItemRow, error) {
	var results []domainRepo.StockItemRow

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			i.id AS id,
			i.name AS name,
			i.sku AS sku,
			i.category_id AS category_id,
			c.name AS category_name,
			i.stock_quantity AS stock_quantity,
			i.min_stock AS min_stock,
			i.unit_price AS unit_price,
			i.cost_price AS cost_price,
			i.tax_rate AS tax_rate,
			i.is_service AS is_service,
			i.is_active AS is_active
		FROM items i
		LEFT JOIN categories c ON c.id = i.category_id
		ORDER BY i.name ASC
	`).Scan(&results).Error

	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *analyticsRepository) ListOutstandingInvoices(ctx context.Context, asOf time.Time, customerID *uuid.UUID) ([]domainRepo.OutstandingInvoiceRow, error) {
	var results []domainRepo.OutstandingInvoiceRow
	where := "inv.status IN ? AND inv.balance_amount > 0 AND inv.issue_date <= ?"
	args := []interface{}{openInvoiceStatuses, asOf.UTC()}
	if customerID != nil {
		where += " AND inv.customer_id = ?"
		args = append(args, *customerID)
	}

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			inv.id AS id,
			inv.invoice_no AS invoice_no,
			inv.customer_id AS customer_id,
			p.name AS customer_name,
			inv.status AS status,
			inv.due_date AS due_date,
			inv.balance_amount AS balance_amount
		FROM invoices inv
		JOIN parties p ON p.id = inv.customer_id
		WHERE `+where+`
		ORDER BY inv.due_date ASC
	`, args...).Scan(&results).Error

	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *analyticsRepository) SumReceivablesDue(ctx context.Context, asOf time.Time) (decimal.Decimal, error) {
	return r.scalarDecimal(ctx, `
		SELECT COALESCE(SUM(inv.balance_amount), 0)
		FROM invoices inv
		WHERE inv.status IN ? AND inv.due_date <= ?
	`, openInvoiceStatuses, asOf.UTC())
}

func (r *analyticsRepository) ListPendingPurchases(ctx context.Context, asOf time.Time) ([]domainRepo.PendingPurchaseRow, error) {
	var results []domainRepo.PendingPurchaseRow

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			t.id AS id,
			t.transaction_no AS transaction_no,
			t.supplier_id AS supplier_id,
			p.name AS supplier_name,
			p.payment_terms AS payment_terms,
			t.date AS date,
			t.total_amount AS total_amount
		FROM transactions t
		LEFT JOIN parties p ON p.id = t.supplier_id
		WHERE t.type = ? AND t.payment_status = ? AND t.date <= ?
		ORDER BY t.date ASC
	`, enum.TransactionTypePurchase, enum.PaymentStatusPending, asOf.UTC()).Scan(&results).Error

	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *analyticsRepository) ListInvoicePoints(ctx context.Context, from, to time.Time, customerID *uuid.UUID) ([]domainRepo.InvoicePointRow, error) {
	var results []domainRepo.InvoicePointRow
	where := "inv.issue_date >= ? AND inv.issue_date <= ?"
	args := []interface{}{from.UTC(), to.UTC()}
	if customerID != nil {
		where += " AND inv.customer_id = ?"
		args = append(args, *customerID)
	}

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			inv.id AS id,
			inv.invoice_no AS invoice_no,
			inv.status AS status,
			inv.customer_id AS customer_id,
			p.name AS customer_name,
			inv.issue_date AS issue_date,
			inv.due_date AS due_date,
			inv.total_amount AS total_amount,
			inv.paid_amount AS paid_amount,
			inv.balance_amount AS balance_amount
		FROM invoices inv
		JOIN parties p ON p.id = inv.customer_id
		WHERE `+where+`
		ORDER BY inv.issue_date ASC
	`, args...).Scan(&results).Error

	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *analyticsRepository) ListTaxLines(ctx context.Context, from, to time.Time) ([]domainRepo.TaxLineRow, error) {
	var results []domainRepo.TaxLineRow

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			t.type AS type,
			ti.tax_rate AS tax_rate,
			ti.cgst_rate AS cgst_rate,
			ti.sgst_rate AS sgst_rate,
			ti.igst_rate AS igst_rate,
			(ti.quantity * ti.unit_price - ti.discount) AS taxable_amount,
			ti.tax_amount AS tax_amount,
			ti.cgst_amount AS cgst_amount,
			ti.sgst_amount AS sgst_amount,
			ti.igst_amount AS igst_amount
		FROM transaction_items ti
		JOIN transactions t ON t.id = ti.transaction_id
		WHERE t.type IN ? AND t.date >= ? AND t.date <= ?
		ORDER BY t.date ASC, ti.position ASC
	`, stockMovingTypes, from.UTC(), to.UTC()).Scan(&results).Error

	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *analyticsRepository) SumIssuedInvoiceTax(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	return r.scalarDecimal(ctx, `
		SELECT COALESCE(SUM(inv.tax_amount), 0)
		FROM invoices inv
		WHERE inv.status NOT IN ?
			AND inv.transaction_id IS NULL
			AND inv.issue_date >= ? AND inv.issue_date <= ?
	`, unissuedInvoiceStatus, from.UTC(), to.UTC())
}

func (r *analyticsRepository) ComplianceCounts(ctx context.Context, from, to time.Time) (*domainRepo.ComplianceCountsRow, error) {
	var row domainRepo.ComplianceCountsRow
	var err error

	row.MissingTaxTransactions, err = r.count(ctx, `
		SELECT COUNT(*) FROM transactions t
		WHERE t.type IN ? AND t.tax_amount = 0 AND t.date >= ? AND t.date <= ?
	`, stockMovingTypes, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}

	row.MissingTaxInvoices, err = r.count(ctx, `
		SELECT COUNT(*) FROM invoices inv
		WHERE inv.status NOT IN ? AND inv.tax_amount = 0 AND inv.issue_date >= ? AND inv.issue_date <= ?
	`, unissuedInvoiceStatus, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}

	row.MissingTaxNumberParties, err = r.count(ctx, `
		SELECT COUNT(*) FROM parties p
		WHERE p.tax_number IS NULL OR p.tax_number = ''
	`)
	if err != nil {
		return nil, err
	}

	row.MissingTaxRateItems, err = r.count(ctx, `
		SELECT COUNT(*) FROM items i
		WHERE i.is_active = ? AND i.tax_rate = 0
	`, true)
	if err != nil {
		return nil, err
	}

	return &row, nil
}

func (r *analyticsRepository) CustomerExposure(ctx context.Context) ([]domainRepo.CustomerExposureRow, error) {
	var results []domainRepo.CustomerExposureRow

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			p.id AS party_id,
			p.name AS party_name,
			p.email AS email,
			p.credit_limit AS credit_limit,
			COALESCE(SUM(CASE WHEN inv.status IN ? THEN inv.balance_amount ELSE 0 END), 0) AS outstanding
		FROM parties p
		LEFT JOIN invoices inv ON inv.customer_id = p.id
		WHERE p.type = ?
		GROUP BY p.id, p.name, p.email, p.credit_limit
		ORDER BY outstanding DESC
	`, openInvoiceStatuses, enum.PartyTypeCustomer).Scan(&results).Error

	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *analyticsRepository) scalarDecimal(ctx context.Context, query string, args ...interface{}) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := r.db.WithContext(ctx).Raw(query, args...).Row().Scan(&total); err != nil {
		return decimal.Zero, err
	}
	// SQLite sums decimals as floats
	return total.Round(2), nil
}

func (r *analyticsRepository) count(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Raw(query, args...).Row().Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
