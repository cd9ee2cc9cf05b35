package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bizledger-api/internal/domain/enum"
	"github.com/sangkips/bizledger-api/internal/domain/repository"
	"github.com/sangkips/bizledger-api/pkg/analytics"
	"github.com/sangkips/bizledger-api/pkg/period"
	"github.com/shopspring/decimal"
)

// Sales report types
const (
	ReportSalesSummary = "summary"
	ReportByItem       = "by-item"
	ReportByCustomer   = "by-customer"
	ReportTrends       = "trends"
)

// Trend intervals
const (
	IntervalDaily   = "daily"
	IntervalMonthly = "monthly"
)

// dailyTrendMaxDays is the longest range bucketed by day when no interval is given
const dailyTrendMaxDays = 31

// SalesSummary totals the sales of a period
type SalesSummary struct {
	Period            period.Range    `json:"period"`
	TotalSales        decimal.Decimal `json:"total_sales"`
	TransactionCount  int64           `json:"transaction_count"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	TaxCollected      decimal.Decimal `json:"tax_collected"`
	Discounts         decimal.Decimal `json:"discounts"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	PendingAmount     decimal.Decimal `json:"pending_amount"`
	PreviousSales     decimal.Decimal `json:"previous_sales"`
	Growth            decimal.Decimal `json:"growth"`
}

// ItemSales is one item's share of sales
type ItemSales struct {
	ItemID   uuid.UUID       `json:"item_id"`
	Name     string          `json:"name"`
	SKU      string          `json:"sku"`
	Quantity int64           `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
	Share    decimal.Decimal `json:"share"`
}

// PartySales is one customer's or supplier's share of the transacted value
type PartySales struct {
	PartyID          uuid.UUID       `json:"party_id"`
	Name             string          `json:"name"`
	TransactionCount int64           `json:"transaction_count"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	Share            decimal.Decimal `json:"share"`
}

// TrendPoint is one bucket of a time series
type TrendPoint struct {
	Bucket string          `json:"bucket"`
	Start  time.Time       `json:"start"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// SalesTrend is a gap-free series of sales buckets
type SalesTrend struct {
	Period   period.Range `json:"period"`
	Interval string       `json:"interval"`
	Points   []TrendPoint `json:"points"`
}

func (s *ReportService) sales(ctx context.Context, q ReportQuery) (interface{}, error) {
	switch q.Type {
	case ReportSalesSummary, "":
		return s.SalesSummary(ctx, q)
	case ReportByItem:
		return s.SalesByItem(ctx, q)
	case ReportByCustomer:
		return s.SalesByCustomer(ctx, q)
	case ReportTrends:
		return s.SalesTrends(ctx, q)
	}
	return nil, invalidReportType(q.Type)
}

// SalesSummary totals sales in q.Range and compares them to the previous period
func (s *ReportService) SalesSummary(ctx context.Context, q ReportQuery) (*SalesSummary, error) {
	summary := &SalesSummary{Period: q.Range}

	err := s.run(ctx, "Sales summary report", func(ctx context.Context, tx repository.Store) error {
		f := rangeFilter(q.Range, enum.TransactionTypeSale)
		f.CustomerID = q.CustomerID
		current, err := loadTypeTotals(ctx, tx, f)
		if err != nil {
			return err
		}
		f.PaymentStatus = enum.PaymentStatusCompleted
		paid, err := loadTypeTotals(ctx, tx, f)
		if err != nil {
			return err
		}
		prevFilter := rangeFilter(q.Range.Previous(), enum.TransactionTypeSale)
		prevFilter.CustomerID = q.CustomerID
		previous, err := loadTypeTotals(ctx, tx, prevFilter)
		if err != nil {
			return err
		}

		row := current[enum.TransactionTypeSale]
		summary.TotalSales = row.TotalAmount
		summary.TransactionCount = row.Count
		summary.AverageOrderValue = analytics.SafeDiv(row.TotalAmount, decimal.NewFromInt(row.Count)).Round(2)
		summary.TaxCollected = row.TaxAmount
		summary.Discounts = row.DiscountAmount
		summary.PaidAmount = paid.total(enum.TransactionTypeSale)
		summary.PendingAmount = summary.TotalSales.Sub(summary.PaidAmount)
		summary.PreviousSales = previous.total(enum.TransactionTypeSale)
		summary.Growth = analytics.Growth(summary.TotalSales, summary.PreviousSales)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// SalesByItem ranks items by sales revenue in q.Range
func (s *ReportService) SalesByItem(ctx context.Context, q ReportQuery) ([]ItemSales, error) {
	var out []ItemSales
	err := s.run(ctx, "Sales by item report", func(ctx context.Context, tx repository.Store) error {
		var err error
		out, err = itemSales(ctx, tx, q.Range, q.limit())
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// itemSales ranks sold items; share is against all sales revenue, not just the top n
func itemSales(ctx context.Context, tx repository.Store, r period.Range, limit int) ([]ItemSales, error) {
	rows, err := tx.Analytics().ItemMovements(ctx, rangeFilter(r, enum.TransactionTypeSale))
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	out := make([]ItemSales, 0, len(rows))
	for _, row := range rows {
		total = total.Add(row.TotalAmount)
		out = append(out, ItemSales{
			ItemID:   row.ItemID,
			Name:     row.ItemName,
			SKU:      row.SKU,
			Quantity: row.Quantity,
			Revenue:  row.TotalAmount,
		})
	}
	sortByAmountDesc(out, func(i ItemSales) decimal.Decimal { return i.Revenue })
	for i := range out {
		out[i].Share = analytics.Percent(out[i].Revenue, total)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SalesByCustomer ranks customers by sales value in q.Range
func (s *ReportService) SalesByCustomer(ctx context.Context, q ReportQuery) ([]PartySales, error) {
	var out []PartySales
	err := s.run(ctx, "Sales by customer report", func(ctx context.Context, tx repository.Store) error {
		var err error
		out, err = topParties(ctx, tx, q.Range, enum.TransactionTypeSale, q.limit())
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// topParties ranks the customers (SALE) or suppliers (PURCHASE) of a range
func topParties(ctx context.Context, tx repository.Store, r period.Range, txnType enum.TransactionType, limit int) ([]PartySales, error) {
	totals, err := loadTypeTotals(ctx, tx, rangeFilter(r, txnType))
	if err != nil {
		return nil, err
	}
	rows, err := tx.Analytics().TopParties(ctx, rangeFilter(r, txnType), limit)
	if err != nil {
		return nil, err
	}

	all := totals.total(txnType)
	out := make([]PartySales, 0, len(rows))
	for _, row := range rows {
		out = append(out, PartySales{
			PartyID:          row.PartyID,
			Name:             row.PartyName,
			TransactionCount: row.Count,
			TotalAmount:      row.TotalAmount,
			Share:            analytics.Percent(row.TotalAmount, all),
		})
	}
	return out, nil
}

// SalesTrends buckets sales by day or month across the whole range, empty buckets included
func (s *ReportService) SalesTrends(ctx context.Context, q ReportQuery) (*SalesTrend, error) {
	interval := q.Interval
	if interval != IntervalDaily && interval != IntervalMonthly {
		interval = IntervalDaily
		if q.Range.Days() > dailyTrendMaxDays {
			interval = IntervalMonthly
		}
	}
	trend := &SalesTrend{Period: q.Range, Interval: interval}

	err := s.run(ctx, "Sales trends report", func(ctx context.Context, tx repository.Store) error {
		f := rangeFilter(q.Range, enum.TransactionTypeSale)
		f.CustomerID = q.CustomerID
		points, err := tx.Analytics().ListTransactionPoints(ctx, f)
		if err != nil {
			return err
		}

		buckets := newTrendBuckets(q.Range, interval)
		for _, p := range points {
			buckets.add(p.Date, p.TotalAmount)
		}
		trend.Points = buckets.points
		return nil
	})
	if err != nil {
		return nil, err
	}
	return trend, nil
}

// trendBuckets is an ordered, gap-free series keyed by day or month label
type trendBuckets struct {
	loc      *time.Location
	interval string
	index    map[string]int
	points   []TrendPoint
}

func newTrendBuckets(r period.Range, interval string) *trendBuckets {
	b := &trendBuckets{
		loc:      r.From.Location(),
		interval: interval,
		index:    make(map[string]int),
		points:   make([]TrendPoint, 0),
	}
	for t := b.start(r.From); !t.After(r.To); t = b.next(t) {
		b.index[b.label(t)] = len(b.points)
		b.points = append(b.points, TrendPoint{Bucket: b.label(t), Start: t})
	}
	return b
}

func (b *trendBuckets) start(t time.Time) time.Time {
	t = t.In(b.loc)
	if b.interval == IntervalMonthly {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, b.loc)
	}
	return period.StartOfDay(t)
}

func (b *trendBuckets) next(t time.Time) time.Time {
	if b.interval == IntervalMonthly {
		return t.AddDate(0, 1, 0)
	}
	return t.AddDate(0, 0, 1)
}

func (b *trendBuckets) label(t time.Time) string {
	if b.interval == IntervalMonthly {
		return t.Format("2006-01")
	}
	return t.Format("2006-01-02")
}

func (b *trendBuckets) add(at time.Time, amount decimal.Decimal) {
	i, ok := b.index[b.label(b.start(at))]
	if !ok {
		return
	}
	b.points[i].Count++
	b.points[i].Amount = b.points[i].Amount.Add(amount)
}
