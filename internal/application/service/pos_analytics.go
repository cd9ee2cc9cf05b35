package service

import (
	"context"
	"strings"
	"time"

	"github.com/sangkips/bizledger-api/internal/domain/enum"
	"github.com/sangkips/bizledger-api/internal/domain/repository"
	"github.com/sangkips/bizledger-api/pkg/analytics"
	"github.com/sangkips/bizledger-api/pkg/apperror"
	"github.com/sangkips/bizledger-api/pkg/period"
	"github.com/shopspring/decimal"
)

// Comparison baselines for POS performance
const (
	ComparePreviousPeriod = "previous_period"
	CompareLastYear       = "last_year"
)

const (
	posTopItems        = 5
	unspecifiedPayment = "unspecified"
)

// HourlySales is one hour of a trading day
type HourlySales struct {
	Hour   int             `json:"hour"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// PaymentMethodSplit is the share of sales taken by one payment method
type PaymentMethodSplit struct {
	Method string          `json:"method"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
	Share  decimal.Decimal `json:"share"`
}

// POSDaily describes one trading day at the point of sale
type POSDaily struct {
	Date             string               `json:"date"`
	TotalSales       decimal.Decimal      `json:"total_sales"`
	TransactionCount int64                `json:"transaction_count"`
	AverageTicket    decimal.Decimal      `json:"average_ticket"`
	TaxCollected     decimal.Decimal      `json:"tax_collected"`
	Hourly           []HourlySales        `json:"hourly"`
	PaymentMethods   []PaymentMethodSplit `json:"payment_methods"`
	TopItems         []ItemSales          `json:"top_items"`
}

// POSMetrics are the headline sales figures of one period
type POSMetrics struct {
	Period           period.Range    `json:"period"`
	Revenue          decimal.Decimal `json:"revenue"`
	TransactionCount int64           `json:"transaction_count"`
	AverageTicket    decimal.Decimal `json:"average_ticket"`
	ItemsSold        int64           `json:"items_sold"`
	TaxCollected     decimal.Decimal `json:"tax_collected"`
}

// POSGrowth is the percentage change of each metric against the baseline
type POSGrowth struct {
	Revenue          decimal.Decimal `json:"revenue"`
	TransactionCount decimal.Decimal `json:"transaction_count"`
	AverageTicket    decimal.Decimal `json:"average_ticket"`
	ItemsSold        decimal.Decimal `json:"items_sold"`
}

// POSPerformance compares a period with a baseline period
type POSPerformance struct {
	CompareWith string     `json:"compare_with"`
	Current     POSMetrics `json:"current"`
	Baseline    POSMetrics `json:"baseline"`
	Growth      POSGrowth  `json:"growth"`
}

// POSDaily reports sales for the calendar day containing date
func (s *ReportService) POSDaily(ctx context.Context, date time.Time) (*POSDaily, error) {
	r := period.Day(date)
	report := &POSDaily{Date: r.From.Format("2006-01-02")}

	err := s.run(ctx, "POS daily analytics", func(ctx context.Context, tx repository.Store) error {
		points, err := tx.Analytics().ListTransactionPoints(ctx, rangeFilter(r, enum.TransactionTypeSale))
		if err != nil {
			return err
		}

		loc := r.From.Location()
		report.Hourly = make([]HourlySales, 24)
		for h := range report.Hourly {
			report.Hourly[h].Hour = h
		}
		methods := make(map[string]int)
		report.PaymentMethods = []PaymentMethodSplit{}

		for _, p := range points {
			report.TotalSales = report.TotalSales.Add(p.TotalAmount)
			report.TaxCollected = report.TaxCollected.Add(p.TaxAmount)
			report.TransactionCount++

			h := &report.Hourly[p.Date.In(loc).Hour()]
			h.Count++
			h.Amount = h.Amount.Add(p.TotalAmount)

			method := strings.ToLower(strings.TrimSpace(p.PaymentMethod))
			if method == "" {
				method = unspecifiedPayment
			}
			i, ok := methods[method]
			if !ok {
				i = len(report.PaymentMethods)
				methods[method] = i
				report.PaymentMethods = append(report.PaymentMethods, PaymentMethodSplit{Method: method})
			}
			m := &report.PaymentMethods[i]
			m.Count++
			m.Amount = m.Amount.Add(p.TotalAmount)
		}
		for i := range report.PaymentMethods {
			report.PaymentMethods[i].Share = analytics.Percent(report.PaymentMethods[i].Amount, report.TotalSales)
		}
		sortByAmountDesc(report.PaymentMethods, func(m PaymentMethodSplit) decimal.Decimal { return m.Amount })
		report.AverageTicket = analytics.SafeDiv(report.TotalSales, decimal.NewFromInt(report.TransactionCount)).Round(2)

		report.TopItems, err = itemSales(ctx, tx, r, posTopItems)
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// POSPerformance compares sales in r with the previous period or the same range last year.
// Both periods are read from the same snapshot.
func (s *ReportService) POSPerformance(ctx context.Context, r period.Range, compareWith string) (*POSPerformance, error) {
	if compareWith == "" {
		compareWith = ComparePreviousPeriod
	}
	var baseline period.Range
	switch compareWith {
	case ComparePreviousPeriod:
		baseline = r.Previous()
	case CompareLastYear:
		baseline = r.SameRangeLastYear()
	default:
		return nil, apperror.NewFieldError("compareWith", "must be previous_period or last_year")
	}

	report := &POSPerformance{CompareWith: compareWith}
	err := s.run(ctx, "POS performance analytics", func(ctx context.Context, tx repository.Store) error {
		current, err := posMetrics(ctx, tx, r)
		if err != nil {
			return err
		}
		previous, err := posMetrics(ctx, tx, baseline)
		if err != nil {
			return err
		}
		report.Current, report.Baseline = *current, *previous
		return nil
	})
	if err != nil {
		return nil, err
	}

	report.Growth = POSGrowth{
		Revenue:          analytics.Growth(report.Current.Revenue, report.Baseline.Revenue),
		TransactionCount: analytics.Growth(decimal.NewFromInt(report.Current.TransactionCount), decimal.NewFromInt(report.Baseline.TransactionCount)),
		AverageTicket:    analytics.Growth(report.Current.AverageTicket, report.Baseline.AverageTicket),
		ItemsSold:        analytics.Growth(decimal.NewFromInt(report.Current.ItemsSold), decimal.NewFromInt(report.Baseline.ItemsSold)),
	}
	return report, nil
}

func posMetrics(ctx context.Context, tx repository.Store, r period.Range) (*POSMetrics, error) {
	totals, err := loadTypeTotals(ctx, tx, rangeFilter(r, enum.TransactionTypeSale))
	if err != nil {
		return nil, err
	}
	movements, err := tx.Analytics().ItemMovements(ctx, rangeFilter(r, enum.TransactionTypeSale))
	if err != nil {
		return nil, err
	}

	sale := totals[enum.TransactionTypeSale]
	m := &POSMetrics{
		Period:           r,
		Revenue:          sale.TotalAmount,
		TransactionCount: sale.Count,
		TaxCollected:     sale.TaxAmount,
		AverageTicket:    analytics.SafeDiv(sale.TotalAmount, decimal.NewFromInt(sale.Count)).Round(2),
	}
	for _, mv := range movements {
		m.ItemsSold += mv.Quantity
	}
	return m, nil
}
