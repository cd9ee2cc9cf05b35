package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/bizledger-api/internal/domain/enum"
	"github.com/sangkips/bizledger-api/internal/domain/repository"
	"github.com/sangkips/bizledger-api/pkg/analytics"
	"github.com/sangkips/bizledger-api/pkg/period"
	"github.com/shopspring/decimal"
)

const (
	defaultAnalyticsDays = 30
	invoiceTopCustomers  = 5
)

// InvoiceAnalyticsSummary totals the invoices issued in the window
type InvoiceAnalyticsSummary struct {
	Count          int             `json:"count"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	Outstanding    decimal.Decimal `json:"outstanding"`
	OverdueAmount  decimal.Decimal `json:"overdue_amount"`
	OverdueCount   int             `json:"overdue_count"`
	AverageAmount  decimal.Decimal `json:"average_amount"`
	CollectionRate decimal.Decimal `json:"collection_rate"`
}

// StatusShare is the count and value of invoices in one status
type StatusShare struct {
	Status enum.InvoiceStatus `json:"status"`
	Count  int                `json:"count"`
	Amount decimal.Decimal    `json:"amount"`
	Share  decimal.Decimal    `json:"share"`
}

// CustomerInvoicing ranks a customer by invoiced value
type CustomerInvoicing struct {
	CustomerID  uuid.UUID       `json:"customer_id"`
	Name        string          `json:"name"`
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// InvoiceAnalytics describes invoicing activity over the last N days
type InvoiceAnalytics struct {
	Period       period.Range            `json:"period"`
	Summary      InvoiceAnalyticsSummary `json:"summary"`
	Statuses     []StatusShare           `json:"status_distribution"`
	Aging        analytics.AgingSummary  `json:"aging"`
	TopCustomers []CustomerInvoicing     `json:"top_customers"`
	Trends       []TrendPoint            `json:"monthly_trends"`
}

// InvoiceAnalytics summarises invoices issued in the last days days, optionally for one customer.
// Cancelled invoices count towards the distribution but not the money totals.
func (s *ReportService) InvoiceAnalytics(ctx context.Context, days int, customerID *uuid.UUID) (*InvoiceAnalytics, error) {
	if days <= 0 {
		days = defaultAnalyticsDays
	}
	now := s.now()
	r := period.LastDays(days, now)
	report := &InvoiceAnalytics{Period: r}

	err := s.run(ctx, "Invoice analytics", func(ctx context.Context, tx repository.Store) error {
		points, err := tx.Analytics().ListInvoicePoints(ctx, r.From, r.To, customerID)
		if err != nil {
			return err
		}

		byStatus := make(map[enum.InvoiceStatus]*StatusShare, len(enum.AllInvoiceStatuses))
		for _, st := range enum.AllInvoiceStatuses {
			byStatus[st] = &StatusShare{Status: st}
		}
		customers := make(map[uuid.UUID]*CustomerInvoicing)
		var order []uuid.UUID
		trends := newTrendBuckets(r, IntervalMonthly)

		sum := &report.Summary
		all := decimal.Zero
		for _, p := range points {
			all = all.Add(p.TotalAmount)
			if st, ok := byStatus[p.Status]; ok {
				st.Count++
				st.Amount = st.Amount.Add(p.TotalAmount)
			}
			if p.Status == enum.InvoiceStatusCancelled {
				continue
			}

			sum.Count++
			sum.TotalAmount = sum.TotalAmount.Add(p.TotalAmount)
			sum.PaidAmount = sum.PaidAmount.Add(p.PaidAmount)
			if p.Status.IsOpen() {
				sum.Outstanding = sum.Outstanding.Add(p.BalanceAmount)
				if p.Status == enum.InvoiceStatusOverdue || p.DueDate.Before(now) {
					sum.OverdueAmount = sum.OverdueAmount.Add(p.BalanceAmount)
					sum.OverdueCount++
				}
			}

			c, ok := customers[p.CustomerID]
			if !ok {
				c = &CustomerInvoicing{CustomerID: p.CustomerID, Name: p.CustomerName}
				customers[p.CustomerID] = c
				order = append(order, p.CustomerID)
			}
			c.Count++
			c.TotalAmount = c.TotalAmount.Add(p.TotalAmount)
			if p.Status.IsOpen() {
				c.Outstanding = c.Outstanding.Add(p.BalanceAmount)
			}

			trends.add(p.IssueDate, p.TotalAmount)
		}
		sum.AverageAmount = analytics.SafeDiv(sum.TotalAmount, decimal.NewFromInt(int64(sum.Count))).Round(2)
		sum.CollectionRate = analytics.Percent(sum.PaidAmount, sum.TotalAmount)

		report.Statuses = make([]StatusShare, 0, len(enum.AllInvoiceStatuses))
		for _, st := range enum.AllInvoiceStatuses {
			share := *byStatus[st]
			share.Share = analytics.Percent(share.Amount, all)
			report.Statuses = append(report.Statuses, share)
		}

		report.TopCustomers = make([]CustomerInvoicing, 0, len(order))
		for _, id := range order {
			report.TopCustomers = append(report.TopCustomers, *customers[id])
		}
		sortByAmountDesc(report.TopCustomers, func(c CustomerInvoicing) decimal.Decimal { return c.TotalAmount })
		if len(report.TopCustomers) > invoiceTopCustomers {
			report.TopCustomers = report.TopCustomers[:invoiceTopCustomers]
		}
		report.Trends = trends.points

		report.Aging, err = receivablesAging(ctx, tx, now, customerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}
