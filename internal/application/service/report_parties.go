package service

import (
	"context"
	"time"

	"github.com/sangkips/bizledger-api/internal/domain/enum"
	"github.com/sangkips/bizledger-api/internal/domain/repository"
	"github.com/sangkips/bizledger-api/pkg/analytics"
	"github.com/shopspring/decimal"
)

// Party report types
const (
	ReportReceivablesAging = "receivables-aging"
	ReportPayablesAging    = "payables-aging"
	ReportCreditAnalysis   = "credit-analysis"
	ReportTopCustomers     = "top-customers"
	ReportTopSuppliers     = "top-suppliers"
)

const unknownSupplier = "Unknown supplier"

// AgingReport is a receivables or payables aging as of a date
type AgingReport struct {
	AsOf time.Time `json:"as_of"`
	analytics.AgingSummary
}

// CustomerCredit is one customer's credit position
type CustomerCredit struct {
	PartyID string  `json:"party_id"`
	Name    string  `json:"name"`
	Email   *string `json:"email,omitempty"`
	analytics.CreditAssessment
}

// CreditAnalysis assesses every customer with a credit limit or an open balance
type CreditAnalysis struct {
	Customers        []CustomerCredit            `json:"customers"`
	TotalLimit       decimal.Decimal             `json:"total_credit_limit"`
	TotalOutstanding decimal.Decimal             `json:"total_outstanding"`
	Utilization      decimal.Decimal             `json:"utilization"`
	ByRisk           map[analytics.RiskLevel]int `json:"by_risk"`
}

func (s *ReportService) parties(ctx context.Context, q ReportQuery) (interface{}, error) {
	switch q.Type {
	case ReportReceivablesAging, "":
		return s.ReceivablesAging(ctx, q)
	case ReportPayablesAging:
		return s.PayablesAging(ctx, q)
	case ReportCreditAnalysis:
		return s.CreditAnalysis(ctx, q)
	case ReportTopCustomers:
		return s.TopParties(ctx, q, enum.TransactionTypeSale)
	case ReportTopSuppliers:
		return s.TopParties(ctx, q, enum.TransactionTypePurchase)
	}
	return nil, invalidReportType(q.Type)
}

// ReceivablesAging buckets open invoices by days past due
func (s *ReportService) ReceivablesAging(ctx context.Context, q ReportQuery) (*AgingReport, error) {
	report := &AgingReport{AsOf: q.asOf()}

	err := s.run(ctx, "Receivables aging report", func(ctx context.Context, tx repository.Store) error {
		var err error
		report.AgingSummary, err = receivablesAging(ctx, tx, report.AsOf, q.CustomerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// PayablesAging buckets unpaid purchases; a purchase falls due after its supplier's payment terms
func (s *ReportService) PayablesAging(ctx context.Context, q ReportQuery) (*AgingReport, error) {
	report := &AgingReport{AsOf: q.asOf()}

	err := s.run(ctx, "Payables aging report", func(ctx context.Context, tx repository.Store) error {
		rows, err := tx.Analytics().ListPendingPurchases(ctx, report.AsOf)
		if err != nil {
			return err
		}
		entries := make([]analytics.AgingEntry, 0, len(rows))
		for _, r := range rows {
			e := analytics.AgingEntry{
				ID:        r.ID.String(),
				Reference: r.TransactionNo,
				PartyName: unknownSupplier,
				DueDate:   r.Date,
				Balance:   r.TotalAmount,
			}
			if r.SupplierID != nil {
				e.PartyID = r.SupplierID.String()
			}
			if r.SupplierName != nil {
				e.PartyName = *r.SupplierName
			}
			if r.PaymentTerms != nil {
				e.DueDate = r.Date.AddDate(0, 0, *r.PaymentTerms)
			}
			entries = append(entries, e)
		}
		report.AgingSummary = analytics.BuildAging(entries, report.AsOf)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// CreditAnalysis rates each customer's utilisation of their credit limit
func (s *ReportService) CreditAnalysis(ctx context.Context, q ReportQuery) (*CreditAnalysis, error) {
	report := &CreditAnalysis{
		Customers: []CustomerCredit{},
		ByRisk:    make(map[analytics.RiskLevel]int),
	}

	err := s.run(ctx, "Credit analysis report", func(ctx context.Context, tx repository.Store) error {
		rows, err := tx.Analytics().CustomerExposure(ctx)
		if err != nil {
			return err
		}
		for _, r := range rows {
			if q.CustomerID != nil && r.PartyID != *q.CustomerID {
				continue
			}
			if !r.CreditLimit.IsPositive() && !r.Outstanding.IsPositive() {
				continue
			}
			c := CustomerCredit{
				PartyID:          r.PartyID.String(),
				Name:             r.PartyName,
				Email:            r.Email,
				CreditAssessment: analytics.AssessCredit(r.CreditLimit, r.Outstanding),
			}
			report.Customers = append(report.Customers, c)
			report.TotalLimit = report.TotalLimit.Add(r.CreditLimit)
			report.TotalOutstanding = report.TotalOutstanding.Add(r.Outstanding)
			report.ByRisk[c.Risk]++
		}
		report.Utilization = analytics.Percent(report.TotalOutstanding, report.TotalLimit)
		sortByAmountDesc(report.Customers, func(c CustomerCredit) decimal.Decimal { return c.Utilization })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// TopParties ranks customers (SALE) or suppliers (PURCHASE) by value in q.Range
func (s *ReportService) TopParties(ctx context.Context, q ReportQuery, txnType enum.TransactionType) ([]PartySales, error) {
	var out []PartySales
	err := s.run(ctx, "Top parties report", func(ctx context.Context, tx repository.Store) error {
		var err error
		out, err = topParties(ctx, tx, q.Range, txnType, q.limit())
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
