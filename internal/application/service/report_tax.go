package service

import (
	"context"

	"github.com/sangkips/bizledger-api/internal/domain/enum"
	"github.com/sangkips/bizledger-api/internal/domain/repository"
	"github.com/sangkips/bizledger-api/pkg/analytics"
	"github.com/sangkips/bizledger-api/pkg/period"
	"github.com/shopspring/decimal"
)

// Tax report types
const (
	ReportTaxSummary = "summary"
	ReportByRate     = "by-rate"
	ReportCompliance = "compliance"
)

// GSTComponents splits tax into its central, state and integrated parts
type GSTComponents struct {
	CGST decimal.Decimal `json:"cgst"`
	SGST decimal.Decimal `json:"sgst"`
	IGST decimal.Decimal `json:"igst"`
}

func (g GSTComponents) add(l repository.TaxLineRow) GSTComponents {
	return GSTComponents{
		CGST: g.CGST.Add(l.CGSTAmount.Decimal),
		SGST: g.SGST.Add(l.SGSTAmount.Decimal),
		IGST: g.IGST.Add(l.IGSTAmount.Decimal),
	}
}

// TaxSummary nets tax collected against tax paid
type TaxSummary struct {
	Period       period.Range    `json:"period"`
	OutputTax    decimal.Decimal `json:"output_tax"`
	InputTax     decimal.Decimal `json:"input_tax"`
	NetLiability decimal.Decimal `json:"net_liability"`
	TaxableSales decimal.Decimal `json:"taxable_sales"`
	OutputGST    GSTComponents   `json:"output_gst"`
	InputGST     GSTComponents   `json:"input_gst"`
}

// TaxByRate groups output and input tax lines by effective rate
type TaxByRate struct {
	Period period.Range           `json:"period"`
	Output []analytics.RateBucket `json:"output"`
	Input  []analytics.RateBucket `json:"input"`
}

// TaxCompliance scores how complete the tax records of a period are
type TaxCompliance struct {
	Period period.Range `json:"period"`
	Score  int          `json:"score"`
	analytics.ComplianceCounts
}

func (s *ReportService) tax(ctx context.Context, q ReportQuery) (interface{}, error) {
	switch q.Type {
	case ReportTaxSummary, "":
		return s.TaxSummary(ctx, q)
	case ReportByRate:
		return s.TaxByRate(ctx, q)
	case ReportCompliance:
		return s.TaxCompliance(ctx, q)
	}
	return nil, invalidReportType(q.Type)
}

// TaxSummary counts sale tax plus tax on invoices raised outside the ledger as output tax
func (s *ReportService) TaxSummary(ctx context.Context, q ReportQuery) (*TaxSummary, error) {
	summary := &TaxSummary{Period: q.Range}

	err := s.run(ctx, "Tax summary report", func(ctx context.Context, tx repository.Store) error {
		totals, err := loadTypeTotals(ctx, tx, rangeFilter(q.Range, enum.TransactionTypeSale, enum.TransactionTypePurchase))
		if err != nil {
			return err
		}
		invoiceTax, err := tx.Analytics().SumIssuedInvoiceTax(ctx, q.Range.From, q.Range.To)
		if err != nil {
			return err
		}
		lines, err := tx.Analytics().ListTaxLines(ctx, q.Range.From, q.Range.To)
		if err != nil {
			return err
		}

		summary.OutputTax = totals.tax(enum.TransactionTypeSale).Add(invoiceTax)
		summary.InputTax = totals.tax(enum.TransactionTypePurchase)
		summary.NetLiability = summary.OutputTax.Sub(summary.InputTax)
		summary.TaxableSales = totals[enum.TransactionTypeSale].Subtotal.Sub(totals[enum.TransactionTypeSale].DiscountAmount)
		for _, l := range lines {
			switch l.Type {
			case enum.TransactionTypeSale:
				summary.OutputGST = summary.OutputGST.add(l)
			case enum.TransactionTypePurchase:
				summary.InputGST = summary.InputGST.add(l)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// TaxByRate buckets sale and purchase lines by their effective GST rate
func (s *ReportService) TaxByRate(ctx context.Context, q ReportQuery) (*TaxByRate, error) {
	report := &TaxByRate{Period: q.Range}

	err := s.run(ctx, "Tax by rate report", func(ctx context.Context, tx repository.Store) error {
		rows, err := tx.Analytics().ListTaxLines(ctx, q.Range.From, q.Range.To)
		if err != nil {
			return err
		}
		var output, input []analytics.TaxLine
		for _, r := range rows {
			line := analytics.TaxLine{
				TaxRate:       r.TaxRate,
				CGSTRate:      r.CGSTRate,
				SGSTRate:      r.SGSTRate,
				IGSTRate:      r.IGSTRate,
				TaxableAmount: r.TaxableAmount.Round(2),
				TaxAmount:     r.TaxAmount,
				CGSTAmount:    r.CGSTAmount,
				SGSTAmount:    r.SGSTAmount,
				IGSTAmount:    r.IGSTAmount,
			}
			if r.Type == enum.TransactionTypePurchase {
				input = append(input, line)
			} else {
				output = append(output, line)
			}
		}
		report.Output = analytics.GroupByRate(output)
		report.Input = analytics.GroupByRate(input)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// TaxCompliance deducts from a perfect score for every record missing tax details
func (s *ReportService) TaxCompliance(ctx context.Context, q ReportQuery) (*TaxCompliance, error) {
	report := &TaxCompliance{Period: q.Range}

	err := s.run(ctx, "Tax compliance report", func(ctx context.Context, tx repository.Store) error {
		row, err := tx.Analytics().ComplianceCounts(ctx, q.Range.From, q.Range.To)
		if err != nil {
			return err
		}
		report.ComplianceCounts = analytics.ComplianceCounts{
			MissingTaxTransactions:  row.MissingTaxTransactions,
			MissingTaxInvoices:      row.MissingTaxInvoices,
			MissingTaxNumberParties: row.MissingTaxNumberParties,
			MissingTaxRateItems:     row.MissingTaxRateItems,
		}
		report.Score = analytics.ComplianceScore(report.ComplianceCounts)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}
