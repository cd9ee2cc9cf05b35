// Package analytics holds the pure financial formulas behind the reports.
// Every function is deterministic and free of storage access; all money is decimal.
package analytics

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Growth returns the percentage change from previous to current. A non-positive
// previous value yields zero.
func Growth(current, previous decimal.Decimal) decimal.Decimal {
	if !previous.IsPositive() {
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(hundred).Round(2)
}

// Percent returns part/whole*100, or zero when whole is not positive.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(2)
}

// SafeDiv divides or returns zero when the divisor is zero.
func SafeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}

// Max returns the larger of a and b.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// ProfitAndLoss is the income statement for a period.
type ProfitAndLoss struct {
	SalesRevenue      decimal.Decimal `json:"sales_revenue"`
	OtherIncome       decimal.Decimal `json:"other_income"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	COGS              decimal.Decimal `json:"cogs"`
	GrossProfit       decimal.Decimal `json:"gross_profit"`
	OperatingExpenses decimal.Decimal `json:"operating_expenses"`
	NetProfit         decimal.Decimal `json:"net_profit"`
	GrossMargin       decimal.Decimal `json:"gross_margin"`
	NetMargin         decimal.Decimal `json:"net_margin"`
}

// ComputeProfitAndLoss derives the statement from the per-type totals.
func ComputeProfitAndLoss(sales, income, purchases, expenses decimal.Decimal) ProfitAndLoss {
	revenue := sales.Add(income)
	gross := revenue.Sub(purchases)
	net := gross.Sub(expenses)
	return ProfitAndLoss{
		SalesRevenue:      sales,
		OtherIncome:       income,
		TotalRevenue:      revenue,
		COGS:              purchases,
		GrossProfit:       gross,
		OperatingExpenses: expenses,
		NetProfit:         net,
		GrossMargin:       Percent(gross, revenue),
		NetMargin:         Percent(net, revenue),
	}
}

// CashFlow summarises money in and out of the business.
type CashFlow struct {
	Inflow  decimal.Decimal `json:"inflow"`
	Outflow decimal.Decimal `json:"outflow"`
	Net     decimal.Decimal `json:"net"`
}

func ComputeCashFlow(payments, income, purchases, expenses decimal.Decimal) CashFlow {
	in := payments.Add(income)
	out := purchases.Add(expenses)
	return CashFlow{Inflow: in, Outflow: out, Net: in.Sub(out)}
}

// HealthScore grades overall financial health on a 0-100 scale, to two decimals.
func HealthScore(netCashFlow, totalReceivables, overdueReceivables decimal.Decimal) decimal.Decimal {
	forty := decimal.NewFromInt(40)
	score := decimal.NewFromInt(20)
	if netCashFlow.IsPositive() {
		score = score.Add(forty)
	}
	if totalReceivables.IsPositive() {
		overdueFraction := overdueReceivables.Div(totalReceivables)
		score = score.Add(Max(decimal.Zero, forty.Sub(overdueFraction.Mul(forty))))
	} else {
		score = score.Add(forty)
	}
	return Min(Max(score, decimal.Zero), decimal.NewFromInt(100)).Round(2)
}

// ComplianceCounts are the record-keeping gaps that lower the compliance score.
type ComplianceCounts struct {
	MissingTaxTransactions  int64 `json:"missing_tax_transactions"`
	MissingTaxInvoices      int64 `json:"missing_tax_invoices"`
	MissingTaxNumberParties int64 `json:"missing_tax_number_parties"`
	MissingTaxRateItems     int64 `json:"missing_tax_rate_items"`
}

// ComplianceScore starts at 100 and deducts per gap, never going below zero.
func ComplianceScore(c ComplianceCounts) int {
	score := 100 - 5*c.MissingTaxTransactions - 5*c.MissingTaxInvoices -
		2*c.MissingTaxNumberParties - c.MissingTaxRateItems
	if score < 0 {
		return 0
	}
	return int(score)
}

