package service

import (
	"context"
	"time"

	"github.com/sangkips/bizledger-api/internal/domain/entity"
	"github.com/sangkips/bizledger-api/internal/domain/enum"
	"github.com/sangkips/bizledger-api/internal/domain/repository"
	"github.com/sangkips/bizledger-api/pkg/analytics"
	"github.com/sangkips/bizledger-api/pkg/period"
	"github.com/shopspring/decimal"
)

// Financial report types
const (
	ReportProfitLoss   = "profit-loss"
	ReportBalanceSheet = "balance-sheet"
	ReportCashFlow     = "cash-flow"
	ReportSummary      = "summary"
)

const (
	dashboardTopItems = 5
	dashboardRecent   = 5
)

// DashboardReport holds the headline KPIs for a period against the one before it
type DashboardReport struct {
	Period             period.Range         `json:"period"`
	Revenue            decimal.Decimal      `json:"revenue"`
	Expenses           decimal.Decimal      `json:"expenses"`
	NetProfit          decimal.Decimal      `json:"net_profit"`
	RevenueGrowth      decimal.Decimal      `json:"revenue_growth"`
	ExpenseGrowth      decimal.Decimal      `json:"expense_growth"`
	ProfitGrowth       decimal.Decimal      `json:"profit_growth"`
	TransactionCount   int64                `json:"transaction_count"`
	Receivables        decimal.Decimal      `json:"receivables"`
	OverdueReceivables decimal.Decimal      `json:"overdue_receivables"`
	InventoryValue     decimal.Decimal      `json:"inventory_value"`
	LowStockCount      int                  `json:"low_stock_count"`
	CashFlow           analytics.CashFlow   `json:"cash_flow"`
	HealthScore        decimal.Decimal      `json:"health_score"`
	TopItems           []ItemSales          `json:"top_items"`
	RecentTransactions []entity.Transaction `json:"recent_transactions"`
}

// ProfitLossReport is the income statement with the previous period for comparison
type ProfitLossReport struct {
	Period          period.Range            `json:"period"`
	Statement       analytics.ProfitAndLoss `json:"statement"`
	Previous        analytics.ProfitAndLoss `json:"previous"`
	RevenueGrowth   decimal.Decimal         `json:"revenue_growth"`
	NetProfitGrowth decimal.Decimal         `json:"net_profit_growth"`
}

// BalanceSheet is the position of the business on a date
type BalanceSheet struct {
	AsOf        time.Time       `json:"as_of"`
	Assets      Assets          `json:"assets"`
	Liabilities Liabilities     `json:"liabilities"`
	Equity      decimal.Decimal `json:"equity"`
}

type Assets struct {
	Inventory          decimal.Decimal `json:"inventory"`
	AccountsReceivable decimal.Decimal `json:"accounts_receivable"`
	Total              decimal.Decimal `json:"total"`
}

type Liabilities struct {
	AccountsPayable decimal.Decimal `json:"accounts_payable"`
	Total           decimal.Decimal `json:"total"`
}

// CashFlowReport splits the cash flow into its sources
type CashFlowReport struct {
	Period    period.Range    `json:"period"`
	Receipts  decimal.Decimal `json:"receipts"`
	Income    decimal.Decimal `json:"income"`
	Purchases decimal.Decimal `json:"purchases"`
	Expenses  decimal.Decimal `json:"expenses"`
	Inflow    decimal.Decimal `json:"inflow"`
	Outflow   decimal.Decimal `json:"outflow"`
	Net       decimal.Decimal `json:"net"`
}

// FinancialSummary combines the three statements with the health score
type FinancialSummary struct {
	Period       period.Range            `json:"period"`
	ProfitLoss   analytics.ProfitAndLoss `json:"profit_loss"`
	CashFlow     analytics.CashFlow      `json:"cash_flow"`
	BalanceSheet BalanceSheet            `json:"balance_sheet"`
	HealthScore  decimal.Decimal         `json:"health_score"`
}

// Dashboard builds the KPI overview for q.Range
func (s *ReportService) Dashboard(ctx context.Context, q ReportQuery) (*DashboardReport, error) {
	report := &DashboardReport{Period: q.Range}

	err := s.run(ctx, "Dashboard report", func(ctx context.Context, tx repository.Store) error {
		current, err := loadTypeTotals(ctx, tx, rangeFilter(q.Range))
		if err != nil {
			return err
		}
		previous, err := loadTypeTotals(ctx, tx, rangeFilter(q.Range.Previous()))
		if err != nil {
			return err
		}

		income := []enum.TransactionType{enum.TransactionTypeSale, enum.TransactionTypeIncome}
		outgo := []enum.TransactionType{enum.TransactionTypePurchase, enum.TransactionTypeExpense}
		report.Revenue = current.total(income...)
		report.Expenses = current.total(outgo...)
		report.NetProfit = report.Revenue.Sub(report.Expenses)
		prevRevenue := previous.total(income...)
		prevExpenses := previous.total(outgo...)
		report.RevenueGrowth = analytics.Growth(report.Revenue, prevRevenue)
		report.ExpenseGrowth = analytics.Growth(report.Expenses, prevExpenses)
		report.ProfitGrowth = analytics.Growth(report.NetProfit, prevRevenue.Sub(prevExpenses))
		report.TransactionCount = current.count(append(income, outgo...)...)

		aging, err := receivablesAging(ctx, tx, q.Range.To, nil)
		if err != nil {
			return err
		}
		report.Receivables = aging.TotalOutstanding
		report.OverdueReceivables = aging.Overdue

		stock, err := loadStock(ctx, tx)
		if err != nil {
			return err
		}
		report.InventoryValue = stock.inventoryValue()
		report.LowStockCount = stock.lowStockCount()

		if report.CashFlow, err = cashFlow(ctx, tx, q.Range); err != nil {
			return err
		}
		report.HealthScore = analytics.HealthScore(report.CashFlow.Net, report.Receivables, report.OverdueReceivables)

		if report.TopItems, err = itemSales(ctx, tx, q.Range, dashboardTopItems); err != nil {
			return err
		}
		if report.RecentTransactions, err = tx.Transactions().Recent(ctx, dashboardRecent); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *ReportService) financial(ctx context.Context, q ReportQuery) (interface{}, error) {
	switch q.Type {
	case ReportProfitLoss:
		return s.ProfitLoss(ctx, q)
	case ReportBalanceSheet:
		return s.BalanceSheet(ctx, q)
	case ReportCashFlow:
		return s.CashFlow(ctx, q)
	case ReportSummary, "":
		return s.FinancialSummary(ctx, q)
	}
	return nil, invalidReportType(q.Type)
}

// ProfitLoss builds the income statement for q.Range
func (s *ReportService) ProfitLoss(ctx context.Context, q ReportQuery) (*ProfitLossReport, error) {
	report := &ProfitLossReport{Period: q.Range}

	err := s.run(ctx, "Profit and loss report", func(ctx context.Context, tx repository.Store) error {
		var err error
		if report.Statement, err = profitAndLoss(ctx, tx, q.Range); err != nil {
			return err
		}
		if report.Previous, err = profitAndLoss(ctx, tx, q.Range.Previous()); err != nil {
			return err
		}
		report.RevenueGrowth = analytics.Growth(report.Statement.TotalRevenue, report.Previous.TotalRevenue)
		report.NetProfitGrowth = analytics.Growth(report.Statement.NetProfit, report.Previous.NetProfit)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// BalanceSheet builds the position as of q.AsOf, or the end of q.Range
func (s *ReportService) BalanceSheet(ctx context.Context, q ReportQuery) (*BalanceSheet, error) {
	var sheet *BalanceSheet
	err := s.run(ctx, "Balance sheet report", func(ctx context.Context, tx repository.Store) error {
		var err error
		sheet, err = balanceSheet(ctx, tx, q.asOf())
		return err
	})
	if err != nil {
		return nil, err
	}
	return sheet, nil
}

func balanceSheet(ctx context.Context, tx repository.Store, asOf time.Time) (*BalanceSheet, error) {
	stock, err := loadStock(ctx, tx)
	if err != nil {
		return nil, err
	}
	receivable, err := tx.Analytics().SumReceivablesDue(ctx, asOf)
	if err != nil {
		return nil, err
	}
	pending, err := tx.Analytics().ListPendingPurchases(ctx, asOf)
	if err != nil {
		return nil, err
	}

	payable := decimal.Zero
	for _, p := range pending {
		payable = payable.Add(p.TotalAmount)
	}

	sheet := &BalanceSheet{
		AsOf: asOf,
		Assets: Assets{
			Inventory:          stock.inventoryValue(),
			AccountsReceivable: receivable,
		},
		Liabilities: Liabilities{
			AccountsPayable: payable,
			Total:           payable,
		},
	}
	sheet.Assets.Total = sheet.Assets.Inventory.Add(sheet.Assets.AccountsReceivable)
	sheet.Equity = sheet.Assets.Total.Sub(sheet.Liabilities.Total)
	return sheet, nil
}

// CashFlow builds the cash flow statement for q.Range
func (s *ReportService) CashFlow(ctx context.Context, q ReportQuery) (*CashFlowReport, error) {
	report := &CashFlowReport{Period: q.Range}

	err := s.run(ctx, "Cash flow report", func(ctx context.Context, tx repository.Store) error {
		receipts, err := tx.Analytics().SumReceipts(ctx, q.Range.From, q.Range.To)
		if err != nil {
			return err
		}
		f := rangeFilter(q.Range, enum.TransactionTypeIncome, enum.TransactionTypePurchase, enum.TransactionTypeExpense)
		f.PaymentStatus = enum.PaymentStatusCompleted
		completed, err := loadTypeTotals(ctx, tx, f)
		if err != nil {
			return err
		}

		report.Receipts = receipts
		report.Income = completed.total(enum.TransactionTypeIncome)
		report.Purchases = completed.total(enum.TransactionTypePurchase)
		report.Expenses = completed.total(enum.TransactionTypeExpense)
		cf := analytics.ComputeCashFlow(report.Receipts, report.Income, report.Purchases, report.Expenses)
		report.Inflow, report.Outflow, report.Net = cf.Inflow, cf.Outflow, cf.Net
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// FinancialSummary builds all three statements from one snapshot
func (s *ReportService) FinancialSummary(ctx context.Context, q ReportQuery) (*FinancialSummary, error) {
	summary := &FinancialSummary{Period: q.Range}

	err := s.run(ctx, "Financial summary report", func(ctx context.Context, tx repository.Store) error {
		var err error
		if summary.ProfitLoss, err = profitAndLoss(ctx, tx, q.Range); err != nil {
			return err
		}
		if summary.CashFlow, err = cashFlow(ctx, tx, q.Range); err != nil {
			return err
		}
		sheet, err := balanceSheet(ctx, tx, q.asOf())
		if err != nil {
			return err
		}
		summary.BalanceSheet = *sheet

		aging, err := receivablesAging(ctx, tx, q.asOf(), nil)
		if err != nil {
			return err
		}
		summary.HealthScore = analytics.HealthScore(summary.CashFlow.Net, aging.TotalOutstanding, aging.Overdue)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
