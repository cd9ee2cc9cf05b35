package service

import (
	"context"
	"testing"
	"time"

	"github.com/sangkips/bizledger-api/internal/domain/entity"
	"github.com/sangkips/bizledger-api/internal/domain/enum"
	"github.com/sangkips/bizledger-api/internal/domain/repository"
	"github.com/sangkips/bizledger-api/pkg/analytics"
	"github.com/sangkips/bizledger-api/pkg/apperror"
	"github.com/sangkips/bizledger-api/pkg/period"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ledgerFixture books one month of activity:
// a pending purchase of 10 units at 10.00, a paid sale of 4 units at 20.00 plus 10% tax,
// 50.00 other income and a 30.00 expense, both settled.
type ledgerFixture struct {
	item     *entity.Item
	customer *entity.Party
	supplier *entity.Party
	month    period.Range
}

func seedLedger(t *testing.T, env *testEnv) *ledgerFixture {
	t.Helper()
	ctx := context.Background()
	ledger := env.ledger()
	f := &ledgerFixture{
		item:     env.item(t, 0, "20.00", "10.00"),
		customer: env.party(t, enum.PartyTypeCustomer, "buyer@example.com"),
		supplier: env.party(t, enum.PartyTypeSupplier, ""),
		month:    period.Resolve(period.ThisMonth, nil, nil, fixedNow),
	}

	_, err := ledger.Create(ctx, &TransactionInput{
		Type:       enum.TransactionTypePurchase,
		Date:       fixedNow.Add(-2 * time.Hour),
		SupplierID: &f.supplier.ID,
		Items:      []TransactionLineInput{{ItemID: f.item.ID, Quantity: 10, UnitPrice: decPtr("10.00")}},
	})
	require.NoError(t, err)

	s := sale(f.item.ID, 4, "20.00", "10")
	s.CustomerID = &f.customer.ID
	s.PaymentStatus = enum.PaymentStatusCompleted
	s.PaymentMethod = "Cash"
	_, err = ledger.Create(ctx, s)
	require.NoError(t, err)

	income, expense := "Interest", "Utilities"
	_, err = ledger.Create(ctx, &TransactionInput{
		Type:          enum.TransactionTypeIncome,
		Date:          fixedNow,
		Amount:        decPtr("50.00"),
		Category:      &income,
		PaymentStatus: enum.PaymentStatusCompleted,
	})
	require.NoError(t, err)
	_, err = ledger.Create(ctx, &TransactionInput{
		Type:          enum.TransactionTypeExpense,
		Date:          fixedNow,
		Amount:        decPtr("30.00"),
		Category:      &expense,
		PaymentStatus: enum.PaymentStatusCompleted,
	})
	require.NoError(t, err)
	return f
}

func TestReportService_ProfitLoss(t *testing.T) {
	env := newTestEnv(t)
	f := seedLedger(t, env)

	report, err := env.reports().ProfitLoss(context.Background(), ReportQuery{Range: f.month})
	require.NoError(t, err)

	st := report.Statement
	assertMoney(t, "88.00", st.SalesRevenue)
	assertMoney(t, "50.00", st.OtherIncome)
	assertMoney(t, "138.00", st.TotalRevenue)
	assertMoney(t, "100.00", st.COGS)
	assertMoney(t, "38.00", st.GrossProfit)
	assertMoney(t, "8.00", st.NetProfit)
	assertMoney(t, "0", report.Previous.TotalRevenue)
	assertMoney(t, "0", report.RevenueGrowth)
}

func TestReportService_CashFlow(t *testing.T) {
	env := newTestEnv(t)
	f := seedLedger(t, env)

	report, err := env.reports().CashFlow(context.Background(), ReportQuery{Range: f.month})
	require.NoError(t, err)

	assertMoney(t, "88.00", report.Receipts)
	assertMoney(t, "50.00", report.Income)
	assertMoney(t, "0", report.Purchases)
	assertMoney(t, "30.00", report.Expenses)
	assertMoney(t, "108.00", report.Net)
}

func TestReportService_BalanceSheet(t *testing.T) {
	env := newTestEnv(t)
	f := seedLedger(t, env)

	sheet, err := env.reports().BalanceSheet(context.Background(), ReportQuery{Range: f.month})
	require.NoError(t, err)

	assert.True(t, sheet.AsOf.Equal(f.month.To))
	assertMoney(t, "60.00", sheet.Assets.Inventory)
	assertMoney(t, "0", sheet.Assets.AccountsReceivable)
	assertMoney(t, "100.00", sheet.Liabilities.AccountsPayable)
	assertMoney(t, "-40.00", sheet.Equity)
}

func TestReportService_Dashboard(t *testing.T) {
	env := newTestEnv(t)
	f := seedLedger(t, env)

	report, err := env.reports().Dashboard(context.Background(), ReportQuery{Range: f.month})
	require.NoError(t, err)

	assertMoney(t, "138.00", report.Revenue)
	assertMoney(t, "130.00", report.Expenses)
	assertMoney(t, "8.00", report.NetProfit)
	assert.Equal(t, int64(4), report.TransactionCount)
	assertMoney(t, "60.00", report.InventoryValue)
	require.Len(t, report.TopItems, 1)
	assert.Equal(t, int64(4), report.TopItems[0].Quantity)
	assert.Len(t, report.RecentTransactions, 4)
	assertMoney(t, "100", report.HealthScore)
}

func TestReportService_AgingBucketsSumToTotal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	invoices := env.invoices()
	customer := env.party(t, enum.PartyTypeCustomer, "")

	for _, daysPastDue := range []int{-5, 0, 12, 45, 75, 130} {
		due := fixedNow.AddDate(0, 0, -daysPastDue)
		input := serviceInvoice(customer, due.AddDate(0, 0, -30), "33.33")
		input.DueDate = &due
		inv, err := invoices.Create(ctx, input)
		require.NoError(t, err)
		_, err = invoices.Send(ctx, inv.ID)
		require.NoError(t, err)
	}

	report, err := env.reports().ReceivablesAging(ctx, ReportQuery{AsOf: fixedNow})
	require.NoError(t, err)

	assert.Equal(t, 6, report.Count)
	assert.True(t, report.BucketSum().Equal(report.TotalOutstanding))
	assertMoney(t, "439.98", report.TotalOutstanding)
	assertMoney(t, "146.66", report.Current)
	assertMoney(t, "73.33", report.Days1To30)
	assertMoney(t, "73.33", report.Days31To60)
	assertMoney(t, "73.33", report.Days90Plus)
}

func TestReportService_CreditAnalysis(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := env.party(t, enum.PartyTypeCustomer, "")
	require.NoError(t, env.db.Model(customer).Update("credit_limit", dec("1000")).Error)

	inv, err := env.invoices().Create(ctx, &InvoiceInput{
		CustomerID: customer.ID,
		IssueDate:  fixedNow,
		Items:      []InvoiceLineInput{{Description: "Bulk order", Quantity: 1, UnitPrice: decPtr("950")}},
	})
	require.NoError(t, err)
	_, err = env.invoices().Send(ctx, inv.ID)
	require.NoError(t, err)

	report, err := env.reports().CreditAnalysis(ctx, ReportQuery{})
	require.NoError(t, err)
	require.Len(t, report.Customers, 1)

	c := report.Customers[0]
	assertMoney(t, "95", c.Utilization)
	assertMoney(t, "50", c.AvailableCredit)
	assert.Equal(t, analytics.RiskHigh, c.Risk)
	assert.Equal(t, 1, report.ByRisk[analytics.RiskHigh])
}

func TestReportService_Inventory(t *testing.T) {
	env := newTestEnv(t)
	f := seedLedger(t, env)
	ctx := context.Background()
	reports := env.reports()

	valuation, err := reports.InventoryValuation(ctx, ReportQuery{Range: f.month})
	require.NoError(t, err)
	require.Len(t, valuation.Items, 1)
	assertMoney(t, "60.00", valuation.Total.CostValue)
	assertMoney(t, "120.00", valuation.Total.RetailValue)
	require.Len(t, valuation.Categories, 1)
	assert.Equal(t, uncategorized, valuation.Categories[0].Category)

	turnover, err := reports.InventoryTurnover(ctx, ReportQuery{Range: f.month})
	require.NoError(t, err)
	assertMoney(t, "100.00", turnover.COGS)
	assertMoney(t, "0", turnover.OpeningInventory)
	assertMoney(t, "60.00", turnover.ClosingInventory)
	assertMoney(t, "3.33", turnover.Ratio)
	require.Len(t, turnover.Items, 1)
	assertMoney(t, "40.00", turnover.Items[0].COGS)
	assertMoney(t, "1.33", turnover.Items[0].Ratio)

	require.NoError(t, env.db.Model(f.item).Update("min_stock", 8).Error)
	low, err := reports.LowStock(ctx, ReportQuery{})
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, 2, low[0].Shortfall)
	assertMoney(t, "20.00", low[0].ReorderCost)
}

func TestReportService_InventoryTurnoverByCategory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ledger := env.ledger()

	hardware := &entity.Category{Name: "Hardware"}
	paint := &entity.Category{Name: "Paint"}
	require.NoError(t, env.db.Create(hardware).Error)
	require.NoError(t, env.db.Create(paint).Error)

	nails := env.item(t, 0, "8.00", "5.00")
	brushes := env.item(t, 0, "8.00", "5.00")
	require.NoError(t, env.db.Model(nails).Update("category_id", hardware.ID).Error)
	require.NoError(t, env.db.Model(brushes).Update("category_id", paint.ID).Error)

	for _, line := range []TransactionLineInput{
		{ItemID: nails.ID, Quantity: 10, UnitPrice: decPtr("5.00")},
		{ItemID: brushes.ID, Quantity: 1000, UnitPrice: decPtr("5.00")},
	} {
		_, err := ledger.Create(ctx, &TransactionInput{
			Type:  enum.TransactionTypePurchase,
			Date:  fixedNow,
			Items: []TransactionLineInput{line},
		})
		require.NoError(t, err)
	}

	month := period.Resolve(period.ThisMonth, nil, nil, fixedNow)
	turnover, err := env.reports().InventoryTurnover(ctx, ReportQuery{Range: month, CategoryID: &hardware.ID})
	require.NoError(t, err)
	assertMoney(t, "50.00", turnover.COGS)
	assertMoney(t, "25.00", turnover.AverageInventory)
	assertMoney(t, "2", turnover.Ratio)
	assert.Equal(t, analytics.SlowMoving, turnover.Class)

	all, err := env.reports().InventoryTurnover(ctx, ReportQuery{Range: month})
	require.NoError(t, err)
	assertMoney(t, "5050.00", all.COGS)
}

func TestReportService_SalesTrendsAreGapFree(t *testing.T) {
	env := newTestEnv(t)
	f := seedLedger(t, env)

	trend, err := env.reports().SalesTrends(context.Background(), ReportQuery{Range: f.month})
	require.NoError(t, err)
	assert.Equal(t, IntervalDaily, trend.Interval)
	require.Len(t, trend.Points, 31)

	total := dec("0")
	for _, p := range trend.Points {
		total = total.Add(p.Amount)
	}
	assertMoney(t, "88.00", total)
	assertMoney(t, "88.00", trend.Points[14].Amount)
	assert.Equal(t, "2024-03-15", trend.Points[14].Bucket)
}

func TestReportService_TaxSummary(t *testing.T) {
	env := newTestEnv(t)
	f := seedLedger(t, env)

	summary, err := env.reports().TaxSummary(context.Background(), ReportQuery{Range: f.month})
	require.NoError(t, err)
	assertMoney(t, "8.00", summary.OutputTax)
	assertMoney(t, "0", summary.InputTax)
	assertMoney(t, "8.00", summary.NetLiability)
	assertMoney(t, "80.00", summary.TaxableSales)

	byRate, err := env.reports().TaxByRate(context.Background(), ReportQuery{Range: f.month})
	require.NoError(t, err)
	require.Len(t, byRate.Output, 1)
	assertMoney(t, "10", byRate.Output[0].Rate)
	assertMoney(t, "80.00", byRate.Output[0].TaxableAmount)
	require.Len(t, byRate.Input, 1)
	assertMoney(t, "0", byRate.Input[0].Rate)
}

func TestReportService_POS(t *testing.T) {
	env := newTestEnv(t)
	f := seedLedger(t, env)
	ctx := context.Background()

	daily, err := env.reports().POSDaily(ctx, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", daily.Date)
	assert.Equal(t, int64(1), daily.TransactionCount)
	require.Len(t, daily.Hourly, 24)
	assertMoney(t, "88.00", daily.Hourly[12].Amount)
	require.Len(t, daily.PaymentMethods, 1)
	assert.Equal(t, "cash", daily.PaymentMethods[0].Method)
	assertMoney(t, "100", daily.PaymentMethods[0].Share)

	perf, err := env.reports().POSPerformance(ctx, f.month, CompareLastYear)
	require.NoError(t, err)
	assertMoney(t, "88.00", perf.Current.Revenue)
	assert.Equal(t, int64(4), perf.Current.ItemsSold)
	assertMoney(t, "0", perf.Baseline.Revenue)
	assertMoney(t, "0", perf.Growth.Revenue)

	_, err = env.reports().POSPerformance(ctx, f.month, "yesterday")
	assertKind(t, err, apperror.KindValidation)
}

type snapshotCounter struct {
	repository.Store
	snapshots int
}

func (c *snapshotCounter) WithinSnapshot(ctx context.Context, fn func(tx repository.Store) error) error {
	c.snapshots++
	return c.Store.WithinSnapshot(ctx, fn)
}

func TestReportService_POSPerformanceReadsOneSnapshot(t *testing.T) {
	env := newTestEnv(t)
	f := seedLedger(t, env)

	counter := &snapshotCounter{Store: env.store}
	reports := NewReportService(counter, 5*time.Second, env.logger)
	reports.now = func() time.Time { return fixedNow }

	perf, err := reports.POSPerformance(context.Background(), f.month, ComparePreviousPeriod)
	require.NoError(t, err)
	assert.Equal(t, 1, counter.snapshots)
	assertMoney(t, "88.00", perf.Current.Revenue)
	assert.True(t, perf.Baseline.Period.To.Before(f.month.From))
}

func TestReportService_InvoiceAnalytics(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := env.party(t, enum.PartyTypeCustomer, "")

	paid, err := env.invoices().Create(ctx, serviceInvoice(customer, fixedNow.AddDate(0, 0, -3), "50.00"))
	require.NoError(t, err)
	_, err = env.invoices().RecordPayment(ctx, paid.ID, &PaymentInput{Amount: dec("110.00")})
	require.NoError(t, err)
	open, err := env.invoices().Create(ctx, serviceInvoice(customer, fixedNow.AddDate(0, 0, -2), "50.00"))
	require.NoError(t, err)
	_, err = env.invoices().Send(ctx, open.ID)
	require.NoError(t, err)

	report, err := env.reports().InvoiceAnalytics(ctx, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 30, report.Period.Days())
	assert.Equal(t, 2, report.Summary.Count)
	assertMoney(t, "220.00", report.Summary.TotalAmount)
	assertMoney(t, "110.00", report.Summary.Outstanding)
	assertMoney(t, "50", report.Summary.CollectionRate)
	assert.Len(t, report.Statuses, len(enum.AllInvoiceStatuses))
	require.Len(t, report.TopCustomers, 1)
	assertMoney(t, "110.00", report.Aging.TotalOutstanding)
}

func TestReportService_GenerateRejectsUnknownType(t *testing.T) {
	env := newTestEnv(t)
	reports := env.reports()
	ctx := context.Background()

	for _, domain := range []string{DomainFinancial, DomainSales, DomainInventory, DomainParties, DomainTax} {
		_, err := reports.Generate(ctx, domain, ReportQuery{Type: "bogus"})
		assertKind(t, err, apperror.KindValidation)
	}

	_, err := reports.Generate(ctx, "weather", ReportQuery{})
	assertKind(t, err, apperror.KindValidation)
}

func TestReportService_GenerateDefaultsType(t *testing.T) {
	env := newTestEnv(t)
	f := seedLedger(t, env)

	out, err := env.reports().Generate(context.Background(), DomainParties, ReportQuery{Range: f.month})
	require.NoError(t, err)
	assert.IsType(t, &AgingReport{}, out)

	out, err = env.reports().Generate(context.Background(), DomainFinancial, ReportQuery{Range: f.month})
	require.NoError(t, err)
	assert.IsType(t, &FinancialSummary{}, out)
}

func TestReportService_TimeoutReturnsNoData(t *testing.T) {
	env := newTestEnv(t)
	f := seedLedger(t, env)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	report, err := env.reports().Dashboard(ctx, ReportQuery{Range: f.month})
	assert.Nil(t, report)
	assertKind(t, err, apperror.KindTimeout)
}
