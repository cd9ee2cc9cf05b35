package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(d(s))
}

func TestGrowth(t *testing.T) {
	tests := []struct {
		name              string
		current, previous string
		want              string
	}{
		{"no previous", "100", "0", "0"},
		{"negative previous", "100", "-10", "0"},
		{"doubled", "200", "100", "100"},
		{"halved", "50", "100", "-50"},
		{"fractional", "110", "300", "-63.33"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, d(tt.want).Equal(Growth(d(tt.current), d(tt.previous))), Growth(d(tt.current), d(tt.previous)).String())
		})
	}
}

func TestComputeProfitAndLoss(t *testing.T) {
	pl := ComputeProfitAndLoss(d("800"), d("200"), d("400"), d("100"))

	assert.True(t, d("1000").Equal(pl.TotalRevenue))
	assert.True(t, d("600").Equal(pl.GrossProfit))
	assert.True(t, d("500").Equal(pl.NetProfit))
	assert.True(t, d("60").Equal(pl.GrossMargin))
	assert.True(t, d("50").Equal(pl.NetMargin))

	empty := ComputeProfitAndLoss(decimal.Zero, decimal.Zero, d("10"), decimal.Zero)
	assert.True(t, empty.GrossMargin.IsZero())
	assert.True(t, d("-10").Equal(empty.NetProfit))
}

func TestComputeCashFlow(t *testing.T) {
	cf := ComputeCashFlow(d("300"), d("50"), d("120"), d("30"))
	assert.True(t, d("350").Equal(cf.Inflow))
	assert.True(t, d("150").Equal(cf.Outflow))
	assert.True(t, d("200").Equal(cf.Net))
}

func TestAssessCredit(t *testing.T) {
	tests := []struct {
		limit, outstanding string
		wantUtil           string
		wantRisk           RiskLevel
		wantAvailable      string
	}{
		{"1000", "950", "95", RiskHigh, "50"},
		{"1000", "800", "80", RiskMedium, "200"},
		{"1000", "600", "60", RiskLow, "400"},
		{"1000", "500", "50", RiskMinimal, "500"},
		{"1000", "1500", "150", RiskHigh, "0"},
		{"0", "250", "0", RiskMinimal, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.limit+"/"+tt.outstanding, func(t *testing.T) {
			a := AssessCredit(d(tt.limit), d(tt.outstanding))
			assert.True(t, d(tt.wantUtil).Equal(a.Utilization), a.Utilization.String())
			assert.Equal(t, tt.wantRisk, a.Risk)
			assert.True(t, d(tt.wantAvailable).Equal(a.AvailableCredit))
		})
	}
}

func TestBuildAging_BucketsSumToTotal(t *testing.T) {
	asOf := time.Date(2024, 6, 30, 23, 59, 59, 0, time.UTC)
	due := func(daysAgo int) time.Time { return asOf.AddDate(0, 0, -daysAgo).Truncate(24 * time.Hour) }

	entries := []AgingEntry{
		{ID: "a", DueDate: due(-5), Balance: d("100.10")},
		{ID: "b", DueDate: due(0), Balance: d("20.00")},
		{ID: "c", DueDate: due(1), Balance: d("30.33")},
		{ID: "d", DueDate: due(30), Balance: d("40.01")},
		{ID: "e", DueDate: due(31), Balance: d("50.50")},
		{ID: "f", DueDate: due(60), Balance: d("60.06")},
		{ID: "g", DueDate: due(61), Balance: d("70.70")},
		{ID: "h", DueDate: due(90), Balance: d("80.08")},
		{ID: "i", DueDate: due(91), Balance: d("90.90")},
		{ID: "j", DueDate: due(400), Balance: d("0.01")},
	}

	s := BuildAging(entries, asOf)

	assert.True(t, d("120.10").Equal(s.Current), s.Current.String())
	assert.True(t, d("70.34").Equal(s.Days1To30), s.Days1To30.String())
	assert.True(t, d("110.56").Equal(s.Days31To60), s.Days31To60.String())
	assert.True(t, d("150.78").Equal(s.Days61To90), s.Days61To90.String())
	assert.True(t, d("90.91").Equal(s.Days90Plus), s.Days90Plus.String())
	assert.True(t, s.TotalOutstanding.Equal(s.BucketSum()))
	assert.True(t, d("542.69").Equal(s.TotalOutstanding))
	assert.Equal(t, 10, s.Count)
}

func TestBucketFor(t *testing.T) {
	assert.Equal(t, BucketCurrent, BucketFor(-3))
	assert.Equal(t, BucketCurrent, BucketFor(0))
	assert.Equal(t, Bucket1To30, BucketFor(30))
	assert.Equal(t, Bucket31To60, BucketFor(31))
	assert.Equal(t, Bucket61To90, BucketFor(90))
	assert.Equal(t, Bucket90Plus, BucketFor(91))
}

func TestComputeTurnover(t *testing.T) {
	tests := []struct {
		cogs, avg string
		wantRatio string
		wantDays  string
		wantClass MovementClass
	}{
		{"1300", "100", "13", "28.1", FastMoving},
		{"500", "100", "5", "73", MediumMoving},
		{"100", "100", "1", "365", SlowMoving},
		{"0", "100", "0", "365", NoMovement},
		{"100", "0", "0", "365", NoMovement},
	}
	for _, tt := range tests {
		t.Run(tt.cogs+"/"+tt.avg, func(t *testing.T) {
			got := ComputeTurnover(d(tt.cogs), d(tt.avg))
			assert.True(t, d(tt.wantRatio).Equal(got.Ratio), got.Ratio.String())
			assert.True(t, d(tt.wantDays).Equal(got.DaysInInventory), got.DaysInInventory.String())
			assert.Equal(t, tt.wantClass, got.Class)
		})
	}
}

func TestValueStock(t *testing.T) {
	v := ValueStock(10, d("5"), d("8"))
	assert.True(t, d("50").Equal(v.CostValue))
	assert.True(t, d("80").Equal(v.RetailValue))
	assert.True(t, d("30").Equal(v.PotentialProfit))
	assert.True(t, d("37.5").Equal(v.ProfitMargin))

	total := v.Add(ValueStock(0, d("1"), d("2")))
	assert.True(t, d("37.5").Equal(total.ProfitMargin))
}

func TestHealthScore(t *testing.T) {
	tests := []struct {
		net, receivables, overdue string
		want                      string
	}{
		{"10", "0", "0", "100"},
		{"-10", "0", "0", "60"},
		{"1", "100", "100", "60"},
		{"0", "100", "50", "40"},
		{"0", "100", "300", "20"},
		{"0", "100", "30", "48"},
		{"5", "3", "1", "86.67"},
	}
	for _, tt := range tests {
		got := HealthScore(d(tt.net), d(tt.receivables), d(tt.overdue))
		assert.True(t, d(tt.want).Equal(got), "HealthScore(%s, %s, %s) = %s, want %s", tt.net, tt.receivables, tt.overdue, got, tt.want)
	}
}

func TestComplianceScore(t *testing.T) {
	assert.Equal(t, 100, ComplianceScore(ComplianceCounts{}))
	assert.Equal(t, 81, ComplianceScore(ComplianceCounts{
		MissingTaxTransactions: 1, MissingTaxInvoices: 2, MissingTaxNumberParties: 2, MissingTaxRateItems: 0,
	}))
	assert.Equal(t, 0, ComplianceScore(ComplianceCounts{MissingTaxTransactions: 50}))
}

func TestTaxLine_EffectiveRate(t *testing.T) {
	tests := []struct {
		name string
		line TaxLine
		want string
	}{
		{"igst wins", TaxLine{TaxRate: d("5"), IGSTRate: nd("18"), CGSTRate: nd("6"), SGSTRate: nd("6")}, "18"},
		{"cgst plus sgst", TaxLine{TaxRate: d("5"), CGSTRate: nd("9"), SGSTRate: nd("9")}, "18"},
		{"cgst only", TaxLine{TaxRate: d("5"), CGSTRate: nd("6")}, "6"},
		{"flat fallback", TaxLine{TaxRate: d("12")}, "12"},
		{"zero igst falls through", TaxLine{TaxRate: d("12"), IGSTRate: nd("0")}, "12"},
		{"zero cgst and sgst fall through", TaxLine{TaxRate: d("12"), CGSTRate: nd("0"), SGSTRate: nd("0")}, "12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, d(tt.want).Equal(tt.line.EffectiveRate()))
		})
	}
}

func TestGroupByRate(t *testing.T) {
	lines := []TaxLine{
		{TaxRate: d("18"), IGSTRate: nd("18"), TaxableAmount: d("100"), TaxAmount: d("18"), IGSTAmount: nd("18")},
		{TaxRate: d("18"), CGSTRate: nd("9"), SGSTRate: nd("9"), TaxableAmount: d("200"), TaxAmount: d("36"), CGSTAmount: nd("18"), SGSTAmount: nd("18")},
		{TaxRate: d("5"), TaxableAmount: d("40"), TaxAmount: d("2")},
	}

	buckets := GroupByRate(lines)

	assert.Len(t, buckets, 2)
	assert.True(t, d("18").Equal(buckets[0].Rate))
	assert.Equal(t, 2, buckets[0].LineCount)
	assert.True(t, d("300").Equal(buckets[0].TaxableAmount))
	assert.True(t, d("54").Equal(buckets[0].TaxAmount))
	assert.True(t, d("18").Equal(buckets[0].IGSTAmount))
	assert.True(t, d("18").Equal(buckets[0].CGSTAmount))
	assert.True(t, d("5").Equal(buckets[1].Rate))
	assert.True(t, buckets[1].CGSTAmount.IsZero())
}
