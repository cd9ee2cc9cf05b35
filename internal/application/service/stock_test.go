package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/bizledger-api/internal/domain/entity"
	"github.com/sangkips/bizledger-api/internal/domain/enum"
	"github.com/sangkips/bizledger-api/pkg/analytics"
	"github.com/stretchr/testify/assert"
)

func TestComputeStockDelta(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	lines := []entity.TransactionItem{
		{ItemID: a, Quantity: 3},
		{ItemID: b, Quantity: 2},
		{ItemID: a, Quantity: 4},
	}

	tests := []struct {
		name     string
		txnType  enum.TransactionType
		expected map[uuid.UUID]int
	}{
		{name: "sale removes stock", txnType: enum.TransactionTypeSale, expected: map[uuid.UUID]int{a: -7, b: -2}},
		{name: "purchase adds stock", txnType: enum.TransactionTypePurchase, expected: map[uuid.UUID]int{a: 7, b: 2}},
		{name: "expense leaves stock", txnType: enum.TransactionTypeExpense, expected: map[uuid.UUID]int{}},
		{name: "income leaves stock", txnType: enum.TransactionTypeIncome, expected: map[uuid.UUID]int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ComputeStockDelta(tt.txnType, lines))
		})
	}
}

func TestNegateDeltaCancelsOut(t *testing.T) {
	a := uuid.New()
	forward := ComputeStockDelta(enum.TransactionTypeSale, []entity.TransactionItem{{ItemID: a, Quantity: 5}})
	back := NegateDelta(forward)

	assert.Equal(t, 5, back[a])
	assert.Zero(t, forward[a]+back[a])
}

func TestPriceLine(t *testing.T) {
	line := priceLine(4, dec("8.00"), dec("0"), dec("10"), gstRates{})
	assertMoney(t, "32.00", line.Net)
	assertMoney(t, "3.20", line.Tax)
	assertMoney(t, "35.20", line.Total)
	assert.False(t, line.IGSTAmount.Valid)

	split := priceLine(1, dec("100"), dec("0"), dec("18"), gstRates{
		CGST: decimalRate("9"),
		SGST: decimalRate("9"),
	})
	assertMoney(t, "9.00", split.CGSTAmount.Decimal)
	assertMoney(t, "9.00", split.SGSTAmount.Decimal)
	assertMoney(t, "118.00", split.Total)

	igst := gstRates{IGST: decimalRate("12"), CGST: decimalRate("6")}
	rate, ok := igst.effective()
	assert.True(t, ok)
	assertMoney(t, "12", rate)
}

func TestResolveTaxRateMatchesTaxGrouping(t *testing.T) {
	item := &entity.Item{TaxRate: dec("5")}
	tests := []struct {
		name string
		gst  gstRates
		want string
	}{
		{"igst", gstRates{IGST: decimalRate("18")}, "18"},
		{"cgst plus sgst", gstRates{CGST: decimalRate("6"), SGST: decimalRate("6")}, "12"},
		{"zero components use the item rate", gstRates{CGST: decimalRate("0"), SGST: decimalRate("0")}, "5"},
		{"none set", gstRates{}, "5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate := resolveTaxRate(nil, tt.gst, item)
			assertMoney(t, tt.want, rate)

			grouped := analytics.TaxLine{TaxRate: rate, IGSTRate: tt.gst.IGST, CGSTRate: tt.gst.CGST, SGSTRate: tt.gst.SGST}
			assertMoney(t, tt.want, grouped.EffectiveRate())
		})
	}
}
