package analytics

import "github.com/shopspring/decimal"

type MovementClass string

const (
	FastMoving   MovementClass = "FAST_MOVING"
	MediumMoving MovementClass = "MEDIUM_MOVING"
	SlowMoving   MovementClass = "SLOW_MOVING"
	NoMovement   MovementClass = "NO_MOVEMENT"
)

// StockValue is the cost and retail worth of a quantity on hand.
type StockValue struct {
	CostValue       decimal.Decimal `json:"cost_value"`
	RetailValue     decimal.Decimal `json:"retail_value"`
	PotentialProfit decimal.Decimal `json:"potential_profit"`
	ProfitMargin    decimal.Decimal `json:"profit_margin"`
}

func ValueStock(qty int, cost, retail decimal.Decimal) StockValue {
	q := decimal.NewFromInt(int64(qty))
	v := StockValue{
		CostValue:   cost.Mul(q),
		RetailValue: retail.Mul(q),
	}
	v.PotentialProfit = v.RetailValue.Sub(v.CostValue)
	v.ProfitMargin = Percent(v.PotentialProfit, v.RetailValue)
	return v
}

// Add rolls another value into v; the margin is recomputed from the sums.
func (v StockValue) Add(o StockValue) StockValue {
	out := StockValue{
		CostValue:       v.CostValue.Add(o.CostValue),
		RetailValue:     v.RetailValue.Add(o.RetailValue),
		PotentialProfit: v.PotentialProfit.Add(o.PotentialProfit),
	}
	out.ProfitMargin = Percent(out.PotentialProfit, out.RetailValue)
	return out
}

// Turnover is the inventory turnover figure for one item or the whole stock.
type Turnover struct {
	Ratio           decimal.Decimal `json:"turnover_ratio"`
	DaysInInventory decimal.Decimal `json:"days_in_inventory"`
	Class           MovementClass   `json:"classification"`
}

var daysPerYear = decimal.NewFromInt(365)

func ComputeTurnover(cogs, avgInventoryValue decimal.Decimal) Turnover {
	ratio := decimal.Zero
	if avgInventoryValue.IsPositive() {
		ratio = cogs.Div(avgInventoryValue)
	}
	days := daysPerYear
	if ratio.IsPositive() {
		days = daysPerYear.Div(ratio)
	}
	return Turnover{
		Ratio:           ratio.Round(2),
		DaysInInventory: days.Round(1),
		Class:           classify(ratio),
	}
}

func classify(ratio decimal.Decimal) MovementClass {
	switch {
	case ratio.GreaterThan(decimal.NewFromInt(12)):
		return FastMoving
	case ratio.GreaterThan(decimal.NewFromInt(4)):
		return MediumMoving
	case ratio.IsPositive():
		return SlowMoving
	default:
		return NoMovement
	}
}
