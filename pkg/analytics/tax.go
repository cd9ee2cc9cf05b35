package analytics

import "github.com/shopspring/decimal"

// TaxLine is one taxed line (transaction or invoice item) as stored.
type TaxLine struct {
	TaxRate       decimal.Decimal
	CGSTRate      decimal.NullDecimal
	SGSTRate      decimal.NullDecimal
	IGSTRate      decimal.NullDecimal
	TaxableAmount decimal.Decimal
	TaxAmount     decimal.Decimal
	CGSTAmount    decimal.NullDecimal
	SGSTAmount    decimal.NullDecimal
	IGSTAmount    decimal.NullDecimal
}

// GSTRate coalesces the GST components: a positive IGST rate, else a positive
// CGST+SGST sum. It reports false when neither applies so callers can fall back.
func GSTRate(igst, cgst, sgst decimal.NullDecimal) (decimal.Decimal, bool) {
	if igst.Valid && igst.Decimal.IsPositive() {
		return igst.Decimal, true
	}
	if sum := orZero(cgst).Add(orZero(sgst)); sum.IsPositive() {
		return sum, true
	}
	return decimal.Zero, false
}

// EffectiveRate picks the IGST rate when present, then CGST+SGST, then the flat rate.
// Mixed lines are grouped by whichever component appears first in that order.
func (l TaxLine) EffectiveRate() decimal.Decimal {
	if rate, ok := GSTRate(l.IGSTRate, l.CGSTRate, l.SGSTRate); ok {
		return rate
	}
	return l.TaxRate
}

// RateBucket aggregates every line that shares an effective rate.
type RateBucket struct {
	Rate          decimal.Decimal `json:"rate"`
	TaxableAmount decimal.Decimal `json:"taxable_amount"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	CGSTAmount    decimal.Decimal `json:"cgst_amount"`
	SGSTAmount    decimal.Decimal `json:"sgst_amount"`
	IGSTAmount    decimal.Decimal `json:"igst_amount"`
	LineCount     int             `json:"line_count"`
}

// GroupByRate buckets lines by effective rate, preserving first-seen rate order.
func GroupByRate(lines []TaxLine) []RateBucket {
	index := make(map[string]int)
	out := make([]RateBucket, 0)
	for _, l := range lines {
		rate := l.EffectiveRate()
		key := rate.StringFixed(2)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, RateBucket{Rate: rate.Round(2)})
		}
		b := &out[i]
		b.TaxableAmount = b.TaxableAmount.Add(l.TaxableAmount)
		b.TaxAmount = b.TaxAmount.Add(l.TaxAmount)
		b.CGSTAmount = b.CGSTAmount.Add(orZero(l.CGSTAmount))
		b.SGSTAmount = b.SGSTAmount.Add(orZero(l.SGSTAmount))
		b.IGSTAmount = b.IGSTAmount.Add(orZero(l.IGSTAmount))
		b.LineCount++
	}
	return out
}

func orZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}
