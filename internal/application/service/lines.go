package service

import (
	"github.com/sangkips/bizledger-api/internal/domain/entity"
	"github.com/sangkips/bizledger-api/pkg/analytics"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// lineAmounts is the priced result of one document line
type lineAmounts struct {
	Gross      decimal.Decimal
	Net        decimal.Decimal
	TaxRate    decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
	CGSTAmount decimal.NullDecimal
	SGSTAmount decimal.NullDecimal
	IGSTAmount decimal.NullDecimal
}

// gstRates are the optional split-tax rates carried by a line
type gstRates struct {
	CGST decimal.NullDecimal
	SGST decimal.NullDecimal
	IGST decimal.NullDecimal
}

// effective is the combined GST rate in the same order the tax reports group by
func (g gstRates) effective() (decimal.Decimal, bool) {
	return analytics.GSTRate(g.IGST, g.CGST, g.SGST)
}

// priceLine computes (q*p - discount) * (1 + rate/100) and the GST split.
// Component amounts follow the IGST-then-CGST/SGST order.
func priceLine(quantity int, unitPrice, discount, taxRate decimal.Decimal, gst gstRates) lineAmounts {
	gross := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	net := gross.Sub(discount)
	tax := net.Mul(taxRate).Div(hundred).Round(2)

	out := lineAmounts{
		Gross:   gross.Round(2),
		Net:     net.Round(2),
		TaxRate: taxRate,
		Tax:     tax,
		Total:   net.Add(tax).Round(2),
	}

	componentTax := func(rate decimal.NullDecimal) decimal.NullDecimal {
		if !rate.Valid {
			return decimal.NullDecimal{}
		}
		return decimal.NewNullDecimal(net.Mul(rate.Decimal).Div(hundred).Round(2))
	}
	if gst.IGST.Valid && gst.IGST.Decimal.IsPositive() {
		out.IGSTAmount = componentTax(gst.IGST)
	} else {
		out.CGSTAmount = componentTax(gst.CGST)
		out.SGSTAmount = componentTax(gst.SGST)
	}
	return out
}

// resolveTaxRate picks the explicit rate, then the GST components, then the item default
func resolveTaxRate(explicit *decimal.Decimal, gst gstRates, item *entity.Item) decimal.Decimal {
	if explicit != nil {
		return *explicit
	}
	if rate, ok := gst.effective(); ok {
		return rate
	}
	if item != nil {
		return item.TaxRate
	}
	return decimal.Zero
}

// documentTotals accumulates header totals from priced lines
type documentTotals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

func (t *documentTotals) add(line lineAmounts, discount decimal.Decimal) {
	t.Subtotal = t.Subtotal.Add(line.Gross)
	t.Discount = t.Discount.Add(discount)
	t.Tax = t.Tax.Add(line.Tax)
	t.Total = t.Total.Add(line.Total)
}
