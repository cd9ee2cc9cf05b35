package analytics

import "github.com/shopspring/decimal"

type RiskLevel string

const (
	RiskHigh    RiskLevel = "HIGH"
	RiskMedium  RiskLevel = "MEDIUM"
	RiskLow     RiskLevel = "LOW"
	RiskMinimal RiskLevel = "MINIMAL"
)

// CreditAssessment describes how much of a customer's credit limit is in use.
type CreditAssessment struct {
	CreditLimit     decimal.Decimal `json:"credit_limit"`
	Outstanding     decimal.Decimal `json:"outstanding"`
	Utilization     decimal.Decimal `json:"utilization"`
	AvailableCredit decimal.Decimal `json:"available_credit"`
	Risk            RiskLevel       `json:"risk"`
}

func AssessCredit(limit, outstanding decimal.Decimal) CreditAssessment {
	util := Percent(outstanding, limit)
	return CreditAssessment{
		CreditLimit:     limit,
		Outstanding:     outstanding,
		Utilization:     util,
		AvailableCredit: Max(decimal.Zero, limit.Sub(outstanding)),
		Risk:            riskFor(util),
	}
}

func riskFor(utilization decimal.Decimal) RiskLevel {
	switch {
	case utilization.GreaterThan(decimal.NewFromInt(90)):
		return RiskHigh
	case utilization.GreaterThan(decimal.NewFromInt(70)):
		return RiskMedium
	case utilization.GreaterThan(decimal.NewFromInt(50)):
		return RiskLow
	default:
		return RiskMinimal
	}
}
