package analytics

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

type AgingBucket string

const (
	BucketCurrent AgingBucket = "current"
	Bucket1To30   AgingBucket = "1-30"
	Bucket31To60  AgingBucket = "31-60"
	Bucket61To90  AgingBucket = "61-90"
	Bucket90Plus  AgingBucket = "90+"
)

// DaysPastDue counts whole days elapsed since dueDate; zero or negative means not yet due.
func DaysPastDue(dueDate, asOf time.Time) int {
	return int(math.Floor(asOf.Sub(dueDate).Hours() / 24))
}

// BucketFor assigns a days-past-due figure to one of the fixed 30-day windows.
func BucketFor(daysPastDue int) AgingBucket {
	switch {
	case daysPastDue <= 0:
		return BucketCurrent
	case daysPastDue <= 30:
		return Bucket1To30
	case daysPastDue <= 60:
		return Bucket31To60
	case daysPastDue <= 90:
		return Bucket61To90
	default:
		return Bucket90Plus
	}
}

// AgingEntry is one outstanding document.
type AgingEntry struct {
	ID          string          `json:"id"`
	Reference   string          `json:"reference"`
	PartyID     string          `json:"party_id"`
	PartyName   string          `json:"party_name"`
	DueDate     time.Time       `json:"due_date"`
	Balance     decimal.Decimal `json:"balance"`
	DaysPastDue int             `json:"days_past_due"`
	Bucket      AgingBucket     `json:"bucket"`
}

// AgingSummary holds the bucket totals. The five buckets always sum to Total.
type AgingSummary struct {
	Current          decimal.Decimal `json:"current"`
	Days1To30        decimal.Decimal `json:"days_1_30"`
	Days31To60       decimal.Decimal `json:"days_31_60"`
	Days61To90       decimal.Decimal `json:"days_61_90"`
	Days90Plus       decimal.Decimal `json:"days_90_plus"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	Overdue          decimal.Decimal `json:"overdue"`
	Count            int             `json:"count"`
	Entries          []AgingEntry    `json:"entries"`
}

// BuildAging places every entry in exactly one bucket as of asOf.
func BuildAging(entries []AgingEntry, asOf time.Time) AgingSummary {
	s := AgingSummary{Entries: make([]AgingEntry, 0, len(entries))}
	for _, e := range entries {
		e.DaysPastDue = DaysPastDue(e.DueDate, asOf)
		e.Bucket = BucketFor(e.DaysPastDue)
		switch e.Bucket {
		case BucketCurrent:
			s.Current = s.Current.Add(e.Balance)
		case Bucket1To30:
			s.Days1To30 = s.Days1To30.Add(e.Balance)
		case Bucket31To60:
			s.Days31To60 = s.Days31To60.Add(e.Balance)
		case Bucket61To90:
			s.Days61To90 = s.Days61To90.Add(e.Balance)
		default:
			s.Days90Plus = s.Days90Plus.Add(e.Balance)
		}
		s.TotalOutstanding = s.TotalOutstanding.Add(e.Balance)
		s.Entries = append(s.Entries, e)
	}
	s.Overdue = s.TotalOutstanding.Sub(s.Current)
	s.Count = len(s.Entries)
	return s
}

// BucketSum adds the five buckets back together.
func (s AgingSummary) BucketSum() decimal.Decimal {
	return s.Current.Add(s.Days1To30).Add(s.Days31To60).Add(s.Days61To90).Add(s.Days90Plus)
}
