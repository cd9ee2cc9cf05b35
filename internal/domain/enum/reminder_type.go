package enum

import "strings"

// ReminderType selects the message template for an invoice reminder.
// Unknown values are kept as-is and receive the generic template.
type ReminderType string

const (
	ReminderTypePayment     ReminderType = "payment"
	ReminderTypeFinalNotice ReminderType = "final_notice"
	ReminderTypeThankYou    ReminderType = "thank_you"
)

func (t ReminderType) String() string {
	return string(t)
}

// ParseReminderType normalises user input; empty input means a payment reminder.
func ParseReminderType(s string) ReminderType {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ReminderTypePayment
	}
	return ReminderType(s)
}
