package enum

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
)

// InvoiceStatus tracks an invoice through its lifecycle
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusSent      InvoiceStatus = "SENT"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusOverdue   InvoiceStatus = "OVERDUE"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// AllInvoiceStatuses lists every status in lifecycle order.
var AllInvoiceStatuses = []InvoiceStatus{
	InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusOverdue, InvoiceStatusPaid, InvoiceStatusCancelled,
}

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// IsTerminal is true for PAID and CANCELLED.
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// IsOpen is true while money is still expected on the invoice.
func (s InvoiceStatus) IsOpen() bool {
	return s == InvoiceStatusSent || s == InvoiceStatusOverdue
}

// CanTransitionTo encodes DRAFT -> SENT -> OVERDUE -> PAID, with CANCELLED
// reachable from every non-terminal state. A payment may settle a draft directly.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	if s.IsTerminal() || s == next {
		return false
	}
	switch next {
	case InvoiceStatusSent:
		return s == InvoiceStatusDraft
	case InvoiceStatusOverdue:
		return s == InvoiceStatusSent
	case InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

func (s InvoiceStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (s *InvoiceStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = InvoiceStatus(strings.ToUpper(strings.TrimSpace(str)))
	return nil
}

func (s InvoiceStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *InvoiceStatus) Scan(value interface{}) error {
	if value == nil {
		*s = InvoiceStatusDraft
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = InvoiceStatus(v)
	case []byte:
		*s = InvoiceStatus(string(v))
	}
	return nil
}
