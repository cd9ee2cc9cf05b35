package enum

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
)

// TransactionType is the kind of ledger entry
type TransactionType string

const (
	TransactionTypeSale     TransactionType = "SALE"
	TransactionTypePurchase TransactionType = "PURCHASE"
	TransactionTypeExpense  TransactionType = "EXPENSE"
	TransactionTypeIncome   TransactionType = "INCOME"
)

func (t TransactionType) String() string {
	return string(t)
}

func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeSale, TransactionTypePurchase, TransactionTypeExpense, TransactionTypeIncome:
		return true
	}
	return false
}

// HasItems reports whether entries of this type carry line items and move stock.
func (t TransactionType) HasItems() bool {
	return t == TransactionTypeSale || t == TransactionTypePurchase
}

func (t TransactionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

func (t *TransactionType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*t = TransactionType(strings.ToUpper(strings.TrimSpace(str)))
	return nil
}

func (t TransactionType) Value() (driver.Value, error) {
	return string(t), nil
}

func (t *TransactionType) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*t = TransactionType(v)
	case []byte:
		*t = TransactionType(string(v))
	}
	return nil
}

// ParseTransactionTypes splits a comma separated filter such as "sale,purchase".
func ParseTransactionTypes(s string) []TransactionType {
	var out []TransactionType
	for _, part := range strings.Split(s, ",") {
		t := TransactionType(strings.ToUpper(strings.TrimSpace(part)))
		if t.IsValid() {
			out = append(out, t)
		}
	}
	return out
}
