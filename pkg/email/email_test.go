package email

import (
	"testing"
	"time"

	"github.com/sangkips/bizledger-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reminderData(daysOverdue int) ReminderData {
	return ReminderData{
		CustomerName:  "Acme Traders",
		CustomerEmail: "billing@acme.test",
		InvoiceNo:     "INV-202403-1",
		IssueDate:     time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		TotalAmount:   decimal.RequireFromString("120.50"),
		BalanceAmount: decimal.RequireFromString("100"),
		DaysOverdue:   daysOverdue,
	}
}

func TestCompose_PaymentVariesOnOverdue(t *testing.T) {
	c := NewComposer("Bright Stores")

	overdue, err := c.Compose(enum.ReminderTypePayment, reminderData(5), "")
	require.NoError(t, err)
	assert.Equal(t, "Overdue: Invoice INV-202403-1 from Bright Stores", overdue.Subject)
	assert.Contains(t, overdue.Body, "5 day(s) overdue")
	assert.Contains(t, overdue.Body, "100.00")
	assert.Equal(t, "billing@acme.test", overdue.To)

	upcoming, err := c.Compose(enum.ReminderTypePayment, reminderData(-3), "")
	require.NoError(t, err)
	assert.Equal(t, "Reminder: Invoice INV-202403-1 from Bright Stores", upcoming.Subject)
	assert.Contains(t, upcoming.Body, "is due on 01 Mar 2024")
	assert.NotContains(t, upcoming.Body, "overdue")
}

func TestCompose_TypesAndFallback(t *testing.T) {
	c := NewComposer("Bright Stores")

	final, err := c.Compose(enum.ReminderTypeFinalNotice, reminderData(40), "")
	require.NoError(t, err)
	assert.Contains(t, final.Subject, "Final notice")

	thanks, err := c.Compose(enum.ReminderTypeThankYou, reminderData(0), "")
	require.NoError(t, err)
	assert.Contains(t, thanks.Body, "Thank you for your payment")

	other, err := c.Compose(enum.ReminderType("courtesy"), reminderData(0), "")
	require.NoError(t, err)
	assert.Equal(t, "Invoice INV-202403-1 from Bright Stores", other.Subject)
}

func TestCompose_CustomMessageOverridesBody(t *testing.T) {
	c := NewComposer("Bright Stores")

	msg, err := c.Compose(enum.ReminderTypePayment, reminderData(2), "Please call us.")
	require.NoError(t, err)
	assert.Equal(t, "Please call us.", msg.Body)
	assert.Equal(t, "Invoice INV-202403-1 from Bright Stores", msg.Subject)

	final, err := c.Compose(enum.ReminderTypeFinalNotice, reminderData(40), "Please call us.")
	require.NoError(t, err)
	assert.NotContains(t, final.Subject, "Final notice")
}
