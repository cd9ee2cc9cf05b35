package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/bizledger-api/internal/domain/entity"
	"github.com/sangkips/bizledger-api/internal/domain/enum"
	"github.com/sangkips/bizledger-api/pkg/apperror"
	"github.com/sangkips/bizledger-api/pkg/pagination"
	"github.com/sangkips/bizledger-api/pkg/period"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestLedgerService_SaleUpdateDeleteRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	svc := env.ledger()
	ctx := context.Background()
	item := env.item(t, 20, "10.00", "6.00")

	txn, err := svc.Create(ctx, sale(item.ID, 5, "10.00", ""))
	require.NoError(t, err)
	assert.Equal(t, 15, env.stockOf(t, item.ID))

	_, err = svc.Update(ctx, txn.ID, sale(item.ID, 3, "10.00", ""))
	require.NoError(t, err)
	assert.Equal(t, 17, env.stockOf(t, item.ID))

	require.NoError(t, svc.Delete(ctx, txn.ID))
	assert.Equal(t, 20, env.stockOf(t, item.ID))

	_, err = svc.Get(ctx, txn.ID)
	assertKind(t, err, apperror.KindNotFound)
}

func TestLedgerService_UpdateWithSameFieldsKeepsStock(t *testing.T) {
	env := newTestEnv(t)
	svc := env.ledger()
	ctx := context.Background()
	item := env.item(t, 20, "10.00", "")

	input := sale(item.ID, 4, "10.00", "5")
	txn, err := svc.Create(ctx, input)
	require.NoError(t, err)
	require.Equal(t, 16, env.stockOf(t, item.ID))

	for i := 0; i < 3; i++ {
		updated, err := svc.Update(ctx, txn.ID, sale(item.ID, 4, "10.00", "5"))
		require.NoError(t, err)
		assertMoney(t, "42.00", updated.TotalAmount)
	}
	assert.Equal(t, 16, env.stockOf(t, item.ID))
}

func TestLedgerService_PurchaseThenSaleEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	svc := env.ledger()
	ctx := context.Background()
	item := env.item(t, 0, "8.00", "5.00")

	_, err := svc.Create(ctx, &TransactionInput{
		Type:  enum.TransactionTypePurchase,
		Date:  fixedNow,
		Items: []TransactionLineInput{{ItemID: item.ID, Quantity: 10, UnitPrice: decPtr("5.00")}},
	})
	require.NoError(t, err)
	assert.Equal(t, 10, env.stockOf(t, item.ID))

	txn, err := svc.Create(ctx, sale(item.ID, 4, "8.00", "10"))
	require.NoError(t, err)
	require.Len(t, txn.Items, 1)
	assertMoney(t, "35.20", txn.Items[0].TotalAmount)
	assertMoney(t, "32.00", txn.Subtotal)
	assertMoney(t, "3.20", txn.TaxAmount)
	assertMoney(t, "35.20", txn.TotalAmount)
	assert.Equal(t, 6, env.stockOf(t, item.ID))

	require.NoError(t, svc.Delete(ctx, txn.ID))
	assert.Equal(t, 10, env.stockOf(t, item.ID))
}

func TestLedgerService_LineTotalsMatchHeader(t *testing.T) {
	env := newTestEnv(t)
	svc := env.ledger()
	a := env.item(t, 50, "19.99", "")
	b := env.item(t, 50, "3.33", "")

	txn, err := svc.Create(context.Background(), &TransactionInput{
		Type: enum.TransactionTypeSale,
		Date: fixedNow,
		Items: []TransactionLineInput{
			{ItemID: a.ID, Quantity: 3, UnitPrice: decPtr("19.99"), Discount: dec("1.50"), TaxRate: decPtr("18")},
			{ItemID: b.ID, Quantity: 7, UnitPrice: decPtr("3.33"), TaxRate: decPtr("5")},
		},
	})
	require.NoError(t, err)

	sum := dec("0")
	for _, line := range txn.Items {
		sum = sum.Add(line.TotalAmount)
	}
	header := txn.Subtotal.Add(txn.TaxAmount).Sub(txn.DiscountAmount)
	assert.True(t, sum.Sub(header).Abs().LessThanOrEqual(dec("0.01")), "lines %s header %s", sum, header)
}

func TestLedgerService_MissingItemRollsBack(t *testing.T) {
	env := newTestEnv(t)
	svc := env.ledger()
	item := env.item(t, 20, "10.00", "")

	input := sale(item.ID, 2, "10.00", "")
	input.Items = append(input.Items, TransactionLineInput{ItemID: uuid.New(), Quantity: 1, UnitPrice: decPtr("1.00")})

	_, err := svc.Create(context.Background(), input)
	assertKind(t, err, apperror.KindNotFound)
	assert.Equal(t, 20, env.stockOf(t, item.ID))

	var count int64
	require.NoError(t, env.db.Model(&entity.Transaction{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestLedgerService_CompletedSaleRecordsPayment(t *testing.T) {
	env := newTestEnv(t)
	svc := env.ledger()
	ctx := context.Background()
	item := env.item(t, 5, "10.00", "")

	input := sale(item.ID, 1, "10.00", "")
	input.PaymentStatus = enum.PaymentStatusCompleted
	input.PaymentMethod = "cash"
	txn, err := svc.Create(ctx, input)
	require.NoError(t, err)
	require.Len(t, txn.Payments, 1)
	assertMoney(t, "10.00", txn.Payments[0].Amount)

	// a second update does not add another payment
	again := sale(item.ID, 1, "10.00", "")
	again.PaymentStatus = enum.PaymentStatusCompleted
	again.PaymentMethod = "cash"
	txn, err = svc.Update(ctx, txn.ID, again)
	require.NoError(t, err)
	assert.Len(t, txn.Payments, 1)
}

func TestLedgerService_ExpenseTotals(t *testing.T) {
	env := newTestEnv(t)
	category := "Rent"

	txn, err := env.ledger().Create(context.Background(), &TransactionInput{
		Type:           enum.TransactionTypeExpense,
		Date:           fixedNow,
		Amount:         decPtr("1000"),
		TaxAmount:      dec("180"),
		DiscountAmount: dec("80"),
		Category:       &category,
	})
	require.NoError(t, err)
	assertMoney(t, "1000.00", txn.Subtotal)
	assertMoney(t, "1100.00", txn.TotalAmount)
	assert.Empty(t, txn.Items)
}

func TestLedgerService_Validation(t *testing.T) {
	env := newTestEnv(t)
	svc := env.ledger()
	ctx := context.Background()

	tests := []struct {
		name  string
		input *TransactionInput
		field string
	}{
		{
			name:  "unknown type",
			input: &TransactionInput{Type: "GIFT"},
			field: "type",
		},
		{
			name:  "sale without items",
			input: &TransactionInput{Type: enum.TransactionTypeSale},
			field: "items",
		},
		{
			name:  "zero quantity",
			input: sale(uuid.New(), 0, "1.00", ""),
			field: "items[0].quantity",
		},
		{
			name:  "expense without amount",
			input: &TransactionInput{Type: enum.TransactionTypeExpense},
			field: "amount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.input)
			assertKind(t, err, apperror.KindValidation)

			appErr := apperror.GetAppError(err)
			fields := make([]string, 0, len(appErr.Errors))
			for _, fe := range appErr.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestLedgerService_DeleteUnlinksInvoice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := env.party(t, enum.PartyTypeCustomer, "")
	item := env.item(t, 10, "10.00", "")

	input := sale(item.ID, 2, "10.00", "")
	input.CustomerID = &customer.ID
	txn, err := env.ledger().Create(ctx, input)
	require.NoError(t, err)

	invoice, err := env.invoices().CreateFromTransaction(ctx, txn.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, invoice.TransactionID)

	require.NoError(t, env.ledger().Delete(ctx, txn.ID))

	kept, err := env.invoices().Get(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.TransactionID)
	assertMoney(t, "20.00", kept.TotalAmount)
}

func TestLedgerService_List(t *testing.T) {
	env := newTestEnv(t)
	svc := env.ledger()
	ctx := context.Background()
	item := env.item(t, 100, "2.00", "")

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, sale(item.ID, 1, "2.00", ""))
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, &ListTransactionsInput{
		Pagination: pagination.NewParams(1, 2, 0),
		Types:      []enum.TransactionType{enum.TransactionTypeSale},
	})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(3), page.Pagination.Total)
}

func TestLedgerService_UpdateReplacesRecordedPayment(t *testing.T) {
	env := newTestEnv(t)
	svc := env.ledger()
	ctx := context.Background()
	item := env.item(t, 20, "10.00", "")
	month := ReportQuery{Range: period.Resolve(period.ThisMonth, nil, nil, fixedNow)}

	paid := sale(item.ID, 5, "10.00", "")
	paid.PaymentStatus = enum.PaymentStatusCompleted
	paid.PaymentMethod = "cash"
	txn, err := svc.Create(ctx, paid)
	require.NoError(t, err)

	flow, err := env.reports().CashFlow(ctx, month)
	require.NoError(t, err)
	assertMoney(t, "50.00", flow.Receipts)

	pending := sale(item.ID, 3, "10.00", "")
	pending.PaymentStatus = enum.PaymentStatusPending
	pending.PaymentMethod = "cash"
	txn, err = svc.Update(ctx, txn.ID, pending)
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentStatusPending, txn.PaymentStatus)
	assert.Empty(t, txn.Payments)

	flow, err = env.reports().CashFlow(ctx, month)
	require.NoError(t, err)
	assertMoney(t, "0", flow.Receipts)

	settled := sale(item.ID, 3, "10.00", "")
	settled.PaymentStatus = enum.PaymentStatusCompleted
	settled.PaymentMethod = "card"
	txn, err = svc.Update(ctx, txn.ID, settled)
	require.NoError(t, err)
	require.Len(t, txn.Payments, 1)
	assertMoney(t, "30.00", txn.Payments[0].Amount)
	assert.Equal(t, "card", txn.Payments[0].PaymentMethod)

	flow, err = env.reports().CashFlow(ctx, month)
	require.NoError(t, err)
	assertMoney(t, "30.00", flow.Receipts)
}

func TestLedgerService_FailedUpdateLeavesTransactionUntouched(t *testing.T) {
	env := newTestEnv(t)
	svc := env.ledger()
	ctx := context.Background()
	item := env.item(t, 20, "10.00", "")

	input := sale(item.ID, 5, "10.00", "")
	input.PaymentStatus = enum.PaymentStatusCompleted
	input.PaymentMethod = "cash"
	txn, err := svc.Create(ctx, input)
	require.NoError(t, err)
	require.Equal(t, 15, env.stockOf(t, item.ID))

	replacement := sale(item.ID, 2, "10.00", "")
	replacement.Items = append(replacement.Items, TransactionLineInput{ItemID: uuid.New(), Quantity: 1, UnitPrice: decPtr("1.00")})
	_, err = svc.Update(ctx, txn.ID, replacement)
	assertKind(t, err, apperror.KindNotFound)

	assert.Equal(t, 15, env.stockOf(t, item.ID))
	kept, err := svc.Get(ctx, txn.ID)
	require.NoError(t, err)
	assertMoney(t, "50.00", kept.TotalAmount)
	require.Len(t, kept.Items, 1)
	assert.Equal(t, 5, kept.Items[0].Quantity)
	require.Len(t, kept.Payments, 1)
	assertMoney(t, "50.00", kept.Payments[0].Amount)
}

func TestLedgerService_ConcurrentMutationsKeepStockConsistent(t *testing.T) {
	env := newTestEnv(t)
	svc := env.ledger()
	ctx := context.Background()
	item := env.item(t, 100, "10.00", "")

	existing := make([]uuid.UUID, 0, 5)
	for i := 0; i < 5; i++ {
		txn, err := svc.Create(ctx, sale(item.ID, 3, "10.00", ""))
		require.NoError(t, err)
		existing = append(existing, txn.ID)
	}
	require.Equal(t, 85, env.stockOf(t, item.ID))

	var g errgroup.Group
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			_, err := svc.Create(ctx, sale(item.ID, 2, "10.00", ""))
			return err
		})
	}
	for _, id := range existing {
		g.Go(func() error {
			_, err := svc.Update(ctx, id, sale(item.ID, 1, "10.00", ""))
			return err
		})
	}
	require.NoError(t, g.Wait())

	// 100 - 10*2 created - 5*1 updated
	assert.Equal(t, 75, env.stockOf(t, item.ID))
}
