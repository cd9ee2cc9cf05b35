package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bizledger-api/internal/domain/entity"
	"github.com/sangkips/bizledger-api/internal/domain/enum"
	"github.com/sangkips/bizledger-api/internal/domain/repository"
	"github.com/sangkips/bizledger-api/pkg/apperror"
	"github.com/sangkips/bizledger-api/pkg/docnum"
	"github.com/sangkips/bizledger-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultCurrency = "INR"

// LedgerService creates, replaces and deletes ledger transactions together
// with their stock and payment side effects
type LedgerService struct {
	store   repository.Store
	numbers *docnum.Generator
	logger  *zap.Logger
	now     func() time.Time
}

// NewLedgerService creates a new ledger service
func NewLedgerService(store repository.Store, numbers *docnum.Generator, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		store:   store,
		numbers: numbers,
		logger:  logger,
		now:     time.Now,
	}
}

// TransactionLineInput represents an item line on a sale or purchase
type TransactionLineInput struct {
	ItemID    uuid.UUID
	Quantity  int
	UnitPrice *decimal.Decimal
	Discount  decimal.Decimal
	TaxRate   *decimal.Decimal
	CGSTRate  decimal.NullDecimal
	SGSTRate  decimal.NullDecimal
	IGSTRate  decimal.NullDecimal
}

// TransactionInput carries every writable field of a transaction.
// Update replaces the stored transaction with it in full.
type TransactionInput struct {
	Type           enum.TransactionType
	Date           time.Time
	Amount         *decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	PaymentStatus  enum.PaymentStatus
	PaymentMethod  string
	CustomerID     *uuid.UUID
	SupplierID     *uuid.UUID
	Category       *string
	Description    *string
	Notes          *string
	Currency       string
	ExchangeRate   decimal.NullDecimal
	Items          []TransactionLineInput
}

// ListTransactionsInput holds the list filters
type ListTransactionsInput struct {
	Pagination    *pagination.PaginationParams
	Types         []enum.TransactionType
	CustomerID    *uuid.UUID
	SupplierID    *uuid.UUID
	PaymentStatus enum.PaymentStatus
	Search        string
	From          *time.Time
	To            *time.Time
}

// Create records a new transaction, its lines, the stock movement and, when
// completed with a payment method, the matching payment. All or nothing.
func (s *LedgerService) Create(ctx context.Context, input *TransactionInput) (*entity.Transaction, error) {
	if err := validateTransactionInput(input); err != nil {
		return nil, err
	}

	var id uuid.UUID
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		if err := checkParties(ctx, tx, input); err != nil {
			return err
		}

		txn := &entity.Transaction{}
		lines, err := s.assemble(ctx, tx, txn, input)
		if err != nil {
			return err
		}
		txn.TransactionNo = s.numbers.Next(docnum.PrefixTransaction, txn.Date)

		if err := tx.Transactions().Create(ctx, txn); err != nil {
			return err
		}
		if err := writeLines(ctx, tx, txn.ID, lines); err != nil {
			return err
		}
		if err := tx.Items().ApplyStockDeltas(ctx, ComputeStockDelta(txn.Type, lines)); err != nil {
			return err
		}
		if txn.PaymentStatus == enum.PaymentStatusCompleted && txn.PaymentMethod != "" {
			if err := tx.Payments().Create(ctx, paymentFor(txn)); err != nil {
				return err
			}
		}

		id = txn.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction created", zap.String("id", id.String()), zap.String("type", input.Type.String()))
	return s.Get(ctx, id)
}

// Update replaces a transaction. The stock effect of the stored version is
// reverted before the replacement's effect is applied, inside one unit.
func (s *LedgerService) Update(ctx context.Context, id uuid.UUID, input *TransactionInput) (*entity.Transaction, error) {
	if err := validateTransactionInput(input); err != nil {
		return nil, err
	}

	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		current, err := tx.Transactions().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return apperror.NewNotFoundError("Transaction")
		}
		if err := checkParties(ctx, tx, input); err != nil {
			return err
		}

		revert := NegateDelta(ComputeStockDelta(current.Type, current.Items))
		if err := tx.Items().ApplyStockDeltas(ctx, revert); err != nil {
			return err
		}
		if err := tx.Transactions().DeleteItems(ctx, id); err != nil {
			return err
		}

		// the recorded payment follows the replacement, not the stored version
		if current.PaymentMethod != "" {
			if err := tx.Payments().DeleteRecorded(ctx, id, current.PaymentMethod); err != nil {
				return err
			}
		}
		current.Items = nil
		current.Payments = nil

		lines, err := s.assemble(ctx, tx, current, input)
		if err != nil {
			return err
		}
		if err := tx.Transactions().Update(ctx, current); err != nil {
			return err
		}
		if err := writeLines(ctx, tx, id, lines); err != nil {
			return err
		}
		if err := tx.Items().ApplyStockDeltas(ctx, ComputeStockDelta(current.Type, lines)); err != nil {
			return err
		}

		if current.PaymentStatus == enum.PaymentStatusCompleted && current.PaymentMethod != "" {
			if err := tx.Payments().Create(ctx, paymentFor(current)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction updated", zap.String("id", id.String()))
	return s.Get(ctx, id)
}

// Delete reverts the stock effect and removes the transaction with its lines
// and payments. Invoices copied from it keep their own figures.
func (s *LedgerService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		current, err := tx.Transactions().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return apperror.NewNotFoundError("Transaction")
		}

		revert := NegateDelta(ComputeStockDelta(current.Type, current.Items))
		if err := tx.Items().ApplyStockDeltas(ctx, revert); err != nil {
			return err
		}
		if err := tx.Invoices().UnlinkTransaction(ctx, id); err != nil {
			return err
		}
		if err := tx.Payments().DeleteByTransactionID(ctx, id); err != nil {
			return err
		}
		if err := tx.Transactions().DeleteItems(ctx, id); err != nil {
			return err
		}
		return tx.Transactions().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("transaction deleted", zap.String("id", id.String()))
	return nil
}

// Get returns the transaction with customer, supplier, items and payments
func (s *LedgerService) Get(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	txn, err := s.store.Transactions().GetWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, apperror.NewNotFoundError("Transaction")
	}
	return txn, nil
}

// List returns a page of transactions, newest first
func (s *LedgerService) List(ctx context.Context, input *ListTransactionsInput) (*pagination.PaginatedResult[entity.Transaction], error) {
	if input.Pagination == nil {
		input.Pagination = pagination.DefaultPagination()
	}
	input.Pagination.Validate()

	txns, total, err := s.store.Transactions().List(ctx, &repository.TransactionFilterParams{
		Pagination:    input.Pagination,
		Types:         input.Types,
		CustomerID:    input.CustomerID,
		SupplierID:    input.SupplierID,
		PaymentStatus: input.PaymentStatus,
		Search:        input.Search,
		From:          input.From,
		To:            input.To,
	})
	if err != nil {
		return nil, err
	}

	p := pagination.NewPagination(input.Pagination.Page, input.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(txns, p), nil
}

// assemble prices the input onto txn and returns the lines to insert
func (s *LedgerService) assemble(ctx context.Context, tx repository.Store, txn *entity.Transaction, input *TransactionInput) ([]entity.TransactionItem, error) {
	date := input.Date
	if date.IsZero() {
		date = s.now()
	}

	txn.Type = input.Type
	txn.Date = date.UTC()
	txn.PaymentStatus = input.PaymentStatus
	if txn.PaymentStatus == "" {
		txn.PaymentStatus = enum.PaymentStatusPending
	}
	txn.PaymentMethod = strings.TrimSpace(input.PaymentMethod)
	txn.CustomerID = input.CustomerID
	txn.SupplierID = input.SupplierID
	txn.Category = input.Category
	txn.Description = input.Description
	txn.Notes = input.Notes
	txn.Currency = strings.ToUpper(strings.TrimSpace(input.Currency))
	if txn.Currency == "" {
		txn.Currency = defaultCurrency
	}
	txn.ExchangeRate = decimal.NewFromInt(1)
	if input.ExchangeRate.Valid {
		txn.ExchangeRate = input.ExchangeRate.Decimal
	}

	if !input.Type.HasItems() {
		amount := *input.Amount
		txn.Subtotal = amount
		txn.TaxAmount = input.TaxAmount
		txn.DiscountAmount = input.DiscountAmount
		txn.TotalAmount = amount.Add(input.TaxAmount).Sub(input.DiscountAmount)
		return nil, nil
	}

	catalog, err := loadItems(ctx, tx, input.Items)
	if err != nil {
		return nil, err
	}

	var totals documentTotals
	lines := make([]entity.TransactionItem, 0, len(input.Items))
	for i, in := range input.Items {
		item := catalog[in.ItemID]
		price := defaultLinePrice(in.UnitPrice, input.Type, item)
		gst := gstRates{CGST: in.CGSTRate, SGST: in.SGSTRate, IGST: in.IGSTRate}
		priced := priceLine(in.Quantity, price, in.Discount, resolveTaxRate(in.TaxRate, gst, item), gst)
		totals.add(priced, in.Discount)

		lines = append(lines, entity.TransactionItem{
			ItemID:      in.ItemID,
			Position:    i,
			Quantity:    in.Quantity,
			UnitPrice:   price,
			Discount:    in.Discount,
			TaxRate:     priced.TaxRate,
			CGSTRate:    in.CGSTRate,
			SGSTRate:    in.SGSTRate,
			IGSTRate:    in.IGSTRate,
			CGSTAmount:  priced.CGSTAmount,
			SGSTAmount:  priced.SGSTAmount,
			IGSTAmount:  priced.IGSTAmount,
			TaxAmount:   priced.Tax,
			TotalAmount: priced.Total,
		})
	}

	txn.Subtotal = totals.Subtotal
	txn.DiscountAmount = totals.Discount
	txn.TaxAmount = totals.Tax
	txn.TotalAmount = totals.Total
	return lines, nil
}

// defaultLinePrice falls back to the selling price on sales and the cost on purchases
func defaultLinePrice(explicit *decimal.Decimal, txnType enum.TransactionType, item *entity.Item) decimal.Decimal {
	if explicit != nil {
		return *explicit
	}
	if txnType == enum.TransactionTypePurchase {
		return item.EffectiveCost()
	}
	return item.UnitPrice
}

func writeLines(ctx context.Context, tx repository.Store, txnID uuid.UUID, lines []entity.TransactionItem) error {
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].TransactionID = txnID
	}
	return tx.Transactions().CreateItems(ctx, lines)
}

func paymentFor(txn *entity.Transaction) *entity.Payment {
	id := txn.ID
	return &entity.Payment{
		TransactionID: &id,
		Amount:        txn.TotalAmount,
		PaymentDate:   txn.Date,
		Status:        enum.PaymentStatusCompleted,
		PaymentMethod: txn.PaymentMethod,
	}
}

// loadItems fetches every referenced item in one query; a missing id is NotFound
func loadItems(ctx context.Context, tx repository.Store, lines []TransactionLineInput) (map[uuid.UUID]*entity.Item, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]bool, len(lines))
	for _, l := range lines {
		if !seen[l.ItemID] {
			seen[l.ItemID] = true
			ids = append(ids, l.ItemID)
		}
	}

	items, err := tx.Items().GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	catalog := make(map[uuid.UUID]*entity.Item, len(items))
	for i := range items {
		catalog[items[i].ID] = &items[i]
	}
	for _, id := range ids {
		if _, ok := catalog[id]; !ok {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("Item %s", id))
		}
	}
	return catalog, nil
}

func checkParties(ctx context.Context, tx repository.Store, input *TransactionInput) error {
	if input.CustomerID != nil {
		if err := checkParty(ctx, tx, *input.CustomerID, "Customer"); err != nil {
			return err
		}
	}
	if input.SupplierID != nil {
		if err := checkParty(ctx, tx, *input.SupplierID, "Supplier"); err != nil {
			return err
		}
	}
	return nil
}

func checkParty(ctx context.Context, tx repository.Store, id uuid.UUID, resource string) error {
	party, err := tx.Parties().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if party == nil {
		return apperror.NewNotFoundError(resource)
	}
	return nil
}

func validateTransactionInput(input *TransactionInput) error {
	var fieldErrors []apperror.FieldError
	add := func(field, message string) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: field, Message: message})
	}

	if !input.Type.IsValid() {
		add("type", "must be one of SALE, PURCHASE, EXPENSE, INCOME")
	}
	if input.PaymentStatus != "" && !input.PaymentStatus.IsValid() {
		add("payment_status", "must be one of PENDING, COMPLETED, FAILED, REFUNDED")
	}
	if input.CustomerID != nil && input.SupplierID != nil {
		add("supplier_id", "a transaction references either a customer or a supplier")
	}
	if input.ExchangeRate.Valid && !input.ExchangeRate.Decimal.IsPositive() {
		add("exchange_rate", "must be positive")
	}

	if input.Type.HasItems() {
		if len(input.Items) == 0 {
			add("items", "at least one item is required")
		}
		for i, line := range input.Items {
			field := fmt.Sprintf("items[%d]", i)
			if line.ItemID == uuid.Nil {
				add(field+".item_id", "is required")
			}
			if line.Quantity <= 0 {
				add(field+".quantity", "must be greater than zero")
			}
			if line.UnitPrice != nil && line.UnitPrice.IsNegative() {
				add(field+".unit_price", "must not be negative")
			}
			if line.Discount.IsNegative() {
				add(field+".discount", "must not be negative")
			}
			if line.TaxRate != nil && line.TaxRate.IsNegative() {
				add(field+".tax_rate", "must not be negative")
			}
		}
	} else if input.Type.IsValid() {
		if input.Amount == nil {
			add("amount", "is required")
		} else if input.Amount.IsNegative() {
			add("amount", "must not be negative")
		}
		if input.Category == nil || strings.TrimSpace(*input.Category) == "" {
			add("category", "is required")
		}
		if input.TaxAmount.IsNegative() {
			add("tax_amount", "must not be negative")
		}
		if input.DiscountAmount.IsNegative() {
			add("discount_amount", "must not be negative")
		}
	}

	if len(fieldErrors) > 0 {
		return apperror.NewValidationError("Validation failed", fieldErrors...)
	}
	return nil
}
