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

// InvoiceService handles invoice creation, edits, status changes and payments
type InvoiceService struct {
	store            repository.Store
	numbers          *docnum.Generator
	logger           *zap.Logger
	defaultTermsDays int
	now              func() time.Time
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(store repository.Store, numbers *docnum.Generator, defaultTermsDays int, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{
		store:            store,
		numbers:          numbers,
		logger:           logger,
		defaultTermsDays: defaultTermsDays,
		now:              time.Now,
	}
}

// InvoiceLineInput represents a line on an invoice. ItemID is optional for free-text lines.
type InvoiceLineInput struct {
	ItemID      *uuid.UUID
	Description string
	Quantity    int
	UnitPrice   *decimal.Decimal
	Discount    decimal.Decimal
	TaxRate     *decimal.Decimal
	CGSTRate    decimal.NullDecimal
	SGSTRate    decimal.NullDecimal
	IGSTRate    decimal.NullDecimal
}

// InvoiceInput carries every writable field of an invoice
type InvoiceInput struct {
	CustomerID uuid.UUID
	IssueDate  time.Time
	DueDate    *time.Time
	Status     enum.InvoiceStatus
	Notes      *string
	Terms      *string
	Items      []InvoiceLineInput
}

// FromTransactionInput overrides the dates and texts of an invoice copied from a sale
type FromTransactionInput struct {
	IssueDate *time.Time
	DueDate   *time.Time
	Notes     *string
	Terms     *string
}

// PaymentInput represents a payment received against an invoice
type PaymentInput struct {
	Amount        decimal.Decimal
	PaymentDate   time.Time
	Status        enum.PaymentStatus
	PaymentMethod string
	Reference     *string
	Notes         *string
}

// ListInvoicesInput holds the list filters
type ListInvoicesInput struct {
	Pagination *pagination.PaginationParams
	Status     enum.InvoiceStatus
	CustomerID *uuid.UUID
	Search     string
	From       *time.Time
	To         *time.Time
}

// Create issues a new invoice numbered INV-YYYYMM-<id>
func (s *InvoiceService) Create(ctx context.Context, input *InvoiceInput) (*entity.Invoice, error) {
	if err := validateInvoiceInput(input); err != nil {
		return nil, err
	}
	if input.Status != "" && input.Status != enum.InvoiceStatusDraft && input.Status != enum.InvoiceStatusSent {
		return nil, apperror.NewFieldError("status", "a new invoice is either DRAFT or SENT")
	}

	var id uuid.UUID
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		customer, err := loadCustomer(ctx, tx, input.CustomerID)
		if err != nil {
			return err
		}

		invoice := &entity.Invoice{Status: input.Status}
		if invoice.Status == "" {
			invoice.Status = enum.InvoiceStatusDraft
		}
		lines, err := s.assemble(ctx, tx, invoice, customer, input)
		if err != nil {
			return err
		}
		invoice.InvoiceNo = s.numbers.Next(docnum.PrefixInvoice, invoice.IssueDate)

		if err := tx.Invoices().Create(ctx, invoice); err != nil {
			return err
		}
		if err := writeInvoiceLines(ctx, tx, invoice.ID, lines); err != nil {
			return err
		}
		id = invoice.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice created", zap.String("id", id.String()))
	return s.Get(ctx, id)
}

// CreateFromTransaction copies a sale into a new invoice that references it.
// A sale that was already paid produces a paid invoice.
func (s *InvoiceService) CreateFromTransaction(ctx context.Context, transactionID uuid.UUID, input *FromTransactionInput) (*entity.Invoice, error) {
	if input == nil {
		input = &FromTransactionInput{}
	}

	var id uuid.UUID
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		txn, err := tx.Transactions().GetWithDetails(ctx, transactionID)
		if err != nil {
			return err
		}
		if txn == nil {
			return apperror.NewNotFoundError("Transaction")
		}
		if txn.Type != enum.TransactionTypeSale {
			return apperror.NewBadRequestError("Only SALE transactions can be invoiced")
		}
		if txn.CustomerID == nil {
			return apperror.NewBadRequestError("Transaction has no customer")
		}
		customer, err := loadCustomer(ctx, tx, *txn.CustomerID)
		if err != nil {
			return err
		}

		issue := txn.Date
		if input.IssueDate != nil {
			issue = *input.IssueDate
		}
		due, err := s.dueDate(issue, input.DueDate, customer)
		if err != nil {
			return err
		}

		tid := txn.ID
		invoice := &entity.Invoice{
			Status:         enum.InvoiceStatusDraft,
			CustomerID:     customer.ID,
			TransactionID:  &tid,
			IssueDate:      issue.UTC(),
			DueDate:        due.UTC(),
			Subtotal:       txn.Subtotal,
			TaxAmount:      txn.TaxAmount,
			DiscountAmount: txn.DiscountAmount,
			TotalAmount:    txn.TotalAmount,
			Notes:          input.Notes,
			Terms:          input.Terms,
		}
		for _, p := range txn.Payments {
			if p.Status == enum.PaymentStatusCompleted {
				invoice.PaidAmount = invoice.PaidAmount.Add(p.Amount)
			}
		}
		invoice.SyncBalance()
		if invoice.TotalAmount.IsPositive() && invoice.BalanceAmount.IsZero() {
			invoice.Status = enum.InvoiceStatusPaid
		}
		invoice.InvoiceNo = s.numbers.Next(docnum.PrefixInvoice, invoice.IssueDate)

		lines := make([]entity.InvoiceItem, 0, len(txn.Items))
		for _, ti := range txn.Items {
			itemID := ti.ItemID
			description := ""
			if ti.Item != nil {
				description = ti.Item.Name
			}
			lines = append(lines, entity.InvoiceItem{
				ItemID:      &itemID,
				Position:    ti.Position,
				Description: description,
				Quantity:    ti.Quantity,
				UnitPrice:   ti.UnitPrice,
				Discount:    ti.Discount,
				TaxRate:     ti.TaxRate,
				CGSTRate:    ti.CGSTRate,
				SGSTRate:    ti.SGSTRate,
				IGSTRate:    ti.IGSTRate,
				CGSTAmount:  ti.CGSTAmount,
				SGSTAmount:  ti.SGSTAmount,
				IGSTAmount:  ti.IGSTAmount,
				TaxAmount:   ti.TaxAmount,
				TotalAmount: ti.TotalAmount,
			})
		}

		if err := tx.Invoices().Create(ctx, invoice); err != nil {
			return err
		}
		if err := writeInvoiceLines(ctx, tx, invoice.ID, lines); err != nil {
			return err
		}
		id = invoice.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice created from transaction",
		zap.String("id", id.String()),
		zap.String("transaction_id", transactionID.String()),
	)
	return s.Get(ctx, id)
}

// Get returns the invoice with its customer, items and payments
func (s *InvoiceService) Get(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.store.Invoices().GetWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return invoice, nil
}

// List returns a page of invoices, newest first
func (s *InvoiceService) List(ctx context.Context, input *ListInvoicesInput) (*pagination.PaginatedResult[entity.Invoice], error) {
	if input.Pagination == nil {
		input.Pagination = pagination.DefaultPagination()
	}
	input.Pagination.Validate()
	if input.Status != "" && !input.Status.IsValid() {
		return nil, apperror.NewFieldError("status", "unknown invoice status")
	}

	invoices, total, err := s.store.Invoices().List(ctx, &repository.InvoiceFilterParams{
		Pagination: input.Pagination,
		Status:     input.Status,
		CustomerID: input.CustomerID,
		Search:     input.Search,
		From:       input.From,
		To:         input.To,
	})
	if err != nil {
		return nil, err
	}

	p := pagination.NewPagination(input.Pagination.Page, input.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(invoices, p), nil
}

// Update replaces the customer, dates, texts and lines of an open invoice.
// Payments already recorded are kept.
func (s *InvoiceService) Update(ctx context.Context, id uuid.UUID, input *InvoiceInput) (*entity.Invoice, error) {
	if err := validateInvoiceInput(input); err != nil {
		return nil, err
	}

	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		invoice, err := tx.Invoices().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if invoice == nil {
			return apperror.NewNotFoundError("Invoice")
		}
		if invoice.Status.IsTerminal() {
			return apperror.NewBadRequestError(fmt.Sprintf("Cannot edit a %s invoice", invoice.Status))
		}

		customer, err := loadCustomer(ctx, tx, input.CustomerID)
		if err != nil {
			return err
		}
		if err := tx.Invoices().DeleteItems(ctx, id); err != nil {
			return err
		}
		lines, err := s.assemble(ctx, tx, invoice, customer, input)
		if err != nil {
			return err
		}
		invoice.SyncBalance()
		if invoice.PaidAmount.IsPositive() && invoice.BalanceAmount.IsZero() {
			invoice.Status = enum.InvoiceStatusPaid
		}
		if err := tx.Invoices().Update(ctx, invoice); err != nil {
			return err
		}
		return writeInvoiceLines(ctx, tx, id, lines)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// Delete removes a draft invoice
func (s *InvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		invoice, err := tx.Invoices().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if invoice == nil {
			return apperror.NewNotFoundError("Invoice")
		}
		if invoice.Status != enum.InvoiceStatusDraft {
			return apperror.NewBadRequestError("Only draft invoices can be deleted")
		}
		return tx.Invoices().Delete(ctx, id)
	})
}

// Send moves a draft invoice to SENT
func (s *InvoiceService) Send(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	return s.transition(ctx, id, enum.InvoiceStatusSent)
}

// Cancel voids any invoice that is not yet paid
func (s *InvoiceService) Cancel(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	return s.transition(ctx, id, enum.InvoiceStatusCancelled)
}

func (s *InvoiceService) transition(ctx context.Context, id uuid.UUID, next enum.InvoiceStatus) (*entity.Invoice, error) {
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		invoice, err := tx.Invoices().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if invoice == nil {
			return apperror.NewNotFoundError("Invoice")
		}
		if !invoice.Status.CanTransitionTo(next) {
			return apperror.NewBadRequestError(fmt.Sprintf("Cannot move invoice from %s to %s", invoice.Status, next))
		}
		invoice.Status = next
		return tx.Invoices().Update(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice status changed", zap.String("id", id.String()), zap.String("status", next.String()))
	return s.Get(ctx, id)
}

// RecordPayment stores a payment against the invoice. Completed payments raise
// the paid amount and settle the invoice once nothing is left to pay.
func (s *InvoiceService) RecordPayment(ctx context.Context, id uuid.UUID, input *PaymentInput) (*entity.Invoice, error) {
	if !input.Amount.IsPositive() {
		return nil, apperror.NewFieldError("amount", "must be greater than zero")
	}
	if input.Status == "" {
		input.Status = enum.PaymentStatusCompleted
	}
	if !input.Status.IsValid() {
		return nil, apperror.NewFieldError("status", "unknown payment status")
	}

	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		invoice, err := tx.Invoices().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if invoice == nil {
			return apperror.NewNotFoundError("Invoice")
		}
		if invoice.Status.IsTerminal() {
			return apperror.NewBadRequestError(fmt.Sprintf("Cannot record a payment on a %s invoice", invoice.Status))
		}
		if input.Status == enum.PaymentStatusCompleted && input.Amount.GreaterThan(invoice.BalanceAmount) {
			return apperror.NewFieldError("amount", "exceeds the outstanding balance")
		}

		paidAt := input.PaymentDate
		if paidAt.IsZero() {
			paidAt = s.now()
		}
		invoiceID := invoice.ID
		payment := &entity.Payment{
			InvoiceID:     &invoiceID,
			Amount:        input.Amount,
			PaymentDate:   paidAt.UTC(),
			Status:        input.Status,
			PaymentMethod: strings.TrimSpace(input.PaymentMethod),
			Reference:     input.Reference,
			Notes:         input.Notes,
		}
		if err := tx.Payments().Create(ctx, payment); err != nil {
			return err
		}

		if input.Status != enum.PaymentStatusCompleted {
			return nil
		}
		invoice.PaidAmount = invoice.PaidAmount.Add(input.Amount)
		invoice.SyncBalance()
		if invoice.BalanceAmount.IsZero() {
			invoice.Status = enum.InvoiceStatusPaid
		}
		return tx.Invoices().Update(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// MarkOverdue flags every SENT invoice whose due date has passed
func (s *InvoiceService) MarkOverdue(ctx context.Context) (int64, error) {
	n, err := s.store.Invoices().MarkOverdue(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("invoices marked overdue", zap.Int64("count", n))
	}
	return n, nil
}

// assemble prices the input onto invoice and returns the lines to insert
func (s *InvoiceService) assemble(ctx context.Context, tx repository.Store, invoice *entity.Invoice, customer *entity.Party, input *InvoiceInput) ([]entity.InvoiceItem, error) {
	issue := input.IssueDate
	if issue.IsZero() {
		issue = s.now()
	}
	due, err := s.dueDate(issue, input.DueDate, customer)
	if err != nil {
		return nil, err
	}

	invoice.CustomerID = customer.ID
	invoice.IssueDate = issue.UTC()
	invoice.DueDate = due.UTC()
	invoice.Notes = input.Notes
	invoice.Terms = input.Terms

	var ids []uuid.UUID
	for _, l := range input.Items {
		if l.ItemID != nil {
			ids = append(ids, *l.ItemID)
		}
	}
	catalog := make(map[uuid.UUID]*entity.Item)
	if len(ids) > 0 {
		items, err := tx.Items().GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range items {
			catalog[items[i].ID] = &items[i]
		}
	}

	var totals documentTotals
	lines := make([]entity.InvoiceItem, 0, len(input.Items))
	for i, in := range input.Items {
		var item *entity.Item
		if in.ItemID != nil {
			var ok bool
			if item, ok = catalog[*in.ItemID]; !ok {
				return nil, apperror.NewNotFoundError(fmt.Sprintf("Item %s", *in.ItemID))
			}
		}

		price := decimal.Zero
		switch {
		case in.UnitPrice != nil:
			price = *in.UnitPrice
		case item != nil:
			price = item.UnitPrice
		default:
			return nil, apperror.NewFieldError(fmt.Sprintf("items[%d].unit_price", i), "is required for free-text lines")
		}

		description := strings.TrimSpace(in.Description)
		if description == "" && item != nil {
			description = item.Name
		}

		gst := gstRates{CGST: in.CGSTRate, SGST: in.SGSTRate, IGST: in.IGSTRate}
		priced := priceLine(in.Quantity, price, in.Discount, resolveTaxRate(in.TaxRate, gst, item), gst)
		totals.add(priced, in.Discount)

		lines = append(lines, entity.InvoiceItem{
			ItemID:      in.ItemID,
			Position:    i,
			Description: description,
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

	invoice.Subtotal = totals.Subtotal
	invoice.DiscountAmount = totals.Discount
	invoice.TaxAmount = totals.Tax
	invoice.TotalAmount = totals.Total
	invoice.SyncBalance()
	return lines, nil
}

// dueDate defaults to the issue date plus the customer's payment terms
func (s *InvoiceService) dueDate(issue time.Time, explicit *time.Time, customer *entity.Party) (time.Time, error) {
	if explicit != nil {
		if explicit.Before(issue) {
			return time.Time{}, apperror.NewFieldError("due_date", "must not be before the issue date")
		}
		return *explicit, nil
	}
	terms := customer.PaymentTerms
	if terms <= 0 {
		terms = s.defaultTermsDays
	}
	return issue.AddDate(0, 0, terms), nil
}

func loadCustomer(ctx context.Context, tx repository.Store, id uuid.UUID) (*entity.Party, error) {
	party, err := tx.Parties().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if party == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	if party.Type != enum.PartyTypeCustomer {
		return nil, apperror.NewFieldError("customer_id", "party is not a customer")
	}
	return party, nil
}

func writeInvoiceLines(ctx context.Context, tx repository.Store, invoiceID uuid.UUID, lines []entity.InvoiceItem) error {
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].InvoiceID = invoiceID
	}
	return tx.Invoices().CreateItems(ctx, lines)
}

func validateInvoiceInput(input *InvoiceInput) error {
	var fieldErrors []apperror.FieldError
	add := func(field, message string) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: field, Message: message})
	}

	if input.CustomerID == uuid.Nil {
		add("customer_id", "is required")
	}
	if len(input.Items) == 0 {
		add("items", "at least one item is required")
	}
	for i, line := range input.Items {
		field := fmt.Sprintf("items[%d]", i)
		if line.Quantity <= 0 {
			add(field+".quantity", "must be greater than zero")
		}
		if line.ItemID == nil && strings.TrimSpace(line.Description) == "" {
			add(field+".description", "is required when no item is referenced")
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

	if len(fieldErrors) > 0 {
		return apperror.NewValidationError("Validation failed", fieldErrors...)
	}
	return nil
}
