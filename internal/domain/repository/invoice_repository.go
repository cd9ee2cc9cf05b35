package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bizledger-api/internal/domain/entity"
	"github.com/sangkips/bizledger-api/internal/domain/enum"
	"github.com/sangkips/bizledger-api/pkg/pagination"
)

//go:generate mockgen -source=invoice_repository.go -destination=mocks/invoice_repository_mock.go -package=mocks

// InvoiceRepository defines the interface for invoice data operations
type InvoiceRepository interface {
	// Create inserts the invoice row only; items are written with CreateItems.
	Create(ctx context.Context, invoice *entity.Invoice) error
	// Update overwrites the invoice row, recomputing its balance.
	Update(ctx context.Context, invoice *entity.Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	List(ctx context.Context, params *InvoiceFilterParams) ([]entity.Invoice, int64, error)
	CreateItems(ctx context.Context, items []entity.InvoiceItem) error
	DeleteItems(ctx context.Context, invoiceID uuid.UUID) error
	// MarkOverdue moves every SENT invoice due before now to OVERDUE and returns how many changed.
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
	// UnlinkTransaction clears the reference held by invoices copied from the transaction.
	UnlinkTransaction(ctx context.Context, transactionID uuid.UUID) error
}

// InvoiceFilterParams contains filtering parameters for invoice queries
type InvoiceFilterParams struct {
	Pagination *pagination.PaginationParams
	Status     enum.InvoiceStatus
	CustomerID *uuid.UUID
	Search     string
	From       *time.Time
	To         *time.Time
}
