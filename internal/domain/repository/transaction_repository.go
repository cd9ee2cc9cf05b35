package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bizledger-api/internal/domain/entity"
	"github.com/sangkips/bizledger-api/internal/domain/enum"
	"github.com/sangkips/bizledger-api/pkg/pagination"
)

// TransactionRepository defines the interface for ledger entry operations
type TransactionRepository interface {
	// Create inserts the transaction row only; items and payments are written separately.
	Create(ctx context.Context, txn *entity.Transaction) error
	// Update overwrites the transaction row only.
	Update(ctx context.Context, txn *entity.Transaction) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error)
	// GetForUpdate loads the transaction with its items and payments and locks the row.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*entity.Transaction, error)
	GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Transaction, error)
	List(ctx context.Context, params *TransactionFilterParams) ([]entity.Transaction, int64, error)
	Recent(ctx context.Context, limit int) ([]entity.Transaction, error)
	CreateItems(ctx context.Context, items []entity.TransactionItem) error
	DeleteItems(ctx context.Context, transactionID uuid.UUID) error
}

// TransactionFilterParams contains filtering parameters for transaction queries
type TransactionFilterParams struct {
	Pagination    *pagination.PaginationParams
	Types         []enum.TransactionType
	CustomerID    *uuid.UUID
	SupplierID    *uuid.UUID
	PaymentStatus enum.PaymentStatus
	Search        string
	From          *time.Time
	To            *time.Time
}
