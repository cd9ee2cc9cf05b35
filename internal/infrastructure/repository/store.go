package repository

import (
	"context"
	"database/sql"

	domainRepo "github.com/sangkips/bizledger-api/internal/domain/repository"
	"gorm.io/gorm"
)

type store struct {
	db *gorm.DB
}

// NewStore creates the gorm-backed ledger store
func NewStore(db *gorm.DB) domainRepo.Store {
	return &store{db: db}
}

func (s *store) Transactions() domainRepo.TransactionRepository {
	return NewTransactionRepository(s.db)
}

func (s *store) Items() domainRepo.ItemRepository {
	return NewItemRepository(s.db)
}

func (s *store) Categories() domainRepo.CategoryRepository {
	return NewCategoryRepository(s.db)
}

func (s *store) Parties() domainRepo.PartyRepository {
	return NewPartyRepository(s.db)
}

func (s *store) Invoices() domainRepo.InvoiceRepository {
	return NewInvoiceRepository(s.db)
}

func (s *store) Payments() domainRepo.PaymentRepository {
	return NewPaymentRepository(s.db)
}

func (s *store) Analytics() domainRepo.AnalyticsRepository {
	return NewAnalyticsRepository(s.db)
}

func (s *store) WithinTransaction(ctx context.Context, fn func(tx domainRepo.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&store{db: tx})
	})
}

func (s *store) WithinSnapshot(ctx context.Context, fn func(tx domainRepo.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&store{db: tx})
	}, snapshotOptions(s.db))
}

// snapshotOptions requests a repeatable-read, read-only transaction where the
// driver honours it. SQLite transactions are already serializable.
func snapshotOptions(db *gorm.DB) *sql.TxOptions {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
}
