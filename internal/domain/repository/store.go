package repository

import "context"

// Store bundles the ledger repositories behind one unit-of-work boundary.
// Repositories obtained from the Store passed to fn operate inside that unit.
type Store interface {
	Transactions() TransactionRepository
	Items() ItemRepository
	Categories() CategoryRepository
	Parties() PartyRepository
	Invoices() InvoiceRepository
	Payments() PaymentRepository
	Analytics() AnalyticsRepository

	// WithinTransaction commits everything fn writes, or nothing if fn returns an error.
	WithinTransaction(ctx context.Context, fn func(tx Store) error) error
	// WithinSnapshot runs fn read-only against a single consistent view of the ledger.
	WithinSnapshot(ctx context.Context, fn func(tx Store) error) error
}
