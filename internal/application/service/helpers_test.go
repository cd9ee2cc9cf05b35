package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bizledger-api/internal/config"
	"github.com/sangkips/bizledger-api/internal/domain/entity"
	"github.com/sangkips/bizledger-api/internal/domain/enum"
	"github.com/sangkips/bizledger-api/internal/domain/repository"
	"github.com/sangkips/bizledger-api/internal/infrastructure/database"
	infrarepo "github.com/sangkips/bizledger-api/internal/infrastructure/repository"
	"github.com/sangkips/bizledger-api/pkg/apperror"
	"github.com/sangkips/bizledger-api/pkg/docnum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fixedNow is the clock every service under test reads
var fixedNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	db      *gorm.DB
	store   repository.Store
	numbers *docnum.Generator
	logger  *zap.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zap.NewNop()

	db, err := database.Open(&config.DatabaseConfig{Driver: database.DriverSQLite, Path: ":memory:", LogLevel: "silent"}, log)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, log))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	numbers, err := docnum.NewGenerator(1)
	require.NoError(t, err)

	return &testEnv{db: db, store: infrarepo.NewStore(db), numbers: numbers, logger: log}
}

func (e *testEnv) ledger() *LedgerService {
	s := NewLedgerService(e.store, e.numbers, e.logger)
	s.now = func() time.Time { return fixedNow }
	return s
}

func (e *testEnv) invoices() *InvoiceService {
	s := NewInvoiceService(e.store, e.numbers, 30, e.logger)
	s.now = func() time.Time { return fixedNow }
	return s
}

func (e *testEnv) reports() *ReportService {
	s := NewReportService(e.store, 5*time.Second, e.logger)
	s.now = func() time.Time { return fixedNow }
	return s
}

func (e *testEnv) item(t *testing.T, stock int, price, cost string) *entity.Item {
	t.Helper()
	item := &entity.Item{
		Name:          "Item " + uuid.NewString()[:8],
		SKU:           "SKU-" + uuid.NewString()[:8],
		UnitPrice:     dec(price),
		StockQuantity: stock,
		IsActive:      true,
	}
	if cost != "" {
		item.CostPrice = decimal.NewNullDecimal(dec(cost))
	}
	require.NoError(t, e.db.Create(item).Error)
	return item
}

func (e *testEnv) party(t *testing.T, partyType enum.PartyType, email string) *entity.Party {
	t.Helper()
	p := &entity.Party{Type: partyType, Name: "Party " + uuid.NewString()[:8]}
	if email != "" {
		p.Email = &email
	}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func (e *testEnv) stockOf(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var item entity.Item
	require.NoError(t, e.db.First(&item, "id = ?", id).Error)
	return item.StockQuantity
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Equal(t, dec(want).StringFixed(2), got.StringFixed(2))
}

func assertKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, kind), "expected %s error, got %v", kind, err)
}

func sale(itemID uuid.UUID, qty int, price, taxRate string) *TransactionInput {
	line := TransactionLineInput{ItemID: itemID, Quantity: qty, UnitPrice: decPtr(price)}
	if taxRate != "" {
		line.TaxRate = decPtr(taxRate)
	}
	return &TransactionInput{
		Type:  enum.TransactionTypeSale,
		Date:  fixedNow,
		Items: []TransactionLineInput{line},
	}
}

func decimalRate(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}
