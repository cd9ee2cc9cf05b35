package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/bizledger-api/internal/application/service"
	"github.com/sangkips/bizledger-api/internal/config"
	"github.com/sangkips/bizledger-api/internal/infrastructure/database"
	"github.com/sangkips/bizledger-api/internal/infrastructure/repository"
	"github.com/sangkips/bizledger-api/internal/presentation/http/handler"
	"github.com/sangkips/bizledger-api/internal/presentation/http/middleware"
	"github.com/sangkips/bizledger-api/pkg/docnum"
	"github.com/sangkips/bizledger-api/pkg/email"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
	Meta struct {
		RequestID string `json:"request_id"`
	} `json:"meta"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
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
	store := repository.NewStore(db)

	reports := service.NewReportService(store, 5*time.Second, log)
	handlers := &Handlers{
		Transaction: handler.NewTransactionHandler(service.NewLedgerService(store, numbers, log)),
		Invoice: handler.NewInvoiceHandler(
			service.NewInvoiceService(store, numbers, 30, log),
			service.NewReminderService(store, email.NewComposer("Acme Traders"), log),
			reports,
		),
		Report:   handler.NewReportHandler(reports),
		Item:     handler.NewItemHandler(service.NewItemService(store.Items(), store.Categories())),
		Party:    handler.NewPartyHandler(service.NewPartyService(store.Parties())),
		Category: handler.NewCategoryHandler(service.NewCategoryService(store.Categories())),
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{
		App:         config.AppConfig{Name: "bizledger-api"},
		RateLimit:   config.RateLimitConfig{Requests: 1000, Duration: 1},
		Idempotency: config.IdempotencyConfig{TTL: time.Hour},
	}
	return Setup(ctx, handlers, &Deps{
		Cfg:             cfg,
		Logger:          log,
		IdempotencyRepo: repository.NewIdempotencyRepository(db),
	})
}

func do(t *testing.T, router *gin.Engine, method, path string, body interface{}, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func createItem(t *testing.T, router *gin.Engine, stock int, price string) uuid.UUID {
	t.Helper()
	w, env := do(t, router, http.MethodPost, "/api/v1/items", map[string]interface{}{
		"name":           "Widget " + uuid.NewString()[:6],
		"sku":            "W-" + uuid.NewString()[:6],
		"unit_price":     price,
		"stock_quantity": stock,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var item struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &item))
	return item.ID
}

func saleBody(itemID uuid.UUID) map[string]interface{} {
	return map[string]interface{}{
		"type":           "sale",
		"payment_status": "COMPLETED",
		"payment_method": "cash",
		"items": []map[string]interface{}{
			{"item_id": itemID, "quantity": 4, "unit_price": "8.00", "tax_rate": "10"},
		},
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	w, _ := do(t, router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestTransactionLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	itemID := createItem(t, router, 10, "8.00")

	w, env := do(t, router, http.MethodPost, "/api/v1/transactions", saleBody(itemID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, env.Success)

	var txn struct {
		ID          uuid.UUID       `json:"id"`
		TotalAmount decimal.Decimal `json:"total_amount"`
		Items       []struct {
			Quantity int `json:"quantity"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &txn))
	assert.Equal(t, "35.20", txn.TotalAmount.StringFixed(2))
	require.Len(t, txn.Items, 1)

	w, _ = do(t, router, http.MethodGet, "/api/v1/transactions/"+txn.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = do(t, router, http.MethodGet, "/api/v1/items/"+itemID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var item struct {
		StockQuantity int `json:"stock_quantity"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &item))
	assert.Equal(t, 6, item.StockQuantity)

	w, _ = do(t, router, http.MethodDelete, "/api/v1/transactions/"+txn.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, router, http.MethodGet, "/api/v1/transactions/"+txn.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTransactionValidationErrors(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name      string
		path      string
		body      interface{}
		wantField string
	}{
		{"sale without items", "/api/v1/transactions", map[string]interface{}{"type": "SALE"}, "items"},
		{"expense without amount", "/api/v1/transactions", map[string]interface{}{"type": "EXPENSE"}, "amount"},
		{"bad date", "/api/v1/transactions", map[string]interface{}{"type": "INCOME", "amount": "5", "date": "15/03/2024"}, "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, router, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, env.Success)
			require.NotEmpty(t, env.Errors)
			assert.Equal(t, tt.wantField, env.Errors[0].Field)
		})
	}

	w, _ := do(t, router, http.MethodGet, "/api/v1/transactions/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIdempotentTransactionCreate(t *testing.T) {
	router := newTestRouter(t)
	itemID := createItem(t, router, 10, "8.00")

	first, firstEnv := do(t, router, http.MethodPost, "/api/v1/transactions", saleBody(itemID), middleware.IdempotencyKeyHeader, "sale-001")
	require.Equal(t, http.StatusCreated, first.Code)

	second, secondEnv := do(t, router, http.MethodPost, "/api/v1/transactions", saleBody(itemID), middleware.IdempotencyKeyHeader, "sale-001")
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get(middleware.IdempotencyReplayedHeader))
	assert.JSONEq(t, string(firstEnv.Data), string(secondEnv.Data))

	// the replay must not move stock again
	_, env := do(t, router, http.MethodGet, "/api/v1/items/"+itemID.String(), nil)
	var item struct {
		StockQuantity int `json:"stock_quantity"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &item))
	assert.Equal(t, 6, item.StockQuantity)
}

func TestInvoiceFlowOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	w, env := do(t, router, http.MethodPost, "/api/v1/parties", map[string]interface{}{
		"type":  "CUSTOMER",
		"name":  "Globex",
		"email": "ap@globex.test",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var customer struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &customer))

	w, env = do(t, router, http.MethodPost, "/api/v1/invoices", map[string]interface{}{
		"customer_id": customer.ID,
		"status":      "SENT",
		"items": []map[string]interface{}{
			{"description": "Consulting", "quantity": 2, "unit_price": "50.00", "tax_rate": "10"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var invoice struct {
		ID            uuid.UUID       `json:"id"`
		TotalAmount   decimal.Decimal `json:"total_amount"`
		BalanceAmount decimal.Decimal `json:"balance_amount"`
		Status        string          `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &invoice))
	assert.Equal(t, "110.00", invoice.TotalAmount.StringFixed(2))
	assert.Equal(t, "SENT", invoice.Status)

	base := "/api/v1/invoices/" + invoice.ID.String()

	w, _ = do(t, router, http.MethodPost, base+"/payments", map[string]interface{}{"amount": "200.00"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = do(t, router, http.MethodPost, base+"/payments", map[string]interface{}{"amount": "110.00", "payment_method": "bank"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, &invoice))
	assert.Equal(t, "PAID", invoice.Status)
	assert.True(t, invoice.BalanceAmount.IsZero())

	w, _ = do(t, router, http.MethodPost, base+"/reminder", map[string]interface{}{"reminder_type": "payment"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, router, http.MethodGet, base+"/reminder", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, router, http.MethodGet, "/api/v1/invoices/"+uuid.NewString()+"/reminder", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, router, http.MethodGet, "/api/v1/invoices?status=paid", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, router, http.MethodGet, "/api/v1/invoices/analytics?days=7", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReportsOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name     string
		path     string
		wantCode int
	}{
		{"dashboard", "/api/v1/reports/dashboard?period=this-month", http.StatusOK},
		{"profit and loss", "/api/v1/reports/financial?type=profit-loss&startDate=2024-01-01&endDate=2024-03-31", http.StatusOK},
		{"balance sheet as of", "/api/v1/reports/financial?type=balance-sheet&asOf=2024-03-31", http.StatusOK},
		{"receivables aging", "/api/v1/reports/parties", http.StatusOK},
		{"tax by rate", "/api/v1/reports/tax?type=by-rate", http.StatusOK},
		{"unknown domain", "/api/v1/reports/weather", http.StatusBadRequest},
		{"unknown type", "/api/v1/reports/inventory?type=astrology", http.StatusBadRequest},
		{"reversed range", "/api/v1/reports/sales?startDate=2024-03-31&endDate=2024-01-01", http.StatusBadRequest},
		{"bad customer id", "/api/v1/reports/sales?customerId=abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, router, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
			assert.Equal(t, tt.wantCode == http.StatusOK, env.Success)
		})
	}
}

func TestPOSAnalyticsOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	w, _ := do(t, router, http.MethodGet, "/api/v1/pos/analytics?date=2024-03-15", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, router, http.MethodPost, "/api/v1/pos/analytics", map[string]interface{}{
		"startDate":   "2024-03-01",
		"endDate":     "2024-03-15",
		"compareWith": "last_year",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, router, http.MethodPost, "/api/v1/pos/analytics", map[string]interface{}{"startDate": "2024-03-01"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, router, http.MethodPost, "/api/v1/pos/analytics", map[string]interface{}{
		"startDate":   "2024-03-01",
		"endDate":     "2024-03-15",
		"compareWith": "yesterday",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
