package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/bizledger-api/internal/config"
	domainRepo "github.com/sangkips/bizledger-api/internal/domain/repository"
	"github.com/sangkips/bizledger-api/internal/presentation/http/handler"
	"github.com/sangkips/bizledger-api/internal/presentation/http/middleware"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Transaction *handler.TransactionHandler
	Invoice     *handler.InvoiceHandler
	Report      *handler.ReportHandler
	Item        *handler.ItemHandler
	Party       *handler.PartyHandler
	Category    *handler.CategoryHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg             *config.Config
	Logger          *zap.Logger
	IdempotencyRepo domainRepo.IdempotencyRepository
	// Ping checks the database for /health; nil skips the check.
	Ping func(ctx context.Context) error
}

// Setup creates the Gin router and registers all routes. Background work
// started for the router stops when ctx is done.
func Setup(ctx context.Context, h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", healthCheck(deps))

	v1 := router.Group("/api/v1")
	{
		rateLimiter := middleware.NewClientRateLimiter(ctx, middleware.NewRateLimiterConfig(
			deps.Cfg.RateLimit.Requests, deps.Cfg.RateLimit.Duration,
		))
		v1.Use(rateLimiter.Middleware())

		idempotency := middleware.Idempotency(middleware.IdempotencyConfig{
			Repo:   deps.IdempotencyRepo,
			TTL:    deps.Cfg.Idempotency.TTL,
			Logger: deps.Logger,
		})

		registerTransactionRoutes(v1, h, idempotency)
		registerInvoiceRoutes(v1, h, idempotency)
		registerReportRoutes(v1, h)
		registerCatalogRoutes(v1, h)
	}

	return router
}

func healthCheck(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "ok", http.StatusOK
		if deps.Ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Ping(ctx); err != nil {
				deps.Logger.Warn("health check failed", zap.Error(err))
				status, code = "unavailable", http.StatusServiceUnavailable
			}
		}
		c.JSON(code, gin.H{
			"status":  status,
			"service": deps.Cfg.App.Name,
		})
	}
}

func registerTransactionRoutes(rg *gin.RouterGroup, h *Handlers, idempotency gin.HandlerFunc) {
	transactions := rg.Group("/transactions")
	{
		transactions.GET("", h.Transaction.List)
		transactions.POST("", idempotency, h.Transaction.Create)
		transactions.GET("/:id", h.Transaction.Get)
		transactions.PUT("/:id", h.Transaction.Update)
		transactions.DELETE("/:id", h.Transaction.Delete)
	}
}

func registerInvoiceRoutes(rg *gin.RouterGroup, h *Handlers, idempotency gin.HandlerFunc) {
	invoices := rg.Group("/invoices")
	{
		invoices.GET("", h.Invoice.List)
		invoices.POST("", idempotency, h.Invoice.Create)
		invoices.GET("/analytics", h.Invoice.Analytics)
		invoices.POST("/mark-overdue", h.Invoice.MarkOverdue)
		invoices.POST("/from-transaction/:transactionId", idempotency, h.Invoice.CreateFromTransaction)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.PUT("/:id", h.Invoice.Update)
		invoices.DELETE("/:id", h.Invoice.Delete)
		invoices.POST("/:id/send", h.Invoice.Send)
		invoices.POST("/:id/cancel", h.Invoice.Cancel)
		invoices.POST("/:id/payments", idempotency, h.Invoice.RecordPayment)
		invoices.POST("/:id/reminder", h.Invoice.SendReminder)
		invoices.GET("/:id/reminder", h.Invoice.ReminderInfo)
	}
}

func registerReportRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.GET("/reports/:domain", h.Report.Generate)

	pos := rg.Group("/pos")
	{
		pos.GET("/analytics", h.Report.POSDaily)
		pos.POST("/analytics", h.Report.POSPerformance)
	}
}

func registerCatalogRoutes(rg *gin.RouterGroup, h *Handlers) {
	items := rg.Group("/items")
	{
		items.GET("", h.Item.List)
		items.POST("", h.Item.Create)
		items.GET("/:id", h.Item.Get)
	}

	parties := rg.Group("/parties")
	{
		parties.GET("", h.Party.List)
		parties.POST("", h.Party.Create)
		parties.GET("/:id", h.Party.Get)
	}

	categories := rg.Group("/categories")
	{
		categories.GET("", h.Category.List)
		categories.POST("", h.Category.Create)
	}
}
