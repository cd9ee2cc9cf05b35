package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/bizledger-api/internal/application/service"
	"github.com/sangkips/bizledger-api/internal/config"
	"github.com/sangkips/bizledger-api/internal/infrastructure/database"
	"github.com/sangkips/bizledger-api/internal/infrastructure/repository"
	"github.com/sangkips/bizledger-api/internal/presentation/http/handler"
	"github.com/sangkips/bizledger-api/internal/presentation/http/routes"
	"github.com/sangkips/bizledger-api/pkg/docnum"
	"github.com/sangkips/bizledger-api/pkg/email"
	"github.com/sangkips/bizledger-api/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.App.Env, cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if cfg.EnvFileErr != nil {
		zlog.Info("no .env file loaded, using environment only", zap.Error(cfg.EnvFileErr))
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(&cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.AutoMigrate(db, zlog); err != nil {
		zlog.Fatal("failed to run migrations", zap.Error(err))
	}
	if err := database.SeedDefaultData(db, zlog); err != nil {
		zlog.Warn("failed to seed default data", zap.Error(err))
	}

	numbers, err := docnum.NewGenerator(cfg.App.NodeID)
	if err != nil {
		zlog.Fatal("invalid APP_NODE_ID", zap.Error(err))
	}

	store := repository.NewStore(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	ledgerService := service.NewLedgerService(store, numbers, zlog)
	invoiceService := service.NewInvoiceService(store, numbers, cfg.Invoice.DefaultPaymentTermsDays, zlog)
	reminderService := service.NewReminderService(store, email.NewComposer(cfg.App.CompanyName), zlog)
	reportService := service.NewReportService(store, cfg.Report.Timeout, zlog)
	itemService := service.NewItemService(store.Items(), store.Categories())
	partyService := service.NewPartyService(store.Parties())
	categoryService := service.NewCategoryService(store.Categories())

	handlers := &routes.Handlers{
		Transaction: handler.NewTransactionHandler(ledgerService),
		Invoice:     handler.NewInvoiceHandler(invoiceService, reminderService, reportService),
		Report:      handler.NewReportHandler(reportService),
		Item:        handler.NewItemHandler(itemService),
		Party:       handler.NewPartyHandler(partyService),
		Category:    handler.NewCategoryHandler(categoryService),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	router := routes.Setup(ctx, handlers, &routes.Deps{
		Cfg:             cfg,
		Logger:          zlog,
		IdempotencyRepo: idempotencyRepo,
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.Report.Timeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zlog.Info("starting server",
			zap.String("service", cfg.App.Name),
			zap.String("port", port),
			zap.String("env", cfg.App.Env),
			zap.String("db_driver", cfg.Database.Driver),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zlog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		zlog.Error("server stopped with error", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	zlog.Info("server exited")
}
