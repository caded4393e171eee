package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	acctapp "github.com/stockbooks/backend/internal/application/accounting"
	ledgerapp "github.com/stockbooks/backend/internal/application/ledger"
	"github.com/stockbooks/backend/internal/domain/ledger"
	"github.com/stockbooks/backend/internal/infrastructure/config"
	"github.com/stockbooks/backend/internal/infrastructure/logger"
	"github.com/stockbooks/backend/internal/infrastructure/persistence"
	"github.com/stockbooks/backend/internal/infrastructure/telemetry"
	"github.com/stockbooks/backend/internal/interfaces/http/handler"
	"github.com/stockbooks/backend/internal/interfaces/http/middleware"
	"github.com/stockbooks/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting stockbooks backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	itemRepo := persistence.NewGormItemRepository(db.DB)
	warehouseRepo := persistence.NewGormWarehouseRepository(db.DB)
	stockLevelRepo := persistence.NewGormStockLevelRepository(db.DB)
	entryRepo := persistence.NewGormLedgerEntryRepository(db.DB)
	lotRepo := persistence.NewGormStockLotRepository(db.DB)
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	journalRepo := persistence.NewGormJournalRepository(db.DB)

	// Application services
	ledgerScope := persistence.NewGormLedgerTransactionScope(db.DB)
	costingService, err := ledgerapp.NewCostingService(
		ledgerScope,
		itemRepo,
		stockLevelRepo,
		entryRepo,
		lotRepo,
		ledger.CostingMethod(cfg.Costing.DefaultMethod),
	)
	if err != nil {
		log.Fatal("Failed to initialize costing service", zap.Error(err))
	}
	agingService := ledgerapp.NewAgingService(lotRepo)

	accountingScope := persistence.NewGormAccountingTransactionScope(db.DB)
	registry := acctapp.NewAccountRegistry(accountRepo)
	journalService := acctapp.NewJournalService(accountingScope, registry)
	trialBalanceService := acctapp.NewTrialBalanceService(journalRepo)

	if cfg.Telemetry.Enabled {
		movementMetrics, err := telemetry.NewMovementMetrics(nil)
		if err != nil {
			log.Fatal("Failed to initialize movement metrics", zap.Error(err))
		}
		costingService.SetMovementRecorder(movementMetrics)
	}

	// HTTP server
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.GET("/health", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.NewRouter(engine).
		Register(handler.NewStockHandler(costingService, agingService)).
		Register(handler.NewJournalHandler(journalService, trialBalanceService)).
		Register(handler.NewAccountHandler(accountRepo, registry)).
		Register(handler.NewMasterDataHandler(itemRepo, warehouseRepo)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
