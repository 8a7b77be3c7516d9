package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"

	"flowi_ledger/internal/handlers"
	"flowi_ledger/internal/logger"
	ledgermw "flowi_ledger/internal/middleware"
	"flowi_ledger/internal/services"
	"flowi_ledger/internal/store"
)

func main() {
	// Load environment variables
	if err := logger.Setup(envOr("LOG_LEVEL", "info"), envOr("LOG_FORMAT", "console")); err != nil {
		panic(err)
	}
	log := logger.WithComponent("server")
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, using system environment variables")
	}

	// Initialize Database
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal().Msg("DATABASE_URL not set")
	}
	db, err := services.InitDB(databaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := services.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Redis is optional; without it report caching is skipped
	var cache *services.RedisCache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cache, err = services.NewRedisCache(redisURL)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, report caching disabled")
			cache = nil
		}
	}

	// Wire store and services
	ledgerStore := store.NewGormStore(db)
	invoiceSvc := services.NewInvoiceService(ledgerStore)
	paymentSvc := services.NewPaymentService(ledgerStore)
	installmentSvc := services.NewInstallmentService(ledgerStore)
	querySvc := services.NewLedgerQueryService(ledgerStore)
	sweeperSvc := services.NewSweeperService(ledgerStore)

	// Customer names and exchange rates come from external collaborators;
	// FX_VES_PER_USD stands in for the rate feed when set.
	agingSvc := services.NewAgingService(ledgerStore, nil)
	var exchange services.ExchangeFunc
	if rateStr := os.Getenv("FX_VES_PER_USD"); rateStr != "" {
		if rate, err := decimal.NewFromString(rateStr); err == nil {
			exchange = func() decimal.Decimal { return rate }
		}
	}
	summarySvc := services.NewSummaryService(ledgerStore, exchange)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = ledgermw.CustomErrorHandler

	// Initialize handlers
	receivableHandler := handlers.NewReceivableHandler(invoiceSvc, paymentSvc, querySvc)
	payableHandler := handlers.NewPayableHandler(invoiceSvc, paymentSvc, querySvc)
	paymentHandler := handlers.NewPaymentHandler(paymentSvc)
	planHandler := handlers.NewPlanHandler(installmentSvc)
	reportHandler := handlers.NewReportHandler(agingSvc, summarySvc, sweeperSvc, querySvc, installmentSvc, cache)

	api := e.Group("/api")

	// Receivable routes
	api.POST("/receivables", receivableHandler.CreateReceivable)
	api.GET("/receivables", receivableHandler.ListReceivables)
	api.GET("/receivables/:id", receivableHandler.GetReceivable)
	api.DELETE("/receivables/:id", receivableHandler.DeleteReceivable)
	api.GET("/receivables/:id/payments", receivableHandler.GetReceivablePayments)

	// Payable routes
	api.POST("/payables", payableHandler.CreatePayable)
	api.GET("/payables", payableHandler.ListPayables)
	api.GET("/payables/:id", payableHandler.GetPayable)
	api.DELETE("/payables/:id", payableHandler.DeletePayable)
	api.GET("/payables/:id/payments", payableHandler.GetPayablePayments)

	// Payment routes
	api.POST("/payments", paymentHandler.RecordPayment)
	api.GET("/payments/total", paymentHandler.GetTotalPayments)
	api.POST("/partial-payments", paymentHandler.RecordPartialPayment)
	api.GET("/sales/:saleId/partial-payments", paymentHandler.ListPartialPayments)

	// Payment plan routes
	api.POST("/payment-plans", planHandler.CreatePlan)
	api.GET("/payment-plans", planHandler.ListPlans)
	api.GET("/payment-plans/:id", planHandler.GetPlan)
	api.POST("/payment-plans/:id/cancel", planHandler.CancelPlan)
	api.POST("/installments/:id/payments", planHandler.PayInstallment)

	// Reporting routes
	api.GET("/reports/aging", reportHandler.GetAgingReport)
	api.GET("/reports/summary", reportHandler.GetSummary)
	api.GET("/overdue/receivables", reportHandler.ListOverdueReceivables)
	api.GET("/overdue/payables", reportHandler.ListOverduePayables)
	api.GET("/overdue/installments", reportHandler.ListOverdueInstallments)
	api.POST("/sweeps/run", reportHandler.RunSweeps)

	// Start server
	port := envOr("PORT", "8080")
	log.Info().Str("port", port).Msg("Server starting")
	if err := e.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
