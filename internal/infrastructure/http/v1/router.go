// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"coldledger/internal/domain/catalogs/depositor"
	"coldledger/internal/domain/catalogs/facility"
	"coldledger/internal/domain/documents/delivery"
	"coldledger/internal/domain/documents/receipt"
	"coldledger/internal/domain/reports"
	"coldledger/internal/infrastructure/http/v1/handlers"
	"coldledger/internal/infrastructure/http/v1/middleware"
	"coldledger/internal/infrastructure/storage/postgres"
	"coldledger/internal/infrastructure/storage/postgres/catalog_repo"
	"coldledger/internal/infrastructure/storage/postgres/document_repo"
	"coldledger/internal/infrastructure/storage/postgres/report_repo"
	"coldledger/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks).
	Pool *postgres.Pool

	// TxManager coordinates transactions for all repositories.
	TxManager *postgres.TxManager

	// Logger for request logging.
	Logger *logger.Logger

	// TokenValidator for facility bearer tokens.
	TokenValidator middleware.TokenValidator

	// AuditRecorder persists and serves the voucher change history.
	AuditRecorder *postgres.AuditRecorder
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints, no auth required
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1, every route scoped to the token's facility
	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.TokenValidator))

	registerCatalogRoutes(api, cfg)
	registerVoucherRoutes(api, cfg)
	registerReportRoutes(api, cfg)
	registerAuditRoutes(api, cfg)

	return router
}

// registerCatalogRoutes registers facility and depositor endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()

	// --- FACILITIES ---
	{
		repo := catalog_repo.NewFacilityRepo(cfg.TxManager)
		service := facility.NewService(repo)
		handler := handlers.NewFacilityHandler(baseHandler, service)

		group := catalogs.Group("/facilities")
		group.GET("", handler.List)
		group.GET("/:id", handler.Get)
		group.POST("", middleware.RequireAdmin(), handler.Create)
		group.PUT("/:id", middleware.RequireAdmin(), handler.Update)
	}

	// --- DEPOSITORS ---
	{
		repo := catalog_repo.NewDepositorRepo(cfg.TxManager)
		service := depositor.NewService(repo)
		handler := handlers.NewDepositorHandler(baseHandler, service)

		group := catalogs.Group("/depositors")
		group.GET("", handler.List)
		group.POST("", handler.Create)
		group.GET("/:id", handler.Get)
		group.PUT("/:id", handler.Update)
		group.POST("/:id/register", handler.Register)
	}
}

// registerVoucherRoutes registers receipt and delivery endpoints.
func registerVoucherRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	vouchers := rg.Group("/vouchers")
	baseHandler := handlers.NewBaseHandler()

	depositorService := depositor.NewService(catalog_repo.NewDepositorRepo(cfg.TxManager))
	sequencer := postgres.NewVoucherSequencer(cfg.TxManager)

	receiptRepo := document_repo.NewReceiptRepo(cfg.TxManager)

	// --- RECEIPTS ---
	{
		service := receipt.NewService(receiptRepo, depositorService, sequencer, cfg.TxManager, cfg.AuditRecorder)
		handler := handlers.NewReceiptHandler(baseHandler, service)

		group := vouchers.Group("/receipts")
		group.GET("", handler.List)
		group.POST("", handler.Create)
		group.GET("/:id", handler.Get)
		group.PUT("/:id", handler.Update)
		group.DELETE("/:id", middleware.RequireAdmin(), handler.Delete)
	}

	// --- DELIVERIES ---
	{
		repo := document_repo.NewDeliveryRepo(cfg.TxManager)
		service := delivery.NewService(repo, receiptRepo, depositorService, sequencer, cfg.TxManager, cfg.AuditRecorder)
		handler := handlers.NewDeliveryHandler(baseHandler, service)

		group := vouchers.Group("/deliveries")
		group.GET("", handler.List)
		group.POST("", handler.Create)
		group.GET("/:id", handler.Get)
		group.PUT("/:id", handler.Update)
		group.DELETE("/:id", handler.Delete)
	}
}

// registerReportRoutes registers aggregator view endpoints.
func registerReportRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	reportsGroup := rg.Group("/reports")
	baseHandler := handlers.NewBaseHandler()

	facilityService := facility.NewService(catalog_repo.NewFacilityRepo(cfg.TxManager))
	repo := report_repo.NewStockReportRepo(cfg.TxManager)
	service := reports.NewService(repo, facilityService)
	handler := handlers.NewReportsHandler(baseHandler, service)

	reportsGroup.GET("/stock-summary", handler.StockSummary)
	reportsGroup.GET("/facility-summary", handler.FacilitySummary)
	reportsGroup.GET("/top-depositors", handler.TopDepositors)
	reportsGroup.GET("/day-book", handler.DayBook)
	reportsGroup.GET("/varieties-available", handler.VarietiesAvailable)
}

// registerAuditRoutes registers change-history endpoints.
func registerAuditRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewAuditHandler(baseHandler, cfg.AuditRecorder)

	rg.GET("/audit/:entityType/:id", handler.History)
}
