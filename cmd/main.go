package main

import (
	"net/http"

	"github.com/Phambanam/tram-che-bien-sub000/internal/handler"
	mid "github.com/Phambanam/tram-che-bien-sub000/internal/middleware"
	"github.com/Phambanam/tram-che-bien-sub000/internal/model"
	"github.com/Phambanam/tram-che-bien-sub000/pkg/cache"
	"github.com/Phambanam/tram-che-bien-sub000/pkg/config"
	"github.com/Phambanam/tram-che-bien-sub000/pkg/database"
	"github.com/Phambanam/tram-che-bien-sub000/pkg/jwtutil"
	"github.com/Phambanam/tram-che-bien-sub000/pkg/logger"
	"github.com/Phambanam/tram-che-bien-sub000/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(appConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting logistics-service", appConfig.LogConfig()...)

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	db, err := database.Init(&appConfig.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	if err := database.Migrate(db, model.AllModels()...); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}
	log.Info("Database schema migrated")

	// Initialize Redis cache; the service still works without it
	cacheClient, err := cache.NewRedisCache(appConfig.Cache.Addr)
	if err != nil {
		log.Warn("Redis unavailable, availability and report caching degraded", zap.Error(err))
	} else {
		log.Info("Redis cache connected", zap.String("addr", appConfig.Cache.Addr))
	}

	// Handlers
	authHandler := handler.NewAuthHandler(db)
	healthHandler := handler.NewHealthHandler(db)
	catalogHandler := handler.NewCatalogHandler(db)
	unitHandler := handler.NewUnitHandler(db)
	supplyHandler := handler.NewSupplyHandler(db, cacheClient)
	outputHandler := handler.NewSupplyOutputHandler(db, cacheClient)
	inventoryHandler := handler.NewInventoryHandler(db, cacheClient, appConfig.Cache.TTL)
	reportHandler := handler.NewReportHandler(db, cacheClient, appConfig.Cache.TTL)

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", healthHandler.Health)

	// Authentication. Registration is admin-only; the initial admin account
	// is provisioned out of band through cmd/migrate.
	e.POST("/api/auth/login", authHandler.Login)
	e.POST("/api/auth/register", authHandler.Register, mid.AuthMiddleware)

	// Catalog reference data
	catalogAPI := e.Group("/api/categories", mid.AuthMiddleware)
	catalogAPI.GET("", catalogHandler.ListCategories)
	catalogAPI.GET("/:code/products", catalogHandler.ListCategoryProducts)

	// Units
	unitAPI := e.Group("/api/units", mid.AuthMiddleware)
	unitAPI.GET("", unitHandler.List)
	unitAPI.POST("", unitHandler.Create)

	// Supply lifecycle
	supplyAPI := e.Group("/api/supplies", mid.AuthMiddleware)
	supplyAPI.GET("", supplyHandler.List)
	supplyAPI.GET("/:id", supplyHandler.Get)
	supplyAPI.POST("", supplyHandler.Create)
	supplyAPI.PUT("/:id", supplyHandler.Update)
	supplyAPI.DELETE("/:id", supplyHandler.Delete)
	supplyAPI.PATCH("/:id/approve", supplyHandler.Approve)
	supplyAPI.PATCH("/:id/reject", supplyHandler.Reject)
	supplyAPI.PATCH("/:id/receive", supplyHandler.Receive)

	// Supply outputs
	outputAPI := e.Group("/api/supply-outputs", mid.AuthMiddleware)
	outputAPI.GET("", outputHandler.List)
	outputAPI.GET("/:id", outputHandler.Get)
	outputAPI.POST("", outputHandler.Create)
	outputAPI.PATCH("/:id", outputHandler.Update)
	outputAPI.DELETE("/:id", outputHandler.Delete)

	// Inventory
	inventoryAPI := e.Group("/api/inventory", mid.AuthMiddleware)
	inventoryAPI.GET("/lots", inventoryHandler.ListLots)
	inventoryAPI.GET("/availability", inventoryHandler.Availability)

	// Reports
	reportAPI := e.Group("/api/reports", mid.AuthMiddleware)
	reportAPI.GET("/supplies", reportHandler.SupplySummary)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
		log.Fatal("Server error", zap.Error(err))
	}
}
