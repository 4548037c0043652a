package http

import (
	"github.com/gin-gonic/gin"
	"github.com/stockboard/backend/config"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("http")

	router := gin.New()
	router.MaxMultipartMemory = maxUploadBytes

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.NoRoute(handler.NotFound)

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		scanner := v1.Group("/scanner")
		{
			scanner.GET("", handler.GetScanStatus)
			scanner.POST("/file", handler.SelectFile)
			scanner.POST("/scan", handler.Scan)
			scanner.PUT("/barcode", handler.SetBarcode)
			scanner.POST("/save", handler.Save)
		}

		board := v1.Group("/board")
		{
			board.GET("", handler.GetBoard)
			board.POST("/refresh", handler.RefreshBoard)
			board.POST("/moves", handler.MoveItem)
		}

		products := v1.Group("/products")
		{
			products.GET("/analytics", handler.Analytics)
			products.GET("/search", handler.SearchProducts)
		}
	}

	return router
}
