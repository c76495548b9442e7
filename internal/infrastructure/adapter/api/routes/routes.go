package routes

import (
	"github.com/gin-gonic/gin"

	coreport "github.com/amirhossein-jamali/graph-migrator/internal/domain/port/core"
	"github.com/amirhossein-jamali/graph-migrator/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/graph-migrator/internal/infrastructure/adapter/api/middleware"
)

// SetupRoutes configures all the routes for the API
func SetupRoutes(router *gin.Engine, migrationHandler *handler.MigrationHandler) {
	router.GET("/health", migrationHandler.Health)

	// The API is read only; the ledger changes through the migrate and
	// rollback commands, never through HTTP.
	migrationRoutes := router.Group("/api/v1/migrations")
	{
		migrationRoutes.GET("/status", migrationHandler.GetStatus)
		migrationRoutes.GET("/history", migrationHandler.GetHistory)
	}
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger) {
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger))
}
