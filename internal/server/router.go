package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/vodworks/catalog-backend/internal/handlers"
)

type RouterConfig struct {
	AllowOrigins        []string
	CatalogHandler      *handlers.CatalogHandler
	ImportExportHandler *handlers.ImportExportHandler
	ScanHandler         *handlers.ScanHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Canonical records
		api.POST("/records", cfg.CatalogHandler.CreateRecord)
		api.GET("/records", cfg.CatalogHandler.ListRecords)
		api.GET("/records/:id", cfg.CatalogHandler.GetRecord)
		api.PUT("/records/:id", cfg.CatalogHandler.UpdateRecord)
		api.DELETE("/records/:id", cfg.CatalogHandler.DeleteRecord)

		// Tenant projections
		api.POST("/tenants/:tenant/synthesize", cfg.CatalogHandler.SynthesizeTitles)
		api.GET("/tenants/:tenant/headers", cfg.CatalogHandler.ListHeaders)
		api.GET("/tenants/:tenant/export", cfg.ImportExportHandler.ExportWorkbook)
		api.GET("/headers/:id", cfg.CatalogHandler.GetHeader)

		// Bulk import
		api.POST("/import", cfg.ImportExportHandler.ImportWorkbook)
		api.GET("/tasks/:id", cfg.ImportExportHandler.GetTask)

		// Scan inventory
		api.POST("/scan/import", cfg.ScanHandler.ImportInventory)
		api.GET("/scan/stats", cfg.ScanHandler.Stats)
	}

	return router
}
