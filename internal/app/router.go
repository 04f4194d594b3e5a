package app

import (
	"github.com/gin-gonic/gin"

	"github.com/vodworks/catalog-backend/internal/server"
)

func wireRouter(cfg Config, handlers Handlers) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AllowOrigins:        cfg.AllowOrigins,
		CatalogHandler:      handlers.Catalog,
		ImportExportHandler: handlers.ImportExport,
		ScanHandler:         handlers.Scan,
	})
}
