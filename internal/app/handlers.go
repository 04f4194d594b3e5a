package app

import (
	"github.com/vodworks/catalog-backend/internal/handlers"
	"github.com/vodworks/catalog-backend/internal/logger"
)

type Handlers struct {
	Catalog      *handlers.CatalogHandler
	ImportExport *handlers.ImportExportHandler
	Scan         *handlers.ScanHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Catalog:      handlers.NewCatalogHandler(log, services.Catalog),
		ImportExport: handlers.NewImportExportHandler(log, services.Import, services.Export, services.Tasks),
		Scan:         handlers.NewScanHandler(log, services.Scan),
	}
}
