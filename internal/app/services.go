package app

import (
	"gorm.io/gorm"

	"github.com/vodworks/catalog-backend/internal/logger"
	"github.com/vodworks/catalog-backend/internal/reconcile"
	"github.com/vodworks/catalog-backend/internal/schema"
	"github.com/vodworks/catalog-backend/internal/services"
	"github.com/vodworks/catalog-backend/internal/tasks"
)

type Services struct {
	Registry   *schema.Registry
	Tasks      *tasks.Store
	Reconciler *reconcile.Reconciler

	Catalog   services.CatalogService
	Scan      services.ScanService
	Import    services.ImportService
	Export    services.ExportService
	Generator services.EpisodeGenerator
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos) Services {
	log.Info("Wiring services...")

	registry := schema.NewRegistry()
	taskStore := tasks.NewStore(cfg.TaskTTL, log)
	reconciler := reconcile.New(r.TitleHeader, r.Episode, registry, log)

	generator := services.NewEpisodeGenerator(db, log, r.TitleHeader, r.Episode, taskStore)
	catalog := services.NewCatalogService(db, log, r.ContentRecord, r.TitleHeader, r.Episode, r.ScanEntry, registry, reconciler)
	scan := services.NewScanService(db, log, r.ScanEntry)
	importSvc := services.NewImportService(db, log, r.ContentRecord, r.TitleHeader, r.ScanEntry, registry, generator, taskStore)
	export := services.NewExportService(db, log, r.TitleHeader, r.Episode, registry)

	return Services{
		Registry:   registry,
		Tasks:      taskStore,
		Reconciler: reconciler,
		Catalog:    catalog,
		Scan:       scan,
		Import:     importSvc,
		Export:     export,
		Generator:  generator,
	}
}
