package services

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vodworks/catalog-backend/internal/logger"
	"github.com/vodworks/catalog-backend/internal/reconcile"
	"github.com/vodworks/catalog-backend/internal/repos"
	"github.com/vodworks/catalog-backend/internal/schema"
	"github.com/vodworks/catalog-backend/internal/tasks"
	"github.com/vodworks/catalog-backend/internal/types"
)

type testEnv struct {
	db        *gorm.DB
	log       *logger.Logger
	records   repos.ContentRecordRepo
	headers   repos.TitleHeaderRepo
	episodes  repos.EpisodeRepo
	scans     repos.ScanEntryRepo
	registry  *schema.Registry
	taskStore *tasks.Store
	generator EpisodeGenerator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&types.ContentRecord{}, &types.TitleHeader{}, &types.Episode{}, &types.ScanEntry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := logger.NewNop()
	env := &testEnv{
		db:        db,
		log:       log,
		records:   repos.NewContentRecordRepo(db, log),
		headers:   repos.NewTitleHeaderRepo(db, log),
		episodes:  repos.NewEpisodeRepo(db, log),
		scans:     repos.NewScanEntryRepo(db, log),
		registry:  schema.NewRegistry(),
		taskStore: tasks.NewStore(0, log),
	}
	env.generator = NewEpisodeGenerator(db, log, env.headers, env.episodes, env.taskStore)
	return env
}

func (e *testEnv) importService() ImportService {
	return NewImportService(e.db, e.log, e.records, e.headers, e.scans, e.registry, e.generator, e.taskStore)
}

func (e *testEnv) exportService() ExportService {
	return NewExportService(e.db, e.log, e.headers, e.episodes, e.registry)
}

func (e *testEnv) scanService() ScanService {
	return NewScanService(e.db, e.log, e.scans)
}

func (e *testEnv) catalogService() CatalogService {
	reconciler := reconcile.New(e.headers, e.episodes, e.registry, e.log)
	return NewCatalogService(e.db, e.log, e.records, e.headers, e.episodes, e.scans, e.registry, reconciler)
}
