package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/vodworks/catalog-backend/internal/logger"
	"github.com/vodworks/catalog-backend/internal/reconcile"
	"github.com/vodworks/catalog-backend/internal/repos"
	"github.com/vodworks/catalog-backend/internal/scanindex"
	"github.com/vodworks/catalog-backend/internal/schema"
	"github.com/vodworks/catalog-backend/internal/synthesis"
	"github.com/vodworks/catalog-backend/internal/types"
)

// CatalogService owns the canonical records and their tenant projections.
// Edits to a record fan out through the reconciler to every header that was
// synthesized from it; deletes cascade the projections away.
type CatalogService interface {
	CreateRecord(ctx context.Context, tx *gorm.DB, record *types.ContentRecord) (*types.ContentRecord, error)
	GetRecord(ctx context.Context, id int64) (*types.ContentRecord, error)
	ListRecords(ctx context.Context, offset, limit int, keyword string) ([]*types.ContentRecord, int64, error)
	UpdateRecord(ctx context.Context, id int64, updated *types.ContentRecord, tenantCodes []string) (*types.ContentRecord, []reconcile.Result, error)
	DeleteRecord(ctx context.Context, id int64) error

	SynthesizeTitles(ctx context.Context, tenantCode string, titles []string) ([]*types.TitleHeader, error)
	GetHeader(ctx context.Context, headerID int64) (*types.TitleHeader, []*types.Episode, error)
	ListHeaders(ctx context.Context, tenantCode string, offset, limit int) ([]*types.TitleHeader, int64, error)
}

type catalogService struct {
	db          *gorm.DB
	log         *logger.Logger
	records     repos.ContentRecordRepo
	headers     repos.TitleHeaderRepo
	episodes    repos.EpisodeRepo
	scanEntries repos.ScanEntryRepo
	registry    *schema.Registry
	reconciler  *reconcile.Reconciler
}

func NewCatalogService(
	db *gorm.DB,
	baseLog *logger.Logger,
	records repos.ContentRecordRepo,
	headers repos.TitleHeaderRepo,
	episodes repos.EpisodeRepo,
	scanEntries repos.ScanEntryRepo,
	registry *schema.Registry,
	reconciler *reconcile.Reconciler,
) CatalogService {
	serviceLog := baseLog.With("service", "CatalogService")
	return &catalogService{
		db:          db,
		log:         serviceLog,
		records:     records,
		headers:     headers,
		episodes:    episodes,
		scanEntries: scanEntries,
		registry:    registry,
		reconciler:  reconciler,
	}
}

func (cs *catalogService) CreateRecord(ctx context.Context, tx *gorm.DB, record *types.ContentRecord) (*types.ContentRecord, error) {
	if record.TitleName == "" {
		return nil, fmt.Errorf("title name is required")
	}
	created, err := cs.records.Create(ctx, tx, []*types.ContentRecord{record})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

func (cs *catalogService) GetRecord(ctx context.Context, id int64) (*types.ContentRecord, error) {
	return cs.records.GetByID(ctx, nil, id)
}

func (cs *catalogService) ListRecords(ctx context.Context, offset, limit int, keyword string) ([]*types.ContentRecord, int64, error) {
	return cs.records.List(ctx, nil, offset, limit, keyword)
}

// UpdateRecord saves the edit and reconciles every derived header in one
// transaction. The pre-edit title keys the header lookup so renames still
// find their projections. Tenants named in tenantCodes that have no header
// yet get one synthesized, with episodes, as part of the same edit.
func (cs *catalogService) UpdateRecord(ctx context.Context, id int64, updated *types.ContentRecord, tenantCodes []string) (*types.ContentRecord, []reconcile.Result, error) {
	existing, err := cs.records.GetByID(ctx, nil, id)
	if err != nil {
		return nil, nil, err
	}
	oldTitle := existing.TitleName

	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	if updated.TenantHeaderIDs == nil {
		updated.TenantHeaderIDs = existing.TenantHeaderIDs
	}
	if updated.TitleName == "" {
		updated.TitleName = oldTitle
	}

	index, err := loadScanIndexForTitles(ctx, cs.scanEntries, []string{oldTitle, updated.TitleName})
	if err != nil {
		return nil, nil, err
	}

	var results []reconcile.Result
	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := cs.records.Update(ctx, tx, updated); err != nil {
			return fmt.Errorf("save record %d: %w", id, err)
		}
		results, err = cs.reconciler.ReconcileRecord(ctx, tx, oldTitle, updated, index)
		if err != nil {
			return err
		}
		return cs.enableTenants(ctx, tx, updated, tenantCodes, index)
	})
	if err != nil {
		return nil, nil, err
	}
	return updated, results, nil
}

// enableTenants synthesizes a header (and episodes) for each named tenant
// that has none for the record yet, recording the header id back on the
// record's tenant map.
func (cs *catalogService) enableTenants(ctx context.Context, tx *gorm.DB, rec *types.ContentRecord, tenantCodes []string, index *scanindex.Index) error {
	enabled := false
	for _, code := range tenantCodes {
		tenant, err := cs.registry.Schema(code)
		if err != nil {
			return err
		}
		if _, err := cs.headers.GetByTenantAndTitle(ctx, tx, code, rec.TitleName); err == nil {
			continue
		} else if !errors.Is(err, repos.ErrNotFound) {
			return err
		}
		header, err := synthesis.BuildHeader(tenant, rec, index)
		if err != nil {
			return err
		}
		if _, err := cs.headers.Create(ctx, tx, []*types.TitleHeader{header}); err != nil {
			return err
		}
		if episodeCount := rec.Fields().Int(types.FieldEpisodeCount); episodeCount > 0 {
			built, err := synthesis.BuildEpisodes(tenant, rec, header.ID, 1, episodeCount, index)
			if err != nil {
				return err
			}
			toCreate := make([]*types.Episode, len(built))
			for i := range built {
				toCreate[i] = &built[i]
			}
			if _, err := cs.episodes.Create(ctx, tx, toCreate); err != nil {
				return err
			}
		}
		if rec.TenantHeaderIDs == nil {
			rec.TenantHeaderIDs = map[string]interface{}{}
		}
		rec.TenantHeaderIDs[code] = header.ID
		enabled = true
		cs.log.Info("enabled tenant for record", "tenant", code, "title", rec.TitleName, "header_id", header.ID)
	}
	if enabled {
		return cs.records.Update(ctx, tx, rec)
	}
	return nil
}

// DeleteRecord removes the record and every projection synthesized from it.
func (cs *catalogService) DeleteRecord(ctx context.Context, id int64) error {
	existing, err := cs.records.GetByID(ctx, nil, id)
	if err != nil {
		return err
	}
	return cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		headers, err := cs.headers.GetByTitleName(ctx, tx, existing.TitleName)
		if err != nil {
			return err
		}
		headerIDs := make([]int64, len(headers))
		for i, h := range headers {
			headerIDs[i] = h.ID
		}
		if err := cs.episodes.DeleteByHeaderIDs(ctx, tx, headerIDs); err != nil {
			return err
		}
		if err := cs.headers.DeleteByIDs(ctx, tx, headerIDs); err != nil {
			return err
		}
		return cs.records.DeleteByID(ctx, tx, id)
	})
}

// SynthesizeTitles generates headers and episodes for existing records on
// demand, one tenant at a time. Titles that already have a header for the
// tenant are skipped rather than duplicated.
func (cs *catalogService) SynthesizeTitles(ctx context.Context, tenantCode string, titles []string) ([]*types.TitleHeader, error) {
	tenant, err := cs.registry.Schema(tenantCode)
	if err != nil {
		return nil, err
	}
	records, err := cs.records.GetByTitleNames(ctx, nil, titles)
	if err != nil {
		return nil, err
	}
	existing, err := cs.headers.GetByTenantAndTitles(ctx, nil, tenantCode, titles)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(existing))
	for _, h := range existing {
		seen[h.TitleName] = true
	}

	index, err := loadScanIndexForTitles(ctx, cs.scanEntries, titles)
	if err != nil {
		return nil, err
	}

	var created []*types.TitleHeader
	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rec := range records {
			if seen[rec.TitleName] {
				continue
			}
			header, err := synthesis.BuildHeader(tenant, rec, index)
			if err != nil {
				return err
			}
			if _, err := cs.headers.Create(ctx, tx, []*types.TitleHeader{header}); err != nil {
				return err
			}
			if episodeCount := rec.Fields().Int(types.FieldEpisodeCount); episodeCount > 0 {
				built, err := synthesis.BuildEpisodes(tenant, rec, header.ID, 1, episodeCount, index)
				if err != nil {
					return err
				}
				toCreate := make([]*types.Episode, len(built))
				for i := range built {
					toCreate[i] = &built[i]
				}
				if _, err := cs.episodes.Create(ctx, tx, toCreate); err != nil {
					return err
				}
			}
			created = append(created, header)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	cs.log.Info("synthesized titles", "tenant", tenantCode, "requested", len(titles), "created", len(created))
	return created, nil
}

func (cs *catalogService) GetHeader(ctx context.Context, headerID int64) (*types.TitleHeader, []*types.Episode, error) {
	header, err := cs.headers.GetByID(ctx, nil, headerID)
	if err != nil {
		return nil, nil, err
	}
	episodes, err := cs.episodes.GetByHeaderID(ctx, nil, headerID)
	if err != nil {
		return nil, nil, err
	}
	return header, episodes, nil
}

func (cs *catalogService) ListHeaders(ctx context.Context, tenantCode string, offset, limit int) ([]*types.TitleHeader, int64, error) {
	if _, err := cs.registry.Schema(tenantCode); err != nil {
		return nil, 0, err
	}
	return cs.headers.ListByTenant(ctx, nil, tenantCode, offset, limit)
}
