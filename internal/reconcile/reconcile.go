// Package reconcile keeps tenant projections in step with their canonical
// record after edits. Reconciliation is incremental: surviving episode rows
// keep their database identity, growth appends only the new tail, shrink
// deletes only the excess. Running it twice in a row is a no-op.
package reconcile

import (
	"context"
	"fmt"

	"github.com/vodworks/catalog-backend/internal/logger"
	"github.com/vodworks/catalog-backend/internal/repos"
	"github.com/vodworks/catalog-backend/internal/scanindex"
	"github.com/vodworks/catalog-backend/internal/schema"
	"github.com/vodworks/catalog-backend/internal/synthesis"
	"github.com/vodworks/catalog-backend/internal/types"
	"gorm.io/gorm"
)

type Reconciler struct {
	headers  repos.TitleHeaderRepo
	episodes repos.EpisodeRepo
	registry *schema.Registry
	log      *logger.Logger
}

// Result summarizes what one reconciliation did to a header.
type Result struct {
	TenantCode string
	HeaderID   int64
	Renamed    bool
	Rebuilt    int
	Appended   int
	Deleted    int
}

func New(headers repos.TitleHeaderRepo, episodes repos.EpisodeRepo, registry *schema.Registry, baseLog *logger.Logger) *Reconciler {
	return &Reconciler{
		headers:  headers,
		episodes: episodes,
		registry: registry,
		log:      baseLog.With("component", "Reconciler"),
	}
}

// ReconcileHeader brings one tenant header in line with its record. The
// header's stored title is the pre-edit title; a mismatch with the record's
// title means a rename, which rebuilds every surviving episode's name and
// attributes (media URLs derive from the title's abbreviation). The episode
// count delta drives append/delete. The header attribute bag is always
// rebuilt, so attribute-only edits propagate too.
func (r *Reconciler) ReconcileHeader(ctx context.Context, tx *gorm.DB, header *types.TitleHeader, rec *types.ContentRecord, index *scanindex.Index) (Result, error) {
	res := Result{TenantCode: header.TenantCode, HeaderID: header.ID}

	tenant, err := r.registry.Schema(header.TenantCode)
	if err != nil {
		return res, err
	}

	oldCount, err := r.episodes.MaxEpisodeNum(ctx, tx, header.ID)
	if err != nil {
		return res, fmt.Errorf("load episode count for header %d: %w", header.ID, err)
	}
	// A missing or zero episode count means zero episodes, so a record
	// edited down to no episodes shrinks its projections away entirely.
	newCount := rec.Fields().Int(types.FieldEpisodeCount)
	if newCount < 0 {
		newCount = 0
	}
	res.Renamed = header.TitleName != rec.TitleName

	keep := oldCount
	if newCount < keep {
		keep = newCount
	}

	if res.Renamed && keep > 0 {
		rebuilt, err := synthesis.BuildEpisodes(tenant, rec, header.ID, 1, keep, index)
		if err != nil {
			return res, err
		}
		existing, err := r.episodes.GetByHeaderID(ctx, tx, header.ID)
		if err != nil {
			return res, fmt.Errorf("load episodes for header %d: %w", header.ID, err)
		}
		byNum := make(map[int]*types.Episode, len(existing))
		for _, ep := range existing {
			byNum[ep.EpisodeNum] = ep
		}
		for i := range rebuilt {
			ep, ok := byNum[rebuilt[i].EpisodeNum]
			if !ok {
				continue
			}
			ep.EpisodeName = rebuilt[i].EpisodeName
			ep.Attributes = rebuilt[i].Attributes
			if err := r.episodes.Update(ctx, tx, ep); err != nil {
				return res, fmt.Errorf("rebuild episode %d of header %d: %w", ep.EpisodeNum, header.ID, err)
			}
			res.Rebuilt++
		}
	}

	if newCount > oldCount {
		built, err := synthesis.BuildEpisodes(tenant, rec, header.ID, oldCount+1, newCount, index)
		if err != nil {
			return res, err
		}
		toCreate := make([]*types.Episode, len(built))
		for i := range built {
			toCreate[i] = &built[i]
		}
		if _, err := r.episodes.Create(ctx, tx, toCreate); err != nil {
			return res, fmt.Errorf("append episodes for header %d: %w", header.ID, err)
		}
		res.Appended = newCount - oldCount
	} else if newCount < oldCount {
		if err := r.episodes.DeleteAboveNum(ctx, tx, header.ID, newCount); err != nil {
			return res, fmt.Errorf("trim episodes for header %d: %w", header.ID, err)
		}
		res.Deleted = oldCount - newCount
	}

	rebuiltHeader, err := synthesis.BuildHeader(tenant, rec, index)
	if err != nil {
		return res, err
	}
	header.TitleName = rec.TitleName
	header.Attributes = rebuiltHeader.Attributes
	if err := r.headers.Update(ctx, tx, header); err != nil {
		return res, fmt.Errorf("update header %d: %w", header.ID, err)
	}

	r.log.Info("reconciled header",
		"tenant", res.TenantCode,
		"header_id", res.HeaderID,
		"renamed", res.Renamed,
		"rebuilt", res.Rebuilt,
		"appended", res.Appended,
		"deleted", res.Deleted,
	)
	return res, nil
}

// ReconcileRecord fans one record edit out to every tenant header that was
// synthesized from it, looked up by the record's pre-edit title.
func (r *Reconciler) ReconcileRecord(ctx context.Context, tx *gorm.DB, oldTitle string, rec *types.ContentRecord, index *scanindex.Index) ([]Result, error) {
	headers, err := r.headers.GetByTitleName(ctx, tx, oldTitle)
	if err != nil {
		return nil, fmt.Errorf("load headers for %q: %w", oldTitle, err)
	}
	results := make([]Result, 0, len(headers))
	for _, h := range headers {
		res, err := r.ReconcileHeader(ctx, tx, h, rec, index)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
