package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/vodworks/catalog-backend/internal/logger"
	"github.com/vodworks/catalog-backend/internal/repos"
	"github.com/vodworks/catalog-backend/internal/scanindex"
	"github.com/vodworks/catalog-backend/internal/schema"
	"github.com/vodworks/catalog-backend/internal/synthesis"
	"github.com/vodworks/catalog-backend/internal/tasks"
	"github.com/vodworks/catalog-backend/internal/types"
)

const episodeFlushSize = 500

// HeaderRecord pairs a synthesized header with the record it came from.
type HeaderRecord struct {
	Header *types.TitleHeader
	Record *types.ContentRecord
}

// EpisodeGenerator fills in episode rows for freshly synthesized headers.
// It runs after the import transaction has committed, so it re-validates
// each header before generating: a header deleted mid-run is skipped, not
// resurrected.
type EpisodeGenerator interface {
	Generate(ctx context.Context, taskID string, tenant *schema.TenantSchema, pairs []HeaderRecord, index *scanindex.Index) error
}

type episodeGenerator struct {
	db       *gorm.DB
	log      *logger.Logger
	headers  repos.TitleHeaderRepo
	episodes repos.EpisodeRepo
	tasks    *tasks.Store
}

func NewEpisodeGenerator(
	db *gorm.DB,
	baseLog *logger.Logger,
	headers repos.TitleHeaderRepo,
	episodes repos.EpisodeRepo,
	taskStore *tasks.Store,
) EpisodeGenerator {
	serviceLog := baseLog.With("service", "EpisodeGenerator")
	return &episodeGenerator{
		db:       db,
		log:      serviceLog,
		headers:  headers,
		episodes: episodes,
		tasks:    taskStore,
	}
}

func (g *episodeGenerator) Generate(ctx context.Context, taskID string, tenant *schema.TenantSchema, pairs []HeaderRecord, index *scanindex.Index) error {
	total := len(pairs)
	if total == 0 {
		g.setProgress(taskID, 100)
		return nil
	}

	var buffer []*types.Episode
	flush := func() error {
		if len(buffer) == 0 {
			return nil
		}
		if _, err := g.episodes.Create(ctx, nil, buffer); err != nil {
			return fmt.Errorf("insert episode batch: %w", err)
		}
		buffer = buffer[:0]
		return nil
	}

	done := 0
	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Re-validate: the header may have been deleted since import
		// committed.
		if _, err := g.headers.GetByID(ctx, nil, pair.Header.ID); err != nil {
			if errors.Is(err, repos.ErrNotFound) {
				g.log.Warn("header vanished before episode generation, skipping",
					"tenant", tenant.Code, "header_id", pair.Header.ID)
				done++
				g.setProgress(taskID, done*100/total)
				continue
			}
			return err
		}

		// Records without a positive episode count get a header only.
		episodeCount := pair.Record.Fields().Int(types.FieldEpisodeCount)
		if episodeCount < 1 {
			done++
			g.setProgress(taskID, done*100/total)
			continue
		}
		built, err := synthesis.BuildEpisodes(tenant, pair.Record, pair.Header.ID, 1, episodeCount, index)
		if err != nil {
			g.taskError(taskID, fmt.Sprintf("%s: %v", pair.Record.TitleName, err))
			done++
			g.setProgress(taskID, done*100/total)
			continue
		}
		for i := range built {
			buffer = append(buffer, &built[i])
		}
		if len(buffer) >= episodeFlushSize {
			if err := flush(); err != nil {
				return err
			}
		}
		done++
		g.setProgress(taskID, done*100/total)
	}
	if err := flush(); err != nil {
		return err
	}

	if err := g.backfillAggregates(ctx, tenant, pairs, index); err != nil {
		return err
	}

	g.log.Info("generated episodes", "tenant", tenant.Code, "headers", total)
	return nil
}

// backfillAggregates rebuilds header bags whose columns aggregate over the
// generated episodes (total matched duration). Tenants without such columns
// are left untouched.
func (g *episodeGenerator) backfillAggregates(ctx context.Context, tenant *schema.TenantSchema, pairs []HeaderRecord, index *scanindex.Index) error {
	hasAggregate := false
	for _, col := range tenant.HeaderColumns {
		if _, ok := col.(schema.EpisodeDurationTotalColumn); ok {
			hasAggregate = true
			break
		}
	}
	if !hasAggregate || index == nil {
		return nil
	}

	for _, pair := range pairs {
		rebuilt, err := synthesis.BuildHeader(tenant, pair.Record, index)
		if err != nil {
			return err
		}
		header, err := g.headers.GetByID(ctx, nil, pair.Header.ID)
		if err != nil {
			if errors.Is(err, repos.ErrNotFound) {
				continue
			}
			return err
		}
		header.Attributes = rebuilt.Attributes
		if err := g.headers.Update(ctx, nil, header); err != nil {
			return fmt.Errorf("backfill header %d: %w", header.ID, err)
		}
	}
	return nil
}

func (g *episodeGenerator) setProgress(taskID string, pct int) {
	if g.tasks == nil || taskID == "" {
		return
	}
	g.tasks.Update(taskID, func(t *tasks.Task) {
		t.EpisodeStatus = tasks.StatusRunning
		t.EpisodeProgress = pct
	})
}

func (g *episodeGenerator) taskError(taskID, msg string) {
	g.log.Error("episode generation error", "error", msg)
	if g.tasks != nil && taskID != "" {
		g.tasks.AddError(taskID, msg)
	}
}
