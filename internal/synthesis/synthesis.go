// Package synthesis turns a canonical content record into tenant-shaped
// header and episode rows by resolving the tenant schema's columns.
package synthesis

import (
	"encoding/json"
	"fmt"

	"github.com/vodworks/catalog-backend/internal/pinyin"
	"github.com/vodworks/catalog-backend/internal/scanindex"
	"github.com/vodworks/catalog-backend/internal/schema"
	"github.com/vodworks/catalog-backend/internal/types"
	"gorm.io/datatypes"
)

// HeaderAttributes resolves every header column of a tenant into the
// attribute bag. Identity columns are skipped (they live on the row itself);
// sequence columns are stored as null and filled at export time. index may
// be nil, in which case scan-derived aggregates resolve to their zero form.
func HeaderAttributes(t *schema.TenantSchema, rec *types.ContentRecord, index *scanindex.Index) map[string]any {
	title := rec.TitleName
	abbr := pinyin.Abbr(title)
	ctx := &schema.HeaderContext{
		Title:  title,
		Abbr:   abbr,
		Fields: rec.Fields(),
		Tenant: t,
	}
	if index != nil {
		episodeCount := ctx.Fields.Int(types.FieldEpisodeCount)
		ctx.TotalEpisodeSeconds = func() int {
			return index.TotalSeconds(title, abbr, episodeCount)
		}
	}
	bag := make(map[string]any, len(t.HeaderColumns))
	for _, col := range t.HeaderColumns {
		if _, isIdentity := col.(schema.IdentityColumn); isIdentity {
			continue
		}
		bag[col.Name()] = col.ResolveHeader(ctx)
	}
	return bag
}

// BuildHeader synthesizes a persistable header row for one tenant.
func BuildHeader(t *schema.TenantSchema, rec *types.ContentRecord, index *scanindex.Index) (*types.TitleHeader, error) {
	bag := HeaderAttributes(t, rec, index)
	raw, err := json.Marshal(bag)
	if err != nil {
		return nil, fmt.Errorf("marshal header attributes for %q: %w", rec.TitleName, err)
	}
	return &types.TitleHeader{
		TenantCode: t.Code,
		TitleName:  rec.TitleName,
		Attributes: datatypes.JSON(raw),
	}, nil
}

// matchFor converts a scan hit to the column resolvers' view of it. A miss
// yields the zero ScanMatch, which every duration/size/checksum column
// renders as its empty form.
func matchFor(index *scanindex.Index, title, abbr string, episodeNum int) schema.ScanMatch {
	if index == nil {
		return schema.ScanMatch{}
	}
	e, ok := index.Match(title, abbr, episodeNum)
	if !ok {
		return schema.ScanMatch{}
	}
	return schema.ScanMatch{
		DurationSeconds:   int(e.DurationSeconds),
		DurationFormatted: e.DurationFormatted,
		SizeBytes:         e.SizeBytes,
		MD5:               e.MD5,
	}
}

// BuildEpisodes synthesizes episode rows numbered from..to inclusive for an
// already-persisted header. from..to is an arbitrary sub-range so the
// reconciler can append only the grown tail.
func BuildEpisodes(t *schema.TenantSchema, rec *types.ContentRecord, headerID int64, from, to int, index *scanindex.Index) ([]types.Episode, error) {
	if from < 1 {
		from = 1
	}
	if to < from {
		return nil, nil
	}
	title := rec.TitleName
	abbr := pinyin.Abbr(title)
	fields := rec.Fields()
	// classification prefers the standardized category columns
	level1 := fields.String(types.FieldCategoryLevel1Henan)
	if level1 == "" {
		level1 = fields.String(types.FieldCategoryLevel1)
	}
	level2 := fields.String(types.FieldCategoryLevel2Henan)
	if level2 == "" {
		level2 = fields.String(types.FieldCategoryLevel2)
	}
	dir := t.ContentDir(level1, level2)

	episodes := make([]types.Episode, 0, to-from+1)
	for n := from; n <= to; n++ {
		ctx := &schema.EpisodeContext{
			Title:      title,
			Abbr:       abbr,
			EpisodeNum: n,
			ContentDir: dir,
			Fields:     fields,
			Tenant:     t,
			Match:      matchFor(index, title, abbr, n),
		}
		bag := make(map[string]any, len(t.EpisodeColumns))
		for _, col := range t.EpisodeColumns {
			if _, isIdentity := col.(schema.IdentityColumn); isIdentity {
				continue
			}
			bag[col.Name()] = col.ResolveEpisode(ctx)
		}
		raw, err := json.Marshal(bag)
		if err != nil {
			return nil, fmt.Errorf("marshal episode %d attributes for %q: %w", n, title, err)
		}
		episodes = append(episodes, types.Episode{
			HeaderID:    headerID,
			EpisodeNum:  n,
			EpisodeName: t.EpisodeName(title, n),
			Attributes:  datatypes.JSON(raw),
		})
	}
	return episodes, nil
}
