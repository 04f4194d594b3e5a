package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/vodworks/catalog-backend/internal/logger"
	"github.com/vodworks/catalog-backend/internal/pinyin"
	"github.com/vodworks/catalog-backend/internal/repos"
	"github.com/vodworks/catalog-backend/internal/scanindex"
	"github.com/vodworks/catalog-backend/internal/schema"
	"github.com/vodworks/catalog-backend/internal/synthesis"
	"github.com/vodworks/catalog-backend/internal/tasks"
	"github.com/vodworks/catalog-backend/internal/types"
)

const importBatchSize = 500

// ErrEmptyTitleName marks rows whose title cell is blank or a placeholder.
var ErrEmptyTitleName = errors.New("row has no title name")

// columnMapping translates the editorial spreadsheet's CJK headers to
// canonical field names. Several headers alias the same field because the
// upstream template has drifted over the years.
var columnMapping = map[string]string{
	"节目名称":     types.FieldTitleName,
	"剧集名称":     types.FieldTitleName,
	"版权方":      types.FieldUpstreamLicensor,
	"上游版权方":    types.FieldUpstreamLicensor,
	"一级分类":     types.FieldCategoryLevel1,
	"二级分类":     types.FieldCategoryLevel2,
	"河南一级分类":   types.FieldCategoryLevel1Henan,
	"河南二级分类":   types.FieldCategoryLevel2Henan,
	"山东二级分类":   types.FieldCategoryLevel2Shandong,
	"集数":       types.FieldEpisodeCount,
	"总集数":      types.FieldEpisodeCount,
	"单集时长":     types.FieldSingleEpisodeDuration,
	"单集时长(分钟)": types.FieldSingleEpisodeDuration,
	"总时长":      types.FieldTotalDuration,
	"总时长(分钟)":  types.FieldTotalDuration,
	"年代":       types.FieldProductionYear,
	"上映年份":     types.FieldProductionYear,
	"上线时间":     types.FieldPremiereDate,
	"首播时间":     types.FieldPremiereDate,
	"地区":       types.FieldProductionRegion,
	"制作地区":     types.FieldProductionRegion,
	"国家":       types.FieldCountry,
	"语言":       types.FieldLanguage,
	"河南语言":     types.FieldLanguageHenan,
	"导演":       types.FieldDirector,
	"编剧":       types.FieldScreenwriter,
	"主演":       types.FieldCastMembers,
	"作者":       types.FieldAuthor,
	"推荐语":      types.FieldRecommendation,
	"简介":       types.FieldSynopsis,
	"描述":       types.FieldSynopsis,
	"关键字":      types.FieldKeywords,
	"关键词":      types.FieldKeywords,
	"清晰度":      types.FieldVideoQuality,
	"许可证号":     types.FieldLicenseNumber,
	"备案号":      types.FieldLicenseNumber,
	"评分":       types.FieldRating,
	"独家":       types.FieldExclusiveStatus,
	"版权开始时间":   types.FieldCopyrightStartDate,
	"版权结束时间":   types.FieldCopyrightEndDate,
	"授权地区":     types.FieldAuthorizationRegion,
	"授权平台":     types.FieldAuthorizationPlatform,
	"合作方式":     types.FieldCooperationMode,
}

// ImportService runs the bulk catalog import: parse the editorial workbook,
// clean and dedupe rows, insert new records, synthesize headers for the
// requested tenants, then generate episodes in the background while the
// task id reports progress.
type ImportService interface {
	ImportWorkbook(ctx context.Context, r io.Reader, tenantCodes []string) (string, error)
	ImportRows(ctx context.Context, taskID string, rows []map[string]string, tenantCodes []string)
}

type importService struct {
	db          *gorm.DB
	log         *logger.Logger
	records     repos.ContentRecordRepo
	headers     repos.TitleHeaderRepo
	scanEntries repos.ScanEntryRepo
	registry    *schema.Registry
	generator   EpisodeGenerator
	tasks       *tasks.Store
}

func NewImportService(
	db *gorm.DB,
	baseLog *logger.Logger,
	records repos.ContentRecordRepo,
	headers repos.TitleHeaderRepo,
	scanEntries repos.ScanEntryRepo,
	registry *schema.Registry,
	generator EpisodeGenerator,
	taskStore *tasks.Store,
) ImportService {
	serviceLog := baseLog.With("service", "ImportService")
	return &importService{
		db:          db,
		log:         serviceLog,
		records:     records,
		headers:     headers,
		scanEntries: scanEntries,
		registry:    registry,
		generator:   generator,
		tasks:       taskStore,
	}
}

// ImportWorkbook parses synchronously so malformed files fail the request,
// then runs the import itself in the background under a fresh context. The
// returned task id is the handle for polling progress.
func (is *importService) ImportWorkbook(ctx context.Context, r io.Reader, tenantCodes []string) (string, error) {
	for _, code := range tenantCodes {
		if _, err := is.registry.Schema(code); err != nil {
			return "", err
		}
	}

	rows, err := parseImportWorkbook(r)
	if err != nil {
		return "", err
	}

	taskID := is.tasks.Create("catalog_import")
	go is.ImportRows(context.Background(), taskID, rows, tenantCodes)
	return taskID, nil
}

// ImportRows is the synchronous core of the pipeline, exposed so callers
// that already have parsed rows (and tests) can drive it directly.
func (is *importService) ImportRows(ctx context.Context, taskID string, rows []map[string]string, tenantCodes []string) {
	is.tasks.Update(taskID, func(t *tasks.Task) {
		t.Status = tasks.StatusRunning
		t.Total = len(rows)
	})

	fail := func(err error) {
		is.log.Error("import failed", "task_id", taskID, "error", err)
		is.tasks.Update(taskID, func(t *tasks.Task) {
			t.Status = tasks.StatusFailed
			t.Message = err.Error()
		})
	}

	// Clean and validate; dedupe within the file keeping the first
	// occurrence of each title.
	seen := make(map[string]bool, len(rows))
	var newRecords []*types.ContentRecord
	for i, cells := range rows {
		is.tasks.Update(taskID, func(t *tasks.Task) { t.Processed++ })
		rec, err := buildRecord(cells)
		if err != nil {
			is.tasks.AddError(taskID, fmt.Sprintf("row %d: %v", i+2, err))
			is.tasks.Update(taskID, func(t *tasks.Task) { t.Failed++ })
			continue
		}
		if seen[rec.TitleName] {
			is.tasks.Update(taskID, func(t *tasks.Task) { t.Duplicates++ })
			continue
		}
		seen[rec.TitleName] = true
		newRecords = append(newRecords, rec)
	}

	// Titles already in the catalog are skipped, never overwritten; edits
	// go through the record update path so they reconcile.
	kept := newRecords[:0]
	for start := 0; start < len(newRecords); start += importBatchSize {
		end := start + importBatchSize
		if end > len(newRecords) {
			end = len(newRecords)
		}
		batch := newRecords[start:end]
		titles := make([]string, len(batch))
		for i, rec := range batch {
			titles[i] = rec.TitleName
		}
		existing, err := is.records.GetByTitleNames(ctx, nil, titles)
		if err != nil {
			fail(err)
			return
		}
		known := make(map[string]bool, len(existing))
		for _, rec := range existing {
			known[rec.TitleName] = true
		}
		for _, rec := range batch {
			if known[rec.TitleName] {
				is.tasks.Update(taskID, func(t *tasks.Task) { t.SkippedExisting++ })
				continue
			}
			kept = append(kept, rec)
		}
	}
	newRecords = kept

	for start := 0; start < len(newRecords); start += importBatchSize {
		end := start + importBatchSize
		if end > len(newRecords) {
			end = len(newRecords)
		}
		batch := newRecords[start:end]
		if _, err := is.records.Create(ctx, nil, batch); err != nil {
			fail(fmt.Errorf("insert record batch: %w", err))
			return
		}
		is.tasks.Update(taskID, func(t *tasks.Task) { t.Imported += len(batch) })
	}

	titles := make([]string, len(newRecords))
	for i, rec := range newRecords {
		titles[i] = rec.TitleName
	}
	index, err := loadScanIndexForTitles(ctx, is.scanEntries, titles)
	if err != nil {
		fail(err)
		return
	}

	is.tasks.Update(taskID, func(t *tasks.Task) { t.EpisodeStatus = tasks.StatusRunning })
	for _, code := range tenantCodes {
		tenant, err := is.registry.Schema(code)
		if err != nil {
			fail(err)
			return
		}
		pairs, err := is.synthesizeHeaders(ctx, tenant, newRecords, index)
		if err != nil {
			fail(err)
			return
		}
		if err := is.generator.Generate(ctx, taskID, tenant, pairs, index); err != nil {
			// Records and headers are already committed; a generation
			// failure is reported on the episode side of the task only.
			is.log.Error("episode generation failed", "task_id", taskID, "tenant", code, "error", err)
			is.tasks.Update(taskID, func(t *tasks.Task) {
				t.Status = tasks.StatusCompleted
				t.EpisodeStatus = tasks.StatusFailed
				t.Message = err.Error()
			})
			return
		}
	}

	is.tasks.Update(taskID, func(t *tasks.Task) {
		t.Status = tasks.StatusCompleted
		t.EpisodeStatus = tasks.StatusCompleted
		t.EpisodeProgress = 100
	})
	is.log.Info("import completed", "task_id", taskID, "records", len(newRecords), "tenants", tenantCodes)
}

func (is *importService) synthesizeHeaders(ctx context.Context, tenant *schema.TenantSchema, records []*types.ContentRecord, index *scanindex.Index) ([]HeaderRecord, error) {
	pairs := make([]HeaderRecord, 0, len(records))
	err := is.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var batch []*types.TitleHeader
		var batchRecords []*types.ContentRecord
		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			if _, err := is.headers.Create(ctx, tx, batch); err != nil {
				return fmt.Errorf("insert header batch: %w", err)
			}
			for i, h := range batch {
				rec := batchRecords[i]
				if rec.TenantHeaderIDs == nil {
					rec.TenantHeaderIDs = map[string]interface{}{}
				}
				rec.TenantHeaderIDs[tenant.Code] = h.ID
				if err := is.records.Update(ctx, tx, rec); err != nil {
					return err
				}
				pairs = append(pairs, HeaderRecord{Header: h, Record: rec})
			}
			batch = batch[:0]
			batchRecords = batchRecords[:0]
			return nil
		}
		for _, rec := range records {
			header, err := synthesis.BuildHeader(tenant, rec, index)
			if err != nil {
				return err
			}
			batch = append(batch, header)
			batchRecords = append(batchRecords, rec)
			if len(batch) >= importBatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		return flush()
	})
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

// loadScanIndexForTitles builds a match index over just the inventory rows
// that could belong to the given titles, by folder or filename prefix on the
// title and its abbreviation.
func loadScanIndexForTitles(ctx context.Context, scanEntries repos.ScanEntryRepo, titles []string) (*scanindex.Index, error) {
	keys := make([]string, 0, len(titles)*2)
	for _, title := range titles {
		if title == "" {
			continue
		}
		keys = append(keys, title)
		if abbr := pinyin.Abbr(title); abbr != "" {
			keys = append(keys, abbr)
		}
	}
	entries, err := scanEntries.ForTitles(ctx, nil, keys)
	if err != nil {
		return nil, fmt.Errorf("load scan inventory: %w", err)
	}
	return scanindex.Build(entries), nil
}

// parseImportWorkbook reads the first sheet into header-keyed rows, mapping
// recognized CJK headers to canonical field names and ignoring the rest.
func parseImportWorkbook(r io.Reader) ([]map[string]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	raw, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	if len(raw) < 2 {
		return nil, nil
	}

	colFor := make(map[int]string)
	for i, cell := range raw[0] {
		if field, ok := columnMapping[strings.TrimSpace(cell)]; ok {
			colFor[i] = field
		}
	}
	if len(colFor) == 0 {
		return nil, fmt.Errorf("workbook has no recognized header row")
	}

	rows := make([]map[string]string, 0, len(raw)-1)
	for _, row := range raw[1:] {
		cells := make(map[string]string, len(colFor))
		empty := true
		for i, field := range colFor {
			if i >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[i])
			if v != "" {
				empty = false
			}
			// first alias wins when two headers map to one field
			if _, dup := cells[field]; !dup {
				cells[field] = v
			}
		}
		if !empty {
			rows = append(rows, cells)
		}
	}
	return rows, nil
}

// buildRecord cleans one parsed row into a canonical record. The title is
// the only hard requirement; numeric fields tolerate placeholder tokens and
// unit suffixes.
func buildRecord(cells map[string]string) (*types.ContentRecord, error) {
	title := schema.CleanString(cells[types.FieldTitleName])
	if title == "" {
		return nil, ErrEmptyTitleName
	}

	rec := &types.ContentRecord{
		TitleName:             title,
		UpstreamLicensor:      schema.CleanString(cells[types.FieldUpstreamLicensor]),
		CategoryLevel1:        schema.CleanString(cells[types.FieldCategoryLevel1]),
		CategoryLevel2:        schema.CleanString(cells[types.FieldCategoryLevel2]),
		CategoryLevel1Henan:   schema.CleanString(cells[types.FieldCategoryLevel1Henan]),
		CategoryLevel2Henan:   schema.CleanString(cells[types.FieldCategoryLevel2Henan]),
		CategoryLevel2Shandong: schema.CleanString(cells[types.FieldCategoryLevel2Shandong]),
		PremiereDate:          schema.CleanString(cells[types.FieldPremiereDate]),
		ProductionRegion:      schema.CleanString(cells[types.FieldProductionRegion]),
		Language:              schema.CleanString(cells[types.FieldLanguage]),
		LanguageHenan:         schema.CleanString(cells[types.FieldLanguageHenan]),
		Country:               schema.CleanString(cells[types.FieldCountry]),
		Director:              schema.CleanString(cells[types.FieldDirector]),
		Screenwriter:          schema.CleanString(cells[types.FieldScreenwriter]),
		CastMembers:           schema.CleanString(cells[types.FieldCastMembers]),
		Author:                schema.CleanString(cells[types.FieldAuthor]),
		Recommendation:        schema.CleanString(cells[types.FieldRecommendation]),
		Synopsis:              schema.CleanString(cells[types.FieldSynopsis]),
		Keywords:              schema.CleanString(cells[types.FieldKeywords]),
		VideoQuality:          schema.CleanString(cells[types.FieldVideoQuality]),
		LicenseNumber:         schema.CleanString(cells[types.FieldLicenseNumber]),
		ExclusiveStatus:       schema.CleanString(cells[types.FieldExclusiveStatus]),
		CopyrightStartDate:    schema.CleanString(cells[types.FieldCopyrightStartDate]),
		CopyrightEndDate:      schema.CleanString(cells[types.FieldCopyrightEndDate]),
		AuthorizationRegion:   schema.CleanString(cells[types.FieldAuthorizationRegion]),
		AuthorizationPlatform: schema.CleanString(cells[types.FieldAuthorizationPlatform]),
		CooperationMode:       schema.CleanString(cells[types.FieldCooperationMode]),
	}

	if n, ok := schema.CleanInt(cells[types.FieldEpisodeCount]); ok {
		rec.EpisodeCount = &n
	}
	if f, ok := schema.CleanNumeric(cells[types.FieldSingleEpisodeDuration]); ok {
		rec.SingleEpisodeDuration = &f
	}
	if f, ok := schema.CleanNumeric(cells[types.FieldTotalDuration]); ok {
		rec.TotalDuration = &f
	}
	if n, ok := schema.CleanInt(cells[types.FieldProductionYear]); ok {
		rec.ProductionYear = &n
	}
	if f, ok := schema.CleanNumeric(cells[types.FieldRating]); ok {
		rec.Rating = &f
	}

	// A known episode duration but no total is common; derive the total so
	// downstream columns have something to project.
	if rec.TotalDuration == nil && rec.SingleEpisodeDuration != nil && rec.EpisodeCount != nil {
		total := *rec.SingleEpisodeDuration * float64(*rec.EpisodeCount)
		rec.TotalDuration = &total
	}

	return rec, nil
}
