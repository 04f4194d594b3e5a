package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/vodworks/catalog-backend/internal/logger"
	"github.com/vodworks/catalog-backend/internal/pinyin"
	"github.com/vodworks/catalog-backend/internal/repos"
	"github.com/vodworks/catalog-backend/internal/scanindex"
	"github.com/vodworks/catalog-backend/internal/schema"
	"github.com/vodworks/catalog-backend/internal/types"
)

const scanInsertBatchSize = 500

// Header aliases accepted in scan inventory files. Operators hand these in
// as either the scanner tool's English headers or hand-edited CJK ones.
var scanHeaderAliases = map[string]string{
	"source_folder":      "source_folder",
	"目录":                 "source_folder",
	"文件夹":                "source_folder",
	"source_file":        "source_file",
	"路径":                 "source_file",
	"file_name":          "file_name",
	"文件名":                "file_name",
	"文件名称":               "file_name",
	"pinyin_abbr":        "pinyin_abbr",
	"拼音缩写":               "pinyin_abbr",
	"duration_seconds":   "duration_seconds",
	"时长秒":                "duration_seconds",
	"duration_formatted": "duration_formatted",
	"时长":                 "duration_formatted",
	"size_bytes":         "size_bytes",
	"大小":                 "size_bytes",
	"文件大小":               "size_bytes",
	"md5":                "md5",
	"MD5":                "md5",
}

// ScanImportSummary reports what an inventory import did.
type ScanImportSummary struct {
	Total           int `json:"total"`
	Inserted        int `json:"inserted"`
	Duplicates      int `json:"duplicates"`
	SkippedExisting int `json:"skipped_existing"`
	Invalid         int `json:"invalid"`
}

// ScanService ingests the externally produced media scan inventory and
// serves the in-memory match index built from it.
type ScanService interface {
	ImportCSV(ctx context.Context, r io.Reader, replace bool) (*ScanImportSummary, error)
	ImportWorkbook(ctx context.Context, r io.Reader, replace bool) (*ScanImportSummary, error)
	BuildIndex(ctx context.Context) (*scanindex.Index, error)
	Count(ctx context.Context) (int64, error)
}

type scanService struct {
	db          *gorm.DB
	log         *logger.Logger
	scanEntries repos.ScanEntryRepo
}

func NewScanService(db *gorm.DB, baseLog *logger.Logger, scanEntries repos.ScanEntryRepo) ScanService {
	serviceLog := baseLog.With("service", "ScanService")
	return &scanService{db: db, log: serviceLog, scanEntries: scanEntries}
}

func (ss *scanService) ImportCSV(ctx context.Context, r io.Reader, replace bool) (*ScanImportSummary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse scan csv: %w", err)
	}
	return ss.importRows(ctx, records, replace)
}

func (ss *scanService) ImportWorkbook(ctx context.Context, r io.Reader, replace bool) (*ScanImportSummary, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open scan workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read scan sheet: %w", err)
	}
	return ss.importRows(ctx, rows, replace)
}

func (ss *scanService) importRows(ctx context.Context, rows [][]string, replace bool) (*ScanImportSummary, error) {
	if len(rows) < 2 {
		return &ScanImportSummary{}, nil
	}

	colFor := make(map[int]string)
	for i, cell := range rows[0] {
		if field, ok := scanHeaderAliases[strings.TrimSpace(cell)]; ok {
			colFor[i] = field
		}
	}
	if len(colFor) == 0 {
		return nil, fmt.Errorf("scan file has no recognized header row")
	}

	summary := &ScanImportSummary{Total: len(rows) - 1}
	seen := make(map[string]bool)
	var entries []*types.ScanEntry
	var fileNames []string

	for _, row := range rows[1:] {
		cells := make(map[string]string, len(colFor))
		for i, field := range colFor {
			if i < len(row) {
				cells[field] = strings.TrimSpace(row[i])
			}
		}
		fileName := cells["file_name"]
		if fileName == "" {
			summary.Invalid++
			continue
		}
		key := fileName + "|" + cells["source_folder"]
		if seen[key] {
			summary.Duplicates++
			continue
		}
		seen[key] = true

		entry := &types.ScanEntry{
			SourceFolder:      cells["source_folder"],
			SourceFile:        cells["source_file"],
			FileName:          fileName,
			PinyinAbbr:        cells["pinyin_abbr"],
			DurationFormatted: cells["duration_formatted"],
			MD5:               cells["md5"],
		}
		if sec, ok := schema.CleanNumeric(cells["duration_seconds"]); ok {
			entry.DurationSeconds = sec
		} else if entry.DurationFormatted != "" {
			entry.DurationSeconds = float64(schema.ParsePackedDuration(entry.DurationFormatted))
		}
		if entry.DurationFormatted == "" && entry.DurationSeconds > 0 {
			entry.DurationFormatted = schema.FormatDurationPacked(int(entry.DurationSeconds))
		}
		if size, ok := schema.CleanNumeric(cells["size_bytes"]); ok {
			entry.SizeBytes = int64(size)
		}
		if entry.PinyinAbbr == "" && entry.SourceFolder != "" {
			entry.PinyinAbbr = pinyin.Abbr(entry.SourceFolder)
		}
		entries = append(entries, entry)
		fileNames = append(fileNames, fileName)
	}

	if replace {
		if err := ss.scanEntries.DeleteAll(ctx, nil); err != nil {
			return nil, fmt.Errorf("clear scan inventory: %w", err)
		}
	} else if len(fileNames) > 0 {
		existing, err := ss.scanEntries.GetByFileNames(ctx, nil, fileNames)
		if err != nil {
			return nil, err
		}
		known := make(map[string]bool, len(existing))
		for _, e := range existing {
			known[e.FileName+"|"+e.SourceFolder] = true
		}
		kept := entries[:0]
		for _, e := range entries {
			if known[e.FileName+"|"+e.SourceFolder] {
				summary.SkippedExisting++
				continue
			}
			kept = append(kept, e)
		}
		entries = kept
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for start := 0; start < len(entries); start += scanInsertBatchSize {
		end := start + scanInsertBatchSize
		if end > len(entries) {
			end = len(entries)
		}
		batch := entries[start:end]
		g.Go(func() error {
			_, err := ss.scanEntries.Create(gctx, nil, batch)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("insert scan entries: %w", err)
	}
	summary.Inserted = len(entries)

	ss.log.Info("imported scan inventory",
		"total", summary.Total,
		"inserted", summary.Inserted,
		"duplicates", summary.Duplicates,
		"skipped_existing", summary.SkippedExisting,
		"invalid", summary.Invalid,
	)
	return summary, nil
}

func (ss *scanService) BuildIndex(ctx context.Context) (*scanindex.Index, error) {
	entries, err := ss.scanEntries.GetAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("load scan inventory: %w", err)
	}
	return scanindex.Build(entries), nil
}

func (ss *scanService) Count(ctx context.Context) (int64, error) {
	return ss.scanEntries.Count(ctx, nil)
}
