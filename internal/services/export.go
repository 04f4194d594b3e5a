package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/width"
	"gorm.io/gorm"

	"github.com/vodworks/catalog-backend/internal/logger"
	"github.com/vodworks/catalog-backend/internal/pinyin"
	"github.com/vodworks/catalog-backend/internal/repos"
	"github.com/vodworks/catalog-backend/internal/schema"
	"github.com/vodworks/catalog-backend/internal/types"
)

const (
	exportMinColWidth = 8
	exportMaxColWidth = 30
)

// ExportService renders a tenant's projections as the delivery workbook the
// tenant's ingest side expects: one sheet of headers, one of episodes, and
// for tenants that want it a separate picture sheet, all in the tenant
// schema's declared column order.
type ExportService interface {
	Export(ctx context.Context, tenantCode string, titles []string) (*excelize.File, string, error)
}

type exportService struct {
	db       *gorm.DB
	log      *logger.Logger
	headers  repos.TitleHeaderRepo
	episodes repos.EpisodeRepo
	registry *schema.Registry
}

func NewExportService(
	db *gorm.DB,
	baseLog *logger.Logger,
	headers repos.TitleHeaderRepo,
	episodes repos.EpisodeRepo,
	registry *schema.Registry,
) ExportService {
	serviceLog := baseLog.With("service", "ExportService")
	return &exportService{
		db:       db,
		log:      serviceLog,
		headers:  headers,
		episodes: episodes,
		registry: registry,
	}
}

// Export builds the workbook for a tenant. An empty titles slice exports
// everything the tenant has; otherwise only the named titles.
func (es *exportService) Export(ctx context.Context, tenantCode string, titles []string) (*excelize.File, string, error) {
	tenant, err := es.registry.Schema(tenantCode)
	if err != nil {
		return nil, "", err
	}

	var headers []*types.TitleHeader
	if len(titles) == 0 {
		headers, _, err = es.headers.ListByTenant(ctx, nil, tenantCode, 0, -1)
	} else {
		headers, err = es.headers.GetByTenantAndTitles(ctx, nil, tenantCode, titles)
	}
	if err != nil {
		return nil, "", err
	}

	headerIDs := make([]int64, len(headers))
	for i, h := range headers {
		headerIDs[i] = h.ID
	}
	episodes, err := es.episodes.GetByHeaderIDs(ctx, nil, headerIDs)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	layout := tenant.Export

	if err := es.writeHeaderSheet(f, tenant, headers); err != nil {
		return nil, "", err
	}
	if err := es.writeEpisodeSheet(f, tenant, episodes); err != nil {
		return nil, "", err
	}
	if layout.PictureSheet != "" {
		if err := es.writePictureSheet(f, tenant, headers); err != nil {
			return nil, "", err
		}
	}

	name := fmt.Sprintf("%s_catalog_%s.xlsx", tenantCode, time.Now().Format("20060102150405"))
	es.log.Info("exported workbook", "tenant", tenantCode, "headers", len(headers), "episodes", len(episodes))
	return f, name, nil
}

func (es *exportService) writeHeaderSheet(f *excelize.File, tenant *schema.TenantSchema, headers []*types.TitleHeader) error {
	layout := tenant.Export
	f.SetSheetName(f.GetSheetName(0), layout.HeaderSheet)

	rows := make([][]any, 0, len(headers))
	for i, h := range headers {
		bag, err := decodeBag(h.Attributes)
		if err != nil {
			return fmt.Errorf("header %d attributes: %w", h.ID, err)
		}
		row := make([]any, len(tenant.HeaderColumns))
		for j, col := range tenant.HeaderColumns {
			switch c := col.(type) {
			case schema.IdentityColumn:
				// the tenant's ingest side assigns its own ids
				if c.Field == schema.IdentityID {
					row[j] = ""
				} else {
					row[j] = h.TitleName
				}
			case schema.SequenceColumn:
				row[j] = i + 1
			default:
				row[j] = cellValue(bag[col.Name()])
			}
		}
		rows = append(rows, row)
	}

	return writeSheet(f, layout.HeaderSheet, tenant.HeaderColumnNames(), layout.HeaderLabels, layout.ColWidths, rows)
}

func (es *exportService) writeEpisodeSheet(f *excelize.File, tenant *schema.TenantSchema, episodes []*types.Episode) error {
	layout := tenant.Export
	if _, err := f.NewSheet(layout.EpisodeSheet); err != nil {
		return err
	}

	rows := make([][]any, 0, len(episodes))
	for i, ep := range episodes {
		bag, err := decodeBag(ep.Attributes)
		if err != nil {
			return fmt.Errorf("episode %d attributes: %w", ep.ID, err)
		}
		row := make([]any, len(tenant.EpisodeColumns))
		for j, col := range tenant.EpisodeColumns {
			switch c := col.(type) {
			case schema.IdentityColumn:
				if c.Field == schema.IdentityID {
					row[j] = ""
				} else {
					row[j] = ep.EpisodeName
				}
			case schema.SequenceColumn:
				row[j] = i + 1
			default:
				row[j] = cellValue(bag[col.Name()])
			}
		}
		rows = append(rows, row)
	}

	return writeSheet(f, layout.EpisodeSheet, tenant.EpisodeColumnNames(), layout.EpisodeLabels, layout.ColWidths, rows)
}

// writePictureSheet resolves the picture columns live rather than from the
// attribute bag: image URLs are pure functions of the title abbreviation,
// so nothing needs to be persisted for them.
func (es *exportService) writePictureSheet(f *excelize.File, tenant *schema.TenantSchema, headers []*types.TitleHeader) error {
	layout := tenant.Export
	if _, err := f.NewSheet(layout.PictureSheet); err != nil {
		return err
	}

	names := make([]string, len(layout.PictureColumns))
	for i, col := range layout.PictureColumns {
		names[i] = col.Name()
	}

	rows := make([][]any, 0, len(headers))
	for i, h := range headers {
		hctx := &schema.HeaderContext{
			Title:  h.TitleName,
			Abbr:   pinyin.Abbr(h.TitleName),
			Tenant: tenant,
		}
		row := make([]any, len(layout.PictureColumns))
		for j, col := range layout.PictureColumns {
			switch c := col.(type) {
			case schema.IdentityColumn:
				if c.Field == schema.IdentityID {
					row[j] = ""
				} else {
					row[j] = h.TitleName
				}
			case schema.SequenceColumn:
				row[j] = i + 1
			default:
				row[j] = cellValue(col.ResolveHeader(hctx))
			}
		}
		rows = append(rows, row)
	}

	return writeSheet(f, layout.PictureSheet, names, layout.PictureLabels, layout.ColWidths, rows)
}

func writeSheet(f *excelize.File, sheet string, columns []string, labels map[string]string, fixedWidths map[string]float64, rows [][]any) error {
	head := make([]any, len(columns))
	for i, name := range columns {
		head[i] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return err
	}

	dataStart := 2
	if labels != nil {
		labelRow := make([]any, len(columns))
		for i, name := range columns {
			labelRow[i] = labels[name]
		}
		if err := f.SetSheetRow(sheet, "A2", &labelRow); err != nil {
			return err
		}
		dataStart = 3
		// keep both header rows in view while scrolling the data
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      2,
			TopLeftCell: "A3",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return err
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, dataStart+i)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	return applyColWidths(f, sheet, columns, fixedWidths, rows)
}

// applyColWidths sizes columns from content, counting East Asian wide
// characters double, unless the layout pins a fixed width.
func applyColWidths(f *excelize.File, sheet string, columns []string, fixed map[string]float64, rows [][]any) error {
	for i, name := range columns {
		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if w, ok := fixed[name]; ok {
			if err := f.SetColWidth(sheet, colName, colName, w); err != nil {
				return err
			}
			continue
		}
		maxWidth := displayWidth(name)
		for _, row := range rows {
			if i >= len(row) {
				continue
			}
			if w := displayWidth(fmt.Sprintf("%v", row[i])); w > maxWidth {
				maxWidth = w
			}
		}
		w := float64(maxWidth + 2)
		if w < exportMinColWidth {
			w = exportMinColWidth
		}
		if w > exportMaxColWidth {
			w = exportMaxColWidth
		}
		if err := f.SetColWidth(sheet, colName, colName, w); err != nil {
			return err
		}
	}
	return nil
}

func displayWidth(s string) int {
	total := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			total += 2
		default:
			total++
		}
	}
	return total
}

func decodeBag(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var bag map[string]any
	if err := json.Unmarshal(raw, &bag); err != nil {
		return nil, err
	}
	return bag, nil
}

// cellValue normalizes bag values for the spreadsheet writer: nulls become
// empty cells and integral floats lose the JSON round-trip ".0".
func cellValue(v any) any {
	switch n := v.(type) {
	case nil:
		return ""
	case float64:
		if n == float64(int64(n)) {
			return int64(n)
		}
		return n
	default:
		return v
	}
}
