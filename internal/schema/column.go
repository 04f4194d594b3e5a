package schema

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/vodworks/catalog-backend/internal/types"
)

// Column specifications form a closed set of variants, one resolver method
// per variant. A column usable in a header projection implements
// HeaderColumn, one usable in an episode projection implements
// EpisodeColumn; literal and source-mapped columns implement both.
type (
	HeaderColumn interface {
		Name() string
		ResolveHeader(*HeaderContext) any
	}

	EpisodeColumn interface {
		Name() string
		ResolveEpisode(*EpisodeContext) any
	}
)

// HeaderContext carries the inputs for resolving one header projection.
type HeaderContext struct {
	Title  string
	Abbr   string
	Fields types.RecordFields
	Tenant *TenantSchema

	// TotalEpisodeSeconds sums the matched scan durations for all episodes.
	// Nil when no scan index is in scope; the aggregate column then resolves
	// to 0 and is backfilled after episode generation.
	TotalEpisodeSeconds func() int
}

// ScanMatch is the enrichment pulled from the scan inventory for one
// episode. The zero value is a miss: every field defaults accordingly.
type ScanMatch struct {
	DurationSeconds   int
	DurationFormatted string
	SizeBytes         int64
	MD5               string
}

// EpisodeContext carries the inputs for resolving one episode projection.
type EpisodeContext struct {
	Title      string
	Abbr       string
	EpisodeNum int
	ContentDir string
	Fields     types.RecordFields
	Tenant     *TenantSchema
	Match      ScanMatch
}

type IdentityField int

const (
	IdentityID IdentityField = iota
	IdentityName
)

// IdentityColumn passes through the persisted row's own identifier or name.
// It is never written into the attribute bag; the export formatter fills it
// from the row (or blanks it, for id columns).
type IdentityColumn struct {
	Col   string
	Field IdentityField
}

func (c IdentityColumn) Name() string                      { return c.Col }
func (c IdentityColumn) ResolveHeader(*HeaderContext) any  { return nil }
func (c IdentityColumn) ResolveEpisode(*EpisodeContext) any { return nil }

// LiteralColumn always resolves to a fixed value.
type LiteralColumn struct {
	Col   string
	Value any
}

func (c LiteralColumn) Name() string                      { return c.Col }
func (c LiteralColumn) ResolveHeader(*HeaderContext) any  { return c.Value }
func (c LiteralColumn) ResolveEpisode(*EpisodeContext) any { return c.Value }

type ValueFormat int

const (
	FormatNone ValueFormat = iota
	FormatDatetime
	FormatDatetimeFull
	FormatDatetimeCompact
	FormatDateCompact
	FormatInt
)

var delimiterPattern = regexp.MustCompile(`[,，、/／\\]`)

// SourceColumn copies a canonical record field, applying (in order) default
// substitution, delimiter substitution, suffix, one format conversion and a
// length cap. A missing numeric source under FormatInt resolves to empty
// rather than erroring, to tolerate dirty spreadsheets.
type SourceColumn struct {
	Col       string
	Source    string
	Fallbacks []string // tried in order when Source is empty
	Default   any
	Separator string
	Suffix    string
	Format    ValueFormat
	MapLevel1 bool // run the tenant's category level-1 mapping on the value
	MaxLength int
}

func (c SourceColumn) Name() string { return c.Col }

func (c SourceColumn) ResolveHeader(ctx *HeaderContext) any {
	return c.resolve(ctx.Fields, ctx.Tenant)
}

func (c SourceColumn) ResolveEpisode(ctx *EpisodeContext) any {
	return c.resolve(ctx.Fields, ctx.Tenant)
}

func (c SourceColumn) resolve(fields types.RecordFields, tenant *TenantSchema) any {
	v := strings.TrimSpace(fields.String(c.Source))
	for _, fb := range c.Fallbacks {
		if v != "" {
			break
		}
		v = strings.TrimSpace(fields.String(fb))
	}
	if v == "" {
		if c.Default == nil {
			return ""
		}
		v = fmt.Sprintf("%v", c.Default)
	}
	if c.Separator != "" {
		v = delimiterPattern.ReplaceAllString(v, c.Separator)
	}
	if c.Suffix != "" && v != "" {
		v += c.Suffix
	}
	switch c.Format {
	case FormatDatetime:
		v = FormatDateTime(v, DateTimeDefault)
	case FormatDatetimeFull:
		v = FormatDateTime(v, DateTimeFull)
	case FormatDatetimeCompact:
		v = FormatDateTime(v, DateTimeCompact)
	case FormatDateCompact:
		v = FormatDateTime(v, DateCompact)
	case FormatInt:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return ""
		}
		return int(parsed)
	}
	if c.MapLevel1 && v != "" && tenant != nil {
		if mapped := tenant.CategoryLevel1Lookup.Resolve(v); mapped != "" {
			v = mapped
		}
	}
	if c.MaxLength > 0 {
		runes := []rune(v)
		if len(runes) > c.MaxLength {
			v = string(runes[:c.MaxLength])
		}
	}
	return v
}

// ImageColumn resolves to the tenant's image URL for a given slot.
type ImageColumn struct {
	Col  string
	Slot string
}

func (c ImageColumn) Name() string { return c.Col }

func (c ImageColumn) ResolveHeader(ctx *HeaderContext) any {
	return ctx.Tenant.ImageURL(ctx.Abbr, c.Slot)
}

// ProductCategoryColumn classifies by the record's level-1 category
// (preferring the tenant-standardised variant), empty when the category is.
type ProductCategoryColumn struct{ Col string }

func (c ProductCategoryColumn) Name() string { return c.Col }

func (c ProductCategoryColumn) ResolveHeader(ctx *HeaderContext) any {
	cat := firstNonEmpty(ctx.Fields.String(types.FieldCategoryLevel1Henan), ctx.Fields.String(types.FieldCategoryLevel1))
	if cat == "" {
		return ""
	}
	return ctx.Tenant.ProductCategoryLookup.Resolve(cat)
}

// GenreColumn classifies by the raw level-1 category.
type GenreColumn struct{ Col string }

func (c GenreColumn) Name() string { return c.Col }

func (c GenreColumn) ResolveHeader(ctx *HeaderContext) any {
	cat := ctx.Fields.String(types.FieldCategoryLevel1)
	if cat == "" {
		return ""
	}
	return ctx.Tenant.GenreLookup.Resolve(cat)
}

// MultiEpisodeColumn resolves to 1 when the record has more than one
// episode, 0 otherwise.
type MultiEpisodeColumn struct{ Col string }

func (c MultiEpisodeColumn) Name() string { return c.Col }

func (c MultiEpisodeColumn) ResolveHeader(ctx *HeaderContext) any {
	if ctx.Fields.Int(types.FieldEpisodeCount) > 1 {
		return 1
	}
	return 0
}

// TotalDurationColumn resolves to the record's declared total duration,
// truncated to an integer.
type TotalDurationColumn struct{ Col string }

func (c TotalDurationColumn) Name() string { return c.Col }

func (c TotalDurationColumn) ResolveHeader(ctx *HeaderContext) any {
	return int(ctx.Fields.Float(types.FieldTotalDuration))
}

// EpisodeDurationTotalColumn aggregates the matched scan durations of every
// episode into rounded minutes. It can only be computed once episodes are
// matched, so the import pipeline backfills it after episode generation.
type EpisodeDurationTotalColumn struct{ Col string }

func (c EpisodeDurationTotalColumn) Name() string { return c.Col }

func (c EpisodeDurationTotalColumn) ResolveHeader(ctx *HeaderContext) any {
	if ctx.TotalEpisodeSeconds == nil {
		return 0
	}
	seconds := ctx.TotalEpisodeSeconds()
	if seconds <= 0 {
		return 0
	}
	return int(math.Round(float64(seconds) / 60))
}

// AbbrColumn resolves to the title's phonetic abbreviation.
type AbbrColumn struct{ Col string }

func (c AbbrColumn) Name() string { return c.Col }

func (c AbbrColumn) ResolveHeader(ctx *HeaderContext) any { return ctx.Abbr }

// SequenceColumn is a placeholder: stored as null, filled with the 1-based
// export position by the export formatter.
type SequenceColumn struct{ Col string }

func (c SequenceColumn) Name() string                      { return c.Col }
func (c SequenceColumn) ResolveHeader(*HeaderContext) any  { return nil }
func (c SequenceColumn) ResolveEpisode(*EpisodeContext) any { return nil }

// EpisodeNumColumn resolves to the episode's number.
type EpisodeNumColumn struct{ Col string }

func (c EpisodeNumColumn) Name() string { return c.Col }

func (c EpisodeNumColumn) ResolveEpisode(ctx *EpisodeContext) any { return ctx.EpisodeNum }

// MediaURLColumn resolves to the tenant's media pull URL for the episode.
type MediaURLColumn struct{ Col string }

func (c MediaURLColumn) Name() string { return c.Col }

func (c MediaURLColumn) ResolveEpisode(ctx *EpisodeContext) any {
	return ctx.Tenant.MediaURL(ctx.Abbr, ctx.EpisodeNum, ctx.ContentDir)
}

type DurationStyle int

const (
	// DurationPacked is the 8-digit HHMMSS00 form.
	DurationPacked DurationStyle = iota
	DurationMinutes
	DurationSeconds
	DurationColons
)

// DurationColumn resolves the matched scan duration in one of the tenant
// styles. A scan miss yields the style's zero form.
type DurationColumn struct {
	Col   string
	Style DurationStyle
}

func (c DurationColumn) Name() string { return c.Col }

func (c DurationColumn) ResolveEpisode(ctx *EpisodeContext) any {
	switch c.Style {
	case DurationMinutes:
		return RoundedMinutes(ctx.Match.DurationSeconds)
	case DurationSeconds:
		return ctx.Match.DurationSeconds
	case DurationColons:
		return FormatDurationColons(ctx.Match.DurationSeconds)
	default:
		if ctx.Match.DurationFormatted == "" {
			return packedZeroDuration
		}
		return ctx.Match.DurationFormatted
	}
}

// FileSizeColumn resolves to the matched file size in bytes (0 on miss).
type FileSizeColumn struct{ Col string }

func (c FileSizeColumn) Name() string { return c.Col }

func (c FileSizeColumn) ResolveEpisode(ctx *EpisodeContext) any { return ctx.Match.SizeBytes }

// ChecksumColumn resolves to the matched file checksum (empty on miss).
type ChecksumColumn struct{ Col string }

func (c ChecksumColumn) Name() string { return c.Col }

func (c ChecksumColumn) ResolveEpisode(ctx *EpisodeContext) any { return ctx.Match.MD5 }

// EpisodeNameColumn applies a naming template. {title} is the title name,
// {ep} the zero-padded two digit episode number.
type EpisodeNameColumn struct {
	Col      string
	Template string
}

func (c EpisodeNameColumn) Name() string { return c.Col }

func (c EpisodeNameColumn) ResolveEpisode(ctx *EpisodeContext) any {
	tmpl := c.Template
	if tmpl == "" {
		tmpl = DefaultEpisodeNameTemplate
	}
	return ExpandEpisodeName(tmpl, ctx.Title, ctx.EpisodeNum)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
