// Package schema holds the per-tenant projection vocabulary: which columns a
// tenant's header and episode rows carry, how each is derived from the
// canonical content record and the scan inventory, and how the tenant's
// delivery spreadsheets are laid out.
package schema

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownTenant = errors.New("unknown tenant code")

// LookupEntry maps a substring of a category value to a tenant term.
type LookupEntry struct {
	Match string
	Value string
}

// Lookup resolves a free-text category by first-match substring scan.
// Entry order matters for overlapping matches, which is why this is a slice
// and not a map.
type Lookup struct {
	Entries []LookupEntry
	Default string
}

func (l Lookup) Resolve(v string) string {
	for _, e := range l.Entries {
		if strings.Contains(v, e.Match) {
			return e.Value
		}
	}
	return l.Default
}

// ExportLayout describes a tenant's delivery workbook: sheet names, an
// optional second header row of human labels, fixed column widths and an
// optional picture sheet.
type ExportLayout struct {
	HeaderSheet  string
	EpisodeSheet string
	PictureSheet string // empty disables the picture sheet

	// Per-sheet label rows. A non-nil map adds a second header row of
	// human labels under the field-name row; nil means a single row.
	HeaderLabels  map[string]string
	EpisodeLabels map[string]string
	PictureLabels map[string]string

	// ColWidths pins specific columns to a fixed width; everything else is
	// auto-sized from content.
	ColWidths map[string]float64

	// PictureColumns lists the picture sheet's columns, resolved against
	// the header's attribute bag plus identity and sequence rules.
	PictureColumns []HeaderColumn
}

// TenantSchema is one tenant's complete projection and delivery contract.
type TenantSchema struct {
	Code string
	Name string

	HeaderColumns  []HeaderColumn
	EpisodeColumns []EpisodeColumn

	// EpisodeNameTemplate names generated episodes ({title}, {ep}).
	EpisodeNameTemplate string

	// ImageURLTemplates maps an image slot to a URL template with {abbr}.
	ImageURLTemplates map[string]string

	// MediaURLTemplate builds episode pull URLs from {dir}, {abbr} and
	// {ep} (zero-padded to two digits).
	MediaURLTemplate string

	// ContentDirLookup picks the CDN directory from the record's level-2
	// category (falling back to level-1).
	ContentDirLookup Lookup

	ProductCategoryLookup Lookup
	GenreLookup           Lookup
	CategoryLevel1Lookup  Lookup

	Export ExportLayout
}

// EpisodeName renders the tenant's name for one episode.
func (t *TenantSchema) EpisodeName(title string, episodeNum int) string {
	tmpl := t.EpisodeNameTemplate
	if tmpl == "" {
		tmpl = DefaultEpisodeNameTemplate
	}
	return ExpandEpisodeName(tmpl, title, episodeNum)
}

// ImageURL expands the template for one image slot, empty when the tenant
// has no such slot.
func (t *TenantSchema) ImageURL(abbr, slot string) string {
	tmpl, ok := t.ImageURLTemplates[slot]
	if !ok {
		return ""
	}
	return strings.ReplaceAll(tmpl, "{abbr}", abbr)
}

// MediaURL expands the media pull URL for one episode.
func (t *TenantSchema) MediaURL(abbr string, episodeNum int, dir string) string {
	if t.MediaURLTemplate == "" {
		return ""
	}
	out := strings.ReplaceAll(t.MediaURLTemplate, "{dir}", dir)
	out = strings.ReplaceAll(out, "{abbr}", abbr)
	return strings.ReplaceAll(out, "{ep}", fmt.Sprintf("%02d", episodeNum))
}

// ContentDir picks the CDN directory for a record, preferring the level-2
// category.
func (t *TenantSchema) ContentDir(categoryLevel1, categoryLevel2 string) string {
	if categoryLevel2 != "" {
		if dir := t.ContentDirLookup.Resolve(categoryLevel2); dir != t.ContentDirLookup.Default || categoryLevel1 == "" {
			return dir
		}
	}
	return t.ContentDirLookup.Resolve(categoryLevel1)
}

// HeaderColumnNames returns the header columns in declaration order.
func (t *TenantSchema) HeaderColumnNames() []string {
	names := make([]string, len(t.HeaderColumns))
	for i, c := range t.HeaderColumns {
		names[i] = c.Name()
	}
	return names
}

// EpisodeColumnNames returns the episode columns in declaration order.
func (t *TenantSchema) EpisodeColumnNames() []string {
	names := make([]string, len(t.EpisodeColumns))
	for i, c := range t.EpisodeColumns {
		names[i] = c.Name()
	}
	return names
}

// Registry resolves tenant codes to schemas. Tenants are compiled in; there
// is deliberately no runtime mutation.
type Registry struct {
	order   []string
	tenants map[string]*TenantSchema
}

// NewRegistry builds the registry with every supported tenant.
func NewRegistry() *Registry {
	r := &Registry{tenants: make(map[string]*TenantSchema)}
	for _, t := range []*TenantSchema{
		henanMobile(),
		shandongMobile(),
		jiangsuNewMedia(),
	} {
		r.order = append(r.order, t.Code)
		r.tenants[t.Code] = t
	}
	return r
}

// Schema returns the schema for a tenant code.
func (r *Registry) Schema(code string) (*TenantSchema, error) {
	t, ok := r.tenants[code]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTenant, code)
	}
	return t, nil
}

// TenantCodes lists the registered tenants in registration order.
func (r *Registry) TenantCodes() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
