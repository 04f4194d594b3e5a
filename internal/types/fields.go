package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Canonical field names shared by the import column mapping, the tenant
// schemas and the synthesizer.
const (
	FieldTitleName              = "title_name"
	FieldUpstreamLicensor       = "upstream_licensor"
	FieldCategoryLevel1         = "category_level1"
	FieldCategoryLevel2         = "category_level2"
	FieldCategoryLevel1Henan    = "category_level1_henan"
	FieldCategoryLevel2Henan    = "category_level2_henan"
	FieldCategoryLevel2Shandong = "category_level2_shandong"
	FieldEpisodeCount           = "episode_count"
	FieldSingleEpisodeDuration  = "single_episode_duration"
	FieldTotalDuration          = "total_duration"
	FieldProductionYear         = "production_year"
	FieldPremiereDate           = "premiere_date"
	FieldProductionRegion       = "production_region"
	FieldLanguage               = "language"
	FieldLanguageHenan          = "language_henan"
	FieldCountry                = "country"
	FieldDirector               = "director"
	FieldScreenwriter           = "screenwriter"
	FieldCastMembers            = "cast_members"
	FieldAuthor                 = "author"
	FieldRecommendation         = "recommendation"
	FieldSynopsis               = "synopsis"
	FieldKeywords               = "keywords"
	FieldVideoQuality           = "video_quality"
	FieldLicenseNumber          = "license_number"
	FieldRating                 = "rating"
	FieldExclusiveStatus        = "exclusive_status"
	FieldCopyrightStartDate     = "copyright_start_date"
	FieldCopyrightEndDate       = "copyright_end_date"
	FieldAuthorizationRegion    = "authorization_region"
	FieldAuthorizationPlatform  = "authorization_platform"
	FieldCooperationMode        = "cooperation_mode"
)

// RecordFields is a cleaned canonical record keyed by field name. Values are
// strings, ints or floats depending on what the cleaners produced; the
// getters are permissive because projection must tolerate dirty input.
type RecordFields map[string]any

func (f RecordFields) String(key string) string {
	v, ok := f[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case float64:
		// integral floats print without the trailing .0
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (f RecordFields) Int(key string) int {
	v, ok := f[key]
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		trimmed := strings.TrimSpace(n)
		if trimmed == "" {
			return 0
		}
		if parsed, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return int(parsed)
		}
		return 0
	default:
		return 0
	}
}

func (f RecordFields) Float(key string) float64 {
	v, ok := f[key]
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		trimmed := strings.TrimSpace(n)
		if trimmed == "" {
			return 0
		}
		if parsed, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return parsed
		}
		return 0
	default:
		return 0
	}
}

// Has reports whether the field is present and non-empty.
func (f RecordFields) Has(key string) bool {
	v, ok := f[key]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr {
		return strings.TrimSpace(s) != ""
	}
	return true
}
