package types

import (
	"time"

	"gorm.io/datatypes"
)

// ContentRecord is the canonical, tenant independent description of one
// title. It is the single source of truth that every tenant projection is
// derived from; TenantHeaderIDs records which TitleHeader row belongs to
// which tenant so updates and deletes can fan out.
type ContentRecord struct {
	ID                     int64    `gorm:"primaryKey;autoIncrement" json:"id"`
	TitleName              string   `gorm:"column:title_name;size:200;not null;uniqueIndex" json:"title_name"`
	UpstreamLicensor       string   `gorm:"column:upstream_licensor;size:100" json:"upstream_licensor,omitempty"`
	CategoryLevel1         string   `gorm:"column:category_level1;size:50" json:"category_level1,omitempty"`
	CategoryLevel2         string   `gorm:"column:category_level2;size:50" json:"category_level2,omitempty"`
	CategoryLevel1Henan    string   `gorm:"column:category_level1_henan;size:50" json:"category_level1_henan,omitempty"`
	CategoryLevel2Henan    string   `gorm:"column:category_level2_henan;size:50" json:"category_level2_henan,omitempty"`
	CategoryLevel2Shandong string   `gorm:"column:category_level2_shandong;size:100" json:"category_level2_shandong,omitempty"`
	EpisodeCount           *int     `gorm:"column:episode_count" json:"episode_count,omitempty"`
	SingleEpisodeDuration  *float64 `gorm:"column:single_episode_duration" json:"single_episode_duration,omitempty"`
	TotalDuration          *float64 `gorm:"column:total_duration" json:"total_duration,omitempty"`
	ProductionYear         *int     `gorm:"column:production_year" json:"production_year,omitempty"`
	PremiereDate           string   `gorm:"column:premiere_date;size:100" json:"premiere_date,omitempty"`
	ProductionRegion       string   `gorm:"column:production_region;size:100" json:"production_region,omitempty"`
	Language               string   `gorm:"column:language;size:50" json:"language,omitempty"`
	LanguageHenan          string   `gorm:"column:language_henan;size:50" json:"language_henan,omitempty"`
	Country                string   `gorm:"column:country;size:50" json:"country,omitempty"`
	Director               string   `gorm:"column:director;size:200" json:"director,omitempty"`
	Screenwriter           string   `gorm:"column:screenwriter;size:200" json:"screenwriter,omitempty"`
	CastMembers            string   `gorm:"column:cast_members;size:500" json:"cast_members,omitempty"`
	Author                 string   `gorm:"column:author;size:500" json:"author,omitempty"`
	Recommendation         string   `gorm:"column:recommendation;size:500" json:"recommendation,omitempty"`
	Synopsis               string   `gorm:"column:synopsis;size:2000" json:"synopsis,omitempty"`
	Keywords               string   `gorm:"column:keywords;size:200" json:"keywords,omitempty"`
	VideoQuality           string   `gorm:"column:video_quality;size:50" json:"video_quality,omitempty"`
	LicenseNumber          string   `gorm:"column:license_number;size:100" json:"license_number,omitempty"`
	Rating                 *float64 `gorm:"column:rating" json:"rating,omitempty"`
	ExclusiveStatus        string   `gorm:"column:exclusive_status;size:20" json:"exclusive_status,omitempty"`
	CopyrightStartDate     string   `gorm:"column:copyright_start_date;size:100" json:"copyright_start_date,omitempty"`
	CopyrightEndDate       string   `gorm:"column:copyright_end_date;size:100" json:"copyright_end_date,omitempty"`
	AuthorizationRegion    string   `gorm:"column:authorization_region;size:200" json:"authorization_region,omitempty"`
	AuthorizationPlatform  string   `gorm:"column:authorization_platform;size:200" json:"authorization_platform,omitempty"`
	CooperationMode        string   `gorm:"column:cooperation_mode;size:50" json:"cooperation_mode,omitempty"`

	// tenant code -> title header id
	TenantHeaderIDs datatypes.JSONMap `gorm:"column:tenant_header_ids" json:"tenant_header_ids,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ContentRecord) TableName() string { return "content_record" }

// Fields flattens the record into the canonical field map the synthesizer
// and reconciler consume. Nil numerics are left out so the permissive
// getters report them as missing.
func (r *ContentRecord) Fields() RecordFields {
	f := RecordFields{
		FieldTitleName:              r.TitleName,
		FieldUpstreamLicensor:       r.UpstreamLicensor,
		FieldCategoryLevel1:         r.CategoryLevel1,
		FieldCategoryLevel2:         r.CategoryLevel2,
		FieldCategoryLevel1Henan:    r.CategoryLevel1Henan,
		FieldCategoryLevel2Henan:    r.CategoryLevel2Henan,
		FieldCategoryLevel2Shandong: r.CategoryLevel2Shandong,
		FieldPremiereDate:           r.PremiereDate,
		FieldProductionRegion:       r.ProductionRegion,
		FieldLanguage:               r.Language,
		FieldLanguageHenan:          r.LanguageHenan,
		FieldCountry:                r.Country,
		FieldDirector:               r.Director,
		FieldScreenwriter:           r.Screenwriter,
		FieldCastMembers:            r.CastMembers,
		FieldAuthor:                 r.Author,
		FieldRecommendation:         r.Recommendation,
		FieldSynopsis:               r.Synopsis,
		FieldKeywords:               r.Keywords,
		FieldVideoQuality:           r.VideoQuality,
		FieldLicenseNumber:          r.LicenseNumber,
		FieldExclusiveStatus:        r.ExclusiveStatus,
		FieldCopyrightStartDate:     r.CopyrightStartDate,
		FieldCopyrightEndDate:       r.CopyrightEndDate,
		FieldAuthorizationRegion:    r.AuthorizationRegion,
		FieldAuthorizationPlatform:  r.AuthorizationPlatform,
		FieldCooperationMode:        r.CooperationMode,
	}
	if r.EpisodeCount != nil {
		f[FieldEpisodeCount] = *r.EpisodeCount
	}
	if r.SingleEpisodeDuration != nil {
		f[FieldSingleEpisodeDuration] = *r.SingleEpisodeDuration
	}
	if r.TotalDuration != nil {
		f[FieldTotalDuration] = *r.TotalDuration
	}
	if r.ProductionYear != nil {
		f[FieldProductionYear] = *r.ProductionYear
	}
	if r.Rating != nil {
		f[FieldRating] = *r.Rating
	}
	return f
}
