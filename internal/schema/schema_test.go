package schema

import (
	"errors"
	"testing"

	"github.com/vodworks/catalog-backend/internal/types"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	codes := r.TenantCodes()
	want := []string{"henan_mobile", "shandong_mobile", "jiangsu_newmedia"}
	if len(codes) != len(want) {
		t.Fatalf("TenantCodes() = %v", codes)
	}
	for i, code := range want {
		if codes[i] != code {
			t.Fatalf("TenantCodes()[%d] = %q, want %q", i, codes[i], code)
		}
	}

	for _, code := range want {
		if _, err := r.Schema(code); err != nil {
			t.Fatalf("Schema(%q): %v", code, err)
		}
	}

	_, err := r.Schema("hubei_telecom")
	if !errors.Is(err, ErrUnknownTenant) {
		t.Fatalf("expected ErrUnknownTenant, got %v", err)
	}
}

func TestLookupResolve(t *testing.T) {
	l := Lookup{
		Entries: []LookupEntry{
			{Match: "电视剧", Value: "dsj"},
			{Match: "电影", Value: "dy"},
		},
		Default: "qt",
	}
	if got := l.Resolve("国产电视剧"); got != "dsj" {
		t.Fatalf("got %q", got)
	}
	if got := l.Resolve("微电影"); got != "dy" {
		t.Fatalf("got %q", got)
	}
	if got := l.Resolve("晚会"); got != "qt" {
		t.Fatalf("got %q", got)
	}
}

func sampleFields() types.RecordFields {
	return types.RecordFields{
		types.FieldTitleName:      "大江大河",
		types.FieldCategoryLevel1: "电视剧",
		types.FieldCategoryLevel2: "都市",
		types.FieldCastMembers:    "王凯,杨烁、董子健",
		types.FieldEpisodeCount:   24,
		types.FieldTotalDuration:  1080.0,
		types.FieldSynopsis:       "一部现实主义题材剧。",
		types.FieldProductionYear: 2018,
	}
}

func TestSourceColumnResolve(t *testing.T) {
	tenant := henanMobile()
	ctx := &HeaderContext{Fields: sampleFields(), Tenant: tenant}

	t.Run("separator substitution", func(t *testing.T) {
		col := SourceColumn{Col: "主演", Source: types.FieldCastMembers, Separator: ";"}
		if got := col.ResolveHeader(ctx); got != "王凯;杨烁;董子健" {
			t.Fatalf("got %v", got)
		}
	})

	t.Run("default on missing", func(t *testing.T) {
		col := SourceColumn{Col: "评分", Source: types.FieldRating, Default: 8}
		if got := col.ResolveHeader(ctx); got != "8" {
			t.Fatalf("got %v", got)
		}
	})

	t.Run("fallback chain", func(t *testing.T) {
		col := SourceColumn{Col: "内容类型", Source: types.FieldCategoryLevel1Henan, Fallbacks: []string{types.FieldCategoryLevel1}}
		if got := col.ResolveHeader(ctx); got != "电视剧" {
			t.Fatalf("got %v", got)
		}
	})

	t.Run("int format", func(t *testing.T) {
		col := SourceColumn{Col: "上映年份", Source: types.FieldProductionYear, Format: FormatInt}
		if got := col.ResolveHeader(ctx); got != 2018 {
			t.Fatalf("got %v", got)
		}
	})

	t.Run("int format on garbage", func(t *testing.T) {
		fields := sampleFields()
		fields[types.FieldProductionYear] = "九十年代"
		col := SourceColumn{Col: "上映年份", Source: types.FieldProductionYear, Format: FormatInt}
		if got := col.ResolveHeader(&HeaderContext{Fields: fields, Tenant: tenant}); got != "" {
			t.Fatalf("got %v", got)
		}
	})

	t.Run("max length in runes", func(t *testing.T) {
		col := SourceColumn{Col: "描述", Source: types.FieldSynopsis, MaxLength: 5}
		if got := col.ResolveHeader(ctx); got != "一部现实主" {
			t.Fatalf("got %v", got)
		}
	})

	t.Run("suffix only when present", func(t *testing.T) {
		col := SourceColumn{Col: "时长", Source: types.FieldSingleEpisodeDuration, Suffix: "分钟"}
		if got := col.ResolveHeader(ctx); got != "" {
			t.Fatalf("suffix on empty value: got %v", got)
		}
	})
}

func TestComputedHeaderColumns(t *testing.T) {
	tenant := henanMobile()
	ctx := &HeaderContext{
		Title:  "大江大河",
		Abbr:   "djdh",
		Fields: sampleFields(),
		Tenant: tenant,
	}

	if got := (ProductCategoryColumn{Col: "产品分类"}).ResolveHeader(ctx); got != "电视剧" {
		t.Fatalf("product category: got %v", got)
	}
	if got := (MultiEpisodeColumn{Col: "multi"}).ResolveHeader(ctx); got != 1 {
		t.Fatalf("multi episode: got %v", got)
	}
	if got := (TotalDurationColumn{Col: "dur"}).ResolveHeader(ctx); got != 1080 {
		t.Fatalf("total duration: got %v", got)
	}
	if got := (AbbrColumn{Col: "code"}).ResolveHeader(ctx); got != "djdh" {
		t.Fatalf("abbr: got %v", got)
	}
	if got := (ImageColumn{Col: "竖图", Slot: "vertical"}).ResolveHeader(ctx); got != "http://images.vod.hnyd.cn/poster/djdh_v.jpg" {
		t.Fatalf("image url: got %v", got)
	}

	singleFields := sampleFields()
	singleFields[types.FieldEpisodeCount] = 1
	single := &HeaderContext{Fields: singleFields, Tenant: tenant}
	if got := (MultiEpisodeColumn{Col: "multi"}).ResolveHeader(single); got != 0 {
		t.Fatalf("single episode: got %v", got)
	}
}

func TestEpisodeDurationTotalColumn(t *testing.T) {
	col := EpisodeDurationTotalColumn{Col: "total"}

	if got := col.ResolveHeader(&HeaderContext{}); got != 0 {
		t.Fatalf("no index: got %v", got)
	}
	ctx := &HeaderContext{TotalEpisodeSeconds: func() int { return 5400 }}
	if got := col.ResolveHeader(ctx); got != 90 {
		t.Fatalf("got %v", got)
	}
}

func TestEpisodeColumns(t *testing.T) {
	tenant := henanMobile()
	ctx := &EpisodeContext{
		Title:      "大江大河",
		Abbr:       "djdh",
		EpisodeNum: 3,
		ContentDir: "dsj",
		Fields:     sampleFields(),
		Tenant:     tenant,
		Match: ScanMatch{
			DurationSeconds:   2700,
			DurationFormatted: "00450000",
			SizeBytes:         734003200,
			MD5:               "d41d8cd98f00b204e9800998ecf8427e",
		},
	}

	if got := (EpisodeNumColumn{Col: "集数"}).ResolveEpisode(ctx); got != 3 {
		t.Fatalf("episode num: got %v", got)
	}
	if got := (MediaURLColumn{Col: "url"}).ResolveEpisode(ctx); got != "http://media.vod.hnyd.cn/dsj/djdh/djdh03.ts" {
		t.Fatalf("media url: got %v", got)
	}
	if got := (DurationColumn{Col: "d", Style: DurationPacked}).ResolveEpisode(ctx); got != "00450000" {
		t.Fatalf("packed: got %v", got)
	}
	if got := (DurationColumn{Col: "d", Style: DurationMinutes}).ResolveEpisode(ctx); got != 45 {
		t.Fatalf("minutes: got %v", got)
	}
	if got := (DurationColumn{Col: "d", Style: DurationColons}).ResolveEpisode(ctx); got != "00:45:00" {
		t.Fatalf("colons: got %v", got)
	}
	if got := (FileSizeColumn{Col: "size"}).ResolveEpisode(ctx); got != int64(734003200) {
		t.Fatalf("size: got %v", got)
	}
	if got := (ChecksumColumn{Col: "md5"}).ResolveEpisode(ctx); got != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Fatalf("md5: got %v", got)
	}

	miss := &EpisodeContext{Title: "大江大河", EpisodeNum: 3, Tenant: tenant, Fields: sampleFields()}
	if got := (DurationColumn{Col: "d", Style: DurationPacked}).ResolveEpisode(miss); got != "00000000" {
		t.Fatalf("packed miss: got %v", got)
	}
	if got := (DurationColumn{Col: "d", Style: DurationMinutes}).ResolveEpisode(miss); got != 0 {
		t.Fatalf("minutes miss: got %v", got)
	}
	if got := (FileSizeColumn{Col: "size"}).ResolveEpisode(miss); got != int64(0) {
		t.Fatalf("size miss: got %v", got)
	}
}

func TestTenantContentDir(t *testing.T) {
	tenant := henanMobile()
	if got := tenant.ContentDir("电视剧", ""); got != "dsj" {
		t.Fatalf("got %q", got)
	}
	if got := tenant.ContentDir("电视剧", "动漫剧场"); got != "dm" {
		t.Fatalf("level2 should win: got %q", got)
	}
	if got := tenant.ContentDir("晚会", ""); got != "qt" {
		t.Fatalf("got %q", got)
	}
}

func TestJiangsuLayout(t *testing.T) {
	tenant := jiangsuNewMedia()
	layout := tenant.Export

	if layout.PictureSheet == "" {
		t.Fatal("jiangsu should have a picture sheet")
	}
	if layout.HeaderLabels == nil || layout.EpisodeLabels == nil {
		t.Fatal("jiangsu should have label rows")
	}
	for _, col := range tenant.HeaderColumns {
		if _, ok := layout.HeaderLabels[col.Name()]; !ok {
			t.Fatalf("header column %q has no label", col.Name())
		}
	}
	for _, col := range tenant.EpisodeColumns {
		if _, ok := layout.EpisodeLabels[col.Name()]; !ok {
			t.Fatalf("episode column %q has no label", col.Name())
		}
	}

	// type column runs the level-1 mapping
	ctx := &HeaderContext{Fields: sampleFields(), Tenant: tenant}
	col := SourceColumn{Col: "type", Source: types.FieldCategoryLevel1, MapLevel1: true}
	if got := col.ResolveHeader(ctx); got != "连续剧" {
		t.Fatalf("mapped type: got %v", got)
	}
}
