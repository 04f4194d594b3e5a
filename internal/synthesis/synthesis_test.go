package synthesis

import (
	"encoding/json"
	"testing"

	"github.com/vodworks/catalog-backend/internal/scanindex"
	"github.com/vodworks/catalog-backend/internal/schema"
	"github.com/vodworks/catalog-backend/internal/types"
)

func intPtr(n int) *int          { return &n }
func floatPtr(f float64) *float64 { return &f }

func sampleRecord() *types.ContentRecord {
	return &types.ContentRecord{
		TitleName:      "大江大河",
		CategoryLevel1: "电视剧",
		CategoryLevel2: "都市",
		CastMembers:    "王凯,杨烁",
		Synopsis:       "一部现实主义题材剧。",
		EpisodeCount:   intPtr(3),
		TotalDuration:  floatPtr(135),
		ProductionYear: intPtr(2018),
	}
}

func sampleIndex() *scanindex.Index {
	return scanindex.Build([]types.ScanEntry{
		{FileName: "djdh01.ts", DurationSeconds: 2700, DurationFormatted: "00450000", SizeBytes: 100, MD5: "aaa"},
		{FileName: "djdh02.ts", DurationSeconds: 2710, DurationFormatted: "00450100", SizeBytes: 200, MD5: "bbb"},
	})
}

func mustTenant(t *testing.T, code string) *schema.TenantSchema {
	t.Helper()
	tenant, err := schema.NewRegistry().Schema(code)
	if err != nil {
		t.Fatalf("Schema(%q): %v", code, err)
	}
	return tenant
}

func TestBuildHeader(t *testing.T) {
	tenant := mustTenant(t, "henan_mobile")
	header, err := BuildHeader(tenant, sampleRecord(), nil)
	if err != nil {
		t.Fatalf("BuildHeader: %v", err)
	}
	if header.TenantCode != "henan_mobile" || header.TitleName != "大江大河" {
		t.Fatalf("header row: %+v", header)
	}

	var bag map[string]any
	if err := json.Unmarshal(header.Attributes, &bag); err != nil {
		t.Fatalf("attributes: %v", err)
	}

	// identity columns never enter the bag
	if _, ok := bag["剧头id"]; ok {
		t.Fatal("identity id column leaked into the bag")
	}
	if _, ok := bag["剧集名称"]; ok {
		t.Fatal("identity name column leaked into the bag")
	}

	if got := bag["主演"]; got != "王凯;杨烁" {
		t.Fatalf("主演 = %v", got)
	}
	if got := bag["评分"]; got != "8" {
		t.Fatalf("评分 default = %v", got)
	}
	if got := bag["总集数"]; got != float64(3) {
		t.Fatalf("总集数 = %v (%T)", got, got)
	}
	if got := bag["产品分类"]; got != "电视剧" {
		t.Fatalf("产品分类 = %v", got)
	}
	if got := bag["竖图"]; got != "http://images.vod.hnyd.cn/poster/djdh_v.jpg" {
		t.Fatalf("竖图 = %v", got)
	}
}

func TestBuildHeaderAggregate(t *testing.T) {
	tenant := mustTenant(t, "shandong_mobile")

	withIndex, err := BuildHeader(tenant, sampleRecord(), sampleIndex())
	if err != nil {
		t.Fatalf("BuildHeader: %v", err)
	}
	var bag map[string]any
	if err := json.Unmarshal(withIndex.Attributes, &bag); err != nil {
		t.Fatal(err)
	}
	// 2700 + 2710 matched seconds -> 90 rounded minutes
	if got := bag["total_episodes_duration"]; got != float64(90) {
		t.Fatalf("total_episodes_duration = %v", got)
	}

	withoutIndex, err := BuildHeader(tenant, sampleRecord(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(withoutIndex.Attributes, &bag); err != nil {
		t.Fatal(err)
	}
	if got := bag["total_episodes_duration"]; got != float64(0) {
		t.Fatalf("aggregate without index = %v", got)
	}
}

func TestBuildEpisodes(t *testing.T) {
	tenant := mustTenant(t, "henan_mobile")
	episodes, err := BuildEpisodes(tenant, sampleRecord(), 7, 1, 3, sampleIndex())
	if err != nil {
		t.Fatalf("BuildEpisodes: %v", err)
	}
	if len(episodes) != 3 {
		t.Fatalf("len = %d", len(episodes))
	}

	first := episodes[0]
	if first.HeaderID != 7 || first.EpisodeNum != 1 {
		t.Fatalf("first: %+v", first)
	}
	if first.EpisodeName != "大江大河第01集" {
		t.Fatalf("name = %q", first.EpisodeName)
	}

	var bag map[string]any
	if err := json.Unmarshal(first.Attributes, &bag); err != nil {
		t.Fatal(err)
	}
	if got := bag["媒体拉取地址"]; got != "http://media.vod.hnyd.cn/dsj/djdh/djdh01.ts" {
		t.Fatalf("media url = %v", got)
	}
	if got := bag["时长"]; got != "00450000" {
		t.Fatalf("时长 = %v", got)
	}
	if got := bag["文件大小"]; got != float64(100) {
		t.Fatalf("文件大小 = %v", got)
	}

	// episode 3 has no scan match; metadata degrades to zero forms
	var missBag map[string]any
	if err := json.Unmarshal(episodes[2].Attributes, &missBag); err != nil {
		t.Fatal(err)
	}
	if got := missBag["时长"]; got != "00000000" {
		t.Fatalf("miss 时长 = %v", got)
	}
	if got := missBag["文件大小"]; got != float64(0) {
		t.Fatalf("miss 文件大小 = %v", got)
	}
}

func TestBuildEpisodesContentDirPrefersStandardizedCategory(t *testing.T) {
	tenant := mustTenant(t, "henan_mobile")
	rec := sampleRecord()
	rec.CategoryLevel1 = "其他"
	rec.CategoryLevel2 = ""
	rec.CategoryLevel1Henan = "电视剧"

	episodes, err := BuildEpisodes(tenant, rec, 7, 1, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	var bag map[string]any
	if err := json.Unmarshal(episodes[0].Attributes, &bag); err != nil {
		t.Fatal(err)
	}
	// the standardized category wins the directory classification
	if got := bag["媒体拉取地址"]; got != "http://media.vod.hnyd.cn/dsj/djdh/djdh01.ts" {
		t.Fatalf("media url = %v", got)
	}
}

func TestBuildEpisodesSubRange(t *testing.T) {
	tenant := mustTenant(t, "henan_mobile")
	episodes, err := BuildEpisodes(tenant, sampleRecord(), 7, 4, 6, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(episodes) != 3 {
		t.Fatalf("len = %d", len(episodes))
	}
	if episodes[0].EpisodeNum != 4 || episodes[2].EpisodeNum != 6 {
		t.Fatalf("range: %d..%d", episodes[0].EpisodeNum, episodes[2].EpisodeNum)
	}
	if episodes[2].EpisodeName != "大江大河第06集" {
		t.Fatalf("name = %q", episodes[2].EpisodeName)
	}

	empty, err := BuildEpisodes(tenant, sampleRecord(), 7, 5, 4, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("inverted range: %v, %v", empty, err)
	}
}
