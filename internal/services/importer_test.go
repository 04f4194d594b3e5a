package services

import (
	"context"
	"errors"
	"testing"

	"github.com/vodworks/catalog-backend/internal/scanindex"
	"github.com/vodworks/catalog-backend/internal/schema"
	"github.com/vodworks/catalog-backend/internal/tasks"
	"github.com/vodworks/catalog-backend/internal/types"
)

func TestBuildRecord(t *testing.T) {
	t.Run("cleans and converts", func(t *testing.T) {
		rec, err := buildRecord(map[string]string{
			types.FieldTitleName:             " 大江大河 ",
			types.FieldEpisodeCount:          "24集",
			types.FieldSingleEpisodeDuration: "45分钟",
			types.FieldRating:                "8.5",
			types.FieldProductionYear:        "2018",
			types.FieldDirector:              "暂无",
		})
		if err != nil {
			t.Fatalf("buildRecord: %v", err)
		}
		if rec.TitleName != "大江大河" {
			t.Fatalf("title: %q", rec.TitleName)
		}
		if rec.EpisodeCount == nil || *rec.EpisodeCount != 24 {
			t.Fatalf("episode count: %v", rec.EpisodeCount)
		}
		if rec.SingleEpisodeDuration == nil || *rec.SingleEpisodeDuration != 45 {
			t.Fatalf("single duration: %v", rec.SingleEpisodeDuration)
		}
		if rec.Rating == nil || *rec.Rating != 8.5 {
			t.Fatalf("rating: %v", rec.Rating)
		}
		if rec.Director != "" {
			t.Fatalf("placeholder director survived: %q", rec.Director)
		}
		// total derived from per-episode duration and count
		if rec.TotalDuration == nil || *rec.TotalDuration != 1080 {
			t.Fatalf("total duration: %v", rec.TotalDuration)
		}
	})

	t.Run("missing title fails", func(t *testing.T) {
		if _, err := buildRecord(map[string]string{types.FieldDirector: "孔笙"}); err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("placeholder title fails", func(t *testing.T) {
		if _, err := buildRecord(map[string]string{types.FieldTitleName: "待定"}); err == nil {
			t.Fatal("expected an error")
		}
	})
}

func TestImportRows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// one title already present in the catalog
	pre := &types.ContentRecord{TitleName: "琅琊榜"}
	if _, err := env.records.Create(ctx, nil, []*types.ContentRecord{pre}); err != nil {
		t.Fatal(err)
	}

	rows := []map[string]string{
		{types.FieldTitleName: "大江大河", types.FieldCategoryLevel1: "电视剧", types.FieldEpisodeCount: "3"},
		{types.FieldTitleName: "琅琊榜", types.FieldCategoryLevel1: "电视剧", types.FieldEpisodeCount: "2"},
		{types.FieldTitleName: "大江大河", types.FieldCategoryLevel1: "电视剧", types.FieldEpisodeCount: "99"},
		{types.FieldTitleName: "", types.FieldCategoryLevel1: "电视剧"},
	}

	svc := env.importService()
	taskID := env.taskStore.Create("catalog_import")
	svc.ImportRows(ctx, taskID, rows, []string{"henan_mobile"})

	task, ok := env.taskStore.Get(taskID)
	if !ok {
		t.Fatal("task missing")
	}
	if task.Status != tasks.StatusCompleted {
		t.Fatalf("task: %+v", task)
	}
	if task.Total != 4 || task.Processed != 4 || task.Imported != 1 ||
		task.Duplicates != 1 || task.SkippedExisting != 1 || task.Failed != 1 {
		t.Fatalf("counters: total=%d processed=%d imported=%d duplicates=%d existing=%d failed=%d",
			task.Total, task.Processed, task.Imported, task.Duplicates, task.SkippedExisting, task.Failed)
	}
	if task.EpisodeStatus != tasks.StatusCompleted || task.EpisodeProgress != 100 {
		t.Fatalf("episode generation: %s %d", task.EpisodeStatus, task.EpisodeProgress)
	}

	// the new record got a header and its episodes
	header, err := env.headers.GetByTenantAndTitle(ctx, nil, "henan_mobile", "大江大河")
	if err != nil {
		t.Fatalf("header: %v", err)
	}
	eps, err := env.episodes.GetByHeaderID(ctx, nil, header.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(eps) != 3 {
		t.Fatalf("episodes: %d", len(eps))
	}
	if eps[0].EpisodeName != "大江大河第01集" {
		t.Fatalf("episode name: %q", eps[0].EpisodeName)
	}

	// the pre-existing title was skipped, not projected
	if _, err := env.headers.GetByTenantAndTitle(ctx, nil, "henan_mobile", "琅琊榜"); err == nil {
		t.Fatal("skipped title should have no header")
	}

	// header id recorded back on the record
	rec, err := env.records.GetByTitleName(ctx, nil, "大江大河")
	if err != nil {
		t.Fatal(err)
	}
	if rec.TenantHeaderIDs == nil {
		t.Fatal("tenant header ids not recorded")
	}
	if _, ok := rec.TenantHeaderIDs["henan_mobile"]; !ok {
		t.Fatalf("tenant header ids: %v", rec.TenantHeaderIDs)
	}
}

func TestImportRowsZeroEpisodeCount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rows := []map[string]string{
		{types.FieldTitleName: "空集数剧", types.FieldCategoryLevel1: "电视剧"},
	}
	taskID := env.taskStore.Create("catalog_import")
	env.importService().ImportRows(ctx, taskID, rows, []string{"henan_mobile"})

	task, _ := env.taskStore.Get(taskID)
	if task.Status != tasks.StatusCompleted || task.Imported != 1 {
		t.Fatalf("task: %+v", task)
	}
	if task.EpisodeStatus != tasks.StatusCompleted || task.EpisodeProgress != 100 {
		t.Fatalf("episode generation: %s %d", task.EpisodeStatus, task.EpisodeProgress)
	}

	// the header exists but no phantom episode was generated
	header, err := env.headers.GetByTenantAndTitle(ctx, nil, "henan_mobile", "空集数剧")
	if err != nil {
		t.Fatalf("header: %v", err)
	}
	eps, err := env.episodes.GetByHeaderID(ctx, nil, header.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(eps) != 0 {
		t.Fatalf("record with no episode count got %d episodes (first: %q)", len(eps), eps[0].EpisodeName)
	}
}

type stuckGenerator struct{}

func (stuckGenerator) Generate(context.Context, string, *schema.TenantSchema, []HeaderRecord, *scanindex.Index) error {
	return errors.New("episode batch insert refused")
}

func TestImportRowsGenerationFailureKeepsImport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewImportService(env.db, env.log, env.records, env.headers, env.scans,
		env.registry, stuckGenerator{}, env.taskStore)

	rows := []map[string]string{
		{types.FieldTitleName: "大江大河", types.FieldCategoryLevel1: "电视剧", types.FieldEpisodeCount: "3"},
	}
	taskID := env.taskStore.Create("catalog_import")
	svc.ImportRows(ctx, taskID, rows, []string{"henan_mobile"})

	task, _ := env.taskStore.Get(taskID)
	// records and headers committed; only the episode side reports failure
	if task.Status != tasks.StatusCompleted {
		t.Fatalf("import status: %+v", task)
	}
	if task.EpisodeStatus != tasks.StatusFailed || task.Message == "" {
		t.Fatalf("episode status: %s message %q", task.EpisodeStatus, task.Message)
	}
	if _, err := env.records.GetByTitleName(ctx, nil, "大江大河"); err != nil {
		t.Fatalf("imported record should survive: %v", err)
	}
	if _, err := env.headers.GetByTenantAndTitle(ctx, nil, "henan_mobile", "大江大河"); err != nil {
		t.Fatalf("synthesized header should survive: %v", err)
	}
}

func TestImportRowsUnknownTenantFails(t *testing.T) {
	env := newTestEnv(t)
	svc := env.importService()

	taskID := env.taskStore.Create("catalog_import")
	rows := []map[string]string{{types.FieldTitleName: "大江大河"}}
	svc.ImportRows(context.Background(), taskID, rows, []string{"hubei_telecom"})

	task, _ := env.taskStore.Get(taskID)
	if task.Status != tasks.StatusFailed {
		t.Fatalf("task: %+v", task)
	}
}
