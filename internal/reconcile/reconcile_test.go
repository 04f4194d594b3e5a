package reconcile

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vodworks/catalog-backend/internal/logger"
	"github.com/vodworks/catalog-backend/internal/repos"
	"github.com/vodworks/catalog-backend/internal/schema"
	"github.com/vodworks/catalog-backend/internal/synthesis"
	"github.com/vodworks/catalog-backend/internal/types"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&types.ContentRecord{}, &types.TitleHeader{}, &types.Episode{}, &types.ScanEntry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type fixture struct {
	db         *gorm.DB
	headers    repos.TitleHeaderRepo
	episodes   repos.EpisodeRepo
	reconciler *Reconciler
	registry   *schema.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testDB(t)
	log := logger.NewNop()
	headers := repos.NewTitleHeaderRepo(db, log)
	episodes := repos.NewEpisodeRepo(db, log)
	registry := schema.NewRegistry()
	return &fixture{
		db:         db,
		headers:    headers,
		episodes:   episodes,
		reconciler: New(headers, episodes, registry, log),
		registry:   registry,
	}
}

func intPtr(n int) *int { return &n }

func (f *fixture) seed(t *testing.T, title string, episodeCount int) (*types.TitleHeader, *types.ContentRecord) {
	t.Helper()
	ctx := context.Background()

	rec := &types.ContentRecord{
		TitleName:      title,
		CategoryLevel1: "电视剧",
		EpisodeCount:   intPtr(episodeCount),
	}
	if err := f.db.Create(rec).Error; err != nil {
		t.Fatalf("seed record: %v", err)
	}

	tenant, err := f.registry.Schema("henan_mobile")
	if err != nil {
		t.Fatal(err)
	}
	header, err := synthesis.BuildHeader(tenant, rec, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.headers.Create(ctx, nil, []*types.TitleHeader{header}); err != nil {
		t.Fatalf("seed header: %v", err)
	}
	built, err := synthesis.BuildEpisodes(tenant, rec, header.ID, 1, episodeCount, nil)
	if err != nil {
		t.Fatal(err)
	}
	eps := make([]*types.Episode, len(built))
	for i := range built {
		eps[i] = &built[i]
	}
	if _, err := f.episodes.Create(ctx, nil, eps); err != nil {
		t.Fatalf("seed episodes: %v", err)
	}
	return header, rec
}

func episodeNums(t *testing.T, f *fixture, headerID int64) []int {
	t.Helper()
	eps, err := f.episodes.GetByHeaderID(context.Background(), nil, headerID)
	if err != nil {
		t.Fatal(err)
	}
	nums := make([]int, len(eps))
	for i, ep := range eps {
		nums[i] = ep.EpisodeNum
	}
	return nums
}

func TestReconcileGrow(t *testing.T) {
	f := newFixture(t)
	header, rec := f.seed(t, "大江大河", 5)

	rec.EpisodeCount = intPtr(8)
	res, err := f.reconciler.ReconcileHeader(context.Background(), nil, header, rec, nil)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if res.Appended != 3 || res.Deleted != 0 || res.Renamed {
		t.Fatalf("result: %+v", res)
	}

	nums := episodeNums(t, f, header.ID)
	if len(nums) != 8 {
		t.Fatalf("episodes after grow: %v", nums)
	}
	for i, n := range nums {
		if n != i+1 {
			t.Fatalf("non contiguous numbering: %v", nums)
		}
	}
}

func TestReconcileShrink(t *testing.T) {
	f := newFixture(t)
	header, rec := f.seed(t, "大江大河", 8)

	surviving, err := f.episodes.GetByHeaderID(context.Background(), nil, header.ID)
	if err != nil {
		t.Fatal(err)
	}
	thirdID := surviving[2].ID

	rec.EpisodeCount = intPtr(3)
	res, err := f.reconciler.ReconcileHeader(context.Background(), nil, header, rec, nil)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if res.Deleted != 5 || res.Appended != 0 {
		t.Fatalf("result: %+v", res)
	}

	nums := episodeNums(t, f, header.ID)
	if len(nums) != 3 || nums[2] != 3 {
		t.Fatalf("episodes after shrink: %v", nums)
	}

	// surviving rows keep their identity
	after, err := f.episodes.GetByHeaderID(context.Background(), nil, header.ID)
	if err != nil {
		t.Fatal(err)
	}
	if after[2].ID != thirdID {
		t.Fatalf("episode 3 identity changed: %d -> %d", thirdID, after[2].ID)
	}
}

func TestReconcileShrinkToZero(t *testing.T) {
	f := newFixture(t)
	header, rec := f.seed(t, "大江大河", 3)

	rec.EpisodeCount = intPtr(0)
	res, err := f.reconciler.ReconcileHeader(context.Background(), nil, header, rec, nil)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if res.Deleted != 3 || res.Appended != 0 {
		t.Fatalf("result: %+v", res)
	}
	if nums := episodeNums(t, f, header.ID); len(nums) != 0 {
		t.Fatalf("episodes should all be gone: %v", nums)
	}

	// a nil count reads as zero too and stays a no-op afterwards
	rec.EpisodeCount = nil
	res, err = f.reconciler.ReconcileHeader(context.Background(), nil, header, rec, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Appended != 0 || res.Deleted != 0 {
		t.Fatalf("zero-count reconcile should be a no-op: %+v", res)
	}
}

func TestReconcileRename(t *testing.T) {
	f := newFixture(t)
	header, rec := f.seed(t, "大江大河", 3)

	before, err := f.episodes.GetByHeaderID(context.Background(), nil, header.ID)
	if err != nil {
		t.Fatal(err)
	}
	firstID := before[0].ID

	rec.TitleName = "大江大河2"
	res, err := f.reconciler.ReconcileHeader(context.Background(), nil, header, rec, nil)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if !res.Renamed || res.Rebuilt != 3 {
		t.Fatalf("result: %+v", res)
	}

	reloaded, err := f.headers.GetByID(context.Background(), nil, header.ID)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.TitleName != "大江大河2" {
		t.Fatalf("header title: %q", reloaded.TitleName)
	}

	after, err := f.episodes.GetByHeaderID(context.Background(), nil, header.ID)
	if err != nil {
		t.Fatal(err)
	}
	if after[0].ID != firstID || after[0].EpisodeNum != 1 {
		t.Fatalf("episode identity not preserved: %+v", after[0])
	}
	if after[0].EpisodeName != "大江大河2第01集" {
		t.Fatalf("episode name not rebuilt: %q", after[0].EpisodeName)
	}

	var bag map[string]any
	if err := json.Unmarshal(after[0].Attributes, &bag); err != nil {
		t.Fatal(err)
	}
	// media URLs derive from the new title's abbreviation
	if got := bag["媒体拉取地址"]; got != "http://media.vod.hnyd.cn/dsj/djdh2/djdh201.ts" {
		t.Fatalf("media url after rename: %v", got)
	}
}

func TestReconcileRenameAndShrink(t *testing.T) {
	f := newFixture(t)
	header, rec := f.seed(t, "大江大河", 5)

	rec.TitleName = "大江大河前传"
	rec.EpisodeCount = intPtr(2)
	res, err := f.reconciler.ReconcileHeader(context.Background(), nil, header, rec, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Renamed || res.Rebuilt != 2 || res.Deleted != 3 {
		t.Fatalf("result: %+v", res)
	}
	nums := episodeNums(t, f, header.ID)
	if len(nums) != 2 {
		t.Fatalf("episodes: %v", nums)
	}
}

func TestReconcileIdempotent(t *testing.T) {
	f := newFixture(t)
	header, rec := f.seed(t, "大江大河", 5)

	rec.EpisodeCount = intPtr(8)
	if _, err := f.reconciler.ReconcileHeader(context.Background(), nil, header, rec, nil); err != nil {
		t.Fatal(err)
	}
	res, err := f.reconciler.ReconcileHeader(context.Background(), nil, header, rec, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Appended != 0 || res.Deleted != 0 || res.Rebuilt != 0 {
		t.Fatalf("second run should be a no-op: %+v", res)
	}
	if nums := episodeNums(t, f, header.ID); len(nums) != 8 {
		t.Fatalf("episodes: %v", nums)
	}
}

func TestReconcileRecordFansOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec := &types.ContentRecord{TitleName: "琅琊榜", CategoryLevel1: "电视剧", EpisodeCount: intPtr(2)}
	if err := f.db.Create(rec).Error; err != nil {
		t.Fatal(err)
	}
	for _, code := range []string{"henan_mobile", "shandong_mobile"} {
		tenant, err := f.registry.Schema(code)
		if err != nil {
			t.Fatal(err)
		}
		header, err := synthesis.BuildHeader(tenant, rec, nil)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.headers.Create(ctx, nil, []*types.TitleHeader{header}); err != nil {
			t.Fatal(err)
		}
	}

	rec.EpisodeCount = intPtr(4)
	results, err := f.reconciler.ReconcileRecord(ctx, nil, "琅琊榜", rec, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results: %+v", results)
	}
	for _, res := range results {
		if res.Appended != 4 {
			t.Fatalf("headers had no episodes; expected 4 appended each: %+v", res)
		}
	}
}
