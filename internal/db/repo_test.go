package db

import (
	"context"
	"testing"
	"time"

	"hostwatch/internal/metrics"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	sqldb, err := Open(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })
	if err := Migrate(sqldb); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	return NewRepository(sqldb)
}

func TestLatestReturnsZeroValueOnEmptyTables(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	for _, c := range []metrics.Category{metrics.CategoryCPU, metrics.CategoryMemory, metrics.CategoryDisk} {
		snap, err := repo.Latest(ctx, c)
		if err != nil {
			t.Fatalf("latest %s: %v", c, err)
		}
		if snap != metrics.Zero(c) {
			t.Fatalf("latest %s = %+v, want zero value", c, snap)
		}
	}
}

func TestLatestReturnsMostRecentRow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	if err := repo.InsertCPU(ctx, now.Add(-2*time.Second), metrics.NewCPUMetrics(10, [3]float64{})); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.InsertCPU(ctx, now, metrics.NewCPUMetrics(75, [3]float64{1, 2, 3})); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := repo.LatestCPU(ctx)
	if err != nil {
		t.Fatalf("latest cpu: %v", err)
	}
	if got.UsagePercentage != 75 || got.LoadAverage != [3]float64{1, 2, 3} {
		t.Fatalf("latest cpu = %+v", got)
	}
}

func TestMemoryPercentagesRecomputedOnRead(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	if err := repo.InsertMemory(ctx, now, metrics.NewMemoryMetrics(1000, 250, 0, 0)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err := repo.LatestMemory(ctx)
	if err != nil {
		t.Fatalf("latest memory: %v", err)
	}
	if got.UsagePercentage != 25.0 {
		t.Fatalf("usage = %v, want 25.0", got.UsagePercentage)
	}
	if got.Free != 750 {
		t.Fatalf("free = %d, want 750", got.Free)
	}
	if got.SwapUsagePercentage != 0.0 {
		t.Fatalf("swap usage = %v, want 0.0", got.SwapUsagePercentage)
	}
}

func TestHistoryBoundsInclusiveAscending(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, total := range []uint32{100, 200, 300, 400} {
		at := base.Add(time.Duration(i) * time.Minute)
		if err := repo.InsertDisk(ctx, at, metrics.NewDiskMetrics(total, total/2)); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	points, err := repo.DiskHistory(ctx, base.Add(time.Minute), base.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("points len = %d, want 2", len(points))
	}
	if points[0].Total != 200 || points[1].Total != 300 {
		t.Fatalf("points out of order: %+v", points)
	}
	if points[0].UsagePercentage != 50.0 {
		t.Fatalf("derived usage = %v, want 50.0", points[0].UsagePercentage)
	}
}

func TestCPUSinceExcludesOlderRows(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for _, d := range []time.Duration{-90 * time.Second, -30 * time.Second, -10 * time.Second} {
		if err := repo.InsertCPU(ctx, now.Add(d), metrics.NewCPUMetrics(50, [3]float64{})); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	points, err := repo.CPUSince(ctx, now.Add(-60*time.Second))
	if err != nil {
		t.Fatalf("since: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("points len = %d, want 2", len(points))
	}
}

func TestDeleteOlderThanSweepsAllTables(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	old := now.AddDate(0, 0, -30)

	for _, at := range []time.Time{old, now} {
		if err := repo.InsertCPU(ctx, at, metrics.NewCPUMetrics(10, [3]float64{})); err != nil {
			t.Fatalf("insert cpu: %v", err)
		}
		if err := repo.InsertMemory(ctx, at, metrics.NewMemoryMetrics(100, 50, 0, 0)); err != nil {
			t.Fatalf("insert mem: %v", err)
		}
		if err := repo.InsertDisk(ctx, at, metrics.NewDiskMetrics(100, 50)); err != nil {
			t.Fatalf("insert disk: %v", err)
		}
	}

	if err := repo.DeleteOlderThan(ctx, now.AddDate(0, 0, -14)); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, table := range []string{"cpu_metrics", "mem_metrics", "disk_metrics"} {
		var n int
		if err := repo.DB().QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != 1 {
			t.Fatalf("%s rows = %d, want 1", table, n)
		}
	}
}
