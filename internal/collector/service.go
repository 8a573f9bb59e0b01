package collector

import (
	"context"
	"log/slog"
	"time"

	"hostwatch/internal/db"
	"hostwatch/internal/metrics"
)

var loadWindows = [3]time.Duration{time.Minute, 5 * time.Minute, 15 * time.Minute}

type Service struct {
	repo    *db.Repository
	sampler Sampler
	log     *slog.Logger
	now     func() time.Time
}

func NewService(repo *db.Repository, sampler Sampler, logger *slog.Logger) *Service {
	return &Service{repo: repo, sampler: sampler, log: logger, now: time.Now}
}

// Tick samples all three categories once and writes each through the
// store. A failed OS read falls back to the category's zero snapshot; a
// failed insert is logged and does not block the other categories.
func (s *Service) Tick(ctx context.Context) {
	now := s.now().UTC()

	usage, err := s.sampler.CPUUsage(ctx)
	if err != nil {
		s.log.Warn("read cpu usage", "err", err)
		usage = 0
	}
	cpuSnap := metrics.NewCPUMetrics(usage, s.loadAverages(ctx, now))

	memSnap, err := s.sampler.Memory(ctx)
	if err != nil {
		s.log.Warn("read memory", "err", err)
		memSnap = metrics.MemoryMetrics{}
	}

	diskSnap, err := s.sampler.Disk(ctx)
	if err != nil {
		s.log.Warn("read disk", "err", err)
		diskSnap = metrics.DiskMetrics{}
	}

	for _, snap := range []metrics.Snapshot{cpuSnap, memSnap, diskSnap} {
		if err := s.repo.Insert(ctx, now, snap); err != nil {
			s.log.Error("insert metrics", "category", string(snap.Category()), "err", err)
		}
	}
}

// loadAverages is the mean of the stored usage samples in the trailing
// 1m/5m/15m windows. An empty window yields 0.0, which is what the first
// minutes after startup look like.
func (s *Service) loadAverages(ctx context.Context, now time.Time) [3]float64 {
	var out [3]float64
	for i, w := range loadWindows {
		points, err := s.repo.CPUSince(ctx, now.Add(-w))
		if err != nil {
			s.log.Warn("read cpu history", "window", w.String(), "err", err)
			continue
		}
		if len(points) == 0 {
			continue
		}
		var sum float64
		for _, p := range points {
			sum += p.UsagePercentage
		}
		out[i] = sum / float64(len(points))
	}
	return out
}
