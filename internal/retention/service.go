package retention

import (
	"context"
	"log/slog"
	"time"

	"hostwatch/internal/db"
)

// Service deletes metric rows older than the configured number of days.
// It runs once per day; a failed sweep is logged and retried on the next
// run.
type Service struct {
	repo          *db.Repository
	retentionDays int
	log           *slog.Logger
}

func NewService(repo *db.Repository, days int, logger *slog.Logger) *Service {
	if days < 1 {
		days = 1
	}
	return &Service{repo: repo, retentionDays: days, log: logger}
}

func (s *Service) Run(ctx context.Context) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.retentionDays)
	if err := s.repo.DeleteOlderThan(ctx, cutoff); err != nil {
		s.log.Error("retention sweep failed", "err", err)
		return
	}
	s.log.Info("retention sweep completed", "cutoff", cutoff)
}
