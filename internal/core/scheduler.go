package core

// scheduler.go provides background job scheduling for maintenance tasks.
//
// Currently implements run history retention, which periodically deletes
// run summaries older than the configured retention from the history store.
//
// The scheduler is long-running and context-aware for graceful shutdown. It
// logs progress and errors but never stops the application when a pruning
// pass fails.

import (
	"context"
	"log/slog"
	"time"
)

// RetentionConfig holds configuration for the retention scheduler.
type RetentionConfig struct {
	MaxAge        time.Duration // Runs older than this are deleted; 0 disables the job
	CheckInterval time.Duration // How often to run (default: 24h)
}

// StartRetentionScheduler periodically prunes expired run history. It runs
// immediately on start, then every CheckInterval, and returns when ctx is
// cancelled. A zero MaxAge returns at once.
func (s *Service) StartRetentionScheduler(ctx context.Context, cfg RetentionConfig) {
	if cfg.MaxAge <= 0 {
		slog.Info("retention scheduler disabled")
		return
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = 24 * time.Hour
	}

	slog.Info("retention scheduler started",
		"max_age", cfg.MaxAge.String(),
		"interval", cfg.CheckInterval.String(),
	)

	// Run immediately on startup
	s.runRetentionJob(ctx, cfg.MaxAge)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("retention scheduler stopped")
			return
		case <-ticker.C:
			s.runRetentionJob(ctx, cfg.MaxAge)
		}
	}
}

// runRetentionJob performs one pruning pass and returns how many runs went.
func (s *Service) runRetentionJob(ctx context.Context, maxAge time.Duration) int64 {
	start := time.Now()
	cutoff := start.Add(-maxAge).UTC()

	pruned, err := s.store.Prune(ctx, cutoff)
	if err != nil {
		slog.Error("history prune failed", "cutoff", cutoff, "error", err)
		return 0
	}

	s.metrics.ObservePruned(pruned)
	slog.Info("pruned run history",
		"runs_pruned", pruned,
		"cutoff", cutoff,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return pruned
}
