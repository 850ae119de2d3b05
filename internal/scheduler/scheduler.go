// Package scheduler runs the background cache-invalidation tasks: a
// periodic total-count refresh and the search_/isearch_ namespace purges.
// The three tasks run on independent tickers with no mutual ordering; every
// tick is idempotent, so no overlap prevention is needed.
package scheduler

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/wolfeye/wolfeye-api/internal/cache"
	"github.com/wolfeye/wolfeye-api/internal/config"
	"github.com/wolfeye/wolfeye-api/internal/index"
	"github.com/wolfeye/wolfeye-api/internal/search"
	"github.com/wolfeye/wolfeye-api/pkg/logger"
	"github.com/wolfeye/wolfeye-api/pkg/metrics"
)

type Scheduler struct {
	docs   index.Repository
	cache  cache.Store
	cfg    config.SchedulerConfig
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(docs index.Repository, store cache.Store, cfg config.SchedulerConfig) *Scheduler {
	return &Scheduler{docs: docs, cache: store, cfg: cfg}
}

// Start launches the three background tasks. Each fires for the first time
// one interval after Start; last-run times are not persisted across
// restarts.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(3)
	go s.runEvery(ctx, s.cfg.CountRefresh, "count_refresh", s.refreshTotalCount)
	go s.runEvery(ctx, s.cfg.SearchPurge, "search_purge", func(ctx context.Context) error {
		return s.cache.DeleteByPrefix(ctx, search.SearchPrefix)
	})
	go s.runEvery(ctx, s.cfg.InstantPurge, "instant_purge", func(ctx context.Context) error {
		return s.cache.DeleteByPrefix(ctx, search.InstantPrefix)
	})
	logger.Infof("scheduler started: count refresh %s, search purge %s, instant purge %s",
		s.cfg.CountRefresh, s.cfg.SearchPurge, s.cfg.InstantPurge)
}

// Stop cancels the background tasks and waits for them to exit.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
	logger.Infof("scheduler stopped")
}

func (s *Scheduler) runEvery(ctx context.Context, interval time.Duration, task string, fn func(context.Context) error) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, task, fn)
		}
	}
}

// runOnce isolates a single tick: a panic or error in one run must never
// stop the ticker loop or the other tasks.
func (s *Scheduler) runOnce(ctx context.Context, task string, fn func(context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("scheduler task %s panicked: %v", task, r)
			metrics.SchedulerRuns.WithLabelValues(task, "panic").Inc()
		}
	}()
	if err := fn(ctx); err != nil {
		logger.Warnf("scheduler task %s failed: %v", task, err)
		metrics.SchedulerRuns.WithLabelValues(task, "error").Inc()
		return
	}
	metrics.SchedulerRuns.WithLabelValues(task, "ok").Inc()
}

// refreshTotalCount recomputes the document count and overwrites the
// total_count key, regardless of any TTL remaining on the old value.
func (s *Scheduler) refreshTotalCount(ctx context.Context) error {
	count, err := s.docs.Count(ctx)
	if err != nil {
		return err
	}
	if err := s.cache.Set(ctx, search.TotalCountKey, strconv.FormatInt(count, 10), search.TotalCountTTL); err != nil {
		return err
	}
	logger.Debugf("refreshed %s to %d", search.TotalCountKey, count)
	return nil
}
