package scheduler

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/wolfeye/wolfeye-api/internal/cache"
	"github.com/wolfeye/wolfeye-api/internal/config"
	"github.com/wolfeye/wolfeye-api/internal/index"
	"github.com/wolfeye/wolfeye-api/internal/search"
)

func newTestScheduler(t *testing.T, cfg config.SchedulerConfig) (*Scheduler, *index.MemoryRepository, *cache.RedisStore) {
	t.Helper()
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)

	store := cache.NewRedisStore(redis.NewClient(&redis.Options{Addr: m.Addr()}))
	repo := index.NewMemoryRepository()
	return New(repo, store, cfg), repo, store
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestScheduler_RefreshesTotalCount(t *testing.T) {
	sched, repo, store := newTestScheduler(t, config.SchedulerConfig{
		CountRefresh: 20 * time.Millisecond,
		SearchPurge:  time.Hour,
		InstantPurge: time.Hour,
	})
	ctx := context.Background()
	_, _, err := repo.Upsert(ctx, "http://a", "t", "d", time.Now().UTC())
	require.NoError(t, err)

	sched.Start()
	defer sched.Stop()

	waitFor(t, func() bool {
		val, _, ok, err := store.Get(ctx, search.TotalCountKey)
		return err == nil && ok && val == "1"
	})
}

func TestScheduler_PurgesSearchPrefixOnly(t *testing.T) {
	sched, _, store := newTestScheduler(t, config.SchedulerConfig{
		CountRefresh: time.Hour,
		SearchPurge:  20 * time.Millisecond,
		InstantPurge: time.Hour,
	})
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "search_cats_0", "x", time.Hour))
	require.NoError(t, store.Set(ctx, "search_dogs_0", "y", time.Hour))
	require.NoError(t, store.Set(ctx, "isearch_cats", "z", time.Hour))
	require.NoError(t, store.Set(ctx, search.TotalCountKey, "9", time.Hour))

	sched.Start()
	defer sched.Stop()

	waitFor(t, func() bool {
		_, _, ok, err := store.Get(ctx, "search_cats_0")
		return err == nil && !ok
	})

	// the purge ignores remaining TTLs but leaves other namespaces alone
	_, _, ok, err := store.Get(ctx, "search_dogs_0")
	require.NoError(t, err)
	require.False(t, ok)
	_, _, ok, err = store.Get(ctx, "isearch_cats")
	require.NoError(t, err)
	require.True(t, ok)
	_, _, ok, err = store.Get(ctx, search.TotalCountKey)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestScheduler_PurgesInstantPrefix(t *testing.T) {
	sched, _, store := newTestScheduler(t, config.SchedulerConfig{
		CountRefresh: time.Hour,
		SearchPurge:  time.Hour,
		InstantPurge: 20 * time.Millisecond,
	})
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "isearch_cats", "z", time.Hour))
	require.NoError(t, store.Set(ctx, "search_cats_0", "x", time.Hour))

	sched.Start()
	defer sched.Stop()

	waitFor(t, func() bool {
		_, _, ok, err := store.Get(ctx, "isearch_cats")
		return err == nil && !ok
	})

	_, _, ok, err := store.Get(ctx, "search_cats_0")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestScheduler_FirstFireWaitsOneInterval(t *testing.T) {
	sched, _, store := newTestScheduler(t, config.SchedulerConfig{
		CountRefresh: time.Hour,
		SearchPurge:  200 * time.Millisecond,
		InstantPurge: time.Hour,
	})
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "search_cats_0", "x", time.Hour))

	sched.Start()
	defer sched.Stop()

	// well before the first interval elapses nothing has been purged
	time.Sleep(50 * time.Millisecond)
	_, _, ok, err := store.Get(ctx, "search_cats_0")
	require.NoError(t, err)
	require.True(t, ok)
}

type flakyStore struct {
	cache.Store
	fail bool
}

func (f *flakyStore) DeleteByPrefix(ctx context.Context, prefix string) error {
	if f.fail {
		return context.DeadlineExceeded
	}
	return f.Store.DeleteByPrefix(ctx, prefix)
}

func TestScheduler_TaskFailureDoesNotStopOthers(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)

	store := cache.NewRedisStore(redis.NewClient(&redis.Options{Addr: m.Addr()}))
	flaky := &flakyStore{Store: store, fail: true}
	repo := index.NewMemoryRepository()
	ctx := context.Background()
	_, _, err = repo.Upsert(ctx, "http://a", "t", "d", time.Now().UTC())
	require.NoError(t, err)

	sched := New(repo, flaky, config.SchedulerConfig{
		CountRefresh: 20 * time.Millisecond,
		SearchPurge:  10 * time.Millisecond,
		InstantPurge: time.Hour,
	})
	sched.Start()
	defer sched.Stop()

	// purge fails on every tick; the count refresh keeps running anyway
	waitFor(t, func() bool {
		val, _, ok, err := store.Get(ctx, search.TotalCountKey)
		return err == nil && ok && val == "1"
	})
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	sched, _, _ := newTestScheduler(t, config.SchedulerConfig{
		CountRefresh: time.Hour,
		SearchPurge:  time.Hour,
		InstantPurge: time.Hour,
	})
	// Stop before Start is a no-op
	sched.Stop()
	sched.Start()
	sched.Stop()
}
