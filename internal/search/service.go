package search

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/wolfeye/wolfeye-api/internal/answers"
	"github.com/wolfeye/wolfeye-api/internal/cache"
	"github.com/wolfeye/wolfeye-api/internal/index"
	"github.com/wolfeye/wolfeye-api/pkg/logger"
	"github.com/wolfeye/wolfeye-api/pkg/metrics"
)

// Service is the cache-aside coordinator in front of the matcher, the
// document count and the two external providers. Every operation returns
// (value, cacheHit, ttlSeconds, err); ttlSeconds is the remaining TTL on a
// hit, the freshly-stored TTL on a computed-and-cached miss, 0 when nothing
// was cached, and -1 when the backing provider was unavailable.
//
// Concurrent misses for the same key are coalesced with singleflight, so at
// most one compute runs per key at a time.
type Service struct {
	matcher *Matcher
	docs    index.Repository
	cache   cache.Store
	speller answers.Speller
	instant answers.InstantProvider
	flight  singleflight.Group
}

func NewService(docs index.Repository, store cache.Store, speller answers.Speller, instant answers.InstantProvider) *Service {
	return &Service{
		matcher: NewMatcher(docs),
		docs:    docs,
		cache:   store,
		speller: speller,
		instant: instant,
	}
}

// cacheGet is the shared hit path: lookup failures are logged and treated
// as a miss, never surfaced to the caller.
func (s *Service) cacheGet(ctx context.Context, op, key string) (string, int, bool) {
	val, ttl, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.Warnf("cache lookup for %s failed: %v", key, err)
		return "", 0, false
	}
	if !ok {
		return "", 0, false
	}
	metrics.CacheHits.WithLabelValues(op).Inc()
	logger.Infof("Using cached result for %s; ttl %d", key, int(ttl.Seconds()))
	return val, int(ttl.Seconds()), true
}

func (s *Service) cacheSet(ctx context.Context, key, value string, ttl int) {
	if err := s.cache.Set(ctx, key, value, time.Duration(ttl)*time.Second); err != nil {
		logger.Warnf("failed to cache %s: %v", key, err)
		return
	}
	logger.Infof("Cached %s query with TTL at %d", key, ttl)
}

// Search answers a free-text query from the cache, or runs the matcher and
// caches the serialized result.
func (s *Service) Search(ctx context.Context, query string, page int) ([]Result, bool, int, error) {
	if query == "" {
		return nil, false, 0, ErrEmptyQuery
	}
	if page < 0 {
		page = 0
	}
	key := searchKey(query, page)

	if val, ttl, ok := s.cacheGet(ctx, "search", key); ok {
		var res []Result
		if err := json.Unmarshal([]byte(val), &res); err == nil {
			return res, true, ttl, nil
		}
		logger.Warnf("discarding unreadable cache entry for %s", key)
	}
	metrics.CacheMisses.WithLabelValues("search").Inc()

	v, err, _ := s.flight.Do("search|"+key, func() (interface{}, error) {
		res, err := s.matcher.Match(ctx, query, page)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(res)
		if err != nil {
			return nil, err
		}
		s.cacheSet(ctx, key, string(b), int(SearchTTL.Seconds()))
		return res, nil
	})
	if err != nil {
		return nil, false, 0, err
	}
	return v.([]Result), false, int(SearchTTL.Seconds()), nil
}

// Correct returns the spelling correction for input. Corrections are cached
// under the raw input string, and only when the provider actually changed
// something. The literal input "a" seeds the long-lived decoy entry first.
func (s *Service) Correct(ctx context.Context, input string) (string, bool, bool, int, error) {
	if input == "" {
		return "", false, false, 0, ErrEmptyQuery
	}

	if val, ttl, ok := s.cacheGet(ctx, "correct", input); ok {
		return val, true, true, ttl, nil
	}
	metrics.CacheMisses.WithLabelValues("correct").Inc()

	type correction struct {
		res       string
		corrected bool
		ttl       int
	}
	v, err, _ := s.flight.Do("correct|"+input, func() (interface{}, error) {
		if input == decoyInput {
			s.cacheSet(ctx, decoyInput, decoyValue, int(decoyTTL.Seconds()))
		}
		out, err := s.speller.Correct(ctx, input)
		if err != nil {
			logger.Warnf("speller unavailable for %q: %v", input, err)
			return correction{res: input, ttl: -1}, nil
		}
		if out != input {
			s.cacheSet(ctx, input, out, int(CorrectionTTL.Seconds()))
			return correction{res: out, corrected: true, ttl: int(CorrectionTTL.Seconds())}, nil
		}
		return correction{res: out}, nil
	})
	if err != nil {
		return "", false, false, 0, err
	}
	c := v.(correction)
	return c.res, c.corrected, false, c.ttl, nil
}

// Instant returns the structured instant answer for a query. Provider
// failure degrades to an uncached nil answer with the -1 TTL sentinel.
func (s *Service) Instant(ctx context.Context, query string) (json.RawMessage, bool, int, error) {
	if query == "" {
		return nil, false, 0, ErrEmptyQuery
	}
	key := instantKey(query)

	if val, ttl, ok := s.cacheGet(ctx, "instant", key); ok {
		return json.RawMessage(val), true, ttl, nil
	}
	metrics.CacheMisses.WithLabelValues("instant").Inc()

	v, err, _ := s.flight.Do("instant|"+key, func() (interface{}, error) {
		raw, err := s.instant.Query(ctx, query)
		if err != nil {
			return nil, err
		}
		s.cacheSet(ctx, key, string(raw), int(InstantTTL.Seconds()))
		return raw, nil
	})
	if err != nil {
		if errors.Is(err, answers.ErrUnavailable) {
			logger.Warnf("instant answer provider unavailable for %q: %v", query, err)
			return nil, false, -1, nil
		}
		return nil, false, 0, err
	}
	return v.(json.RawMessage), false, int(InstantTTL.Seconds()), nil
}

// TotalCount returns the total number of indexed documents. An empty index
// is reported but never cached, matching the crawler bootstrap behavior.
func (s *Service) TotalCount(ctx context.Context) (int64, bool, int, error) {
	if val, ttl, ok := s.cacheGet(ctx, "total_count", TotalCountKey); ok {
		if count, err := strconv.ParseInt(val, 10, 64); err == nil {
			return count, true, ttl, nil
		}
		logger.Warnf("discarding unreadable cache entry for %s", TotalCountKey)
	}
	metrics.CacheMisses.WithLabelValues("total_count").Inc()

	v, err, _ := s.flight.Do("count|"+TotalCountKey, func() (interface{}, error) {
		count, err := s.docs.Count(ctx)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			s.cacheSet(ctx, TotalCountKey, strconv.FormatInt(count, 10), int(TotalCountTTL.Seconds()))
		}
		return count, nil
	})
	if err != nil {
		return 0, false, 0, err
	}
	count := v.(int64)
	if count == 0 {
		return 0, false, 0, nil
	}
	return count, false, int(TotalCountTTL.Seconds()), nil
}
