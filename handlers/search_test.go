package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfeye/wolfeye-api/internal/answers"
	"github.com/wolfeye/wolfeye-api/internal/cache"
	"github.com/wolfeye/wolfeye-api/internal/index"
	"github.com/wolfeye/wolfeye-api/internal/search"
	"github.com/wolfeye/wolfeye-api/internal/tokens"
)

type stubSpeller struct {
	corrections map[string]string
}

func (s *stubSpeller) Correct(ctx context.Context, input string) (string, error) {
	if out, ok := s.corrections[input]; ok {
		return out, nil
	}
	return input, nil
}

type stubInstant struct {
	raw json.RawMessage
	err error
}

func (s *stubInstant) Query(ctx context.Context, text string) (json.RawMessage, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.raw, nil
}

type apiFixture struct {
	engine   *gin.Engine
	repo     *index.MemoryRepository
	tokStore *tokens.MemoryStore
	speller  *stubSpeller
	instant  *stubInstant
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)

	store := cache.NewRedisStore(redis.NewClient(&redis.Options{Addr: m.Addr()}))
	repo := index.NewMemoryRepository()
	speller := &stubSpeller{corrections: map[string]string{}}
	instant := &stubInstant{raw: json.RawMessage(`{"AbstractText":"hi"}`)}
	tokStore := tokens.NewMemoryStore()

	svc := search.NewService(repo, store, speller, instant)
	h := NewHandler(svc, repo, tokStore)

	g := gin.New()
	h.Register(g, nil, nil, nil)
	return &apiFixture{engine: g, repo: repo, tokStore: tokStore, speller: speller, instant: instant}
}

func (f *apiFixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	f.engine.ServeHTTP(w, req)
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestPing(t *testing.T) {
	f := newAPIFixture(t)
	w, out := f.do(t, http.MethodGet, "/api/ping", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", out["status"])
}

func TestSearchEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	_, _, err := f.repo.Upsert(context.Background(), "http://a", "Cats are great", "animals", time.Now().UTC())
	require.NoError(t, err)

	// first request computes
	w, out := f.do(t, http.MethodPost, "/api/search", `{"query":"Cats"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, out["cache-hit"])
	res, ok := out["res"].([]any)
	require.True(t, ok)
	require.Len(t, res, 1)
	first := res[0].(map[string]any)
	assert.Equal(t, "http://a", first["url"])

	// second request is served from cache
	w, out = f.do(t, http.MethodPost, "/api/search", `{"query":"Cats"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["cache-hit"])
	assert.Greater(t, out["ttl"].(float64), float64(0))
}

func TestSearchEndpoint_Validation(t *testing.T) {
	f := newAPIFixture(t)

	w, out := f.do(t, http.MethodPost, "/api/search", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid request", out["err"])

	w, out = f.do(t, http.MethodPost, "/api/search", `{"page":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "missing query", out["err"])
}

func TestSearchEndpoint_PageCoercion(t *testing.T) {
	f := newAPIFixture(t)
	_, _, err := f.repo.Upsert(context.Background(), "http://a", "Cats", "x", time.Now().UTC())
	require.NoError(t, err)

	// non-numeric page falls back to page 0
	w, out := f.do(t, http.MethodPost, "/api/search", `{"query":"Cats","page":"junk"}`)
	require.Equal(t, http.StatusOK, w.Code)
	res := out["res"].([]any)
	assert.Len(t, res, 1)

	// numeric string page is honored: page 1 is empty
	w, out = f.do(t, http.MethodPost, "/api/search", `{"query":"Cats","page":"1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, out["res"])
}

func TestTotalDBEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	_, _, err := f.repo.Upsert(context.Background(), "http://a", "t", "d", time.Now().UTC())
	require.NoError(t, err)

	w, out := f.do(t, http.MethodGet, "/api/total_db", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), out["count"])
	assert.Equal(t, false, out["cache-hit"])

	w, out = f.do(t, http.MethodGet, "/api/total_db", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["cache-hit"])
}

func TestCorrectEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	f.speller.corrections["catss"] = "cats"

	w, out := f.do(t, http.MethodPost, "/api/tocorrect", `{"string":"catss"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cats", out["res"])
	assert.Equal(t, true, out["corrected"])
	assert.Equal(t, false, out["cache-hit"])

	w, out = f.do(t, http.MethodPost, "/api/tocorrect", `{"string":"catss"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["cache-hit"])

	w, out = f.do(t, http.MethodPost, "/api/tocorrect", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "missing string", out["err"])
}

func TestInstantEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	w, out := f.do(t, http.MethodPost, "/api/instant", `{"query":"New York"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, out["cache-hit"])
	res := out["res"].(map[string]any)
	assert.Equal(t, "hi", res["AbstractText"])

	w, out = f.do(t, http.MethodPost, "/api/instant", `{"query":"New York"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["cache-hit"])
}

func TestInstantEndpoint_ProviderDown(t *testing.T) {
	f := newAPIFixture(t)
	f.instant.err = answers.ErrUnavailable

	w, out := f.do(t, http.MethodPost, "/api/instant", `{"query":"New York"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, out["res"])
	assert.Equal(t, float64(-1), out["ttl"])
}
