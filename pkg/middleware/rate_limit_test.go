package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/wolfeye/wolfeye-api/pkg/metrics"
)

func TestRateLimitMiddleware_AllowsUnderLimit(t *testing.T) {
	before := testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory"))

	r := gin.New()
	r.Use(RateLimitMiddleware(10, 2)) // generous rate
	r.GET("/ok", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/ok", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	// verify metrics incremented for memory limiter
	after := testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory"))
	require.Equal(t, 2.0, after-before)
}

func TestRateLimitMiddleware_BlocksWhenExceeded(t *testing.T) {
	r := gin.New()
	// very low rate to force rejections
	r.Use(RateLimitMiddleware(0.5, 1))
	r.GET("/limited", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	// first request -> allowed
	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest("GET", "/limited", nil))
	require.Equal(t, http.StatusOK, w1.Code)

	// immediate second request -> should be rate-limited
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest("GET", "/limited", nil))
	require.Equal(t, http.StatusTooManyRequests, w2.Code)

	// wait long enough to replenish one token
	time.Sleep(2100 * time.Millisecond)
	w3 := httptest.NewRecorder()
	r.ServeHTTP(w3, httptest.NewRequest("GET", "/limited", nil))
	require.Equal(t, http.StatusOK, w3.Code)
}

func TestRateLimitMiddleware_InstancesDoNotShareBuckets(t *testing.T) {
	tight := gin.New()
	tight.Use(RateLimitMiddleware(0.1, 1))
	tight.GET("/a", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	loose := gin.New()
	loose.Use(RateLimitMiddleware(100, 10))
	loose.GET("/b", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	// exhaust the tight limiter for this client
	w := httptest.NewRecorder()
	tight.ServeHTTP(w, httptest.NewRequest("GET", "/a", nil))
	require.Equal(t, http.StatusOK, w.Code)
	w = httptest.NewRecorder()
	tight.ServeHTTP(w, httptest.NewRequest("GET", "/a", nil))
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	// the loose limiter keeps its own bucket for the same client
	w = httptest.NewRecorder()
	loose.ServeHTTP(w, httptest.NewRequest("GET", "/b", nil))
	require.Equal(t, http.StatusOK, w.Code)
}
