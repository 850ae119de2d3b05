package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wolfeye/wolfeye-api/internal/index"
	"github.com/wolfeye/wolfeye-api/internal/search"
	"github.com/wolfeye/wolfeye-api/internal/tokens"
)

// Handler holds dependencies for the public and admin API endpoints.
type Handler struct {
	search    *search.Service
	docs      index.Repository
	validator *tokens.Validator
	tokens    tokens.Store
}

func NewHandler(svc *search.Service, docs index.Repository, tokStore tokens.Store) *Handler {
	return &Handler{
		search:    svc,
		docs:      docs,
		validator: tokens.NewValidator(tokStore),
		tokens:    tokStore,
	}
}

// Register wires the API routes. The limiter arguments are optional
// per-route middlewares (nil disables limiting for that route); everything
// else is deliberately exempt, matching the crawler-facing deployment.
func (h *Handler) Register(r *gin.Engine, searchLimit, instantLimit, dumpLimit gin.HandlerFunc) {
	r.GET("/api/ping", h.Ping)
	r.GET("/api/total_db", h.TotalDB)
	r.POST("/api/tocorrect", h.Correct)
	r.POST("/api/search", with(searchLimit, h.Search)...)
	r.POST("/api/instant", with(instantLimit, h.Instant)...)
	r.POST("/api/crawler/add", h.CrawlerAdd)
	r.POST("/api/admin/token/add", h.AddToken)
	r.GET("/api/admin/get_all", with(dumpLimit, h.GetAll)...)
}

func with(limit gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	if limit == nil {
		return []gin.HandlerFunc{handler}
	}
	return []gin.HandlerFunc{limit, handler}
}

// Ping reports liveness.
func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// TotalDB returns the total indexed document count.
func (h *Handler) TotalDB(c *gin.Context) {
	count, hit, ttl, err := h.search.TotalCount(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": "count failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count, "cache-hit": hit, "ttl": ttl})
}

// Search answers a free-text query with deduplicated matches.
func (h *Handler) Search(c *gin.Context) {
	var req map[string]any
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid request"})
		return
	}
	query, _ := req["query"].(string)
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"err": "missing query"})
		return
	}
	page := pageFrom(req["page"])

	res, hit, ttl, err := h.search.Search(c.Request.Context(), query, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": "search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"res": res, "cache-hit": hit, "ttl": ttl})
}

// Correct returns a spelling correction for the provided string.
func (h *Handler) Correct(c *gin.Context) {
	var req map[string]any
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid query"})
		return
	}
	input, _ := req["string"].(string)
	if input == "" {
		c.JSON(http.StatusBadRequest, gin.H{"err": "missing string"})
		return
	}

	res, corrected, hit, ttl, err := h.search.Correct(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": "correction failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"res": res, "corrected": corrected, "cache-hit": hit, "ttl": ttl})
}

// Instant proxies the instant-answer provider.
func (h *Handler) Instant(c *gin.Context) {
	var req map[string]any
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid request"})
		return
	}
	query, _ := req["query"].(string)
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"err": "no query"})
		return
	}

	res, hit, ttl, err := h.search.Instant(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": "instant answer failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"res": res, "cache-hit": hit, "ttl": ttl})
}

// pageFrom coerces the loosely-typed page field to an int, defaulting to 0
// for absent or non-numeric values.
func pageFrom(v any) int {
	switch p := v.(type) {
	case float64:
		if p < 0 {
			return 0
		}
		return int(p)
	case string:
		if n, err := strconv.Atoi(p); err == nil && n >= 0 {
			return n
		}
	}
	return 0
}
