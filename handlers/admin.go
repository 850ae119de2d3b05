package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wolfeye/wolfeye-api/internal/index"
	"github.com/wolfeye/wolfeye-api/internal/tokens"
	"github.com/wolfeye/wolfeye-api/pkg/logger"
)

const defaultDescription = "No description provided for this website."

// token-holder-created tokens default to a far-future expiry
const defaultTokenLifetime = 5000 * 24 * time.Hour

// AddToken mints a new crawler/admin token. The requester must present an
// existing valid token.
func (h *Handler) AddToken(c *gin.Context) {
	var req struct {
		Token    string     `json:"token"`
		NewToken string     `json:"newtoken"`
		Expiry   *time.Time `json:"expiry"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid request"})
		return
	}
	if !h.validator.IsValid(c.Request.Context(), req.Token) {
		c.JSON(http.StatusUnauthorized, gin.H{"err": "unauthorized"})
		return
	}
	if req.NewToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid request"})
		return
	}
	expiry := time.Now().Add(defaultTokenLifetime)
	if req.Expiry != nil {
		expiry = *req.Expiry
	}

	logger.Warnf("%s added a new token %s with expiry %s", c.ClientIP(), req.NewToken, expiry)

	if err := h.tokens.Insert(c.Request.Context(), req.NewToken, expiry); err != nil {
		if err == tokens.ErrExists {
			c.JSON(http.StatusOK, gin.H{"err": "exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"err": "token store failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetAll dumps every indexed document. Token-guarded and tightly
// rate-limited.
func (h *Handler) GetAll(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid request"})
		return
	}
	if !h.validator.IsValid(c.Request.Context(), token) {
		c.JSON(http.StatusUnauthorized, gin.H{"err": "unauthorized"})
		return
	}

	logger.Warnf("%s requested a full archive", c.ClientIP())

	docs, err := h.docs.All(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": "dump failed"})
		return
	}
	c.JSON(http.StatusOK, docs)
}

// CrawlerAdd lets the crawler submit a (url, title, description) triple.
// Resubmitting identical content reports the original fetch time;
// changed content updates the row and refreshes last_fetched.
func (h *Handler) CrawlerAdd(c *gin.Context) {
	var req struct {
		Token       string `json:"token"`
		URL         string `json:"url"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid request"})
		return
	}
	if !h.validator.IsValid(c.Request.Context(), req.Token) {
		c.JSON(http.StatusUnauthorized, gin.H{"err": "unauthorized"})
		return
	}
	if req.URL == "" || req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid request"})
		return
	}
	if req.Description == "" {
		req.Description = defaultDescription
	}

	fetched := time.Now().UTC()
	res, doc, err := h.docs.Upsert(c.Request.Context(), req.URL, req.Title, req.Description, fetched)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": "upsert failed"})
		return
	}
	if res == index.Unchanged {
		logger.Infof("%s has already been added on %s", req.URL, doc.LastFetched)
		c.JSON(http.StatusOK, gin.H{"err": "already exists", "fetched_on": doc.LastFetched})
		return
	}

	logger.Infof("%s (using %s) added a new URL %s - %s", c.ClientIP(), req.Token, req.URL, fetched)
	c.JSON(http.StatusOK, gin.H{"success": "ok"})
}
