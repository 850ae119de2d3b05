package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the search API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>wolfeye-api — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document describing the public and admin endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "wolfeye-api", "version": "v0.1.0" },
  "paths": {
    "/api/ping": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "ok" } } } },
    "/api/total_db": { "get": { "summary": "Total indexed document count (cached)", "responses": { "200": { "description": "count, cache-hit flag and remaining TTL" } } } },
    "/api/search": {
      "post": {
        "summary": "Free-text search with deduplicated matches",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"query":{"type":"string"},"page":{"type":"integer"}}}}}},
        "responses": { "200": { "description": "result list, cache-hit flag and TTL" }, "400": { "description": "missing query" } }
      }
    },
    "/api/tocorrect": {
      "post": {
        "summary": "Spelling correction for a string",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"string":{"type":"string"}}}}}},
        "responses": { "200": { "description": "correction, corrected flag, cache-hit flag and TTL" }, "400": { "description": "missing string" } }
      }
    },
    "/api/instant": {
      "post": {
        "summary": "Instant answer lookup",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"query":{"type":"string"}}}}}},
        "responses": { "200": { "description": "structured answer; ttl -1 when the provider is unavailable" } }
      }
    },
    "/api/crawler/add": {
      "post": {
        "summary": "Crawler document submission (token-guarded)",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"token":{"type":"string"},"url":{"type":"string"},"title":{"type":"string"},"description":{"type":"string"}}}}}},
        "responses": { "200": { "description": "ok or already-exists with original fetch time" }, "401": { "description": "unauthorized" } }
      }
    },
    "/api/admin/token/add": {
      "post": {
        "summary": "Mint a new token (requires a valid existing token)",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"token":{"type":"string"},"newtoken":{"type":"string"},"expiry":{"type":"string","format":"date-time"}}}}}},
        "responses": { "200": { "description": "success or exists" }, "401": { "description": "unauthorized" } }
      }
    },
    "/api/admin/get_all": {
      "get": { "summary": "Full document dump (token-guarded)", "responses": { "200": { "description": "all indexed documents" }, "401": { "description": "unauthorized" } } }
    }
  }
}`
