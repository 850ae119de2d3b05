package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfeye/wolfeye-api/handlers"
	"github.com/wolfeye/wolfeye-api/internal/answers"
	"github.com/wolfeye/wolfeye-api/internal/cache"
	"github.com/wolfeye/wolfeye-api/internal/config"
	"github.com/wolfeye/wolfeye-api/internal/database"
	"github.com/wolfeye/wolfeye-api/internal/index"
	"github.com/wolfeye/wolfeye-api/internal/scheduler"
	"github.com/wolfeye/wolfeye-api/internal/search"
	"github.com/wolfeye/wolfeye-api/internal/tokens"
	"github.com/wolfeye/wolfeye-api/pkg/logger"
	"github.com/wolfeye/wolfeye-api/pkg/metrics"
	"github.com/wolfeye/wolfeye-api/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v speller=%v", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.Providers.SpellerURL != "")

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	ctx := context.Background()

	// Redis is the result cache; the service refuses to start without it.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatalf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
	}
	logger.Infof("Connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
	store := cache.NewRedisStore(rdb)

	// Per-route rate limiters. Search gets the default budget, the instant
	// answer proxy and the full-archive dump are kept much tighter since
	// both are expensive for their upstreams.
	var searchLimit, instantLimit, dumpLimit gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
		if cfg.RateLimit.UseRedis {
			searchLimit = middleware.RedisRateLimitMiddleware(rdb, "search", cfg.RateLimit.RPS, cfg.RateLimit.Burst, win)
			instantLimit = middleware.RedisRateLimitMiddleware(rdb, "instant", 0.05, 3, win)
			dumpLimit = middleware.RedisRateLimitMiddleware(rdb, "dump", 0.034, 2, win)
		} else {
			searchLimit = middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
			instantLimit = middleware.RateLimitMiddleware(0.05, 3)
			dumpLimit = middleware.RateLimitMiddleware(0.034, 2)
		}
	}

	// MongoDB holds the crawled index and the access tokens.
	client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5)
	if err != nil {
		logger.Fatalf("could not connect to MongoDB: %v", err)
	}
	defer func() { _ = client.Disconnect(ctx) }()
	db := client.Database(cfg.MongoDB.Database)
	docs := index.NewMongoRepository(db.Collection("documents"))
	tokStore := tokens.NewMongoStore(db.Collection("tokens"))

	speller := answers.NewHTTPSpeller(cfg.Providers.SpellerURL, cfg.Providers.Timeout)
	instant := answers.NewDDGClient(cfg.Providers.InstantAnswerURL, cfg.Providers.Timeout)
	svc := search.NewService(docs, store, speller, instant)

	h := handlers.NewHandler(svc, docs, tokStore)
	h.Register(r, searchLimit, instantLimit, dumpLimit)
	handlers.RegisterSwagger(r)

	sched := scheduler.New(docs, store, cfg.Scheduler)
	sched.Start()
	defer sched.Stop()

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only while both stores answer
	r.GET("/ready", func(c *gin.Context) {
		deps := map[string]bool{
			"redis": rdb.Ping(c.Request.Context()).Err() == nil,
		}
		deps["mongo"] = client.Ping(c.Request.Context(), nil) == nil
		if !deps["redis"] || !deps["mongo"] {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": time.Since(startTime).String()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": time.Since(startTime).String()})
	})

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting search API on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
