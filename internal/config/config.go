package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Providers ProvidersConfig
	Scheduler SchedulerConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

// ProvidersConfig points at the external spelling-correction and
// instant-answer services. An empty URL disables that provider; requests
// then degrade to an uncached passthrough.
type ProvidersConfig struct {
	SpellerURL       string
	InstantAnswerURL string
	Timeout          time.Duration
}

// SchedulerConfig controls the background cache-invalidation intervals.
type SchedulerConfig struct {
	CountRefresh time.Duration
	SearchPurge  time.Duration
	InstantPurge time.Duration
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "5000")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("MONGODB_DATABASE", "wolfeye")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("REDIS_HOST", "redis")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("RATE_LIMIT_ENABLED", true)
	viper.SetDefault("RATE_LIMIT_RPS", 0.34)
	viper.SetDefault("RATE_LIMIT_BURST", 20)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	viper.SetDefault("INSTANT_ANSWER_URL", "https://api.duckduckgo.com/")
	viper.SetDefault("PROVIDER_TIMEOUT", 10)
	viper.SetDefault("SCHEDULER_COUNT_REFRESH_MINUTES", 30)
	viper.SetDefault("SCHEDULER_SEARCH_PURGE_MINUTES", 15)
	viper.SetDefault("SCHEDULER_INSTANT_PURGE_MINUTES", 60)

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      getEnvOrPanic("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Providers: ProvidersConfig{
			SpellerURL:       viper.GetString("SPELLER_URL"),
			InstantAnswerURL: viper.GetString("INSTANT_ANSWER_URL"),
			Timeout:          time.Duration(viper.GetInt("PROVIDER_TIMEOUT")) * time.Second,
		},
		Scheduler: SchedulerConfig{
			CountRefresh: time.Duration(viper.GetInt("SCHEDULER_COUNT_REFRESH_MINUTES")) * time.Minute,
			SearchPurge:  time.Duration(viper.GetInt("SCHEDULER_SEARCH_PURGE_MINUTES")) * time.Minute,
			InstantPurge: time.Duration(viper.GetInt("SCHEDULER_INSTANT_PURGE_MINUTES")) * time.Minute,
		},
	}

	// Basic validation
	if cfg.Providers.SpellerURL == "" {
		log.Println("WARNING: SPELLER_URL is not set; corrections will return input unchanged")
	}

	return cfg, nil
}

func getEnvOrPanic(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("environment variable %s is required", key)
	}
	return v
}
