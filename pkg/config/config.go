package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Cache       CacheConfig
	Activity    ActivityConfig
	Batch       BatchConfig
	Recommender RecommenderConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	PoolMin  int
	PoolMax  int
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

type CacheConfig struct {
	// distributed-tier freshness window
	RecommendationTTL time.Duration
	// shorter window for empty results so fresh activity surfaces quickly
	EmptyResultTTL time.Duration
	// local tier bounds
	LocalTTL        time.Duration
	LocalMaxEntries int
}

type ActivityConfig struct {
	// backpressure on the activity store
	MaxConcurrent  int
	AcquireTimeout time.Duration
}

type BatchConfig struct {
	MaxSize     int
	Concurrency int
}

type RecommenderConfig struct {
	SearchScore            float64
	PurchaseScore          float64
	DuplicateSearchBonus   float64
	DuplicatePurchaseBonus float64
	UniqueDivisor          float64
	RecommendLimit         int
	ExploreLimit           int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Recommendations API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "searches"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
			PoolMin:  getEnvInt("DB_POOL_MIN", 10),
			PoolMax:  getEnvInt("DB_POOL_MAX", 50),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			RecommendationTTL: getEnvDuration("CACHE_RECOMMENDATION_TTL", time.Hour),
			EmptyResultTTL:    getEnvDuration("CACHE_EMPTY_RESULT_TTL", 5*time.Minute),
			LocalTTL:          getEnvDuration("CACHE_LOCAL_TTL", time.Minute),
			LocalMaxEntries:   getEnvInt("CACHE_LOCAL_MAX_ENTRIES", 1024),
		},
		Activity: ActivityConfig{
			MaxConcurrent:  getEnvInt("ACTIVITY_MAX_CONCURRENT", 100),
			AcquireTimeout: getEnvDuration("ACTIVITY_ACQUIRE_TIMEOUT", 2*time.Second),
		},
		Batch: BatchConfig{
			MaxSize:     getEnvInt("BATCH_MAX_SIZE", 50),
			Concurrency: getEnvInt("BATCH_CONCURRENCY", 10),
		},
		Recommender: RecommenderConfig{
			SearchScore:            getEnvFloat("RECO_SEARCH_SCORE", 1.0),
			PurchaseScore:          getEnvFloat("RECO_PURCHASE_SCORE", 3.0),
			DuplicateSearchBonus:   getEnvFloat("RECO_DUP_SEARCH_BONUS", 2.0),
			DuplicatePurchaseBonus: getEnvFloat("RECO_DUP_PURCHASE_BONUS", 3.0),
			UniqueDivisor:          getEnvFloat("RECO_UNIQUE_DIVISOR", 10.0),
			RecommendLimit:         getEnvInt("RECO_RECOMMEND_LIMIT", 10),
			ExploreLimit:           getEnvInt("RECO_EXPLORE_LIMIT", 5),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}

	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}

	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}

	return defaultVal
}
