package app

import (
	"log/slog"

	"github.com/mityasmirnov/AnyMatch/internal/cache"
	"github.com/mityasmirnov/AnyMatch/internal/metrics"
	"gorm.io/gorm"
)

// AppContext holds shared dependencies (DB, Redis, Metrics, Logger).
type AppContext struct {
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Metrics    *metrics.Collector
	Logger     *slog.Logger
}

// New creates a new AppContext
func New(db *gorm.DB, rdb *cache.RedisCache, m *metrics.Collector, logger *slog.Logger) *AppContext {
	return &AppContext{
		DB:         db,
		RedisCache: rdb,
		Metrics:    m,
		Logger:     logger,
	}
}
