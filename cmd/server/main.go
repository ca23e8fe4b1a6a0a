package main

import (
	"context"

	"github.com/mityasmirnov/AnyMatch/internal/app"
	"github.com/mityasmirnov/AnyMatch/internal/cache"
	"github.com/mityasmirnov/AnyMatch/internal/config"
	"github.com/mityasmirnov/AnyMatch/internal/db"
	"github.com/mityasmirnov/AnyMatch/internal/logger"
	"github.com/mityasmirnov/AnyMatch/internal/metrics"
	"github.com/mityasmirnov/AnyMatch/internal/server"
	"github.com/mityasmirnov/AnyMatch/internal/service/groups"
	"github.com/mityasmirnov/AnyMatch/internal/service/guest"
	"github.com/mityasmirnov/AnyMatch/internal/service/movies"
	"github.com/mityasmirnov/AnyMatch/internal/service/notifications"
	"github.com/mityasmirnov/AnyMatch/internal/service/preferences"
	"github.com/mityasmirnov/AnyMatch/internal/service/swipes"
	"github.com/mityasmirnov/AnyMatch/internal/service/watchlist"
	"github.com/mityasmirnov/AnyMatch/internal/tmdb"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L() // slog.Logger pointer

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	collector, registry := metrics.NewDefault()

	// Inject logger into app context
	appCtx := app.New(database, redisCache, collector, log)

	notifier := notifications.NewService(appCtx)
	tmdbClient := tmdb.NewClient(cfg)

	registrars := []server.Registrar{
		swipes.NewRegistrar(appCtx, notifier),
		groups.NewRegistrar(appCtx),
		guest.NewRegistrar(appCtx),
		movies.NewRegistrar(appCtx, tmdbClient),
		watchlist.NewRegistrar(appCtx),
		preferences.NewRegistrar(appCtx),
		notifications.NewRegistrar(notifier),
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	if err := server.StartHTTPServer(cfg, metrics.Handler(registry), registrars...); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}
