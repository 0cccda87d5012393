// Package main is the entry point for the tickermatch service. It resolves
// trademark owners to stock tickers, enriches matches with cached stock
// attributes, and serves the results over an HTTP API.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/aristath/tickermatch/internal/analysis"
	"github.com/aristath/tickermatch/internal/clients/yahoo"
	"github.com/aristath/tickermatch/internal/config"
	"github.com/aristath/tickermatch/internal/database"
	"github.com/aristath/tickermatch/internal/matching"
	"github.com/aristath/tickermatch/internal/ownerfreq"
	"github.com/aristath/tickermatch/internal/server"
	"github.com/aristath/tickermatch/internal/stockdata"
	"github.com/aristath/tickermatch/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info"})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("data_dir", cfg.DataDir).
		Str("cache_backend", cfg.CacheBackend).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("Starting tickermatch")

	// Alias table is required; the service cannot resolve without it.
	aliases, err := matching.LoadAliasTable(cfg.AliasFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load alias table")
	}
	log.Info().Int("aliases", aliases.Len()).Msg("Loaded alias table")
	resolver := matching.NewResolver(aliases)

	// Durable cache store: SQLite by default, JSON file as fallback.
	var store stockdata.Store
	var sqlStore *stockdata.SQLStore
	var cacheDB *database.DB
	if cfg.CacheBackend == "sqlite" {
		cacheDB, err = database.New(database.Config{
			Path:    filepath.Join(cfg.DataDir, "stock_cache.db"),
			Profile: database.ProfileCache,
			Name:    "stock_cache",
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open cache database")
		}
		defer cacheDB.Close()

		sqlStore, err = stockdata.NewSQLStore(cacheDB.Conn(), cfg.CacheTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize cache store")
		}
		store = sqlStore
	} else {
		store = stockdata.NewFileStore(filepath.Join(cfg.DataDir, "stock_cache.json"))
	}

	provider := yahoo.NewClient(log, yahoo.WithTimeout(cfg.FetchTimeout))
	cache := stockdata.NewCache(provider, store, cfg.CacheTTL, log)
	cache.Hydrate()

	// Owner registry is optional at startup; analysis endpoints report
	// its absence per request.
	var owners []ownerfreq.OwnerCount
	if ranked, err := ownerfreq.Load(cfg.OwnersFile); err != nil {
		log.Warn().Err(err).Str("path", cfg.OwnersFile).Msg("Owner registry not loaded")
	} else {
		owners = ranked
		log.Info().Int("owners", len(owners)).Msg("Loaded owner registry")
	}

	pipeline := analysis.NewPipeline(resolver, cache, cfg.FetchConcurrency, log)

	// Daily pruning of expired persisted rows (SQLite backend only).
	scheduler := cron.New()
	if sqlStore != nil {
		cleanup := stockdata.NewCleanupJob(sqlStore, log)
		if _, err := scheduler.AddJob("0 3 * * *", cleanup); err != nil {
			log.Error().Err(err).Msg("Failed to schedule cache cleanup job")
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	srv := server.New(server.Config{
		Log:           log,
		Port:          cfg.Port,
		DevMode:       cfg.DevMode,
		Resolver:      resolver,
		Cache:         cache,
		Pipeline:      pipeline,
		Owners:        owners,
		AnalysisLimit: cfg.AnalysisLimit,
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	waitForShutdown(log, srv, cache)
}

// waitForShutdown blocks until an interrupt arrives, then drains the
// server and flushes the cache snapshot.
func waitForShutdown(log zerolog.Logger, srv *server.Server, cache *stockdata.Cache) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	if err := cache.Flush(); err != nil {
		log.Warn().Err(err).Msg("Failed to flush cache snapshot")
	}

	log.Info().Msg("Shutdown complete")
}
