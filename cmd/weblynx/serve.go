package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weblynx/internal/analysis"
	"weblynx/internal/api"
	"weblynx/internal/api/handlers"
	"weblynx/internal/banner"
	"weblynx/internal/config"
	"weblynx/internal/database"
	"weblynx/internal/database/models"
	"weblynx/internal/database/repositories"
	"weblynx/internal/discovery"
	"weblynx/internal/enrichment"
	"weblynx/internal/ingestion"
	"weblynx/internal/locale"
	parsers "weblynx/internal/parser"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const sourceSyncInterval = 30 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Ingest access logs and serve the HTTP API",
		Action: func(ctx *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(ctx.Context, cfg)
		},
	}
}

func serve(parent context.Context, cfg *config.Config) error {
	logger := cfg.Logger()
	gin.SetMode(cfg.Server.GinMode)
	banner.Print()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(&database.Config{
		Path:         cfg.Database.Path,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		ConnMaxLife:  cfg.Database.ConnMaxLife,
	}, logger)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	analyzer, err := analysis.NewAnalyzer(locale.Default(), cfg.UACacheSize, logger)
	if err != nil {
		return err
	}
	defer analyzer.Close()

	geoIP, err := enrichment.NewGeoIPEnricher(cfg.GeoIP.CityPath, cfg.GeoIP.CountryPath, cfg.GeoIP.ASNPath, db, logger, cfg.GeoIP.CacheSize)
	if err != nil {
		return err
	}
	defer geoIP.Close()

	var enricher ingestion.Enricher
	if geoIP.IsEnabled() {
		if err := geoIP.LoadCache(); err != nil {
			logger.Warn("Failed to warm GeoIP cache", logger.Args("error", err))
		}
		enricher = geoIP
	}

	registry := parsers.NewRegistry(logger)
	sourceRepo := repositories.NewLogSourceRepository(db)
	recordRepo := repositories.NewRequestRecordRepository(db, logger)
	statsRepo := repositories.NewStatsRepository(db, logger)

	if err := registerSources(cfg, sourceRepo, registry, logger); err != nil {
		return err
	}

	watcher, err := ingestion.NewFileWatcher(nil, logger)
	if err != nil {
		return err
	}
	defer watcher.Close()

	coordinator := ingestion.NewCoordinator(sourceRepo, recordRepo, registry, analyzer, enricher, ingestion.ProcessorConfig{
		BatchSize:    cfg.Ingest.BatchSize,
		BatchTimeout: cfg.Ingest.BatchTimeout,
		PollInterval: cfg.Ingest.PollInterval,
		Workers:      cfg.Ingest.Workers,
	}, logger)
	coordinator.SetWatcher(watcher)
	if err := coordinator.Start(); err != nil {
		return err
	}
	defer coordinator.Stop()
	coordinator.StartSyncLoop(sourceSyncInterval)

	cleanup := database.NewCleanupService(db, logger, cfg.Database.RetentionDays, cfg.Database.CleanupInterval)
	cleanup.Start(ctx)

	router := api.NewRouter(api.Handlers{
		Parse:     handlers.NewParseHandler(analyzer, logger),
		Dashboard: handlers.NewDashboardHandler(recordRepo, statsRepo, logger),
		System:    handlers.NewSystemHandler(recordRepo, cleanup, coordinator, logger, cfg.Database.Path),
	}, logger)
	server := api.NewServer(cfg.Server.Addr(), router, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case err, ok := <-watcher.Errors():
				if !ok {
					return nil
				}
				logger.Debug("Watcher error forwarded", logger.Args("error", err))
			}
		}
	})

	err = g.Wait()
	stop()
	logger.Info("Shutting down")
	return err
}

// registerSources stores the configured log sources, or runs discovery when
// none are configured.
func registerSources(cfg *config.Config, repo repositories.LogSourceRepository, registry *parsers.Registry, logger *pterm.Logger) error {
	definitions, err := cfg.Sources()
	if err != nil {
		return err
	}

	if len(definitions) == 0 {
		engine := discovery.NewEngine(repo, registry, discovery.Options{
			AutoDiscover:   cfg.AutoDiscover,
			CaddyLogPath:   cfg.CaddyLogPath,
			TraefikLogPath: cfg.TraefikLogPath,
		}, logger)
		if _, err := engine.Run(); err != nil {
			return fmt.Errorf("log source discovery: %w", err)
		}
		return nil
	}

	for _, def := range definitions {
		if _, err := registry.Get(def.ParserType); err != nil {
			return fmt.Errorf("log source %s: %w", def.Name, err)
		}
		if err := repo.Upsert(&models.LogSource{Name: def.Name, Path: def.Path, ParserType: def.ParserType}); err != nil {
			return fmt.Errorf("register log source %s: %w", def.Name, err)
		}
		logger.Info("Registered log source", logger.Args("name", def.Name, "parser", def.ParserType, "path", def.Path))
	}
	return nil
}
