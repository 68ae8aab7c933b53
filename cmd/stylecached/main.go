package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/calliso/stylecache/internal/styles/common/clock"
	"github.com/calliso/stylecache/internal/styles/common/log"
	"github.com/calliso/stylecache/internal/styles/config"
	"github.com/calliso/stylecache/internal/styles/domain"
	"github.com/calliso/stylecache/internal/styles/repos/domaincache"
	"github.com/calliso/stylecache/internal/styles/repos/emptiness"
	"github.com/calliso/stylecache/internal/styles/repos/filtercache"
	"github.com/calliso/stylecache/internal/styles/repos/matchindex"
	"github.com/calliso/stylecache/internal/styles/repos/notify"
	"github.com/calliso/stylecache/internal/styles/repos/prefs"
	"github.com/calliso/stylecache/internal/styles/repos/regexcache"
	"github.com/calliso/stylecache/internal/styles/repos/srcdir"
	"github.com/calliso/stylecache/internal/styles/repos/store/bolt"
	"github.com/calliso/stylecache/internal/styles/services/engine"
)

const (
	// Version information
	version = "0.1.0-dev"
	appName = "stylecached"
)

// Application holds all the components of the style cache daemon
type Application struct {
	config *config.AppConfig
	store  *bolt.Store
	engine *engine.Engine
}

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Configure global logging
	err = log.Configure(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logging configuration error: %v\n", err)
		os.Exit(1)
	}

	log.Info(map[string]any{
		"version":      version,
		"env":          cfg.Env,
		"log_level":    cfg.LogLevel,
		"store_path":   cfg.StorePath,
		"source_dir":   cfg.SourceDir,
		"filter_cache": cfg.FilterCacheSize,
	}, "Starting style cache daemon")

	// Build application with all dependencies
	app, err := buildApplication(cfg)
	if err != nil {
		log.Fatal(map[string]any{"error": err}, "Failed to build application")
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info(map[string]any{"signal": sig.String()}, "Shutdown signal received")
		cancel()
	}()

	if err := app.Run(ctx); err != nil {
		log.Fatal(map[string]any{"error": err}, "Daemon failed")
	}

	log.Info(nil, "Style cache daemon stopped gracefully")
}

// buildApplication constructs all components and wires them together
func buildApplication(cfg *config.AppConfig) (*Application, error) {
	// Create shared clock for consistent time across all components
	clk := clock.RealClock{}

	// Initialize logger (already configured globally)
	logger := log.GetLogger()

	// Open the durable style store
	store, err := bolt.New(cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open style store: %w", err)
	}

	// Seed an empty store from the source directory, when configured
	if cfg.SourceDir != "" {
		seeded, err := srcdir.Seed(context.Background(), cfg.SourceDir, store)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to seed style store: %w", err)
		}
		if seeded > 0 {
			log.Info(map[string]any{
				"source_dir": cfg.SourceDir,
				"styles":     seeded,
			}, "Style store seeded")
		}
	}

	// Build the cache and index repositories
	emptinessCache, err := emptiness.New(int(cfg.EmptinessCacheSize))
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create emptiness cache: %w", err)
	}

	eng := engine.New(engine.Options{
		Store:     store,
		Prefs:     prefs.New(),
		Notifier:  notify.NewBroadcaster(),
		Regex:     regexcache.New(clk),
		Domains:   domaincache.New(int(cfg.DomainCacheSize)),
		Emptiness: emptinessCache,
		Index:     matchindex.New(cfg.BloomFPRate),
		Filters:   filtercache.New[domain.CriteriaKey, engine.Result](int(cfg.FilterCacheSize), 0, clk),
		Clock:     clk,
		Logger:    logger,
		OwnScheme: cfg.OwnScheme,
	})

	return &Application{
		config: cfg,
		store:  store,
		engine: eng,
	}, nil
}

// Run warms the cache and blocks until context is cancelled
func (app *Application) Run(ctx context.Context) error {
	// Eagerly perform the initial bulk load so the first real query does
	// not pay for it
	res, err := app.engine.Query(ctx, domain.NewCriteria())
	if err != nil {
		return fmt.Errorf("initial style load failed: %w", err)
	}

	log.Info(map[string]any{"styles": len(res.Styles)}, "Style cache ready")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info(nil, "Shutdown initiated")

	app.engine.Close()
	if err := app.store.Close(); err != nil {
		log.Warn(map[string]any{"error": err}, "Error closing style store")
		return fmt.Errorf("store shutdown: %w", err)
	}

	log.Info(nil, "Graceful shutdown completed")
	return nil
}
