package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/VIJAY-mark/blockd/internal/blocker/common/clock"
	"github.com/VIJAY-mark/blockd/internal/blocker/common/log"
	"github.com/VIJAY-mark/blockd/internal/blocker/config"
	"github.com/VIJAY-mark/blockd/internal/blocker/gateways/admin"
	"github.com/VIJAY-mark/blockd/internal/blocker/gateways/badge"
	"github.com/VIJAY-mark/blockd/internal/blocker/gateways/proxy"
	"github.com/VIJAY-mark/blockd/internal/blocker/repos/listcache"
	"github.com/VIJAY-mark/blockd/internal/blocker/repos/liststore"
	boltstore "github.com/VIJAY-mark/blockd/internal/blocker/repos/liststore/bolt"
	"github.com/VIJAY-mark/blockd/internal/blocker/repos/trackers"
	"github.com/VIJAY-mark/blockd/internal/blocker/repos/trackers/bloom"
	"github.com/VIJAY-mark/blockd/internal/blocker/repos/verdictcache"
	"github.com/VIJAY-mark/blockd/internal/blocker/services/classifier"
)

const (
	// Version information
	version = "0.1.0-dev"
	appName = "blockd"

	// Target false-positive rate for the feed-rule Bloom filter
	bloomFPRate = 0.001
)

// Application holds all the components of the blocking daemon
type Application struct {
	config     *config.AppConfig
	store      liststore.Store
	classifier *classifier.Classifier
	proxy      *proxy.HTTPProxy
	admin      *admin.Server
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
		"version":    version,
		"env":        cfg.Env,
		"log_level":  cfg.LogLevel,
		"proxy_addr": cfg.ProxyAddr,
		"admin_addr": cfg.AdminAddr,
		"db_path":    cfg.DBPath,
		"feed_dir":   cfg.FeedDir,
		"cache_size": cfg.CacheSize,
	}, "Starting blockd")

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

	// Run the daemon
	if err := app.Run(ctx); err != nil {
		log.Fatal(map[string]any{"error": err}, "Daemon failed")
	}

	log.Info(nil, "blockd stopped gracefully")
}

// buildApplication constructs all components and wires them together
func buildApplication(cfg *config.AppConfig) (*Application, error) {
	// Shared clock for consistent time across all components
	clk := &clock.RealClock{}

	// Logger (already configured globally)
	logger := log.GetLogger()

	// Persisted store: opens the database and seeds missing keys idempotently,
	// so an upgrade never wipes user lists or the counter.
	store, err := boltstore.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open list store: %w", err)
	}

	// In-memory mirror, hydrated eagerly so early requests never see empty lists.
	mirror := listcache.New()
	if err := mirror.Hydrate(store); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to hydrate list mirror: %w", err)
	}

	wl, bl := mirror.Sizes()
	log.Info(map[string]any{
		"whitelist":     wl,
		"blacklist":     bl,
		"blocked_count": mirror.BlockedCount(),
	}, "List mirror hydrated")

	// Tracker domain set: built-in fragments plus optional feed files.
	feedRules, err := trackers.LoadFeedDirectory(cfg.FeedDir, logger, clk.Now())
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load tracker feeds: %w", err)
	}
	trackerSet := trackers.NewWithRules(trackers.Builtin(), feedRules, bloom.NewFactory(), bloomFPRate)

	log.Info(map[string]any{
		"fragments":  len(trackerSet.Fragments()),
		"feed_rules": trackerSet.RuleCount(),
	}, "Tracker set loaded")

	// Verdict cache
	cache, err := buildVerdictCache(cfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	// Badge, initialized from the hydrated counter so the label survives restarts.
	bdg := badge.New()
	bdg.Update(strconv.FormatUint(mirror.BlockedCount(), 10), cfg.BadgeColor)

	// Classifier service
	cls := classifier.New(classifier.Options{
		Lists:      mirror,
		Trackers:   trackerSet,
		Badge:      bdg,
		Counter:    store,
		Cache:      cache,
		Logger:     logger,
		BadgeColor: cfg.BadgeColor,
	})

	// Subscription order matters: the mirror must refresh before the verdict
	// cache is purged, so entries cached during the window are never stale.
	store.Subscribe(mirror)
	store.Subscribe(cls)

	// Gateways
	httpProxy := proxy.NewHTTPProxy(cfg.ProxyAddr, logger)
	adminSrv := admin.NewServer(admin.Options{
		Addr:   cfg.AdminAddr,
		Store:  store,
		Stats:  mirror,
		Badge:  bdg,
		Cache:  cache,
		Logger: logger,
	})

	return &Application{
		config:     cfg,
		store:      store,
		classifier: cls,
		proxy:      httpProxy,
		admin:      adminSrv,
	}, nil
}

// buildVerdictCache creates the verdict cache per configuration.
func buildVerdictCache(cfg *config.AppConfig) (verdictcache.Cache, error) {
	if cfg.DisableCache {
		log.Info(map[string]any{"disabled": true}, "Verdict caching disabled")
		return verdictcache.New(0)
	}
	// Safely convert uint to int with bounds check
	cacheSize := cfg.CacheSize
	if cacheSize > uint(^uint(0)>>1) {
		return nil, fmt.Errorf("cache size too large: %d (max %d)", cacheSize, ^uint(0)>>1)
	}
	cache, err := verdictcache.New(int(cacheSize))
	if err != nil {
		return nil, fmt.Errorf("failed to create verdict cache: %w", err)
	}
	log.Info(map[string]any{
		"type": "LRU",
		"size": cfg.CacheSize,
	}, "Verdict cache configured")
	return cache, nil
}

// Run starts the listeners and blocks until context is cancelled
func (app *Application) Run(ctx context.Context) error {
	// Counter persistence drains on its own goroutine; the classifier never waits.
	go app.classifier.RunPersister(ctx)

	if err := app.proxy.Start(ctx, app.classifier); err != nil {
		return fmt.Errorf("failed to start proxy: %w", err)
	}

	if err := app.admin.Start(ctx); err != nil {
		_ = app.proxy.Stop()
		return fmt.Errorf("failed to start admin API: %w", err)
	}

	log.Info(map[string]any{
		"proxy": app.proxy.Address(),
		"admin": app.admin.Address(),
	}, "blockd started")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info(nil, "Shutdown initiated")

	if err := app.proxy.Stop(); err != nil {
		log.Warn(map[string]any{"error": err}, "Error during proxy shutdown")
	}
	if err := app.admin.Stop(); err != nil {
		log.Warn(map[string]any{"error": err}, "Error during admin shutdown")
	}
	if err := app.store.Close(); err != nil {
		log.Warn(map[string]any{"error": err}, "Error closing list store")
	}

	log.Info(nil, "Graceful shutdown completed")
	return nil
}
