package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fortuna/rinkboard/internal/cache"
	"github.com/fortuna/rinkboard/internal/config"
	"github.com/fortuna/rinkboard/internal/publisher"
	"github.com/fortuna/rinkboard/internal/rebuild"
	"github.com/fortuna/rinkboard/internal/store"
	"github.com/fortuna/rinkboard/internal/store/repository"
)

const (
	appName    = "rinkboard"
	appVersion = "1.0.0"
)

func main() {
	log.Printf("=== %s v%s ===", appName, appVersion)

	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("rebuild failed: %v", err)
	}

	log.Println("✓ Rebuild completed successfully")
}

// run returns instead of exiting so deferred sink and signal cleanup runs.
func run(args []string) error {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	var (
		configPath = fs.String("config", getEnv("RINKBOARD_CONFIG", "rinkboard.toml"), "Path to TOML config file")
		root       = fs.String("root", "", "Storage root (overrides config)")
		workers    = fs.Int("workers", 0, "Parallel game-file reads per season (overrides config)")
		redisURL   = fs.String("redis", "", "Redis URL for cache and rebuild events (overrides config)")
		dsn        = fs.String("dsn", "", "PostgreSQL DSN for the leaderboard mirror (overrides config)")
	)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyFlags(cfg, *root, *workers, *redisURL, *dsn)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sinks, closeSinks := buildSinks(ctx, cfg)
	defer closeSinks()

	runner := rebuild.NewRunner(cfg.Storage.Root, rebuild.Options{
		Workers: cfg.Storage.Workers,
		Sinks:   sinks,
	})

	res, err := runner.Run(ctx, &consoleReporter{})
	if err != nil {
		if errors.Is(err, rebuild.ErrFatal) && res != nil && len(res.Seasons) > 0 {
			log.Printf("%d season(s) were rewritten before the failure", len(res.Seasons))
		}
		return err
	}
	return nil
}

func applyFlags(cfg *config.Config, root string, workers int, redisURL, dsn string) {
	if root != "" {
		cfg.Storage.Root = root
	}
	if workers > 0 {
		cfg.Storage.Workers = workers
	}
	if redisURL != "" {
		cfg.Redis.URL = redisURL
	}
	if dsn != "" {
		cfg.Postgres.DSN = dsn
	}
}

// buildSinks connects the optional mirrors. A sink that cannot connect is
// skipped with a warning; the JSON tree is still rebuilt.
func buildSinks(ctx context.Context, cfg *config.Config) ([]rebuild.Sink, func()) {
	var sinks []rebuild.Sink
	var closers []func() error

	if cfg.Redis.URL != "" && cfg.Redis.Cache {
		ttl, _ := cfg.GetCacheTTL()
		rc, err := cache.NewRedisCache(cfg.Redis.URL, ttl)
		if err != nil {
			log.Printf("⚠️  Redis cache disabled: %v", err)
		} else {
			sinks = append(sinks, rc)
			closers = append(closers, rc.Close)
		}
	}

	if cfg.Redis.URL != "" && cfg.Redis.Events {
		rp, err := publisher.NewRedisPublisher(cfg.Redis.URL, cfg.Redis.Stream)
		if err != nil {
			log.Printf("⚠️  Redis events disabled: %v", err)
		} else {
			sinks = append(sinks, rp)
			closers = append(closers, rp.Close)
		}
	}

	if cfg.Postgres.DSN != "" {
		db, err := store.NewDatabase(cfg.Postgres.DSN)
		if err != nil {
			log.Printf("⚠️  Postgres mirror disabled: %v", err)
		} else if err := db.EnsureSchema(ctx); err != nil {
			log.Printf("⚠️  Postgres mirror disabled: %v", err)
			_ = db.Close()
		} else {
			sinks = append(sinks, repository.NewLeaderboardRepository(db))
			closers = append(closers, db.Close)
		}
	}

	return sinks, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Printf("close sink: %v", err)
			}
		}
	}
}

type consoleReporter struct{}

func (c *consoleReporter) OnRebuildStart(root string) {
	log.Printf("Rebuilding indexes under %s", root)
}

func (c *consoleReporter) OnSeasonStart(season string, index int, total int) {
	log.Printf("[%d/%d] season %s", index+1, total, season)
}

func (c *consoleReporter) OnSeasonDone(result rebuild.SeasonResult) {
	log.Printf("  ✓ %s: %d games, %d players, %d skipped",
		result.Season, len(result.Index.Games), len(result.Leaderboard.Players), result.Skipped)
}

func (c *consoleReporter) OnDiagnostic(d rebuild.Diagnostic) {
	log.Printf("  ⚠️  %s", d)
}

func (c *consoleReporter) OnRebuildComplete(result *rebuild.Result) {
	if len(result.Seasons) == 0 {
		log.Println("No seasons found under finished/; root index written empty")
	}
	log.Printf("Current season: %q, soft failures: %d", result.RootIndex.CurrentSeason, result.SoftFailures())
}

func (c *consoleReporter) OnRebuildError(err error) {
	log.Printf("Rebuild error: %v", err)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
