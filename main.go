package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"github.com/deal-drive/site/config"
	"github.com/deal-drive/site/db"
	h "github.com/deal-drive/site/handlers"
	"github.com/deal-drive/site/observability"
	"github.com/deal-drive/site/redis"
	"github.com/deal-drive/site/scheduler"
	"github.com/deal-drive/site/search"
	"github.com/deal-drive/site/vehicle"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.ServiceName, cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := observability.InitTracer(ctx, observability.TraceConfig{
		Enabled:     cfg.OTelEnabled,
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.OTelEndpoint,
		SampleRatio: cfg.OTelSampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	// Initialize database
	if err := db.Init(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("error initializing database")
	}
	defer db.Close()
	history := search.NewHistory(db.Get())

	checks := []h.HealthCheck{
		{Name: "database", Check: func(ctx context.Context) error { return db.Get().PingContext(ctx) }},
	}

	// Search sessions live in Redis when configured, in process otherwise
	var store search.SessionStore
	memoryStore := search.NewMemoryStore(config.SearchSessionTTL, config.SearchFetchLockTTL)
	store = memoryStore
	if cfg.UsesRedis() {
		rdb, err := redis.NewClient(ctx, cfg.RedisAddress, cfg.RedisPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("error connecting to redis")
		}
		defer rdb.Close()
		store = search.NewRedisStore(rdb, config.SearchSessionTTL, config.SearchFetchLockTTL)
		memoryStore = nil
		checks = append(checks, h.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return redis.CheckHealth(ctx, rdb)
		}})
	} else {
		log.Warn().Str("component", "search").Msg("REDIS_ADDRESS not set, keeping search sessions in memory")
	}

	ts := search.NewTypesense(cfg.TypesenseURL, cfg.TypesenseAPIKey, cfg.TypesenseCollection, cfg.TypesenseTimeout)
	checks = append(checks, h.HealthCheck{Name: "typesense", Check: ts.Health})
	if cfg.IsDevelopment() {
		if created, err := ts.EnsureCollection(ctx); err != nil {
			log.Warn().Str("component", "search").Err(err).Msg("could not ensure typesense collection")
		} else if created {
			log.Info().Str("component", "search").Str("collection", ts.Collection()).Msg("created typesense collection")
		}
	}

	reporter, err := vehicle.NewReporter(cfg.VINDecoderURL, config.VehicleReportTTL, cfg.VINDecoderTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize VIN reporter")
	}
	defer reporter.Close()

	market, err := vehicle.NewMarket(ts, config.MarketComparablesTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize market comparables")
	}
	defer market.Close()

	handlers, err := h.New(h.Deps{
		Config:   cfg,
		Searcher: ts,
		Finder:   ts,
		Store:    store,
		History:  history,
		Reporter: reporter,
		Market:   market,
		Checks:   checks,
		Caches:   []h.CacheReporter{reporter, market},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize handlers")
	}
	defer handlers.Close()

	probes := make([]scheduler.Probe, 0, len(checks))
	for _, c := range checks {
		probes = append(probes, scheduler.Probe{Name: c.Name, Check: c.Check})
	}
	opts := scheduler.Options{
		History:    history,
		Retention:  config.HistoryRetention,
		PruneSpec:  cfg.HistoryPruneSpec,
		Probes:     probes,
		HealthSpec: cfg.HealthCheckSpec,
	}
	if memoryStore != nil {
		opts.Sweeper = memoryStore
	}
	sched := scheduler.New(opts)
	if err := sched.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		ErrorHandler: h.CustomErrorHandler,
		ReadTimeout:  cfg.ReadTimeout,  // Prevent long-running requests
		WriteTimeout: cfg.WriteTimeout, // Prevent long-running responses
	})

	app.Use(recover.New())
	app.Use(observability.RequestLogger())
	app.Use(h.RateLimiter(cfg))

	// Static files and utility
	app.Static("/", "./static")
	app.Get("/.well-known/appspecific/com.chrome.devtools.json", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	app.Use(handlers.SessionMiddleware)
	app.Use(handlers.JWTMiddleware)
	handlers.Register(app)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("server shutdown")
		}
	}()

	log.Info().Str("port", cfg.ServerPort).Str("env", cfg.Environment).Msg("starting server")
	if err := app.Listen(":" + cfg.ServerPort); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
