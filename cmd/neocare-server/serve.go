package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/neocare/neocare/internal/config"
	"github.com/neocare/neocare/internal/domain/alerts"
	"github.com/neocare/neocare/internal/domain/icu"
	"github.com/neocare/neocare/internal/domain/laboratory"
	"github.com/neocare/neocare/internal/domain/overview"
	"github.com/neocare/neocare/internal/domain/patients"
	"github.com/neocare/neocare/internal/domain/performance"
	"github.com/neocare/neocare/internal/domain/resources"
	"github.com/neocare/neocare/internal/platform/auth"
	"github.com/neocare/neocare/internal/platform/cache"
	"github.com/neocare/neocare/internal/platform/db"
	"github.com/neocare/neocare/internal/platform/events"
	"github.com/neocare/neocare/internal/platform/exposition"
	"github.com/neocare/neocare/internal/platform/middleware"
	"github.com/neocare/neocare/internal/platform/openapi"
	"github.com/neocare/neocare/internal/rules"
	"github.com/neocare/neocare/internal/store"
	"github.com/neocare/neocare/internal/store/memory"
	"github.com/neocare/neocare/internal/store/postgres"
	"github.com/neocare/neocare/internal/store/postgrest"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// deps are the long-lived collaborators the HTTP server is built from.
type deps struct {
	store     store.Store
	cache     cache.Store
	rules     *rules.Holder
	poolStats func() *db.PoolStats
	collector *exposition.Collector
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Store
	st, poolStats, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
		return err
	}
	defer st.Close()
	logger.Info().Str("driver", cfg.StoreDriver).Msg("store ready")

	// Rules
	current := rules.Default()
	if cfg.RulesFile != "" {
		if current, err = rules.Load(cfg.RulesFile); err != nil {
			logger.Error().Err(err).Str("path", cfg.RulesFile).Msg("failed to load rules")
			return err
		}
	}
	holder := rules.NewHolder(current)

	// Response cache
	respCache, closeCache := openCache(ctx, cfg, logger)
	defer closeCache()

	if cfg.RulesFile != "" {
		go func() {
			err := rules.Watch(ctx, cfg.RulesFile, logger, func(r *rules.Rules) {
				holder.Set(r)
				if err := respCache.Clear(ctx); err != nil {
					logger.Warn().Err(err).Msg("failed to clear response cache after rules reload")
				}
			})
			if err != nil {
				logger.Error().Err(err).Msg("rules watcher stopped")
			}
		}()
	}

	collector := exposition.NewCollector(st, holder, logger)

	// Change events
	if cfg.MQTTBroker != "" {
		sub := events.NewSubscriber(events.Config{
			Broker:   cfg.MQTTBroker,
			ClientID: cfg.MQTTClientID,
			Topic:    cfg.MQTTTopic,
			Username: cfg.MQTTUsername,
			Password: cfg.MQTTPassword,
			QoS:      1,
		}, respCache, logger)
		if err := sub.Start(ctx); err != nil {
			// The dashboard stays usable on TTL expiry alone.
			logger.Warn().Err(err).Str("broker", cfg.MQTTBroker).Msg("change-event subscriber unavailable")
		} else {
			defer sub.Close()
			collector.AddCounter(exposition.CounterFunc{
				Name: "neocare_change_events_received_total",
				Help: "Change events received from the broker.",
				Value: func() float64 {
					received, _ := sub.Stats()
					return float64(received)
				},
			})
			collector.AddCounter(exposition.CounterFunc{
				Name: "neocare_cache_invalidations_total",
				Help: "Response cache clears triggered by change events.",
				Value: func() float64 {
					_, invalidated := sub.Stats()
					return float64(invalidated)
				},
			})
		}
	}

	e := newServer(cfg, deps{
		store:     st,
		cache:     respCache,
		rules:     holder,
		poolStats: poolStats,
		collector: collector,
	}, logger)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Bool("tls", cfg.TLSEnabled).Msg("starting server")
		var err error
		if cfg.TLSEnabled {
			err = e.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = e.Start(addr)
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// openStore connects the configured driver. Pool statistics are only
// available for postgres.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func() *db.PoolStats, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.PoolOptions{
			MaxConns:         cfg.DBMaxConns,
			MinConns:         cfg.DBMinConns,
			ApplicationName:  "neocare-server",
			StatementTimeout: cfg.RequestTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return postgres.New(pool), func() *db.PoolStats { return db.GetPoolStats(pool) }, nil

	case config.DriverPostgREST:
		return postgrest.New(cfg.StoreURL, cfg.StoreAPIKey, postgrest.Options{
			Timeout:    10 * time.Second,
			RetryCount: 2,
		}), nil, nil

	case config.DriverMemory:
		d, err := memory.LoadFile(cfg.StoreURL)
		if err != nil {
			return nil, nil, err
		}
		return memory.New(d), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// openCache prefers Redis when configured and falls back to the in-process
// cache when Redis is unreachable at startup.
func openCache(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (cache.Store, func()) {
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err == nil {
			logger.Info().Msg("response cache: redis")
			r := cache.NewRedis(client, cache.KeyPrefix)
			return r, func() { _ = r.Close() }
		}
		logger.Warn().Err(err).Msg("redis unavailable, using in-memory response cache")
	}

	m := cache.NewMemory()
	m.StartCleanup(ctx, time.Minute)
	return m, func() {}
}

// newServer builds the echo instance with the full middleware chain and every
// dashboard route.
func newServer(cfg *config.Config, d deps, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	if d.collector != nil {
		e.Use(d.collector.Middleware())
	}
	e.Use(middleware.SecurityHeaders(cfg.TLSEnabled))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowHeaders:  []string{"Authorization", "Content-Type", middleware.RequestIDHeader, "If-None-Match"},
		ExposeHeaders: []string{"ETag", "X-Cache", "X-Degraded", middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
	}))
	e.Use(middleware.SanitizeWithLogger(logger))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	// Auth middleware
	switch cfg.ResolvedAuthMode() {
	case config.AuthDevelopment:
		e.Use(auth.DevAuthMiddleware(auth.AuthSkipper))
	case config.AuthHMAC:
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			SigningKey: []byte(cfg.AuthSigningKey),
			Skipper:    auth.AuthSkipper,
		}))
	default:
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:   cfg.AuthIssuer,
			Audience: cfg.AuthAudience,
			JWKSURL:  cfg.AuthJWKSURL,
			Skipper:  auth.AuthSkipper,
		}))
	}

	e.Use(middleware.Audit(logger))

	// Health and exposition
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "version": version})
	})
	e.GET("/health/db", db.HealthHandler(d.store, cfg.StoreDriver, d.poolStats))
	if d.collector != nil {
		e.GET("/metrics", d.collector.Handler())
	}

	// API group
	api := e.Group("/api")
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 || rateLimitCfg.BurstSize <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	api.Use(middleware.RateLimit(rateLimitCfg))

	gen := openapi.NewGenerator(openapi.DefaultCatalog(), version, "/", openapi.RateLimit{
		RequestsPerSecond: rateLimitCfg.RequestsPerSecond,
		Burst:             rateLimitCfg.BurstSize,
		Headers:           []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
	})
	gen.RegisterRoutes(api)

	routeMW := []echo.MiddlewareFunc{
		middleware.ETagMiddleware(middleware.DefaultCacheConfig(cfg.CacheTTL)),
	}
	if d.cache != nil && cfg.CacheTTL > 0 {
		routeMW = append(routeMW, middleware.ResponseCache(d.cache, cfg.CacheTTL, logger))
	}

	overview.NewHandler(overview.NewService(d.store, d.rules, logger)).RegisterRoutes(api, routeMW...)
	patients.NewHandler(patients.NewService(d.store, d.rules, logger)).RegisterRoutes(api, routeMW...)
	icu.NewHandler(icu.NewService(d.store, d.rules, logger)).RegisterRoutes(api, routeMW...)
	performance.NewHandler(performance.NewService(d.store, d.rules, logger)).RegisterRoutes(api, routeMW...)
	resources.NewHandler(resources.NewService(d.store, d.rules, logger)).RegisterRoutes(api, routeMW...)
	alerts.NewHandler(alerts.NewService(d.store, logger)).RegisterRoutes(api, routeMW...)
	laboratory.NewHandler(laboratory.NewService(d.store, d.rules, logger)).RegisterRoutes(api, routeMW...)

	return e
}
