package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dharmasatrya/flightwatcher/internal/auth"
	"github.com/dharmasatrya/flightwatcher/internal/cache"
	"github.com/dharmasatrya/flightwatcher/internal/config"
	"github.com/dharmasatrya/flightwatcher/internal/handler"
	"github.com/dharmasatrya/flightwatcher/internal/logging"
	"github.com/dharmasatrya/flightwatcher/internal/models"
	"github.com/dharmasatrya/flightwatcher/internal/providers"
	"github.com/dharmasatrya/flightwatcher/internal/ranking"
	"github.com/dharmasatrya/flightwatcher/internal/ratelimit"
	"github.com/dharmasatrya/flightwatcher/internal/scanner"
	"github.com/dharmasatrya/flightwatcher/internal/storage/postgres"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		logging.Error().Err(err).Msg("failed to load config")
		os.Exit(1)
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var pool *pgxpool.Pool
	if cfg.Postgres.Enabled {
		pool, err = postgres.NewPool(ctx, postgres.Config{DSN: cfg.Postgres.DSN(), MaxConns: cfg.Postgres.MaxConns})
		if err != nil {
			logging.Error().Err(err).Msg("failed to connect to postgres")
			os.Exit(1)
		}
		defer pool.Close()

		if err := postgres.Migrate(ctx, pool); err != nil {
			logging.Error().Err(err).Msg("failed to migrate database")
			os.Exit(1)
		}
		logging.Info().Str("host", cfg.Postgres.Host).Str("db", cfg.Postgres.DBName).Msg("postgres connected")
	} else {
		logging.Warn().Msg("postgres disabled: accounts, events, admin and price history are off")
	}

	limiter := ratelimit.NewSourceLimiter(ratelimit.Config{
		RequestsPerSecond: cfg.Source.RatePerSec,
		BurstSize:         cfg.Source.Burst,
	})

	source, err := newSource(cfg.Source, limiter)
	if err != nil {
		logging.Error().Err(err).Msg("failed to initialize fare source")
		os.Exit(1)
	}
	breaker := providers.NewBreakerSource(source, providers.BreakerConfig{Timeout: cfg.Source.BreakerTimeout})
	logging.Info().Str("source", source.Name()).Float64("rps", cfg.Source.RatePerSec).Msg("fare source ready")

	store := newCacheStore(ctx, cfg, pool)
	defer store.Close()

	serviceCfg := scanner.ServiceConfig{Cache: cache.NewLayer(store, cfg.Cache.TTL)}
	if pool != nil {
		prices := postgres.NewPriceHistoryRepository(pool)
		serviceCfg.Recorder = prices
		serviceCfg.Enricher = ranking.NewEnricher(prices)
	}

	defaults := models.ScanDefaults{
		Airport:   cfg.Scan.DefaultAirport,
		BudgetMax: cfg.Scan.DefaultBudget,
		Limit:     cfg.Scan.DefaultLimit,
	}
	service := scanner.NewService(scanner.New(breaker, defaults), serviceCfg)

	routes := handler.Routes{
		Health: handler.NewHealthHandler(breaker),
	}

	var searches handler.SearchStore
	if pool != nil {
		searches = postgres.NewSearchRepository(pool)
	}
	routes.Scan = handler.NewScanHandler(service, searches)

	if pool != nil {
		users := postgres.NewUserRepository(pool)
		events := postgres.NewEventRepository(pool)
		routes.Events = handler.NewEventHandler(events)

		if cfg.Auth.JWTSecret != "" {
			verifier, err := auth.NewVerifier(cfg.Auth.JWTSecret)
			if err != nil {
				logging.Error().Err(err).Msg("failed to initialize token verifier")
				os.Exit(1)
			}
			admins := auth.NewAdmins(cfg.Auth.AdminEmails, cfg.Auth.AdminPasswordHash)
			sessions := auth.NewAdminSessions(cfg.Auth.JWTSecret, cfg.Auth.AdminSessionTTL)
			plans := postgres.NewPlanRepository(pool, postgres.NewTxManager(pool))

			routes.Auth = auth.NewMiddleware(verifier, admins, sessions)
			routes.Account = handler.NewAccountHandler(users, searches, postgres.NewFavoriteRepository(pool), admins)
			routes.Admin = handler.NewAdminHandler(users, searches, events, plans, handler.AdminConfig{
				Admins:       admins,
				Sessions:     sessions,
				SecureCookie: cfg.Auth.SecureCookie,
			})
		} else {
			logging.Warn().Msg("SUPABASE_JWT_SECRET not set: authenticated routes are disabled")
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.JSONSerializer = handler.JSONSerializer{}

	e.Use(middleware.Recover())
	e.Use(handler.RequestID())
	e.Use(handler.RequestLogger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.AllowedOrigins,
		AllowCredentials: true,
	}))

	routes.Register(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	go func() {
		logging.Info().Str("port", cfg.HTTP.Port).Msg("starting flight watcher server")
		if err := e.Start(":" + cfg.HTTP.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("failed to start server")
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("server forced to shutdown")
	}
	logging.Info().Msg("server exited")
}

func newSource(cfg config.Source, limiter *ratelimit.SourceLimiter) (providers.FlightSource, error) {
	if cfg.Kind == "fixture" {
		fixture, err := providers.NewFixtureSource(cfg.FixturePath)
		if err != nil {
			return nil, err
		}
		return fixture, nil
	}

	return providers.NewFareClient(providers.FareClientConfig{
		BaseURL:     cfg.BaseURL,
		Currency:    cfg.Currency,
		Timeout:     cfg.Timeout,
		MaxRetries:  cfg.MaxRetries,
		RetryDelays: []time.Duration{cfg.RetryDelay, 2 * cfg.RetryDelay, 4 * cfg.RetryDelay},
		RateLimiter: limiter,
	}), nil
}

// newCacheStore picks the result cache backend. An unreachable Redis only
// disables caching; scans keep working.
func newCacheStore(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) cache.Store {
	switch cfg.Cache.Backend {
	case "redis":
		store, err := cache.NewRedisStore(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logging.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, result cache disabled")
			return cache.NewNoOpStore()
		}
		logging.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Cache.TTL).Msg("redis result cache enabled")
		return store
	case "postgres":
		if pool == nil {
			logging.Warn().Msg("postgres cache requested without postgres, result cache disabled")
			return cache.NewNoOpStore()
		}
		logging.Info().Dur("ttl", cfg.Cache.TTL).Msg("postgres result cache enabled")
		return cache.NewPostgresStore(pool)
	default:
		logging.Info().Msg("result cache disabled")
		return cache.NewNoOpStore()
	}
}
