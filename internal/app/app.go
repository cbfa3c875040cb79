package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/gokatarajesh/h2h-trivia/internal/auth"
	"github.com/gokatarajesh/h2h-trivia/internal/auth/jwt"
	"github.com/gokatarajesh/h2h-trivia/internal/clock"
	"github.com/gokatarajesh/h2h-trivia/internal/config"
	"github.com/gokatarajesh/h2h-trivia/internal/db/repository"
	sqlcgen "github.com/gokatarajesh/h2h-trivia/internal/db/sqlc"
	"github.com/gokatarajesh/h2h-trivia/internal/logging"
	"github.com/gokatarajesh/h2h-trivia/internal/match"
	"github.com/gokatarajesh/h2h-trivia/internal/matchmaking"
	"github.com/gokatarajesh/h2h-trivia/internal/metrics"
	"github.com/gokatarajesh/h2h-trivia/internal/question"
	"github.com/gokatarajesh/h2h-trivia/internal/server"
	ws "github.com/gokatarajesh/h2h-trivia/pkg/http/ws"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server) and
// the in-memory gameplay state.
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server

	engine   *match.Engine
	registry *matchmaking.Registry
	warmer   *question.Warmer

	baseCancel context.CancelFunc
	workers    conc.WaitGroup
}

// New bootstraps logger, Postgres, Redis, the gameplay core and the HTTP
// server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	pool, err := pgxpool.New(ctx, fmt.Sprintf("%s pool_max_conns=%d", cfg.Postgres.DSN(), cfg.Postgres.MaxConns))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	queries := sqlcgen.New(pool)
	questionRepo := repository.NewQuestionRepository(queries, cfg.Runtime.QuestionPoolLimit)
	matchRepo := repository.NewMatchRepository(queries)

	questionSvc := question.NewService(
		questionRepo,
		question.NewCache(redisClient, cfg.QuestionCache.TTL),
		question.ServiceOptions{AffinityPoolLimit: cfg.Runtime.QuestionPoolLimit},
		logger,
	)
	warmer := question.NewWarmer(questionSvc, cfg.QuestionCache.WarmInterval, cfg.Runtime.QuestionFetchTimeout, logger)

	var tokens *jwt.Manager
	if cfg.Security.JWTSecret != "" {
		tokens = jwt.NewManager(jwt.TokenConfig{
			AccessSecret: []byte(cfg.Security.JWTSecret),
			Issuer:       cfg.Security.JWTIssuer,
		})
		logger.Info().Msg("identity tokens enabled")
	} else {
		logger.Warn().Msg("JWT secret not configured; every player joins as a guest")
	}

	// Core gameplay services
	m := metrics.New(prometheus.DefaultRegisterer)
	clk := clock.Real()
	wsHub := ws.NewHub(logger)
	registry := matchmaking.NewRegistry(clk, matchmaking.Options{RoomTTL: cfg.Runtime.RoomTTL}, m, logger)
	engine := match.NewEngine(questionSvc, wsHub, matchRepo, clk, m, match.Options{
		QuestionCount:        cfg.Runtime.QuestionCount,
		RoundDuration:        cfg.Runtime.RoundDuration,
		RoundGrace:           cfg.Runtime.RoundGrace,
		PreMatchDelay:        cfg.Runtime.PreMatchDelay,
		InterRoundDelay:      cfg.Runtime.InterRoundDelay,
		QuestionFetchTimeout: cfg.Runtime.QuestionFetchTimeout,
		PersistTimeout:       cfg.Runtime.PersistTimeout,
	}, logger)

	baseCtx, baseCancel := context.WithCancel(context.Background())
	matchWSHandler := match.NewHandler(baseCtx, engine, registry, wsHub, match.HandlerOptions{
		Upgrader:      server.NewUpgrader(cfg.CORS.AllowedOrigins),
		Authenticator: auth.NewAuthenticator(tokens),
		PublicBaseURL: cfg.PublicBaseURL,
	}, logger)
	roomHTTPHandlers := match.NewHTTPHandlers(registry, cfg.PublicBaseURL, logger)

	apiServer := server.NewHTTPServer(cfg, logger,
		[]server.Dependency{server.PostgresDependency(pool), server.RedisDependency(redisClient)},
		server.Routes{
			MatchWS: matchWSHandler.HandleWebSocket,
			RoomQR:  roomHTTPHandlers.RoomQR,
		})

	return &Application{
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		redis:      redisClient,
		http:       apiServer,
		engine:     engine,
		registry:   registry,
		warmer:     warmer,
		baseCancel: baseCancel,
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	bgCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()
	a.startBackgroundWorkers(bgCtx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	cancelWorkers()
	a.baseCancel()
	if r := a.workers.WaitAndRecover(); r != nil {
		a.logger.Error().Str("panic", r.String()).Msg("background worker panicked")
	}

	a.engine.Shutdown()
	a.registry.Close()

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return runErr
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	a.workers.Go(func() {
		if err := a.warmer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Warn().Err(err).Msg("question cache warmer stopped")
		}
	})
}
