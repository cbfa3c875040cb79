package server

import (
	"context"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/h2h-trivia/internal/config"
	"github.com/gokatarajesh/h2h-trivia/internal/logging"
	httperrors "github.com/gokatarajesh/h2h-trivia/pkg/http/errors"
)

// Dependency is an upstream checked by /v1/ping.
type Dependency struct {
	Name string
	Ping func(ctx context.Context) error
}

func PostgresDependency(pool *pgxpool.Pool) Dependency {
	return Dependency{Name: "postgres", Ping: pool.Ping}
}

func RedisDependency(client *redis.Client) Dependency {
	return Dependency{Name: "redis", Ping: func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}}
}

// Routes are the gameplay handlers mounted next to the base routes.
type Routes struct {
	MatchWS http.HandlerFunc
	RoomQR  http.HandlerFunc
}

// NewUpgrader builds the websocket upgrader. Origins are matched exactly;
// "*" allows any origin and requests without an Origin header always pass.
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(allowedOrigins, r.Header.Get("Origin"))
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return true
	}
	return slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
}

// NewHTTPServer wires base routes (health, metrics, ping) and the gameplay
// routes for the API service.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, deps []Dependency, routes Routes) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/ping", func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.IntoContext(r.Context(), logger)
		if err := pingDependencies(ctx, deps); err != nil {
			reqLogger := logging.FromContext(ctx)
			reqLogger.Error().Err(err).Msg("dependency ping failed")
			httperrors.RespondBadGateway(w, httperrors.ErrCodeUpstreamError, "Upstream dependency unavailable")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	if routes.MatchWS != nil {
		mux.HandleFunc("GET /ws", routes.MatchWS)
	}
	if routes.RoomQR != nil {
		mux.Handle("GET /v1/rooms/{code}/qr", withCORS(cfg.CORS.AllowedOrigins, routes.RoomQR))
	}

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}
}

func withCORS(allowed []string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && originAllowed(allowed, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		next.ServeHTTP(w, r)
	})
}

func pingDependencies(ctx context.Context, deps []Dependency) error {
	for _, dep := range deps {
		if err := dep.Ping(ctx); err != nil {
			return &PingError{Dependency: dep.Name, Err: err}
		}
	}
	return nil
}

// PingError names the dependency that failed a health ping.
type PingError struct {
	Dependency string
	Err        error
}

func (e *PingError) Error() string { return e.Dependency + ": " + e.Err.Error() }

func (e *PingError) Unwrap() error { return e.Err }
