package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"h2h-trivia"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	PublicBaseURL           string        `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:3000"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres      Postgres
	Redis         Redis
	Security      Security
	Runtime       Runtime
	QuestionCache QuestionCache
	CORS          CORS
}

// Postgres captures connection info for the SQL database.
type Postgres struct {
	Host     string `env:"PG_HOST,notEmpty"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER,notEmpty"`
	Password string `env:"PG_PASSWORD,notEmpty"`
	Database string `env:"PG_DATABASE,notEmpty"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
	MaxConns int    `env:"PG_MAX_CONNS" envDefault:"10"`
}

// DSN renders the keyword/value connection string understood by pgx.
func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// Redis holds question cache connection settings.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Security stores secrets for verifying player identity tokens.
// An empty secret means every connection plays as a guest.
type Security struct {
	JWTSecret string `env:"JWT_SECRET" envDefault:""`
	JWTIssuer string `env:"JWT_ISSUER" envDefault:"h2h-trivia"`
}

// Runtime groups gameplay timings and sizes.
type Runtime struct {
	QuestionCount        int           `env:"QUESTION_COUNT" envDefault:"10"`
	RoundDuration        time.Duration `env:"ROUND_DURATION" envDefault:"10s"`
	RoundGrace           time.Duration `env:"ROUND_GRACE" envDefault:"1s"`
	PreMatchDelay        time.Duration `env:"PRE_MATCH_DELAY" envDefault:"3s"`
	InterRoundDelay      time.Duration `env:"INTER_ROUND_DELAY" envDefault:"3s"`
	RoomTTL              time.Duration `env:"ROOM_TTL" envDefault:"5m"`
	QuestionFetchTimeout time.Duration `env:"QUESTION_FETCH_TIMEOUT" envDefault:"4s"`
	PersistTimeout       time.Duration `env:"PERSIST_TIMEOUT" envDefault:"5s"`
	QuestionPoolLimit    int           `env:"QUESTION_POOL_LIMIT" envDefault:"500"`
}

// QuestionCache governs the Redis-backed question list cache.
type QuestionCache struct {
	TTL          time.Duration `env:"QUESTION_CACHE_TTL" envDefault:"5m"`
	WarmInterval time.Duration `env:"QUESTION_CACHE_WARM_INTERVAL" envDefault:"4m"`
}

// CORS holds Cross-Origin Resource Sharing configuration. AllowedOrigins also
// gates websocket upgrades; "*" allows any origin.
type CORS struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *App) validate() error {
	if c.Runtime.QuestionCount <= 0 {
		return fmt.Errorf("QUESTION_COUNT must be positive, got %d", c.Runtime.QuestionCount)
	}
	if c.Runtime.RoundDuration <= 0 {
		return fmt.Errorf("ROUND_DURATION must be positive, got %s", c.Runtime.RoundDuration)
	}
	if c.Runtime.RoundGrace < 0 || c.Runtime.PreMatchDelay < 0 || c.Runtime.InterRoundDelay < 0 {
		return fmt.Errorf("round delays must not be negative")
	}
	if c.Runtime.RoomTTL <= 0 {
		return fmt.Errorf("ROOM_TTL must be positive, got %s", c.Runtime.RoomTTL)
	}
	return nil
}
