package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	HTTP     HTTP     `yaml:"http"`
	Log      Log      `yaml:"log"`
	Postgres Postgres `yaml:"postgres"`
	Redis    Redis    `yaml:"redis"`
	Cache    Cache    `yaml:"cache"`
	Source   Source   `yaml:"source"`
	Auth     Auth     `yaml:"auth"`
	Scan     Scan     `yaml:"scan"`
}

type HTTP struct {
	Port           string   `yaml:"port" env:"PORT" env-default:"8080"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" env-default:"http://localhost:5173,http://localhost:3000"`
}

type Log struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

type Postgres struct {
	Enabled  bool   `yaml:"enabled" env:"POSTGRES_ENABLED" env-default:"true"`
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER" env-default:"postgres"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD" env-default:"postgres"`
	DBName   string `yaml:"dbname" env:"POSTGRES_DB" env-default:"flightwatcher"`
	SSLMode  string `yaml:"sslmode" env:"POSTGRES_SSLMODE" env-default:"disable"`
	MaxConns int32  `yaml:"max_conns" env:"POSTGRES_MAX_CONNS" env-default:"10"`
}

// DSN builds a libpq-style connection URL for pgxpool.
func (p Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode)
}

type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Cache struct {
	// Backend is one of redis, postgres or none.
	Backend string        `yaml:"backend" env:"CACHE_BACKEND" env-default:"redis"`
	TTL     time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"1h"`
}

type Source struct {
	// Kind is either fares (the live fare API) or fixture (a local JSON file).
	Kind        string        `yaml:"kind" env:"SOURCE_KIND" env-default:"fares"`
	BaseURL     string        `yaml:"base_url" env:"SOURCE_BASE_URL" env-default:"https://services-api.ryanair.com"`
	FixturePath string        `yaml:"fixture_path" env:"SOURCE_FIXTURE_PATH" env-default:"testdata/fares.json"`
	Currency    string        `yaml:"currency" env:"SOURCE_CURRENCY" env-default:"EUR"`
	Timeout     time.Duration `yaml:"timeout" env:"SOURCE_TIMEOUT" env-default:"10s"`
	MaxRetries  int           `yaml:"max_retries" env:"SOURCE_MAX_RETRIES" env-default:"3"`
	RetryDelay  time.Duration `yaml:"retry_delay" env:"SOURCE_RETRY_DELAY" env-default:"200ms"`
	RatePerSec  float64       `yaml:"rate_per_sec" env:"SOURCE_RATE_PER_SEC" env-default:"5"`
	Burst       int           `yaml:"burst" env:"SOURCE_BURST" env-default:"10"`
	// BreakerTimeout is how long the breaker stays open before probing again.
	BreakerTimeout time.Duration `yaml:"breaker_timeout" env:"SOURCE_BREAKER_TIMEOUT" env-default:"1m"`
}

type Auth struct {
	JWTSecret         string        `yaml:"jwt_secret" env:"SUPABASE_JWT_SECRET"`
	AdminEmails       []string      `yaml:"admin_emails" env:"ADMIN_EMAILS"`
	AdminPasswordHash string        `yaml:"admin_password_hash" env:"ADMIN_PASSWORD_HASH"`
	AdminSessionTTL   time.Duration `yaml:"admin_session_ttl" env:"ADMIN_SESSION_TTL" env-default:"12h"`
	SecureCookie      bool          `yaml:"secure_cookie" env:"ADMIN_SECURE_COOKIE" env-default:"false"`
}

type Scan struct {
	DefaultAirport string `yaml:"default_airport" env:"SCAN_DEFAULT_AIRPORT" env-default:"BVA"`
	DefaultBudget  int    `yaml:"default_budget" env:"SCAN_DEFAULT_BUDGET" env-default:"200"`
	DefaultLimit   int    `yaml:"default_limit" env:"SCAN_DEFAULT_LIMIT" env-default:"50"`
}

// New reads config.yaml when present and lets environment variables override it.
func New() (*Config, error) {
	return Load("config.yaml")
}

func Load(path string) (*Config, error) {
	cfg := &Config{}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		// no file: env vars only
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return cfg, nil
}
