package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	Server     Server           `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Identity   IdentityConfig   `mapstructure:"identity"`
	Search     SearchConfig     `mapstructure:"search"`
	Federation FederationConfig `mapstructure:"federation"`
	Auth       AuthConfig       `mapstructure:"auth"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Audit      AuditConfig      `mapstructure:"audit"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout covers remote actor discovery, so keep it above
	// federation.request_timeout.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RedisConfig configures the client shared by the index, identity store and
// group oracle.
type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type PostgresConfig struct {
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// Identity backends.
const (
	IdentityBackendRedis    = "redis"
	IdentityBackendPostgres = "postgres"
	IdentityBackendMemory   = "memory"
)

// IdentityConfig selects where full identity records are hydrated from.
type IdentityConfig struct {
	Backend string `mapstructure:"backend"`
	// SeedDemo loads demo identities into the in-memory backend.
	SeedDemo bool `mapstructure:"seed_demo"`
}

// SearchConfig carries page sizing and result visibility defaults.
type SearchConfig struct {
	ResultsPerPage int `mapstructure:"results_per_page"`
	// MaxResultsPerPage bounds caller-supplied page sizes.
	MaxResultsPerPage int `mapstructure:"max_results_per_page"`
	// HiddenUIDs never appear in results.
	HiddenUIDs []string `mapstructure:"hidden_uids"`
}

// FederationConfig controls remote actor resolution.
type FederationConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// BaseURL is this instance's public URL; URIs on its host resolve locally.
	BaseURL          string        `mapstructure:"base_url"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
	ActorCacheTTL    time.Duration `mapstructure:"actor_cache_ttl"`
	FailureThreshold int           `mapstructure:"failure_threshold"`
	BreakerCooldown  time.Duration `mapstructure:"breaker_cooldown"`
}

type AuthConfig struct {
	JWTSigningKey string `mapstructure:"jwt_signing_key"`
	Issuer        string `mapstructure:"issuer"`
	Audience      string `mapstructure:"audience"`
}

// RateLimitConfig bounds search traffic per client IP, or per requester when
// the caller is authenticated.
type RateLimitConfig struct {
	Enabled               bool          `mapstructure:"enabled"`
	AnonymousRequests     int           `mapstructure:"anonymous_requests"`
	AuthenticatedRequests int           `mapstructure:"authenticated_requests"`
	Window                time.Duration `mapstructure:"window"`
	// FailureThreshold consecutive store errors switch checks to the
	// in-memory fallback for BreakerCooldown.
	FailureThreshold int           `mapstructure:"failure_threshold"`
	BreakerCooldown  time.Duration `mapstructure:"breaker_cooldown"`
}

// AuditConfig controls the trail of ip and uid lookups.
type AuditConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	BufferSize    int           `mapstructure:"buffer_size"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
	// KafkaBrokers, when set, mirrors every batch onto KafkaTopic.
	KafkaBrokers []string `mapstructure:"kafka_brokers"`
	KafkaTopic   string   `mapstructure:"kafka_topic"`
}

// Load reads configuration from an optional config.yaml in configPath (or the
// working directory) and from environment variables. Overrides run before
// validation.
func Load(configPath string, overrides ...func(*Config)) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	for _, override := range overrides {
		override(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.max_open_conns", 10)

	v.SetDefault("identity.backend", IdentityBackendRedis)
	v.SetDefault("identity.seed_demo", false)

	v.SetDefault("search.results_per_page", 50)
	v.SetDefault("search.max_results_per_page", 500)

	v.SetDefault("federation.enabled", false)
	v.SetDefault("federation.base_url", "http://localhost:8080")
	v.SetDefault("federation.request_timeout", "5s")
	v.SetDefault("federation.actor_cache_ttl", "24h")
	v.SetDefault("federation.failure_threshold", 5)
	v.SetDefault("federation.breaker_cooldown", "30s")

	// Use a default for development - should be overridden in production
	v.SetDefault("auth.jwt_signing_key", "dev-secret-key-change-in-production")
	v.SetDefault("auth.issuer", "usersearch")
	v.SetDefault("auth.audience", "usersearch")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.anonymous_requests", 60)
	v.SetDefault("rate_limit.authenticated_requests", 300)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("rate_limit.failure_threshold", 3)
	v.SetDefault("rate_limit.breaker_cooldown", "15s")

	v.SetDefault("audit.enabled", true)
	v.SetDefault("audit.buffer_size", 1024)
	v.SetDefault("audit.flush_interval", "2s")
	v.SetDefault("audit.kafka_topic", "usersearch.audit")
}

func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("server.addr", "USERSEARCH_ADDR")
	_ = v.BindEnv("redis.url", "REDIS_URL")
	_ = v.BindEnv("postgres.dsn", "DATABASE_URL")
	_ = v.BindEnv("identity.backend", "IDENTITY_BACKEND")
	_ = v.BindEnv("federation.enabled", "ACTIVITYPUB_ENABLED")
	_ = v.BindEnv("auth.jwt_signing_key", "JWT_SIGNING_KEY")
	_ = v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	_ = v.BindEnv("audit.kafka_brokers", "KAFKA_BROKERS")
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if c.Search.ResultsPerPage <= 0 {
		return fmt.Errorf("search.results_per_page must be positive, got %d", c.Search.ResultsPerPage)
	}
	if c.Search.MaxResultsPerPage < c.Search.ResultsPerPage {
		return fmt.Errorf("search.max_results_per_page (%d) must be >= results_per_page (%d)",
			c.Search.MaxResultsPerPage, c.Search.ResultsPerPage)
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.AnonymousRequests <= 0 || c.RateLimit.AuthenticatedRequests <= 0 {
			return fmt.Errorf("rate_limit request budgets must be positive")
		}
		if c.RateLimit.Window <= 0 {
			return fmt.Errorf("rate_limit.window must be positive, got %s", c.RateLimit.Window)
		}
	}
	switch c.Identity.Backend {
	case IdentityBackendRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("identity.backend=redis requires redis.url")
		}
	case IdentityBackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("identity.backend=postgres requires postgres.dsn")
		}
		if c.Redis.URL == "" {
			return fmt.Errorf("identity.backend=postgres still requires redis.url for the index")
		}
	case IdentityBackendMemory:
	default:
		return fmt.Errorf("unknown identity.backend %q", c.Identity.Backend)
	}
	return nil
}
