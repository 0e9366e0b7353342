// Package config loads the service configuration from environment
// variables, an optional .env file and CLI flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/boddenberg/office-admin-go/internal/domain"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Storage and cache backends.
const (
	BackendPostgres = "postgres"
	BackendSupabase = "supabase"
	BackendMemory   = "memory"

	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config holds all application configuration.
// Precedence: flags, then environment, then the .env file, then defaults.
type Config struct {
	// Server
	Port            int
	LogLevel        string
	ShutdownTimeout time.Duration

	// Storage
	StorageBackend string
	DatabaseURL    string
	DBMaxConns     int32
	DBMinConns     int32
	AutoMigrate    bool

	// Supabase
	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Auth
	AuthMode                domain.AuthMode
	JWTSecret               string
	JWTAccessTTL            time.Duration
	AllowPlaintextPasswords bool

	// Cache
	CacheBackend  string
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Login rate limit
	LoginRateRPS   float64
	LoginRateBurst int

	CORSAllowedOrigins []string
	TrustProxyHeaders  bool

	// Superuser created by serve when the username is not taken.
	BootstrapAdminUsername string
	BootstrapAdminPassword string

	// Observability
	OTLPEndpoint string
}

// flagKeys maps CLI flag names to configuration keys.
var flagKeys = map[string]string{
	"port":         "port",
	"log-level":    "log_level",
	"database-url": "database_url",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("shutdown_timeout", 15*time.Second)

	v.SetDefault("storage_backend", BackendPostgres)
	v.SetDefault("database_url", "")
	v.SetDefault("db_max_conns", 10)
	v.SetDefault("db_min_conns", 1)
	v.SetDefault("auto_migrate", false)

	v.SetDefault("supabase_url", "")
	v.SetDefault("supabase_anon_key", "")
	v.SetDefault("supabase_service_role_key", "")

	v.SetDefault("http_timeout", 10*time.Second)

	v.SetDefault("max_retries", 3)
	v.SetDefault("initial_backoff", 100*time.Millisecond)
	v.SetDefault("max_concurrency", 50)

	v.SetDefault("auth_mode", string(domain.AuthModeAPIKey))
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_access_ttl", time.Hour)
	v.SetDefault("allow_plaintext_passwords", false)

	v.SetDefault("cache_backend", CacheMemory)
	v.SetDefault("cache_ttl", time.Minute)
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	v.SetDefault("login_rate_rps", 1.0)
	v.SetDefault("login_rate_burst", 5)

	v.SetDefault("cors_allowed_origins", "")
	v.SetDefault("trust_proxy_headers", false)

	v.SetDefault("bootstrap_admin_username", "")
	v.SetDefault("bootstrap_admin_password", "")

	v.SetDefault("otel_exporter_otlp_endpoint", "")
}

// Load reads the configuration. envFile may be empty; a missing file is
// not an error. flags may be nil.
func Load(envFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		Port:            v.GetInt("port"),
		LogLevel:        v.GetString("log_level"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),

		StorageBackend: strings.ToLower(v.GetString("storage_backend")),
		DatabaseURL:    v.GetString("database_url"),
		DBMaxConns:     v.GetInt32("db_max_conns"),
		DBMinConns:     v.GetInt32("db_min_conns"),
		AutoMigrate:    v.GetBool("auto_migrate"),

		SupabaseURL:        v.GetString("supabase_url"),
		SupabaseAnonKey:    v.GetString("supabase_anon_key"),
		SupabaseServiceKey: v.GetString("supabase_service_role_key"),

		HTTPTimeout: v.GetDuration("http_timeout"),

		MaxRetries:     v.GetInt("max_retries"),
		InitialBackoff: v.GetDuration("initial_backoff"),
		MaxConcurrency: v.GetInt("max_concurrency"),

		AuthMode:                domain.AuthMode(strings.ToLower(v.GetString("auth_mode"))),
		JWTSecret:               v.GetString("jwt_secret"),
		JWTAccessTTL:            v.GetDuration("jwt_access_ttl"),
		AllowPlaintextPasswords: v.GetBool("allow_plaintext_passwords"),

		CacheBackend:  strings.ToLower(v.GetString("cache_backend")),
		CacheTTL:      v.GetDuration("cache_ttl"),
		RedisAddr:     v.GetString("redis_addr"),
		RedisPassword: v.GetString("redis_password"),
		RedisDB:       v.GetInt("redis_db"),

		LoginRateRPS:   v.GetFloat64("login_rate_rps"),
		LoginRateBurst: v.GetInt("login_rate_burst"),

		CORSAllowedOrigins: splitList(v.GetString("cors_allowed_origins")),
		TrustProxyHeaders:  v.GetBool("trust_proxy_headers"),

		BootstrapAdminUsername: v.GetString("bootstrap_admin_username"),
		BootstrapAdminPassword: v.GetString("bootstrap_admin_password"),

		OTLPEndpoint: v.GetString("otel_exporter_otlp_endpoint"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected backends have what they need.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres backend")
		}
	case BackendSupabase:
		if c.SupabaseURL == "" {
			return errors.New("SUPABASE_URL is required for the supabase backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	if !c.AuthMode.Valid() {
		return fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode)
	}
	if c.AuthMode.AcceptsBearer() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required for AUTH_MODE=%s", c.AuthMode)
	}

	switch c.CacheBackend {
	case CacheMemory, CacheNone:
	case CacheRedis:
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required for CACHE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend)
	}

	if (c.BootstrapAdminUsername == "") != (c.BootstrapAdminPassword == "") {
		return errors.New("BOOTSTRAP_ADMIN_USERNAME and BOOTSTRAP_ADMIN_PASSWORD must be set together")
	}

	if c.MaxConcurrency <= 0 {
		return fmt.Errorf("MAX_CONCURRENCY must be positive, got %d", c.MaxConcurrency)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
