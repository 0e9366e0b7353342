package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/boddenberg/office-admin-go/internal/config"
	"github.com/boddenberg/office-admin-go/internal/domain"
	"github.com/boddenberg/office-admin-go/internal/infra/cache"
	"github.com/boddenberg/office-admin-go/internal/infra/memory"
	"github.com/boddenberg/office-admin-go/internal/infra/observability"
	"github.com/boddenberg/office-admin-go/internal/infra/postgres"
	"github.com/boddenberg/office-admin-go/internal/infra/resilience"
	"github.com/boddenberg/office-admin-go/internal/infra/supabase"
	"github.com/boddenberg/office-admin-go/internal/port"
	"github.com/boddenberg/office-admin-go/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const serviceName = "office-admin-api"

// Global flags, bound to the configuration keys of the same name.
const (
	envFileFlag     = "env-file"
	logLevelFlag    = "log-level"
	databaseURLFlag = "database-url"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "officeadmin",
		Short:         "Office administration API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.String(envFileFlag, ".env", "Optional dotenv file; environment variables take precedence")
	pf.String(logLevelFlag, "", "Log level (debug, info, warn, error)")
	pf.String(databaseURLFlag, "", "PostgreSQL connection string")

	root.AddCommand(newServeCommand())
	root.AddCommand(newMigrateCommand())
	root.AddCommand(newUsersCommand())
	return root
}

// bootstrap loads the configuration and builds the logger every
// subcommand starts from.
func bootstrap(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	envFile, _ := cmd.Flags().GetString(envFileFlag)
	cfg, err := config.Load(envFile, cmd.Flags())
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, logger, nil
}

// openStore connects the configured storage backend. The returned func
// releases its resources.
func openStore(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *zap.Logger) (port.Store, func(), error) {
	retry := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}

	switch cfg.StorageBackend {
	case config.BackendPostgres:
		if cfg.AutoMigrate {
			logger.Info("applying migrations")
			if err := postgres.MigrateUp(ctx, cfg.DatabaseURL); err != nil {
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		pool, err := postgres.Connect(ctx, &postgres.PoolConfig{
			ConnString: cfg.DatabaseURL,
			MaxConns:   cfg.DBMaxConns,
			MinConns:   cfg.DBMinConns,
		}, retry)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using postgres store", zap.Int32("max_conns", cfg.DBMaxConns))
		return postgres.NewStore(pool, metrics, logger), pool.Close, nil

	case config.BackendSupabase:
		logger.Info("using supabase store", zap.String("supabase_url", cfg.SupabaseURL))
		client := supabase.NewClient(
			&http.Client{Timeout: cfg.HTTPTimeout},
			cfg.SupabaseURL,
			cfg.SupabaseAnonKey,
			cfg.SupabaseServiceKey,
			resilience.NewCircuitBreaker("supabase"),
			retry,
			metrics,
			logger,
		)
		return client, func() {}, nil

	default:
		logger.Warn("using in-memory store; data is lost on exit")
		return memory.New(), func() {}, nil
	}
}

// openPrincipalCache builds the cache AuthService keeps authenticated
// users in.
func openPrincipalCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (port.Cache[domain.User], func(), error) {
	switch cfg.CacheBackend {
	case config.CacheRedis:
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		logger.Info("using redis principal cache", zap.String("addr", cfg.RedisAddr))
		return cache.NewRedis[domain.User](rdb, "officeadmin:principal", cfg.CacheTTL, logger), func() { _ = rdb.Close() }, nil
	case config.CacheNone:
		return cache.Noop[domain.User]{}, func() {}, nil
	default:
		c := cache.New[domain.User](cfg.CacheTTL)
		return c, func() { _ = c.Close() }, nil
	}
}

func newAuthService(cfg *config.Config, store port.UserStore, principals port.Cache[domain.User], metrics *observability.Metrics, logger *zap.Logger) *service.AuthService {
	return service.NewAuthService(store, principals, service.AuthConfig{
		Mode:                    cfg.AuthMode,
		JWTSecret:               cfg.JWTSecret,
		AccessTTL:               cfg.JWTAccessTTL,
		AllowPlaintextPasswords: cfg.AllowPlaintextPasswords,
	}, metrics, logger)
}

// commandTimeout bounds the one-shot maintenance commands.
const commandTimeout = 2 * time.Minute
