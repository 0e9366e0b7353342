package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/office-admin-go/internal/handler"
	"github.com/boddenberg/office-admin-go/internal/infra/observability"
	"github.com/boddenberg/office-admin-go/internal/infra/ratelimit"
	"github.com/boddenberg/office-admin-go/internal/service"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const portFlag = "port"

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
	cobraflags.RegisterMap(cmd, map[string]cobraflags.Flag{
		portFlag: &cobraflags.StringFlag{
			Name:  portFlag,
			Value: "",
			Usage: "HTTP listen port (default 8080, or PORT)",
		},
	})
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("storage_backend", cfg.StorageBackend),
		zap.String("cache_backend", cfg.CacheBackend),
		zap.String("auth_mode", string(cfg.AuthMode)),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Tracing ---
	shutdownTracer, err := observability.InitTracer(cfg.OTLPEndpoint, serviceName)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer shutdownTracer(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Store and cache ---
	store, closeStore, err := openStore(ctx, cfg, metrics, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	principals, closeCache, err := openPrincipalCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	// --- Services ---
	authSvc := newAuthService(cfg, store, principals, metrics, logger)
	if cfg.BootstrapAdminUsername != "" {
		created, err := authSvc.EnsureSuperuser(ctx, cfg.BootstrapAdminUsername, cfg.BootstrapAdminPassword)
		if err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		if created {
			logger.Info("bootstrap admin created", zap.String("username", cfg.BootstrapAdminUsername))
		}
	}

	svcs := handler.Services{
		Auth:      authSvc,
		Contatos:  service.NewContatoService(store, metrics, logger),
		Companies: service.NewCompanyService(store, store, metrics, logger),
		Processos: service.NewProcessoService(store, metrics, logger),
		Produtos:  service.NewProdutoService(store, metrics, logger),
		Health:    store,
	}

	loginLimiter := ratelimit.NewStore(cfg.LoginRateRPS, cfg.LoginRateBurst)

	// --- Router ---
	router := handler.NewRouter(svcs, handler.Options{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		MaxConcurrency:     cfg.MaxConcurrency,
		LoginLimiter:       loginLimiter,
		TrustProxyHeaders:  cfg.TrustProxyHeaders,
	}, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	loginLimiter.StartJanitor(gctx)

	g.Go(func() error {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	// --- Graceful shutdown ---
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}
