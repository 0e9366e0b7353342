package handler

import (
	"net/http"
	"time"

	"github.com/boddenberg/office-admin-go/internal/domain"
	"github.com/boddenberg/office-admin-go/internal/infra/observability"
	"github.com/boddenberg/office-admin-go/internal/infra/ratelimit"
	"github.com/boddenberg/office-admin-go/internal/port"
	"github.com/boddenberg/office-admin-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services groups what the router dispatches to.
type Services struct {
	Auth      *service.AuthService
	Contatos  *service.ContatoService
	Companies *service.CompanyService
	Processos *service.ProcessoService
	Produtos  *service.ProdutoService
	Health    port.HealthChecker
}

// Options tunes the middleware stack.
type Options struct {
	CORSAllowedOrigins []string
	MaxConcurrency     int
	// LoginLimiter throttles POST /login per client IP. Nil disables it.
	LoginLimiter *ratelimit.Store
	// TrustProxyHeaders takes the client IP from X-Forwarded-For and
	// friends. Only enable behind a proxy that overwrites them.
	TrustProxyHeaders bool
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svcs Services, opts Options, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	if opts.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(metrics.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	if len(opts.CORSAllowedOrigins) > 0 {
		r.Use(CORSMiddleware(opts.CORSAllowedOrigins))
	}
	if opts.MaxConcurrency > 0 {
		r.Use(BulkheadMiddleware(opts.MaxConcurrency, logger))
	}

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svcs.Health, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", metrics.Handler())
	r.Get("/metrics/summary", metricsSummaryHandler(metrics))

	// --- Login ---
	r.Group(func(r chi.Router) {
		if opts.LoginLimiter != nil {
			r.Use(ratelimit.Middleware(ratelimit.Options{
				Store: opts.LoginLimiter,
				Reject: func(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
					metrics.IncrRateLimited("/login")
					handleServiceError(w, &domain.ErrRateLimited{
						RetryAfterSeconds: ratelimit.RetryAfterSeconds(retryAfter),
					}, logger)
				},
			}))
		}
		r.Post("/login", loginHandler(svcs.Auth, logger))
	})

	// --- Protected resources ---
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(svcs.Auth, metrics, logger))

		r.Get("/contatos", listContatosHandler(svcs.Contatos, logger))
		r.Post("/contatos", createContatoHandler(svcs.Contatos, logger))
		r.Put("/contatos/{id}", updateContatoHandler(svcs.Contatos, logger))
		r.Delete("/contatos/{id}", deleteContatoHandler(svcs.Contatos, logger))

		r.Get("/companies", listCompaniesHandler(svcs.Companies, logger))
		r.Post("/companies", createCompanyHandler(svcs.Companies, logger))
		r.Put("/companies/{id}", updateCompanyHandler(svcs.Companies, logger))
		r.Delete("/companies/{id}", deleteCompanyHandler(svcs.Companies, logger))

		r.Get("/processos", listProcessosHandler(svcs.Processos, logger))
		r.Post("/processos", createProcessoHandler(svcs.Processos, logger))
		r.Put("/processos/{id}", updateProcessoHandler(svcs.Processos, logger))
		r.Delete("/processos/{id}", deleteProcessoHandler(svcs.Processos, logger))

		r.Get("/produtos", listProdutosHandler(svcs.Produtos, logger))
		r.Post("/produtos", createProdutoHandler(svcs.Produtos, logger))
		r.Get("/produtos/{id}", getProdutoHandler(svcs.Produtos, logger))
		r.Put("/produtos/{id}", updateProdutoHandler(svcs.Produtos, logger))
		r.Delete("/produtos/{id}", deleteProdutoHandler(svcs.Produtos, logger))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}

// ============================================================
// Health and metrics endpoints
// ============================================================

func healthzHandler(store port.HealthChecker, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)
		services := []domain.ServiceHealth{
			{Name: "office-admin-api", Status: "healthy", LastChecked: now},
		}

		overall := "healthy"
		status := http.StatusOK
		if store != nil {
			start := time.Now()
			err := store.Ping(r.Context())
			sh := domain.ServiceHealth{
				Name:        "store",
				Status:      "healthy",
				LatencyMs:   time.Since(start).Milliseconds(),
				LastChecked: now,
			}
			if err != nil {
				logger.Warn("healthz: store ping failed", zap.Error(err))
				sh.Status = "unhealthy"
				sh.Error = err.Error()
				overall = "unhealthy"
				status = http.StatusServiceUnavailable
			}
			services = append(services, sh)
		}

		writeJSON(w, status, domain.HealthStatus{Status: overall, Services: services})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func metricsSummaryHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Snapshot())
	}
}
