package handler

import (
	"context"
	"net/http"

	"github.com/boddenberg/office-admin-go/internal/domain"
	"github.com/boddenberg/office-admin-go/internal/infra/observability"
	"github.com/boddenberg/office-admin-go/internal/infra/resilience"
	"github.com/boddenberg/office-admin-go/internal/service"

	"github.com/rs/cors"
	"go.uber.org/zap"
)

type contextKey string

const principalKey contextKey = "principal"

// AuthMiddleware resolves the principal from X-API-Key or a Bearer token,
// depending on the configured mode, and injects it into the context.
func AuthMiddleware(authSvc *service.AuthService, metrics *observability.Metrics, logger *zap.Logger) func(http.Handler) http.Handler {
	mode := authSvc.Mode()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				user *domain.User
				err  error
			)

			apiKey := r.Header.Get("X-API-Key")
			bearer := r.Header.Get("Authorization")
			switch {
			case mode.AcceptsAPIKey() && apiKey != "":
				user, err = authSvc.AuthenticateSecret(r.Context(), apiKey)
			case mode.AcceptsBearer() && bearer != "":
				user, err = authSvc.AuthenticateBearer(r.Context(), bearer)
			default:
				metrics.IncrAuthFailure("missing_credentials")
				err = &domain.ErrUnauthorized{}
			}
			if err != nil {
				logger.Warn("auth: rejected",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				handleServiceError(w, err, logger)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext returns the authenticated user, or nil.
func PrincipalFromContext(ctx context.Context) *domain.User {
	u, _ := ctx.Value(principalKey).(*domain.User)
	return u
}

// BulkheadMiddleware caps in-flight requests. Requests that cannot get a
// slot before their context ends get 503.
func BulkheadMiddleware(maxConcurrency int, logger *zap.Logger) func(http.Handler) http.Handler {
	bh := resilience.NewBulkhead(maxConcurrency)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := bh.Acquire(r.Context()); err != nil {
				logger.Warn("bulkhead: no slot", zap.Int("in_flight", bh.InFlight()))
				writeError(w, http.StatusServiceUnavailable, "Service unavailable")
				return
			}
			defer bh.Release()
			next.ServeHTTP(w, r)
		})
	}
}

// CORSMiddleware allows the configured browser origins.
func CORSMiddleware(origins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	})
	return c.Handler
}
