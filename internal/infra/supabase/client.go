// Package supabase implements the stores on top of Supabase's PostgREST
// API. The Supabase database carries the same schema as the postgres
// migrations, so uniqueness and cascades are enforced server side.
package supabase

import (
	"context"
	"errors"
	"net/http"

	"github.com/boddenberg/office-admin-go/internal/domain"
	"github.com/boddenberg/office-admin-go/internal/infra/observability"
	"github.com/boddenberg/office-admin-go/internal/infra/resilience"
	"github.com/boddenberg/office-admin-go/internal/port"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("supabase")

var _ port.Store = (*Client)(nil)

// Client wraps HTTP calls to Supabase PostgREST API.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	serviceRoleKey string
	cb             *gobreaker.CircuitBreaker
	cfg            resilience.Config
	metrics        *observability.Metrics
	logger         *zap.Logger
}

// NewClient creates a Supabase client.
func NewClient(httpClient *http.Client, baseURL, apiKey, serviceRoleKey string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, metrics *observability.Metrics, logger *zap.Logger) *Client {
	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         apiKey,
		serviceRoleKey: serviceRoleKey,
		cb:             cb,
		cfg:            cfg,
		metrics:        metrics,
		logger:         logger,
	}
}

// Ping checks that PostgREST answers for /healthz.
func (c *Client) Ping(ctx context.Context) error {
	return c.call(ctx, "Ping", func(ctx context.Context) error {
		_, err := c.doGet(ctx, "system_user?select=id&limit=1")
		return err
	})
}

// call runs fn with retry inside the circuit breaker. Domain errors come
// back as they are; transport failures become ErrExternalService.
func (c *Client) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "Supabase."+op)
	defer span.End()

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			return fn(ctx)
		})
	})
	if err == nil {
		return nil
	}
	if resilience.IsBreakerOpen(err) {
		return &domain.ErrCircuitOpen{Service: "supabase"}
	}
	var apiErr *apiError
	if resilience.IsPermanent(err) && !errors.As(err, &apiErr) {
		return err
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, op)
	c.metrics.IncrStoreError("supabase")
	c.logger.Error("supabase: call failed", zap.String("op", op), zap.Error(err))

	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.ErrTimeout{Operation: "supabase/" + op}
	}
	return &domain.ErrExternalService{Service: "supabase/" + op, Err: err}
}
