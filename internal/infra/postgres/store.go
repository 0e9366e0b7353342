package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/boddenberg/office-admin-go/internal/domain"
	"github.com/boddenberg/office-admin-go/internal/infra/observability"
	"github.com/boddenberg/office-admin-go/internal/infra/resilience"
	"github.com/boddenberg/office-admin-go/internal/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("infra/postgres")

var _ port.Store = (*Store)(nil)

// Store implements port.Store on PostgreSQL. Every query runs behind a
// circuit breaker.
type Store struct {
	pool    *pgxpool.Pool
	cb      *gobreaker.CircuitBreaker
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewStore wraps an open pool.
func NewStore(pool *pgxpool.Pool, metrics *observability.Metrics, logger *zap.Logger) *Store {
	return &Store{
		pool:    pool,
		cb:      resilience.NewCircuitBreaker("postgres"),
		metrics: metrics,
		logger:  logger,
	}
}

// Ping checks connectivity for /healthz.
func (s *Store) Ping(ctx context.Context) error {
	return s.run(ctx, "Ping", func(ctx context.Context) error {
		return s.pool.Ping(ctx)
	})
}

// run executes fn inside a span and the circuit breaker. Domain errors
// pass through unchanged; anything else is logged and counted.
func (s *Store) run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "Postgres."+op)
	defer span.End()

	_, err := s.cb.Execute(func() (any, error) {
		return nil, mapPostgresError(fn(ctx))
	})
	switch {
	case err == nil:
		return nil
	case resilience.IsBreakerOpen(err):
		return &domain.ErrCircuitOpen{Service: "postgres"}
	case resilience.IsPermanent(err):
		return err
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, op)
	s.metrics.IncrStoreError("postgres")
	s.logger.Error("postgres query failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("postgres %s: %w", op, err)
}

// execOne runs a mutation that must touch exactly one row.
func (s *Store) execOne(ctx context.Context, sql string, notFound error, args ...any) error {
	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return resilience.Permanent(notFound)
	}
	return nil
}

// getOne runs a single-row lookup and reports a missing row as (false, nil).
func getOne(row pgx.Row, scan func(pgx.Row) error) (bool, error) {
	if err := scan(row); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// scopeClause restricts a query to the scope's rows. It expects the scope
// arguments at positions $1 (all) and $2 (owner).
const scopeClause = `($1::boolean OR criado_por = $2)`

func scopeArgs(scope domain.Scope) []any {
	return []any{scope.All, scope.OwnerID}
}
