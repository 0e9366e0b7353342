package postgres

import (
	"errors"
	"fmt"

	"github.com/boddenberg/office-admin-go/internal/domain"
	"github.com/boddenberg/office-admin-go/internal/infra/resilience"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// mapPostgresError maps PostgreSQL errors to domain errors. Constraint
// violations come back wrapped with resilience.Permanent so they are not
// retried or counted against the circuit breaker.
func mapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return resilience.Permanent(domain.ConflictFromConstraint(pgErr.ConstraintName))

	case pgerrcode.ForeignKeyViolation:
		return resilience.Permanent(domain.NotFoundFromConstraint(pgErr.ConstraintName))

	case pgerrcode.NotNullViolation, pgerrcode.CheckViolation,
		pgerrcode.StringDataRightTruncationDataException, pgerrcode.NumericValueOutOfRange:
		return resilience.Permanent(&domain.ErrValidation{Field: pgErr.ColumnName, Message: pgErr.Message})

	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return fmt.Errorf("transaction conflict (retryable): %w", err)

	case pgerrcode.QueryCanceled:
		return fmt.Errorf("query canceled: %w", err)

	default:
		return fmt.Errorf("postgres error [%s]: %s (detail: %s): %w",
			pgErr.Code, pgErr.Message, pgErr.Detail, err)
	}
}
