package postgres

import (
	"errors"
	"testing"

	"github.com/boddenberg/office-admin-go/internal/domain"
	"github.com/boddenberg/office-admin-go/internal/infra/resilience"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestMapPostgresError_UniqueViolation(t *testing.T) {
	err := mapPostgresError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "company_cnpj_key"})

	require.True(t, resilience.IsPermanent(err))
	var conflict *domain.ErrConflict
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, domain.MsgCompanyExists, conflict.Message)
}

func TestMapPostgresError_ForeignKeyViolation(t *testing.T) {
	err := mapPostgresError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "company_contato_id_fkey"})

	var nf *domain.ErrNotFound
	require.ErrorAs(t, err, &nf)
	require.Equal(t, domain.MsgContatoNotFound, nf.Error())
}

func TestMapPostgresError_TransientStaysRetryable(t *testing.T) {
	err := mapPostgresError(&pgconn.PgError{Code: pgerrcode.SerializationFailure})
	require.Error(t, err)
	require.False(t, resilience.IsPermanent(err))

	plain := errors.New("connection reset")
	require.Equal(t, plain, mapPostgresError(plain))
	require.NoError(t, mapPostgresError(nil))
}

func TestPoolConfig_Defaults(t *testing.T) {
	cfg := &PoolConfig{ConnString: "postgres://localhost/db"}
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())
	require.EqualValues(t, 10, cfg.MaxConns)
	require.EqualValues(t, 1, cfg.MinConns)

	bad := &PoolConfig{ConnString: "x", MaxConns: 1, MinConns: 2}
	require.Error(t, bad.Validate())
	require.Error(t, (&PoolConfig{}).Validate())
}

func TestMigrations_Embedded(t *testing.T) {
	fsys, err := Migrations()
	require.NoError(t, err)

	up, err := fsys.Open("0000000001_initial_schema.up.sql")
	require.NoError(t, err)
	require.NoError(t, up.Close())

	down, err := fsys.Open("0000000001_initial_schema.down.sql")
	require.NoError(t, err)
	require.NoError(t, down.Close())
}
