//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/boddenberg/office-admin-go/internal/domain"
	"github.com/boddenberg/office-admin-go/internal/infra/observability"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// setupPostgres starts a PostgreSQL container and applies the migrations.
func setupPostgres(t *testing.T, ctx context.Context) *Store {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:17-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connString := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())
	require.NoError(t, MigrateUp(ctx, connString))

	pool, err := NewPool(ctx, &PoolConfig{ConnString: connString, MaxConns: 5})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return NewStore(pool, observability.NewMetrics(), zap.NewNop())
}

func seedUser(t *testing.T, ctx context.Context, s *Store, username string, superuser bool) *domain.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	u := &domain.User{
		ID: domain.NewID(), Username: username, Password: "hash", Secret: domain.NewID(),
		IsActive: true, IsSuperuser: superuser, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.CreateUser(ctx, u))
	return u
}

func TestIntegration_PostgresStore(t *testing.T) {
	ctx := context.Background()
	s := setupPostgres(t, ctx)
	require.NoError(t, s.Ping(ctx))

	u1 := seedUser(t, ctx, s, "u1", false)
	u2 := seedUser(t, ctx, s, "u2", false)
	admin := seedUser(t, ctx, s, "admin", true)

	t.Run("user lookups", func(t *testing.T) {
		got, err := s.GetUserBySecret(ctx, u1.Secret)
		require.NoError(t, err)
		require.Equal(t, u1.ID, got.ID)

		missing, err := s.GetUserByUsername(ctx, "nobody")
		require.NoError(t, err)
		require.Nil(t, missing)

		err = s.CreateUser(ctx, &domain.User{ID: domain.NewID(), Username: "u1", Secret: domain.NewID()})
		var conflict *domain.ErrConflict
		require.ErrorAs(t, err, &conflict)
	})

	c1 := &domain.Contato{ID: domain.NewID(), Nome: "c1", EmailResponsavel: "a@x.com", CriadoPor: u1.ID}

	t.Run("contato uniqueness and scope", func(t *testing.T) {
		require.NoError(t, s.CreateContato(ctx, c1))

		dup := &domain.Contato{ID: domain.NewID(), Nome: "dup", EmailResponsavel: "a@x.com", CriadoPor: u2.ID}
		var conflict *domain.ErrConflict
		require.ErrorAs(t, s.CreateContato(ctx, dup), &conflict)
		require.Equal(t, domain.MsgContatoExists, conflict.Message)

		upper := &domain.Contato{ID: domain.NewID(), Nome: "upper", EmailResponsavel: "A@X.com", CriadoPor: u2.ID}
		require.ErrorAs(t, s.CreateContato(ctx, upper), &conflict)
		require.Equal(t, domain.MsgContatoExists, conflict.Message)

		blankA := &domain.Contato{ID: domain.NewID(), Nome: "b1", CriadoPor: u2.ID}
		blankB := &domain.Contato{ID: domain.NewID(), Nome: "b2", CriadoPor: u2.ID}
		require.NoError(t, s.CreateContato(ctx, blankA))
		require.NoError(t, s.CreateContato(ctx, blankB))

		mine, err := s.ListContatos(ctx, domain.ScopeOf(u1))
		require.NoError(t, err)
		require.Len(t, mine, 1)

		all, err := s.ListContatos(ctx, domain.ScopeOf(admin))
		require.NoError(t, err)
		require.Len(t, all, 3)

		hidden, err := s.GetContato(ctx, domain.ScopeOf(u2), c1.ID)
		require.NoError(t, err)
		require.Nil(t, hidden)
	})

	t.Run("company cascade", func(t *testing.T) {
		now := time.Now().UTC()
		co := &domain.Company{
			ID: domain.NewID(), CNPJ: "12.345.678/0001-90", Ativo: true, ContatoID: c1.ID,
			CriadoEm: now, AtualizadoEm: now, CriadoPor: u1.ID,
		}
		require.NoError(t, s.CreateCompany(ctx, co))

		orphan := &domain.Company{ID: domain.NewID(), CNPJ: "other", ContatoID: "missing", CriadoPor: u1.ID}
		var nf *domain.ErrNotFound
		require.ErrorAs(t, s.CreateCompany(ctx, orphan), &nf)

		require.NoError(t, s.DeleteContato(ctx, c1.ID))
		companies, err := s.ListCompanies(ctx, domain.ScopeOf(u1))
		require.NoError(t, err)
		require.Empty(t, companies)

		require.ErrorAs(t, s.DeleteContato(ctx, c1.ID), &nf)
	})

	t.Run("produto decimal round trip", func(t *testing.T) {
		now := time.Now().UTC()
		p := &domain.Produto{
			ID: domain.NewID(), Nome: "Consultoria", Preco: decimal.RequireFromString("1500.50"),
			Quantidade: 2, CriadoEm: now, AtualizadoEm: now, CriadoPor: u2.ID,
		}
		require.NoError(t, s.CreateProduto(ctx, p))

		got, err := s.GetProduto(ctx, domain.ScopeOf(u2), p.ID)
		require.NoError(t, err)
		require.True(t, p.Preco.Equal(got.Preco))

		p.Quantidade = 3
		require.NoError(t, s.UpdateProduto(ctx, p))
		require.NoError(t, s.DeleteProduto(ctx, p.ID))

		var nf *domain.ErrNotFound
		require.ErrorAs(t, s.UpdateProduto(ctx, p), &nf)
	})

	t.Run("processo nullable date", func(t *testing.T) {
		now := time.Now().UTC()
		p := &domain.Processo{ID: domain.NewID(), NumeroProcesso: "0001", Ativo: true, CriadoEm: now, AtualizadoEm: now, CriadoPor: u1.ID}
		require.NoError(t, s.CreateProcesso(ctx, p))

		got, err := s.GetProcesso(ctx, domain.ScopeOf(u1), p.ID)
		require.NoError(t, err)
		require.Nil(t, got.DataDistribuicao)
	})
}
