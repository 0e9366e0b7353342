package supabase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/boddenberg/office-admin-go/internal/domain"
	"github.com/boddenberg/office-admin-go/internal/infra/observability"
	"github.com/boddenberg/office-admin-go/internal/infra/resilience"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.Client(), srv.URL, "anon", "service-role",
		resilience.NewCircuitBreaker("supabase-test"),
		resilience.Config{MaxRetries: 1, InitialBackoff: time.Millisecond},
		observability.NewMetrics(), zap.NewNop())
}

func TestClient_SendsAuthHeadersAndScope(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer service-role", r.Header.Get("Authorization"))
		assert.Equal(t, "/rest/v1/contato", r.URL.Path)
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[{"contato_id":"c1","nome":"Ana","criado_por":"u1"}]`))
	})

	out, err := c.ListContatos(context.Background(), domain.Scope{OwnerID: "u1"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Ana", out[0].Nome)
	assert.Contains(t, gotQuery, "criado_por=eq.u1")
}

func TestClient_SuperuserScopeHasNoOwnerFilter(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NotContains(t, r.URL.RawQuery, "criado_por")
		_, _ = w.Write([]byte(`[]`))
	})

	out, err := c.ListProdutos(context.Background(), domain.Scope{All: true})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestClient_GetMissingReturnsNil(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	company, err := c.GetCompany(context.Background(), domain.Scope{All: true}, "nope")
	require.NoError(t, err)
	assert.Nil(t, company)
}

func TestClient_UniqueViolationIsConflict(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "return=minimal", r.Header.Get("Prefer"))
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"23505","message":"duplicate key value violates unique constraint \"company_cnpj_key\""}`))
	})

	err := c.CreateCompany(context.Background(), &domain.Company{ID: "x", CNPJ: "1"})
	var conflict *domain.ErrConflict
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, domain.MsgCompanyExists, conflict.Message)
	assert.Equal(t, int32(1), calls.Load(), "conflicts must not be retried")
}

func TestClient_UpdateMissingRowIsNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		_, _ = w.Write([]byte(`[]`))
	})

	err := c.UpdateProcesso(context.Background(), &domain.Processo{ID: "p1"})
	var nf *domain.ErrNotFound
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, domain.MsgProcessoNotFound, nf.Message)
}

func TestClient_ServerErrorIsRetriedThenExternal(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := c.DeleteProduto(context.Background(), "p1")
	var ext *domain.ErrExternalService
	require.ErrorAs(t, err, &ext)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_UserRowKeepsCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "username=eq.alice")
		_, _ = w.Write([]byte(`[{"id":"u1","username":"alice","password":"hash","secret":"s","is_active":true}]`))
	})

	u, err := c.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "hash", u.Password)
	assert.Equal(t, "s", u.Secret)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a%5C_b%40c.com`, escapeLike("a_b@c.com"))
}
