package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/boddenberg/office-admin-go/internal/domain"
	"github.com/boddenberg/office-admin-go/internal/handler"
	"github.com/boddenberg/office-admin-go/internal/infra/cache"
	"github.com/boddenberg/office-admin-go/internal/infra/memory"
	"github.com/boddenberg/office-admin-go/internal/infra/observability"
	"github.com/boddenberg/office-admin-go/internal/infra/ratelimit"
	"github.com/boddenberg/office-admin-go/internal/service"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	router http.Handler
	auth   *service.AuthService
}

func newTestServer(t *testing.T, mode domain.AuthMode, opts handler.Options) *testServer {
	t.Helper()
	store := memory.New()
	metrics := observability.NewMetrics()
	logger := zap.NewNop()

	principals := cache.New[domain.User](time.Minute)
	t.Cleanup(func() { _ = principals.Close() })

	auth := service.NewAuthService(store, principals, service.AuthConfig{
		Mode:       mode,
		JWTSecret:  "router-test-secret-at-least-32-bytes",
		AccessTTL:  time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, metrics, logger)

	svcs := handler.Services{
		Auth:      auth,
		Contatos:  service.NewContatoService(store, metrics, logger),
		Companies: service.NewCompanyService(store, store, metrics, logger),
		Processos: service.NewProcessoService(store, metrics, logger),
		Produtos:  service.NewProdutoService(store, metrics, logger),
		Health:    store,
	}
	return &testServer{router: handler.NewRouter(svcs, opts, metrics, logger), auth: auth}
}

func (s *testServer) createUser(t *testing.T, username string, superuser bool) *domain.User {
	t.Helper()
	u, err := s.auth.CreateUser(context.Background(), &domain.NewUserRequest{
		Username: username, Password: "pw", IsSuperuser: superuser,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func (s *testServer) do(t *testing.T, method, path, key, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, domain.AuthModeAPIKey, handler.Options{})

	rec := srv.do(t, http.MethodGet, "/healthz", "", "")
	expectStatus(t, rec, http.StatusOK)
	if got := decode[domain.HealthStatus](t, rec); got.Status != "healthy" || len(got.Services) != 2 {
		t.Errorf("unexpected health body: %+v", got)
	}
}

func TestReadyzAndMetrics(t *testing.T) {
	srv := newTestServer(t, domain.AuthModeAPIKey, handler.Options{})

	for _, path := range []string{"/readyz", "/metrics", "/metrics/summary", "/ping"} {
		if rec := srv.do(t, http.MethodGet, path, "", ""); rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestProtectedRoutesRequireCredentials(t *testing.T) {
	srv := newTestServer(t, domain.AuthModeAPIKey, handler.Options{})

	rec := srv.do(t, http.MethodGet, "/contatos", "", "")
	expectStatus(t, rec, http.StatusUnauthorized)
	if got := decode[domain.MessageResponse](t, rec); got.Message != "Unauthorized" {
		t.Errorf("expected Unauthorized message, got %q", got.Message)
	}

	rec = srv.do(t, http.MethodGet, "/contatos", "not-a-secret", "")
	expectStatus(t, rec, http.StatusUnauthorized)
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t, domain.AuthModeAPIKey, handler.Options{})
	u := srv.createUser(t, "ana", false)

	rec := srv.do(t, http.MethodPost, "/login", "", `{"username":"ana","password":"pw"}`)
	expectStatus(t, rec, http.StatusOK)
	resp := decode[domain.LoginResponse](t, rec)
	if resp.Message != "Logged in succesfully" || resp.XAPIKey != u.Secret {
		t.Errorf("unexpected login response: %+v", resp)
	}

	rec = srv.do(t, http.MethodPost, "/login", "", `{"username":"ana","password":"nope"}`)
	expectStatus(t, rec, http.StatusUnauthorized)
	if got := decode[domain.MessageResponse](t, rec); got.Message != domain.MsgInvalidCredential {
		t.Errorf("expected %q, got %q", domain.MsgInvalidCredential, got.Message)
	}

	rec = srv.do(t, http.MethodPost, "/login", "", `{`)
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestLogin_BearerMode(t *testing.T) {
	srv := newTestServer(t, domain.AuthModeBearer, handler.Options{})
	srv.createUser(t, "ana", false)

	rec := srv.do(t, http.MethodPost, "/login", "", `{"username":"ana","password":"pw"}`)
	expectStatus(t, rec, http.StatusOK)
	resp := decode[domain.LoginResponse](t, rec)
	if resp.Token == "" || resp.XAPIKey != "" {
		t.Fatalf("expected only a token, got %+v", resp)
	}

	req := httptest.NewRequest(http.MethodGet, "/produtos", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	out := httptest.NewRecorder()
	srv.router.ServeHTTP(out, req)
	expectStatus(t, out, http.StatusNoContent)
}

func TestLogin_RateLimited(t *testing.T) {
	srv := newTestServer(t, domain.AuthModeAPIKey, handler.Options{
		LoginLimiter: ratelimit.NewStore(0.001, 1),
	})
	srv.createUser(t, "ana", false)

	rec := srv.do(t, http.MethodPost, "/login", "", `{"username":"ana","password":"pw"}`)
	expectStatus(t, rec, http.StatusOK)

	rec = srv.do(t, http.MethodPost, "/login", "", `{"username":"ana","password":"pw"}`)
	expectStatus(t, rec, http.StatusTooManyRequests)
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func loginFrom(srv *testServer, xff string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"ana","password":"pw"}`))
	req.RemoteAddr = "192.0.2.10:40000"
	req.Header.Set("X-Forwarded-For", xff)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	return rec
}

func TestLogin_RateLimitIgnoresForwardedFor(t *testing.T) {
	srv := newTestServer(t, domain.AuthModeAPIKey, handler.Options{
		LoginLimiter: ratelimit.NewStore(0.001, 2),
	})
	srv.createUser(t, "ana", false)

	for i := 1; i <= 6; i++ {
		rec := loginFrom(srv, fmt.Sprintf("10.0.0.%d", i))
		want := http.StatusOK
		if i > 2 {
			want = http.StatusTooManyRequests
		}
		if rec.Code != want {
			t.Fatalf("login %d: expected %d, got %d: %s", i, want, rec.Code, rec.Body.String())
		}
	}
}

func TestLogin_RateLimitTrustedProxy(t *testing.T) {
	srv := newTestServer(t, domain.AuthModeAPIKey, handler.Options{
		LoginLimiter:      ratelimit.NewStore(0.001, 1),
		TrustProxyHeaders: true,
	})
	srv.createUser(t, "ana", false)

	expectStatus(t, loginFrom(srv, "10.0.0.1"), http.StatusOK)
	expectStatus(t, loginFrom(srv, "10.0.0.2"), http.StatusOK)
	expectStatus(t, loginFrom(srv, "10.0.0.1"), http.StatusTooManyRequests)
}

func TestProcessoDataDistribuicao(t *testing.T) {
	srv := newTestServer(t, domain.AuthModeAPIKey, handler.Options{})
	key := srv.createUser(t, "ana", false).Secret

	rec := srv.do(t, http.MethodPost, "/processos", key, `{"numero_processo":"0001","data_distribuicao":"2023-10-02T12:00:00"}`)
	expectStatus(t, rec, http.StatusOK)

	rec = srv.do(t, http.MethodGet, "/processos", key, "")
	expectStatus(t, rec, http.StatusOK)
	processos := decode[domain.ProcessoList](t, rec).Processos
	want := time.Date(2023, 10, 2, 12, 0, 0, 0, time.UTC)
	if len(processos) != 1 || processos[0].DataDistribuicao == nil || !processos[0].DataDistribuicao.Equal(want) {
		t.Fatalf("unexpected processos: %+v", processos)
	}

	rec = srv.do(t, http.MethodPost, "/processos", key, `{"numero_processo":"0002","data_distribuicao":"02/10/2023"}`)
	expectStatus(t, rec, http.StatusBadRequest)
	if msg := decode[domain.MessageResponse](t, rec).Message; !strings.Contains(msg, "ISO 8601") {
		t.Errorf("expected a date format message, got %q", msg)
	}

	rec = srv.do(t, http.MethodPost, "/processos", key, `{"numero_processo":`)
	expectStatus(t, rec, http.StatusBadRequest)
	if msg := decode[domain.MessageResponse](t, rec).Message; msg != "invalid request body" {
		t.Errorf("expected invalid request body, got %q", msg)
	}
}

func TestContatoCompanyScenario(t *testing.T) {
	srv := newTestServer(t, domain.AuthModeAPIKey, handler.Options{MaxConcurrency: 4})
	key := srv.createUser(t, "ana", false).Secret

	expectStatus(t, srv.do(t, http.MethodGet, "/contatos", key, ""), http.StatusNoContent)

	rec := srv.do(t, http.MethodPost, "/contatos", key, `{"nome":"Maria","email_responsavel":"maria@example.com"}`)
	expectStatus(t, rec, http.StatusOK)
	if msg := decode[domain.MessageResponse](t, rec).Message; !strings.HasPrefix(msg, "Contato de nome Maria e id ") {
		t.Errorf("unexpected create message %q", msg)
	}

	rec = srv.do(t, http.MethodPost, "/contatos", key, `{"nome":"Outra","email_responsavel":"maria@example.com"}`)
	expectStatus(t, rec, http.StatusBadRequest)
	if msg := decode[domain.MessageResponse](t, rec).Message; msg != domain.MsgContatoExists {
		t.Errorf("expected %q, got %q", domain.MsgContatoExists, msg)
	}

	rec = srv.do(t, http.MethodGet, "/contatos", key, "")
	expectStatus(t, rec, http.StatusOK)
	contatos := decode[domain.ContatoList](t, rec).Contatos
	if len(contatos) != 1 {
		t.Fatalf("expected 1 contato, got %d", len(contatos))
	}
	contatoID := contatos[0].ID

	body := `{"cnpj":"12.345.678/0001-90","nome_fantasia":"Acme","contato_id":"` + contatoID + `"}`
	expectStatus(t, srv.do(t, http.MethodPost, "/companies", key, body), http.StatusOK)

	rec = srv.do(t, http.MethodPost, "/companies", key, body)
	expectStatus(t, rec, http.StatusBadRequest)
	if msg := decode[domain.MessageResponse](t, rec).Message; msg != domain.MsgCompanyExists {
		t.Errorf("expected %q, got %q", domain.MsgCompanyExists, msg)
	}

	rec = srv.do(t, http.MethodPost, "/companies", key, `{"cnpj":"99","contato_id":"missing"}`)
	expectStatus(t, rec, http.StatusNotFound)

	rec = srv.do(t, http.MethodPut, "/contatos/"+contatoID, key, `{"nome":"Maria Silva","email_responsavel":"maria@example.com"}`)
	expectStatus(t, rec, http.StatusOK)

	rec = srv.do(t, http.MethodDelete, "/contatos/"+contatoID, key, "")
	expectStatus(t, rec, http.StatusOK)
	if msg := decode[domain.MessageResponse](t, rec).Message; !strings.Contains(msg, "Maria Silva") {
		t.Errorf("expected delete message to name the contato, got %q", msg)
	}

	expectStatus(t, srv.do(t, http.MethodGet, "/companies", key, ""), http.StatusNoContent)
	expectStatus(t, srv.do(t, http.MethodDelete, "/contatos/"+contatoID, key, ""), http.StatusNotFound)
}

func TestOwnershipScoping(t *testing.T) {
	srv := newTestServer(t, domain.AuthModeAPIKey, handler.Options{})
	ana := srv.createUser(t, "ana", false).Secret
	bob := srv.createUser(t, "bob", false).Secret
	root := srv.createUser(t, "root", true).Secret

	expectStatus(t, srv.do(t, http.MethodPost, "/processos", ana, `{"numero_processo":"0001"}`), http.StatusOK)

	expectStatus(t, srv.do(t, http.MethodGet, "/processos", bob, ""), http.StatusNoContent)

	rec := srv.do(t, http.MethodGet, "/processos", root, "")
	expectStatus(t, rec, http.StatusOK)
	processos := decode[domain.ProcessoList](t, rec).Processos
	if len(processos) != 1 {
		t.Fatalf("expected superuser to see 1 processo, got %d", len(processos))
	}

	rec = srv.do(t, http.MethodDelete, "/processos/"+processos[0].ID, bob, "")
	expectStatus(t, rec, http.StatusNotFound)
	if msg := decode[domain.MessageResponse](t, rec).Message; msg != domain.MsgProcessoNotFound {
		t.Errorf("expected %q, got %q", domain.MsgProcessoNotFound, msg)
	}

	expectStatus(t, srv.do(t, http.MethodDelete, "/processos/"+processos[0].ID, root, ""), http.StatusOK)
}

func TestProdutoGet(t *testing.T) {
	srv := newTestServer(t, domain.AuthModeAPIKey, handler.Options{})
	key := srv.createUser(t, "ana", false).Secret

	expectStatus(t, srv.do(t, http.MethodPost, "/produtos", key, `{"nome":"Caneta","preco":"2.50","quantidade":10}`), http.StatusOK)
	expectStatus(t, srv.do(t, http.MethodPost, "/produtos", key, `{"nome":"Ruim","preco":"1","quantidade":-1}`), http.StatusBadRequest)

	rec := srv.do(t, http.MethodGet, "/produtos", key, "")
	expectStatus(t, rec, http.StatusOK)
	produtos := decode[domain.ProdutoList](t, rec).Produtos
	if len(produtos) != 1 {
		t.Fatalf("expected 1 produto, got %d", len(produtos))
	}

	rec = srv.do(t, http.MethodGet, "/produtos/"+produtos[0].ID, key, "")
	expectStatus(t, rec, http.StatusOK)
	got := decode[domain.Produto](t, rec)
	if got.Nome != "Caneta" || got.Preco.String() != "2.5" || got.Quantidade != 10 {
		t.Errorf("unexpected produto: %+v", got)
	}

	rec = srv.do(t, http.MethodGet, "/produtos/unknown", key, "")
	expectStatus(t, rec, http.StatusNotFound)
	if msg := decode[domain.MessageResponse](t, rec).Message; msg != domain.MsgProdutoNotFound {
		t.Errorf("expected %q, got %q", domain.MsgProdutoNotFound, msg)
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t, domain.AuthModeAPIKey, handler.Options{})

	rec := srv.do(t, http.MethodGet, "/nope", "", "")
	expectStatus(t, rec, http.StatusNotFound)
}
