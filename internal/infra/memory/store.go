// Package memory is an in-process storage backend. It enforces the same
// unique, foreign key and cascade rules as the relational schema and backs
// STORAGE_BACKEND=memory and the handler tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/boddenberg/office-admin-go/internal/domain"
	"github.com/boddenberg/office-admin-go/internal/port"
)

var _ port.Store = (*Store)(nil)

// table keeps rows by id and remembers insertion order for listing.
type table[T any] struct {
	rows  map[string]T
	order []string
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]T)}
}

func (t *table[T]) get(id string) (T, bool) {
	v, ok := t.rows[id]
	return v, ok
}

func (t *table[T]) insert(id string, v T) {
	t.rows[id] = v
	t.order = append(t.order, id)
}

func (t *table[T]) replace(id string, v T) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	t.rows[id] = v
	return true
}

func (t *table[T]) remove(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

func (t *table[T]) list(keep func(T) bool) []T {
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		if v := t.rows[id]; keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Store implements port.Store in memory. Values are copied in and out so
// callers never share state with the store.
type Store struct {
	mu        sync.RWMutex
	users     *table[domain.User]
	contatos  *table[domain.Contato]
	companies *table[domain.Company]
	processos *table[domain.Processo]
	produtos  *table[domain.Produto]
}

// New creates an empty store.
func New() *Store {
	return &Store{
		users:     newTable[domain.User](),
		contatos:  newTable[domain.Contato](),
		companies: newTable[domain.Company](),
		processos: newTable[domain.Processo](),
		produtos:  newTable[domain.Produto](),
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// ============================================================
// Users
// ============================================================

func (s *Store) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u, ok := s.users.get(id); ok {
		return &u, nil
	}
	return nil, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	return s.findUser(func(u domain.User) bool { return u.Username == username }), nil
}

func (s *Store) GetUserBySecret(_ context.Context, secret string) (*domain.User, error) {
	if secret == "" {
		return nil, nil
	}
	return s.findUser(func(u domain.User) bool { return u.Secret == secret }), nil
}

func (s *Store) findUser(match func(domain.User) bool) *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if found := s.users.list(match); len(found) > 0 {
		return &found[0]
	}
	return nil
}

// ListUsers returns users newest first.
func (s *Store) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := s.users.list(func(domain.User) bool { return true })
	sort.SliceStable(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (s *Store) CreateUser(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users.rows {
		if existing.Username == u.Username {
			return domain.ConflictFromConstraint(domain.ConstraintUserUsername)
		}
		if existing.Secret == u.Secret {
			return domain.ConflictFromConstraint(domain.ConstraintUserSecret)
		}
	}
	s.users.insert(u.ID, *u)
	return nil
}

func (s *Store) SetUserActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users.get(id)
	if !ok {
		return &domain.ErrNotFound{Resource: "user", ID: id, Message: domain.MsgUserNotFound}
	}
	u.IsActive = active
	u.UpdatedAt = time.Now().UTC()
	s.users.replace(id, u)
	return nil
}

// ============================================================
// Contatos
// ============================================================

// ListContatos returns contatos ordered by nome, then id.
func (s *Store) ListContatos(_ context.Context, scope domain.Scope) ([]domain.Contato, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	contatos := s.contatos.list(func(c domain.Contato) bool { return scope.Allows(c.CriadoPor) })
	sort.Slice(contatos, func(i, j int) bool {
		if contatos[i].Nome != contatos[j].Nome {
			return contatos[i].Nome < contatos[j].Nome
		}
		return contatos[i].ID < contatos[j].ID
	})
	return contatos, nil
}

func (s *Store) GetContato(_ context.Context, scope domain.Scope, id string) (*domain.Contato, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.contatos.get(id); ok && scope.Allows(c.CriadoPor) {
		return &c, nil
	}
	return nil, nil
}

func (s *Store) GetContatoByEmail(_ context.Context, email string) (*domain.Contato, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := s.contatos.list(func(c domain.Contato) bool { return sameEmail(c.EmailResponsavel, email) })
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (s *Store) CreateContato(_ context.Context, c *domain.Contato) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTaken(c.EmailResponsavel, c.ID) {
		return domain.ConflictFromConstraint(domain.ConstraintContatoEmail)
	}
	s.contatos.insert(c.ID, *c)
	return nil
}

func (s *Store) UpdateContato(_ context.Context, c *domain.Contato) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTaken(c.EmailResponsavel, c.ID) {
		return domain.ConflictFromConstraint(domain.ConstraintContatoEmail)
	}
	if !s.contatos.replace(c.ID, *c) {
		return &domain.ErrNotFound{Resource: "contato", ID: c.ID, Message: domain.MsgContatoNotFound}
	}
	return nil
}

// DeleteContato removes the contact and every company referencing it.
func (s *Store) DeleteContato(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.contatos.remove(id) {
		return &domain.ErrNotFound{Resource: "contato", ID: id, Message: domain.MsgContatoNotFound}
	}
	for _, co := range s.companies.list(func(co domain.Company) bool { return co.ContatoID == id }) {
		s.companies.remove(co.ID)
	}
	return nil
}

// emailTaken mirrors the partial unique index: blank emails never clash.
func (s *Store) emailTaken(email, selfID string) bool {
	if strings.TrimSpace(email) == "" {
		return false
	}
	for id, c := range s.contatos.rows {
		if id != selfID && sameEmail(c.EmailResponsavel, email) {
			return true
		}
	}
	return false
}

// sameEmail compares like the lower(email_responsavel) unique index.
func sameEmail(a, b string) bool {
	return a != "" && strings.EqualFold(a, b)
}

// ============================================================
// Companies
// ============================================================

func (s *Store) ListCompanies(_ context.Context, scope domain.Scope) ([]domain.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.companies.list(func(c domain.Company) bool { return scope.Allows(c.CriadoPor) }), nil
}

func (s *Store) GetCompany(_ context.Context, scope domain.Scope, id string) (*domain.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.companies.get(id); ok && scope.Allows(c.CriadoPor) {
		return &c, nil
	}
	return nil, nil
}

func (s *Store) GetCompanyByCNPJ(_ context.Context, cnpj string) (*domain.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := s.companies.list(func(c domain.Company) bool { return c.CNPJ == cnpj })
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (s *Store) CreateCompany(_ context.Context, c *domain.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkCompany(c); err != nil {
		return err
	}
	s.companies.insert(c.ID, *c)
	return nil
}

func (s *Store) UpdateCompany(_ context.Context, c *domain.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkCompany(c); err != nil {
		return err
	}
	if !s.companies.replace(c.ID, *c) {
		return &domain.ErrNotFound{Resource: "company", ID: c.ID, Message: domain.MsgCompanyNotFound}
	}
	return nil
}

// checkCompany enforces the cnpj unique key and the contato foreign key.
func (s *Store) checkCompany(c *domain.Company) error {
	if _, ok := s.contatos.get(c.ContatoID); !ok {
		return domain.NotFoundFromConstraint(domain.ConstraintCompanyContatoFK)
	}
	for id, existing := range s.companies.rows {
		if id != c.ID && existing.CNPJ == c.CNPJ {
			return domain.ConflictFromConstraint(domain.ConstraintCompanyCNPJ)
		}
	}
	return nil
}

func (s *Store) DeleteCompany(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.companies.remove(id) {
		return &domain.ErrNotFound{Resource: "company", ID: id, Message: domain.MsgCompanyNotFound}
	}
	return nil
}

// ============================================================
// Processos
// ============================================================

func (s *Store) ListProcessos(_ context.Context, scope domain.Scope) ([]domain.Processo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.processos.list(func(p domain.Processo) bool { return scope.Allows(p.CriadoPor) }), nil
}

func (s *Store) GetProcesso(_ context.Context, scope domain.Scope, id string) (*domain.Processo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.processos.get(id); ok && scope.Allows(p.CriadoPor) {
		return &p, nil
	}
	return nil, nil
}

func (s *Store) CreateProcesso(_ context.Context, p *domain.Processo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.processos.insert(p.ID, *p)
	return nil
}

func (s *Store) UpdateProcesso(_ context.Context, p *domain.Processo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.processos.replace(p.ID, *p) {
		return &domain.ErrNotFound{Resource: "processo", ID: p.ID, Message: domain.MsgProcessoNotFound}
	}
	return nil
}

func (s *Store) DeleteProcesso(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.processos.remove(id) {
		return &domain.ErrNotFound{Resource: "processo", ID: id, Message: domain.MsgProcessoNotFound}
	}
	return nil
}

// ============================================================
// Produtos
// ============================================================

func (s *Store) ListProdutos(_ context.Context, scope domain.Scope) ([]domain.Produto, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.produtos.list(func(p domain.Produto) bool { return scope.Allows(p.CriadoPor) }), nil
}

func (s *Store) GetProduto(_ context.Context, scope domain.Scope, id string) (*domain.Produto, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.produtos.get(id); ok && scope.Allows(p.CriadoPor) {
		return &p, nil
	}
	return nil, nil
}

func (s *Store) CreateProduto(_ context.Context, p *domain.Produto) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.produtos.insert(p.ID, *p)
	return nil
}

func (s *Store) UpdateProduto(_ context.Context, p *domain.Produto) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.produtos.replace(p.ID, *p) {
		return &domain.ErrNotFound{Resource: "produto", ID: p.ID, Message: domain.MsgProdutoNotFound}
	}
	return nil
}

func (s *Store) DeleteProduto(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.produtos.remove(id) {
		return &domain.ErrNotFound{Resource: "produto", ID: id, Message: domain.MsgProdutoNotFound}
	}
	return nil
}
