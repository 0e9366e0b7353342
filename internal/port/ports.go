// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete storage and cache implementations.
package port

import (
	"context"

	"github.com/boddenberg/office-admin-go/internal/domain"
)

// Cache provides generic caching with TTL. Implementations treat backend
// failures as misses.
type Cache[T any] interface {
	Get(ctx context.Context, key string) (T, bool)
	Set(ctx context.Context, key string, value T)
	Delete(ctx context.Context, key string)
}

// Lookups return (nil, nil) when the record does not exist. Mutations
// return *domain.ErrNotFound when the target row is gone and
// *domain.ErrConflict when a unique field is already taken.

// UserStore persists system users.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserBySecret(ctx context.Context, secret string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	CreateUser(ctx context.Context, u *domain.User) error
	// SetUserActive flips is_active and bumps updated_at.
	SetUserActive(ctx context.Context, id string, active bool) error
}

// ContatoStore persists contacts. Deleting a contact removes its companies.
type ContatoStore interface {
	ListContatos(ctx context.Context, scope domain.Scope) ([]domain.Contato, error)
	GetContato(ctx context.Context, scope domain.Scope, id string) (*domain.Contato, error)
	GetContatoByEmail(ctx context.Context, email string) (*domain.Contato, error)
	CreateContato(ctx context.Context, c *domain.Contato) error
	UpdateContato(ctx context.Context, c *domain.Contato) error
	DeleteContato(ctx context.Context, id string) error
}

// CompanyStore persists client companies.
type CompanyStore interface {
	ListCompanies(ctx context.Context, scope domain.Scope) ([]domain.Company, error)
	GetCompany(ctx context.Context, scope domain.Scope, id string) (*domain.Company, error)
	GetCompanyByCNPJ(ctx context.Context, cnpj string) (*domain.Company, error)
	CreateCompany(ctx context.Context, c *domain.Company) error
	UpdateCompany(ctx context.Context, c *domain.Company) error
	DeleteCompany(ctx context.Context, id string) error
}

// ProcessoStore persists legal cases.
type ProcessoStore interface {
	ListProcessos(ctx context.Context, scope domain.Scope) ([]domain.Processo, error)
	GetProcesso(ctx context.Context, scope domain.Scope, id string) (*domain.Processo, error)
	CreateProcesso(ctx context.Context, p *domain.Processo) error
	UpdateProcesso(ctx context.Context, p *domain.Processo) error
	DeleteProcesso(ctx context.Context, id string) error
}

// ProdutoStore persists products.
type ProdutoStore interface {
	ListProdutos(ctx context.Context, scope domain.Scope) ([]domain.Produto, error)
	GetProduto(ctx context.Context, scope domain.Scope, id string) (*domain.Produto, error)
	CreateProduto(ctx context.Context, p *domain.Produto) error
	UpdateProduto(ctx context.Context, p *domain.Produto) error
	DeleteProduto(ctx context.Context, id string) error
}

// HealthChecker reports whether a backend is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Store is implemented by every storage backend (postgres, supabase, memory).
type Store interface {
	UserStore
	ContatoStore
	CompanyStore
	ProcessoStore
	ProdutoStore
	HealthChecker
}
