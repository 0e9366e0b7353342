package service

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/office-admin-go/internal/domain"
	"github.com/boddenberg/office-admin-go/internal/infra/observability"
	"github.com/boddenberg/office-admin-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var produtoTracer = otel.Tracer("service/produto")

// ProdutoService manages products.
type ProdutoService struct {
	store   port.ProdutoStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

func NewProdutoService(store port.ProdutoStore, metrics *observability.Metrics, logger *zap.Logger) *ProdutoService {
	return &ProdutoService{store: store, metrics: metrics, logger: logger}
}

func (s *ProdutoService) List(ctx context.Context, principal *domain.User) ([]domain.Produto, error) {
	ctx, span := produtoTracer.Start(ctx, "ProdutoService.List")
	defer span.End()

	return s.store.ListProdutos(ctx, domain.ScopeOf(principal))
}

func (s *ProdutoService) Get(ctx context.Context, principal *domain.User, id string) (*domain.Produto, error) {
	ctx, span := produtoTracer.Start(ctx, "ProdutoService.Get")
	defer span.End()

	p, err := s.store.GetProduto(ctx, domain.ScopeOf(principal), id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &domain.ErrNotFound{Resource: "produto", ID: id, Message: domain.MsgProdutoNotFound}
	}
	return p, nil
}

func (s *ProdutoService) Create(ctx context.Context, principal *domain.User, req *domain.ProdutoRequest) (*domain.MessageResponse, error) {
	ctx, span := produtoTracer.Start(ctx, "ProdutoService.Create")
	defer span.End()
	defer func(start time.Time) { s.metrics.RecordOperation("produto.create", time.Since(start)) }(time.Now())

	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &domain.Produto{
		ID:           domain.NewID(),
		CriadoEm:     now,
		AtualizadoEm: now,
		CriadoPor:    principal.ID,
	}
	req.ApplyTo(p)
	if err := s.store.CreateProduto(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("produto created", zap.String("produto_id", p.ID), zap.String("user_id", principal.ID))
	return &domain.MessageResponse{
		Message: fmt.Sprintf("Produto de nome %s e id %s criado", p.Nome, p.ID),
	}, nil
}

func (s *ProdutoService) Update(ctx context.Context, principal *domain.User, id string, req *domain.ProdutoRequest) (*domain.MessageResponse, error) {
	ctx, span := produtoTracer.Start(ctx, "ProdutoService.Update")
	defer span.End()
	defer func(start time.Time) { s.metrics.RecordOperation("produto.update", time.Since(start)) }(time.Now())

	if err := req.Validate(); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	req.ApplyTo(p)
	p.AtualizadoEm = time.Now().UTC()
	if err := s.store.UpdateProduto(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("produto updated", zap.String("produto_id", p.ID), zap.String("user_id", principal.ID))
	return &domain.MessageResponse{
		Message: fmt.Sprintf("Produto de nome %s e id %s atualizado com sucesso", p.Nome, p.ID),
	}, nil
}

func (s *ProdutoService) Delete(ctx context.Context, principal *domain.User, id string) (*domain.MessageResponse, error) {
	ctx, span := produtoTracer.Start(ctx, "ProdutoService.Delete")
	defer span.End()
	defer func(start time.Time) { s.metrics.RecordOperation("produto.delete", time.Since(start)) }(time.Now())

	p, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteProduto(ctx, p.ID); err != nil {
		return nil, err
	}

	s.logger.Info("produto deleted", zap.String("produto_id", p.ID), zap.String("user_id", principal.ID))
	return &domain.MessageResponse{
		Message: fmt.Sprintf("Produto de nome %s e id %s deletado com sucesso", p.Nome, p.ID),
	}, nil
}
