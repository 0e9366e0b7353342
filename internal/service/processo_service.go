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

var processoTracer = otel.Tracer("service/processo")

// ProcessoService manages legal cases.
type ProcessoService struct {
	store   port.ProcessoStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

func NewProcessoService(store port.ProcessoStore, metrics *observability.Metrics, logger *zap.Logger) *ProcessoService {
	return &ProcessoService{store: store, metrics: metrics, logger: logger}
}

func (s *ProcessoService) List(ctx context.Context, principal *domain.User) ([]domain.Processo, error) {
	ctx, span := processoTracer.Start(ctx, "ProcessoService.List")
	defer span.End()

	return s.store.ListProcessos(ctx, domain.ScopeOf(principal))
}

func (s *ProcessoService) Create(ctx context.Context, principal *domain.User, req *domain.ProcessoRequest) (*domain.MessageResponse, error) {
	ctx, span := processoTracer.Start(ctx, "ProcessoService.Create")
	defer span.End()
	defer func(start time.Time) { s.metrics.RecordOperation("processo.create", time.Since(start)) }(time.Now())

	now := time.Now().UTC()
	p := &domain.Processo{
		ID:           domain.NewID(),
		CriadoEm:     now,
		AtualizadoEm: now,
		CriadoPor:    principal.ID,
	}
	req.ApplyTo(p)
	if err := s.store.CreateProcesso(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("processo created", zap.String("processo_id", p.ID), zap.String("user_id", principal.ID))
	return &domain.MessageResponse{
		Message: fmt.Sprintf("Processo de numero %s e id %s criado", p.NumeroProcesso, p.ID),
	}, nil
}

func (s *ProcessoService) Update(ctx context.Context, principal *domain.User, id string, req *domain.ProcessoRequest) (*domain.MessageResponse, error) {
	ctx, span := processoTracer.Start(ctx, "ProcessoService.Update")
	defer span.End()
	defer func(start time.Time) { s.metrics.RecordOperation("processo.update", time.Since(start)) }(time.Now())

	p, err := s.get(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	req.ApplyTo(p)
	p.AtualizadoEm = time.Now().UTC()
	if err := s.store.UpdateProcesso(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("processo updated", zap.String("processo_id", p.ID), zap.String("user_id", principal.ID))
	return &domain.MessageResponse{
		Message: fmt.Sprintf("Processo de numero %s e id %s atualizado", p.NumeroProcesso, p.ID),
	}, nil
}

func (s *ProcessoService) Delete(ctx context.Context, principal *domain.User, id string) (*domain.MessageResponse, error) {
	ctx, span := processoTracer.Start(ctx, "ProcessoService.Delete")
	defer span.End()
	defer func(start time.Time) { s.metrics.RecordOperation("processo.delete", time.Since(start)) }(time.Now())

	p, err := s.get(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteProcesso(ctx, p.ID); err != nil {
		return nil, err
	}

	s.logger.Info("processo deleted", zap.String("processo_id", p.ID), zap.String("user_id", principal.ID))
	return &domain.MessageResponse{
		Message: fmt.Sprintf("Processo de numero %s e id %s deletado", p.NumeroProcesso, p.ID),
	}, nil
}

func (s *ProcessoService) get(ctx context.Context, principal *domain.User, id string) (*domain.Processo, error) {
	p, err := s.store.GetProcesso(ctx, domain.ScopeOf(principal), id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &domain.ErrNotFound{Resource: "processo", ID: id, Message: domain.MsgProcessoNotFound}
	}
	return p, nil
}
