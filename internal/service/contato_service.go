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

var contatoTracer = otel.Tracer("service/contato")

// ContatoService manages contacts owned by the principal.
type ContatoService struct {
	store   port.ContatoStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

func NewContatoService(store port.ContatoStore, metrics *observability.Metrics, logger *zap.Logger) *ContatoService {
	return &ContatoService{store: store, metrics: metrics, logger: logger}
}

func (s *ContatoService) List(ctx context.Context, principal *domain.User) ([]domain.Contato, error) {
	ctx, span := contatoTracer.Start(ctx, "ContatoService.List")
	defer span.End()

	return s.store.ListContatos(ctx, domain.ScopeOf(principal))
}

// Create rejects an email_responsavel already used by any contact.
func (s *ContatoService) Create(ctx context.Context, principal *domain.User, req *domain.ContatoRequest) (*domain.MessageResponse, error) {
	ctx, span := contatoTracer.Start(ctx, "ContatoService.Create")
	defer span.End()
	defer func(start time.Time) { s.metrics.RecordOperation("contato.create", time.Since(start)) }(time.Now())

	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkEmail(ctx, req.EmailResponsavel, ""); err != nil {
		return nil, err
	}

	c := &domain.Contato{ID: domain.NewID(), CriadoPor: principal.ID}
	req.ApplyTo(c)
	if err := s.store.CreateContato(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("contato created", zap.String("contato_id", c.ID), zap.String("user_id", principal.ID))
	return &domain.MessageResponse{
		Message: fmt.Sprintf("Contato de nome %s e id %s criado", c.Nome, c.ID),
	}, nil
}

func (s *ContatoService) Update(ctx context.Context, principal *domain.User, id string, req *domain.ContatoRequest) (*domain.MessageResponse, error) {
	ctx, span := contatoTracer.Start(ctx, "ContatoService.Update")
	defer span.End()
	defer func(start time.Time) { s.metrics.RecordOperation("contato.update", time.Since(start)) }(time.Now())

	if err := req.Validate(); err != nil {
		return nil, err
	}
	c, err := s.get(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkEmail(ctx, req.EmailResponsavel, c.ID); err != nil {
		return nil, err
	}

	req.ApplyTo(c)
	if err := s.store.UpdateContato(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("contato updated", zap.String("contato_id", c.ID), zap.String("user_id", principal.ID))
	return &domain.MessageResponse{
		Message: fmt.Sprintf("Contato de nome %s e id %s atualizado", c.Nome, c.ID),
	}, nil
}

// Delete removes the contact together with its companies.
func (s *ContatoService) Delete(ctx context.Context, principal *domain.User, id string) (*domain.MessageResponse, error) {
	ctx, span := contatoTracer.Start(ctx, "ContatoService.Delete")
	defer span.End()
	defer func(start time.Time) { s.metrics.RecordOperation("contato.delete", time.Since(start)) }(time.Now())

	c, err := s.get(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteContato(ctx, c.ID); err != nil {
		return nil, err
	}

	s.logger.Info("contato deleted", zap.String("contato_id", c.ID), zap.String("user_id", principal.ID))
	return &domain.MessageResponse{
		Message: fmt.Sprintf("Contato de nome %s e id %s deletado", c.Nome, c.ID),
	}, nil
}

func (s *ContatoService) get(ctx context.Context, principal *domain.User, id string) (*domain.Contato, error) {
	c, err := s.store.GetContato(ctx, domain.ScopeOf(principal), id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, &domain.ErrNotFound{Resource: "contato", ID: id, Message: domain.MsgContatoNotFound}
	}
	return c, nil
}

// checkEmail fails when another contact (not selfID) already uses email.
// Blank emails are never checked.
func (s *ContatoService) checkEmail(ctx context.Context, email, selfID string) error {
	if email == "" {
		return nil
	}
	other, err := s.store.GetContatoByEmail(ctx, email)
	if err != nil {
		return err
	}
	if other != nil && other.ID != selfID {
		return &domain.ErrConflict{Message: domain.MsgContatoExists}
	}
	return nil
}
