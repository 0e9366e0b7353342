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

var companyTracer = otel.Tracer("service/company")

// CompanyService manages companies. A company always points at a contact
// the principal can see.
type CompanyService struct {
	store    port.CompanyStore
	contatos port.ContatoStore
	metrics  *observability.Metrics
	logger   *zap.Logger
}

func NewCompanyService(store port.CompanyStore, contatos port.ContatoStore, metrics *observability.Metrics, logger *zap.Logger) *CompanyService {
	return &CompanyService{store: store, contatos: contatos, metrics: metrics, logger: logger}
}

func (s *CompanyService) List(ctx context.Context, principal *domain.User) ([]domain.Company, error) {
	ctx, span := companyTracer.Start(ctx, "CompanyService.List")
	defer span.End()

	return s.store.ListCompanies(ctx, domain.ScopeOf(principal))
}

func (s *CompanyService) Create(ctx context.Context, principal *domain.User, req *domain.CompanyRequest) (*domain.MessageResponse, error) {
	ctx, span := companyTracer.Start(ctx, "CompanyService.Create")
	defer span.End()
	defer func(start time.Time) { s.metrics.RecordOperation("company.create", time.Since(start)) }(time.Now())

	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkCNPJ(ctx, req.CNPJ, ""); err != nil {
		return nil, err
	}
	if err := s.resolveContato(ctx, principal, req.ContatoID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c := &domain.Company{
		ID:           domain.NewID(),
		CriadoEm:     now,
		AtualizadoEm: now,
		CriadoPor:    principal.ID,
	}
	req.ApplyTo(c)
	if err := s.store.CreateCompany(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("company created",
		zap.String("company_id", c.ID),
		zap.String("contato_id", c.ContatoID),
		zap.String("user_id", principal.ID),
	)
	return &domain.MessageResponse{
		Message: fmt.Sprintf("Company de nome %s e id %s criada", c.NomeFantasia, c.ID),
	}, nil
}

func (s *CompanyService) Update(ctx context.Context, principal *domain.User, id string, req *domain.CompanyRequest) (*domain.MessageResponse, error) {
	ctx, span := companyTracer.Start(ctx, "CompanyService.Update")
	defer span.End()
	defer func(start time.Time) { s.metrics.RecordOperation("company.update", time.Since(start)) }(time.Now())

	if err := req.Validate(); err != nil {
		return nil, err
	}
	c, err := s.get(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if err := s.resolveContato(ctx, principal, req.ContatoID); err != nil {
		return nil, err
	}
	if err := s.checkCNPJ(ctx, req.CNPJ, c.ID); err != nil {
		return nil, err
	}

	req.ApplyTo(c)
	c.AtualizadoEm = time.Now().UTC()
	if err := s.store.UpdateCompany(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("company updated", zap.String("company_id", c.ID), zap.String("user_id", principal.ID))
	return &domain.MessageResponse{
		Message: fmt.Sprintf("Company de nome %s e id %s atualizada", c.NomeFantasia, c.ID),
	}, nil
}

func (s *CompanyService) Delete(ctx context.Context, principal *domain.User, id string) (*domain.MessageResponse, error) {
	ctx, span := companyTracer.Start(ctx, "CompanyService.Delete")
	defer span.End()
	defer func(start time.Time) { s.metrics.RecordOperation("company.delete", time.Since(start)) }(time.Now())

	c, err := s.get(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteCompany(ctx, c.ID); err != nil {
		return nil, err
	}

	s.logger.Info("company deleted", zap.String("company_id", c.ID), zap.String("user_id", principal.ID))
	return &domain.MessageResponse{
		Message: fmt.Sprintf("Company de nome %s e id %s deletada", c.NomeFantasia, c.ID),
	}, nil
}

func (s *CompanyService) get(ctx context.Context, principal *domain.User, id string) (*domain.Company, error) {
	c, err := s.store.GetCompany(ctx, domain.ScopeOf(principal), id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, &domain.ErrNotFound{Resource: "company", ID: id, Message: domain.MsgCompanyNotFound}
	}
	return c, nil
}

func (s *CompanyService) resolveContato(ctx context.Context, principal *domain.User, contatoID string) error {
	contato, err := s.contatos.GetContato(ctx, domain.ScopeOf(principal), contatoID)
	if err != nil {
		return err
	}
	if contato == nil {
		return &domain.ErrNotFound{Resource: "contato", ID: contatoID, Message: domain.MsgContatoNotFound}
	}
	return nil
}

// checkCNPJ fails when another company (not selfID) already uses cnpj.
func (s *CompanyService) checkCNPJ(ctx context.Context, cnpj, selfID string) error {
	other, err := s.store.GetCompanyByCNPJ(ctx, cnpj)
	if err != nil {
		return err
	}
	if other != nil && other.ID != selfID {
		return &domain.ErrConflict{Message: domain.MsgCompanyExists}
	}
	return nil
}
