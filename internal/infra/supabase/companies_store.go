package supabase

import (
	"context"

	"github.com/boddenberg/office-admin-go/internal/domain"
)

// ============================================================
// Companies
// ============================================================

func (c *Client) ListCompanies(ctx context.Context, scope domain.Scope) ([]domain.Company, error) {
	var out []domain.Company
	err := c.call(ctx, "ListCompanies", func(ctx context.Context) error {
		body, err := c.doGet(ctx, scoped("company?order=criado_em.asc", scope))
		if err != nil {
			return err
		}
		out, err = decodeList[domain.Company](body)
		return err
	})
	return out, err
}

func (c *Client) GetCompany(ctx context.Context, scope domain.Scope, id string) (*domain.Company, error) {
	var company *domain.Company
	err := c.call(ctx, "GetCompany", func(ctx context.Context) error {
		body, err := c.doGet(ctx, scoped("company?company_id="+eq(id)+"&limit=1", scope))
		if err != nil {
			return err
		}
		company, err = decodeFirst[domain.Company](body)
		return err
	})
	return company, err
}

func (c *Client) GetCompanyByCNPJ(ctx context.Context, cnpj string) (*domain.Company, error) {
	var company *domain.Company
	err := c.call(ctx, "GetCompanyByCNPJ", func(ctx context.Context) error {
		body, err := c.doGet(ctx, "company?cnpj="+eq(cnpj)+"&limit=1")
		if err != nil {
			return err
		}
		company, err = decodeFirst[domain.Company](body)
		return err
	})
	return company, err
}

func (c *Client) CreateCompany(ctx context.Context, company *domain.Company) error {
	return c.call(ctx, "CreateCompany", func(ctx context.Context) error {
		_, err := c.doPost(ctx, "company", company)
		return err
	})
}

func (c *Client) UpdateCompany(ctx context.Context, company *domain.Company) error {
	return c.call(ctx, "UpdateCompany", func(ctx context.Context) error {
		body, err := c.doPatch(ctx, "company?company_id="+eq(company.ID), company)
		if err != nil {
			return err
		}
		return expectRow(body, &domain.ErrNotFound{Resource: "company", ID: company.ID, Message: domain.MsgCompanyNotFound})
	})
}

func (c *Client) DeleteCompany(ctx context.Context, id string) error {
	return c.call(ctx, "DeleteCompany", func(ctx context.Context) error {
		body, err := c.doDelete(ctx, "company?company_id="+eq(id))
		if err != nil {
			return err
		}
		return expectRow(body, &domain.ErrNotFound{Resource: "company", ID: id, Message: domain.MsgCompanyNotFound})
	})
}
