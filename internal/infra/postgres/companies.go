package postgres

import (
	"context"

	"github.com/boddenberg/office-admin-go/internal/domain"

	"github.com/jackc/pgx/v5"
)

const companyColumns = `company_id, cnpj, razao_social, nome_fantasia, inscricao_estadual,
	inscricao_municipal, ativo, contato_id, criado_em, atualizado_em, criado_por`

func scanCompany(row pgx.Row, c *domain.Company) error {
	return row.Scan(&c.ID, &c.CNPJ, &c.RazaoSocial, &c.NomeFantasia, &c.InscricaoEstadual,
		&c.InscricaoMunicipal, &c.Ativo, &c.ContatoID, &c.CriadoEm, &c.AtualizadoEm, &c.CriadoPor)
}

func (s *Store) ListCompanies(ctx context.Context, scope domain.Scope) ([]domain.Company, error) {
	var out []domain.Company
	err := s.run(ctx, "ListCompanies", func(ctx context.Context) error {
		rows, err := s.pool.Query(ctx, `SELECT `+companyColumns+` FROM company
			WHERE `+scopeClause+` ORDER BY criado_em, company_id`, scopeArgs(scope)...)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = out[:0]
		for rows.Next() {
			var c domain.Company
			if err := scanCompany(rows, &c); err != nil {
				return err
			}
			out = append(out, c)
		}
		return rows.Err()
	})
	return out, err
}

func (s *Store) GetCompany(ctx context.Context, scope domain.Scope, id string) (*domain.Company, error) {
	var (
		c     domain.Company
		found bool
	)
	err := s.run(ctx, "GetCompany", func(ctx context.Context) error {
		row := s.pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM company
			WHERE `+scopeClause+` AND company_id = $3`, append(scopeArgs(scope), id)...)
		var err error
		found, err = getOne(row, func(r pgx.Row) error { return scanCompany(r, &c) })
		return err
	})
	if err != nil || !found {
		return nil, err
	}
	return &c, nil
}

func (s *Store) GetCompanyByCNPJ(ctx context.Context, cnpj string) (*domain.Company, error) {
	var (
		c     domain.Company
		found bool
	)
	err := s.run(ctx, "GetCompanyByCNPJ", func(ctx context.Context) error {
		row := s.pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM company WHERE cnpj = $1`, cnpj)
		var err error
		found, err = getOne(row, func(r pgx.Row) error { return scanCompany(r, &c) })
		return err
	})
	if err != nil || !found {
		return nil, err
	}
	return &c, nil
}

func (s *Store) CreateCompany(ctx context.Context, c *domain.Company) error {
	return s.run(ctx, "CreateCompany", func(ctx context.Context) error {
		_, err := s.pool.Exec(ctx, `INSERT INTO company (`+companyColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			c.ID, c.CNPJ, c.RazaoSocial, c.NomeFantasia, c.InscricaoEstadual,
			c.InscricaoMunicipal, c.Ativo, c.ContatoID, c.CriadoEm, c.AtualizadoEm, c.CriadoPor)
		return err
	})
}

func (s *Store) UpdateCompany(ctx context.Context, c *domain.Company) error {
	return s.run(ctx, "UpdateCompany", func(ctx context.Context) error {
		return s.execOne(ctx, `UPDATE company SET cnpj = $2, razao_social = $3, nome_fantasia = $4,
			inscricao_estadual = $5, inscricao_municipal = $6, ativo = $7, contato_id = $8,
			atualizado_em = $9
			WHERE company_id = $1`,
			&domain.ErrNotFound{Resource: "company", ID: c.ID, Message: domain.MsgCompanyNotFound},
			c.ID, c.CNPJ, c.RazaoSocial, c.NomeFantasia, c.InscricaoEstadual,
			c.InscricaoMunicipal, c.Ativo, c.ContatoID, c.AtualizadoEm)
	})
}

func (s *Store) DeleteCompany(ctx context.Context, id string) error {
	return s.run(ctx, "DeleteCompany", func(ctx context.Context) error {
		return s.execOne(ctx, `DELETE FROM company WHERE company_id = $1`,
			&domain.ErrNotFound{Resource: "company", ID: id, Message: domain.MsgCompanyNotFound}, id)
	})
}
