package postgres

import (
	"context"

	"github.com/boddenberg/office-admin-go/internal/domain"

	"github.com/jackc/pgx/v5"
)

const contatoColumns = `contato_id, nome, endereco, numero, complemento, bairro, cidade, estado,
	cep, telefone, email_responsavel, email_cobranca, criado_por`

func scanContato(row pgx.Row, c *domain.Contato) error {
	return row.Scan(&c.ID, &c.Nome, &c.Endereco, &c.Numero, &c.Complemento, &c.Bairro,
		&c.Cidade, &c.Estado, &c.Cep, &c.Telefone, &c.EmailResponsavel, &c.EmailCobranca, &c.CriadoPor)
}

func (s *Store) ListContatos(ctx context.Context, scope domain.Scope) ([]domain.Contato, error) {
	var out []domain.Contato
	err := s.run(ctx, "ListContatos", func(ctx context.Context) error {
		rows, err := s.pool.Query(ctx, `SELECT `+contatoColumns+` FROM contato
			WHERE `+scopeClause+` ORDER BY nome COLLATE "C", contato_id`, scopeArgs(scope)...)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = out[:0]
		for rows.Next() {
			var c domain.Contato
			if err := scanContato(rows, &c); err != nil {
				return err
			}
			out = append(out, c)
		}
		return rows.Err()
	})
	return out, err
}

func (s *Store) GetContato(ctx context.Context, scope domain.Scope, id string) (*domain.Contato, error) {
	var (
		c     domain.Contato
		found bool
	)
	err := s.run(ctx, "GetContato", func(ctx context.Context) error {
		row := s.pool.QueryRow(ctx, `SELECT `+contatoColumns+` FROM contato
			WHERE `+scopeClause+` AND contato_id = $3`, append(scopeArgs(scope), id)...)
		var err error
		found, err = getOne(row, func(r pgx.Row) error { return scanContato(r, &c) })
		return err
	})
	if err != nil || !found {
		return nil, err
	}
	return &c, nil
}

// GetContatoByEmail matches email_responsavel case-insensitively.
func (s *Store) GetContatoByEmail(ctx context.Context, email string) (*domain.Contato, error) {
	var (
		c     domain.Contato
		found bool
	)
	err := s.run(ctx, "GetContatoByEmail", func(ctx context.Context) error {
		row := s.pool.QueryRow(ctx, `SELECT `+contatoColumns+` FROM contato
			WHERE lower(email_responsavel) = lower($1) LIMIT 1`, email)
		var err error
		found, err = getOne(row, func(r pgx.Row) error { return scanContato(r, &c) })
		return err
	})
	if err != nil || !found {
		return nil, err
	}
	return &c, nil
}

func (s *Store) CreateContato(ctx context.Context, c *domain.Contato) error {
	return s.run(ctx, "CreateContato", func(ctx context.Context) error {
		_, err := s.pool.Exec(ctx, `INSERT INTO contato (`+contatoColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			c.ID, c.Nome, c.Endereco, c.Numero, c.Complemento, c.Bairro,
			c.Cidade, c.Estado, c.Cep, c.Telefone, c.EmailResponsavel, c.EmailCobranca, c.CriadoPor)
		return err
	})
}

func (s *Store) UpdateContato(ctx context.Context, c *domain.Contato) error {
	return s.run(ctx, "UpdateContato", func(ctx context.Context) error {
		return s.execOne(ctx, `UPDATE contato SET nome = $2, endereco = $3, numero = $4,
			complemento = $5, bairro = $6, cidade = $7, estado = $8, cep = $9, telefone = $10,
			email_responsavel = $11, email_cobranca = $12
			WHERE contato_id = $1`,
			&domain.ErrNotFound{Resource: "contato", ID: c.ID, Message: domain.MsgContatoNotFound},
			c.ID, c.Nome, c.Endereco, c.Numero, c.Complemento, c.Bairro,
			c.Cidade, c.Estado, c.Cep, c.Telefone, c.EmailResponsavel, c.EmailCobranca)
	})
}

// DeleteContato removes the contact; the company foreign key cascades.
func (s *Store) DeleteContato(ctx context.Context, id string) error {
	return s.run(ctx, "DeleteContato", func(ctx context.Context) error {
		return s.execOne(ctx, `DELETE FROM contato WHERE contato_id = $1`,
			&domain.ErrNotFound{Resource: "contato", ID: id, Message: domain.MsgContatoNotFound}, id)
	})
}
