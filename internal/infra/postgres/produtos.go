package postgres

import (
	"context"

	"github.com/boddenberg/office-admin-go/internal/domain"

	"github.com/jackc/pgx/v5"
)

const produtoColumns = `id_produto, nome, descricao, preco, quantidade, criado_em, atualizado_em, criado_por`

// scanProduto reads preco (NUMERIC) through decimal.Decimal's sql.Scanner.
func scanProduto(row pgx.Row, p *domain.Produto) error {
	return row.Scan(&p.ID, &p.Nome, &p.Descricao, &p.Preco, &p.Quantidade,
		&p.CriadoEm, &p.AtualizadoEm, &p.CriadoPor)
}

func (s *Store) ListProdutos(ctx context.Context, scope domain.Scope) ([]domain.Produto, error) {
	var out []domain.Produto
	err := s.run(ctx, "ListProdutos", func(ctx context.Context) error {
		rows, err := s.pool.Query(ctx, `SELECT `+produtoColumns+` FROM produto
			WHERE `+scopeClause+` ORDER BY criado_em, id_produto`, scopeArgs(scope)...)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = out[:0]
		for rows.Next() {
			var p domain.Produto
			if err := scanProduto(rows, &p); err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})
	return out, err
}

func (s *Store) GetProduto(ctx context.Context, scope domain.Scope, id string) (*domain.Produto, error) {
	var (
		p     domain.Produto
		found bool
	)
	err := s.run(ctx, "GetProduto", func(ctx context.Context) error {
		row := s.pool.QueryRow(ctx, `SELECT `+produtoColumns+` FROM produto
			WHERE `+scopeClause+` AND id_produto = $3`, append(scopeArgs(scope), id)...)
		var err error
		found, err = getOne(row, func(r pgx.Row) error { return scanProduto(r, &p) })
		return err
	})
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreateProduto(ctx context.Context, p *domain.Produto) error {
	return s.run(ctx, "CreateProduto", func(ctx context.Context) error {
		_, err := s.pool.Exec(ctx, `INSERT INTO produto (`+produtoColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			p.ID, p.Nome, p.Descricao, p.Preco, p.Quantidade, p.CriadoEm, p.AtualizadoEm, p.CriadoPor)
		return err
	})
}

func (s *Store) UpdateProduto(ctx context.Context, p *domain.Produto) error {
	return s.run(ctx, "UpdateProduto", func(ctx context.Context) error {
		return s.execOne(ctx, `UPDATE produto SET nome = $2, descricao = $3, preco = $4,
			quantidade = $5, atualizado_em = $6
			WHERE id_produto = $1`,
			&domain.ErrNotFound{Resource: "produto", ID: p.ID, Message: domain.MsgProdutoNotFound},
			p.ID, p.Nome, p.Descricao, p.Preco, p.Quantidade, p.AtualizadoEm)
	})
}

func (s *Store) DeleteProduto(ctx context.Context, id string) error {
	return s.run(ctx, "DeleteProduto", func(ctx context.Context) error {
		return s.execOne(ctx, `DELETE FROM produto WHERE id_produto = $1`,
			&domain.ErrNotFound{Resource: "produto", ID: id, Message: domain.MsgProdutoNotFound}, id)
	})
}
