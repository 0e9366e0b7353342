package postgres

import (
	"context"

	"github.com/boddenberg/office-admin-go/internal/domain"

	"github.com/jackc/pgx/v5"
)

const processoColumns = `processo_id, advogado_responsavel, cliente, numero_processo, vara, comarca,
	estado, status, fase, valor_causa, valor_condenacao, valor_honorario, valor_preposto,
	valor_total, data_distribuicao, ativo, criado_em, atualizado_em, criado_por`

func scanProcesso(row pgx.Row, p *domain.Processo) error {
	return row.Scan(&p.ID, &p.AdvogadoResponsavel, &p.Cliente, &p.NumeroProcesso, &p.Vara, &p.Comarca,
		&p.Estado, &p.Status, &p.Fase, &p.ValorCausa, &p.ValorCondenacao, &p.ValorHonorario, &p.ValorPreposto,
		&p.ValorTotal, &p.DataDistribuicao, &p.Ativo, &p.CriadoEm, &p.AtualizadoEm, &p.CriadoPor)
}

func (s *Store) ListProcessos(ctx context.Context, scope domain.Scope) ([]domain.Processo, error) {
	var out []domain.Processo
	err := s.run(ctx, "ListProcessos", func(ctx context.Context) error {
		rows, err := s.pool.Query(ctx, `SELECT `+processoColumns+` FROM processo
			WHERE `+scopeClause+` ORDER BY criado_em, processo_id`, scopeArgs(scope)...)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = out[:0]
		for rows.Next() {
			var p domain.Processo
			if err := scanProcesso(rows, &p); err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})
	return out, err
}

func (s *Store) GetProcesso(ctx context.Context, scope domain.Scope, id string) (*domain.Processo, error) {
	var (
		p     domain.Processo
		found bool
	)
	err := s.run(ctx, "GetProcesso", func(ctx context.Context) error {
		row := s.pool.QueryRow(ctx, `SELECT `+processoColumns+` FROM processo
			WHERE `+scopeClause+` AND processo_id = $3`, append(scopeArgs(scope), id)...)
		var err error
		found, err = getOne(row, func(r pgx.Row) error { return scanProcesso(r, &p) })
		return err
	})
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreateProcesso(ctx context.Context, p *domain.Processo) error {
	return s.run(ctx, "CreateProcesso", func(ctx context.Context) error {
		_, err := s.pool.Exec(ctx, `INSERT INTO processo (`+processoColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
			p.ID, p.AdvogadoResponsavel, p.Cliente, p.NumeroProcesso, p.Vara, p.Comarca,
			p.Estado, p.Status, p.Fase, p.ValorCausa, p.ValorCondenacao, p.ValorHonorario, p.ValorPreposto,
			p.ValorTotal, p.DataDistribuicao, p.Ativo, p.CriadoEm, p.AtualizadoEm, p.CriadoPor)
		return err
	})
}

func (s *Store) UpdateProcesso(ctx context.Context, p *domain.Processo) error {
	return s.run(ctx, "UpdateProcesso", func(ctx context.Context) error {
		return s.execOne(ctx, `UPDATE processo SET advogado_responsavel = $2, cliente = $3,
			numero_processo = $4, vara = $5, comarca = $6, estado = $7, status = $8, fase = $9,
			valor_causa = $10, valor_condenacao = $11, valor_honorario = $12, valor_preposto = $13,
			valor_total = $14, data_distribuicao = $15, ativo = $16, atualizado_em = $17
			WHERE processo_id = $1`,
			&domain.ErrNotFound{Resource: "processo", ID: p.ID, Message: domain.MsgProcessoNotFound},
			p.ID, p.AdvogadoResponsavel, p.Cliente, p.NumeroProcesso, p.Vara, p.Comarca,
			p.Estado, p.Status, p.Fase, p.ValorCausa, p.ValorCondenacao, p.ValorHonorario, p.ValorPreposto,
			p.ValorTotal, p.DataDistribuicao, p.Ativo, p.AtualizadoEm)
	})
}

func (s *Store) DeleteProcesso(ctx context.Context, id string) error {
	return s.run(ctx, "DeleteProcesso", func(ctx context.Context) error {
		return s.execOne(ctx, `DELETE FROM processo WHERE processo_id = $1`,
			&domain.ErrNotFound{Resource: "processo", ID: id, Message: domain.MsgProcessoNotFound}, id)
	})
}
