package supabase

import (
	"context"

	"github.com/boddenberg/office-admin-go/internal/domain"
)

// ============================================================
// Processos
// ============================================================

func (c *Client) ListProcessos(ctx context.Context, scope domain.Scope) ([]domain.Processo, error) {
	var out []domain.Processo
	err := c.call(ctx, "ListProcessos", func(ctx context.Context) error {
		body, err := c.doGet(ctx, scoped("processo?order=criado_em.asc", scope))
		if err != nil {
			return err
		}
		out, err = decodeList[domain.Processo](body)
		return err
	})
	return out, err
}

func (c *Client) GetProcesso(ctx context.Context, scope domain.Scope, id string) (*domain.Processo, error) {
	var processo *domain.Processo
	err := c.call(ctx, "GetProcesso", func(ctx context.Context) error {
		body, err := c.doGet(ctx, scoped("processo?processo_id="+eq(id)+"&limit=1", scope))
		if err != nil {
			return err
		}
		processo, err = decodeFirst[domain.Processo](body)
		return err
	})
	return processo, err
}

func (c *Client) CreateProcesso(ctx context.Context, p *domain.Processo) error {
	return c.call(ctx, "CreateProcesso", func(ctx context.Context) error {
		_, err := c.doPost(ctx, "processo", p)
		return err
	})
}

func (c *Client) UpdateProcesso(ctx context.Context, p *domain.Processo) error {
	return c.call(ctx, "UpdateProcesso", func(ctx context.Context) error {
		body, err := c.doPatch(ctx, "processo?processo_id="+eq(p.ID), p)
		if err != nil {
			return err
		}
		return expectRow(body, &domain.ErrNotFound{Resource: "processo", ID: p.ID, Message: domain.MsgProcessoNotFound})
	})
}

func (c *Client) DeleteProcesso(ctx context.Context, id string) error {
	return c.call(ctx, "DeleteProcesso", func(ctx context.Context) error {
		body, err := c.doDelete(ctx, "processo?processo_id="+eq(id))
		if err != nil {
			return err
		}
		return expectRow(body, &domain.ErrNotFound{Resource: "processo", ID: id, Message: domain.MsgProcessoNotFound})
	})
}
