package supabase

import (
	"context"

	"github.com/boddenberg/office-admin-go/internal/domain"
)

// ============================================================
// Produtos
// ============================================================

func (c *Client) ListProdutos(ctx context.Context, scope domain.Scope) ([]domain.Produto, error) {
	var out []domain.Produto
	err := c.call(ctx, "ListProdutos", func(ctx context.Context) error {
		body, err := c.doGet(ctx, scoped("produto?order=criado_em.asc", scope))
		if err != nil {
			return err
		}
		out, err = decodeList[domain.Produto](body)
		return err
	})
	return out, err
}

func (c *Client) GetProduto(ctx context.Context, scope domain.Scope, id string) (*domain.Produto, error) {
	var produto *domain.Produto
	err := c.call(ctx, "GetProduto", func(ctx context.Context) error {
		body, err := c.doGet(ctx, scoped("produto?id_produto="+eq(id)+"&limit=1", scope))
		if err != nil {
			return err
		}
		produto, err = decodeFirst[domain.Produto](body)
		return err
	})
	return produto, err
}

func (c *Client) CreateProduto(ctx context.Context, p *domain.Produto) error {
	return c.call(ctx, "CreateProduto", func(ctx context.Context) error {
		_, err := c.doPost(ctx, "produto", p)
		return err
	})
}

func (c *Client) UpdateProduto(ctx context.Context, p *domain.Produto) error {
	return c.call(ctx, "UpdateProduto", func(ctx context.Context) error {
		body, err := c.doPatch(ctx, "produto?id_produto="+eq(p.ID), p)
		if err != nil {
			return err
		}
		return expectRow(body, &domain.ErrNotFound{Resource: "produto", ID: p.ID, Message: domain.MsgProdutoNotFound})
	})
}

func (c *Client) DeleteProduto(ctx context.Context, id string) error {
	return c.call(ctx, "DeleteProduto", func(ctx context.Context) error {
		body, err := c.doDelete(ctx, "produto?id_produto="+eq(id))
		if err != nil {
			return err
		}
		return expectRow(body, &domain.ErrNotFound{Resource: "produto", ID: id, Message: domain.MsgProdutoNotFound})
	})
}
