package supabase

import (
	"context"

	"github.com/boddenberg/office-admin-go/internal/domain"
)

// ============================================================
// Contatos
// ============================================================

func (c *Client) ListContatos(ctx context.Context, scope domain.Scope) ([]domain.Contato, error) {
	var out []domain.Contato
	err := c.call(ctx, "ListContatos", func(ctx context.Context) error {
		body, err := c.doGet(ctx, scoped("contato?order=nome.asc,contato_id.asc", scope))
		if err != nil {
			return err
		}
		out, err = decodeList[domain.Contato](body)
		return err
	})
	return out, err
}

func (c *Client) GetContato(ctx context.Context, scope domain.Scope, id string) (*domain.Contato, error) {
	var contato *domain.Contato
	err := c.call(ctx, "GetContato", func(ctx context.Context) error {
		body, err := c.doGet(ctx, scoped("contato?contato_id="+eq(id)+"&limit=1", scope))
		if err != nil {
			return err
		}
		contato, err = decodeFirst[domain.Contato](body)
		return err
	})
	return contato, err
}

// GetContatoByEmail matches email_responsavel case-insensitively.
func (c *Client) GetContatoByEmail(ctx context.Context, email string) (*domain.Contato, error) {
	var contato *domain.Contato
	err := c.call(ctx, "GetContatoByEmail", func(ctx context.Context) error {
		body, err := c.doGet(ctx, "contato?email_responsavel=ilike."+escapeLike(email)+"&limit=1")
		if err != nil {
			return err
		}
		contato, err = decodeFirst[domain.Contato](body)
		return err
	})
	return contato, err
}

func (c *Client) CreateContato(ctx context.Context, contato *domain.Contato) error {
	return c.call(ctx, "CreateContato", func(ctx context.Context) error {
		_, err := c.doPost(ctx, "contato", contato)
		return err
	})
}

func (c *Client) UpdateContato(ctx context.Context, contato *domain.Contato) error {
	return c.call(ctx, "UpdateContato", func(ctx context.Context) error {
		body, err := c.doPatch(ctx, "contato?contato_id="+eq(contato.ID), contato)
		if err != nil {
			return err
		}
		return expectRow(body, &domain.ErrNotFound{Resource: "contato", ID: contato.ID, Message: domain.MsgContatoNotFound})
	})
}

// DeleteContato removes the contact; the company foreign key cascades.
func (c *Client) DeleteContato(ctx context.Context, id string) error {
	return c.call(ctx, "DeleteContato", func(ctx context.Context) error {
		body, err := c.doDelete(ctx, "contato?contato_id="+eq(id))
		if err != nil {
			return err
		}
		return expectRow(body, &domain.ErrNotFound{Resource: "contato", ID: id, Message: domain.MsgContatoNotFound})
	})
}
