package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Produto
// ============================================================

// Produto is a product sold by the office. Preco is fixed-point.
type Produto struct {
	ID           string          `json:"id_produto"`
	Nome         string          `json:"nome"`
	Descricao    string          `json:"descricao"`
	Preco        decimal.Decimal `json:"preco"`
	Quantidade   int             `json:"quantidade"`
	CriadoEm     time.Time       `json:"criado_em"`
	AtualizadoEm time.Time       `json:"atualizado_em"`
	CriadoPor    string          `json:"criado_por"`
}

// ProdutoRequest is the body for POST /produtos and PUT /produtos/{id}.
type ProdutoRequest struct {
	Nome       string          `json:"nome"`
	Descricao  string          `json:"descricao"`
	Preco      decimal.Decimal `json:"preco"`
	Quantidade int             `json:"quantidade"`
}

// Validate rejects negative prices and quantities.
func (r *ProdutoRequest) Validate() error {
	if r.Preco.IsNegative() {
		return &ErrValidation{Field: "preco", Message: "preco não pode ser negativo"}
	}
	if r.Quantidade < 0 {
		return &ErrValidation{Field: "quantidade", Message: "quantidade não pode ser negativa"}
	}
	return nil
}

// ApplyTo overwrites every mutable field of p. Preco is rounded to cents.
func (r *ProdutoRequest) ApplyTo(p *Produto) {
	p.Nome = r.Nome
	p.Descricao = r.Descricao
	p.Preco = r.Preco.Round(2)
	p.Quantidade = r.Quantidade
}

// ProdutoList is the 200 body of GET /produtos.
type ProdutoList struct {
	Produtos []Produto `json:"produtos"`
}
