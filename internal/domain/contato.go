package domain

import "strings"

// ============================================================
// Contato
// ============================================================

// Contato is a business contact. Companies reference exactly one Contato
// and are removed together with it.
type Contato struct {
	ID               string `json:"contato_id"`
	Nome             string `json:"nome"`
	Endereco         string `json:"endereco"`
	Numero           string `json:"numero"`
	Complemento      string `json:"complemento"`
	Bairro           string `json:"bairro"`
	Cidade           string `json:"cidade"`
	Estado           string `json:"estado"`
	Cep              string `json:"cep"`
	Telefone         string `json:"telefone"`
	EmailResponsavel string `json:"email_responsavel"`
	EmailCobranca    string `json:"email_cobranca"`
	CriadoPor        string `json:"criado_por"`
}

// ContatoRequest is the body for POST /contatos and PUT /contatos/{id}.
type ContatoRequest struct {
	Nome             string `json:"nome"`
	Endereco         string `json:"endereco"`
	Numero           string `json:"numero"`
	Complemento      string `json:"complemento"`
	Bairro           string `json:"bairro"`
	Cidade           string `json:"cidade"`
	Estado           string `json:"estado"`
	Cep              string `json:"cep"`
	Telefone         string `json:"telefone"`
	EmailResponsavel string `json:"email_responsavel"`
	EmailCobranca    string `json:"email_cobranca"`
}

// Validate checks the required fields.
func (r *ContatoRequest) Validate() error {
	r.Nome = strings.TrimSpace(r.Nome)
	r.EmailResponsavel = strings.TrimSpace(r.EmailResponsavel)
	if r.Nome == "" {
		return &ErrValidation{Field: "nome", Message: "nome é obrigatório"}
	}
	return nil
}

// ApplyTo overwrites every mutable field of c.
func (r *ContatoRequest) ApplyTo(c *Contato) {
	c.Nome = r.Nome
	c.Endereco = r.Endereco
	c.Numero = r.Numero
	c.Complemento = r.Complemento
	c.Bairro = r.Bairro
	c.Cidade = r.Cidade
	c.Estado = r.Estado
	c.Cep = r.Cep
	c.Telefone = r.Telefone
	c.EmailResponsavel = r.EmailResponsavel
	c.EmailCobranca = r.EmailCobranca
}

// ContatoList is the 200 body of GET /contatos.
type ContatoList struct {
	Contatos []Contato `json:"contatos"`
}
