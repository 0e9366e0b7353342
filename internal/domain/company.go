package domain

import (
	"strings"
	"time"
)

// ============================================================
// Company
// ============================================================

// Company is a client company. CNPJ is unique across all users.
type Company struct {
	ID                 string    `json:"company_id"`
	CNPJ               string    `json:"cnpj"`
	RazaoSocial        string    `json:"razao_social"`
	NomeFantasia       string    `json:"nome_fantasia"`
	InscricaoEstadual  string    `json:"inscricao_estadual"`
	InscricaoMunicipal string    `json:"inscricao_municipal"`
	Ativo              bool      `json:"ativo"`
	ContatoID          string    `json:"contato_id"`
	CriadoEm           time.Time `json:"criado_em"`
	AtualizadoEm       time.Time `json:"atualizado_em"`
	CriadoPor          string    `json:"criado_por"`
}

// CompanyRequest is the body for POST /companies and PUT /companies/{id}.
type CompanyRequest struct {
	CNPJ               string `json:"cnpj"`
	RazaoSocial        string `json:"razao_social"`
	NomeFantasia       string `json:"nome_fantasia"`
	InscricaoEstadual  string `json:"inscricao_estadual"`
	InscricaoMunicipal string `json:"inscricao_municipal"`
	Ativo              *bool  `json:"ativo"`
	ContatoID          string `json:"contato_id"`
}

// Validate checks the required fields.
func (r *CompanyRequest) Validate() error {
	r.CNPJ = strings.TrimSpace(r.CNPJ)
	r.ContatoID = strings.TrimSpace(r.ContatoID)
	if r.CNPJ == "" {
		return &ErrValidation{Field: "cnpj", Message: "cnpj é obrigatório"}
	}
	if r.ContatoID == "" {
		return &ErrValidation{Field: "contato_id", Message: "contato_id é obrigatório"}
	}
	return nil
}

// ApplyTo overwrites every mutable field of c. A missing ativo means true.
func (r *CompanyRequest) ApplyTo(c *Company) {
	c.CNPJ = r.CNPJ
	c.RazaoSocial = r.RazaoSocial
	c.NomeFantasia = r.NomeFantasia
	c.InscricaoEstadual = r.InscricaoEstadual
	c.InscricaoMunicipal = r.InscricaoMunicipal
	c.Ativo = r.Ativo == nil || *r.Ativo
	c.ContatoID = r.ContatoID
}

// CompanyList is the 200 body of GET /companies.
type CompanyList struct {
	Companies []Company `json:"companies"`
}
