package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// ============================================================
// Processo (legal case)
// ============================================================

// Processo is a legal case tracked by the office.
type Processo struct {
	ID                  string     `json:"processo_id"`
	AdvogadoResponsavel string     `json:"advogado_responsavel"`
	Cliente             string     `json:"cliente"`
	NumeroProcesso      string     `json:"numero_processo"`
	Vara                string     `json:"vara"`
	Comarca             string     `json:"comarca"`
	Estado              string     `json:"estado"`
	Status              string     `json:"status"`
	Fase                string     `json:"fase"`
	ValorCausa          float64    `json:"valor_causa"`
	ValorCondenacao     float64    `json:"valor_condenacao"`
	ValorHonorario      float64    `json:"valor_honorario"`
	ValorPreposto       float64    `json:"valor_preposto"`
	ValorTotal          float64    `json:"valor_total"`
	DataDistribuicao    *time.Time `json:"data_distribuicao"`
	Ativo               bool       `json:"ativo"`
	CriadoEm            time.Time  `json:"criado_em"`
	AtualizadoEm        time.Time  `json:"atualizado_em"`
	CriadoPor           string     `json:"criado_por"`
}

// ProcessoRequest is the body for POST /processos and PUT /processos/{id}.
type ProcessoRequest struct {
	AdvogadoResponsavel string     `json:"advogado_responsavel"`
	Cliente             string     `json:"cliente"`
	NumeroProcesso      string     `json:"numero_processo"`
	Vara                string     `json:"vara"`
	Comarca             string     `json:"comarca"`
	Estado              string     `json:"estado"`
	Status              string     `json:"status"`
	Fase                string     `json:"fase"`
	ValorCausa          float64    `json:"valor_causa"`
	ValorCondenacao     float64    `json:"valor_condenacao"`
	ValorHonorario      float64    `json:"valor_honorario"`
	ValorPreposto       float64    `json:"valor_preposto"`
	ValorTotal          float64    `json:"valor_total"`
	DataDistribuicao    *time.Time `json:"data_distribuicao"`
	Ativo               *bool      `json:"ativo"`
}

// UnmarshalJSON accepts data_distribuicao with or without a UTC offset.
func (r *ProcessoRequest) UnmarshalJSON(data []byte) error {
	type plain ProcessoRequest
	aux := struct {
		*plain
		DataDistribuicao *string `json:"data_distribuicao"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.DataDistribuicao = nil
	if aux.DataDistribuicao == nil || strings.TrimSpace(*aux.DataDistribuicao) == "" {
		return nil
	}
	t, err := ParseTimestamp(*aux.DataDistribuicao)
	if err != nil {
		return &ErrValidation{
			Field:   "data_distribuicao",
			Message: "data_distribuicao deve ser uma data ISO 8601, ex.: 2023-10-02T12:00:00Z",
		}
	}
	r.DataDistribuicao = &t
	return nil
}

// timestampLayouts are tried in order. Layouts without an offset are read
// as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses an ISO 8601 date or date-time.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range timestampLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// ApplyTo overwrites every mutable field of p. A missing ativo means true.
func (r *ProcessoRequest) ApplyTo(p *Processo) {
	p.AdvogadoResponsavel = r.AdvogadoResponsavel
	p.Cliente = r.Cliente
	p.NumeroProcesso = r.NumeroProcesso
	p.Vara = r.Vara
	p.Comarca = r.Comarca
	p.Estado = r.Estado
	p.Status = r.Status
	p.Fase = r.Fase
	p.ValorCausa = r.ValorCausa
	p.ValorCondenacao = r.ValorCondenacao
	p.ValorHonorario = r.ValorHonorario
	p.ValorPreposto = r.ValorPreposto
	p.ValorTotal = r.ValorTotal
	p.DataDistribuicao = r.DataDistribuicao
	p.Ativo = r.Ativo == nil || *r.Ativo
}

// ProcessoList is the 200 body of GET /processos.
type ProcessoList struct {
	Processos []Processo `json:"processos"`
}
