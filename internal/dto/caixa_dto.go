package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCaixaRequest struct {
	ValorAbertura decimal.Decimal `json:"valorAbertura" validate:"min=0"`
	Observacoes   *string         `json:"observacoes"`
}

type FecharCaixaRequest struct {
	ValorFechamentoInformado decimal.Decimal `json:"valorFechamentoInformado" validate:"min=0"`
	Observacoes              *string         `json:"observacoes"`
}

type MovimentarCaixaRequest struct {
	Tipo   string          `json:"tipo"   validate:"required,oneof=ENTRADA SAIDA"`
	Valor  decimal.Decimal `json:"valor"  validate:"required,gt=0"`
	Motivo string          `json:"motivo" validate:"required,min=3"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SessaoCaixaResponse struct {
	ID                       string           `json:"id"`
	ValorAbertura            decimal.Decimal  `json:"valorAbertura"`
	ValorFechamentoCalculado *decimal.Decimal `json:"valorFechamentoCalculado"`
	ValorFechamentoInformado *decimal.Decimal `json:"valorFechamentoInformado"`
	Diferenca                *decimal.Decimal `json:"diferenca"`
	Status                   string           `json:"status"`
	AbertoPor                string           `json:"abertoPor"`
	FechadoPor               *string          `json:"fechadoPor"`
	Observacoes              *string          `json:"observacoes"`
	OpenedAt                 string           `json:"openedAt"`
	ClosedAt                 *string          `json:"closedAt"`
}

type MovimentacaoCaixaResponse struct {
	ID            string          `json:"id"`
	SessaoCaixaID string          `json:"sessaoCaixaId"`
	Tipo          string          `json:"tipo"`
	Valor         decimal.Decimal `json:"valor"`
	Motivo        string          `json:"motivo"`
	UsuarioID     string          `json:"usuarioId"`
	CreatedAt     string          `json:"createdAt"`
}

// TotalPorMetodo is one line of the per-payment-method breakdown in the
// session summary. Liquido only differs from Bruto for the cash method,
// where change given is netted out.
type TotalPorMetodo struct {
	MetodoPagamentoID string          `json:"metodoPagamentoId"`
	Nome              string          `json:"nome"`
	EDinheiro         bool            `json:"eDinheiro"`
	Bruto             decimal.Decimal `json:"bruto"`
	Liquido           decimal.Decimal `json:"liquido"`
}

type ResumoCaixaResponse struct {
	SessaoCaixaID  string           `json:"sessaoCaixaId"`
	ValorAbertura  decimal.Decimal  `json:"valorAbertura"`
	PorMetodo      []TotalPorMetodo `json:"porMetodo"`
	TotalDinheiro  decimal.Decimal  `json:"totalDinheiro"`  // net cash sales
	TotalOutros    decimal.Decimal  `json:"totalOutros"`    // informational — settled off-drawer
	TotalEntradas  decimal.Decimal  `json:"totalEntradas"`  // manual ENTRADA sum
	TotalSaidas    decimal.Decimal  `json:"totalSaidas"`    // manual SAIDA sum (absolute)
	TotalTroco     decimal.Decimal  `json:"totalTroco"`
	EsperadoGaveta decimal.Decimal  `json:"esperadoGaveta"` // expected drawer amount
	Status         string           `json:"status"`
}
