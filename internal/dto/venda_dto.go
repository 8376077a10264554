package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ItemVendaRequest describes one sale line. Either ProdutoID or ServicoID
// resolves name/price from the catalog; a free-form item carries Nome and
// PrecoUnitario directly and never counts against stock.
type ItemVendaRequest struct {
	ProdutoID     *string          `json:"produtoId"     validate:"omitempty,uuid"`
	ServicoID     *string          `json:"servicoId"     validate:"omitempty,uuid"`
	Nome          *string          `json:"nome"`
	PrecoUnitario *decimal.Decimal `json:"precoUnitario"`
	Quantidade    int              `json:"quantidade"    validate:"required,min=1"`
}

type PagamentoRequest struct {
	MetodoPagamentoID string          `json:"metodoPagamentoId" validate:"required,uuid"`
	Valor             decimal.Decimal `json:"valor"             validate:"required,gt=0"`
	Parcelas          *int            `json:"parcelas"          validate:"omitempty,min=1,max=24"`
}

// AjusteValor is a discount or surcharge: an absolute amount or a
// percentage of the subtotal.
type AjusteValor struct {
	Tipo  string          `json:"tipo"  validate:"required,oneof=PERCENTUAL VALOR"`
	Valor decimal.Decimal `json:"valor" validate:"required,gt=0"`
}

type RegistrarVendaRequest struct {
	ClienteID  *string            `json:"clienteId"  validate:"omitempty,uuid"`
	Itens      []ItemVendaRequest `json:"itens"      validate:"required,min=1,dive"`
	Pagamentos []PagamentoRequest `json:"pagamentos" validate:"omitempty,dive"`
	Desconto   *AjusteValor       `json:"desconto"`
	Acrescimo  *AjusteValor       `json:"acrescimo"`
	// Status: "PENDENTE" (default) or "PAGO" — PAGO requires pagamentos.
	Status *string `json:"status" validate:"omitempty,oneof=PENDENTE PAGO"`
}

type AtualizarStatusVendaRequest struct {
	Status string `json:"status" validate:"required,oneof=PAGO CANCELADO"`
}

// VendaFilter is bound from the query string of GET /sales.
type VendaFilter struct {
	Data   string `form:"data"`   // YYYY-MM-DD; empty = today
	Status string `form:"status"` // PENDENTE | PAGO | CANCELADO | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVendaResponse struct {
	Nome          string          `json:"nome"`
	Quantidade    int             `json:"quantidade"`
	PrecoUnitario decimal.Decimal `json:"precoUnitario"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	BaixaEstoque  bool            `json:"baixaEstoque"`
}

type PagamentoResponse struct {
	MetodoPagamentoID string          `json:"metodoPagamentoId"`
	Valor             decimal.Decimal `json:"valor"`
	Parcelas          *int            `json:"parcelas"`
	CobrancaID        *string         `json:"cobrancaId"`
	LinkFatura        *string         `json:"linkFatura"`
}

type VendaResponse struct {
	ID            string              `json:"id"`
	ClienteID     *string             `json:"clienteId"`
	UsuarioID     string              `json:"usuarioId"`
	SessaoCaixaID string              `json:"sessaoCaixaId"`
	Itens         []ItemVendaResponse `json:"itens"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	Desconto      decimal.Decimal     `json:"desconto"`
	Acrescimo     decimal.Decimal     `json:"acrescimo"`
	Total         decimal.Decimal     `json:"total"`
	Troco         decimal.Decimal     `json:"troco"`
	Pagamentos    []PagamentoResponse `json:"pagamentos"`
	Status        string              `json:"status"`
	CreatedAt     string              `json:"createdAt"`
}

type VendaListResponse struct {
	Data  []VendaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
