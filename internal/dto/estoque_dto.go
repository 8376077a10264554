package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RegistrarMovimentacaoRequest struct {
	ProdutoID  string  `json:"produtoId"  validate:"required,uuid"`
	Tipo       string  `json:"tipo"       validate:"required,oneof=ENTRADA SAIDA AJUSTE"`
	Motivo     string  `json:"motivo"     validate:"required,min=3"`
	Quantidade int     `json:"quantidade" validate:"required"`
	Observacao *string `json:"observacao"`
}

type AtualizarStatusMovimentacaoRequest struct {
	Action          string  `json:"action" validate:"required,oneof=APROVAR REJEITAR"`
	RejectionReason *string `json:"rejectionReason"`
}

// MovimentacaoEstoqueFilter is bound from the query string of GET /stock/movements.
type MovimentacaoEstoqueFilter struct {
	ProdutoID string `form:"produtoId" validate:"omitempty,uuid"`
	Tipo      string `form:"tipo"      validate:"omitempty,oneof=ENTRADA SAIDA AJUSTE"`
	Status    string `form:"status"    validate:"omitempty,oneof=PENDENTE APROVADO REJEITADO"`
	Page      int    `form:"page,default=1"    validate:"min=1"`
	Limit     int    `form:"limit,default=100" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovimentacaoEstoqueResponse struct {
	ID             string  `json:"id"`
	ProdutoID      string  `json:"produtoId"`
	Tipo           string  `json:"tipo"`
	Motivo         string  `json:"motivo"`
	Quantidade     int     `json:"quantidade"`
	Status         string  `json:"status"`
	SolicitadoPor  string  `json:"solicitadoPor"`
	AprovadoPor    *string `json:"aprovadoPor"`
	AprovadoEm     *string `json:"aprovadoEm"`
	MotivoRejeicao *string `json:"motivoRejeicao"`
	VendaID        *string `json:"vendaId"`
	Observacao     *string `json:"observacao"`
	CreatedAt      string  `json:"createdAt"`
}

type MovimentacaoEstoqueListResponse struct {
	Data  []MovimentacaoEstoqueResponse `json:"data"`
	Total int64                         `json:"total"`
	Page  int                           `json:"page"`
	Limit int                           `json:"limit"`
}

type SaldoProdutoResponse struct {
	ProdutoID string `json:"produtoId"`
	Saldo     int    `json:"saldo"`
}
