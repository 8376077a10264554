package model

import (
	"time"

	"github.com/google/uuid"
)

// Stock movement kinds and approval states.
const (
	EstoqueEntrada = "ENTRADA"
	EstoqueSaida   = "SAIDA"
	EstoqueAjuste  = "AJUSTE"

	EstoquePendente  = "PENDENTE"
	EstoqueAprovado  = "APROVADO"
	EstoqueRejeitado = "REJEITADO"
)

// Canonical movement reasons. Free text is allowed; these are the ones the
// engine writes itself.
const (
	MotivoVenda             = "VENDA"
	MotivoCancelamentoVenda = "CANCELAMENTO_VENDA"
	MotivoCompra            = "COMPRA"
	MotivoAjusteInventario  = "AJUSTE_INVENTARIO"
)

// MovimentacaoEstoque is one entry in the append-only stock ledger.
// Quantidade is signed: ENTRADA positive, SAIDA negative (enforced at write
// time), AJUSTE as given. Only APROVADO entries contribute to current stock.
// Approval/rejection is the only allowed mutation, and only from PENDENTE.
type MovimentacaoEstoque struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProdutoID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Tipo       string    `gorm:"type:varchar(10);not null"`
	Motivo     string    `gorm:"not null"`
	Quantidade int       `gorm:"not null"`
	Status     string    `gorm:"type:varchar(10);not null;default:'APROVADO';index"`

	SolicitadoPor  uuid.UUID  `gorm:"type:uuid;not null"`
	AprovadoPor    *uuid.UUID `gorm:"type:uuid"`
	AprovadoEm     *time.Time
	MotivoRejeicao *string

	// VendaID links movements created by the sale engine to their sale.
	VendaID    *uuid.UUID `gorm:"type:uuid;index"`
	Observacao *string
	CreatedAt  time.Time

	Produto *Produto `gorm:"foreignKey:ProdutoID"`
}

func (MovimentacaoEstoque) TableName() string { return "movimentacoes_estoque" }
