package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessaoCaixa represents the lifecycle of a cash register session.
// Status: "ABERTO" | "FECHADO". At most one session may be ABERTO at any
// time — enforced by a partial unique index (see infra.NewDatabase).
type SessaoCaixa struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ValorAbertura decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// ValorFechamentoCalculado is the expected drawer amount computed on close:
	// abertura + net cash sales + entradas manuais − saidas manuais.
	ValorFechamentoCalculado *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ValorFechamentoInformado *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Diferenca                *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Status                   string           `gorm:"type:varchar(10);not null;default:'ABERTO'"`
	AbertoPor                uuid.UUID        `gorm:"type:uuid;not null"`
	FechadoPor               *uuid.UUID       `gorm:"type:uuid"`
	Observacoes              *string
	OpenedAt                 time.Time
	ClosedAt                 *time.Time

	Movimentacoes []MovimentacaoCaixa `gorm:"foreignKey:SessaoCaixaID"`
}

func (SessaoCaixa) TableName() string { return "sessoes_caixa" }

// MovimentacaoCaixa is an immutable manual entry in the cash register ledger.
// Tipo: "ENTRADA" | "SAIDA". Valor is signed: SAIDA is stored negative.
// Movements are NEVER modified or deleted.
type MovimentacaoCaixa struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessaoCaixaID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Tipo          string          `gorm:"type:varchar(10);not null"`
	Valor         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Motivo        string          `gorm:"not null"`
	UsuarioID     uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt     time.Time
}

func (MovimentacaoCaixa) TableName() string { return "movimentacoes_caixa" }

const (
	CaixaAberto  = "ABERTO"
	CaixaFechado = "FECHADO"

	CaixaEntrada = "ENTRADA"
	CaixaSaida   = "SAIDA"
)
