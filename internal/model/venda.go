package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venda status values. Transitions: PENDENTE→PAGO, PENDENTE→CANCELADO,
// PAGO→CANCELADO. CANCELADO is terminal.
const (
	VendaPendente  = "PENDENTE"
	VendaPaga      = "PAGO"
	VendaCancelada = "CANCELADO"
)

// Venda is a sale. Invariant: Total = Subtotal − Desconto + Acrescimo.
type Venda struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClienteID     *uuid.UUID `gorm:"type:uuid;index"`
	UsuarioID     uuid.UUID  `gorm:"type:uuid;not null"`
	SessaoCaixaID uuid.UUID  `gorm:"type:uuid;index;not null"`

	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Desconto  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Acrescimo decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Troco is the change handed back when tendered payments exceed Total.
	Troco decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	Status    string `gorm:"type:varchar(10);not null;default:'PENDENTE'"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Cliente    *Cliente         `gorm:"foreignKey:ClienteID"`
	Itens      []VendaItem      `gorm:"foreignKey:VendaID"`
	Pagamentos []VendaPagamento `gorm:"foreignKey:VendaID"`
}

func (Venda) TableName() string { return "vendas" }

// VendaItem is one line of a sale. Nome is a snapshot so the line survives
// catalog deletion. Synthetic discount/surcharge lines are persisted as
// items with negative/positive Subtotal and BaixaEstoque=false.
type VendaItem struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VendaID   uuid.UUID  `gorm:"type:uuid;index;not null"`
	ProdutoID *uuid.UUID `gorm:"type:uuid;index"`
	ServicoID *uuid.UUID `gorm:"type:uuid;index"`

	Nome          string          `gorm:"not null"`
	PrecoUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantidade    int             `gorm:"not null"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// BaixaEstoque marks items that count against stock (stocked products only).
	BaixaEstoque bool `gorm:"not null;default:false"`
}

func (VendaItem) TableName() string { return "venda_itens" }

// VendaPagamento is one payment applied to a sale. CobrancaID/LinkFatura are
// set only for gateway-backed credit methods.
type VendaPagamento struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VendaID           uuid.UUID       `gorm:"type:uuid;index;not null"`
	MetodoPagamentoID uuid.UUID       `gorm:"type:uuid;not null"`
	Valor             decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Parcelas          *int
	CobrancaID        *string `gorm:"type:varchar(64)"`
	LinkFatura        *string

	MetodoPagamento *MetodoPagamento `gorm:"foreignKey:MetodoPagamentoID"`
}

func (VendaPagamento) TableName() string { return "venda_pagamentos" }
