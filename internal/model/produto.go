package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Produto is a catalog product. EstoqueAtual is a denormalized running
// balance: it is bumped exactly when a movement becomes APROVADO and is
// recomputable at any time as SUM(quantidade) over APROVADO movements —
// the recomputation is the authoritative definition, the column is a cache.
type Produto struct {
	ID    uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome  string          `gorm:"index;not null"`
	Preco decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	EstoqueAtual int `gorm:"not null;default:0"`
	// ControlaEstoque marks products whose sale generates ledger movements.
	ControlaEstoque bool `gorm:"not null;default:true"`

	Ativo     bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Produto) TableName() string { return "produtos" }

// Servico is a catalog service — sold like a product but never stock-counted.
type Servico struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome      string          `gorm:"index;not null"`
	Preco     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Ativo     bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Servico) TableName() string { return "servicos" }
