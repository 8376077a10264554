package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cliente holds the customer fields the sale engine consumes. Credit billing
// through the gateway requires CpfCnpj and DiaVencimento.
type Cliente struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome    string    `gorm:"not null"`
	Email   *string
	CpfCnpj *string `gorm:"type:varchar(18);uniqueIndex"`
	// DiaVencimento is the customer's billing due day-of-month (1–28).
	DiaVencimento *int
	JurosMensal   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Multa         decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	// GatewayClienteID caches the external billing provider's customer id.
	GatewayClienteID *string `gorm:"type:varchar(64)"`
	Ativo            bool    `gorm:"not null;default:true"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Cliente) TableName() string { return "clientes" }
