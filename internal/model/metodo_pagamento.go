package model

import (
	"time"

	"github.com/google/uuid"
)

// IntegracaoCreditoExterno marks payment methods settled through the
// external credit-billing gateway.
const IntegracaoCreditoExterno = "EXTERNAL_CREDIT"

// MetodoPagamento identifies a way of paying. The core only cares about two
// stable markers: EDinheiro (counts toward the physical drawer) and
// Integracao (gateway-backed credit methods).
type MetodoPagamento struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome      string    `gorm:"not null"`
	EDinheiro bool      `gorm:"not null;default:false"`
	Integracao string   `gorm:"type:varchar(20);not null;default:''"`
	Ativo     bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (MetodoPagamento) TableName() string { return "metodos_pagamento" }
