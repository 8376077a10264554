package model

import (
	"time"

	"github.com/google/uuid"
)

// Configuracao is the single-row settings record the core consumes from the
// settings collaborator.
type Configuracao struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// AprovacaoEstoque: when true, new stock movements enter as PENDENTE and
	// only affect balances after approval.
	AprovacaoEstoque bool `gorm:"not null;default:false"`
	// Billing gateway credentials (may also come from env config).
	BillingAPIKey *string
	BillingEnv    *string `gorm:"type:varchar(20)"` // sandbox | production
	UpdatedAt     time.Time
}

func (Configuracao) TableName() string { return "configuracoes" }

// Usuario is the employee/actor record referenced by sales, cash sessions
// and stock movements. Authentication lives in an external collaborator.
type Usuario struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome      string    `gorm:"not null"`
	Role      string    `gorm:"type:varchar(20);not null"`
	Ativo     bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Usuario) TableName() string { return "usuarios" }
