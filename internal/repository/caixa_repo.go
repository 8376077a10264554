package repository

import (
	"context"

	"varejopos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CaixaRepository interface {
	CreateSessaoTx(tx *gorm.DB, s *model.SessaoCaixa) error
	// FindSessaoAberta returns gorm.ErrRecordNotFound when no session is ABERTO.
	FindSessaoAberta(ctx context.Context) (*model.SessaoCaixa, error)
	FindSessaoAbertaTx(tx *gorm.DB) (*model.SessaoCaixa, error)
	FindSessaoByID(ctx context.Context, id uuid.UUID) (*model.SessaoCaixa, error)
	UpdateSessaoTx(tx *gorm.DB, s *model.SessaoCaixa) error
	CreateMovimentacao(ctx context.Context, m *model.MovimentacaoCaixa) error
	// ListMovimentacoesTx reads inside the caller's transaction, so the close
	// summary sees a consistent snapshot of the session.
	ListMovimentacoesTx(tx *gorm.DB, sessaoID uuid.UUID) ([]model.MovimentacaoCaixa, error)
	DB() *gorm.DB // exposes the DB for transaction creation in the service layer
}

type caixaRepo struct{ db *gorm.DB }

func NewCaixaRepository(db *gorm.DB) CaixaRepository { return &caixaRepo{db: db} }

func (r *caixaRepo) DB() *gorm.DB { return r.db }

func (r *caixaRepo) CreateSessaoTx(tx *gorm.DB, s *model.SessaoCaixa) error {
	return tx.Create(s).Error
}

func (r *caixaRepo) FindSessaoAberta(ctx context.Context) (*model.SessaoCaixa, error) {
	var s model.SessaoCaixa
	err := r.db.WithContext(ctx).Where("status = ?", model.CaixaAberto).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *caixaRepo) FindSessaoAbertaTx(tx *gorm.DB) (*model.SessaoCaixa, error) {
	var s model.SessaoCaixa
	err := tx.Where("status = ?", model.CaixaAberto).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *caixaRepo) FindSessaoByID(ctx context.Context, id uuid.UUID) (*model.SessaoCaixa, error) {
	var s model.SessaoCaixa
	err := r.db.WithContext(ctx).Preload("Movimentacoes").First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *caixaRepo) UpdateSessaoTx(tx *gorm.DB, s *model.SessaoCaixa) error {
	return tx.Save(s).Error
}

func (r *caixaRepo) CreateMovimentacao(ctx context.Context, m *model.MovimentacaoCaixa) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *caixaRepo) ListMovimentacoesTx(tx *gorm.DB, sessaoID uuid.UUID) ([]model.MovimentacaoCaixa, error) {
	var movs []model.MovimentacaoCaixa
	err := tx.
		Where("sessao_caixa_id = ?", sessaoID).
		Order("created_at ASC").
		Find(&movs).Error
	return movs, err
}
