package repository

import (
	"context"

	"varejopos/internal/dto"
	"varejopos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VendaRepository interface {
	CreateTx(tx *gorm.DB, v *model.Venda) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venda, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error
	// ListBySessaoTx returns the session's sales with payments loaded, read
	// inside the caller's transaction. Used by the cash summary.
	ListBySessaoTx(tx *gorm.DB, sessaoID uuid.UUID) ([]model.Venda, error)
	List(ctx context.Context, filter dto.VendaFilter) ([]model.Venda, int64, error)
	DB() *gorm.DB
}

type vendaRepo struct{ db *gorm.DB }

func NewVendaRepository(db *gorm.DB) VendaRepository { return &vendaRepo{db: db} }

func (r *vendaRepo) DB() *gorm.DB { return r.db }

func (r *vendaRepo) CreateTx(tx *gorm.DB, v *model.Venda) error {
	return tx.Create(v).Error
}

func (r *vendaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venda, error) {
	var v model.Venda
	err := r.db.WithContext(ctx).
		Preload("Itens").
		Preload("Pagamentos.MetodoPagamento").
		Preload("Cliente").
		First(&v, id).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *vendaRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error {
	return tx.Model(&model.Venda{}).Where("id = ?", id).Update("status", status).Error
}

func (r *vendaRepo) ListBySessaoTx(tx *gorm.DB, sessaoID uuid.UUID) ([]model.Venda, error) {
	var vendas []model.Venda
	err := tx.
		Preload("Pagamentos.MetodoPagamento").
		Where("sessao_caixa_id = ?", sessaoID).
		Order("created_at ASC").
		Find(&vendas).Error
	return vendas, err
}

func (r *vendaRepo) List(ctx context.Context, filter dto.VendaFilter) ([]model.Venda, int64, error) {
	var vendas []model.Venda
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Venda{})

	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Data != "" {
		q = q.Where("DATE(created_at) = ?", filter.Data)
	} else {
		q = q.Where("DATE(created_at) = CURRENT_DATE")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Itens").Preload("Pagamentos.MetodoPagamento").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&vendas).Error

	return vendas, total, err
}
