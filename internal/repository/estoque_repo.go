package repository

import (
	"context"

	"varejopos/internal/dto"
	"varejopos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EstoqueRepository interface {
	CreateTx(tx *gorm.DB, m *model.MovimentacaoEstoque) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.MovimentacaoEstoque, error)
	// FindByIDTx locks the row for the rest of the transaction, so concurrent
	// approvals of the same movement serialize.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.MovimentacaoEstoque, error)
	// UpdateTx persists approval-state changes. The ledger is append-only:
	// this is only ever called on a PENDENTE movement transitioning state.
	UpdateTx(tx *gorm.DB, m *model.MovimentacaoEstoque) error
	List(ctx context.Context, filter dto.MovimentacaoEstoqueFilter) ([]model.MovimentacaoEstoque, int64, error)
	// SumAprovado recomputes the authoritative balance for a product.
	SumAprovado(ctx context.Context, produtoID uuid.UUID) (int, error)
	// ProdutosComMovimentacao lists product ids with at least one APROVADO
	// movement — the audit cron's work set.
	ProdutosComMovimentacao(ctx context.Context) ([]uuid.UUID, error)
	DB() *gorm.DB
}

type estoqueRepo struct{ db *gorm.DB }

func NewEstoqueRepository(db *gorm.DB) EstoqueRepository { return &estoqueRepo{db: db} }

func (r *estoqueRepo) DB() *gorm.DB { return r.db }

func (r *estoqueRepo) CreateTx(tx *gorm.DB, m *model.MovimentacaoEstoque) error {
	return tx.Create(m).Error
}

func (r *estoqueRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.MovimentacaoEstoque, error) {
	var m model.MovimentacaoEstoque
	err := r.db.WithContext(ctx).First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *estoqueRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.MovimentacaoEstoque, error) {
	var m model.MovimentacaoEstoque
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *estoqueRepo) UpdateTx(tx *gorm.DB, m *model.MovimentacaoEstoque) error {
	return tx.Save(m).Error
}

func (r *estoqueRepo) List(ctx context.Context, filter dto.MovimentacaoEstoqueFilter) ([]model.MovimentacaoEstoque, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.MovimentacaoEstoque{})
	if filter.ProdutoID != "" {
		q = q.Where("produto_id = ?", filter.ProdutoID)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var movs []model.MovimentacaoEstoque
	err := q.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&movs).Error
	return movs, total, err
}

func (r *estoqueRepo) SumAprovado(ctx context.Context, produtoID uuid.UUID) (int, error) {
	var saldo int
	err := r.db.WithContext(ctx).
		Model(&model.MovimentacaoEstoque{}).
		Select("COALESCE(SUM(quantidade), 0)").
		Where("produto_id = ? AND status = ?", produtoID, model.EstoqueAprovado).
		Scan(&saldo).Error
	return saldo, err
}

func (r *estoqueRepo) ProdutosComMovimentacao(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.MovimentacaoEstoque{}).
		Distinct("produto_id").
		Where("status = ?", model.EstoqueAprovado).
		Pluck("produto_id", &ids).Error
	return ids, err
}
