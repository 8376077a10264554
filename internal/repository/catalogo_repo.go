package repository

// Catalog repositories — products, services, customers, payment methods,
// settings. CRUD for these entities lives in an external collaborator; the
// core only reads them (and writes the customer's cached gateway id and the
// product's stock balance cache).

import (
	"context"

	"varejopos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProdutoRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Produto, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Produto, error)
	// AjustarEstoqueTx bumps the denormalized balance cache by delta.
	AjustarEstoqueTx(tx *gorm.DB, id uuid.UUID, delta int) error
	// DefinirEstoque overwrites the balance cache — used by recalculation.
	DefinirEstoque(ctx context.Context, id uuid.UUID, saldo int) error
}

type produtoRepo struct{ db *gorm.DB }

func NewProdutoRepository(db *gorm.DB) ProdutoRepository { return &produtoRepo{db: db} }

func (r *produtoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Produto, error) {
	var p model.Produto
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *produtoRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Produto, error) {
	var p model.Produto
	if err := tx.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *produtoRepo) AjustarEstoqueTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	return tx.Model(&model.Produto{}).
		Where("id = ?", id).
		UpdateColumn("estoque_atual", gorm.Expr("estoque_atual + ?", delta)).Error
}

func (r *produtoRepo) DefinirEstoque(ctx context.Context, id uuid.UUID, saldo int) error {
	return r.db.WithContext(ctx).Model(&model.Produto{}).
		Where("id = ?", id).
		UpdateColumn("estoque_atual", saldo).Error
}

type ServicoRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Servico, error)
}

type servicoRepo struct{ db *gorm.DB }

func NewServicoRepository(db *gorm.DB) ServicoRepository { return &servicoRepo{db: db} }

func (r *servicoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Servico, error) {
	var s model.Servico
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

type ClienteRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error)
	// SetGatewayClienteIDTx persists the external billing id resolved during
	// a sale, inside the sale's transaction.
	SetGatewayClienteIDTx(tx *gorm.DB, id uuid.UUID, gatewayID string) error
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *clienteRepo) SetGatewayClienteIDTx(tx *gorm.DB, id uuid.UUID, gatewayID string) error {
	return tx.Model(&model.Cliente{}).
		Where("id = ?", id).
		Update("gateway_cliente_id", gatewayID).Error
}

type MetodoPagamentoRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.MetodoPagamento, error)
}

type metodoPagamentoRepo struct{ db *gorm.DB }

func NewMetodoPagamentoRepository(db *gorm.DB) MetodoPagamentoRepository {
	return &metodoPagamentoRepo{db: db}
}

func (r *metodoPagamentoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.MetodoPagamento, error) {
	var m model.MetodoPagamento
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

type ConfiguracaoRepository interface {
	// Get returns the single settings row, or a zero-value default when the
	// row does not exist yet.
	Get(ctx context.Context) (*model.Configuracao, error)
}

type configuracaoRepo struct{ db *gorm.DB }

func NewConfiguracaoRepository(db *gorm.DB) ConfiguracaoRepository {
	return &configuracaoRepo{db: db}
}

func (r *configuracaoRepo) Get(ctx context.Context) (*model.Configuracao, error) {
	var c model.Configuracao
	err := r.db.WithContext(ctx).First(&c).Error
	if err == gorm.ErrRecordNotFound {
		return &model.Configuracao{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
