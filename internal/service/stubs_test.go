package service_test

// In-memory repository stubs. Services run their unit of work with a nil
// *gorm.DB (runTx passes it straight through), so every *Tx method here just
// mutates the maps directly.

import (
	"context"
	"strings"
	"time"

	"varejopos/internal/apperr"
	"varejopos/internal/dto"
	"varejopos/internal/infra"
	"varejopos/internal/model"
	"varejopos/internal/repository"
	"varejopos/internal/service"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── CaixaRepository ──────────────────────────────────────────────────────────

type stubCaixaRepo struct {
	sessoes map[uuid.UUID]*model.SessaoCaixa
	movs    []model.MovimentacaoCaixa
}

func newStubCaixaRepo() *stubCaixaRepo {
	return &stubCaixaRepo{sessoes: make(map[uuid.UUID]*model.SessaoCaixa)}
}

func (r *stubCaixaRepo) DB() *gorm.DB { return nil }

func (r *stubCaixaRepo) CreateSessaoTx(_ *gorm.DB, s *model.SessaoCaixa) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sessoes[s.ID] = s
	return nil
}

func (r *stubCaixaRepo) FindSessaoAberta(_ context.Context) (*model.SessaoCaixa, error) {
	return r.findAberta()
}

func (r *stubCaixaRepo) FindSessaoAbertaTx(_ *gorm.DB) (*model.SessaoCaixa, error) {
	return r.findAberta()
}

func (r *stubCaixaRepo) findAberta() (*model.SessaoCaixa, error) {
	for _, s := range r.sessoes {
		if s.Status == model.CaixaAberto {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCaixaRepo) FindSessaoByID(_ context.Context, id uuid.UUID) (*model.SessaoCaixa, error) {
	s, ok := r.sessoes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	s.Movimentacoes = nil
	for _, m := range r.movs {
		if m.SessaoCaixaID == id {
			s.Movimentacoes = append(s.Movimentacoes, m)
		}
	}
	return s, nil
}

func (r *stubCaixaRepo) UpdateSessaoTx(_ *gorm.DB, s *model.SessaoCaixa) error {
	r.sessoes[s.ID] = s
	return nil
}

func (r *stubCaixaRepo) CreateMovimentacao(_ context.Context, m *model.MovimentacaoCaixa) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movs = append(r.movs, *m)
	return nil
}

func (r *stubCaixaRepo) ListMovimentacoesTx(_ *gorm.DB, sessaoID uuid.UUID) ([]model.MovimentacaoCaixa, error) {
	var out []model.MovimentacaoCaixa
	for _, m := range r.movs {
		if m.SessaoCaixaID == sessaoID {
			out = append(out, m)
		}
	}
	return out, nil
}

var _ repository.CaixaRepository = (*stubCaixaRepo)(nil)

// ── VendaRepository ──────────────────────────────────────────────────────────

type stubVendaRepo struct {
	vendas map[uuid.UUID]*model.Venda
}

func newStubVendaRepo() *stubVendaRepo {
	return &stubVendaRepo{vendas: make(map[uuid.UUID]*model.Venda)}
}

func (r *stubVendaRepo) DB() *gorm.DB { return nil }

func (r *stubVendaRepo) CreateTx(_ *gorm.DB, v *model.Venda) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	r.vendas[v.ID] = v
	return nil
}

func (r *stubVendaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venda, error) {
	v, ok := r.vendas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *stubVendaRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status string) error {
	if v, ok := r.vendas[id]; ok {
		v.Status = status
	}
	return nil
}

func (r *stubVendaRepo) ListBySessaoTx(_ *gorm.DB, sessaoID uuid.UUID) ([]model.Venda, error) {
	var out []model.Venda
	for _, v := range r.vendas {
		if v.SessaoCaixaID == sessaoID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *stubVendaRepo) List(_ context.Context, filter dto.VendaFilter) ([]model.Venda, int64, error) {
	var out []model.Venda
	for _, v := range r.vendas {
		if filter.Status != "" && filter.Status != "all" && v.Status != filter.Status {
			continue
		}
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

var _ repository.VendaRepository = (*stubVendaRepo)(nil)

// ── EstoqueRepository ────────────────────────────────────────────────────────

type stubEstoqueRepo struct {
	movs []*model.MovimentacaoEstoque
}

func newStubEstoqueRepo() *stubEstoqueRepo { return &stubEstoqueRepo{} }

func (r *stubEstoqueRepo) DB() *gorm.DB { return nil }

func (r *stubEstoqueRepo) CreateTx(_ *gorm.DB, m *model.MovimentacaoEstoque) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	r.movs = append(r.movs, m)
	return nil
}

func (r *stubEstoqueRepo) FindByID(_ context.Context, id uuid.UUID) (*model.MovimentacaoEstoque, error) {
	for _, m := range r.movs {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubEstoqueRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.MovimentacaoEstoque, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubEstoqueRepo) UpdateTx(_ *gorm.DB, mov *model.MovimentacaoEstoque) error {
	for i, m := range r.movs {
		if m.ID == mov.ID {
			r.movs[i] = mov
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubEstoqueRepo) List(_ context.Context, filter dto.MovimentacaoEstoqueFilter) ([]model.MovimentacaoEstoque, int64, error) {
	var out []model.MovimentacaoEstoque
	for _, m := range r.movs {
		if filter.ProdutoID != "" && m.ProdutoID.String() != filter.ProdutoID {
			continue
		}
		if filter.Status != "" && m.Status != filter.Status {
			continue
		}
		if filter.Tipo != "" && m.Tipo != filter.Tipo {
			continue
		}
		out = append(out, *m)
	}
	return out, int64(len(out)), nil
}

func (r *stubEstoqueRepo) SumAprovado(_ context.Context, produtoID uuid.UUID) (int, error) {
	saldo := 0
	for _, m := range r.movs {
		if m.ProdutoID == produtoID && m.Status == model.EstoqueAprovado {
			saldo += m.Quantidade
		}
	}
	return saldo, nil
}

func (r *stubEstoqueRepo) ProdutosComMovimentacao(_ context.Context) ([]uuid.UUID, error) {
	seen := map[uuid.UUID]bool{}
	var ids []uuid.UUID
	for _, m := range r.movs {
		if m.Status == model.EstoqueAprovado && !seen[m.ProdutoID] {
			seen[m.ProdutoID] = true
			ids = append(ids, m.ProdutoID)
		}
	}
	return ids, nil
}

var _ repository.EstoqueRepository = (*stubEstoqueRepo)(nil)

// ── Catalog repositories ─────────────────────────────────────────────────────

type stubProdutoRepo struct {
	produtos map[uuid.UUID]*model.Produto
}

func newStubProdutoRepo() *stubProdutoRepo {
	return &stubProdutoRepo{produtos: make(map[uuid.UUID]*model.Produto)}
}

func (r *stubProdutoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Produto, error) {
	p, ok := r.produtos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProdutoRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Produto, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubProdutoRepo) AjustarEstoqueTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	if p, ok := r.produtos[id]; ok {
		p.EstoqueAtual += delta
	}
	return nil
}

func (r *stubProdutoRepo) DefinirEstoque(_ context.Context, id uuid.UUID, saldo int) error {
	if p, ok := r.produtos[id]; ok {
		p.EstoqueAtual = saldo
	}
	return nil
}

var _ repository.ProdutoRepository = (*stubProdutoRepo)(nil)

type stubServicoRepo struct {
	servicos map[uuid.UUID]*model.Servico
}

func newStubServicoRepo() *stubServicoRepo {
	return &stubServicoRepo{servicos: make(map[uuid.UUID]*model.Servico)}
}

func (r *stubServicoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Servico, error) {
	s, ok := r.servicos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

var _ repository.ServicoRepository = (*stubServicoRepo)(nil)

type stubClienteRepo struct {
	clientes map[uuid.UUID]*model.Cliente
}

func newStubClienteRepo() *stubClienteRepo {
	return &stubClienteRepo{clientes: make(map[uuid.UUID]*model.Cliente)}
}

func (r *stubClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubClienteRepo) SetGatewayClienteIDTx(_ *gorm.DB, id uuid.UUID, gatewayID string) error {
	if c, ok := r.clientes[id]; ok {
		c.GatewayClienteID = &gatewayID
	}
	return nil
}

var _ repository.ClienteRepository = (*stubClienteRepo)(nil)

type stubMetodoRepo struct {
	metodos map[uuid.UUID]*model.MetodoPagamento
}

func newStubMetodoRepo() *stubMetodoRepo {
	return &stubMetodoRepo{metodos: make(map[uuid.UUID]*model.MetodoPagamento)}
}

func (r *stubMetodoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.MetodoPagamento, error) {
	m, ok := r.metodos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

var _ repository.MetodoPagamentoRepository = (*stubMetodoRepo)(nil)

type stubConfigRepo struct {
	cfg model.Configuracao
}

func (r *stubConfigRepo) Get(_ context.Context) (*model.Configuracao, error) {
	c := r.cfg
	return &c, nil
}

var _ repository.ConfiguracaoRepository = (*stubConfigRepo)(nil)

// ── CobrancaGateway fake ─────────────────────────────────────────────────────

// fakeGateway mirrors the real client's pre-flight guards so validation
// behavior matches production without HTTP.
type fakeGateway struct {
	criadas      []infra.CobrancaRequest
	canceladas   []string
	failCriar    error
	failCancelar error
}

func (g *fakeGateway) ResolverCliente(_ context.Context, cliente *model.Cliente) (string, error) {
	if cliente.CpfCnpj == nil || *cliente.CpfCnpj == "" {
		return "", apperr.Validation("cliente %s não possui CPF/CNPJ para faturamento", cliente.Nome)
	}
	if cliente.DiaVencimento == nil {
		return "", apperr.Validation("cliente %s não possui dia de vencimento configurado", cliente.Nome)
	}
	if cliente.GatewayClienteID != nil && *cliente.GatewayClienteID != "" {
		return *cliente.GatewayClienteID, nil
	}
	return "cus_" + strings.ToLower(cliente.Nome), nil
}

func (g *fakeGateway) CriarCobranca(_ context.Context, req infra.CobrancaRequest) (*infra.CobrancaResult, error) {
	if g.failCriar != nil {
		return nil, g.failCriar
	}
	g.criadas = append(g.criadas, req)
	return &infra.CobrancaResult{
		ID:         "pay_" + req.VendaID[:8],
		LinkFatura: "https://faturas.example/pay_" + req.VendaID[:8],
	}, nil
}

func (g *fakeGateway) CancelarCobranca(_ context.Context, cobrancaID string) error {
	if g.failCancelar != nil {
		return g.failCancelar
	}
	g.canceladas = append(g.canceladas, cobrancaID)
	return nil
}

var _ service.CobrancaGateway = (*fakeGateway)(nil)
