package service_test

import (
	"context"
	"testing"

	"varejopos/internal/apperr"
	"varejopos/internal/dto"
	"varejopos/internal/model"
	"varejopos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type estoqueHarness struct {
	svc         service.EstoqueService
	estoqueRepo *stubEstoqueRepo
	produtoRepo *stubProdutoRepo
	produto     *model.Produto
}

func newEstoqueHarness(exigeAprovacao bool) *estoqueHarness {
	estoqueRepo := newStubEstoqueRepo()
	produtoRepo := newStubProdutoRepo()
	configSvc := service.NewConfiguracaoService(&stubConfigRepo{
		cfg: model.Configuracao{AprovacaoEstoque: exigeAprovacao},
	}, nil)

	produto := &model.Produto{
		ID:              uuid.New(),
		Nome:            "Shampoo 500ml",
		Preco:           decimal.NewFromInt(25),
		EstoqueAtual:    10,
		ControlaEstoque: true,
		Ativo:           true,
	}
	produtoRepo.produtos[produto.ID] = produto

	return &estoqueHarness{
		svc:         service.NewEstoqueService(estoqueRepo, produtoRepo, configSvc),
		estoqueRepo: estoqueRepo,
		produtoRepo: produtoRepo,
		produto:     produto,
	}
}

func TestRegistrarNormalizaSinal(t *testing.T) {
	h := newEstoqueHarness(false)

	saida, err := h.svc.Registrar(context.Background(), dto.RegistrarMovimentacaoRequest{
		ProdutoID: h.produto.ID.String(), Tipo: model.EstoqueSaida,
		Motivo: model.MotivoAjusteInventario, Quantidade: 5,
	}, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, -5, saida.Quantidade)

	entrada, err := h.svc.Registrar(context.Background(), dto.RegistrarMovimentacaoRequest{
		ProdutoID: h.produto.ID.String(), Tipo: model.EstoqueEntrada,
		Motivo: model.MotivoCompra, Quantidade: -3,
	}, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 3, entrada.Quantidade)
}

func TestRegistrarAprovacaoDesativadaAtualizaSaldo(t *testing.T) {
	h := newEstoqueHarness(false)

	resp, err := h.svc.Registrar(context.Background(), dto.RegistrarMovimentacaoRequest{
		ProdutoID: h.produto.ID.String(), Tipo: model.EstoqueEntrada,
		Motivo: model.MotivoCompra, Quantidade: 4,
	}, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, model.EstoqueAprovado, resp.Status)
	assert.Equal(t, 14, h.produto.EstoqueAtual)
}

func TestRegistrarAprovacaoAtivaFicaPendente(t *testing.T) {
	h := newEstoqueHarness(true)

	resp, err := h.svc.Registrar(context.Background(), dto.RegistrarMovimentacaoRequest{
		ProdutoID: h.produto.ID.String(), Tipo: model.EstoqueEntrada,
		Motivo: model.MotivoCompra, Quantidade: 4,
	}, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, model.EstoquePendente, resp.Status)
	// Saldo só muda na aprovação.
	assert.Equal(t, 10, h.produto.EstoqueAtual)
}

func TestAprovarMovimentacao(t *testing.T) {
	h := newEstoqueHarness(true)
	solicitante := uuid.New()
	aprovador := uuid.New()

	resp, err := h.svc.Registrar(context.Background(), dto.RegistrarMovimentacaoRequest{
		ProdutoID: h.produto.ID.String(), Tipo: model.EstoqueSaida,
		Motivo: model.MotivoAjusteInventario, Quantidade: 2,
	}, solicitante)
	require.NoError(t, err)
	movID := uuid.MustParse(resp.ID)

	aprovada, err := h.svc.AtualizarStatus(context.Background(), movID,
		dto.AtualizarStatusMovimentacaoRequest{Action: "APROVAR"}, aprovador)
	require.NoError(t, err)

	assert.Equal(t, model.EstoqueAprovado, aprovada.Status)
	require.NotNil(t, aprovada.AprovadoPor)
	assert.Equal(t, aprovador.String(), *aprovada.AprovadoPor)
	assert.Equal(t, 8, h.produto.EstoqueAtual)
}

func TestAprovarDuasVezes(t *testing.T) {
	h := newEstoqueHarness(true)
	aprovador := uuid.New()

	resp, err := h.svc.Registrar(context.Background(), dto.RegistrarMovimentacaoRequest{
		ProdutoID: h.produto.ID.String(), Tipo: model.EstoqueEntrada,
		Motivo: model.MotivoCompra, Quantidade: 1,
	}, uuid.New())
	require.NoError(t, err)
	movID := uuid.MustParse(resp.ID)

	_, err = h.svc.AtualizarStatus(context.Background(), movID,
		dto.AtualizarStatusMovimentacaoRequest{Action: "APROVAR"}, aprovador)
	require.NoError(t, err)

	_, err = h.svc.AtualizarStatus(context.Background(), movID,
		dto.AtualizarStatusMovimentacaoRequest{Action: "APROVAR"}, aprovador)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidState))
	// Aprovação dupla não pode contar duas vezes no saldo.
	assert.Equal(t, 11, h.produto.EstoqueAtual)
}

func TestAprovarPropriaMovimentacao(t *testing.T) {
	h := newEstoqueHarness(true)
	solicitante := uuid.New()

	resp, err := h.svc.Registrar(context.Background(), dto.RegistrarMovimentacaoRequest{
		ProdutoID: h.produto.ID.String(), Tipo: model.EstoqueEntrada,
		Motivo: model.MotivoCompra, Quantidade: 1,
	}, solicitante)
	require.NoError(t, err)

	_, err = h.svc.AtualizarStatus(context.Background(), uuid.MustParse(resp.ID),
		dto.AtualizarStatusMovimentacaoRequest{Action: "APROVAR"}, solicitante)
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
}

func TestRejeitarExigeMotivo(t *testing.T) {
	h := newEstoqueHarness(true)

	resp, err := h.svc.Registrar(context.Background(), dto.RegistrarMovimentacaoRequest{
		ProdutoID: h.produto.ID.String(), Tipo: model.EstoqueSaida,
		Motivo: model.MotivoAjusteInventario, Quantidade: 2,
	}, uuid.New())
	require.NoError(t, err)
	movID := uuid.MustParse(resp.ID)

	_, err = h.svc.AtualizarStatus(context.Background(), movID,
		dto.AtualizarStatusMovimentacaoRequest{Action: "REJEITAR"}, uuid.New())
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))

	motivo := "contagem física não confere"
	rejeitada, err := h.svc.AtualizarStatus(context.Background(), movID,
		dto.AtualizarStatusMovimentacaoRequest{Action: "REJEITAR", RejectionReason: &motivo}, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, model.EstoqueRejeitado, rejeitada.Status)
	require.NotNil(t, rejeitada.MotivoRejeicao)
	assert.Equal(t, motivo, *rejeitada.MotivoRejeicao)
	// Rejeitada nunca toca o saldo.
	assert.Equal(t, 10, h.produto.EstoqueAtual)
}

func TestMotivoVendaManualNaoPulaAprovacao(t *testing.T) {
	// O motivo é texto livre no endpoint manual: usar "VENDA" não pode
	// atropelar a fila de aprovação. Só movimentações vindas de uma venda
	// são auto-aprovadas.
	h := newEstoqueHarness(true)

	resp, err := h.svc.Registrar(context.Background(), dto.RegistrarMovimentacaoRequest{
		ProdutoID: h.produto.ID.String(), Tipo: model.EstoqueSaida,
		Motivo: model.MotivoVenda, Quantidade: 2,
	}, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, model.EstoquePendente, resp.Status)
	assert.Equal(t, 10, h.produto.EstoqueAtual)
}

func TestMovimentacaoDeVendaAutoAprovada(t *testing.T) {
	h := newEstoqueHarness(true)
	vendaID := uuid.New()

	mov, err := h.svc.RegistrarTx(context.Background(), nil, service.RegistroEstoque{
		ProdutoID:   h.produto.ID,
		Tipo:        model.EstoqueSaida,
		Motivo:      model.MotivoVenda,
		Quantidade:  2,
		Solicitante: uuid.New(),
		VendaID:     &vendaID,
	})
	require.NoError(t, err)

	assert.Equal(t, model.EstoqueAprovado, mov.Status)
	assert.Equal(t, 8, h.produto.EstoqueAtual)
}

func TestMovimentacaoQuantidadeZero(t *testing.T) {
	h := newEstoqueHarness(false)

	_, err := h.svc.Registrar(context.Background(), dto.RegistrarMovimentacaoRequest{
		ProdutoID: h.produto.ID.String(), Tipo: model.EstoqueAjuste,
		Motivo: model.MotivoAjusteInventario, Quantidade: 0,
	}, uuid.New())
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
}

func TestRecalcularCorrigeCache(t *testing.T) {
	h := newEstoqueHarness(false)

	// Histórico aprovado: +4 e -1 ⇒ saldo autoritativo 3; cache adulterado.
	for _, q := range []int{4, -1} {
		tipo := model.EstoqueEntrada
		if q < 0 {
			tipo = model.EstoqueSaida
		}
		_, err := h.svc.Registrar(context.Background(), dto.RegistrarMovimentacaoRequest{
			ProdutoID: h.produto.ID.String(), Tipo: tipo,
			Motivo: model.MotivoAjusteInventario, Quantidade: q,
		}, uuid.New())
		require.NoError(t, err)
	}
	h.produto.EstoqueAtual = 999

	resp, err := h.svc.Recalcular(context.Background(), h.produto.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, resp.Saldo)
	assert.Equal(t, 3, h.produto.EstoqueAtual)
}

func TestRegistrarProdutoInexistente(t *testing.T) {
	h := newEstoqueHarness(false)

	_, err := h.svc.Registrar(context.Background(), dto.RegistrarMovimentacaoRequest{
		ProdutoID: uuid.New().String(), Tipo: model.EstoqueEntrada,
		Motivo: model.MotivoCompra, Quantidade: 1,
	}, uuid.New())
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}
