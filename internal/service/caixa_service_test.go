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

func newCaixaHarness() (service.CaixaService, *stubCaixaRepo, *stubVendaRepo) {
	caixaRepo := newStubCaixaRepo()
	vendaRepo := newStubVendaRepo()
	return service.NewCaixaService(caixaRepo, vendaRepo), caixaRepo, vendaRepo
}

// vendaDinheiro seeds a paid cash sale directly into the stub, with the
// payment method preloaded the way the repository would return it.
func vendaDinheiro(vendaRepo *stubVendaRepo, sessaoID uuid.UUID, valor, troco decimal.Decimal, status string) {
	metodo := &model.MetodoPagamento{ID: uuid.New(), Nome: "Dinheiro", EDinheiro: true, Ativo: true}
	venda := &model.Venda{
		ID:            uuid.New(),
		UsuarioID:     uuid.New(),
		SessaoCaixaID: sessaoID,
		Subtotal:      valor.Sub(troco),
		Total:         valor.Sub(troco),
		Troco:         troco,
		Status:        status,
		Pagamentos: []model.VendaPagamento{{
			ID:                uuid.New(),
			MetodoPagamentoID: metodo.ID,
			Valor:             valor,
			MetodoPagamento:   metodo,
		}},
	}
	vendaRepo.vendas[venda.ID] = venda
}

func TestAbrirCaixa(t *testing.T) {
	svc, _, _ := newCaixaHarness()

	resp, err := svc.Abrir(context.Background(), uuid.New(), dto.AbrirCaixaRequest{
		ValorAbertura: decimal.NewFromInt(100),
	})

	require.NoError(t, err)
	assert.Equal(t, model.CaixaAberto, resp.Status)
	assert.Equal(t, "100", resp.ValorAbertura.String())
	assert.Nil(t, resp.ClosedAt)
}

func TestAbrirCaixaDuplicada(t *testing.T) {
	svc, _, _ := newCaixaHarness()

	_, err := svc.Abrir(context.Background(), uuid.New(), dto.AbrirCaixaRequest{
		ValorAbertura: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	_, err = svc.Abrir(context.Background(), uuid.New(), dto.AbrirCaixaRequest{
		ValorAbertura: decimal.NewFromInt(50),
	})
	assert.True(t, apperr.IsCode(err, apperr.CodeConflict))
}

func TestFecharCaixaSemAberta(t *testing.T) {
	svc, _, _ := newCaixaHarness()

	_, err := svc.Fechar(context.Background(), uuid.New(), dto.FecharCaixaRequest{
		ValorFechamentoInformado: decimal.NewFromInt(100),
	})
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestFecharCaixaCalculaEsperado(t *testing.T) {
	// abertura 100 + venda em dinheiro 60 com troco 10 (líquido 50)
	// − saída manual 5 ⇒ esperado 145
	svc, _, vendaRepo := newCaixaHarness()
	usuario := uuid.New()

	aberta, err := svc.Abrir(context.Background(), usuario, dto.AbrirCaixaRequest{
		ValorAbertura: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	sessaoID := uuid.MustParse(aberta.ID)

	vendaDinheiro(vendaRepo, sessaoID, decimal.NewFromInt(60), decimal.NewFromInt(10), model.VendaPaga)

	_, err = svc.Movimentar(context.Background(), usuario, dto.MovimentarCaixaRequest{
		Tipo: model.CaixaSaida, Valor: decimal.NewFromInt(5), Motivo: "compra de papel",
	})
	require.NoError(t, err)

	fechada, err := svc.Fechar(context.Background(), usuario, dto.FecharCaixaRequest{
		ValorFechamentoInformado: decimal.NewFromInt(150),
	})
	require.NoError(t, err)

	assert.Equal(t, model.CaixaFechado, fechada.Status)
	require.NotNil(t, fechada.ValorFechamentoCalculado)
	assert.Equal(t, "145", fechada.ValorFechamentoCalculado.String())
	require.NotNil(t, fechada.Diferenca)
	assert.Equal(t, "5", fechada.Diferenca.String())
	assert.NotNil(t, fechada.ClosedAt)
}

func TestResumoIgnoraVendaCancelada(t *testing.T) {
	svc, _, vendaRepo := newCaixaHarness()
	usuario := uuid.New()

	aberta, err := svc.Abrir(context.Background(), usuario, dto.AbrirCaixaRequest{
		ValorAbertura: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	sessaoID := uuid.MustParse(aberta.ID)

	vendaDinheiro(vendaRepo, sessaoID, decimal.NewFromInt(40), decimal.Zero, model.VendaPaga)
	vendaDinheiro(vendaRepo, sessaoID, decimal.NewFromInt(500), decimal.Zero, model.VendaCancelada)

	resumo, err := svc.Resumo(context.Background(), sessaoID)
	require.NoError(t, err)
	assert.Equal(t, "40", resumo.TotalDinheiro.String())
	assert.Equal(t, "140", resumo.EsperadoGaveta.String())
}

func TestMovimentarSaidaArmazenadaNegativa(t *testing.T) {
	svc, caixaRepo, _ := newCaixaHarness()
	usuario := uuid.New()

	_, err := svc.Abrir(context.Background(), usuario, dto.AbrirCaixaRequest{
		ValorAbertura: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	resp, err := svc.Movimentar(context.Background(), usuario, dto.MovimentarCaixaRequest{
		Tipo: model.CaixaSaida, Valor: decimal.NewFromInt(30), Motivo: "troco para feira",
	})
	require.NoError(t, err)

	assert.Equal(t, "-30", resp.Valor.String())
	require.Len(t, caixaRepo.movs, 1)
	assert.True(t, caixaRepo.movs[0].Valor.IsNegative())
}

func TestMovimentarSemCaixaAberto(t *testing.T) {
	svc, _, _ := newCaixaHarness()

	_, err := svc.Movimentar(context.Background(), uuid.New(), dto.MovimentarCaixaRequest{
		Tipo: model.CaixaEntrada, Valor: decimal.NewFromInt(10), Motivo: "aporte",
	})
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestSessaoAbertaInexistente(t *testing.T) {
	svc, _, _ := newCaixaHarness()

	_, err := svc.SessaoAberta(context.Background())
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}
