package infra_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"varejopos/internal/infra"
	"varejopos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGerarReciboPDF(t *testing.T) {
	metodo := &model.MetodoPagamento{ID: uuid.New(), Nome: "Dinheiro", EDinheiro: true}
	venda := &model.Venda{
		ID:        uuid.New(),
		Subtotal:  decimal.NewFromInt(80),
		Total:     decimal.NewFromInt(72),
		Troco:     decimal.NewFromInt(8),
		Status:    model.VendaPaga,
		CreatedAt: time.Now(),
		Itens: []model.VendaItem{
			{ID: uuid.New(), Nome: "Shampoo 500ml", Quantidade: 2, PrecoUnitario: decimal.NewFromInt(40), Subtotal: decimal.NewFromInt(80)},
			{ID: uuid.New(), Nome: "Desconto", Quantidade: 1, PrecoUnitario: decimal.NewFromInt(-8), Subtotal: decimal.NewFromInt(-8)},
		},
		Pagamentos: []model.VendaPagamento{
			{ID: uuid.New(), MetodoPagamentoID: metodo.ID, Valor: decimal.NewFromInt(80), MetodoPagamento: metodo},
		},
	}

	dir := filepath.Join(t.TempDir(), "recibos")
	path, err := infra.GerarReciboPDF(venda, dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "recibo_"+venda.ID.String()+".pdf"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	header := make([]byte, 5)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.Read(header)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(header))
}
