package service

import (
	"context"
	"errors"
	"time"

	"varejopos/internal/apperr"
	"varejopos/internal/dto"
	"varejopos/internal/infra"
	"varejopos/internal/model"
	"varejopos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CobrancaGateway is the billing provider surface the sale engine consumes.
// *infra.CobrancaClient satisfies it; tests plug a fake.
type CobrancaGateway interface {
	ResolverCliente(ctx context.Context, cliente *model.Cliente) (string, error)
	CriarCobranca(ctx context.Context, req infra.CobrancaRequest) (*infra.CobrancaResult, error)
	CancelarCobranca(ctx context.Context, cobrancaID string) error
}

type VendaService interface {
	Registrar(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVendaRequest) (*dto.VendaResponse, error)
	AtualizarStatus(ctx context.Context, id uuid.UUID, usuarioID uuid.UUID, req dto.AtualizarStatusVendaRequest) (*dto.VendaResponse, error)
	Cancelar(ctx context.Context, id uuid.UUID, usuarioID uuid.UUID) (*dto.VendaResponse, error)
	Buscar(ctx context.Context, id uuid.UUID) (*dto.VendaResponse, error)
	Listar(ctx context.Context, filter dto.VendaFilter) (*dto.VendaListResponse, error)
	// GerarRecibo renders the sale's PDF receipt and returns the file path.
	GerarRecibo(ctx context.Context, id uuid.UUID) (string, error)
}

type vendaService struct {
	repo        repository.VendaRepository
	caixaRepo   repository.CaixaRepository
	estoqueSvc  EstoqueService
	produtoRepo repository.ProdutoRepository
	servicoRepo repository.ServicoRepository
	clienteRepo repository.ClienteRepository
	metodoRepo  repository.MetodoPagamentoRepository
	gateway     CobrancaGateway
	pdfPath     string
}

func NewVendaService(
	repo repository.VendaRepository,
	caixaRepo repository.CaixaRepository,
	estoqueSvc EstoqueService,
	produtoRepo repository.ProdutoRepository,
	servicoRepo repository.ServicoRepository,
	clienteRepo repository.ClienteRepository,
	metodoRepo repository.MetodoPagamentoRepository,
	gateway CobrancaGateway,
	pdfPath string,
) VendaService {
	return &vendaService{
		repo:        repo,
		caixaRepo:   caixaRepo,
		estoqueSvc:  estoqueSvc,
		produtoRepo: produtoRepo,
		servicoRepo: servicoRepo,
		clienteRepo: clienteRepo,
		metodoRepo:  metodoRepo,
		gateway:     gateway,
		pdfPath:     pdfPath,
	}
}

func (s *vendaService) Registrar(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVendaRequest) (*dto.VendaResponse, error) {
	sessao, err := s.caixaRepo.FindSessaoAberta(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("não há caixa aberto para registrar vendas")
		}
		return nil, err
	}

	itens, subtotal, err := s.montarItens(ctx, req.Itens)
	if err != nil {
		return nil, err
	}

	desconto, err := resolverAjuste(req.Desconto, subtotal)
	if err != nil {
		return nil, err
	}
	acrescimo, err := resolverAjuste(req.Acrescimo, subtotal)
	if err != nil {
		return nil, err
	}
	if desconto.GreaterThan(subtotal) {
		return nil, apperr.Validation("desconto não pode exceder o subtotal")
	}
	total := subtotal.Sub(desconto).Add(acrescimo)

	// Discount/surcharge persisted as synthetic lines for receipt readability.
	if desconto.IsPositive() {
		itens = append(itens, model.VendaItem{
			Nome:          "Desconto",
			PrecoUnitario: desconto.Neg(),
			Quantidade:    1,
			Subtotal:      desconto.Neg(),
		})
	}
	if acrescimo.IsPositive() {
		itens = append(itens, model.VendaItem{
			Nome:          "Acréscimo",
			PrecoUnitario: acrescimo,
			Quantidade:    1,
			Subtotal:      acrescimo,
		})
	}

	status := model.VendaPendente
	if req.Status != nil {
		status = *req.Status
	}

	pagamentos, metodos, err := s.montarPagamentos(ctx, req.Pagamentos)
	if err != nil {
		return nil, err
	}

	troco := decimal.Zero
	if status == model.VendaPaga {
		if len(pagamentos) == 0 {
			return nil, apperr.Validation("venda PAGO exige pelo menos um pagamento")
		}
		troco, err = calcularTroco(pagamentos, metodos, total)
		if err != nil {
			return nil, err
		}
	}

	cliente, err := s.resolverClienteVenda(ctx, req.ClienteID, pagamentos, metodos)
	if err != nil {
		return nil, err
	}

	venda := &model.Venda{
		ID:            uuid.New(),
		UsuarioID:     usuarioID,
		SessaoCaixaID: sessao.ID,
		Subtotal:      subtotal,
		Desconto:      desconto,
		Acrescimo:     acrescimo,
		Total:         total,
		Troco:         troco,
		Status:        status,
		Itens:         itens,
		Pagamentos:    pagamentos,
	}
	if cliente != nil {
		venda.ClienteID = &cliente.ID
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Gateway charges come first: a provider failure must abort before
		// any local row is written.
		if status == model.VendaPaga {
			if err := s.finalizarPagamentosTx(ctx, tx, venda, cliente, metodos); err != nil {
				return err
			}
		}

		if err := s.repo.CreateTx(tx, venda); err != nil {
			return err
		}

		for i := range venda.Itens {
			item := &venda.Itens[i]
			if !item.BaixaEstoque || item.ProdutoID == nil {
				continue
			}
			_, err := s.estoqueSvc.RegistrarTx(ctx, tx, RegistroEstoque{
				ProdutoID:   *item.ProdutoID,
				Tipo:        model.EstoqueSaida,
				Motivo:      model.MotivoVenda,
				Quantidade:  item.Quantidade,
				Solicitante: usuarioID,
				VendaID:     &venda.ID,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vendaToResponse(venda), nil
}

func (s *vendaService) AtualizarStatus(ctx context.Context, id uuid.UUID, usuarioID uuid.UUID, req dto.AtualizarStatusVendaRequest) (*dto.VendaResponse, error) {
	if req.Status == model.VendaCancelada {
		return s.Cancelar(ctx, id, usuarioID)
	}

	venda, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("venda %s não encontrada", id)
		}
		return nil, err
	}
	if venda.Status != model.VendaPendente {
		return nil, apperr.InvalidState("venda já está %s", venda.Status)
	}

	totalPago := decimal.Zero
	for _, pg := range venda.Pagamentos {
		totalPago = totalPago.Add(pg.Valor)
	}
	if totalPago.LessThan(venda.Total) {
		return nil, apperr.Validation("pagamentos (%s) não cobrem o total da venda (%s)",
			totalPago.StringFixed(2), venda.Total.StringFixed(2))
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.UpdateStatusTx(tx, id, model.VendaPaga)
	})
	if err != nil {
		return nil, err
	}
	venda.Status = model.VendaPaga
	return vendaToResponse(venda), nil
}

// Cancelar voids a sale: charges are cancelled at the provider, stock is
// returned through compensating ledger entries, and the sale moves to its
// terminal status. The original movements are never touched. A gateway
// failure aborts the whole cancellation, so the sale is never voided locally
// while its charge stays live at the provider.
func (s *vendaService) Cancelar(ctx context.Context, id uuid.UUID, usuarioID uuid.UUID) (*dto.VendaResponse, error) {
	venda, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("venda %s não encontrada", id)
		}
		return nil, err
	}
	if venda.Status == model.VendaCancelada {
		return nil, apperr.InvalidState("venda já está cancelada")
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// The client already maps "not cancellable" provider responses to
		// success, so anything that reaches here is a real gateway failure.
		for _, pg := range venda.Pagamentos {
			if pg.CobrancaID == nil {
				continue
			}
			if err := s.gateway.CancelarCobranca(ctx, *pg.CobrancaID); err != nil {
				return err
			}
		}

		for i := range venda.Itens {
			item := &venda.Itens[i]
			if !item.BaixaEstoque || item.ProdutoID == nil {
				continue
			}
			_, err := s.estoqueSvc.RegistrarTx(ctx, tx, RegistroEstoque{
				ProdutoID:   *item.ProdutoID,
				Tipo:        model.EstoqueEntrada,
				Motivo:      model.MotivoCancelamentoVenda,
				Quantidade:  item.Quantidade,
				Solicitante: usuarioID,
				VendaID:     &venda.ID,
			})
			if err != nil {
				return err
			}
		}

		return s.repo.UpdateStatusTx(tx, venda.ID, model.VendaCancelada)
	})
	if err != nil {
		return nil, err
	}
	venda.Status = model.VendaCancelada
	return vendaToResponse(venda), nil
}

func (s *vendaService) Buscar(ctx context.Context, id uuid.UUID) (*dto.VendaResponse, error) {
	venda, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("venda %s não encontrada", id)
		}
		return nil, err
	}
	return vendaToResponse(venda), nil
}

func (s *vendaService) Listar(ctx context.Context, filter dto.VendaFilter) (*dto.VendaListResponse, error) {
	vendas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.VendaListResponse{
		Data:  make([]dto.VendaResponse, 0, len(vendas)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range vendas {
		resp.Data = append(resp.Data, *vendaToResponse(&vendas[i]))
	}
	return resp, nil
}

func (s *vendaService) GerarRecibo(ctx context.Context, id uuid.UUID) (string, error) {
	venda, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.NotFound("venda %s não encontrada", id)
		}
		return "", err
	}
	return infra.GerarReciboPDF(venda, s.pdfPath)
}

// ─── Composition helpers ─────────────────────────────────────────────────────

// montarItens resolves each requested line against the catalog and computes
// the subtotal. Catalog items snapshot name and price; a free-form line must
// carry both and never counts against stock.
func (s *vendaService) montarItens(ctx context.Context, reqs []dto.ItemVendaRequest) ([]model.VendaItem, decimal.Decimal, error) {
	itens := make([]model.VendaItem, 0, len(reqs))
	subtotal := decimal.Zero

	for i, r := range reqs {
		item := model.VendaItem{Quantidade: r.Quantidade}

		switch {
		case r.ProdutoID != nil:
			id, err := uuid.Parse(*r.ProdutoID)
			if err != nil {
				return nil, decimal.Zero, apperr.Validation("item %d: produtoId inválido", i+1)
			}
			produto, err := s.produtoRepo.FindByID(ctx, id)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, decimal.Zero, apperr.NotFound("produto %s não encontrado", id)
				}
				return nil, decimal.Zero, err
			}
			if !produto.Ativo {
				return nil, decimal.Zero, apperr.Validation("produto %s está inativo", produto.Nome)
			}
			item.ProdutoID = &produto.ID
			item.Nome = produto.Nome
			item.PrecoUnitario = produto.Preco
			item.BaixaEstoque = produto.ControlaEstoque

		case r.ServicoID != nil:
			id, err := uuid.Parse(*r.ServicoID)
			if err != nil {
				return nil, decimal.Zero, apperr.Validation("item %d: servicoId inválido", i+1)
			}
			servico, err := s.servicoRepo.FindByID(ctx, id)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, decimal.Zero, apperr.NotFound("serviço %s não encontrado", id)
				}
				return nil, decimal.Zero, err
			}
			if !servico.Ativo {
				return nil, decimal.Zero, apperr.Validation("serviço %s está inativo", servico.Nome)
			}
			item.ServicoID = &servico.ID
			item.Nome = servico.Nome
			item.PrecoUnitario = servico.Preco

		default:
			if r.Nome == nil || *r.Nome == "" || r.PrecoUnitario == nil {
				return nil, decimal.Zero, apperr.Validation("item %d: item avulso exige nome e precoUnitario", i+1)
			}
			item.Nome = *r.Nome
			item.PrecoUnitario = *r.PrecoUnitario
		}

		// An explicit unit price on the request overrides the catalog price.
		if r.PrecoUnitario != nil {
			item.PrecoUnitario = *r.PrecoUnitario
		}
		if item.PrecoUnitario.IsNegative() {
			return nil, decimal.Zero, apperr.Validation("item %d: preço não pode ser negativo", i+1)
		}

		item.Subtotal = item.PrecoUnitario.Mul(decimal.NewFromInt(int64(item.Quantidade))).Round(2)
		subtotal = subtotal.Add(item.Subtotal)
		itens = append(itens, item)
	}
	return itens, subtotal, nil
}

func (s *vendaService) montarPagamentos(ctx context.Context, reqs []dto.PagamentoRequest) ([]model.VendaPagamento, map[uuid.UUID]*model.MetodoPagamento, error) {
	pagamentos := make([]model.VendaPagamento, 0, len(reqs))
	metodos := make(map[uuid.UUID]*model.MetodoPagamento)

	for i, r := range reqs {
		id, err := uuid.Parse(r.MetodoPagamentoID)
		if err != nil {
			return nil, nil, apperr.Validation("pagamento %d: metodoPagamentoId inválido", i+1)
		}
		metodo, ok := metodos[id]
		if !ok {
			metodo, err = s.metodoRepo.FindByID(ctx, id)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, nil, apperr.NotFound("método de pagamento %s não encontrado", id)
				}
				return nil, nil, err
			}
			if !metodo.Ativo {
				return nil, nil, apperr.Validation("método de pagamento %s está inativo", metodo.Nome)
			}
			metodos[id] = metodo
		}
		pagamentos = append(pagamentos, model.VendaPagamento{
			MetodoPagamentoID: id,
			Valor:             r.Valor,
			Parcelas:          r.Parcelas,
		})
	}
	return pagamentos, metodos, nil
}

// calcularTroco checks payment sufficiency and computes change. Overpayment
// is only meaningful for cash: change comes out of the drawer.
func calcularTroco(pagamentos []model.VendaPagamento, metodos map[uuid.UUID]*model.MetodoPagamento, total decimal.Decimal) (decimal.Decimal, error) {
	totalPago := decimal.Zero
	temDinheiro := false
	for _, pg := range pagamentos {
		totalPago = totalPago.Add(pg.Valor)
		if m := metodos[pg.MetodoPagamentoID]; m != nil && m.EDinheiro {
			temDinheiro = true
		}
	}

	if totalPago.LessThan(total) {
		return decimal.Zero, apperr.Validation("pagamentos (%s) não cobrem o total da venda (%s)",
			totalPago.StringFixed(2), total.StringFixed(2))
	}
	troco := totalPago.Sub(total)
	if troco.IsPositive() && !temDinheiro {
		return decimal.Zero, apperr.Validation("troco exige pagamento em dinheiro")
	}
	return troco, nil
}

// resolverClienteVenda loads the customer when one is referenced and enforces
// that gateway-backed credit payments always have one.
func (s *vendaService) resolverClienteVenda(ctx context.Context, clienteID *string, pagamentos []model.VendaPagamento, metodos map[uuid.UUID]*model.MetodoPagamento) (*model.Cliente, error) {
	precisaCliente := false
	for _, pg := range pagamentos {
		if m := metodos[pg.MetodoPagamentoID]; m != nil && m.Integracao == model.IntegracaoCreditoExterno {
			precisaCliente = true
		}
	}

	if clienteID == nil {
		if precisaCliente {
			return nil, apperr.Validation("venda a crédito exige um cliente")
		}
		return nil, nil
	}

	id, err := uuid.Parse(*clienteID)
	if err != nil {
		return nil, apperr.Validation("clienteId inválido")
	}
	cliente, err := s.clienteRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("cliente %s não encontrado", id)
		}
		return nil, err
	}
	return cliente, nil
}

// finalizarPagamentosTx creates provider charges for gateway-backed payments
// and stamps the resulting ids on the payment rows before they are persisted.
func (s *vendaService) finalizarPagamentosTx(ctx context.Context, tx *gorm.DB, venda *model.Venda, cliente *model.Cliente, metodos map[uuid.UUID]*model.MetodoPagamento) error {
	for i := range venda.Pagamentos {
		pg := &venda.Pagamentos[i]
		metodo := metodos[pg.MetodoPagamentoID]
		if metodo == nil || metodo.Integracao != model.IntegracaoCreditoExterno {
			continue
		}
		if cliente == nil {
			return apperr.Validation("venda a crédito exige um cliente")
		}

		externoID, err := s.gateway.ResolverCliente(ctx, cliente)
		if err != nil {
			return err
		}
		if cliente.GatewayClienteID == nil || *cliente.GatewayClienteID != externoID {
			if err := s.clienteRepo.SetGatewayClienteIDTx(tx, cliente.ID, externoID); err != nil {
				return err
			}
			cliente.GatewayClienteID = &externoID
		}

		parcelas := 1
		if pg.Parcelas != nil {
			parcelas = *pg.Parcelas
		}
		resultado, err := s.gateway.CriarCobranca(ctx, infra.CobrancaRequest{
			VendaID:          venda.ID.String(),
			ClienteExternoID: externoID,
			Valor:            pg.Valor,
			DiaVencimento:    *cliente.DiaVencimento,
			Parcelas:         parcelas,
			JurosMensal:      cliente.JurosMensal,
			Multa:            cliente.Multa,
		})
		if err != nil {
			return err
		}
		pg.CobrancaID = &resultado.ID
		pg.LinkFatura = &resultado.LinkFatura
	}
	return nil
}

func resolverAjuste(aj *dto.AjusteValor, subtotal decimal.Decimal) (decimal.Decimal, error) {
	if aj == nil {
		return decimal.Zero, nil
	}
	switch aj.Tipo {
	case "PERCENTUAL":
		if aj.Valor.GreaterThan(decimal.NewFromInt(100)) {
			return decimal.Zero, apperr.Validation("percentual não pode exceder 100")
		}
		return subtotal.Mul(aj.Valor).Div(decimal.NewFromInt(100)).Round(2), nil
	case "VALOR":
		return aj.Valor, nil
	default:
		return decimal.Zero, apperr.Validation("tipo de ajuste inválido: %s", aj.Tipo)
	}
}

func vendaToResponse(v *model.Venda) *dto.VendaResponse {
	resp := &dto.VendaResponse{
		ID:            v.ID.String(),
		UsuarioID:     v.UsuarioID.String(),
		SessaoCaixaID: v.SessaoCaixaID.String(),
		Itens:         make([]dto.ItemVendaResponse, 0, len(v.Itens)),
		Subtotal:      v.Subtotal,
		Desconto:      v.Desconto,
		Acrescimo:     v.Acrescimo,
		Total:         v.Total,
		Troco:         v.Troco,
		Pagamentos:    make([]dto.PagamentoResponse, 0, len(v.Pagamentos)),
		Status:        v.Status,
		CreatedAt:     v.CreatedAt.Format(time.RFC3339),
	}
	if v.ClienteID != nil {
		id := v.ClienteID.String()
		resp.ClienteID = &id
	}
	for _, item := range v.Itens {
		resp.Itens = append(resp.Itens, dto.ItemVendaResponse{
			Nome:          item.Nome,
			Quantidade:    item.Quantidade,
			PrecoUnitario: item.PrecoUnitario,
			Subtotal:      item.Subtotal,
			BaixaEstoque:  item.BaixaEstoque,
		})
	}
	for _, pg := range v.Pagamentos {
		resp.Pagamentos = append(resp.Pagamentos, dto.PagamentoResponse{
			MetodoPagamentoID: pg.MetodoPagamentoID.String(),
			Valor:             pg.Valor,
			Parcelas:          pg.Parcelas,
			CobrancaID:        pg.CobrancaID,
			LinkFatura:        pg.LinkFatura,
		})
	}
	return resp
}
