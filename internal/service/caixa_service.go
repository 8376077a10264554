package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"varejopos/internal/apperr"
	"varejopos/internal/dto"
	"varejopos/internal/model"
	"varejopos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CaixaService interface {
	Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCaixaRequest) (*dto.SessaoCaixaResponse, error)
	Fechar(ctx context.Context, usuarioID uuid.UUID, req dto.FecharCaixaRequest) (*dto.SessaoCaixaResponse, error)
	Movimentar(ctx context.Context, usuarioID uuid.UUID, req dto.MovimentarCaixaRequest) (*dto.MovimentacaoCaixaResponse, error)
	SessaoAberta(ctx context.Context) (*dto.SessaoCaixaResponse, error)
	Resumo(ctx context.Context, sessaoID uuid.UUID) (*dto.ResumoCaixaResponse, error)
}

type caixaService struct {
	repo      repository.CaixaRepository
	vendaRepo repository.VendaRepository
}

func NewCaixaService(repo repository.CaixaRepository, vendaRepo repository.VendaRepository) CaixaService {
	return &caixaService{repo: repo, vendaRepo: vendaRepo}
}

func (s *caixaService) Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCaixaRequest) (*dto.SessaoCaixaResponse, error) {
	if req.ValorAbertura.IsNegative() {
		return nil, apperr.Validation("valor de abertura não pode ser negativo")
	}

	sessao := &model.SessaoCaixa{
		ValorAbertura: req.ValorAbertura,
		Status:        model.CaixaAberto,
		AbertoPor:     usuarioID,
		Observacoes:   req.Observacoes,
		OpenedAt:      time.Now(),
	}

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.repo.FindSessaoAbertaTx(tx); err == nil {
			return apperr.Conflict("já existe um caixa aberto")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := s.repo.CreateSessaoTx(tx, sessao); err != nil {
			// Concurrent open that slipped past the re-check hits the partial
			// unique index on status=ABERTO.
			if isSessaoAbertaViolation(err) {
				return apperr.Conflict("já existe um caixa aberto")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sessaoToResponse(sessao), nil
}

func (s *caixaService) Fechar(ctx context.Context, usuarioID uuid.UUID, req dto.FecharCaixaRequest) (*dto.SessaoCaixaResponse, error) {
	if req.ValorFechamentoInformado.IsNegative() {
		return nil, apperr.Validation("valor de fechamento não pode ser negativo")
	}

	var sessao *model.SessaoCaixa
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		sessao, err = s.repo.FindSessaoAbertaTx(tx)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("não há caixa aberto")
			}
			return err
		}

		resumo, err := s.montarResumo(tx, sessao)
		if err != nil {
			return err
		}

		calculado := resumo.EsperadoGaveta
		diferenca := req.ValorFechamentoInformado.Sub(calculado)
		now := time.Now()

		sessao.ValorFechamentoCalculado = &calculado
		sessao.ValorFechamentoInformado = &req.ValorFechamentoInformado
		sessao.Diferenca = &diferenca
		sessao.Status = model.CaixaFechado
		sessao.FechadoPor = &usuarioID
		sessao.ClosedAt = &now
		if req.Observacoes != nil {
			sessao.Observacoes = req.Observacoes
		}

		return s.repo.UpdateSessaoTx(tx, sessao)
	})
	if err != nil {
		return nil, err
	}
	return sessaoToResponse(sessao), nil
}

func (s *caixaService) Movimentar(ctx context.Context, usuarioID uuid.UUID, req dto.MovimentarCaixaRequest) (*dto.MovimentacaoCaixaResponse, error) {
	sessao, err := s.repo.FindSessaoAberta(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("não há caixa aberto")
		}
		return nil, err
	}

	valor := req.Valor
	if req.Tipo == model.CaixaSaida {
		valor = valor.Neg()
	}

	mov := &model.MovimentacaoCaixa{
		SessaoCaixaID: sessao.ID,
		Tipo:          req.Tipo,
		Valor:         valor,
		Motivo:        req.Motivo,
		UsuarioID:     usuarioID,
		CreatedAt:     time.Now(),
	}
	if err := s.repo.CreateMovimentacao(ctx, mov); err != nil {
		return nil, err
	}
	return movimentacaoCaixaToResponse(mov), nil
}

func (s *caixaService) SessaoAberta(ctx context.Context) (*dto.SessaoCaixaResponse, error) {
	sessao, err := s.repo.FindSessaoAberta(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("não há caixa aberto")
		}
		return nil, err
	}
	return sessaoToResponse(sessao), nil
}

func (s *caixaService) Resumo(ctx context.Context, sessaoID uuid.UUID) (*dto.ResumoCaixaResponse, error) {
	sessao, err := s.repo.FindSessaoByID(ctx, sessaoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("sessão de caixa %s não encontrada", sessaoID)
		}
		return nil, err
	}

	var resumo *dto.ResumoCaixaResponse
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		resumo, err = s.montarResumo(tx, sessao)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resumo, nil
}

// montarResumo aggregates the session's manual movements and sales into the
// drawer summary, reading through the caller's transaction so the numbers
// are a consistent snapshot. Cancelled sales are skipped entirely; change
// given (troco) is netted out of the cash method, since it left the drawer.
func (s *caixaService) montarResumo(tx *gorm.DB, sessao *model.SessaoCaixa) (*dto.ResumoCaixaResponse, error) {
	movs, err := s.repo.ListMovimentacoesTx(tx, sessao.ID)
	if err != nil {
		return nil, err
	}
	vendas, err := s.vendaRepo.ListBySessaoTx(tx, sessao.ID)
	if err != nil {
		return nil, err
	}

	totalEntradas := decimal.Zero
	totalSaidas := decimal.Zero
	for _, m := range movs {
		if m.Tipo == model.CaixaEntrada {
			totalEntradas = totalEntradas.Add(m.Valor)
		} else {
			totalSaidas = totalSaidas.Add(m.Valor.Abs())
		}
	}

	porMetodo := map[uuid.UUID]*dto.TotalPorMetodo{}
	var ordem []uuid.UUID
	totalDinheiro := decimal.Zero
	totalOutros := decimal.Zero
	totalTroco := decimal.Zero

	for i := range vendas {
		venda := &vendas[i]
		if venda.Status == model.VendaCancelada {
			continue
		}

		trocoRestante := venda.Troco
		for j := range venda.Pagamentos {
			pg := &venda.Pagamentos[j]
			linha, ok := porMetodo[pg.MetodoPagamentoID]
			if !ok {
				linha = &dto.TotalPorMetodo{
					MetodoPagamentoID: pg.MetodoPagamentoID.String(),
					Bruto:             decimal.Zero,
					Liquido:           decimal.Zero,
				}
				if pg.MetodoPagamento != nil {
					linha.Nome = pg.MetodoPagamento.Nome
					linha.EDinheiro = pg.MetodoPagamento.EDinheiro
				}
				porMetodo[pg.MetodoPagamentoID] = linha
				ordem = append(ordem, pg.MetodoPagamentoID)
			}

			linha.Bruto = linha.Bruto.Add(pg.Valor)
			liquido := pg.Valor
			if linha.EDinheiro && trocoRestante.IsPositive() {
				// Change comes out of the cash tendered for this sale.
				liquido = liquido.Sub(trocoRestante)
				trocoRestante = decimal.Zero
			}
			linha.Liquido = linha.Liquido.Add(liquido)

			if linha.EDinheiro {
				totalDinheiro = totalDinheiro.Add(liquido)
			} else {
				totalOutros = totalOutros.Add(liquido)
			}
		}
		totalTroco = totalTroco.Add(venda.Troco)
	}

	resumo := &dto.ResumoCaixaResponse{
		SessaoCaixaID: sessao.ID.String(),
		ValorAbertura: sessao.ValorAbertura,
		PorMetodo:     make([]dto.TotalPorMetodo, 0, len(ordem)),
		TotalDinheiro: totalDinheiro,
		TotalOutros:   totalOutros,
		TotalEntradas: totalEntradas,
		TotalSaidas:   totalSaidas,
		TotalTroco:    totalTroco,
		EsperadoGaveta: sessao.ValorAbertura.
			Add(totalDinheiro).
			Add(totalEntradas).
			Sub(totalSaidas),
		Status: sessao.Status,
	}
	for _, id := range ordem {
		resumo.PorMetodo = append(resumo.PorMetodo, *porMetodo[id])
	}
	return resumo, nil
}

// isSessaoAbertaViolation detects the partial unique index on open sessions.
func isSessaoAbertaViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "uni_sessao_caixa_aberta")
}

func sessaoToResponse(s *model.SessaoCaixa) *dto.SessaoCaixaResponse {
	resp := &dto.SessaoCaixaResponse{
		ID:                       s.ID.String(),
		ValorAbertura:            s.ValorAbertura,
		ValorFechamentoCalculado: s.ValorFechamentoCalculado,
		ValorFechamentoInformado: s.ValorFechamentoInformado,
		Diferenca:                s.Diferenca,
		Status:                   s.Status,
		AbertoPor:                s.AbertoPor.String(),
		Observacoes:              s.Observacoes,
		OpenedAt:                 s.OpenedAt.Format(time.RFC3339),
	}
	if s.FechadoPor != nil {
		v := s.FechadoPor.String()
		resp.FechadoPor = &v
	}
	if s.ClosedAt != nil {
		v := s.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &v
	}
	return resp
}

func movimentacaoCaixaToResponse(m *model.MovimentacaoCaixa) *dto.MovimentacaoCaixaResponse {
	return &dto.MovimentacaoCaixaResponse{
		ID:            m.ID.String(),
		SessaoCaixaID: m.SessaoCaixaID.String(),
		Tipo:          m.Tipo,
		Valor:         m.Valor,
		Motivo:        m.Motivo,
		UsuarioID:     m.UsuarioID.String(),
		CreatedAt:     m.CreatedAt.Format(time.RFC3339),
	}
}
