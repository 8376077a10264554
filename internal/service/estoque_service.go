package service

import (
	"context"
	"errors"
	"time"

	"varejopos/internal/apperr"
	"varejopos/internal/dto"
	"varejopos/internal/model"
	"varejopos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// RegistroEstoque is the internal write command for the stock ledger. The
// HTTP handler builds it from the request body; the sale engine builds it
// directly and passes its own transaction.
type RegistroEstoque struct {
	ProdutoID   uuid.UUID
	Tipo        string
	Motivo      string
	Quantidade  int
	Solicitante uuid.UUID
	VendaID     *uuid.UUID
	Observacao  *string
}

type EstoqueService interface {
	Registrar(ctx context.Context, req dto.RegistrarMovimentacaoRequest, solicitante uuid.UUID) (*dto.MovimentacaoEstoqueResponse, error)
	// RegistrarTx records a movement inside an existing transaction, so the
	// sale engine can compose stock writes with the rest of the sale.
	RegistrarTx(ctx context.Context, tx *gorm.DB, cmd RegistroEstoque) (*model.MovimentacaoEstoque, error)
	AtualizarStatus(ctx context.Context, id uuid.UUID, req dto.AtualizarStatusMovimentacaoRequest, decisor uuid.UUID) (*dto.MovimentacaoEstoqueResponse, error)
	Listar(ctx context.Context, filter dto.MovimentacaoEstoqueFilter) (*dto.MovimentacaoEstoqueListResponse, error)
	// Recalcular recomputes the product balance from the APROVADO history and
	// repairs the cached column. Audit/repair path, not the hot path.
	Recalcular(ctx context.Context, produtoID uuid.UUID) (*dto.SaldoProdutoResponse, error)
}

type estoqueService struct {
	repo        repository.EstoqueRepository
	produtoRepo repository.ProdutoRepository
	configSvc   ConfiguracaoService
}

func NewEstoqueService(
	repo repository.EstoqueRepository,
	produtoRepo repository.ProdutoRepository,
	configSvc ConfiguracaoService,
) EstoqueService {
	return &estoqueService{repo: repo, produtoRepo: produtoRepo, configSvc: configSvc}
}

func (s *estoqueService) Registrar(ctx context.Context, req dto.RegistrarMovimentacaoRequest, solicitante uuid.UUID) (*dto.MovimentacaoEstoqueResponse, error) {
	produtoID, err := uuid.Parse(req.ProdutoID)
	if err != nil {
		return nil, apperr.Validation("produtoId inválido")
	}

	var mov *model.MovimentacaoEstoque
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		mov, err = s.RegistrarTx(ctx, tx, RegistroEstoque{
			ProdutoID:   produtoID,
			Tipo:        req.Tipo,
			Motivo:      req.Motivo,
			Quantidade:  req.Quantidade,
			Solicitante: solicitante,
			Observacao:  req.Observacao,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return movimentacaoToResponse(mov), nil
}

func (s *estoqueService) RegistrarTx(ctx context.Context, tx *gorm.DB, cmd RegistroEstoque) (*model.MovimentacaoEstoque, error) {
	quantidade, err := normalizarQuantidade(cmd.Tipo, cmd.Quantidade)
	if err != nil {
		return nil, err
	}

	if _, err := s.findProduto(ctx, tx, cmd.ProdutoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("produto %s não encontrado", cmd.ProdutoID)
		}
		return nil, err
	}

	aprovado, err := s.aprovacaoAutomatica(ctx, cmd)
	if err != nil {
		return nil, err
	}

	mov := &model.MovimentacaoEstoque{
		ProdutoID:     cmd.ProdutoID,
		Tipo:          cmd.Tipo,
		Motivo:        cmd.Motivo,
		Quantidade:    quantidade,
		Status:        model.EstoquePendente,
		SolicitadoPor: cmd.Solicitante,
		VendaID:       cmd.VendaID,
		Observacao:    cmd.Observacao,
	}
	if aprovado {
		now := time.Now()
		mov.Status = model.EstoqueAprovado
		mov.AprovadoEm = &now
	}

	if err := s.repo.CreateTx(tx, mov); err != nil {
		return nil, err
	}
	if aprovado {
		if err := s.produtoRepo.AjustarEstoqueTx(tx, cmd.ProdutoID, quantidade); err != nil {
			return nil, err
		}
	}
	return mov, nil
}

func (s *estoqueService) AtualizarStatus(ctx context.Context, id uuid.UUID, req dto.AtualizarStatusMovimentacaoRequest, decisor uuid.UUID) (*dto.MovimentacaoEstoqueResponse, error) {
	if req.Action != "APROVAR" && req.Action != "REJEITAR" {
		return nil, apperr.Validation("action deve ser APROVAR ou REJEITAR")
	}
	if req.Action == "REJEITAR" && (req.RejectionReason == nil || *req.RejectionReason == "") {
		return nil, apperr.Validation("rejeição exige um motivo")
	}

	// The PENDENTE check lives inside the transaction, under the row lock:
	// two concurrent approvals must not both bump the balance.
	var mov *model.MovimentacaoEstoque
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		mov, err = s.repo.FindByIDTx(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("movimentação %s não encontrada", id)
			}
			return err
		}
		if mov.Status != model.EstoquePendente {
			return apperr.InvalidState("movimentação já está %s", mov.Status)
		}

		if req.Action == "APROVAR" && mov.SolicitadoPor == decisor {
			return apperr.Validation("o solicitante não pode aprovar a própria movimentação")
		}

		now := time.Now()
		mov.AprovadoPor = &decisor
		mov.AprovadoEm = &now

		if req.Action == "REJEITAR" {
			mov.Status = model.EstoqueRejeitado
			mov.MotivoRejeicao = req.RejectionReason
			return s.repo.UpdateTx(tx, mov)
		}

		mov.Status = model.EstoqueAprovado
		if err := s.repo.UpdateTx(tx, mov); err != nil {
			return err
		}
		// Balance counts the movement only now that it is APROVADO.
		return s.produtoRepo.AjustarEstoqueTx(tx, mov.ProdutoID, mov.Quantidade)
	})
	if err != nil {
		return nil, err
	}
	return movimentacaoToResponse(mov), nil
}

func (s *estoqueService) Listar(ctx context.Context, filter dto.MovimentacaoEstoqueFilter) (*dto.MovimentacaoEstoqueListResponse, error) {
	movs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := &dto.MovimentacaoEstoqueListResponse{
		Data:  make([]dto.MovimentacaoEstoqueResponse, 0, len(movs)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range movs {
		resp.Data = append(resp.Data, *movimentacaoToResponse(&movs[i]))
	}
	return resp, nil
}

func (s *estoqueService) Recalcular(ctx context.Context, produtoID uuid.UUID) (*dto.SaldoProdutoResponse, error) {
	produto, err := s.produtoRepo.FindByID(ctx, produtoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("produto %s não encontrado", produtoID)
		}
		return nil, err
	}

	saldo, err := s.repo.SumAprovado(ctx, produtoID)
	if err != nil {
		return nil, err
	}
	if saldo != produto.EstoqueAtual {
		log.Warn().
			Str("produto_id", produtoID.String()).
			Int("cache", produto.EstoqueAtual).
			Int("recalculado", saldo).
			Msg("saldo de estoque divergente, corrigindo cache")
	}
	if err := s.produtoRepo.DefinirEstoque(ctx, produtoID, saldo); err != nil {
		return nil, err
	}
	return &dto.SaldoProdutoResponse{ProdutoID: produtoID.String(), Saldo: saldo}, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// normalizarQuantidade enforces the sign convention: ENTRADA positive, SAIDA
// negative, AJUSTE as given (but never zero).
func normalizarQuantidade(tipo string, q int) (int, error) {
	if q == 0 {
		return 0, apperr.Validation("quantidade não pode ser zero")
	}
	abs := q
	if abs < 0 {
		abs = -abs
	}
	switch tipo {
	case model.EstoqueEntrada:
		return abs, nil
	case model.EstoqueSaida:
		return -abs, nil
	case model.EstoqueAjuste:
		return q, nil
	default:
		return 0, apperr.Validation("tipo de movimentação inválido: %s", tipo)
	}
}

// aprovacaoAutomatica decides whether a movement skips the approval queue.
// Only movements tied to a sale are auto-approved: the sale itself is the
// authorization. The motive string is free text on the manual endpoint, so
// it can never be the gate; everything without a sale follows the settings
// flag.
func (s *estoqueService) aprovacaoAutomatica(ctx context.Context, cmd RegistroEstoque) (bool, error) {
	if cmd.VendaID != nil {
		return true, nil
	}
	exigeAprovacao, err := s.configSvc.AprovacaoEstoqueAtiva(ctx)
	if err != nil {
		return false, err
	}
	return !exigeAprovacao, nil
}

func (s *estoqueService) findProduto(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Produto, error) {
	if tx != nil {
		return s.produtoRepo.FindByIDTx(tx, id)
	}
	return s.produtoRepo.FindByID(ctx, id)
}

func movimentacaoToResponse(m *model.MovimentacaoEstoque) *dto.MovimentacaoEstoqueResponse {
	resp := &dto.MovimentacaoEstoqueResponse{
		ID:             m.ID.String(),
		ProdutoID:      m.ProdutoID.String(),
		Tipo:           m.Tipo,
		Motivo:         m.Motivo,
		Quantidade:     m.Quantidade,
		Status:         m.Status,
		SolicitadoPor:  m.SolicitadoPor.String(),
		MotivoRejeicao: m.MotivoRejeicao,
		Observacao:     m.Observacao,
		CreatedAt:      m.CreatedAt.Format(time.RFC3339),
	}
	if m.AprovadoPor != nil {
		v := m.AprovadoPor.String()
		resp.AprovadoPor = &v
	}
	if m.AprovadoEm != nil {
		v := m.AprovadoEm.Format(time.RFC3339)
		resp.AprovadoEm = &v
	}
	if m.VendaID != nil {
		v := m.VendaID.String()
		resp.VendaID = &v
	}
	return resp
}
