package handler

import (
	"net/http"

	"varejopos/internal/dto"
	"varejopos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type EstoqueHandler struct{ svc service.EstoqueService }

func NewEstoqueHandler(svc service.EstoqueService) *EstoqueHandler {
	return &EstoqueHandler{svc: svc}
}

// Registrar godoc
// @Summary Registra uma movimentação manual no livro de estoque
// @Tags estoque
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RegistrarMovimentacaoRequest true "Movimentação"
// @Success 201 {object} dto.MovimentacaoEstoqueResponse
// @Failure 400 {object} handler.ErrorResponse
// @Failure 404 {object} handler.ErrorResponse
// @Router /stock/movements [post]
func (h *EstoqueHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarMovimentacaoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), req, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AtualizarStatus godoc
// @Summary Aprova ou rejeita uma movimentação pendente
// @Tags estoque
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da movimentação"
// @Param body body dto.AtualizarStatusMovimentacaoRequest true "APROVAR ou REJEITAR"
// @Success 200 {object} dto.MovimentacaoEstoqueResponse
// @Failure 404 {object} handler.ErrorResponse
// @Failure 422 {object} handler.ErrorResponse
// @Router /stock/movements/{id}/status [put]
func (h *EstoqueHandler) AtualizarStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrorBody{
			Code: "VALIDATION", Message: "id inválido",
		}})
		return
	}
	var req dto.AtualizarStatusMovimentacaoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AtualizarStatus(c.Request.Context(), id, req, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary Lista movimentações de estoque, com filtros
// @Tags estoque
// @Produce json
// @Security BearerAuth
// @Param produtoId query string false "Filtra por produto"
// @Param tipo query string false "ENTRADA | SAIDA | AJUSTE"
// @Param status query string false "PENDENTE | APROVADO | REJEITADO"
// @Success 200 {object} dto.MovimentacaoEstoqueListResponse
// @Router /stock/movements [get]
func (h *EstoqueHandler) Listar(c *gin.Context) {
	var filter dto.MovimentacaoEstoqueFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Recalcular godoc
// @Summary Recalcula o saldo do produto a partir do histórico aprovado
// @Tags estoque
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do produto"
// @Success 200 {object} dto.SaldoProdutoResponse
// @Failure 404 {object} handler.ErrorResponse
// @Router /stock/produtos/{id}/recalcular [post]
func (h *EstoqueHandler) Recalcular(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrorBody{
			Code: "VALIDATION", Message: "id inválido",
		}})
		return
	}
	resp, err := h.svc.Recalcular(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
