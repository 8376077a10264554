package handler

import (
	"net/http"

	"varejopos/internal/dto"
	"varejopos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CaixaHandler struct{ svc service.CaixaService }

func NewCaixaHandler(svc service.CaixaService) *CaixaHandler { return &CaixaHandler{svc: svc} }

// Abrir godoc
// @Summary Abre uma nova sessão de caixa
// @Tags caixa
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCaixaRequest true "Dados de abertura"
// @Success 201 {object} dto.SessaoCaixaResponse
// @Failure 400 {object} handler.ErrorResponse
// @Failure 409 {object} handler.ErrorResponse
// @Router /caixa/abrir [post]
func (h *CaixaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Abrir(c.Request.Context(), actorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Fechar godoc
// @Summary Fecha a sessão de caixa aberta e calcula a diferença
// @Tags caixa
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.FecharCaixaRequest true "Valor contado na gaveta"
// @Success 200 {object} dto.SessaoCaixaResponse
// @Failure 404 {object} handler.ErrorResponse
// @Router /caixa/fechar [post]
func (h *CaixaHandler) Fechar(c *gin.Context) {
	var req dto.FecharCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Fechar(c.Request.Context(), actorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Movimentar godoc
// @Summary Registra uma entrada ou saída manual na gaveta
// @Tags caixa
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.MovimentarCaixaRequest true "Movimentação manual"
// @Success 201 {object} dto.MovimentacaoCaixaResponse
// @Failure 400 {object} handler.ErrorResponse
// @Failure 404 {object} handler.ErrorResponse
// @Router /caixa/movimentar [post]
func (h *CaixaHandler) Movimentar(c *gin.Context) {
	var req dto.MovimentarCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Movimentar(c.Request.Context(), actorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// SessaoAberta godoc
// @Summary Retorna a sessão de caixa aberta
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SessaoCaixaResponse
// @Failure 404 {object} handler.ErrorResponse
// @Router /caixa/aberto [get]
func (h *CaixaHandler) SessaoAberta(c *gin.Context) {
	resp, err := h.svc.SessaoAberta(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Resumo godoc
// @Summary Resumo financeiro de uma sessão (totais por método, esperado em gaveta)
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da sessão"
// @Success 200 {object} dto.ResumoCaixaResponse
// @Failure 404 {object} handler.ErrorResponse
// @Router /caixa/{id}/resumo [get]
func (h *CaixaHandler) Resumo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrorBody{
			Code: "VALIDATION", Message: "id inválido",
		}})
		return
	}
	resp, err := h.svc.Resumo(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
