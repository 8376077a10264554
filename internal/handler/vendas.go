package handler

import (
	"net/http"

	"varejopos/internal/dto"
	"varejopos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VendasHandler struct{ svc service.VendaService }

func NewVendasHandler(svc service.VendaService) *VendasHandler { return &VendasHandler{svc: svc} }

// Registrar godoc
// @Summary Registra uma venda (itens, ajustes, pagamentos) em uma unidade atômica
// @Tags vendas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RegistrarVendaRequest true "Dados da venda"
// @Success 201 {object} dto.VendaResponse
// @Failure 400 {object} handler.ErrorResponse
// @Failure 404 {object} handler.ErrorResponse
// @Failure 502 {object} handler.ErrorResponse
// @Router /sales [post]
func (h *VendasHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarVendaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), actorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AtualizarStatus godoc
// @Summary Atualiza o status de uma venda (PAGO ou CANCELADO)
// @Tags vendas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da venda"
// @Param body body dto.AtualizarStatusVendaRequest true "Novo status"
// @Success 200 {object} dto.VendaResponse
// @Failure 404 {object} handler.ErrorResponse
// @Failure 422 {object} handler.ErrorResponse
// @Router /sales/{id}/status [patch]
func (h *VendasHandler) AtualizarStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrorBody{
			Code: "VALIDATION", Message: "id inválido",
		}})
		return
	}
	var req dto.AtualizarStatusVendaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AtualizarStatus(c.Request.Context(), id, actorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary Lista vendas do dia (ou da data informada), paginado
// @Tags vendas
// @Produce json
// @Security BearerAuth
// @Param data query string false "Data (YYYY-MM-DD)"
// @Param status query string false "PENDENTE | PAGO | CANCELADO | all"
// @Success 200 {object} dto.VendaListResponse
// @Router /sales [get]
func (h *VendasHandler) Listar(c *gin.Context) {
	var filter dto.VendaFilter
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

// Buscar godoc
// @Summary Busca uma venda por id
// @Tags vendas
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da venda"
// @Success 200 {object} dto.VendaResponse
// @Failure 404 {object} handler.ErrorResponse
// @Router /sales/{id} [get]
func (h *VendasHandler) Buscar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrorBody{
			Code: "VALIDATION", Message: "id inválido",
		}})
		return
	}
	resp, err := h.svc.Buscar(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Recibo godoc
// @Summary Baixa o recibo da venda em PDF
// @Tags vendas
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "ID da venda"
// @Success 200 {file} file
// @Failure 404 {object} handler.ErrorResponse
// @Router /sales/{id}/recibo [get]
func (h *VendasHandler) Recibo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrorBody{
			Code: "VALIDATION", Message: "id inválido",
		}})
		return
	}
	path, err := h.svc.GerarRecibo(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="recibo_`+id.String()+`.pdf"`)
	c.File(path)
}
