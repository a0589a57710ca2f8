package handler

import (
	"net/http"

	"corralon/internal/dto"
	"corralon/internal/service"

	"github.com/gin-gonic/gin"
)

type ChequesHandler struct{ svc service.ChequeService }

func NewChequesHandler(svc service.ChequeService) *ChequesHandler {
	return &ChequesHandler{svc: svc}
}

// Crear godoc
// @Summary Registra un cheque propio o de tercero
// @Tags cheques
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ChequeRequest true "Datos del cheque"
// @Success 201 {object} dto.ChequeResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/cheques [post]
func (h *ChequesHandler) Crear(c *gin.Context) {
	var req dto.ChequeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), operador(c), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Actualizar godoc
// @Summary Edita los datos de un cheque (no su estado)
// @Tags cheques
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del cheque"
// @Param body body dto.ChequeRequest true "Datos del cheque"
// @Success 200 {object} dto.ChequeResponse
// @Failure 404 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/cheques/{id} [put]
func (h *ChequesHandler) Actualizar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ChequeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), operador(c), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary Lista cheques con filtros y paginacion
// @Tags cheques
// @Produce json
// @Security BearerAuth
// @Param q query string false "Busca en numero y banco"
// @Param tipo query string false "propio | tercero"
// @Param estado query string false "Estado"
// @Param proveedor_id query string false "Proveedor"
// @Param cliente_id query string false "Cliente"
// @Param desde query string false "Fecha de pago desde (YYYY-MM-DD)"
// @Param hasta query string false "Fecha de pago hasta (YYYY-MM-DD)"
// @Param incluir_eliminados query bool false "Incluye eliminados"
// @Param page query int false "Pagina"
// @Param limit query int false "Tamano de pagina"
// @Success 200 {object} dto.ChequeListResponse
// @Router /v1/cheques [get]
func (h *ChequesHandler) Listar(c *gin.Context) {
	var filtro dto.ChequeFiltro
	if !bindQuery(c, &filtro) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), operador(c), filtro)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerPorID godoc
// @Summary Obtiene un cheque con su historial de estados
// @Tags cheques
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del cheque"
// @Success 200 {object} dto.ChequeResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/cheques/{id} [get]
func (h *ChequesHandler) ObtenerPorID(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), operador(c), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Transicionar godoc
// @Summary Cambia el estado de un cheque segun su ciclo de vida
// @Tags cheques
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del cheque"
// @Param body body dto.TransicionChequeRequest true "Estado destino"
// @Success 200 {object} dto.ChequeResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/cheques/{id}/estado [patch]
func (h *ChequesHandler) Transicionar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.TransicionChequeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Transicionar(c.Request.Context(), operador(c), id, req.Estado)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Corregir godoc
// @Summary Fuerza el estado de un cheque (correccion administrativa auditada)
// @Tags cheques
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del cheque"
// @Param body body dto.CorreccionChequeRequest true "Estado y motivo"
// @Success 200 {object} dto.ChequeResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/cheques/{id}/correccion [patch]
func (h *ChequesHandler) Corregir(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.CorreccionChequeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ForzarEstado(c.Request.Context(), operador(c), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eliminar godoc
// @Summary Elimina logicamente un cheque
// @Tags cheques
// @Security BearerAuth
// @Param id path string true "ID del cheque"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Router /v1/cheques/{id} [delete]
func (h *ChequesHandler) Eliminar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), operador(c), id); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Restaurar godoc
// @Summary Restaura un cheque eliminado
// @Tags cheques
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del cheque"
// @Success 200 {object} dto.ChequeResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/cheques/{id}/restaurar [patch]
func (h *ChequesHandler) Restaurar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Restaurar(c.Request.Context(), operador(c), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Purgar godoc
// @Summary Borra definitivamente un cheque eliminado y sin referencias
// @Tags cheques
// @Security BearerAuth
// @Param id path string true "ID del cheque"
// @Success 204
// @Failure 412 {object} apierror.APIError
// @Router /v1/cheques/{id}/purgar [delete]
func (h *ChequesHandler) Purgar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Purgar(c.Request.Context(), operador(c), id); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
