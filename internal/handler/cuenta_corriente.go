package handler

import (
	"net/http"

	"corralon/internal/dto"
	"corralon/internal/service"

	"github.com/gin-gonic/gin"
)

type CuentaCorrienteHandler struct{ svc service.CuentaCorrienteService }

func NewCuentaCorrienteHandler(svc service.CuentaCorrienteService) *CuentaCorrienteHandler {
	return &CuentaCorrienteHandler{svc: svc}
}

// Obtener godoc
// @Summary Saldo e historial de la cuenta corriente de un cliente o proveedor
// @Tags cuenta-corriente
// @Produce json
// @Security BearerAuth
// @Param tipo path string true "cliente | proveedor"
// @Param id path string true "ID de la entidad"
// @Param page query int false "Pagina"
// @Param limit query int false "Tamano de pagina"
// @Success 200 {object} dto.CuentaCorrienteResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/cuenta-corriente/{tipo}/{id} [get]
func (h *CuentaCorrienteHandler) Obtener(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var pag dto.Paginacion
	if !bindQuery(c, &pag) {
		return
	}
	resp, err := h.svc.Historial(c.Request.Context(), operador(c), c.Param("tipo"), id, pag)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarMovimiento godoc
// @Summary Registra un debito o credito manual en una cuenta corriente
// @Tags cuenta-corriente
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.MovimientoCuentaRequest true "Movimiento"
// @Success 201 {object} dto.MovimientoCuentaResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/cuenta-corriente/movimiento [post]
func (h *CuentaCorrienteHandler) RegistrarMovimiento(c *gin.Context) {
	var req dto.MovimientoCuentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarMovimiento(c.Request.Context(), operador(c), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
