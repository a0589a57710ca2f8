package handler

import (
	"net/http"

	"corralon/internal/dto"
	"corralon/internal/service"

	"github.com/gin-gonic/gin"
)

// IdempotencyHeader carries the client's retry key for POST /v1/pagos.
const IdempotencyHeader = "Idempotency-Key"

type PagosHandler struct{ svc service.PagoService }

func NewPagosHandler(svc service.PagoService) *PagosHandler { return &PagosHandler{svc: svc} }

// Registrar godoc
// @Summary Registra un pago a proveedor (o cobro a cliente) combinando medios
// @Description Efectivo, transferencia y cheques en una sola transaccion.
// @Description Un Idempotency-Key repetido se rechaza con 409.
// @Tags pagos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Clave de reintento"
// @Param body body dto.RegistrarPagoRequest true "Composicion del pago"
// @Success 201 {object} dto.PagoResponse
// @Failure 409 {object} apierror.APIError
// @Failure 412 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/pagos [post]
func (h *PagosHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarPagoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), operador(c), req, c.GetHeader(IdempotencyHeader))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Obtener godoc
// @Summary Obtiene un pago registrado
// @Tags pagos
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del pago"
// @Success 200 {object} dto.PagoResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/pagos/{id} [get]
func (h *PagosHandler) Obtener(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), operador(c), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
