package handler

import (
	"net/http"
	"strconv"

	"corralon/internal/apierror"
	"corralon/internal/dto"
	"corralon/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CajaHandler struct{ svc service.CajaService }

func NewCajaHandler(svc service.CajaService) *CajaHandler { return &CajaHandler{svc: svc} }

// Abrir godoc
// @Summary Abre una nueva sesion de caja
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCajaRequest true "Datos de apertura"
// @Success 201 {object} dto.SesionCajaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/abrir [post]
func (h *CajaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Abrir(c.Request.Context(), operador(c), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Estado godoc
// @Summary Estado de la caja del punto de venta
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param punto_de_venta query int false "Punto de venta (default: el del operador)"
// @Success 200 {object} dto.EstadoCajaResponse
// @Router /v1/caja/estado [get]
func (h *CajaHandler) Estado(c *gin.Context) {
	pdv, ok := queryPDV(c)
	if !ok {
		return
	}
	resp, err := h.svc.Estado(c.Request.Context(), operador(c), pdv)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cerrar godoc
// @Summary Cierra la sesion abierta con el monto contado
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CerrarCajaRequest true "Monto contado"
// @Success 200 {object} dto.SesionCajaResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/caja/cerrar [post]
func (h *CajaHandler) Cerrar(c *gin.Context) {
	var req dto.CerrarCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cerrar(c.Request.Context(), operador(c), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarMovimiento godoc
// @Summary Registra un ingreso o egreso en la caja abierta
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.MovimientoCajaRequest true "Movimiento"
// @Success 201 {object} dto.RegistrarMovimientoCajaResponse
// @Failure 412 {object} apierror.APIError
// @Router /v1/caja/movimiento [post]
func (h *CajaHandler) RegistrarMovimiento(c *gin.Context) {
	var req dto.MovimientoCajaRequest
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

// Movimientos godoc
// @Summary Movimientos de una sesion (default: la abierta, o la ultima cerrada)
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param punto_de_venta query int false "Punto de venta"
// @Param sesion_id query string false "ID de sesion"
// @Success 200 {object} dto.MovimientosCajaResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/caja/movimientos [get]
func (h *CajaHandler) Movimientos(c *gin.Context) {
	pdv, ok := queryPDV(c)
	if !ok {
		return
	}
	var sesionID *uuid.UUID
	if raw := c.Query("sesion_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("sesion_id invalido"))
			return
		}
		sesionID = &id
	}
	resp, err := h.svc.Movimientos(c.Request.Context(), operador(c), pdv, sesionID)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historial godoc
// @Summary Lista las sesiones cerradas
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param punto_de_venta query int false "Punto de venta"
// @Param page query int false "Pagina"
// @Param limit query int false "Tamano de pagina"
// @Success 200 {object} dto.HistorialCajaResponse
// @Router /v1/caja/historial [get]
func (h *CajaHandler) Historial(c *gin.Context) {
	var filtro dto.HistorialCajaFiltro
	if !bindQuery(c, &filtro) {
		return
	}
	resp, err := h.svc.Historial(c.Request.Context(), operador(c), filtro)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// queryPDV reads ?punto_de_venta; zero means the operator's terminal.
func queryPDV(c *gin.Context) (int, bool) {
	raw := c.Query("punto_de_venta")
	if raw == "" {
		return 0, true
	}
	pdv, err := strconv.Atoi(raw)
	if err != nil || pdv < 1 {
		c.JSON(http.StatusBadRequest, apierror.New("punto_de_venta invalido"))
		return 0, false
	}
	return pdv, true
}
