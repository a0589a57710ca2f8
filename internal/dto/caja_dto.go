package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────
// PuntoDeVenta defaults to the operator's terminal when omitted.

type AbrirCajaRequest struct {
	PuntoDeVenta  int             `json:"punto_de_venta" validate:"omitempty,min=1"`
	MontoInicial  decimal.Decimal `json:"monto_inicial"  validate:"min=0"`
	Observaciones *string         `json:"observaciones"`
}

type CerrarCajaRequest struct {
	PuntoDeVenta  int             `json:"punto_de_venta" validate:"omitempty,min=1"`
	MontoContado  decimal.Decimal `json:"monto_contado"  validate:"min=0"`
	Observaciones *string         `json:"observaciones"`
}

type MovimientoCajaRequest struct {
	PuntoDeVenta int             `json:"punto_de_venta" validate:"omitempty,min=1"`
	Tipo         string          `json:"tipo"           validate:"required,oneof=ingreso egreso"`
	Concepto     string          `json:"concepto"       validate:"required,oneof=venta gasto ajuste pago cobro"`
	Monto        decimal.Decimal `json:"monto"          validate:"required,gt=0"`
	Descripcion  string          `json:"descripcion"    validate:"required,min=3"`
}

type HistorialCajaFiltro struct {
	Paginacion
	PuntoDeVenta int `form:"punto_de_venta" validate:"omitempty,min=1"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DesvioResponse struct {
	Monto         decimal.Decimal `json:"monto"`
	Porcentaje    decimal.Decimal `json:"porcentaje"`
	Clasificacion string          `json:"clasificacion"` // normal | advertencia | critico
}

type SesionCajaResponse struct {
	ID                  string           `json:"id"`
	PuntoDeVenta        int              `json:"punto_de_venta"`
	UsuarioID           string           `json:"usuario_id"`
	Estado              string           `json:"estado"`
	MontoInicial        decimal.Decimal  `json:"monto_inicial"`
	TotalIngresos       decimal.Decimal  `json:"total_ingresos"`
	TotalEgresos        decimal.Decimal  `json:"total_egresos"`
	Saldo               decimal.Decimal  `json:"saldo"`
	MontoEsperado       *decimal.Decimal `json:"monto_esperado,omitempty"`
	MontoDeclarado      *decimal.Decimal `json:"monto_declarado,omitempty"`
	Desvio              *DesvioResponse  `json:"desvio,omitempty"`
	Observaciones       *string          `json:"observaciones"`
	ObservacionesCierre *string          `json:"observaciones_cierre,omitempty"`
	OpenedAt            string           `json:"opened_at"`
	ClosedAt            *string          `json:"closed_at"`
}

type EstadoCajaResponse struct {
	PuntoDeVenta int                 `json:"punto_de_venta"`
	Abierta      bool                `json:"abierta"`
	Sesion       *SesionCajaResponse `json:"sesion"`
}

type MovimientoCajaResponse struct {
	ID           string          `json:"id"`
	Tipo         string          `json:"tipo"`
	Concepto     string          `json:"concepto"`
	Monto        decimal.Decimal `json:"monto"`
	Descripcion  string          `json:"descripcion"`
	UsuarioID    string          `json:"usuario_id"`
	ReferenciaID *string         `json:"referencia_id,omitempty"`
	// SaldoPosterior is the session balance right after this movement.
	SaldoPosterior decimal.Decimal `json:"saldo_posterior"`
	CreatedAt      string          `json:"created_at"`
}

type RegistrarMovimientoCajaResponse struct {
	Movimiento MovimientoCajaResponse `json:"movimiento"`
	Saldo      decimal.Decimal        `json:"saldo"`
}

type MovimientosCajaResponse struct {
	Sesion      SesionCajaResponse       `json:"sesion"`
	Movimientos []MovimientoCajaResponse `json:"movimientos"`
}

type HistorialCajaResponse struct {
	Data  []SesionCajaResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}
