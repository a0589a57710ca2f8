package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// MovimientoCuentaRequest is a manual current-account entry. Exactly one of
// ClienteID / ProveedorID must be set.
type MovimientoCuentaRequest struct {
	ClienteID   *string         `json:"cliente_id"   validate:"omitempty,uuid"`
	ProveedorID *string         `json:"proveedor_id" validate:"omitempty,uuid"`
	Tipo        string          `json:"tipo"         validate:"required,oneof=debito credito"`
	Monto       decimal.Decimal `json:"monto"        validate:"required,gt=0"`
	Concepto    string          `json:"concepto"     validate:"required,oneof=venta pago cheque ajuste saldo_inicial"`
	Descripcion string          `json:"descripcion"  validate:"required,min=3"`
	Fecha       *string         `json:"fecha"        validate:"omitempty,datetime=2006-01-02"`
	ChequeID    *string         `json:"cheque_id"    validate:"omitempty,uuid"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovimientoCuentaResponse struct {
	ID          string          `json:"id"`
	Tipo        string          `json:"tipo"`
	Monto       decimal.Decimal `json:"monto"`
	Concepto    string          `json:"concepto"`
	Descripcion string          `json:"descripcion"`
	Fecha       string          `json:"fecha"`
	PagoID      *string         `json:"pago_id,omitempty"`
	Cheque      *ChequeResumen  `json:"cheque,omitempty"`
	// SaldoPosterior is the entity balance once this movement is applied.
	SaldoPosterior decimal.Decimal `json:"saldo_posterior"`
}

type CuentaCorrienteResponse struct {
	Entidad       EntidadResumen             `json:"entidad"`
	Saldo         decimal.Decimal            `json:"saldo"`
	LimiteCredito *decimal.Decimal           `json:"limite_credito,omitempty"`
	ExcedeLimite  bool                       `json:"excede_limite"`
	Historial     []MovimientoCuentaResponse `json:"historial"`
	Total         int64                      `json:"total"`
	Page          int                        `json:"page"`
	Limit         int                        `json:"limit"`
}
