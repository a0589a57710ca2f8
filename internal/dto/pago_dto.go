package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// RegistrarPagoRequest settles a provider debt (or collects from a client)
// with any mix of cash, transfer and checks in one atomic operation.
//
// Provider: ChequesTerceros are consumed, ChequesPropios are issued.
// Client:   ChequesRecibidos are registered as pending third-party checks.
type RegistrarPagoRequest struct {
	ProveedorID             *string              `json:"proveedor_id"             validate:"omitempty,uuid"`
	ClienteID               *string              `json:"cliente_id"               validate:"omitempty,uuid"`
	PuntoDeVenta            int                  `json:"punto_de_venta"           validate:"omitempty,min=1"`
	Fecha                   *string              `json:"fecha"                    validate:"omitempty,datetime=2006-01-02"`
	Observacion             *string              `json:"observacion"`
	MontoEfectivo           decimal.Decimal      `json:"monto_efectivo"           validate:"min=0"`
	MontoTransferencia      decimal.Decimal      `json:"monto_transferencia"      validate:"min=0"`
	ReferenciaTransferencia *string              `json:"referencia_transferencia" validate:"omitempty,max=100"`
	ChequesTerceros         []string             `json:"cheques_terceros"         validate:"omitempty,dive,uuid"`
	ChequesPropios          []ChequePropioSpec   `json:"cheques_propios"          validate:"omitempty,dive"`
	ChequesRecibidos        []ChequeRecibidoSpec `json:"cheques_recibidos"        validate:"omitempty,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PagoResponse struct {
	ID                      string          `json:"id"`
	Entidad                 EntidadResumen  `json:"entidad"`
	Fecha                   string          `json:"fecha"`
	Observacion             *string         `json:"observacion"`
	MontoEfectivo           decimal.Decimal `json:"monto_efectivo"`
	MontoTransferencia      decimal.Decimal `json:"monto_transferencia"`
	ReferenciaTransferencia *string         `json:"referencia_transferencia"`
	MontoChequesTerceros    decimal.Decimal `json:"monto_cheques_terceros"`
	MontoChequesPropios     decimal.Decimal `json:"monto_cheques_propios"`
	Total                   decimal.Decimal `json:"total"`
	MovimientoCajaID        *string         `json:"movimiento_caja_id"`
	MovimientoCuentaID      string          `json:"movimiento_cuenta_id"`
	ChequesTerceros         []ChequeResumen `json:"cheques_terceros"`
	ChequesPropios          []ChequeResumen `json:"cheques_propios"`
	ChequesRecibidos        []ChequeResumen `json:"cheques_recibidos"`
	SaldoCuenta             decimal.Decimal `json:"saldo_cuenta"`
	CreatedAt               string          `json:"created_at"`
}

// ─── Events ──────────────────────────────────────────────────────────────────

// PagoRegistradoEvento is published once a settlement has committed.
type PagoRegistradoEvento struct {
	PagoID   string          `json:"pago_id"`
	TenantID string          `json:"tenant_id"`
	Entidad  EntidadResumen  `json:"entidad"`
	Fecha    string          `json:"fecha"`
	Total    decimal.Decimal `json:"total"`
	Detalle  string          `json:"detalle"`
}
