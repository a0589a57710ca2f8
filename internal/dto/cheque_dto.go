package dto

import (
	"corralon/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ChequeRequest is used both to register a check and to edit its non-status fields.
// Dates are calendar days (YYYY-MM-DD).
type ChequeRequest struct {
	Tipo         string          `json:"tipo"          validate:"required,oneof=propio tercero"`
	Banco        string          `json:"banco"         validate:"required,min=2,max=100"`
	Numero       string          `json:"numero"        validate:"required,max=40"`
	Monto        decimal.Decimal `json:"monto"         validate:"required,gt=0"`
	FechaEmision string          `json:"fecha_emision" validate:"required,datetime=2006-01-02"`
	FechaPago    string          `json:"fecha_pago"    validate:"required,datetime=2006-01-02"`
	ProveedorID  *string         `json:"proveedor_id"  validate:"omitempty,uuid"`
	Destinatario *string         `json:"destinatario"  validate:"omitempty,max=200"`
	ClienteID    *string         `json:"cliente_id"    validate:"omitempty,uuid"`
	Librador     *string         `json:"librador"      validate:"omitempty,max=200"`
	Observacion  *string         `json:"observacion"`
}

type TransicionChequeRequest struct {
	Estado string `json:"estado" validate:"required,oneof=pendiente depositado cobrado usado rechazado anulado"`
}

// CorreccionChequeRequest forces a status outside the state machine.
type CorreccionChequeRequest struct {
	Estado string `json:"estado" validate:"required,oneof=pendiente depositado cobrado usado rechazado anulado"`
	Motivo string `json:"motivo" validate:"required,min=3"`
}

type ChequeFiltro struct {
	Paginacion
	Q                 string `form:"q"`
	Tipo              string `form:"tipo"         validate:"omitempty,oneof=propio tercero"`
	Estado            string `form:"estado"       validate:"omitempty,oneof=pendiente depositado cobrado usado rechazado anulado"`
	ProveedorID       string `form:"proveedor_id" validate:"omitempty,uuid"`
	ClienteID         string `form:"cliente_id"   validate:"omitempty,uuid"`
	Desde             string `form:"desde"        validate:"omitempty,datetime=2006-01-02"`
	Hasta             string `form:"hasta"        validate:"omitempty,datetime=2006-01-02"`
	IncluirEliminados bool   `form:"incluir_eliminados"`
}

// ChequePropioSpec describes an own check to issue inside a settlement.
// FechaEmision defaults to the settlement date.
type ChequePropioSpec struct {
	Banco        string          `json:"banco"         validate:"required,min=2,max=100"`
	Numero       string          `json:"numero"        validate:"required,max=40"`
	Monto        decimal.Decimal `json:"monto"         validate:"required,gt=0"`
	FechaEmision string          `json:"fecha_emision" validate:"omitempty,datetime=2006-01-02"`
	FechaPago    string          `json:"fecha_pago"    validate:"required,datetime=2006-01-02"`
	Observacion  *string         `json:"observacion"`
}

// ChequeRecibidoSpec describes a third-party check received in a client collection.
type ChequeRecibidoSpec struct {
	Banco        string          `json:"banco"         validate:"required,min=2,max=100"`
	Numero       string          `json:"numero"        validate:"required,max=40"`
	Monto        decimal.Decimal `json:"monto"         validate:"required,gt=0"`
	FechaEmision string          `json:"fecha_emision" validate:"omitempty,datetime=2006-01-02"`
	FechaPago    string          `json:"fecha_pago"    validate:"required,datetime=2006-01-02"`
	Librador     string          `json:"librador"      validate:"required,max=200"`
	Observacion  *string         `json:"observacion"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ChequeEventoResponse struct {
	EstadoAnterior *string `json:"estado_anterior"`
	EstadoNuevo    string  `json:"estado_nuevo"`
	Via            string  `json:"via"`
	Motivo         *string `json:"motivo,omitempty"`
	UsuarioID      string  `json:"usuario_id"`
	Fecha          string  `json:"fecha"`
}

type ChequeResponse struct {
	ID              string                 `json:"id"`
	Tipo            string                 `json:"tipo"`
	Banco           string                 `json:"banco"`
	Numero          string                 `json:"numero"`
	Monto           decimal.Decimal        `json:"monto"`
	FechaEmision    string                 `json:"fecha_emision"`
	FechaPago       string                 `json:"fecha_pago"`
	Estado          string                 `json:"estado"`
	ProveedorID     *string                `json:"proveedor_id"`
	ProveedorNombre *string                `json:"proveedor_nombre,omitempty"`
	Destinatario    *string                `json:"destinatario"`
	ClienteID       *string                `json:"cliente_id"`
	ClienteNombre   *string                `json:"cliente_nombre,omitempty"`
	Librador        *string                `json:"librador"`
	Observacion     *string                `json:"observacion"`
	PagoID          *string                `json:"pago_id"`
	Vencido         bool                   `json:"vencido"`
	VencidoLegal    bool                   `json:"vencido_legal"`
	Eliminado       bool                   `json:"eliminado"`
	CreatedAt       string                 `json:"created_at"`
	Eventos         []ChequeEventoResponse `json:"eventos,omitempty"`
}

type ChequeListResponse struct {
	Data  []ChequeResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// ChequeResumen is re-exported so handlers and clients see one shape.
type ChequeResumen = model.ChequeResumen
