package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Tipo de movimiento de cuenta corriente.
const (
	CuentaDebito  = "debito"
	CuentaCredito = "credito"
)

// Conceptos de cuenta corriente.
const (
	ConceptoCuentaVenta        = "venta"
	ConceptoCuentaPago         = "pago"
	ConceptoCuentaCheque       = "cheque"
	ConceptoCuentaAjuste       = "ajuste"
	ConceptoCuentaSaldoInicial = "saldo_inicial"
)

// Entidades con cuenta corriente.
const (
	EntidadCliente   = "cliente"
	EntidadProveedor = "proveedor"
)

// MovimientoCuentaCorriente is an append-only entry in a client's or provider's
// running account. Exactly one of ClienteID / ProveedorID is set.
//
// Sign convention:
//   - cliente:   debito increases what the client owes us, credito decreases it
//   - proveedor: credito increases what we owe the provider, debito decreases it
type MovimientoCuentaCorriente struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID    string          `gorm:"type:varchar(64);not null;index"`
	ClienteID   *uuid.UUID      `gorm:"type:uuid;index"`
	ProveedorID *uuid.UUID      `gorm:"type:uuid;index"`
	Tipo        string          `gorm:"type:varchar(10);not null"`
	Monto       decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Concepto    string          `gorm:"type:varchar(20);not null"`
	Descripcion string          `gorm:"not null"`
	ChequeID    *uuid.UUID      `gorm:"type:uuid;index"`
	PagoID      *uuid.UUID      `gorm:"type:uuid;index"`
	UsuarioID   uuid.UUID       `gorm:"type:uuid;not null"`
	Fecha       time.Time       `gorm:"not null;index"`
	CreatedAt   time.Time

	Cheque *Cheque `gorm:"foreignKey:ChequeID"`
}

func (MovimientoCuentaCorriente) TableName() string { return "movimientos_cuenta_corriente" }

func (m *MovimientoCuentaCorriente) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Signo returns the amount signed from the owning entity's point of view:
// positive means "they owe us" for a client and "we owe them" for a provider.
func (m MovimientoCuentaCorriente) Signo() decimal.Decimal {
	aumenta := CuentaDebito
	if m.ProveedorID != nil {
		aumenta = CuentaCredito
	}
	if m.Tipo == aumenta {
		return m.Monto
	}
	return m.Monto.Neg()
}
