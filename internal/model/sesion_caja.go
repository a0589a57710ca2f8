package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Estado de sesión de caja.
const (
	CajaAbierta = "abierta"
	CajaCerrada = "cerrada"
)

// Tipo de movimiento de caja.
const (
	MovimientoIngreso = "ingreso"
	MovimientoEgreso  = "egreso"
)

// Conceptos de movimiento de caja.
const (
	ConceptoCajaVenta  = "venta"
	ConceptoCajaGasto  = "gasto"
	ConceptoCajaAjuste = "ajuste"
	ConceptoCajaPago   = "pago"
	ConceptoCajaCobro  = "cobro"
)

// SesionCaja represents the lifecycle of a cash register session.
// At most one "abierta" session per (tenant, punto_de_venta): enforced by the
// partial unique index ux_sesiones_caja_abierta.
type SesionCaja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID     string          `gorm:"type:varchar(64);not null;index"`
	PuntoDeVenta int             `gorm:"not null;index"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null"`
	MontoInicial decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	// MontoEsperado is computed on close: MontoInicial + ingresos - egresos
	MontoEsperado  *decimal.Decimal `gorm:"type:decimal(14,2)"`
	MontoDeclarado *decimal.Decimal `gorm:"type:decimal(14,2)"`
	Desvio         *decimal.Decimal `gorm:"type:decimal(14,2)"`
	DesvioPct      *decimal.Decimal `gorm:"type:decimal(7,2)"`
	Estado         string           `gorm:"type:varchar(20);not null;default:'abierta'"`
	// ClasificacionDesvio: "normal" | "advertencia" | "critico" (informational only)
	ClasificacionDesvio *string `gorm:"type:varchar(20)"`
	Observaciones       *string
	ObservacionesCierre *string
	OpenedAt            time.Time `gorm:"not null"`
	ClosedAt            *time.Time

	Movimientos []MovimientoCaja `gorm:"foreignKey:SesionCajaID"`
}

func (SesionCaja) TableName() string { return "sesiones_caja" }

func (s *SesionCaja) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.OpenedAt.IsZero() {
		s.OpenedAt = time.Now().UTC()
	}
	return nil
}

// MovimientoCaja is an immutable event in the cash register ledger.
// Monto is always positive; Tipo carries the sign.
// Movements are NEVER modified or deleted — corrections are new "ajuste" entries.
type MovimientoCaja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SesionCajaID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Tipo         string          `gorm:"type:varchar(10);not null"`
	Concepto     string          `gorm:"type:varchar(20);not null"`
	Monto        decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Descripcion  string          `gorm:"not null"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null"`
	// ReferenciaID links to the originating Pago or external operation
	ReferenciaID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt    time.Time
}

func (MovimientoCaja) TableName() string { return "movimientos_caja" }

func (m *MovimientoCaja) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Signo returns the movement amount with its sign applied.
func (m MovimientoCaja) Signo() decimal.Decimal {
	if m.Tipo == MovimientoEgreso {
		return m.Monto.Neg()
	}
	return m.Monto
}
