package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Tipo de cheque: emitido por el negocio o recibido de un cliente.
const (
	ChequePropio  = "propio"
	ChequeTercero = "tercero"
)

// Estados del ciclo de vida de un cheque.
const (
	ChequePendiente  = "pendiente"
	ChequeDepositado = "depositado"
	ChequeCobrado    = "cobrado"
	ChequeUsado      = "usado"
	ChequeRechazado  = "rechazado"
	ChequeAnulado    = "anulado"
)

// EstadosCheque lists every enumerated status, in display order.
var EstadosCheque = []string{
	ChequePendiente, ChequeDepositado, ChequeCobrado, ChequeUsado, ChequeRechazado, ChequeAnulado,
}

// Cheque is a postdated check, own or third-party.
// Propio: at most one of ProveedorID / Destinatario is set.
// Tercero: Librador (drawer name) is always set, ClienteID is optional.
// Rows are never physically removed while referenced; DeletedAt is the tombstone.
type Cheque struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID     string          `gorm:"type:varchar(64);not null;index"`
	Tipo         string          `gorm:"type:varchar(10);not null"`
	Banco        string          `gorm:"type:varchar(100);not null"`
	Numero       string          `gorm:"type:varchar(40);not null"`
	Monto        decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	FechaEmision time.Time       `gorm:"not null"`
	FechaPago    time.Time       `gorm:"not null;index"`
	Estado       string          `gorm:"type:varchar(20);not null;default:'pendiente';index"`
	ProveedorID  *uuid.UUID      `gorm:"type:uuid;index"`
	Destinatario *string         `gorm:"type:varchar(200)"`
	ClienteID    *uuid.UUID      `gorm:"type:uuid;index"`
	Librador     *string         `gorm:"type:varchar(200)"`
	Observacion  *string
	// PagoID links the settlement that issued or consumed this check.
	PagoID    *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time `gorm:"index"`

	Proveedor *Proveedor     `gorm:"foreignKey:ProveedorID"`
	Cliente   *Cliente       `gorm:"foreignKey:ClienteID"`
	Eventos   []ChequeEvento `gorm:"foreignKey:ChequeID"`
}

func (Cheque) TableName() string { return "cheques" }

func (c *Cheque) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Vía por la que cambia el estado de un cheque.
const (
	ViaAlta       = "alta"
	ViaTransicion = "transicion"
	ViaPago       = "pago"
	ViaCorreccion = "correccion"
)

// ChequeEvento is the append-only audit trail of status changes.
// Via "correccion" marks the unguarded admin override.
type ChequeEvento struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChequeID       uuid.UUID `gorm:"type:uuid;not null;index"`
	EstadoAnterior *string   `gorm:"type:varchar(20)"`
	EstadoNuevo    string    `gorm:"type:varchar(20);not null"`
	Via            string    `gorm:"type:varchar(20);not null"`
	Motivo         *string
	UsuarioID      uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time
}

func (ChequeEvento) TableName() string { return "cheque_eventos" }

func (e *ChequeEvento) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
