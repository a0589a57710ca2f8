package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Pago is the persisted receipt of one settlement. Detalle holds the full
// composition (checks consumed / issued / received) as JSON for read-only
// consumers such as the payment-order printer.
type Pago struct {
	ID                      uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID                string          `gorm:"type:varchar(64);not null;index"`
	ProveedorID             *uuid.UUID      `gorm:"type:uuid;index"`
	ClienteID               *uuid.UUID      `gorm:"type:uuid;index"`
	Fecha                   time.Time       `gorm:"not null"`
	Observacion             *string
	MontoEfectivo           decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	MontoTransferencia      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	ReferenciaTransferencia *string         `gorm:"type:varchar(100)"`
	MontoChequesTerceros    decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	MontoChequesPropios     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Total                   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	PuntoDeVenta            *int
	MovimientoCajaID        *uuid.UUID `gorm:"type:uuid"`
	MovimientoCuentaID      uuid.UUID  `gorm:"type:uuid;not null"`
	UsuarioID               uuid.UUID  `gorm:"type:uuid;not null"`
	Detalle                 datatypes.JSON
	CreatedAt               time.Time
}

func (Pago) TableName() string { return "pagos" }

func (p *Pago) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// DetallePago is the JSON shape stored in Pago.Detalle.
type DetallePago struct {
	ChequesTerceros  []ChequeResumen `json:"cheques_terceros"`
	ChequesPropios   []ChequeResumen `json:"cheques_propios"`
	ChequesRecibidos []ChequeResumen `json:"cheques_recibidos"`
}

// ChequeResumen is the compact form of a check inside receipts and ledger history.
type ChequeResumen struct {
	ID        uuid.UUID       `json:"id"`
	Tipo      string          `json:"tipo"`
	Banco     string          `json:"banco"`
	Numero    string          `json:"numero"`
	Monto     decimal.Decimal `json:"monto"`
	FechaPago time.Time       `json:"fecha_pago"`
	Estado    string          `json:"estado"`
}

// Resumen builds the compact summary of c.
func (c *Cheque) Resumen() ChequeResumen {
	return ChequeResumen{
		ID: c.ID, Tipo: c.Tipo, Banco: c.Banco, Numero: c.Numero,
		Monto: c.Monto, FechaPago: c.FechaPago, Estado: c.Estado,
	}
}
