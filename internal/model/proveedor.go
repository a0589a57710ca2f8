package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Proveedor represents a supplier. Its catalog lives in the purchasing module;
// treasury only references it.
type Proveedor struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID    string    `gorm:"type:varchar(64);not null;index"`
	RazonSocial string    `gorm:"not null"`
	CUIT        string    `gorm:"column:cuit;type:varchar(20);not null"`
	Email       *string
	Activo      bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Proveedor) TableName() string { return "proveedores" }

func (p *Proveedor) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Cliente represents a customer with an optional current-account credit limit.
// LimiteCredito is advisory: it is reported, never enforced by the ledger.
type Cliente struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID      string    `gorm:"type:varchar(64);not null;index"`
	Nombre        string    `gorm:"not null"`
	CUIT          *string   `gorm:"column:cuit;type:varchar(20)"`
	Email         *string
	LimiteCredito *decimal.Decimal `gorm:"type:decimal(14,2)"`
	Activo        bool             `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Cliente) TableName() string { return "clientes" }

func (c *Cliente) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
