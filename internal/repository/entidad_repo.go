package repository

import (
	"context"

	"corralon/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EntidadRepository reads the clients and providers owned by the commercial
// module. Treasury only checks existence and reads contact data.
type EntidadRepository interface {
	CreateProveedor(ctx context.Context, p *model.Proveedor) error
	CreateCliente(ctx context.Context, c *model.Cliente) error
	FindProveedor(ctx context.Context, tx *gorm.DB, tenantID string, id uuid.UUID) (*model.Proveedor, error)
	FindCliente(ctx context.Context, tx *gorm.DB, tenantID string, id uuid.UUID) (*model.Cliente, error)
	ListProveedores(ctx context.Context, tenantID string) ([]model.Proveedor, error)
}

type entidadRepo struct{ db *gorm.DB }

func NewEntidadRepository(db *gorm.DB) EntidadRepository { return &entidadRepo{db: db} }

func (r *entidadRepo) CreateProveedor(ctx context.Context, p *model.Proveedor) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *entidadRepo) CreateCliente(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *entidadRepo) FindProveedor(ctx context.Context, tx *gorm.DB, tenantID string, id uuid.UUID) (*model.Proveedor, error) {
	var p model.Proveedor
	err := conn(ctx, r.db, tx).Where("id = ? AND tenant_id = ? AND activo = ?", id, tenantID, true).First(&p).Error
	return &p, err
}

func (r *entidadRepo) FindCliente(ctx context.Context, tx *gorm.DB, tenantID string, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	err := conn(ctx, r.db, tx).Where("id = ? AND tenant_id = ? AND activo = ?", id, tenantID, true).First(&c).Error
	return &c, err
}

func (r *entidadRepo) ListProveedores(ctx context.Context, tenantID string) ([]model.Proveedor, error) {
	var proveedores []model.Proveedor
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND activo = ?", tenantID, true).
		Order("razon_social ASC").Find(&proveedores).Error
	return proveedores, err
}
