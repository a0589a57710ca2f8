package repository

import (
	"context"

	"corralon/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PagoRepository interface {
	DB() *gorm.DB
	Create(ctx context.Context, tx *gorm.DB, p *model.Pago) error
	FindByID(ctx context.Context, tenantID string, id uuid.UUID) (*model.Pago, error)
}

type pagoRepo struct{ db *gorm.DB }

func NewPagoRepository(db *gorm.DB) PagoRepository { return &pagoRepo{db: db} }

func (r *pagoRepo) DB() *gorm.DB { return r.db }

func (r *pagoRepo) Create(ctx context.Context, tx *gorm.DB, p *model.Pago) error {
	return conn(ctx, r.db, tx).Create(p).Error
}

func (r *pagoRepo) FindByID(ctx context.Context, tenantID string, id uuid.UUID) (*model.Pago, error) {
	var p model.Pago
	err := r.db.WithContext(ctx).Where("id = ? AND tenant_id = ?", id, tenantID).First(&p).Error
	return &p, err
}
