package repository

import (
	"context"

	"corralon/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CajaRepository interface {
	DB() *gorm.DB
	CreateSesion(ctx context.Context, tx *gorm.DB, s *model.SesionCaja) error
	// FindSesionAbierta locks the session row FOR UPDATE when lock is set.
	FindSesionAbierta(ctx context.Context, tx *gorm.DB, tenantID string, puntoDeVenta int, lock bool) (*model.SesionCaja, error)
	FindSesionByID(ctx context.Context, tenantID string, id uuid.UUID) (*model.SesionCaja, error)
	FindUltimaCerrada(ctx context.Context, tenantID string, puntoDeVenta int) (*model.SesionCaja, error)
	UpdateSesion(ctx context.Context, tx *gorm.DB, s *model.SesionCaja) error
	CreateMovimiento(ctx context.Context, tx *gorm.DB, m *model.MovimientoCaja) error
	ListMovimientos(ctx context.Context, sesionCajaID uuid.UUID) ([]model.MovimientoCaja, error)
	Totales(ctx context.Context, tx *gorm.DB, sesionCajaID uuid.UUID) (ingresos, egresos decimal.Decimal, err error)
	ListCerradas(ctx context.Context, tenantID string, puntoDeVenta, offset, limit int) ([]model.SesionCaja, int64, error)
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) DB() *gorm.DB { return r.db }

func (r *cajaRepo) CreateSesion(ctx context.Context, tx *gorm.DB, s *model.SesionCaja) error {
	return conn(ctx, r.db, tx).Create(s).Error
}

func (r *cajaRepo) FindSesionAbierta(ctx context.Context, tx *gorm.DB, tenantID string, puntoDeVenta int, lock bool) (*model.SesionCaja, error) {
	var s model.SesionCaja
	q := conn(ctx, r.db, tx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.Where("tenant_id = ? AND punto_de_venta = ? AND estado = ?", tenantID, puntoDeVenta, model.CajaAbierta).
		First(&s).Error
	return &s, err
}

func (r *cajaRepo) FindSesionByID(ctx context.Context, tenantID string, id uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).Where("id = ? AND tenant_id = ?", id, tenantID).First(&s).Error
	return &s, err
}

func (r *cajaRepo) FindUltimaCerrada(ctx context.Context, tenantID string, puntoDeVenta int) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND punto_de_venta = ? AND estado = ?", tenantID, puntoDeVenta, model.CajaCerrada).
		Order("closed_at DESC").
		First(&s).Error
	return &s, err
}

func (r *cajaRepo) UpdateSesion(ctx context.Context, tx *gorm.DB, s *model.SesionCaja) error {
	return conn(ctx, r.db, tx).Omit("Movimientos").Save(s).Error
}

func (r *cajaRepo) CreateMovimiento(ctx context.Context, tx *gorm.DB, m *model.MovimientoCaja) error {
	return conn(ctx, r.db, tx).Create(m).Error
}

func (r *cajaRepo) ListMovimientos(ctx context.Context, sesionCajaID uuid.UUID) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := r.db.WithContext(ctx).Where("sesion_caja_id = ?", sesionCajaID).Order("created_at ASC").Find(&movs).Error
	return movs, err
}

func (r *cajaRepo) Totales(ctx context.Context, tx *gorm.DB, sesionCajaID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	var row struct {
		Ingresos decimal.Decimal
		Egresos  decimal.Decimal
	}
	err := conn(ctx, r.db, tx).Model(&model.MovimientoCaja{}).
		Select(`COALESCE(SUM(CASE WHEN tipo = ? THEN monto ELSE 0 END), 0) AS ingresos,
		        COALESCE(SUM(CASE WHEN tipo = ? THEN monto ELSE 0 END), 0) AS egresos`,
			model.MovimientoIngreso, model.MovimientoEgreso).
		Where("sesion_caja_id = ?", sesionCajaID).
		Scan(&row).Error
	return row.Ingresos.Round(2), row.Egresos.Round(2), err
}

func (r *cajaRepo) ListCerradas(ctx context.Context, tenantID string, puntoDeVenta, offset, limit int) ([]model.SesionCaja, int64, error) {
	var sesiones []model.SesionCaja
	var total int64

	q := r.db.WithContext(ctx).Model(&model.SesionCaja{}).
		Where("tenant_id = ? AND estado = ?", tenantID, model.CajaCerrada)
	if puntoDeVenta > 0 {
		q = q.Where("punto_de_venta = ?", puntoDeVenta)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("closed_at DESC").Offset(offset).Limit(limit).Find(&sesiones).Error
	return sesiones, total, err
}
