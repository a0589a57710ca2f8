package repository

import (
	"context"

	"corralon/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CuentaRef identifies one current account: a client or a provider.
type CuentaRef struct {
	TenantID string
	Entidad  string // model.EntidadCliente | model.EntidadProveedor
	ID       uuid.UUID
}

func (c CuentaRef) column() string {
	if c.Entidad == model.EntidadProveedor {
		return "proveedor_id"
	}
	return "cliente_id"
}

// Totales holds the unsigned sums per movement direction.
type Totales struct {
	Debitos  decimal.Decimal
	Creditos decimal.Decimal
}

type CuentaCorrienteRepository interface {
	DB() *gorm.DB
	Create(ctx context.Context, tx *gorm.DB, m *model.MovimientoCuentaCorriente) error
	Totales(ctx context.Context, tx *gorm.DB, ref CuentaRef) (Totales, error)
	// TotalesRecientes sums the n newest movements, in history order.
	TotalesRecientes(ctx context.Context, ref CuentaRef, n int) (Totales, error)
	List(ctx context.Context, ref CuentaRef, offset, limit int) ([]model.MovimientoCuentaCorriente, int64, error)
}

type cuentaCorrienteRepo struct{ db *gorm.DB }

func NewCuentaCorrienteRepository(db *gorm.DB) CuentaCorrienteRepository {
	return &cuentaCorrienteRepo{db: db}
}

func (r *cuentaCorrienteRepo) DB() *gorm.DB { return r.db }

func (r *cuentaCorrienteRepo) Create(ctx context.Context, tx *gorm.DB, m *model.MovimientoCuentaCorriente) error {
	return conn(ctx, r.db, tx).Omit("Cheque").Create(m).Error
}

const sumaPorTipo = `COALESCE(SUM(CASE WHEN tipo = 'debito' THEN monto ELSE 0 END), 0) AS debitos,
COALESCE(SUM(CASE WHEN tipo = 'credito' THEN monto ELSE 0 END), 0) AS creditos`

func (r *cuentaCorrienteRepo) Totales(ctx context.Context, tx *gorm.DB, ref CuentaRef) (Totales, error) {
	var t Totales
	err := conn(ctx, r.db, tx).Model(&model.MovimientoCuentaCorriente{}).
		Select(sumaPorTipo).
		Where("tenant_id = ? AND "+ref.column()+" = ?", ref.TenantID, ref.ID).
		Scan(&t).Error
	return t.round(), err
}

func (r *cuentaCorrienteRepo) TotalesRecientes(ctx context.Context, ref CuentaRef, n int) (Totales, error) {
	var t Totales
	if n <= 0 {
		return t, nil
	}
	recientes := r.db.Model(&model.MovimientoCuentaCorriente{}).
		Select("tipo, monto").
		Where("tenant_id = ? AND "+ref.column()+" = ?", ref.TenantID, ref.ID).
		Order("fecha DESC, created_at DESC, id DESC").
		Limit(n)
	err := r.db.WithContext(ctx).Table("(?) AS recientes", recientes).
		Select(sumaPorTipo).
		Scan(&t).Error
	return t.round(), err
}

func (r *cuentaCorrienteRepo) List(ctx context.Context, ref CuentaRef, offset, limit int) ([]model.MovimientoCuentaCorriente, int64, error) {
	var movs []model.MovimientoCuentaCorriente
	var total int64

	q := r.db.WithContext(ctx).Model(&model.MovimientoCuentaCorriente{}).
		Where("tenant_id = ? AND "+ref.column()+" = ?", ref.TenantID, ref.ID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Cheque").
		Order("fecha DESC, created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&movs).Error
	return movs, total, err
}

func (t Totales) round() Totales {
	return Totales{Debitos: t.Debitos.Round(2), Creditos: t.Creditos.Round(2)}
}
