package repository

import (
	"context"
	"strings"
	"time"

	"corralon/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChequeQuery is the typed form of the list filter.
type ChequeQuery struct {
	TenantID          string
	Q                 string
	Tipo              string
	Estado            string
	ProveedorID       *uuid.UUID
	ClienteID         *uuid.UUID
	Desde             *time.Time
	Hasta             *time.Time // inclusive day
	IncluirEliminados bool
	Offset            int
	Limit             int
}

type ChequeRepository interface {
	DB() *gorm.DB
	Create(ctx context.Context, tx *gorm.DB, c *model.Cheque) error
	Update(ctx context.Context, tx *gorm.DB, c *model.Cheque) error
	FindByID(ctx context.Context, tx *gorm.DB, tenantID string, id uuid.UUID) (*model.Cheque, error)
	FindLive(ctx context.Context, tx *gorm.DB, tenantID string, id uuid.UUID) (*model.Cheque, error)
	// FindLiveForUpdate holds a row lock on the check until tx ends.
	FindLiveForUpdate(ctx context.Context, tx *gorm.DB, tenantID string, id uuid.UUID) (*model.Cheque, error)
	ExisteNumero(ctx context.Context, tx *gorm.DB, tenantID, tipo, banco, numero string, excluir uuid.UUID) (bool, error)
	// CambiarEstado is a compare-and-swap on the status column. It reports
	// false when the row no longer holds (tipo, desde) or is soft-deleted.
	CambiarEstado(ctx context.Context, tx *gorm.DB, tenantID string, id uuid.UUID, tipo, desde, hacia string, pagoID *uuid.UUID) (bool, error)
	SetEstado(ctx context.Context, tx *gorm.DB, tenantID string, id uuid.UUID, estado string) error
	SetDeletedAt(ctx context.Context, tx *gorm.DB, tenantID string, id uuid.UUID, t *time.Time) error
	TieneMovimientosCuenta(ctx context.Context, tx *gorm.DB, tenantID string, id uuid.UUID) (bool, error)
	Purgar(ctx context.Context, tx *gorm.DB, tenantID string, id uuid.UUID) error
	CreateEvento(ctx context.Context, tx *gorm.DB, e *model.ChequeEvento) error
	ListEventos(ctx context.Context, chequeID uuid.UUID) ([]model.ChequeEvento, error)
	List(ctx context.Context, q ChequeQuery) ([]model.Cheque, int64, error)
	ListPendientesPorVencer(ctx context.Context, tenantID, tipo string, desde, hasta time.Time) ([]model.Cheque, error)
}

type chequeRepo struct{ db *gorm.DB }

func NewChequeRepository(db *gorm.DB) ChequeRepository { return &chequeRepo{db: db} }

func (r *chequeRepo) DB() *gorm.DB { return r.db }

func (r *chequeRepo) Create(ctx context.Context, tx *gorm.DB, c *model.Cheque) error {
	return conn(ctx, r.db, tx).Create(c).Error
}

func (r *chequeRepo) Update(ctx context.Context, tx *gorm.DB, c *model.Cheque) error {
	c.UpdatedAt = time.Now().UTC()
	return conn(ctx, r.db, tx).Model(c).
		Where("tenant_id = ?", c.TenantID).
		Select("tipo", "banco", "numero", "monto", "fecha_emision", "fecha_pago",
			"proveedor_id", "destinatario", "cliente_id", "librador", "observacion", "updated_at").
		Updates(c).Error
}

func (r *chequeRepo) FindByID(ctx context.Context, tx *gorm.DB, tenantID string, id uuid.UUID) (*model.Cheque, error) {
	var c model.Cheque
	err := conn(ctx, r.db, tx).
		Preload("Proveedor").Preload("Cliente").
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&c).Error
	return &c, err
}

// FindLive is FindByID restricted to checks that are not soft-deleted.
func (r *chequeRepo) FindLive(ctx context.Context, tx *gorm.DB, tenantID string, id uuid.UUID) (*model.Cheque, error) {
	var c model.Cheque
	err := conn(ctx, r.db, tx).
		Where("id = ? AND tenant_id = ? AND deleted_at IS NULL", id, tenantID).
		First(&c).Error
	return &c, err
}

func (r *chequeRepo) FindLiveForUpdate(ctx context.Context, tx *gorm.DB, tenantID string, id uuid.UUID) (*model.Cheque, error) {
	var c model.Cheque
	err := conn(ctx, r.db, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND tenant_id = ? AND deleted_at IS NULL", id, tenantID).
		First(&c).Error
	return &c, err
}

func (r *chequeRepo) ExisteNumero(ctx context.Context, tx *gorm.DB, tenantID, tipo, banco, numero string, excluir uuid.UUID) (bool, error) {
	var n int64
	err := conn(ctx, r.db, tx).Model(&model.Cheque{}).
		Where("tenant_id = ? AND tipo = ? AND banco = ? AND numero = ? AND deleted_at IS NULL AND id <> ?",
			tenantID, tipo, banco, numero, excluir).
		Count(&n).Error
	return n > 0, err
}

func (r *chequeRepo) CambiarEstado(ctx context.Context, tx *gorm.DB, tenantID string, id uuid.UUID, tipo, desde, hacia string, pagoID *uuid.UUID) (bool, error) {
	cambios := map[string]any{"estado": hacia, "updated_at": time.Now().UTC()}
	if pagoID != nil {
		cambios["pago_id"] = *pagoID
	}
	res := conn(ctx, r.db, tx).Model(&model.Cheque{}).
		Where("id = ? AND tenant_id = ? AND tipo = ? AND estado = ? AND deleted_at IS NULL", id, tenantID, tipo, desde).
		Updates(cambios)
	return res.RowsAffected == 1, res.Error
}

func (r *chequeRepo) SetEstado(ctx context.Context, tx *gorm.DB, tenantID string, id uuid.UUID, estado string) error {
	return conn(ctx, r.db, tx).Model(&model.Cheque{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(map[string]any{"estado": estado, "updated_at": time.Now().UTC()}).Error
}

func (r *chequeRepo) SetDeletedAt(ctx context.Context, tx *gorm.DB, tenantID string, id uuid.UUID, t *time.Time) error {
	return conn(ctx, r.db, tx).Model(&model.Cheque{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(map[string]any{"deleted_at": t, "updated_at": time.Now().UTC()}).Error
}

func (r *chequeRepo) TieneMovimientosCuenta(ctx context.Context, tx *gorm.DB, tenantID string, id uuid.UUID) (bool, error) {
	var n int64
	err := conn(ctx, r.db, tx).Model(&model.MovimientoCuentaCorriente{}).
		Where("tenant_id = ? AND cheque_id = ?", tenantID, id).
		Count(&n).Error
	return n > 0, err
}

func (r *chequeRepo) Purgar(ctx context.Context, tx *gorm.DB, tenantID string, id uuid.UUID) error {
	db := conn(ctx, r.db, tx)
	if err := db.Where("cheque_id = ?", id).Delete(&model.ChequeEvento{}).Error; err != nil {
		return err
	}
	return db.Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&model.Cheque{}).Error
}

func (r *chequeRepo) CreateEvento(ctx context.Context, tx *gorm.DB, e *model.ChequeEvento) error {
	return conn(ctx, r.db, tx).Create(e).Error
}

func (r *chequeRepo) ListEventos(ctx context.Context, chequeID uuid.UUID) ([]model.ChequeEvento, error) {
	var eventos []model.ChequeEvento
	err := r.db.WithContext(ctx).
		Where("cheque_id = ?", chequeID).
		Order("created_at ASC").
		Find(&eventos).Error
	return eventos, err
}

func (r *chequeRepo) List(ctx context.Context, q ChequeQuery) ([]model.Cheque, int64, error) {
	var cheques []model.Cheque
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Cheque{}).Where("tenant_id = ?", q.TenantID)
	if !q.IncluirEliminados {
		db = db.Where("deleted_at IS NULL")
	}
	if s := strings.TrimSpace(q.Q); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		db = db.Where("(LOWER(numero) LIKE ? OR LOWER(banco) LIKE ?)", like, like)
	}
	if q.Tipo != "" {
		db = db.Where("tipo = ?", q.Tipo)
	}
	if q.Estado != "" {
		db = db.Where("estado = ?", q.Estado)
	}
	if q.ProveedorID != nil {
		db = db.Where("proveedor_id = ?", *q.ProveedorID)
	}
	if q.ClienteID != nil {
		db = db.Where("cliente_id = ?", *q.ClienteID)
	}
	if q.Desde != nil {
		db = db.Where("fecha_pago >= ?", *q.Desde)
	}
	if q.Hasta != nil {
		db = db.Where("fecha_pago < ?", q.Hasta.AddDate(0, 0, 1))
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Proveedor").Preload("Cliente").
		Order("fecha_pago ASC, created_at ASC").
		Offset(q.Offset).Limit(q.Limit).
		Find(&cheques).Error
	return cheques, total, err
}

func (r *chequeRepo) ListPendientesPorVencer(ctx context.Context, tenantID, tipo string, desde, hasta time.Time) ([]model.Cheque, error) {
	var cheques []model.Cheque
	err := r.db.WithContext(ctx).Preload("Proveedor").
		Where("tenant_id = ? AND tipo = ? AND estado = ? AND deleted_at IS NULL", tenantID, tipo, model.ChequePendiente).
		Where("fecha_pago >= ? AND fecha_pago < ?", desde, hasta).
		Order("fecha_pago ASC").
		Find(&cheques).Error
	return cheques, err
}
