package infra

import (
	"fmt"

	"corralon/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, then runs the
// migrations so a fresh database is usable immediately.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), GormConfig())
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return db, nil
}

// GormConfig is shared by the postgres pool and the sqlite test databases.
// TranslateError maps driver unique violations to gorm.ErrDuplicatedKey.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}
}

// RunMigrations creates / updates all tables, then applies the partial unique
// indexes that AutoMigrate cannot express. The SQL is valid on PostgreSQL and
// SQLite alike.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Proveedor{},
		&model.Cliente{},
		&model.Cheque{},
		&model.ChequeEvento{},
		&model.SesionCaja{},
		&model.MovimientoCaja{},
		&model.MovimientoCuentaCorriente{},
		&model.Pago{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL statements. Each uses IF NOT EXISTS,
// so re-running on an already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// One open session per punto de venta. This is the authoritative guard
		// against concurrent "abrir" calls from two terminals.
		{"ux_sesiones_caja_abierta", `
CREATE UNIQUE INDEX IF NOT EXISTS ux_sesiones_caja_abierta
    ON sesiones_caja (tenant_id, punto_de_venta)
    WHERE estado = 'abierta'`},
		// Check number is unique per (tipo, banco) among live checks only.
		{"ux_cheques_numero", `
CREATE UNIQUE INDEX IF NOT EXISTS ux_cheques_numero
    ON cheques (tenant_id, tipo, banco, numero)
    WHERE deleted_at IS NULL`},
		{"idx_movimientos_cc_cliente_fecha", `
CREATE INDEX IF NOT EXISTS idx_movimientos_cc_cliente_fecha
    ON movimientos_cuenta_corriente (cliente_id, fecha)`},
		{"idx_movimientos_cc_proveedor_fecha", `
CREATE INDEX IF NOT EXISTS idx_movimientos_cc_proveedor_fecha
    ON movimientos_cuenta_corriente (proveedor_id, fecha)`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
