package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"corralon/internal/dto"
	"corralon/internal/infra"
	"corralon/internal/model"
	"corralon/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// hoy is the fixed clock of every service test.
var hoy = time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

// testDB opens a private in-memory SQLite database with the production schema.
// A single connection makes concurrent transactions queue at the store, the
// way the row locks make them queue in Postgres.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=off", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), infra.GormConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, infra.RunMigrations(db))
	return db
}

type entorno struct {
	db         *gorm.DB
	op         dto.Operador
	entidades  repository.EntidadRepository
	chequeRepo repository.ChequeRepository

	cheques ChequeService
	caja    CajaService
	cuentas CuentaCorrienteService
	pagos   PagoService

	proveedor *model.Proveedor
	cliente   *model.Cliente
}

// nuevoEntorno wires every service over a fresh database and seeds one
// provider and one client. publisher and idem may be nil.
func nuevoEntorno(t *testing.T, publisher Publisher, idem IdempotencyStore) *entorno {
	t.Helper()
	db := testDB(t)
	opts := Opciones{TxTimeout: 5 * time.Second, PlazoLegalDias: 30, Ahora: func() time.Time { return hoy }}

	chequeRepo := repository.NewChequeRepository(db)
	entidades := repository.NewEntidadRepository(db)
	cuentaRepo := repository.NewCuentaCorrienteRepository(db)

	e := &entorno{
		db:         db,
		op:         dto.Operador{UsuarioID: uuid.New(), PuntoDeVenta: 1, TenantID: "t1", Rol: "cajero"},
		entidades:  entidades,
		chequeRepo: chequeRepo,
	}
	e.cheques = NewChequeService(chequeRepo, entidades, opts)
	e.caja = NewCajaService(repository.NewCajaRepository(db), opts)
	e.cuentas = NewCuentaCorrienteService(cuentaRepo, entidades, chequeRepo, opts)
	e.pagos = NewPagoService(repository.NewPagoRepository(db), chequeRepo, e.cheques, e.caja, e.cuentas,
		publisher, idem, time.Hour, opts)

	email := "pagos@proveedor.test"
	e.proveedor = &model.Proveedor{TenantID: "t1", RazonSocial: "Hierros SA", CUIT: "30-11111111-1", Email: &email, Activo: true}
	require.NoError(t, entidades.CreateProveedor(context.Background(), e.proveedor))
	limite := decimal.NewFromInt(1000)
	e.cliente = &model.Cliente{TenantID: "t1", Nombre: "Obras Perez", LimiteCredito: &limite, Activo: true}
	require.NoError(t, entidades.CreateCliente(context.Background(), e.cliente))
	return e
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

// nuevoTercero registers a pending third-party check.
func (e *entorno) nuevoTercero(t *testing.T, numero, monto string) *dto.ChequeResponse {
	t.Helper()
	c, err := e.cheques.Crear(context.Background(), e.op, dto.ChequeRequest{
		Tipo:         model.ChequeTercero,
		Banco:        "Banco Nacion",
		Numero:       numero,
		Monto:        dec(monto),
		FechaEmision: "2024-03-01",
		FechaPago:    "2024-04-01",
		Librador:     ptr("Juan Gomez"),
	})
	require.NoError(t, err)
	return c
}

func (e *entorno) abrirCaja(t *testing.T, monto string) {
	t.Helper()
	_, err := e.caja.Abrir(context.Background(), e.op, dto.AbrirCajaRequest{MontoInicial: dec(monto)})
	require.NoError(t, err)
}

func requireKind(t *testing.T, err error, kind error) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, errors.Is(err, kind), "want %v, got %v", kind, err)
}
