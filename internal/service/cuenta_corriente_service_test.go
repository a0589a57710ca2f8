package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"corralon/internal/dto"
	"corralon/internal/model"
	"corralon/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *entorno) movimientoCuenta(t *testing.T, req dto.MovimientoCuentaRequest) *dto.MovimientoCuentaResponse {
	t.Helper()
	m, err := e.cuentas.RegistrarMovimiento(context.Background(), e.op, req)
	require.NoError(t, err)
	return m
}

func TestCuentaCorriente_SignoPorEntidad(t *testing.T) {
	e := nuevoEntorno(t, nil, nil)
	ctx := context.Background()
	cli, prov := e.cliente.ID.String(), e.proveedor.ID.String()

	// Same movements, opposite balances.
	for _, req := range []dto.MovimientoCuentaRequest{
		{ClienteID: &cli, Tipo: model.CuentaDebito, Monto: dec("300"), Concepto: model.ConceptoCuentaVenta, Descripcion: "remito 1"},
		{ClienteID: &cli, Tipo: model.CuentaCredito, Monto: dec("100"), Concepto: model.ConceptoCuentaPago, Descripcion: "entrega"},
		{ProveedorID: &prov, Tipo: model.CuentaDebito, Monto: dec("300"), Concepto: model.ConceptoCuentaPago, Descripcion: "transferencia"},
		{ProveedorID: &prov, Tipo: model.CuentaCredito, Monto: dec("100"), Concepto: model.ConceptoCuentaVenta, Descripcion: "factura"},
	} {
		e.movimientoCuenta(t, req)
	}

	saldoCli, err := e.cuentas.Saldo(ctx, e.op, model.EntidadCliente, e.cliente.ID)
	require.NoError(t, err)
	assert.True(t, saldoCli.Equal(dec("200")), "cliente %s", saldoCli)

	saldoProv, err := e.cuentas.Saldo(ctx, e.op, model.EntidadProveedor, e.proveedor.ID)
	require.NoError(t, err)
	assert.True(t, saldoProv.Equal(dec("-200")), "proveedor %s", saldoProv)
}

func TestCuentaCorriente_RespuestaTraeSaldo(t *testing.T) {
	e := nuevoEntorno(t, nil, nil)
	prov := e.proveedor.ID.String()

	m := e.movimientoCuenta(t, dto.MovimientoCuentaRequest{
		ProveedorID: &prov, Tipo: model.CuentaCredito, Monto: dec("1234.567"),
		Concepto: model.ConceptoCuentaSaldoInicial, Descripcion: "saldo de apertura",
	})
	assert.True(t, m.Monto.Equal(dec("1234.57")))
	assert.True(t, m.SaldoPosterior.Equal(dec("1234.57")))
}

func TestCuentaCorriente_Validaciones(t *testing.T) {
	e := nuevoEntorno(t, nil, nil)
	ctx := context.Background()
	cli, prov := e.cliente.ID.String(), e.proveedor.ID.String()
	otro := uuid.NewString()

	cases := []struct {
		name  string
		req   dto.MovimientoCuentaRequest
		kind  error
		campo string
	}{
		{"sin entidad", dto.MovimientoCuentaRequest{Tipo: model.CuentaDebito, Monto: dec("1"), Concepto: model.ConceptoCuentaAjuste, Descripcion: "ajuste"}, ErrValidacion, "entidad"},
		{"dos entidades", dto.MovimientoCuentaRequest{ClienteID: &cli, ProveedorID: &prov, Tipo: model.CuentaDebito, Monto: dec("1"), Concepto: model.ConceptoCuentaAjuste, Descripcion: "ajuste"}, ErrValidacion, "entidad"},
		{"monto cero", dto.MovimientoCuentaRequest{ClienteID: &cli, Tipo: model.CuentaDebito, Monto: dec("0"), Concepto: model.ConceptoCuentaAjuste, Descripcion: "ajuste"}, ErrValidacion, "monto"},
		{"tipo desconocido", dto.MovimientoCuentaRequest{ClienteID: &cli, Tipo: "haber", Monto: dec("1"), Concepto: model.ConceptoCuentaAjuste, Descripcion: "ajuste"}, ErrValidacion, "tipo"},
		{"concepto desconocido", dto.MovimientoCuentaRequest{ClienteID: &cli, Tipo: model.CuentaDebito, Monto: dec("1"), Concepto: "regalo", Descripcion: "ajuste"}, ErrValidacion, "concepto"},
		{"descripcion vacia", dto.MovimientoCuentaRequest{ClienteID: &cli, Tipo: model.CuentaDebito, Monto: dec("1"), Concepto: model.ConceptoCuentaAjuste, Descripcion: "  "}, ErrValidacion, "descripcion"},
		{"cliente inexistente", dto.MovimientoCuentaRequest{ClienteID: &otro, Tipo: model.CuentaDebito, Monto: dec("1"), Concepto: model.ConceptoCuentaAjuste, Descripcion: "ajuste"}, ErrNoEncontrado, ""},
		{"cheque inexistente", dto.MovimientoCuentaRequest{ClienteID: &cli, ChequeID: &otro, Tipo: model.CuentaCredito, Monto: dec("1"), Concepto: model.ConceptoCuentaCheque, Descripcion: "cheque"}, ErrNoEncontrado, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.cuentas.RegistrarMovimiento(ctx, e.op, tc.req)
			requireKind(t, err, tc.kind)
			if tc.campo != "" {
				assert.Contains(t, FieldsOf(err), tc.campo)
			}
		})
	}
}

func TestCuentaCorriente_OtroTenantNoVe(t *testing.T) {
	e := nuevoEntorno(t, nil, nil)
	op := e.op
	op.TenantID = "t2"
	_, err := e.cuentas.Saldo(context.Background(), op, model.EntidadCliente, e.cliente.ID)
	requireKind(t, err, ErrNoEncontrado)
}

func TestCuentaCorriente_Historial(t *testing.T) {
	e := nuevoEntorno(t, nil, nil)
	ctx := context.Background()
	cli := e.cliente.ID.String()

	cheque := e.nuevoTercero(t, "777", "250")
	for _, m := range []struct {
		fecha, tipo, monto, concepto string
		cheque                       *string
	}{
		{"2024-03-01", model.CuentaDebito, "800", model.ConceptoCuentaVenta, nil},
		{"2024-03-02", model.CuentaDebito, "400", model.ConceptoCuentaVenta, nil},
		{"2024-03-03", model.CuentaCredito, "250", model.ConceptoCuentaCheque, &cheque.ID},
	} {
		e.movimientoCuenta(t, dto.MovimientoCuentaRequest{
			ClienteID: &cli, Tipo: m.tipo, Monto: dec(m.monto), Concepto: m.concepto,
			Descripcion: "movimiento " + m.fecha, Fecha: ptr(m.fecha), ChequeID: m.cheque,
		})
	}

	h, err := e.cuentas.Historial(ctx, e.op, model.EntidadCliente, e.cliente.ID, dto.Paginacion{})
	require.NoError(t, err)
	assert.Equal(t, "Obras Perez", h.Entidad.Nombre)
	assert.True(t, h.Saldo.Equal(dec("950")))
	assert.Equal(t, int64(3), h.Total)
	require.Len(t, h.Historial, 3)

	// Newest first with the balance right after each entry.
	assert.True(t, h.Historial[0].SaldoPosterior.Equal(dec("950")))
	assert.True(t, h.Historial[1].SaldoPosterior.Equal(dec("1200")))
	assert.True(t, h.Historial[2].SaldoPosterior.Equal(dec("800")))
	require.NotNil(t, h.Historial[0].Cheque)
	assert.Equal(t, "777", h.Historial[0].Cheque.Numero)

	require.NotNil(t, h.LimiteCredito)
	assert.False(t, h.ExcedeLimite)

	// Running balance does not depend on page boundaries.
	p2, err := e.cuentas.Historial(ctx, e.op, model.EntidadCliente, e.cliente.ID, dto.Paginacion{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, p2.Historial, 1)
	assert.True(t, p2.Historial[0].SaldoPosterior.Equal(dec("800")))
}

func TestCuentaCorriente_ExcedeLimite(t *testing.T) {
	e := nuevoEntorno(t, nil, nil)
	cli := e.cliente.ID.String()

	// The limit is advisory: the entry is accepted and flagged.
	e.movimientoCuenta(t, dto.MovimientoCuentaRequest{
		ClienteID: &cli, Tipo: model.CuentaDebito, Monto: dec("1500"),
		Concepto: model.ConceptoCuentaVenta, Descripcion: "pedido grande",
	})
	h, err := e.cuentas.Historial(context.Background(), e.op, model.EntidadCliente, e.cliente.ID, dto.Paginacion{})
	require.NoError(t, err)
	assert.True(t, h.ExcedeLimite)
}

func TestCuentaCorriente_EntidadDesconocida(t *testing.T) {
	e := nuevoEntorno(t, nil, nil)
	_, err := e.cuentas.Historial(context.Background(), e.op, "banco", uuid.New(), dto.Paginacion{})
	requireKind(t, err, ErrValidacion)
}

// requireSaldoCorrido checks that each row's balance is the next older row's
// balance plus the row's own signed amount, ending at zero.
func requireSaldoCorrido(t *testing.T, entidad string, saldo decimal.Decimal, rows []dto.MovimientoCuentaResponse) {
	t.Helper()
	require.NotEmpty(t, rows)
	require.True(t, rows[0].SaldoPosterior.Equal(saldo), "primera fila %s, saldo %s", rows[0].SaldoPosterior, saldo)
	aumenta := model.CuentaDebito
	if entidad == model.EntidadProveedor {
		aumenta = model.CuentaCredito
	}
	for i, r := range rows {
		signo := r.Monto
		if r.Tipo != aumenta {
			signo = signo.Neg()
		}
		anterior := decimal.Zero
		if i+1 < len(rows) {
			anterior = rows[i+1].SaldoPosterior
		}
		require.Truef(t, r.SaldoPosterior.Equal(anterior.Add(signo)),
			"fila %d: %s != %s + %s", i, r.SaldoPosterior, anterior, signo)
	}
}

func TestCuentaCorriente_ConcurrenciaIndependienteDelOrden(t *testing.T) {
	e := nuevoEntorno(t, nil, nil)
	ctx := context.Background()
	cli, prov := e.cliente.ID.String(), e.proveedor.ID.String()

	const n = 12
	var reqs []dto.MovimientoCuentaRequest
	esperadoCli, esperadoProv := decimal.Zero, decimal.Zero
	for i := 0; i < n; i++ {
		monto := decimal.NewFromInt(int64(10 * (i + 1))).Add(dec("0.25"))
		tipo := model.CuentaDebito
		if i%3 == 0 {
			tipo = model.CuentaCredito
		}
		desc := fmt.Sprintf("movimiento %d", i)
		reqs = append(reqs,
			dto.MovimientoCuentaRequest{ClienteID: &cli, Tipo: tipo, Monto: monto, Concepto: model.ConceptoCuentaAjuste, Descripcion: desc},
			dto.MovimientoCuentaRequest{ProveedorID: &prov, Tipo: tipo, Monto: monto, Concepto: model.ConceptoCuentaAjuste, Descripcion: desc},
		)
		if tipo == model.CuentaDebito {
			esperadoCli = esperadoCli.Add(monto)
			esperadoProv = esperadoProv.Sub(monto)
		} else {
			esperadoCli = esperadoCli.Sub(monto)
			esperadoProv = esperadoProv.Add(monto)
		}
	}
	rand.New(rand.NewSource(time.Now().UnixNano())).Shuffle(len(reqs), func(i, j int) {
		reqs[i], reqs[j] = reqs[j], reqs[i]
	})

	var wg sync.WaitGroup
	errs := make(chan error, len(reqs))
	for _, req := range reqs {
		wg.Add(1)
		go func(req dto.MovimientoCuentaRequest) {
			defer wg.Done()
			_, err := e.cuentas.RegistrarMovimiento(ctx, e.op, req)
			errs <- err
		}(req)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	for _, c := range []struct {
		entidad  string
		id       uuid.UUID
		esperado decimal.Decimal
	}{
		{model.EntidadCliente, e.cliente.ID, esperadoCli},
		{model.EntidadProveedor, e.proveedor.ID, esperadoProv},
	} {
		saldo, err := e.cuentas.Saldo(ctx, e.op, c.entidad, c.id)
		require.NoError(t, err)
		assert.Truef(t, saldo.Equal(c.esperado), "%s: %s != %s", c.entidad, saldo, c.esperado)

		h, err := e.cuentas.Historial(ctx, e.op, c.entidad, c.id, dto.Paginacion{Limit: 200})
		require.NoError(t, err)
		assert.Equal(t, int64(n), h.Total)
		require.Len(t, h.Historial, n)
		requireSaldoCorrido(t, c.entidad, c.esperado, h.Historial)
	}
}

func TestCuentaCorriente_HistorialEmpatesEntrePaginas(t *testing.T) {
	e := nuevoEntorno(t, nil, nil)
	ctx := context.Background()
	repo := repository.NewCuentaCorrienteRepository(e.db)

	// Same fecha and created_at on every row: only the id orders them.
	creado := hoy.Add(-time.Hour)
	for i, m := range []struct{ tipo, monto string }{
		{model.CuentaDebito, "100"},
		{model.CuentaCredito, "30"},
		{model.CuentaDebito, "45.50"},
		{model.CuentaCredito, "12"},
		{model.CuentaDebito, "7"},
	} {
		require.NoError(t, repo.Create(ctx, nil, &model.MovimientoCuentaCorriente{
			TenantID:    e.op.TenantID,
			ClienteID:   &e.cliente.ID,
			Tipo:        m.tipo,
			Monto:       dec(m.monto),
			Concepto:    model.ConceptoCuentaAjuste,
			Descripcion: fmt.Sprintf("empate %d", i),
			UsuarioID:   e.op.UsuarioID,
			Fecha:       hoy,
			CreatedAt:   creado,
		}))
	}

	todo, err := e.cuentas.Historial(ctx, e.op, model.EntidadCliente, e.cliente.ID, dto.Paginacion{Limit: 200})
	require.NoError(t, err)
	require.Len(t, todo.Historial, 5)
	requireSaldoCorrido(t, model.EntidadCliente, dec("110.50"), todo.Historial)

	for page := 1; page <= 5; page++ {
		p, err := e.cuentas.Historial(ctx, e.op, model.EntidadCliente, e.cliente.ID, dto.Paginacion{Page: page, Limit: 1})
		require.NoError(t, err)
		require.Len(t, p.Historial, 1)
		assert.Equal(t, todo.Historial[page-1].ID, p.Historial[0].ID, "pagina %d", page)
		assert.Truef(t, todo.Historial[page-1].SaldoPosterior.Equal(p.Historial[0].SaldoPosterior),
			"pagina %d: %s != %s", page, p.Historial[0].SaldoPosterior, todo.Historial[page-1].SaldoPosterior)
	}
}
