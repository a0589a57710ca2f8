package service

import (
	"context"
	"sync"
	"testing"

	"corralon/internal/dto"
	"corralon/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrearCheque_Tercero(t *testing.T) {
	e := nuevoEntorno(t, nil, nil)
	c := e.nuevoTercero(t, "0001", "1500.50")

	assert.Equal(t, model.ChequePendiente, c.Estado)
	assert.Equal(t, model.ChequeTercero, c.Tipo)
	assert.True(t, c.Monto.Equal(dec("1500.50")))
	assert.Equal(t, "2024-04-01", c.FechaPago)
	assert.False(t, c.Vencido)
	require.Len(t, c.Eventos, 1)
	assert.Equal(t, model.ViaAlta, c.Eventos[0].Via)
	assert.Nil(t, c.Eventos[0].EstadoAnterior)
}

func TestCrearCheque_PropioConProveedor(t *testing.T) {
	e := nuevoEntorno(t, nil, nil)
	prov := e.proveedor.ID.String()
	c, err := e.cheques.Crear(context.Background(), e.op, dto.ChequeRequest{
		Tipo: model.ChequePropio, Banco: "Galicia", Numero: "9", Monto: dec("200"),
		FechaEmision: "2024-03-01", FechaPago: "2024-03-05", ProveedorID: &prov,
	})
	require.NoError(t, err)
	require.NotNil(t, c.ProveedorNombre)
	assert.Equal(t, "Hierros SA", *c.ProveedorNombre)
	assert.True(t, c.Vencido, "payment date before today")
	assert.False(t, c.VencidoLegal)
}

func TestCrearCheque_Validaciones(t *testing.T) {
	e := nuevoEntorno(t, nil, nil)
	ctx := context.Background()
	prov := e.proveedor.ID.String()

	casos := []struct {
		nombre string
		req    dto.ChequeRequest
		campo  string
	}{
		{"propio con proveedor y destinatario", dto.ChequeRequest{
			Tipo: model.ChequePropio, Banco: "Galicia", Numero: "1", Monto: dec("10"),
			FechaEmision: "2024-03-01", FechaPago: "2024-03-02", ProveedorID: &prov, Destinatario: ptr("Otro"),
		}, "destinatario"},
		{"tercero sin librador", dto.ChequeRequest{
			Tipo: model.ChequeTercero, Banco: "Galicia", Numero: "1", Monto: dec("10"),
			FechaEmision: "2024-03-01", FechaPago: "2024-03-02",
		}, "librador"},
		{"pago antes de emision", dto.ChequeRequest{
			Tipo: model.ChequeTercero, Banco: "Galicia", Numero: "1", Monto: dec("10"),
			FechaEmision: "2024-03-05", FechaPago: "2024-03-02", Librador: ptr("X"),
		}, "fecha_pago"},
		{"monto cero", dto.ChequeRequest{
			Tipo: model.ChequeTercero, Banco: "Galicia", Numero: "1", Monto: dec("0"),
			FechaEmision: "2024-03-01", FechaPago: "2024-03-02", Librador: ptr("X"),
		}, "monto"},
		{"tipo desconocido", dto.ChequeRequest{
			Tipo: "diferido", Banco: "Galicia", Numero: "1", Monto: dec("10"),
			FechaEmision: "2024-03-01", FechaPago: "2024-03-02",
		}, "tipo"},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			_, err := e.cheques.Crear(ctx, e.op, c.req)
			requireKind(t, err, ErrValidacion)
			assert.Contains(t, FieldsOf(err), c.campo)
		})
	}
}

func TestCrearCheque_ProveedorInexistente(t *testing.T) {
	e := nuevoEntorno(t, nil, nil)
	otro := uuid.NewString()
	_, err := e.cheques.Crear(context.Background(), e.op, dto.ChequeRequest{
		Tipo: model.ChequePropio, Banco: "Galicia", Numero: "1", Monto: dec("10"),
		FechaEmision: "2024-03-01", FechaPago: "2024-03-02", ProveedorID: &otro,
	})
	requireKind(t, err, ErrNoEncontrado)
}

func TestCrearCheque_NumeroDuplicado(t *testing.T) {
	e := nuevoEntorno(t, nil, nil)
	ctx := context.Background()
	primero := e.nuevoTercero(t, "0042", "100")

	_, err := e.cheques.Crear(ctx, e.op, dto.ChequeRequest{
		Tipo: model.ChequeTercero, Banco: "Banco Nacion", Numero: "0042", Monto: dec("50"),
		FechaEmision: "2024-03-01", FechaPago: "2024-03-02", Librador: ptr("Otro"),
	})
	requireKind(t, err, ErrValidacion)
	assert.Equal(t, "duplicado", FieldsOf(err)["numero"])

	// Same number on another bank is a different check.
	_, err = e.cheques.Crear(ctx, e.op, dto.ChequeRequest{
		Tipo: model.ChequeTercero, Banco: "Santander", Numero: "0042", Monto: dec("50"),
		FechaEmision: "2024-03-01", FechaPago: "2024-03-02", Librador: ptr("Otro"),
	})
	require.NoError(t, err)

	// Another tenant does not collide either.
	otroTenant := e.op
	otroTenant.TenantID = "t2"
	_, err = e.cheques.Crear(ctx, otroTenant, dto.ChequeRequest{
		Tipo: model.ChequeTercero, Banco: "Banco Nacion", Numero: "0042", Monto: dec("50"),
		FechaEmision: "2024-03-01", FechaPago: "2024-03-02", Librador: ptr("Otro"),
	})
	require.NoError(t, err)

	// Soft-deleted checks free their number; restoring then conflicts.
	id := uuid.MustParse(primero.ID)
	require.NoError(t, e.cheques.Eliminar(ctx, e.op, id))
	e.nuevoTercero(t, "0042", "75")

	_, err = e.cheques.Restaurar(ctx, e.op, id)
	requireKind(t, err, ErrConflicto)
}

func TestTransicionar_Tercero(t *testing.T) {
	e := nuevoEntorno(t, nil, nil)
	ctx := context.Background()
	id := uuid.MustParse(e.nuevoTercero(t, "100", "300").ID)

	c, err := e.cheques.Transicionar(ctx, e.op, id, model.ChequeDepositado)
	require.NoError(t, err)
	assert.Equal(t, model.ChequeDepositado, c.Estado)

	c, err = e.cheques.Transicionar(ctx, e.op, id, model.ChequeCobrado)
	require.NoError(t, err)
	assert.Equal(t, model.ChequeCobrado, c.Estado)
	require.Len(t, c.Eventos, 3)
	assert.Equal(t, model.ViaTransicion, c.Eventos[2].Via)
	require.NotNil(t, c.Eventos[2].EstadoAnterior)
	assert.Equal(t, model.ChequeDepositado, *c.Eventos[2].EstadoAnterior)

	_, err = e.cheques.Transicionar(ctx, e.op, id, model.ChequePendiente)
	requireKind(t, err, ErrTransicionInvalida)
}

func TestTransicionar_UsadoSoloPorPago(t *testing.T) {
	e := nuevoEntorno(t, nil, nil)
	id := uuid.MustParse(e.nuevoTercero(t, "100", "300").ID)

	_, err := e.cheques.Transicionar(context.Background(), e.op, id, model.ChequeUsado)
	requireKind(t, err, ErrTransicionInvalida)
}

func TestTransicionar_RechazadoVuelveAPendiente(t *testing.T) {
	e := nuevoEntorno(t, nil, nil)
	ctx := context.Background()
	id := uuid.MustParse(e.nuevoTercero(t, "100", "300").ID)

	_, err := e.cheques.Transicionar(ctx, e.op, id, model.ChequeRechazado)
	require.NoError(t, err)
	c, err := e.cheques.Transicionar(ctx, e.op, id, model.ChequePendiente)
	require.NoError(t, err)
	assert.Equal(t, model.ChequePendiente, c.Estado)
}

func TestTransicionar_NoEncontrado(t *testing.T) {
	e := nuevoEntorno(t, nil, nil)
	_, err := e.cheques.Transicionar(context.Background(), e.op, uuid.New(), model.ChequeDepositado)
	requireKind(t, err, ErrNoEncontrado)
}

func TestConsumirTercero_CarreraUnSoloGanador(t *testing.T) {
	e := nuevoEntorno(t, nil, nil)
	id := uuid.MustParse(e.nuevoTercero(t, "777", "900").ID)

	const n = 2
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.cheques.ConsumirTercero(context.Background(), e.op, id)
		}(i)
	}
	wg.Wait()

	ganadores := 0
	for _, err := range errs {
		if err == nil {
			ganadores++
			continue
		}
		requireKind(t, err, ErrConflicto)
	}
	assert.Equal(t, 1, ganadores)

	c, err := e.cheques.ObtenerPorID(context.Background(), e.op, id)
	require.NoError(t, err)
	assert.Equal(t, model.ChequeUsado, c.Estado)
}

func TestConsumirTercero_PropioRechazado(t *testing.T) {
	e := nuevoEntorno(t, nil, nil)
	c, err := e.cheques.Crear(context.Background(), e.op, dto.ChequeRequest{
		Tipo: model.ChequePropio, Banco: "Galicia", Numero: "5", Monto: dec("10"),
		FechaEmision: "2024-03-01", FechaPago: "2024-03-20", Destinatario: ptr("Fletes"),
	})
	require.NoError(t, err)

	_, err = e.cheques.ConsumirTercero(context.Background(), e.op, uuid.MustParse(c.ID))
	requireKind(t, err, ErrValidacion)
}

func TestForzarEstado(t *testing.T) {
	e := nuevoEntorno(t, nil, nil)
	ctx := context.Background()
	id := uuid.MustParse(e.nuevoTercero(t, "55", "10").ID)
	_, err := e.cheques.Transicionar(ctx, e.op, id, model.ChequeDepositado)
	require.NoError(t, err)
	_, err = e.cheques.Transicionar(ctx, e.op, id, model.ChequeCobrado)
	require.NoError(t, err)

	_, err = e.cheques.ForzarEstado(ctx, e.op, id, dto.CorreccionChequeRequest{Estado: model.ChequePendiente})
	requireKind(t, err, ErrValidacion)
	assert.Contains(t, FieldsOf(err), "motivo")

	c, err := e.cheques.ForzarEstado(ctx, e.op, id, dto.CorreccionChequeRequest{
		Estado: model.ChequePendiente, Motivo: "cobro registrado por error",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ChequePendiente, c.Estado)
	ultimo := c.Eventos[len(c.Eventos)-1]
	assert.Equal(t, model.ViaCorreccion, ultimo.Via)
	require.NotNil(t, ultimo.Motivo)
	assert.Equal(t, "cobro registrado por error", *ultimo.Motivo)
	assert.Equal(t, model.ChequeCobrado, *ultimo.EstadoAnterior)
}

func TestActualizar_MontoCongeladoPorPago(t *testing.T) {
	e := nuevoEntorno(t, nil, nil)
	ctx := context.Background()
	c := e.nuevoTercero(t, "31", "400")
	id := uuid.MustParse(c.ID)

	_, err := e.pagos.Registrar(ctx, e.op, dto.RegistrarPagoRequest{
		ProveedorID:     ptr(e.proveedor.ID.String()),
		ChequesTerceros: []string{c.ID},
	}, "")
	require.NoError(t, err)

	req := dto.ChequeRequest{
		Tipo: model.ChequeTercero, Banco: "Banco Nacion", Numero: "31", Monto: dec("999"),
		FechaEmision: "2024-03-01", FechaPago: "2024-04-01", Librador: ptr("Juan Gomez"),
	}
	_, err = e.cheques.Actualizar(ctx, e.op, id, req)
	requireKind(t, err, ErrPrecondicion)

	req.Monto = dec("400")
	req.Observacion = ptr("endosado")
	upd, err := e.cheques.Actualizar(ctx, e.op, id, req)
	require.NoError(t, err)
	require.NotNil(t, upd.Observacion)
	assert.Equal(t, "endosado", *upd.Observacion)
	assert.Equal(t, model.ChequeUsado, upd.Estado)
}

func TestEliminarRestaurarPurgar(t *testing.T) {
	e := nuevoEntorno(t, nil, nil)
	ctx := context.Background()
	id := uuid.MustParse(e.nuevoTercero(t, "88", "10").ID)

	err := e.cheques.Purgar(ctx, e.op, id)
	requireKind(t, err, ErrPrecondicion)

	require.NoError(t, e.cheques.Eliminar(ctx, e.op, id))

	lista, err := e.cheques.Listar(ctx, e.op, dto.ChequeFiltro{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), lista.Total)
	lista, err = e.cheques.Listar(ctx, e.op, dto.ChequeFiltro{IncluirEliminados: true})
	require.NoError(t, err)
	require.Equal(t, int64(1), lista.Total)
	assert.True(t, lista.Data[0].Eliminado)

	_, err = e.cheques.Transicionar(ctx, e.op, id, model.ChequeDepositado)
	requireKind(t, err, ErrNoEncontrado)

	restaurado, err := e.cheques.Restaurar(ctx, e.op, id)
	require.NoError(t, err)
	assert.False(t, restaurado.Eliminado)

	require.NoError(t, e.cheques.Eliminar(ctx, e.op, id))
	require.NoError(t, e.cheques.Purgar(ctx, e.op, id))
	_, err = e.cheques.ObtenerPorID(ctx, e.op, id)
	requireKind(t, err, ErrNoEncontrado)
}

func TestPurgar_ReferenciadoPorCuentaCorriente(t *testing.T) {
	e := nuevoEntorno(t, nil, nil)
	ctx := context.Background()
	c := e.nuevoTercero(t, "91", "10")
	id := uuid.MustParse(c.ID)

	_, err := e.cuentas.RegistrarMovimiento(ctx, e.op, dto.MovimientoCuentaRequest{
		ClienteID: ptr(e.cliente.ID.String()), Tipo: model.CuentaCredito, Monto: dec("10"),
		Concepto: model.ConceptoCuentaCheque, Descripcion: "cheque recibido", ChequeID: &c.ID,
	})
	require.NoError(t, err)

	require.NoError(t, e.cheques.Eliminar(ctx, e.op, id))
	err = e.cheques.Purgar(ctx, e.op, id)
	requireKind(t, err, ErrPrecondicion)
}

func TestListar_Filtros(t *testing.T) {
	e := nuevoEntorno(t, nil, nil)
	ctx := context.Background()
	e.nuevoTercero(t, "A-1", "10")
	e.nuevoTercero(t, "A-2", "20")
	b := e.nuevoTercero(t, "B-1", "30")
	_, err := e.cheques.Transicionar(ctx, e.op, uuid.MustParse(b.ID), model.ChequeDepositado)
	require.NoError(t, err)

	lista, err := e.cheques.Listar(ctx, e.op, dto.ChequeFiltro{Q: "a-"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), lista.Total)

	lista, err = e.cheques.Listar(ctx, e.op, dto.ChequeFiltro{Estado: model.ChequeDepositado})
	require.NoError(t, err)
	require.Equal(t, int64(1), lista.Total)
	assert.Equal(t, "B-1", lista.Data[0].Numero)

	lista, err = e.cheques.Listar(ctx, e.op, dto.ChequeFiltro{Desde: "2024-04-01", Hasta: "2024-04-01"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), lista.Total, "hasta is inclusive")

	lista, err = e.cheques.Listar(ctx, e.op, dto.ChequeFiltro{Paginacion: dto.Paginacion{Page: 2, Limit: 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), lista.Total)
	assert.Len(t, lista.Data, 1)
}

func TestPorVencer(t *testing.T) {
	e := nuevoEntorno(t, nil, nil)
	ctx := context.Background()
	crear := func(numero, fechaPago string) {
		_, err := e.cheques.Crear(ctx, e.op, dto.ChequeRequest{
			Tipo: model.ChequePropio, Banco: "Galicia", Numero: numero, Monto: dec("10"),
			FechaEmision: "2024-03-01", FechaPago: fechaPago, Destinatario: ptr("Fletes"),
		})
		require.NoError(t, err)
	}
	crear("1", "2024-03-09") // already matured
	crear("2", "2024-03-10")
	crear("3", "2024-03-13")
	crear("4", "2024-03-14")
	e.nuevoTercero(t, "T", "10")

	cheques, err := e.cheques.PorVencer(ctx, "t1", 3)
	require.NoError(t, err)
	require.Len(t, cheques, 2)
	assert.Equal(t, "2", cheques[0].Numero)
	assert.Equal(t, "3", cheques[1].Numero)
}
