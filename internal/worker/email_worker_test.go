package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"corralon/internal/dto"
	"corralon/internal/infra"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envio struct{ to, subject, body string }

type fakeSender struct {
	enviados []envio
	err      error
}

func (f *fakeSender) Send(to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.enviados = append(f.enviados, envio{to, subject, body})
	return nil
}

func raw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestEmailWorker_Handlers(t *testing.T) {
	h := NewEmailWorker(&fakeSender{}).Handlers()
	assert.Contains(t, h, JobEmail)
	assert.Contains(t, h, JobPagoRegistrado)
}

func TestProcessEmail(t *testing.T) {
	s := &fakeSender{}
	w := NewEmailWorker(s)
	ctx := context.Background()

	require.NoError(t, w.ProcessEmail(ctx, raw(t, EmailJobPayload{ToEmail: "tesoreria@corralon.test", Subject: "Aviso", Body: "hola"})))
	require.Len(t, s.enviados, 1)
	assert.Equal(t, "tesoreria@corralon.test", s.enviados[0].to)

	// Dropped without retry.
	require.NoError(t, w.ProcessEmail(ctx, json.RawMessage(`{nope`)))
	require.NoError(t, w.ProcessEmail(ctx, raw(t, EmailJobPayload{Subject: "sin destino"})))
	assert.Len(t, s.enviados, 1)
}

func TestProcessEmail_ErroresDeEnvio(t *testing.T) {
	ctx := context.Background()
	payload := raw(t, EmailJobPayload{ToEmail: "a@b.test", Subject: "x", Body: "y"})

	caido := NewEmailWorker(&fakeSender{err: errors.New("dial tcp: timeout")})
	assert.Error(t, caido.ProcessEmail(ctx, payload), "transport errors are retried")

	abierto := NewEmailWorker(&fakeSender{err: infra.ErrCircuitOpen})
	assert.ErrorIs(t, abierto.ProcessEmail(ctx, payload), infra.ErrCircuitOpen)

	deshabilitado := NewEmailWorker(&fakeSender{err: infra.ErrMailerDisabled})
	assert.NoError(t, deshabilitado.ProcessEmail(ctx, payload))
}

func TestProcessPagoRegistrado(t *testing.T) {
	s := &fakeSender{}
	w := NewEmailWorker(s)
	ctx := context.Background()
	email := "pagos@proveedor.test"

	evt := dto.PagoRegistradoEvento{
		PagoID:   "5f0c7d2e-0000-4000-8000-000000000001",
		TenantID: "t1",
		Entidad:  dto.EntidadResumen{Tipo: "proveedor", Nombre: "Hierros SA", Email: &email},
		Fecha:    "2024-03-10",
		Total:    decimal.RequireFromString("800"),
		Detalle:  "Pago 5f0c7d2e: efectivo 500.00, 1 cheque(s) de terceros",
	}
	require.NoError(t, w.ProcessPagoRegistrado(ctx, raw(t, evt)))
	require.Len(t, s.enviados, 1)
	assert.Equal(t, email, s.enviados[0].to)
	assert.Equal(t, "Comprobante de pago 2024-03-10", s.enviados[0].subject)
	assert.Contains(t, s.enviados[0].body, "Hola Hierros SA")
	assert.Contains(t, s.enviados[0].body, "$800.00")
	assert.Contains(t, s.enviados[0].body, evt.PagoID)

	evt.Entidad.Email = nil
	require.NoError(t, w.ProcessPagoRegistrado(ctx, raw(t, evt)))
	assert.Len(t, s.enviados, 1, "no address on file, nothing sent")
}
