package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestKindOf(t *testing.T) {
	campos := errCampos(map[string]string{"monto": "debe ser mayor a cero"})

	assert.Equal(t, ErrValidacion, KindOf(campos))
	assert.Equal(t, ErrConflicto, KindOf(fmt.Errorf("capa: %w", errConflicto("x"))))
	assert.Nil(t, KindOf(errors.New("driver caido")))

	fallido := pagoFallido(campos)
	assert.Equal(t, ErrValidacion, KindOf(fallido), "a failed settlement reports its cause")
	assert.True(t, errors.Is(fallido, ErrPagoFallido))
	assert.True(t, errors.Is(fallido, ErrValidacion))
	assert.Equal(t, ErrPagoFallido, KindOf(pagoFallido(errors.New("io"))))
}

func TestDetailYFields(t *testing.T) {
	causa := &Error{Kind: ErrValidacion, Detail: "el cheque 12 ya fue usado en otro pago", Fields: map[string]string{"cheques_terceros[0]": "estado usado"}}
	err := pagoFallido(causa)

	assert.Equal(t, "el pago no se registro: el cheque 12 ya fue usado en otro pago", DetailOf(err))
	assert.Equal(t, map[string]string{"cheques_terceros[0]": "estado usado"}, FieldsOf(err))
	assert.Empty(t, DetailOf(errors.New("x")))
	assert.Nil(t, FieldsOf(errNoEncontrado("cheque no encontrado")))
	assert.Contains(t, err.Error(), "pago_fallido: el pago no se registro: validacion")
}

func TestRunTx_Timeout(t *testing.T) {
	db := testDB(t)
	err := runTx(context.Background(), db, 20*time.Millisecond, func(tx *gorm.DB) error {
		time.Sleep(50 * time.Millisecond)
		return tx.Exec("SELECT 1").Error
	})
	requireKind(t, err, ErrTimeout)
}

func TestRunTx_RollbackEnError(t *testing.T) {
	e := nuevoEntorno(t, nil, nil)
	boom := errors.New("boom")
	err := runTx(context.Background(), e.db, time.Second, func(tx *gorm.DB) error {
		require.NoError(t, tx.Exec("UPDATE proveedores SET razon_social = 'Otro' WHERE id = ?", e.proveedor.ID).Error)
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := e.entidades.FindProveedor(context.Background(), nil, "t1", e.proveedor.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hierros SA", p.RazonSocial)
}
