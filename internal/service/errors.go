package service

import (
	"errors"
	"fmt"
	"strings"
)

// Kinds of treasury failure. Every error returned by a service wraps exactly
// one of these, so callers branch with errors.Is.
var (
	ErrValidacion         = errors.New("validacion")
	ErrNoEncontrado       = errors.New("no_encontrado")
	ErrTransicionInvalida = errors.New("transicion_invalida")
	ErrConflicto          = errors.New("conflicto")
	ErrPrecondicion       = errors.New("precondicion")
	ErrPagoFallido        = errors.New("pago_fallido")
	ErrTimeout            = errors.New("timeout")
)

// Error is the concrete service error. Detail is safe to show to users.
type Error struct {
	Kind   error
	Detail string
	Fields map[string]string
	Cause  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func newErr(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func errValidacion(format string, args ...any) *Error {
	return newErr(ErrValidacion, format, args...)
}

func errCampos(fields map[string]string) *Error {
	return &Error{Kind: ErrValidacion, Detail: "datos invalidos", Fields: fields}
}

func errNoEncontrado(format string, args ...any) *Error {
	return newErr(ErrNoEncontrado, format, args...)
}

func errConflicto(format string, args ...any) *Error {
	return newErr(ErrConflicto, format, args...)
}

func errPrecondicion(format string, args ...any) *Error {
	return newErr(ErrPrecondicion, format, args...)
}

func errTransicion(tipo, desde, hacia string) *Error {
	return newErr(ErrTransicionInvalida, "cheque %s: %s → %s no permitido", tipo, desde, hacia)
}

// pagoFallido wraps a failure raised inside the settlement transaction.
func pagoFallido(cause error) *Error {
	return &Error{Kind: ErrPagoFallido, Detail: "el pago no se registro", Cause: cause}
}

// KindOf returns the innermost kind of err. For a failed settlement it is the
// kind of the wrapped cause, so KindOf(pagoFallido(x)) == KindOf(x).
func KindOf(err error) error {
	var se *Error
	if !errors.As(err, &se) {
		return nil
	}
	if se.Kind == ErrPagoFallido && se.Cause != nil {
		if k := KindOf(se.Cause); k != nil {
			return k
		}
	}
	return se.Kind
}

// DetailOf returns the user-facing message of err, or "" when it is not a service error.
func DetailOf(err error) string {
	var se *Error
	if !errors.As(err, &se) {
		return ""
	}
	if se.Kind == ErrPagoFallido && se.Cause != nil {
		if d := DetailOf(se.Cause); d != "" {
			return se.Detail + ": " + d
		}
	}
	return se.Detail
}

// FieldsOf returns per-field validation messages attached to err, if any.
func FieldsOf(err error) map[string]string {
	var se *Error
	for errors.As(err, &se) {
		if len(se.Fields) > 0 {
			return se.Fields
		}
		if se.Cause == nil {
			return nil
		}
		err = se.Cause
	}
	return nil
}
