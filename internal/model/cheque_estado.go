package model

import "time"

// transicionesTercero and transicionesPropio are the guarded state machines.
// pendiente → usado is deliberately absent: it is only reachable through a settlement.
var (
	transicionesTercero = map[string][]string{
		ChequePendiente:  {ChequeDepositado, ChequeRechazado},
		ChequeDepositado: {ChequeCobrado, ChequeRechazado},
		ChequeRechazado:  {ChequePendiente},
	}
	transicionesPropio = map[string][]string{
		ChequePendiente: {ChequeCobrado, ChequeAnulado},
	}
)

// TransicionPermitida reports whether tipo allows desde → hacia through the guarded path.
func TransicionPermitida(tipo, desde, hacia string) bool {
	tabla := transicionesTercero
	if tipo == ChequePropio {
		tabla = transicionesPropio
	}
	for _, e := range tabla[desde] {
		if e == hacia {
			return true
		}
	}
	return false
}

// EstadoValido reports whether estado is one of the enumerated values.
func EstadoValido(estado string) bool {
	for _, e := range EstadosCheque {
		if e == estado {
			return true
		}
	}
	return false
}

// Vencido: payment date already passed and the check has not reached a successful end.
func Vencido(c *Cheque, hoy time.Time) bool {
	switch c.Estado {
	case ChequeCobrado, ChequeUsado, ChequeAnulado:
		return false
	}
	return truncDay(c.FechaPago).Before(truncDay(hoy))
}

// VencidoLegal: still outstanding after the post-maturity deposit window.
func VencidoLegal(c *Cheque, hoy time.Time, plazoDias int) bool {
	switch c.Estado {
	case ChequeCobrado, ChequeRechazado, ChequeAnulado:
		return false
	}
	limite := truncDay(c.FechaPago).AddDate(0, 0, plazoDias)
	return truncDay(hoy).After(limite)
}

func truncDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
