package service

import (
	"strings"
	"time"

	"corralon/internal/dto"

	"github.com/google/uuid"
)

// Opciones carries the tunables every treasury service shares.
type Opciones struct {
	TxTimeout      time.Duration
	PlazoLegalDias int
	// Ahora is the clock; nil means time.Now.
	Ahora func() time.Time
}

func (o Opciones) ahora() time.Time {
	if o.Ahora != nil {
		return o.Ahora().UTC()
	}
	return time.Now().UTC()
}

func (o Opciones) plazoLegal() int {
	if o.PlazoLegalDias <= 0 {
		return 30
	}
	return o.PlazoLegalDias
}

const layoutFecha = "2006-01-02"

// parseFecha parses a calendar day as UTC midnight.
func parseFecha(campo, s string) (time.Time, error) {
	t, err := time.ParseInLocation(layoutFecha, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, errCampos(map[string]string{campo: "fecha invalida, formato AAAA-MM-DD"})
	}
	return t, nil
}

func parseUUID(campo, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, errCampos(map[string]string{campo: "uuid invalido"})
	}
	return id, nil
}

func parseUUIDOpt(campo string, s *string) (*uuid.UUID, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	id, err := parseUUID(campo, *s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// resolverPDV returns the requested punto de venta, or the operator's own.
func resolverPDV(op dto.Operador, pdv int) (int, error) {
	if pdv == 0 {
		pdv = op.PuntoDeVenta
	}
	if pdv < 1 {
		return 0, errCampos(map[string]string{"punto_de_venta": "requerido"})
	}
	return pdv, nil
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func formatTS(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func formatFecha(t time.Time) string { return t.UTC().Format(layoutFecha) }

func idStr(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func truncDia(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
