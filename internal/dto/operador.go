package dto

import "github.com/google/uuid"

// Operador is the acting operator, built by the handler from the JWT claims
// and passed explicitly to every treasury operation.
type Operador struct {
	UsuarioID    uuid.UUID
	PuntoDeVenta int
	TenantID     string
	Rol          string
}

// Paginacion is the common page/limit query.
type Paginacion struct {
	Page  int `form:"page"  validate:"omitempty,min=1"`
	Limit int `form:"limit" validate:"omitempty,min=1,max=200"`
}

// Normalizar fills defaults and returns the row offset.
func (p *Paginacion) Normalizar() int {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 50
	}
	return (p.Page - 1) * p.Limit
}
