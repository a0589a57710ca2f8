package dto

// EntidadResumen identifies the client or provider owning a current account.
type EntidadResumen struct {
	ID     string  `json:"id"`
	Tipo   string  `json:"tipo"` // cliente | proveedor
	Nombre string  `json:"nombre"`
	CUIT   *string `json:"cuit,omitempty"`
	Email  *string `json:"email,omitempty"`
}
