// Package apierror provides the error envelope returned by every 4xx/5xx
// response. Internal details (driver errors, stack traces) never reach it.
package apierror

// APIError is the canonical error body. Code is a stable machine-readable
// reason so the UI can explain a rejection; CauseCode is set when a failed
// settlement wraps a more specific reason.
type APIError struct {
	Detail    string            `json:"detail"`
	Code      string            `json:"code,omitempty"`
	CauseCode string            `json:"cause_code,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// NewValidation wraps per-field validator failures.
func NewValidation(fields map[string]string) *APIError {
	return &APIError{Detail: "Error de validacion", Code: "validacion", Fields: fields}
}
