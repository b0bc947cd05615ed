package dto

// ErrorResponse cuerpo de error HTTP. Details lleva los motivos del ledger o los campos inválidos.
type ErrorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}
