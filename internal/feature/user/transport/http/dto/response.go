package dto

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse carries a human-readable success message.
type MessageResponse struct {
	Message string `json:"message"`
}
