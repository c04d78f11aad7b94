package types

// Envelope is the single JSON shape every endpoint answers with.
type Envelope struct {
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
	Count   *int      `json:"count,omitempty"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}
