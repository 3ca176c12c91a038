package models

// ErrorResponse is the JSON error body. Error is a stable,
// machine-checkable kind; Message is for humans; Details is optional
// context for acting on the failure.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}
