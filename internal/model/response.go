package model

// ErrorResponse defines error response structure.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ValidationErrorResponse is returned when an invitation fails validation.
// Base errors describe the invitation as a whole; field errors are keyed by field name.
type ValidationErrorResponse struct {
	Code   string              `json:"code"`
	Base   []string            `json:"base"`
	Fields map[string][]string `json:"fields"`
}

// ListResponse wraps a page of results.
type ListResponse[T any] struct {
	Data   []T `json:"data"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
