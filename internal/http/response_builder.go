// Package http provides HTTP server and handler implementations.
//
// This file implements a fluent builder for JSON responses so handlers
// share one error envelope and header policy.

package http

import (
	"encoding/json"
	"net/http"

	"moneytracker/internal/services"
)

// ErrorBody is the envelope for every non-2xx response.
type ErrorBody struct {
	Error   string `json:"error"`
	Outcome string `json:"outcome,omitempty"`
}

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
	raw        []byte
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets a value to be encoded as JSON.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Attachment sends data as a downloadable file instead of a JSON value.
func (b *JSONResponseBuilder) Attachment(name string, data []byte) *JSONResponseBuilder {
	b.headers["Content-Disposition"] = `attachment; filename="` + name + `"`
	b.raw = data
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if b.raw != nil {
		w.WriteHeader(b.statusCode)
		_, _ = w.Write(b.raw)
		return
	}

	data, err := json.Marshal(b.body)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"encode response"}`))
		return
	}
	w.WriteHeader(b.statusCode)
	if b.body != nil {
		_, _ = w.Write(data)
	}
}

// ErrorResponse creates a standard error response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(ErrorBody{Error: message})
}

// OutcomeError creates an error response tagged with the mutation outcome.
func OutcomeError(outcome services.Outcome, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(StatusForOutcome(outcome, false)).
		Body(ErrorBody{Error: message, Outcome: outcome.String()})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// StatusForOutcome maps a mutation outcome to an HTTP status. created
// selects 201 for applied inserts.
func StatusForOutcome(o services.Outcome, created bool) int {
	switch o {
	case services.Applied:
		if created {
			return http.StatusCreated
		}
		return http.StatusOK
	case services.Rejected:
		return http.StatusUnprocessableEntity
	case services.NotFound:
		return http.StatusNotFound
	case services.Cancelled:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
