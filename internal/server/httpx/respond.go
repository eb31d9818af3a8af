// Package httpx holds the JSON envelope helpers shared by all HTTP handlers.
// Every response has the shape {"status":"ok","data":...} or
// {"status":"error","error":{"code","message","fields"?}}.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// Error codes used across the API.
const (
	CodeInvalidCredentials  = "invalid_credentials"
	CodeUnauthorized        = "unauthorized"
	CodeInvalidToken        = "invalid_token"
	CodeForbidden           = "forbidden"
	CodeValidationFailed    = "validation_failed"
	CodeNotFound            = "not_found"
	CodeUserExists          = "user_exists"
	CodeAlreadyFavorited    = "already_favorited"
	CodeAlreadyReported     = "already_reported"
	CodeInternalServerError = "internal_server_error"
)

type envelope struct {
	Status string     `json:"status"`
	Data   any        `json:"data,omitempty"`
	Error  *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// OK writes a success envelope with the given status code and data.
func OK(w http.ResponseWriter, status int, data any) {
	write(w, status, envelope{Status: "ok", Data: data})
}

// Error writes an error envelope with the given status code, error code, and message.
func Error(w http.ResponseWriter, status int, code, message string) {
	write(w, status, envelope{Status: "error", Error: &errorBody{Code: code, Message: message}})
}

// ErrorFields writes an error envelope carrying per-field validation messages.
func ErrorFields(w http.ResponseWriter, status int, code, message string, fields map[string]string) {
	write(w, status, envelope{Status: "error", Error: &errorBody{Code: code, Message: message, Fields: fields}})
}

// Internal writes the generic 500 envelope. The underlying error goes to the
// caller's log, never to the client.
func Internal(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, CodeInternalServerError, message)
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// ErrEmptyBody is returned by DecodeJSON when the request has no body.
var ErrEmptyBody = errors.New("request body is empty")

// DecodeJSON decodes the request body into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}
	return nil
}
