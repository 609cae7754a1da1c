// Package api defines the uniform response envelope every endpoint
// returns and the single place it is written to the wire.
package api

import (
	"encoding/json"
	"net/http"

	"guild-gateway/internal/common/errors"
)

// Status is the envelope status discriminator
type Status string

const (
	// StatusSuccess marks 2xx responses
	StatusSuccess Status = "Success"
	// StatusFail marks rejected requests that never produced a result
	StatusFail Status = "Fail"
	// StatusError marks failed requests
	StatusError Status = "Error"
)

// Envelope wraps every HTTP response body.
// ResponseCode and Status are kept consistent by the constructors:
// 2xx pairs with Success, everything else with Fail or Error.
type Envelope struct {
	ResponseCode int         `json:"responseCode"`
	Status       Status      `json:"status"`
	Data         interface{} `json:"data,omitempty"`
	Message      string      `json:"message,omitempty"`
}

// Success builds a 200 envelope around a payload
func Success(data interface{}) Envelope {
	return Envelope{
		ResponseCode: http.StatusOK,
		Status:       StatusSuccess,
		Data:         data,
	}
}

// Failure builds an error envelope with an explicit status code
func Failure(code int, message string) Envelope {
	return Envelope{
		ResponseCode: code,
		Status:       StatusError,
		Message:      message,
	}
}

// FromError translates any pipeline error into an envelope using the
// error's suggested HTTP status and client-facing message.
func FromError(err error) Envelope {
	return Failure(errors.HTTPStatus(err), errors.ClientMessage(err))
}

// Write serializes the envelope as JSON exactly once
func Write(w http.ResponseWriter, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.ResponseCode)
	_ = json.NewEncoder(w).Encode(env)
}

// WriteSuccess writes a 200 Success envelope around data
func WriteSuccess(w http.ResponseWriter, data interface{}) {
	Write(w, Success(data))
}

// WriteError translates err and writes the resulting envelope
func WriteError(w http.ResponseWriter, err error) {
	Write(w, FromError(err))
}

// NotFound is the handler for unmatched routes
func NotFound(w http.ResponseWriter, r *http.Request) {
	Write(w, Failure(http.StatusNotFound, "Route not found"))
}
