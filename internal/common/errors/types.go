// Package errors defines the tagged application error used across the
// gateway. Every error carries a kind, a client-facing message, and a
// suggested HTTP status so a single translation point can turn any
// pipeline failure into a response envelope.
package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// Kind discriminates application errors
type Kind string

const (
	// KindGuild covers a missing guild id or an unresolvable guild
	KindGuild Kind = "guild"
	// KindUserID covers a member id missing from the request
	KindUserID Kind = "user_id"
	// KindUser covers an unresolvable member or a member in the wrong state
	KindUser Kind = "user"
	// KindChannel covers a missing channel id or an unresolvable channel
	KindChannel Kind = "channel"
	// KindChannelTextBased covers voice operations on a non-voice channel
	KindChannelTextBased Kind = "channel_text_based"
	// KindAuth represents authentication errors
	KindAuth Kind = "authentication"
	// KindRateLimit represents rate limit errors
	KindRateLimit Kind = "rate_limit"
	// KindConnection represents connection-related errors
	KindConnection Kind = "connection"
	// KindTimeout represents timeout errors
	KindTimeout Kind = "timeout"
	// KindInternal represents internal system errors
	KindInternal Kind = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Kind    Kind                   `json:"kind"`
	Message string                 `json:"message"`
	Status  int                    `json:"-"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	parts := []string{string(e.Kind), e.Message}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%v", e.Cause))
	}

	if len(e.Context) > 0 {
		contextParts := make([]string, 0, len(e.Context))
		for k, v := range e.Context {
			contextParts = append(contextParts, fmt.Sprintf("%s=%v", k, v))
		}
		parts = append(parts, fmt.Sprintf("context={%s}", strings.Join(contextParts, ", ")))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// GuildError creates an error for a missing or unresolvable guild
func GuildError() *AppError {
	return &AppError{
		Kind:    KindGuild,
		Message: "GuildError: guild id is missing or the guild could not be resolved",
		Status:  http.StatusBadRequest,
	}
}

// UserIDError creates an error for a member id missing from the request
func UserIDError() *AppError {
	return &AppError{
		Kind:    KindUserID,
		Message: "UsersIdError: member id is missing from the request",
		Status:  http.StatusBadRequest,
	}
}

// UserError creates an error for an unresolvable member
func UserError() *AppError {
	return &AppError{
		Kind:    KindUser,
		Message: "UsersError: member could not be resolved",
		Status:  http.StatusBadRequest,
	}
}

// UserNotInVoiceError creates an error for a member that is not connected to voice
func UserNotInVoiceError() *AppError {
	return &AppError{
		Kind:    KindUser,
		Message: "UsersError: member is not connected to a voice channel",
		Status:  http.StatusBadRequest,
	}
}

// ChannelError creates an error for a missing or unresolvable channel
func ChannelError() *AppError {
	return &AppError{
		Kind:    KindChannel,
		Message: "ChannelError: channel id is missing or the channel could not be resolved",
		Status:  http.StatusBadRequest,
	}
}

// ChannelIsTextBasedError creates an error for voice operations on a text channel
func ChannelIsTextBasedError() *AppError {
	return &AppError{
		Kind:    KindChannelTextBased,
		Message: "ChannelIsTextBasedError: the operation requires a voice channel",
		Status:  http.StatusBadRequest,
	}
}

// AuthError creates a new authentication error
func AuthError(msg string) *AppError {
	return &AppError{
		Kind:    KindAuth,
		Message: msg,
		Status:  http.StatusUnauthorized,
	}
}

// RateLimitError creates a new rate limit error
func RateLimitError(resource string) *AppError {
	return &AppError{
		Kind:    KindRateLimit,
		Message: fmt.Sprintf("rate limit exceeded for %s", resource),
		Status:  http.StatusTooManyRequests,
	}
}

// ConnectionError creates a new connection error
func ConnectionError(msg string, cause error) *AppError {
	return &AppError{
		Kind:    KindConnection,
		Message: msg,
		Status:  http.StatusInternalServerError,
		Cause:   cause,
	}
}

// TimeoutError creates a new timeout error
func TimeoutError(operation string) *AppError {
	return &AppError{
		Kind:    KindTimeout,
		Message: fmt.Sprintf("timeout during %s", operation),
		Status:  http.StatusGatewayTimeout,
	}
}

// InternalError creates a new internal error
func InternalError(msg string, cause error) *AppError {
	return &AppError{
		Kind:    KindInternal,
		Message: msg,
		Status:  http.StatusInternalServerError,
		Cause:   cause,
	}
}

// IsKind checks if an error is of a specific kind
func IsKind(err error, kind Kind) bool {
	if err == nil {
		return false
	}

	appErr, ok := err.(*AppError)
	if !ok {
		return false
	}

	return appErr.Kind == kind
}

// HTTPStatus returns the suggested HTTP status for an error.
// Errors that are not AppErrors surface as 400 with their own message.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	appErr, ok := err.(*AppError)
	if !ok || appErr.Status == 0 {
		return http.StatusBadRequest
	}

	return appErr.Status
}

// ClientMessage returns the message that may be shown to an API client
func ClientMessage(err error) string {
	if err == nil {
		return ""
	}

	if appErr, ok := err.(*AppError); ok {
		return appErr.Message
	}

	return err.Error()
}
