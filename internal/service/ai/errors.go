package ai

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies a failed exchange.
type ErrorKind string

const (
	ErrConfiguration  ErrorKind = "configuration"
	ErrRemoteFailure  ErrorKind = "remote_failure"
	ErrLocalFailure   ErrorKind = "local_failure"
	ErrUnknownBackend ErrorKind = "unknown_backend"
	ErrStorage        ErrorKind = "storage"
	ErrCanceled       ErrorKind = "canceled"
	ErrInvalidInput   ErrorKind = "invalid_input"
)

// Error is the single failure type surfaced by backends and the router.
type Error struct {
	Kind    ErrorKind
	Backend Kind
	// Field names the missing configuration entry for ErrConfiguration.
	Field  string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	var msg string
	switch {
	case e.Field != "":
		msg = fmt.Sprintf("%s: %s missing", e.Kind, e.Field)
	case e.Detail != "":
		msg = fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	default:
		msg = string(e.Kind)
	}
	if e.Backend.Valid() {
		msg = e.Backend.String() + " " + msg
	}
	if e.Err != nil && e.Detail == "" {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message renders the failure as plain text suitable for display as an
// assistant reply.
func (e *Error) Message() string {
	switch e.Kind {
	case ErrConfiguration:
		switch e.Field {
		case FieldRemoteAPIKey:
			return "OpenAI API key not configured (openai_api_key). Please check your configuration."
		case FieldLocalModelPath:
			return "Llama model path not configured (llama_model_path). Please check your configuration."
		}
		return fmt.Sprintf("Backend %s is not configured. Please check your configuration.", e.Backend)
	case ErrRemoteFailure:
		return "Sorry, I encountered an error: " + e.detail()
	case ErrLocalFailure:
		return "Sorry, I encountered an error with the Llama model: " + e.detail()
	case ErrUnknownBackend:
		return fmt.Sprintf("Unknown model: %s. Please use 'openai' or 'llama'.", e.Detail)
	case ErrStorage:
		return "Sorry, I could not save this conversation: " + e.detail()
	case ErrCanceled:
		return "Request canceled."
	case ErrInvalidInput:
		return "Please enter a message."
	default:
		return "Sorry, I encountered an error: " + e.detail()
	}
}

func (e *Error) detail() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

// Configuration field names reported in ErrConfiguration.
const (
	FieldRemoteAPIKey   = "openai_api_key"
	FieldLocalModelPath = "llama_model_path"
)

// ConfigError reports a missing configuration field.
func ConfigError(backend Kind, field string) *Error {
	return &Error{Kind: ErrConfiguration, Backend: backend, Field: field}
}

// UnknownBackendError reports an unsupported selector.
func UnknownBackendError(selector string) *Error {
	return &Error{Kind: ErrUnknownBackend, Detail: selector}
}

// AsError extracts an *Error from err. Errors of other types are classified as
// fallback for the given backend, or ErrCanceled when caused by ctx.
func AsError(err error, backend Kind, fallback ErrorKind) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Kind: ErrCanceled, Backend: backend, Err: err}
	}
	return &Error{Kind: fallback, Backend: backend, Detail: err.Error(), Err: err}
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
