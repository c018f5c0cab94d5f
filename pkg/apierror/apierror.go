package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error so handlers and tests can tell causes apart.
type Kind string

const (
	KindDuplicateUser      Kind = "DUPLICATE_USER"
	KindValidation         Kind = "VALIDATION_ERROR"
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindNotFound           Kind = "NOT_FOUND"
	KindServer             Kind = "SERVER_ERROR"
)

type APIError struct {
	Kind       Kind   `json:"kind"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Details != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Details)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func New(kind Kind, message string, details string, status int) *APIError {
	return &APIError{Kind: kind, Message: message, Details: details, HTTPStatus: status}
}

// Wrap is New with an underlying cause reachable through errors.Is / errors.As.
func Wrap(kind Kind, message string, status int, err error) *APIError {
	return &APIError{Kind: kind, Message: message, HTTPStatus: status, Err: err}
}

// Server reports an infrastructure failure. The cause is kept for logging
// and is only rendered to clients outside production.
func Server(err error) *APIError {
	return Wrap(KindServer, "Server error", http.StatusInternalServerError, err)
}

// KindOf returns the kind of the first APIError in err's chain, or
// KindServer when there is none.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindServer
}
