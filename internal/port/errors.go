package port

import (
	"errors"
	"fmt"
)

// Sentinel errors used across ports.
var (
	ErrBranchNotFound    = errors.New("branch not found")
	ErrConflict          = errors.New("version conflict")
	ErrRepoNotFound      = errors.New("repository not found")
	ErrSessionNotFound   = errors.New("enrichment session not found")
	ErrInvalidTransition = errors.New("action not allowed in current state")
)

// AuthError reports a rejected or expired credential. It is fatal to the
// whole session: the caller must re-authenticate.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// APIError is any non-2xx hosting-platform response other than the
// documented "not found" cases.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return e.Err }

// DecodeError reports a transport payload that could not be decoded.
type DecodeError struct {
	Message string
	Err     error
}

func (e *DecodeError) Error() string { return e.Message }

func (e *DecodeError) Unwrap() error { return e.Err }

// UnsupportedEncodingError reports file content delivered in an encoding
// other than base64.
type UnsupportedEncodingError struct {
	Path     string
	Encoding string
}

func (e *UnsupportedEncodingError) Error() string {
	return fmt.Sprintf("Unsupported file encoding for %s: %q", e.Path, e.Encoding)
}

// GenerationError reports a failed or unavailable text-generation call.
type GenerationError struct {
	Message string
	Err     error
}

func (e *GenerationError) Error() string { return e.Message }

func (e *GenerationError) Unwrap() error { return e.Err }

// IsAuth reports whether err is (or wraps) an AuthError.
func IsAuth(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
