package firestore

import (
	"errors"
	"fmt"
)

// Common client errors
var (
	ErrMissingProjectID    = errors.New("project ID cannot be empty")
	ErrMissingServiceEmail = errors.New("service account email cannot be empty")
	ErrMissingPrivateKey   = errors.New("service account private key cannot be empty")
	ErrEmptyCollection     = errors.New("collection cannot be empty")
	ErrEmptyDocumentID     = errors.New("document ID cannot be empty")
)

// StoreError is returned when a Firestore REST call fails: the transport
// errored, or the endpoint answered with a non-2xx status other than the
// 404-on-get case. It carries the HTTP status and raw response body for
// diagnostics.
type StoreError struct {
	Op         string
	StatusCode int
	Body       string
	Cause      error
}

func (e *StoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("firestore: %s failed: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("firestore: %s failed with status %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// AuthError is returned when the OAuth2 token exchange fails. It is a
// store failure kind of its own so callers can distinguish credential
// problems from document-level failures.
type AuthError struct {
	StatusCode int
	Body       string
	Cause      error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("firestore: token exchange failed: %v", e.Cause)
	}
	return fmt.Sprintf("firestore: token exchange failed with status %d: %s", e.StatusCode, e.Body)
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// FormatError is returned when a response body cannot be parsed as the
// expected JSON shape (malformed wire document, missing fields block, etc).
type FormatError struct {
	Reason string
	Cause  error
}

func (e *FormatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("firestore: malformed response: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("firestore: malformed response: %s", e.Reason)
}

func (e *FormatError) Unwrap() error {
	return e.Cause
}

// IsStoreError reports whether err is a StoreError and returns it.
func IsStoreError(err error) (*StoreError, bool) {
	var se *StoreError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsAuthError reports whether err is an AuthError and returns it.
func IsAuthError(err error) (*AuthError, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
