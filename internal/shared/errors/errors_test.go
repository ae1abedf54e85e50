package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewInfrastructureError("store unavailable").WithCause(cause)

	assert.Contains(t, err.Error(), "store unavailable")
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)
}

func TestConstructors_HTTPCodes(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, NewValidationError("bad").HTTPCode)
	assert.Equal(t, http.StatusNotFound, NewNotFoundError("user").HTTPCode)
	assert.Equal(t, http.StatusConflict, NewConflictError("dup").HTTPCode)
	assert.Equal(t, http.StatusUnauthorized, NewAuthenticationError("nope").HTTPCode)
	assert.Equal(t, http.StatusForbidden, NewAuthorizationError("no").HTTPCode)
	assert.Equal(t, http.StatusInternalServerError, NewInternalError("boom").HTTPCode)
}

func TestNewNotFoundError_Message(t *testing.T) {
	assert.Equal(t, "user not found", NewNotFoundError("user").Message)
}

func TestWithDetail(t *testing.T) {
	err := NewValidationError("invalid email").WithDetail("field", "email").WithCode("invalid_email")
	assert.Equal(t, "email", err.Details["field"])
	assert.Equal(t, "invalid_email", err.Code)
}

func TestWrapError(t *testing.T) {
	inner := NewConflictError("email taken")
	assert.Same(t, inner, WrapError(inner, "ignored"))

	// wrapping keeps the AppError reachable through fmt wrapping too
	wrapped := fmt.Errorf("service: %w", inner)
	assert.Same(t, inner, WrapError(wrapped, "ignored"))

	plain := errors.New("plain")
	appErr := WrapError(plain, "something broke")
	assert.Equal(t, ErrorTypeInternal, appErr.Type)
	assert.ErrorIs(t, appErr, plain)
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusConflict, HTTPStatus(NewConflictError("dup")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(fmt.Errorf("wrap: %w", NewNotFoundError("user"))))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("anything")))
}

func TestClassifiers(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFoundError("user")))
	assert.True(t, IsNotFound(ErrUserNotFound))
	assert.False(t, IsNotFound(NewConflictError("x")))

	assert.True(t, IsConflict(NewConflictError("x")))
	assert.True(t, IsConflict(ErrEmailAlreadyInUse))

	assert.True(t, IsValidation(NewValidationError("x")))
	assert.True(t, IsAuthentication(ErrInvalidCredentials))
	assert.False(t, IsAuthentication(ErrConflict))
}
