package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err    *Error
		status int
	}{
		{Validation("bad input"), http.StatusBadRequest},
		{Unauthorized("no token"), http.StatusUnauthorized},
		{Forbidden("not yours"), http.StatusForbidden},
		{NotFound("missing"), http.StatusNotFound},
		{Conflict("raced"), http.StatusConflict},
		{Unavailable("db down", errors.New("dial tcp")), http.StatusServiceUnavailable},
		{Internal("oops", errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, tt.err.HTTPStatus(), tt.err.Message)
	}
}

func TestIsKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("failed after 3 attempts: %w", Conflict("vote changed"))
	assert.True(t, IsKind(err, KindConflict))
	assert.False(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(errors.New("plain"), KindConflict))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("x")))
	assert.Equal(t, KindInternal, KindOf(errors.New("unclassified")))
}

func TestHTTPStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatusOf(NotFound("x")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusOf(errors.New("unclassified")))
}

func TestErrorStringIncludesCause(t *testing.T) {
	err := Unavailable("query failed", errors.New("connection refused"))
	assert.Contains(t, err.Error(), "unavailable")
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, "connection refused", errors.Unwrap(err).Error())
}
