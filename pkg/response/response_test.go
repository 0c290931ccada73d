package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIs(t *testing.T) {
	errNotReady := NewError(http.StatusServiceUnavailable, "model not ready")
	wrapped := fmt.Errorf("detect: %w", errNotReady)

	assert.ErrorIs(t, wrapped, errNotReady)
	assert.ErrorIs(t, wrapped, NewError(http.StatusServiceUnavailable, "model not ready"))
	assert.NotErrorIs(t, wrapped, NewError(http.StatusBadRequest, "model not ready"))
}

func TestStatusCode(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NewError(http.StatusBadRequest, "bad"))
	assert.Equal(t, http.StatusBadRequest, StatusCode(err, http.StatusInternalServerError))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("x"), http.StatusInternalServerError))
}
