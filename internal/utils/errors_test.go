package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapIsImmutable(t *testing.T) {
	base := NewBadGatewayError("analysis service failed")
	cause := errors.New("connection refused")

	wrapped := base.Wrap(cause)

	assert.Nil(t, base.Err, "Wrap must not modify the receiver")
	assert.NotSame(t, base, wrapped)
	assert.Equal(t, cause, wrapped.Err)
	assert.Equal(t, http.StatusBadGateway, wrapped.StatusCode)
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, "analysis service failed: connection refused", wrapped.Error())
}

func TestWrapChainsOnlyTheLatestCause(t *testing.T) {
	base := NewNotFoundError("Run not found")
	first := base.Wrap(errors.New("first"))
	second := first.Wrap(errors.New("second"))

	assert.Equal(t, "Run not found: first", first.Error())
	assert.Equal(t, "Run not found: second", second.Error())
	assert.Equal(t, http.StatusNotFound, second.StatusCode)
}

func TestAsAppError(t *testing.T) {
	err := fmt.Errorf("handler: %w", NewConflictError("busy"))

	appErr := AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusConflict, appErr.StatusCode)
	assert.Equal(t, "busy", appErr.Message)

	assert.Nil(t, AsAppError(errors.New("plain")))
}

func TestGenerateIDIsUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := GenerateID()
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}
