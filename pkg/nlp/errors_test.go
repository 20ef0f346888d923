package nlp

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitErrorIs(t *testing.T) {
	err := NewRateLimitError("custom message")
	assert.Equal(t, "custom message", err.Error())
	assert.True(t, errors.Is(err, &RateLimitError{}))

	wrapped := fmt.Errorf("chat failed: %w", NewRateLimitError())
	var target *RateLimitError
	assert.True(t, errors.As(wrapped, &target))
}

func TestEmptyResponseError(t *testing.T) {
	err := NewEmptyResponseError("nothing came back")
	assert.Equal(t, "nothing came back", err.Error())
	assert.True(t, errors.Is(err, &EmptyResponseError{}))
}

func TestMalformedResponseErrorUnwrap(t *testing.T) {
	err := NewMalformedResponseError("bad shape", `{"partial":`)
	assert.True(t, errors.Is(err, ErrMalformedResponse))
	assert.Equal(t, `{"partial":`, err.Raw)

	wrapped := fmt.Errorf("resolver: %w", err)
	assert.True(t, errors.Is(wrapped, ErrMalformedResponse))
}

func TestNewClientInvalidProvider(t *testing.T) {
	_, err := NewClient(Config{Provider: "carrier-pigeon"})
	assert.True(t, errors.Is(err, ErrInvalidProvider))
}
