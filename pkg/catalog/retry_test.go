package catalog

import (
	"context"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestRetryConfigDefaults(t *testing.T) {
	r := RetryConfig{}.withDefaults()
	assert.Equal(t, 1, r.Attempts)
	assert.Equal(t, DefaultRetryConfig.Attempts, r.Attempts)
	assert.Equal(t, DefaultRetryConfig.MaxDelay, r.MaxDelay)
	assert.Equal(t, "exponential", r.BackoffType)

	custom := RetryConfig{Attempts: 7, InitialDelay: 10, MaxDelay: 20, BackoffType: "fixed"}.withDefaults()
	assert.Equal(t, 7, custom.Attempts)
	assert.Equal(t, 10, custom.InitialDelay)
	assert.Equal(t, "fixed", custom.BackoffType)
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"too many requests", &statusError{code: http.StatusTooManyRequests}, true},
		{"server error", &statusError{code: http.StatusBadGateway}, true},
		{"not found", &statusError{code: http.StatusNotFound}, false},
		{"unauthorized", &statusError{code: http.StatusUnauthorized}, false},
		{"cancelled", context.Canceled, false},
		{"deadline", errors.Wrap(context.DeadlineExceeded, "request"), false},
		{"invalid url", ErrInvalidURL, false},
		{"transport", errors.New("connection refused"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isRetryableError(tt.err))
		})
	}
}
