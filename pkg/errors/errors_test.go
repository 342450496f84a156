package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"index not built", fmt.Errorf("loading lexical index: %w", ErrIndexNotBuilt), http.StatusServiceUnavailable},
		{"misaligned", ErrIndexMisaligned, http.StatusServiceUnavailable},
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"timeout", ErrTimeout, http.StatusGatewayTimeout},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
		{"app error wins", New(ErrIndexNotBuilt, http.StatusTeapot, "custom"), http.StatusTeapot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusCode(tt.err))
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := Newf(ErrEmptyCorpus, http.StatusBadRequest, "source %q", "slides.csv")
	assert.True(t, errors.Is(err, ErrEmptyCorpus))
	assert.Equal(t, `corpus has no entries: source "slides.csv"`, err.Error())
}
