package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/aristath/qdash/internal/modules/circuit"
	"github.com/aristath/qdash/internal/modules/security"
	"github.com/aristath/qdash/internal/modules/settings"
	"github.com/aristath/qdash/internal/validation"
	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"busy", ErrBusy, http.StatusConflict},
		{"scan running", security.ErrScanInProgress, http.StatusConflict},
		{"unknown gate", fmt.Errorf("%w: toffoli", circuit.ErrUnknownGate), http.StatusBadRequest},
		{"format", settings.ErrUnsupportedFormat, http.StatusBadRequest},
		{"invalid", fmt.Errorf("invalid settings: %w", &validation.Error{Field: "Performance", Message: "must be a multiple of 5"}), http.StatusBadRequest},
		{"nothing saved", circuit.ErrNoSavedCircuit, http.StatusNotFound},
		{"stopped", ErrStopped, http.StatusServiceUnavailable},
		{"cancelled", context.Canceled, http.StatusRequestTimeout},
		{"other", errors.New("disk gone"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}
