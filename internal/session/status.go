package session

import (
	"context"
	"errors"
	"net/http"

	"github.com/aristath/qdash/internal/modules/circuit"
	"github.com/aristath/qdash/internal/modules/security"
	"github.com/aristath/qdash/internal/modules/settings"
	"github.com/aristath/qdash/internal/validation"
)

// StatusCode maps a command error to the HTTP status the handlers reply with
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrBusy), errors.Is(err, security.ErrScanInProgress):
		return http.StatusConflict
	case errors.Is(err, circuit.ErrUnknownGate),
		errors.Is(err, settings.ErrUnsupportedFormat),
		validation.IsInvalid(err):
		return http.StatusBadRequest
	case errors.Is(err, circuit.ErrNoSavedCircuit):
		return http.StatusNotFound
	case errors.Is(err, ErrStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
