package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aristath/qdash/internal/kvstore"
	"github.com/aristath/qdash/internal/modules/eventlog"
	"github.com/aristath/qdash/internal/modules/network"
	"github.com/aristath/qdash/internal/modules/security"
	"github.com/aristath/qdash/internal/random"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serviceScanner completes scans immediately
type serviceScanner struct {
	svc *security.Service
}

func (s *serviceScanner) SecurityScan(ctx context.Context) (security.ScanResult, error) {
	if err := s.svc.BeginScan(); err != nil {
		return security.ScanResult{}, err
	}
	return s.svc.CompleteScan(), nil
}

func (s *serviceScanner) StartSecurityScan() error {
	return s.svc.BeginScan()
}

func setupTestHandler() (*Handler, *eventlog.Log) {
	handler, _, journal := setupScanHandler()
	return handler, journal
}

func setupScanHandler() (*Handler, *security.Service, *eventlog.Log) {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	rng := random.NewSeeded(8)
	journal := eventlog.New(eventlog.Config{Capacity: 20}, kvstore.NewMemory(), rng, eventlog.NewClock(rng), logger)
	svc := security.NewService(network.NewStore(0, rng, logger), journal, logger)
	return NewHandler(svc, &serviceScanner{svc: svc}, logger), svc, journal
}

func TestHandleGetStatus(t *testing.T) {
	handler, _ := setupTestHandler()

	w := httptest.NewRecorder()
	handler.HandleGetStatus(w, httptest.NewRequest("GET", "/api/security", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "QUANTUM_ENCRYPTED", data["security_level"])
	assert.Equal(t, "MINIMAL", data["threat_level"])
}

func TestHandleGetEvents(t *testing.T) {
	handler, journal := setupTestHandler()
	journal.LogEvent("SECURITY_SCAN_COMPLETED", map[string]interface{}{"status": "SECURE"})

	w := httptest.NewRecorder()
	handler.HandleGetEvents(w, httptest.NewRequest("GET", "/api/security/events", nil))

	var response struct {
		Data []eventlog.Entry `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.Len(t, response.Data, 1)
	assert.Equal(t, "SECURITY_SCAN_COMPLETED", response.Data[0].Event)
}

func TestRegisterRoutes(t *testing.T) {
	handler, _ := setupTestHandler()
	router := chi.NewRouter()

	assert.NotPanics(t, func() {
		handler.RegisterRoutes(router)
	})
}

func TestHandleScan(t *testing.T) {
	handler, svc, _ := setupScanHandler()
	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/security/scan?wait=true", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "SECURE", response["data"].(map[string]interface{})["status"])

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/security/scan", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.True(t, svc.Scanning())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/security/scan", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
}
