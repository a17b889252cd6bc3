package tui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient(t *testing.T) {
	var applied map[string]interface{}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/circuit/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{"qubit_count": 3, "circuit_depth": 2, "qubits": []map[string]interface{}{{"id": 0, "state": "|+⟩", "entangled": true}}},
		})
	})
	mux.HandleFunc("/api/logs/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{{"event": "CIRCUIT_SAVED", "timestamp": map[string]interface{}{"timestamp": 1.7e12}}},
		})
	})
	mux.HandleFunc("/api/circuit/operations", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&applied))
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]interface{}{"data": map[string]interface{}{"accepted": true}})
	})
	mux.HandleFunc("/api/circuit/reset", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "quantum system busy"})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(server.URL)
	assert.Equal(t, server.URL, client.BaseURL())

	t.Run("decodes data envelope", func(t *testing.T) {
		c, err := client.Circuit()
		require.NoError(t, err)
		assert.Equal(t, 3, c.QubitCount)
		assert.Equal(t, 2, c.Depth)
		require.Len(t, c.Qubits, 1)
		assert.True(t, c.Qubits[0].Entangled)
	})

	t.Run("passes query parameters", func(t *testing.T) {
		logs, err := client.Logs(5)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, "CIRCUIT_SAVED", logs[0].Event)
	})

	t.Run("sends JSON body", func(t *testing.T) {
		require.NoError(t, client.ApplyOperation("qft"))
		assert.Equal(t, "qft", applied["operation"])
	})

	t.Run("surfaces API errors", func(t *testing.T) {
		err := client.Reset()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "409")
		assert.Contains(t, err.Error(), "quantum system busy")
	})

	t.Run("unknown path", func(t *testing.T) {
		_, err := client.Status()
		assert.Error(t, err)
	})
}
