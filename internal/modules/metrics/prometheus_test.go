package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gaugeValue(t *testing.T, g interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	return m.GetGauge().GetValue()
}

func TestRegistry_ObserveSnapshot(t *testing.T) {
	r := NewRegistry()

	r.ObserveSnapshot(Snapshot{NetworkHealth: 91, QuantumCoherence: 97, OperationsPerSecond: 2500, CPUUsage: 12, MemoryUsage: 34, Uptime: 1500})

	assert.Equal(t, 91.0, gaugeValue(t, r.NetworkHealth))
	assert.Equal(t, 97.0, gaugeValue(t, r.QuantumCoherence))
	assert.Equal(t, 2500.0, gaugeValue(t, r.OperationsPerSecond))
	assert.Equal(t, 1.5, gaugeValue(t, r.UptimeSeconds))
}

func TestRegistry_CircuitNetworkAndEvents(t *testing.T) {
	r := NewRegistry()

	r.ObserveCircuit(5, 3, 2)
	r.ObserveNetwork(40, 5000, 0.97, 5)
	r.ObserveQueue(12, 1)
	r.RecordEvent("CIRCUIT_RESET")
	r.RecordEvent("CIRCUIT_RESET")

	assert.Equal(t, 5.0, gaugeValue(t, r.CircuitQubits))
	assert.Equal(t, 3.0, gaugeValue(t, r.CircuitDepth))
	assert.Equal(t, 5.0, gaugeValue(t, r.NetworkNodes))
	assert.Equal(t, 12.0, gaugeValue(t, r.EventLogEntries))

	counter, err := r.EventsTotal.GetMetricWithLabelValues("CIRCUIT_RESET")
	require.NoError(t, err)
	var m dto.Metric
	require.NoError(t, counter.Write(&m))
	assert.Equal(t, 2.0, m.GetCounter().GetValue())
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	r.ObserveCircuit(7, 0, 0)

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "qdash_circuit_qubits 7"))
}
