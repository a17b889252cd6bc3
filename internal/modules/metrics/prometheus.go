package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the Prometheus collectors exposed at /metrics
type Registry struct {
	// System
	NetworkHealth       prometheus.Gauge
	QuantumCoherence    prometheus.Gauge
	OperationsPerSecond prometheus.Gauge
	CPUUsage            prometheus.Gauge
	MemoryUsage         prometheus.Gauge
	UptimeSeconds       prometheus.Gauge

	// Circuit
	CircuitQubits    prometheus.Gauge
	CircuitDepth     prometheus.Gauge
	CircuitEntangled prometheus.Gauge

	// Network
	NetworkLatency   prometheus.Gauge
	NetworkBandwidth prometheus.Gauge
	NetworkFidelity  prometheus.Gauge
	NetworkNodes     prometheus.Gauge

	// Events
	EventsTotal     *prometheus.CounterVec
	EventLogEntries prometheus.Gauge
	QueuePending    prometheus.Gauge

	registry *prometheus.Registry
}

// NewRegistry creates a registry with every collector registered
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initSystemMetrics()
	r.initCircuitMetrics()
	r.initNetworkMetrics()
	r.initEventMetrics()
	return r
}

func (r *Registry) gauge(name, help string) prometheus.Gauge {
	return promauto.With(r.registry).NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
}

func (r *Registry) initSystemMetrics() {
	r.NetworkHealth = r.gauge("qdash_network_health_percent", "Simulated network health percentage")
	r.QuantumCoherence = r.gauge("qdash_quantum_coherence_percent", "Simulated quantum coherence percentage")
	r.OperationsPerSecond = r.gauge("qdash_operations_per_second", "Simulated quantum operations per second")
	r.CPUUsage = r.gauge("qdash_cpu_usage_percent", "CPU usage percentage")
	r.MemoryUsage = r.gauge("qdash_memory_usage_percent", "Memory usage percentage")
	r.UptimeSeconds = r.gauge("qdash_uptime_seconds", "Seconds since the metrics source started")
}

func (r *Registry) initCircuitMetrics() {
	r.CircuitQubits = r.gauge("qdash_circuit_qubits", "Qubits in the circuit designer")
	r.CircuitDepth = r.gauge("qdash_circuit_depth", "Operations applied since the last reset")
	r.CircuitEntangled = r.gauge("qdash_circuit_entangled_qubits", "Qubits currently marked entangled")
}

func (r *Registry) initNetworkMetrics() {
	r.NetworkLatency = r.gauge("qdash_network_latency_ms", "Simulated link latency in milliseconds")
	r.NetworkBandwidth = r.gauge("qdash_network_bandwidth", "Simulated link bandwidth")
	r.NetworkFidelity = r.gauge("qdash_network_fidelity", "Simulated link fidelity (0-1)")
	r.NetworkNodes = r.gauge("qdash_network_nodes", "Active simulated network nodes")
}

func (r *Registry) initEventMetrics() {
	r.EventsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "qdash_events_total",
			Help: "Events published on the bus",
		},
		[]string{"type"},
	)
	r.EventLogEntries = r.gauge("qdash_event_log_entries", "Entries held in the event log")
	r.QueuePending = r.gauge("qdash_work_queue_pending", "Tasks waiting in the work queue")
}

// ObserveSnapshot copies a metrics snapshot into the system gauges
func (r *Registry) ObserveSnapshot(s Snapshot) {
	r.NetworkHealth.Set(s.NetworkHealth)
	r.QuantumCoherence.Set(s.QuantumCoherence)
	r.OperationsPerSecond.Set(s.OperationsPerSecond)
	r.CPUUsage.Set(s.CPUUsage)
	r.MemoryUsage.Set(s.MemoryUsage)
	r.UptimeSeconds.Set(float64(s.Uptime) / 1000)
}

// ObserveCircuit records circuit size
func (r *Registry) ObserveCircuit(qubits, depth, entangled int) {
	r.CircuitQubits.Set(float64(qubits))
	r.CircuitDepth.Set(float64(depth))
	r.CircuitEntangled.Set(float64(entangled))
}

// ObserveNetwork records link readings
func (r *Registry) ObserveNetwork(latency, bandwidth, fidelity float64, nodes int) {
	r.NetworkLatency.Set(latency)
	r.NetworkBandwidth.Set(bandwidth)
	r.NetworkFidelity.Set(fidelity)
	r.NetworkNodes.Set(float64(nodes))
}

// RecordEvent counts one bus event
func (r *Registry) RecordEvent(eventType string) {
	r.EventsTotal.WithLabelValues(eventType).Inc()
}

// ObserveQueue records event log size and work queue backlog
func (r *Registry) ObserveQueue(logEntries, pending int) {
	r.EventLogEntries.Set(float64(logEntries))
	r.QueuePending.Set(float64(pending))
}

// Handler serves the registry in the Prometheus text format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
