// Package analytics summarises circuit activity and metrics history for the
// analytics page: operation mix, descriptive statistics and moving-average trends.
package analytics

import (
	"time"

	"github.com/aristath/qdash/internal/modules/circuit"
)

// OperationCount is one slice of the operation mix chart
type OperationCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// SeriesStats describes one metrics series over the history window
type SeriesStats struct {
	Samples      int     `json:"samples"`
	Latest       float64 `json:"latest"`
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"std_dev"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	EMA          float64 `json:"ema"`
	SMA          float64 `json:"sma"`
	TrendPercent float64 `json:"trend_percent"`
}

// PerformancePoint is one point of the performance chart
type PerformancePoint struct {
	Time          time.Time `json:"time"`
	Coherence     float64   `json:"coherence"`
	Operations    float64   `json:"operations"`
	NetworkHealth float64   `json:"network_health"`
}

// Report is the analytics page payload
type Report struct {
	TotalOperations int                        `json:"total_operations"`
	CircuitDepth    int                        `json:"circuit_depth"`
	QubitCount      int                        `json:"qubit_count"`
	Operations      []OperationCount           `json:"operations"`
	Distribution    []circuit.StateProbability `json:"distribution"`
	Coherence       SeriesStats                `json:"coherence"`
	Throughput      SeriesStats                `json:"throughput"`
	NetworkHealth   SeriesStats                `json:"network_health"`
	CPU             SeriesStats                `json:"cpu"`
	Memory          SeriesStats                `json:"memory"`
	Performance     []PerformancePoint         `json:"performance"`
	GeneratedAt     time.Time                  `json:"generated_at"`
}
