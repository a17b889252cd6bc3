package analytics

import (
	"math"

	"github.com/aristath/qdash/internal/modules/circuit"
	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultTrendPeriod is the moving-average period used for trends
const DefaultTrendPeriod = 10

// Operation mix buckets, in chart order
var operationBuckets = []struct {
	label string
	gate  string
}{
	{"Hadamard", circuit.GateHadamard},
	{"CNOT", circuit.GateCNOT},
	{"QFT", circuit.GateQFT},
	{"Grover", circuit.GateGrover},
}

// CountOperations buckets ops into Hadamard, CNOT, QFT, Grover and Other
func CountOperations(ops []circuit.Operation) []OperationCount {
	counts := make(map[string]int, len(operationBuckets))
	other := 0
	for _, op := range ops {
		matched := false
		for _, b := range operationBuckets {
			if op.Name == b.gate {
				counts[b.label]++
				matched = true
				break
			}
		}
		if !matched {
			other++
		}
	}

	out := make([]OperationCount, 0, len(operationBuckets)+1)
	for _, b := range operationBuckets {
		out = append(out, OperationCount{Name: b.label, Count: counts[b.label]})
	}
	return append(out, OperationCount{Name: "Other", Count: other})
}

// Describe computes statistics for values with the given moving-average period.
//
// EMA falls back to the mean when there are fewer than period values. The
// trend is the percentage change of the EMA from its first defined point to
// its last, and is zero until the EMA has at least two defined points.
func Describe(values []float64, period int) SeriesStats {
	if len(values) == 0 {
		return SeriesStats{}
	}
	if period < 2 {
		period = 2
	}

	s := SeriesStats{
		Samples: len(values),
		Latest:  values[len(values)-1],
		Mean:    stat.Mean(values, nil),
		Min:     floats.Min(values),
		Max:     floats.Max(values),
	}
	if len(values) > 1 {
		s.StdDev = stat.StdDev(values, nil)
	}

	if len(values) < period {
		s.EMA = s.Mean
		s.SMA = s.Mean
		return s
	}

	ema := talib.Ema(values, period)
	s.EMA = lastDefined(ema, s.Mean)
	s.SMA = lastDefined(talib.Sma(values, period), s.Mean)

	first := ema[period-1]
	if len(values) > period && !math.IsNaN(first) && first != 0 {
		s.TrendPercent = (s.EMA - first) / first * 100
	}
	return s
}

func lastDefined(series []float64, fallback float64) float64 {
	if len(series) == 0 {
		return fallback
	}
	v := series[len(series)-1]
	if math.IsNaN(v) {
		return fallback
	}
	return v
}
