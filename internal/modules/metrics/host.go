package metrics

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostReader reads real CPU and memory usage percentages
type HostReader interface {
	Read() (cpuPercent, memPercent float64, err error)
}

// GopsutilReader samples the host with gopsutil
type GopsutilReader struct {
	// Window is the CPU sampling window
	Window time.Duration
}

// NewHostReader returns a reader with a 100ms CPU window
func NewHostReader() *GopsutilReader {
	return &GopsutilReader{Window: 100 * time.Millisecond}
}

// Read returns the average CPU percentage across cores and used memory percentage
func (r *GopsutilReader) Read() (float64, float64, error) {
	cpuPercent, err := cpu.Percent(r.Window, false)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get CPU percentage: %w", err)
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get memory statistics: %w", err)
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}
	return cpuAvg, memStat.UsedPercent, nil
}
