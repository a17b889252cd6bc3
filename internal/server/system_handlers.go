package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/aristath/qdash/internal/modules/eventlog"
	"github.com/aristath/qdash/internal/modules/metrics"
	"github.com/aristath/qdash/internal/scheduler"
	"github.com/aristath/qdash/internal/session"
	"github.com/aristath/qdash/internal/version"
	"github.com/aristath/qdash/internal/work"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemHandlers handles system-wide monitoring endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	dataDir     string
	artifactDir string
	startupTime time.Time
	controller  *session.Controller
	scheduler   *scheduler.Scheduler
	processor   *work.Processor
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(
	log zerolog.Logger,
	dataDir string,
	artifactDir string,
	controller *session.Controller,
	sched *scheduler.Scheduler,
	processor *work.Processor,
) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("handler", "system").Logger(),
		dataDir:     dataDir,
		artifactDir: artifactDir,
		startupTime: time.Now(),
		controller:  controller,
		scheduler:   sched,
		processor:   processor,
	}
}

// SystemStatusResponse is the dashboard header: health, busy flag, link state
// and host load
type SystemStatusResponse struct {
	Status        string            `json:"status"`
	Health        metrics.Health    `json:"health"`
	Busy          session.BusyState `json:"busy"`
	Connection    string            `json:"connection"`
	ThreatLevel   string            `json:"threat_level"`
	QubitCount    int               `json:"qubit_count"`
	CircuitDepth  int               `json:"circuit_depth"`
	LogEntries    int               `json:"log_entries"`
	SessionID     string            `json:"session_id"`
	Uptime        string            `json:"uptime"`
	CPUPercent    float64           `json:"cpu_percent"`
	MemoryPercent float64           `json:"memory_percent"`
	Queue         work.Stats        `json:"queue"`
	Version       map[string]string `json:"version"`
	LastUpdated   string            `json:"last_updated"`
}

// JobInfo is one scheduled job
type JobInfo struct {
	Name    string `json:"name"`
	NextRun string `json:"next_run"`
}

// JobsStatusResponse lists the scheduled jobs
type JobsStatusResponse struct {
	TotalJobs int       `json:"total_jobs"`
	Jobs      []JobInfo `json:"jobs"`
}

// DiskUsageResponse reports the size of the data and export directories
type DiskUsageResponse struct {
	StateDBMB   float64 `json:"state_db_mb"`
	DataDirMB   float64 `json:"data_dir_mb"`
	ExportsMB   float64 `json:"exports_mb"`
	LastChecked string  `json:"last_checked"`
}

// GetSystemStatusSnapshot assembles the current system status
func (h *SystemHandlers) GetSystemStatusSnapshot() SystemStatusResponse {
	s := h.controller.Session()
	cpuPercent, memPercent := h.getSystemStats()
	circuitSnap := s.Circuit.Snapshot()

	return SystemStatusResponse{
		Status:        metrics.SystemHealth.Overall,
		Health:        s.Metrics.Health(),
		Busy:          h.controller.Busy(),
		Connection:    s.Network.ConnectionStatus(),
		ThreatLevel:   s.Security.ThreatLevel(),
		QubitCount:    circuitSnap.QubitCount,
		CircuitDepth:  circuitSnap.Depth,
		LogEntries:    s.Journal.Count(),
		SessionID:     s.Journal.SessionID(),
		Uptime:        eventlog.FormatUptime(time.Since(h.startupTime)),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		Queue:         h.processor.Stats(),
		Version:       version.Info(),
		LastUpdated:   time.Now().Format(time.RFC3339),
	}
}

// HandleSystemStatus returns the system status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.GetSystemStatusSnapshot())
}

// HandleJobsStatus returns scheduler job status
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	jobs := []JobInfo{}
	for name, next := range h.scheduler.Jobs() {
		jobs = append(jobs, JobInfo{Name: name, NextRun: next.Format(time.RFC3339)})
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })

	h.writeJSON(w, JobsStatusResponse{
		TotalJobs: len(jobs),
		Jobs:      jobs,
	})
}

// HandleDiskUsage returns disk usage statistics
func (h *SystemHandlers) HandleDiskUsage(w http.ResponseWriter, r *http.Request) {
	stateDB := 0.0
	if info, err := os.Stat(filepath.Join(h.dataDir, "state.db")); err == nil {
		stateDB = float64(info.Size()) / 1024 / 1024
	}

	h.writeJSON(w, DiskUsageResponse{
		StateDBMB:   stateDB,
		DataDirMB:   h.getDirSize(h.dataDir),
		ExportsMB:   h.getDirSize(h.artifactDir),
		LastChecked: time.Now().Format(time.RFC3339),
	})
}

// getDirSize calculates total size of a directory in MB
func (h *SystemHandlers) getDirSize(dirPath string) float64 {
	if dirPath == "" {
		return 0
	}

	var totalSize int64
	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})
	if err != nil {
		h.log.Warn().Err(err).Str("dir", dirPath).Msg("Failed to calculate directory size")
		return 0
	}

	return float64(totalSize) / 1024 / 1024
}

// getSystemStats calculates CPU and RAM usage percentages over a short window
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
