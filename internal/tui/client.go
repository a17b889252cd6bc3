package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client talks to the qdash HTTP API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an API client for baseURL (e.g. http://localhost:8080)
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// BaseURL returns the server address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Response types. Only the fields the terminal view draws are decoded.

type SystemStatus struct {
	Status        string  `json:"status"`
	Connection    string  `json:"connection"`
	ThreatLevel   string  `json:"threat_level"`
	SessionID     string  `json:"session_id"`
	Uptime        string  `json:"uptime"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	Busy          Busy    `json:"busy"`
}

type Busy struct {
	Busy    bool   `json:"busy"`
	Command string `json:"command"`
}

type Qubit struct {
	ID            int    `json:"id"`
	State         string `json:"state"`
	Entangled     bool   `json:"entangled"`
	EntangledWith []int  `json:"entangledWith"`
}

type Circuit struct {
	Qubits     []Qubit `json:"qubits"`
	QubitCount int     `json:"qubit_count"`
	Depth      int     `json:"circuit_depth"`
	MaxQubits  int     `json:"max_qubits"`
	Entangled  int     `json:"entangled_count"`
}

type Metrics struct {
	NetworkHealth       float64 `json:"network_health"`
	QuantumCoherence    float64 `json:"quantum_coherence"`
	OperationsPerSecond float64 `json:"operations_per_second"`
	CPUUsage            float64 `json:"cpu_usage"`
	MemoryUsage         float64 `json:"memory_usage"`
	UptimeHuman         string  `json:"uptime_human"`
}

type Node struct {
	ID       string  `json:"id"`
	Location string  `json:"location"`
	Qubits   int     `json:"qubits"`
	Latency  float64 `json:"latency"`
	Status   string  `json:"status"`
}

type Network struct {
	Connection    string `json:"connection"`
	SecurityLevel string `json:"security_level"`
	Nodes         []Node `json:"nodes"`
}

type LogEntry struct {
	Timestamp struct {
		Timestamp float64 `json:"timestamp"`
	} `json:"timestamp"`
	Event string `json:"event"`
}

// envelope is the {"data": ...} wrapper module handlers respond with
type envelope[T any] struct {
	Data  T      `json:"data"`
	Error string `json:"error"`
}

func (c *Client) do(method, path string, params url.Values, body any, target any) error {
	u := c.baseURL + path
	if params != nil {
		u += "?" + params.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, u, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var failure envelope[json.RawMessage]
		if json.NewDecoder(resp.Body).Decode(&failure) == nil && failure.Error != "" {
			return fmt.Errorf("API returned %d: %s", resp.StatusCode, failure.Error)
		}
		return fmt.Errorf("API returned %d", resp.StatusCode)
	}
	if target == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

func getData[T any](c *Client, path string, params url.Values) (T, error) {
	var env envelope[T]
	err := c.do(http.MethodGet, path, params, nil, &env)
	return env.Data, err
}

// Endpoints

func (c *Client) Status() (SystemStatus, error) {
	var s SystemStatus
	return s, c.do(http.MethodGet, "/api/system/status", nil, nil, &s)
}

func (c *Client) Circuit() (Circuit, error) {
	return getData[Circuit](c, "/api/circuit/", nil)
}

func (c *Client) Metrics() (Metrics, error) {
	return getData[Metrics](c, "/api/metrics/current", nil)
}

func (c *Client) Network() (Network, error) {
	return getData[Network](c, "/api/network/", nil)
}

func (c *Client) Logs(limit int) ([]LogEntry, error) {
	return getData[[]LogEntry](c, "/api/logs/", url.Values{"limit": {fmt.Sprint(limit)}})
}

// Commands are dispatched asynchronously; progress arrives via BUSY_STATE_CHANGED

func (c *Client) ApplyOperation(operation string) error {
	return c.do(http.MethodPost, "/api/circuit/operations", nil, map[string]any{"operation": operation}, nil)
}

func (c *Client) SetQubits(count int) error {
	return c.do(http.MethodPut, "/api/circuit/qubits", nil, map[string]any{"count": count}, nil)
}

func (c *Client) Execute() error {
	return c.do(http.MethodPost, "/api/circuit/execute", nil, nil, nil)
}

func (c *Client) Reset() error {
	return c.do(http.MethodPost, "/api/circuit/reset", nil, nil, nil)
}

func (c *Client) Save() error {
	return c.do(http.MethodPost, "/api/circuit/save", nil, nil, nil)
}

func (c *Client) Restore() error {
	return c.do(http.MethodPost, "/api/circuit/restore", nil, nil, nil)
}

func (c *Client) Connect() error {
	return c.do(http.MethodPost, "/api/network/connect", nil, nil, nil)
}

func (c *Client) Scan() error {
	return c.do(http.MethodPost, "/api/security/scan", nil, nil, nil)
}
