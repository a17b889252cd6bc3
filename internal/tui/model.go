// Package tui is the terminal dashboard. It polls the qdash HTTP API and
// dispatches circuit, network and security commands from key presses.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// API is the subset of Client the model uses
type API interface {
	BaseURL() string
	Status() (SystemStatus, error)
	Circuit() (Circuit, error)
	Metrics() (Metrics, error)
	Network() (Network, error)
	Logs(limit int) ([]LogEntry, error)
	ApplyOperation(operation string) error
	SetQubits(count int) error
	Execute() error
	Reset() error
	Save() error
	Restore() error
	Connect() error
	Scan() error
}

type Model struct {
	client          API
	refreshInterval time.Duration

	// Data
	connected bool
	status    SystemStatus
	circuit   Circuit
	metrics   Metrics
	network   Network
	logs      []LogEntry
	lastError string
	lastCmd   string

	// UI state
	width  int
	height int
	ready  bool

	// Components
	spinner  spinner.Model
	viewport viewport.Model
	help     help.Model
}

// Messages

type snapshotMsg struct {
	status  SystemStatus
	circuit Circuit
	metrics Metrics
	network Network
	logs    []LogEntry
	err     error
}

type commandMsg struct {
	name string
	err  error
}

type refreshMsg struct{}

const logLimit = 20

// NewModel creates the dashboard model polling every refreshInterval
func NewModel(client API, refreshInterval time.Duration) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = s.Style.Foreground(DefaultTheme.Warning)

	return Model{
		client:          client,
		refreshInterval: refreshInterval,
		spinner:         s,
		help:            help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(fetchSnapshot(m.client), m.scheduleRefresh(), m.spinner.Tick)
}

// Commands

// fetchSnapshot reads every panel; the first error marks the API unreachable
func fetchSnapshot(c API) tea.Cmd {
	return func() tea.Msg {
		var msg snapshotMsg
		if msg.status, msg.err = c.Status(); msg.err != nil {
			return msg
		}
		if msg.circuit, msg.err = c.Circuit(); msg.err != nil {
			return msg
		}
		if msg.metrics, msg.err = c.Metrics(); msg.err != nil {
			return msg
		}
		if msg.network, msg.err = c.Network(); msg.err != nil {
			return msg
		}
		msg.logs, msg.err = c.Logs(logLimit)
		return msg
	}
}

func runCommand(name string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return commandMsg{name: name, err: fn()}
	}
}

func (m Model) scheduleRefresh() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(t time.Time) tea.Msg {
		return refreshMsg{}
	})
}
