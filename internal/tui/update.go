package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport = viewport.New(m.logWidth(), logLimit/2)
		// Letter keys are commands here, not scrolling
		m.viewport.KeyMap = viewport.KeyMap{}
		m.help.Width = msg.Width
		m.ready = true
		m.viewport.SetContent(m.renderLog())

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			return m, tea.Quit
		}
		if cmd := m.handleKey(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case refreshMsg:
		cmds = append(cmds, fetchSnapshot(m.client), m.scheduleRefresh())

	case snapshotMsg:
		if msg.err != nil {
			m.connected = false
			m.lastError = msg.err.Error()
			break
		}
		m.connected = true
		m.status = msg.status
		m.circuit = msg.circuit
		m.metrics = msg.metrics
		m.network = msg.network
		m.logs = msg.logs
		if m.ready {
			m.viewport.SetContent(m.renderLog())
		}

	case commandMsg:
		m.lastCmd = msg.name
		m.lastError = ""
		if msg.err != nil {
			m.lastError = msg.err.Error()
		}
		cmds = append(cmds, fetchSnapshot(m.client))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	if m.ready {
		if _, isTick := msg.(spinner.TickMsg); !isTick {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// handleKey maps a key press to an API command. Commands gated by the busy
// flag are not sent while the server reports busy.
func (m Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	c := m.client
	busy := m.status.Busy.Busy

	gated := func(name string, fn func() error) tea.Cmd {
		if busy {
			return nil
		}
		return runCommand(name, fn)
	}
	apply := func(op string) tea.Cmd {
		return gated(op, func() error { return c.ApplyOperation(op) })
	}

	switch {
	case key.Matches(msg, keys.Hadamard):
		return apply("hadamard")
	case key.Matches(msg, keys.CNOT):
		return apply("cnot")
	case key.Matches(msg, keys.Bell):
		return apply("bell_state")
	case key.Matches(msg, keys.QFT):
		return apply("qft")
	case key.Matches(msg, keys.Grover):
		return apply("grover")
	case key.Matches(msg, keys.Execute):
		return gated("execute", c.Execute)
	case key.Matches(msg, keys.Reset):
		return gated("reset", c.Reset)
	case key.Matches(msg, keys.Restore):
		return gated("restore", c.Restore)
	case key.Matches(msg, keys.More):
		n := m.circuit.QubitCount + 1
		return gated("qubits", func() error { return c.SetQubits(n) })
	case key.Matches(msg, keys.Fewer):
		n := m.circuit.QubitCount - 1
		return gated("qubits", func() error { return c.SetQubits(n) })
	case key.Matches(msg, keys.Save):
		return runCommand("save", c.Save)
	case key.Matches(msg, keys.Connect):
		return runCommand("connect", c.Connect)
	case key.Matches(msg, keys.Scan):
		return runCommand("scan", c.Scan)
	case key.Matches(msg, keys.Refresh):
		return fetchSnapshot(c)
	}
	return nil
}
