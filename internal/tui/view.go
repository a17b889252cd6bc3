package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if !m.ready {
		return "\n  Loading..."
	}
	t := DefaultTheme

	if !m.connected {
		msg := fmt.Sprintf("Cannot reach API at %s", m.client.BaseURL())
		if m.lastError != "" {
			msg += "\n" + lipgloss.NewStyle().Foreground(t.Muted).Render(m.lastError)
		}
		return lipgloss.NewStyle().Padding(1, 2).Foreground(t.Error).Render(msg)
	}

	left := lipgloss.JoinVertical(lipgloss.Left, m.viewCircuit(), m.viewLog())
	right := lipgloss.JoinVertical(lipgloss.Left, m.viewMetrics(), m.viewNetwork())

	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewHeader(),
		lipgloss.JoinHorizontal(lipgloss.Top, left, right),
		m.viewFooter(),
	)
}

func (m Model) columnWidth() int {
	w := m.width/2 - 2
	if w < 30 {
		w = 30
	}
	return w
}

func (m Model) logWidth() int {
	return m.columnWidth() - 4
}

func (m Model) viewHeader() string {
	t := DefaultTheme

	state := "READY"
	if m.status.Busy.Busy {
		state = m.spinner.View() + " PROCESSING " + strings.ToUpper(m.status.Busy.Command)
	}

	parts := []string{
		lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Render("RADOS QUANTUM"),
		lipgloss.NewStyle().Foreground(t.levelColor(m.status.Status)).Render(m.status.Status),
		lipgloss.NewStyle().Foreground(t.levelColor(m.status.Connection)).Render(m.status.Connection),
		lipgloss.NewStyle().Foreground(t.levelColor(m.status.ThreatLevel)).Render("threat " + m.status.ThreatLevel),
		lipgloss.NewStyle().Foreground(t.Muted).Render("up " + m.status.Uptime),
		lipgloss.NewStyle().Foreground(t.Warning).Render(state),
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(parts, "  │  "))
}

func (m Model) viewCircuit() string {
	t := DefaultTheme
	c := m.circuit

	var cells []string
	for _, q := range c.Qubits {
		style := lipgloss.NewStyle().Padding(0, 1).Foreground(t.Text)
		if q.State != "|0⟩" {
			style = style.Foreground(t.Accent)
		}
		if q.Entangled {
			style = style.Underline(true)
		}
		cells = append(cells, style.Render(q.State))
	}

	grid := wrapCells(cells, m.columnWidth()-4)
	info := lipgloss.NewStyle().Foreground(t.Muted).Render(
		fmt.Sprintf("qubits %d/%d  depth %d  entangled %d", c.QubitCount, c.MaxQubits, c.Depth, c.Entangled))

	body := t.title("CIRCUIT") + "\n" + info + "\n" + grid
	if m.lastError != "" {
		body += "\n" + lipgloss.NewStyle().Foreground(t.Error).Render(m.lastCmd+": "+m.lastError)
	}
	return t.panel(m.columnWidth()).Render(body)
}

// wrapCells lays rendered cells out in rows no wider than width
func wrapCells(cells []string, width int) string {
	var rows []string
	var row []string
	rowWidth := 0
	for _, cell := range cells {
		w := lipgloss.Width(cell)
		if rowWidth+w > width && len(row) > 0 {
			rows = append(rows, strings.Join(row, ""))
			row, rowWidth = nil, 0
		}
		row = append(row, cell)
		rowWidth += w
	}
	if len(row) > 0 {
		rows = append(rows, strings.Join(row, ""))
	}
	return strings.Join(rows, "\n")
}

func (m Model) viewMetrics() string {
	t := DefaultTheme
	mt := m.metrics

	rows := []struct {
		label string
		value string
	}{
		{"network health", fmt.Sprintf("%.1f%%", mt.NetworkHealth)},
		{"coherence", fmt.Sprintf("%.2f%%", mt.QuantumCoherence)},
		{"ops/sec", fmt.Sprintf("%.0f", mt.OperationsPerSecond)},
		{"cpu", fmt.Sprintf("%.1f%%", mt.CPUUsage)},
		{"memory", fmt.Sprintf("%.1f%%", mt.MemoryUsage)},
		{"uptime", mt.UptimeHuman},
	}

	label := lipgloss.NewStyle().Foreground(t.Muted).Width(16)
	var lines []string
	for _, r := range rows {
		lines = append(lines, label.Render(r.label)+r.value)
	}
	return t.panel(m.columnWidth()).Render(t.title("METRICS") + "\n" + strings.Join(lines, "\n"))
}

func (m Model) viewNetwork() string {
	t := DefaultTheme
	n := m.network

	lines := []string{
		lipgloss.NewStyle().Foreground(t.levelColor(n.Connection)).Render(n.Connection) +
			lipgloss.NewStyle().Foreground(t.Muted).Render("  "+n.SecurityLevel),
	}
	for _, node := range n.Nodes {
		lines = append(lines, fmt.Sprintf("%-16s %-10s %5dq %4.0fms %s",
			node.ID, node.Location, node.Qubits, node.Latency,
			lipgloss.NewStyle().Foreground(t.levelColor(node.Status)).Render(node.Status)))
	}
	return t.panel(m.columnWidth()).Render(t.title("NETWORK") + "\n" + strings.Join(lines, "\n"))
}

func (m Model) renderLog() string {
	t := DefaultTheme
	var lines []string
	// Newest first
	for i := len(m.logs) - 1; i >= 0; i-- {
		e := m.logs[i]
		at := time.UnixMilli(int64(e.Timestamp.Timestamp)).UTC().Format("15:04:05")
		lines = append(lines, lipgloss.NewStyle().Foreground(t.Muted).Render(at)+" "+e.Event)
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewLog() string {
	t := DefaultTheme
	return t.panel(m.columnWidth()).Render(t.title("EVENT LOG") + "\n" + m.viewport.View())
}

func (m Model) viewFooter() string {
	return lipgloss.NewStyle().Padding(0, 1).Render(m.help.View(keys))
}
