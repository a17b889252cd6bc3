package tui

import "github.com/charmbracelet/lipgloss"

// Theme holds the semantic color palette for the terminal dashboard.
type Theme struct {
	Border  lipgloss.Color
	Muted   lipgloss.Color
	Text    lipgloss.Color
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

// DefaultTheme uses Charmbracelet's CharmTone palette.
var DefaultTheme = Theme{
	Border:  lipgloss.Color("#4D4C57"), // Iron
	Muted:   lipgloss.Color("#858392"), // Squid
	Text:    lipgloss.Color("#DFDBDD"), // Ash
	Primary: lipgloss.Color("#6B50FF"), // Charple
	Accent:  lipgloss.Color("#FF60FF"), // Dolly
	Success: lipgloss.Color("#00FFB2"), // Julep
	Warning: lipgloss.Color("#FFD300"),
	Error:   lipgloss.Color("#E94090"),
}

func (t Theme) panel(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1).
		Width(width)
}

func (t Theme) title(s string) string {
	return lipgloss.NewStyle().Foreground(t.Primary).Bold(true).Render(s)
}

// levelColor colors a status word: green when nominal, yellow when degraded
func (t Theme) levelColor(status string) lipgloss.Color {
	switch status {
	case "HEALTHY", "CONNECTED", "SECURE", "MINIMAL", "ONLINE", "READY":
		return t.Success
	case "ELEVATED", "WARNING", "PROCESSING":
		return t.Warning
	case "DISCONNECTED", "OFFLINE":
		return t.Error
	default:
		return t.Text
	}
}
