package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit     key.Binding
	Hadamard key.Binding
	CNOT     key.Binding
	Bell     key.Binding
	QFT      key.Binding
	Grover   key.Binding
	Execute  key.Binding
	Reset    key.Binding
	Save     key.Binding
	Restore  key.Binding
	More     key.Binding
	Fewer    key.Binding
	Connect  key.Binding
	Scan     key.Binding
	Refresh  key.Binding
}

var keys = keyMap{
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Hadamard: key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "hadamard")),
	CNOT:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cnot")),
	Bell:     key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "bell")),
	QFT:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "qft")),
	Grover:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "grover")),
	Execute:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "execute")),
	Reset:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
	Save:     key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "save")),
	Restore:  key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "load")),
	More:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "qubit")),
	Fewer:    key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "qubit")),
	Connect:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "connect")),
	Scan:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "scan")),
	Refresh:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "refresh")),
}

// ShortHelp lists the bindings shown in the footer
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Hadamard, k.CNOT, k.Bell, k.QFT, k.Grover, k.Execute, k.Reset, k.Save, k.Restore, k.More, k.Fewer, k.Connect, k.Scan, k.Quit}
}

// FullHelp is the same list in one column
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
