package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "s":
			m.engine.Start()
		case "p":
			m.engine.Pause()
		case "x":
			m.engine.Stop()
		case "r":
			m.engine.Reset()
		case "k":
			m.engine.Skip()
		}
		m.state = m.engine.State()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case TickMsg:
		m.state = m.engine.State()
		return m, tickCmd()
	}

	return m, nil
}
