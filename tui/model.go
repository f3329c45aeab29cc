// Package tui renders the interactive focus timer in the terminal.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/taskflowhq/taskflow/internal/timer"
)

// Model is the TUI application model wrapping a local timer engine
type Model struct {
	engine *timer.Engine
	state  timer.Snapshot

	width  int
	height int
}

// NewModel creates a new TUI model around an engine
func NewModel(engine *timer.Engine) Model {
	return Model{
		engine: engine,
		state:  engine.State(),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// TickMsg triggers a state refresh
type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
