package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/taskflowhq/taskflow/internal/domain"
	"github.com/taskflowhq/taskflow/internal/timer"
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestUpdate_StartAndPause(t *testing.T) {
	m := NewModel(timer.New(timer.DefaultConfig(), timer.Deps{}))

	updated, _ := m.Update(key("s"))
	m = updated.(Model)
	if !m.state.IsRunning {
		t.Error("s did not start the timer")
	}

	updated, _ = m.Update(key("p"))
	m = updated.(Model)
	if m.state.IsRunning {
		t.Error("p did not pause the timer")
	}
}

func TestUpdate_SkipAdvancesSession(t *testing.T) {
	m := NewModel(timer.New(timer.DefaultConfig(), timer.Deps{}))

	updated, _ := m.Update(key("k"))
	m = updated.(Model)
	if m.state.SessionType != domain.SessionBreak {
		t.Errorf("session = %s after skip, want break", m.state.SessionType)
	}
	if m.state.CompletedSessions != 1 {
		t.Errorf("completed sessions = %d, want 1", m.state.CompletedSessions)
	}
}

func TestUpdate_QuitKeys(t *testing.T) {
	m := NewModel(timer.New(timer.DefaultConfig(), timer.Deps{}))

	for _, k := range []string{"q"} {
		_, cmd := m.Update(key(k))
		if cmd == nil {
			t.Errorf("key %q did not return a command", k)
		}
	}
}

func TestUpdate_TickRefreshesState(t *testing.T) {
	m := NewModel(timer.New(timer.DefaultConfig(), timer.Deps{}))

	updated, cmd := m.Update(TickMsg(time.Now()))
	m = updated.(Model)
	if cmd == nil {
		t.Error("tick did not schedule the next tick")
	}
	if m.state.TimeLeft != 1500 {
		t.Errorf("TimeLeft = %d", m.state.TimeLeft)
	}
}

func TestView(t *testing.T) {
	m := NewModel(timer.New(timer.DefaultConfig(), timer.Deps{}))

	out := m.View()
	if !strings.Contains(out, "25:00") {
		t.Errorf("view missing countdown:\n%s", out)
	}
	if !strings.Contains(out, "Focus") {
		t.Errorf("view missing session type:\n%s", out)
	}
	if !strings.Contains(out, "q quit") {
		t.Errorf("view missing help line:\n%s", out)
	}
}
