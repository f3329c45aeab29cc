package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/taskflowhq/taskflow/internal/domain"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Padding(0, 1)

	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Padding(1, 4)

	workStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	breakStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
)

// View renders the TUI
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("TaskFlow Focus Timer"))
	b.WriteString("\n\n")

	var session string
	if m.state.SessionType == domain.SessionBreak {
		session = breakStyle.Render("● Break")
	} else {
		session = workStyle.Render("● Focus")
	}
	if !m.state.IsRunning {
		session += pausedStyle.Render("  (paused)")
	}

	countdown := fmt.Sprintf("%02d:%02d", m.state.TimeLeft/60, m.state.TimeLeft%60)

	body := fmt.Sprintf("%s\n\n%s\n\nSessions completed today: %d",
		session,
		clockStyle.Render(countdown),
		m.state.CompletedSessions)
	b.WriteString(sectionStyle.Render(body))
	b.WriteString("\n\n")

	b.WriteString(helpStyle.Render("s start │ p pause │ x stop │ r reset │ k skip │ q quit"))
	b.WriteString("\n")

	return b.String()
}
