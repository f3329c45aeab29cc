package scoring

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/taskflowhq/taskflow/internal/domain"
)

// Review is the productivity summary for a single day
type Review struct {
	Score         int      `json:"score"`
	Summary       string   `json:"summary"`
	Achievements  []string `json:"achievements"`
	Improvements  []string `json:"improvements"`
	TomorrowFocus []string `json:"tomorrowFocus"`
	Insights      string   `json:"insights"`
}

// DailyReview computes a 0-100 productivity score and narrative review
// from a day's task list and focus statistics
func DailyReview(tasks []domain.Task, completedCount, timeSpentMin, focusSessions int, now time.Time) Review {
	score := reviewScore(tasks, completedCount, timeSpentMin, focusSessions)

	return Review{
		Score:         score,
		Summary:       summary(score, completedCount, timeSpentMin, focusSessions),
		Achievements:  achievements(tasks, completedCount, timeSpentMin, focusSessions),
		Improvements:  improvements(tasks, completedCount, timeSpentMin, focusSessions),
		TomorrowFocus: tomorrowFocus(tasks, now),
		Insights:      reviewInsights(score, timeSpentMin, focusSessions),
	}
}

func reviewScore(tasks []domain.Task, completedCount, timeSpentMin, focusSessions int) int {
	score := 0

	// Completion rate, up to 40 points
	if len(tasks) > 0 {
		score += int(math.Round(float64(completedCount) / float64(len(tasks)) * 40))
	}

	// Focus time: 1 point per 5 minutes, up to 30
	score += min(int(math.Round(float64(timeSpentMin)/5)), 30)

	// Sessions: 5 points each, up to 20
	score += min(focusSessions*5, 20)

	// Project variety: 5 points per distinct project, up to 10
	projects := make(map[string]struct{})
	for _, t := range tasks {
		projects[t.Project] = struct{}{}
	}
	score += min(len(projects)*5, 10)

	return min(score, 100)
}

func summary(score, completedCount, timeSpentMin, focusSessions int) string {
	var parts []string
	if completedCount > 0 {
		parts = append(parts, fmt.Sprintf("completed %d task%s", completedCount, plural(completedCount)))
	}
	if timeSpentMin > 0 {
		parts = append(parts, fmt.Sprintf("spent %d hours and %d minutes in focused work", timeSpentMin/60, timeSpentMin%60))
	}
	if focusSessions > 0 {
		parts = append(parts, fmt.Sprintf("completed %d focus session%s", focusSessions, plural(focusSessions)))
	}

	if len(parts) == 0 {
		return "Today was a planning day. Tomorrow is a great opportunity to dive into your tasks!"
	}

	var remark string
	switch {
	case score >= 70:
		remark = "Great productivity day!"
	case score >= 50:
		remark = "Solid progress made!"
	default:
		remark = "Every step counts - keep building momentum!"
	}

	return fmt.Sprintf("Today you %s. %s", strings.Join(parts, ", "), remark)
}

func achievements(tasks []domain.Task, completedCount, timeSpentMin, focusSessions int) []string {
	var out []string
	if completedCount >= 3 {
		out = append(out, "Completed multiple tasks in one day")
	}
	if timeSpentMin >= 120 {
		out = append(out, "Maintained focus for over 2 hours")
	}
	if focusSessions >= 3 {
		out = append(out, "Consistent use of focus sessions")
	}
	for _, t := range tasks {
		if t.Priority == domain.PriorityHigh && t.Status == domain.StatusCompleted {
			out = append(out, "Tackled high-priority tasks")
			break
		}
	}
	if len(out) == 0 {
		out = append(out, "Stayed organized and planned your work")
	}
	return out
}

func improvements(tasks []domain.Task, completedCount, timeSpentMin, focusSessions int) []string {
	var out []string
	if completedCount == 0 {
		out = append(out, "Try completing at least one small task tomorrow")
	}
	if timeSpentMin < 60 {
		out = append(out, "Consider using focus sessions to increase deep work time")
	}
	if focusSessions == 0 {
		out = append(out, "Use the Pomodoro timer to maintain focus")
	}
	inProgress := 0
	for _, t := range tasks {
		if t.Status == domain.StatusInProgress {
			inProgress++
		}
	}
	if inProgress > 3 {
		out = append(out, "Focus on completing existing tasks before starting new ones")
	}
	if len(out) == 0 {
		out = append(out, "Keep up the great work!")
	}
	return out
}

func tomorrowFocus(tasks []domain.Task, now time.Time) []string {
	var out []string

	for _, t := range tasks {
		if t.IsDue(now) {
			out = append(out, "Address overdue tasks first thing in the morning")
			break
		}
	}
	for _, t := range tasks {
		if t.Priority == domain.PriorityHigh && t.Status != domain.StatusCompleted {
			out = append(out, fmt.Sprintf("Focus on high-priority tasks: %s", t.Title))
			break
		}
	}

	out = append(out,
		"Use focus sessions to maintain concentration",
		"Take regular breaks to maintain energy levels",
	)
	return out
}

func reviewInsights(score, timeSpentMin, focusSessions int) string {
	var parts []string

	switch {
	case score >= 80:
		parts = append(parts, "You're in an excellent productivity flow! Your focus and completion rate are outstanding.")
	case score >= 60:
		parts = append(parts, "You're making solid progress with good focus habits. Consider increasing your daily task completion rate.")
	case score >= 40:
		parts = append(parts, "You're building good habits. Focus on completing more tasks and using focus sessions consistently.")
	default:
		parts = append(parts, "Every journey starts with a single step. Tomorrow is a fresh opportunity to build productive momentum.")
	}

	if focusSessions > 0 && timeSpentMin > 0 {
		if float64(timeSpentMin)/float64(focusSessions) >= 20 {
			parts = append(parts, "Your focus sessions are well-structured and productive.")
		} else {
			parts = append(parts, "Consider extending your focus sessions for deeper concentration.")
		}
	}

	return strings.Join(parts, " ")
}
