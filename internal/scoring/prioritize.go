// Package scoring implements the deterministic heuristics behind the
// prioritization and daily-review endpoints. Everything here is pure:
// identical inputs and the same injected now always produce identical
// output.
package scoring

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/taskflowhq/taskflow/internal/domain"
)

// PrioritizeResult is the outcome of ranking a task list
type PrioritizeResult struct {
	PrioritizedTasks []string `json:"prioritizedTasks"`
	Recommendations  []string `json:"recommendations"`
	Insights         string   `json:"insights"`
}

var priorityWeights = map[domain.Priority]float64{
	domain.PriorityHigh:   40,
	domain.PriorityMedium: 25,
	domain.PriorityLow:    10,
}

// TaskScore computes the urgency score for a single task. Higher means
// more urgent.
func TaskScore(t domain.Task, now time.Time) float64 {
	score := priorityWeights[t.Priority]

	if t.DueDate != nil {
		days := t.DueDate.DaysUntil(now)
		switch {
		case days <= 1: // overdue tasks saturate into this bucket
			score += 30
		case days <= 3:
			score += 20
		case days <= 7:
			score += 10
		default:
			score += 5
		}
	}

	// Reward time already invested, capped at 20 points
	score += math.Min(float64(t.TimeSpent)/60*2, 20)

	if t.Status == domain.StatusInProgress {
		score += 10
	}

	return score
}

// Prioritize ranks incomplete tasks by urgency and derives
// recommendations and an insight line from the full task list
func Prioritize(tasks []domain.Task, now time.Time) PrioritizeResult {
	type scored struct {
		id    string
		score float64
	}

	var ranked []scored
	for _, t := range tasks {
		if t.Status == domain.StatusCompleted {
			continue
		}
		ranked = append(ranked, scored{id: t.ID, score: TaskScore(t, now)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	ids := make([]string, len(ranked))
	for i, s := range ranked {
		ids[i] = s.id
	}

	return PrioritizeResult{
		PrioritizedTasks: ids,
		Recommendations:  recommendations(tasks, now),
		Insights:         insights(tasks),
	}
}

func recommendations(tasks []domain.Task, now time.Time) []string {
	var overdue, highPriority, inProgress int
	for _, t := range tasks {
		if t.IsOverdue(now) {
			overdue++
		}
		if t.Priority == domain.PriorityHigh && t.Status != domain.StatusCompleted {
			highPriority++
		}
		if t.Status == domain.StatusInProgress {
			inProgress++
		}
	}

	var recs []string
	if overdue > 0 {
		recs = append(recs, fmt.Sprintf("You have %d overdue task%s. Consider tackling these first.", overdue, plural(overdue)))
	}
	if highPriority > 0 {
		recs = append(recs, fmt.Sprintf("Focus on your %d high-priority task%s to maximize impact.", highPriority, plural(highPriority)))
	}
	if inProgress > 3 {
		recs = append(recs, "You have many tasks in progress. Consider completing some before starting new ones.")
	} else if inProgress > 0 {
		recs = append(recs, "Continue with your in-progress tasks to maintain momentum.")
	}
	if len(recs) == 0 {
		recs = append(recs, "Great job staying organized! Start with your highest priority tasks.")
	}
	return recs
}

func insights(tasks []domain.Task) string {
	var completed, highPriority int
	for _, t := range tasks {
		if t.Status == domain.StatusCompleted {
			completed++
		}
		if t.Priority == domain.PriorityHigh {
			highPriority++
		}
	}

	rate := 0
	if len(tasks) > 0 {
		rate = int(math.Round(float64(completed) / float64(len(tasks)) * 100))
	}

	var remark string
	switch {
	case rate >= 80:
		remark = "Excellent productivity! You're staying on top of your tasks."
	case rate >= 60:
		remark = "Good progress! Consider focusing on completing existing tasks."
	default:
		remark = "Focus on completing tasks to improve your productivity momentum."
	}

	return fmt.Sprintf("You have a %d%% task completion rate. %d high-priority tasks need attention. %s", rate, highPriority, remark)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
