package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date with no time-of-day component
type Date struct {
	time.Time
}

// ParseDate parses a YYYY-MM-DD string into a Date
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return Date{Time: t}, nil
}

// String returns the canonical YYYY-MM-DD representation
func (d Date) String() string {
	return d.Format(dateLayout)
}

// MarshalJSON encodes the date as a YYYY-MM-DD string
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts YYYY-MM-DD and full RFC 3339 timestamps
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid date %q", s)
	}
	d.Time = t
	return nil
}

// MarshalYAML encodes the date as a YYYY-MM-DD string
func (d Date) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// UnmarshalYAML accepts a YYYY-MM-DD scalar
func (d *Date) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysUntil returns the number of days until the date, rounded up.
// Negative for dates in the past.
func (d Date) DaysUntil(now time.Time) int {
	return int(math.Ceil(d.Sub(now).Hours() / 24))
}

// Task represents a unit of work owned by a single user
type Task struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Priority    Priority `json:"priority" yaml:"priority"`
	Status      Status   `json:"status" yaml:"status"`
	Project     string   `json:"project,omitempty" yaml:"project,omitempty"`
	DueDate     *Date    `json:"dueDate,omitempty" yaml:"due_date,omitempty"`
	TimeSpent   int      `json:"timeSpent" yaml:"time_spent"` // minutes
}

// Validate checks the closed enums and the time-spent invariant
func (t *Task) Validate() error {
	if !t.Priority.Valid() {
		return fmt.Errorf("invalid priority %q", t.Priority)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("invalid status %q", t.Status)
	}
	if t.TimeSpent < 0 {
		return fmt.Errorf("negative timeSpent %d", t.TimeSpent)
	}
	return nil
}

// IsOverdue reports whether the task has a due date strictly before now
// and is not completed
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == StatusCompleted {
		return false
	}
	return t.DueDate.Before(now)
}

// IsDue reports whether the task has a due date at or before now
// and is not completed
func (t *Task) IsDue(now time.Time) bool {
	if t.DueDate == nil || t.Status == StatusCompleted {
		return false
	}
	return !t.DueDate.After(now)
}

// FocusSession is a record of a completed focus interval
type FocusSession struct {
	Type      SessionType `json:"type"`
	Duration  int         `json:"duration"` // minutes
	Completed bool        `json:"completed"`
}
