// Package review delivers the scheduled end-of-day productivity digest.
package review

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/robfig/cron/v3"
	"github.com/taskflowhq/taskflow/internal/domain"
	"github.com/taskflowhq/taskflow/internal/notify"
	"github.com/taskflowhq/taskflow/internal/scoring"
	"github.com/taskflowhq/taskflow/internal/store"
)

// Scheduler runs the daily review for every known user on a cron
// schedule
type Scheduler struct {
	spec     string
	parser   cron.Parser
	store    *store.Store
	notifier notify.Notifier
	now      func() time.Time

	mu       sync.Mutex
	lastRun  time.Time
	running  bool
	stopChan chan struct{}
}

// NewScheduler creates a scheduler; the cron spec is validated up front
func NewScheduler(spec string, st *store.Store, notifier notify.Notifier) (*Scheduler, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(spec); err != nil {
		return nil, fmt.Errorf("invalid review cron %q: %w", spec, err)
	}

	return &Scheduler{
		spec:     spec,
		parser:   parser,
		store:    st,
		notifier: notifier,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}, nil
}

// NextRun returns the next scheduled digest time
func (s *Scheduler) NextRun() time.Time {
	sched, err := s.parser.Parse(s.spec)
	if err != nil {
		return time.Time{}
	}
	return sched.Next(s.now())
}

// ShouldRun reports whether a digest is due
func (s *Scheduler) ShouldRun() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return false
	}

	sched, err := s.parser.Parse(s.spec)
	if err != nil {
		return false
	}

	lastRun := s.lastRun
	if lastRun.IsZero() {
		lastRun = s.now().Add(-24 * time.Hour)
	}

	return s.now().After(sched.Next(lastRun))
}

func (s *Scheduler) markRunning() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
}

func (s *Scheduler) markComplete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.lastRun = s.now()
}

// Start begins the scheduler loop; it blocks until Stop is called
func (s *Scheduler) Start() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			if s.ShouldRun() {
				s.markRunning()
				go func() {
					if err := s.RunDigest(); err != nil {
						log.Printf("review digest failed: %v", err)
					}
					s.markComplete()
				}()
			}
		}
	}
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
}

// RunDigest computes and delivers today's review for every user
func (s *Scheduler) RunDigest() error {
	users, err := s.store.Users()
	if err != nil {
		return fmt.Errorf("listing users: %w", err)
	}

	now := s.now()
	for _, user := range users {
		if err := s.digestFor(user, now); err != nil {
			log.Printf("review digest for %s failed: %v", user, err)
		}
	}
	return nil
}

func (s *Scheduler) digestFor(user string, now time.Time) error {
	tasks, err := s.store.ListTasks(user, store.ListOptions{})
	if err != nil {
		return err
	}
	timeSpent, err := s.store.FocusTime(user, now)
	if err != nil {
		return err
	}
	sessions, err := s.store.CountFocusSessions(user, now)
	if err != nil {
		return err
	}

	completed := 0
	for _, t := range tasks {
		if t.Status == domain.StatusCompleted {
			completed++
		}
	}

	rev := scoring.DailyReview(tasks, completed, timeSpent, sessions, now)

	message := rev.Summary
	if timeSpent > 0 {
		focused := strings.TrimSpace(humanize.RelTime(now.Add(-time.Duration(timeSpent)*time.Minute), now, "", ""))
		message = fmt.Sprintf("%s (%s of focus logged)", rev.Summary, focused)
	}

	return s.notifier.Send(notify.Notification{
		User:    user,
		Kind:    "daily_review",
		Title:   fmt.Sprintf("Daily Review: %d/100", rev.Score),
		Message: message,
		Icon:    "📊",
		Type:    notify.NotifyInfo,
	})
}
