// Package timer implements the focus-timer state machine: a single
// countdown alternating work and break sessions, with transport
// controls and snapshot persistence.
package timer

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/taskflowhq/taskflow/internal/domain"
	"github.com/taskflowhq/taskflow/internal/notify"
	"github.com/taskflowhq/taskflow/internal/sound"
)

// Config holds the session durations
type Config struct {
	WorkDuration  time.Duration
	BreakDuration time.Duration
}

// DefaultConfig returns the standard 25/5 pomodoro durations
func DefaultConfig() Config {
	return Config{
		WorkDuration:  25 * time.Minute,
		BreakDuration: 5 * time.Minute,
	}
}

// Snapshot is the persisted serialized form of the engine state
type Snapshot struct {
	TimeLeft          int                `json:"timeLeft"` // seconds
	SessionType       domain.SessionType `json:"sessionType"`
	IsRunning         bool               `json:"isRunning"`
	CompletedSessions int                `json:"completedSessions"`
	LastSaved         time.Time          `json:"lastSaved"`
}

// SnapshotStore persists engine snapshots. All writes are best-effort:
// the engine logs failures and keeps running in memory.
type SnapshotStore interface {
	Save(s Snapshot) error
	Load() (Snapshot, bool, error)
	Clear() error
}

// FocusRecorder receives focus-time credits and session records
type FocusRecorder interface {
	AddFocusTime(minutes int) error
	AddFocusSession(s domain.FocusSession) error
}

// Deps are the engine's collaborators. Nil fields fall back to no-ops
// (and the system clock).
type Deps struct {
	Clock     Clock
	Snapshots SnapshotStore
	Focus     FocusRecorder
	Notifier  notify.Notifier
	Cues      sound.Player
	User      string // stamped on notifications
}

// Engine is a single-user focus timer. All methods are safe for
// concurrent use.
type Engine struct {
	mu  sync.Mutex
	cfg Config

	timeLeft          int // seconds
	sessionType       domain.SessionType
	isRunning         bool
	completedSessions int
	startedAt         time.Time

	stopTick chan struct{}
	runGen   int // invalidates ticks from superseded run loops

	clock     Clock
	snapshots SnapshotStore
	focus     FocusRecorder
	notifier  notify.Notifier
	cues      sound.Player
	user      string
}

// New creates an engine with defaults for the work session, restoring
// any previously persisted snapshot. A restored engine is never
// auto-resumed; the user must start it manually.
func New(cfg Config, deps Deps) *Engine {
	if cfg.WorkDuration <= 0 {
		cfg.WorkDuration = DefaultConfig().WorkDuration
	}
	if cfg.BreakDuration <= 0 {
		cfg.BreakDuration = DefaultConfig().BreakDuration
	}

	e := &Engine{
		cfg:         cfg,
		timeLeft:    int(cfg.WorkDuration.Seconds()),
		sessionType: domain.SessionWork,
		clock:       deps.Clock,
		snapshots:   deps.Snapshots,
		focus:       deps.Focus,
		notifier:    deps.Notifier,
		cues:        deps.Cues,
		user:        deps.User,
	}
	if e.clock == nil {
		e.clock = SystemClock()
	}
	if e.snapshots == nil {
		e.snapshots = nopSnapshots{}
	}
	if e.focus == nil {
		e.focus = nopFocus{}
	}
	if e.notifier == nil {
		e.notifier = notify.NoopNotifier{}
	}
	if e.cues == nil {
		e.cues = sound.NoopPlayer{}
	}

	e.restore()
	return e
}

func (e *Engine) restore() {
	snap, ok, err := e.snapshots.Load()
	if err != nil {
		log.Printf("timer: snapshot load failed: %v", err)
		return
	}
	if !ok {
		return
	}

	e.completedSessions = snap.CompletedSessions

	// Only restore mid-session state if the timer was actually running
	// when the snapshot was taken. LastSaved is kept for inspection but
	// never used to fast-forward the countdown.
	if snap.IsRunning && snap.TimeLeft > 0 && snap.SessionType.Valid() {
		e.timeLeft = snap.TimeLeft
		e.sessionType = snap.SessionType
	}
}

// State returns a copy of the current engine state
func (e *Engine) State() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Start begins the countdown. A no-op if already running.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.isRunning {
		return
	}

	e.isRunning = true
	e.startedAt = e.clock.Now()
	e.runGen++

	stop := make(chan struct{})
	e.stopTick = stop
	ticker := e.clock.NewTicker(time.Second)
	go e.run(ticker, stop, e.runGen)

	e.cues.Play(sound.CueTimerStart)
	e.persistLocked()
}

func (e *Engine) run(ticker Ticker, stop chan struct{}, gen int) {
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			if e.tick(gen) {
				return
			}
		}
	}
}

// tick decrements the countdown; returns true when the loop should exit
func (e *Engine) tick(gen int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.isRunning || gen != e.runGen {
		return true
	}

	e.timeLeft--
	if e.timeLeft > 0 {
		return false
	}
	e.completeLocked()
	return true
}

// Pause stops the countdown and credits elapsed whole minutes of a work
// session to the focus total. A no-op unless running.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.isRunning {
		return
	}

	e.cancelTickLocked()
	e.isRunning = false
	e.creditElapsedLocked()
	e.persistLocked()
}

// Stop halts the countdown, credits elapsed work minutes if running,
// and resets the clock to the full duration of the current session type
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelTickLocked()
	if e.isRunning {
		e.creditElapsedLocked()
	}
	e.isRunning = false
	e.timeLeft = e.sessionDurationLocked()
	e.startedAt = time.Time{}
	e.persistLocked()
}

// Reset returns the engine to an idle work session at full duration and
// removes the persisted snapshot entirely
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelTickLocked()
	e.isRunning = false
	e.sessionType = domain.SessionWork
	e.timeLeft = int(e.cfg.WorkDuration.Seconds())
	e.startedAt = time.Time{}

	if err := e.snapshots.Clear(); err != nil {
		log.Printf("timer: snapshot clear failed: %v", err)
	}
}

// Skip forces completion of the current session regardless of remaining
// time, with the same side effects as natural expiry
func (e *Engine) Skip() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.completeLocked()
}

// completeLocked applies the shared completion logic for natural expiry
// and skip. Work sessions credit the full session duration, not just
// the elapsed portion.
func (e *Engine) completeLocked() {
	e.cancelTickLocked()
	e.isRunning = false
	e.cues.Play(sound.CueTimerComplete)

	if e.sessionType == domain.SessionWork {
		minutes := int(e.cfg.WorkDuration.Minutes())
		e.recordFocusLocked(minutes)
		e.recordSessionLocked(domain.FocusSession{
			Type:      domain.SessionWork,
			Duration:  minutes,
			Completed: true,
		})
		e.sendCompleteNotification(minutes)
		e.completedSessions++
		e.sessionType = domain.SessionBreak
		e.timeLeft = int(e.cfg.BreakDuration.Seconds())
	} else {
		e.sessionType = domain.SessionWork
		e.timeLeft = int(e.cfg.WorkDuration.Seconds())
	}

	e.startedAt = time.Time{}
	e.persistLocked()
}

func (e *Engine) creditElapsedLocked() {
	if e.sessionType != domain.SessionWork || e.startedAt.IsZero() {
		return
	}
	minutes := int(e.clock.Now().Sub(e.startedAt).Minutes())
	if minutes > 0 {
		e.recordFocusLocked(minutes)
	}
}

func (e *Engine) recordFocusLocked(minutes int) {
	if err := e.focus.AddFocusTime(minutes); err != nil {
		log.Printf("timer: recording focus time failed: %v", err)
	}
}

func (e *Engine) recordSessionLocked(s domain.FocusSession) {
	if err := e.focus.AddFocusSession(s); err != nil {
		log.Printf("timer: recording focus session failed: %v", err)
	}
}

// sendCompleteNotification delivers asynchronously so a slow sink never
// blocks a state transition
func (e *Engine) sendCompleteNotification(minutes int) {
	n := notify.Notification{
		User:    e.user,
		Kind:    "focus_complete",
		Title:   "Focus Session Complete",
		Message: fmt.Sprintf("Great job! You focused for %d minutes", minutes),
		Icon:    "🎯",
		Type:    notify.NotifySuccess,
	}
	go func() {
		if err := e.notifier.Send(n); err != nil {
			log.Printf("timer: notification failed: %v", err)
		}
	}()
}

func (e *Engine) sessionDurationLocked() int {
	if e.sessionType == domain.SessionBreak {
		return int(e.cfg.BreakDuration.Seconds())
	}
	return int(e.cfg.WorkDuration.Seconds())
}

func (e *Engine) cancelTickLocked() {
	if e.stopTick != nil {
		close(e.stopTick)
		e.stopTick = nil
	}
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		TimeLeft:          e.timeLeft,
		SessionType:       e.sessionType,
		IsRunning:         e.isRunning,
		CompletedSessions: e.completedSessions,
		LastSaved:         e.clock.Now(),
	}
}

func (e *Engine) persistLocked() {
	if err := e.snapshots.Save(e.snapshotLocked()); err != nil {
		log.Printf("timer: snapshot save failed: %v", err)
	}
}

type nopSnapshots struct{}

func (nopSnapshots) Save(Snapshot) error           { return nil }
func (nopSnapshots) Load() (Snapshot, bool, error) { return Snapshot{}, false, nil }
func (nopSnapshots) Clear() error                  { return nil }

type nopFocus struct{}

func (nopFocus) AddFocusTime(int) error                    { return nil }
func (nopFocus) AddFocusSession(domain.FocusSession) error { return nil }
