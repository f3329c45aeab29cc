// Package sound plays short audio cues for timer transitions. Playback
// is fire-and-forget: failures are ignored and never reach the caller.
package sound

import (
	"os/exec"
	"runtime"
)

// Cue identifies an audio cue
type Cue string

const (
	CueTimerStart    Cue = "timer_start"
	CueTimerComplete Cue = "timer_complete"
)

// Player plays audio cues
type Player interface {
	Play(c Cue)
}

// NoopPlayer does nothing (for testing or muted settings)
type NoopPlayer struct{}

func (NoopPlayer) Play(c Cue) {}

// SystemPlayer shells out to the platform sound tool
type SystemPlayer struct {
	enabled bool
}

// NewSystemPlayer creates a player for the current OS
func NewSystemPlayer(enabled bool) *SystemPlayer {
	return &SystemPlayer{enabled: enabled}
}

// Play starts cue playback and returns immediately
func (p *SystemPlayer) Play(c Cue) {
	if !p.enabled {
		return
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("afplay", macSound(c))
	case "linux":
		cmd = exec.Command("canberra-gtk-play", "-i", linuxSound(c))
	default:
		return
	}

	go func() { _ = cmd.Run() }()
}

func macSound(c Cue) string {
	if c == CueTimerComplete {
		return "/System/Library/Sounds/Glass.aiff"
	}
	return "/System/Library/Sounds/Tink.aiff"
}

func linuxSound(c Cue) string {
	if c == CueTimerComplete {
		return "complete"
	}
	return "message"
}
