// Package typing maps host-reported typing intensity onto animation tiers
// and detects streaks. The host measures words per minute and forwards a
// speed value; this package owns the thresholds that decide how hard the
// cat types.
package typing

import (
	"time"

	"github.com/pawsd/deskcat/internal/anim"
)

// Speed thresholds for tier selection. Speed is the host's scaled activity
// value (roughly WPM mapped onto an animation period): below 80 is slow,
// 80-149 normal, 150 and up fast.
const (
	NormalThreshold = 80
	FastThreshold   = 150
)

// Thresholds selects tiers from a speed value, after scaling by the
// configured sensitivity.
type Thresholds struct {
	Normal int
	Fast   int
	// Sensitivity scales incoming speed; 1.0 is neutral. Range-checked by
	// the settings store (0.1-5.0).
	Sensitivity float64
}

// DefaultThresholds returns the stock mapping.
func DefaultThresholds() Thresholds {
	return Thresholds{Normal: NormalThreshold, Fast: FastThreshold, Sensitivity: 1.0}
}

// TierFor maps a speed value to a typing tier. Zero or negative speed means
// the host explicitly stopped; callers should treat the second return as
// "no typing".
func (t Thresholds) TierFor(speed int) (anim.State, bool) {
	if speed <= 0 {
		return anim.IdleStage1, false
	}

	scaled := float64(speed)
	if t.Sensitivity > 0 {
		scaled *= t.Sensitivity
	}

	switch {
	case scaled < float64(t.Normal):
		return anim.TypingSlow, true
	case scaled < float64(t.Fast):
		return anim.TypingNormal, true
	default:
		return anim.TypingFast, true
	}
}

// StreakDetector upgrades sustained fast typing to streak mode, the happy
// face the host otherwise commands explicitly. Forcing takes priority over
// detection in both directions.
type StreakDetector struct {
	// Window is how long fast typing must persist before a streak starts.
	Window time.Duration

	forced    bool
	forcedOn  bool
	fastSince time.Time
	inFast    bool
}

// NewStreakDetector returns a detector requiring the given window of
// sustained fast typing.
func NewStreakDetector(window time.Duration) *StreakDetector {
	return &StreakDetector{Window: window}
}

// Force pins streak mode on or off, overriding detection until Release.
func (d *StreakDetector) Force(on bool) {
	d.forced = true
	d.forcedOn = on
}

// Release returns control to detection.
func (d *StreakDetector) Release() {
	d.forced = false
}

// Observe feeds one tier observation and reports whether streak mode is
// active.
func (d *StreakDetector) Observe(tier anim.State, now time.Time) bool {
	if tier == anim.TypingFast || tier == anim.TypingStreak {
		if !d.inFast {
			d.inFast = true
			d.fastSince = now
		}
	} else {
		d.inFast = false
	}

	if d.forced {
		return d.forcedOn
	}
	return d.inFast && now.Sub(d.fastSince) >= d.Window
}

// Active reports the current streak decision without a new observation.
func (d *StreakDetector) Active(now time.Time) bool {
	if d.forced {
		return d.forcedOn
	}
	return d.inFast && now.Sub(d.fastSince) >= d.Window
}
