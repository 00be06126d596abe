package anim

import "time"

// Timings holds every duration the controller compares against. All values
// are fixed at Init time; the zero value is unusable, start from
// DefaultTimings.
type Timings struct {
	// BlinkInterval is the pause between blinks while awake
	// (idle stages 1-2 and all typing tiers).
	BlinkInterval time.Duration
	// BlinkIntervalSleepy is the longer pause used in the sleepy stages 3-4.
	BlinkIntervalSleepy time.Duration
	// BlinkDuration is how long the blink face stays up.
	BlinkDuration time.Duration

	// EarTwitchInterval is the pause between ear twitches.
	EarTwitchInterval time.Duration
	// EarTwitchDuration is how long the twitch body stays up.
	EarTwitchDuration time.Duration

	// TypingTimeout sends any typing tier back to IdleStage1 after this much
	// inactivity.
	TypingTimeout time.Duration

	// IdleDwell is the minimum time spent in each idle stage before automatic
	// progression advances it. Stage 4 wraps back to stage 1.
	IdleDwell [4]time.Duration

	// TierSpeed is the paw-cycle period per typing tier, indexed
	// TypingSlow..TypingStreak.
	TierSpeed [4]time.Duration

	// EffectInterval is the frame period for the cyclic effects layer
	// (sleepy drift in IdleStage4, click cadence bookkeeping in TypingFast).
	EffectInterval time.Duration
}

// DefaultTimings mirrors the firmware constants: 200ms blinks roughly every
// 5s, 500ms ear twitches roughly every 20s, 2s typing timeout, 1s effect
// cycle, and paw periods stepping down from 250ms (slow) to 80ms (streak).
func DefaultTimings() Timings {
	return Timings{
		BlinkInterval:       5 * time.Second,
		BlinkIntervalSleepy: 8 * time.Second,
		BlinkDuration:       200 * time.Millisecond,
		EarTwitchInterval:   20 * time.Second,
		EarTwitchDuration:   500 * time.Millisecond,
		TypingTimeout:       2 * time.Second,
		IdleDwell: [4]time.Duration{
			45 * time.Second,
			30 * time.Second,
			15 * time.Second,
			30 * time.Second,
		},
		TierSpeed: [4]time.Duration{
			250 * time.Millisecond,
			150 * time.Millisecond,
			100 * time.Millisecond,
			80 * time.Millisecond,
		},
		EffectInterval: time.Second,
	}
}

// blinkInterval returns the blink pause for the given non-overlay state.
func (t Timings) blinkInterval(s State) time.Duration {
	if s == IdleStage3 || s == IdleStage4 {
		return t.BlinkIntervalSleepy
	}
	return t.BlinkInterval
}

// tierSpeed returns the paw-cycle period for a typing tier.
// Callers must check IsTyping first.
func (t Timings) tierSpeed(s State) time.Duration {
	return t.TierSpeed[s-TypingSlow]
}
