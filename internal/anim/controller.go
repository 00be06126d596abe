package anim

import "time"

// Controller owns the animation state register: the current state, the
// per-effect deadlines and frame counters, and the policy flags. All state
// is fixed-size; Update and SetState are the only mutators.
//
// The caller must supply a single monotonic, non-decreasing clock. A
// timestamp that goes backwards is a contract violation and the resulting
// behavior is undefined; the controller does not clamp.
type Controller struct {
	timings Timings

	state      State
	prevState  State // state to restore when an overlay ends
	stateStart time.Time

	blinking   bool
	blinkTimer time.Time // interval base: last blink end (or init/cancel)
	blinkStart time.Time

	twitching   bool
	twitchTimer time.Time
	twitchStart time.Time

	pawActive bool
	pawFrame  int // 0..3: left down, up, right down, up
	pawTimer  time.Time
	pawSpeed  time.Duration

	effectFrame int // 0..2, cyclic
	effectTimer time.Time

	idleProgression bool
	lastActivity    time.Time
	streakMode      bool
	clickLeft       bool // alternates the click overlay side per paw strike
}

// New returns a Controller with the given timings. Init must be called with
// the caller's epoch before the first Update.
func New(timings Timings) *Controller {
	return &Controller{timings: timings}
}

// Init resets every timer to now, clears all transient flags, and enters
// IdleStage1 with automatic idle progression enabled.
func (c *Controller) Init(now time.Time) {
	c.state = IdleStage1
	c.prevState = IdleStage1
	c.stateStart = now
	c.blinking = false
	c.blinkTimer = now
	c.blinkStart = time.Time{}
	c.twitching = false
	c.twitchTimer = now
	c.twitchStart = time.Time{}
	c.pawActive = false
	c.pawFrame = 0
	c.pawTimer = now
	c.pawSpeed = c.timings.TierSpeed[0]
	c.effectFrame = 0
	c.effectTimer = now
	c.idleProgression = true
	c.lastActivity = now
	c.streakMode = false
	c.clickLeft = false
}

// State returns the current state, including overlay states.
func (c *Controller) State() State {
	return c.state
}

// SetTimings replaces the timing table. In-flight deadlines are judged
// against the new values on the next Update; counters are not reset.
func (c *Controller) SetTimings(t Timings) {
	c.timings = t
	if c.pawActive {
		c.pawSpeed = t.tierSpeed(c.EffectiveState())
	}
}

// EffectiveState returns the state the character is logically in: the
// pre-overlay state while a blink or ear twitch is running, the current
// state otherwise.
func (c *Controller) EffectiveState() State {
	if c.state.IsOverlay() {
		return c.prevState
	}
	return c.state
}

// StreakMode reports whether the last explicit transition targeted
// TypingStreak.
func (c *Controller) StreakMode() bool {
	return c.streakMode
}

// IdleProgression reports whether automatic idle-stage advancement is on.
func (c *Controller) IdleProgression() bool {
	return c.idleProgression
}

// SetIdleProgression toggles automatic idle-stage advancement.
func (c *Controller) SetIdleProgression(on bool) {
	c.idleProgression = on
}

// PawFrame returns the current position in the 4-step paw cycle.
func (c *Controller) PawFrame() int {
	return c.pawFrame
}

// Update advances the state machine to now. It fires overlay transitions
// whose deadlines have elapsed, applies the typing timeout and idle
// progression policies, and advances the paw and effect counters. Calling
// it twice with the same timestamp is a no-op the second time.
func (c *Controller) Update(now time.Time) {
	// Overlay bookkeeping. Blink is checked before ear twitch, so on
	// coincident deadlines the blink fires and the twitch waits for the
	// next eligible tick.
	if c.blinking && now.Sub(c.blinkStart) >= c.timings.BlinkDuration {
		c.blinking = false
		c.state = c.prevState
		c.blinkTimer = now
	} else if !c.blinking && !c.twitching && !c.state.IsOverlay() &&
		now.Sub(c.blinkTimer) >= c.timings.blinkInterval(c.state) {
		c.startBlink(now)
	}

	if c.twitching && now.Sub(c.twitchStart) >= c.timings.EarTwitchDuration {
		c.twitching = false
		c.state = c.prevState
		c.twitchTimer = now
	} else if !c.twitching && !c.blinking && !c.state.IsOverlay() &&
		now.Sub(c.twitchTimer) >= c.timings.EarTwitchInterval {
		c.startTwitch(now)
	}

	// Typing cools down to IdleStage1 on inactivity. The check reads the
	// literal current state, so an in-flight overlay defers the timeout to
	// the tick after it ends.
	if c.state.IsTyping() && now.Sub(c.lastActivity) >= c.timings.TypingTimeout {
		c.SetState(IdleStage1, now)
		c.idleProgression = true
	}

	// Automatic idle progression 1→2→3→4→1.
	if c.idleProgression && c.state.IsIdle() &&
		now.Sub(c.stateStart) >= c.timings.IdleDwell[c.state.idleStage()] {
		next := c.state + 1
		if next > IdleStage4 {
			next = IdleStage1
		}
		c.SetState(next, now)
	}

	// Paw cycle: catch-up advancement so a late tick replays every missed
	// step at the configured cadence instead of collapsing them into one.
	if c.pawActive && c.pawSpeed > 0 {
		for now.Sub(c.pawTimer) >= c.pawSpeed {
			c.pawTimer = c.pawTimer.Add(c.pawSpeed)
			c.pawFrame = (c.pawFrame + 1) % 4
			if c.pawFrame%2 == 0 {
				// Entered a down frame: alternate the click side.
				c.clickLeft = !c.clickLeft
			}
		}
	}

	// Effects frame, only while the active layer set carries an effect
	// overlay (sleepy drift in stage 4, click bookkeeping in fast typing).
	if c.effectsActive() && c.timings.EffectInterval > 0 {
		for now.Sub(c.effectTimer) >= c.timings.EffectInterval {
			c.effectTimer = c.effectTimer.Add(c.timings.EffectInterval)
			c.effectFrame = (c.effectFrame + 1) % 3
		}
	}
}

// SetState forces an explicit transition, superseding any in-flight overlay.
// It reconfigures the paw cadence for the target, records typing activity
// when the target is a typing tier, and updates streak mode.
func (c *Controller) SetState(state State, now time.Time) {
	if state.IsOverlay() {
		// Explicit overlay request: behave like a deadline firing now.
		if c.state.IsOverlay() {
			return
		}
		if state == Blinking {
			c.startBlink(now)
		} else {
			c.startTwitch(now)
		}
		return
	}

	// Cancel an in-flight overlay; its interval restarts from now so the
	// next one is not immediately due.
	if c.blinking {
		c.blinking = false
		c.blinkTimer = now
	}
	if c.twitching {
		c.twitching = false
		c.twitchTimer = now
	}

	c.state = state
	c.prevState = state
	c.stateStart = now
	c.streakMode = state == TypingStreak

	if state.IsTyping() {
		c.lastActivity = now
		c.pawActive = true
		c.pawFrame = 0
		c.pawTimer = now
		c.pawSpeed = c.timings.tierSpeed(state)
		c.idleProgression = false
	} else {
		c.pawActive = false
	}

	if state == IdleStage4 || state == TypingFast {
		c.effectTimer = now
		c.effectFrame = 0
	}
}

// NotifyActivity requests a transition into a typing tier. A request that
// does not change the effective tier only refreshes the activity clock,
// avoiding paw-timer churn mid-burst.
func (c *Controller) NotifyActivity(tier State, now time.Time) {
	if !tier.IsTyping() {
		return
	}
	c.lastActivity = now
	if c.EffectiveState() == tier {
		return
	}
	c.SetState(tier, now)
}

func (c *Controller) startBlink(now time.Time) {
	c.prevState = c.state
	c.state = Blinking
	c.blinking = true
	c.blinkStart = now
}

func (c *Controller) startTwitch(now time.Time) {
	c.prevState = c.state
	c.state = EarTwitch
	c.twitching = true
	c.twitchStart = now
}

// effectsActive reports whether the effective state's layer set includes a
// cyclic effect overlay.
func (c *Controller) effectsActive() bool {
	s := c.EffectiveState()
	return s == IdleStage4 || s == TypingFast
}
