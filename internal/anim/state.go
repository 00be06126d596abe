// Package anim implements the deskcat animation state machine: a
// deterministic, poll-driven controller that coordinates idle progression,
// typing cadence, blinking, ear twitches, and visual effects into a
// per-frame selection of sprites across five fixed layers.
//
// The controller performs no I/O and never reads a clock; every entry point
// takes the caller's monotonic timestamp. It is owned by a single render
// loop and is not safe for concurrent use.
package anim

// State is the high-level animation state. Exactly one is current at any
// time. Blinking and EarTwitch are transient overlays: they preempt the
// active state for a fixed duration and then restore it.
type State uint8

const (
	IdleStage1 State = iota
	IdleStage2
	IdleStage3
	IdleStage4
	TypingSlow
	TypingNormal
	TypingFast
	TypingStreak
	Blinking
	EarTwitch
)

var stateNames = [...]string{
	IdleStage1:   "idle_stage1",
	IdleStage2:   "idle_stage2",
	IdleStage3:   "idle_stage3",
	IdleStage4:   "idle_stage4",
	TypingSlow:   "typing_slow",
	TypingNormal: "typing_normal",
	TypingFast:   "typing_fast",
	TypingStreak: "typing_streak",
	Blinking:     "blinking",
	EarTwitch:    "ear_twitch",
}

// String returns the snake_case name used in events and logs.
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// ParseState returns the state named by its snake_case name.
func ParseState(name string) (State, bool) {
	for i, n := range stateNames {
		if n == name {
			return State(i), true
		}
	}
	return IdleStage1, false
}

// IsIdle reports whether s is one of the four idle stages.
func (s State) IsIdle() bool {
	return s >= IdleStage1 && s <= IdleStage4
}

// IsTyping reports whether s is one of the typing tiers.
func (s State) IsTyping() bool {
	return s >= TypingSlow && s <= TypingStreak
}

// IsOverlay reports whether s is a transient overlay state.
func (s State) IsOverlay() bool {
	return s == Blinking || s == EarTwitch
}

// idleStage returns the zero-based stage index for an idle state.
// Callers must check IsIdle first.
func (s State) idleStage() int {
	return int(s - IdleStage1)
}

// Layer identifies one of the five fixed drawing slots, composited
// back-to-front in declaration order.
type Layer uint8

const (
	LayerBody Layer = iota
	LayerFace
	LayerTable
	LayerPaws
	LayerEffects

	NumLayers = 5
)

var layerNames = [NumLayers]string{"body", "face", "table", "paws", "effects"}

// String returns the layer name.
func (l Layer) String() string {
	if int(l) < NumLayers {
		return layerNames[l]
	}
	return "unknown"
}

// SpriteID is a symbolic handle to a pre-decoded sprite. The controller only
// selects IDs; resolving them to drawable frames is the asset table's job.
// The empty ID means the layer is inactive this frame.
type SpriteID string

// None marks an inactive layer.
const None SpriteID = ""

// Sprite IDs emitted by the controller. The asset table must bind every one
// of these at startup.
const (
	SpriteBodyStandard  SpriteID = "body_standard"
	SpriteBodyEarTwitch SpriteID = "body_ear_twitch"

	SpriteFaceStock  SpriteID = "face_stock"
	SpriteFaceSleepy SpriteID = "face_sleepy"
	SpriteFaceHappy  SpriteID = "face_happy"
	SpriteFaceBlink  SpriteID = "face_blink"

	SpriteTable SpriteID = "table"

	SpritePawsUp       SpriteID = "paws_up"
	SpritePawLeftDown  SpriteID = "paw_left_down"
	SpritePawRightDown SpriteID = "paw_right_down"

	SpriteEffectClickLeft  SpriteID = "effect_click_left"
	SpriteEffectClickRight SpriteID = "effect_click_right"
	SpriteEffectSleepy1    SpriteID = "effect_sleepy1"
	SpriteEffectSleepy2    SpriteID = "effect_sleepy2"
	SpriteEffectSleepy3    SpriteID = "effect_sleepy3"
)

// Selection maps each layer to its active sprite for one frame.
// Index by Layer; composite in increasing layer order.
type Selection [NumLayers]SpriteID

// Sink receives the per-layer selections in Z-order. Implementations draw
// each sprite at the fixed screen position implied by its layer.
type Sink interface {
	Draw(layer Layer, sprite SpriteID)
}
