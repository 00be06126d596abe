package tui

import (
	"strings"

	"github.com/charmbracelet/harmonica"
)

// Meter constants. The spring gives the WPM bar the eased sweep of a
// physical needle instead of snapping between samples.
const (
	meterFPS = framesPerSecond

	// Spring physics parameters. Critically damped so the needle never
	// overshoots the sample.
	meterAngularFrequency = 6.0
	meterDampingRatio     = 1.0

	// meterMaxWPM is the speed that pegs the bar.
	meterMaxWPM = 150

	meterFilled = "█"
	meterEmpty  = "░"
)

// wpmMeter animates the typing-speed bar with spring physics.
type wpmMeter struct {
	spring   harmonica.Spring
	position float64
	velocity float64
	target   float64
}

// newWPMMeter creates a meter at rest on zero.
func newWPMMeter() wpmMeter {
	return wpmMeter{
		spring: harmonica.NewSpring(harmonica.FPS(meterFPS), meterAngularFrequency, meterDampingRatio),
	}
}

// SetTarget points the needle at a new sample. Values are clamped to the
// meter range.
func (m *wpmMeter) SetTarget(wpm int) {
	t := float64(wpm)
	if t < 0 {
		t = 0
	}
	if t > meterMaxWPM {
		t = meterMaxWPM
	}
	m.target = t
}

// Update advances the spring one frame.
func (m *wpmMeter) Update() {
	m.position, m.velocity = m.spring.Update(m.position, m.velocity, m.target)
}

// Render draws the bar at the given cell width.
func (m wpmMeter) Render(width int) string {
	if width < 1 {
		width = 1
	}
	pos := m.position
	if pos < 0 {
		pos = 0
	}
	filled := int(pos/meterMaxWPM*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	return strings.Repeat(meterFilled, filled) + strings.Repeat(meterEmpty, width-filled)
}
