package tui

import (
	"strings"
	"testing"
)

func TestMeterConvergesToTarget(t *testing.T) {
	m := newWPMMeter()
	m.SetTarget(100)

	// A critically damped spring settles well within a few seconds of frames.
	for i := 0; i < meterFPS*5; i++ {
		m.Update()
	}

	if m.position < 95 || m.position > 105 {
		t.Errorf("position = %.2f after settling, want ~100", m.position)
	}
}

func TestMeterClampsTarget(t *testing.T) {
	m := newWPMMeter()

	m.SetTarget(-5)
	if m.target != 0 {
		t.Errorf("target = %.1f for negative sample, want 0", m.target)
	}

	m.SetTarget(9000)
	if m.target != meterMaxWPM {
		t.Errorf("target = %.1f for huge sample, want %d", m.target, meterMaxWPM)
	}
}

func TestMeterRender(t *testing.T) {
	m := newWPMMeter()

	if got := m.Render(10); got != strings.Repeat(meterEmpty, 10) {
		t.Errorf("Render(10) at rest = %q, want all empty", got)
	}

	m.position = meterMaxWPM
	if got := m.Render(10); got != strings.Repeat(meterFilled, 10) {
		t.Errorf("Render(10) pegged = %q, want all filled", got)
	}

	m.position = meterMaxWPM / 2
	got := m.Render(10)
	if filled := strings.Count(got, meterFilled); filled != 5 {
		t.Errorf("Render(10) at half = %q, want 5 filled cells", got)
	}
}

func TestMeterRenderMinWidth(t *testing.T) {
	m := newWPMMeter()
	if got := m.Render(0); len([]rune(got)) != 1 {
		t.Errorf("Render(0) = %q, want single cell", got)
	}
}
