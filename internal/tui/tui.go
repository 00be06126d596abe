// Package tui renders the desk companion in a terminal using bubbletea.
// It plays the role of the device's LCD panel: the cat pane shows the
// composited sprite frame, the header shows the stat labels the firmware
// drew along the top of the screen, and the log pane tails the event feed.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pawsd/deskcat/internal/device"
	"github.com/pawsd/deskcat/internal/events"
	"github.com/pawsd/deskcat/internal/settings"
	"github.com/pawsd/deskcat/internal/sprites"
)

// SnapshotProvider supplies the current render state. *device.Device
// satisfies it.
type SnapshotProvider interface {
	Snapshot() device.Snapshot
}

// SettingsProvider supplies the current display settings. *settings.Store
// satisfies it.
type SettingsProvider interface {
	Get() settings.Settings
}

// TUI is the terminal front end for a running device.
type TUI struct {
	snaps     SnapshotProvider
	sets      SettingsProvider
	atlas     *sprites.Atlas
	eventChan <-chan events.Event

	onPause  func()
	onResume func()
	onLabels func(showClock, showStats bool)
	onQuit   func()
}

// Option configures the TUI.
type Option func(*TUI)

// New creates a TUI reading frames from snaps and log lines from eventChan.
func New(snaps SnapshotProvider, sets SettingsProvider, atlas *sprites.Atlas, eventChan <-chan events.Event, opts ...Option) *TUI {
	t := &TUI{
		snaps:     snaps,
		sets:      sets,
		atlas:     atlas,
		eventChan: eventChan,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// WithOnPause sets the callback invoked when the user presses 'p'.
func WithOnPause(fn func()) Option {
	return func(t *TUI) {
		t.onPause = fn
	}
}

// WithOnResume sets the callback invoked when the user presses 'r'.
func WithOnResume(fn func()) Option {
	return func(t *TUI) {
		t.onResume = fn
	}
}

// WithOnLabels sets the callback invoked when the user cycles label
// visibility with 's'.
func WithOnLabels(fn func(showClock, showStats bool)) Option {
	return func(t *TUI) {
		t.onLabels = fn
	}
}

// WithOnQuit sets the callback invoked when the user presses 'q'.
func WithOnQuit(fn func()) Option {
	return func(t *TUI) {
		t.onQuit = fn
	}
}

// Run starts the TUI and blocks until it exits.
func (t *TUI) Run() error {
	m := newModel(t.snaps, t.sets, t.atlas, t.eventChan, t.onPause, t.onResume, t.onLabels, t.onQuit)

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
