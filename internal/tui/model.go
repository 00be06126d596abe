package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pawsd/deskcat/internal/device"
	"github.com/pawsd/deskcat/internal/events"
	"github.com/pawsd/deskcat/internal/settings"
	"github.com/pawsd/deskcat/internal/sprites"
)

// framesPerSecond drives both the snapshot poll and the meter spring.
const framesPerSecond = 20

// frameInterval is the render tick period.
const frameInterval = time.Second / framesPerSecond

// Layout size constants.
const (
	minWidth  = 50
	minHeight = 18

	// catPaneWidth is the inner width of the cat pane, sized to the
	// sprite canvas plus padding.
	catPaneWidth = sprites.Width + 4
)

// eventLine is a formatted log entry ready for the viewport.
type eventLine struct {
	Text  string
	Style lipgloss.Style
}

// model is the bubbletea model for the TUI.
type model struct {
	// Data sources
	snaps     SnapshotProvider
	sets      SettingsProvider
	atlas     *sprites.Atlas
	eventChan <-chan events.Event

	// Frame state
	snap     device.Snapshot
	settings settings.Settings
	now      time.Time
	meter    wpmMeter

	// Event log
	eventLines []eventLine
	log        viewport.Model
	logReady   bool
	autoScroll bool

	// UI state
	width  int
	height int

	// Callbacks
	onPause  func()
	onResume func()
	onLabels func(showClock, showStats bool)
	onQuit   func()
}

// eventMsg wraps an event for the bubbletea message system.
type eventMsg events.Event

// newModel creates a model with the given configuration.
func newModel(
	snaps SnapshotProvider,
	sets SettingsProvider,
	atlas *sprites.Atlas,
	eventChan <-chan events.Event,
	onPause, onResume func(),
	onLabels func(showClock, showStats bool),
	onQuit func(),
) model {
	m := model{
		snaps:      snaps,
		sets:       sets,
		atlas:      atlas,
		eventChan:  eventChan,
		now:        time.Now(),
		meter:      newWPMMeter(),
		autoScroll: true,
		onPause:    onPause,
		onResume:   onResume,
		onLabels:   onLabels,
		onQuit:     onQuit,
	}
	if snaps != nil {
		m.snap = snaps.Snapshot()
	}
	if sets != nil {
		m.settings = sets.Get()
	}
	return m
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(
		waitForEvent(m.eventChan),
		doFrame(),
		tea.EnterAltScreen,
	)
}

// logHeight returns the viewport height for the current terminal size.
// Height minus: container border (2), header (1), meter line (1), cat
// pane (canvas + its border), dividers (2), footer (1).
func (m model) logHeight() int {
	used := 2 + 1 + 1 + (sprites.Height + 2) + 2 + 1
	return max(1, m.height-used)
}

// logWidth returns the viewport width inside the container border.
func (m model) logWidth() int {
	return safeWidth(m.width - 4)
}

// nextLabelCycle returns the label visibility following the current one.
// Pressing 's' walks both labels on, clock only, stats only, both off.
func nextLabelCycle(showClock, showStats bool) (bool, bool) {
	switch {
	case showClock && showStats:
		return true, false
	case showClock:
		return false, true
	case showStats:
		return false, false
	default:
		return true, true
	}
}
