package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pawsd/deskcat/internal/events"
)

const (
	// maxEventLines is the maximum number of log lines to keep.
	maxEventLines = 1000
	// trimEventLines is the number of lines dropped when the buffer
	// exceeds the max.
	trimEventLines = 100
)

// channelClosedMsg signals that the event channel was closed.
type channelClosedMsg struct{}

// frameMsg signals a render tick.
type frameMsg time.Time

// waitForEvent creates a command that waits for the next event from the
// channel. Returns channelClosedMsg if the channel is closed.
func waitForEvent(ch <-chan events.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return channelClosedMsg{}
		}
		return eventMsg(event)
	}
}

// doFrame creates a command that waits one frame interval and sends a
// frameMsg.
func doFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.logReady {
			m.log = viewport.New(m.logWidth(), m.logHeight())
			m.logReady = true
			m.refreshLog()
		} else {
			m.log.Width = m.logWidth()
			m.log.Height = m.logHeight()
		}
		return m, nil

	case eventMsg:
		m.handleEvent(events.Event(msg))
		return m, waitForEvent(m.eventChan)

	case channelClosedMsg:
		// Event source gone, the daemon is shutting down.
		if m.onQuit != nil {
			m.onQuit()
		}
		return m, tea.Quit

	case frameMsg:
		m.handleFrame(time.Time(msg))
		return m, doFrame()

	default:
		return m, nil
	}
}

// handleKey processes keyboard input.
func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.onQuit != nil {
			m.onQuit()
		}
		return m, tea.Quit

	case "p":
		if m.onPause != nil {
			m.onPause()
		}
		return m, nil

	case "r":
		if m.onResume != nil {
			m.onResume()
		}
		return m, nil

	case "s":
		showClock, showStats := nextLabelCycle(m.settings.ShowClock, m.settings.ShowStats)
		if m.onLabels != nil {
			m.onLabels(showClock, showStats)
		}
		m.settings.ShowClock = showClock
		m.settings.ShowStats = showStats
		return m, nil

	case "up", "k", "down", "j", "pgup", "pgdown":
		if !m.logReady {
			return m, nil
		}
		var cmd tea.Cmd
		m.log, cmd = m.log.Update(msg)
		m.autoScroll = m.log.AtBottom()
		return m, cmd

	case "home", "g":
		if m.logReady {
			m.log.GotoTop()
			m.autoScroll = false
		}
		return m, nil

	case "end", "G":
		if m.logReady {
			m.log.GotoBottom()
			m.autoScroll = true
		}
		return m, nil

	default:
		return m, nil
	}
}

// handleEvent appends a formatted event to the log.
func (m *model) handleEvent(event events.Event) {
	text := events.FormatWithTimestamp(event)
	if text == "" {
		return
	}

	m.eventLines = append(m.eventLines, eventLine{
		Text:  text,
		Style: StyleForEvent(event),
	})

	if len(m.eventLines) > maxEventLines {
		m.eventLines = m.eventLines[trimEventLines:]
	}

	m.refreshLog()
}

// handleFrame pulls a fresh snapshot and advances the meter spring.
func (m *model) handleFrame(now time.Time) {
	m.now = now
	if m.snaps != nil {
		m.snap = m.snaps.Snapshot()
	}
	if m.sets != nil {
		m.settings = m.sets.Get()
	}
	m.meter.SetTarget(m.snap.WPM)
	m.meter.Update()
}

// refreshLog re-renders the viewport content from the line buffer.
func (m *model) refreshLog() {
	if !m.logReady {
		return
	}
	lines := make([]string, len(m.eventLines))
	for i, el := range m.eventLines {
		lines[i] = el.Style.Render(el.Text)
	}
	m.log.SetContent(strings.Join(lines, "\n"))
	if m.autoScroll {
		m.log.GotoBottom()
	}
}
