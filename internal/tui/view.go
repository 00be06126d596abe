package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/pawsd/deskcat/internal/anim"
)

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.width < minWidth || m.height < minHeight {
		return m.renderTooSmall()
	}

	w := safeWidth(m.width - 4)

	var sections []string
	sections = append(sections, m.renderHeader(w))
	sections = append(sections, m.renderMeterLine(w))
	sections = append(sections, m.renderDivider(w))
	sections = append(sections, m.renderCat(w))
	sections = append(sections, m.renderDivider(w))
	sections = append(sections, m.renderLog())
	sections = append(sections, m.renderDivider(w))
	sections = append(sections, m.renderFooter())

	content := strings.Join(sections, "\n")

	rendered := styles.Container.
		Width(safeWidth(m.width - 2)).
		Render(content)

	return lipgloss.Place(m.width, m.height, lipgloss.Left, lipgloss.Top, rendered)
}

// renderTooSmall renders a minimal message for terminals that are too small.
func (m model) renderTooSmall() string {
	return fmt.Sprintf("Terminal too small (%dx%d). Need %dx%d minimum.",
		m.width, m.height, minWidth, minHeight)
}

// renderHeader renders the state badge, streak badge, and stat labels.
func (m model) renderHeader(w int) string {
	left := m.renderStateBadge()
	if m.snap.Streak {
		left = lipgloss.JoinHorizontal(lipgloss.Top, left, " ", styles.StreakBadge.Render("STREAK"))
	}

	var labels []string
	if m.settings.ShowStats {
		labels = append(labels,
			styles.Label.Render(fmt.Sprintf("cpu %d%%", m.snap.CPU)),
			styles.Label.Render(fmt.Sprintf("ram %d%%", m.snap.RAM)),
		)
	}
	if m.settings.ShowClock {
		labels = append(labels, styles.Clock.Render(m.clockText()))
	}
	right := strings.Join(labels, "  ")

	gap := max(1, w-lipgloss.Width(left)-lipgloss.Width(right))
	return lipgloss.JoinHorizontal(lipgloss.Top, left, strings.Repeat(" ", gap), right)
}

// renderStateBadge renders the current state with its color.
func (m model) renderStateBadge() string {
	name := strings.ToUpper(m.snap.StateName)
	if m.snap.Paused {
		return styles.StatePaused.Render(name + " (PAUSED)")
	}

	var style lipgloss.Style
	switch {
	case m.snap.State == anim.TypingStreak:
		style = styles.StateStreak
	case m.snap.State.IsTyping():
		style = styles.StateTyping
	default:
		style = styles.StateIdle
	}
	return style.Render(name)
}

// renderMeterLine renders the spring-smoothed WPM bar, or a blank line
// when stats are hidden.
func (m model) renderMeterLine(w int) string {
	if !m.settings.ShowStats {
		return ""
	}
	label := styles.Label.Render(fmt.Sprintf("wpm %3d ", m.snap.WPM))
	barWidth := max(10, w-lipgloss.Width(label))
	return label + styles.Meter.Render(m.meter.Render(barWidth))
}

// renderCat renders the composited sprite frame, centered.
func (m model) renderCat(w int) string {
	lines := m.atlas.Composite(m.snap.Selection)
	pane := styles.CatPane.Render(strings.Join(lines, "\n"))
	return lipgloss.PlaceHorizontal(w, lipgloss.Center, pane)
}

// renderLog renders the event viewport.
func (m model) renderLog() string {
	if !m.logReady {
		return ""
	}
	return m.log.View()
}

// renderDivider renders a horizontal divider line.
func (m model) renderDivider(w int) string {
	return styles.Divider.Render(strings.Repeat("─", w))
}

// renderFooter renders keyboard shortcuts help text.
func (m model) renderFooter() string {
	var help string
	if m.snap.Paused {
		help = "r: resume  s: labels  q: quit  ↑/↓: scroll  g/G: top/bottom"
	} else {
		help = "p: pause  s: labels  q: quit  ↑/↓: scroll  g/G: top/bottom"
	}
	return styles.Footer.Render(help)
}

// clockText returns the clock label, preferring a host-pushed display
// string over local time.
func (m model) clockText() string {
	if m.snap.Clock != "" {
		return m.snap.Clock
	}
	return FormatClock(m.now, m.settings.Use24Hour)
}

// FormatClock formats a wall-clock label in the configured hour style.
func FormatClock(t time.Time, use24 bool) string {
	if use24 {
		return t.Format("15:04")
	}
	return t.Format("3:04 PM")
}

// safeWidth returns a width that is at least 1.
func safeWidth(w int) int {
	if w < 1 {
		return 1
	}
	return w
}
