package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/pawsd/deskcat/internal/events"
)

// styles contains all lipgloss styles used by the TUI.
var styles = struct {
	// Layout styles
	Container lipgloss.Style
	CatPane   lipgloss.Style
	Divider   lipgloss.Style

	// Header styles
	StateBadge  lipgloss.Style
	StreakBadge lipgloss.Style
	Label       lipgloss.Style
	Clock       lipgloss.Style
	Meter       lipgloss.Style

	// Footer style
	Footer lipgloss.Style

	// Event styles
	Command  lipgloss.Style
	State    lipgloss.Style
	Stats    lipgloss.Style
	Settings lipgloss.Style
	Error    lipgloss.Style

	// State badge colors
	StateIdle   lipgloss.Style
	StateTyping lipgloss.Style
	StateStreak lipgloss.Style
	StatePaused lipgloss.Style
}{
	// Layout styles
	Container: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")),

	CatPane: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("137")).
		Padding(0, 1),

	Divider: lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")),

	// Header styles
	StateBadge: lipgloss.NewStyle().
		Bold(true),

	StreakBadge: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("213")),

	Label: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")),

	Clock: lipgloss.NewStyle().
		Foreground(lipgloss.Color("220")),

	Meter: lipgloss.NewStyle().
		Foreground(lipgloss.Color("114")),

	// Footer style
	Footer: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")),

	// Event styles
	Command: lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")),

	State: lipgloss.NewStyle().
		Foreground(lipgloss.Color("114")),

	Stats: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")),

	Settings: lipgloss.NewStyle().
		Foreground(lipgloss.Color("177")),

	Error: lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")),

	// State badge colors
	StateIdle: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("245")),

	StateTyping: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("82")),

	StateStreak: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("213")),

	StatePaused: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("214")),
}

// StyleForEvent returns the log style for an event type.
func StyleForEvent(event events.Event) lipgloss.Style {
	if event == nil {
		return styles.Command
	}

	switch event.(type) {
	case *events.CommandReceivedEvent:
		return styles.Command
	case *events.StateChangedEvent:
		return styles.State
	case *events.StatsUpdatedEvent, *events.ClockUpdatedEvent:
		return styles.Stats
	case *events.SettingsUpdatedEvent, *events.SettingsSavedEvent:
		return styles.Settings
	case *events.DeviceStartEvent, *events.DeviceStopEvent:
		return styles.Settings
	case *events.ErrorEvent:
		return styles.Error
	default:
		return styles.Command
	}
}
