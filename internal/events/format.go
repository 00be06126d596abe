package events

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	maxMessageLength  = 100
	truncateIndicator = "..."
)

// Format converts an event to a one-line human-readable string for the TUI
// log pane and the `events` command. Returns empty string for nil or
// unknown event types.
func Format(event Event) string {
	if event == nil {
		return ""
	}

	switch e := event.(type) {
	case *DeviceStartEvent:
		return fmt.Sprintf("device started: tick %s", e.TickInterval)
	case *DeviceStopEvent:
		if reason := SafeString(e.Reason); reason != "" {
			return fmt.Sprintf("device stopped: %s", reason)
		}
		return "device stopped"
	case *CommandReceivedEvent:
		if arg := SafeString(e.Arg); arg != "" {
			return fmt.Sprintf("command: %s %s", SafeString(e.Command), arg)
		}
		return fmt.Sprintf("command: %s", SafeString(e.Command))
	case *StateChangedEvent:
		line := fmt.Sprintf("state: %s -> %s", SafeString(e.From), SafeString(e.To))
		if e.Streak {
			line += " (streak)"
		}
		return line
	case *StatsUpdatedEvent:
		return fmt.Sprintf("stats: cpu %d%% ram %d%% wpm %d", e.CPU, e.RAM, e.WPM)
	case *ClockUpdatedEvent:
		return fmt.Sprintf("clock: %s", SafeString(e.Display))
	case *SettingsUpdatedEvent:
		return fmt.Sprintf("setting %s = %s", SafeString(e.Field), SafeString(e.Value))
	case *SettingsSavedEvent:
		return fmt.Sprintf("settings saved: %s", SafeString(e.Path))
	case *ErrorEvent:
		severity := SafeString(e.Severity)
		if severity == "" {
			severity = SeverityError
		}
		return fmt.Sprintf("%s: %s", strings.ToUpper(severity), Truncate(SafeString(e.Message), maxMessageLength))
	default:
		return ""
	}
}

// FormatWithTimestamp formats an event with a timestamp prefix.
func FormatWithTimestamp(event Event) string {
	if event == nil {
		return ""
	}
	ts := event.Timestamp().Format("15:04:05")
	detail := Format(event)
	if detail == "" {
		return fmt.Sprintf("[%s] %s", ts, event.Type())
	}
	return fmt.Sprintf("[%s] %s", ts, detail)
}

// Truncate shortens text to maxLen, adding an indicator if truncated.
func Truncate(s string, maxLen int) string {
	s = SafeString(s)
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= len(truncateIndicator) {
		return truncateIndicator
	}
	return s[:maxLen-len(truncateIndicator)] + truncateIndicator
}

// SafeString sanitizes a string for single-line display by flattening
// newlines and dropping control characters.
func SafeString(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r == ' ' || !unicode.IsControl(r) {
			sb.WriteRune(r)
		}
	}

	result := sb.String()
	for strings.Contains(result, "  ") {
		result = strings.ReplaceAll(result, "  ", " ")
	}
	return strings.TrimSpace(result)
}
