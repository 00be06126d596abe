package events

import (
	"strings"
	"testing"
	"time"
)

func TestFormatCoversAllEventTypes(t *testing.T) {
	base := NewDeviceEvent(EventError)

	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{"device start", &DeviceStartEvent{BaseEvent: base, TickInterval: 25 * time.Millisecond}, "device started: tick 25ms"},
		{"device stop", &DeviceStopEvent{BaseEvent: base, Reason: "shutdown requested"}, "device stopped: shutdown requested"},
		{"device stop no reason", &DeviceStopEvent{BaseEvent: base}, "device stopped"},
		{"command with arg", &CommandReceivedEvent{BaseEvent: base, Command: "SPEED", Arg: "120"}, "command: SPEED 120"},
		{"command bare", &CommandReceivedEvent{BaseEvent: base, Command: "STOP"}, "command: STOP"},
		{"state change", &StateChangedEvent{BaseEvent: base, From: "idle_stage_1", To: "typing_slow"}, "state: idle_stage_1 -> typing_slow"},
		{"state change streak", &StateChangedEvent{BaseEvent: base, From: "typing_fast", To: "typing_streak", Streak: true}, "state: typing_fast -> typing_streak (streak)"},
		{"stats", &StatsUpdatedEvent{BaseEvent: base, CPU: 42, RAM: 61, WPM: 88}, "stats: cpu 42% ram 61% wpm 88"},
		{"clock", &ClockUpdatedEvent{BaseEvent: base, Display: "14:05"}, "clock: 14:05"},
		{"settings updated", &SettingsUpdatedEvent{BaseEvent: base, Field: "sensitivity", Value: "1.5"}, "setting sensitivity = 1.5"},
		{"settings saved", &SettingsSavedEvent{BaseEvent: base, Path: "/tmp/settings.json"}, "settings saved: /tmp/settings.json"},
		{"error", &ErrorEvent{BaseEvent: base, Message: "socket gone", Severity: SeverityWarning}, "WARNING: socket gone"},
		{"error default severity", &ErrorEvent{BaseEvent: base, Message: "boom"}, "ERROR: boom"},
	}

	for _, tc := range tests {
		if got := Format(tc.event); got != tc.want {
			t.Errorf("%s: Format() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestFormatNilAndUnknown(t *testing.T) {
	if got := Format(nil); got != "" {
		t.Errorf("Format(nil) = %q, want empty", got)
	}
	if got := Format(BaseEvent{}); got != "" {
		t.Errorf("Format(BaseEvent) = %q, want empty", got)
	}
}

func TestFormatWithTimestamp(t *testing.T) {
	event := &ClockUpdatedEvent{
		BaseEvent: BaseEvent{
			EventType: EventClockUpdated,
			Time:      time.Date(2026, 3, 1, 9, 30, 15, 0, time.UTC),
			Src:       SourceHost,
		},
		Display: "09:30",
	}
	want := "[09:30:15] clock: 09:30"
	if got := FormatWithTimestamp(event); got != want {
		t.Errorf("FormatWithTimestamp() = %q, want %q", got, want)
	}
}

func TestFormatWithTimestampUnknownFallsBackToType(t *testing.T) {
	event := BaseEvent{
		EventType: EventDeviceStart,
		Time:      time.Date(2026, 3, 1, 9, 30, 15, 0, time.UTC),
		Src:       SourceDevice,
	}
	if got := FormatWithTimestamp(event); !strings.Contains(got, string(EventDeviceStart)) {
		t.Errorf("FormatWithTimestamp() = %q, want type name fallback", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is far too long", 10, "this is..."},
		{"x", 2, "..."},
	}
	for _, tc := range tests {
		if got := Truncate(tc.in, tc.maxLen); got != tc.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tc.in, tc.maxLen, got, tc.want)
		}
	}
}

func TestSafeString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"line\none", "line one"},
		{"tab\there", "tabhere"},
		{"  padded  out  ", "padded out"},
	}
	for _, tc := range tests {
		if got := SafeString(tc.in); got != tc.want {
			t.Errorf("SafeString(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
