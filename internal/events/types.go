// Package events defines the event taxonomy and base structures for the
// deskcat event system. Every component that changes visible state emits
// here; the TUI, the JSONL log, and the `events` command all consume the
// same stream.
package events

import "time"

// EventType identifies the category and nature of an event.
type EventType string

const (
	// Device lifecycle events
	EventDeviceStart EventType = "device.start"
	EventDeviceStop  EventType = "device.stop"

	// Host protocol events
	EventCommandReceived EventType = "command.received"

	// Animation events
	EventStateChanged EventType = "anim.state"

	// Display data events
	EventStatsUpdated EventType = "stats.updated"
	EventClockUpdated EventType = "clock.updated"

	// Settings events
	EventSettingsUpdated EventType = "settings.updated"
	EventSettingsSaved   EventType = "settings.saved"

	// Error events
	EventError EventType = "error"
)

// Source constants identify the origin of events.
const (
	SourceHost     = "host"
	SourceDevice   = "device"
	SourceInternal = "deskcat"
)

// Event is the base interface for all events in the system.
type Event interface {
	Type() EventType
	Timestamp() time.Time
	Source() string
}

// BaseEvent provides the common fields for all events.
type BaseEvent struct {
	EventType EventType `json:"type"`
	Time      time.Time `json:"timestamp"`
	Src       string    `json:"source"`
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.Time
}

// Source returns the origin of the event.
func (e BaseEvent) Source() string {
	return e.Src
}

// DeviceStartEvent is emitted when the simulated device starts ticking.
type DeviceStartEvent struct {
	BaseEvent
	TickInterval time.Duration `json:"tick_interval"`
	ConfigPath   string        `json:"config_path,omitempty"`
}

// DeviceStopEvent is emitted when the device loop shuts down.
type DeviceStopEvent struct {
	BaseEvent
	Reason string `json:"reason,omitempty"`
}

// CommandReceivedEvent is emitted for every host command the device accepts.
type CommandReceivedEvent struct {
	BaseEvent
	Command string `json:"command"`
	Arg     string `json:"arg,omitempty"`
}

// StateChangedEvent is emitted when the animation controller transitions
// between base states. Overlay starts and ends are not reported; they do
// not change the underlying state.
type StateChangedEvent struct {
	BaseEvent
	From   string `json:"from"`
	To     string `json:"to"`
	Streak bool   `json:"streak,omitempty"`
}

// StatsUpdatedEvent carries the host's system stats for the header row.
type StatsUpdatedEvent struct {
	BaseEvent
	CPU int `json:"cpu"`
	RAM int `json:"ram"`
	WPM int `json:"wpm"`
}

// ClockUpdatedEvent carries the host's formatted clock string.
type ClockUpdatedEvent struct {
	BaseEvent
	Display string `json:"display"`
}

// SettingsUpdatedEvent is emitted when a setting changes in memory.
type SettingsUpdatedEvent struct {
	BaseEvent
	Field string `json:"field"`
	Value string `json:"value"`
}

// SettingsSavedEvent is emitted after settings are persisted.
type SettingsSavedEvent struct {
	BaseEvent
	Path string `json:"path"`
}

// Severity constants for error events.
const (
	SeverityWarning = "warning"
	SeverityError   = "error"
	SeverityFatal   = "fatal"
)

// ErrorEvent is emitted for any error condition.
type ErrorEvent struct {
	BaseEvent
	Message  string            `json:"message"`
	Severity string            `json:"severity"`
	Context  map[string]string `json:"context,omitempty"`
}

// NewEvent creates a BaseEvent with the given type and source.
func NewEvent(eventType EventType, source string) BaseEvent {
	return BaseEvent{
		EventType: eventType,
		Time:      time.Now(),
		Src:       source,
	}
}

// NewHostEvent creates a BaseEvent with the host as the source.
func NewHostEvent(eventType EventType) BaseEvent {
	return NewEvent(eventType, SourceHost)
}

// NewDeviceEvent creates a BaseEvent with the device as the source.
func NewDeviceEvent(eventType EventType) BaseEvent {
	return NewEvent(eventType, SourceDevice)
}

// NewInternalEvent creates a BaseEvent sourced from deskcat itself.
func NewInternalEvent(eventType EventType) BaseEvent {
	return NewEvent(eventType, SourceInternal)
}
