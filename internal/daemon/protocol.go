package daemon

import "github.com/pawsd/deskcat/internal/device"

// Request represents a JSON-RPC request from a client.
type Request struct {
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
	ID     int    `json:"id,omitempty"`
}

// Response represents a JSON-RPC response to a client.
type Response struct {
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
	ID     int    `json:"id,omitempty"`
}

// StatusResponse contains daemon and device status information.
type StatusResponse struct {
	device.Snapshot
	Uptime    string `json:"uptime"`
	StartTime string `json:"start_time"`
	PID       int    `json:"pid"`
}

// SpeedParams carries a typing speed sample.
type SpeedParams struct {
	Speed int `json:"speed"`
}

// StreakParams toggles forced streak mode.
type StreakParams struct {
	On bool `json:"on"`
}

// StatsParams carries the host system stats.
type StatsParams struct {
	CPU int `json:"cpu"`
	RAM int `json:"ram"`
	WPM int `json:"wpm"`
}

// ClockParams carries the formatted clock string.
type ClockParams struct {
	Display string `json:"display"`
}

// AnimParams names a state to force.
type AnimParams struct {
	State string `json:"state"`
}

// SensitivityParams carries the typing sensitivity.
type SensitivityParams struct {
	Value float64 `json:"value"`
}

// SleepTimeoutParams carries the sleep timeout in minutes.
type SleepTimeoutParams struct {
	Minutes int `json:"minutes"`
}

// CommandParams carries one raw wire-protocol line.
type CommandParams struct {
	Line string `json:"line"`
}

// CommandResult carries the device's reply to a raw command.
type CommandResult struct {
	Reply string `json:"reply"`
}
