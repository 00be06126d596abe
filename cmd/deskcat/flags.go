package main

// Flag names for Viper binding
const (
	// Global flags
	FlagVerbose    = "verbose"
	FlagConfig     = "config"
	FlagLogFile    = "log-file"
	FlagEventLog   = "event-log"
	FlagSocketPath = "socket-path"

	// Start command flags
	FlagDaemon       = "daemon"
	FlagTUI          = "tui"
	FlagSleepTimeout = "sleep-timeout"
	FlagSensitivity  = "sensitivity"

	// Events command flags
	FlagFollow = "follow"
	FlagCount  = "count"

	// Output format flags
	FlagJSON = "json"
)
