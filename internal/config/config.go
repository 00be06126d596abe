// Package config provides configuration types and defaults for deskcat.
package config

import "time"

// Config holds all configuration for deskcat.
type Config struct {
	Anim        AnimConfig        `yaml:"anim" mapstructure:"anim"`
	Typing      TypingConfig      `yaml:"typing" mapstructure:"typing"`
	Device      DeviceConfig      `yaml:"device" mapstructure:"device"`
	Display     DisplayConfig     `yaml:"display" mapstructure:"display"`
	Paths       PathsConfig       `yaml:"paths" mapstructure:"paths"`
	LogRotation LogRotationConfig `yaml:"log_rotation" mapstructure:"log_rotation"`
}

// AnimConfig holds the animation controller timings.
type AnimConfig struct {
	BlinkInterval       time.Duration `yaml:"blink_interval" mapstructure:"blink_interval"`
	BlinkIntervalSleepy time.Duration `yaml:"blink_interval_sleepy" mapstructure:"blink_interval_sleepy"`
	BlinkDuration       time.Duration `yaml:"blink_duration" mapstructure:"blink_duration"`
	EarTwitchInterval   time.Duration `yaml:"ear_twitch_interval" mapstructure:"ear_twitch_interval"`
	EarTwitchDuration   time.Duration `yaml:"ear_twitch_duration" mapstructure:"ear_twitch_duration"`
	TypingTimeout       time.Duration `yaml:"typing_timeout" mapstructure:"typing_timeout"`
	EffectInterval      time.Duration `yaml:"effect_interval" mapstructure:"effect_interval"`
}

// TypingConfig holds the speed-to-tier mapping and streak detection.
type TypingConfig struct {
	NormalThreshold int           `yaml:"normal_threshold" mapstructure:"normal_threshold"` // speed at or above this is normal
	FastThreshold   int           `yaml:"fast_threshold" mapstructure:"fast_threshold"`     // speed at or above this is fast
	StreakWindow    time.Duration `yaml:"streak_window" mapstructure:"streak_window"`       // sustained fast typing before auto-streak
}

// DeviceConfig holds the simulated device loop settings.
type DeviceConfig struct {
	TickInterval time.Duration `yaml:"tick_interval" mapstructure:"tick_interval"` // display refresh cadence
	HostTimeout  time.Duration `yaml:"host_timeout" mapstructure:"host_timeout"`   // silence before auto mode resumes
}

// DisplayConfig holds initial display preferences. The settings store
// overrides these once loaded.
type DisplayConfig struct {
	ShowClock bool `yaml:"show_clock" mapstructure:"show_clock"`
	Use24Hour bool `yaml:"use_24_hour" mapstructure:"use_24_hour"`
	ShowStats bool `yaml:"show_stats" mapstructure:"show_stats"`
}

// PathsConfig holds file paths for settings, logs, and the daemon socket.
type PathsConfig struct {
	Settings string `yaml:"settings" mapstructure:"settings"`
	Log      string `yaml:"log" mapstructure:"log"`
	EventLog string `yaml:"event_log" mapstructure:"event_log"`
	Socket   string `yaml:"socket" mapstructure:"socket"`
	PID      string `yaml:"pid" mapstructure:"pid"`
}

// LogRotationConfig holds settings for debug log rotation
// (lumberjack-based automatic rotation in TUI mode).
type LogRotationConfig struct {
	MaxSizeMB  int  `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool `yaml:"compress" mapstructure:"compress"`
}

// Default returns a Config with the stock timings.
func Default() *Config {
	return &Config{
		Anim: AnimConfig{
			BlinkInterval:       5 * time.Second,
			BlinkIntervalSleepy: 8 * time.Second,
			BlinkDuration:       200 * time.Millisecond,
			EarTwitchInterval:   20 * time.Second,
			EarTwitchDuration:   500 * time.Millisecond,
			TypingTimeout:       2 * time.Second,
			EffectInterval:      time.Second,
		},
		Typing: TypingConfig{
			NormalThreshold: 80,
			FastThreshold:   150,
			StreakWindow:    10 * time.Second,
		},
		Device: DeviceConfig{
			TickInterval: 25 * time.Millisecond,
			HostTimeout:  5 * time.Second,
		},
		Display: DisplayConfig{
			ShowClock: true,
			Use24Hour: true,
			ShowStats: true,
		},
		Paths: PathsConfig{
			Settings: ".deskcat/settings.json",
			Log:      ".deskcat/deskcat.log",
			EventLog: ".deskcat/events.jsonl",
			Socket:   ".deskcat/deskcat.sock",
			PID:      ".deskcat/deskcat.pid",
		},
		LogRotation: LogRotationConfig{
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}

// Sleep stage bounds for the adaptive idle progression.
const (
	minStage2 = 5 * time.Second
	maxStage2 = 60 * time.Second
	minStage3 = 3 * time.Second
	maxStage3 = 30 * time.Second
)

// SleepStages derives the three idle stage dwell times from the user's
// total sleep timeout. Short timeouts keep the progression visible, long
// timeouts spend most of the window in stage 1 with a quick transition to
// sleep. Stage 1 takes the remainder so the stages sum to the timeout.
func SleepStages(timeout time.Duration) (stage1, stage2, stage3 time.Duration) {
	minutes := int(timeout / time.Minute)

	var ratio2, ratio3 float64
	switch {
	case minutes <= 3:
		ratio2, ratio3 = 0.25, 0.15
	case minutes <= 10:
		ratio2, ratio3 = 0.20, 0.10
	default:
		ratio2, ratio3 = 0.15, 0.05
	}

	stage2 = clampDuration(time.Duration(float64(timeout)*ratio2), minStage2, maxStage2)
	stage3 = clampDuration(time.Duration(float64(timeout)*ratio3), minStage3, maxStage3)
	stage1 = timeout - stage2 - stage3
	return stage1, stage2, stage3
}

func clampDuration(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}
