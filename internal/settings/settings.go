// Package settings persists user-tunable device settings to a JSON file,
// playing the role the firmware's EEPROM played. Values are validated on
// load and on change; invalid stored data falls back to defaults rather
// than wedging the device.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Validation bounds. Out-of-range values are rejected on Set and reset to
// defaults on Load.
const (
	MinSleepTimeout = 1 * time.Minute
	MaxSleepTimeout = 60 * time.Minute
	MinSensitivity  = 0.1
	MaxSensitivity  = 5.0
)

// Defaults.
const (
	DefaultSleepTimeout = 5 * time.Minute
	DefaultSensitivity  = 1.0
)

// Settings are the persisted user preferences.
type Settings struct {
	// SleepTimeoutMinutes is the full idle window before the deepest sleep
	// stage; the idle stage dwell times are derived from it.
	SleepTimeoutMinutes int `json:"sleep_timeout_minutes"`
	// Sensitivity scales incoming typing speed before tier selection.
	Sensitivity float64 `json:"sensitivity"`
	// ShowClock toggles the clock in the header row.
	ShowClock bool `json:"show_clock"`
	// Use24Hour selects 24-hour clock formatting.
	Use24Hour bool `json:"use_24_hour"`
	// ShowStats toggles the CPU/RAM/WPM readouts.
	ShowStats bool `json:"show_stats"`
}

// Default returns the factory settings.
func Default() Settings {
	return Settings{
		SleepTimeoutMinutes: int(DefaultSleepTimeout / time.Minute),
		Sensitivity:         DefaultSensitivity,
		ShowClock:           true,
		Use24Hour:           true,
		ShowStats:           true,
	}
}

// SleepTimeout returns the sleep timeout as a duration.
func (s Settings) SleepTimeout() time.Duration {
	return time.Duration(s.SleepTimeoutMinutes) * time.Minute
}

// Validate reports the first out-of-range field.
func (s Settings) Validate() error {
	if d := s.SleepTimeout(); d < MinSleepTimeout || d > MaxSleepTimeout {
		return fmt.Errorf("sleep_timeout_minutes %d out of range [%d, %d]",
			s.SleepTimeoutMinutes, int(MinSleepTimeout/time.Minute), int(MaxSleepTimeout/time.Minute))
	}
	if s.Sensitivity < MinSensitivity || s.Sensitivity > MaxSensitivity {
		return fmt.Errorf("sensitivity %.2f out of range [%.1f, %.1f]",
			s.Sensitivity, MinSensitivity, MaxSensitivity)
	}
	return nil
}

// Store holds the in-memory settings and their backing file.
type Store struct {
	mu       sync.RWMutex
	path     string
	current  Settings
	onChange func(field, value string)
}

// NewStore creates a store backed by path. Nothing is read until Load.
func NewStore(path string) *Store {
	return &Store{path: path, current: Default()}
}

// OnChange registers a callback invoked after each successful field update.
// Used to emit settings events without coupling this package to the router.
func (s *Store) OnChange(fn func(field, value string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Load reads settings from disk. A missing file or invalid contents leaves
// the defaults in place; only I/O failures are reported.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read settings: %w", err)
	}

	var loaded Settings
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil
	}
	if loaded.Validate() != nil {
		return nil
	}

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()
	return nil
}

// Save writes the current settings to disk atomically.
func (s *Store) Save() error {
	s.mu.RLock()
	current := s.current
	s.mu.RUnlock()

	data, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

// Reset restores factory defaults in memory. Callers persist with Save.
func (s *Store) Reset() {
	s.mu.Lock()
	s.current = Default()
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn("all", "defaults")
	}
}

// Get returns a copy of the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// SetSleepTimeout updates the sleep timeout after range-checking.
func (s *Store) SetSleepTimeout(minutes int) error {
	d := time.Duration(minutes) * time.Minute
	if d < MinSleepTimeout || d > MaxSleepTimeout {
		return fmt.Errorf("sleep timeout %dm out of range [%d, %d] minutes",
			minutes, int(MinSleepTimeout/time.Minute), int(MaxSleepTimeout/time.Minute))
	}
	s.update("sleep_timeout_minutes", fmt.Sprintf("%d", minutes), func(c *Settings) {
		c.SleepTimeoutMinutes = minutes
	})
	return nil
}

// SetSensitivity updates the typing sensitivity after range-checking.
func (s *Store) SetSensitivity(v float64) error {
	if v < MinSensitivity || v > MaxSensitivity {
		return fmt.Errorf("sensitivity %.2f out of range [%.1f, %.1f]", v, MinSensitivity, MaxSensitivity)
	}
	s.update("sensitivity", fmt.Sprintf("%.2f", v), func(c *Settings) {
		c.Sensitivity = v
	})
	return nil
}

// SetShowClock toggles the clock display.
func (s *Store) SetShowClock(on bool) {
	s.update("show_clock", fmt.Sprintf("%t", on), func(c *Settings) { c.ShowClock = on })
}

// SetUse24Hour toggles 24-hour clock formatting.
func (s *Store) SetUse24Hour(on bool) {
	s.update("use_24_hour", fmt.Sprintf("%t", on), func(c *Settings) { c.Use24Hour = on })
}

// SetShowStats toggles the stats readouts.
func (s *Store) SetShowStats(on bool) {
	s.update("show_stats", fmt.Sprintf("%t", on), func(c *Settings) { c.ShowStats = on })
}

func (s *Store) update(field, value string, apply func(*Settings)) {
	s.mu.Lock()
	apply(&s.current)
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn(field, value)
	}
}
