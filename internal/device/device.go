// Package device runs the simulated desk companion: a fixed-rate tick loop
// that drives the animation controller, applies host commands, and exposes
// a snapshot of the current frame for the TUI and the daemon.
package device

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pawsd/deskcat/internal/anim"
	"github.com/pawsd/deskcat/internal/config"
	"github.com/pawsd/deskcat/internal/events"
	"github.com/pawsd/deskcat/internal/settings"
	"github.com/pawsd/deskcat/internal/typing"
)

// commandBuffer is the queue depth for host commands between ticks.
const commandBuffer = 64

// Snapshot is one consistent view of the device, refreshed every tick.
type Snapshot struct {
	State       anim.State     `json:"-"`
	StateName   string         `json:"state"`
	Effective   anim.State     `json:"-"`
	Streak      bool           `json:"streak"`
	Selection   anim.Selection `json:"-"`
	PawFrame    int            `json:"paw_frame"`
	CPU         int            `json:"cpu"`
	RAM         int            `json:"ram"`
	WPM         int            `json:"wpm"`
	Clock       string         `json:"clock"`
	HostControl bool           `json:"host_control"`
	AutoIdle    bool           `json:"auto_idle"`
	Paused      bool           `json:"paused"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Device owns the animation controller and the host-facing command surface.
// All mutation happens on the tick goroutine; commands are queued and
// applied between frames, the way the firmware read its serial port.
type Device struct {
	cfg    *config.Config
	store  *settings.Store
	router *events.Router
	logger *slog.Logger

	ctrl       *anim.Controller
	thresholds typing.Thresholds
	streak     *typing.StreakDetector

	cmds       chan func(now time.Time)
	stopSignal chan struct{}

	mu   sync.RWMutex
	snap Snapshot

	// tick-goroutine state, unguarded
	hostControl bool
	lastCommand time.Time
	lastState   anim.State
	paused      bool
	cpu, ram    int
	wpm         int
	clock       string
}

// New creates a Device. The settings store must already be loaded.
func New(cfg *config.Config, store *settings.Store, router *events.Router, logger *slog.Logger) *Device {
	if logger == nil {
		logger = slog.Default()
	}

	s := store.Get()
	th := typing.Thresholds{
		Normal:      cfg.Typing.NormalThreshold,
		Fast:        cfg.Typing.FastThreshold,
		Sensitivity: s.Sensitivity,
	}

	d := &Device{
		cfg:        cfg,
		store:      store,
		router:     router,
		logger:     logger,
		ctrl:       anim.New(timingsFor(cfg, s)),
		thresholds: th,
		streak:     typing.NewStreakDetector(cfg.Typing.StreakWindow),
		cmds:       make(chan func(now time.Time), commandBuffer),
		stopSignal: make(chan struct{}, 1),
	}

	store.OnChange(func(field, value string) {
		d.emit(&events.SettingsUpdatedEvent{
			BaseEvent: events.NewDeviceEvent(events.EventSettingsUpdated),
			Field:     field,
			Value:     value,
		})
	})
	return d
}

// timingsFor builds the controller timing table from static config plus the
// user's sleep timeout. Stage 4 dwells as long as stage 1 before the cycle
// wraps.
func timingsFor(cfg *config.Config, s settings.Settings) anim.Timings {
	stage1, stage2, stage3 := config.SleepStages(s.SleepTimeout())
	t := anim.DefaultTimings()
	t.BlinkInterval = cfg.Anim.BlinkInterval
	t.BlinkIntervalSleepy = cfg.Anim.BlinkIntervalSleepy
	t.BlinkDuration = cfg.Anim.BlinkDuration
	t.EarTwitchInterval = cfg.Anim.EarTwitchInterval
	t.EarTwitchDuration = cfg.Anim.EarTwitchDuration
	t.TypingTimeout = cfg.Anim.TypingTimeout
	t.EffectInterval = cfg.Anim.EffectInterval
	t.IdleDwell = [4]time.Duration{stage1, stage2, stage3, stage1}
	return t
}

// Run starts the tick loop. It blocks until the context is cancelled or
// Stop is called.
func (d *Device) Run(ctx context.Context) error {
	now := time.Now()
	d.ctrl.Init(now)
	d.lastState = anim.IdleStage1
	d.lastCommand = now
	d.refreshSnapshot(now)

	d.emit(&events.DeviceStartEvent{
		BaseEvent:    events.NewDeviceEvent(events.EventDeviceStart),
		TickInterval: d.cfg.Device.TickInterval,
	})
	d.logger.Info("device started", "tick", d.cfg.Device.TickInterval)

	ticker := time.NewTicker(d.cfg.Device.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return d.shutdown("context cancelled")
		case <-d.stopSignal:
			return d.shutdown("stop requested")
		case now := <-ticker.C:
			d.tick(now)
		}
	}
}

// Stop requests shutdown. It returns immediately; use Run's return to wait.
func (d *Device) Stop() {
	select {
	case d.stopSignal <- struct{}{}:
	default:
	}
}

func (d *Device) shutdown(reason string) error {
	d.emit(&events.DeviceStopEvent{
		BaseEvent: events.NewDeviceEvent(events.EventDeviceStop),
		Reason:    reason,
	})
	d.logger.Info("device stopped", "reason", reason)
	return nil
}

// tick applies queued commands, enforces the host silence timeout, advances
// the controller, and publishes the new snapshot.
func (d *Device) tick(now time.Time) {
drain:
	for {
		select {
		case apply := <-d.cmds:
			apply(now)
		default:
			break drain
		}
	}

	if d.hostControl && now.Sub(d.lastCommand) > d.cfg.Device.HostTimeout {
		d.hostControl = false
		d.ctrl.SetIdleProgression(true)
		d.logger.Warn("host silent, resuming automatic idle", "timeout", d.cfg.Device.HostTimeout)
		d.emit(&events.ErrorEvent{
			BaseEvent: events.NewDeviceEvent(events.EventError),
			Message:   fmt.Sprintf("no host command for %s, automatic idle resumed", d.cfg.Device.HostTimeout),
			Severity:  events.SeverityWarning,
		})
	}

	if !d.paused {
		d.ctrl.Update(now)
	}

	if effective := d.ctrl.EffectiveState(); effective != d.lastState {
		d.emit(&events.StateChangedEvent{
			BaseEvent: events.NewDeviceEvent(events.EventStateChanged),
			From:      d.lastState.String(),
			To:        effective.String(),
			Streak:    d.ctrl.StreakMode(),
		})
		d.lastState = effective
	}

	d.refreshSnapshot(now)
}

func (d *Device) refreshSnapshot(now time.Time) {
	snap := Snapshot{
		State:       d.ctrl.State(),
		StateName:   d.ctrl.State().String(),
		Effective:   d.ctrl.EffectiveState(),
		Streak:      d.ctrl.StreakMode(),
		Selection:   d.ctrl.Selection(),
		PawFrame:    d.ctrl.PawFrame(),
		CPU:         d.cpu,
		RAM:         d.ram,
		WPM:         d.wpm,
		Clock:       d.clock,
		HostControl: d.hostControl,
		AutoIdle:    d.ctrl.IdleProgression(),
		Paused:      d.paused,
		UpdatedAt:   now,
	}

	d.mu.Lock()
	d.snap = snap
	d.mu.Unlock()
}

// Snapshot returns the last published frame state.
func (d *Device) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snap
}

// enqueue schedules a mutation for the next tick. Commands arriving faster
// than the loop drains them are dropped with a warning, matching the
// firmware's bounded serial buffer.
func (d *Device) enqueue(apply func(now time.Time)) {
	select {
	case d.cmds <- apply:
	default:
		d.logger.Warn("command dropped: queue full")
	}
}

// hostTouched marks the host as actively driving the device.
func (d *Device) hostTouched(now time.Time) {
	d.hostControl = true
	d.lastCommand = now
}

// Speed reports a typing speed sample. Zero stops typing outright; other
// values select a tier through the sensitivity-scaled thresholds, with
// sustained fast typing upgraded to streak.
func (d *Device) Speed(speed int) {
	d.enqueue(func(now time.Time) {
		d.hostTouched(now)

		tier, ok := d.thresholds.TierFor(speed)
		if !ok {
			d.ctrl.SetState(anim.IdleStage1, now)
			d.ctrl.SetIdleProgression(false)
			return
		}
		if d.streak.Observe(tier, now) {
			tier = anim.TypingStreak
		}
		d.ctrl.NotifyActivity(tier, now)
	})
}

// StopTyping forces IdleStage1 and holds idle progression off until the
// host sends StartIdle or goes silent.
func (d *Device) StopTyping() {
	d.enqueue(func(now time.Time) {
		d.hostTouched(now)
		d.ctrl.SetState(anim.IdleStage1, now)
		d.ctrl.SetIdleProgression(false)
	})
}

// StartIdle returns control to the device: IdleStage1 with automatic
// progression enabled.
func (d *Device) StartIdle() {
	d.enqueue(func(now time.Time) {
		d.hostControl = false
		d.streak.Release()
		d.ctrl.SetState(anim.IdleStage1, now)
		d.ctrl.SetIdleProgression(true)
	})
}

// Heartbeat refreshes the host silence timeout without other effects.
func (d *Device) Heartbeat() {
	d.enqueue(func(now time.Time) {
		d.hostTouched(now)
	})
}

// ForceStreak pins streak mode on or off, overriding detection.
func (d *Device) ForceStreak(on bool) {
	d.enqueue(func(now time.Time) {
		d.hostTouched(now)
		d.streak.Force(on)
		if on && d.ctrl.EffectiveState().IsTyping() {
			d.ctrl.NotifyActivity(anim.TypingStreak, now)
		}
		if !on && d.ctrl.EffectiveState() == anim.TypingStreak {
			d.ctrl.NotifyActivity(anim.TypingFast, now)
		}
	})
}

// ReportStats stores the host's system stats for the header row.
func (d *Device) ReportStats(cpu, ram, wpm int) {
	d.enqueue(func(now time.Time) {
		d.hostTouched(now)
		d.cpu, d.ram, d.wpm = cpu, ram, wpm
		d.emit(&events.StatsUpdatedEvent{
			BaseEvent: events.NewHostEvent(events.EventStatsUpdated),
			CPU:       cpu,
			RAM:       ram,
			WPM:       wpm,
		})
	})
}

// SetClock stores the host's formatted clock string (HH:MM).
func (d *Device) SetClock(display string) {
	d.enqueue(func(now time.Time) {
		d.hostTouched(now)
		d.clock = display
		d.emit(&events.ClockUpdatedEvent{
			BaseEvent: events.NewHostEvent(events.EventClockUpdated),
			Display:   display,
		})
	})
}

// ForceState drives the controller into a named state, for testing and the
// daemon's anim method. Overlay names trigger the overlay immediately.
func (d *Device) ForceState(name string) error {
	state, ok := anim.ParseState(name)
	if !ok {
		return fmt.Errorf("unknown animation state %q", name)
	}
	d.enqueue(func(now time.Time) {
		d.hostTouched(now)
		d.ctrl.SetState(state, now)
	})
	return nil
}

// SetSensitivity updates the typing sensitivity, range-checked by the
// settings store.
func (d *Device) SetSensitivity(v float64) error {
	if err := d.store.SetSensitivity(v); err != nil {
		return err
	}
	d.enqueue(func(now time.Time) {
		d.hostTouched(now)
		d.thresholds.Sensitivity = v
	})
	return nil
}

// SetSleepTimeout updates the idle progression window and rebuilds the
// dwell table.
func (d *Device) SetSleepTimeout(minutes int) error {
	if err := d.store.SetSleepTimeout(minutes); err != nil {
		return err
	}
	d.enqueue(func(now time.Time) {
		d.hostTouched(now)
		d.ctrl.SetTimings(timingsFor(d.cfg, d.store.Get()))
	})
	return nil
}

// Pause freezes the animation. Commands are still applied.
func (d *Device) Pause() {
	d.enqueue(func(now time.Time) {
		d.paused = true
	})
}

// Resume unfreezes the animation, re-anchoring every timer at now so the
// pause gap is not replayed as missed frames.
func (d *Device) Resume() {
	d.enqueue(func(now time.Time) {
		if !d.paused {
			return
		}
		d.paused = false
		d.ctrl.SetState(d.ctrl.EffectiveState(), now)
	})
}

func (d *Device) emit(event events.Event) {
	if d.router != nil {
		d.router.Emit(event)
	}
}

// HandleCommand parses one line of the host wire protocol and applies it.
// The reply mirrors the firmware's acknowledgements; PING answers PONG.
func (d *Device) HandleCommand(line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("empty command")
	}

	d.emit(&events.CommandReceivedEvent{
		BaseEvent: events.NewHostEvent(events.EventCommandReceived),
		Command:   commandName(line),
		Arg:       commandArg(line),
	})

	switch {
	case strings.HasPrefix(line, "SPEED:"):
		speed, err := strconv.Atoi(strings.TrimPrefix(line, "SPEED:"))
		if err != nil {
			return "", fmt.Errorf("bad speed value: %w", err)
		}
		d.Speed(speed)
		return "OK", nil

	case line == "STOP":
		d.StopTyping()
		return "OK", nil

	case line == "IDLE_START":
		d.StartIdle()
		return "OK", nil

	case line == "HEARTBEAT":
		d.Heartbeat()
		return "OK", nil

	case line == "STREAK_ON":
		d.ForceStreak(true)
		return "OK", nil

	case line == "STREAK_OFF":
		d.ForceStreak(false)
		return "OK", nil

	case strings.HasPrefix(line, "STATS:"):
		cpu, ram, wpm, err := parseStats(strings.TrimPrefix(line, "STATS:"))
		if err != nil {
			return "", err
		}
		d.ReportStats(cpu, ram, wpm)
		return "OK", nil

	case strings.HasPrefix(line, "TIME:"):
		display := strings.TrimPrefix(line, "TIME:")
		if len(display) != 5 || display[2] != ':' {
			return "", fmt.Errorf("bad time %q, want HH:MM", display)
		}
		d.SetClock(display)
		return "OK", nil

	case line == "PING":
		return "PONG", nil

	case strings.HasPrefix(line, "ANIM:"):
		if err := d.ForceState(strings.TrimPrefix(line, "ANIM:")); err != nil {
			return "", err
		}
		return "OK", nil

	case strings.HasPrefix(line, "SENSITIVITY:"):
		v, err := strconv.ParseFloat(strings.TrimPrefix(line, "SENSITIVITY:"), 64)
		if err != nil {
			return "", fmt.Errorf("bad sensitivity value: %w", err)
		}
		if err := d.SetSensitivity(v); err != nil {
			return "", err
		}
		return "OK", nil

	case strings.HasPrefix(line, "SLEEP_TIMEOUT:"):
		minutes, err := strconv.Atoi(strings.TrimPrefix(line, "SLEEP_TIMEOUT:"))
		if err != nil {
			return "", fmt.Errorf("bad sleep timeout value: %w", err)
		}
		if err := d.SetSleepTimeout(minutes); err != nil {
			return "", err
		}
		return "OK", nil

	case strings.HasPrefix(line, "DISPLAY_TIME:"):
		d.store.SetShowClock(strings.TrimPrefix(line, "DISPLAY_TIME:") == "ON")
		return "OK", nil

	case strings.HasPrefix(line, "DISPLAY_STATS:"):
		d.store.SetShowStats(strings.TrimPrefix(line, "DISPLAY_STATS:") == "ON")
		return "OK", nil

	case strings.HasPrefix(line, "TIME_FORMAT:"):
		d.store.SetUse24Hour(strings.TrimPrefix(line, "TIME_FORMAT:") == "24")
		return "OK", nil

	case line == "SAVE_SETTINGS":
		if err := d.store.Save(); err != nil {
			return "", err
		}
		d.emit(&events.SettingsSavedEvent{
			BaseEvent: events.NewDeviceEvent(events.EventSettingsSaved),
			Path:      d.store.Path(),
		})
		return "OK", nil

	case line == "LOAD_SETTINGS":
		if err := d.store.Load(); err != nil {
			return "", err
		}
		d.applyLoadedSettings()
		return "OK", nil

	case line == "RESET_SETTINGS":
		d.store.Reset()
		if err := d.store.Save(); err != nil {
			return "", err
		}
		d.applyLoadedSettings()
		return "OK", nil

	default:
		return "", fmt.Errorf("unknown command %q", commandName(line))
	}
}

// applyLoadedSettings pushes freshly loaded settings into the controller
// and thresholds.
func (d *Device) applyLoadedSettings() {
	d.enqueue(func(now time.Time) {
		s := d.store.Get()
		d.thresholds.Sensitivity = s.Sensitivity
		d.ctrl.SetTimings(timingsFor(d.cfg, s))
	})
}

func commandName(line string) string {
	if i := strings.IndexByte(line, ':'); i >= 0 {
		return line[:i]
	}
	return line
}

func commandArg(line string) string {
	if i := strings.IndexByte(line, ':'); i >= 0 {
		return line[i+1:]
	}
	return ""
}

// parseStats parses "CPU:45,RAM:67,WPM:23".
func parseStats(s string) (cpu, ram, wpm int, err error) {
	for _, part := range strings.Split(s, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), ":")
		if !found {
			return 0, 0, 0, fmt.Errorf("bad stats segment %q", part)
		}
		n, convErr := strconv.Atoi(value)
		if convErr != nil {
			return 0, 0, 0, fmt.Errorf("bad stats value %q: %w", part, convErr)
		}
		switch key {
		case "CPU":
			cpu = n
		case "RAM":
			ram = n
		case "WPM":
			wpm = n
		default:
			return 0, 0, 0, fmt.Errorf("unknown stats key %q", key)
		}
	}
	return cpu, ram, wpm, nil
}
