package device

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/pawsd/deskcat/internal/anim"
	"github.com/pawsd/deskcat/internal/config"
	"github.com/pawsd/deskcat/internal/events"
	"github.com/pawsd/deskcat/internal/settings"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return epoch.Add(time.Duration(ms) * time.Millisecond)
}

// newTestDevice builds a device with fast test timings and anchors the
// controller at epoch, without starting the Run loop. Tests drive ticks by
// hand for determinism.
func newTestDevice(t *testing.T) (*Device, *events.Router) {
	t.Helper()

	cfg := config.Default()
	cfg.Anim.BlinkInterval = time.Hour
	cfg.Anim.BlinkIntervalSleepy = time.Hour
	cfg.Anim.EarTwitchInterval = time.Hour

	store := settings.NewStore(filepath.Join(t.TempDir(), "settings.json"))
	router := events.NewRouter(256)
	t.Cleanup(router.Close)

	d := New(cfg, store, router, nil)
	d.ctrl.Init(epoch)
	d.lastCommand = epoch
	d.lastState = anim.IdleStage1
	d.refreshSnapshot(epoch)
	return d, router
}

func TestSpeedSelectsTier(t *testing.T) {
	tests := []struct {
		speed int
		want  string
	}{
		{40, "typing_slow"},
		{100, "typing_normal"},
		{200, "typing_fast"},
	}

	for _, tc := range tests {
		d, _ := newTestDevice(t)
		d.Speed(tc.speed)
		d.tick(at(25))
		if got := d.Snapshot().StateName; got != tc.want {
			t.Errorf("SPEED %d: state = %q, want %q", tc.speed, got, tc.want)
		}
		if !d.Snapshot().HostControl {
			t.Errorf("SPEED %d: HostControl = false, want true", tc.speed)
		}
	}
}

func TestSpeedZeroStopsTyping(t *testing.T) {
	d, _ := newTestDevice(t)
	d.Speed(200)
	d.tick(at(25))
	d.Speed(0)
	d.tick(at(50))

	snap := d.Snapshot()
	if snap.StateName != "idle_stage1" {
		t.Errorf("state = %q, want idle_stage1", snap.StateName)
	}
	if snap.AutoIdle {
		t.Error("AutoIdle = true, want false after explicit stop")
	}
}

func TestStopAndIdleStart(t *testing.T) {
	d, _ := newTestDevice(t)
	d.Speed(100)
	d.tick(at(25))

	d.StopTyping()
	d.tick(at(50))
	snap := d.Snapshot()
	if snap.StateName != "idle_stage1" || snap.AutoIdle {
		t.Errorf("after STOP: state=%q auto=%t, want idle_stage1 with auto off", snap.StateName, snap.AutoIdle)
	}

	d.StartIdle()
	d.tick(at(75))
	snap = d.Snapshot()
	if !snap.AutoIdle {
		t.Error("after IDLE_START: AutoIdle = false, want true")
	}
	if snap.HostControl {
		t.Error("after IDLE_START: HostControl = true, want false")
	}
}

func TestTypingTimeoutReturnsToIdle(t *testing.T) {
	d, _ := newTestDevice(t)
	d.Speed(100)
	d.tick(at(25))

	// 2s of silence: the controller's typing timeout fires.
	d.tick(at(2_100))
	snap := d.Snapshot()
	if snap.StateName != "idle_stage1" {
		t.Errorf("state = %q, want idle_stage1 after typing timeout", snap.StateName)
	}
	if !snap.AutoIdle {
		t.Error("AutoIdle = false, want true after typing timeout")
	}
}

func TestHostTimeoutResumesAutoIdle(t *testing.T) {
	d, _ := newTestDevice(t)
	d.StopTyping() // host control on, progression held off
	d.tick(at(25))

	if snap := d.Snapshot(); !snap.HostControl || snap.AutoIdle {
		t.Fatalf("precondition: %+v", snap)
	}

	// Past the 5s host timeout the device reclaims idle progression.
	d.tick(at(5_100))
	snap := d.Snapshot()
	if snap.HostControl {
		t.Error("HostControl = true, want false after host silence")
	}
	if !snap.AutoIdle {
		t.Error("AutoIdle = false, want true after host silence")
	}
}

func TestHeartbeatHoldsHostTimeout(t *testing.T) {
	d, _ := newTestDevice(t)
	d.StopTyping()
	d.tick(at(25))

	d.Heartbeat()
	d.tick(at(4_000))
	d.Heartbeat()
	d.tick(at(8_000))

	if snap := d.Snapshot(); !snap.HostControl {
		t.Error("HostControl = false, want true while heartbeats arrive")
	}
}

func TestForceStreak(t *testing.T) {
	d, _ := newTestDevice(t)
	d.Speed(200)
	d.tick(at(25))

	d.ForceStreak(true)
	d.Speed(200)
	d.tick(at(50))
	if got := d.Snapshot().StateName; got != "typing_streak" {
		t.Errorf("state = %q, want typing_streak after STREAK_ON", got)
	}
	if !d.Snapshot().Streak {
		t.Error("Streak = false, want true")
	}

	d.ForceStreak(false)
	d.tick(at(75))
	if got := d.Snapshot().StateName; got != "typing_fast" {
		t.Errorf("state = %q, want typing_fast after STREAK_OFF", got)
	}
}

func TestSustainedFastTypingUpgradesToStreak(t *testing.T) {
	d, _ := newTestDevice(t)
	d.cfg.Typing.StreakWindow = time.Second
	d.streak.Window = time.Second

	ms := 0
	for ; ms <= 1_500; ms += 500 {
		d.Speed(200)
		d.tick(at(ms + 10))
	}
	if got := d.Snapshot().StateName; got != "typing_streak" {
		t.Errorf("state = %q, want typing_streak after sustained fast typing", got)
	}
}

func TestStateChangeEventsEmitted(t *testing.T) {
	d, router := newTestDevice(t)
	ch := router.Subscribe()

	d.Speed(100)
	d.tick(at(25))

	deadline := time.After(time.Second)
	for {
		select {
		case event := <-ch:
			if sc, ok := event.(*events.StateChangedEvent); ok {
				if sc.From != "idle_stage1" || sc.To != "typing_normal" {
					t.Errorf("transition %s -> %s, want idle_stage1 -> typing_normal", sc.From, sc.To)
				}
				return
			}
		case <-deadline:
			t.Fatal("no StateChangedEvent emitted")
		}
	}
}

func TestHandleCommandPing(t *testing.T) {
	d, _ := newTestDevice(t)
	reply, err := d.HandleCommand("PING")
	if err != nil {
		t.Fatalf("PING error: %v", err)
	}
	if reply != "PONG" {
		t.Errorf("reply = %q, want PONG", reply)
	}
}

func TestHandleCommandStats(t *testing.T) {
	d, _ := newTestDevice(t)
	if _, err := d.HandleCommand("STATS:CPU:45,RAM:67,WPM:23"); err != nil {
		t.Fatalf("STATS error: %v", err)
	}
	d.tick(at(25))

	snap := d.Snapshot()
	if snap.CPU != 45 || snap.RAM != 67 || snap.WPM != 23 {
		t.Errorf("stats = %d/%d/%d, want 45/67/23", snap.CPU, snap.RAM, snap.WPM)
	}
}

func TestHandleCommandTime(t *testing.T) {
	d, _ := newTestDevice(t)
	if _, err := d.HandleCommand("TIME:14:30"); err != nil {
		t.Fatalf("TIME error: %v", err)
	}
	d.tick(at(25))
	if got := d.Snapshot().Clock; got != "14:30" {
		t.Errorf("clock = %q, want 14:30", got)
	}

	if _, err := d.HandleCommand("TIME:2pm"); err == nil {
		t.Error("malformed TIME accepted, want error")
	}
}

func TestHandleCommandAnim(t *testing.T) {
	d, _ := newTestDevice(t)
	if _, err := d.HandleCommand("ANIM:idle_stage3"); err != nil {
		t.Fatalf("ANIM error: %v", err)
	}
	d.tick(at(25))
	if got := d.Snapshot().StateName; got != "idle_stage3" {
		t.Errorf("state = %q, want idle_stage3", got)
	}

	if _, err := d.HandleCommand("ANIM:sideways"); err == nil {
		t.Error("unknown ANIM state accepted, want error")
	}
}

func TestHandleCommandSensitivity(t *testing.T) {
	d, _ := newTestDevice(t)
	if _, err := d.HandleCommand("SENSITIVITY:2.0"); err != nil {
		t.Fatalf("SENSITIVITY error: %v", err)
	}
	d.tick(at(25))

	// 100 scaled by 2.0 crosses the fast threshold.
	d.Speed(100)
	d.tick(at(50))
	if got := d.Snapshot().StateName; got != "typing_fast" {
		t.Errorf("state = %q, want typing_fast with 2x sensitivity", got)
	}

	if _, err := d.HandleCommand("SENSITIVITY:9.5"); err == nil {
		t.Error("out-of-range sensitivity accepted, want error")
	}
}

func TestHandleCommandSleepTimeout(t *testing.T) {
	d, _ := newTestDevice(t)
	if _, err := d.HandleCommand("SLEEP_TIMEOUT:10"); err != nil {
		t.Fatalf("SLEEP_TIMEOUT error: %v", err)
	}
	if got := d.store.Get().SleepTimeoutMinutes; got != 10 {
		t.Errorf("SleepTimeoutMinutes = %d, want 10", got)
	}

	if _, err := d.HandleCommand("SLEEP_TIMEOUT:0"); err == nil {
		t.Error("out-of-range sleep timeout accepted, want error")
	}
}

func TestHandleCommandSettingsRoundTrip(t *testing.T) {
	d, _ := newTestDevice(t)
	if _, err := d.HandleCommand("TIME_FORMAT:12"); err != nil {
		t.Fatal(err)
	}
	if _, err := d.HandleCommand("SAVE_SETTINGS"); err != nil {
		t.Fatal(err)
	}
	if _, err := d.HandleCommand("RESET_SETTINGS"); err != nil {
		t.Fatal(err)
	}
	if !d.store.Get().Use24Hour {
		t.Error("Use24Hour = false after reset, want default true")
	}
}

func TestHandleCommandUnknown(t *testing.T) {
	d, _ := newTestDevice(t)
	if _, err := d.HandleCommand("FROBNICATE:9"); err == nil {
		t.Error("unknown command accepted, want error")
	}
	if _, err := d.HandleCommand(""); err == nil {
		t.Error("empty command accepted, want error")
	}
}

func TestPauseFreezesAnimation(t *testing.T) {
	d, _ := newTestDevice(t)
	d.Speed(200)
	d.tick(at(25))

	d.Pause()
	d.tick(at(50))
	frameBefore := d.Snapshot().PawFrame

	// A long gap while paused must not advance the paw cycle.
	d.tick(at(5_000))
	if got := d.Snapshot().PawFrame; got != frameBefore {
		t.Errorf("PawFrame = %d while paused, want %d", got, frameBefore)
	}
	if !d.Snapshot().Paused {
		t.Error("Paused = false, want true")
	}

	d.Resume()
	d.tick(at(5_025))
	if d.Snapshot().Paused {
		t.Error("Paused = true after Resume, want false")
	}

	// The pause gap is not replayed: the next frame advances one step at a
	// time from the resume point.
	d.tick(at(5_130))
	if got := d.Snapshot().PawFrame; got != 1 {
		t.Errorf("PawFrame = %d one period after resume, want 1", got)
	}
}

func TestParseStats(t *testing.T) {
	cpu, ram, wpm, err := parseStats("CPU:10,RAM:20,WPM:30")
	if err != nil {
		t.Fatalf("parseStats error: %v", err)
	}
	if cpu != 10 || ram != 20 || wpm != 30 {
		t.Errorf("parseStats = %d/%d/%d, want 10/20/30", cpu, ram, wpm)
	}

	if _, _, _, err := parseStats("CPU:x"); err == nil {
		t.Error("bad value accepted, want error")
	}
	if _, _, _, err := parseStats("DISK:5"); err == nil {
		t.Error("unknown key accepted, want error")
	}
}
