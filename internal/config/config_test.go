package config

import (
	"testing"
	"time"
)

func TestDefaultTimings(t *testing.T) {
	cfg := Default()

	if cfg.Anim.BlinkDuration != 200*time.Millisecond {
		t.Errorf("BlinkDuration = %v, want 200ms", cfg.Anim.BlinkDuration)
	}
	if cfg.Anim.EarTwitchDuration != 500*time.Millisecond {
		t.Errorf("EarTwitchDuration = %v, want 500ms", cfg.Anim.EarTwitchDuration)
	}
	if cfg.Anim.BlinkIntervalSleepy <= cfg.Anim.BlinkInterval {
		t.Errorf("sleepy blink interval %v not longer than awake %v",
			cfg.Anim.BlinkIntervalSleepy, cfg.Anim.BlinkInterval)
	}
	if cfg.Device.HostTimeout <= cfg.Anim.TypingTimeout {
		t.Errorf("host timeout %v not longer than typing timeout %v",
			cfg.Device.HostTimeout, cfg.Anim.TypingTimeout)
	}
}

func TestSleepStagesSumToTimeout(t *testing.T) {
	for _, minutes := range []int{1, 3, 5, 10, 30, 60} {
		timeout := time.Duration(minutes) * time.Minute
		s1, s2, s3 := SleepStages(timeout)
		if got := s1 + s2 + s3; got != timeout {
			t.Errorf("%dm: stages sum to %v, want %v", minutes, got, timeout)
		}
	}
}

func TestSleepStagesBands(t *testing.T) {
	tests := []struct {
		minutes int
		stage2  time.Duration
		stage3  time.Duration
	}{
		// Short band: 25% / 15%, both under their caps at 2 minutes.
		{2, 30 * time.Second, 18 * time.Second},
		// Medium band: 20% / 10% of 5 minutes.
		{5, 60 * time.Second, 30 * time.Second},
		// Long band: ratios blow past the caps, so the clamps hold.
		{30, 60 * time.Second, 30 * time.Second},
	}

	for _, tc := range tests {
		_, s2, s3 := SleepStages(time.Duration(tc.minutes) * time.Minute)
		if s2 != tc.stage2 {
			t.Errorf("%dm: stage2 = %v, want %v", tc.minutes, s2, tc.stage2)
		}
		if s3 != tc.stage3 {
			t.Errorf("%dm: stage3 = %v, want %v", tc.minutes, s3, tc.stage3)
		}
	}
}

func TestSleepStagesMinimums(t *testing.T) {
	// At 1 minute the 25%/15% ratios yield 15s and 9s, both above floors;
	// stage 1 still gets the remainder.
	s1, s2, s3 := SleepStages(time.Minute)
	if s2 < minStage2 || s3 < minStage3 {
		t.Errorf("stages below floors: stage2=%v stage3=%v", s2, s3)
	}
	if s1 <= 0 {
		t.Errorf("stage1 = %v, want positive remainder", s1)
	}
}
