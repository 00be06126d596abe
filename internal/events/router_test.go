package events

import (
	"testing"
	"time"
)

func TestRouterDeliversToAllSubscribers(t *testing.T) {
	r := NewRouter(10)
	defer r.Close()

	ch1 := r.Subscribe()
	ch2 := r.Subscribe()

	event := &StateChangedEvent{
		BaseEvent: NewDeviceEvent(EventStateChanged),
		From:      "idle_stage_1",
		To:        "typing_fast",
	}
	r.Emit(event)

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case got := <-ch:
			if got.Type() != EventStateChanged {
				t.Errorf("subscriber %d: type = %q, want %q", i, got.Type(), EventStateChanged)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d: no event received", i)
		}
	}
}

func TestRouterDropsWhenSubscriberFull(t *testing.T) {
	r := NewRouter(1)
	defer r.Close()

	ch := r.Subscribe()

	r.Emit(&ClockUpdatedEvent{BaseEvent: NewHostEvent(EventClockUpdated), Display: "10:00"})
	r.Emit(&ClockUpdatedEvent{BaseEvent: NewHostEvent(EventClockUpdated), Display: "10:01"})

	got := (<-ch).(*ClockUpdatedEvent)
	if got.Display != "10:00" {
		t.Errorf("Display = %q, want first event kept", got.Display)
	}
	select {
	case extra := <-ch:
		t.Errorf("second event delivered (%v), want dropped", extra.Type())
	default:
	}
}

func TestRouterUnsubscribeClosesChannel(t *testing.T) {
	r := NewRouter(0)
	defer r.Close()

	ch := r.Subscribe()
	r.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Error("channel still open after Unsubscribe")
	}

	// Unsubscribing again must not panic.
	r.Unsubscribe(ch)
}

func TestRouterClose(t *testing.T) {
	r := NewRouter(0)
	ch := r.Subscribe()

	r.Close()
	r.Close() // idempotent

	if _, ok := <-ch; ok {
		t.Error("channel still open after Close")
	}

	// Emit after close is a no-op.
	r.Emit(&DeviceStopEvent{BaseEvent: NewDeviceEvent(EventDeviceStop)})

	if _, ok := <-r.Subscribe(); ok {
		t.Error("Subscribe after Close returned an open channel")
	}
}
