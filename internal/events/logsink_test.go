package events

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLogSinkWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	sink := NewLogSink(path)

	ch := make(chan Event, 4)
	if err := sink.Start(context.Background(), ch); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	ch <- &CommandReceivedEvent{BaseEvent: NewHostEvent(EventCommandReceived), Command: "SPEED", Arg: "90"}
	ch <- &StateChangedEvent{BaseEvent: NewDeviceEvent(EventStateChanged), From: "idle_stage_1", To: "typing_normal"}
	close(ch)

	if err := sink.Stop(); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var m map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &m); err != nil {
			t.Fatalf("line %d not valid JSON: %v", len(lines)+1, err)
		}
		lines = append(lines, m)
	}

	if len(lines) != 2 {
		t.Fatalf("wrote %d lines, want 2", len(lines))
	}
	if lines[0]["type"] != string(EventCommandReceived) || lines[0]["command"] != "SPEED" {
		t.Errorf("first line = %v", lines[0])
	}
	if lines[1]["to"] != "typing_normal" {
		t.Errorf("second line = %v", lines[1])
	}
}

func TestLogSinkCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "events.jsonl")
	sink := NewLogSink(path)

	ch := make(chan Event)
	if err := sink.Start(context.Background(), ch); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	close(ch)
	if err := sink.Stop(); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func TestLogSinkRotatesExistingLog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.jsonl")
	if err := os.WriteFile(path, []byte(`{"type":"old"}`+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	sink := NewLogSink(path)
	ch := make(chan Event)
	if err := sink.Start(context.Background(), ch); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	close(ch)
	if err := sink.Stop(); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var foundBak bool
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".bak") {
			foundBak = true
		}
	}
	if !foundBak {
		t.Error("existing log was not rotated to a .bak file")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 {
		t.Errorf("fresh log not empty: %q", data)
	}
}

func TestLogSinkStopsOnContextCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	sink := NewLogSink(path)

	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan Event)
	if err := sink.Start(ctx, ch); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	cancel()

	done := make(chan error, 1)
	go func() { done <- sink.Stop() }()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Stop() error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not return after context cancel")
	}
}
