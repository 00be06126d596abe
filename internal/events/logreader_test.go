package events

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func writeLogLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	for _, line := range lines {
		if _, err := fmt.Fprintln(f, line); err != nil {
			t.Fatal(err)
		}
	}
}

func TestTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	for i := 0; i < 5; i++ {
		writeLogLines(t, path, fmt.Sprintf(`{"seq":%d}`, i))
	}

	lines, err := NewLogReader(path).Tail(3)
	if err != nil {
		t.Fatalf("Tail() error: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("Tail(3) = %d lines, want 3", len(lines))
	}
	if lines[0] != `{"seq":2}` || lines[2] != `{"seq":4}` {
		t.Errorf("Tail(3) = %v, want last three entries", lines)
	}
}

func TestTailZeroReturnsAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	writeLogLines(t, path, `{"a":1}`, `{"b":2}`)

	lines, err := NewLogReader(path).Tail(0)
	if err != nil {
		t.Fatalf("Tail() error: %v", err)
	}
	if len(lines) != 2 {
		t.Errorf("Tail(0) = %d lines, want 2", len(lines))
	}
}

func TestTailSkipsPartialFinalLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	writeLogLines(t, path, `{"a":1}`)
	if err := os.WriteFile(path, []byte("{\"a\":1}\n{\"trunc"), 0644); err != nil {
		t.Fatal(err)
	}

	lines, err := NewLogReader(path).Tail(10)
	if err != nil {
		t.Fatalf("Tail() error: %v", err)
	}
	if len(lines) != 1 {
		t.Errorf("Tail() = %v, want partial write dropped", lines)
	}
}

func TestTailMissingFile(t *testing.T) {
	_, err := NewLogReader(filepath.Join(t.TempDir(), "nope.jsonl")).Tail(5)
	if err == nil {
		t.Error("Tail() on missing file succeeded, want error")
	}
}

func TestFollowStreamsNewLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	writeLogLines(t, path, `{"old":true}`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = NewLogReader(path).Follow(ctx, func(line string) {
			mu.Lock()
			got = append(got, line)
			mu.Unlock()
		})
	}()

	// Give Follow time to seek to the end before appending.
	time.Sleep(100 * time.Millisecond)
	writeLogLines(t, path, `{"new":1}`, `{"new":2}`)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n >= 2 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 {
		t.Fatalf("Follow() delivered %d lines, want 2: %v", len(got), got)
	}
	if got[0] != `{"new":1}` || got[1] != `{"new":2}` {
		t.Errorf("Follow() lines = %v", got)
	}
	for _, line := range got {
		if line == `{"old":true}` {
			t.Error("Follow() replayed a pre-existing line")
		}
	}
}
