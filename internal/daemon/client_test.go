package daemon

import (
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
)

func TestClientNotRunning(t *testing.T) {
	client := NewClient(filepath.Join(t.TempDir(), "nope.sock"))

	if client.IsRunning() {
		t.Error("IsRunning() = true with no socket")
	}

	err := client.Ping()
	if err == nil {
		t.Fatal("Ping() succeeded with no daemon")
	}
	if !strings.Contains(err.Error(), "daemon not running") {
		t.Errorf("error = %q, want daemon-not-running message", err)
	}
}

func TestWrapConnError(t *testing.T) {
	client := NewClient("/tmp/unused.sock")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"enoent", syscall.ENOENT, "daemon not running (socket not found)"},
		{"refused", syscall.ECONNREFUSED, "daemon not running (connection refused)"},
		{"deadline", os.ErrDeadlineExceeded, "daemon request timed out"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := client.wrapConnError(tt.err)
			if got.Error() != tt.want {
				t.Errorf("wrapConnError(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestDecodeResult(t *testing.T) {
	in := map[string]any{"reply": "PONG"}
	var out CommandResult
	if err := decodeResult(in, &out); err != nil {
		t.Fatalf("decodeResult error: %v", err)
	}
	if out.Reply != "PONG" {
		t.Errorf("Reply = %q, want PONG", out.Reply)
	}
}
