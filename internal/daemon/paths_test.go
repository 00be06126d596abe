package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pawsd/deskcat/internal/config"
)

func TestResolvePaths(t *testing.T) {
	paths := config.PathsConfig{
		Settings: ".deskcat/settings.json",
		Log:      ".deskcat/deskcat.log",
		EventLog: ".deskcat/events.jsonl",
		Socket:   ".deskcat/deskcat.sock",
		PID:      "/absolute/deskcat.pid",
	}

	resolved, err := ResolvePaths(paths, "/base")
	if err != nil {
		t.Fatalf("ResolvePaths error: %v", err)
	}

	if resolved.Settings != "/base/.deskcat/settings.json" {
		t.Errorf("Settings = %q", resolved.Settings)
	}
	if resolved.Socket != "/base/.deskcat/deskcat.sock" {
		t.Errorf("Socket = %q", resolved.Socket)
	}
	// Absolute paths pass through untouched.
	if resolved.PID != "/absolute/deskcat.pid" {
		t.Errorf("PID = %q", resolved.PID)
	}
}

func TestFindProjectRootWithMarker(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".deskcat"), 0755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	if got := FindProjectRoot(nested); got != root {
		t.Errorf("FindProjectRoot(%q) = %q, want %q", nested, got, root)
	}
}

func TestFindProjectRootNoMarker(t *testing.T) {
	dir := t.TempDir()
	if got := FindProjectRoot(dir); got != dir {
		t.Errorf("FindProjectRoot(%q) = %q, want start dir back", dir, got)
	}
}

func TestDaemonInfoRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".deskcat", "daemon.json")

	info := &DaemonInfo{
		SocketPath: "/tmp/deskcat.sock",
		PIDPath:    "/tmp/deskcat.pid",
		LogPath:    "/tmp/deskcat.log",
		EventLog:   "/tmp/events.jsonl",
		StartTime:  time.Now().Truncate(time.Second),
		PID:        4242,
	}

	if err := WriteDaemonInfo(path, info); err != nil {
		t.Fatalf("WriteDaemonInfo error: %v", err)
	}

	got, err := ReadDaemonInfo(path)
	if err != nil {
		t.Fatalf("ReadDaemonInfo error: %v", err)
	}
	if got.SocketPath != info.SocketPath || got.PID != info.PID {
		t.Errorf("round trip = %+v, want %+v", got, info)
	}

	if err := RemoveDaemonInfo(path); err != nil {
		t.Fatalf("RemoveDaemonInfo error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("daemon.json still exists after remove")
	}

	// Removing twice is fine.
	if err := RemoveDaemonInfo(path); err != nil {
		t.Errorf("second RemoveDaemonInfo error: %v", err)
	}
}

func TestFindDaemonInfo(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".deskcat"), 0755); err != nil {
		t.Fatal(err)
	}

	info := &DaemonInfo{SocketPath: "/tmp/x.sock", PID: 1}
	if err := WriteDaemonInfo(DaemonInfoPath(root), info); err != nil {
		t.Fatal(err)
	}

	nested := filepath.Join(root, "sub", "dir")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	got, err := FindDaemonInfo(nested)
	if err != nil {
		t.Fatalf("FindDaemonInfo error: %v", err)
	}
	if got.SocketPath != info.SocketPath {
		t.Errorf("SocketPath = %q, want %q", got.SocketPath, info.SocketPath)
	}
}

func TestFindDaemonInfoMissing(t *testing.T) {
	if _, err := FindDaemonInfo(t.TempDir()); err == nil {
		t.Error("FindDaemonInfo succeeded with no daemon.json, want error")
	}
}
