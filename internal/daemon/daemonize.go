package daemon

import (
	"fmt"
	"net"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/pawsd/deskcat/internal/config"
)

const (
	// daemonEnvVar marks the re-exec'd child process.
	daemonEnvVar = "DESKCAT_DAEMONIZED"

	// socketWaitTimeout is how long the parent waits for the socket to
	// appear before printing success.
	socketWaitTimeout = 2 * time.Second

	// socketCheckInterval is how often to check for socket availability.
	socketCheckInterval = 50 * time.Millisecond
)

// Daemonize forks the current process as a background daemon using the
// re-exec pattern. It returns (true, pid, nil) in the parent, which should
// exit, and (false, pid, nil) in the daemonized child, which continues.
func Daemonize(cfg *config.Config) (shouldExit bool, pid int, err error) {
	if os.Getenv(daemonEnvVar) == "1" {
		// We are the child.
		return false, os.Getpid(), nil
	}

	executable, err := os.Executable()
	if err != nil {
		return false, 0, fmt.Errorf("get executable path: %w", err)
	}

	cmd := exec.Command(executable, os.Args[1:]...)
	cmd.Env = append(os.Environ(), daemonEnvVar+"=1")

	// Detach from terminal
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	// New session (setsid equivalent)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}

	if err := cmd.Start(); err != nil {
		return false, 0, fmt.Errorf("start daemon: %w", err)
	}

	childPID := cmd.Process.Pid

	if err := waitForSocketReady(cfg.Paths.Socket, socketWaitTimeout); err != nil {
		// The daemon may still be starting up.
		fmt.Printf("Started daemon (pid %d) - socket not yet available\n", childPID)
	} else {
		fmt.Printf("Started daemon (pid %d)\n", childPID)
	}

	return true, childPID, nil
}

// IsDaemonized returns true if the current process is the re-exec'd child.
func IsDaemonized() bool {
	return os.Getenv(daemonEnvVar) == "1"
}

// waitForSocketReady waits for the socket to accept connections.
func waitForSocketReady(socketPath string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("unix", socketPath, socketCheckInterval)
		if err == nil {
			_ = conn.Close()
			return nil
		}
		time.Sleep(socketCheckInterval)
	}
	return fmt.Errorf("socket not available after %v", timeout)
}
