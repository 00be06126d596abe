// Package daemon provides background execution with external control via
// Unix socket RPC. Clients drive the simulated device through the same
// command surface the firmware exposed over serial.
package daemon

import (
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/pawsd/deskcat/internal/config"
	"github.com/pawsd/deskcat/internal/device"
	"github.com/pawsd/deskcat/internal/settings"
)

// Daemon serves device control requests over a Unix socket.
type Daemon struct {
	config    *config.Config
	device    *device.Device
	store     *settings.Store
	sockPath  string
	startTime time.Time
	logger    *slog.Logger

	// shutdownFn, when set, is invoked by the shutdown method to stop the
	// whole process, not just the listener.
	shutdownFn func()

	running  bool
	listener net.Listener
	mu       sync.RWMutex
}

// New creates a Daemon controlling the given device.
func New(cfg *config.Config, dev *device.Device, store *settings.Store, logger *slog.Logger) *Daemon {
	if logger == nil {
		logger = slog.Default()
	}
	return &Daemon{
		config:   cfg,
		device:   dev,
		store:    store,
		sockPath: cfg.Paths.Socket,
		logger:   logger,
	}
}

// OnShutdown registers the process-level shutdown hook used by the
// shutdown RPC method.
func (d *Daemon) OnShutdown(fn func()) {
	d.shutdownFn = fn
}

// Running returns whether the daemon is currently serving.
func (d *Daemon) Running() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.running
}

// Device returns the underlying device, for tests.
func (d *Daemon) Device() *device.Device {
	return d.device
}

// StartTime returns when the daemon started serving.
func (d *Daemon) StartTime() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.startTime
}

// SocketPath returns the Unix socket path.
func (d *Daemon) SocketPath() string {
	return d.sockPath
}
