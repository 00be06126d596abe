package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/pawsd/deskcat/internal/settings"
)

// DefaultClientTimeout is the default timeout for client operations.
const DefaultClientTimeout = 5 * time.Second

// Client connects to the daemon via Unix socket.
type Client struct {
	sockPath string
	timeout  time.Duration
}

// NewClient creates a new daemon client.
func NewClient(sockPath string) *Client {
	return &Client{
		sockPath: sockPath,
		timeout:  DefaultClientTimeout,
	}
}

// SetTimeout sets the timeout for client operations.
func (c *Client) SetTimeout(d time.Duration) {
	c.timeout = d
}

// call sends a JSON-RPC request to the daemon and returns the response.
func (c *Client) call(method string, params any) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.sockPath, c.timeout)
	if err != nil {
		return nil, c.wrapConnError(err)
	}
	defer func() { _ = conn.Close() }()

	if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	req := Request{Method: method, Params: params}
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.Error != "" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// wrapConnError converts connection errors to user-friendly messages.
func (c *Client) wrapConnError(err error) error {
	var sysErr syscall.Errno
	if errors.As(err, &sysErr) {
		switch sysErr {
		case syscall.ENOENT:
			return errors.New("daemon not running (socket not found)")
		case syscall.ECONNREFUSED:
			return errors.New("daemon not running (connection refused)")
		}
	}

	if os.IsNotExist(err) {
		return errors.New("daemon not running (socket not found)")
	}

	if errors.Is(err, os.ErrDeadlineExceeded) {
		return errors.New("daemon request timed out")
	}

	return fmt.Errorf("connect to daemon: %w", err)
}

// decodeResult re-marshals a loosely-typed result into out.
func decodeResult(result any, out any) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	return nil
}

// Status returns the current daemon and device status.
func (c *Client) Status() (*StatusResponse, error) {
	resp, err := c.call("status", nil)
	if err != nil {
		return nil, err
	}

	var status StatusResponse
	if err := decodeResult(resp.Result, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Ping checks daemon liveness over the RPC path.
func (c *Client) Ping() error {
	_, err := c.call("ping", nil)
	return err
}

// Speed reports a typing speed sample.
func (c *Client) Speed(speed int) error {
	_, err := c.call("speed", SpeedParams{Speed: speed})
	return err
}

// StopTyping forces the cat back to the first idle stage.
func (c *Client) StopTyping() error {
	_, err := c.call("stop", nil)
	return err
}

// StartIdle hands idle progression back to the device.
func (c *Client) StartIdle() error {
	_, err := c.call("idle", nil)
	return err
}

// Streak forces streak mode on or off.
func (c *Client) Streak(on bool) error {
	_, err := c.call("streak", StreakParams{On: on})
	return err
}

// Stats reports host system stats.
func (c *Client) Stats(cpu, ram, wpm int) error {
	_, err := c.call("stats", StatsParams{CPU: cpu, RAM: ram, WPM: wpm})
	return err
}

// Clock reports the formatted clock string.
func (c *Client) Clock(display string) error {
	_, err := c.call("clock", ClockParams{Display: display})
	return err
}

// Anim forces a named animation state.
func (c *Client) Anim(state string) error {
	_, err := c.call("anim", AnimParams{State: state})
	return err
}

// Sensitivity sets the typing sensitivity.
func (c *Client) Sensitivity(v float64) error {
	_, err := c.call("sensitivity", SensitivityParams{Value: v})
	return err
}

// SleepTimeout sets the sleep timeout in minutes.
func (c *Client) SleepTimeout(minutes int) error {
	_, err := c.call("sleep_timeout", SleepTimeoutParams{Minutes: minutes})
	return err
}

// Command sends one raw wire-protocol line and returns the device's reply.
func (c *Client) Command(line string) (string, error) {
	resp, err := c.call("command", CommandParams{Line: line})
	if err != nil {
		return "", err
	}
	var result CommandResult
	if err := decodeResult(resp.Result, &result); err != nil {
		return "", err
	}
	return result.Reply, nil
}

// Pause freezes the animation.
func (c *Client) Pause() error {
	_, err := c.call("pause", nil)
	return err
}

// Resume unfreezes the animation.
func (c *Client) Resume() error {
	_, err := c.call("resume", nil)
	return err
}

// SaveSettings persists the current settings.
func (c *Client) SaveSettings() error {
	_, err := c.call("settings.save", nil)
	return err
}

// ResetSettings restores and persists factory settings.
func (c *Client) ResetSettings() error {
	_, err := c.call("settings.reset", nil)
	return err
}

// GetSettings returns the daemon's current settings.
func (c *Client) GetSettings() (*settings.Settings, error) {
	resp, err := c.call("settings.get", nil)
	if err != nil {
		return nil, err
	}
	var s settings.Settings
	if err := decodeResult(resp.Result, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Shutdown stops the daemon process.
func (c *Client) Shutdown() error {
	_, err := c.call("shutdown", nil)
	return err
}

// IsRunning checks if the daemon is running by attempting to connect.
func (c *Client) IsRunning() bool {
	conn, err := net.DialTimeout("unix", c.sockPath, time.Second)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
