package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// handleRequest dispatches the request to the appropriate handler.
func (d *Daemon) handleRequest(ctx context.Context, req *Request) Response {
	switch req.Method {
	case "status":
		return d.handleStatus()
	case "ping":
		return Response{Result: "pong"}
	case "speed":
		var p SpeedParams
		if err := decodeParams(req.Params, &p); err != nil {
			return errorResponse(err)
		}
		d.device.Speed(p.Speed)
		return Response{Result: "ok"}
	case "stop":
		d.device.StopTyping()
		return Response{Result: "ok"}
	case "idle":
		d.device.StartIdle()
		return Response{Result: "ok"}
	case "streak":
		var p StreakParams
		if err := decodeParams(req.Params, &p); err != nil {
			return errorResponse(err)
		}
		d.device.ForceStreak(p.On)
		return Response{Result: "ok"}
	case "stats":
		var p StatsParams
		if err := decodeParams(req.Params, &p); err != nil {
			return errorResponse(err)
		}
		d.device.ReportStats(p.CPU, p.RAM, p.WPM)
		return Response{Result: "ok"}
	case "clock":
		var p ClockParams
		if err := decodeParams(req.Params, &p); err != nil {
			return errorResponse(err)
		}
		d.device.SetClock(p.Display)
		return Response{Result: "ok"}
	case "anim":
		var p AnimParams
		if err := decodeParams(req.Params, &p); err != nil {
			return errorResponse(err)
		}
		if err := d.device.ForceState(p.State); err != nil {
			return errorResponse(err)
		}
		return Response{Result: "ok"}
	case "sensitivity":
		var p SensitivityParams
		if err := decodeParams(req.Params, &p); err != nil {
			return errorResponse(err)
		}
		if err := d.device.SetSensitivity(p.Value); err != nil {
			return errorResponse(err)
		}
		return Response{Result: "ok"}
	case "sleep_timeout":
		var p SleepTimeoutParams
		if err := decodeParams(req.Params, &p); err != nil {
			return errorResponse(err)
		}
		if err := d.device.SetSleepTimeout(p.Minutes); err != nil {
			return errorResponse(err)
		}
		return Response{Result: "ok"}
	case "command":
		var p CommandParams
		if err := decodeParams(req.Params, &p); err != nil {
			return errorResponse(err)
		}
		reply, err := d.device.HandleCommand(p.Line)
		if err != nil {
			return errorResponse(err)
		}
		return Response{Result: CommandResult{Reply: reply}}
	case "pause":
		d.device.Pause()
		return Response{Result: "paused"}
	case "resume":
		d.device.Resume()
		return Response{Result: "resumed"}
	case "settings.save":
		if err := d.store.Save(); err != nil {
			return errorResponse(err)
		}
		return Response{Result: d.store.Path()}
	case "settings.reset":
		d.store.Reset()
		if err := d.store.Save(); err != nil {
			return errorResponse(err)
		}
		return Response{Result: "ok"}
	case "settings.get":
		return Response{Result: d.store.Get()}
	case "shutdown":
		return d.handleShutdown()
	default:
		return Response{Error: fmt.Sprintf("unknown method: %s", req.Method)}
	}
}

// handleStatus returns the current daemon and device status.
func (d *Daemon) handleStatus() Response {
	if d.device == nil {
		return Response{Error: "no device available"}
	}

	d.mu.RLock()
	startTime := d.startTime
	d.mu.RUnlock()

	return Response{
		Result: StatusResponse{
			Snapshot:  d.device.Snapshot(),
			Uptime:    time.Since(startTime).Truncate(time.Second).String(),
			StartTime: startTime.Format(time.RFC3339),
			PID:       os.Getpid(),
		},
	}
}

// handleShutdown stops the device and schedules daemon shutdown.
func (d *Daemon) handleShutdown() Response {
	d.device.Stop()

	go func() {
		// Let the response flush before tearing the listener down.
		time.Sleep(100 * time.Millisecond)
		if d.shutdownFn != nil {
			d.shutdownFn()
		}
		_ = d.Stop()
	}()

	return Response{Result: "shutting down"}
}

// decodeParams converts loosely-typed request params into a typed struct.
func decodeParams(params any, out any) error {
	if params == nil {
		return nil
	}
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode params: %w", err)
	}
	return nil
}

func errorResponse(err error) Response {
	return Response{Error: err.Error()}
}
