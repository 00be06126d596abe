package events

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// followPollInterval is how often Follow checks the log for new lines.
const followPollInterval = 250 * time.Millisecond

// LogReader reads the JSONL event log written by LogSink.
type LogReader struct {
	path string
}

// NewLogReader creates a reader for the given event log path.
func NewLogReader(path string) *LogReader {
	return &LogReader{path: path}
}

// Tail returns the last n valid JSONL lines. A malformed final line is
// skipped silently since it may be a partial write in progress; malformed
// lines elsewhere are logged and skipped.
func (r *LogReader) Tail(n int) ([]string, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, err
	}

	raw := strings.Split(string(data), "\n")
	lines := make([]string, 0, len(raw))
	for i, line := range raw {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !json.Valid([]byte(line)) {
			if i == len(raw)-1 || (i == len(raw)-2 && raw[len(raw)-1] == "") {
				continue
			}
			slog.Warn("skipping malformed event log line", "line", i+1)
			continue
		}
		lines = append(lines, line)
	}

	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}

// Follow streams new log lines to out until ctx is cancelled. It starts at
// the current end of file and survives log rotation by reopening when the
// file shrinks or is replaced.
func (r *LogReader) Follow(ctx context.Context, out func(line string)) error {
	file, err := os.Open(r.path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return err
	}

	reader := bufio.NewReader(file)
	var partial strings.Builder

	ticker := time.NewTicker(followPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if rotated, err := r.rotated(file); err == nil && rotated {
			_ = file.Close()
			file, err = os.Open(r.path)
			if err != nil {
				return err
			}
			reader = bufio.NewReader(file)
			partial.Reset()
		}

		for {
			chunk, err := reader.ReadString('\n')
			partial.WriteString(chunk)
			if err != nil {
				break
			}
			line := strings.TrimSpace(partial.String())
			partial.Reset()
			if line != "" {
				out(line)
			}
		}
	}
}

// rotated reports whether the log file was truncated or replaced out from
// under the open handle.
func (r *LogReader) rotated(file *os.File) (bool, error) {
	cur, err := file.Stat()
	if err != nil {
		return false, err
	}
	disk, err := os.Stat(r.path)
	if err != nil {
		return false, err
	}
	if !os.SameFile(cur, disk) {
		return true, nil
	}
	offset, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return false, err
	}
	return disk.Size() < offset, nil
}
