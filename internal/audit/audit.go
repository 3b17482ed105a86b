// Package audit appends security-relevant actions to a JSON-lines log.
package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"sync"
	"time"

	"github.com/akadevbarki76-collab/scaling-parakeet/internal/gitctx"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/logger"
)

// FileName is the audit log file inside the audit directory.
const FileName = "audit.log"

// Event is one audit record.
type Event struct {
	Timestamp time.Time        `json:"timestamp"`
	User      string           `json:"user"`
	Action    string           `json:"action"`
	Message   string           `json:"message,omitempty"`
	Metadata  map[string]any   `json:"metadata"`
	Repo      *gitctx.RepoInfo `json:"repo,omitempty"`
}

// Log writes events to a file. A nil *Log or a disabled Log discards events.
type Log struct {
	mu      sync.Mutex
	path    string
	enabled bool
	now     func() time.Time
}

// New creates a Log writing to dir/audit.log.
func New(dir string, enabled bool) *Log {
	return &Log{path: filepath.Join(dir, FileName), enabled: enabled, now: time.Now}
}

// Path returns the log file location.
func (l *Log) Path() string { return l.path }

// Record appends an event. When target is a path inside a git repository the
// repository's branch and commit are attached. Failures are logged and
// returned but callers normally ignore them.
func (l *Log) Record(action, message string, metadata map[string]any, target string) error {
	if l == nil || !l.enabled {
		return nil
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	ev := Event{
		Timestamp: l.now().UTC(),
		User:      currentUser(),
		Action:    action,
		Message:   message,
		Metadata:  metadata,
	}
	if target != "" {
		if _, err := os.Stat(target); err == nil {
			if info, err := gitctx.Collect(target); err == nil {
				ev.Repo = info
			}
		}
	}

	line, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(l.path), 0o750); err != nil {
		logger.Warn("audit directory unavailable", logger.String("path", l.path), logger.Err(err))
		return err
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) // #nosec G304 -- path derived from config
	if err != nil {
		logger.Warn("audit log unavailable", logger.String("path", l.path), logger.Err(err))
		return err
	}
	defer func() { _ = f.Close() }()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write audit event: %w", err)
	}
	logger.Trace("audit event recorded", logger.String("action", action))
	return nil
}

// Read returns all events in the log, oldest first.
func (l *Log) Read() ([]Event, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var events []Event
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var ev Event
		if err := dec.Decode(&ev); err != nil {
			return events, fmt.Errorf("decode audit log: %w", err)
		}
		events = append(events, ev)
	}
	return events, nil
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	for _, k := range []string{"USER", "USERNAME"} {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return "unknown"
}
