// Package audit writes the append-only apply log.
//
// Every apply attempt, successful or not, becomes one JSON line. Lines are
// only ever appended; nothing in the organizer rewrites the log.
package audit

import (
	"bufio"
	"bytes"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/clock"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/fsops"
)

// Entry is one apply attempt.
type Entry struct {
	Timestamp time.Time `json:"ts"`

	// Batch groups the entries of one apply run.
	Batch string `json:"batch,omitempty"`

	Action string `json:"action"` // "apply"
	Mode   string `json:"mode"`
	Rel    string `json:"rel"`
	Src    string `json:"src"`
	Dest   string `json:"dest"`
	OK     bool   `json:"ok"`
	Error  string `json:"error"`

	// Refused marks an overwrite refusal.
	Refused bool `json:"refused,omitempty"`
}

// ActionApply is the only action the organizer logs.
const ActionApply = "apply"

// Log appends entries to a JSONL file.
type Log struct {
	fs    fsops.FS
	path  string
	clock clock.Clock
}

// New creates a Log writing to path.
func New(fs fsops.FS, path string, clk clock.Clock) *Log {
	return &Log{fs: fs, path: path, clock: clk}
}

// Path returns the log file path.
func (l *Log) Path() string {
	return l.path
}

// NewBatchID returns a time-ordered identifier for one apply run.
func (l *Log) NewBatchID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(l.clock.Now()), entropy).String()
}

// Append stamps e with the current time, when unset, and appends it.
func (l *Log) Append(e Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = clock.Seconds(l.clock)
	}
	if e.Action == "" {
		e.Action = ActionApply
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode audit entry: %w", err)
	}
	data = append(data, '\n')

	if err := l.fs.AppendFile(l.path, data, 0644); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// Tail returns the last n entries in file order. n <= 0 returns all.
// Malformed lines are skipped. A missing log yields no entries.
func (l *Log) Tail(n int) ([]Entry, error) {
	data, err := l.fs.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	entries := []Entry{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan audit log: %w", err)
	}

	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}
