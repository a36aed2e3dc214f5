// Package telemlog persists recovered telemetry to an append-only file, one
// formatted line per record. Lines are never rewritten; the file is the
// mission's permanent capture.
package telemlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cansat-link/groundstation/internal/telemetry"
)

// Writer appends telemetry lines to a single file.
type Writer struct {
	mu sync.Mutex
	f  *os.File
}

// Open creates the file (and its directory) if needed and positions at the
// end.
func Open(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("telemetry log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry log: %w", err)
	}
	return &Writer{f: f}, nil
}

// Append writes one record as a newline-terminated line.
func (w *Writer) Append(rec telemetry.Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := w.f.WriteString(rec.Format() + "\n")
	return err
}

// Close flushes and closes the file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f.Close()
}
