package tzrecovery

import (
	"fmt"
	"os"
	"sync"
)

// DefaultResultFile is where FileSink records matches unless told otherwise.
const DefaultResultFile = "password.lst"

// ResultSink receives one line per confirmed match.
type ResultSink interface {
	Append(line string) error
}

// SinkFunc adapts a function to ResultSink.
type SinkFunc func(line string) error

// Append calls f(line).
func (f SinkFunc) Append(line string) error { return f(line) }

// FileSink appends matches to a text file, one per line.
type FileSink struct {
	Path string

	mu sync.Mutex
}

// NewFileSink returns a sink writing to path (DefaultResultFile when empty).
func NewFileSink(path string) *FileSink {
	if path == "" {
		path = DefaultResultFile
	}
	return &FileSink{Path: path}
}

// Append opens the file in append mode, writes line and syncs it to disk.
func (s *FileSink) Append(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open result file: %w", err)
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("write result file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync result file: %w", err)
	}
	return f.Close()
}

// MemorySink keeps matches in memory.
type MemorySink struct {
	mu    sync.Mutex
	lines []string
}

// Append records line.
func (s *MemorySink) Append(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
	return nil
}

// Lines returns a copy of the recorded lines.
func (s *MemorySink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}
