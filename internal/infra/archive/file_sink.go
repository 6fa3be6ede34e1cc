// Package archive appends roster snapshots to a plain text file.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileSink is an append-only archive file. Nothing reads it back.
type FileSink struct {
	mu   sync.Mutex
	path string
}

func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// AppendLine writes line followed by a newline. The file is opened per call
// so external rotation or deletion between resets is harmless.
func (s *FileSink) AppendLine(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create archive directory: %w", err)
		}
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	if _, err := f.WriteString(strings.TrimRight(line, "\n") + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("failed to write archive line: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close archive: %w", err)
	}
	return nil
}
