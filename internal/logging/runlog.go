package logging

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// RunLog is the human-readable record of price changes made by the job.
type RunLog interface {
	AppendLine(text string) error
}

// FileRunLog appends lines to a text file. The file is opened, written, synced and closed
// for every line so a killed run never loses lines it already reported, and earlier
// content is never truncated.
type FileRunLog struct {
	path string
	mu   sync.Mutex
}

func NewFileRunLog(path string) (*FileRunLog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("run log path is required")
	}
	return &FileRunLog{path: path}, nil
}

func (f *FileRunLog) Path() string {
	return f.path
}

func (f *FileRunLog) AppendLine(text string) (err error) {
	line := strings.TrimRight(text, "\r\n") + "\n"

	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open run log: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close run log: %w", closeErr)
		}
	}()

	if _, err := file.WriteString(line); err != nil {
		return fmt.Errorf("write run log: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("sync run log: %w", err)
	}
	return nil
}

// DiscardRunLog drops every line. Used for dry runs.
type DiscardRunLog struct{}

func (DiscardRunLog) AppendLine(string) error {
	return nil
}
