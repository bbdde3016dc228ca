package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jrick/logrotate/rotator"
)

// OpenFile opens the log file name inside dir. With numLimit > 0 the file
// is rotated once it grows past thresholdBytes, keeping numLimit old rolls.
// With numLimit == 0 the file is appended to without rotation.
func OpenFile(dir, name string, numLimit int, thresholdBytes int64) (io.WriteCloser, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	path := filepath.Join(dir, name)

	if numLimit <= 0 {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		return f, nil
	}

	thresholdKB := thresholdBytes / 1024
	if thresholdKB < 1 {
		thresholdKB = 1
	}
	r, err := rotator.New(path, thresholdKB, false, numLimit)
	if err != nil {
		return nil, fmt.Errorf("open log rotator: %w", err)
	}
	return r, nil
}
