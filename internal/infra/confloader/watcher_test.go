package confloader

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dfxyz/portal/internal/infra/lifecycle"
)

func TestNewWatcher_WithLogger(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	w, err := NewWatcher(WithWatcherLogger(logger))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.close()

	if w.logger != logger {
		t.Error("WithWatcherLogger() option not applied")
	}
}

func TestWatcher_Watch_NonexistentDir(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.close()

	if err := w.Watch("/nonexistent/path/config.yaml"); err == nil {
		t.Error("Watch() expected error for nonexistent directory")
	}
}

func TestWatcher_OnChange_MultipleCalls(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.close()

	var count int
	for i := 0; i < 3; i++ {
		w.OnChange(func(path string) {
			count++
		})
	}

	w.notifyCallbacks("/test/path")

	if count != 3 {
		t.Errorf("OnChange() count = %d, want 3", count)
	}
}

func TestWatcher_Run(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "portal.config.yaml")
	if err := os.WriteFile(configFile, []byte("address: 127.0.0.1:1"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := w.Watch(configFile); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	changed := make(chan string, 16)
	w.OnChange(func(path string) {
		changed <- path
	})

	root := lifecycle.New()
	wg := lifecycle.NewWaitGroup()
	go w.Run(root, wg.Acquire())

	// Give the watcher time to start
	time.Sleep(50 * time.Millisecond)

	// Unrelated files in the same directory are ignored
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.WriteFile(configFile, []byte("address: 127.0.0.1:2"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case path := <-changed:
		if path != filepath.Clean(configFile) {
			t.Errorf("callback path = %q, want %q", path, configFile)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("change callback not called")
	}

	root.Cancel()

	select {
	case <-wg.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not release its permit after cancellation")
	}
}
