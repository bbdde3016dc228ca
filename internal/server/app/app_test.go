package app

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	controlv1 "github.com/dfxyz/portal/api/proto/v1"
	"github.com/dfxyz/portal/internal/cli/connection"
	"github.com/dfxyz/portal/internal/server/config"
	"github.com/dfxyz/portal/internal/telemetry/logger"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testConfig() *config.ServerConfig {
	cfg := config.Default()
	cfg.Address = "127.0.0.1:0"
	cfg.Metrics.Addr = "127.0.0.1:0"
	cfg.Shutdown.Timeout = time.Second
	return cfg
}

func newTestApp(t *testing.T, configPath string, cfg *config.ServerConfig) (*App, *lockedBuffer) {
	t.Helper()
	var out lockedBuffer
	a := New(t.TempDir(), configPath, cfg)
	a.Stdout = &out
	a.Stderr = &out

	prev := logger.Default()
	t.Cleanup(func() { logger.SetDefault(prev) })
	return a, &out
}

func waitReturn(t *testing.T, a *App) error {
	t.Helper()
	errCh := make(chan error, 1)
	go func() { errCh <- a.Wait() }()
	select {
	case err := <-errCh:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
		return nil
	}
}

func TestApp_ShutdownRequest(t *testing.T) {
	a, _ := newTestApp(t, "", testConfig())
	a.Start()

	client := connection.NewUDPClient(a.ControlAddr().String(), 2*time.Second)
	resp, err := client.Do(context.Background(), &controlv1.ControlRequest{Content: controlv1.ShutdownRequest{}})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if _, ok := resp.Content.(controlv1.ShutdownAck); !ok {
		t.Errorf("content = %T, want ShutdownAck", resp.Content)
	}

	if err := waitReturn(t, a); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
	if !a.Root.Cancelled() {
		t.Error("root not cancelled")
	}
	if n := a.WaitGroup.Count(); n != 0 {
		t.Errorf("outstanding permits = %d, want 0", n)
	}

	data, err := os.ReadFile(filepath.Join(a.WorkingDir, config.DefaultLogFile))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	for _, want := range []string{"portal started", "shutdown requested"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log file missing %q", want)
		}
	}
}

func TestApp_MetricsEndpoint(t *testing.T) {
	a, _ := newTestApp(t, "", testConfig())
	a.Start()
	defer func() {
		a.Root.Cancel()
		waitReturn(t, a)
	}()

	resp, err := http.Get("http://" + a.MetricsAddr().String() + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	// logger, signals, control and metrics hold permits; the scrape runs
	// inside the metrics server.
	if !strings.Contains(string(body), "portal_lifecycle_permits_outstanding 4") {
		t.Errorf("metrics body missing outstanding permits:\n%s", body)
	}
}

func TestApp_BindFailureCancelsRoot(t *testing.T) {
	taken, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	defer taken.Close()

	cfg := testConfig()
	cfg.Address = taken.LocalAddr().String()
	a, _ := newTestApp(t, "", cfg)
	a.Start()

	err = waitReturn(t, a)
	if err == nil || !strings.Contains(err.Error(), "start control") {
		t.Errorf("Wait() error = %v, want control start error", err)
	}
	if !a.Root.Cancelled() {
		t.Error("root not cancelled after start failure")
	}
}

func TestApp_ConfigReloadChangesLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.DefaultConfigFile)
	if err := os.WriteFile(path, []byte("logger:\n  level: info\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.Metrics.Addr = ""
	a, _ := newTestApp(t, path, cfg)
	a.Start()
	defer func() {
		a.Root.Cancel()
		waitReturn(t, a)
		logger.SetLevel("info")
	}()

	if err := os.WriteFile(path, []byte("logger:\n  level: debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for logger.GetLevel() != "debug" {
		if time.Now().After(deadline) {
			t.Fatal("log level not reloaded")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestApp_StdioSink(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Addr = ""
	cfg.Logger.UseFile = false
	a, out := newTestApp(t, "", cfg)
	a.Start()

	a.Root.Cancel()
	if err := waitReturn(t, a); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
	if !strings.Contains(out.String(), "portal started") {
		t.Errorf("stdout = %q", out.String())
	}
	if _, err := os.Stat(filepath.Join(a.WorkingDir, config.DefaultLogFile)); !os.IsNotExist(err) {
		t.Errorf("log file exists with use_file disabled")
	}
}
