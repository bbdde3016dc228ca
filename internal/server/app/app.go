package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/dfxyz/portal/internal/infra/confloader"
	"github.com/dfxyz/portal/internal/infra/lifecycle"
	"github.com/dfxyz/portal/internal/infra/shutdown"
	"github.com/dfxyz/portal/internal/server/config"
	"github.com/dfxyz/portal/internal/server/controlserver"
	"github.com/dfxyz/portal/internal/server/httpserver"
	"github.com/dfxyz/portal/internal/telemetry/logger"
	"github.com/dfxyz/portal/internal/telemetry/metric"
)

// App is one running portal server.
type App struct {
	// WorkingDir holds the log file.
	WorkingDir string
	// ConfigPath is watched for level changes when set.
	ConfigPath string
	Config     *config.ServerConfig

	Root      *lifecycle.Context
	WaitGroup *lifecycle.WaitGroup
	Log       logger.Logger
	Metrics   *metric.Registry

	// Stdout and Stderr are the stdio sinks. They default to the process
	// streams.
	Stdout io.Writer
	Stderr io.Writer

	signals *shutdown.Watcher
	control *controlserver.Server
	http    *httpserver.Server

	mu   sync.Mutex
	errs []error
}

// New creates an App for cfg. Nothing runs until Start.
func New(workDir, configPath string, cfg *config.ServerConfig) *App {
	return &App{
		WorkingDir: workDir,
		ConfigPath: configPath,
		Config:     cfg,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}
}

// Run starts the server and blocks until it stopped.
func (a *App) Run() error {
	a.Start()
	return a.Wait()
}

// Start creates the root context and starts every subsystem. It stops at
// the first subsystem that fails.
func (a *App) Start() {
	a.Root = lifecycle.New()
	a.WaitGroup = lifecycle.NewWaitGroup()
	a.Metrics = metric.NewRegistry()
	a.Metrics.MustRegister(metric.NewCollector(a.WaitGroup))

	steps := []struct {
		name  string
		start func() error
	}{
		{"logger", a.startLogger},
		{"signals", a.startSignals},
		{"control", a.startControl},
		{"metrics", a.startMetrics},
		{"config watcher", a.startConfigWatcher},
	}
	for _, step := range steps {
		if err := step.start(); err != nil {
			a.fail(fmt.Errorf("start %s: %w", step.name, err))
			return
		}
	}

	a.Log.Info("portal started", "address", a.ControlAddr().String(), "workdir", a.WorkingDir)
}

// Wait blocks until every subsystem released its permit and returns the
// start errors.
func (a *App) Wait() error {
	a.WaitGroup.Wait()
	if a.signals != nil {
		a.signals.Stop()
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return errors.Join(a.errs...)
}

// ControlAddr returns the bound control address, or nil before the
// control server started.
func (a *App) ControlAddr() net.Addr {
	if a.control == nil {
		return nil
	}
	return a.control.Addr()
}

// MetricsAddr returns the bound metrics address, or nil when disabled.
func (a *App) MetricsAddr() net.Addr {
	if a.http == nil {
		return nil
	}
	return a.http.Addr()
}

func (a *App) fail(err error) {
	a.mu.Lock()
	a.errs = append(a.errs, err)
	a.mu.Unlock()

	if a.Log != nil {
		a.Log.Error("subsystem failed to start", "error", err)
	} else {
		fmt.Fprintf(a.Stderr, "error: %v\n", err)
	}
	a.Root.Cancel()
}

func (a *App) startLogger() error {
	cfg := a.Config.Logger

	var sinks logger.PipelineConfig
	if cfg.UseStdio {
		sinks.Stdout = a.Stdout
		sinks.Stderr = a.Stderr
	}
	if cfg.UseFile {
		f, err := logger.OpenFile(a.WorkingDir, config.DefaultLogFile, cfg.RotateFileNumLimit, cfg.RotateFileLenThreshold)
		if err != nil {
			return err
		}
		sinks.File = f
	}

	p := logger.NewPipeline(sinks)
	log, err := logger.New(logger.Config{
		Level:       cfg.Level,
		Format:      cfg.Format,
		Output:      p.Stdout(),
		ErrorOutput: p.Stderr(),
	})
	if err != nil {
		if sinks.File != nil {
			sinks.File.Close()
		}
		return err
	}
	logger.SetDefault(log)
	a.Log = log

	go p.Run(a.Root, a.WaitGroup.Acquire())
	return nil
}

func (a *App) startSignals() error {
	a.signals = shutdown.NewWatcher(slog.Default().With("component", "signals"))
	go a.signals.Run(a.Root, a.WaitGroup.Acquire(), a.Root)
	return nil
}

func (a *App) startControl() error {
	log := slog.Default().With("component", "control")
	h := controlserver.NewHandler(controlserver.HandlerConfig{
		Root:           a.Root,
		RateLimit:      a.Config.Control.RateLimit,
		AllowedSources: a.Config.Control.AllowedSources,
		Metrics:        a.Metrics,
		Logger:         log,
	})

	s, err := controlserver.Listen(a.Config.Address, h, log)
	if err != nil {
		return err
	}
	a.control = s

	go s.Run(a.Root, a.WaitGroup.Acquire())
	return nil
}

func (a *App) startMetrics() error {
	if a.Config.Metrics.Addr == "" {
		return nil
	}

	log := slog.Default().With("component", "http")
	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Metrics:         a.Metrics.Handler(),
		Logger:          log,
		EnableAccessLog: true,
	})
	s, err := httpserver.Listen(a.Config.Metrics.Addr, router, a.Config.Shutdown.Timeout, log)
	if err != nil {
		return err
	}
	a.http = s

	go s.Run(a.Root, a.WaitGroup.Acquire())
	return nil
}

func (a *App) startConfigWatcher() error {
	if a.ConfigPath == "" {
		return nil
	}

	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(slog.Default().With("component", "config")))
	if err != nil {
		return err
	}
	if err := w.Watch(a.ConfigPath); err != nil {
		return err
	}
	w.OnChange(a.reload)

	go w.Run(a.Root, a.WaitGroup.Acquire())
	return nil
}

// reload applies the logger level from the changed config file.
func (a *App) reload(path string) {
	// Start from the running config so keys absent from the file keep
	// their current values.
	cfg := *a.Config
	if err := confloader.NewLoader(confloader.WithConfigFile(path)).Load(&cfg); err != nil {
		a.Log.Warn("config reload failed", "path", path, "error", err)
		a.Metrics.RecordConfigReload(metric.ResultError)
		return
	}
	if err := config.Verify(&cfg); err != nil {
		a.Log.Warn("config reload rejected", "path", path, "error", err)
		a.Metrics.RecordConfigReload(metric.ResultError)
		return
	}

	if logger.GetLevel() != normalizeLevel(cfg.Logger.Level) {
		logger.SetLevel(cfg.Logger.Level)
		a.Log.Info("log level changed", "level", logger.GetLevel())
	}
	a.Metrics.RecordConfigReload(metric.ResultOK)
}

func normalizeLevel(level string) string {
	if level == "warning" {
		return "warn"
	}
	return level
}
