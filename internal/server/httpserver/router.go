package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Metrics serves GET /metrics. Nil disables the route.
	Metrics http.Handler

	// Logger for request logging.
	Logger *slog.Logger

	// EnableAccessLog logs every completed request at debug level.
	EnableAccessLog bool
}

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	middlewares := []Middleware{Recover(logger), RequestID()}
	if cfg.EnableAccessLog {
		middlewares = append(middlewares, AccessLog(logger))
	}

	mux := http.NewServeMux()
	mux.Handle("GET /health", Chain(http.HandlerFunc(handleHealth), middlewares...))
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", Chain(cfg.Metrics, middlewares...))
	}
	return mux
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
