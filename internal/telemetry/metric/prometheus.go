package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "portal"

// Control request results.
const (
	ResultOK        = "ok"
	ResultMalformed = "malformed"
	ResultDenied    = "denied"
	ResultLimited   = "rate_limited"
	ResultError     = "error"
)

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// ControlRequests counts control datagrams by request type and result.
	ControlRequests *prometheus.CounterVec
	// ControlReplyErrors counts replies that could not be sent.
	ControlReplyErrors prometheus.Counter
	// ConfigReloads counts config reloads by result.
	ConfigReloads *prometheus.CounterVec
}

// NewRegistry creates a registry with the Go runtime and process
// collectors plus the portal counters.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		registry: reg,
		ControlRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "control",
			Name:      "requests_total",
			Help:      "Control requests received, by type and result.",
		}, []string{"type", "result"}),
		ControlReplyErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "control",
			Name:      "reply_errors_total",
			Help:      "Control replies that failed to send.",
		}),
		ConfigReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "config",
			Name:      "reloads_total",
			Help:      "Config file reloads, by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.ControlRequests,
		r.ControlReplyErrors,
		r.ConfigReloads,
	)
	return r
}

// MustRegister registers additional collectors.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	r.registry.MustRegister(cs...)
}

// RecordControlRequest counts one control request.
func (r *Registry) RecordControlRequest(typ, result string) {
	r.ControlRequests.WithLabelValues(typ, result).Inc()
}

// RecordConfigReload counts one config reload.
func (r *Registry) RecordConfigReload(result string) {
	r.ConfigReloads.WithLabelValues(result).Inc()
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
