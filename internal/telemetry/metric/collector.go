package metric

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dfxyz/portal/internal/infra/lifecycle"
)

// PermitCounter reports outstanding permits.
type PermitCounter interface {
	Count() int
}

// Collector exports lifecycle state on every scrape.
type Collector struct {
	permits PermitCounter

	outstanding *prometheus.Desc
	created     *prometheus.Desc
	alive       *prometheus.Desc
	cancelled   *prometheus.Desc
}

// NewCollector creates a collector reading permits from wg.
func NewCollector(wg PermitCounter) *Collector {
	return &Collector{
		permits: wg,
		outstanding: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "lifecycle", "permits_outstanding"),
			"Wait-group permits not yet released.", nil, nil),
		created: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "lifecycle", "contexts_created_total"),
			"Lifecycle contexts created.", nil, nil),
		alive: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "lifecycle", "contexts_alive"),
			"Lifecycle contexts not yet cancelled.", nil, nil),
		cancelled: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "lifecycle", "contexts_cancelled_total"),
			"Lifecycle contexts cancelled, by reason.", []string{"reason"}, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.outstanding
	ch <- c.created
	ch <- c.alive
	ch <- c.cancelled
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := lifecycle.Stats()

	ch <- prometheus.MustNewConstMetric(c.outstanding, prometheus.GaugeValue, float64(c.permits.Count()))
	ch <- prometheus.MustNewConstMetric(c.created, prometheus.CounterValue, float64(s.Created))
	ch <- prometheus.MustNewConstMetric(c.alive, prometheus.GaugeValue, float64(s.Alive))
	for _, r := range []lifecycle.Reason{lifecycle.ReasonUser, lifecycle.ReasonParent, lifecycle.ReasonTimeout} {
		ch <- prometheus.MustNewConstMetric(c.cancelled, prometheus.CounterValue, float64(s.Cancelled[r]), r.String())
	}
}
