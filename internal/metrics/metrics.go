// Package metrics exposes search-driver throughput as Prometheus gauges and
// counters, observability being the non-goal-compliant substitute for the
// dynamic difficulty adjustment the specification explicitly excludes.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the process-lifetime collectors the driver updates once per
// inner-loop batch.
type Metrics struct {
	registry      *prometheus.Registry
	batchesTotal  prometheus.Counter
	hashesTotal   prometheus.Counter
	hashRateMhps  prometheus.Gauge
	lastBatchSecs prometheus.Gauge
}

// New registers and returns a fresh collector set.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		batchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "createxcrunch_batches_total",
			Help: "Number of inner-loop batches submitted to the device.",
		}),
		hashesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "createxcrunch_hashes_total",
			Help: "Total candidate addresses evaluated across all batches.",
		}),
		hashRateMhps: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "createxcrunch_hash_rate_mhps",
			Help: "Most recently observed hash rate, in millions of hashes per second.",
		}),
		lastBatchSecs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "createxcrunch_last_batch_seconds",
			Help: "Wall-clock duration of the most recently completed batch.",
		}),
	}
	reg.MustRegister(m.batchesTotal, m.hashesTotal, m.hashRateMhps, m.lastBatchSecs)
	return m
}

// ObserveBatch records the completion of one inner-loop batch of the given
// work size and wall-clock duration.
func (m *Metrics) ObserveBatch(workSize uint64, elapsed time.Duration) {
	m.batchesTotal.Inc()
	m.hashesTotal.Add(float64(workSize))
	m.lastBatchSecs.Set(elapsed.Seconds())
	if elapsed.Seconds() > 0 {
		m.hashRateMhps.Set(float64(workSize) / elapsed.Seconds() / 1e6)
	}
}

// Handler returns an http.Handler serving the collector set in the
// Prometheus text exposition format, for wiring onto a --metrics-addr
// listener.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
