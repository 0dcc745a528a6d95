// Package metrics provides Prometheus metrics for install and update operations.
// All methods are safe to call on a nil *Metrics.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"hcf/internal/domain"
)

// Metrics holds the collectors registered for one process.
type Metrics struct {
	registry *prometheus.Registry

	operationsTotal  *prometheus.CounterVec
	bytesDownloaded  prometheus.Counter
	installDuration  prometheus.Histogram
	batchItemsTotal  *prometheus.CounterVec
	registryEntries  prometheus.Gauge
	updatesAvailable prometheus.Gauge
}

// New creates a Metrics with its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		operationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hcf_operations_total",
				Help: "Install, update and remove operations by outcome",
			},
			[]string{"action", "outcome"},
		),
		bytesDownloaded: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "hcf_bytes_downloaded_total",
				Help: "Total bytes downloaded from the content source",
			},
		),
		installDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "hcf_install_duration_seconds",
				Help:    "Time to download and place one item",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
			},
		),
		batchItemsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hcf_batch_items_total",
				Help: "Items processed by bulk updates by outcome",
			},
			[]string{"outcome"},
		),
		registryEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "hcf_registry_entries",
				Help: "Number of entries in the installed registry",
			},
		),
		updatesAvailable: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "hcf_updates_available",
				Help: "Number of installed items with a newer remote file at the last check",
			},
		),
	}
}

// Outcome classifies an error into a low-cardinality label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrNoFilesAvailable):
		return "no_files"
	case errors.Is(err, domain.ErrNoDownloadURL):
		return "no_download_url"
	case errors.Is(err, domain.ErrTransportFailure):
		return "transport"
	case errors.Is(err, domain.ErrNotFoundLocally):
		return "not_found_locally"
	default:
		return "error"
	}
}

// ObserveOperation counts one install, update or remove.
func (m *Metrics) ObserveOperation(action string, err error) {
	if m == nil {
		return
	}
	m.operationsTotal.WithLabelValues(action, Outcome(err)).Inc()
}

// AddBytesDownloaded adds n downloaded bytes.
func (m *Metrics) AddBytesDownloaded(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.bytesDownloaded.Add(float64(n))
}

// ObserveInstallDuration records how long one install took.
func (m *Metrics) ObserveInstallDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.installDuration.Observe(d.Seconds())
}

// ObserveBatchItem counts one item processed by the sequencer.
func (m *Metrics) ObserveBatchItem(err error) {
	if m == nil {
		return
	}
	m.batchItemsTotal.WithLabelValues(Outcome(err)).Inc()
}

// SetRegistryEntries records the registry size.
func (m *Metrics) SetRegistryEntries(n int) {
	if m == nil {
		return
	}
	m.registryEntries.Set(float64(n))
}

// SetUpdatesAvailable records the size of the last update set.
func (m *Metrics) SetUpdatesAvailable(n int) {
	if m == nil {
		return
	}
	m.updatesAvailable.Set(float64(n))
}

// Gatherer exposes the registry for tests and exporters.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes all metrics in the text exposition format, suitable
// for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
