package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "free_disk"

// Run holds the collectors describing a single reclamation run. A nil *Run
// is valid and records nothing.
type Run struct {
	registry *prometheus.Registry

	filesRemoved    prometheus.Counter
	bytesRemoved    prometheus.Counter
	candidates      prometheus.Gauge
	targetFreeBytes prometheus.Gauge
	initialFree     prometheus.Gauge
	finalFree       prometheus.Gauge
	lastRemovedTime prometheus.Gauge
	success         prometheus.Gauge
	lastRunTime     prometheus.Gauge
}

// NewRun creates the run collectors on a private registry.
func NewRun() *Run {
	m := &Run{
		registry: prometheus.NewRegistry(),
		filesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "files_removed_total",
			Help: "Number of files removed by the last run.",
		}),
		bytesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "bytes_removed_total",
			Help: "Sum of the sizes of files removed by the last run.",
		}),
		candidates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "candidate_files",
			Help: "Number of files matching the delete filter at scan time.",
		}),
		targetFreeBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "target_free_bytes",
			Help: "Requested free bytes on the filesystem.",
		}),
		initialFree: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "initial_free_bytes",
			Help: "Free bytes reported by the filesystem before the run.",
		}),
		finalFree: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "final_free_bytes",
			Help: "Free bytes reported by the filesystem after the run.",
		}),
		lastRemovedTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "last_removed_mtime_seconds",
			Help: "Modification time of the newest file removed by the last run.",
		}),
		success: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "success",
			Help: "1 if the free space target was met at the end of the last run.",
		}),
		lastRunTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "last_run_timestamp_seconds",
			Help: "Time the last run finished.",
		}),
	}
	m.registry.MustRegister(
		m.filesRemoved, m.bytesRemoved, m.candidates, m.targetFreeBytes,
		m.initialFree, m.finalFree, m.lastRemovedTime, m.success, m.lastRunTime,
	)
	return m
}

// Gatherer exposes the registry, mainly for tests.
func (m *Run) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Start records the target and the free bytes measured before any deletion.
func (m *Run) Start(target, initialFree int64) {
	if m == nil {
		return
	}
	m.targetFreeBytes.Set(float64(target))
	m.initialFree.Set(float64(initialFree))
}

// Scanned records how many files matched the filter.
func (m *Run) Scanned(n int) {
	if m == nil {
		return
	}
	m.candidates.Set(float64(n))
}

// FileRemoved counts a deleted file and adds its size to the byte total.
func (m *Run) FileRemoved(size int64, modTime time.Time) {
	if m == nil {
		return
	}
	m.filesRemoved.Inc()
	m.bytesRemoved.Add(float64(size))
	m.lastRemovedTime.Set(float64(modTime.UnixNano()) / 1e9)
}

// Finish records the outcome of the run once the final check is done.
func (m *Run) Finish(finalFree int64, sufficient bool, now time.Time) {
	if m == nil {
		return
	}
	m.finalFree.Set(float64(finalFree))
	if sufficient {
		m.success.Set(1)
	} else {
		m.success.Set(0)
	}
	m.lastRunTime.Set(float64(now.Unix()))
}

// WriteTextfile writes the collected metrics in the text exposition format
// for the node-exporter textfile collector. The file is replaced atomically.
func (m *Run) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
