// Package metrics records pipeline run metrics in a private Prometheus
// registry and exports them in the node_exporter textfile format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run collects the metrics of one pipeline run.
type Run struct {
	registry *prometheus.Registry

	runDuration   prometheus.Gauge
	runTimestamp  prometheus.Gauge
	runSuccess    prometheus.Gauge
	stageDuration *prometheus.GaugeVec
	linked        *prometheus.GaugeVec
	unlinked      *prometheus.GaugeVec
	changes       *prometheus.GaugeVec
	records       prometheus.Gauge
	kvOperations  prometheus.Counter
}

// NewRun registers the run metrics on a fresh registry.
func NewRun() *Run {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Run{
		registry: reg,
		runDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "animeapi_run_duration_seconds",
			Help: "Wall time of the last pipeline run",
		}),
		runTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "animeapi_run_timestamp_seconds",
			Help: "Unix time the last pipeline run finished",
		}),
		runSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "animeapi_run_success",
			Help: "1 if the last pipeline run succeeded, 0 otherwise",
		}),
		stageDuration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "animeapi_stage_duration_seconds",
			Help: "Wall time of each pipeline stage in the last run",
		}, []string{"stage"}),
		linked: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "animeapi_linked_entries",
			Help: "Dataset entries attached to a canonical record, by platform and pass",
		}, []string{"platform", "pass"}),
		unlinked: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "animeapi_unlinked_entries",
			Help: "Dataset entries left for manual review, by platform",
		}, []string{"platform"}),
		changes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "animeapi_changes",
			Help: "Changes applied to the store in the last run, by type",
		}, []string{"type"}),
		records: factory.NewGauge(prometheus.GaugeOpts{
			Name: "animeapi_records",
			Help: "Canonical records produced by the last run",
		}),
		kvOperations: factory.NewCounter(prometheus.CounterOpts{
			Name: "animeapi_kv_operations_total",
			Help: "Key writes and deletes sent to the KV store",
		}),
	}
}

// Registry exposes the underlying registry.
func (r *Run) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveStage records how long a stage took.
func (r *Run) ObserveStage(stage string, elapsed time.Duration) {
	r.stageDuration.WithLabelValues(stage).Set(elapsed.Seconds())
}

// ObserveLink records the outcome of a linking stage.
func (r *Run) ObserveLink(platform string, exact, fuzzy, unlinked int) {
	r.linked.WithLabelValues(platform, "exact").Set(float64(exact))
	r.linked.WithLabelValues(platform, "fuzzy").Set(float64(fuzzy))
	r.unlinked.WithLabelValues(platform).Set(float64(unlinked))
}

// ObserveUnlinked overwrites the unlinked count of a platform, after manual
// overrides removed some entries.
func (r *Run) ObserveUnlinked(platform string, unlinked int) {
	r.unlinked.WithLabelValues(platform).Set(float64(unlinked))
}

// ObserveChanges records the applied changeset size.
func (r *Run) ObserveChanges(inserts, updates, deletes int) {
	r.changes.WithLabelValues("insert").Set(float64(inserts))
	r.changes.WithLabelValues("update").Set(float64(updates))
	r.changes.WithLabelValues("delete").Set(float64(deletes))
}

// ObserveRecords records the canonical set size.
func (r *Run) ObserveRecords(count int) {
	r.records.Set(float64(count))
}

// AddKVOperations counts operations sent to the KV store.
func (r *Run) AddKVOperations(n int) {
	r.kvOperations.Add(float64(n))
}

// Finish records the run outcome and total duration.
func (r *Run) Finish(started time.Time, success bool) {
	now := time.Now()
	r.runDuration.Set(now.Sub(started).Seconds())
	r.runTimestamp.Set(float64(now.Unix()))
	if success {
		r.runSuccess.Set(1)
	} else {
		r.runSuccess.Set(0)
	}
}

// WriteTextfile writes the registry to path atomically. An empty path is a
// no-op.
func (r *Run) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
