// Package metrics counts what happened during one ingestion run. Counters live
// in a per-run prometheus registry rather than the default global one, so
// concurrent runs in one process keep separate numbers.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cladeloom"

// Stats groups the counters of a single run.
type Stats struct {
	registry *prometheus.Registry

	FilesProcessed  prometheus.Counter
	FileErrors      prometheus.Counter
	RecordsAccepted prometheus.Counter
	RecordErrors    *prometheus.CounterVec // label: reason
	Duplicates      prometheus.Counter
	SamplesIgnored  prometheus.Counter
}

// Record error reasons.
const (
	ReasonMissingSample = "missing_sample"
	ReasonEmptySample   = "empty_sample"
)

// NewStats creates the counters and registers them in a fresh registry.
func NewStats() *Stats {
	s := &Stats{
		registry: prometheus.NewRegistry(),
		FilesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_processed_total",
			Help:      "Report files opened and read.",
		}),
		FileErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_errors_total",
			Help:      "Report files that failed to open or parse.",
		}),
		RecordsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_accepted_total",
			Help:      "Rows merged into the dataset.",
		}),
		RecordErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_errors_total",
			Help:      "Rows skipped, by reason.",
		}, []string{"reason"}),
		Duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_samples_total",
			Help:      "Rows whose sample name was already in the dataset.",
		}),
		SamplesIgnored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_ignored_total",
			Help:      "Samples dropped by ignore patterns.",
		}),
	}
	s.registry.MustRegister(
		s.FilesProcessed,
		s.FileErrors,
		s.RecordsAccepted,
		s.RecordErrors,
		s.Duplicates,
		s.SamplesIgnored,
	)
	return s
}

// Registry exposes the underlying registry as a Gatherer.
func (s *Stats) Registry() prometheus.Gatherer { return s.registry }

// WriteTextfile writes the counters in the Prometheus text exposition format,
// suitable for a node_exporter textfile collector.
func (s *Stats) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, s.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
