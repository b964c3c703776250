// Package metrics counts pdfops runs with Prometheus collectors and exports
// them as a node_exporter textfile after each run.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/harrison/pdfops/internal/models"
)

const namespace = "pdfops"

// Result label values.
const (
	ResultSucceeded = "succeeded"
	ResultFailed    = "failed"
	ResultCancelled = "cancelled"
)

// Recorder owns a private registry so tests and concurrent runs never share
// collectors.
type Recorder struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	pagesWritten  *prometheus.CounterVec
	filesWritten  *prometheus.CounterVec
	inputs        *prometheus.CounterVec
	scanFound     prometheus.Counter
	scanWarnings  prometheus.Counter
	lastRun *prometheus.GaugeVec
}

// New creates a Recorder with every collector registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Merge and split runs by kind and result",
			},
			[]string{"kind", "result"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of merge and split runs",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		pagesWritten: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pages_written_total",
				Help:      "Pages written to output documents by kind",
			},
			[]string{"kind"},
		),
		filesWritten: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "files_written_total",
				Help:      "Output documents written by kind",
			},
			[]string{"kind"},
		),
		inputs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "merge_inputs_total",
				Help:      "Merge inputs by outcome (merged, skipped)",
			},
			[]string{"outcome"},
		),
		scanFound: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scan_files_total",
				Help:      "PDF files admitted by directory scans",
			},
		),
		scanWarnings: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scan_warnings_total",
				Help:      "Unreadable entries skipped by directory scans",
			},
		),
		lastRun: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time of the last finished run by kind",
			},
			[]string{"kind"},
		),
	}
	r.registry.MustRegister(r.runs, r.runDuration, r.pagesWritten, r.filesWritten,
		r.inputs, r.scanFound, r.scanWarnings, r.lastRun)
	return r
}

// Registry exposes the underlying registry as a Gatherer.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ResultLabel maps a run error to a result label.
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return ResultSucceeded
	case errors.Is(err, context.Canceled):
		return ResultCancelled
	default:
		return ResultFailed
	}
}

// RecordMerge counts one merge. result may be partial or nil.
func (r *Recorder) RecordMerge(result *models.MergeResult, err error) {
	r.finish(models.KindMerge, err)
	if result == nil {
		return
	}
	r.runDuration.WithLabelValues(models.KindMerge).Observe(result.Duration.Seconds())
	r.inputs.WithLabelValues("merged").Add(float64(len(result.Merged)))
	r.inputs.WithLabelValues("skipped").Add(float64(len(result.Skipped)))
	if err == nil && result.Output != "" {
		r.filesWritten.WithLabelValues(models.KindMerge).Inc()
		r.pagesWritten.WithLabelValues(models.KindMerge).Add(float64(result.Pages))
	}
}

// RecordSplit counts one split. Outputs written before a failure still count.
func (r *Recorder) RecordSplit(result *models.SplitResult, err error) {
	r.finish(models.KindSplit, err)
	if result == nil {
		return
	}
	r.runDuration.WithLabelValues(models.KindSplit).Observe(result.Duration.Seconds())
	r.filesWritten.WithLabelValues(models.KindSplit).Add(float64(len(result.Outputs)))
	r.pagesWritten.WithLabelValues(models.KindSplit).Add(float64(result.PagesWritten()))
}

// RecordScan counts one directory scan.
func (r *Recorder) RecordScan(found, warnings int) {
	r.scanFound.Add(float64(found))
	r.scanWarnings.Add(float64(warnings))
}

func (r *Recorder) finish(kind string, err error) {
	r.runs.WithLabelValues(kind, ResultLabel(err)).Inc()
	r.lastRun.WithLabelValues(kind).Set(float64(time.Now().Unix()))
}

// WriteTextfile writes the current values in the Prometheus text format,
// atomically, creating parent directories as needed.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
