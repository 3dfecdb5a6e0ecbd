// Copyright 2026 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Worker exit statuses used as the "status" label.
const (
	WorkerStatusSuccess    = "success"
	WorkerStatusFailure    = "failure"
	WorkerStatusNotStarted = "not_started"
)

const (
	namespace = "perfcheck"
	subsystem = "coordinator"
)

// CoordinatorMetrics holds the collectors of one coordinator run. Each run
// owns its collectors, so metrics pushed under a run id never include an
// earlier run in the same process.
type CoordinatorMetrics struct {
	// WorkersLaunched counts worker processes the coordinator tried to start.
	WorkersLaunched prometheus.Counter
	// WorkerExits counts finished workers by exit status.
	WorkerExits *prometheus.CounterVec
	// WorkerDuration records the wall time of each worker process.
	WorkerDuration prometheus.Histogram
	// RunsPerWorker is the run share handed to every worker.
	RunsPerWorker prometheus.Gauge
	// OutputBytes counts captured bytes copied to the coordinator's streams.
	OutputBytes *prometheus.CounterVec
	// ColumnMismatches counts worker rows whose width differs from the header.
	ColumnMismatches prometheus.Counter
}

// NewCoordinatorMetrics returns a fresh, unregistered set of collectors.
func NewCoordinatorMetrics() *CoordinatorMetrics {
	return &CoordinatorMetrics{
		WorkersLaunched: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "workers_launched_total",
				Help:      "Total number of worker processes launched",
			}),
		WorkerExits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "worker_exits_total",
				Help:      "Total number of finished worker processes by status",
			}, []string{"status"}),
		WorkerDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "worker_duration_seconds",
				Help:      "Bucketed histogram of worker process wall time (s)",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 20), // 10ms~2.9h
			}),
		RunsPerWorker: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "runs_per_worker",
				Help:      "Runs passed to each worker process",
			}),
		OutputBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "output_bytes_total",
				Help:      "Total captured worker output bytes drained, by stream",
			}, []string{"stream"}),
		ColumnMismatches: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "column_mismatch_rows_total",
				Help:      "Total number of worker rows not matching the header width",
			}),
	}
}

// InitCoordinatorMetrics registers all collectors of m.
func InitCoordinatorMetrics(registry *prometheus.Registry, m *CoordinatorMetrics) {
	registry.MustRegister(m.WorkersLaunched)
	registry.MustRegister(m.WorkerExits)
	registry.MustRegister(m.WorkerDuration)
	registry.MustRegister(m.RunsPerWorker)
	registry.MustRegister(m.OutputBytes)
	registry.MustRegister(m.ColumnMismatches)
}

// NewRegistry returns a registry with the collectors of m registered.
func NewRegistry(m *CoordinatorMetrics) *prometheus.Registry {
	registry := prometheus.NewRegistry()
	InitCoordinatorMetrics(registry, m)
	return registry
}
