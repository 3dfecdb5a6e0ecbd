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

// Package coordinator splits a run budget across worker processes of the
// performance check executable and merges their captured output.
package coordinator

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/CRYPTO-KU/FaultTolerantSmartGridAggregation/pkg/config"
	"github.com/CRYPTO-KU/FaultTolerantSmartGridAggregation/pkg/errors"
	"github.com/CRYPTO-KU/FaultTolerantSmartGridAggregation/pkg/metrics"
	"github.com/CRYPTO-KU/FaultTolerantSmartGridAggregation/pkg/schema"
	"github.com/google/uuid"
	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const pushTimeout = 10 * time.Second

// Plan returns the runs handed to each worker. The remainder of the division
// is dropped, so fewer runs than workers gives every worker zero runs.
func Plan(totalRuns, workers int) int {
	return totalRuns / workers
}

// Coordinator runs one batch of workers. It is not safe for concurrent use.
type Coordinator struct {
	cfg    *config.RunConfig
	schema schema.Schema
	runID  string

	stdout io.Writer
	stderr io.Writer

	dir        string
	cleaned    bool
	workers    []*Worker
	failed     *atomic.Int32
	mismatches map[int][]schema.Mismatch

	metrics  *metrics.CoordinatorMetrics
	registry *prometheus.Registry
}

// New validates cfg and returns a coordinator writing the merged output to
// stdout and stderr. An invalid cfg fails with ErrInvalidArgument before
// anything touches the filesystem.
func New(cfg *config.RunConfig, stdout, stderr io.Writer) (*Coordinator, error) {
	if err := cfg.ValidateAndAdjust(); err != nil {
		return nil, errors.Trace(err)
	}
	s, err := schema.Lookup(schema.Version(cfg.Schema))
	if err != nil {
		return nil, errors.Trace(err)
	}
	m := metrics.NewCoordinatorMetrics()
	return &Coordinator{
		cfg:        cfg,
		schema:     s,
		runID:      uuid.NewString(),
		stdout:     stdout,
		stderr:     stderr,
		failed:     atomic.NewInt32(0),
		mismatches: make(map[int][]schema.Mismatch),
		metrics:    m,
		registry:   metrics.NewRegistry(m),
	}, nil
}

// RunID identifies this run in the temporary directory name and pushed metrics.
func (c *Coordinator) RunID() string {
	return c.runID
}

// Dir is the temporary directory holding the captured output, empty before
// Launch.
func (c *Coordinator) Dir() string {
	return c.dir
}

// Workers returns the handles in index order.
func (c *Coordinator) Workers() []*Worker {
	return c.workers
}

// FailedWorkers is the number of workers that did not start or exited
// non-zero. Only valid after AwaitAll.
func (c *Coordinator) FailedWorkers() int {
	return int(c.failed.Load())
}

// Mismatches returns the rows of each worker's output whose width differs
// from the header, keyed by worker index. Only filled with CheckColumns.
func (c *Coordinator) Mismatches() map[int][]schema.Mismatch {
	return c.mismatches
}

// Run executes the whole batch: launch, await all, emit the header, drain and
// clean up. The temporary directory is removed on every return path once it
// was created, unless KeepTemp is set. Worker exit codes never make Run fail.
func (c *Coordinator) Run() (err error) {
	start := time.Now()
	runsPerWorker := Plan(c.cfg.TotalRuns, c.cfg.Workers)
	log.Info("start parallel performance check",
		zap.String("runID", c.runID),
		zap.Int("runs", c.cfg.TotalRuns),
		zap.Int("processes", c.cfg.Workers),
		zap.Int("runsPerWorker", runsPerWorker),
		zap.Int("droppedRuns", c.cfg.TotalRuns-runsPerWorker*c.cfg.Workers),
		zap.String("executable", c.cfg.Executable),
		zap.Int("schema", int(c.schema.Version)))

	defer func() {
		if cleanupErr := c.Cleanup(); cleanupErr != nil && err == nil {
			err = cleanupErr
		}
	}()

	launchErr := c.Launch(runsPerWorker)
	// Workers started before a launch failure still run to completion.
	c.AwaitAll()
	if launchErr != nil {
		return errors.Trace(launchErr)
	}

	if c.cfg.CheckColumns {
		c.checkColumns()
	}
	if err := c.EmitHeader(); err != nil {
		return errors.Trace(err)
	}
	if err := c.Drain(); err != nil {
		return errors.Trace(err)
	}

	log.Info("parallel performance check finished",
		zap.String("runID", c.runID),
		zap.Int("failedWorkers", c.FailedWorkers()),
		zap.Duration("duration", time.Since(start)))
	c.pushMetrics()
	return nil
}

// Launch creates the temporary directory and starts one worker per slot,
// each with runsPerWorker as its only argument. It does not wait.
func (c *Coordinator) Launch(runsPerWorker int) error {
	dir, err := os.MkdirTemp(c.cfg.TempDir, "perf-"+c.runID+"-")
	if err != nil {
		return errors.WrapError(errors.ErrCreateTempDir, err, c.tempParent())
	}
	c.dir = dir
	c.metrics.RunsPerWorker.Set(float64(runsPerWorker))

	c.workers = make([]*Worker, 0, c.cfg.Workers)
	for i := 1; i <= c.cfg.Workers; i++ {
		w, err := startWorker(dir, c.cfg.Executable, i, c.cfg.Workers, runsPerWorker)
		if err != nil {
			return errors.Trace(err)
		}
		c.metrics.WorkersLaunched.Inc()
		c.workers = append(c.workers, w)
	}
	log.Info("all workers launched",
		zap.String("dir", dir),
		zap.Int("workers", len(c.workers)))
	return nil
}

// AwaitAll blocks until every started worker has exited, whatever its exit
// code.
func (c *Coordinator) AwaitAll() {
	// The group is only used for fan-in: a worker's exit status is recorded on
	// its handle and never fails the group, so Wait always returns nil.
	var g errgroup.Group
	for _, w := range c.workers {
		w := w
		if !w.Started() {
			c.failed.Inc()
			c.metrics.WorkerExits.WithLabelValues(metrics.WorkerStatusNotStarted).Inc()
			continue
		}
		g.Go(func() error {
			w.wait()
			c.metrics.WorkerDuration.Observe(w.Duration.Seconds())
			if w.ExitCode != 0 {
				c.failed.Inc()
				c.metrics.WorkerExits.WithLabelValues(metrics.WorkerStatusFailure).Inc()
				return nil
			}
			c.metrics.WorkerExits.WithLabelValues(metrics.WorkerStatusSuccess).Inc()
			return nil
		})
	}
	_ = g.Wait()
}

func (c *Coordinator) tempParent() string {
	if c.cfg.TempDir != "" {
		return c.cfg.TempDir
	}
	return os.TempDir()
}

func (c *Coordinator) pushMetrics() {
	if c.cfg.PushGateway == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()
	if err := metrics.Push(ctx, c.cfg.PushGateway, c.runID, c.registry); err != nil {
		log.Warn("push metrics failed", zap.String("runID", c.runID), zap.Error(err))
	}
}
