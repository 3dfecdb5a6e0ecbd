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

package coordinator

import (
	"io"
	"os"

	"github.com/CRYPTO-KU/FaultTolerantSmartGridAggregation/pkg/errors"
	"github.com/CRYPTO-KU/FaultTolerantSmartGridAggregation/pkg/schema"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// EmitHeader writes the schema header line to stdout.
func (c *Coordinator) EmitHeader() error {
	return errors.Trace(schema.WriteHeader(c.stdout, c.schema))
}

// Drain copies every captured stdout file to stdout and then every captured
// stderr file to stderr, both in ascending worker index.
func (c *Coordinator) Drain() error {
	for _, w := range c.workers {
		if err := c.drainFile(c.stdout, w.StdoutPath, "stdout"); err != nil {
			return err
		}
	}
	for _, w := range c.workers {
		if err := c.drainFile(c.stderr, w.StderrPath, "stderr"); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) drainFile(dst io.Writer, path, stream string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.WrapError(errors.ErrDrainOutput, err, path)
	}
	defer f.Close()

	n, err := io.Copy(dst, f)
	c.metrics.OutputBytes.WithLabelValues(stream).Add(float64(n))
	if err != nil {
		return errors.WrapError(errors.ErrDrainOutput, err, path)
	}
	return nil
}

// Cleanup removes the temporary directory and everything in it. It is safe
// to call more than once.
func (c *Coordinator) Cleanup() error {
	if c.dir == "" || c.cleaned {
		return nil
	}
	if c.cfg.KeepTemp {
		log.Info("keep temporary directory", zap.String("dir", c.dir))
		c.cleaned = true
		return nil
	}
	if err := os.RemoveAll(c.dir); err != nil {
		return errors.WrapError(errors.ErrCleanup, err, c.dir)
	}
	c.cleaned = true
	log.Debug("temporary directory removed", zap.String("dir", c.dir))
	return nil
}

// checkColumns compares every captured stdout row with the header width.
// Findings are only reported, the output is drained unchanged.
func (c *Coordinator) checkColumns() {
	for _, w := range c.workers {
		f, err := os.Open(w.StdoutPath)
		if err != nil {
			log.Warn("open worker output failed", zap.Int("worker", w.Index), zap.Error(err))
			continue
		}
		mismatches, err := schema.CheckRows(f, c.schema)
		_ = f.Close()
		if err != nil {
			log.Warn("parse worker output failed", zap.Int("worker", w.Index), zap.Error(err))
		}
		if len(mismatches) == 0 {
			continue
		}
		c.mismatches[w.Index] = mismatches
		c.metrics.ColumnMismatches.Add(float64(len(mismatches)))
		for _, m := range mismatches {
			log.Warn("worker row does not match header",
				zap.Int("worker", w.Index),
				zap.Int("line", m.Line),
				zap.Int("fields", m.Fields),
				zap.Int("expected", c.schema.Width()))
		}
	}
}
