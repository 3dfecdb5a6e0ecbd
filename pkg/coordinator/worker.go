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
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/CRYPTO-KU/FaultTolerantSmartGridAggregation/pkg/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// Environment variables set for every worker process.
const (
	EnvWorkerIndex = "PERF_WORKER_INDEX"
	EnvWorkerCount = "PERF_WORKER_COUNT"
)

// Worker is the handle of one launched worker process.
type Worker struct {
	// Index is 1-based and decides the drain order.
	Index      int
	StdoutPath string
	StderrPath string

	cmd      *exec.Cmd
	startErr error

	StartTime time.Time
	Duration  time.Duration
	// ExitCode is -1 until the worker was waited for, and stays -1 when the
	// process could not be started or was killed by a signal.
	ExitCode int
}

// Started reports whether the worker process was started.
func (w *Worker) Started() bool {
	return w.startErr == nil && w.cmd != nil
}

// StartErr is the error returned while starting the process, if any.
func (w *Worker) StartErr() error {
	return w.startErr
}

// createOutputFile creates a capture file. Tests replace it to fail a launch
// part way through.
var createOutputFile = os.Create

func outputPaths(dir string, index int) (string, string) {
	return filepath.Join(dir, fmt.Sprintf("out_%d", index)),
		filepath.Join(dir, fmt.Sprintf("err_%d", index))
}

// startWorker starts executable with the single argument runs, redirecting
// its streams into out_<index> and err_<index> under dir. A process that
// cannot be started is not an error: the start error is written to its stderr
// file so it is drained like any other diagnostic output.
func startWorker(dir, executable string, index, count, runs int) (*Worker, error) {
	w := &Worker{Index: index, ExitCode: -1}
	w.StdoutPath, w.StderrPath = outputPaths(dir, index)

	stdout, err := createOutputFile(w.StdoutPath)
	if err != nil {
		return nil, errors.WrapError(errors.ErrCreateOutputFile, err, w.StdoutPath)
	}
	defer stdout.Close()
	stderr, err := createOutputFile(w.StderrPath)
	if err != nil {
		return nil, errors.WrapError(errors.ErrCreateOutputFile, err, w.StderrPath)
	}
	defer stderr.Close()

	cmd := exec.Command(executable, strconv.Itoa(runs))
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = append(os.Environ(),
		EnvWorkerIndex+"="+strconv.Itoa(index),
		EnvWorkerCount+"="+strconv.Itoa(count),
	)

	w.StartTime = time.Now()
	if err := cmd.Start(); err != nil {
		w.startErr = err
		// The error reaches the user through err_<index>; logging it above
		// info would duplicate it in the merged stderr.
		log.Info("start worker failed",
			zap.Int("worker", index),
			zap.String("executable", executable),
			zap.Error(err))
		_, _ = fmt.Fprintf(stderr, "failed to start %s: %v\n", executable, err)
		return w, nil
	}
	w.cmd = cmd
	log.Debug("worker started",
		zap.Int("worker", index),
		zap.Int("pid", cmd.Process.Pid),
		zap.Int("runs", runs))
	return w, nil
}

// wait blocks until the worker process exits and records its exit code and
// duration. The exit status is never turned into an error.
func (w *Worker) wait() {
	if !w.Started() {
		return
	}
	err := w.cmd.Wait()
	w.Duration = time.Since(w.StartTime)

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		w.ExitCode = 0
	case errors.As(err, &exitErr):
		w.ExitCode = exitErr.ExitCode()
	default:
		w.ExitCode = -1
	}

	fields := []zap.Field{
		zap.Int("worker", w.Index),
		zap.Int("exitCode", w.ExitCode),
		zap.Duration("duration", w.Duration),
	}
	if w.ExitCode != 0 {
		log.Info("worker exited abnormally", append(fields, zap.Error(err))...)
		return
	}
	log.Info("worker exited", fields...)
}
