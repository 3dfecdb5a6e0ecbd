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

package config

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/CRYPTO-KU/FaultTolerantSmartGridAggregation/pkg/errors"
	"github.com/CRYPTO-KU/FaultTolerantSmartGridAggregation/pkg/schema"
	"go.uber.org/zap/zapcore"
)

const (
	// DefaultExecutable is the performance check program, relative to the
	// directory the coordinator is started from.
	DefaultExecutable = "./aggft/performance_check.py"
	// DefaultLogLevel keeps coordinator logs out of the concatenated worker
	// stderr unless something is wrong.
	DefaultLogLevel = "warn"
)

// RunConfig is the configuration of one coordinator run.
type RunConfig struct {
	// TotalRuns is the number of runs split across all workers.
	TotalRuns int `toml:"runs" json:"runs"`
	// Workers is the number of worker processes.
	Workers int `toml:"processes" json:"processes"`

	Executable string `toml:"executable" json:"executable"`
	// Schema is the header schema version written before worker output.
	Schema int `toml:"schema" json:"schema"`
	// TempDir is the parent of the per-run temporary directory. Empty means
	// the system default.
	TempDir string `toml:"temp-dir" json:"temp_dir"`

	// CheckColumns reports worker rows whose width differs from the header.
	CheckColumns bool `toml:"check-columns" json:"check_columns"`
	// KeepTemp leaves the captured output files on disk after the run.
	KeepTemp bool `toml:"keep-temp" json:"keep_temp"`
	// PushGateway is the Prometheus Pushgateway address run metrics are
	// pushed to. Empty disables pushing.
	PushGateway string `toml:"pushgateway" json:"pushgateway"`

	LogLevel string `toml:"log-level" json:"log_level"`
	LogFile  string `toml:"log-file" json:"log_file"`
}

// NewDefaultRunConfig returns a RunConfig with every optional field set.
// TotalRuns and Workers stay zero and must be supplied.
func NewDefaultRunConfig() *RunConfig {
	return &RunConfig{
		Executable: DefaultExecutable,
		Schema:     int(schema.DefaultVersion),
		LogLevel:   DefaultLogLevel,
	}
}

// ParseCount parses a run or process count. name is used in the error.
func ParseCount(name, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.ErrInvalidArgument.GenWithStackByArgs(name + " is required")
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.ErrInvalidArgument.GenWithStackByArgs(
			name + " must be an integer, got " + strconv.Quote(raw))
	}
	if v <= 0 {
		return 0, errors.ErrInvalidArgument.GenWithStackByArgs(
			name + " must be positive, got " + strconv.Itoa(v))
	}
	return v, nil
}

// ApplyCounts sets TotalRuns and Workers from command line values. runs and
// processes are flag values, empty when the flag was not given. positional
// is either empty or exactly [runs, processes]. A count given both ways is
// rejected.
func (c *RunConfig) ApplyCounts(runs, processes string, positional []string) error {
	switch len(positional) {
	case 0:
	case 2:
		if runs != "" || processes != "" {
			return errors.ErrInvalidArgument.GenWithStackByArgs(
				"counts given both as positional arguments and as flags")
		}
		runs, processes = positional[0], positional[1]
	default:
		return errors.ErrInvalidArgument.GenWithStackByArgs(
			"expected 2 positional arguments <runs> <processes>, got " + strconv.Itoa(len(positional)))
	}

	if runs != "" {
		v, err := ParseCount("runs", runs)
		if err != nil {
			return err
		}
		c.TotalRuns = v
	}
	if processes != "" {
		v, err := ParseCount("processes", processes)
		if err != nil {
			return err
		}
		c.Workers = v
	}
	return nil
}

// ValidateAndAdjust validates the configuration and fills in defaults for
// empty optional fields.
func (c *RunConfig) ValidateAndAdjust() error {
	if c.TotalRuns == 0 {
		return errors.ErrInvalidArgument.GenWithStackByArgs("runs is required")
	}
	if c.TotalRuns < 0 {
		return errors.ErrInvalidArgument.GenWithStackByArgs(
			"runs must be positive, got " + strconv.Itoa(c.TotalRuns))
	}
	if c.Workers == 0 {
		return errors.ErrInvalidArgument.GenWithStackByArgs("processes is required")
	}
	if c.Workers < 0 {
		return errors.ErrInvalidArgument.GenWithStackByArgs(
			"processes must be positive, got " + strconv.Itoa(c.Workers))
	}

	c.Executable = strings.TrimSpace(c.Executable)
	if c.Executable == "" {
		c.Executable = DefaultExecutable
	}

	if c.Schema == 0 {
		c.Schema = int(schema.DefaultVersion)
	}
	if _, err := schema.Lookup(schema.Version(c.Schema)); err != nil {
		return err
	}

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return errors.ErrInvalidArgument.GenWithStackByArgs("unsupported log level " + strconv.Quote(c.LogLevel))
	}

	c.PushGateway = strings.TrimSpace(c.PushGateway)
	if c.PushGateway != "" {
		u, err := url.Parse(c.PushGateway)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.ErrInvalidArgument.GenWithStackByArgs("invalid pushgateway address " + strconv.Quote(c.PushGateway))
		}
	}
	return nil
}
