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

package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/CRYPTO-KU/FaultTolerantSmartGridAggregation/pkg/config"
	"github.com/CRYPTO-KU/FaultTolerantSmartGridAggregation/pkg/coordinator"
	"github.com/CRYPTO-KU/FaultTolerantSmartGridAggregation/pkg/errors"
	"github.com/CRYPTO-KU/FaultTolerantSmartGridAggregation/pkg/logutil"
	"github.com/pingcap/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	ExitCodeExecuteFailed   = 1
	ExitCodeInvalidArgument = 2
)

const (
	FlagRuns         = "runs"
	FlagProcesses    = "processes"
	FlagConfig       = "config"
	FlagExecutable   = "executable"
	FlagSchema       = "schema"
	FlagTempDir      = "temp-dir"
	FlagCheckColumns = "check-columns"
	FlagKeepTemp     = "keep-temp"
	FlagPushGateway  = "pushgateway"
	FlagLogLevel     = "log-level"
	FlagLogFile      = "log-file"
)

type options struct {
	runs       string
	processes  string
	configPath string
	// flagged holds values of the optional flags; they only override the
	// config file when set on the command line.
	flagged config.RunConfig
}

func main() {
	cmd := newRootCommand(os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if errors.IsInvalidArgument(err) {
		return ExitCodeInvalidArgument
	}
	if code, ok := errors.RFCCode(err); ok && code == errors.ErrLoadConfig.RFCCode() {
		return ExitCodeInvalidArgument
	}
	return ExitCodeExecuteFailed
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	o := &options{}
	rootCmd := &cobra.Command{
		Use:   "parallel-performance-check [<runs> <processes>]",
		Short: "Run the AggFT performance check in parallel worker processes",
		Long: "Split a run budget evenly across worker processes of the performance check " +
			"executable, then print one CSV header followed by every worker's output in worker order.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.buildConfig(cmd, args)
			if err != nil {
				return err
			}
			if err := logutil.InitLogger(cfg.LogLevel, cfg.LogFile, stderr); err != nil {
				return err
			}
			c, err := coordinator.New(cfg, stdout, stderr)
			if err != nil {
				return err
			}
			stop := holdSignals()
			defer stop()
			return c.Run()
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&o.runs, FlagRuns, "r", "", "total number of runs split across all processes")
	flags.StringVarP(&o.processes, FlagProcesses, "p", "", "number of worker processes")
	flags.StringVarP(&o.configPath, FlagConfig, "c", "", "toml configuration file path")
	flags.StringVar(&o.flagged.Executable, FlagExecutable, config.DefaultExecutable, "performance check executable")
	flags.IntVar(&o.flagged.Schema, FlagSchema, 0, "csv header schema version (default legacy)")
	flags.StringVar(&o.flagged.TempDir, FlagTempDir, "", "parent of the temporary output directory")
	flags.BoolVar(&o.flagged.CheckColumns, FlagCheckColumns, false, "warn about worker rows not matching the header width")
	flags.BoolVar(&o.flagged.KeepTemp, FlagKeepTemp, false, "keep captured worker output files")
	flags.StringVar(&o.flagged.PushGateway, FlagPushGateway, "", "prometheus pushgateway address for run metrics")
	flags.StringVar(&o.flagged.LogLevel, FlagLogLevel, config.DefaultLogLevel, "log level: debug, info, warn, error")
	flags.StringVar(&o.flagged.LogFile, FlagLogFile, "", "log file path (default stderr)")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.ErrInvalidArgument.GenWithStackByArgs(err.Error())
	})
	rootCmd.AddCommand(newSchemaCommand(stdout))
	return rootCmd
}

// buildConfig merges defaults, the optional config file and the command line,
// in that order of precedence.
func (o *options) buildConfig(cmd *cobra.Command, args []string) (*config.RunConfig, error) {
	cfg := config.NewDefaultRunConfig()
	if o.configPath != "" {
		if err := config.StrictDecodeFile(o.configPath, cfg); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed(FlagExecutable) {
		cfg.Executable = o.flagged.Executable
	}
	if flags.Changed(FlagSchema) {
		cfg.Schema = o.flagged.Schema
	}
	if flags.Changed(FlagTempDir) {
		cfg.TempDir = o.flagged.TempDir
	}
	if flags.Changed(FlagCheckColumns) {
		cfg.CheckColumns = o.flagged.CheckColumns
	}
	if flags.Changed(FlagKeepTemp) {
		cfg.KeepTemp = o.flagged.KeepTemp
	}
	if flags.Changed(FlagPushGateway) {
		cfg.PushGateway = o.flagged.PushGateway
	}
	if flags.Changed(FlagLogLevel) {
		cfg.LogLevel = o.flagged.LogLevel
	}
	if flags.Changed(FlagLogFile) {
		cfg.LogFile = o.flagged.LogFile
	}

	runs, processes := o.runs, o.processes
	if flags.Changed(FlagRuns) && runs == "" {
		return nil, errors.ErrInvalidArgument.GenWithStackByArgs("runs is empty")
	}
	if flags.Changed(FlagProcesses) && processes == "" {
		return nil, errors.ErrInvalidArgument.GenWithStackByArgs("processes is empty")
	}
	if err := cfg.ApplyCounts(runs, processes, args); err != nil {
		return nil, err
	}
	if err := cfg.ValidateAndAdjust(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// holdSignals keeps interrupt and terminate from killing the coordinator while
// workers run, so their output is still drained and the temporary directory
// removed. Workers keep the default disposition and receive the signal from
// their process group.
func holdSignals() func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-ch:
				log.Warn("signal received, waiting for workers to exit", zap.Stringer("signal", sig))
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}
