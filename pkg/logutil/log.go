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

package logutil

import (
	"io"
	"os"
	"strconv"

	"github.com/CRYPTO-KU/FaultTolerantSmartGridAggregation/pkg/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogger replaces the global pingcap logger. With an empty file the
// logger writes to stderr, or os.Stderr when stderr is nil; stdout carries
// CSV and is never logged to. Worker level events are logged at info, so the
// default warn level leaves stderr to the workers' own bytes.
func InitLogger(level, file string, stderr io.Writer) error {
	if _, err := zapcore.ParseLevel(level); err != nil {
		return errors.ErrInvalidArgument.GenWithStackByArgs("unsupported log level " + strconv.Quote(level))
	}

	cfg := &log.Config{
		Level: level,
		File:  log.FileLogConfig{Filename: file},
	}

	var (
		logger *zap.Logger
		props  *log.ZapProperties
		err    error
	)
	if file != "" {
		logger, props, err = log.InitLogger(cfg)
	} else {
		if stderr == nil {
			stderr = os.Stderr
		}
		syncer := zapcore.AddSync(stderr)
		logger, props, err = log.InitLoggerWithWriteSyncer(cfg, syncer, syncer)
	}
	if err != nil {
		return errors.Trace(err)
	}
	log.ReplaceGlobals(logger, props)
	return nil
}
