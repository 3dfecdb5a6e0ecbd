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

package errors

import (
	"github.com/pingcap/errors"
)

// errors
var (
	// ErrInvalidArgument is returned for a missing, non-numeric or
	// non-positive run or process count, and for any other unusable setting.
	// It is always raised before a worker is launched.
	ErrInvalidArgument = errors.Normalize(
		"invalid argument: %s",
		errors.RFCCodeText("PERF:ErrInvalidArgument"),
	)
	ErrUnknownSchema = errors.Normalize(
		"unknown csv header schema version %d",
		errors.RFCCodeText("PERF:ErrUnknownSchema"),
	)
	ErrLoadConfig = errors.Normalize(
		"load config file %s failed",
		errors.RFCCodeText("PERF:ErrLoadConfig"),
	)

	// coordinator related errors
	ErrCreateTempDir = errors.Normalize(
		"create temporary directory under %s failed",
		errors.RFCCodeText("PERF:ErrCreateTempDir"),
	)
	ErrCreateOutputFile = errors.Normalize(
		"create output file %s failed",
		errors.RFCCodeText("PERF:ErrCreateOutputFile"),
	)
	ErrDrainOutput = errors.Normalize(
		"drain output file %s failed",
		errors.RFCCodeText("PERF:ErrDrainOutput"),
	)
	ErrCleanup = errors.Normalize(
		"remove temporary directory %s failed",
		errors.RFCCodeText("PERF:ErrCleanup"),
	)

	// metrics related errors
	ErrPushMetrics = errors.Normalize(
		"push metrics to %s failed",
		errors.RFCCodeText("PERF:ErrPushMetrics"),
	)
)
