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
	stderrors "errors"

	"github.com/pingcap/errors"
)

// Re-exported so callers only need to import this package.
var (
	New       = errors.New
	Errorf    = errors.Errorf
	Trace     = errors.Trace
	Annotate  = errors.Annotate
	Annotatef = errors.Annotatef
	Cause     = errors.Cause

	Is = stderrors.Is
	As = stderrors.As
)

// WrapError generates a new error based on given `*errors.Error`, wraps the err
// as cause error.
// If given `err` is nil, returns a nil error, which is the difference from
// errors.Wrap.
func WrapError(rfcError *errors.Error, err error, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return rfcError.Wrap(err).GenWithStackByArgs(args...)
}

type rfcCoder interface {
	RFCCode() errors.RFCErrorCode
}

// RFCCode returns the RFC code of the first normalized error found while
// unwrapping err.
func RFCCode(err error) (errors.RFCErrorCode, bool) {
	for err != nil {
		if coder, ok := err.(rfcCoder); ok {
			return coder.RFCCode(), true
		}
		switch e := err.(type) {
		case interface{ Unwrap() error }:
			err = e.Unwrap()
		case interface{ Cause() error }:
			err = e.Cause()
		default:
			return "", false
		}
	}
	return "", false
}

// IsInvalidArgument reports whether err carries the ErrInvalidArgument or
// ErrUnknownSchema code. Both are user input problems.
func IsInvalidArgument(err error) bool {
	code, ok := RFCCode(err)
	if !ok {
		return false
	}
	return code == ErrInvalidArgument.RFCCode() || code == ErrUnknownSchema.RFCCode()
}
