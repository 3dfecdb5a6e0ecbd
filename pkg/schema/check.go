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

package schema

import (
	"encoding/csv"
	"io"

	"github.com/CRYPTO-KU/FaultTolerantSmartGridAggregation/pkg/errors"
)

// Mismatch describes a data row whose width disagrees with the header.
type Mismatch struct {
	Line   int
	Fields int
}

// CheckRows reads CSV rows from r and returns every row whose field count is
// not s.Width(). Lines are 1-based within r.
func CheckRows(r io.Reader, s Schema) ([]Mismatch, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	var mismatches []Mismatch
	for {
		record, err := cr.Read()
		if err == io.EOF {
			return mismatches, nil
		}
		if err != nil {
			return mismatches, errors.Trace(err)
		}
		if len(record) != s.Width() {
			line, _ := cr.FieldPos(0)
			mismatches = append(mismatches, Mismatch{Line: line, Fields: len(record)})
		}
	}
}
