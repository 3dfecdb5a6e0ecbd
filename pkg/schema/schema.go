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

// Package schema holds the versioned CSV header schemas emitted in front of the
// rows produced by the performance check executable.
package schema

import (
	"encoding/csv"
	"io"
	"sort"
	"strings"

	"github.com/CRYPTO-KU/FaultTolerantSmartGridAggregation/pkg/errors"
)

// Version identifies a header schema. Versions are never reused: a new column
// set gets a new version.
type Version int

const (
	// VersionLegacy is the 14 column schema matching the rows printed by the
	// default performance check executable.
	VersionLegacy Version = 1
	// VersionCanonical is the 42 column schema with split successful and
	// failed network counters and SM min/max/avg statistics. Its columns are
	// derived from the fields of a round report and have not been confirmed
	// against an executable's real output; run with --check-columns before
	// relying on it.
	VersionCanonical Version = 2

	// DefaultVersion is used when no schema is configured. It must match the
	// rows of config.DefaultExecutable.
	DefaultVersion = VersionLegacy
)

// Schema is an enumerated, ordered column list.
type Schema struct {
	Version Version
	Name    string
	Columns []string
	// Note is shown by the schema listing, empty for verified schemas.
	Note string
}

var legacyColumns = []string{
	"SM COUNT",
	"PRIVACY TYPE",
	"P",
	"Terminated",
	"Success",
	"TOTAL DC TIME",
	"PHASE 1 DC TIME",
	"MAX TOTAL SM TIME",
	"PHASE 1 COUNT",
	"PHASE 2 COUNT",
	"DC NET SND",
	"DC NET RCV",
	"MAX SM NET SND",
	"MAX SM NET RCV",
}

// netCounters are the per-participant network counters, in emission order.
var netCounters = []string{
	"NET SND SUCC",
	"NET SND SUCC SIZE",
	"NET SND FAIL",
	"NET SND FAIL SIZE",
	"NET RCV",
	"NET RCV SIZE",
}

func canonicalColumns() []string {
	cols := []string{
		"SM COUNT",
		"N MIN",
		"PRIVACY TYPE",
		"P",
		"ROUND LEN",
		"PHASE 1 LEN",
		"TERMINATED",
		"SUCCESS",
		"TOTAL DC TIME",
		"PHASE 1 DC TIME",
		"PHASE 1 COUNT",
		"PHASE 2 COUNT",
	}
	for _, c := range netCounters {
		cols = append(cols, "DC "+c)
	}
	cols = append(cols, statColumns("TOTAL SM TIME")...)
	for _, c := range netCounters {
		cols = append(cols, statColumns("SM "+c)...)
	}
	return append(cols,
		"BROKEN SM COUNT",
		"UNLINKED SM COUNT",
		"ISSUES",
	)
}

func statColumns(metric string) []string {
	return []string{"MAX " + metric, "MIN " + metric, "AVG " + metric}
}

var registry = map[Version]Schema{
	VersionLegacy:    {Version: VersionLegacy, Name: "legacy", Columns: legacyColumns},
	VersionCanonical: {
		Version: VersionCanonical,
		Name:    "canonical",
		Columns: canonicalColumns(),
		Note:    "derived from round report fields, unverified",
	},
}

// Lookup returns the schema registered under v.
func Lookup(v Version) (Schema, error) {
	s, ok := registry[v]
	if !ok {
		return Schema{}, errors.ErrUnknownSchema.GenWithStackByArgs(int(v))
	}
	cols := make([]string, len(s.Columns))
	copy(cols, s.Columns)
	s.Columns = cols
	return s, nil
}

// Versions returns every known schema version in ascending order.
func Versions() []Version {
	vs := make([]Version, 0, len(registry))
	for v := range registry {
		vs = append(vs, v)
	}
	sort.Slice(vs, func(i, j int) bool { return vs[i] < vs[j] })
	return vs
}

// Width is the number of columns.
func (s Schema) Width() int {
	return len(s.Columns)
}

// Line returns the header without the trailing newline.
func (s Schema) Line() string {
	return strings.Join(s.Columns, ",")
}

// WriteHeader writes the header line of s to w, terminated by a newline.
func WriteHeader(w io.Writer, s Schema) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(s.Columns); err != nil {
		return errors.Trace(err)
	}
	cw.Flush()
	return errors.Trace(cw.Error())
}
