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
	"text/tabwriter"

	"github.com/CRYPTO-KU/FaultTolerantSmartGridAggregation/pkg/schema"
	"github.com/spf13/cobra"
)

func newSchemaCommand(stdout io.Writer) *cobra.Command {
	var (
		version int
		list    bool
	)
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print a CSV header schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				return listSchemas(stdout)
			}
			s, err := schema.Lookup(schema.Version(version))
			if err != nil {
				return err
			}
			return schema.WriteHeader(stdout, s)
		},
	}
	cmd.Flags().IntVar(&version, FlagSchema, int(schema.DefaultVersion), "csv header schema version")
	cmd.Flags().BoolVar(&list, "list", false, "list known schema versions")
	return cmd
}

func listSchemas(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tNAME\tCOLUMNS\tNOTE")
	for _, v := range schema.Versions() {
		s, err := schema.Lookup(v)
		if err != nil {
			return err
		}
		marker := ""
		if v == schema.DefaultVersion {
			marker = " (default)"
		}
		fmt.Fprintf(tw, "%d\t%s%s\t%d\t%s\n", s.Version, s.Name, marker, s.Width(), s.Note)
	}
	return tw.Flush()
}
