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
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/CRYPTO-KU/FaultTolerantSmartGridAggregation/pkg/errors"
	"github.com/CRYPTO-KU/FaultTolerantSmartGridAggregation/pkg/schema"
	"github.com/stretchr/testify/require"
)

func writeExecutable(t *testing.T) string {
	t.Helper()
	return writeScript(t, "echo \"row $PERF_WORKER_INDEX $1\"\n")
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("worker scripts need /bin/sh")
	}
	path := filepath.Join(t.TempDir(), "performance_check.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(&stdout, &stderr)
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func header(t *testing.T, v schema.Version) string {
	t.Helper()
	s, err := schema.Lookup(v)
	require.NoError(t, err)
	return s.Line() + "\n"
}

func TestExitCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid argument", errors.ErrInvalidArgument.GenWithStackByArgs("x"), ExitCodeInvalidArgument},
		{"unknown schema", errors.ErrUnknownSchema.GenWithStackByArgs(9), ExitCodeInvalidArgument},
		{"config", errors.ErrLoadConfig.GenWithStackByArgs("a.toml"), ExitCodeInvalidArgument},
		{"temp dir", errors.ErrCreateTempDir.GenWithStackByArgs("/tmp"), ExitCodeExecuteFailed},
		{"plain", fmt.Errorf("boom"), ExitCodeExecuteFailed},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, exitCode(tt.err), "case:%s", tt.name)
	}
}

func TestRunFlags(t *testing.T) {
	exe := writeExecutable(t)
	stdout, _, err := execute(t,
		"--runs", "10", "--processes", "3",
		"--executable", exe, "--temp-dir", t.TempDir())
	require.NoError(t, err)
	require.Equal(t, header(t, schema.DefaultVersion)+"row 1 3\nrow 2 3\nrow 3 3\n", stdout)
}

func TestRunPositional(t *testing.T) {
	exe := writeExecutable(t)
	stdout, _, err := execute(t, "8", "2",
		"--executable", exe, "--temp-dir", t.TempDir(), "--schema", "1")
	require.NoError(t, err)
	require.Equal(t, header(t, schema.VersionLegacy)+"row 1 4\nrow 2 4\n", stdout)
}

func TestRunConfigFile(t *testing.T) {
	exe := writeExecutable(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "run.toml")
	content := fmt.Sprintf("runs = 9\nprocesses = 3\nexecutable = %q\ntemp-dir = %q\nschema = 1\n", exe, dir)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	// Command line wins over the file.
	stdout, _, err := execute(t, "--config", path, "--processes", "1", "--schema", "2")
	require.NoError(t, err)
	require.Equal(t, header(t, schema.VersionCanonical)+"row 1 9\n", stdout)
}

func TestRunStderrIsWorkerOutputOnly(t *testing.T) {
	exe := writeScript(t, `printf 'e%s\n' "$PERF_WORKER_INDEX" >&2
if [ "$PERF_WORKER_INDEX" = "2" ]; then
  exit 3
fi
`)

	stdout, stderr, err := execute(t, "--runs", "2", "--processes", "2",
		"--executable", exe, "--temp-dir", t.TempDir())
	require.NoError(t, err)
	require.Equal(t, header(t, schema.DefaultVersion), stdout)
	require.Equal(t, "e1\ne2\n", stderr)

	missing := filepath.Join(t.TempDir(), "absent")
	stdout, stderr, err = execute(t, "--runs", "2", "--processes", "2",
		"--executable", missing, "--temp-dir", t.TempDir())
	require.NoError(t, err)
	require.Equal(t, header(t, schema.DefaultVersion), stdout)
	lines := strings.Split(strings.TrimSuffix(stderr, "\n"), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		require.True(t, strings.HasPrefix(line, "failed to start "+missing), line)
	}
}

func TestRunInvalidArguments(t *testing.T) {
	exe := writeExecutable(t)
	tests := []struct {
		name string
		args []string
	}{
		{"missing processes", []string{"--runs", "10"}},
		{"missing both", nil},
		{"zero processes", []string{"--runs", "10", "--processes", "0"}},
		{"non numeric runs", []string{"--runs", "ten", "--processes", "2"}},
		{"one positional", []string{"10"}},
		{"three positional", []string{"10", "2", "1"}},
		{"positional and flag", []string{"10", "2", "--runs", "4"}},
		{"empty flag", []string{"--runs", "", "--processes", "2"}},
		{"unknown schema", []string{"10", "2", "--schema", "7"}},
		{"non numeric schema", []string{"10", "2", "--schema", "x"}},
		{"bad log level", []string{"10", "2", "--log-level", "loud"}},
	}
	for _, tt := range tests {
		tempDir := t.TempDir()
		args := append([]string{"--executable", exe, "--temp-dir", tempDir}, tt.args...)
		stdout, _, err := execute(t, args...)
		require.Error(t, err, tt.name)
		require.Equal(t, ExitCodeInvalidArgument, exitCode(err), "case:%s err:%v", tt.name, err)
		require.Empty(t, stdout, tt.name)

		entries, err := os.ReadDir(tempDir)
		require.NoError(t, err)
		require.Empty(t, entries, tt.name)
	}
}

func TestRunMissingConfigFile(t *testing.T) {
	_, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	require.Equal(t, ExitCodeInvalidArgument, exitCode(err))
}

func TestSchemaCommand(t *testing.T) {
	stdout, _, err := execute(t, "schema")
	require.NoError(t, err)
	require.Equal(t, header(t, schema.DefaultVersion), stdout)

	stdout, _, err = execute(t, "schema", "--schema", "2")
	require.NoError(t, err)
	require.Equal(t, header(t, schema.VersionCanonical), stdout)

	stdout, _, err = execute(t, "schema", "--list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[1], "legacy (default)")
	require.Contains(t, lines[1], "14")
	require.Contains(t, lines[2], "canonical")
	require.NotContains(t, lines[2], "(default)")
	require.Contains(t, lines[2], "42")
	require.Contains(t, lines[2], "unverified")

	_, _, err = execute(t, "schema", "--schema", "5")
	require.Equal(t, ExitCodeInvalidArgument, exitCode(err))
}
