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

package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/CRYPTO-KU/FaultTolerantSmartGridAggregation/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	first, second := NewCoordinatorMetrics(), NewCoordinatorMetrics()
	firstRegistry := NewRegistry(first)
	_ = NewRegistry(second)

	first.WorkersLaunched.Add(3)
	first.WorkerExits.WithLabelValues(WorkerStatusFailure).Inc()
	second.WorkersLaunched.Inc()

	// Runs never share counts.
	require.Equal(t, float64(3), testutil.ToFloat64(first.WorkersLaunched))
	require.Equal(t, float64(1), testutil.ToFloat64(second.WorkersLaunched))
	require.Equal(t, float64(0), testutil.ToFloat64(second.WorkerExits.WithLabelValues(WorkerStatusFailure)))

	families, err := firstRegistry.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
	require.Equal(t, 1, testutil.CollectAndCount(first.WorkerExits))
}

func TestPush(t *testing.T) {
	t.Parallel()

	var (
		mu     sync.Mutex
		method string
		path   string
		body   string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		method, path, body = r.Method, r.URL.Path, string(b)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	m := NewCoordinatorMetrics()
	registry := NewRegistry(m)
	m.RunsPerWorker.Set(3)
	require.NoError(t, Push(context.Background(), server.URL, "run-1", registry))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, http.MethodPut, method)
	require.Equal(t, "/metrics/job/"+PushJobName+"/run_id/run-1", path)
	require.NotEmpty(t, body)
	require.Contains(t, body, "perfcheck_coordinator_runs_per_worker")
}

func TestPushFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := Push(context.Background(), server.URL, "run-2", NewRegistry(NewCoordinatorMetrics()))
	require.Error(t, err)
	code, ok := errors.RFCCode(err)
	require.True(t, ok)
	require.Equal(t, errors.ErrPushMetrics.RFCCode(), code)
}
