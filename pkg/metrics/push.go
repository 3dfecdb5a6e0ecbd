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

	"github.com/CRYPTO-KU/FaultTolerantSmartGridAggregation/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// PushJobName is the Pushgateway job the coordinator pushes under.
const PushJobName = "parallel_performance_check"

// Push sends everything gathered by g to the Pushgateway at addr, grouped by
// run id. An existing group with the same run id is replaced.
func Push(ctx context.Context, addr, runID string, g prometheus.Gatherer) error {
	err := push.New(addr, PushJobName).
		Gatherer(g).
		Grouping("run_id", runID).
		PushContext(ctx)
	return errors.WrapError(errors.ErrPushMetrics, err, addr)
}
