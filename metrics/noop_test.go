// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoopRegistry(t *testing.T) {
	var noop Registry = noopRegistry{}
	require.Nil(t, noop.Handler())

	// none of these may panic, whatever the labels
	for i := range 10 {
		noop.Counter("count").Add(int64(i))
		noop.CounterVec("count_vec", []string{"kind"}).AddWithLabel(int64(i), map[string]string{"unknown": "label"})
		noop.Gauge("gauge").Set(int64(i))
		noop.GaugeVec("gauge_vec", []string{"queue"}).SetWithLabel(int64(i), nil)
		noop.HistogramVec("hist", []string{"queue"}, BucketBatchSize).ObserveWithLabels(int64(i), nil)
	}
}
