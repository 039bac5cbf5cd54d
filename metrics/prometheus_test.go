// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T) map[string]*dto.MetricFamily {
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	out := make(map[string]*dto.MetricFamily)
	for _, mf := range families {
		out[mf.GetName()] = mf
	}
	return out
}

func sumCounters(mf *dto.MetricFamily) (sum float64) {
	for _, m := range mf.Metric {
		sum += m.GetCounter().GetValue()
	}
	return
}

func TestPromRegistry(t *testing.T) {
	InitializePrometheusMetrics()
	r := registry

	payouts := r.Counter("test_payouts")
	drained := r.HistogramVec("test_drained", []string{"queue"}, BucketBatchSize)
	calls := r.CounterVec("test_calls", []string{"status"})
	pool := r.Gauge("test_pool")
	pending := r.GaugeVec("test_pending", []string{"queue"})

	// same name, same meter
	assert.Equal(t, payouts, r.Counter("test_payouts"))

	total := 0
	for i := range 20 {
		payouts.Add(int64(i))
		calls.AddWithLabel(1, map[string]string{"status": strconv.Itoa(i % 2)})
		drained.ObserveWithLabels(int64(i), map[string]string{"queue": strconv.Itoa(i % 2)})
		total += i
	}
	pool.Set(7)
	pool.Set(42)
	pending.SetWithLabel(3, map[string]string{"queue": "epoch"})
	pending.SetWithLabel(5, map[string]string{"queue": "interval"})

	families := gather(t)
	assert.Equal(t, float64(total), sumCounters(families["mixnet_ledger_test_payouts"]))
	assert.Equal(t, float64(20), sumCounters(families["mixnet_ledger_test_calls"]))
	assert.Len(t, families["mixnet_ledger_test_calls"].Metric, 2)

	var observed float64
	for _, m := range families["mixnet_ledger_test_drained"].Metric {
		observed += m.GetHistogram().GetSampleSum()
	}
	assert.Equal(t, float64(total), observed)

	assert.Equal(t, float64(42), families["mixnet_ledger_test_pool"].Metric[0].GetGauge().GetValue())
	for _, m := range families["mixnet_ledger_test_pending"].Metric {
		switch m.GetLabel()[0].GetValue() {
		case "epoch":
			assert.Equal(t, float64(3), m.GetGauge().GetValue())
		case "interval":
			assert.Equal(t, float64(5), m.GetGauge().GetValue())
		default:
			t.Fatalf("unexpected label %v", m.GetLabel())
		}
	}
	assert.NotNil(t, HTTPHandler())
}

func TestLazyLoading(t *testing.T) {
	registry = noopRegistry{}

	early := LazyLoadCounter("lazy_early")
	early() // resolved before the switch: stays no-op

	gauge := LazyLoadGauge("lazy_gauge")
	gaugeVec := LazyLoadGaugeVec("lazy_gauge_vec", nil)
	counter := LazyLoadCounter("lazy_counter")
	counterVec := LazyLoadCounterVec("lazy_counter_vec", nil)
	histogramVec := LazyLoadHistogramVec("lazy_histogram_vec", nil, nil)

	InitializePrometheusMetrics()

	require.IsType(t, noopMeter{}, early())
	require.IsType(t, promGauge{}, gauge())
	require.IsType(t, promGaugeVec{}, gaugeVec())
	require.IsType(t, promCounter{}, counter())
	require.IsType(t, promCounterVec{}, counterVec())
	require.IsType(t, promHistogramVec{}, histogramVec())
	assert.Equal(t, counter(), counter())
}
