// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mixledger/ledger/log"
)

const namespace = "mixnet_ledger"

var logger = log.WithContext("pkg", "metrics")

// InitializePrometheusMetrics switches the registry to prometheus. Meters
// resolved before the switch stay no-op. Calling it again keeps the registry.
func InitializePrometheusMetrics() {
	if _, ok := registry.(*promRegistry); !ok {
		registry = &promRegistry{}
	}
}

// promRegistry keeps one meter per name, whatever its kind.
type promRegistry struct {
	meters sync.Map
}

func meter[T any](r *promRegistry, name string, create func() (prometheus.Collector, T)) T {
	if m, ok := r.meters.Load(name); ok {
		return m.(T)
	}
	collector, m := create()
	actual, loaded := r.meters.LoadOrStore(name, m)
	if !loaded {
		if err := prometheus.Register(collector); err != nil {
			logger.Warn("unable to register metric", "name", name, "err", err)
		}
	}
	return actual.(T)
}

func (r *promRegistry) Counter(name string) CountMeter {
	return meter(r, name, func() (prometheus.Collector, CountMeter) {
		c := prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name})
		return c, promCounter{c}
	})
}

func (r *promRegistry) CounterVec(name string, labels []string) CountVecMeter {
	return meter(r, name, func() (prometheus.Collector, CountVecMeter) {
		c := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name}, labels)
		return c, promCounterVec{c}
	})
}

func (r *promRegistry) Gauge(name string) GaugeMeter {
	return meter(r, name, func() (prometheus.Collector, GaugeMeter) {
		g := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name})
		return g, promGauge{g}
	})
}

func (r *promRegistry) GaugeVec(name string, labels []string) GaugeVecMeter {
	return meter(r, name, func() (prometheus.Collector, GaugeVecMeter) {
		g := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: namespace, Name: name}, labels)
		return g, promGaugeVec{g}
	})
}

func (r *promRegistry) HistogramVec(name string, labels []string, buckets []int64) HistogramVecMeter {
	return meter(r, name, func() (prometheus.Collector, HistogramVecMeter) {
		bounds := make([]float64, len(buckets))
		for i, b := range buckets {
			bounds[i] = float64(b)
		}
		h := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: name, Buckets: bounds}, labels)
		return h, promHistogramVec{h}
	})
}

func (r *promRegistry) Handler() http.Handler {
	return promhttp.Handler()
}

type promCounter struct{ c prometheus.Counter }

func (m promCounter) Add(n int64) { m.c.Add(float64(n)) }

type promCounterVec struct{ c *prometheus.CounterVec }

func (m promCounterVec) AddWithLabel(n int64, labels map[string]string) {
	m.c.With(labels).Add(float64(n))
}

type promGauge struct{ g prometheus.Gauge }

func (m promGauge) Set(n int64) { m.g.Set(float64(n)) }

type promGaugeVec struct{ g *prometheus.GaugeVec }

func (m promGaugeVec) SetWithLabel(n int64, labels map[string]string) {
	m.g.With(labels).Set(float64(n))
}

type promHistogramVec struct{ h *prometheus.HistogramVec }

func (m promHistogramVec) ObserveWithLabels(n int64, labels map[string]string) {
	m.h.With(labels).Observe(float64(n))
}
