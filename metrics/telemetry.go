// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package metrics exposes the meters of the ledger. Meters are declared
// package wide through the LazyLoad helpers and resolve against the no-op
// registry until InitializePrometheusMetrics is called.
package metrics

import (
	"net/http"
	"sync"
)

var registry Registry = noopRegistry{}

// Registry creates meters by name. Asking twice for a name yields the same meter.
type Registry interface {
	Counter(name string) CountMeter
	CounterVec(name string, labels []string) CountVecMeter
	Gauge(name string) GaugeMeter
	GaugeVec(name string, labels []string) GaugeVecMeter
	HistogramVec(name string, labels []string, buckets []int64) HistogramVecMeter
	Handler() http.Handler
}

// CountMeter only goes up.
type CountMeter interface {
	Add(int64)
}

type CountVecMeter interface {
	AddWithLabel(int64, map[string]string)
}

// GaugeMeter holds the last value set.
type GaugeMeter interface {
	Set(int64)
}

type GaugeVecMeter interface {
	SetWithLabel(int64, map[string]string)
}

type HistogramVecMeter interface {
	ObserveWithLabels(int64, map[string]string)
}

var (
	// BucketHTTPReqs covers request and call durations in milliseconds.
	BucketHTTPReqs = []int64{
		0, 1, 2, 5, 10, 20, 30, 50, 75, 100,
		150, 200, 300, 400, 500, 750, 1000,
		1500, 2000, 3000, 4000, 5000, 10000,
	}
	// BucketBatchSize covers the number of queued events drained by one call.
	BucketBatchSize = []int64{0, 1, 5, 10, 25, 50, 100, 200, 500, 1000}
)

// HTTPHandler serves the collected metrics, or is nil with the no-op registry.
func HTTPHandler() http.Handler {
	return registry.Handler()
}

func LazyLoadCounter(name string) func() CountMeter {
	return sync.OnceValue(func() CountMeter { return registry.Counter(name) })
}

func LazyLoadCounterVec(name string, labels []string) func() CountVecMeter {
	return sync.OnceValue(func() CountVecMeter { return registry.CounterVec(name, labels) })
}

func LazyLoadGauge(name string) func() GaugeMeter {
	return sync.OnceValue(func() GaugeMeter { return registry.Gauge(name) })
}

func LazyLoadGaugeVec(name string, labels []string) func() GaugeVecMeter {
	return sync.OnceValue(func() GaugeVecMeter { return registry.GaugeVec(name, labels) })
}

func LazyLoadHistogramVec(name string, labels []string, buckets []int64) func() HistogramVecMeter {
	return sync.OnceValue(func() HistogramVecMeter { return registry.HistogramVec(name, labels, buckets) })
}
