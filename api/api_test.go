// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixledger/ledger/log"
	"github.com/mixledger/ledger/metrics"
	"github.com/mixledger/ledger/test/datagen"
	"github.com/mixledger/ledger/test/testledger"

	dto "github.com/prometheus/client_model/go"
)

func init() {
	metrics.InitializePrometheusMetrics()
}

func httpDo(t *testing.T, req *http.Request) ([]byte, *http.Response) {
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res
}

func TestRoutes(t *testing.T) {
	l := testledger.New(t)
	id := l.Bond(datagen.RandAddress(), 150_000000)
	ts := httptest.NewServer(New(l.Executor(), Options{AllowedOrigins: "*"}))
	defer ts.Close()

	for _, path := range []string{
		"/nodes",
		fmt.Sprintf("/nodes/%d", id),
		"/delegators/n1nobody/delegations",
		"/ledger/interval",
		"/ledger/version",
	} {
		req, _ := http.NewRequest(http.MethodGet, ts.URL+path, nil)
		body, res := httpDo(t, req)
		assert.Equal(t, http.StatusOK, res.StatusCode, "%s: %s", path, body)
	}

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/calls/query", bytes.NewBufferString(`{"get_contract_version": {}}`))
	_, res := httpDo(t, req)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	req, _ = http.NewRequest(http.MethodPost, ts.URL+"/calls/execute", bytes.NewBufferString(`{"sender": "n1x", "msg": {"unbond": {}}}`))
	_, res = httpDo(t, req)
	assert.Equal(t, http.StatusNotFound, res.StatusCode, "execute is off by default")

	req, _ = http.NewRequest(http.MethodGet, ts.URL+"/debug/pprof/", nil)
	_, res = httpDo(t, req)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestCORS(t *testing.T) {
	l := testledger.New(t)
	ts := httptest.NewServer(New(l.Executor(), Options{AllowedOrigins: "https://explorer.example.org"}))
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/ledger/version", nil)
	req.Header.Set("Origin", "https://explorer.example.org")
	_, res := httpDo(t, req)
	assert.Equal(t, "https://explorer.example.org", res.Header.Get("Access-Control-Allow-Origin"))

	req, _ = http.NewRequest(http.MethodGet, ts.URL+"/ledger/version", nil)
	req.Header.Set("Origin", "https://elsewhere.example.org")
	_, res = httpDo(t, req)
	assert.Empty(t, res.Header.Get("Access-Control-Allow-Origin"))
}

func TestMetricsMiddleware(t *testing.T) {
	l := testledger.New(t)
	id := l.Bond(datagen.RandAddress(), 150_000000)
	ts := httptest.NewServer(New(l.Executor(), Options{EnableMetrics: true}))
	defer ts.Close()

	for _, path := range []string{fmt.Sprintf("/nodes/%d", id), "/nodes/424242", "/nodes/424243"} {
		req, _ := http.NewRequest(http.MethodGet, ts.URL+path, nil)
		httpDo(t, req)
	}

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	var family *dto.MetricFamily
	for _, mf := range families {
		if mf.GetName() == "mixnet_ledger_api_request_count" {
			family = mf
		}
	}
	require.NotNil(t, family)

	counts := map[string]float64{}
	for _, m := range family.GetMetric() {
		labels := map[string]string{}
		for _, lp := range m.GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
		counts[labels["name"]+" "+labels["code"]] += m.GetCounter().GetValue()
	}
	assert.Equal(t, float64(1), counts["GET /nodes/{id} 200"])
	assert.Equal(t, float64(2), counts["GET /nodes/{id} 404"], "ids do not become labels")
}

// captureHandler records the messages logged through it.
type captureHandler struct {
	slog.Handler
	messages *[]string
}

func (h captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h captureHandler) Handle(_ context.Context, r slog.Record) error {
	*h.messages = append(*h.messages, r.Message)
	return nil
}

func TestRequestLogger(t *testing.T) {
	var messages []string
	logger := log.NewLogger(captureHandler{Handler: log.DiscardHandler(), messages: &messages})

	var enabled atomic.Bool
	var seen string
	handler := RequestLoggerMiddleware(logger, &enabled, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seen = string(body)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/calls/query", bytes.NewBufferString(`{"a":1}`)))
	assert.Empty(t, messages)
	assert.Equal(t, `{"a":1}`, seen)

	enabled.Store(true)
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/calls/query", bytes.NewBufferString(`{"b":2}`)))
	assert.Equal(t, []string{"API Request"}, messages)
	assert.Equal(t, `{"b":2}`, seen, "the body still reaches the handler")
}
