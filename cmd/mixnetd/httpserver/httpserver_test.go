// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixledger/ledger/metrics"
	"github.com/mixledger/ledger/mixnet"
	"github.com/mixledger/ledger/test/testledger"
)

func get(t *testing.T, url string, header map[string]string) (*http.Response, string) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(body)
}

func TestAPIServer(t *testing.T) {
	genesisID := mixnet.Blake2b([]byte("genesis"))
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/slow" {
			time.Sleep(200 * time.Millisecond)
		}
		w.Write([]byte("ok"))
	})

	url, stop, err := StartAPIServer("localhost:0", handler, genesisID, 50*time.Millisecond)
	require.NoError(t, err)
	defer stop()

	res, body := get(t, url, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ok", body)
	assert.Equal(t, genesisID.String(), res.Header.Get("x-genesis-id"))

	res, _ = get(t, url, map[string]string{"x-genesis-id": genesisID.String()})
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, _ = get(t, url, map[string]string{"x-genesis-id": "0x00"})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, _ = get(t, url+"slow", nil)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
}

func TestRequestBodyLimit(t *testing.T) {
	var readErr error
	handler := requestBodyLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(make([]byte, maxRequestBodySize))))
	assert.NoError(t, readErr)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(make([]byte, maxRequestBodySize+1))))
	assert.Error(t, readErr)
}

func TestAPIServer_BadAddr(t *testing.T) {
	_, _, err := StartAPIServer("not an address", http.NotFoundHandler(), mixnet.Bytes32{}, 0)
	assert.Error(t, err)
}

func TestAdminServer(t *testing.T) {
	l := testledger.New(t)
	var level slog.LevelVar
	var apiLogs atomic.Bool

	url, stop, err := StartAdminServer("localhost:0", &level, l.Executor(), &apiLogs)
	require.NoError(t, err)
	defer stop()
	assert.True(t, strings.HasSuffix(url, "/admin"))

	res, body := get(t, url+"/health", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode, body)

	res, body = get(t, url+"/loglevel", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "info")
}

func TestMetricsServer(t *testing.T) {
	metrics.InitializePrometheusMetrics()

	url, stop, err := StartMetricsServer("localhost:0")
	require.NoError(t, err)
	defer stop()

	res, _ := get(t, url, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
