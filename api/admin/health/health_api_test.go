// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixledger/ledger/contract"
	"github.com/mixledger/ledger/lvldb"
	"github.com/mixledger/ledger/test/testledger"
)

func initAPIServer(t *testing.T, executor *contract.Executor) *httptest.Server {
	router := mux.NewRouter()
	New(executor).Mount(router, "/health")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	r, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}
	return r, res.StatusCode
}

func TestHealth(t *testing.T) {
	l := testledger.New(t)
	ts := initAPIServer(t, l.Executor())

	var status Status
	respBody, statusCode := httpGet(t, ts.URL+"/health")
	require.NoError(t, json.Unmarshal(respBody, &status))
	assert.True(t, status.Healthy)
	assert.Equal(t, http.StatusOK, statusCode)
	assert.Equal(t, uint64(1), status.BlockHeight)

	// one epoch late is tolerated
	l.Sleep(2 * testledger.EpochSecs * time.Second)
	respBody, statusCode = httpGet(t, ts.URL+"/health")
	require.NoError(t, json.Unmarshal(respBody, &status))
	assert.True(t, status.Healthy)
	assert.Equal(t, http.StatusOK, statusCode)
	assert.Equal(t, uint64(testledger.EpochSecs), status.EpochOverdueSecs)

	l.Sleep(time.Second)
	respBody, statusCode = httpGet(t, ts.URL+"/health")
	require.NoError(t, json.Unmarshal(respBody, &status))
	assert.False(t, status.Healthy)
	assert.Equal(t, http.StatusServiceUnavailable, statusCode)

	l.Advance()
	respBody, statusCode = httpGet(t, ts.URL+"/health")
	require.NoError(t, json.Unmarshal(respBody, &status))
	assert.True(t, status.Healthy, string(respBody))
	assert.Equal(t, uint64(1), status.AbsoluteEpochID)
	assert.Equal(t, http.StatusOK, statusCode)
}

func TestHealth_NotInstantiated(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	ts := initAPIServer(t, contract.NewExecutor(db, nil, nil))

	var status Status
	respBody, statusCode := httpGet(t, ts.URL+"/health")
	require.NoError(t, json.Unmarshal(respBody, &status))
	assert.False(t, status.Instantiated)
	assert.False(t, status.Healthy)
	assert.Equal(t, http.StatusServiceUnavailable, statusCode)
}
