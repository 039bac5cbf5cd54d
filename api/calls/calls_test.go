// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package calls_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixledger/ledger/api/calls"
	"github.com/mixledger/ledger/contract"
	"github.com/mixledger/ledger/test/datagen"
	"github.com/mixledger/ledger/test/testledger"
)

func newServer(t *testing.T, allowExecute bool) (*testledger.Ledger, *httptest.Server) {
	l := testledger.New(t)
	router := mux.NewRouter()
	calls.New(l.Executor(), allowExecute).Mount(router, "/calls")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return l, ts
}

func httpPost(t *testing.T, ts *httptest.Server, url string, body string) ([]byte, int) {
	res, err := http.Post(ts.URL+url, "application/json", bytes.NewBufferString(body)) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return data, res.StatusCode
}

func TestExecute(t *testing.T) {
	_, ts := newServer(t, true)
	owner := datagen.RandAddress()
	identity := datagen.RandIdentity()

	body := fmt.Sprintf(`{
		"sender": %q,
		"funds": [{"denom": "unym", "amount": "150000000"}],
		"msg": {"bond": {
			"node": {"identity_key": %q, "sphinx_key": "sphinx", "host": "1.1.1.1", "mix_port": 1789, "version": "1.1.0"},
			"cost_params": {"profit_margin_percent": "0.1", "interval_operating_cost": {"denom": "unym", "amount": "0"}},
			"owner_signature": %q
		}}
	}`, owner, identity.Key(), identity.Sign(owner))

	data, status := httpPost(t, ts, "/calls/execute", body)
	require.Equal(t, http.StatusOK, status, string(data))
	var result calls.ExecuteResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, uint64(2), result.Env.BlockHeight)
	require.Len(t, result.Events, 1)
	assert.Equal(t, contract.EventBond, result.Events[0].Type)
	assert.Empty(t, result.Messages)

	// the same identity key cannot bond twice
	data, status = httpPost(t, ts, "/calls/execute", body)
	assert.Equal(t, http.StatusConflict, status, string(data))

	data, status = httpPost(t, ts, "/calls/execute",
		fmt.Sprintf(`{"sender": %q, "msg": {"reward_node": {"node_id": 1, "performance": "1"}}}`, owner))
	assert.Equal(t, http.StatusForbidden, status, string(data))

	_, status = httpPost(t, ts, "/calls/execute", fmt.Sprintf(`{"sender": %q, "msg": {}}`, owner))
	assert.Equal(t, http.StatusBadRequest, status)

	_, status = httpPost(t, ts, "/calls/execute", `{"sender": "", "msg": {"unbond": {}}}`)
	assert.Equal(t, http.StatusBadRequest, status)

	_, status = httpPost(t, ts, "/calls/execute", `{"sender": "n1x", "msg": {"unbond": {}}, "extra": 1}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestQuery(t *testing.T) {
	l, ts := newServer(t, false)
	owner := datagen.RandAddress()
	id := l.Bond(owner, 150_000000)

	data, status := httpPost(t, ts, "/calls/query", fmt.Sprintf(`{"get_node_details": {"node_id": %d}}`, id))
	require.Equal(t, http.StatusOK, status, string(data))
	var details contract.NodeDetails
	require.NoError(t, json.Unmarshal(data, &details))
	assert.Equal(t, owner, details.Node.Owner)

	data, status = httpPost(t, ts, "/calls/query", `{"get_reward_pool": {}}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "\"1000000000\"\n", string(data))

	_, status = httpPost(t, ts, "/calls/query", `{"get_reward_pool": {}, "get_staking_supply": {}}`)
	assert.Equal(t, http.StatusBadRequest, status)

	_, status = httpPost(t, ts, "/calls/execute", fmt.Sprintf(`{"sender": %q, "msg": {"unbond": {}}}`, owner))
	assert.Equal(t, http.StatusNotFound, status, "execute is not mounted")
}
