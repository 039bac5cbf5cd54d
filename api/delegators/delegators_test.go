// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegators_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixledger/ledger/api/delegators"
	"github.com/mixledger/ledger/contract"
	"github.com/mixledger/ledger/contract/delegations"
	"github.com/mixledger/ledger/test/datagen"
	"github.com/mixledger/ledger/test/testledger"
)

func newServer(t *testing.T) (*testledger.Ledger, *httptest.Server) {
	l := testledger.New(t)
	router := mux.NewRouter()
	delegators.New(l.Executor()).Mount(router, "/delegators")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return l, ts
}

func httpGet(t *testing.T, ts *httptest.Server, url string, v any) int {
	res, err := http.Get(ts.URL + url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if res.StatusCode == http.StatusOK && v != nil {
		require.NoError(t, json.Unmarshal(body, v))
	}
	return res.StatusCode
}

func TestDelegations(t *testing.T) {
	l, ts := newServer(t)
	delegator := datagen.RandAddress()
	a := l.Bond(datagen.RandAddress(), 100_000000)
	b := l.Bond(datagen.RandAddress(), 10_000000)
	l.Delegate(delegator, a, 50_000000)
	l.Delegate(delegator, b, 2_000000)

	// queued delegations are not visible yet
	var page contract.PagedDelegations
	require.Equal(t, http.StatusOK, httpGet(t, ts, "/delegators/"+string(delegator)+"/delegations", &page))
	assert.Empty(t, page.Delegations)

	l.Advance(a)
	require.Equal(t, http.StatusOK, httpGet(t, ts, "/delegators/"+string(delegator)+"/delegations?limit=1", &page))
	require.Len(t, page.Delegations, 1)
	require.NotNil(t, page.StartNextAfter)

	var rest contract.PagedDelegations
	require.Equal(t, http.StatusOK,
		httpGet(t, ts, "/delegators/"+string(delegator)+"/delegations?startAfter="+*page.StartNextAfter, &rest))
	require.Len(t, rest.Delegations, 1)
	assert.NotEqual(t, page.Delegations[0].NodeID, rest.Delegations[0].NodeID)

	var delegation delegations.Delegation
	require.Equal(t, http.StatusOK, httpGet(t, ts, fmt.Sprintf("/delegators/%v/delegations/%d", delegator, b), &delegation))
	assert.Equal(t, uint64(2_000000), delegation.Amount.Amount)

	assert.Equal(t, http.StatusNotFound,
		httpGet(t, ts, fmt.Sprintf("/delegators/%v/delegations/%d?proxy=%v", delegator, b, testledger.Vesting), nil))
	assert.Equal(t, http.StatusBadRequest,
		httpGet(t, ts, fmt.Sprintf("/delegators/%v/delegations/%d?proxy=%s", delegator, b, "a%20b"), nil))
}

func TestPendingReward(t *testing.T) {
	l, ts := newServer(t)
	delegator := datagen.RandAddress()
	id := l.Bond(datagen.RandAddress(), 100_000000)
	l.Delegate(delegator, id, 50_000000)
	l.Advance(id)
	l.Reward(id, "1")

	var pending contract.PendingReward
	require.Equal(t, http.StatusOK, httpGet(t, ts, fmt.Sprintf("/delegators/%v/rewards/%d", delegator, id), &pending))
	assert.Equal(t, uint64(300000), pending.AmountEarned.Amount)
	assert.Equal(t, "300000", pending.AmountEarnedDetailed.String())
	require.NotNil(t, pending.AmountStaked)
	assert.Equal(t, uint64(50_000000), pending.AmountStaked.Amount)
	assert.True(t, pending.NodeStillFullyBonded)

	assert.Equal(t, http.StatusNotFound,
		httpGet(t, ts, fmt.Sprintf("/delegators/%v/rewards/%d", datagen.RandAddress(), id), nil))
	assert.Equal(t, http.StatusNotFound,
		httpGet(t, ts, fmt.Sprintf("/delegators/%v/rewards/x", delegator), nil), "route requires a numeric id")
}
