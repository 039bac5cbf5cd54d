// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixledger/ledger/contract/nodes"
	"github.com/mixledger/ledger/contract/params"
	"github.com/mixledger/ledger/contract/reverts"
	"github.com/mixledger/ledger/contract/rewards"
	"github.com/mixledger/ledger/mixnet"
	"github.com/mixledger/ledger/test/datagen"
)

func shortIntervals(m *InstantiateMsg) {
	m.EpochsInInterval = 2
}

func decPtr(s string) *mixnet.Decimal {
	d := dec(s)
	return &d
}

func (l *ledger) reconcileIntervals() *Response {
	out := NewResponse()
	for {
		n, resp, err := l.c.ReconcileIntervalEvents(l.env(), MessageInfo{Sender: admin}, nil)
		require.NoError(l.t, err)
		out.Merge(resp)
		if n == 0 {
			return out
		}
	}
}

func TestAdvanceEpoch_Gate(t *testing.T) {
	l := newLedger(t)
	id := l.bond(datagen.RandAddress(), 100_000000)

	_, err := l.c.AdvanceEpoch(l.env(), MessageInfo{Sender: validator}, []mixnet.NodeID{id}, 1)
	assert.ErrorIs(t, err, reverts.ErrEpochInProgress)

	l.now += epochSecs
	_, err = l.c.AdvanceEpoch(l.env(), MessageInfo{Sender: admin}, []mixnet.NodeID{id}, 1)
	assert.ErrorIs(t, err, reverts.ErrUnauthorized)
	_, err = l.c.AdvanceEpoch(l.env(), MessageInfo{Sender: validator}, []mixnet.NodeID{id}, 2)
	assert.ErrorIs(t, err, reverts.ErrUnexpectedActiveSetSize)
	_, err = l.c.AdvanceEpoch(l.env(), MessageInfo{Sender: validator}, []mixnet.NodeID{id, id + 1}, 1)
	assert.ErrorIs(t, err, reverts.ErrUnexpectedRewardedSetSize)

	details, err := l.c.GetCurrentInterval(l.env())
	require.NoError(t, err)
	assert.True(t, details.IsEpochOver)
	assert.Zero(t, details.AbsoluteEpochID)

	resp := l.advance(id)
	advanced := resp.EventsOf(EventAdvanceEpoch)
	require.Len(t, advanced, 1)
	assert.Equal(t, "1", advanced[0].Attr("absolute_epoch"))
	assert.Equal(t, "false", advanced[0].Attr("new_interval"))

	details, err = l.c.GetCurrentInterval(l.env())
	require.NoError(t, err)
	assert.False(t, details.IsEpochOver)
	assert.Equal(t, epochSecs, details.SecondsUntilEpochEnd)
}

func TestAdvanceEpoch_RewardedSet(t *testing.T) {
	l := newLedger(t)
	_, err := l.c.UpdateRewardingParams(l.env(), MessageInfo{Sender: admin},
		rewards.ParamsUpdate{RewardedSetSize: 3}, true)
	require.NoError(t, err)

	a := l.bond(datagen.RandAddress(), 100_000000)
	b := l.bond(datagen.RandAddress(), 100_000000)

	l.now += epochSecs
	_, err = l.c.AdvanceEpoch(l.env(), MessageInfo{Sender: validator}, []mixnet.NodeID{a, a}, 1)
	assert.ErrorIs(t, err, reverts.ErrDuplicateRewardedNode)

	l.now -= epochSecs
	l.advance(b, a)
	page, err := l.c.GetRewardedSet(nil, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []rewards.RewardedSetEntry{
		{NodeID: b, Status: rewards.SetStatusActive},
		{NodeID: a, Status: rewards.SetStatusStandby},
	}, page.Nodes)

	// standby work is a tenth of active work with a work factor of ten
	l.reward(a, "1")
	l.reward(b, "1")
	ra, err := l.c.GetNodeRewardingDetails(a)
	require.NoError(t, err)
	rb, err := l.c.GetNodeRewardingDetails(b)
	require.NoError(t, err)
	assert.Equal(t, rb.TotalUnitReward.String(), ra.TotalUnitReward.MulUint(10).String())

	l.advance(a)
	page, err = l.c.GetRewardedSet(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []rewards.RewardedSetEntry{{NodeID: a, Status: rewards.SetStatusActive}}, page.Nodes)
}

func TestUpdateRewardingParams(t *testing.T) {
	l := newLedger(t, shortIntervals)

	_, err := l.c.UpdateRewardingParams(l.env(), MessageInfo{Sender: datagen.RandAddress()},
		rewards.ParamsUpdate{IntervalPoolEmission: decPtr("0.2")}, true)
	assert.ErrorIs(t, err, reverts.ErrUnauthorized)
	_, err = l.c.UpdateRewardingParams(l.env(), MessageInfo{Sender: admin}, rewards.ParamsUpdate{}, false)
	assert.ErrorIs(t, err, reverts.ErrInvalidParams)
	_, err = l.c.UpdateRewardingParams(l.env(), MessageInfo{Sender: admin},
		rewards.ParamsUpdate{SybilResistance: decPtr("1.5")}, false)
	assert.ErrorIs(t, err, reverts.ErrInvalidParams)

	// forced updates apply at once
	_, err = l.c.UpdateRewardingParams(l.env(), MessageInfo{Sender: validator},
		rewards.ParamsUpdate{IntervalPoolEmission: decPtr("0.2")}, true)
	require.NoError(t, err)
	rp, err := l.c.GetRewardingParams()
	require.NoError(t, err)
	assert.Equal(t, "100000000", rp.Interval.EpochRewardBudget.String())

	// queued updates wait for the interval to end
	resp, err := l.c.UpdateRewardingParams(l.env(), MessageInfo{Sender: admin},
		rewards.ParamsUpdate{IntervalPoolEmission: decPtr("0.4")}, false)
	require.NoError(t, err)
	require.Len(t, resp.EventsOf(EventPendingParamsUpdate), 1)

	l.advance()
	l.reconcileIntervals()
	rp, err = l.c.GetRewardingParams()
	require.NoError(t, err)
	assert.Equal(t, "100000000", rp.Interval.EpochRewardBudget.String())

	pending, err := l.c.GetPendingIntervalEvents(nil, nil)
	require.NoError(t, err)
	require.Len(t, pending.Events, 1)

	l.advance()
	resp = l.reconcileIntervals()
	require.Len(t, resp.EventsOf(EventParamsUpdate), 1)
	rp, err = l.c.GetRewardingParams()
	require.NoError(t, err)
	assert.Equal(t, "200000000", rp.Interval.EpochRewardBudget.String())
}

func TestUpdateActiveSetSize(t *testing.T) {
	l := newLedger(t)

	_, err := l.c.UpdateActiveSetSize(l.env(), MessageInfo{Sender: admin}, 2, false)
	assert.ErrorIs(t, err, reverts.ErrInvalidParams, "larger than the rewarded set")

	_, err = l.c.UpdateRewardingParams(l.env(), MessageInfo{Sender: admin},
		rewards.ParamsUpdate{RewardedSetSize: 4}, true)
	require.NoError(t, err)

	_, err = l.c.UpdateActiveSetSize(l.env(), MessageInfo{Sender: admin}, 2, false)
	require.NoError(t, err)

	// still the old size until the epoch events are reconciled
	l.advance()
	rp, err := l.c.GetRewardingParams()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), rp.Epoch.ActiveSetSize)

	resp := l.reconcile()
	require.Len(t, resp.EventsOf(EventActiveSetUpdate), 1)

	l.now += epochSecs
	_, err = l.c.AdvanceEpoch(l.env(), MessageInfo{Sender: validator}, nil, 1)
	assert.ErrorIs(t, err, reverts.ErrUnexpectedActiveSetSize)
	_, err = l.c.AdvanceEpoch(l.env(), MessageInfo{Sender: validator}, nil, 2)
	require.NoError(t, err)

	_, err = l.c.UpdateActiveSetSize(l.env(), MessageInfo{Sender: validator}, 3, true)
	require.NoError(t, err)
	rp, err = l.c.GetRewardingParams()
	require.NoError(t, err)
	assert.Equal(t, uint32(3), rp.Epoch.ActiveSetSize)
}

func TestUpdateActiveSetSize_EpochStaysWithinBudget(t *testing.T) {
	l := newLedger(t, func(m *InstantiateMsg) {
		m.RewardingParams.RewardedSetSize = 3
		m.RewardingParams.ActiveSetSize = 2
	})
	set := []mixnet.NodeID{
		l.bond(datagen.RandAddress(), 100_000000),
		l.bond(datagen.RandAddress(), 100_000000),
		l.bond(datagen.RandAddress(), 100_000000),
	}
	rp, err := l.c.GetRewardingParams()
	require.NoError(t, err)
	budget := rp.Interval.EpochRewardBudget
	floor := budget.Sub(dec("0.000001"))

	rewardEpoch := func() mixnet.Decimal {
		before := l.pool()
		for _, id := range set {
			l.reward(id, "1")
		}
		return before.Sub(l.pool())
	}

	l.advance(set...)
	paid := rewardEpoch()
	assert.True(t, paid.Cmp(budget) <= 0, "paid %v", paid)
	assert.True(t, paid.Cmp(floor) >= 0, "paid %v", paid)

	_, err = l.c.UpdateActiveSetSize(l.env(), MessageInfo{Sender: admin}, 1, false)
	require.NoError(t, err)
	l.advance(set...)
	require.Len(t, l.reconcile().EventsOf(EventActiveSetUpdate), 1)

	// the installed set keeps the sizes it was selected with
	page, err := l.c.GetRewardedSet(nil, nil)
	require.NoError(t, err)
	active := 0
	for _, entry := range page.Nodes {
		if entry.Status == rewards.SetStatusActive {
			active++
		}
	}
	assert.Equal(t, 2, active)

	paid = rewardEpoch()
	assert.True(t, paid.Cmp(budget) <= 0, "paid %v", paid)
	assert.True(t, paid.Cmp(floor) >= 0, "paid %v", paid)

	// the new size applies from the next rewarded set on
	l.advance(set...)
	paid = rewardEpoch()
	assert.True(t, paid.Cmp(budget) <= 0, "paid %v", paid)
	assert.True(t, paid.Cmp(floor) >= 0, "paid %v", paid)
}

func TestUpdateIntervalConfig(t *testing.T) {
	l := newLedger(t, shortIntervals)

	_, err := l.c.UpdateIntervalConfig(l.env(), MessageInfo{Sender: admin}, 0, epochSecs, false)
	assert.ErrorIs(t, err, reverts.ErrInvalidParams)
	_, err = l.c.UpdateIntervalConfig(l.env(), MessageInfo{Sender: admin}, 10, 1<<62, true)
	assert.ErrorIs(t, err, reverts.ErrInvalidParams)

	_, err = l.c.UpdateIntervalConfig(l.env(), MessageInfo{Sender: admin}, 10, epochSecs, true)
	require.NoError(t, err)
	rp, err := l.c.GetRewardingParams()
	require.NoError(t, err)
	assert.Equal(t, "10000000", rp.Interval.EpochRewardBudget.String())

	// queued: one epoch per interval, applied once the running interval is over
	_, err = l.c.UpdateIntervalConfig(l.env(), MessageInfo{Sender: admin}, 1, epochSecs, false)
	require.NoError(t, err)
	for range 10 {
		l.advance()
	}
	resp := l.reconcileIntervals()
	require.Len(t, resp.EventsOf(EventIntervalConfig), 1)

	details, err := l.c.GetCurrentInterval(l.env())
	require.NoError(t, err)
	assert.Equal(t, uint32(1), details.Interval.EpochsInInterval)
	assert.Equal(t, uint32(1), details.Interval.ID)
	assert.Equal(t, uint64(10), details.AbsoluteEpochID)

	rp, err = l.c.GetRewardingParams()
	require.NoError(t, err)
	assert.Equal(t, "100000000", rp.Interval.EpochRewardBudget.String())
}

func TestUpdateCostParams(t *testing.T) {
	l := newLedger(t, shortIntervals)
	owner, leaver := datagen.RandAddress(), datagen.RandAddress()
	id := l.bond(owner, 100_000000)
	l.bond(leaver, 100_000000)

	updated := nodes.CostParams{ProfitMargin: dec("0.5"), IntervalOperatingCost: mixnet.NewCoin(40_000000, denom)}
	_, err := l.c.UpdateCostParams(l.env(), MessageInfo{Sender: owner},
		nodes.CostParams{ProfitMargin: dec("0.5"), IntervalOperatingCost: mixnet.NewCoin(1, "uatom")})
	assert.ErrorIs(t, err, reverts.ErrWrongDenom)

	_, err = l.c.UpdateCostParams(l.env(), MessageInfo{Sender: owner}, updated)
	require.NoError(t, err)
	_, err = l.c.UpdateCostParams(l.env(), MessageInfo{Sender: leaver}, updated)
	require.NoError(t, err)
	_, err = l.c.Unbond(l.env(), MessageInfo{Sender: leaver})
	require.NoError(t, err)

	details, err := l.c.GetNodeDetails(id)
	require.NoError(t, err)
	assert.Equal(t, defaultCosts(), details.Node.CostParams)

	l.advance(id)
	l.reconcile()
	l.advance(id)
	resp := l.reconcileIntervals()
	require.Len(t, resp.EventsOf(EventCostParamsUpdate), 1)
	require.Len(t, resp.EventsOf(EventIntervalEventSkip), 1)
	assert.Equal(t, "change_cost_params", resp.EventsOf(EventIntervalEventSkip)[0].Attr("kind"))

	details, err = l.c.GetNodeDetails(id)
	require.NoError(t, err)
	assert.Equal(t, updated, details.Node.CostParams)
	assert.Equal(t, updated, details.Rewarding.CostParams)

	// budget 50_000000 at a saturation of 0.8 pays 40_000000; the operator
	// takes 20_000000 for costs and half of the delegators' share of the rest
	l.delegate(datagen.RandAddress(), id, 100_000000)
	l.advance(id)
	l.reconcile()
	l.reward(id, "1")
	rewarding, err := l.c.GetNodeRewardingDetails(id)
	require.NoError(t, err)
	assert.Equal(t, "0.05", rewarding.UnitDelegation.String())
}

func TestUpdateContractParams(t *testing.T) {
	l := newLedger(t)
	minimum := mixnet.NewCoin(5_000000, denom)
	updated := params.Params{MinimumPledge: mixnet.NewCoin(200_000000, denom), MinimumDelegation: &minimum}

	_, err := l.c.UpdateContractParams(l.env(), MessageInfo{Sender: validator}, updated)
	assert.ErrorIs(t, err, reverts.ErrUnauthorized)
	_, err = l.c.UpdateContractParams(l.env(), MessageInfo{Sender: admin},
		params.Params{MinimumPledge: mixnet.NewCoin(1, "uatom")})
	assert.ErrorIs(t, err, reverts.ErrWrongDenom)

	resp, err := l.c.UpdateContractParams(l.env(), MessageInfo{Sender: admin}, updated)
	require.NoError(t, err)
	assert.Equal(t, minimum.String(), resp.EventsOf(EventContractParams)[0].Attr("minimum_delegation"))

	identity := datagen.RandIdentity()
	owner := datagen.RandAddress()
	_, _, err = l.c.Bond(l.env(), MessageInfo{Sender: owner, Funds: coins(100_000000)},
		nodeConfig(identity), defaultCosts(), identity.Sign(owner))
	assert.ErrorIs(t, err, reverts.ErrInsufficientPledge)
}

func TestUpdateRewardingValidatorAddress(t *testing.T) {
	l := newLedger(t)
	next := datagen.RandAddress()

	_, err := l.c.UpdateRewardingValidatorAddress(l.env(), MessageInfo{Sender: validator}, next)
	assert.ErrorIs(t, err, reverts.ErrUnauthorized)
	_, err = l.c.UpdateRewardingValidatorAddress(l.env(), MessageInfo{Sender: admin}, "")
	assert.ErrorIs(t, err, reverts.ErrInvalidParams)
	_, err = l.c.UpdateRewardingValidatorAddress(l.env(), MessageInfo{Sender: admin}, next)
	require.NoError(t, err)

	l.now += epochSecs
	_, err = l.c.AdvanceEpoch(l.env(), MessageInfo{Sender: validator}, nil, 1)
	assert.ErrorIs(t, err, reverts.ErrUnauthorized)
	_, err = l.c.AdvanceEpoch(l.env(), MessageInfo{Sender: next}, nil, 1)
	require.NoError(t, err)
}
