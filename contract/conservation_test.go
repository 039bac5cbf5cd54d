// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package contract

import (
	"fmt"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixledger/ledger/contract/reverts"
	"github.com/mixledger/ledger/contract/rewards"
	"github.com/mixledger/ledger/mixnet"
	"github.com/mixledger/ledger/test/datagen"
)

type op struct {
	Kind   uint8
	Actor  uint8
	Target uint8
	Amount uint32
	Perf   uint8
}

// accounts tracks what flowed in and out of the ledger during a run.
type accounts struct {
	deposits mixnet.Decimal
	paid     mixnet.Decimal
	effects  int
}

func (a *accounts) record(resp *Response, err error, funds mixnet.Coins) {
	if err != nil {
		return
	}
	a.effects += 1 + len(resp.Events)
	for _, coin := range funds {
		a.deposits = a.deposits.Add(coin.Decimal())
	}
	for _, msg := range resp.Messages {
		for _, coin := range msg.Amount {
			a.paid = a.paid.Add(coin.Decimal())
		}
	}
}

// liabilities is everything the ledger still owes: operator pledges and
// rewards, delegations with their unpaid rewards, and queued deposits.
func liabilities(t *testing.T, c *Contract, nodeIDs []mixnet.NodeID) mixnet.Decimal {
	total := mixnet.Zero
	for _, id := range nodeIDs {
		rewarding, err := c.rewards.Get(id)
		require.NoError(t, err)
		if rewarding == nil {
			continue
		}
		total = total.Add(rewarding.OperatorStake).Add(rewarding.OperatorReward)

		held, _, err := c.delegations.ByNode(id, nil, 0)
		require.NoError(t, err)
		for i := range held {
			total = total.Add(held[i].Amount.Decimal()).Add(held[i].PendingReward(rewarding.UnitDelegation))
		}
	}
	queued, _, err := c.epochEvents.List(nil, 0)
	require.NoError(t, err)
	for _, entry := range queued {
		total = total.Add(entry.Event.Amount.Decimal())
	}
	return total
}

var epsilon = dec("0.000001")

func requireRevertOrNil(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		require.True(t, reverts.IsRevertErr(err), "unexpected failure: %+v", err)
	}
}

func TestConservation(t *testing.T) {
	for seed := int64(1); seed <= 12; seed++ {
		t.Run(fmt.Sprintf("seed-%d", seed), func(t *testing.T) {
			var ops []op
			fuzz.NewWithSeed(seed).NilChance(0).NumElements(80, 160).Fuzz(&ops)
			runConservation(t, ops)
		})
	}
}

func runConservation(t *testing.T, ops []op) {
	l := newLedger(t, func(m *InstantiateMsg) {
		m.EpochsInInterval = 3
		m.RewardingParams.RewardedSetSize = 4
		m.RewardingParams.ActiveSetSize = 2
		m.RewardingParams.SybilResistance = dec("0.3")
	})
	initialPool := l.pool()

	operators := make([]mixnet.Address, 6)
	delegators := make([]mixnet.Address, 6)
	for i := range operators {
		operators[i] = datagen.RandAddress()
		delegators[i] = datagen.RandAddress()
	}

	var (
		acc     = accounts{deposits: mixnet.Zero, paid: mixnet.Zero}
		nodeIDs []mixnet.NodeID
		// paid out by rewarding in the running epoch, against the largest
		// budget in force during it
		epochPaid   = mixnet.Zero
		epochBudget = mixnet.Zero
	)
	budget := func() mixnet.Decimal {
		rp, err := l.c.GetRewardingParams()
		require.NoError(t, err)
		return rp.Interval.EpochRewardBudget
	}
	pickNode := func(n uint8) mixnet.NodeID {
		if len(nodeIDs) == 0 {
			return 1
		}
		return nodeIDs[int(n)%len(nodeIDs)]
	}

	for _, o := range ops {
		var (
			resp  *Response
			err   error
			funds mixnet.Coins
		)
		switch o.Kind % 13 {
		case 0:
			owner := operators[int(o.Actor)%len(operators)]
			identity := datagen.RandIdentity()
			funds = coins(1_000000 + uint64(o.Amount)%200_000000)
			var id mixnet.NodeID
			id, resp, err = l.c.Bond(l.env(), MessageInfo{Sender: owner, Funds: funds},
				nodeConfig(identity), defaultCosts(), identity.Sign(owner))
			if err == nil {
				nodeIDs = append(nodeIDs, id)
			}
		case 1:
			funds = coins(uint64(o.Amount)%50_000000 + 1)
			resp, err = l.c.Delegate(l.env(), MessageInfo{Sender: delegators[int(o.Actor)%len(delegators)], Funds: funds},
				pickNode(o.Target))
		case 2:
			resp, err = l.c.Undelegate(l.env(), MessageInfo{Sender: delegators[int(o.Actor)%len(delegators)]}, pickNode(o.Target))
		case 3:
			resp, err = l.c.Unbond(l.env(), MessageInfo{Sender: operators[int(o.Actor)%len(operators)]})
		case 4:
			rp, gerr := l.c.GetRewardingParams()
			require.NoError(t, gerr)
			var set []mixnet.NodeID
			for _, id := range nodeIDs {
				node, gerr := l.c.nodes.Get(id)
				require.NoError(t, gerr)
				if node != nil && node.IsBonded() && uint32(len(set)) < rp.Epoch.RewardedSetSize {
					set = append(set, id)
				}
			}
			resp = l.advance(set...)
			epochPaid, epochBudget = mixnet.Zero, mixnet.Zero
		case 5:
			limit := uint32(o.Amount % 8)
			_, resp, err = l.c.ReconcileEpochEvents(l.env(), MessageInfo{Sender: admin}, &limit)
		case 6:
			perf := mixnet.NewDecimalFromRatio(uint64(o.Perf%101), 100)
			before := l.pool()
			resp, err = l.c.RewardNode(l.env(), MessageInfo{Sender: validator}, pickNode(o.Target), perf)
			epochPaid = epochPaid.Add(before.Sub(l.pool()))
		case 7:
			resp, err = l.c.WithdrawOperatorReward(l.env(), MessageInfo{Sender: operators[int(o.Actor)%len(operators)]})
		case 8:
			resp, err = l.c.WithdrawDelegatorReward(l.env(), MessageInfo{Sender: delegators[int(o.Actor)%len(delegators)]},
				pickNode(o.Target))
		case 9:
			resp, err = l.c.UpdateActiveSetSize(l.env(), MessageInfo{Sender: admin}, 1+o.Amount%4, o.Perf%3 == 0)
		case 10:
			var update rewards.ParamsUpdate
			switch o.Target % 4 {
			case 0:
				update.RewardedSetSize = 1 + o.Amount%5
			case 1:
				factor := mixnet.NewDecimal(1 + uint64(o.Amount%20))
				update.ActiveSetWorkFactor = &factor
			case 2:
				sybil := mixnet.NewDecimalFromRatio(uint64(o.Amount%101), 100)
				update.SybilResistance = &sybil
			case 3:
				emission := mixnet.NewDecimalFromRatio(uint64(o.Amount%31), 100)
				update.IntervalPoolEmission = &emission
			}
			resp, err = l.c.UpdateRewardingParams(l.env(), MessageInfo{Sender: admin}, update, o.Perf%3 == 0)
		case 11:
			resp, err = l.c.UpdateIntervalConfig(l.env(), MessageInfo{Sender: admin}, 1+o.Amount%4, epochSecs, o.Perf%3 == 0)
		case 12:
			limit := uint32(o.Amount % 8)
			_, resp, err = l.c.ReconcileIntervalEvents(l.env(), MessageInfo{Sender: admin}, &limit)
		}
		requireRevertOrNil(t, err)
		acc.record(resp, err, funds)

		if b := budget(); b.Cmp(epochBudget) > 0 {
			epochBudget = b
		}
		require.True(t, epochPaid.Cmp(epochBudget.Add(epsilon)) <= 0,
			"epoch paid %v over its budget %v", epochPaid, epochBudget)

		// a settlement forfeits less than one token of fractional reward, and
		// fixed point rounding may shift a few units of the last digit
		in := initialPool.Add(acc.deposits)
		out := l.pool().Add(acc.paid).Add(liabilities(t, l.c, nodeIDs))
		require.True(t, out.Sub(in).Cmp(epsilon) <= 0, "ledger owes more than it holds: in %v, out %v", in, out)
		slack := mixnet.NewDecimal(uint64(acc.effects + 1))
		require.True(t, in.Sub(out).Cmp(slack) <= 0, "ledger lost value: in %v, out %v", in, out)
	}

	supply, err := l.c.GetStakingSupply()
	require.NoError(t, err)
	assert.True(t, supply.Cmp(dec("150000000")) >= 0)
}
