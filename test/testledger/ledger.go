// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package testledger runs an in-memory ledger with a controllable clock for
// tests of the packages built on top of the contract.
package testledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mixledger/ledger/contract"
	"github.com/mixledger/ledger/contract/nodes"
	"github.com/mixledger/ledger/lvldb"
	"github.com/mixledger/ledger/mixnet"
	"github.com/mixledger/ledger/test/datagen"
)

const (
	Denom     = "unym"
	EpochSecs = 3600
	Admin     = mixnet.Address("n1admin")
	Validator = mixnet.Address("n1rewarder")
	Vesting   = mixnet.Address("n1vesting")
)

// StartTime is the wall clock of a fresh ledger.
var StartTime = time.Unix(1_700_000_000, 0)

// DefaultInstantiateMsg funds a pool of 1e9 with a single rewarded slot,
// so one bonded node of 150e6 earns exactly 1e6 per epoch.
func DefaultInstantiateMsg() *contract.InstantiateMsg {
	return &contract.InstantiateMsg{
		RewardingValidatorAddress: Validator,
		VestingContractAddress:    Vesting,
		RewardingDenom:            Denom,
		EpochsInInterval:          100,
		EpochDurationSecs:         EpochSecs,
		MinimumPledge:             1_000000,
		RewardingParams: contract.InitialRewardingParams{
			InitialRewardPool:    mixnet.MustParseDecimal("1000000000"),
			InitialStakingSupply: mixnet.MustParseDecimal("150000000"),
			SybilResistance:      mixnet.Zero,
			ActiveSetWorkFactor:  mixnet.MustParseDecimal("10"),
			IntervalPoolEmission: mixnet.MustParseDecimal("0.1"),
			RewardedSetSize:      1,
			ActiveSetSize:        1,
		},
	}
}

// Ledger wraps an executor over a memory db.
type Ledger struct {
	t        *testing.T
	executor *contract.Executor
	now      time.Time
}

func New(t *testing.T, opts ...func(*contract.InstantiateMsg)) *Ledger {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	l := &Ledger{t: t, now: StartTime}
	l.executor = contract.NewExecutor(db, nil, l.Now)

	msg := DefaultInstantiateMsg()
	for _, opt := range opts {
		opt(msg)
	}
	_, err = l.executor.Instantiate(contract.MessageInfo{Sender: Admin}, msg)
	require.NoError(t, err)
	return l
}

func (l *Ledger) Executor() *contract.Executor { return l.executor }

func (l *Ledger) Now() time.Time { return l.now }

// Sleep moves the ledger clock forward.
func (l *Ledger) Sleep(d time.Duration) { l.now = l.now.Add(d) }

func Coins(amount uint64) mixnet.Coins {
	return mixnet.NewCoins(mixnet.NewCoin(amount, Denom))
}

// NodeConfig announces a node under the given identity.
func NodeConfig(identity datagen.Identity) nodes.Config {
	return nodes.Config{
		IdentityKey: identity.Key(),
		SphinxKey:   datagen.RandIdentity().Key(),
		ConfigUpdate: nodes.ConfigUpdate{
			Host:        datagen.RandHost(),
			MixPort:     1789,
			VerlocPort:  1790,
			HTTPAPIPort: 8000,
			Version:     "1.1.0",
		},
	}
}

func (l *Ledger) execute(sender mixnet.Address, funds mixnet.Coins, msg *contract.ExecuteMsg) *contract.Response {
	resp, err := l.executor.Execute(contract.MessageInfo{Sender: sender, Funds: funds}, msg)
	require.NoError(l.t, err)
	return resp
}

// Bond bonds a fresh node for owner and returns its id.
func (l *Ledger) Bond(owner mixnet.Address, pledge uint64) mixnet.NodeID {
	identity := datagen.RandIdentity()
	resp := l.execute(owner, Coins(pledge), &contract.ExecuteMsg{Bond: &contract.BondMsg{
		Node:           NodeConfig(identity),
		CostParams:     nodes.CostParams{ProfitMargin: mixnet.MustParseDecimal("0.1")},
		OwnerSignature: identity.Sign(owner),
	}})
	bonds := resp.EventsOf(contract.EventBond)
	require.Len(l.t, bonds, 1)
	id, err := mixnet.ParseNodeID(bonds[0].Attr("node_id"))
	require.NoError(l.t, err)
	return id
}

// Delegate queues a delegation. It takes effect after the epoch ends.
func (l *Ledger) Delegate(owner mixnet.Address, node mixnet.NodeID, amount uint64) {
	l.execute(owner, Coins(amount), &contract.ExecuteMsg{Delegate: &contract.NodeMsg{NodeID: node}})
}

// Advance ends the current epoch, installs set as the rewarded set and drains
// every epoch event that became due.
func (l *Ledger) Advance(set ...mixnet.NodeID) {
	var expected uint32
	require.NoError(l.t, l.executor.View(func(c *contract.Contract, _ contract.Env) error {
		rp, err := c.GetRewardingParams()
		if err != nil {
			return err
		}
		expected = rp.Epoch.ActiveSetSize
		return nil
	}))

	l.Sleep(EpochSecs * time.Second)
	l.execute(Validator, nil, &contract.ExecuteMsg{AdvanceEpoch: &contract.AdvanceEpochMsg{
		NewRewardedSet:        set,
		ExpectedActiveSetSize: expected,
	}})
	l.Reconcile()
}

// Reconcile drains the due epoch events.
func (l *Ledger) Reconcile() {
	for {
		resp := l.execute(Admin, nil, &contract.ExecuteMsg{ReconcileEpochEvents: &contract.ReconcileMsg{}})
		done := resp.EventsOf(contract.EventReconcileEpoch)
		require.Len(l.t, done, 1)
		if done[0].Attr("drained") == "0" {
			return
		}
	}
}

// Reward rewards node at the given performance.
func (l *Ledger) Reward(node mixnet.NodeID, performance string) {
	l.execute(Validator, nil, &contract.ExecuteMsg{RewardNode: &contract.RewardNodeMsg{
		NodeID:      node,
		Performance: mixnet.MustParseDecimal(performance),
	}})
}
