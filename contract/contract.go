// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package contract

import (
	"time"

	"github.com/pkg/errors"

	"github.com/mixledger/ledger/contract/delegations"
	"github.com/mixledger/ledger/contract/events"
	"github.com/mixledger/ledger/contract/interval"
	"github.com/mixledger/ledger/contract/nodes"
	"github.com/mixledger/ledger/contract/params"
	"github.com/mixledger/ledger/contract/reverts"
	"github.com/mixledger/ledger/contract/rewards"
	"github.com/mixledger/ledger/contract/storage"
	"github.com/mixledger/ledger/kv"
	"github.com/mixledger/ledger/log"
	"github.com/mixledger/ledger/mixnet"
)

// Version is reported by the contract version query.
const Version = "1.0.0"

var logger = log.WithContext("pkg", "contract")

func SetLogger(l log.Logger) {
	logger = l
}

// Contract is the mixnet reward ledger bound to one call's store.
// It is not safe for concurrent use; the host serializes calls.
type Contract struct {
	sctx *storage.Context

	params         *params.Service
	interval       *interval.Service
	nodes          *nodes.Service
	delegations    *delegations.Service
	rewards        *rewards.Service
	epochEvents    *events.Queue[events.EpochEvent]
	intervalEvents *events.Queue[events.IntervalEvent]

	verifier IdentityVerifier
}

// New binds the contract to store. A nil verifier falls back to Ed25519Verifier.
func New(store kv.Store, verifier IdentityVerifier) *Contract {
	if verifier == nil {
		verifier = Ed25519Verifier{}
	}
	sctx := storage.NewContext(store)
	return &Contract{
		sctx:           sctx,
		params:         params.New(sctx),
		interval:       interval.New(sctx),
		nodes:          nodes.New(sctx),
		delegations:    delegations.New(sctx),
		rewards:        rewards.New(sctx),
		epochEvents:    events.NewEpochQueue(sctx),
		intervalEvents: events.NewIntervalQueue(sctx),
		verifier:       verifier,
	}
}

// Instantiate sets up a fresh ledger. The sender becomes the owner.
func (c *Contract) Instantiate(env Env, info MessageInfo, msg *InstantiateMsg) (*Response, error) {
	logger.Debug("instantiating", "owner", info.Sender, "denom", msg.RewardingDenom)

	state := params.ContractState{
		Owner:                     info.Sender,
		RewardingValidatorAddress: msg.RewardingValidatorAddress,
		VestingContractAddress:    msg.VestingContractAddress,
		RewardingDenom:            msg.RewardingDenom,
		Params: params.Params{
			MinimumPledge: mixnet.NewCoin(msg.MinimumPledge, msg.RewardingDenom),
		},
	}
	if msg.MinimumDelegation > 0 {
		minimum := mixnet.NewCoin(msg.MinimumDelegation, msg.RewardingDenom)
		state.Params.MinimumDelegation = &minimum
	}
	if err := c.params.Init(state); err != nil {
		logger.Info("instantiate failed", "error", err)
		return nil, err
	}

	clock, err := interval.Init(msg.EpochsInInterval, time.Duration(msg.EpochDurationSecs)*time.Second, env.BlockTime)
	if err != nil {
		return nil, err
	}
	if err := c.interval.Set(clock); err != nil {
		return nil, err
	}

	initial := msg.RewardingParams
	rp := rewards.Params{
		Interval: rewards.IntervalParams{
			RewardPool:           initial.InitialRewardPool,
			StakingSupply:        initial.InitialStakingSupply,
			SybilResistance:      initial.SybilResistance,
			ActiveSetWorkFactor:  initial.ActiveSetWorkFactor,
			IntervalPoolEmission: initial.IntervalPoolEmission,
			FormulaVersion:       rewards.LatestFormulaVersion,
		},
		Epoch: rewards.EpochParams{
			RewardedSetSize: initial.RewardedSetSize,
			ActiveSetSize:   initial.ActiveSetSize,
		},
	}
	if err := rp.Validate(); err != nil {
		return nil, err
	}
	rp.Recompute(clock.EpochsInInterval)
	if err := c.rewards.SetParams(&rp); err != nil {
		return nil, err
	}

	logger.Info("instantiated", "owner", info.Sender, "epochs_in_interval", clock.EpochsInInterval,
		"epoch_reward_budget", rp.Interval.EpochRewardBudget)
	return NewResponse().Emit("instantiate", "owner", info.Sender, "version", Version), nil
}

// Writes returns the number of storage writes made through the contract.
func (c *Contract) Writes() uint64 {
	return c.sctx.Writes()
}

func (c *Contract) state() (*params.ContractState, error) {
	return c.params.State()
}

func (c *Contract) currentInterval() (interval.Interval, error) {
	return c.interval.Get()
}

// principal resolves who a call acts for. Direct calls act for the sender;
// on-behalf calls must come from the vesting proxy and act for owner.
func (c *Contract) principal(info MessageInfo, onBehalfOf *mixnet.Address) (owner, proxy mixnet.Address, err error) {
	if onBehalfOf == nil {
		return info.Sender, "", nil
	}
	if err := c.params.EnsureVestingProxy(info.Sender); err != nil {
		return "", "", err
	}
	if onBehalfOf.IsZero() {
		return "", "", errors.WithMessage(reverts.ErrInvalidParams, "on-behalf call without an owner")
	}
	return *onBehalfOf, info.Sender, nil
}

// proxyOrOwner is where payouts of a record go.
func proxyOrOwner(owner, proxy mixnet.Address) mixnet.Address {
	if !proxy.IsZero() {
		return proxy
	}
	return owner
}

// ownedNode returns the live node of owner, checking the proxy it was bonded through.
func (c *Contract) ownedNode(owner, proxy mixnet.Address) (*nodes.Node, error) {
	node, err := c.nodes.GetByOwner(owner)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, errors.WithMessagef(reverts.ErrNodeNotFound, "owner %v", owner)
	}
	if err := node.EnsureOwnedBy(owner, proxy); err != nil {
		return nil, err
	}
	return node, nil
}
