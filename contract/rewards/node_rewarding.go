// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"github.com/mixledger/ledger/contract/nodes"
	"github.com/mixledger/ledger/mixnet"
)

// NodeRewarding is the reward accounting state of a node.
//
// Delegator rewards are never written per delegation. UnitDelegation is the
// accumulated reward per delegated token, and a delegation owes
// amount * (UnitDelegation - its own ratio snapshot).
type NodeRewarding struct {
	CostParams nodes.CostParams `json:"cost_params"`

	OperatorStake  mixnet.Decimal `json:"operator_stake"`
	OperatorReward mixnet.Decimal `json:"operator_reward"`
	DelegatedStake mixnet.Decimal `json:"delegated_stake"`

	TotalUnitReward mixnet.Decimal `json:"total_unit_reward"`
	UnitDelegation  mixnet.Decimal `json:"unit_delegation"`

	// NextRewardableEpoch is the first absolute epoch the node can be rewarded in.
	NextRewardableEpoch uint64 `json:"next_rewardable_epoch"`
	UniqueDelegations   uint32 `json:"unique_delegations"`
}

func NewNodeRewarding(costParams nodes.CostParams, pledge uint64, currentEpoch uint64) *NodeRewarding {
	return &NodeRewarding{
		CostParams:          costParams,
		OperatorStake:       mixnet.NewDecimal(pledge),
		NextRewardableEpoch: currentEpoch,
	}
}

func (r *NodeRewarding) TotalStake() mixnet.Decimal {
	return r.OperatorStake.Add(r.DelegatedStake)
}

// Distribution is how one epoch reward was split.
type Distribution struct {
	Operator   mixnet.Decimal `json:"operator"`
	Delegators mixnet.Decimal `json:"delegates"`
}

// Split divides reward between the operator and the delegators.
// The operator first recovers the epoch share of its operating cost, then the
// profit is split pro rata by stake and the operator keeps its profit margin
// of the delegators' part.
func (r *NodeRewarding) Split(reward, performance mixnet.Decimal, epochsInInterval uint32) Distribution {
	cost := r.CostParams.IntervalOperatingCost.Decimal().
		QuoUint(uint64(epochsInInterval)).
		Mul(performance.Min(mixnet.One)).
		Min(reward)
	profit := reward.Sub(cost)

	total := r.TotalStake()
	if r.DelegatedStake.IsZero() || total.IsZero() {
		return Distribution{Operator: reward}
	}
	delegators := profit.
		Mul(mixnet.One.Sub(r.CostParams.ProfitMargin)).
		Mul(r.DelegatedStake).
		Quo(total)
	return Distribution{
		Operator:   reward.Sub(delegators),
		Delegators: delegators,
	}
}

// Apply credits a distribution. The delegators' part becomes a unit
// delegation increase, which is skipped when nothing is delegated.
func (r *NodeRewarding) Apply(d Distribution, reward mixnet.Decimal, absoluteEpoch uint64) {
	r.OperatorReward = r.OperatorReward.Add(d.Operator)
	if !r.DelegatedStake.IsZero() {
		r.UnitDelegation = r.UnitDelegation.Add(d.Delegators.Quo(r.DelegatedStake))
	}
	r.TotalUnitReward = r.TotalUnitReward.Add(reward)
	r.NextRewardableEpoch = absoluteEpoch + 1
}

// WithdrawOperatorReward returns the integer part of the accrued operator
// reward and keeps the fraction for later.
func (r *NodeRewarding) WithdrawOperatorReward() uint64 {
	amount := r.OperatorReward.Floor()
	r.OperatorReward = r.OperatorReward.Sub(mixnet.NewDecimal(amount))
	return amount
}

func (r *NodeRewarding) AddDelegation(amount uint64, isNew bool) {
	r.DelegatedStake = r.DelegatedStake.Add(mixnet.NewDecimal(amount))
	if isNew {
		r.UniqueDelegations++
	}
}

func (r *NodeRewarding) RemoveDelegation(amount uint64) {
	r.DelegatedStake = r.DelegatedStake.Sub(mixnet.NewDecimal(amount))
	if r.UniqueDelegations > 0 {
		r.UniqueDelegations--
	}
}

// IsDrained reports whether nothing is left to settle on the node.
func (r *NodeRewarding) IsDrained() bool {
	return r.OperatorStake.IsZero() && r.UniqueDelegations == 0
}
