// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"github.com/pkg/errors"

	"github.com/mixledger/ledger/contract/reverts"
	"github.com/mixledger/ledger/mixnet"
)

// Formula computes the epoch reward of a single node.
type Formula interface {
	Version() uint8
	NodeReward(params *Params, node *NodeRewarding, status SetStatus, performance mixnet.Decimal) mixnet.Decimal
}

// FormulaV1 is the saturation curve with a sybil resistance term on the
// operator's own stake:
//
//	reward = performance * budget * work * σ * (1 + α*λ) / (1 + α)
//
// where σ and λ are the total and operator stake relative to the saturation
// point, both capped at 1, and work is the node's share of the rewarded set.
type FormulaV1 struct{}

func (FormulaV1) Version() uint8 { return 1 }

func (FormulaV1) NodeReward(params *Params, node *NodeRewarding, status SetStatus, performance mixnet.Decimal) mixnet.Decimal {
	if status == SetStatusNone {
		return mixnet.Zero
	}
	sigma, lambda := saturation(params, node.TotalStake()), saturation(params, node.OperatorStake)
	alpha := params.Interval.SybilResistance

	work := RelativeWork(params, status)
	sybil := mixnet.One.Add(alpha.Mul(lambda)).Quo(mixnet.One.Add(alpha))

	return performance.Min(mixnet.One).
		Mul(params.Interval.EpochRewardBudget).
		Mul(work).
		Mul(sigma).
		Mul(sybil)
}

// saturation is stake over the saturation point, capped at 1.
// With no saturation point every node counts as saturated.
func saturation(params *Params, stake mixnet.Decimal) mixnet.Decimal {
	point := params.Interval.StakeSaturationPoint
	if point.IsZero() {
		return mixnet.One
	}
	return stake.Quo(point).Min(mixnet.One)
}

// RelativeWork is the share of the epoch budget a node of the given status
// can earn. Active nodes weigh ActiveSetWorkFactor times a standby node, and
// the shares of a full rewarded set sum to 1.
func RelativeWork(params *Params, status SetStatus) mixnet.Decimal {
	f := params.Interval.ActiveSetWorkFactor
	active := uint64(params.Epoch.ActiveSetSize)
	standbySlots := uint64(params.Epoch.RewardedSetSize) - active

	standby := mixnet.One.Quo(f.MulUint(active).Add(mixnet.NewDecimal(standbySlots)))
	switch status {
	case SetStatusActive:
		return f.Mul(standby)
	case SetStatusStandby:
		return standby
	default:
		return mixnet.Zero
	}
}

var formulas = map[uint8]Formula{
	1: FormulaV1{},
}

// FormulaFor resolves a formula version. Version 0 stands for the latest.
func FormulaFor(version uint8) (Formula, error) {
	if version == 0 {
		version = LatestFormulaVersion
	}
	f, ok := formulas[version]
	if !ok {
		return nil, errors.WithMessagef(reverts.ErrInvalidParams, "unknown formula version %d", version)
	}
	return f, nil
}

const LatestFormulaVersion uint8 = 1
