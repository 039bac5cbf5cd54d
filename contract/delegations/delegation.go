// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegations

import (
	"github.com/mixledger/ledger/mixnet"
)

// Delegation is a third party stake behind a node.
// It is unique per (node, owner, proxy).
type Delegation struct {
	NodeID mixnet.NodeID  `json:"node_id"`
	Owner  mixnet.Address `json:"owner"`
	Proxy  mixnet.Address `json:"proxy,omitempty"`
	Amount mixnet.Coin    `json:"amount"`
	// CumulativeRewardRatio is the node's unit delegation rate at the last settlement.
	CumulativeRewardRatio mixnet.Decimal `json:"cumulative_reward_ratio"`
	Height                uint64         `json:"height"`
}

// PendingReward is the reward accrued since the last settlement at the given rate.
func (d *Delegation) PendingReward(unitDelegation mixnet.Decimal) mixnet.Decimal {
	return d.Amount.Decimal().Mul(unitDelegation.Sub(d.CumulativeRewardRatio))
}

// Merge adds amount, delegated at the current rate, to the delegation.
// The stored ratio becomes the stake weighted average of the old and new
// ratios, which keeps the unclaimed reward of the existing stake unchanged.
func (d *Delegation) Merge(amount uint64, unitDelegation mixnet.Decimal, height uint64) {
	oldStake := d.Amount.Decimal()
	newStake := mixnet.NewDecimal(amount)
	total := oldStake.Add(newStake)

	weighted := oldStake.Mul(d.CumulativeRewardRatio).Add(newStake.Mul(unitDelegation))
	d.CumulativeRewardRatio = weighted.Quo(total)
	d.Amount.Amount += amount
	d.Height = height
}

// Settle resets the baseline to the given rate and returns the integer reward
// that can be paid out. The fractional remainder is forfeited.
func (d *Delegation) Settle(unitDelegation mixnet.Decimal) uint64 {
	reward := d.PendingReward(unitDelegation).Floor()
	d.CumulativeRewardRatio = unitDelegation
	return reward
}
