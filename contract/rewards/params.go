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

// IntervalParams are fixed for an interval, apart from the pool and supply
// which move with every payout and stake change.
type IntervalParams struct {
	RewardPool    mixnet.Decimal `json:"reward_pool"`
	StakingSupply mixnet.Decimal `json:"staking_supply"`

	// derived at every interval boundary
	EpochRewardBudget    mixnet.Decimal `json:"epoch_reward_budget"`
	StakeSaturationPoint mixnet.Decimal `json:"stake_saturation_point"`

	SybilResistance      mixnet.Decimal `json:"sybil_resistance_percent"`
	ActiveSetWorkFactor  mixnet.Decimal `json:"active_set_work_factor"`
	IntervalPoolEmission mixnet.Decimal `json:"interval_pool_emission"`
	FormulaVersion       uint8          `json:"formula_version"`
}

type EpochParams struct {
	RewardedSetSize uint32 `json:"rewarded_set_size"`
	ActiveSetSize   uint32 `json:"active_set_size"`
}

type Params struct {
	Interval IntervalParams `json:"interval"`
	Epoch    EpochParams    `json:"rewarded_set"`
}

func (p *Params) Validate() error {
	if p.Epoch.RewardedSetSize == 0 {
		return errors.WithMessage(reverts.ErrInvalidParams, "rewarded set size must be positive")
	}
	if p.Epoch.ActiveSetSize == 0 || p.Epoch.ActiveSetSize > p.Epoch.RewardedSetSize {
		return errors.WithMessagef(reverts.ErrInvalidParams, "active set size %d must lie within [1, %d]",
			p.Epoch.ActiveSetSize, p.Epoch.RewardedSetSize)
	}
	if !p.Interval.SybilResistance.IsPercent() {
		return errors.WithMessagef(reverts.ErrInvalidParams, "sybil resistance %v is not a percentage", p.Interval.SybilResistance)
	}
	if !p.Interval.IntervalPoolEmission.IsPercent() {
		return errors.WithMessagef(reverts.ErrInvalidParams, "interval pool emission %v is not a percentage", p.Interval.IntervalPoolEmission)
	}
	if p.Interval.ActiveSetWorkFactor.Cmp(mixnet.One) < 0 {
		return errors.WithMessagef(reverts.ErrInvalidParams, "active set work factor %v is below 1", p.Interval.ActiveSetWorkFactor)
	}
	if _, err := FormulaFor(p.Interval.FormulaVersion); err != nil {
		return err
	}
	return nil
}

// Recompute derives the per-epoch budget and the saturation point for a new interval.
func (p *Params) Recompute(epochsInInterval uint32) {
	p.Interval.EpochRewardBudget = p.Interval.RewardPool.
		Mul(p.Interval.IntervalPoolEmission).
		QuoUint(uint64(epochsInInterval))
	p.Interval.StakeSaturationPoint = p.Interval.StakingSupply.QuoUint(uint64(p.Epoch.RewardedSetSize))
}

// ParamsUpdate carries the fields to change; nil and zero fields are left untouched.
type ParamsUpdate struct {
	RewardPool           *mixnet.Decimal `json:"reward_pool,omitempty" rlp:"nilString"`
	StakingSupply        *mixnet.Decimal `json:"staking_supply,omitempty" rlp:"nilString"`
	SybilResistance      *mixnet.Decimal `json:"sybil_resistance_percent,omitempty" rlp:"nilString"`
	ActiveSetWorkFactor  *mixnet.Decimal `json:"active_set_work_factor,omitempty" rlp:"nilString"`
	IntervalPoolEmission *mixnet.Decimal `json:"interval_pool_emission,omitempty" rlp:"nilString"`
	RewardedSetSize      uint32          `json:"rewarded_set_size,omitempty"`
	FormulaVersion       uint8           `json:"formula_version,omitempty"`
}

func (u *ParamsUpdate) IsEmpty() bool {
	return u.RewardPool == nil &&
		u.StakingSupply == nil &&
		u.SybilResistance == nil &&
		u.ActiveSetWorkFactor == nil &&
		u.IntervalPoolEmission == nil &&
		u.RewardedSetSize == 0 &&
		u.FormulaVersion == 0
}

// Apply returns p with the update applied and the derived values recomputed.
func (p Params) Apply(u *ParamsUpdate, epochsInInterval uint32) (Params, error) {
	if u.IsEmpty() {
		return p, errors.WithMessage(reverts.ErrInvalidParams, "empty params update")
	}
	if u.RewardPool != nil {
		p.Interval.RewardPool = *u.RewardPool
	}
	if u.StakingSupply != nil {
		p.Interval.StakingSupply = *u.StakingSupply
	}
	if u.SybilResistance != nil {
		p.Interval.SybilResistance = *u.SybilResistance
	}
	if u.ActiveSetWorkFactor != nil {
		p.Interval.ActiveSetWorkFactor = *u.ActiveSetWorkFactor
	}
	if u.IntervalPoolEmission != nil {
		p.Interval.IntervalPoolEmission = *u.IntervalPoolEmission
	}
	if u.RewardedSetSize != 0 {
		p.Epoch.RewardedSetSize = u.RewardedSetSize
	}
	if u.FormulaVersion != 0 {
		p.Interval.FormulaVersion = u.FormulaVersion
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	p.Recompute(epochsInInterval)
	return p, nil
}

// WithActiveSetSize returns p with a new active set size.
func (p Params) WithActiveSetSize(size uint32) (Params, error) {
	p.Epoch.ActiveSetSize = size
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}
