// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package contract

import (
	"github.com/pkg/errors"

	"github.com/mixledger/ledger/contract/rewards"
	"github.com/mixledger/ledger/mixnet"
)

// AdvanceEpoch closes the current epoch and installs the rewarded set for the
// next one. The first expectedActiveSetSize entries of newRewardedSet are active.
// Pending events are not drained here; reconciliation is a separate call.
// The set is rewarded with the set sizes in force now, even if they change
// before the next advance.
func (c *Contract) AdvanceEpoch(env Env, info MessageInfo, newRewardedSet []mixnet.NodeID, expectedActiveSetSize uint32) (*Response, error) {
	if err := c.params.EnsureRewardingValidator(info.Sender); err != nil {
		return nil, err
	}
	logger.Debug("advancing epoch", "set", len(newRewardedSet), "active", expectedActiveSetSize)

	clock, err := c.currentInterval()
	if err != nil {
		return nil, err
	}
	rolled, err := clock.Advance(env.BlockTime)
	if err != nil {
		return nil, err
	}
	rp, err := c.rewards.Params()
	if err != nil {
		return nil, err
	}
	if err := rewards.ValidateRewardedSet(newRewardedSet, expectedActiveSetSize, rp.Epoch); err != nil {
		return nil, err
	}

	if err := c.rewards.ReplaceRewardedSet(newRewardedSet, rp.Epoch); err != nil {
		return nil, err
	}
	if err := c.interval.Set(clock); err != nil {
		return nil, errors.Wrap(err, "failed to set interval")
	}
	if rolled {
		rp.Recompute(clock.EpochsInInterval)
		if err := c.rewards.SetParams(rp); err != nil {
			return nil, errors.Wrap(err, "failed to set rewarding params")
		}
		logger.Info("interval rolled over", "interval", clock.ID,
			"epoch_reward_budget", rp.Interval.EpochRewardBudget,
			"stake_saturation_point", rp.Interval.StakeSaturationPoint)
	}

	logger.Info("epoch advanced", "interval", clock.ID, "epoch", clock.CurrentEpochID, "absolute", clock.AbsoluteEpochID())
	return NewResponse().Emit(EventAdvanceEpoch,
		"interval", clock.ID,
		"epoch", clock.CurrentEpochID,
		"absolute_epoch", clock.AbsoluteEpochID(),
		"rewarded_set_size", len(newRewardedSet),
		"new_interval", rolled,
	), nil
}
