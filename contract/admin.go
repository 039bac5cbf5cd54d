// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package contract

import (
	"time"

	"github.com/pkg/errors"

	"github.com/mixledger/ledger/contract/events"
	"github.com/mixledger/ledger/contract/interval"
	"github.com/mixledger/ledger/contract/params"
	"github.com/mixledger/ledger/contract/reverts"
	"github.com/mixledger/ledger/contract/rewards"
	"github.com/mixledger/ledger/mixnet"
)

func (c *Contract) UpdateContractParams(_ Env, info MessageInfo, updated params.Params) (*Response, error) {
	if err := c.params.UpdateContractParams(info.Sender, updated); err != nil {
		return nil, err
	}
	logger.Info("contract params updated", "minimum_pledge", updated.MinimumPledge)
	attrs := []any{"minimum_pledge", updated.MinimumPledge}
	if updated.MinimumDelegation != nil {
		attrs = append(attrs, "minimum_delegation", *updated.MinimumDelegation)
	}
	return NewResponse().Emit(EventContractParams, attrs...), nil
}

func (c *Contract) UpdateRewardingValidatorAddress(_ Env, info MessageInfo, address mixnet.Address) (*Response, error) {
	if err := c.params.UpdateRewardingValidatorAddress(info.Sender, address); err != nil {
		return nil, err
	}
	logger.Info("rewarding validator updated", "address", address)
	return NewResponse().Emit(EventRewardingValidator, "address", address), nil
}

// UpdateRewardingParams changes the reward parameters when the current
// interval ends, or at once when force is set.
func (c *Contract) UpdateRewardingParams(env Env, info MessageInfo, update rewards.ParamsUpdate, force bool) (*Response, error) {
	if err := c.params.EnsureOwnerOrRewardingValidator(info.Sender); err != nil {
		return nil, err
	}
	clock, err := c.currentInterval()
	if err != nil {
		return nil, err
	}
	current, err := c.rewards.Params()
	if err != nil {
		return nil, err
	}
	updated, err := current.Apply(&update, clock.EpochsInInterval)
	if err != nil {
		return nil, err
	}

	if force {
		if err := c.rewards.SetParams(&updated); err != nil {
			return nil, errors.Wrap(err, "failed to set rewarding params")
		}
		logger.Info("rewarding params updated", "epoch_reward_budget", updated.Interval.EpochRewardBudget)
		return NewResponse().Emit(EventParamsUpdate,
			"epoch_reward_budget", updated.Interval.EpochRewardBudget,
			"stake_saturation_point", updated.Interval.StakeSaturationPoint,
		), nil
	}

	id, err := c.intervalEvents.Push(events.NewChangeRewardingParams(uint64(clock.ID), env.BlockHeight, update))
	if err != nil {
		return nil, err
	}
	logger.Info("rewarding params update queued", "interval", clock.ID, "event", id)
	return NewResponse().Emit(EventPendingParamsUpdate, "interval", clock.ID, "event_id", id), nil
}

// UpdateActiveSetSize changes the active set size when the current epoch
// ends, or at once when force is set.
func (c *Contract) UpdateActiveSetSize(env Env, info MessageInfo, size uint32, force bool) (*Response, error) {
	if err := c.params.EnsureOwnerOrRewardingValidator(info.Sender); err != nil {
		return nil, err
	}
	current, err := c.rewards.Params()
	if err != nil {
		return nil, err
	}
	updated, err := current.WithActiveSetSize(size)
	if err != nil {
		return nil, err
	}

	if force {
		if err := c.rewards.SetParams(&updated); err != nil {
			return nil, errors.Wrap(err, "failed to set rewarding params")
		}
		logger.Info("active set size updated", "size", size)
		return NewResponse().Emit(EventActiveSetUpdate, "active_set_size", size), nil
	}

	clock, err := c.currentInterval()
	if err != nil {
		return nil, err
	}
	id, err := c.epochEvents.Push(events.NewChangeActiveSetSize(clock.AbsoluteEpochID(), env.BlockHeight, size))
	if err != nil {
		return nil, err
	}
	logger.Info("active set size update queued", "size", size, "event", id)
	return NewResponse().Emit(EventPendingParamsUpdate, "active_set_size", size, "event_id", id), nil
}

// UpdateIntervalConfig changes the interval shape when the current interval
// ends, or at once when force is set.
func (c *Contract) UpdateIntervalConfig(env Env, info MessageInfo, epochsInInterval uint32, epochDurationSecs uint64, force bool) (*Response, error) {
	if err := c.params.EnsureOwnerOrRewardingValidator(info.Sender); err != nil {
		return nil, err
	}
	clock, err := c.currentInterval()
	if err != nil {
		return nil, err
	}
	if epochDurationSecs > uint64(maxEpochDuration/time.Second) {
		return nil, errors.WithMessagef(reverts.ErrInvalidParams, "epoch duration %ds is too long", epochDurationSecs)
	}
	length := time.Duration(epochDurationSecs) * time.Second

	if !force {
		// validate against a copy; the clock itself changes at the interval end
		trial := clock
		if err := trial.ApplyConfig(epochsInInterval, length); err != nil {
			return nil, err
		}
		id, err := c.intervalEvents.Push(events.NewChangeIntervalConfig(uint64(clock.ID), env.BlockHeight, epochsInInterval, epochDurationSecs))
		if err != nil {
			return nil, err
		}
		logger.Info("interval config update queued", "epochs", epochsInInterval, "epoch_secs", epochDurationSecs, "event", id)
		return NewResponse().Emit(EventPendingParamsUpdate,
			"epochs_in_interval", epochsInInterval,
			"epoch_duration_secs", epochDurationSecs,
			"event_id", id,
		), nil
	}

	if err := c.applyIntervalConfig(&clock, epochsInInterval, length); err != nil {
		return nil, err
	}
	return NewResponse().Emit(EventIntervalConfig,
		"epochs_in_interval", epochsInInterval,
		"epoch_duration_secs", epochDurationSecs,
	), nil
}

// maxEpochDuration keeps second counts convertible to time.Duration.
const maxEpochDuration = 100 * 365 * 24 * time.Hour

// applyIntervalConfig reshapes the clock and rescales the per epoch budget to
// the new number of epochs.
func (c *Contract) applyIntervalConfig(clock *interval.Interval, epochsInInterval uint32, length time.Duration) error {
	if err := clock.ApplyConfig(epochsInInterval, length); err != nil {
		return err
	}
	rp, err := c.rewards.Params()
	if err != nil {
		return err
	}
	rp.Recompute(clock.EpochsInInterval)
	if err := c.interval.Set(*clock); err != nil {
		return errors.Wrap(err, "failed to set interval")
	}
	if err := c.rewards.SetParams(rp); err != nil {
		return errors.Wrap(err, "failed to set rewarding params")
	}
	logger.Info("interval config updated", "epochs", epochsInInterval, "epoch_length", length)
	return nil
}
