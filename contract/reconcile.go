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
	"github.com/mixledger/ledger/contract/reverts"
	"github.com/mixledger/ledger/contract/rewards"
	"github.com/mixledger/ledger/mixnet"
)

const (
	DefaultReconcileLimit = 100
	MaxReconcileLimit     = 1000
)

// reconcileLimit resolves the batch size. An explicit zero drains nothing.
func reconcileLimit(limit *uint32) int {
	if limit == nil {
		return DefaultReconcileLimit
	}
	if *limit > MaxReconcileLimit {
		return MaxReconcileLimit
	}
	return int(*limit)
}

// ReconcileEpochEvents settles, oldest first, up to limit epoch events created
// in epochs that have ended. It returns how many events were drained.
// An event that no longer applies is dropped with a skip event; the batch goes on.
func (c *Contract) ReconcileEpochEvents(env Env, _ MessageInfo, limit *uint32) (uint32, *Response, error) {
	clock, err := c.currentInterval()
	if err != nil {
		return 0, nil, err
	}
	epoch := clock.AbsoluteEpochID()
	var due []events.Entry[events.EpochEvent]
	if n := reconcileLimit(limit); n > 0 {
		if due, err = c.epochEvents.Due(n, func(e *events.EpochEvent) bool { return e.IsDue(epoch) }); err != nil {
			return 0, nil, err
		}
	}
	logger.Debug("reconciling epoch events", "epoch", epoch, "due", len(due))

	resp := NewResponse()
	for _, entry := range due {
		if err := c.applyEpochEvent(env, &entry.Event, resp); err != nil {
			if !reverts.IsRevertErr(err) {
				return 0, nil, errors.WithMessagef(err, "epoch event %d", entry.ID)
			}
			logger.Warn("epoch event skipped", "id", entry.ID, "kind", entry.Event.Kind, "error", err)
			resp.Emit(EventEpochEventSkipped, "event_id", entry.ID, "kind", entry.Event.Kind, "reason", err)
		}
		if err := c.epochEvents.Remove(entry.ID); err != nil {
			return 0, nil, err
		}
	}

	if len(due) > 0 {
		logger.Info("epoch events reconciled", "epoch", epoch, "drained", len(due))
	}
	resp.Emit(EventReconcileEpoch, "epoch", epoch, "drained", len(due))
	return uint32(len(due)), resp, nil
}

func (c *Contract) applyEpochEvent(env Env, e *events.EpochEvent, resp *Response) error {
	switch e.Kind {
	case events.EpochDelegate:
		return c.applyDelegate(e, resp)
	case events.EpochUndelegate:
		return c.applyUndelegate(e, resp)
	case events.EpochUnbond:
		return c.applyUnbond(env, e, resp)
	case events.EpochChangeActiveSetSize:
		return c.applyActiveSetSize(e, resp)
	default:
		return errors.WithMessagef(reverts.ErrInvalidParams, "unknown epoch event kind %d", e.Kind)
	}
}

// applyDelegate creates or tops up a delegation. Funds for a node that went
// away in the meantime are refunded.
func (c *Contract) applyDelegate(e *events.EpochEvent, resp *Response) error {
	node, err := c.nodes.Get(e.NodeID)
	if err != nil {
		return err
	}
	rewarding, err := c.rewards.Get(e.NodeID)
	if err != nil {
		return err
	}
	to := proxyOrOwner(e.Owner, e.Proxy)
	if node == nil || !node.IsBonded() || rewarding == nil {
		logger.Warn("delegation refunded", "node", e.NodeID, "owner", e.Owner, "amount", e.Amount)
		resp.Send(to, e.Amount).Emit(EventDelegationRefund,
			"node_id", e.NodeID,
			"owner", e.Owner,
			"amount", e.Amount,
			"reason", "node is not bonded",
		)
		return nil
	}

	delegation, err := c.delegations.Get(e.NodeID, e.Owner, e.Proxy)
	if err != nil {
		return err
	}
	isNew := delegation == nil
	if isNew {
		delegation = &delegations.Delegation{
			NodeID: e.NodeID,
			Owner:  e.Owner,
			Proxy:  e.Proxy,
			Amount: mixnet.NewCoin(0, e.Amount.Denom),
		}
	}
	delegation.Merge(e.Amount.Amount, rewarding.UnitDelegation, e.Height)
	rewarding.AddDelegation(e.Amount.Amount, isNew)

	if err := c.delegations.Set(delegation); err != nil {
		return errors.Wrap(err, "failed to set delegation")
	}
	if err := c.rewards.Set(e.NodeID, rewarding); err != nil {
		return errors.Wrap(err, "failed to set node rewarding")
	}
	if err := c.rewards.AddStake(e.Amount.Amount); err != nil {
		return err
	}
	resp.Emit(EventDelegation, "node_id", e.NodeID, "owner", e.Owner, "proxy", e.Proxy, "amount", e.Amount)
	return nil
}

// applyUndelegate settles a delegation and pays back stake and reward.
func (c *Contract) applyUndelegate(e *events.EpochEvent, resp *Response) error {
	delegation, err := c.delegations.Get(e.NodeID, e.Owner, e.Proxy)
	if err != nil {
		return err
	}
	if delegation == nil {
		return errors.WithMessagef(reverts.ErrDelegationNotFound, "node %v, owner %v", e.NodeID, e.Owner)
	}
	rewarding, err := c.rewards.Get(e.NodeID)
	if err != nil {
		return err
	}

	var reward uint64
	if rewarding != nil {
		reward = delegation.Settle(rewarding.UnitDelegation)
		rewarding.RemoveDelegation(delegation.Amount.Amount)
		if err := c.saveOrPurge(e.NodeID, rewarding); err != nil {
			return err
		}
	}
	if err := c.delegations.Remove(delegation); err != nil {
		return errors.Wrap(err, "failed to remove delegation")
	}
	if err := c.rewards.RemoveStake(delegation.Amount.Amount); err != nil {
		return err
	}

	payout := delegation.Amount
	payout.Amount += reward
	resp.Send(proxyOrOwner(delegation.Owner, delegation.Proxy), payout).Emit(EventUndelegation,
		"node_id", e.NodeID,
		"owner", e.Owner,
		"proxy", e.Proxy,
		"amount", delegation.Amount,
		"reward", reward,
	)
	return nil
}

// applyUnbond pays back the pledge plus accrued operator reward and retires the node.
func (c *Contract) applyUnbond(env Env, e *events.EpochEvent, resp *Response) error {
	node, err := c.nodes.Get(e.NodeID)
	if err != nil {
		return err
	}
	if node == nil {
		return errors.WithMessagef(reverts.ErrNodeNotFound, "node %v", e.NodeID)
	}
	rewarding, err := c.rewards.Get(e.NodeID)
	if err != nil {
		return err
	}

	payout := node.OriginalPledge
	if rewarding != nil {
		payout.Amount = rewarding.OperatorStake.Add(rewarding.OperatorReward).Floor()
		rewarding.OperatorStake = mixnet.Zero
		rewarding.OperatorReward = mixnet.Zero
	}
	if err := c.nodes.Remove(node, env.BlockHeight); err != nil {
		return err
	}
	if rewarding != nil {
		if err := c.saveOrPurge(e.NodeID, rewarding); err != nil {
			return err
		}
	}
	if err := c.rewards.RemoveStake(node.OriginalPledge.Amount); err != nil {
		return err
	}

	logger.Info("node unbonded", "node", node.ID, "owner", node.Owner, "payout", payout)
	resp.Send(proxyOrOwner(node.Owner, node.Proxy), payout).Emit(EventUnbond,
		"node_id", node.ID,
		"owner", node.Owner,
		"amount", payout,
	)
	return nil
}

func (c *Contract) applyActiveSetSize(e *events.EpochEvent, resp *Response) error {
	current, err := c.rewards.Params()
	if err != nil {
		return err
	}
	updated, err := current.WithActiveSetSize(e.ActiveSetSize)
	if err != nil {
		return err
	}
	if err := c.rewards.SetParams(&updated); err != nil {
		return errors.Wrap(err, "failed to set rewarding params")
	}
	resp.Emit(EventActiveSetUpdate, "active_set_size", e.ActiveSetSize)
	return nil
}

// saveOrPurge stores the rewarding state, or drops it once the node is gone
// and nothing is left to settle on it.
func (c *Contract) saveOrPurge(id mixnet.NodeID, rewarding *rewards.NodeRewarding) error {
	if rewarding.IsDrained() {
		node, err := c.nodes.Get(id)
		if err != nil {
			return err
		}
		if node == nil {
			logger.Debug("node rewarding purged", "node", id)
			return c.rewards.Delete(id)
		}
	}
	return c.rewards.Set(id, rewarding)
}

// ReconcileIntervalEvents settles, oldest first, up to limit interval events
// created in intervals that have ended.
func (c *Contract) ReconcileIntervalEvents(env Env, _ MessageInfo, limit *uint32) (uint32, *Response, error) {
	clock, err := c.currentInterval()
	if err != nil {
		return 0, nil, err
	}
	current := uint64(clock.ID)
	var due []events.Entry[events.IntervalEvent]
	if n := reconcileLimit(limit); n > 0 {
		if due, err = c.intervalEvents.Due(n, func(e *events.IntervalEvent) bool { return e.IsDue(current) }); err != nil {
			return 0, nil, err
		}
	}
	logger.Debug("reconciling interval events", "interval", current, "due", len(due))

	resp := NewResponse()
	for _, entry := range due {
		if err := c.applyIntervalEvent(&clock, &entry.Event, resp); err != nil {
			if !reverts.IsRevertErr(err) {
				return 0, nil, errors.WithMessagef(err, "interval event %d", entry.ID)
			}
			logger.Warn("interval event skipped", "id", entry.ID, "kind", entry.Event.Kind, "error", err)
			resp.Emit(EventIntervalEventSkip, "event_id", entry.ID, "kind", entry.Event.Kind, "reason", err)
		}
		if err := c.intervalEvents.Remove(entry.ID); err != nil {
			return 0, nil, err
		}
	}

	if len(due) > 0 {
		logger.Info("interval events reconciled", "interval", current, "drained", len(due))
	}
	resp.Emit(EventReconcileInterval, "interval", current, "drained", len(due))
	return uint32(len(due)), resp, nil
}

func (c *Contract) applyIntervalEvent(clock *interval.Interval, e *events.IntervalEvent, resp *Response) error {
	switch e.Kind {
	case events.IntervalChangeRewardingParams:
		current, err := c.rewards.Params()
		if err != nil {
			return err
		}
		updated, err := current.Apply(&e.ParamsUpdate, clock.EpochsInInterval)
		if err != nil {
			return err
		}
		if err := c.rewards.SetParams(&updated); err != nil {
			return errors.Wrap(err, "failed to set rewarding params")
		}
		resp.Emit(EventParamsUpdate,
			"epoch_reward_budget", updated.Interval.EpochRewardBudget,
			"stake_saturation_point", updated.Interval.StakeSaturationPoint,
		)
		return nil

	case events.IntervalChangeConfig:
		if e.EpochLength > uint64(maxEpochDuration/time.Second) {
			return errors.WithMessagef(reverts.ErrInvalidParams, "epoch duration %ds is too long", e.EpochLength)
		}
		if err := c.applyIntervalConfig(clock, e.EpochsInInterval, time.Duration(e.EpochLength)*time.Second); err != nil {
			return err
		}
		resp.Emit(EventIntervalConfig, "epochs_in_interval", e.EpochsInInterval, "epoch_duration_secs", e.EpochLength)
		return nil

	case events.IntervalChangeCostParams:
		node, err := c.nodes.MustGet(e.NodeID)
		if err != nil {
			return err
		}
		if err := node.EnsureBonded(); err != nil {
			return err
		}
		rewarding, err := c.rewards.Get(e.NodeID)
		if err != nil {
			return err
		}
		if rewarding == nil {
			return errors.WithMessagef(reverts.ErrNodeNotFound, "no rewarding details for node %v", e.NodeID)
		}
		if err := c.nodes.SetCostParams(node, e.CostParams); err != nil {
			return errors.Wrap(err, "failed to set cost params")
		}
		rewarding.CostParams = e.CostParams
		if err := c.rewards.Set(e.NodeID, rewarding); err != nil {
			return errors.Wrap(err, "failed to set node rewarding")
		}
		resp.Emit(EventCostParamsUpdate, "node_id", e.NodeID, "profit_margin", e.CostParams.ProfitMargin)
		return nil

	default:
		return errors.WithMessagef(reverts.ErrInvalidParams, "unknown interval event kind %d", e.Kind)
	}
}
