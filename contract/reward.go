// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package contract

import (
	"github.com/pkg/errors"

	"github.com/mixledger/ledger/contract/reverts"
	"github.com/mixledger/ledger/contract/rewards"
	"github.com/mixledger/ledger/mixnet"
)

// RewardNode pays a node its share of the current epoch budget, scaled by
// its measured performance. Nodes that cannot be rewarded are skipped
// without failing, so one bad entry never blocks the rewarding validator.
func (c *Contract) RewardNode(_ Env, info MessageInfo, nodeID mixnet.NodeID, performance mixnet.Decimal) (*Response, error) {
	if err := c.params.EnsureRewardingValidator(info.Sender); err != nil {
		return nil, err
	}
	if !performance.IsPercent() {
		return nil, errors.WithMessagef(reverts.ErrInvalidParams, "performance %v is above 100%%", performance)
	}
	logger.Debug("rewarding node", "node", nodeID, "performance", performance)

	resp := NewResponse()
	skip := func(reason string) (*Response, error) {
		logger.Debug("node rewarding skipped", "node", nodeID, "reason", reason)
		return resp.Emit(EventNodeRewardSkipped, "node_id", nodeID, "reason", reason), nil
	}

	node, err := c.nodes.Get(nodeID)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return skip("node is not bonded")
	}
	status, err := c.rewards.RewardedStatus(nodeID)
	if err != nil {
		return nil, err
	}
	if status == rewards.SetStatusNone {
		return skip("node is not in the rewarded set")
	}
	clock, err := c.currentInterval()
	if err != nil {
		return nil, err
	}
	outcome, err := c.rewards.Reward(nodeID, status, performance, clock.AbsoluteEpochID(), clock.EpochsInInterval)
	if err != nil {
		return nil, err
	}

	logger.Info("node rewarded", "node", nodeID, "epoch", clock.AbsoluteEpochID(), "reward", outcome.Reward)
	resp.Emit(EventNodeRewarding,
		"node_id", nodeID,
		"epoch", clock.AbsoluteEpochID(),
		"status", status,
		"performance", performance,
		"reward", outcome.Reward,
		"operator", outcome.Distribution.Operator,
		"delegates", outcome.Distribution.Delegators,
	)
	if !outcome.Shortfall.IsZero() {
		resp.Emit(EventRewardPoolShortfall, "node_id", nodeID, "shortfall", outcome.Shortfall)
	}
	return resp, nil
}

// WithdrawOperatorReward pays out the whole tokens of the sender's accrued
// operator reward. The pledge is not touched.
func (c *Contract) WithdrawOperatorReward(env Env, info MessageInfo) (*Response, error) {
	return c.withdrawOperatorReward(env, info, nil)
}

func (c *Contract) WithdrawOperatorRewardOnBehalf(env Env, info MessageInfo, owner mixnet.Address) (*Response, error) {
	return c.withdrawOperatorReward(env, info, &owner)
}

func (c *Contract) withdrawOperatorReward(_ Env, info MessageInfo, onBehalfOf *mixnet.Address) (*Response, error) {
	owner, proxy, err := c.principal(info, onBehalfOf)
	if err != nil {
		return nil, err
	}
	node, err := c.ownedNode(owner, proxy)
	if err != nil {
		return nil, err
	}
	rewarding, err := c.rewards.Get(node.ID)
	if err != nil {
		return nil, err
	}
	if rewarding == nil {
		return nil, errors.WithMessagef(reverts.ErrNodeNotFound, "no rewarding details for node %v", node.ID)
	}

	amount := rewarding.WithdrawOperatorReward()
	if err := c.rewards.Set(node.ID, rewarding); err != nil {
		return nil, errors.Wrap(err, "failed to set node rewarding")
	}
	payout := mixnet.NewCoin(amount, node.OriginalPledge.Denom)

	logger.Info("operator reward withdrawn", "node", node.ID, "owner", owner, "amount", payout)
	return NewResponse().
		Send(proxyOrOwner(owner, proxy), payout).
		Emit(EventWithdrawOperator, "node_id", node.ID, "owner", owner, "amount", payout), nil
}

// WithdrawDelegatorReward pays out the whole tokens accrued on the sender's
// delegation and resets its baseline. The delegated stake is not touched.
func (c *Contract) WithdrawDelegatorReward(env Env, info MessageInfo, nodeID mixnet.NodeID) (*Response, error) {
	return c.withdrawDelegatorReward(env, info, nil, nodeID)
}

func (c *Contract) WithdrawDelegatorRewardOnBehalf(env Env, info MessageInfo, owner mixnet.Address, nodeID mixnet.NodeID) (*Response, error) {
	return c.withdrawDelegatorReward(env, info, &owner, nodeID)
}

func (c *Contract) withdrawDelegatorReward(_ Env, info MessageInfo, onBehalfOf *mixnet.Address, nodeID mixnet.NodeID) (*Response, error) {
	owner, proxy, err := c.principal(info, onBehalfOf)
	if err != nil {
		return nil, err
	}
	delegation, err := c.ownedDelegation(nodeID, owner, proxy)
	if err != nil {
		return nil, err
	}
	rewarding, err := c.rewards.Get(nodeID)
	if err != nil {
		return nil, err
	}
	if rewarding == nil {
		return nil, errors.WithMessagef(reverts.ErrNodeNotFound, "no rewarding details for node %v", nodeID)
	}

	amount := delegation.Settle(rewarding.UnitDelegation)
	if err := c.delegations.Set(delegation); err != nil {
		return nil, errors.Wrap(err, "failed to set delegation")
	}
	payout := mixnet.NewCoin(amount, delegation.Amount.Denom)

	logger.Info("delegator reward withdrawn", "node", nodeID, "owner", owner, "amount", payout)
	return NewResponse().
		Send(proxyOrOwner(owner, proxy), payout).
		Emit(EventWithdrawDelegator, "node_id", nodeID, "owner", owner, "amount", payout), nil
}
