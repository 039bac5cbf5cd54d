// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package contract

import (
	"github.com/pkg/errors"

	"github.com/mixledger/ledger/contract/events"
	"github.com/mixledger/ledger/contract/nodes"
	"github.com/mixledger/ledger/contract/params"
	"github.com/mixledger/ledger/contract/rewards"
	"github.com/mixledger/ledger/mixnet"
)

// Bond registers a node owned by the sender, pledging the attached funds.
func (c *Contract) Bond(
	env Env,
	info MessageInfo,
	config nodes.Config,
	costs nodes.CostParams,
	ownerSignature string,
) (mixnet.NodeID, *Response, error) {
	return c.bond(env, info, nil, config, costs, ownerSignature)
}

// BondOnBehalf bonds a node for owner through the vesting proxy.
func (c *Contract) BondOnBehalf(
	env Env,
	info MessageInfo,
	owner mixnet.Address,
	config nodes.Config,
	costs nodes.CostParams,
	ownerSignature string,
) (mixnet.NodeID, *Response, error) {
	return c.bond(env, info, &owner, config, costs, ownerSignature)
}

func (c *Contract) bond(
	env Env,
	info MessageInfo,
	onBehalfOf *mixnet.Address,
	config nodes.Config,
	costs nodes.CostParams,
	ownerSignature string,
) (mixnet.NodeID, *Response, error) {
	owner, proxy, err := c.principal(info, onBehalfOf)
	if err != nil {
		return 0, nil, err
	}
	logger.Debug("bonding", "owner", owner, "proxy", proxy, "identity", config.IdentityKey)

	state, err := c.state()
	if err != nil {
		return 0, nil, err
	}
	pledge, err := params.ValidatePledge(info.Funds, state)
	if err != nil {
		return 0, nil, err
	}
	if err := costs.Validate(state.RewardingDenom); err != nil {
		return 0, nil, err
	}
	if err := config.Validate(); err != nil {
		return 0, nil, err
	}
	if err := c.verifier.VerifyIdentity(owner, config.IdentityKey, ownerSignature); err != nil {
		return 0, nil, err
	}

	clock, err := c.currentInterval()
	if err != nil {
		return 0, nil, err
	}
	id, err := c.nodes.Add(owner, proxy, config, costs, pledge, env.BlockHeight)
	if err != nil {
		return 0, nil, err
	}
	if err := c.rewards.Set(id, rewards.NewNodeRewarding(costs, pledge.Amount, clock.AbsoluteEpochID())); err != nil {
		return 0, nil, errors.Wrap(err, "failed to set node rewarding")
	}
	if err := c.rewards.AddStake(pledge.Amount); err != nil {
		return 0, nil, err
	}

	logger.Info("node bonded", "node", id, "owner", owner, "pledge", pledge)
	resp := NewResponse().Emit(EventBond,
		"node_id", id,
		"owner", owner,
		"proxy", proxy,
		"identity_key", config.IdentityKey,
		"amount", pledge,
	)
	return id, resp, nil
}

// Unbond starts unbonding the sender's node. The pledge is returned once the
// current epoch ends and the epoch events are reconciled.
func (c *Contract) Unbond(env Env, info MessageInfo) (*Response, error) {
	return c.unbond(env, info, nil)
}

func (c *Contract) UnbondOnBehalf(env Env, info MessageInfo, owner mixnet.Address) (*Response, error) {
	return c.unbond(env, info, &owner)
}

func (c *Contract) unbond(env Env, info MessageInfo, onBehalfOf *mixnet.Address) (*Response, error) {
	owner, proxy, err := c.principal(info, onBehalfOf)
	if err != nil {
		return nil, err
	}
	logger.Debug("unbonding", "owner", owner, "proxy", proxy)

	node, err := c.ownedNode(owner, proxy)
	if err != nil {
		return nil, err
	}
	if err := node.EnsureBonded(); err != nil {
		return nil, err
	}
	clock, err := c.currentInterval()
	if err != nil {
		return nil, err
	}
	if err := c.nodes.SetUnbonding(node); err != nil {
		return nil, errors.Wrap(err, "failed to set node unbonding")
	}
	id, err := c.epochEvents.Push(events.NewUnbond(clock.AbsoluteEpochID(), env.BlockHeight, node.ID))
	if err != nil {
		return nil, err
	}

	logger.Info("node unbonding", "node", node.ID, "event", id)
	return NewResponse().Emit(EventPendingUnbond, "node_id", node.ID, "owner", owner, "event_id", id), nil
}

// UpdateNodeConfig changes the announced host and ports of the sender's node at once.
func (c *Contract) UpdateNodeConfig(env Env, info MessageInfo, update nodes.ConfigUpdate) (*Response, error) {
	return c.updateNodeConfig(env, info, nil, update)
}

func (c *Contract) UpdateNodeConfigOnBehalf(env Env, info MessageInfo, owner mixnet.Address, update nodes.ConfigUpdate) (*Response, error) {
	return c.updateNodeConfig(env, info, &owner, update)
}

func (c *Contract) updateNodeConfig(_ Env, info MessageInfo, onBehalfOf *mixnet.Address, update nodes.ConfigUpdate) (*Response, error) {
	owner, proxy, err := c.principal(info, onBehalfOf)
	if err != nil {
		return nil, err
	}
	node, err := c.ownedNode(owner, proxy)
	if err != nil {
		return nil, err
	}
	if err := node.EnsureBonded(); err != nil {
		return nil, err
	}
	if err := update.Validate(); err != nil {
		return nil, err
	}
	if err := c.nodes.UpdateConfig(node, update); err != nil {
		return nil, errors.Wrap(err, "failed to update node config")
	}

	logger.Info("node config updated", "node", node.ID, "host", update.Host)
	return NewResponse().Emit(EventNodeConfigUpdate, "node_id", node.ID, "host", update.Host, "version", update.Version), nil
}

// UpdateCostParams schedules new cost params for the sender's node. They take
// effect when the current interval ends.
func (c *Contract) UpdateCostParams(env Env, info MessageInfo, costs nodes.CostParams) (*Response, error) {
	return c.updateCostParams(env, info, nil, costs)
}

func (c *Contract) UpdateCostParamsOnBehalf(env Env, info MessageInfo, owner mixnet.Address, costs nodes.CostParams) (*Response, error) {
	return c.updateCostParams(env, info, &owner, costs)
}

func (c *Contract) updateCostParams(env Env, info MessageInfo, onBehalfOf *mixnet.Address, costs nodes.CostParams) (*Response, error) {
	owner, proxy, err := c.principal(info, onBehalfOf)
	if err != nil {
		return nil, err
	}
	node, err := c.ownedNode(owner, proxy)
	if err != nil {
		return nil, err
	}
	if err := node.EnsureBonded(); err != nil {
		return nil, err
	}
	state, err := c.state()
	if err != nil {
		return nil, err
	}
	if err := costs.Validate(state.RewardingDenom); err != nil {
		return nil, err
	}
	clock, err := c.currentInterval()
	if err != nil {
		return nil, err
	}
	id, err := c.intervalEvents.Push(events.NewChangeCostParams(uint64(clock.ID), env.BlockHeight, node.ID, costs))
	if err != nil {
		return nil, err
	}

	logger.Info("cost params update queued", "node", node.ID, "event", id)
	return NewResponse().Emit(EventPendingCostUpdate,
		"node_id", node.ID,
		"profit_margin", costs.ProfitMargin,
		"operating_cost", costs.IntervalOperatingCost,
		"event_id", id,
	), nil
}
