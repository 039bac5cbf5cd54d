// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package contract

import (
	"github.com/pkg/errors"

	"github.com/mixledger/ledger/contract/delegations"
	"github.com/mixledger/ledger/contract/events"
	"github.com/mixledger/ledger/contract/params"
	"github.com/mixledger/ledger/contract/reverts"
	"github.com/mixledger/ledger/mixnet"
)

// Delegate queues the attached funds as a delegation to a bonded node.
func (c *Contract) Delegate(env Env, info MessageInfo, nodeID mixnet.NodeID) (*Response, error) {
	return c.delegate(env, info, nil, nodeID)
}

func (c *Contract) DelegateOnBehalf(env Env, info MessageInfo, owner mixnet.Address, nodeID mixnet.NodeID) (*Response, error) {
	return c.delegate(env, info, &owner, nodeID)
}

func (c *Contract) delegate(env Env, info MessageInfo, onBehalfOf *mixnet.Address, nodeID mixnet.NodeID) (*Response, error) {
	owner, proxy, err := c.principal(info, onBehalfOf)
	if err != nil {
		return nil, err
	}
	logger.Debug("delegating", "node", nodeID, "owner", owner, "proxy", proxy, "funds", info.Funds)

	node, err := c.nodes.MustGet(nodeID)
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
	amount, err := params.ValidateDelegation(info.Funds, state)
	if err != nil {
		return nil, err
	}
	clock, err := c.currentInterval()
	if err != nil {
		return nil, err
	}
	id, err := c.epochEvents.Push(events.NewDelegate(clock.AbsoluteEpochID(), env.BlockHeight, nodeID, owner, proxy, amount))
	if err != nil {
		return nil, err
	}

	logger.Info("delegation queued", "node", nodeID, "owner", owner, "amount", amount, "event", id)
	return NewResponse().Emit(EventPendingDelegation,
		"node_id", nodeID,
		"owner", owner,
		"proxy", proxy,
		"amount", amount,
		"event_id", id,
	), nil
}

// Undelegate queues the removal of a delegation. Stake and reward are paid
// once the current epoch ends and the epoch events are reconciled.
func (c *Contract) Undelegate(env Env, info MessageInfo, nodeID mixnet.NodeID) (*Response, error) {
	return c.undelegate(env, info, nil, nodeID)
}

func (c *Contract) UndelegateOnBehalf(env Env, info MessageInfo, owner mixnet.Address, nodeID mixnet.NodeID) (*Response, error) {
	return c.undelegate(env, info, &owner, nodeID)
}

func (c *Contract) undelegate(env Env, info MessageInfo, onBehalfOf *mixnet.Address, nodeID mixnet.NodeID) (*Response, error) {
	owner, proxy, err := c.principal(info, onBehalfOf)
	if err != nil {
		return nil, err
	}
	logger.Debug("undelegating", "node", nodeID, "owner", owner, "proxy", proxy)

	if _, err := c.ownedDelegation(nodeID, owner, proxy); err != nil {
		return nil, err
	}
	clock, err := c.currentInterval()
	if err != nil {
		return nil, err
	}
	id, err := c.epochEvents.Push(events.NewUndelegate(clock.AbsoluteEpochID(), env.BlockHeight, nodeID, owner, proxy))
	if err != nil {
		return nil, err
	}

	logger.Info("undelegation queued", "node", nodeID, "owner", owner, "event", id)
	return NewResponse().Emit(EventPendingUndelegation,
		"node_id", nodeID,
		"owner", owner,
		"proxy", proxy,
		"event_id", id,
	), nil
}

// ownedDelegation returns the delegation of owner made through proxy. It tells
// a missing delegation apart from one held through another proxy.
func (c *Contract) ownedDelegation(nodeID mixnet.NodeID, owner, proxy mixnet.Address) (*delegations.Delegation, error) {
	held, err := c.delegations.FindAll(nodeID, owner)
	if err != nil {
		return nil, err
	}
	if len(held) == 0 {
		return nil, errors.WithMessagef(reverts.ErrDelegationNotFound, "node %v, owner %v", nodeID, owner)
	}
	for i := range held {
		if held[i].Proxy == proxy {
			return &held[i], nil
		}
	}
	return nil, errors.WithMessagef(reverts.ErrProxyMismatch, "node %v, owner %v", nodeID, owner)
}
