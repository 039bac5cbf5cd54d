// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package contract

import (
	"github.com/pkg/errors"

	"github.com/mixledger/ledger/contract/reverts"
)

// Execute routes a command to its handler.
func (c *Contract) Execute(env Env, info MessageInfo, msg *ExecuteMsg) (*Response, error) {
	if _, err := msg.Name(); err != nil {
		return nil, err
	}

	switch {
	case msg.Bond != nil:
		m := msg.Bond
		_, resp, err := c.Bond(env, info, m.Node, m.CostParams, m.OwnerSignature)
		return resp, err
	case msg.BondOnBehalf != nil:
		m := msg.BondOnBehalf
		_, resp, err := c.BondOnBehalf(env, info, m.Owner, m.Node, m.CostParams, m.OwnerSignature)
		return resp, err
	case msg.Unbond != nil:
		return c.Unbond(env, info)
	case msg.UnbondOnBehalf != nil:
		return c.UnbondOnBehalf(env, info, msg.UnbondOnBehalf.Owner)
	case msg.UpdateNodeConfig != nil:
		return c.UpdateNodeConfig(env, info, msg.UpdateNodeConfig.NewConfig)
	case msg.UpdateNodeConfigOnBehalf != nil:
		m := msg.UpdateNodeConfigOnBehalf
		return c.UpdateNodeConfigOnBehalf(env, info, m.Owner, m.NewConfig)
	case msg.UpdateCostParams != nil:
		return c.UpdateCostParams(env, info, msg.UpdateCostParams.NewCosts)
	case msg.UpdateCostParamsOnBehalf != nil:
		m := msg.UpdateCostParamsOnBehalf
		return c.UpdateCostParamsOnBehalf(env, info, m.Owner, m.NewCosts)
	case msg.Delegate != nil:
		return c.Delegate(env, info, msg.Delegate.NodeID)
	case msg.DelegateOnBehalf != nil:
		m := msg.DelegateOnBehalf
		return c.DelegateOnBehalf(env, info, m.Owner, m.NodeID)
	case msg.Undelegate != nil:
		return c.Undelegate(env, info, msg.Undelegate.NodeID)
	case msg.UndelegateOnBehalf != nil:
		m := msg.UndelegateOnBehalf
		return c.UndelegateOnBehalf(env, info, m.Owner, m.NodeID)
	case msg.RewardNode != nil:
		m := msg.RewardNode
		return c.RewardNode(env, info, m.NodeID, m.Performance)
	case msg.WithdrawOperatorReward != nil:
		return c.WithdrawOperatorReward(env, info)
	case msg.WithdrawOperatorRewardOnBehalf != nil:
		return c.WithdrawOperatorRewardOnBehalf(env, info, msg.WithdrawOperatorRewardOnBehalf.Owner)
	case msg.WithdrawDelegatorReward != nil:
		return c.WithdrawDelegatorReward(env, info, msg.WithdrawDelegatorReward.NodeID)
	case msg.WithdrawDelegatorRewardOnBehalf != nil:
		m := msg.WithdrawDelegatorRewardOnBehalf
		return c.WithdrawDelegatorRewardOnBehalf(env, info, m.Owner, m.NodeID)
	case msg.AdvanceEpoch != nil:
		m := msg.AdvanceEpoch
		return c.AdvanceEpoch(env, info, m.NewRewardedSet, m.ExpectedActiveSetSize)
	case msg.ReconcileEpochEvents != nil:
		_, resp, err := c.ReconcileEpochEvents(env, info, msg.ReconcileEpochEvents.Limit)
		return resp, err
	case msg.ReconcileIntervalEvents != nil:
		_, resp, err := c.ReconcileIntervalEvents(env, info, msg.ReconcileIntervalEvents.Limit)
		return resp, err
	case msg.UpdateRewardingParams != nil:
		m := msg.UpdateRewardingParams
		return c.UpdateRewardingParams(env, info, m.Updated, m.Force)
	case msg.UpdateActiveSetSize != nil:
		m := msg.UpdateActiveSetSize
		return c.UpdateActiveSetSize(env, info, m.ActiveSetSize, m.Force)
	case msg.UpdateIntervalConfig != nil:
		m := msg.UpdateIntervalConfig
		return c.UpdateIntervalConfig(env, info, m.EpochsInInterval, m.EpochDurationSecs, m.Force)
	case msg.UpdateContractParams != nil:
		return c.UpdateContractParams(env, info, msg.UpdateContractParams.Updated)
	case msg.UpdateRewardingValidatorAddress != nil:
		return c.UpdateRewardingValidatorAddress(env, info, msg.UpdateRewardingValidatorAddress.Address)
	}
	return nil, errors.WithMessage(reverts.ErrInvalidParams, "unhandled message")
}

// Query routes a read only request to its handler.
func (c *Contract) Query(env Env, msg *QueryMsg) (any, error) {
	if _, err := msg.Name(); err != nil {
		return nil, err
	}

	switch {
	case msg.GetNodes != nil:
		return c.GetNodes(msg.GetNodes.StartAfter, msg.GetNodes.Limit)
	case msg.GetUnbondedNodes != nil:
		return c.GetUnbondedNodes(msg.GetUnbondedNodes.StartAfter, msg.GetUnbondedNodes.Limit)
	case msg.GetOwnedNode != nil:
		return c.GetOwnedNode(msg.GetOwnedNode.Address)
	case msg.GetNodeDetails != nil:
		return c.GetNodeDetails(msg.GetNodeDetails.NodeID)
	case msg.GetUnbondedNode != nil:
		return c.GetUnbondedNode(msg.GetUnbondedNode.NodeID)
	case msg.GetNodeRewardingDetails != nil:
		return c.GetNodeRewardingDetails(msg.GetNodeRewardingDetails.NodeID)
	case msg.GetNodeDelegations != nil:
		m := msg.GetNodeDelegations
		return c.GetNodeDelegations(m.NodeID, m.StartAfter, m.Limit)
	case msg.GetDelegatorDelegations != nil:
		m := msg.GetDelegatorDelegations
		return c.GetDelegatorDelegations(m.Delegator, m.StartAfter, m.Limit)
	case msg.GetDelegationDetails != nil:
		m := msg.GetDelegationDetails
		return c.GetDelegationDetails(m.NodeID, m.Delegator, m.Proxy)
	case msg.GetPendingOperatorReward != nil:
		return c.GetPendingOperatorReward(msg.GetPendingOperatorReward.Address)
	case msg.GetPendingDelegatorReward != nil:
		m := msg.GetPendingDelegatorReward
		return c.GetPendingDelegatorReward(m.NodeID, m.Delegator, m.Proxy)
	case msg.GetEstimatedNodeReward != nil:
		m := msg.GetEstimatedNodeReward
		return c.GetEstimatedNodeReward(m.NodeID, m.Performance)
	case msg.GetPendingEpochEvents != nil:
		return c.GetPendingEpochEvents(msg.GetPendingEpochEvents.StartAfter, msg.GetPendingEpochEvents.Limit)
	case msg.GetPendingIntervalEvents != nil:
		return c.GetPendingIntervalEvents(msg.GetPendingIntervalEvents.StartAfter, msg.GetPendingIntervalEvents.Limit)
	case msg.GetCurrentInterval != nil:
		return c.GetCurrentInterval(env)
	case msg.GetRewardingParams != nil:
		return c.GetRewardingParams()
	case msg.GetRewardPool != nil:
		return c.GetRewardPool()
	case msg.GetStakingSupply != nil:
		return c.GetStakingSupply()
	case msg.GetRewardedSet != nil:
		return c.GetRewardedSet(msg.GetRewardedSet.StartAfter, msg.GetRewardedSet.Limit)
	case msg.GetContractState != nil:
		return c.GetContractState()
	case msg.GetContractVersion != nil:
		return c.GetContractVersion(), nil
	}
	return nil, errors.WithMessage(reverts.ErrInvalidParams, "unhandled query")
}
