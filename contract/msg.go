// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package contract

import (
	"reflect"
	"strings"

	"github.com/pkg/errors"

	"github.com/mixledger/ledger/contract/nodes"
	"github.com/mixledger/ledger/contract/params"
	"github.com/mixledger/ledger/contract/reverts"
	"github.com/mixledger/ledger/contract/rewards"
	"github.com/mixledger/ledger/mixnet"
)

// InitialRewardingParams seed the reward engine at instantiation.
type InitialRewardingParams struct {
	InitialRewardPool    mixnet.Decimal `json:"initial_reward_pool" yaml:"initial_reward_pool"`
	InitialStakingSupply mixnet.Decimal `json:"initial_staking_supply" yaml:"initial_staking_supply"`
	SybilResistance      mixnet.Decimal `json:"sybil_resistance" yaml:"sybil_resistance"`
	ActiveSetWorkFactor  mixnet.Decimal `json:"active_set_work_factor" yaml:"active_set_work_factor"`
	IntervalPoolEmission mixnet.Decimal `json:"interval_pool_emission" yaml:"interval_pool_emission"`
	RewardedSetSize      uint32         `json:"rewarded_set_size" yaml:"rewarded_set_size"`
	ActiveSetSize        uint32         `json:"active_set_size" yaml:"active_set_size"`
}

type InstantiateMsg struct {
	RewardingValidatorAddress mixnet.Address         `json:"rewarding_validator_address" yaml:"rewarding_validator_address"`
	VestingContractAddress    mixnet.Address         `json:"vesting_contract_address" yaml:"vesting_contract_address"`
	RewardingDenom            string                 `json:"rewarding_denom" yaml:"rewarding_denom"`
	EpochsInInterval          uint32                 `json:"epochs_in_interval" yaml:"epochs_in_interval"`
	EpochDurationSecs         uint64                 `json:"epoch_duration_secs" yaml:"epoch_duration_secs"`
	MinimumPledge             uint64                 `json:"minimum_pledge" yaml:"minimum_pledge"`
	MinimumDelegation         uint64                 `json:"minimum_delegation,omitempty" yaml:"minimum_delegation"`
	RewardingParams           InitialRewardingParams `json:"rewarding_params" yaml:"rewarding_params"`
}

// OnBehalf names the owner a proxied call acts for.
type OnBehalf struct {
	Owner mixnet.Address `json:"owner"`
}

type BondMsg struct {
	Node           nodes.Config     `json:"node"`
	CostParams     nodes.CostParams `json:"cost_params"`
	OwnerSignature string           `json:"owner_signature"`
}

type BondOnBehalfMsg struct {
	BondMsg
	OnBehalf
}

type UnbondMsg struct{}

type UpdateNodeConfigMsg struct {
	NewConfig nodes.ConfigUpdate `json:"new_config"`
}

type UpdateNodeConfigOnBehalfMsg struct {
	UpdateNodeConfigMsg
	OnBehalf
}

type UpdateCostParamsMsg struct {
	NewCosts nodes.CostParams `json:"new_costs"`
}

type UpdateCostParamsOnBehalfMsg struct {
	UpdateCostParamsMsg
	OnBehalf
}

type NodeMsg struct {
	NodeID mixnet.NodeID `json:"node_id"`
}

type NodeOnBehalfMsg struct {
	NodeMsg
	OnBehalf
}

type RewardNodeMsg struct {
	NodeID      mixnet.NodeID  `json:"node_id"`
	Performance mixnet.Decimal `json:"performance"`
}

type AdvanceEpochMsg struct {
	NewRewardedSet        []mixnet.NodeID `json:"new_rewarded_set"`
	ExpectedActiveSetSize uint32          `json:"expected_active_set_size"`
}

type ReconcileMsg struct {
	Limit *uint32 `json:"limit,omitempty"`
}

type UpdateRewardingParamsMsg struct {
	Updated rewards.ParamsUpdate `json:"updated_params"`
	Force   bool                 `json:"force_immediately"`
}

type UpdateActiveSetSizeMsg struct {
	ActiveSetSize uint32 `json:"active_set_size"`
	Force         bool   `json:"force_immediately"`
}

type UpdateIntervalConfigMsg struct {
	EpochsInInterval  uint32 `json:"epochs_in_interval"`
	EpochDurationSecs uint64 `json:"epoch_duration_secs"`
	Force             bool   `json:"force_immediately"`
}

type UpdateContractParamsMsg struct {
	Updated params.Params `json:"updated_parameters"`
}

type UpdateRewardingValidatorMsg struct {
	Address mixnet.Address `json:"address"`
}

// ExecuteMsg is a state changing command. Exactly one field must be set.
type ExecuteMsg struct {
	Bond                            *BondMsg                     `json:"bond,omitempty"`
	BondOnBehalf                    *BondOnBehalfMsg             `json:"bond_on_behalf,omitempty"`
	Unbond                          *UnbondMsg                   `json:"unbond,omitempty"`
	UnbondOnBehalf                  *OnBehalf                    `json:"unbond_on_behalf,omitempty"`
	UpdateNodeConfig                *UpdateNodeConfigMsg         `json:"update_node_config,omitempty"`
	UpdateNodeConfigOnBehalf        *UpdateNodeConfigOnBehalfMsg `json:"update_node_config_on_behalf,omitempty"`
	UpdateCostParams                *UpdateCostParamsMsg         `json:"update_cost_params,omitempty"`
	UpdateCostParamsOnBehalf        *UpdateCostParamsOnBehalfMsg `json:"update_cost_params_on_behalf,omitempty"`
	Delegate                        *NodeMsg                     `json:"delegate,omitempty"`
	DelegateOnBehalf                *NodeOnBehalfMsg             `json:"delegate_on_behalf,omitempty"`
	Undelegate                      *NodeMsg                     `json:"undelegate,omitempty"`
	UndelegateOnBehalf              *NodeOnBehalfMsg             `json:"undelegate_on_behalf,omitempty"`
	RewardNode                      *RewardNodeMsg               `json:"reward_node,omitempty"`
	WithdrawOperatorReward          *UnbondMsg                   `json:"withdraw_operator_reward,omitempty"`
	WithdrawOperatorRewardOnBehalf  *OnBehalf                    `json:"withdraw_operator_reward_on_behalf,omitempty"`
	WithdrawDelegatorReward         *NodeMsg                     `json:"withdraw_delegator_reward,omitempty"`
	WithdrawDelegatorRewardOnBehalf *NodeOnBehalfMsg             `json:"withdraw_delegator_reward_on_behalf,omitempty"`
	AdvanceEpoch                    *AdvanceEpochMsg             `json:"advance_epoch,omitempty"`
	ReconcileEpochEvents            *ReconcileMsg                `json:"reconcile_epoch_events,omitempty"`
	ReconcileIntervalEvents         *ReconcileMsg                `json:"reconcile_interval_events,omitempty"`
	UpdateRewardingParams           *UpdateRewardingParamsMsg    `json:"update_rewarding_params,omitempty"`
	UpdateActiveSetSize             *UpdateActiveSetSizeMsg      `json:"update_active_set_size,omitempty"`
	UpdateIntervalConfig            *UpdateIntervalConfigMsg     `json:"update_interval_config,omitempty"`
	UpdateContractParams            *UpdateContractParamsMsg     `json:"update_contract_params,omitempty"`
	UpdateRewardingValidatorAddress *UpdateRewardingValidatorMsg `json:"update_rewarding_validator_address,omitempty"`
}

// Name returns the wire name of the single variant set in msg.
func (m *ExecuteMsg) Name() (string, error) {
	return variantName(m)
}

type PageQuery struct {
	Limit *uint32 `json:"limit,omitempty"`
}

type NodePageQuery struct {
	StartAfter *mixnet.NodeID `json:"start_after,omitempty"`
	PageQuery
}

type EventPageQuery struct {
	StartAfter *uint64 `json:"start_after,omitempty"`
	PageQuery
}

type AddressQuery struct {
	Address mixnet.Address `json:"address"`
}

type NodeQuery struct {
	NodeID mixnet.NodeID `json:"node_id"`
}

type NodeDelegationsQuery struct {
	NodeID mixnet.NodeID `json:"node_id"`
	// StartAfter is the hex cursor returned by the previous page.
	StartAfter *string `json:"start_after,omitempty"`
	PageQuery
}

type DelegatorDelegationsQuery struct {
	Delegator  mixnet.Address `json:"delegator"`
	StartAfter *string        `json:"start_after,omitempty"`
	PageQuery
}

type DelegationQuery struct {
	NodeID    mixnet.NodeID  `json:"node_id"`
	Delegator mixnet.Address `json:"delegator"`
	Proxy     mixnet.Address `json:"proxy,omitempty"`
}

type EstimateRewardQuery struct {
	NodeID      mixnet.NodeID  `json:"node_id"`
	Performance mixnet.Decimal `json:"performance"`
}

type EmptyQuery struct{}

// QueryMsg is a read only request. Exactly one field must be set.
type QueryMsg struct {
	GetNodes                  *NodePageQuery             `json:"get_nodes,omitempty"`
	GetUnbondedNodes          *NodePageQuery             `json:"get_unbonded_nodes,omitempty"`
	GetOwnedNode              *AddressQuery              `json:"get_owned_node,omitempty"`
	GetNodeDetails            *NodeQuery                 `json:"get_node_details,omitempty"`
	GetUnbondedNode           *NodeQuery                 `json:"get_unbonded_node,omitempty"`
	GetNodeRewardingDetails   *NodeQuery                 `json:"get_node_rewarding_details,omitempty"`
	GetNodeDelegations        *NodeDelegationsQuery      `json:"get_node_delegations,omitempty"`
	GetDelegatorDelegations   *DelegatorDelegationsQuery `json:"get_delegator_delegations,omitempty"`
	GetDelegationDetails      *DelegationQuery           `json:"get_delegation_details,omitempty"`
	GetPendingOperatorReward  *AddressQuery              `json:"get_pending_operator_reward,omitempty"`
	GetPendingDelegatorReward *DelegationQuery           `json:"get_pending_delegator_reward,omitempty"`
	GetEstimatedNodeReward    *EstimateRewardQuery       `json:"get_estimated_node_reward,omitempty"`
	GetPendingEpochEvents     *EventPageQuery            `json:"get_pending_epoch_events,omitempty"`
	GetPendingIntervalEvents  *EventPageQuery            `json:"get_pending_interval_events,omitempty"`
	GetCurrentInterval        *EmptyQuery                `json:"get_current_interval,omitempty"`
	GetRewardingParams        *EmptyQuery                `json:"get_rewarding_params,omitempty"`
	GetRewardPool             *EmptyQuery                `json:"get_reward_pool,omitempty"`
	GetStakingSupply          *EmptyQuery                `json:"get_staking_supply,omitempty"`
	GetRewardedSet            *NodePageQuery             `json:"get_rewarded_set,omitempty"`
	GetContractState          *EmptyQuery                `json:"get_contract_state,omitempty"`
	GetContractVersion        *EmptyQuery                `json:"get_contract_version,omitempty"`
}

func (m *QueryMsg) Name() (string, error) {
	return variantName(m)
}

// variantName finds the single non-nil pointer field of a tagged variant struct.
func variantName(msg any) (string, error) {
	v := reflect.ValueOf(msg).Elem()
	var name string
	for i := range v.NumField() {
		if v.Field(i).IsNil() {
			continue
		}
		if name != "" {
			return "", errors.WithMessage(reverts.ErrInvalidParams, "message sets more than one variant")
		}
		name, _, _ = strings.Cut(v.Type().Field(i).Tag.Get("json"), ",")
	}
	if name == "" {
		return "", errors.WithMessage(reverts.ErrInvalidParams, "message sets no variant")
	}
	return name, nil
}
