// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"encoding/json"

	"github.com/mixledger/ledger/contract/nodes"
	"github.com/mixledger/ledger/contract/rewards"
	"github.com/mixledger/ledger/mixnet"
)

type EpochEventKind uint8

const (
	EpochDelegate EpochEventKind = iota + 1
	EpochUndelegate
	EpochUnbond
	EpochChangeActiveSetSize
)

func (k EpochEventKind) String() string {
	switch k {
	case EpochDelegate:
		return "delegate"
	case EpochUndelegate:
		return "undelegate"
	case EpochUnbond:
		return "unbond"
	case EpochChangeActiveSetSize:
		return "change_active_set_size"
	default:
		return "unknown"
	}
}

func (k EpochEventKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// EpochEvent is a deferred stake change, settled once the epoch it was
// created in has ended. Fields beyond the kind are set as the kind needs.
type EpochEvent struct {
	Kind EpochEventKind `json:"kind"`
	// CreatedAt is the absolute epoch of submission.
	CreatedAt uint64 `json:"created_at_epoch"`
	Height    uint64 `json:"height"`

	NodeID        mixnet.NodeID  `json:"node_id,omitempty"`
	Owner         mixnet.Address `json:"owner,omitempty"`
	Proxy         mixnet.Address `json:"proxy,omitempty"`
	Amount        mixnet.Coin    `json:"amount"`
	ActiveSetSize uint32         `json:"active_set_size,omitempty"`
}

// IsDue reports whether the event can be settled in the given absolute epoch.
func (e *EpochEvent) IsDue(absoluteEpoch uint64) bool {
	return absoluteEpoch > e.CreatedAt
}

func NewDelegate(epoch, height uint64, nodeID mixnet.NodeID, owner, proxy mixnet.Address, amount mixnet.Coin) EpochEvent {
	return EpochEvent{Kind: EpochDelegate, CreatedAt: epoch, Height: height, NodeID: nodeID, Owner: owner, Proxy: proxy, Amount: amount}
}

func NewUndelegate(epoch, height uint64, nodeID mixnet.NodeID, owner, proxy mixnet.Address) EpochEvent {
	return EpochEvent{Kind: EpochUndelegate, CreatedAt: epoch, Height: height, NodeID: nodeID, Owner: owner, Proxy: proxy}
}

func NewUnbond(epoch, height uint64, nodeID mixnet.NodeID) EpochEvent {
	return EpochEvent{Kind: EpochUnbond, CreatedAt: epoch, Height: height, NodeID: nodeID}
}

func NewChangeActiveSetSize(epoch, height uint64, size uint32) EpochEvent {
	return EpochEvent{Kind: EpochChangeActiveSetSize, CreatedAt: epoch, Height: height, ActiveSetSize: size}
}

type IntervalEventKind uint8

const (
	IntervalChangeRewardingParams IntervalEventKind = iota + 1
	IntervalChangeConfig
	IntervalChangeCostParams
)

func (k IntervalEventKind) String() string {
	switch k {
	case IntervalChangeRewardingParams:
		return "change_rewarding_params"
	case IntervalChangeConfig:
		return "change_interval_config"
	case IntervalChangeCostParams:
		return "change_cost_params"
	default:
		return "unknown"
	}
}

func (k IntervalEventKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// IntervalEvent is a deferred parameter change, settled once the interval
// it was created in has ended.
type IntervalEvent struct {
	Kind IntervalEventKind `json:"kind"`
	// CreatedAt is the interval id of submission.
	CreatedAt uint64 `json:"created_at_interval"`
	Height    uint64 `json:"height"`

	NodeID           mixnet.NodeID        `json:"node_id,omitempty"`
	CostParams       nodes.CostParams     `json:"cost_params"`
	ParamsUpdate     rewards.ParamsUpdate `json:"params_update"`
	EpochsInInterval uint32               `json:"epochs_in_interval,omitempty"`
	EpochLength      uint64               `json:"epoch_length_secs,omitempty"`
}

func (e *IntervalEvent) IsDue(intervalID uint64) bool {
	return intervalID > e.CreatedAt
}

func NewChangeRewardingParams(interval, height uint64, update rewards.ParamsUpdate) IntervalEvent {
	return IntervalEvent{Kind: IntervalChangeRewardingParams, CreatedAt: interval, Height: height, ParamsUpdate: update}
}

func NewChangeIntervalConfig(interval, height uint64, epochsInInterval uint32, epochLengthSecs uint64) IntervalEvent {
	return IntervalEvent{
		Kind:             IntervalChangeConfig,
		CreatedAt:        interval,
		Height:           height,
		EpochsInInterval: epochsInInterval,
		EpochLength:      epochLengthSecs,
	}
}

func NewChangeCostParams(interval, height uint64, nodeID mixnet.NodeID, costs nodes.CostParams) IntervalEvent {
	return IntervalEvent{Kind: IntervalChangeCostParams, CreatedAt: interval, Height: height, NodeID: nodeID, CostParams: costs}
}
