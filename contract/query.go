// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package contract

import (
	"encoding/hex"

	"github.com/pkg/errors"

	"github.com/mixledger/ledger/contract/delegations"
	"github.com/mixledger/ledger/contract/events"
	"github.com/mixledger/ledger/contract/interval"
	"github.com/mixledger/ledger/contract/nodes"
	"github.com/mixledger/ledger/contract/params"
	"github.com/mixledger/ledger/contract/reverts"
	"github.com/mixledger/ledger/contract/rewards"
	"github.com/mixledger/ledger/mixnet"
)

const (
	DefaultNodePageLimit       = 50
	MaxNodePageLimit           = 100
	DefaultDelegationPageLimit = 100
	MaxDelegationPageLimit     = 500
)

func pageLimit(limit *uint32, fallback, maximum int) int {
	if limit == nil || *limit == 0 {
		return fallback
	}
	if int64(*limit) > int64(maximum) {
		return maximum
	}
	return int(*limit)
}

type NodeDetails struct {
	Node      nodes.Node             `json:"bond_information"`
	Rewarding *rewards.NodeRewarding `json:"rewarding_details"`
}

type PagedNodes struct {
	Nodes          []NodeDetails  `json:"nodes"`
	StartNextAfter *mixnet.NodeID `json:"start_next_after,omitempty"`
}

type PagedUnbondedNodes struct {
	Nodes          []nodes.UnbondedNode `json:"nodes"`
	StartNextAfter *mixnet.NodeID       `json:"start_next_after,omitempty"`
}

type OwnedNode struct {
	Address mixnet.Address `json:"address"`
	Details *NodeDetails   `json:"mixnode_details"`
}

type PagedDelegations struct {
	Delegations []delegations.Delegation `json:"delegations"`
	// StartNextAfter is a hex encoded opaque cursor.
	StartNextAfter *string `json:"start_next_after,omitempty"`
}

type PendingReward struct {
	AmountStaked         *mixnet.Coin   `json:"amount_staked"`
	AmountEarned         mixnet.Coin    `json:"amount_earned"`
	AmountEarnedDetailed mixnet.Decimal `json:"amount_earned_detailed"`
	NodeStillFullyBonded bool           `json:"mixnode_still_fully_bonded"`
}

type EstimatedReward struct {
	Performance mixnet.Decimal    `json:"performance"`
	Status      rewards.SetStatus `json:"status"`
	Outcome     *rewards.Outcome  `json:"estimation"`
}

type PagedEpochEvents struct {
	Events         []events.Entry[events.EpochEvent] `json:"events"`
	StartNextAfter *uint64                           `json:"start_next_after,omitempty"`
}

type PagedIntervalEvents struct {
	Events         []events.Entry[events.IntervalEvent] `json:"events"`
	StartNextAfter *uint64                              `json:"start_next_after,omitempty"`
}

type IntervalDetails struct {
	Interval             interval.Interval `json:"interval"`
	AbsoluteEpochID      uint64            `json:"absolute_epoch_id"`
	EpochEnd             uint64            `json:"current_epoch_end"`
	IsEpochOver          bool              `json:"is_current_epoch_over"`
	SecondsUntilEpochEnd uint64            `json:"time_until_current_epoch_end"`
}

type PagedRewardedSet struct {
	Nodes          []rewards.RewardedSetEntry `json:"nodes"`
	StartNextAfter *mixnet.NodeID             `json:"start_next_after,omitempty"`
}

type ContractVersion struct {
	Version       string `json:"version"`
	FormulaLatest uint8  `json:"latest_formula_version"`
}

func (c *Contract) nodeDetails(node nodes.Node) (NodeDetails, error) {
	rewarding, err := c.rewards.Get(node.ID)
	if err != nil {
		return NodeDetails{}, err
	}
	return NodeDetails{Node: node, Rewarding: rewarding}, nil
}

func (c *Contract) GetNodes(startAfter *mixnet.NodeID, limit *uint32) (*PagedNodes, error) {
	list, next, err := c.nodes.List(startAfter, pageLimit(limit, DefaultNodePageLimit, MaxNodePageLimit))
	if err != nil {
		return nil, err
	}
	out := &PagedNodes{Nodes: make([]NodeDetails, 0, len(list)), StartNextAfter: next}
	for _, node := range list {
		details, err := c.nodeDetails(node)
		if err != nil {
			return nil, err
		}
		out.Nodes = append(out.Nodes, details)
	}
	return out, nil
}

// AllNodes collects every bonded node by walking the pages.
func (c *Contract) AllNodes() ([]NodeDetails, error) {
	var (
		all   []NodeDetails
		after *mixnet.NodeID
		limit = uint32(MaxNodePageLimit)
	)
	for {
		page, err := c.GetNodes(after, &limit)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Nodes...)
		if page.StartNextAfter == nil {
			return all, nil
		}
		after = page.StartNextAfter
	}
}

func (c *Contract) GetUnbondedNodes(startAfter *mixnet.NodeID, limit *uint32) (*PagedUnbondedNodes, error) {
	list, next, err := c.nodes.ListUnbonded(startAfter, pageLimit(limit, DefaultNodePageLimit, MaxNodePageLimit))
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []nodes.UnbondedNode{}
	}
	return &PagedUnbondedNodes{Nodes: list, StartNextAfter: next}, nil
}

func (c *Contract) GetUnbondedNode(id mixnet.NodeID) (*nodes.UnbondedNode, error) {
	return c.nodes.GetUnbonded(id)
}

func (c *Contract) GetOwnedNode(owner mixnet.Address) (*OwnedNode, error) {
	node, err := c.nodes.GetByOwner(owner)
	if err != nil {
		return nil, err
	}
	out := &OwnedNode{Address: owner}
	if node != nil {
		details, err := c.nodeDetails(*node)
		if err != nil {
			return nil, err
		}
		out.Details = &details
	}
	return out, nil
}

// GetNodeDetails returns nil when the node is not bonded.
func (c *Contract) GetNodeDetails(id mixnet.NodeID) (*NodeDetails, error) {
	node, err := c.nodes.Get(id)
	if err != nil || node == nil {
		return nil, err
	}
	details, err := c.nodeDetails(*node)
	if err != nil {
		return nil, err
	}
	return &details, nil
}

func (c *Contract) GetNodeRewardingDetails(id mixnet.NodeID) (*rewards.NodeRewarding, error) {
	return c.rewards.Get(id)
}

func decodeCursor(cursor *string) ([]byte, error) {
	if cursor == nil {
		return nil, nil
	}
	b, err := hex.DecodeString(*cursor)
	if err != nil {
		return nil, errors.WithMessagef(reverts.ErrInvalidParams, "bad cursor %q", *cursor)
	}
	return b, nil
}

func encodeCursor(next []byte) *string {
	if next == nil {
		return nil
	}
	s := hex.EncodeToString(next)
	return &s
}

func (c *Contract) GetNodeDelegations(id mixnet.NodeID, startAfter *string, limit *uint32) (*PagedDelegations, error) {
	after, err := decodeCursor(startAfter)
	if err != nil {
		return nil, err
	}
	list, next, err := c.delegations.ByNode(id, after, pageLimit(limit, DefaultDelegationPageLimit, MaxDelegationPageLimit))
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []delegations.Delegation{}
	}
	return &PagedDelegations{Delegations: list, StartNextAfter: encodeCursor(next)}, nil
}

func (c *Contract) GetDelegatorDelegations(owner mixnet.Address, startAfter *string, limit *uint32) (*PagedDelegations, error) {
	after, err := decodeCursor(startAfter)
	if err != nil {
		return nil, err
	}
	list, next, err := c.delegations.ByOwner(owner, after, pageLimit(limit, DefaultDelegationPageLimit, MaxDelegationPageLimit))
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []delegations.Delegation{}
	}
	return &PagedDelegations{Delegations: list, StartNextAfter: encodeCursor(next)}, nil
}

func (c *Contract) GetDelegationDetails(id mixnet.NodeID, owner, proxy mixnet.Address) (*delegations.Delegation, error) {
	return c.delegations.Get(id, owner, proxy)
}

// GetPendingOperatorReward reports the operator reward of the owner's node
// that a withdrawal would pay now.
func (c *Contract) GetPendingOperatorReward(owner mixnet.Address) (*PendingReward, error) {
	node, err := c.nodes.GetByOwner(owner)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, errors.WithMessagef(reverts.ErrNodeNotFound, "owner %v", owner)
	}
	rewarding, err := c.rewards.Get(node.ID)
	if err != nil {
		return nil, err
	}
	if rewarding == nil {
		return nil, errors.WithMessagef(reverts.ErrNodeNotFound, "no rewarding details for node %v", node.ID)
	}
	staked := mixnet.NewCoin(rewarding.OperatorStake.Floor(), node.OriginalPledge.Denom)
	return &PendingReward{
		AmountStaked:         &staked,
		AmountEarned:         mixnet.NewCoin(rewarding.OperatorReward.Floor(), node.OriginalPledge.Denom),
		AmountEarnedDetailed: rewarding.OperatorReward,
		NodeStillFullyBonded: node.IsBonded(),
	}, nil
}

func (c *Contract) GetPendingDelegatorReward(id mixnet.NodeID, owner, proxy mixnet.Address) (*PendingReward, error) {
	delegation, err := c.delegations.Get(id, owner, proxy)
	if err != nil {
		return nil, err
	}
	if delegation == nil {
		return nil, errors.WithMessagef(reverts.ErrDelegationNotFound, "node %v, owner %v", id, owner)
	}
	rewarding, err := c.rewards.Get(id)
	if err != nil {
		return nil, err
	}
	out := &PendingReward{
		AmountStaked: &delegation.Amount,
		AmountEarned: mixnet.NewCoin(0, delegation.Amount.Denom),
	}
	if rewarding != nil {
		out.AmountEarnedDetailed = delegation.PendingReward(rewarding.UnitDelegation)
		out.AmountEarned.Amount = out.AmountEarnedDetailed.Floor()
	}
	node, err := c.nodes.Get(id)
	if err != nil {
		return nil, err
	}
	out.NodeStillFullyBonded = node != nil && node.IsBonded()
	return out, nil
}

// GetEstimatedNodeReward computes what rewarding the node now would pay,
// without changing any state.
func (c *Contract) GetEstimatedNodeReward(id mixnet.NodeID, performance mixnet.Decimal) (*EstimatedReward, error) {
	if !performance.IsPercent() {
		return nil, errors.WithMessagef(reverts.ErrInvalidParams, "performance %v is above 100%%", performance)
	}
	rewarding, err := c.rewards.Get(id)
	if err != nil {
		return nil, err
	}
	if rewarding == nil {
		return nil, errors.WithMessagef(reverts.ErrNodeNotFound, "no rewarding details for node %v", id)
	}
	status, err := c.rewards.RewardedStatus(id)
	if err != nil {
		return nil, err
	}
	out := &EstimatedReward{Performance: performance, Status: status}
	if status == rewards.SetStatusNone {
		return out, nil
	}
	rp, err := c.rewards.EpochParams()
	if err != nil {
		return nil, err
	}
	clock, err := c.currentInterval()
	if err != nil {
		return nil, err
	}
	if out.Outcome, err = rewards.Estimate(rp, rewarding, status, performance, clock.EpochsInInterval); err != nil {
		return nil, err
	}
	out.Outcome.NodeID = id
	return out, nil
}

func (c *Contract) GetPendingEpochEvents(startAfter *uint64, limit *uint32) (*PagedEpochEvents, error) {
	list, next, err := c.epochEvents.List(startAfter, pageLimit(limit, DefaultReconcileLimit, MaxReconcileLimit))
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []events.Entry[events.EpochEvent]{}
	}
	return &PagedEpochEvents{Events: list, StartNextAfter: next}, nil
}

func (c *Contract) GetPendingIntervalEvents(startAfter *uint64, limit *uint32) (*PagedIntervalEvents, error) {
	list, next, err := c.intervalEvents.List(startAfter, pageLimit(limit, DefaultReconcileLimit, MaxReconcileLimit))
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []events.Entry[events.IntervalEvent]{}
	}
	return &PagedIntervalEvents{Events: list, StartNextAfter: next}, nil
}

// PendingEventCounts returns the lengths of the epoch and interval queues.
func (c *Contract) PendingEventCounts() (epochs, intervals uint64, err error) {
	if epochs, err = c.epochEvents.Len(); err != nil {
		return 0, 0, err
	}
	if intervals, err = c.intervalEvents.Len(); err != nil {
		return 0, 0, err
	}
	return epochs, intervals, nil
}

func (c *Contract) GetCurrentInterval(env Env) (*IntervalDetails, error) {
	clock, err := c.currentInterval()
	if err != nil {
		return nil, err
	}
	return &IntervalDetails{
		Interval:             clock,
		AbsoluteEpochID:      clock.AbsoluteEpochID(),
		EpochEnd:             clock.EpochEnd(),
		IsEpochOver:          clock.IsEpochOver(env.BlockTime),
		SecondsUntilEpochEnd: clock.SecondsUntilEpochEnd(env.BlockTime),
	}, nil
}

func (c *Contract) GetRewardingParams() (*rewards.Params, error) {
	return c.rewards.Params()
}

func (c *Contract) GetRewardPool() (mixnet.Decimal, error) {
	rp, err := c.rewards.Params()
	if err != nil {
		return mixnet.Zero, err
	}
	return rp.Interval.RewardPool, nil
}

func (c *Contract) GetStakingSupply() (mixnet.Decimal, error) {
	rp, err := c.rewards.Params()
	if err != nil {
		return mixnet.Zero, err
	}
	return rp.Interval.StakingSupply, nil
}

func (c *Contract) GetRewardedSet(startAfter *mixnet.NodeID, limit *uint32) (*PagedRewardedSet, error) {
	list, next, err := c.rewards.RewardedSet(startAfter, pageLimit(limit, DefaultNodePageLimit, MaxNodePageLimit))
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []rewards.RewardedSetEntry{}
	}
	return &PagedRewardedSet{Nodes: list, StartNextAfter: next}, nil
}

func (c *Contract) GetContractState() (*params.ContractState, error) {
	return c.state()
}

func (c *Contract) GetContractVersion() ContractVersion {
	return ContractVersion{Version: Version, FormulaLatest: rewards.LatestFormulaVersion}
}
