// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"github.com/pkg/errors"

	"github.com/mixledger/ledger/contract/reverts"
	"github.com/mixledger/ledger/contract/storage"
	"github.com/mixledger/ledger/log"
	"github.com/mixledger/ledger/mixnet"
)

const (
	slotParams      = "rewards/params"
	slotNodes       = "rewards/nodes"
	slotRewardedSet = "rewards/set"
	slotSetParams   = "rewards/installed"
)

var (
	logger = log.WithContext("pkg", "rewards")
	noPage = storage.Page{}
)

type Service struct {
	params      *storage.Raw[Params]
	nodes       *storage.Mapping[mixnet.NodeID, NodeRewarding]
	rewardedSet *storage.Mapping[mixnet.NodeID, SetStatus]
	// set sizes the current rewarded set was installed with
	setParams *storage.Raw[EpochParams]
}

func New(sctx *storage.Context) *Service {
	return &Service{
		params:      storage.NewRaw[Params](sctx, slotParams),
		nodes:       storage.NewMapping[mixnet.NodeID, NodeRewarding](sctx, slotNodes),
		rewardedSet: storage.NewMapping[mixnet.NodeID, SetStatus](sctx, slotRewardedSet),
		setParams:   storage.NewRaw[EpochParams](sctx, slotSetParams),
	}
}

func (s *Service) Params() (*Params, error) {
	p, err := s.params.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get rewarding params")
	}
	return &p, nil
}

func (s *Service) SetParams(p *Params) error {
	return s.params.Upsert(*p)
}

// EpochParams returns the params the current epoch is rewarded with: the
// stored params with the set sizes the rewarded set was installed under.
// Size changes made after installation apply from the next epoch.
func (s *Service) EpochParams() (*Params, error) {
	p, err := s.Params()
	if err != nil {
		return nil, err
	}
	if err := s.withInstalledSet(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) withInstalledSet(p *Params) error {
	installed, err := s.setParams.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get rewarded set params")
	}
	if installed.RewardedSetSize != 0 {
		p.Epoch = installed
	}
	return nil
}

// Get returns the rewarding state of a node, or nil if it was purged.
func (s *Service) Get(id mixnet.NodeID) (*NodeRewarding, error) {
	r, found, err := s.nodes.Find(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get node rewarding")
	}
	if !found {
		return nil, nil
	}
	return &r, nil
}

func (s *Service) Set(id mixnet.NodeID, r *NodeRewarding) error {
	return s.nodes.Set(id, *r)
}

func (s *Service) Delete(id mixnet.NodeID) error {
	return s.nodes.Delete(id)
}

// AddStake adds amount to the network-wide staking supply.
func (s *Service) AddStake(amount uint64) error {
	p, err := s.Params()
	if err != nil {
		return err
	}
	p.Interval.StakingSupply = p.Interval.StakingSupply.Add(mixnet.NewDecimal(amount))
	return s.SetParams(p)
}

// RemoveStake removes amount from the network-wide staking supply.
func (s *Service) RemoveStake(amount uint64) error {
	p, err := s.Params()
	if err != nil {
		return err
	}
	p.Interval.StakingSupply = p.Interval.StakingSupply.Sub(mixnet.NewDecimal(amount))
	return s.SetParams(p)
}

// Outcome is the result of rewarding a node for one epoch.
type Outcome struct {
	NodeID       mixnet.NodeID  `json:"node_id"`
	Reward       mixnet.Decimal `json:"reward"`
	Distribution Distribution   `json:"distribution"`
	// Shortfall is the part of the computed reward the pool could not cover.
	Shortfall mixnet.Decimal `json:"shortfall"`
}

// Estimate computes the reward the node would receive now without touching state.
func Estimate(
	params *Params,
	node *NodeRewarding,
	status SetStatus,
	performance mixnet.Decimal,
	epochsInInterval uint32,
) (*Outcome, error) {
	formula, err := FormulaFor(params.Interval.FormulaVersion)
	if err != nil {
		return nil, err
	}
	computed := formula.NodeReward(params, node, status, performance)
	reward := computed.Min(params.Interval.RewardPool)
	return &Outcome{
		Reward:       reward,
		Distribution: node.Split(reward, performance, epochsInInterval),
		Shortfall:    computed.Sub(reward),
	}, nil
}

// Reward pays the node's reward for the given epoch out of the pool.
func (s *Service) Reward(
	id mixnet.NodeID,
	status SetStatus,
	performance mixnet.Decimal,
	absoluteEpoch uint64,
	epochsInInterval uint32,
) (*Outcome, error) {
	node, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, errors.WithMessagef(reverts.ErrNodeNotFound, "no rewarding details for node %v", id)
	}
	if absoluteEpoch < node.NextRewardableEpoch {
		return nil, errors.WithMessagef(reverts.ErrNodeAlreadyRewarded, "node %v, epoch %d", id, absoluteEpoch)
	}
	params, err := s.Params()
	if err != nil {
		return nil, err
	}
	epoch := *params
	if err := s.withInstalledSet(&epoch); err != nil {
		return nil, err
	}

	outcome, err := Estimate(&epoch, node, status, performance, epochsInInterval)
	if err != nil {
		return nil, err
	}
	outcome.NodeID = id
	if !outcome.Shortfall.IsZero() {
		logger.Warn("reward pool shortfall", "node", id, "shortfall", outcome.Shortfall, "pool", params.Interval.RewardPool)
	}

	node.Apply(outcome.Distribution, outcome.Reward, absoluteEpoch)
	params.Interval.RewardPool = params.Interval.RewardPool.Sub(outcome.Reward)

	if err := s.Set(id, node); err != nil {
		return nil, errors.Wrap(err, "failed to set node rewarding")
	}
	if err := s.SetParams(params); err != nil {
		return nil, errors.Wrap(err, "failed to set rewarding params")
	}
	return outcome, nil
}
