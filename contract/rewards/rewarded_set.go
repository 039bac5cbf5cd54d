// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/mixledger/ledger/contract/reverts"
	"github.com/mixledger/ledger/mixnet"
)

// SetStatus is the membership of a node in the rewarded set.
type SetStatus uint8

const (
	SetStatusNone SetStatus = iota
	SetStatusActive
	SetStatusStandby
)

func (s SetStatus) String() string {
	switch s {
	case SetStatusActive:
		return "active"
	case SetStatusStandby:
		return "standby"
	default:
		return "none"
	}
}

func (s SetStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

type RewardedSetEntry struct {
	NodeID mixnet.NodeID `json:"node_id"`
	Status SetStatus     `json:"status"`
}

// ValidateRewardedSet checks a proposed set against the epoch parameters.
func ValidateRewardedSet(ids []mixnet.NodeID, expectedActiveSetSize uint32, params EpochParams) error {
	if expectedActiveSetSize != params.ActiveSetSize {
		return errors.WithMessagef(reverts.ErrUnexpectedActiveSetSize, "expected %d, current %d",
			expectedActiveSetSize, params.ActiveSetSize)
	}
	if uint64(len(ids)) > uint64(params.RewardedSetSize) {
		return errors.WithMessagef(reverts.ErrUnexpectedRewardedSetSize, "got %d nodes, maximum %d",
			len(ids), params.RewardedSetSize)
	}
	seen := make(map[mixnet.NodeID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return errors.WithMessagef(reverts.ErrDuplicateRewardedNode, "node %v", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func (s *Service) RewardedStatus(id mixnet.NodeID) (SetStatus, error) {
	status, err := s.rewardedSet.Get(id)
	if err != nil {
		return SetStatusNone, errors.Wrap(err, "failed to get rewarded set status")
	}
	return status, nil
}

// ReplaceRewardedSet stores ids as the rewarded set. The first
// params.ActiveSetSize entries form the active set, the rest are on standby.
// The set is rewarded with params until it is replaced.
func (s *Service) ReplaceRewardedSet(ids []mixnet.NodeID, params EpochParams) error {
	var previous []mixnet.NodeID
	if _, err := s.rewardedSet.Range(noPage, func(key []byte, _ SetStatus) error {
		previous = append(previous, mixnet.NodeIDFromBytes(key))
		return nil
	}); err != nil {
		return errors.Wrap(err, "failed to read rewarded set")
	}
	for _, id := range previous {
		if err := s.rewardedSet.Delete(id); err != nil {
			return errors.Wrap(err, "failed to clear rewarded set")
		}
	}

	for i, id := range ids {
		status := SetStatusStandby
		if uint32(i) < params.ActiveSetSize {
			status = SetStatusActive
		}
		if err := s.rewardedSet.Set(id, status); err != nil {
			return errors.Wrap(err, "failed to set rewarded set")
		}
	}
	if err := s.setParams.Upsert(params); err != nil {
		return errors.Wrap(err, "failed to set rewarded set params")
	}
	return nil
}

// RewardedSet pages through the rewarded set in node id order.
func (s *Service) RewardedSet(startAfter *mixnet.NodeID, limit int) ([]RewardedSetEntry, *mixnet.NodeID, error) {
	page := noPage
	page.Limit = limit
	if startAfter != nil {
		page.StartAfter = startAfter.Bytes()
	}

	var out []RewardedSetEntry
	next, err := s.rewardedSet.Range(page, func(key []byte, status SetStatus) error {
		out = append(out, RewardedSetEntry{NodeID: mixnet.NodeIDFromBytes(key), Status: status})
		return nil
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to list rewarded set")
	}
	if next == nil {
		return out, nil, nil
	}
	id := mixnet.NodeIDFromBytes(next)
	return out, &id, nil
}
