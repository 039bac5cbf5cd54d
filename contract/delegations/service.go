// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegations

import (
	"github.com/pkg/errors"

	"github.com/mixledger/ledger/contract/storage"
	"github.com/mixledger/ledger/mixnet"
)

const (
	slotDelegations = "delegations/primary"
	slotOwnerIndex  = "delegations/by-owner"
)

// StorageKey is node id (8) | blake2b(owner) (32) | blake2b(proxy) (32).
// Delegations of a node are contiguous, and so are those of one owner on a node.
func StorageKey(nodeID mixnet.NodeID, owner, proxy mixnet.Address) storage.BytesKey {
	ownerHash, proxyHash := owner.Hash(), proxy.Hash()
	key := make([]byte, 0, 72)
	key = append(key, nodeID.Bytes()...)
	key = append(key, ownerHash[:]...)
	return append(key, proxyHash[:]...)
}

// ownerIndexKey is blake2b(owner) | node id | blake2b(proxy).
func ownerIndexKey(nodeID mixnet.NodeID, owner, proxy mixnet.Address) storage.BytesKey {
	ownerHash, proxyHash := owner.Hash(), proxy.Hash()
	key := make([]byte, 0, 72)
	key = append(key, ownerHash[:]...)
	key = append(key, nodeID.Bytes()...)
	return append(key, proxyHash[:]...)
}

type Service struct {
	delegations *storage.Mapping[storage.BytesKey, Delegation]
	byOwner     *storage.Mapping[storage.BytesKey, []byte]
}

func New(sctx *storage.Context) *Service {
	return &Service{
		delegations: storage.NewMapping[storage.BytesKey, Delegation](sctx, slotDelegations),
		byOwner:     storage.NewMapping[storage.BytesKey, []byte](sctx, slotOwnerIndex),
	}
}

// Get returns the delegation, or nil if there is none.
func (s *Service) Get(nodeID mixnet.NodeID, owner, proxy mixnet.Address) (*Delegation, error) {
	d, found, err := s.delegations.Find(StorageKey(nodeID, owner, proxy))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get delegation")
	}
	if !found {
		return nil, nil
	}
	return &d, nil
}

// FindAll returns every delegation of owner on the node, whatever the proxy.
func (s *Service) FindAll(nodeID mixnet.NodeID, owner mixnet.Address) ([]Delegation, error) {
	ownerHash := owner.Hash()
	prefix := append(nodeID.Bytes(), ownerHash[:]...)

	var out []Delegation
	if _, err := s.delegations.Range(storage.Page{Prefix: prefix}, func(_ []byte, d Delegation) error {
		out = append(out, d)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "failed to find delegations")
	}
	return out, nil
}

// Set creates or overwrites the delegation.
func (s *Service) Set(d *Delegation) error {
	key := StorageKey(d.NodeID, d.Owner, d.Proxy)
	if err := s.delegations.Set(key, *d); err != nil {
		return errors.Wrap(err, "failed to set delegation")
	}
	if err := s.byOwner.Set(ownerIndexKey(d.NodeID, d.Owner, d.Proxy), key); err != nil {
		return errors.Wrap(err, "failed to set owner index")
	}
	return nil
}

func (s *Service) Remove(d *Delegation) error {
	if err := s.delegations.Delete(StorageKey(d.NodeID, d.Owner, d.Proxy)); err != nil {
		return errors.Wrap(err, "failed to delete delegation")
	}
	if err := s.byOwner.Delete(ownerIndexKey(d.NodeID, d.Owner, d.Proxy)); err != nil {
		return errors.Wrap(err, "failed to delete owner index")
	}
	return nil
}

// ByNode pages through the delegations of a node. The cursor is a storage key.
func (s *Service) ByNode(nodeID mixnet.NodeID, startAfter []byte, limit int) ([]Delegation, []byte, error) {
	var out []Delegation
	next, err := s.delegations.Range(storage.Page{
		Prefix:     nodeID.Bytes(),
		StartAfter: startAfter,
		Limit:      limit,
	}, func(_ []byte, d Delegation) error {
		out = append(out, d)
		return nil
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to list node delegations")
	}
	return out, next, nil
}

// ByOwner pages through the delegations of an owner. The cursor is an owner index key.
func (s *Service) ByOwner(owner mixnet.Address, startAfter []byte, limit int) ([]Delegation, []byte, error) {
	ownerHash := owner.Hash()

	var keys [][]byte
	next, err := s.byOwner.Range(storage.Page{
		Prefix:     ownerHash[:],
		StartAfter: startAfter,
		Limit:      limit,
	}, func(_ []byte, key []byte) error {
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to list owner delegations")
	}

	out := make([]Delegation, 0, len(keys))
	for _, key := range keys {
		d, found, err := s.delegations.Find(key)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to get delegation")
		}
		if !found {
			return nil, nil, errors.Errorf("dangling owner index entry %x", key)
		}
		out = append(out, d)
	}
	return out, next, nil
}
