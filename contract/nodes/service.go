// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package nodes

import (
	"github.com/pkg/errors"

	"github.com/mixledger/ledger/contract/reverts"
	"github.com/mixledger/ledger/contract/storage"
	"github.com/mixledger/ledger/mixnet"
)

const (
	slotNodes      = "nodes/bonded"
	slotOwners     = "nodes/owners"
	slotIdentities = "nodes/identities"
	slotUnbonded   = "nodes/unbonded"
	slotCounter    = "nodes/counter"
)

type identityKey string

func (k identityKey) Bytes() []byte { return []byte(k) }

type Service struct {
	nodes      *storage.Mapping[mixnet.NodeID, Node]
	owners     *storage.Mapping[mixnet.Address, mixnet.NodeID]
	identities *storage.Mapping[identityKey, mixnet.NodeID]
	unbonded   *storage.Mapping[mixnet.NodeID, UnbondedNode]
	idCounter  *storage.Counter
}

func New(sctx *storage.Context) *Service {
	return &Service{
		nodes:      storage.NewMapping[mixnet.NodeID, Node](sctx, slotNodes),
		owners:     storage.NewMapping[mixnet.Address, mixnet.NodeID](sctx, slotOwners),
		identities: storage.NewMapping[identityKey, mixnet.NodeID](sctx, slotIdentities),
		unbonded:   storage.NewMapping[mixnet.NodeID, UnbondedNode](sctx, slotUnbonded),
		idCounter:  storage.NewCounter(sctx, slotCounter),
	}
}

// Get returns the node, or nil if it is not (or no longer) bonded.
func (s *Service) Get(id mixnet.NodeID) (*Node, error) {
	node, found, err := s.nodes.Find(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get node")
	}
	if !found {
		return nil, nil
	}
	return &node, nil
}

// MustGet is like Get but fails with ErrNodeNotFound for a missing node.
func (s *Service) MustGet(id mixnet.NodeID) (*Node, error) {
	node, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, errors.WithMessagef(reverts.ErrNodeNotFound, "node %v", id)
	}
	return node, nil
}

// GetByOwner returns the live node of owner, or nil.
func (s *Service) GetByOwner(owner mixnet.Address) (*Node, error) {
	id, found, err := s.owners.Find(owner)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get owner index")
	}
	if !found {
		return nil, nil
	}
	return s.Get(id)
}

// GetByIdentity returns the live node announcing the identity key, or nil.
func (s *Service) GetByIdentity(identity string) (*Node, error) {
	id, found, err := s.identities.Find(identityKey(identity))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get identity index")
	}
	if !found {
		return nil, nil
	}
	return s.Get(id)
}

func (s *Service) GetUnbonded(id mixnet.NodeID) (*UnbondedNode, error) {
	node, found, err := s.unbonded.Find(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get unbonded node")
	}
	if !found {
		return nil, nil
	}
	return &node, nil
}

// LastID returns the most recently allocated node id.
func (s *Service) LastID() (mixnet.NodeID, error) {
	id, err := s.idCounter.Current()
	return mixnet.NodeID(id), err
}

// Add stores a new bonded node under a freshly allocated id.
func (s *Service) Add(
	owner mixnet.Address,
	proxy mixnet.Address,
	config Config,
	costParams CostParams,
	pledge mixnet.Coin,
	height uint64,
) (mixnet.NodeID, error) {
	existing, err := s.GetByOwner(owner)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, errors.WithMessagef(reverts.ErrAlreadyOwnsNode, "node %v", existing.ID)
	}
	holder, taken, err := s.identities.Find(identityKey(config.IdentityKey))
	if err != nil {
		return 0, errors.Wrap(err, "failed to get identity index")
	}
	if taken {
		return 0, errors.WithMessagef(reverts.ErrDuplicateIdentityKey, "bonded by node %v", holder)
	}

	next, err := s.idCounter.Next()
	if err != nil {
		return 0, err
	}
	id := mixnet.NodeID(next)

	node := Node{
		ID:             id,
		Owner:          owner,
		Proxy:          proxy,
		Config:         config,
		BondingHeight:  height,
		OriginalPledge: pledge,
		CostParams:     costParams,
		Status:         StatusBonded,
	}
	if err := s.nodes.Insert(id, node); err != nil {
		return 0, errors.Wrap(err, "failed to set node")
	}
	if err := s.owners.Set(owner, id); err != nil {
		return 0, errors.Wrap(err, "failed to set owner index")
	}
	if err := s.identities.Set(identityKey(config.IdentityKey), id); err != nil {
		return 0, errors.Wrap(err, "failed to set identity index")
	}
	return id, nil
}

// SetUnbonding marks the node as waiting for settlement.
func (s *Service) SetUnbonding(node *Node) error {
	node.Status = StatusUnbonding
	return s.nodes.Update(node.ID, *node)
}

func (s *Service) UpdateConfig(node *Node, update ConfigUpdate) error {
	node.Config.ConfigUpdate = update
	return s.nodes.Update(node.ID, *node)
}

func (s *Service) SetCostParams(node *Node, costParams CostParams) error {
	node.CostParams = costParams
	return s.nodes.Update(node.ID, *node)
}

// Remove purges the bonded record and its indexes, leaving an unbonded stub.
func (s *Service) Remove(node *Node, height uint64) error {
	if err := s.nodes.Delete(node.ID); err != nil {
		return errors.Wrap(err, "failed to delete node")
	}
	if err := s.owners.Delete(node.Owner); err != nil {
		return errors.Wrap(err, "failed to delete owner index")
	}
	if err := s.identities.Delete(identityKey(node.Config.IdentityKey)); err != nil {
		return errors.Wrap(err, "failed to delete identity index")
	}
	node.Status = StatusUnbonded
	return s.unbonded.Insert(node.ID, UnbondedNode{
		ID:              node.ID,
		Owner:           node.Owner,
		Proxy:           node.Proxy,
		IdentityKey:     node.Config.IdentityKey,
		UnbondingHeight: height,
	})
}

// List returns up to limit bonded nodes with ids above startAfter, and the
// cursor of the next page if there is one.
func (s *Service) List(startAfter *mixnet.NodeID, limit int) ([]Node, *mixnet.NodeID, error) {
	var out []Node
	next, err := s.nodes.Range(page(startAfter, limit), func(_ []byte, node Node) error {
		out = append(out, node)
		return nil
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to list nodes")
	}
	return out, cursor(next), nil
}

func (s *Service) ListUnbonded(startAfter *mixnet.NodeID, limit int) ([]UnbondedNode, *mixnet.NodeID, error) {
	var out []UnbondedNode
	next, err := s.unbonded.Range(page(startAfter, limit), func(_ []byte, node UnbondedNode) error {
		out = append(out, node)
		return nil
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to list unbonded nodes")
	}
	return out, cursor(next), nil
}

func page(startAfter *mixnet.NodeID, limit int) storage.Page {
	p := storage.Page{Limit: limit}
	if startAfter != nil {
		p.StartAfter = startAfter.Bytes()
	}
	return p
}

func cursor(next []byte) *mixnet.NodeID {
	if next == nil {
		return nil
	}
	id := mixnet.NodeIDFromBytes(next)
	return &id
}
