// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package nodes

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/mixledger/ledger/contract/reverts"
	"github.com/mixledger/ledger/mixnet"
)

type Status uint8

const (
	StatusUnknown   Status = 0 // never bonded
	StatusBonded    Status = 1 // bonded and eligible for the rewarded set
	StatusUnbonding Status = 2 // unbond requested, settled at the next epoch reconciliation
	StatusUnbonded  Status = 3 // settled, pledge returned
)

func (s Status) String() string {
	switch s {
	case StatusBonded:
		return "bonded"
	case StatusUnbonding:
		return "unbonding"
	case StatusUnbonded:
		return "unbonded"
	default:
		return "unknown"
	}
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	for _, candidate := range []Status{StatusUnknown, StatusBonded, StatusUnbonding, StatusUnbonded} {
		if candidate.String() == str {
			*s = candidate
			return nil
		}
	}
	return errors.Errorf("unknown node status %q", str)
}

// MaxHostLength bounds the announced host name.
const MaxHostLength = 255

// CostParams are the operator's economic settings.
type CostParams struct {
	ProfitMargin          mixnet.Decimal `json:"profit_margin_percent"`
	IntervalOperatingCost mixnet.Coin    `json:"interval_operating_cost"`
}

func (c CostParams) Validate(denom string) error {
	if !c.ProfitMargin.IsPercent() {
		return errors.WithMessagef(reverts.ErrInvalidProfitMargin, "got %v", c.ProfitMargin)
	}
	if c.IntervalOperatingCost.Denom != denom && !c.IntervalOperatingCost.IsZero() {
		return errors.WithMessagef(reverts.ErrWrongDenom, "operating cost denom %q, expected %q", c.IntervalOperatingCost.Denom, denom)
	}
	return nil
}

// ConfigUpdate is the announced, freely updatable part of a node.
type ConfigUpdate struct {
	Host        string `json:"host"`
	MixPort     uint16 `json:"mix_port"`
	VerlocPort  uint16 `json:"verloc_port"`
	HTTPAPIPort uint16 `json:"http_api_port"`
	Version     string `json:"version"`
}

func (c ConfigUpdate) Validate() error {
	if c.Host == "" || len(c.Host) > MaxHostLength {
		return errors.WithMessagef(reverts.ErrInvalidParams, "invalid host length %d", len(c.Host))
	}
	return nil
}

// Config is what an operator announces when bonding.
type Config struct {
	IdentityKey string `json:"identity_key"`
	SphinxKey   string `json:"sphinx_key"`
	ConfigUpdate
}

// Node is a bonded mix node.
type Node struct {
	ID    mixnet.NodeID  `json:"node_id"`
	Owner mixnet.Address `json:"owner"`
	// Proxy is empty unless the node was bonded on behalf of Owner.
	Proxy          mixnet.Address `json:"proxy,omitempty"`
	Config         Config         `json:"config"`
	BondingHeight  uint64         `json:"bonding_height"`
	OriginalPledge mixnet.Coin    `json:"original_pledge"`
	CostParams     CostParams     `json:"cost_params"`
	Status         Status         `json:"status"`
}

func (n *Node) IsBonded() bool {
	return n.Status == StatusBonded
}

// EnsureOwnedBy checks that owner, acting through proxy, controls the node.
func (n *Node) EnsureOwnedBy(owner, proxy mixnet.Address) error {
	if n.Owner != owner {
		return reverts.ErrUnauthorized
	}
	if n.Proxy != proxy {
		return errors.WithMessagef(reverts.ErrProxyMismatch, "node %v", n.ID)
	}
	return nil
}

// EnsureBonded rejects nodes that already requested unbonding.
func (n *Node) EnsureBonded() error {
	if n.Status != StatusBonded {
		return errors.WithMessagef(reverts.ErrNodeIsUnbonding, "node %v", n.ID)
	}
	return nil
}

// UnbondedNode is what remains queryable of a node after settlement.
type UnbondedNode struct {
	ID              mixnet.NodeID  `json:"node_id"`
	Owner           mixnet.Address `json:"owner"`
	Proxy           mixnet.Address `json:"proxy,omitempty"`
	IdentityKey     string         `json:"identity_key"`
	UnbondingHeight uint64         `json:"unbonding_height"`
}
