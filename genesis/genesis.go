// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"os"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mixledger/ledger/contract"
	"github.com/mixledger/ledger/log"
	"github.com/mixledger/ledger/mixnet"
)

var logger = log.WithContext("pkg", "genesis")

// Genesis describes how a ledger comes to life: who owns it and the
// parameters it is instantiated with.
type Genesis struct {
	Name        string                  `yaml:"name"`
	Owner       mixnet.Address          `yaml:"owner"`
	Instantiate contract.InstantiateMsg `yaml:"instantiate"`
}

// Load reads a genesis from a yaml file. Unknown keys are rejected.
func Load(path string) (*Genesis, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open genesis file")
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var gene Genesis
	if err := decoder.Decode(&gene); err != nil {
		return nil, errors.Wrap(err, "decode genesis file")
	}
	if gene.Name == "" {
		gene.Name = "custom"
	}
	if _, err := mixnet.ParseAddress(string(gene.Owner)); err != nil {
		return nil, errors.WithMessage(err, "genesis owner")
	}
	return &gene, nil
}

// ID identifies the genesis. Two ledgers built from the same genesis share it.
func (g *Genesis) ID() mixnet.Bytes32 {
	data, err := rlp.EncodeToBytes([]any{g.Name, g.Owner, &g.Instantiate})
	if err != nil {
		panic(err)
	}
	return mixnet.Blake2b(data)
}

// Apply instantiates the ledger unless the store already holds one.
// It reports whether instantiation happened.
func (g *Genesis) Apply(executor *contract.Executor) (bool, error) {
	ok, err := executor.IsInstantiated()
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}
	msg := g.Instantiate
	if _, err := executor.Instantiate(contract.MessageInfo{Sender: g.Owner}, &msg); err != nil {
		return false, errors.WithMessage(err, "instantiate ledger")
	}
	logger.Info("ledger instantiated", "genesis", g.Name, "id", g.ID(), "owner", g.Owner)
	return true, nil
}
