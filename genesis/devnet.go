// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"sync"

	"golang.org/x/crypto/sha3"

	"github.com/mixledger/ledger/contract"
	"github.com/mixledger/ledger/mixnet"
)

const devAccountCount = 10

// DevAccount is a pre-funded account for development. Each account also
// holds a node identity, so it can bond a node without extra setup.
type DevAccount struct {
	Address  mixnet.Address
	Identity ed25519.PrivateKey
}

// IdentityKey is the base58 identity key the account's node announces.
func (a DevAccount) IdentityKey() string {
	return contract.EncodeIdentityKey(a.Identity.Public().(ed25519.PublicKey))
}

// OwnerSignature proves the node identity is held by the account.
func (a DevAccount) OwnerSignature() string {
	return contract.SignOwner(a.Identity, a.Address)
}

var DevAccounts = sync.OnceValue(func() []DevAccount {
	accs := make([]DevAccount, 0, devAccountCount)
	for i := range devAccountCount {
		seed := sha3.Sum256(fmt.Appendf(nil, "mixnet devnet account %d", i))
		key := ed25519.NewKeyFromSeed(seed[:])
		h := mixnet.Blake2b(key.Public().(ed25519.PublicKey))
		accs = append(accs, DevAccount{
			Address:  mixnet.Address("n1" + hex.EncodeToString(h[:20])),
			Identity: key,
		})
	}
	return accs
})

// NewDevnet creates the genesis for solo mode. The first dev account owns
// the ledger and acts as the rewarding validator.
func NewDevnet() *Genesis {
	accs := DevAccounts()
	return &Genesis{
		Name:  "devnet",
		Owner: accs[0].Address,
		Instantiate: contract.InstantiateMsg{
			RewardingValidatorAddress: accs[0].Address,
			VestingContractAddress:    accs[1].Address,
			RewardingDenom:            "unym",
			EpochsInInterval:          24,
			EpochDurationSecs:         60,
			MinimumPledge:             100_000000,
			RewardingParams: contract.InitialRewardingParams{
				InitialRewardPool:    mixnet.MustParseDecimal("250000000000000"),
				InitialStakingSupply: mixnet.MustParseDecimal("100000000000000"),
				SybilResistance:      mixnet.MustParseDecimal("0.3"),
				ActiveSetWorkFactor:  mixnet.MustParseDecimal("10"),
				IntervalPoolEmission: mixnet.MustParseDecimal("0.02"),
				RewardedSetSize:      8,
				ActiveSetSize:        4,
			},
		},
	}
}
