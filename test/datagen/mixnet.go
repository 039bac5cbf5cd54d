// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"

	"github.com/mixledger/ledger/mixnet"
)

// RandAddress returns a fresh account address.
func RandAddress() mixnet.Address {
	h := RandomHash()
	return mixnet.Address("n1" + hex.EncodeToString(h[:20]))
}

// Identity is a node identity key pair.
type Identity struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

func RandIdentity() Identity {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return Identity{Public: pub, Private: priv}
}

// Key is the base58 form nodes announce.
func (id Identity) Key() string {
	return base58.Encode(id.Public)
}

// Sign signs the owner address the way a bonding node proves its identity.
func (id Identity) Sign(owner mixnet.Address) string {
	return base58.Encode(ed25519.Sign(id.Private, owner.Bytes()))
}

// RandHost returns a plausible node host name.
func RandHost() string {
	return fmt.Sprintf("mix-%d.example.net", RandIntN(1_000_000))
}
