// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package contract

import (
	"crypto/ed25519"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/pkg/errors"

	"github.com/mixledger/ledger/contract/reverts"
	"github.com/mixledger/ledger/mixnet"
)

// IdentityVerifier checks that the holder of a node identity key signed the owner address.
type IdentityVerifier interface {
	VerifyIdentity(owner mixnet.Address, identityKey, signature string) error
}

// Ed25519Verifier verifies base58 encoded ed25519 identity keys and signatures.
type Ed25519Verifier struct{}

func (Ed25519Verifier) VerifyIdentity(owner mixnet.Address, identityKey, signature string) error {
	key := base58.Decode(identityKey)
	if len(key) != ed25519.PublicKeySize {
		return errors.WithMessagef(reverts.ErrMalformedIdentityKey, "decoded %d bytes", len(key))
	}
	sig := base58.Decode(signature)
	if len(sig) != ed25519.SignatureSize {
		return errors.WithMessagef(reverts.ErrMalformedSignature, "decoded %d bytes", len(sig))
	}
	if !ed25519.Verify(ed25519.PublicKey(key), owner.Bytes(), sig) {
		return reverts.ErrInvalidSignature
	}
	return nil
}

// SignOwner produces the identity signature over owner with the given key.
func SignOwner(key ed25519.PrivateKey, owner mixnet.Address) string {
	return base58.Encode(ed25519.Sign(key, owner.Bytes()))
}

// EncodeIdentityKey renders an identity public key the way nodes announce it.
func EncodeIdentityKey(key ed25519.PublicKey) string {
	return base58.Encode(key)
}
