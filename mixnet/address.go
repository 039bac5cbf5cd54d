// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mixnet

import (
	"strings"

	"github.com/pkg/errors"
)

// MaxAddressLength bounds the length of an account address.
const MaxAddressLength = 128

// Address is an authenticated account address handed over by the host.
// The ledger treats it as an opaque, case-sensitive string.
type Address string

// ParseAddress validates the given string as an address.
func ParseAddress(s string) (Address, error) {
	if s == "" {
		return "", errors.New("empty address")
	}
	if len(s) > MaxAddressLength {
		return "", errors.Errorf("address too long: %d", len(s))
	}
	if strings.ContainsAny(s, " \t\r\n") {
		return "", errors.New("address contains whitespace")
	}
	return Address(s), nil
}

// MustParseAddress is like ParseAddress but panics on error.
func MustParseAddress(s string) Address {
	addr, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return string(a)
}

// Bytes returns the raw address bytes.
func (a Address) Bytes() []byte {
	return []byte(a)
}

// IsZero returns whether the address is empty.
func (a Address) IsZero() bool {
	return a == ""
}

// Hash returns the blake2b-256 digest of the address.
// It gives variable-length addresses a fixed-width, well-ordered storage key.
func (a Address) Hash() Bytes32 {
	return Blake2b([]byte(a))
}
