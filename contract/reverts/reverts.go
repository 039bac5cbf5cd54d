// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// Kind classifies a revert.
type Kind uint8

const (
	// Validation covers malformed input such as bad funds or keys.
	Validation Kind = iota + 1
	// Authorization covers callers acting on state they do not control.
	Authorization
	// State covers requests that conflict with the current ledger state.
	State
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Authorization:
		return "authorization"
	case State:
		return "state"
	default:
		return "unknown"
	}
}

// ErrRevert is a rejected call. A revert leaves no state change behind.
type ErrRevert struct {
	kind    Kind
	message string
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

// validation
var (
	ErrNoBondFound            = New(Validation, "no funds were provided for the pledge")
	ErrInsufficientPledge     = New(Validation, "pledge is below the required minimum")
	ErrMultipleDenoms         = New(Validation, "more than one denomination was provided")
	ErrWrongDenom             = New(Validation, "wrong denomination")
	ErrEmptyDelegation        = New(Validation, "no funds were provided for the delegation")
	ErrInsufficientDelegation = New(Validation, "delegation is below the required minimum")
	ErrMalformedIdentityKey   = New(Validation, "malformed identity key")
	ErrMalformedSignature     = New(Validation, "malformed signature")
	ErrInvalidSignature       = New(Validation, "identity signature does not verify")
	ErrInvalidProfitMargin    = New(Validation, "profit margin must lie within [0, 1]")
	ErrInvalidParams          = New(Validation, "invalid parameters")
	ErrDuplicateRewardedNode  = New(Validation, "rewarded set contains a node twice")
)

// authorization
var (
	ErrUnauthorized  = New(Authorization, "unauthorized")
	ErrProxyMismatch = New(Authorization, "proxy does not match the one on record")
)

// state
var (
	ErrNodeNotFound              = New(State, "node not found")
	ErrNodeIsUnbonding           = New(State, "node is unbonding")
	ErrAlreadyOwnsNode           = New(State, "address already owns a node")
	ErrDuplicateIdentityKey      = New(State, "identity key is already bonded")
	ErrDelegationNotFound        = New(State, "delegation not found")
	ErrEpochInProgress           = New(State, "epoch is still in progress")
	ErrNodeAlreadyRewarded       = New(State, "node was already rewarded in this epoch")
	ErrUnexpectedActiveSetSize   = New(State, "unexpected active set size")
	ErrUnexpectedRewardedSetSize = New(State, "rewarded set is larger than allowed")
)

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// KindOf returns the kind of the revert in err's chain, or zero if there is none.
func KindOf(err error) Kind {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind
	}
	return 0
}
