// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/mixledger/ledger/mixnet"
)

// NodeIDVar parses the named path variable as a node id.
func NodeIDVar(r *http.Request, name string) (mixnet.NodeID, error) {
	id, err := mixnet.ParseNodeID(mux.Vars(r)[name])
	if err != nil {
		return 0, BadRequest(errors.WithMessage(err, name))
	}
	return id, nil
}

// AddressVar parses the named path variable as an account address.
func AddressVar(r *http.Request, name string) (mixnet.Address, error) {
	addr, err := mixnet.ParseAddress(mux.Vars(r)[name])
	if err != nil {
		return "", BadRequest(errors.WithMessage(err, name))
	}
	return addr, nil
}

// PageLimit parses the optional "limit" query parameter.
func PageLimit(r *http.Request) (*uint32, error) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return nil, BadRequest(errors.WithMessage(err, "limit"))
	}
	limit := uint32(n)
	return &limit, nil
}

// StartAfterNode parses the optional "startAfter" query parameter as a node id.
func StartAfterNode(r *http.Request) (*mixnet.NodeID, error) {
	s := r.URL.Query().Get("startAfter")
	if s == "" {
		return nil, nil
	}
	id, err := mixnet.ParseNodeID(s)
	if err != nil {
		return nil, BadRequest(errors.WithMessage(err, "startAfter"))
	}
	return &id, nil
}

// StartAfterSeq parses the optional "startAfter" query parameter as an event sequence.
func StartAfterSeq(r *http.Request) (*uint64, error) {
	s := r.URL.Query().Get("startAfter")
	if s == "" {
		return nil, nil
	}
	seq, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, BadRequest(errors.WithMessage(err, "startAfter"))
	}
	return &seq, nil
}

// StartAfterCursor returns the optional opaque "startAfter" cursor.
func StartAfterCursor(r *http.Request) *string {
	s := r.URL.Query().Get("startAfter")
	if s == "" {
		return nil
	}
	return &s
}
