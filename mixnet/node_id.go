// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mixnet

import (
	"encoding/binary"
	"strconv"
)

// NodeID identifies a bonded node. IDs are assigned in increasing order
// starting from 1 and are never reused.
type NodeID uint64

// Bytes returns the big-endian encoding, so that byte order matches numeric order.
func (id NodeID) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(id))
	return b[:]
}

func (id NodeID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// NodeIDFromBytes decodes a big-endian node id.
func NodeIDFromBytes(b []byte) NodeID {
	if len(b) < 8 {
		return 0
	}
	return NodeID(binary.BigEndian.Uint64(b[:8]))
}

// ParseNodeID parses the decimal string form of a node id.
func ParseNodeID(s string) (NodeID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return NodeID(n), nil
}
