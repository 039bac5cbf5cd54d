// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mixnet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("n1owner")
	assert.NoError(t, err)
	assert.Equal(t, Address("n1owner"), addr)

	_, err = ParseAddress("")
	assert.Error(t, err)
	_, err = ParseAddress("n1 owner")
	assert.Error(t, err)
	_, err = ParseAddress(strings.Repeat("a", MaxAddressLength+1))
	assert.Error(t, err)

	assert.Panics(t, func() { MustParseAddress("") })
	assert.True(t, Address("").IsZero())
	assert.NotEqual(t, Address("a").Hash(), Address("b").Hash())
}

func TestNodeIDOrdering(t *testing.T) {
	ids := []NodeID{1, 255, 256, 1 << 40}
	for i := 1; i < len(ids); i++ {
		assert.Less(t, string(ids[i-1].Bytes()), string(ids[i].Bytes()))
	}
	assert.Equal(t, NodeID(256), NodeIDFromBytes(NodeID(256).Bytes()))

	id, err := ParseNodeID("42")
	assert.NoError(t, err)
	assert.Equal(t, NodeID(42), id)
	_, err = ParseNodeID("x")
	assert.Error(t, err)
}

func TestCoins(t *testing.T) {
	coins := NewCoins(NewCoin(5, "unym"), NewCoin(0, "foo"), NewCoin(7, "unym"))
	assert.Len(t, coins, 2)
	assert.Equal(t, uint64(12), coins.AmountOf("unym"))
	assert.Equal(t, "5unym,7unym", coins.String())
	assert.Equal(t, "5", NewCoin(5, "unym").Decimal().String())
}
