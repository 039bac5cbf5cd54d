// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixledger/ledger/cache"
)

func TestLRU_GetOrLoad(t *testing.T) {
	c, err := cache.NewLRU[uint64, string](2)
	require.NoError(t, err)

	var loads int
	loader := func(key uint64) (string, bool, error) {
		loads++
		switch key {
		case 0:
			return "", false, nil
		case 99:
			return "", false, errors.New("boom")
		}
		return "node", true, nil
	}

	v, ok, err := c.GetOrLoad(1, loader)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "node", v)

	_, _, _ = c.GetOrLoad(1, loader)
	assert.Equal(t, 1, loads, "the second lookup is served from the cache")

	_, ok, err = c.GetOrLoad(0, loader)
	require.NoError(t, err)
	assert.False(t, ok)
	_, _, _ = c.GetOrLoad(0, loader)
	assert.Equal(t, 3, loads, "absent records are never cached")

	_, _, err = c.GetOrLoad(99, loader)
	assert.Error(t, err)
	assert.Equal(t, 1, c.Len())

	hit, miss := c.Stats()
	assert.Equal(t, int64(1), hit)
	assert.Equal(t, int64(4), miss)
}

func TestLRU_Evicts(t *testing.T) {
	c, err := cache.NewLRU[int, int](2)
	require.NoError(t, err)
	for i := range 5 {
		_, _, err := c.GetOrLoad(i, func(k int) (int, bool, error) { return k * k, true, nil })
		require.NoError(t, err)
	}
	assert.Equal(t, 2, c.Len())

	_, err = cache.NewLRU[int, int](0)
	assert.Error(t, err)
}
