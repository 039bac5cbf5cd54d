// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
)

// LRU is a size bounded cache for records that never change once they exist,
// such as settled nodes.
type LRU[K comparable, V any] struct {
	cache     *lru.Cache
	hit, miss atomic.Int64
}

// NewLRU create a LRU cache instance.
// maxSize should be > 0, or an error returned.
func NewLRU[K comparable, V any](maxSize int) (*LRU[K, V], error) {
	cache, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &LRU[K, V]{cache: cache}, nil
}

// Loader loads the value of key. A false ok keeps the result out of the
// cache, which is how absent records are reported.
type Loader[K comparable, V any] func(key K) (value V, ok bool, err error)

// GetOrLoad first try to get from cache, do load if missed.
func (l *LRU[K, V]) GetOrLoad(key K, loader Loader[K, V]) (V, bool, error) {
	if v, ok := l.cache.Get(key); ok {
		l.hit.Add(1)
		return v.(V), true, nil
	}
	l.miss.Add(1)

	v, ok, err := loader(key)
	if err != nil || !ok {
		return v, false, err
	}
	l.cache.Add(key, v)
	return v, true, nil
}

func (l *LRU[K, V]) Len() int {
	return l.cache.Len()
}

// Stats returns the number of hits and misses so far.
func (l *LRU[K, V]) Stats() (hit, miss int64) {
	return l.hit.Load(), l.miss.Load()
}
