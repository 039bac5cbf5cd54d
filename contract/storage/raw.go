// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/pkg/errors"
)

var singleKey = BytesKey("")

// Raw is a single rlp-encoded value stored in its own slot.
type Raw[V any] struct {
	mapping *Mapping[BytesKey, V]
}

func NewRaw[V any](context *Context, slot string) *Raw[V] {
	return &Raw[V]{mapping: NewMapping[BytesKey, V](context, slot)}
}

// Get returns the stored value, or the zero value of V if it was never set.
func (r *Raw[V]) Get() (V, error) {
	return r.mapping.Get(singleKey)
}

// Exists reports whether a value has been stored.
func (r *Raw[V]) Exists() (bool, error) {
	_, found, err := r.mapping.Find(singleKey)
	return found, err
}

func (r *Raw[V]) Upsert(value V) error {
	return r.mapping.Set(singleKey, value)
}

// Counter is a persisted, monotonically increasing id allocator.
type Counter struct {
	raw *Raw[uint64]
}

func NewCounter(context *Context, slot string) *Counter {
	return &Counter{raw: NewRaw[uint64](context, slot)}
}

// Current returns the last allocated id, zero if none.
func (c *Counter) Current() (uint64, error) {
	return c.raw.Get()
}

// Next allocates and returns the next id. The first id is 1.
func (c *Counter) Next() (uint64, error) {
	id, err := c.raw.Get()
	if err != nil {
		return 0, err
	}
	if id == ^uint64(0) {
		return 0, errors.New("id counter overflow")
	}
	id++
	if err := c.raw.Upsert(id); err != nil {
		return 0, err
	}
	return id, nil
}
