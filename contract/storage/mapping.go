// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/mixledger/ledger/kv"
)

// Key is implemented by mapping keys. Byte order of keys defines iteration order.
type Key interface {
	Bytes() []byte
}

// BytesKey is a raw composite key.
type BytesKey []byte

func (k BytesKey) Bytes() []byte { return k }

// Mapping is an ordered key/value storage abstraction with rlp-encoded values.
type Mapping[K Key, V any] struct {
	context *Context
	store   kv.Store
}

// NewMapping creates a mapping whose entries live under the given slot prefix.
// Slots of different mappings must not be prefixes of one another.
func NewMapping[K Key, V any](context *Context, slot string) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, store: context.bucket(slot)}
}

// Get returns the value stored for key, or the zero value of V if absent.
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	_, err = m.get(key.Bytes(), &value)
	return
}

// Find is like Get but also reports whether the key is present.
func (m *Mapping[K, V]) Find(key K) (value V, found bool, err error) {
	found, err = m.get(key.Bytes(), &value)
	return
}

func (m *Mapping[K, V]) get(key []byte, value *V) (bool, error) {
	raw, err := m.store.Get(key)
	if err != nil {
		if m.store.IsNotFound(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "storage get")
	}
	if err := rlp.DecodeBytes(raw, value); err != nil {
		return false, errors.Wrap(err, "storage decode")
	}
	return true, nil
}

// Set stores value for key.
func (m *Mapping[K, V]) Set(key K, value V) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return errors.Wrap(err, "storage encode")
	}
	m.context.onWrite()
	return m.store.Put(key.Bytes(), raw)
}

// Insert stores value for a key that must not exist yet.
func (m *Mapping[K, V]) Insert(key K, value V) error {
	exists, err := m.store.Has(key.Bytes())
	if err != nil {
		return errors.Wrap(err, "storage has")
	}
	if exists {
		return errors.Errorf("storage insert: key %x already exists", key.Bytes())
	}
	return m.Set(key, value)
}

// Update stores value for a key that must already exist.
func (m *Mapping[K, V]) Update(key K, value V) error {
	exists, err := m.store.Has(key.Bytes())
	if err != nil {
		return errors.Wrap(err, "storage has")
	}
	if !exists {
		return errors.Errorf("storage update: key %x not found", key.Bytes())
	}
	return m.Set(key, value)
}

// Delete removes key. Deleting an absent key is not an error.
func (m *Mapping[K, V]) Delete(key K) error {
	m.context.onWrite()
	return m.store.Delete(key.Bytes())
}

// Page is a bounded, ordered walk over a mapping.
type Page struct {
	// Prefix restricts the walk to keys starting with it.
	Prefix []byte
	// StartAfter is the exclusive lower bound. Keys at or below it are skipped.
	StartAfter []byte
	// Limit is the maximum number of entries visited; zero means unlimited.
	Limit int
}

// Range visits entries in ascending key order within the page bounds.
// It returns the key of the last entry visited if more entries remain beyond
// the page, or nil if the walk reached the end.
func (m *Mapping[K, V]) Range(page Page, fn func(key []byte, value V) error) (next []byte, err error) {
	r := kv.Range{Start: page.Prefix}
	if len(page.Prefix) > 0 {
		r.Limit = util.BytesPrefix(page.Prefix).Limit
	}
	if len(page.StartAfter) > 0 {
		// smallest key strictly greater than StartAfter
		after := append(append([]byte(nil), page.StartAfter...), 0)
		if string(after) > string(r.Start) {
			r.Start = after
		}
	}

	it := m.store.Iterate(r)
	defer it.Release()

	var (
		visited int
		last    []byte
	)
	for ok := it.First(); ok; ok = it.Next() {
		if page.Limit > 0 && visited == page.Limit {
			return last, nil
		}
		var value V
		if err := rlp.DecodeBytes(it.Value(), &value); err != nil {
			return nil, errors.Wrap(err, "storage decode")
		}
		key := append([]byte(nil), it.Key()...)
		if err := fn(key, value); err != nil {
			return nil, err
		}
		last = key
		visited++
	}
	if err := it.Error(); err != nil {
		return nil, errors.Wrap(err, "storage iterate")
	}
	return nil, nil
}
