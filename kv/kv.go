// Copyright (c) 2019 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import "github.com/pkg/errors"

// ErrReadOnly is returned by writes against a read-only store.
var ErrReadOnly = errors.New("kv: read-only store")

// Getter defines methods to read kv.
type Getter interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	IsNotFound(err error) bool
}

// Putter defines methods to write kv.
type Putter interface {
	Put(key, val []byte) error
	Delete(key []byte) error
}

// Iterator iterates over kv pairs in ascending key order.
type Iterator interface {
	First() bool
	Next() bool
	Key() []byte
	Value() []byte
	Release()
	Error() error
}

// Range is the key range.
type Range struct {
	Start []byte // start of key range (included)
	Limit []byte // limit of key range (excluded)
}

// Store defines the full functional kv store.
type Store interface {
	Getter
	Putter

	Iterate(r Range) Iterator
}

// ReadOnly wraps a getter and iterator as a Store whose writes fail with ErrReadOnly.
func ReadOnly(getter Getter, iterate func(r Range) Iterator) Store {
	return &struct {
		Getter
		PutFunc
		DeleteFunc
		IterateFunc
	}{
		getter,
		func([]byte, []byte) error { return ErrReadOnly },
		func([]byte) error { return ErrReadOnly },
		iterate,
	}
}
