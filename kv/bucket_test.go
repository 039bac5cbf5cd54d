// Copyright (c) 2021 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errNotFound = errors.New("not found")

type mem map[string]string

func (m mem) Get(k []byte) ([]byte, error) {
	if v, ok := m[string(k)]; ok {
		return []byte(v), nil
	}
	return nil, errNotFound
}

func (m mem) Has(k []byte) (bool, error) {
	_, ok := m[string(k)]
	return ok, nil
}

func (m mem) Put(k, v []byte) error {
	m[string(k)] = string(v)
	return nil
}

func (m mem) Delete(k []byte) error {
	delete(m, string(k))
	return nil
}

func (m mem) IsNotFound(err error) bool {
	return err == errNotFound
}

func (m mem) Iterate(r Range) Iterator {
	var keys []string
	for k := range m {
		if k >= string(r.Start) && (len(r.Limit) == 0 || k < string(r.Limit)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	i := -1
	return &struct {
		FirstFunc
		NextFunc
		KeyFunc
		ValueFunc
		ReleaseFunc
		ErrorFunc
	}{
		func() bool { i = 0; return i < len(keys) },
		func() bool { i++; return i < len(keys) },
		func() []byte { return []byte(keys[i]) },
		func() []byte { return []byte(m[keys[i]]) },
		func() {},
		func() error { return nil },
	}
}

func TestBucket_GetterGet(t *testing.T) {
	m := mem{"k1": "v1", "k2": "v2"}

	tests := []struct {
		b    Bucket
		key  string
		want string
	}{
		{Bucket(""), "k1", "v1"},
		{Bucket(""), "k2", "v2"},
		{Bucket("k"), "k1", ""},
		{Bucket("k"), "1", "v1"},
		{Bucket("k"), "2", "v2"},
		{Bucket("k1"), "", "v1"},
	}
	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			got, _ := tt.b.NewGetter(m).Get([]byte(tt.key))
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestBucket_GetterHas(t *testing.T) {
	m := mem{"k1": "v1", "k2": "v2"}

	tests := []struct {
		b    Bucket
		key  string
		want bool
	}{
		{Bucket(""), "k1", true},
		{Bucket(""), "k2", true},
		{Bucket("k"), "k1", false},
		{Bucket("k"), "1", true},
		{Bucket("k"), "2", true},
		{Bucket("k1"), "", true},
	}
	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			got, _ := tt.b.NewGetter(m).Has([]byte(tt.key))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBucket_Putter(t *testing.T) {
	m := mem{}
	p := Bucket("b").NewPutter(m)

	assert.NoError(t, p.Put([]byte("1"), []byte("v1")))
	assert.Equal(t, "v1", m["b1"])

	assert.NoError(t, p.Delete([]byte("1")))
	_, ok := m["b1"]
	assert.False(t, ok)
}

func TestBucket_StoreIterate(t *testing.T) {
	m := mem{"a1": "x", "b1": "v1", "b2": "v2", "b3": "v3", "c1": "y"}
	store := Bucket("b").NewStore(m)

	collect := func(r Range) (keys []string) {
		it := store.Iterate(r)
		defer it.Release()
		for ok := it.First(); ok; ok = it.Next() {
			keys = append(keys, string(it.Key()))
		}
		assert.NoError(t, it.Error())
		return
	}

	assert.Equal(t, []string{"1", "2", "3"}, collect(Range{}))
	assert.Equal(t, []string{"2", "3"}, collect(Range{Start: []byte("2")}))
	assert.Equal(t, []string{"1", "2"}, collect(Range{Limit: []byte("3")}))

	nested := Bucket("b").Sub("2")
	assert.Equal(t, Bucket("b2"), nested)
}

func TestReadOnly(t *testing.T) {
	m := mem{"k": "v"}
	ro := ReadOnly(m, m.Iterate)

	v, err := ro.Get([]byte("k"))
	assert.NoError(t, err)
	assert.Equal(t, "v", string(v))
	assert.ErrorIs(t, ro.Put([]byte("k"), nil), ErrReadOnly)
	assert.ErrorIs(t, ro.Delete([]byte("k")), ErrReadOnly)
}
