// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/mixledger/ledger/kv"
)

// Context is the storage scope of a single ledger call.
// Every typed slot created from it reads and writes through the same store,
// so all effects of the call share its atomicity.
type Context struct {
	store kv.Store
	// number of values written during the call
	writes uint64
}

func NewContext(store kv.Store) *Context {
	return &Context{store: store}
}

// Store returns the underlying store.
func (c *Context) Store() kv.Store {
	return c.store
}

// Writes returns the number of values written or deleted through the context.
func (c *Context) Writes() uint64 {
	return c.writes
}

func (c *Context) bucket(slot string) kv.Store {
	return kv.Bucket(slot).NewStore(c.store)
}

func (c *Context) onWrite() {
	c.writes++
}
