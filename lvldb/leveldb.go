// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/mixledger/ledger/kv"
)

var _ kv.Store = (*LevelDB)(nil)

// Options options for creating level db instance.
type Options struct {
	CacheSize              int
	OpenFilesCacheCapacity int
}

var (
	writeOpt = opt.WriteOptions{}
	readOpt  = opt.ReadOptions{}
)

// LevelDB wraps level db impls.
type LevelDB struct {
	db *leveldb.DB
	// goleveldb allows a single open transaction; the lock turns the
	// "blocked writer" behaviour into plain serialization of callers.
	txLock sync.Mutex
}

// New create a persistent level db instance.
// Create an empty one if not exists, or open if already there.
func New(path string, opts Options) (*LevelDB, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, errors.Wrap(err, "new persistent level db")
	}
	return openLevelDB(stg, opts.CacheSize, opts.OpenFilesCacheCapacity)
}

// NewMem create a level db in memory.
func NewMem() (*LevelDB, error) {
	return openLevelDB(storage.NewMemStorage(), 0, 0)
}

func openLevelDB(stg storage.Storage, cacheSize, openFilesCacheCapacity int) (*LevelDB, error) {
	if cacheSize < 16 {
		cacheSize = 16
	}

	if openFilesCacheCapacity < 16 {
		openFilesCacheCapacity = 16
	}

	db, err := leveldb.Open(stg, &opt.Options{
		OpenFilesCacheCapacity: openFilesCacheCapacity,
		BlockCacheCapacity:     cacheSize / 2 * opt.MiB,
		WriteBuffer:            cacheSize / 4 * opt.MiB, // Two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open level db")
	}
	return &LevelDB{db: db}, nil
}

// IsNotFound to check if the error returned by Get indicates key not found.
func (ldb *LevelDB) IsNotFound(err error) bool {
	return errors.Is(err, leveldb.ErrNotFound)
}

// Get retrieve value for given key.
// It returns an error if key not found. The error can be checked via IsNotFound.
func (ldb *LevelDB) Get(key []byte) (value []byte, err error) {
	return ldb.db.Get(key, &readOpt)
}

// Has returns whether a key exists.
func (ldb *LevelDB) Has(key []byte) (bool, error) {
	return ldb.db.Has(key, &readOpt)
}

// Put save value fo give key.
func (ldb *LevelDB) Put(key, value []byte) error {
	return ldb.db.Put(key, value, &writeOpt)
}

// Delete deletes the give key and its value.
func (ldb *LevelDB) Delete(key []byte) error {
	return ldb.db.Delete(key, &writeOpt)
}

// Iterate create a iterator by range.
func (ldb *LevelDB) Iterate(r kv.Range) kv.Iterator {
	return ldb.db.NewIterator(toUtilRange(r), &readOpt)
}

// Close close the level db.
// Later operations will all fail.
func (ldb *LevelDB) Close() error {
	return ldb.db.Close()
}

// Transact runs fn against a transactional view of the db.
// Writes made by fn are visible to its own reads and iterators, and are
// committed atomically only if fn returns nil. Otherwise they are discarded.
func (ldb *LevelDB) Transact(fn func(kv.Store) error) error {
	ldb.txLock.Lock()
	defer ldb.txLock.Unlock()

	tr, err := ldb.db.OpenTransaction()
	if err != nil {
		return errors.Wrap(err, "open transaction")
	}
	// noop once committed
	defer tr.Discard()

	store := &struct {
		kv.GetFunc
		kv.HasFunc
		kv.IsNotFoundFunc
		kv.PutFunc
		kv.DeleteFunc
		kv.IterateFunc
	}{
		func(key []byte) ([]byte, error) { return tr.Get(key, &readOpt) },
		func(key []byte) (bool, error) { return tr.Has(key, &readOpt) },
		ldb.IsNotFound,
		func(key, val []byte) error { return tr.Put(key, val, &writeOpt) },
		func(key []byte) error { return tr.Delete(key, &writeOpt) },
		func(r kv.Range) kv.Iterator { return tr.NewIterator(toUtilRange(r), &readOpt) },
	}

	if err := fn(store); err != nil {
		return err
	}
	if err := tr.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}

// View runs fn against a consistent read-only snapshot of the db.
func (ldb *LevelDB) View(fn func(kv.Store) error) error {
	snapshot, err := ldb.db.GetSnapshot()
	if err != nil {
		return errors.Wrap(err, "get snapshot")
	}
	defer snapshot.Release()

	getter := &struct {
		kv.GetFunc
		kv.HasFunc
		kv.IsNotFoundFunc
	}{
		func(key []byte) ([]byte, error) { return snapshot.Get(key, &readOpt) },
		func(key []byte) (bool, error) { return snapshot.Has(key, &readOpt) },
		ldb.IsNotFound,
	}
	return fn(kv.ReadOnly(getter, func(r kv.Range) kv.Iterator {
		return snapshot.NewIterator(toUtilRange(r), &readOpt)
	}))
}

func toUtilRange(r kv.Range) *util.Range {
	return &util.Range{
		Start: r.Start,
		Limit: r.Limit,
	}
}
