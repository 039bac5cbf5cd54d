// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package contract

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/mixledger/ledger/co"
	"github.com/mixledger/ledger/contract/storage"
	"github.com/mixledger/ledger/kv"
	"github.com/mixledger/ledger/lvldb"
)

const slotHeight = "host/height"

// Executor hosts the contract on a leveldb store. Every call runs in its own
// transaction, so a failed call leaves no trace. Calls are serialized by the db.
type Executor struct {
	db       *lvldb.LevelDB
	verifier IdentityVerifier
	now      func() time.Time

	committed co.Signal
}

// NewExecutor creates an executor. A nil now uses the wall clock.
func NewExecutor(db *lvldb.LevelDB, verifier IdentityVerifier, now func() time.Time) *Executor {
	if now == nil {
		now = time.Now
	}
	return &Executor{db: db, verifier: verifier, now: now}
}

func heightOf(store kv.Store) *storage.Raw[uint64] {
	return storage.NewRaw[uint64](storage.NewContext(store), slotHeight)
}

// nextEnv allocates the height of a new call.
func (x *Executor) nextEnv(store kv.Store) (Env, error) {
	h := heightOf(store)
	height, err := h.Get()
	if err != nil {
		return Env{}, errors.Wrap(err, "failed to get height")
	}
	height++
	if err := h.Upsert(height); err != nil {
		return Env{}, errors.Wrap(err, "failed to set height")
	}
	return Env{BlockHeight: height, BlockTime: uint64(x.now().Unix())}, nil
}

// Env returns the host context a query would see now.
func (x *Executor) Env() (Env, error) {
	var env Env
	err := x.db.View(func(store kv.Store) error {
		height, err := heightOf(store).Get()
		if err != nil {
			return err
		}
		env = Env{BlockHeight: height, BlockTime: uint64(x.now().Unix())}
		return nil
	})
	return env, err
}

// IsInstantiated reports whether the store already holds a ledger.
func (x *Executor) IsInstantiated() (bool, error) {
	var ok bool
	err := x.db.View(func(store kv.Store) error {
		height, err := heightOf(store).Get()
		ok = height > 0
		return err
	})
	return ok, err
}

func (x *Executor) Instantiate(info MessageInfo, msg *InstantiateMsg) (*Response, error) {
	var resp *Response
	err := x.db.Transact(func(store kv.Store) error {
		env, err := x.nextEnv(store)
		if err != nil {
			return err
		}
		resp, err = New(store, x.verifier).Instantiate(env, info, msg)
		return err
	})
	if err != nil {
		logger.Info("instantiate failed", "sender", info.Sender, "error", err)
		return nil, err
	}
	x.observeState()
	x.committed.Broadcast()
	return resp, nil
}

// Execute runs a command in a fresh transaction.
func (x *Executor) Execute(info MessageInfo, msg *ExecuteMsg) (*Response, error) {
	name, err := msg.Name()
	if err != nil {
		return nil, err
	}
	logger.Debug("executing", "msg", name, "sender", info.Sender, "funds", info.Funds)

	start := time.Now()
	var resp *Response
	err = x.db.Transact(func(store kv.Store) error {
		env, err := x.nextEnv(store)
		if err != nil {
			return err
		}
		resp, err = New(store, x.verifier).Execute(env, info, msg)
		return err
	})
	metricExecuteDuration().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"msg": name})
	if err != nil {
		metricExecuteCount().AddWithLabel(1, map[string]string{"msg": name, "status": "failed"})
		logger.Info("execute failed", "msg", name, "sender", info.Sender, "error", err)
		return nil, err
	}
	metricExecuteCount().AddWithLabel(1, map[string]string{"msg": name, "status": "ok"})
	observeResponse(resp)
	x.observeState()
	x.committed.Broadcast()
	return resp, nil
}

// Committed returns a channel closed by the next successful call.
func (x *Executor) Committed() <-chan struct{} {
	return x.committed.Wait()
}

// Query answers a read only request against a snapshot.
func (x *Executor) Query(msg *QueryMsg) (any, error) {
	env, err := x.Env()
	if err != nil {
		return nil, err
	}
	var out any
	err = x.db.View(func(store kv.Store) error {
		out, err = New(store, x.verifier).Query(env, msg)
		return err
	})
	return out, err
}

// View runs fn against a read only contract.
func (x *Executor) View(fn func(c *Contract, env Env) error) error {
	env, err := x.Env()
	if err != nil {
		return err
	}
	return x.db.View(func(store kv.Store) error {
		return fn(New(store, x.verifier), env)
	})
}

// observeState refreshes the gauges from committed state.
func (x *Executor) observeState() {
	err := x.View(func(c *Contract, _ Env) error {
		pool, err := c.GetRewardPool()
		if err != nil {
			return err
		}
		epochs, intervals, err := c.PendingEventCounts()
		if err != nil {
			return err
		}
		metricRewardPool().Set(int64(min(pool.Floor(), math.MaxInt64)))
		metricPendingEvents().SetWithLabel(int64(epochs), map[string]string{"queue": "epoch"})
		metricPendingEvents().SetWithLabel(int64(intervals), map[string]string{"queue": "interval"})
		return nil
	})
	if err != nil {
		logger.Debug("failed to observe state", "error", err)
	}
}
