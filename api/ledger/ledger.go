// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mixledger/ledger/api/utils"
	"github.com/mixledger/ledger/contract"
	"github.com/mixledger/ledger/mixnet"
)

type Ledger struct {
	executor *contract.Executor
}

func New(executor *contract.Executor) *Ledger {
	return &Ledger{executor}
}

// Amount is a balance of the ledger in reward denomination units.
type Amount struct {
	Amount mixnet.Decimal `json:"amount"`
}

func (l *Ledger) handleGetInterval(w http.ResponseWriter, _ *http.Request) error {
	var details *contract.IntervalDetails
	if err := l.executor.View(func(c *contract.Contract, env contract.Env) (err error) {
		details, err = c.GetCurrentInterval(env)
		return
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, details)
}

func (l *Ledger) handleGetParams(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteView(w, l.executor, func(c *contract.Contract) (any, error) {
		return c.GetRewardingParams()
	})
}

func (l *Ledger) handleGetPool(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteView(w, l.executor, func(c *contract.Contract) (any, error) {
		pool, err := c.GetRewardPool()
		return Amount{pool}, err
	})
}

func (l *Ledger) handleGetSupply(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteView(w, l.executor, func(c *contract.Contract) (any, error) {
		supply, err := c.GetStakingSupply()
		return Amount{supply}, err
	})
}

func (l *Ledger) handleGetRewardedSet(w http.ResponseWriter, req *http.Request) error {
	after, err := utils.StartAfterNode(req)
	if err != nil {
		return err
	}
	limit, err := utils.PageLimit(req)
	if err != nil {
		return err
	}
	return utils.WriteView(w, l.executor, func(c *contract.Contract) (any, error) {
		return c.GetRewardedSet(after, limit)
	})
}

func (l *Ledger) handleGetEpochEvents(w http.ResponseWriter, req *http.Request) error {
	after, err := utils.StartAfterSeq(req)
	if err != nil {
		return err
	}
	limit, err := utils.PageLimit(req)
	if err != nil {
		return err
	}
	return utils.WriteView(w, l.executor, func(c *contract.Contract) (any, error) {
		return c.GetPendingEpochEvents(after, limit)
	})
}

func (l *Ledger) handleGetIntervalEvents(w http.ResponseWriter, req *http.Request) error {
	after, err := utils.StartAfterSeq(req)
	if err != nil {
		return err
	}
	limit, err := utils.PageLimit(req)
	if err != nil {
		return err
	}
	return utils.WriteView(w, l.executor, func(c *contract.Contract) (any, error) {
		return c.GetPendingIntervalEvents(after, limit)
	})
}

func (l *Ledger) handleGetState(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteView(w, l.executor, func(c *contract.Contract) (any, error) {
		return c.GetContractState()
	})
}

func (l *Ledger) handleGetVersion(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteView(w, l.executor, func(c *contract.Contract) (any, error) {
		return c.GetContractVersion(), nil
	})
}

func (l *Ledger) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	routes := []struct {
		path    string
		handler utils.HandlerFunc
	}{
		{"/interval", l.handleGetInterval},
		{"/params", l.handleGetParams},
		{"/pool", l.handleGetPool},
		{"/supply", l.handleGetSupply},
		{"/rewarded-set", l.handleGetRewardedSet},
		{"/events/epoch", l.handleGetEpochEvents},
		{"/events/interval", l.handleGetIntervalEvents},
		{"/state", l.handleGetState},
		{"/version", l.handleGetVersion},
	}
	for _, r := range routes {
		sub.Path(r.path).
			Methods(http.MethodGet).
			Name("GET " + pathPrefix + r.path).
			HandlerFunc(utils.WrapHandlerFunc(r.handler))
	}
}
