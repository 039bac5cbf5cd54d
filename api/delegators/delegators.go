// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegators

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/mixledger/ledger/api/utils"
	"github.com/mixledger/ledger/contract"
	"github.com/mixledger/ledger/mixnet"
)

type Delegators struct {
	executor *contract.Executor
}

func New(executor *contract.Executor) *Delegators {
	return &Delegators{executor}
}

// proxyParam reads the optional proxy the delegation was made through.
func proxyParam(req *http.Request) (mixnet.Address, error) {
	s := req.URL.Query().Get("proxy")
	if s == "" {
		return "", nil
	}
	proxy, err := mixnet.ParseAddress(s)
	if err != nil {
		return "", utils.BadRequest(errors.WithMessage(err, "proxy"))
	}
	return proxy, nil
}

func (d *Delegators) handleGetDelegations(w http.ResponseWriter, req *http.Request) error {
	owner, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	limit, err := utils.PageLimit(req)
	if err != nil {
		return err
	}
	after := utils.StartAfterCursor(req)
	return utils.WriteView(w, d.executor, func(c *contract.Contract) (any, error) {
		return c.GetDelegatorDelegations(owner, after, limit)
	})
}

func (d *Delegators) handleGetDelegation(w http.ResponseWriter, req *http.Request) error {
	owner, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	id, err := utils.NodeIDVar(req, "id")
	if err != nil {
		return err
	}
	proxy, err := proxyParam(req)
	if err != nil {
		return err
	}
	return utils.WriteView(w, d.executor, func(c *contract.Contract) (any, error) {
		delegation, err := c.GetDelegationDetails(id, owner, proxy)
		if err != nil || delegation == nil {
			return nil, utils.OrNotFound(err, "no delegation of %v on node %v", owner, id)
		}
		return delegation, nil
	})
}

func (d *Delegators) handleGetPendingReward(w http.ResponseWriter, req *http.Request) error {
	owner, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	id, err := utils.NodeIDVar(req, "id")
	if err != nil {
		return err
	}
	proxy, err := proxyParam(req)
	if err != nil {
		return err
	}
	return utils.WriteView(w, d.executor, func(c *contract.Contract) (any, error) {
		return c.GetPendingDelegatorReward(id, owner, proxy)
	})
}

func (d *Delegators) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}/delegations").
		Methods(http.MethodGet).
		Name("GET /delegators/{address}/delegations").
		HandlerFunc(utils.WrapHandlerFunc(d.handleGetDelegations))
	sub.Path("/{address}/delegations/{id:[0-9]+}").
		Methods(http.MethodGet).
		Name("GET /delegators/{address}/delegations/{id}").
		HandlerFunc(utils.WrapHandlerFunc(d.handleGetDelegation))
	sub.Path("/{address}/rewards/{id:[0-9]+}").
		Methods(http.MethodGet).
		Name("GET /delegators/{address}/rewards/{id}").
		HandlerFunc(utils.WrapHandlerFunc(d.handleGetPendingReward))
}
