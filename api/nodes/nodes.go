// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package nodes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/mixledger/ledger/api/utils"
	"github.com/mixledger/ledger/cache"
	"github.com/mixledger/ledger/contract"
	"github.com/mixledger/ledger/contract/nodes"
	"github.com/mixledger/ledger/mixnet"
)

// unbondedCacheSize bounds the settled node records kept in memory.
const unbondedCacheSize = 1024

type Nodes struct {
	executor *contract.Executor
	// node ids are never reused, so a settled record never changes.
	unbonded *cache.LRU[mixnet.NodeID, *nodes.UnbondedNode]
}

func New(executor *contract.Executor) *Nodes {
	unbonded, _ := cache.NewLRU[mixnet.NodeID, *nodes.UnbondedNode](unbondedCacheSize)
	return &Nodes{executor, unbonded}
}

func (n *Nodes) handleGetNodes(w http.ResponseWriter, req *http.Request) error {
	after, err := utils.StartAfterNode(req)
	if err != nil {
		return err
	}
	limit, err := utils.PageLimit(req)
	if err != nil {
		return err
	}
	return utils.WriteView(w, n.executor, func(c *contract.Contract) (any, error) {
		return c.GetNodes(after, limit)
	})
}

func (n *Nodes) handleGetUnbondedNodes(w http.ResponseWriter, req *http.Request) error {
	after, err := utils.StartAfterNode(req)
	if err != nil {
		return err
	}
	limit, err := utils.PageLimit(req)
	if err != nil {
		return err
	}
	return utils.WriteView(w, n.executor, func(c *contract.Contract) (any, error) {
		return c.GetUnbondedNodes(after, limit)
	})
}

func (n *Nodes) handleGetUnbondedNode(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.NodeIDVar(req, "id")
	if err != nil {
		return err
	}
	node, found, err := n.unbonded.GetOrLoad(id, func(id mixnet.NodeID) (node *nodes.UnbondedNode, ok bool, err error) {
		err = n.executor.View(func(c *contract.Contract, _ contract.Env) (err error) {
			node, err = c.GetUnbondedNode(id)
			return
		})
		return node, node != nil, err
	})
	if err != nil || !found {
		return utils.OrNotFound(err, "no unbonded node %v", id)
	}
	return utils.WriteJSON(w, node)
}

func (n *Nodes) handleGetNode(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.NodeIDVar(req, "id")
	if err != nil {
		return err
	}
	return utils.WriteView(w, n.executor, func(c *contract.Contract) (any, error) {
		details, err := c.GetNodeDetails(id)
		if err != nil || details == nil {
			return nil, utils.OrNotFound(err, "no bonded node %v", id)
		}
		return details, nil
	})
}

func (n *Nodes) handleGetRewarding(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.NodeIDVar(req, "id")
	if err != nil {
		return err
	}
	return utils.WriteView(w, n.executor, func(c *contract.Contract) (any, error) {
		rewarding, err := c.GetNodeRewardingDetails(id)
		if err != nil || rewarding == nil {
			return nil, utils.OrNotFound(err, "no rewarding details for node %v", id)
		}
		return rewarding, nil
	})
}

func (n *Nodes) handleGetDelegations(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.NodeIDVar(req, "id")
	if err != nil {
		return err
	}
	limit, err := utils.PageLimit(req)
	if err != nil {
		return err
	}
	after := utils.StartAfterCursor(req)
	return utils.WriteView(w, n.executor, func(c *contract.Contract) (any, error) {
		return c.GetNodeDelegations(id, after, limit)
	})
}

func (n *Nodes) handleEstimateReward(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.NodeIDVar(req, "id")
	if err != nil {
		return err
	}
	performance := mixnet.One
	if s := req.URL.Query().Get("performance"); s != "" {
		if performance, err = mixnet.ParseDecimal(s); err != nil {
			return utils.BadRequest(errors.WithMessage(err, "performance"))
		}
	}
	return utils.WriteView(w, n.executor, func(c *contract.Contract) (any, error) {
		return c.GetEstimatedNodeReward(id, performance)
	})
}

func (n *Nodes) handleGetOwnedNode(w http.ResponseWriter, req *http.Request) error {
	owner, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	return utils.WriteView(w, n.executor, func(c *contract.Contract) (any, error) {
		return c.GetOwnedNode(owner)
	})
}

func (n *Nodes) handleGetOperatorReward(w http.ResponseWriter, req *http.Request) error {
	owner, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	return utils.WriteView(w, n.executor, func(c *contract.Contract) (any, error) {
		return c.GetPendingOperatorReward(owner)
	})
}

func (n *Nodes) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /nodes").
		HandlerFunc(utils.WrapHandlerFunc(n.handleGetNodes))
	sub.Path("/unbonded").
		Methods(http.MethodGet).
		Name("GET /nodes/unbonded").
		HandlerFunc(utils.WrapHandlerFunc(n.handleGetUnbondedNodes))
	sub.Path("/unbonded/{id:[0-9]+}").
		Methods(http.MethodGet).
		Name("GET /nodes/unbonded/{id}").
		HandlerFunc(utils.WrapHandlerFunc(n.handleGetUnbondedNode))
	sub.Path("/owned/{address}").
		Methods(http.MethodGet).
		Name("GET /nodes/owned/{address}").
		HandlerFunc(utils.WrapHandlerFunc(n.handleGetOwnedNode))
	sub.Path("/owned/{address}/reward").
		Methods(http.MethodGet).
		Name("GET /nodes/owned/{address}/reward").
		HandlerFunc(utils.WrapHandlerFunc(n.handleGetOperatorReward))
	sub.Path("/{id:[0-9]+}").
		Methods(http.MethodGet).
		Name("GET /nodes/{id}").
		HandlerFunc(utils.WrapHandlerFunc(n.handleGetNode))
	sub.Path("/{id:[0-9]+}/rewarding").
		Methods(http.MethodGet).
		Name("GET /nodes/{id}/rewarding").
		HandlerFunc(utils.WrapHandlerFunc(n.handleGetRewarding))
	sub.Path("/{id:[0-9]+}/delegations").
		Methods(http.MethodGet).
		Name("GET /nodes/{id}/delegations").
		HandlerFunc(utils.WrapHandlerFunc(n.handleGetDelegations))
	sub.Path("/{id:[0-9]+}/estimate").
		Methods(http.MethodGet).
		Name("GET /nodes/{id}/estimate").
		HandlerFunc(utils.WrapHandlerFunc(n.handleEstimateReward))
}
