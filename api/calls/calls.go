// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package calls

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/mixledger/ledger/api/utils"
	"github.com/mixledger/ledger/contract"
	"github.com/mixledger/ledger/log"
	"github.com/mixledger/ledger/mixnet"
)

var logger = log.WithContext("pkg", "calls")

// ExecuteRequest runs msg as if sender had signed it and attached funds.
// The sender is taken on trust, so the route is only mounted on development nodes.
type ExecuteRequest struct {
	Sender mixnet.Address      `json:"sender"`
	Funds  mixnet.Coins        `json:"funds,omitempty"`
	Msg    contract.ExecuteMsg `json:"msg"`
}

type ExecuteResult struct {
	Env      contract.Env       `json:"env"`
	Messages []contract.BankMsg `json:"messages"`
	Events   []contract.Event   `json:"events"`
}

type Calls struct {
	executor     *contract.Executor
	allowExecute bool
}

func New(executor *contract.Executor, allowExecute bool) *Calls {
	return &Calls{executor, allowExecute}
}

func (c *Calls) handleExecute(w http.ResponseWriter, req *http.Request) error {
	var body ExecuteRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if _, err := mixnet.ParseAddress(string(body.Sender)); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "sender"))
	}
	name, err := body.Msg.Name()
	if err != nil {
		return err
	}
	logger.Debug("execute call received", "msg", name, "sender", body.Sender)

	resp, err := c.executor.Execute(contract.MessageInfo{Sender: body.Sender, Funds: body.Funds}, &body.Msg)
	if err != nil {
		return err
	}
	env, err := c.executor.Env()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, ExecuteResult{Env: env, Messages: resp.Messages, Events: resp.Events})
}

func (c *Calls) handleQuery(w http.ResponseWriter, req *http.Request) error {
	var msg contract.QueryMsg
	if err := utils.ParseJSON(req.Body, &msg); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	out, err := c.executor.Query(&msg)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, out)
}

func (c *Calls) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/query").
		Methods(http.MethodPost).
		Name("POST /calls/query").
		HandlerFunc(utils.WrapHandlerFunc(c.handleQuery))
	if c.allowExecute {
		sub.Path("/execute").
			Methods(http.MethodPost).
			Name("POST /calls/execute").
			HandlerFunc(utils.WrapHandlerFunc(c.handleExecute))
	}
}
