// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/mixledger/ledger/contract"
)

// WriteView runs fn against a read only snapshot of the ledger and responds its result.
func WriteView(w http.ResponseWriter, executor *contract.Executor, fn func(c *contract.Contract) (any, error)) error {
	var out any
	if err := executor.View(func(c *contract.Contract, _ contract.Env) (err error) {
		out, err = fn(c)
		return
	}); err != nil {
		return err
	}
	return WriteJSON(w, out)
}

// OrNotFound passes err through, or reports a missing record when err is nil.
func OrNotFound(err error, format string, args ...any) error {
	if err != nil {
		return err
	}
	return NotFound(errors.Errorf(format, args...))
}
