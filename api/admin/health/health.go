// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"github.com/mixledger/ledger/contract"
)

// Status reports whether epochs are being advanced on time.
type Status struct {
	Healthy            bool   `json:"healthy"`
	Instantiated       bool   `json:"instantiated"`
	BlockHeight        uint64 `json:"blockHeight"`
	AbsoluteEpochID    uint64 `json:"absoluteEpochId"`
	EpochOverdueSecs   uint64 `json:"epochOverdueSecs"`
	PendingEpochEvents uint64 `json:"pendingEpochEvents"`
}

type health struct {
	executor *contract.Executor
}

// status computes the health from committed state. An epoch may run over its
// end by one epoch length before the ledger is considered stalled.
func (h *health) status() (*Status, error) {
	ok, err := h.executor.IsInstantiated()
	if err != nil || !ok {
		return &Status{}, err
	}

	st := &Status{Instantiated: true}
	err = h.executor.View(func(c *contract.Contract, env contract.Env) error {
		details, err := c.GetCurrentInterval(env)
		if err != nil {
			return err
		}
		epochs, _, err := c.PendingEventCounts()
		if err != nil {
			return err
		}
		st.BlockHeight = env.BlockHeight
		st.AbsoluteEpochID = details.AbsoluteEpochID
		st.PendingEpochEvents = epochs
		if env.BlockTime > details.EpochEnd {
			st.EpochOverdueSecs = env.BlockTime - details.EpochEnd
		}
		st.Healthy = st.EpochOverdueSecs <= details.Interval.EpochLength
		return nil
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}
