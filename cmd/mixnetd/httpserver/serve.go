// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"net"
	"net/http"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/mixledger/ledger/log"
)

var logger = log.WithContext("pkg", "httpserver")

// serve runs srv on listener in the background. The returned func closes the
// server and waits for it to exit.
func serve(name string, srv *http.Server, listener net.Listener) func() {
	var g errgroup.Group
	g.Go(func() error {
		if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	return func() {
		srv.Close()
		if err := g.Wait(); err != nil {
			logger.Warn("server exited abnormally", "server", name, "err", err)
		}
	}
}
