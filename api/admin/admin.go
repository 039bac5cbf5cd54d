// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/mixledger/ledger/api/admin/apilogs"
	healthAPI "github.com/mixledger/ledger/api/admin/health"
	"github.com/mixledger/ledger/api/admin/loglevel"
	"github.com/mixledger/ledger/contract"
)

func New(logLevel *slog.LevelVar, apiLogsToggle *atomic.Bool, executor *contract.Executor) http.HandlerFunc {
	router := mux.NewRouter()
	sub := router.PathPrefix("/admin").Subrouter()

	loglevel.New(logLevel).Mount(sub, "/loglevel")
	apilogs.New(apiLogsToggle).Mount(sub, "/apilogs")
	healthAPI.New(executor).Mount(sub, "/health")

	handler := handlers.CompressHandler(router)

	return handler.ServeHTTP
}
