// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/mixledger/ledger/api/calls"
	"github.com/mixledger/ledger/api/delegators"
	"github.com/mixledger/ledger/api/ledger"
	"github.com/mixledger/ledger/api/nodes"
	"github.com/mixledger/ledger/contract"
	"github.com/mixledger/ledger/log"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins string
	PprofOn        bool
	EnableMetrics  bool
	// EnableReqLogger may be toggled at runtime through the admin api.
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	// AllowExecute exposes state changing calls with a trusted sender. Development only.
	AllowExecute bool
}

// New return api router
func New(executor *contract.Executor, opts Options) http.HandlerFunc {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	nodes.New(executor).
		Mount(router, "/nodes")
	delegators.New(executor).
		Mount(router, "/delegators")
	ledger.New(executor).
		Mount(router, "/ledger")
	calls.New(executor, opts.AllowExecute).
		Mount(router, "/calls")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
	)(handler)

	if opts.EnableReqLogger != nil {
		handler = RequestLoggerMiddleware(logger, opts.EnableReqLogger, opts.SlowQueriesThreshold)(handler)
	}

	return handler.ServeHTTP
}
