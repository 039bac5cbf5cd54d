// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/mixledger/ledger/api"
	"github.com/mixledger/ledger/cmd/mixnetd/httpserver"
	"github.com/mixledger/ledger/cmd/mixnetd/solo"
	"github.com/mixledger/ledger/contract"
	"github.com/mixledger/ledger/genesis"
	"github.com/mixledger/ledger/log"
	"github.com/mixledger/ledger/lvldb"
	"github.com/mixledger/ledger/metrics"
	"github.com/mixledger/ledger/mixnet"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "mixnetd")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "mixnetd",
		Usage:     "Mixnet epoch and reward ledger",
		Copyright: "2025 The VeChainThor developers",
		Flags: []cli.Flag{
			genesisFlag,
			dataDirFlag,
			cacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiSlowQueriesThresholdFlag,
			enableAPILogsFlag,
			apiAllowExecuteFlag,
			verbosityFlag,
			jsonLogsFlag,
			pprofFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "solo",
				Usage: "standalone ledger that advances its own epochs, for test & dev",
				Flags: []cli.Flag{
					genesisFlag,
					dataDirFlag,
					cacheFlag,
					persistFlag,
					bondDevNodesFlag,
					performanceFlag,
					pledgeFlag,
					apiAddrFlag,
					apiCorsFlag,
					apiTimeoutFlag,
					apiSlowQueriesThresholdFlag,
					enableAPILogsFlag,
					verbosityFlag,
					jsonLogsFlag,
					pprofFlag,
					enableMetricsFlag,
					metricsAddrFlag,
					enableAdminFlag,
					adminAddrFlag,
				},
				Action: soloAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// services starts the http servers shared by both modes. The returned
// function stops them.
func services(
	ctx *cli.Context,
	logLevel *slog.LevelVar,
	executor *contract.Executor,
	gene *genesis.Genesis,
	allowExecute bool,
) (string, func(), error) {
	var stops []func()
	stopAll := func() {
		for i := len(stops) - 1; i >= 0; i-- {
			stops[i]()
		}
	}

	metricsEnabled := ctx.Bool(enableMetricsFlag.Name)
	if metricsEnabled {
		metrics.InitializePrometheusMetrics()
		url, stop, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return "", nil, err
		}
		stops = append(stops, func() { logger.Info("stopping metrics server..."); stop() })
		logger.Info("metrics server started", "url", url)
	}

	apiLogs := &atomic.Bool{}
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	if ctx.Bool(enableAdminFlag.Name) {
		url, stop, err := httpserver.StartAdminServer(ctx.String(adminAddrFlag.Name), logLevel, executor, apiLogs)
		if err != nil {
			stopAll()
			return "", nil, err
		}
		stops = append(stops, func() { logger.Info("stopping admin server..."); stop() })
		logger.Info("admin server started", "url", url)
	}

	handler := api.New(executor, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		PprofOn:              ctx.Bool(pprofFlag.Name),
		EnableMetrics:        metricsEnabled,
		EnableReqLogger:      apiLogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		AllowExecute:         allowExecute,
	})
	apiURL, stop, err := httpserver.StartAPIServer(
		ctx.String(apiAddrFlag.Name),
		handler,
		gene.ID(),
		time.Duration(ctx.Uint64(apiTimeoutFlag.Name))*time.Millisecond,
	)
	if err != nil {
		stopAll()
		return "", nil, err
	}
	stops = append(stops, func() { logger.Info("stopping API server..."); stop() })
	return apiURL, stopAll, nil
}

func openExecutor(db *lvldb.LevelDB, gene *genesis.Genesis) (*contract.Executor, error) {
	executor := contract.NewExecutor(db, contract.Ed25519Verifier{}, nil)
	if _, err := gene.Apply(executor); err != nil {
		return nil, err
	}
	return executor, nil
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	logLevel := initLogger(int(ctx.Uint64(verbosityFlag.Name)), ctx.Bool(jsonLogsFlag.Name))
	defer func() { logger.Info("exited") }()

	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}
	instanceDir, err := makeInstanceDir(ctx, gene)
	if err != nil {
		return err
	}
	mainDB, err := openMainDB(ctx, instanceDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()

	executor, err := openExecutor(mainDB, gene)
	if err != nil {
		return err
	}

	apiURL, stop, err := services(ctx, logLevel, executor, gene, ctx.Bool(apiAllowExecuteFlag.Name))
	if err != nil {
		return err
	}
	defer stop()

	printStartupMessage(gene, executor, instanceDir, apiURL)

	<-exitSignal.Done()
	return nil
}

func soloAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	logLevel := initLogger(int(ctx.Uint64(verbosityFlag.Name)), ctx.Bool(jsonLogsFlag.Name))
	defer func() { logger.Info("exited") }()

	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}
	performance, err := mixnet.ParseDecimal(ctx.String(performanceFlag.Name))
	if err != nil || !performance.IsPercent() {
		return fmt.Errorf("invalid -%s %q", performanceFlag.Name, ctx.String(performanceFlag.Name))
	}

	var (
		mainDB      *lvldb.LevelDB
		instanceDir string
	)
	if ctx.Bool(persistFlag.Name) {
		if instanceDir, err = makeInstanceDir(ctx, gene); err != nil {
			return err
		}
		if mainDB, err = openMainDB(ctx, instanceDir); err != nil {
			return err
		}
	} else {
		instanceDir = "Memory"
		if mainDB, err = lvldb.NewMem(); err != nil {
			return errors.Wrap(err, "open ledger database")
		}
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()

	executor, err := openExecutor(mainDB, gene)
	if err != nil {
		return err
	}

	// the solo node is the only validator, so trusted calls are fine
	apiURL, stop, err := services(ctx, logLevel, executor, gene, true)
	if err != nil {
		return err
	}
	defer stop()

	soloContext := solo.New(executor, gene.Instantiate.RewardingValidatorAddress, solo.Options{
		Performance: performance,
		Pledge:      ctx.Uint64(pledgeFlag.Name),
	})
	if ctx.Bool(bondDevNodesFlag.Name) {
		if err := soloContext.BondDevNodes(genesis.DevAccounts()); err != nil {
			return err
		}
	}

	printSoloStartupMessage(gene, executor, instanceDir, apiURL)

	return soloContext.Run(exitSignal)
}
