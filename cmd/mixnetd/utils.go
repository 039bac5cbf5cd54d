// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/mixledger/ledger/contract"
	"github.com/mixledger/ledger/genesis"
	"github.com/mixledger/ledger/log"
	"github.com/mixledger/ledger/lvldb"
)

func fatal(args ...any) {
	var w io.Writer
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		} else {
			w = io.MultiWriter(os.Stdout, os.Stderr)
		}
	}
	fmt.Fprint(w, "Fatal: ")
	fmt.Fprintln(w, args...)
	os.Exit(1)
}

func initLogger(lvl int, jsonLogs bool) *slog.LevelVar {
	var level slog.LevelVar
	level.Set(log.FromLegacyLevel(lvl))

	var handler slog.Handler
	if jsonLogs {
		handler = log.JSONHandlerWithLevel(os.Stdout, &level)
	} else {
		useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(os.Stderr, &level, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return &level
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		switch runtime.GOOS {
		case "darwin":
			return filepath.Join(home, "Library", "Application Support", "mixnet-ledger")
		case "windows":
			return filepath.Join(home, "AppData", "Roaming", "mixnet-ledger")
		default:
			return filepath.Join(home, ".mixnet-ledger")
		}
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func selectGenesis(ctx *cli.Context) (*genesis.Genesis, error) {
	if path := ctx.String(genesisFlag.Name); path != "" {
		return genesis.Load(path)
	}
	return genesis.NewDevnet(), nil
}

func makeInstanceDir(ctx *cli.Context, gene *genesis.Genesis) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", fmt.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	id := gene.ID()
	instanceDir := filepath.Join(dataDir, fmt.Sprintf("instance-%x", id[24:]))
	if err := os.MkdirAll(instanceDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create instance dir [%v]", instanceDir)
	}
	return instanceDir, nil
}

func openMainDB(ctx *cli.Context, instanceDir string) (*lvldb.LevelDB, error) {
	cacheMB := normalizeCacheSize(ctx.Int(cacheFlag.Name))
	logger.Debug("cache size(MB)", "size", cacheMB)

	fdCache := suggestFDCache()
	logger.Debug("fd cache", "n", fdCache)

	dir := filepath.Join(instanceDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              cacheMB,
		OpenFilesCacheCapacity: fdCache,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open ledger database [%v]", dir)
	}
	return db, nil
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 128 {
		sizeMB = 128
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		logger.Warn("failed to get total mem:", "err", err)
	} else {
		// limit to 1/2 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			logger.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		logger.Warn("failed to get fd limit", "err", err)
		return 16
	}
	if limit <= 1024 {
		logger.Warn("low fd limit, increase it if possible", "limit", limit)
	}

	n := limit / 2
	if n > 5120 {
		return 5120
	}
	return n
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func ledgerStatus(executor *contract.Executor) string {
	var status string
	err := executor.View(func(c *contract.Contract, env contract.Env) error {
		details, err := c.GetCurrentInterval(env)
		if err != nil {
			return err
		}
		status = fmt.Sprintf("#%v interval %v epoch %v (absolute %v)",
			env.BlockHeight, details.Interval.ID, details.Interval.CurrentEpochID, details.AbsoluteEpochID)
		return nil
	})
	if err != nil {
		return err.Error()
	}
	return status
}

func printStartupMessage(gene *genesis.Genesis, executor *contract.Executor, instanceDir, apiURL string) {
	fmt.Printf(`Starting %v
    Genesis      [ %v %v ]
    Ledger       [ %v ]
    Instance dir [ %v ]
    API portal   [ %v ]
`,
		"mixnetd/"+fullVersion(),
		gene.ID(), gene.Name,
		ledgerStatus(executor),
		instanceDir,
		apiURL)
}

func printSoloStartupMessage(gene *genesis.Genesis, executor *contract.Executor, instanceDir, apiURL string) {
	tableHead := `
┌──────────────────────────────────────────────┬──────────────────────────────────────────────┐
│                   Address                    │                 Identity Key                 │`
	tableContent := `
├──────────────────────────────────────────────┼──────────────────────────────────────────────┤
│ %-44v │ %-44v │`
	tableEnd := `
└──────────────────────────────────────────────┴──────────────────────────────────────────────┘`

	info := fmt.Sprintf(`Starting %v
    Genesis     [ %v %v ]
    Ledger      [ %v ]
    Validator   [ %v ]
    Data dir    [ %v ]
    API portal  [ %v ]`,
		"mixnetd solo/"+fullVersion(),
		gene.ID(), gene.Name,
		ledgerStatus(executor),
		gene.Instantiate.RewardingValidatorAddress,
		instanceDir,
		apiURL)

	info += tableHead
	for _, a := range genesis.DevAccounts() {
		info += fmt.Sprintf(tableContent, a.Address, a.IdentityKey())
	}
	info += tableEnd + "\r\n"

	fmt.Print(info)
}
