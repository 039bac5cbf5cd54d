// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/mixledger/ledger/genesis"
)

func newContext(t *testing.T, args ...string) *cli.Context {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String(genesisFlag.Name, "", "")
	set.String(dataDirFlag.Name, "", "")
	set.Int(cacheFlag.Name, cacheFlag.Value, "")
	require.NoError(t, set.Parse(args))
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestSelectGenesis(t *testing.T) {
	gene, err := selectGenesis(newContext(t))
	require.NoError(t, err)
	assert.Equal(t, genesis.NewDevnet().ID(), gene.ID())

	_, err = selectGenesis(newContext(t, "-genesis", filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, err)
}

func TestInstanceDir(t *testing.T) {
	dataDir := t.TempDir()
	ctx := newContext(t, "-data-dir", dataDir)
	gene := genesis.NewDevnet()

	dir, err := makeInstanceDir(ctx, gene)
	require.NoError(t, err)
	again, err := makeInstanceDir(ctx, gene)
	require.NoError(t, err)
	assert.Equal(t, dir, again)
	assert.Equal(t, dataDir, filepath.Dir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	db, err := openMainDB(ctx, dir)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = makeInstanceDir(newContext(t), gene)
	assert.Error(t, err, "no data dir")
}

func TestNormalizeCacheSize(t *testing.T) {
	assert.LessOrEqual(t, normalizeCacheSize(1<<40), 1<<40)
	assert.Equal(t, normalizeCacheSize(1), normalizeCacheSize(128), "small caches are raised to the floor")
}

func TestSuggestFDCache(t *testing.T) {
	n := suggestFDCache()
	assert.Positive(t, n)
	assert.LessOrEqual(t, n, 5120)
}
