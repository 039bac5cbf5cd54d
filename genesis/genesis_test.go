// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixledger/ledger/contract"
	"github.com/mixledger/ledger/genesis"
	"github.com/mixledger/ledger/lvldb"
	"github.com/mixledger/ledger/mixnet"
)

const customYAML = `
name: testnet
owner: n1owner
instantiate:
  rewarding_validator_address: n1validator
  vesting_contract_address: n1vesting
  rewarding_denom: unym
  epochs_in_interval: 720
  epoch_duration_secs: 3600
  minimum_pledge: 100000000
  rewarding_params:
    initial_reward_pool: 250000000000000
    initial_staking_supply: "100000000000000"
    sybil_resistance: 0.3
    active_set_work_factor: 10
    interval_pool_emission: 0.02
    rewarded_set_size: 240
    active_set_size: 120
`

func writeFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newExecutor(t *testing.T) *contract.Executor {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return contract.NewExecutor(db, nil, func() time.Time { return time.Unix(1_700_000_000, 0) })
}

func TestLoad(t *testing.T) {
	gene, err := genesis.Load(writeFile(t, customYAML))
	require.NoError(t, err)

	assert.Equal(t, "testnet", gene.Name)
	assert.Equal(t, mixnet.Address("n1owner"), gene.Owner)
	assert.Equal(t, uint32(720), gene.Instantiate.EpochsInInterval)
	assert.Equal(t, "0.3", gene.Instantiate.RewardingParams.SybilResistance.String())
	assert.Equal(t, "250000000000000", gene.Instantiate.RewardingParams.InitialRewardPool.String())
	assert.Equal(t, uint32(120), gene.Instantiate.RewardingParams.ActiveSetSize)

	again, err := genesis.Load(writeFile(t, customYAML))
	require.NoError(t, err)
	assert.Equal(t, gene.ID(), again.ID())
	assert.NotEqual(t, gene.ID(), genesis.NewDevnet().ID())
}

func TestLoad_Invalid(t *testing.T) {
	_, err := genesis.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = genesis.Load(writeFile(t, customYAML+"unexpected: 1\n"))
	assert.Error(t, err, "unknown keys are rejected")

	_, err = genesis.Load(writeFile(t, "name: x\ninstantiate:\n  rewarding_denom: unym\n"))
	assert.Error(t, err, "an owner is required")

	_, err = genesis.Load(writeFile(t, "owner: n1owner\ninstantiate:\n  rewarding_params:\n    sybil_resistance: lots\n"))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	x := newExecutor(t)
	gene := genesis.NewDevnet()

	ok, err := gene.Apply(x)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = gene.Apply(x)
	require.NoError(t, err)
	assert.False(t, ok, "an instantiated store is left alone")

	out, err := x.Query(&contract.QueryMsg{GetContractState: &contract.EmptyQuery{}})
	require.NoError(t, err)
	assert.NotNil(t, out)
}

func TestDevAccounts(t *testing.T) {
	accs := genesis.DevAccounts()
	require.Len(t, accs, 10)
	assert.Equal(t, accs, genesis.DevAccounts(), "accounts are deterministic")

	seen := map[mixnet.Address]bool{}
	var verifier contract.Ed25519Verifier
	for _, a := range accs {
		_, err := mixnet.ParseAddress(string(a.Address))
		require.NoError(t, err)
		assert.False(t, seen[a.Address])
		seen[a.Address] = true
		assert.NoError(t, verifier.VerifyIdentity(a.Address, a.IdentityKey(), a.OwnerSignature()))
	}
}
