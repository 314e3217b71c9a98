package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mezonai/powchain/errors"
	"github.com/mezonai/powchain/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMissingFilesGiveDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadNodeConfig(filepath.Join(dir, "node.ini"), filepath.Join(dir, "genesis.yml"))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, store.LevelDBStoreType, cfg.StoreConfig().Type)
	assert.Equal(t, DefaultDataDir, cfg.StoreConfig().Directory)
}

func TestLoadNodeConfig(t *testing.T) {
	dir := t.TempDir()
	iniPath := writeFile(t, dir, "node.ini", `
[store]
type = bolt
directory = /var/lib/powchain

[mining]
difficulty = 3
workers = 4

[cache]
blocks = 64
`)
	genesisPath := writeFile(t, dir, "genesis.yml", `
config:
  genesis:
    address: alice
    data: "The Times 03/Jan/2009"
    reward: 50
`)

	cfg, err := LoadNodeConfig(iniPath, genesisPath)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "bolt", cfg.Store.Type)
	assert.Equal(t, "/var/lib/powchain", cfg.Store.Directory)
	assert.Equal(t, 3, cfg.Mining.Difficulty)
	assert.Equal(t, 4, cfg.Mining.Workers)
	// untouched keys keep their defaults
	assert.Equal(t, uint64(DefaultBlockReward), cfg.Mining.BlockReward)
	assert.Equal(t, 64, cfg.Cache.Blocks)

	opts := cfg.StoreOptions()
	assert.Equal(t, uint32(3), opts.Difficulty)
	assert.Equal(t, 4, opts.Workers)
	assert.Equal(t, 64, opts.CacheSize)
	assert.Equal(t, "alice", opts.GenesisAddress)
	assert.Equal(t, "The Times 03/Jan/2009", opts.GenesisData)
	assert.Equal(t, uint64(50), opts.GenesisReward)
}

func TestMalformedGenesisIsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	genesisPath := writeFile(t, dir, "genesis.yml", "config: [unterminated")

	_, err := LoadNodeConfig("", genesisPath)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *NodeConfig)
	}{
		{"zero difficulty", func(c *NodeConfig) { c.Mining.Difficulty = 0 }},
		{"difficulty past hash length", func(c *NodeConfig) { c.Mining.Difficulty = MaxDifficulty + 1 }},
		{"no workers", func(c *NodeConfig) { c.Mining.Workers = 0 }},
		{"negative cache", func(c *NodeConfig) { c.Cache.Blocks = -1 }},
		{"unknown store", func(c *NodeConfig) { c.Store.Type = "sqlite" }},
		{"empty genesis", func(c *NodeConfig) { c.Genesis = GenesisAccount{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
		})
	}
}
