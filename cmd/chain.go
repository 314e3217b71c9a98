package cmd

import (
	"github.com/mezonai/powchain/config"
	"github.com/mezonai/powchain/logx"
	"github.com/mezonai/powchain/store"
)

// loadConfiguration reads the files named by the root flags and applies the
// flag overrides on top.
func loadConfiguration() (*config.NodeConfig, error) {
	cfg, err := config.LoadNodeConfig(rootConfig.ConfigPath, rootConfig.GenesisPath)
	if err != nil {
		return nil, err
	}
	if rootConfig.DataDir != "" {
		cfg.Store.Directory = rootConfig.DataDir
	}
	if rootConfig.Database != "" {
		cfg.Store.Type = rootConfig.Database
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openChain opens (creating on first use) the chain described by the root
// flags. Callers close the returned store.
func openChain() (*store.ChainStore, *config.NodeConfig, error) {
	cfg, err := loadConfiguration()
	if err != nil {
		return nil, nil, err
	}

	cs, err := store.Open(cfg.StoreConfig(), cfg.StoreOptions())
	if err != nil {
		return nil, nil, err
	}
	logx.Info("CMD", "Chain opened: ", cfg.Store.Type, " at ", cfg.Store.Directory)
	return cs, cfg, nil
}

func closeChain(cs *store.ChainStore) {
	if err := cs.Close(); err != nil {
		logx.Error("CMD", "Failed to close chain:", err)
	}
}
