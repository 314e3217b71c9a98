package config

import (
	stderrors "errors"
	"io/fs"
	"os"

	"github.com/mezonai/powchain/errors"
	"github.com/mezonai/powchain/logx"
	"github.com/mezonai/powchain/store"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Default returns the configuration used when no files are present
func Default() *NodeConfig {
	return &NodeConfig{
		Store: StoreConfig{
			Type:      DefaultStoreType,
			Directory: DefaultDataDir,
			RedisAddr: DefaultRedisAddr,
		},
		Mining: MiningConfig{
			Difficulty:  DefaultDifficulty,
			Workers:     DefaultWorkers,
			BlockReward: DefaultBlockReward,
		},
		Cache: CacheConfig{Blocks: DefaultCacheBlocks},
		Genesis: GenesisAccount{
			Address: DefaultGenesisAddress,
			Reward:  DefaultBlockReward,
		},
	}
}

// LoadGenesisConfig reads and parses the genesis.yml file
func LoadGenesisConfig(path string) (*GenesisConfig, error) {
	logx.Debug("CONFIG", "LoadGenesisConfig called with path: ", path)
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var cfgFile ConfigFile
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfgFile); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "cannot decode %s", path)
	}
	logx.Info("CONFIG", "Loaded genesis config: address=", cfgFile.Config.Genesis.Address, " reward=", cfgFile.Config.Genesis.Reward)
	return &cfgFile.Config, nil
}

// LoadNodeConfig overlays node.ini and genesis.yml on the defaults. A
// missing file keeps the defaults for its part; a malformed one is an error.
func LoadNodeConfig(iniPath, genesisPath string) (*NodeConfig, error) {
	cfg := Default()

	if iniPath != "" {
		file, err := ini.Load(iniPath)
		switch {
		case stderrors.Is(err, fs.ErrNotExist):
			logx.Warn("CONFIG", "No node config at ", iniPath, ", using defaults")
		case err != nil:
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "cannot load %s", iniPath)
		default:
			if err := mapSections(file, cfg); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "cannot map %s", iniPath)
			}
		}
	}

	if genesisPath != "" {
		genesis, err := LoadGenesisConfig(genesisPath)
		switch {
		case stderrors.Is(err, fs.ErrNotExist):
			logx.Warn("CONFIG", "No genesis config at ", genesisPath, ", using defaults")
		case err != nil:
			return nil, err
		default:
			if genesis.Genesis.Address != "" {
				cfg.Genesis.Address = genesis.Genesis.Address
			}
			cfg.Genesis.Data = genesis.Genesis.Data
			if genesis.Genesis.Reward != 0 {
				cfg.Genesis.Reward = genesis.Genesis.Reward
			}
		}
	}

	return cfg, nil
}

// mapSections only overwrites keys present in the file.
func mapSections(file *ini.File, cfg *NodeConfig) error {
	if err := file.Section("store").MapTo(&cfg.Store); err != nil {
		return err
	}
	if err := file.Section("mining").MapTo(&cfg.Mining); err != nil {
		return err
	}
	return file.Section("cache").MapTo(&cfg.Cache)
}

// Validate rejects settings the chain cannot run with
func (c *NodeConfig) Validate() error {
	if c.Mining.Difficulty < 1 || c.Mining.Difficulty > MaxDifficulty {
		return errors.Newf(errors.ErrCodeInvalidConfig, "difficulty must be between 1 and %d, got %d", MaxDifficulty, c.Mining.Difficulty)
	}
	if c.Mining.Workers < 1 {
		return errors.Newf(errors.ErrCodeInvalidConfig, "workers must be at least 1, got %d", c.Mining.Workers)
	}
	if c.Cache.Blocks < 0 {
		return errors.Newf(errors.ErrCodeInvalidConfig, "cache size cannot be negative, got %d", c.Cache.Blocks)
	}
	if c.Genesis.Address == "" && c.Genesis.Data == "" {
		return errors.NewError(errors.ErrCodeInvalidConfig, "genesis needs an address or data")
	}
	sc := c.StoreConfig()
	return sc.Validate()
}

// StoreConfig converts the [store] section for store.Open
func (c *NodeConfig) StoreConfig() *store.StoreConfig {
	return &store.StoreConfig{
		Type:      store.StoreType(c.Store.Type),
		Directory: c.Store.Directory,
		RedisAddr: c.Store.RedisAddr,
		RedisDB:   c.Store.RedisDB,
	}
}

// StoreOptions converts mining, cache and genesis settings for store.Open
func (c *NodeConfig) StoreOptions() store.Options {
	opts := store.DefaultOptions()
	opts.Difficulty = uint32(c.Mining.Difficulty)
	opts.Workers = c.Mining.Workers
	opts.CacheSize = c.Cache.Blocks
	opts.GenesisAddress = c.Genesis.Address
	opts.GenesisData = c.Genesis.Data
	opts.GenesisReward = c.Genesis.Reward
	return opts
}
