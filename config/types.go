package config

// GenesisAccount receives the genesis coinbase
type GenesisAccount struct {
	Address string `yaml:"address"`
	Data    string `yaml:"data"`
	Reward  uint64 `yaml:"reward"`
}

// GenesisConfig holds the configuration from genesis.yml
type GenesisConfig struct {
	Genesis GenesisAccount `yaml:"genesis"`
}

// ConfigFile is the top-level structure for genesis.yml
type ConfigFile struct {
	Config GenesisConfig `yaml:"config"`
}

// StoreConfig is the [store] section of node.ini
type StoreConfig struct {
	Type      string `ini:"type"`
	Directory string `ini:"directory"`
	RedisAddr string `ini:"redis_addr"`
	RedisDB   int    `ini:"redis_db"`
}

// MiningConfig is the [mining] section of node.ini
type MiningConfig struct {
	Difficulty  int    `ini:"difficulty"`
	Workers     int    `ini:"workers"`
	BlockReward uint64 `ini:"block_reward"`
}

// CacheConfig is the [cache] section of node.ini
type CacheConfig struct {
	Blocks int `ini:"blocks"`
}

// NodeConfig is everything a command needs to open the chain
type NodeConfig struct {
	Store   StoreConfig
	Mining  MiningConfig
	Cache   CacheConfig
	Genesis GenesisAccount
}
