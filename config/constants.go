package config

const (
	DefaultConfigPath  = "config/node.ini"
	DefaultGenesisPath = "config/genesis.yml"

	DefaultStoreType      = "leveldb"
	DefaultDataDir        = "./data/blocks"
	DefaultRedisAddr      = "localhost:6379"
	DefaultDifficulty     = 4
	DefaultWorkers        = 1
	DefaultBlockReward    = 100
	DefaultCacheBlocks    = 256
	DefaultGenesisAddress = "genesis"

	// MaxDifficulty is the number of hex characters in a block hash.
	MaxDifficulty = 64
)
