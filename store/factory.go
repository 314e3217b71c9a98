package store

import (
	"fmt"

	"github.com/mezonai/powchain/db"
	"github.com/mezonai/powchain/errors"
)

// StoreType represents the key-value engine behind a ChainStore
type StoreType string

const (
	// LevelDBStoreType uses the LevelDB implementation
	LevelDBStoreType StoreType = "leveldb"

	// BoltStoreType uses a single bbolt bucket
	BoltStoreType StoreType = "bolt"

	// RocksDBStoreType uses the RocksDB implementation (requires -tags rocksdb)
	RocksDBStoreType StoreType = "rocksdb"

	// RedisStoreType uses the Redis implementation
	RedisStoreType StoreType = "redis"
)

// StoreConfig holds configuration for opening the backing engine
type StoreConfig struct {
	// Type specifies which engine to use
	Type StoreType `json:"type" yaml:"type" ini:"type"`

	// Directory is the database directory path (for file-based databases)
	Directory string `json:"directory" yaml:"directory" ini:"directory"`

	// RedisAddr and RedisDB are only read for the redis type
	RedisAddr string `json:"redis_addr" yaml:"redis_addr" ini:"redis_addr"`
	RedisDB   int    `json:"redis_db" yaml:"redis_db" ini:"redis_db"`
}

// IsSupported reports whether t names a known engine
func (t StoreType) IsSupported() bool {
	switch t {
	case LevelDBStoreType, BoltStoreType, RocksDBStoreType, RedisStoreType:
		return true
	default:
		return false
	}
}

// Validate validates the store configuration
func (sc *StoreConfig) Validate() error {
	if sc.Type == "" {
		return errors.NewError(errors.ErrCodeInvalidConfig, "store type cannot be empty")
	}
	if !sc.Type.IsSupported() {
		return errors.Newf(errors.ErrCodeInvalidConfig, "unsupported store type: %s", sc.Type)
	}

	if sc.Type == RedisStoreType {
		if sc.RedisAddr == "" {
			return errors.NewError(errors.ErrCodeInvalidConfig, "redis address cannot be empty")
		}
		return nil
	}

	if sc.Directory == "" {
		return errors.NewError(errors.ErrCodeInvalidConfig, "directory cannot be empty")
	}
	return nil
}

// CreateProvider opens the engine named by config. Any failure to open it is
// reported as ErrStoreUnavailable.
func CreateProvider(config *StoreConfig) (db.DatabaseProvider, error) {
	if config == nil {
		return nil, errors.NewError(errors.ErrCodeInvalidConfig, "config cannot be nil")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		provider db.DatabaseProvider
		err      error
	)
	switch config.Type {
	case LevelDBStoreType:
		provider, err = db.NewLevelDBProvider(config.Directory)
	case BoltStoreType:
		provider, err = db.NewBoltProvider(config.Directory)
	case RocksDBStoreType:
		provider, err = db.NewRocksDBProvider(config.Directory)
	case RedisStoreType:
		provider, err = db.NewRedisProvider(config.RedisAddr, config.RedisDB)
	default:
		err = fmt.Errorf("unsupported store type: %s", config.Type)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "cannot open %s store", config.Type)
	}
	return provider, nil
}
