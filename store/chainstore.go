package store

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mezonai/powchain/block"
	"github.com/mezonai/powchain/db"
	"github.com/mezonai/powchain/errors"
	"github.com/mezonai/powchain/logx"
	"github.com/mezonai/powchain/monitoring"
	"github.com/mezonai/powchain/stringutil"
	"github.com/mezonai/powchain/transaction"
)

const (
	DefaultCacheSize      = 256
	DefaultGenesisAddress = "genesis"

	// minIndexedHashLen is the shortest height-index value treated as a real hash.
	minIndexedHashLen = 5
)

// Options tune mining and genesis creation for a ChainStore.
type Options struct {
	Difficulty uint32
	Workers    int
	CacheSize  int

	GenesisAddress string
	GenesisData    string
	GenesisReward  uint64

	// Clock stamps new blocks; time.Now when nil.
	Clock func() time.Time
}

func DefaultOptions() Options {
	return Options{
		Difficulty:     block.DefaultDifficulty,
		Workers:        1,
		CacheSize:      DefaultCacheSize,
		GenesisAddress: DefaultGenesisAddress,
		GenesisReward:  transaction.DefaultReward,
	}
}

// ChainStore persists a hash-linked chain of blocks on a DatabaseProvider.
//
// Layout: LAST and FIRST hold the tip and genesis hashes, every block is
// stored under its own hash, the decimal key of height h holds the hash of
// the block at h+1, and tx:<id> holds the hash of the block carrying that
// transaction.
//
// Append writes the new block, LAST, the height entry and the tx entries in
// one batch. On
// LevelDB, bbolt and RocksDB that batch is atomic. On Redis it is a
// MULTI/EXEC pipeline; if the connection drops before EXEC the new block is
// simply never written and the previous tip stays authoritative.
type ChainStore struct {
	provider db.DatabaseProvider
	txm      *db.DBTxManager
	miner    *block.Miner
	cache    *lru.Cache[string, []byte]

	mu          sync.RWMutex
	tipHash     string
	genesisHash string
}

// Open creates the provider described by config and opens a ChainStore on it.
func Open(config *StoreConfig, opts Options) (*ChainStore, error) {
	provider, err := CreateProvider(config)
	if err != nil {
		return nil, err
	}

	cs, err := NewChainStore(provider, opts)
	if err != nil {
		provider.Close()
		return nil, err
	}
	return cs, nil
}

// NewChainStore takes ownership of provider. If the store has no tip yet the
// genesis block is mined and persisted; otherwise only the pointers are read.
func NewChainStore(provider db.DatabaseProvider, opts Options) (*ChainStore, error) {
	if provider == nil {
		return nil, errors.NewError(errors.ErrCodeStoreUnavailable, "provider cannot be nil")
	}

	minerOpts := []block.MinerOption{block.WithWorkers(opts.Workers)}
	if opts.Clock != nil {
		minerOpts = append(minerOpts, block.WithClock(opts.Clock))
	}

	cs := &ChainStore{
		provider: provider,
		txm:      db.NewDBTxManager(provider),
		miner:    block.NewMiner(opts.Difficulty, minerOpts...),
	}

	if opts.CacheSize > 0 {
		cache, err := lru.New[string, []byte](opts.CacheSize)
		if err != nil {
			return nil, err
		}
		cs.cache = cache
	}

	last, err := provider.Get([]byte(KeyLast))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "cannot read %s", KeyLast)
	}
	if last == nil {
		if err := cs.createGenesis(opts); err != nil {
			return nil, err
		}
		return cs, nil
	}

	first, err := provider.Get([]byte(KeyFirst))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "cannot read %s", KeyFirst)
	}
	if first == nil {
		return nil, errors.Newf(errors.ErrCodeNotFound, "%s is set but %s is missing", KeyLast, KeyFirst)
	}

	cs.tipHash = string(last)
	cs.genesisHash = string(first)
	logx.Info("CHAIN", "Opened existing chain, tip=", stringutil.ShortHash(cs.tipHash))
	return cs, nil
}

func (cs *ChainStore) createGenesis(opts Options) error {
	coinbase, err := transaction.NewCoinbaseTX(opts.GenesisAddress, opts.GenesisData, opts.GenesisReward)
	if err != nil {
		return err
	}

	genesis, err := block.NewGenesisBlock(coinbase, cs.miner)
	if err != nil {
		return err
	}
	data, err := genesis.Serialize()
	if err != nil {
		return err
	}

	err = cs.txm.WithBatch(func(batch db.DatabaseBatch) error {
		batch.Put(blockKey(genesis.Hash), data)
		batch.Put([]byte(KeyFirst), []byte(genesis.Hash))
		batch.Put([]byte(KeyLast), []byte(genesis.Hash))
		putTxEntries(batch, genesis)
		return nil
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "cannot persist genesis block")
	}
	if err := cs.provider.Flush(); err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "cannot flush genesis block")
	}

	cs.tipHash = genesis.Hash
	cs.genesisHash = genesis.Hash
	cs.remember(genesis.Hash, data)
	monitoring.SetBlockHeight(0)
	logx.Info("CHAIN", "Created genesis block ", stringutil.ShortHash(genesis.Hash), " reward to ", opts.GenesisAddress)
	return nil
}

// Append mines txs on top of the current tip and persists the result.
//
// A transaction whose id is already on the chain, or that appears twice in
// txs, is refused with ErrInvalidTransaction before any mining happens.
func (cs *ChainStore) Append(txs []*transaction.Transaction) (*block.Block, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	tip, err := cs.readTip()
	if err != nil {
		return nil, err
	}
	if err := cs.checkUniqueIDs(txs); err != nil {
		return nil, err
	}

	now := cs.miner.Now()
	if now.UnixMilli() < tip.Timestamp {
		return nil, errors.Newf(errors.ErrCodeClock, "clock at %d ms is behind tip timestamp %d ms", now.UnixMilli(), tip.Timestamp)
	}

	started := time.Now()
	next, err := block.NewCandidate(txs, tip.Hash, tip.Height+1, cs.miner.Difficulty(), now)
	if err != nil {
		return nil, err
	}
	if err := cs.miner.Seal(next); err != nil {
		return nil, err
	}

	data, err := next.Serialize()
	if err != nil {
		return nil, err
	}

	err = cs.txm.WithBatch(func(batch db.DatabaseBatch) error {
		batch.Put(blockKey(next.Hash), data)
		batch.Put([]byte(KeyLast), []byte(next.Hash))
		batch.Put(heightKey(tip.Height), []byte(next.Hash))
		putTxEntries(batch, next)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "cannot persist block at height %d", next.Height)
	}

	cs.tipHash = next.Hash
	cs.remember(next.Hash, data)

	monitoring.SetBlockHeight(next.Height)
	monitoring.RecordBlockTime(time.Since(started))
	monitoring.RecordBlockSizeBytes(len(data))
	monitoring.RecordTxInBlock(len(next.Transactions))
	logx.Info("CHAIN", "Appended block height=", next.Height, " hash=", stringutil.ShortHash(next.Hash), " txs=", len(next.Transactions))
	return next, nil
}

func (cs *ChainStore) checkUniqueIDs(txs []*transaction.Transaction) error {
	seen := make(map[string]struct{}, len(txs))
	for _, tx := range txs {
		if tx == nil {
			continue
		}
		if _, dup := seen[tx.ID]; dup {
			return errors.Newf(errors.ErrCodeInvalidTransaction, "transaction %s appears twice in one block", tx.ID)
		}
		seen[tx.ID] = struct{}{}

		found, err := cs.HasTransaction(tx.ID)
		if err != nil {
			return err
		}
		if found {
			return errors.Newf(errors.ErrCodeInvalidTransaction, "transaction %s is already on the chain", tx.ID)
		}
	}
	return nil
}

func putTxEntries(batch db.DatabaseBatch, b *block.Block) {
	for _, tx := range b.Transactions {
		if tx != nil {
			batch.Put(txKey(tx.ID), []byte(b.Hash))
		}
	}
}

// HasTransaction reports whether a block on the chain carries id.
func (cs *ChainStore) HasTransaction(id string) (bool, error) {
	found, err := cs.provider.Has(txKey(id))
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "cannot read tx index for %s", id)
	}
	return found, nil
}

// readTip resolves LAST. Unlike GetTip, a missing tip is an error here.
func (cs *ChainStore) readTip() (*block.Block, error) {
	last, err := cs.provider.Get([]byte(KeyLast))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "cannot read %s", KeyLast)
	}
	if last == nil {
		return nil, errors.Newf(errors.ErrCodeNotFound, "no %s pointer", KeyLast)
	}

	tip, err := cs.GetByHash(string(last))
	if err != nil {
		return nil, err
	}
	if tip == nil {
		return nil, errors.Newf(errors.ErrCodeNotFound, "tip block %s is missing", string(last))
	}
	return tip, nil
}

// GetByHash returns (nil, nil) when hash is not stored and ErrCorrupt when
// the stored bytes do not decode.
func (cs *ChainStore) GetByHash(hash string) (*block.Block, error) {
	if hash == "" {
		return nil, nil
	}

	data, ok := cs.cached(hash)
	if !ok {
		var err error
		data, err = cs.provider.Get(blockKey(hash))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "cannot read block %s", hash)
		}
		if data == nil {
			return nil, nil
		}
	}

	b, err := block.Deserialize(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorrupt, err, "block %s does not decode", hash)
	}
	if !ok {
		cs.remember(hash, data)
	}
	return b, nil
}

// GetTip returns the block LAST points at, or nil on an empty store.
func (cs *ChainStore) GetTip() (*block.Block, error) {
	return cs.getByPointer(KeyLast)
}

// GetGenesis returns the block FIRST points at, or nil on an empty store.
func (cs *ChainStore) GetGenesis() (*block.Block, error) {
	return cs.getByPointer(KeyFirst)
}

func (cs *ChainStore) getByPointer(key string) (*block.Block, error) {
	hash, err := cs.provider.Get([]byte(key))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "cannot read %s", key)
	}
	if hash == nil {
		return nil, nil
	}
	return cs.GetByHash(string(hash))
}

// GetByHeight resolves height through the index: 0 is genesis, anything else
// reads index[height-1].
//
// Index fallback to tip: an index value shorter than five characters or not
// hex is not a hash this store could have written. Such a value yields the
// current tip instead of an error. A well-formed hash that resolves to
// nothing yields (nil, nil).
func (cs *ChainStore) GetByHeight(height uint64) (*block.Block, error) {
	if height == 0 {
		return cs.GetGenesis()
	}

	indexed, err := cs.provider.Get(heightKey(height - 1))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "cannot read height index %d", height-1)
	}
	if indexed == nil {
		return nil, nil
	}

	hash := string(indexed)
	if !isIndexedHash(hash) {
		logx.Warn("CHAIN", "Malformed height index entry at ", height-1, ": ", hash, ", falling back to tip")
		return cs.GetTip()
	}
	return cs.GetByHash(hash)
}

func isIndexedHash(hash string) bool {
	if len(hash) < minIndexedHashLen {
		return false
	}
	for i := 0; i < len(hash); i++ {
		c := hash[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}

// TipHash is the tip as of the last Open or Append through this handle.
func (cs *ChainStore) TipHash() string {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.tipHash
}

func (cs *ChainStore) GenesisHash() string {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.genesisHash
}

// Close flushes and closes the underlying provider.
func (cs *ChainStore) Close() error {
	if err := cs.provider.Flush(); err != nil {
		logx.Error("CHAIN", "Flush on close failed: ", err)
	}
	return cs.provider.Close()
}

// The cache holds encoded blocks so callers can never mutate a cached value.
func (cs *ChainStore) cached(hash string) ([]byte, bool) {
	if cs.cache == nil {
		return nil, false
	}
	return cs.cache.Get(hash)
}

func (cs *ChainStore) remember(hash string, data []byte) {
	if cs.cache != nil {
		cs.cache.Add(hash, data)
	}
}
