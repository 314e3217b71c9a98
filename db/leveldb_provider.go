package db

import (
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// LevelDBProvider implements DatabaseProvider for LevelDB. Writes are synced,
// so Flush has nothing left to do.
type LevelDBProvider struct {
	once sync.Once
	db   *leveldb.DB
	wo   *opt.WriteOptions
}

// NewLevelDBProvider opens (or creates) a LevelDB database in directory
func NewLevelDBProvider(directory string) (DatabaseProvider, error) {
	db, err := leveldb.OpenFile(directory, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open LevelDB: %w", err)
	}

	return newLevelDBProvider(db), nil
}

// NewMemLevelDBProvider creates a LevelDB provider backed by memory only
func NewMemLevelDBProvider() (DatabaseProvider, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory LevelDB: %w", err)
	}

	return newLevelDBProvider(db), nil
}

func newLevelDBProvider(db *leveldb.DB) *LevelDBProvider {
	return &LevelDBProvider{db: db, wo: &opt.WriteOptions{Sync: true}}
}

// Get retrieves a value by key
func (p *LevelDBProvider) Get(key []byte) ([]byte, error) {
	value, err := p.db.Get(key, nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return value, nil
}

// Put stores a key-value pair
func (p *LevelDBProvider) Put(key, value []byte) error {
	return p.db.Put(key, value, p.wo)
}

// Delete removes a key-value pair
func (p *LevelDBProvider) Delete(key []byte) error {
	return p.db.Delete(key, p.wo)
}

// Has checks if a key exists
func (p *LevelDBProvider) Has(key []byte) (bool, error) {
	return p.db.Has(key, nil)
}

func (p *LevelDBProvider) Flush() error {
	return nil
}

// Close closes the database connection
func (p *LevelDBProvider) Close() error {
	// avoid double close when the provider is shared
	var err error
	p.once.Do(func() {
		err = p.db.Close()
	})
	return err
}

// Batch returns a new batch for atomic operations
func (p *LevelDBProvider) Batch() DatabaseBatch {
	return &LevelDBBatch{
		batch: new(leveldb.Batch),
		db:    p.db,
		wo:    p.wo,
	}
}

// LevelDBBatch implements DatabaseBatch for LevelDB
type LevelDBBatch struct {
	batch *leveldb.Batch
	db    *leveldb.DB
	wo    *opt.WriteOptions
}

func (b *LevelDBBatch) Put(key, value []byte) {
	b.batch.Put(key, value)
}

func (b *LevelDBBatch) Delete(key []byte) {
	b.batch.Delete(key)
}

// Write commits all operations in the batch
func (b *LevelDBBatch) Write() error {
	return b.db.Write(b.batch, b.wo)
}

func (b *LevelDBBatch) Reset() {
	b.batch.Reset()
}

// Close is a no-op: a LevelDB batch holds no native resources
func (b *LevelDBBatch) Close() error {
	return nil
}
