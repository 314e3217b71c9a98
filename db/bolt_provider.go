package db

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	boltFileName = "chain.db"
	boltBucket   = "chain"
)

// BoltProvider implements DatabaseProvider on a single bbolt bucket
type BoltProvider struct {
	once   sync.Once
	db     *bolt.DB
	bucket []byte
}

// NewBoltProvider opens (or creates) directory/chain.db
func NewBoltProvider(directory string) (DatabaseProvider, error) {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create bolt directory: %w", err)
	}

	db, err := bolt.Open(filepath.Join(directory, boltFileName), 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt: %w", err)
	}

	bucket := []byte(boltBucket)
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bolt bucket: %w", err)
	}

	return &BoltProvider{db: db, bucket: bucket}, nil
}

// Get copies the value out of the read transaction
func (p *BoltProvider) Get(key []byte) ([]byte, error) {
	var value []byte
	err := p.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(p.bucket).Get(key)
		if v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	return value, err
}

func (p *BoltProvider) Put(key, value []byte) error {
	return p.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(p.bucket).Put(key, value)
	})
}

func (p *BoltProvider) Delete(key []byte) error {
	return p.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(p.bucket).Delete(key)
	})
}

func (p *BoltProvider) Has(key []byte) (bool, error) {
	var found bool
	err := p.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(p.bucket).Get(key) != nil
		return nil
	})
	return found, err
}

// Flush fsyncs the database file
func (p *BoltProvider) Flush() error {
	return p.db.Sync()
}

func (p *BoltProvider) Close() error {
	var err error
	p.once.Do(func() {
		err = p.db.Close()
	})
	return err
}

// Batch buffers operations and applies them in one bolt update transaction
func (p *BoltProvider) Batch() DatabaseBatch {
	return &BoltBatch{provider: p}
}

type boltOp struct {
	key    []byte
	value  []byte
	delete bool
}

// BoltBatch implements DatabaseBatch for bbolt
type BoltBatch struct {
	provider *BoltProvider
	ops      []boltOp
}

func (b *BoltBatch) Put(key, value []byte) {
	b.ops = append(b.ops, boltOp{
		key:   append([]byte(nil), key...),
		value: append([]byte(nil), value...),
	})
}

func (b *BoltBatch) Delete(key []byte) {
	b.ops = append(b.ops, boltOp{key: append([]byte(nil), key...), delete: true})
}

// Write applies all buffered operations atomically
func (b *BoltBatch) Write() error {
	return b.provider.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(b.provider.bucket)
		for _, op := range b.ops {
			var err error
			if op.delete {
				err = bucket.Delete(op.key)
			} else {
				err = bucket.Put(op.key, op.value)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *BoltBatch) Reset() {
	b.ops = b.ops[:0]
}

func (b *BoltBatch) Close() error {
	b.ops = nil
	return nil
}
