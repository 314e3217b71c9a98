package db

import (
	"context"
	"fmt"

	"github.com/mezonai/powchain/logx"
	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces chain keys so a shared Redis instance can host them
const redisKeyPrefix = "powchain:"

// RedisProvider implements DatabaseProvider for Redis
type RedisProvider struct {
	client *redis.Client
	ctx    context.Context
}

func redisKey(key []byte) string {
	return redisKeyPrefix + string(key)
}

// NewRedisProvider connects to address and checks the connection with PING
func NewRedisProvider(address string, database int) (DatabaseProvider, error) {
	client := redis.NewClient(&redis.Options{
		Addr: address,
		DB:   database,
	})

	ctx := context.Background()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logx.Info("REDIS", "Connected to ", address, " db=", database)
	return &RedisProvider{
		client: client,
		ctx:    ctx,
	}, nil
}

// Get retrieves a value by key
func (p *RedisProvider) Get(key []byte) ([]byte, error) {
	value, err := p.client.Get(p.ctx, redisKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	return value, nil
}

// Put stores a key-value pair
func (p *RedisProvider) Put(key, value []byte) error {
	logx.Debug("REDIS", "Put key:", string(key), " value length:", len(value))
	return p.client.Set(p.ctx, redisKey(key), value, 0).Err()
}

// Delete removes a key-value pair
func (p *RedisProvider) Delete(key []byte) error {
	return p.client.Del(p.ctx, redisKey(key)).Err()
}

// Has checks if a key exists
func (p *RedisProvider) Has(key []byte) (bool, error) {
	count, err := p.client.Exists(p.ctx, redisKey(key)).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Flush is a no-op: durability is governed by the server's persistence settings
func (p *RedisProvider) Flush() error {
	return nil
}

// Close closes the database connection
func (p *RedisProvider) Close() error {
	return p.client.Close()
}

// Batch queues commands in a MULTI/EXEC transaction
func (p *RedisProvider) Batch() DatabaseBatch {
	return &RedisBatch{
		client: p.client,
		ctx:    p.ctx,
		pipe:   p.client.TxPipeline(),
	}
}

// RedisBatch implements DatabaseBatch for Redis
type RedisBatch struct {
	client *redis.Client
	ctx    context.Context
	pipe   redis.Pipeliner
}

func (b *RedisBatch) Put(key, value []byte) {
	b.pipe.Set(b.ctx, redisKey(key), value, 0)
}

func (b *RedisBatch) Delete(key []byte) {
	b.pipe.Del(b.ctx, redisKey(key))
}

// Write commits all operations in the batch
func (b *RedisBatch) Write() error {
	_, err := b.pipe.Exec(b.ctx)
	return err
}

// Reset clears the batch
func (b *RedisBatch) Reset() {
	b.pipe.Discard()
	b.pipe = b.client.TxPipeline()
}

// Close releases batch resources
func (b *RedisBatch) Close() error {
	b.pipe.Discard()
	return nil
}
