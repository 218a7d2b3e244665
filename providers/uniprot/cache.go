package uniprot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Cache stores resolved mnemonics by accession.
type Cache interface {
	Get(ctx context.Context, accession string) (string, bool, error)
	Set(ctx context.Context, accession, mnemonic string) error
}

// MemoryCache is a process local Cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]string)}
}

func (c *MemoryCache) Get(_ context.Context, accession string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[accession]
	return v, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, accession, mnemonic string) error {
	c.mu.Lock()
	c.entries[accession] = mnemonic
	c.mu.Unlock()
	return nil
}

// RedisCache shares mnemonics between runs and processes.
type RedisCache struct {
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache connects to addr and verifies the connection with a ping.
func NewRedisCache(ctx context.Context, addr, password string, db int) (*RedisCache, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisCache{rdb: rdb, prefix: "uniprot:mnemonic:", ttl: 30 * 24 * time.Hour}, nil
}

func (c *RedisCache) Get(ctx context.Context, accession string) (string, bool, error) {
	v, err := c.rdb.Get(ctx, c.prefix+accession).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c *RedisCache) Set(ctx context.Context, accession, mnemonic string) error {
	return c.rdb.Set(ctx, c.prefix+accession, mnemonic, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
