// Package cache implements domain.Cache on BadgerDB.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"conferencecentral/internal/domain"
	"conferencecentral/internal/metrics"

	"github.com/dgraph-io/badger/v4"
)

const keyPrefix = "cache:"

// BadgerCache stores string values with a TTL. Entries expire on their own, which keeps the
// best-effort contract of domain.Cache.
type BadgerCache struct {
	db  *badger.DB
	ttl time.Duration
}

var _ domain.Cache = (*BadgerCache)(nil)

// Open opens a cache under dir, or an in-memory cache when dir is empty.
// A ttl of zero keeps entries until they are overwritten or deleted.
func Open(dir string, ttl time.Duration) (*BadgerCache, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil // Suppress BadgerDB internal logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger cache: %w", err)
	}
	return &BadgerCache{db: db, ttl: ttl}, nil
}

// NewFromDB wraps an existing BadgerDB connection.
func NewFromDB(db *badger.DB, ttl time.Duration) *BadgerCache {
	return &BadgerCache{db: db, ttl: ttl}
}

func (c *BadgerCache) Get(_ context.Context, key string) (string, bool, error) {
	var value string
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		metrics.RecordCacheLookup(false)
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	metrics.RecordCacheLookup(true)
	return value, true, nil
}

func (c *BadgerCache) Set(_ context.Context, key, value string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(keyPrefix+key), []byte(value))
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}
		if err := txn.SetEntry(entry); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
		return nil
	})
}

func (c *BadgerCache) Delete(_ context.Context, key string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(keyPrefix + key)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete %s: %w", key, err)
		}
		return nil
	})
}

// Close releases the underlying database.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}
