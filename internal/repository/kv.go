package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/redis/go-redis/v9"
)

// KV is the small key-value surface local state needs.  A zero ttl means
// the key never expires.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// BadgerKV stores keys in an embedded BadgerDB.
type BadgerKV struct{ DB *badger.DB }

func NewBadgerKV(db *badger.DB) *BadgerKV { return &BadgerKV{DB: db} }

func (s *BadgerKV) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.DB.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return out, err
}

func (s *BadgerKV) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	return s.DB.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), val)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

func (s *BadgerKV) Delete(_ context.Context, key string) error {
	return s.DB.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (s *BadgerKV) Keys(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.DB.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	return keys, err
}

// RedisKV stores keys in Redis under a namespace prefix.
type RedisKV struct {
	Client    *redis.Client
	Namespace string
}

func NewRedisKV(client *redis.Client, namespace string) *RedisKV {
	return &RedisKV{Client: client, Namespace: namespace}
}

func (s *RedisKV) key(k string) string {
	if s.Namespace == "" {
		return k
	}
	return s.Namespace + ":" + k
}

func (s *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.Client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return b, err
}

func (s *RedisKV) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return s.Client.Set(ctx, s.key(key), val, ttl).Err()
}

func (s *RedisKV) Delete(ctx context.Context, key string) error {
	return s.Client.Del(ctx, s.key(key)).Err()
}

func (s *RedisKV) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	strip := len(s.key(""))
	iter := s.Client.Scan(ctx, 0, s.key(prefix)+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val()[strip:])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return keys, nil
}
