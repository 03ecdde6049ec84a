package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"
)

const (
	fieldValue   = "value"
	fieldVersion = "version"
)

// RedisStore stocke chaque entrée dans un hash {value, version}, sous <namespace>:<key>
type RedisStore struct {
	client    *redis.Client
	namespace string
}

func NewRedisStore(client *redis.Client, namespace string) *RedisStore {
	return &RedisStore{client: client, namespace: namespace}
}

func (s *RedisStore) key(k string) string {
	return s.namespace + ":" + k
}

func (s *RedisStore) Get(ctx context.Context, key string) (Entry, error) {
	vals, err := s.client.HMGet(ctx, s.key(key), fieldValue, fieldVersion).Result()
	if err != nil {
		return Entry{}, fmt.Errorf("get %s: %w", key, err)
	}
	return decodeHash(key, vals)
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) (int64, error) {
	k := s.key(key)
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, k, fieldValue, value)
		incr = pipe.HIncrBy(ctx, k, fieldVersion, 1)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("set %s: %w", key, err)
	}
	return incr.Val(), nil
}

func (s *RedisStore) CompareAndSwap(ctx context.Context, key string, value []byte, expected int64) (int64, error) {
	k := s.key(key)
	version := expected + 1

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, k, fieldVersion).Int64()
		if errors.Is(err, redis.Nil) {
			current = 0
		} else if err != nil {
			return err
		}
		if current != expected {
			return ErrVersionConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, k, fieldValue, value, fieldVersion, version)
			return nil
		})
		return err
	}, k)

	switch {
	case err == nil:
		return version, nil
	case errors.Is(err, ErrVersionConflict), errors.Is(err, redis.TxFailedErr):
		return 0, ErrVersionConflict
	default:
		return 0, fmt.Errorf("compare and swap %s: %w", key, err)
	}
}

func (s *RedisStore) List(ctx context.Context, prefix string) ([]Entry, error) {
	match := escapeGlob(s.key(prefix)) + "*"

	var keys []string
	iter := s.client.Scan(ctx, 0, match, 200).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	sort.Strings(keys)

	out := make([]Entry, 0, len(keys))
	for _, full := range keys {
		key := strings.TrimPrefix(full, s.namespace+":")
		e, err := s.Get(ctx, key)
		if errors.Is(err, ErrNotFound) {
			// supprimée entre le SCAN et la lecture
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func decodeHash(key string, vals []interface{}) (Entry, error) {
	if len(vals) != 2 || vals[0] == nil || vals[1] == nil {
		return Entry{}, ErrNotFound
	}
	value, ok := vals[0].(string)
	if !ok {
		return Entry{}, fmt.Errorf("get %s: unexpected value type %T", key, vals[0])
	}
	raw, ok := vals[1].(string)
	if !ok {
		return Entry{}, fmt.Errorf("get %s: unexpected version type %T", key, vals[1])
	}
	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("get %s: bad version %q: %w", key, raw, err)
	}
	return Entry{Key: key, Value: []byte(value), Version: version}, nil
}

func escapeGlob(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return r.Replace(s)
}
