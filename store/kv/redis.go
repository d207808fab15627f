package kv

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/warp/books-engine/ledger"
)

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Key      string // defaults to DataKey
}

// RedisStore keeps the snapshot under one redis key, without expiry.
type RedisStore struct {
	rdb *redis.Client
	key string
}

// NewRedis connects and pings the server.
func NewRedis(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrapf(err, "failed to connect to redis at %s", opts.Addr)
	}
	return NewRedisWithClient(rdb, opts.Key), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(rdb *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DataKey
	}
	return &RedisStore{rdb: rdb, key: key}
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) Load(ctx context.Context) (ledger.ERPData, bool, error) {
	raw, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ledger.ERPData{}, false, nil
	}
	if err != nil {
		return ledger.ERPData{}, false, errors.Wrap(err, "redis get")
	}
	data, err := decode(raw)
	if err != nil {
		return ledger.ERPData{}, false, err
	}
	return data, true, nil
}

func (s *RedisStore) Save(ctx context.Context, data ledger.ERPData) error {
	raw, err := encode(data)
	if err != nil {
		return err
	}
	return errors.Wrap(s.rdb.Set(ctx, s.key, raw, 0).Err(), "redis set")
}
