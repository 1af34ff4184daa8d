package repository

import (
	"context"
	"fmt"

	"github.com/listen-stream/catalog/internal/catalog"
	"github.com/listen-stream/catalog/internal/codec"
	apperrors "github.com/listen-stream/catalog/pkg/errors"
	rediskeys "github.com/listen-stream/catalog/pkg/redis"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one key per collection, e.g. ls:catalog:albums.
type RedisStore struct {
	client    redis.UniversalClient
	namespace string
}

// NewRedisStore creates a Redis-backed store. An empty namespace uses the
// default key namespace.
func NewRedisStore(client redis.UniversalClient, namespace string) *RedisStore {
	return &RedisStore{client: client, namespace: namespace}
}

func (s *RedisStore) key(collection string) string {
	return rediskeys.CatalogKey(s.namespace, collection)
}

// Load implements Store. The three keys are read with a single MGET so a
// concurrent Save is never observed half-applied.
func (s *RedisStore) Load(ctx context.Context) (*catalog.Catalog, error) {
	keys := make([]string, len(codec.Collections))
	for i, name := range codec.Collections {
		keys[i] = s.key(name)
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "redis mget catalog")
	}

	var (
		enc   codec.EncodedCollections
		found bool
	)
	for i, v := range vals {
		if v == nil {
			continue
		}
		str, ok := v.(string)
		if !ok {
			return nil, codec.DecodeError(codec.Collections[i], "", fmt.Errorf("unexpected redis value %T", v))
		}
		enc.Set(codec.Collections[i], []byte(str))
		found = true
	}
	if !found {
		return nil, apperrors.NotFound("catalog", s.key("*"))
	}
	return codec.DecodeCollections(enc)
}

// Save implements Store. All three keys are replaced in one MULTI/EXEC.
func (s *RedisStore) Save(ctx context.Context, c *catalog.Catalog) error {
	enc, err := codec.EncodeCollections(c)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, name := range codec.Collections {
			pipe.Set(ctx, s.key(name), enc.Get(name), 0)
		}
		return nil
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "redis save catalog")
	}
	return nil
}

// Describe implements Store.
func (s *RedisStore) Describe() string {
	return "redis:" + s.key("*")
}
