package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/etnz/fiado"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DefaultRedisPrefix prefixes every key written by Redis.
const DefaultRedisPrefix = "fiado"

// Redis is a DocumentStore persisted in a Redis server.
//
// A document is a hash with "version" and "data" fields at
// <prefix>:<collection>:<id>. A sorted set at <prefix>:<collection> keeps the
// ids in creation order.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

// OpenRedis connects to the server at url, like redis://localhost:6379/0.
func OpenRedis(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("cannot reach redis: %w", err)
	}
	return NewRedis(rdb, DefaultRedisPrefix), nil
}

// NewRedis uses an existing client, keys are prefixed with prefix.
func NewRedis(rdb *redis.Client, prefix string) *Redis {
	return &Redis{rdb: rdb, prefix: prefix}
}

// Close closes the client.
func (s *Redis) Close() error { return s.rdb.Close() }

func (s *Redis) index(c fiado.Collection) string { return s.prefix + ":" + string(c) }
func (s *Redis) key(c fiado.Collection, id string) string {
	return s.prefix + ":" + string(c) + ":" + id
}
func (s *Redis) seq() string { return s.prefix + ":seq" }

// List returns documents in creation order.
func (s *Redis) List(ctx context.Context, c fiado.Collection) ([]fiado.Document, error) {
	ids, err := s.rdb.ZRange(ctx, s.index(c), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c, err)
	}
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, s.key(c, id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c, err)
	}
	docs := make([]fiado.Document, 0, len(ids))
	for i, id := range ids {
		d, ok, err := decodeHash(id, cmds[i].Val())
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", c, id, err)
		}
		if ok {
			docs = append(docs, d)
		}
	}
	return docs, nil
}

func decodeHash(id string, h map[string]string) (fiado.Document, bool, error) {
	if len(h) == 0 {
		return fiado.Document{}, false, nil
	}
	var version int64
	if _, err := fmt.Sscan(h["version"], &version); err != nil {
		return fiado.Document{}, false, fmt.Errorf("invalid version %q: %w", h["version"], err)
	}
	return fiado.Document{ID: id, Version: version, Data: json.RawMessage(h["data"])}, true, nil
}

func (s *Redis) Get(ctx context.Context, c fiado.Collection, id string) (fiado.Document, error) {
	h, err := s.rdb.HGetAll(ctx, s.key(c, id)).Result()
	if err != nil {
		return fiado.Document{}, fmt.Errorf("get %s/%s: %w", c, id, err)
	}
	d, ok, err := decodeHash(id, h)
	if err != nil {
		return fiado.Document{}, fmt.Errorf("%s/%s: %w", c, id, err)
	}
	if !ok {
		return fiado.Document{}, fmt.Errorf("%s/%s: %w", c, id, fiado.ErrNotFound)
	}
	return d, nil
}

func (s *Redis) Create(ctx context.Context, c fiado.Collection, data json.RawMessage) (fiado.Document, error) {
	return s.Put(ctx, c, uuid.NewString(), data, 0)
}

func (s *Redis) Put(ctx context.Context, c fiado.Collection, id string, data json.RawMessage, expect int64) (fiado.Document, error) {
	if !json.Valid(data) {
		return fiado.Document{}, fmt.Errorf("%s/%s: invalid json document", c, id)
	}
	key := s.key(c, id)
	var d fiado.Document
	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		old, err := tx.HGet(ctx, key, "version").Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if expect != fiado.AnyVersion && old != expect {
			return fmt.Errorf("%s/%s at version %d, expected %d: %w", c, id, old, expect, fiado.ErrConflict)
		}
		var seq int64
		if old == 0 {
			if seq, err = tx.Incr(ctx, s.seq()).Result(); err != nil {
				return err
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, "version", old+1, "data", string(data))
			if old == 0 {
				pipe.ZAddNX(ctx, s.index(c), redis.Z{Score: float64(seq), Member: id})
			}
			return nil
		})
		if err != nil {
			return err
		}
		d = fiado.Document{ID: id, Version: old + 1, Data: data}
		return nil
	}, key)
	switch {
	case errors.Is(err, redis.TxFailedErr):
		return fiado.Document{}, fmt.Errorf("%s/%s changed concurrently: %w", c, id, fiado.ErrConflict)
	case errors.Is(err, fiado.ErrConflict):
		return fiado.Document{}, err
	case err != nil:
		return fiado.Document{}, fmt.Errorf("put %s/%s: %w", c, id, err)
	}
	log.Debug().Str("collection", string(c)).Str("id", id).Int64("version", d.Version).Msg("document written")
	return d, nil
}

func (s *Redis) Delete(ctx context.Context, c fiado.Collection, id string, expect int64) error {
	key := s.key(c, id)
	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		old, err := tx.HGet(ctx, key, "version").Int64()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("%s/%s: %w", c, id, fiado.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if expect != fiado.AnyVersion && old != expect {
			return fmt.Errorf("%s/%s at version %d, expected %d: %w", c, id, old, expect, fiado.ErrConflict)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.ZRem(ctx, s.index(c), id)
			return nil
		})
		return err
	}, key)
	switch {
	case errors.Is(err, redis.TxFailedErr):
		return fmt.Errorf("%s/%s changed concurrently: %w", c, id, fiado.ErrConflict)
	case errors.Is(err, fiado.ErrConflict), errors.Is(err, fiado.ErrNotFound):
		return err
	case err != nil:
		return fmt.Errorf("delete %s/%s: %w", c, id, err)
	}
	return nil
}

func (s *Redis) Find(ctx context.Context, c fiado.Collection, field, value string) ([]fiado.Document, error) {
	docs, err := s.List(ctx, c)
	if err != nil {
		return nil, err
	}
	return filter(c, docs, field, value)
}
