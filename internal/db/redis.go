package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/mithrel/quire/pkg/api"
)

const (
	redisSeqKey   = "quire:entries:seq"
	redisIndexKey = "quire:entries:by_created"
	// optimistic WATCH transactions retried before giving up
	redisMaxRetries = 8
)

// redisStore keeps each entry as JSON under quire:entry:<id> and orders them
// in a sorted set scored by created_at (unix microseconds). Members are
// zero-padded ids so equal scores fall back to id order.
type redisStore struct {
	client *redis.Client
}

func openRedis(ctx context.Context, url string) (Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &redisStore{client: client}, nil
}

func redisEntryKey(id int64) string { return fmt.Sprintf("quire:entry:%d", id) }

func redisMember(id int64) string { return fmt.Sprintf("%020d", id) }

func (s *redisStore) Insert(ctx context.Context, e api.Entry) (api.Entry, error) {
	id, err := s.client.Incr(ctx, redisSeqKey).Result()
	if err != nil {
		return api.Entry{}, fmt.Errorf("redis insert: %w", err)
	}
	e.ID = id
	data, err := json.Marshal(e)
	if err != nil {
		return api.Entry{}, err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisEntryKey(id), data, 0)
		pipe.ZAdd(ctx, redisIndexKey, &redis.Z{Score: float64(e.CreatedAt.UnixMicro()), Member: redisMember(id)})
		return nil
	})
	if err != nil {
		return api.Entry{}, fmt.Errorf("redis insert: %w", err)
	}
	return e, nil
}

func (s *redisStore) Get(ctx context.Context, id int64) (api.Entry, error) {
	return getRedisEntry(ctx, s.client, id)
}

type redisGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getRedisEntry(ctx context.Context, c redisGetter, id int64) (api.Entry, error) {
	data, err := c.Get(ctx, redisEntryKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return api.Entry{}, ErrNotFound
		}
		return api.Entry{}, err
	}
	var e api.Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return api.Entry{}, err
	}
	return e, nil
}

func (s *redisStore) Update(ctx context.Context, id int64, fn MutateFunc) (api.Entry, error) {
	key := redisEntryKey(id)
	var out api.Entry
	txf := func(tx *redis.Tx) error {
		cur, err := getRedisEntry(ctx, tx, id)
		if err != nil {
			return err
		}
		next := cur
		changed, err := fn(&next)
		if err != nil {
			return err
		}
		if !changed {
			out = cur
			return nil
		}
		next.ID, next.CreatedAt = cur.ID, cur.CreatedAt
		data, err := json.Marshal(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err == nil {
			out = next
		}
		return err
	}
	for i := 0; i < redisMaxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			return api.Entry{}, err
		}
		return out, nil
	}
	return api.Entry{}, fmt.Errorf("redis update %d: %w", id, ErrConflict)
}

func (s *redisStore) Delete(ctx context.Context, id int64) (bool, error) {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, redisEntryKey(id))
		pipe.ZRem(ctx, redisIndexKey, redisMember(id))
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("redis delete: %w", err)
	}
	return del.Val() > 0, nil
}

func (s *redisStore) List(ctx context.Context, p api.Page) ([]api.Entry, error) {
	if p.Limit <= 0 {
		return []api.Entry{}, nil
	}
	members, err := s.client.ZRevRange(ctx, redisIndexKey, int64(p.Offset), rangeStop(p)).Result()
	if err != nil {
		return nil, err
	}
	return s.fetch(ctx, members)
}

// rangeStop is the inclusive ZRANGE stop for p; -1 (the end) when
// offset+limit does not fit.
func rangeStop(p api.Page) int64 {
	if int64(p.Limit) > math.MaxInt64-int64(p.Offset) {
		return -1
	}
	return int64(p.Offset) + int64(p.Limit) - 1
}

// Search scans the whole index; entries are filtered client-side.
func (s *redisStore) Search(ctx context.Context, q string, p api.Page) ([]api.Entry, error) {
	members, err := s.client.ZRevRange(ctx, redisIndexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	all, err := s.fetch(ctx, members)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(q)
	hits := make([]api.Entry, 0, len(all))
	for _, e := range all {
		if matches(e, needle) {
			hits = append(hits, e)
		}
	}
	lo, hi := p.Window(len(hits))
	return hits[lo:hi], nil
}

// fetch loads entries for index members, preserving order and skipping ones
// deleted between the index read and the fetch.
func (s *redisStore) fetch(ctx context.Context, members []string) ([]api.Entry, error) {
	out := make([]api.Entry, 0, len(members))
	if len(members) == 0 {
		return out, nil
	}
	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(members))
	for i, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("redis index member %q: %w", m, err)
		}
		cmds[i] = pipe.Get(ctx, redisEntryKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}
	for _, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, err
		}
		var e api.Entry
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *redisStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.ZCard(ctx, redisIndexKey).Result()
	return int(n), err
}

func (s *redisStore) Close() error { return s.client.Close() }
