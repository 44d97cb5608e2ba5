package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

// RedisStore shares snapshots across short-lived screener processes. Any
// Redis failure degrades to a cache miss; it never fails a scan.
type RedisStore struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

// NewRedisStore creates a store writing the snapshot under key with the
// given expiry. A zero ttl stores without expiry.
func NewRedisStore(client redis.Cmdable, key string, ttl time.Duration) *RedisStore {
	if key == "" {
		key = "screener:snapshot"
	}
	return &RedisStore{client: client, key: key, ttl: ttl}
}

// Load fetches and decodes the snapshot. Missing key, transport errors, and
// undecodable payloads all report a miss.
func (s *RedisStore) Load(ctx context.Context) (*Snapshot, bool) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Warn().Err(err).Str("key", s.key).Msg("redis snapshot load failed")
		return nil, false
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Warn().Err(err).Str("key", s.key).Msg("redis snapshot decode failed")
		return nil, false
	}
	return &snap, true
}

// Save stores the snapshot, deleting the key when snap is nil.
func (s *RedisStore) Save(ctx context.Context, snap *Snapshot) {
	if snap == nil {
		if err := s.client.Del(ctx, s.key).Err(); err != nil {
			log.Warn().Err(err).Str("key", s.key).Msg("redis snapshot delete failed")
		}
		return
	}

	data, err := json.Marshal(snap)
	if err != nil {
		log.Warn().Err(err).Str("key", s.key).Msg("redis snapshot encode failed")
		return
	}
	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", s.key).Msg("redis snapshot save failed")
	}
}
