package store

import (
	"context"
	"fmt"

	log "bitbucket.org/aisee/minilog"
	"github.com/redis/go-redis/v9"
)

const resultsKey = "aiur:results"

// RedisStore keeps results in a redis list so several training hosts can
// report to one place.
type RedisStore struct {
	rdb *redis.Client
	key string
}

// NewRedisStore connects to redisURL and checks the connection.
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{rdb: rdb, key: resultsKey}, nil
}

// NewRedisStoreFromClient wraps an existing client, for tests.
func NewRedisStoreFromClient(rdb *redis.Client, key string) *RedisStore {
	if key == "" {
		key = resultsKey
	}
	return &RedisStore{rdb: rdb, key: key}
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) Append(ctx context.Context, r Result) error {
	if err := s.rdb.RPush(ctx, s.key, r.String()).Err(); err != nil {
		return fmt.Errorf("append result: %w", err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]Result, error) {
	lines, err := s.rdb.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	results := make([]Result, 0, len(lines))
	for _, line := range lines {
		r, err := ParseLine(line)
		if err != nil {
			log.Warning(err)
			continue
		}
		results = append(results, r)
	}
	return results, nil
}
