package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
)

const (
	defaultRedisPrefix = "gymadmin:query:"
	scanBatch          = 100
)

// globEscaper quotes the characters SCAN MATCH treats as patterns
var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

// RedisStore shares the cache between dashboard processes
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore stores entries under prefix and expires them after ttl.
// An empty prefix uses "gymadmin:query:".
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return Entry{}, false, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return e, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, e Entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// DeleteResource scans both key shapes of a resource and deletes them in
// batches. SCAN never blocks the server the way KEYS would.
func (s *RedisStore) DeleteResource(ctx context.Context, resource string) (int, error) {
	removed := 0
	base := globEscaper.Replace(s.prefix + resource)
	for _, pattern := range []string{base + ":*", base + "/*"} {
		n, err := s.deleteMatching(ctx, pattern)
		removed += n
		if err != nil {
			return removed, err
		}
	}
	return removed, nil
}

func (s *RedisStore) Clear(ctx context.Context, prefix string) error {
	_, err := s.deleteMatching(ctx, globEscaper.Replace(s.prefix+prefix)+"*")
	return err
}

func (s *RedisStore) deleteMatching(ctx context.Context, pattern string) (int, error) {
	removed := 0
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to scan cache keys: %w", err)
		}

		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return removed, fmt.Errorf("failed to delete cache keys: %w", err)
			}
			removed += len(keys)
		}

		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}
