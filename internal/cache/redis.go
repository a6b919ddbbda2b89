package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/rinkboard/internal/docstore"
	"github.com/fortuna/rinkboard/internal/rebuild"
)

const (
	keyPrefix  = "rinkboard:"
	RootKey    = keyPrefix + "root"
	SeasonsKey = keyPrefix + "seasons"
)

// SeasonIndexKey holds the JSON season game index.
func SeasonIndexKey(season string) string {
	return keyPrefix + "season:" + season + ":index"
}

// SeasonPlayersKey holds the JSON season leaderboard.
func SeasonPlayersKey(season string) string {
	return keyPrefix + "season:" + season + ":players"
}

// RedisCache mirrors derived documents into Redis for fast reads.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a new Redis cache connection. ttl 0 keeps keys forever.
func NewRedisCache(redisURL string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisCache{
		client: client,
		ttl:    ttl,
	}, nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Get retrieves a cached document by key
func (rc *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return rc.client.Get(ctx, key).Result()
}

// Name identifies the sink in diagnostics.
func (rc *RedisCache) Name() string {
	return "redis-cache"
}

// Publish replaces the cached documents with the ones from res and drops the
// keys of seasons that no longer exist.
func (rc *RedisCache) Publish(ctx context.Context, res *rebuild.Result) error {
	entries, err := Entries(res)
	if err != nil {
		return err
	}

	previous, err := rc.client.SMembers(ctx, SeasonsKey).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("read cached seasons: %w", err)
	}

	current := make(map[string]struct{}, len(res.Seasons))
	members := make([]interface{}, 0, len(res.Seasons))
	for _, s := range res.Seasons {
		current[s.Season] = struct{}{}
		members = append(members, s.Season)
	}

	_, err = rc.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, payload := range entries {
			pipe.Set(ctx, key, payload, rc.ttl)
		}
		for _, old := range previous {
			if _, ok := current[old]; !ok {
				pipe.Del(ctx, SeasonIndexKey(old), SeasonPlayersKey(old))
			}
		}
		pipe.Del(ctx, SeasonsKey)
		if len(members) > 0 {
			pipe.SAdd(ctx, SeasonsKey, members...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache derived documents: %w", err)
	}
	return nil
}

// Entries renders every derived document of res keyed by its cache key.
func Entries(res *rebuild.Result) (map[string][]byte, error) {
	entries := make(map[string][]byte, 2*len(res.Seasons)+1)

	for _, s := range res.Seasons {
		index, err := docstore.Encode(s.Index)
		if err != nil {
			return nil, fmt.Errorf("encode index for %s: %w", s.Season, err)
		}
		players, err := docstore.Encode(s.Leaderboard)
		if err != nil {
			return nil, fmt.Errorf("encode players for %s: %w", s.Season, err)
		}
		entries[SeasonIndexKey(s.Season)] = index
		entries[SeasonPlayersKey(s.Season)] = players
	}

	root, err := docstore.Encode(res.RootIndex)
	if err != nil {
		return nil, fmt.Errorf("encode root index: %w", err)
	}
	entries[RootKey] = root

	return entries, nil
}
