package watchlist

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/banking/withdrawal-risk-service/internal/config"
)

// NewRedisClient creates a Redis client from configuration
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
}

// RedisStore keeps each watchlist in a Redis set
type RedisStore struct {
	client redis.Cmdable
	keys   map[List]string
}

// NewRedisStore creates a Redis-backed watchlist store
func NewRedisStore(client redis.Cmdable, cfg config.RedisConfig) *RedisStore {
	return &RedisStore{
		client: client,
		keys: map[List]string{
			ListBlacklist: cfg.BlacklistKey,
			ListSanctions: cfg.SanctionsKey,
		},
	}
}

func (r *RedisStore) key(list List) (string, error) {
	k, ok := r.keys[list]
	if !ok || k == "" {
		return "", fmt.Errorf("watchlist: no redis key for list %q", list)
	}
	return k, nil
}

// IsMember reports whether address is in the list's set
func (r *RedisStore) IsMember(ctx context.Context, list List, address string) (bool, error) {
	k, err := r.key(list)
	if err != nil {
		return false, err
	}
	ok, err := r.client.SIsMember(ctx, k, address).Result()
	if err != nil {
		return false, fmt.Errorf("watchlist: sismember %s: %w", k, err)
	}
	return ok, nil
}

// Members returns every address in the list's set
func (r *RedisStore) Members(ctx context.Context, list List) ([]string, error) {
	k, err := r.key(list)
	if err != nil {
		return nil, err
	}
	members, err := r.client.SMembers(ctx, k).Result()
	if err != nil {
		return nil, fmt.Errorf("watchlist: smembers %s: %w", k, err)
	}
	return members, nil
}

// Add inserts addresses into the list's set
func (r *RedisStore) Add(ctx context.Context, list List, addresses ...string) error {
	if len(addresses) == 0 {
		return nil
	}
	k, err := r.key(list)
	if err != nil {
		return err
	}
	members := make([]interface{}, len(addresses))
	for i, a := range addresses {
		members[i] = a
	}
	if err := r.client.SAdd(ctx, k, members...).Err(); err != nil {
		return fmt.Errorf("watchlist: sadd %s: %w", k, err)
	}
	return nil
}
