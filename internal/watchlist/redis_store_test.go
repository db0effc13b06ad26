package watchlist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banking/withdrawal-risk-service/internal/config"
)

func TestRedisStoreRequiresConfiguredKeys(t *testing.T) {
	client := NewRedisClient(config.RedisConfig{Host: "127.0.0.1", Port: 1})
	defer client.Close()

	store := NewRedisStore(client, config.RedisConfig{BlacklistKey: "risk:watchlist:blacklist"})
	ctx := context.Background()

	_, err := store.IsMember(ctx, ListSanctions, unlistedAddr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no redis key")

	_, err = store.Members(ctx, List("unknown"))
	assert.Error(t, err)

	assert.NoError(t, store.Add(ctx, ListSanctions), "adding nothing is a no-op")
}

func TestRedisStoreKeys(t *testing.T) {
	store := NewRedisStore(nil, config.RedisConfig{
		BlacklistKey: "bl",
		SanctionsKey: "sn",
	})

	k, err := store.key(ListBlacklist)
	require.NoError(t, err)
	assert.Equal(t, "bl", k)

	k, err = store.key(ListSanctions)
	require.NoError(t, err)
	assert.Equal(t, "sn", k)
}
