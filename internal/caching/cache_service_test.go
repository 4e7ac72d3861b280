package caching

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"leadsync/internal/models"
)

// newTestCache connects to TEST_REDIS_ADDR and skips when it is unset
func newTestCache(t *testing.T) CacheService {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping redis test in short mode")
	}
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(t.Context()).Err())
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheServiceWithClient(client, zap.NewNop())
}

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "leadsync:session:abc", SessionKey("abc"))
}

func TestSessionMirror(t *testing.T) {
	cache := newTestCache(t)
	ctx := t.Context()
	id := uuid.NewString()

	missing, err := cache.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, missing)

	record := &models.SessionRecord{
		SessionID: id,
		Account:   &models.Account{ID: "u1", Role: models.RoleCustomer},
		Cookies:   []models.StoredCookie{{Name: "PHPSESSID", Value: "x"}},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, cache.SetSession(ctx, record, time.Minute))

	got, err := cache.GetSession(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.Account.ID)
	assert.Equal(t, "PHPSESSID", got.Cookies[0].Name)

	require.NoError(t, cache.DeleteSession(ctx, id))
	got, err = cache.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIsRateLimited(t *testing.T) {
	cache := newTestCache(t)
	ctx := t.Context()
	key := "test:" + uuid.NewString()

	for i := 0; i < 3; i++ {
		limited, err := cache.IsRateLimited(ctx, key, 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, limited, "hit %d", i+1)
	}
	limited, err := cache.IsRateLimited(ctx, key, 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, limited)
}

func TestStringsAndMetrics(t *testing.T) {
	cache := newTestCache(t)
	ctx := t.Context()
	key := "test:" + uuid.NewString()

	val, err := cache.GetString(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, val)

	require.NoError(t, cache.SetString(ctx, key, "revoked", time.Minute))
	val, err = cache.GetString(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "revoked", val)
	require.NoError(t, cache.Delete(ctx, key))

	metrics, err := cache.GetMetrics(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, metrics)

	require.NoError(t, cache.SetMetrics(ctx, key, &models.DashboardMetrics{}, time.Minute))
	metrics, err = cache.GetMetrics(ctx, key)
	require.NoError(t, err)
	assert.NotNil(t, metrics)
	require.NoError(t, cache.InvalidateMetrics(ctx, key))
}
