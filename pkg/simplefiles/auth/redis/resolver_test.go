package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-files/pkg/simplefiles/auth/redis"
)

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "auth_abc", redis.SessionKey("abc"))
}

func TestResolver_Integration(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("Skipping redis test: TEST_REDIS_ADDR not set")
	}

	client := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	r := redis.New(client, nil)

	token := uuid.NewString()
	userID := uuid.New()
	require.NoError(t, r.CreateSession(ctx, token, userID, time.Minute))
	t.Cleanup(func() { client.Del(context.Background(), redis.SessionKey(token)) })

	assert.True(t, r.Resolve(ctx, token).Is(userID))
	assert.False(t, r.Resolve(ctx, uuid.NewString()).IsAuthenticated())
	assert.False(t, r.Resolve(ctx, "").IsAuthenticated())

	bad := uuid.NewString()
	require.NoError(t, client.Set(ctx, redis.SessionKey(bad), "not-a-uuid", time.Minute).Err())
	t.Cleanup(func() { client.Del(context.Background(), redis.SessionKey(bad)) })
	assert.False(t, r.Resolve(ctx, bad).IsAuthenticated())
}
