package statestore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requires a live redis; set TEST_REDIS_URL (eg redis://localhost:6379/15)
func testRedisStateStore(t *testing.T) *RedisStateStore {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("TEST_REDIS_URL not set, skipping redis state store test")
	}
	st, err := NewRedisStateStore(redisURL)
	require.NoError(t, err)
	return st
}

func TestRedisSeenMarkRefreshesExpiry(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	st := testRedisStateStore(t)

	postID := fmt.Sprintf("ttltest%d", time.Now().UnixNano())
	defer st.ClearState(ctx, postID)

	fresh, err := st.MarkSeenOnce(ctx, postID)
	assert.NoError(err)
	assert.True(fresh)
	fresh, err = st.MarkSeenOnce(ctx, postID)
	assert.NoError(err)
	assert.False(fresh)

	// age the key, then re-mark; the plain mark must reset the expiry to
	// the full retention period (a set-if-absent would leave it aged)
	key := redisStateKey(factSeen, postID)
	require.NoError(t, st.Client.Expire(ctx, key, time.Hour).Err())
	require.NoError(t, st.MarkSeen(ctx, postID))

	ttl, err := st.Client.TTL(ctx, key).Result()
	assert.NoError(err)
	assert.Greater(ttl, RetentionPeriod-time.Minute)

	// still deduped after the rewrite
	fresh, err = st.MarkSeenOnce(ctx, postID)
	assert.NoError(err)
	assert.False(fresh)
	seen, err := st.IsSeen(ctx, postID)
	assert.NoError(err)
	assert.True(seen)
}
