package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := ConnectRedis(context.Background(), mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb), mr, rdb
}

func TestConnectRedis_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// port 1 is reserved and never has a redis listening
	rdb, err := ConnectRedis(ctx, "127.0.0.1:1")
	assert.Error(t, err)
	assert.Nil(t, rdb)
	assert.Contains(t, err.Error(), "redis ping 127.0.0.1:1")
}

func TestRedisStore_ReserveCompleteDelete(t *testing.T) {
	ctx := context.Background()
	store, mr, _ := newTestRedisStore(t)
	createdAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	existing, reserved, err := store.Reserve(ctx, "k", Entry{Status: StatusProcessing, RequestBodyHash: "h1", CreatedAt: createdAt}, time.Minute)
	require.NoError(t, err)
	assert.True(t, reserved)
	assert.Nil(t, existing)
	assert.True(t, mr.Exists(redisKeyPrefix+"k"))
	assert.Equal(t, time.Minute, mr.TTL(redisKeyPrefix+"k"))

	existing, reserved, err = store.Reserve(ctx, "k", Entry{Status: StatusProcessing, RequestBodyHash: "h2"}, time.Minute)
	require.NoError(t, err)
	assert.False(t, reserved)
	require.NotNil(t, existing)
	assert.Equal(t, StatusProcessing, existing.Status)
	assert.Equal(t, "h1", existing.RequestBodyHash)
	assert.True(t, createdAt.Equal(existing.CreatedAt))

	require.NoError(t, store.Complete(ctx, "k", Entry{Status: StatusCompleted, RequestBodyHash: "h1", StatusCode: 201, Response: []byte(`{"id":1}`)}, time.Hour))
	assert.Equal(t, time.Hour, mr.TTL(redisKeyPrefix+"k"))

	existing, reserved, err = store.Reserve(ctx, "k", Entry{Status: StatusProcessing}, time.Minute)
	require.NoError(t, err)
	assert.False(t, reserved)
	require.NotNil(t, existing)
	assert.Equal(t, StatusCompleted, existing.Status)
	assert.Equal(t, 201, existing.StatusCode)
	assert.JSONEq(t, `{"id":1}`, string(existing.Response))

	require.NoError(t, store.Delete(ctx, "k"))
	assert.False(t, mr.Exists(redisKeyPrefix+"k"))
	_, reserved, err = store.Reserve(ctx, "k", Entry{Status: StatusProcessing}, time.Minute)
	require.NoError(t, err)
	assert.True(t, reserved)
}

func TestRedisStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store, mr, _ := newTestRedisStore(t)

	_, reserved, err := store.Reserve(ctx, "k", Entry{Status: StatusProcessing}, time.Minute)
	require.NoError(t, err)
	require.True(t, reserved)

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists(redisKeyPrefix+"k"))

	_, reserved, err = store.Reserve(ctx, "k", Entry{Status: StatusProcessing}, time.Minute)
	require.NoError(t, err)
	assert.True(t, reserved)
}

func TestRedisStore_Errors(t *testing.T) {
	testCases := []struct {
		name          string
		setup         func(t *testing.T, mr *miniredis.Miniredis)
		expectedError string
	}{
		{
			name: "corrupt_entry",
			setup: func(t *testing.T, mr *miniredis.Miniredis) {
				require.NoError(t, mr.Set(redisKeyPrefix+"k", "not json"))
			},
			expectedError: "decode idempotency entry",
		},
		{
			name: "server_down",
			setup: func(t *testing.T, mr *miniredis.Miniredis) {
				mr.Close()
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store, mr, _ := newTestRedisStore(t)
			tc.setup(t, mr)

			existing, reserved, err := store.Reserve(context.Background(), "k", Entry{Status: StatusProcessing}, time.Minute)
			require.Error(t, err)
			assert.False(t, reserved)
			assert.Nil(t, existing)
			if tc.expectedError != "" {
				assert.Contains(t, err.Error(), tc.expectedError)
			}
		})
	}
}

// expireBeforeGet deletes the key right before the first n GETs reach the
// server, as if it expired between SETNX and GET.
type expireBeforeGet struct {
	mr   *miniredis.Miniredis
	key  string
	left int
}

func (h *expireBeforeGet) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *expireBeforeGet) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if cmd.Name() == "get" && h.left > 0 {
			h.left--
			h.mr.Del(h.key)
		}
		return next(ctx, cmd)
	}
}

func (h *expireBeforeGet) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestRedisStore_ReserveRetriesWhenKeyVanishes(t *testing.T) {
	testCases := []struct {
		name             string
		vanishes         int
		expectedReserved bool
		expectedError    string
	}{
		{name: "retry_succeeds", vanishes: 1, expectedReserved: true},
		{name: "gives_up", vanishes: reserveAttempts, expectedError: "gave up after 3 attempts"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			store, mr, rdb := newTestRedisStore(t)
			key := redisKeyPrefix + "k"

			hook := &expireBeforeGet{mr: mr, key: key, left: tc.vanishes}
			rdb.AddHook(hook)
			// every SETNX finds the key taken until the hook removes it
			rearm := func() { require.NoError(t, mr.Set(key, `{"status":"processing"}`)) }
			rearm()
			if tc.vanishes > 1 {
				rdb.AddHook(&rearmAfterGet{rearm: rearm, left: tc.vanishes - 1})
			}

			existing, reserved, err := store.Reserve(ctx, "k", Entry{Status: StatusProcessing, RequestBodyHash: "h"}, time.Minute)
			if tc.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedError)
				assert.False(t, reserved)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedReserved, reserved)
			assert.Nil(t, existing)
			assert.Equal(t, 0, hook.left)
			assert.True(t, mr.Exists(key))
		})
	}
}

// rearmAfterGet puts the key back after a GET so the next SETNX fails again.
type rearmAfterGet struct {
	rearm func()
	left  int
}

func (h *rearmAfterGet) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *rearmAfterGet) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if cmd.Name() == "get" && h.left > 0 {
			h.left--
			h.rearm()
		}
		return err
	}
}

func (h *rearmAfterGet) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}
