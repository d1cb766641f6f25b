package health

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func() error

func (f pingerFunc) Ping() error { return f() }

func TestCollectHealth_NothingConfigured(t *testing.T) {
	result := CollectHealth(context.Background(), nil, nil)
	assert.Equal(t, "issue", result.Status)
	assert.Equal(t, StatusDisconnected, result.Dependencies["database"].Status)
	assert.Equal(t, StatusDisabled, result.Dependencies["redis"].Status)
	assert.Equal(t, 0, result.Traffic.TotalRequests)
	assert.NotEmpty(t, result.Runtime.GoVersion)
}

func TestCollectHealth_DatabaseOnly(t *testing.T) {
	result := CollectHealth(context.Background(), nil, pingerFunc(func() error { return nil }))
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, StatusConnected, result.Dependencies["database"].Status)
	assert.NotNil(t, result.Dependencies["database"].PingMs)
}

func TestCollectHealth_DatabaseError(t *testing.T) {
	result := CollectHealth(context.Background(), nil, pingerFunc(func() error { return errors.New("gone") }))
	assert.Equal(t, "issue", result.Status)
	assert.Equal(t, StatusError, result.Dependencies["database"].Status)
}

func TestCollectHealth_WithMiniredis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	ctx := context.Background()
	db := pingerFunc(func() error { return nil })

	result := CollectHealth(ctx, rdb, db)
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, StatusConnected, result.Dependencies["redis"].Status)
	assert.Equal(t, 0, result.Traffic.TotalRequests)
	assert.Equal(t, "100", result.Traffic.SuccessRate)
	assert.True(t, mr.Exists("health:global:start_time"))

	require.NoError(t, rdb.Set(ctx, "health:global:req_total", "10", 0).Err())
	require.NoError(t, rdb.Set(ctx, "health:global:req_errors", "2", 0).Err())
	require.NoError(t, rdb.Set(ctx, "health:global:res_time_total", "150.5", 0).Err())
	require.NoError(t, rdb.Set(ctx, "health:global:res_count", "10", 0).Err())
	require.NoError(t, rdb.Set(ctx, "health:global:start_time", "1000000", 0).Err())
	require.NoError(t, rdb.Set(ctx, "health:global:last_request", `{"method":"GET","path":"/contracts"}`, 0).Err())

	result2 := CollectHealth(ctx, rdb, db)
	assert.Equal(t, 10, result2.Traffic.TotalRequests)
	assert.Equal(t, 2, result2.Traffic.FailedCount)
	assert.Equal(t, 8, result2.Traffic.SuccessCount)
	assert.Equal(t, "80.0", result2.Traffic.SuccessRate)
	assert.Equal(t, "15.05", result2.Traffic.AvgResponseTime)
	assert.Equal(t, "/contracts", result2.Traffic.LastRequest.(map[string]interface{})["path"])
	assert.Greater(t, result2.Runtime.UptimeSeconds, int64(0))
}

func TestCollectHealth_RedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()

	result := CollectHealth(context.Background(), rdb, pingerFunc(func() error { return nil }))
	assert.Equal(t, StatusError, result.Dependencies["redis"].Status)
	assert.Equal(t, "issue", result.Status)
}
