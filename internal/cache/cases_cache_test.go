package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/s-dudhiya/EduNexus/internal/model"
	judgeErrors "github.com/s-dudhiya/EduNexus/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	cases map[int64]model.TestCaseSet
	calls int
}

func (s *countingStore) GetTestCases(_ context.Context, id int64) (model.TestCaseSet, error) {
	s.calls++
	cases, ok := s.cases[id]
	if !ok {
		return nil, judgeErrors.NewNotFoundError("exam paper", id)
	}
	return cases, nil
}

type countingRecorder struct {
	hits, misses int
}

func (r *countingRecorder) RecordCacheHit()  { r.hits++ }
func (r *countingRecorder) RecordCacheMiss() { r.misses++ }

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "edunexus:exam_paper:cases:42", cacheKey(42))
}

// Redis 不可用时回源
func TestTestCaseCache_FallsBackWhenRedisDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	store := &countingStore{cases: map[int64]model.TestCaseSet{1: model.TestCaseSet(`[]`)}}
	recorder := &countingRecorder{}
	c := NewTestCaseCache(rdb, store, time.Minute, recorder)

	cases, err := c.GetTestCases(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(cases))
	assert.Equal(t, 1, store.calls)
	assert.Equal(t, 1, recorder.misses)

	_, err = c.GetTestCases(context.Background(), 2)
	assert.True(t, judgeErrors.IsErrorCode(err, judgeErrors.ErrCodeNotFound))
}

// 需要真实 Redis，设置 EDUNEXUS_TEST_REDIS_ADDR 后运行
func TestTestCaseCache_ReadThrough(t *testing.T) {
	addr := os.Getenv("EDUNEXUS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("EDUNEXUS_TEST_REDIS_ADDR not set, skipping test")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()
	ctx := context.Background()
	require.NoError(t, rdb.Ping(ctx).Err())

	const paperID = 987654321
	store := &countingStore{cases: map[int64]model.TestCaseSet{paperID: model.TestCaseSet(`[{"input":"1","output":"1"}]`)}}
	recorder := &countingRecorder{}
	c := NewTestCaseCache(rdb, store, time.Minute, recorder)
	require.NoError(t, c.Invalidate(ctx, paperID))
	defer c.Invalidate(ctx, paperID)

	for i := 0; i < 3; i++ {
		cases, err := c.GetTestCases(ctx, paperID)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"input":"1","output":"1"}]`, string(cases))
	}
	assert.Equal(t, 1, store.calls)
	assert.Equal(t, 1, recorder.misses)
	assert.Equal(t, 2, recorder.hits)

	ttl, err := rdb.TTL(ctx, cacheKey(paperID)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
