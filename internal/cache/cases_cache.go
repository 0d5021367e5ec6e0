package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/s-dudhiya/EduNexus/internal/constants"
	"github.com/s-dudhiya/EduNexus/internal/model"
	"go.uber.org/zap"
)

// PaperStore 被缓存的测试用例来源
type PaperStore interface {
	GetTestCases(ctx context.Context, examPaperID int64) (model.TestCaseSet, error)
}

// Recorder 记录缓存命中情况
type Recorder interface {
	RecordCacheHit()
	RecordCacheMiss()
}

// TestCaseCache 测试用例载荷的 Redis 读穿缓存。Redis 故障时直接回源，不影响评测
type TestCaseCache struct {
	rdb      redis.Cmdable
	next     PaperStore
	ttl      time.Duration
	recorder Recorder
}

func NewTestCaseCache(rdb redis.Cmdable, next PaperStore, ttl time.Duration, recorder Recorder) *TestCaseCache {
	if ttl <= 0 {
		ttl = constants.DefaultCacheTTL
	}
	return &TestCaseCache{
		rdb:      rdb,
		next:     next,
		ttl:      ttl,
		recorder: recorder,
	}
}

func cacheKey(examPaperID int64) string {
	return fmt.Sprintf("%s%d", constants.TestCaseCachePrefix, examPaperID)
}

// GetTestCases 先查缓存，未命中时回源并写回。只缓存成功取到的载荷
func (c *TestCaseCache) GetTestCases(ctx context.Context, examPaperID int64) (model.TestCaseSet, error) {
	key := cacheKey(examPaperID)

	val, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		c.hit()
		zap.L().Debug("测试用例缓存命中", zap.Int64("exam_paper_id", examPaperID))
		return model.TestCaseSet(val), nil
	case errors.Is(err, redis.Nil):
	default:
		zap.L().Warn("读取测试用例缓存失败", zap.String("key", key), zap.Error(err))
	}
	c.miss()

	cases, err := c.next.GetTestCases(ctx, examPaperID)
	if err != nil {
		return nil, err
	}
	if !cases.IsEmpty() {
		if err := c.rdb.Set(ctx, key, []byte(cases), c.ttl).Err(); err != nil {
			zap.L().Warn("写入测试用例缓存失败", zap.String("key", key), zap.Error(err))
		}
	}
	return cases, nil
}

// Invalidate 删除试卷的缓存，试卷更新后调用
func (c *TestCaseCache) Invalidate(ctx context.Context, examPaperID int64) error {
	return c.rdb.Del(ctx, cacheKey(examPaperID)).Err()
}

func (c *TestCaseCache) hit() {
	if c.recorder != nil {
		c.recorder.RecordCacheHit()
	}
}

func (c *TestCaseCache) miss() {
	if c.recorder != nil {
		c.recorder.RecordCacheMiss()
	}
}
