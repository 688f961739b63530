package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"exam-eligibility/internal/common/database"
	"exam-eligibility/internal/common/logger"
	"exam-eligibility/internal/common/metrics"
	"exam-eligibility/internal/eligibility"

	"github.com/redis/go-redis/v9"
)

// CachedSource serves the corpus from Redis and falls back to next on a
// miss. Redis failures are logged and never fail a load.
type CachedSource struct {
	next   Source
	redis  *database.RedisClient
	key    string
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedSource(next Source, rdb *database.RedisClient, key string, ttl time.Duration, log logger.Logger) *CachedSource {
	return &CachedSource{
		next:   next,
		redis:  rdb,
		key:    key,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"cacheKey": key}),
	}
}

// cachedExam mirrors ExamSource with JSON tags; Data is stored base64.
type cachedExam struct {
	Code  string `json:"code"`
	Label string `json:"label,omitempty"`
	Data  []byte `json:"data"`
}

func (c *CachedSource) LoadAll(ctx context.Context) ([]eligibility.ExamSource, error) {
	var cached []cachedExam
	if c.lookup(ctx, c.key, &cached) {
		exams := make([]eligibility.ExamSource, len(cached))
		for i, e := range cached {
			exams[i] = eligibility.ExamSource{Code: e.Code, Label: e.Label, Data: e.Data}
		}
		return exams, nil
	}

	exams, err := c.next.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	snapshot := make([]cachedExam, len(exams))
	for i, e := range exams {
		snapshot[i] = cachedExam{Code: e.Code, Label: e.Label, Data: e.Data}
	}
	c.store(ctx, c.key, snapshot)
	return exams, nil
}

func (c *CachedSource) Get(ctx context.Context, code string) (eligibility.ExamSource, error) {
	key := c.key + ":exam:" + code
	var cached cachedExam
	if c.lookup(ctx, key, &cached) {
		return eligibility.ExamSource{Code: cached.Code, Label: cached.Label, Data: cached.Data}, nil
	}

	exam, err := c.next.Get(ctx, code)
	if err != nil {
		return exam, err
	}
	c.store(ctx, key, cachedExam{Code: exam.Code, Label: exam.Label, Data: exam.Data})
	return exam, nil
}

// Invalidate drops the snapshot and every per-exam entry. Keys that only
// share the text of the cache key are left alone.
func (c *CachedSource) Invalidate(ctx context.Context) error {
	n, err := c.redis.Client.Del(ctx, c.key).Result()
	if err != nil {
		return fmt.Errorf("delete %s: %w", c.key, err)
	}
	entries, err := c.redis.DeletePrefix(ctx, c.key+":")
	if err != nil {
		return err
	}
	n += entries
	c.logger.Info("corpus cache invalidated", map[string]interface{}{"keys": n})
	return nil
}

func (c *CachedSource) lookup(ctx context.Context, key string, dst interface{}) bool {
	val, err := c.redis.Client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		metrics.CorpusCacheRequests.WithLabelValues("miss").Inc()
		return false
	case err != nil:
		metrics.CorpusCacheRequests.WithLabelValues("error").Inc()
		c.logger.Warn("corpus cache read failed", map[string]interface{}{"key": key, "error": err})
		return false
	}
	if err := json.Unmarshal(val, dst); err != nil {
		metrics.CorpusCacheRequests.WithLabelValues("error").Inc()
		c.logger.Warn("corpus cache entry corrupt", map[string]interface{}{"key": key, "error": err})
		return false
	}
	metrics.CorpusCacheRequests.WithLabelValues("hit").Inc()
	return true
}

func (c *CachedSource) store(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.redis.Client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("corpus cache write failed", map[string]interface{}{"key": key, "error": err})
	}
}
