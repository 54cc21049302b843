package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"wellness_backend/internal/util"
	"wellness_backend/pkg/logger"
	"wellness_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	statsKeyPrefix   = "stats:"
	cacheOpTimeout   = 500 * time.Millisecond
	defaultStatsTTL  = 5 * time.Minute
	versionKeyFormat = statsKeyPrefix + "%d:version"
)

// StatsCache 统计结果缓存；每个用户一个版本号，写操作递增版本使旧结果自然失效
type StatsCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

// NewStatsCache rdb 为 nil 时缓存不生效
func NewStatsCache(rdb *redis.Client, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = defaultStatsTTL
	}
	return &StatsCache{Redis: rdb, TTL: ttl}
}

func (c *StatsCache) Enabled() bool {
	return c != nil && c.Redis != nil
}

// Key stats:{user}:v{version}:{days}:{end}
func (c *StatsCache) Key(ctx context.Context, userID uint, days int, end string) (string, error) {
	version, err := c.Redis.Get(ctx, fmt.Sprintf(versionKeyFormat, userID)).Int64()
	if err == redis.Nil {
		version = 0
	} else if err != nil {
		return "", util.Transient("read stats version", err)
	}
	return fmt.Sprintf("%s%d:v%d:%d:%s", statsKeyPrefix, userID, version, days, end), nil
}

// Get 命中返回 true
func (c *StatsCache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	val, err := c.Redis.Get(ctx, key).Result()
	if err == redis.Nil {
		monitoring.CacheResults.WithLabelValues("miss").Inc()
		return false, nil
	}
	if err != nil {
		monitoring.CacheResults.WithLabelValues("error").Inc()
		return false, util.Transient("read stats cache", err)
	}
	if err := json.Unmarshal([]byte(val), dst); err != nil {
		// 结构变化后的旧数据按未命中处理
		monitoring.CacheResults.WithLabelValues("miss").Inc()
		return false, nil
	}
	monitoring.CacheResults.WithLabelValues("hit").Inc()
	return true, nil
}

func (c *StatsCache) Set(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.Redis.Set(ctx, key, data, c.TTL).Err(); err != nil {
		return util.Transient("write stats cache", err)
	}
	return nil
}

// Invalidate 递增用户版本号，失败只记录日志
func (c *StatsCache) Invalidate(userID uint) {
	if !c.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()

	if err := c.Redis.Incr(ctx, fmt.Sprintf(versionKeyFormat, userID)).Err(); err != nil {
		logger.Log.Warn("invalidate stats cache failed", zap.Uint("user_id", userID), zap.Error(err))
	}
}
