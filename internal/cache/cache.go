package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/compliance"
)

// ReportCache 按地点和月份缓存合规校验结果，任何班次写入都应当调用 Invalidate
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{
		client: client,
		ttl:    ttl,
	}
}

func reportKey(locationID int64, month time.Time) string {
	return fmt.Sprintf("compliance_report_%d_%s", locationID, month.Format("2006-01"))
}

// Get 未命中时返回 nil, false, nil
func (c *ReportCache) Get(ctx context.Context, locationID int64, month time.Time) (*compliance.ConflictState, bool, error) {
	data, err := c.client.Get(ctx, reportKey(locationID, month)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	state := &compliance.ConflictState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, false, err
	}

	return state, true, nil
}

func (c *ReportCache) Set(ctx context.Context, locationID int64, month time.Time, state *compliance.ConflictState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, reportKey(locationID, month), data, c.ttl).Err()
}

func (c *ReportCache) Invalidate(ctx context.Context, locationID int64, months ...time.Time) error {
	if len(months) == 0 {
		return nil
	}

	keys := make([]string, 0, len(months))
	for _, m := range months {
		keys = append(keys, reportKey(locationID, m))
	}

	return c.client.Del(ctx, keys...).Err()
}

// InvalidateLocation 删除某个地点所有月份的报告缓存
func (c *ReportCache) InvalidateLocation(ctx context.Context, locationID int64) error {
	pattern := fmt.Sprintf("compliance_report_%d_*", locationID)

	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
