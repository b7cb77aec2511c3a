package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/retailops/storeops-backend/internal/domain/store"
)

const scheduleKeyPrefix = "store:schedule:"

// cachedSchedule is the JSON form stored in Redis.
type cachedSchedule struct {
	StoreID        string    `json:"store_id"`
	Name           string    `json:"name"`
	ManagementDays []string  `json:"management_days"`
	IsNightShift   bool      `json:"is_night_shift"`
	ShiftStartHour *int      `json:"shift_start_hour,omitempty"`
	ShiftEndHour   *int      `json:"shift_end_hour,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// storeCache reads schedule configs through Redis. Membership lookups go
// straight to the wrapped repository. Redis failures never fail a read.
type storeCache struct {
	store.StoreRepository
	rdb *goredis.Client
	ttl time.Duration
}

// GetScheduleConfig implements store.StoreRepository.
func (c *storeCache) GetScheduleConfig(ctx context.Context, storeID string) (store.ScheduleConfig, error) {
	key := scheduleKeyPrefix + storeID

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached cachedSchedule
		readErr := json.Unmarshal(raw, &cached)
		if readErr == nil {
			var cfg store.ScheduleConfig
			if cfg, readErr = cached.toConfig(); readErr == nil {
				return cfg, nil
			}
		}
		slog.Warn("discarding unreadable cached store schedule", "store_id", storeID, "error", readErr)
	case errors.Is(err, goredis.Nil):
		// miss
	default:
		slog.Warn("store schedule cache read failed", "store_id", storeID, "error", err)
	}

	cfg, err := c.StoreRepository.GetScheduleConfig(ctx, storeID)
	if err != nil {
		return store.ScheduleConfig{}, err
	}

	payload, err := json.Marshal(fromConfig(cfg))
	if err == nil {
		err = c.rdb.Set(ctx, key, payload, c.ttl).Err()
	}
	if err != nil {
		slog.Warn("store schedule cache write failed", "store_id", storeID, "error", err)
	}

	return cfg, nil
}

// invalidate drops the cached schedule of a store.
func (c *storeCache) invalidate(ctx context.Context, storeID string) error {
	return c.rdb.Del(ctx, scheduleKeyPrefix+storeID).Err()
}

func fromConfig(cfg store.ScheduleConfig) cachedSchedule {
	return cachedSchedule{
		StoreID:        cfg.StoreID,
		Name:           cfg.Name,
		ManagementDays: store.WeekdayNames(cfg.ManagementDays),
		IsNightShift:   cfg.IsNightShift,
		ShiftStartHour: cfg.ShiftStartHour,
		ShiftEndHour:   cfg.ShiftEndHour,
		UpdatedAt:      cfg.UpdatedAt,
	}
}

func (c cachedSchedule) toConfig() (store.ScheduleConfig, error) {
	days, err := store.ParseWeekdays(c.ManagementDays)
	if err != nil {
		return store.ScheduleConfig{}, err
	}
	return store.ScheduleConfig{
		StoreID:        c.StoreID,
		Name:           c.Name,
		ManagementDays: days,
		IsNightShift:   c.IsNightShift,
		ShiftStartHour: c.ShiftStartHour,
		ShiftEndHour:   c.ShiftEndHour,
		UpdatedAt:      c.UpdatedAt,
	}, nil
}

// NewStoreCache wraps next with a Redis read-through cache for schedule
// configs. Entries expire after ttl; schedules are edited outside this
// service, so expiry is the only invalidation in production.
func NewStoreCache(next store.StoreRepository, rdb *goredis.Client, ttl time.Duration) store.StoreRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &storeCache{StoreRepository: next, rdb: rdb, ttl: ttl}
}
