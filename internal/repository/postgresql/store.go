package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/retailops/storeops-backend/internal/domain/store"
	"github.com/retailops/storeops-backend/internal/pkg/database"
)

type storeRepository struct {
	db *database.DB
}

// GetScheduleConfig implements store.StoreRepository.
func (s *storeRepository) GetScheduleConfig(ctx context.Context, storeID string) (store.ScheduleConfig, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT id, name, management_days, is_night_shift, shift_start_hour, shift_end_hour, updated_at
		FROM stores
		WHERE id = $1
	`

	var (
		cfg  store.ScheduleConfig
		days []string
	)
	err := q.QueryRow(ctx, query, storeID).Scan(
		&cfg.StoreID, &cfg.Name, &days, &cfg.IsNightShift, &cfg.ShiftStartHour, &cfg.ShiftEndHour, &cfg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ScheduleConfig{}, store.ErrStoreNotFound
		}
		return store.ScheduleConfig{}, fmt.Errorf("failed to get store schedule config: %w", err)
	}

	cfg.ManagementDays, err = store.ParseWeekdays(days)
	if err != nil {
		return store.ScheduleConfig{}, fmt.Errorf("store %s schedule: %w", storeID, err)
	}

	return cfg, nil
}

// GetMember implements store.StoreRepository.
func (s *storeRepository) GetMember(ctx context.Context, storeID string, userID string) (store.Member, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT store_id, user_id, role, created_at
		FROM store_members
		WHERE store_id = $1 AND user_id = $2
	`

	var m store.Member
	err := q.QueryRow(ctx, query, storeID, userID).Scan(&m.StoreID, &m.UserID, &m.Role, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Member{}, store.ErrNotStoreMember
		}
		return store.Member{}, fmt.Errorf("failed to get store member: %w", err)
	}

	return m, nil
}

func NewStoreRepository(db *database.DB) store.StoreRepository {
	return &storeRepository{db: db}
}
