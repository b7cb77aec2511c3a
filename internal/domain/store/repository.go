package store

import "context"

// StoreRepository reads store schedule configuration and membership.
type StoreRepository interface {
	// GetScheduleConfig returns ErrStoreNotFound when the store does not exist.
	GetScheduleConfig(ctx context.Context, storeID string) (ScheduleConfig, error)

	// GetMember returns ErrNotStoreMember when the user is not assigned to the store.
	GetMember(ctx context.Context, storeID string, userID string) (Member, error)
}
