package store

import "errors"

var (
	ErrStoreNotFound  = errors.New("store not found")
	ErrNotStoreMember = errors.New("user is not assigned to this store")

	ErrInvalidManagementDay = errors.New("invalid management day")
)
