package checklist

import (
	"context"
	"time"
)

// Provisioner creates the checklist items a user must complete for a work date.
// Callers treat it as fire-and-forget.
type Provisioner interface {
	InstantiateForWorkDate(ctx context.Context, storeID string, userID string, workDate time.Time) error
}

// ProgressOracle reports how much of a user's checklist is done.
type ProgressOracle interface {
	Progress(ctx context.Context, storeID string, userID string, workDate time.Time) (Progress, error)
}
