package request

import (
	"context"
	"time"

	"github.com/retailops/storeops-backend/internal/pkg/occ"
)

type RequestRepository interface {
	Create(ctx context.Context, req SupplyRequest) (SupplyRequest, error)

	// GetByID returns ErrRequestNotFound when missing.
	GetByID(ctx context.Context, id string) (SupplyRequest, error)

	// ConditionalUpdate writes the content and status fields of next only if
	// the row still has the expected status and updated_at. ok is false when
	// the condition did not hold.
	ConditionalUpdate(ctx context.Context, id string, expected occ.Expectation, next SupplyRequest) (updated SupplyRequest, ok bool, err error)

	// MarkConfirmed records the requester's acknowledgement. It does not
	// touch the version token.
	MarkConfirmed(ctx context.Context, id string, at time.Time) (SupplyRequest, error)

	List(ctx context.Context, filter RequestFilter) ([]SupplyRequest, int64, error)
}
