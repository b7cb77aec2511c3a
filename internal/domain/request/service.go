package request

import "context"

type RequestService interface {
	CreateRequest(ctx context.Context, req CreateRequestRequest) (RequestResponse, error)

	// EditRequest and CancelRequest only succeed while the request is still
	// received and unchanged since the caller read it. Otherwise they return
	// a *ConflictError with the latest state.
	EditRequest(ctx context.Context, req EditRequestRequest) (RequestResponse, error)
	CancelRequest(ctx context.Context, req CancelRequestRequest) (RequestResponse, error)

	AdvanceRequest(ctx context.Context, req AdvanceRequestRequest) (RequestResponse, error)
	ConfirmRequest(ctx context.Context, id string, actor Actor) (RequestResponse, error)

	GetRequest(ctx context.Context, id string, actor Actor) (RequestResponse, error)
	ListRequests(ctx context.Context, filter RequestFilter, actor Actor) (ListRequestResponse, error)
}
