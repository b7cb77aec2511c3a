package request

import "time"

type Status string

const (
	StatusReceived   Status = "received"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
	StatusCancelled  Status = "cancelled"
)

var StatusValues = []string{
	string(StatusReceived),
	string(StatusInProgress),
	string(StatusCompleted),
	string(StatusRejected),
	string(StatusCancelled),
}

// reviewerTransitions lists the status changes a reviewer may make.
// Cancellation is the requester's and is handled separately.
var reviewerTransitions = map[Status][]Status{
	StatusReceived:   {StatusInProgress, StatusRejected},
	StatusInProgress: {StatusCompleted, StatusRejected},
}

// CanAdvance reports whether a reviewer may move a request from one status to another.
func CanAdvance(from, to Status) bool {
	for _, s := range reviewerTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected || s == StatusCancelled
}

type Category string

const (
	CategorySupply  Category = "supply"
	CategoryService Category = "service"
)

var CategoryValues = []string{string(CategorySupply), string(CategoryService)}

// SupplyRequest is a supply or service request raised by store staff.
// UpdatedAt is the version token for optimistic concurrency; it only moves
// forward and changes on every guarded write.
type SupplyRequest struct {
	ID          string
	StoreID     string
	RequesterID string
	Category    Category
	Title       string
	Description *string
	Quantity    *int
	Status      Status
	ReviewNote  *string
	ReviewedBy  *string
	ConfirmedAt *time.Time
	CancelledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Joined
	StoreName *string
}

func (r SupplyRequest) VersionStamp() time.Time {
	return r.UpdatedAt
}

func (r SupplyRequest) StatusValue() string {
	return string(r.Status)
}

// IsEditable is true only while nobody has acted on the request yet.
func (r SupplyRequest) IsEditable() bool {
	return r.Status == StatusReceived
}
