package checklist

import "time"

// Item is one checklist entry assigned to a user for a store and work date.
type Item struct {
	ID          string
	StoreID     string
	UserID      string
	WorkDate    time.Time
	TemplateID  string
	Title       string
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// Progress is the completion count for a (store, user, work date).
type Progress struct {
	Completed int
	Total     int
}

// IsFullyComplete is true when every assigned item is done. No items
// assigned counts as complete.
func (p Progress) IsFullyComplete() bool {
	return p.Completed >= p.Total
}
