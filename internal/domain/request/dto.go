package request

import (
	"strings"
	"time"

	"github.com/retailops/storeops-backend/internal/pkg/validator"
)

// VersionLayout is how the version token travels over the wire.
const VersionLayout = time.RFC3339Nano

// Actor is the authenticated caller, as supplied by the identity provider.
type Actor struct {
	UserID  string
	IsAdmin bool
}

// ========================================
// CREATE / EDIT DTOs
// ========================================

type CreateRequestRequest struct {
	Actor       Actor   `json:"-"`
	StoreID     string  `json:"store_id"`
	Category    string  `json:"category"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Quantity    *int    `json:"quantity,omitempty"`
}

func (r *CreateRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.StoreID) {
		errs = append(errs, validator.ValidationError{
			Field:   "store_id",
			Message: "store_id is required",
		})
	} else if !validator.IsValidUUID(r.StoreID) {
		errs = append(errs, validator.ValidationError{
			Field:   "store_id",
			Message: "store_id must be a valid UUID",
		})
	}

	r.Category = strings.ToLower(strings.TrimSpace(r.Category))
	if !validator.IsInSlice(r.Category, CategoryValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "category",
			Message: "category must be one of: supply, service",
		})
	}

	errs = append(errs, validateContent(&r.Title, r.Description, r.Quantity, true)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type EditRequestRequest struct {
	ID              string  `json:"-"`
	Actor           Actor   `json:"-"`
	ExpectedVersion string  `json:"expected_version"`
	Category        *string `json:"category,omitempty"`
	Title           *string `json:"title,omitempty"`
	Description     *string `json:"description,omitempty"`
	Quantity        *int    `json:"quantity,omitempty"`
}

func (r *EditRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validateVersion(r.ExpectedVersion)...)

	if r.Category == nil && r.Title == nil && r.Description == nil && r.Quantity == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "body",
			Message: "at least one of category, title, description, quantity is required",
		})
	}

	if r.Category != nil {
		c := strings.ToLower(strings.TrimSpace(*r.Category))
		r.Category = &c
		if !validator.IsInSlice(c, CategoryValues) {
			errs = append(errs, validator.ValidationError{
				Field:   "category",
				Message: "category must be one of: supply, service",
			})
		}
	}

	if r.Title != nil {
		errs = append(errs, validateContent(r.Title, r.Description, r.Quantity, true)...)
	} else {
		errs = append(errs, validateContent(nil, r.Description, r.Quantity, false)...)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Version returns the parsed expected version. Call after Validate.
func (r *EditRequestRequest) Version() time.Time {
	t, _ := validator.IsValidDateTime(r.ExpectedVersion)
	return t
}

type CancelRequestRequest struct {
	ID              string `json:"-"`
	Actor           Actor  `json:"-"`
	ExpectedVersion string `json:"expected_version"`
}

func (r *CancelRequestRequest) Validate() error {
	if errs := validateVersion(r.ExpectedVersion); len(errs) > 0 {
		return errs
	}
	return nil
}

func (r *CancelRequestRequest) Version() time.Time {
	t, _ := validator.IsValidDateTime(r.ExpectedVersion)
	return t
}

// AdvanceRequestRequest moves a request along the reviewer workflow.
type AdvanceRequestRequest struct {
	ID              string  `json:"-"`
	Actor           Actor   `json:"-"`
	ExpectedVersion string  `json:"expected_version"`
	ExpectedStatus  string  `json:"expected_status"`
	NextStatus      string  `json:"next_status"`
	Note            *string `json:"note,omitempty"`
}

func (r *AdvanceRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validateVersion(r.ExpectedVersion)...)

	if !validator.IsInSlice(r.ExpectedStatus, StatusValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "expected_status",
			Message: "expected_status must be one of: " + strings.Join(StatusValues, ", "),
		})
	}
	if !validator.IsInSlice(r.NextStatus, StatusValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "next_status",
			Message: "next_status must be one of: " + strings.Join(StatusValues, ", "),
		})
	}

	if r.Note != nil && !validator.MaxLength(*r.Note, 1000) {
		errs = append(errs, validator.ValidationError{
			Field:   "note",
			Message: "note must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (r *AdvanceRequestRequest) Version() time.Time {
	t, _ := validator.IsValidDateTime(r.ExpectedVersion)
	return t
}

func validateVersion(v string) validator.ValidationErrors {
	if validator.IsEmpty(v) {
		return validator.ValidationErrors{{
			Field:   "expected_version",
			Message: "expected_version is required",
		}}
	}
	if _, ok := validator.IsValidDateTime(v); !ok {
		return validator.ValidationErrors{{
			Field:   "expected_version",
			Message: "expected_version must be the version returned by the server",
		}}
	}
	return nil
}

func validateContent(title *string, description *string, quantity *int, checkTitle bool) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if checkTitle && title != nil {
		*title = strings.TrimSpace(*title)
		if *title == "" {
			errs = append(errs, validator.ValidationError{
				Field:   "title",
				Message: "title is required",
			})
		} else if !validator.MaxLength(*title, 200) {
			errs = append(errs, validator.ValidationError{
				Field:   "title",
				Message: "title must not exceed 200 characters",
			})
		}
	}

	if description != nil && !validator.MaxLength(*description, 2000) {
		errs = append(errs, validator.ValidationError{
			Field:   "description",
			Message: "description must not exceed 2000 characters",
		})
	}

	if quantity != nil && *quantity <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "quantity",
			Message: "quantity must be a positive number",
		})
	}

	return errs
}

// ========================================
// RESPONSE DTOs
// ========================================

type RequestResponse struct {
	ID          string  `json:"id"`
	StoreID     string  `json:"store_id"`
	StoreName   *string `json:"store_name,omitempty"`
	RequesterID string  `json:"requester_id"`
	Category    string  `json:"category"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Quantity    *int    `json:"quantity,omitempty"`
	Status      string  `json:"status"`
	ReviewNote  *string `json:"review_note,omitempty"`
	ReviewedBy  *string `json:"reviewed_by,omitempty"`
	ConfirmedAt *string `json:"confirmed_at,omitempty"`
	CancelledAt *string `json:"cancelled_at,omitempty"`
	IsEditable  bool    `json:"is_editable"`
	// Version must be echoed back as expected_version on edit, cancel and advance.
	Version   string `json:"version"`
	CreatedAt string `json:"created_at"`
}

// ToResponse renders a request for the API.
func ToResponse(r SupplyRequest) RequestResponse {
	resp := RequestResponse{
		ID:          r.ID,
		StoreID:     r.StoreID,
		StoreName:   r.StoreName,
		RequesterID: r.RequesterID,
		Category:    string(r.Category),
		Title:       r.Title,
		Description: r.Description,
		Quantity:    r.Quantity,
		Status:      string(r.Status),
		ReviewNote:  r.ReviewNote,
		ReviewedBy:  r.ReviewedBy,
		IsEditable:  r.IsEditable(),
		Version:     r.UpdatedAt.UTC().Format(VersionLayout),
		CreatedAt:   r.CreatedAt.UTC().Format(time.RFC3339),
	}
	if r.ConfirmedAt != nil {
		s := r.ConfirmedAt.UTC().Format(time.RFC3339)
		resp.ConfirmedAt = &s
	}
	if r.CancelledAt != nil {
		s := r.CancelledAt.UTC().Format(time.RFC3339)
		resp.CancelledAt = &s
	}
	return resp
}

// ========================================
// LIST DTOs
// ========================================

type RequestFilter struct {
	StoreID     *string `json:"store_id,omitempty"`
	RequesterID *string `json:"requester_id,omitempty"`
	Status      *string `json:"status,omitempty"`
	Category    *string `json:"category,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // created_at, updated_at
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *RequestFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Status != nil && !validator.IsInSlice(*f.Status, StatusValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(StatusValues, ", "),
		})
	}

	if f.Category != nil && !validator.IsInSlice(*f.Category, CategoryValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "category",
			Message: "category must be one of: supply, service",
		})
	}

	if f.SortBy == "" {
		f.SortBy = "created_at"
	} else if !validator.IsInSlice(f.SortBy, []string{"created_at", "updated_at"}) {
		errs = append(errs, validator.ValidationError{
			Field:   "sort_by",
			Message: "sort_by must be one of: created_at, updated_at",
		})
	}

	if f.SortOrder == "" {
		f.SortOrder = "desc"
	} else if !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
		errs = append(errs, validator.ValidationError{
			Field:   "sort_order",
			Message: "sort_order must be one of: asc, desc",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListRequestResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Showing    string            `json:"showing"`
	Requests   []RequestResponse `json:"requests"`
}
