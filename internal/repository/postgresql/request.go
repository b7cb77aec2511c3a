package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/retailops/storeops-backend/internal/domain/request"
	"github.com/retailops/storeops-backend/internal/pkg/database"
	"github.com/retailops/storeops-backend/internal/pkg/occ"
)

const requestColumns = `
	r.id, r.store_id, r.requester_id, r.category, r.title, r.description, r.quantity,
	r.status, r.review_note, r.reviewed_by, r.confirmed_at, r.cancelled_at,
	r.created_at, r.updated_at,
	s.name AS store_name
`

type requestRepository struct {
	db *database.DB
}

func scanRequest(row pgx.Row) (request.SupplyRequest, error) {
	var r request.SupplyRequest
	err := row.Scan(
		&r.ID, &r.StoreID, &r.RequesterID, &r.Category, &r.Title, &r.Description, &r.Quantity,
		&r.Status, &r.ReviewNote, &r.ReviewedBy, &r.ConfirmedAt, &r.CancelledAt,
		&r.CreatedAt, &r.UpdatedAt,
		&r.StoreName,
	)
	return r, err
}

// Create implements request.RequestRepository.
func (r *requestRepository) Create(ctx context.Context, req request.SupplyRequest) (request.SupplyRequest, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return request.SupplyRequest{}, fmt.Errorf("failed to generate request id: %w", err)
	}
	req.ID = id.String()

	query := `
		INSERT INTO supply_requests (
			id, store_id, requester_id, category, title, description, quantity, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		) RETURNING created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		req.ID,
		req.StoreID,
		req.RequesterID,
		req.Category,
		req.Title,
		req.Description,
		req.Quantity,
		req.Status,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return request.SupplyRequest{}, fmt.Errorf("failed to create request: %w", err)
	}

	return req, nil
}

// GetByID implements request.RequestRepository.
func (r *requestRepository) GetByID(ctx context.Context, id string) (request.SupplyRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + requestColumns + `
		FROM supply_requests r
		JOIN stores s ON s.id = r.store_id
		WHERE r.id = $1
	`

	req, err := scanRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return request.SupplyRequest{}, request.ErrRequestNotFound
		}
		return request.SupplyRequest{}, fmt.Errorf("failed to get request: %w", err)
	}

	return req, nil
}

// ConditionalUpdate implements request.RequestRepository. The new
// updated_at is strictly greater than the old one even if the clock has not
// advanced, so every successful write invalidates outstanding versions.
func (r *requestRepository) ConditionalUpdate(ctx context.Context, id string, expected occ.Expectation, next request.SupplyRequest) (request.SupplyRequest, bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH r AS (
			UPDATE supply_requests
			SET category = $4,
				title = $5,
				description = $6,
				quantity = $7,
				status = $8,
				review_note = $9,
				reviewed_by = $10,
				confirmed_at = $11,
				cancelled_at = $12,
				updated_at = GREATEST(clock_timestamp(), updated_at + INTERVAL '1 microsecond')
			WHERE id = $1
			  AND status = $2
			  AND updated_at = $3
			RETURNING *
		)
		SELECT ` + requestColumns + `
		FROM r
		JOIN stores s ON s.id = r.store_id
	`

	updated, err := scanRequest(q.QueryRow(ctx, query,
		id,
		expected.Status,
		expected.Version,
		next.Category,
		next.Title,
		next.Description,
		next.Quantity,
		next.Status,
		next.ReviewNote,
		next.ReviewedBy,
		next.ConfirmedAt,
		next.CancelledAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return request.SupplyRequest{}, false, nil
		}
		return request.SupplyRequest{}, false, fmt.Errorf("failed to update request: %w", err)
	}

	return updated, true, nil
}

// MarkConfirmed implements request.RequestRepository.
func (r *requestRepository) MarkConfirmed(ctx context.Context, id string, at time.Time) (request.SupplyRequest, error) {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `UPDATE supply_requests SET confirmed_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return request.SupplyRequest{}, fmt.Errorf("failed to confirm request: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return request.SupplyRequest{}, request.ErrRequestNotFound
	}

	return r.GetByID(ctx, id)
}

// List implements request.RequestRepository.
func (r *requestRepository) List(ctx context.Context, filter request.RequestFilter) ([]request.SupplyRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "TRUE"
	args := []interface{}{}
	argIdx := 1

	if filter.StoreID != nil && *filter.StoreID != "" {
		baseWhere += fmt.Sprintf(" AND r.store_id = $%d", argIdx)
		args = append(args, *filter.StoreID)
		argIdx++
	}

	if filter.RequesterID != nil && *filter.RequesterID != "" {
		baseWhere += fmt.Sprintf(" AND r.requester_id = $%d", argIdx)
		args = append(args, *filter.RequesterID)
		argIdx++
	}

	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND r.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.Category != nil && *filter.Category != "" {
		baseWhere += fmt.Sprintf(" AND r.category = $%d", argIdx)
		args = append(args, *filter.Category)
		argIdx++
	}

	countQuery := `SELECT COUNT(*) FROM supply_requests r WHERE ` + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count requests: %w", err)
	}

	orderByField := "r.created_at"
	if filter.SortBy == "updated_at" {
		orderByField = "r.updated_at"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := max(filter.Page, 1)
	offset := (page - 1) * limit

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM supply_requests r
		JOIN stores s ON s.id = r.store_id
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, requestColumns, baseWhere, orderByField, sortOrder, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []request.SupplyRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate requests: %w", err)
	}

	return requests, total, nil
}

func NewRequestRepository(db *database.DB) request.RequestRepository {
	return &requestRepository{db: db}
}
