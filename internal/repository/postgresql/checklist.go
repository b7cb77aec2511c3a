package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailops/storeops-backend/internal/domain/checklist"
	"github.com/retailops/storeops-backend/internal/pkg/database"
)

type checklistRepository struct {
	db *database.DB
}

type checklistTemplate struct {
	ID    string
	Title string
}

// InstantiateForWorkDate implements checklist.Provisioner. Running it twice
// for the same work date creates nothing new.
func (c *checklistRepository) InstantiateForWorkDate(ctx context.Context, storeID string, userID string, workDate time.Time) error {
	return WithTransaction(ctx, c.db, func(txCtx context.Context) error {
		q := GetQuerier(txCtx, c.db)

		rows, err := q.Query(txCtx, `
			SELECT id, title
			FROM checklist_templates
			WHERE store_id = $1 AND active
			ORDER BY sort_order, created_at
		`, storeID)
		if err != nil {
			return fmt.Errorf("failed to query checklist templates: %w", err)
		}

		var templates []checklistTemplate
		for rows.Next() {
			var t checklistTemplate
			if err := rows.Scan(&t.ID, &t.Title); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan checklist template: %w", err)
			}
			templates = append(templates, t)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to iterate checklist templates: %w", err)
		}

		for _, t := range templates {
			id, err := uuid.NewV7()
			if err != nil {
				return fmt.Errorf("failed to generate checklist item id: %w", err)
			}
			_, err = q.Exec(txCtx, `
				INSERT INTO checklist_items (id, store_id, user_id, work_date, template_id, title)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT ON CONSTRAINT uq_checklist_items_assignment DO NOTHING
			`, id.String(), storeID, userID, workDate, t.ID, t.Title)
			if err != nil {
				return fmt.Errorf("failed to create checklist item: %w", err)
			}
		}

		return nil
	})
}

// Progress implements checklist.ProgressOracle.
func (c *checklistRepository) Progress(ctx context.Context, storeID string, userID string, workDate time.Time) (checklist.Progress, error) {
	q := GetQuerier(ctx, c.db)

	var p checklist.Progress
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE completed_at IS NOT NULL), COUNT(*)
		FROM checklist_items
		WHERE store_id = $1 AND user_id = $2 AND work_date = $3
	`, storeID, userID, workDate).Scan(&p.Completed, &p.Total)
	if err != nil {
		return checklist.Progress{}, fmt.Errorf("failed to count checklist items: %w", err)
	}

	return p, nil
}

func NewChecklistProvisioner(db *database.DB) checklist.Provisioner {
	return &checklistRepository{db: db}
}

func NewChecklistProgressOracle(db *database.DB) checklist.ProgressOracle {
	return &checklistRepository{db: db}
}
