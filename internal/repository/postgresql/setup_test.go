package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailops/storeops-backend/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

var migrateOnce sync.Once

// openTestDB connects to TEST_DATABASE_URL, migrates it once per run and
// empties every table. Tests are skipped when the variable is not set.
func openTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	db, err := database.NewPostgreSQLDB(dsn, database.PoolOptions{MaxConns: 5, MinConns: 1})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	var migrateErr error
	migrateOnce.Do(func() {
		migrateErr = database.RunMigrations(db)
	})
	require.NoError(t, migrateErr)

	ctx := context.Background()
	tables := []string{
		"supply_requests",
		"checklist_items",
		"checklist_templates",
		"attendance_records",
		"store_members",
		"stores",
		"users",
	}
	for _, table := range tables {
		_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "truncate %s", table)
	}

	return db
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func seedStore(t *testing.T, db *database.DB, days []string, nightShift bool, startHour *int) string {
	t.Helper()
	id := newID()
	if days == nil {
		days = []string{}
	}
	_, err := db.Exec(context.Background(), `
		INSERT INTO stores (id, name, management_days, is_night_shift, shift_start_hour)
		VALUES ($1, $2, $3, $4, $5)
	`, id, "Store "+id[:8], days, nightShift, startHour)
	require.NoError(t, err)
	return id
}

func seedUser(t *testing.T, db *database.DB, name string) string {
	t.Helper()
	id := newID()
	_, err := db.Exec(context.Background(), `INSERT INTO users (id, full_name) VALUES ($1, $2)`, id, name)
	require.NoError(t, err)
	return id
}

func seedMember(t *testing.T, db *database.DB, storeID, userID, role string) {
	t.Helper()
	_, err := db.Exec(context.Background(), `
		INSERT INTO store_members (store_id, user_id, role) VALUES ($1, $2, $3)
	`, storeID, userID, role)
	require.NoError(t, err)
}

func workDate(day int) time.Time {
	return time.Date(2024, time.March, day, 0, 0, 0, 0, time.UTC)
}
