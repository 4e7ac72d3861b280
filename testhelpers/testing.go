package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadsync/internal/models"
	"leadsync/pkg/database"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func() error
}

// SetupTestDB connects to TEST_DATABASE_URL and applies the schema. The test
// is skipped when no database is configured or in short mode.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := database.NewPool(ctx, connString, nil)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return &TestDB{
		Pool: pool,
		Cleanup: func() error {
			defer pool.Close()
			_, err := pool.Exec(context.Background(), "DELETE FROM lead_status_changes WHERE customer_id LIKE 'test-%'")
			return err
		},
	}
}

// TestCustomerID returns a customer id that Cleanup removes
func TestCustomerID() string {
	return "test-" + uuid.NewString()
}

// SetupStatusChange inserts one audit row at the given time
func SetupStatusChange(t *testing.T, db *TestDB, customerID, email string, from, to models.LeadStatus, at time.Time) *models.LeadStatusChange {
	t.Helper()

	change := &models.LeadStatusChange{
		ID:         uuid.New(),
		CustomerID: customerID,
		LeadID:     uuid.NewString(),
		LeadEmail:  email,
		OldStatus:  from,
		NewStatus:  to,
		ChangedBy:  "test-user",
		CreatedAt:  at,
	}
	query := `
		INSERT INTO lead_status_changes (id, customer_id, lead_id, lead_email, old_status, new_status, changed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := db.Pool.Exec(context.Background(), query,
		change.ID, change.CustomerID, change.LeadID, change.LeadEmail,
		string(change.OldStatus), string(change.NewStatus), change.ChangedBy, change.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create test status change: %v", err)
	}
	return change
}
