package testhelpers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadsync/internal/models"
	"leadsync/internal/repositories"
)

func TestLeadAuditRepository(t *testing.T) {
	testDB := SetupTestDB(t)
	defer testDB.Cleanup()

	ctx := context.Background()
	repo := repositories.NewLeadAuditRepo(testDB.Pool)
	customerID := TestCustomerID()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	SetupStatusChange(t, testDB, customerID, "ann@acme.io", models.LeadStatusNew, models.LeadStatusContacted, base)
	SetupStatusChange(t, testDB, customerID, "ANN@acme.io", models.LeadStatusContacted, models.LeadStatusQualified, base.Add(time.Hour))
	SetupStatusChange(t, testDB, customerID, "bob@acme.io", models.LeadStatusNew, models.LeadStatusConverted, base.Add(2*time.Hour))

	t.Run("Create", func(t *testing.T) {
		change := &models.LeadStatusChange{
			CustomerID: customerID,
			LeadID:     "l9",
			LeadEmail:  "cy@acme.io",
			OldStatus:  models.LeadStatusNew,
			NewStatus:  models.LeadStatusQualified,
			ChangedBy:  "u1",
		}
		require.NoError(t, repo.Create(ctx, change))
		assert.NotEmpty(t, change.ID)

		leadID := "l9"
		found, err := repo.List(ctx, &models.LeadStatusChangeFilters{CustomerID: customerID, LeadID: &leadID})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, models.LeadStatusQualified, found[0].NewStatus)
	})

	t.Run("ListByEmailIgnoresCase", func(t *testing.T) {
		email := "ann@ACME.io"
		filters := &models.LeadStatusChangeFilters{CustomerID: customerID, LeadEmail: &email}

		changes, err := repo.List(ctx, filters)
		require.NoError(t, err)
		require.Len(t, changes, 2)
		assert.Equal(t, models.LeadStatusQualified, changes[0].NewStatus, "newest first")

		count, err := repo.Count(ctx, filters)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("DateRange", func(t *testing.T) {
		start := base.Add(90 * time.Minute)
		end := base.Add(3 * time.Hour)
		changes, err := repo.List(ctx, &models.LeadStatusChangeFilters{CustomerID: customerID, StartDate: &start, EndDate: &end})
		require.NoError(t, err)
		require.Len(t, changes, 1)
		assert.Equal(t, "bob@acme.io", changes[0].LeadEmail)
	})
}
