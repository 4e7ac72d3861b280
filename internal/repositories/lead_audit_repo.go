package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leadsync/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const defaultAuditLimit = 50

type LeadAuditRepository interface {
	// Record an acknowledged status change
	Create(ctx context.Context, change *models.LeadStatusChange) error

	// List changes for a customer, newest first
	List(ctx context.Context, filters *models.LeadStatusChangeFilters) ([]*models.LeadStatusChange, error)

	// Count changes matching the filters, ignoring limit and offset
	Count(ctx context.Context, filters *models.LeadStatusChangeFilters) (int, error)
}

type leadAuditRepo struct {
	db DBTX
}

func NewLeadAuditRepo(db DBTX) LeadAuditRepository {
	return &leadAuditRepo{db: db}
}

func (r *leadAuditRepo) Create(ctx context.Context, change *models.LeadStatusChange) error {
	if change.ID == uuid.Nil {
		change.ID = uuid.New()
	}
	if change.CreatedAt.IsZero() {
		change.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO lead_status_changes (id, customer_id, lead_id, lead_email, old_status, new_status, changed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		change.ID,
		change.CustomerID,
		change.LeadID,
		change.LeadEmail,
		string(change.OldStatus),
		string(change.NewStatus),
		change.ChangedBy,
		change.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert lead status change: %w", err)
	}
	return nil
}

func (r *leadAuditRepo) List(ctx context.Context, filters *models.LeadStatusChangeFilters) ([]*models.LeadStatusChange, error) {
	if filters == nil {
		filters = &models.LeadStatusChangeFilters{}
	}

	where, args := buildAuditWhere(filters)

	limit := filters.Limit
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	offset := filters.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
		SELECT id, customer_id, lead_id, lead_email, old_status, new_status, changed_by, created_at
		FROM lead_status_changes
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list lead status changes: %w", err)
	}
	defer rows.Close()

	var changes []*models.LeadStatusChange
	for rows.Next() {
		change := &models.LeadStatusChange{}
		var oldStatus, newStatus string
		if err := rows.Scan(
			&change.ID,
			&change.CustomerID,
			&change.LeadID,
			&change.LeadEmail,
			&oldStatus,
			&newStatus,
			&change.ChangedBy,
			&change.CreatedAt,
		); err != nil {
			return nil, err
		}
		change.OldStatus = models.LeadStatus(oldStatus)
		change.NewStatus = models.LeadStatus(newStatus)
		changes = append(changes, change)
	}

	return changes, rows.Err()
}

func (r *leadAuditRepo) Count(ctx context.Context, filters *models.LeadStatusChangeFilters) (int, error) {
	if filters == nil {
		filters = &models.LeadStatusChangeFilters{}
	}
	where, args := buildAuditWhere(filters)

	var count int
	query := "SELECT COUNT(*) FROM lead_status_changes WHERE " + where
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func buildAuditWhere(filters *models.LeadStatusChangeFilters) (string, []any) {
	conditions := []string{"customer_id = $1"}
	args := []any{filters.CustomerID}

	add := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filters.LeadID != nil {
		add("lead_id = $%d", *filters.LeadID)
	}
	if filters.LeadEmail != nil {
		add("LOWER(lead_email) = LOWER($%d)", *filters.LeadEmail)
	}
	if filters.StartDate != nil {
		add("created_at >= $%d", *filters.StartDate)
	}
	if filters.EndDate != nil {
		add("created_at <= $%d", *filters.EndDate)
	}

	return strings.Join(conditions, " AND "), args
}
