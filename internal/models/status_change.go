package models

import (
	"time"

	"github.com/google/uuid"
)

// LeadStatusChange is an acknowledged lead status mutation
type LeadStatusChange struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	CustomerID string     `json:"customer_id" db:"customer_id"`
	LeadID     string     `json:"lead_id" db:"lead_id"`
	LeadEmail  string     `json:"lead_email" db:"lead_email"`
	OldStatus  LeadStatus `json:"old_status" db:"old_status"`
	NewStatus  LeadStatus `json:"new_status" db:"new_status"`
	ChangedBy  string     `json:"changed_by" db:"changed_by"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// LeadStatusChangeFilters narrows the audit trail query
type LeadStatusChangeFilters struct {
	CustomerID string     `json:"customer_id"`
	LeadID     *string    `json:"lead_id"`
	LeadEmail  *string    `json:"lead_email"`
	StartDate  *time.Time `json:"start_date"`
	EndDate    *time.Time `json:"end_date"`
	Limit      int        `json:"limit"`
	Offset     int        `json:"offset"`
}
