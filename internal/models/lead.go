package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LeadStatus is the pipeline stage of a lead
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusConverted LeadStatus = "converted"
)

// LeadStatuses lists the pipeline in order
var LeadStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusQualified,
	LeadStatusConverted,
}

// ParseLeadStatus validates a status string
func ParseLeadStatus(s string) (LeadStatus, error) {
	status := LeadStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range LeadStatuses {
		if status == known {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown lead status %q", s)
}

// Lead is a resolved website visitor.
// ID may be synthetic when the backend omits it, so it is only good for
// keying within one fetch. Email is the business key.
type Lead struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Company   string     `json:"company"`
	Source    string     `json:"source"`
	CreatedAt time.Time  `json:"createdAt"`
	Status    LeadStatus `json:"status"`
}

// LeadStats is a count of leads per status
type LeadStats struct {
	Total     int `json:"total"`
	New       int `json:"new"`
	Contacted int `json:"contacted"`
	Qualified int `json:"qualified"`
	Converted int `json:"converted"`
}

// ComputeLeadStats counts the given leads by status
func ComputeLeadStats(leads []Lead) LeadStats {
	stats := LeadStats{Total: len(leads)}
	for _, l := range leads {
		switch l.Status {
		case LeadStatusNew:
			stats.New++
		case LeadStatusContacted:
			stats.Contacted++
		case LeadStatusQualified:
			stats.Qualified++
		case LeadStatusConverted:
			stats.Converted++
		}
	}
	return stats
}

// createdAtKeys are the field names the backend has used for the creation time
var createdAtKeys = []string{"created_at", "createdAt", "timestamp"}

var createdAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// LeadFromRecord maps one raw backend record onto a Lead. Missing strings
// become "", a missing or unknown status becomes new, a missing id is
// generated and a missing or unparseable timestamp becomes now.
func LeadFromRecord(raw map[string]json.RawMessage, now time.Time) Lead {
	lead := Lead{
		ID:      stringField(raw, "id"),
		Name:    stringField(raw, "name"),
		Email:   stringField(raw, "email"),
		Phone:   stringField(raw, "phone"),
		Company: stringField(raw, "company"),
		Source:  stringField(raw, "source"),
		Status:  LeadStatusNew,
	}
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if status, err := ParseLeadStatus(stringField(raw, "status")); err == nil {
		lead.Status = status
	}

	lead.CreatedAt = now
	for _, key := range createdAtKeys {
		if t, ok := timeField(raw, key); ok {
			lead.CreatedAt = t
			break
		}
	}
	return lead
}

// DecodeLeads maps a JSON array of raw records onto leads
func DecodeLeads(data json.RawMessage, now time.Time) ([]Lead, error) {
	if len(data) == 0 || string(data) == "null" {
		return []Lead{}, nil
	}
	var records []map[string]json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode leads: %w", err)
	}
	leads := make([]Lead, 0, len(records))
	for _, record := range records {
		leads = append(leads, LeadFromRecord(record, now))
	}
	return leads, nil
}

// stringField reads a string-ish field. Numbers are kept in their literal form
// since PHP backends send ids as either.
func stringField(raw map[string]json.RawMessage, key string) string {
	value, ok := raw[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(value, &n); err == nil {
		return n.String()
	}
	return ""
}

func timeField(raw map[string]json.RawMessage, key string) (time.Time, bool) {
	value, ok := raw[key]
	if !ok {
		return time.Time{}, false
	}
	var n json.Number
	if err := json.Unmarshal(value, &n); err == nil {
		if secs, err := n.Int64(); err == nil {
			return time.Unix(secs, 0), true
		}
	}
	s := stringField(raw, key)
	if s == "" {
		return time.Time{}, false
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0), true
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
