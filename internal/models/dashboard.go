package models

import (
	"encoding/json"
	"time"
)

// DashboardMetrics bundles the aggregate endpoints. Their shapes differ per
// endpoint and are passed through untouched.
type DashboardMetrics struct {
	Stats     json.RawMessage `json:"stats"`
	Weekly    json.RawMessage `json:"weekly"`
	Traffic   json.RawMessage `json:"traffic"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// PixelVerification is the result of a pixel install check
type PixelVerification struct {
	URL            string `json:"url"`
	CustomerID     string `json:"customer_id"`
	PixelInstalled bool   `json:"pixel_installed"`
}

// PageView is one event reported by the tracking snippet
type PageView struct {
	CustomerID string `json:"customer_id"`
	Page       string `json:"page"`
	Referrer   string `json:"referrer"`
}

// Plan is a billing tier
type Plan struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Amount      float64  `json:"amount"`
	Currency    string   `json:"currency"`
	Interval    string   `json:"interval"`
	LeadLimit   int      `json:"lead_limit"`
	Features    []string `json:"features"`
}

// LeadExport points at a CSV snapshot of the lead table in object storage
type LeadExport struct {
	ObjectName string    `json:"object_name"`
	URL        string    `json:"url"`
	Rows       int       `json:"rows"`
	ExpiresAt  time.Time `json:"expires_at"`
}
