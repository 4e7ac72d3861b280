package models

import (
	"encoding/json"
	"time"
)

// Role is the principal kind of an authenticated user
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// SubscriptionStatus gates access to the customer dashboard
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionInactive SubscriptionStatus = "inactive"
)

// Account is the authenticated principal, admin or customer.
type Account struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Email      string             `json:"email"`
	Role       Role               `json:"role"`
	Status     SubscriptionStatus `json:"status"`
	CustomerID string             `json:"customer_id"`
}

// IsAdmin reports whether the account has the admin role
func (a *Account) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// AccountFromRecord decodes the backend's user object. Role defaults to
// customer and status to active when the backend leaves them out.
func AccountFromRecord(data json.RawMessage) (*Account, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	account := &Account{
		ID:         stringField(raw, "id"),
		Name:       stringField(raw, "name"),
		Email:      stringField(raw, "email"),
		Role:       Role(stringField(raw, "role")),
		Status:     SubscriptionStatus(stringField(raw, "status")),
		CustomerID: stringField(raw, "customer_id"),
	}
	if account.Role != RoleAdmin {
		account.Role = RoleCustomer
	}
	if account.Status != SubscriptionInactive {
		account.Status = SubscriptionActive
	}
	return account, nil
}

// Customer is a paying account whose website traffic is tracked
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Website   string    `json:"website"`
	Status    string    `json:"status"`
	Plan      string    `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
}

// DecodeCustomers maps the admin customer list onto customers
func DecodeCustomers(data json.RawMessage, now time.Time) ([]Customer, error) {
	if len(data) == 0 || string(data) == "null" {
		return []Customer{}, nil
	}
	var records []map[string]json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	customers := make([]Customer, 0, len(records))
	for _, raw := range records {
		c := Customer{
			ID:        stringField(raw, "id"),
			Name:      stringField(raw, "name"),
			Email:     stringField(raw, "email"),
			Website:   stringField(raw, "website"),
			Status:    stringField(raw, "status"),
			Plan:      stringField(raw, "plan"),
			CreatedAt: now,
		}
		for _, key := range createdAtKeys {
			if t, ok := timeField(raw, key); ok {
				c.CreatedAt = t
				break
			}
		}
		customers = append(customers, c)
	}
	return customers, nil
}

// LoginRequest is the credential pair forwarded to auth.php
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest creates an account on auth.php
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Website  string `json:"website,omitempty"`
}
