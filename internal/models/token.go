package models

import "time"

// TokenResponse is returned to the dashboard after login
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	SessionID   string    `json:"session_id"`
	IssuedAt    time.Time `json:"issued_at"`
}

// SessionRecord is the durable mirror of a dashboard session. Cookies hold
// the backend session so a restored session can keep talking to the API.
type SessionRecord struct {
	SessionID string         `json:"session_id"`
	Account   *Account       `json:"account"`
	Cookies   []StoredCookie `json:"cookies"`
	CreatedAt time.Time      `json:"created_at"`
}

// StoredCookie is the serializable part of a backend cookie
type StoredCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Path    string    `json:"path,omitempty"`
	Domain  string    `json:"domain,omitempty"`
	Expires time.Time `json:"expires,omitempty"`
}
