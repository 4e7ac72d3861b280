package services

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"leadsync/internal/apiclient"
	"leadsync/internal/models"
)

// LeadsBackend is the slice of the API the lead store needs
type LeadsBackend interface {
	FetchLeads(ctx context.Context) (apiclient.Payload, error)
	UpdateLead(ctx context.Context, id string, status models.LeadStatus) error
}

// Backend is one cookie-holding conversation with the analytics API
type Backend interface {
	LeadsBackend

	Login(ctx context.Context, req models.LoginRequest) (*models.Account, error)
	Register(ctx context.Context, req models.RegisterRequest) error
	Logout(ctx context.Context) error

	FetchCustomers(ctx context.Context) ([]models.Customer, error)
	FetchStats(ctx context.Context) (json.RawMessage, error)
	FetchWeeklyLeadCount(ctx context.Context) (json.RawMessage, error)
	FetchTraffic(ctx context.Context) (json.RawMessage, error)
	VerifyPixel(ctx context.Context, pageURL, customerID string) (*models.PixelVerification, error)
	GrantAccess(ctx context.Context, userID string) error
	RevokeAccess(ctx context.Context, userID string) error

	Cookies() []models.StoredCookie
	SetCookies(stored []models.StoredCookie)
}

// BackendFactory opens a fresh backend conversation with an empty cookie jar
type BackendFactory func() (Backend, error)

// NewBackendFactory returns a factory producing apiclient clients
func NewBackendFactory(baseURL string, timeout time.Duration, logger *zap.Logger) BackendFactory {
	return func() (Backend, error) {
		client, err := apiclient.New(baseURL, timeout, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

func errorMessage(err error) string {
	return apiclient.UserMessage(err)
}
