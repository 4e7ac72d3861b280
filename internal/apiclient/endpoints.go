package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"leadsync/internal/models"
)

const (
	endpointAuth         = "auth.php"
	endpointLeads        = "get_leads.php"
	endpointUpdateLead   = "update_lead.php"
	endpointCustomers    = "get_customers.php"
	endpointStats        = "get_stats.php"
	endpointWeeklyLeads  = "weekly_leadcount.php"
	endpointTraffic      = "get_traffic.php"
	endpointVerifyPixel  = "verify_pixel.php"
	endpointGrantAccess  = "admin/grant_access.php"
	endpointRevokeAccess = "admin/revoke_access.php"
)

// Login authenticates against auth.php and returns the account
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.Account, error) {
	body := map[string]string{
		"action":   "login",
		"email":    req.Email,
		"password": req.Password,
	}
	result, err := c.Do(ctx, http.MethodPost, endpointAuth, body)
	if err != nil {
		return nil, err
	}

	switch p := result.(type) {
	case WrappedUser:
		account, err := models.AccountFromRecord(p.User)
		if err != nil {
			return nil, &Error{Kind: KindMalformed, Message: MsgNotResponding, Err: err}
		}
		return account, nil
	case ArrayPayload, WrappedLeads, Ack:
		return nil, &Error{Kind: KindMalformed, Message: "Login response did not include a user"}
	case Failure:
		return nil, p.Err()
	default:
		return nil, fmt.Errorf("unexpected payload %T", result)
	}
}

// Register creates an account
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) error {
	body := map[string]string{
		"action":   "register",
		"name":     req.Name,
		"email":    req.Email,
		"password": req.Password,
		"website":  req.Website,
	}
	_, err := c.Do(ctx, http.MethodPost, endpointAuth, body)
	return err
}

// Logout ends the backend session
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.Do(ctx, http.MethodPost, endpointAuth, map[string]string{"action": "logout"})
	return err
}

// FetchLeads returns the raw lead list payload for the session. The caller
// decides how to read its shape.
func (c *Client) FetchLeads(ctx context.Context) (Payload, error) {
	return c.Do(ctx, http.MethodGet, endpointLeads, nil)
}

// UpdateLead sets the status of one lead
func (c *Client) UpdateLead(ctx context.Context, id string, status models.LeadStatus) error {
	body := map[string]string{
		"id":     id,
		"status": string(status),
	}
	_, err := c.Do(ctx, http.MethodPost, endpointUpdateLead, body)
	return err
}

// FetchCustomers returns the admin customer list
func (c *Client) FetchCustomers(ctx context.Context) ([]models.Customer, error) {
	result, err := c.Do(ctx, http.MethodGet, endpointCustomers, nil)
	if err != nil {
		return nil, err
	}

	var data json.RawMessage
	switch p := result.(type) {
	case Ack:
		data, _ = p.Field("data")
	case ArrayPayload:
		data = p.Leads
	case WrappedLeads:
		data = p.Fields["data"]
	case WrappedUser:
		data = p.Fields["data"]
	case Failure:
		return nil, p.Err()
	}

	customers, err := models.DecodeCustomers(data, time.Now())
	if err != nil {
		return nil, &Error{Kind: KindMalformed, Message: MsgNotResponding, Err: err}
	}
	return customers, nil
}

// FetchStats returns get_stats.php as received
func (c *Client) FetchStats(ctx context.Context) (json.RawMessage, error) {
	return c.fetchRaw(ctx, endpointStats)
}

// FetchWeeklyLeadCount returns weekly_leadcount.php as received
func (c *Client) FetchWeeklyLeadCount(ctx context.Context) (json.RawMessage, error) {
	return c.fetchRaw(ctx, endpointWeeklyLeads)
}

// FetchTraffic returns get_traffic.php as received
func (c *Client) FetchTraffic(ctx context.Context) (json.RawMessage, error) {
	return c.fetchRaw(ctx, endpointTraffic)
}

func (c *Client) fetchRaw(ctx context.Context, endpoint string) (json.RawMessage, error) {
	result, err := c.Do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return result.Raw(), nil
}

// VerifyPixel asks the backend whether the snippet is installed on url
func (c *Client) VerifyPixel(ctx context.Context, pageURL, customerID string) (*models.PixelVerification, error) {
	body := map[string]string{
		"url":         pageURL,
		"customer_id": customerID,
	}
	result, err := c.Do(ctx, http.MethodPost, endpointVerifyPixel, body)
	if err != nil {
		return nil, err
	}

	verification := &models.PixelVerification{URL: pageURL, CustomerID: customerID}
	var installed json.RawMessage
	switch p := result.(type) {
	case Ack:
		installed, _ = p.Field("pixel_installed")
	case WrappedUser:
		installed = p.Fields["pixel_installed"]
	case WrappedLeads:
		installed = p.Fields["pixel_installed"]
	case ArrayPayload:
	case Failure:
		return nil, p.Err()
	}
	if installed != nil {
		verification.PixelInstalled = truthy(installed)
	}
	return verification, nil
}

// GrantAccess promotes a user to admin
func (c *Client) GrantAccess(ctx context.Context, userID string) error {
	_, err := c.Do(ctx, http.MethodPost, endpointGrantAccess, map[string]string{"userId": userID})
	return err
}

// RevokeAccess demotes an admin back to customer
func (c *Client) RevokeAccess(ctx context.Context, userID string) error {
	_, err := c.Do(ctx, http.MethodPost, endpointRevokeAccess, map[string]string{"userId": userID})
	return err
}
