package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"

	"leadsync/internal/models"
)

// Client talks to the remote PHP API on behalf of one dashboard session.
// Every request carries the session's cookies.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	jar        http.CookieJar
	logger     *zap.Logger
}

// New creates a client with an empty cookie jar
func New(baseURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid backend url: %w", err)
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		jar:    jar,
		logger: logger,
	}, nil
}

// Cookies exports the backend session cookies
func (c *Client) Cookies() []models.StoredCookie {
	cookies := c.jar.Cookies(c.baseURL)
	stored := make([]models.StoredCookie, 0, len(cookies))
	for _, ck := range cookies {
		stored = append(stored, models.StoredCookie{Name: ck.Name, Value: ck.Value})
	}
	return stored
}

// SetCookies restores previously exported cookies
func (c *Client) SetCookies(stored []models.StoredCookie) {
	if len(stored) == 0 {
		return
	}
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, s := range stored {
		cookies = append(cookies, &http.Cookie{
			Name:    s.Name,
			Value:   s.Value,
			Path:    s.Path,
			Domain:  s.Domain,
			Expires: s.Expires,
		})
	}
	c.jar.SetCookies(c.baseURL, cookies)
}

// Do performs a request and normalizes the response. Every failure, whether
// network, malformed body, HTTP status or success:false, comes back as *Error.
func (c *Client) Do(ctx context.Context, method, endpoint string, payload interface{}) (Payload, error) {
	target, err := c.baseURL.Parse(strings.TrimLeft(endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Warn("backend unreachable",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return nil, &Error{Kind: KindNetwork, Message: MsgUnreachable, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, StatusCode: resp.StatusCode, Message: MsgUnreachable, Err: err}
	}

	c.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpError(resp, data)
	}

	result := Normalize(resp.StatusCode, data)
	if failure, ok := result.(Failure); ok {
		return nil, failure.Err()
	}
	return result, nil
}

// httpError builds the error for a non-2xx status, preferring the server's
// own message over the status line
func httpError(resp *http.Response, data []byte) *Error {
	message := resp.Status
	if message == "" {
		message = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(data), &fields); err == nil {
		message = serverMessage(fields, message)
	}
	return &Error{Kind: KindHTTP, StatusCode: resp.StatusCode, Message: message}
}

// IsCanceled reports whether err came from a canceled or expired context
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
