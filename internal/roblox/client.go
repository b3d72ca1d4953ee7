// Package roblox talks to the Roblox platform APIs: username resolution and
// game pass ownership listing. Both calls are stateless and idempotent.
package roblox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// ErrAccountNotFound is returned when a username cannot be resolved to an
// account id. Transport failures and "no such user" are deliberately not
// distinguished to the caller; the distinction only survives in logs.
var ErrAccountNotFound = errors.New("roblox account not found")

// gamePassPageSize matches the platform's maximum page size; a buyer's most
// recent passes are always within the first page.
const gamePassPageSize = 100

// Client calls the Roblox user and game pass endpoints.
type Client struct {
	usersBaseURL string
	apisBaseURL  string
	httpClient   *http.Client
	logger       *slog.Logger
}

type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// New constructs a client against the given API base URLs.
func New(usersBaseURL, apisBaseURL string, timeout time.Duration, opts ...Option) *Client {
	cl := &Client{
		usersBaseURL: usersBaseURL,
		apisBaseURL:  apisBaseURL,
		httpClient:   &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

type resolveRequest struct {
	Usernames []string `json:"usernames"`
}

type resolveResponse struct {
	Data []struct {
		ID json.Number `json:"id"`
	} `json:"data"`
}

// ResolveAccountID translates a display name into the platform account id.
// Any failure mode (no match, network error, non-2xx, malformed body) is
// reported as ErrAccountNotFound; the detail is logged for triage.
func (c *Client) ResolveAccountID(ctx context.Context, username string) (string, error) {
	body, err := json.Marshal(resolveRequest{Usernames: []string{username}})
	if err != nil {
		return "", fmt.Errorf("encode resolve request: %w", err)
	}

	endpoint := c.usersBaseURL + "/v1/usernames/users"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build resolve request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logFailure(ctx, "username resolution transport error", username, err)
		return "", ErrAccountNotFound
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logFailure(ctx, "username resolution non-2xx", username, fmt.Errorf("status %d", resp.StatusCode))
		return "", ErrAccountNotFound
	}

	var decoded resolveResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.logFailure(ctx, "username resolution malformed body", username, err)
		return "", ErrAccountNotFound
	}

	if len(decoded.Data) == 0 {
		c.logFailure(ctx, "username has no match", username, nil)
		return "", ErrAccountNotFound
	}
	return decoded.Data[0].ID.String(), nil
}

type gamePassesResponse struct {
	GamePasses []struct {
		GamePassID json.Number `json:"gamePassId"`
	} `json:"gamePasses"`
}

// OwnsGamePass reports whether the account holds the given game pass. A
// transport failure counts as not-owned for this single call; the retry
// policy above this layer supplies resilience.
func (c *Client) OwnsGamePass(ctx context.Context, accountID, gamePassID string) (bool, error) {
	endpoint := fmt.Sprintf("%s/game-passes/v1/users/%s/game-passes?count=%d",
		c.apisBaseURL, url.PathEscape(accountID), gamePassPageSize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("build game pass request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logFailure(ctx, "game pass listing transport error", accountID, err)
		return false, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logFailure(ctx, "game pass listing non-2xx", accountID, fmt.Errorf("status %d", resp.StatusCode))
		return false, nil
	}

	var decoded gamePassesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.logFailure(ctx, "game pass listing malformed body", accountID, err)
		return false, nil
	}

	// The platform encodes ids as numbers or strings depending on the
	// endpoint version; compare in string form.
	for _, pass := range decoded.GamePasses {
		if pass.GamePassID.String() == gamePassID {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) logFailure(ctx context.Context, msg, subject string, err error) {
	if c.logger == nil {
		return
	}
	c.logger.WarnContext(ctx, msg,
		"subject", subject,
		"error", err,
	)
}
