// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package communi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bureau-foundation/eventchat/lib/clock"
)

// DefaultServerURL is the public Communi REST endpoint.
const DefaultServerURL = "https://api.communiapp.de/rest"

// maxResponseSize bounds response body reads. Legitimate responses (the
// full user list of a large app) are orders of magnitude smaller.
const maxResponseSize int64 = 64 << 20

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// ServerURL is the REST base URL (e.g., "https://api.communiapp.de/rest").
	ServerURL string
	// AppID is the numeric ID of the Communi app. Shown on the app's
	// REST integration page.
	AppID int
	// Token is the REST API token of the integration user.
	Token string
	// HTTPClient is used for all requests. If nil, http.DefaultClient is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
	// Clock stamps membership rows. If nil, clock.Real() is used.
	Clock clock.Clock
	// UserAgent is sent with every request when set.
	UserAgent string
}

// Client is a Communi REST client bound to one app and one token. It is
// not authenticated until Login succeeds.
type Client struct {
	baseURL    string
	appID      int
	token      string
	httpClient *http.Client
	logger     *slog.Logger
	clock      clock.Clock
	userAgent  string
}

// NewClient creates a new Communi client. No request is made.
func NewClient(config ClientConfig) (*Client, error) {
	if config.ServerURL == "" {
		return nil, fmt.Errorf("communi: ServerURL is required")
	}
	if _, err := url.Parse(config.ServerURL); err != nil {
		return nil, fmt.Errorf("communi: invalid ServerURL %q: %w", config.ServerURL, err)
	}
	if config.AppID <= 0 {
		return nil, fmt.Errorf("communi: AppID must be positive, got %d", config.AppID)
	}
	if config.Token == "" {
		return nil, fmt.Errorf("communi: Token is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.ServerURL, "/"),
		appID:      config.AppID,
		token:      config.Token,
		httpClient: httpClient,
		logger:     logger,
		clock:      clk,
		userAgent:  config.UserAgent,
	}, nil
}

// String describes the connection without revealing the token.
func (c *Client) String() string {
	return fmt.Sprintf("communi app %d at %s", c.appID, c.baseURL)
}

// AppID returns the app ID the client is bound to.
func (c *Client) AppID() int {
	return c.appID
}

// Login verifies the token and returns an authenticated Session.
//
// A token that belongs to a different app is accepted by /login, so Login
// also lists the app's groups: an app without any visible group is
// treated as a wrong app ID and reported as ErrEmptyApp.
func (c *Client) Login(ctx context.Context) (*Session, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/login", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("communi: login failed: %w", err)
	}

	var response struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("communi: failed to parse login response: %w", err)
	}
	if response.ID == 0 {
		return nil, fmt.Errorf("communi: login response carries no user id")
	}

	session := &Session{client: c, userID: response.ID}

	groups, err := session.Groups(ctx)
	if err != nil {
		return nil, fmt.Errorf("communi: login: %w", err)
	}
	if len(groups) == 0 {
		c.logger.Warn("login did not return groups",
			"app_id", c.appID,
			"user_id", response.ID,
		)
		return nil, ErrEmptyApp
	}

	c.logger.Debug("logged in to communi",
		"app_id", c.appID,
		"user_id", response.ID,
	)
	return session, nil
}

// appQuery returns the query parameters every listing call carries.
func (c *Client) appQuery() url.Values {
	query := url.Values{}
	query.Set("communiApp", strconv.Itoa(c.appID))
	return query
}

// doRequest performs an HTTP request and returns the response body.
// On 2xx it returns the body; otherwise an *APIError. query may be nil.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, requestBody any) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("communi: failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("communi: failed to create request: %w", err)
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("X-Authorization", "Bearer "+c.token)
	if c.userAgent != "" {
		request.Header.Set("User-Agent", c.userAgent)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("communi: request to %s %s failed: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("communi: failed to read response body: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	c.logger.Debug("communi request failed",
		"method", method,
		"path", path,
		"status", response.StatusCode,
	)
	return nil, &APIError{
		StatusCode: response.StatusCode,
		Method:     method,
		Path:       path,
		Body:       string(responseBody),
	}
}

// checkValid interprets the {"valid": true} acknowledgement of the write
// endpoints.
func checkValid(body []byte) error {
	var response validResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return fmt.Errorf("communi: failed to parse acknowledgement: %w", err)
	}
	if len(response.Error) > 0 && string(response.Error) != "null" {
		return fmt.Errorf("%w: %s", ErrRejected, string(response.Error))
	}
	if response.Valid == nil || !*response.Valid {
		return ErrRejected
	}
	return nil
}
