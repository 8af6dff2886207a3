// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package churchtools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// pageLimit is the page size requested from paginated endpoints.
const pageLimit = 100

const maxResponseSize int64 = 64 << 20

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// URL is the base URL of the ChurchTools instance
	// (e.g., "https://example.church.tools"), without the /api suffix.
	URL string
	// Token is the login token of the API user.
	Token string
	// HTTPClient is used for all requests. If nil, http.DefaultClient is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
	// UserAgent is sent with every request when set.
	UserAgent string
}

// Client is a read-only ChurchTools API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string
}

// NewClient creates a new ChurchTools client. No request is made.
func NewClient(config ClientConfig) (*Client, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("churchtools: URL is required")
	}
	if _, err := url.Parse(config.URL); err != nil {
		return nil, fmt.Errorf("churchtools: invalid URL %q: %w", config.URL, err)
	}
	if config.Token == "" {
		return nil, fmt.Errorf("churchtools: Token is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimSuffix(strings.TrimRight(config.URL, "/"), "/api"),
		token:      config.Token,
		httpClient: httpClient,
		logger:     logger,
		userAgent:  config.UserAgent,
	}, nil
}

// WhoAmI returns the person the token belongs to.
func (c *Client) WhoAmI(ctx context.Context) (*Person, error) {
	var person Person
	if _, err := c.get(ctx, "/api/whoami", nil, &person); err != nil {
		return nil, fmt.Errorf("churchtools: whoami failed: %w", err)
	}
	return &person, nil
}

// Events lists the events starting between from and to, both inclusive
// calendar days formatted "2006-01-02". Order is as returned by the
// server.
func (c *Client) Events(ctx context.Context, from, to string) ([]Event, error) {
	query := url.Values{}
	query.Set("from", from)
	query.Set("to", to)

	var events []Event
	if err := getPaged(ctx, c, "/api/events", query, &events); err != nil {
		return nil, fmt.Errorf("churchtools: list events %s..%s failed: %w", from, to, err)
	}
	c.logger.Debug("fetched events", "from", from, "to", to, "count", len(events))
	return events, nil
}

// Event fetches one event including its service assignments.
func (c *Client) Event(ctx context.Context, eventID int) (*Event, error) {
	query := url.Values{}
	query.Add("include[]", "eventServices")

	var event Event
	if _, err := c.get(ctx, "/api/events/"+strconv.Itoa(eventID), query, &event); err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("event %d: %w", eventID, ErrNotFound)
		}
		return nil, fmt.Errorf("churchtools: get event %d failed: %w", eventID, err)
	}
	return &event, nil
}

// Services returns the service catalog keyed by service ID.
func (c *Client) Services(ctx context.Context) (map[int]Service, error) {
	var services []Service
	if _, err := c.get(ctx, "/api/services", nil, &services); err != nil {
		return nil, fmt.Errorf("churchtools: list services failed: %w", err)
	}
	catalog := make(map[int]Service, len(services))
	for _, service := range services {
		catalog[service.ID] = service
	}
	return catalog, nil
}

// ServiceGroups returns the service-group catalog ordered by sort key,
// then ID.
func (c *Client) ServiceGroups(ctx context.Context) ([]ServiceGroup, error) {
	var masterdata struct {
		ServiceGroups []ServiceGroup `json:"serviceGroups"`
	}
	if _, err := c.get(ctx, "/api/event/masterdata", nil, &masterdata); err != nil {
		return nil, fmt.Errorf("churchtools: event masterdata failed: %w", err)
	}
	groups := masterdata.ServiceGroups
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].SortKey != groups[j].SortKey {
			return groups[i].SortKey < groups[j].SortKey
		}
		return groups[i].ID < groups[j].ID
	})
	return groups, nil
}

// Persons fetches the persons with the given IDs. IDs without a visible
// person are absent from the result.
func (c *Client) Persons(ctx context.Context, ids []int) ([]Person, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := url.Values{}
	for _, id := range ids {
		query.Add("ids[]", strconv.Itoa(id))
	}

	var persons []Person
	if err := getPaged(ctx, c, "/api/persons", query, &persons); err != nil {
		return nil, fmt.Errorf("churchtools: get persons failed: %w", err)
	}
	return persons, nil
}

// getPaged follows meta.pagination until lastPage and appends every page's
// data to out.
func getPaged[T any](ctx context.Context, c *Client, path string, query url.Values, out *[]T) error {
	for page := 1; ; page++ {
		pageQuery := url.Values{}
		for key, values := range query {
			pageQuery[key] = values
		}
		pageQuery.Set("page", strconv.Itoa(page))
		pageQuery.Set("limit", strconv.Itoa(pageLimit))

		var items []T
		meta, err := c.get(ctx, path, pageQuery, &items)
		if err != nil {
			return err
		}
		*out = append(*out, items...)

		if meta == nil || page >= meta.LastPage || len(items) == 0 {
			return nil
		}
	}
}

// get performs a GET request, unwraps the data envelope into out and
// returns the pagination metadata (nil for unpaginated endpoints).
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) (*pagination, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("churchtools: failed to create request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("Authorization", "Login "+c.token)
	if c.userAgent != "" {
		request.Header.Set("User-Agent", c.userAgent)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("churchtools: request to GET %s failed: %w", path, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("churchtools: failed to read response body: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		c.logger.Debug("churchtools request failed", "path", path, "status", response.StatusCode)
		message := string(body)
		var errorBody struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &errorBody) == nil && errorBody.Message != "" {
			message = errorBody.Message
		}
		return nil, &APIError{
			StatusCode: response.StatusCode,
			Method:     http.MethodGet,
			Path:       path,
			Message:    message,
		}
	}

	var wrapped envelope
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("churchtools: failed to parse response from %s: %w", path, err)
	}
	if len(wrapped.Data) > 0 && string(wrapped.Data) != "null" {
		if err := json.Unmarshal(wrapped.Data, out); err != nil {
			return nil, fmt.Errorf("churchtools: failed to parse data from %s: %w", path, err)
		}
	}
	return wrapped.Meta.Pagination, nil
}
