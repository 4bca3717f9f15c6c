// Package leetcode provides a client for the LeetCode GraphQL API.
//
// This package enables contribmix to:
// - Look up a user's submission calendar
// - Convert the calendar's UNIX-second keys into daily submission counts
package leetcode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gauthierbraillon/contribmix/internal/contrib"
)

const defaultBaseURL = "https://leetcode.com"

const calendarQuery = `query getUserProfileCalendar($username: String!) {
  matchedUser(username: $username) {
    username
    submissionCalendar
  }
}`

// MatchedUser is the user object LeetCode returns. SubmissionCalendar is a
// JSON document encoded as a string, kept verbatim for pass-through.
type MatchedUser struct {
	Username           string `json:"username"`
	SubmissionCalendar string `json:"submissionCalendar"`
}

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL sets a custom base URL (useful for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// Client is a LeetCode GraphQL client. No credential is needed.
type Client struct {
	baseURL    string
	httpClient HTTPClient
}

// NewClient creates a new LeetCode client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the source.
func (c *Client) Name() string {
	return contrib.SourceLeetCode
}

// FetchUser retrieves the matched user and its raw submission calendar.
func (c *Client) FetchUser(ctx context.Context, username string) (*MatchedUser, error) {
	if username == "" {
		return nil, contrib.NewUpstreamError(c.Name(), contrib.ErrValidation, errors.New("username is required"))
	}

	payload, err := json.Marshal(graphqlRequest{
		Query:     calendarQuery,
		Variables: map[string]string{"username": username},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/graphql", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Referer", fmt.Sprintf("%s/%s/", defaultBaseURL, username))
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, contrib.NewUpstreamError(c.Name(), contrib.ErrUpstreamUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, contrib.NewUpstreamError(c.Name(), contrib.ErrUpstreamUnavailable,
			fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, contrib.NewUpstreamError(c.Name(), contrib.ErrUpstreamUnavailable,
			fmt.Errorf("LeetCode API error (status %d)", resp.StatusCode))
	}

	var response calendarResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, contrib.NewUpstreamError(c.Name(), contrib.ErrUpstreamUnavailable,
			fmt.Errorf("failed to parse LeetCode response: %w", err))
	}

	if response.Data.MatchedUser == nil {
		return nil, contrib.NewUpstreamError(c.Name(), contrib.ErrUpstreamNotFound,
			fmt.Errorf("no LeetCode user %q", username))
	}

	return response.Data.MatchedUser, nil
}

// Contributions implements contrib.Source. The window is not sent upstream:
// LeetCode always returns its full calendar.
func (c *Client) Contributions(ctx context.Context, username string, window contrib.Window) ([]contrib.Day, error) {
	user, err := c.FetchUser(ctx, username)
	if err != nil {
		return nil, err
	}

	days, err := ParseCalendar(user.SubmissionCalendar)
	if err != nil {
		return nil, contrib.NewUpstreamError(c.Name(), contrib.ErrUpstreamUnavailable, err)
	}
	return days, nil
}

// ParseCalendar converts a submission calendar ({"<unix seconds>": count})
// into one Day per UTC calendar date. Keys falling on the same date are
// summed. Any malformed key fails the whole calendar.
func ParseCalendar(raw string) ([]contrib.Day, error) {
	if strings.TrimSpace(raw) == "" {
		return []contrib.Day{}, nil
	}

	var calendar map[string]int
	if err := json.Unmarshal([]byte(raw), &calendar); err != nil {
		return nil, fmt.Errorf("failed to parse submission calendar: %w", err)
	}

	totals := make(map[string]int, len(calendar))
	order := make([]string, 0, len(calendar))
	for key, count := range calendar {
		seconds, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid submission calendar key %q: %w", key, err)
		}
		date := contrib.FormatDate(time.Unix(seconds, 0))
		if _, seen := totals[date]; !seen {
			order = append(order, date)
		}
		totals[date] += count
	}

	days := make([]contrib.Day, 0, len(order))
	for _, date := range order {
		days = append(days, contrib.Day{Date: date, Count: totals[date]})
	}
	return days, nil
}

// API request/response types (private - implementation detail)

type graphqlRequest struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables"`
}

type calendarResponse struct {
	Data struct {
		MatchedUser *MatchedUser `json:"matchedUser"`
	} `json:"data"`
}
