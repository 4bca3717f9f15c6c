package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/gauthierbraillon/contribmix/internal/contrib"
)

const defaultBaseURL = "https://api.github.com"

// RecentCommitLimit is the number of commits FetchRecentCommits returns at most.
const RecentCommitLimit = 10

const calendarQuery = `query($login: String!, $from: DateTime!, $to: DateTime!) {
  user(login: $login) {
    contributionsCollection(from: $from, to: $to) {
      contributionCalendar {
        totalContributions
        weeks {
          contributionDays {
            date
            contributionCount
          }
        }
      }
    }
  }
}`

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

// WithBaseURL sets a custom API root (useful for testing). The GraphQL
// endpoint is resolved as <base>/graphql.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// Client talks to GitHub with a personal access token.
type Client struct {
	token      string
	baseURL    string
	httpClient HTTPClient
}

// NewClient creates a GitHub client. The calendar query requires a token;
// the public events feed works without one but is heavily rate limited.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		token:      token,
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
	return contrib.SourceGitHub
}

// HasToken reports whether a credential is configured.
func (c *Client) HasToken() bool {
	return c.token != ""
}

// FetchCalendar retrieves the contribution calendar of username over window.
// Without a token it fails with contrib.ErrUpstreamAuth and makes no request.
func (c *Client) FetchCalendar(ctx context.Context, username string, window contrib.Window) (*Calendar, error) {
	if username == "" {
		return nil, contrib.NewUpstreamError(c.Name(), contrib.ErrValidation, errors.New("username is required"))
	}
	if !c.HasToken() {
		return nil, contrib.NewUpstreamError(c.Name(), contrib.ErrUpstreamAuth, errors.New("no GitHub token configured"))
	}

	payload := graphqlRequest{
		Query: calendarQuery,
		Variables: map[string]any{
			"login": username,
			"from":  window.From.Format(time.RFC3339),
			"to":    window.End().Format(time.RFC3339),
		},
	}

	body, err := c.doRequest(ctx, http.MethodPost, c.baseURL+"/graphql", payload)
	if err != nil {
		return nil, err
	}

	var response calendarResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, contrib.NewUpstreamError(c.Name(), contrib.ErrUpstreamUnavailable,
			fmt.Errorf("failed to parse calendar response: %w", err))
	}

	if response.Data.User == nil {
		return nil, c.missingUserError(username, response.Errors)
	}

	calendar := response.Data.User.ContributionsCollection.ContributionCalendar
	if calendar.Weeks == nil {
		calendar.Weeks = []Week{}
	}
	return &calendar, nil
}

// Contributions implements contrib.Source over the contribution calendar.
func (c *Client) Contributions(ctx context.Context, username string, window contrib.Window) ([]contrib.Day, error) {
	calendar, err := c.FetchCalendar(ctx, username, window)
	if err != nil {
		return nil, err
	}
	return calendar.Days(), nil
}

// FetchRecentCommits lists the commits of username's most recent public
// pushes, newest first, at most RecentCommitLimit of them.
func (c *Client) FetchRecentCommits(ctx context.Context, username string) ([]contrib.Commit, error) {
	if username == "" {
		return nil, contrib.NewUpstreamError(c.Name(), contrib.ErrValidation, errors.New("username is required"))
	}

	eventsURL := fmt.Sprintf("%s/users/%s/events/public?per_page=100", c.baseURL, url.PathEscape(username))

	body, err := c.doRequest(ctx, http.MethodGet, eventsURL, nil)
	if err != nil {
		return nil, err
	}

	var events []event
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, contrib.NewUpstreamError(c.Name(), contrib.ErrUpstreamUnavailable,
			fmt.Errorf("failed to parse events response: %w", err))
	}

	pushes := make([]event, 0, len(events))
	for _, e := range events {
		if e.Type == "PushEvent" {
			pushes = append(pushes, e)
		}
	}
	sort.SliceStable(pushes, func(i, j int) bool {
		return pushes[i].CreatedAt.After(pushes[j].CreatedAt)
	})

	commits := make([]contrib.Commit, 0, RecentCommitLimit)
	for _, push := range pushes {
		// GitHub lists a push's commits oldest first.
		for i := len(push.Payload.Commits) - 1; i >= 0; i-- {
			if len(commits) == RecentCommitLimit {
				return commits, nil
			}
			pc := push.Payload.Commits[i]
			commits = append(commits, contrib.Commit{
				Message: pc.Message,
				Repo:    push.Repo.Name,
				Date:    push.CreatedAt,
				URL:     canonicalCommitURL(pc.URL),
			})
		}
	}

	return commits, nil
}

func (c *Client) doRequest(ctx context.Context, method, url string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

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
		return nil, c.handleAPIError(resp.StatusCode)
	}

	return body, nil
}

func (c *Client) handleAPIError(statusCode int) error {
	switch statusCode {
	case http.StatusUnauthorized:
		return contrib.NewUpstreamError(c.Name(), contrib.ErrUpstreamAuth,
			errors.New("GitHub API rejected the token - check GITHUB_TOKEN"))
	case http.StatusForbidden:
		return contrib.NewUpstreamError(c.Name(), contrib.ErrUpstreamAuth,
			errors.New("GitHub API access denied - token scopes or rate limit"))
	case http.StatusNotFound:
		return contrib.NewUpstreamError(c.Name(), contrib.ErrUpstreamNotFound, nil)
	case http.StatusTooManyRequests:
		return contrib.NewUpstreamError(c.Name(), contrib.ErrUpstreamUnavailable,
			errors.New("GitHub API rate limit exceeded"))
	default:
		return contrib.NewUpstreamError(c.Name(), contrib.ErrUpstreamUnavailable,
			fmt.Errorf("GitHub API error (status %d)", statusCode))
	}
}

// missingUserError classifies a null user. Only an explicit NOT_FOUND (or a
// null user with no errors at all) means the login does not exist; untyped
// errors are argument or validation rejections.
func (c *Client) missingUserError(username string, errs []graphqlError) error {
	for _, e := range errs {
		if e.Type != "NOT_FOUND" {
			return contrib.NewUpstreamError(c.Name(), contrib.ErrUpstreamUnavailable,
				fmt.Errorf("GitHub GraphQL error: %s", e.Message))
		}
	}
	return contrib.NewUpstreamError(c.Name(), contrib.ErrUpstreamNotFound,
		fmt.Errorf("no GitHub user %q", username))
}

// canonicalCommitURL turns an API commit URL into its web page URL:
// https://api.github.com/repos/o/r/commits/sha -> https://github.com/o/r/commit/sha
func canonicalCommitURL(apiURL string) string {
	u, err := url.Parse(apiURL)
	if err != nil || u.Host == "" {
		return apiURL
	}
	u.Host = strings.TrimPrefix(u.Host, "api.")
	u.Path = strings.TrimPrefix(u.Path, "/repos")
	u.Path = strings.Replace(u.Path, "/commits/", "/commit/", 1)
	return u.String()
}

// API request/response types (private - implementation detail)

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type calendarResponse struct {
	Data struct {
		User *struct {
			ContributionsCollection struct {
				ContributionCalendar Calendar `json:"contributionCalendar"`
			} `json:"contributionsCollection"`
		} `json:"user"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

type event struct {
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	Repo      struct {
		Name string `json:"name"`
	} `json:"repo"`
	Payload struct {
		Commits []struct {
			Message string `json:"message"`
			URL     string `json:"url"`
		} `json:"commits"`
	} `json:"payload"`
}
