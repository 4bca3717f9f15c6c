// Package github tests document the expected behavior of the GitHub client.
//
// Test requirements (this file serves as documentation):
// - Calendar query is refused without a token, before any network call
// - Calendar query forwards the requested window to GitHub
// - Calendar weeks flatten into a flat daily series
// - Unknown users are reported as not found
// - Recent commits keep only push events, newest first, at most 10
// - Commit API URLs are rewritten to their web page URLs
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gauthierbraillon/contribmix/internal/contrib"
)

var testWindow = contrib.Window{
	From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	To:   time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC),
}

func calendarFixture() map[string]interface{} {
	return map[string]interface{}{
		"data": map[string]interface{}{
			"user": map[string]interface{}{
				"contributionsCollection": map[string]interface{}{
					"contributionCalendar": map[string]interface{}{
						"totalContributions": 6,
						"weeks": []map[string]interface{}{
							{"contributionDays": []map[string]interface{}{
								{"date": "2024-05-05", "contributionCount": 0},
								{"date": "2024-05-06", "contributionCount": 2},
							}},
							{"contributionDays": []map[string]interface{}{
								{"date": "2024-05-12", "contributionCount": 4},
							}},
						},
					},
				},
			},
		},
	}
}

func TestClient_FetchCalendar_RequiresTokenWithoutCallingGitHub(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	client := NewClient("", WithBaseURL(server.URL))

	_, err := client.FetchCalendar(context.Background(), "octocat", testWindow)

	if !errors.Is(err, contrib.ErrUpstreamAuth) {
		t.Fatalf("expected auth error without a token, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Error("GitHub must not be called when no token is configured")
	}
}

func TestClient_FetchCalendar_SendsGraphQLQueryWithWindow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/graphql" {
			t.Errorf("expected /graphql, got %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-token" {
			t.Errorf("expected Bearer token in Authorization header, got %q", auth)
		}

		var req struct {
			Query     string            `json:"query"`
			Variables map[string]string `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("request body should be JSON: %v", err)
		}
		if !strings.Contains(req.Query, "contributionCalendar") {
			t.Error("query should ask for the contribution calendar")
		}
		if req.Variables["login"] != "octocat" {
			t.Errorf("expected login octocat, got %q", req.Variables["login"])
		}
		if req.Variables["from"] != "2024-01-01T00:00:00Z" {
			t.Errorf("window start should be forwarded, got %q", req.Variables["from"])
		}
		if req.Variables["to"] != "2024-12-30T23:59:59Z" {
			t.Errorf("window end should cover the last day, got %q", req.Variables["to"])
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(calendarFixture())
	}))
	defer server.Close()

	client := NewClient("test-token", WithBaseURL(server.URL))

	calendar, err := client.FetchCalendar(context.Background(), "octocat", testWindow)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calendar.TotalContributions != 6 {
		t.Errorf("expected 6 total contributions, got %d", calendar.TotalContributions)
	}
	if len(calendar.Weeks) != 2 {
		t.Errorf("expected 2 weeks, got %d", len(calendar.Weeks))
	}
}

func TestClient_Contributions_FlattensWeeksIntoDays(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(calendarFixture())
	}))
	defer server.Close()

	client := NewClient("test-token", WithBaseURL(server.URL))

	days, err := client.Contributions(context.Background(), "octocat", testWindow)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []contrib.Day{
		{Date: "2024-05-05", Count: 0},
		{Date: "2024-05-06", Count: 2},
		{Date: "2024-05-12", Count: 4},
	}
	if len(days) != len(want) {
		t.Fatalf("expected %d days, got %d", len(want), len(days))
	}
	for i := range want {
		if days[i] != want[i] {
			t.Errorf("day %d: expected %+v, got %+v", i, want[i], days[i])
		}
	}
}

func TestClient_FetchCalendar_UnknownUserIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{"user": nil},
			"errors": []map[string]interface{}{
				{"type": "NOT_FOUND", "message": "Could not resolve to a User with the login of 'ghost'."},
			},
		})
	}))
	defer server.Close()

	client := NewClient("test-token", WithBaseURL(server.URL))

	_, err := client.FetchCalendar(context.Background(), "ghost", testWindow)

	if !errors.Is(err, contrib.ErrUpstreamNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestClient_FetchCalendar_RequiresUsername(t *testing.T) {
	client := NewClient("test-token")

	_, err := client.FetchCalendar(context.Background(), "", testWindow)

	if !errors.Is(err, contrib.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func pushEvent(id int, createdAt time.Time, repo string, messages ...string) map[string]interface{} {
	commits := make([]map[string]interface{}, 0, len(messages))
	for i, m := range messages {
		commits = append(commits, map[string]interface{}{
			"message": m,
			"url":     fmt.Sprintf("https://api.github.com/repos/%s/commits/sha%d%d", repo, id, i),
		})
	}
	return map[string]interface{}{
		"id":         fmt.Sprint(id),
		"type":       "PushEvent",
		"created_at": createdAt.Format(time.RFC3339),
		"repo":       map[string]interface{}{"name": repo},
		"payload":    map[string]interface{}{"commits": commits},
	}
}

func TestClient_FetchRecentCommits_KeepsOnlyPushEvents(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	events := []map[string]interface{}{
		{"type": "WatchEvent", "created_at": now.Format(time.RFC3339), "repo": map[string]interface{}{"name": "a/b"}},
		pushEvent(1, now.Add(-time.Hour), "octo/site", "fix typo"),
		{"type": "IssuesEvent", "created_at": now.Format(time.RFC3339), "repo": map[string]interface{}{"name": "a/b"}},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/octocat/events/public" {
			t.Errorf("expected /users/octocat/events/public, got %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(events)
	}))
	defer server.Close()

	client := NewClient("", WithBaseURL(server.URL))

	commits, err := client.FetchRecentCommits(context.Background(), "octocat")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(commits) != 1 {
		t.Fatalf("expected 1 commit from the single push, got %d", len(commits))
	}
	c := commits[0]
	if c.Message != "fix typo" || c.Repo != "octo/site" {
		t.Errorf("unexpected commit %+v", c)
	}
	if c.URL != "https://github.com/octo/site/commit/sha10" {
		t.Errorf("commit URL should point at the web page, got %q", c.URL)
	}
	if !c.Date.Equal(now.Add(-time.Hour)) {
		t.Errorf("commit date should be the push time, got %v", c.Date)
	}
}

func TestClient_FetchRecentCommits_ReturnsTenNewestFirst(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	// 12 pushes of one commit each, deliberately out of order.
	var events []map[string]interface{}
	for _, i := range []int{3, 11, 0, 7, 5, 9, 1, 10, 2, 8, 4, 6} {
		events = append(events, pushEvent(i, base.Add(time.Duration(i)*time.Hour), "octo/repo", fmt.Sprintf("commit %d", i)))
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(events)
	}))
	defer server.Close()

	client := NewClient("", WithBaseURL(server.URL))

	commits, err := client.FetchRecentCommits(context.Background(), "octocat")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(commits) != RecentCommitLimit {
		t.Fatalf("expected exactly %d commits, got %d", RecentCommitLimit, len(commits))
	}
	for i, c := range commits {
		want := fmt.Sprintf("commit %d", 11-i)
		if c.Message != want {
			t.Errorf("position %d: expected %q, got %q", i, want, c.Message)
		}
	}
}

func TestClient_FetchRecentCommits_LatestCommitOfAPushComesFirst(t *testing.T) {
	events := []map[string]interface{}{
		pushEvent(1, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), "octo/repo", "first", "second", "third"),
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(events)
	}))
	defer server.Close()

	client := NewClient("", WithBaseURL(server.URL))

	commits, _ := client.FetchRecentCommits(context.Background(), "octocat")

	if len(commits) != 3 {
		t.Fatalf("expected 3 commits, got %d", len(commits))
	}
	if commits[0].Message != "third" || commits[2].Message != "first" {
		t.Errorf("commits of one push should be listed newest first, got %q..%q", commits[0].Message, commits[2].Message)
	}
}

func TestClient_FetchRecentCommits_URLEncodesUsername(t *testing.T) {
	var capturedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.RawPath
		_ = json.NewEncoder(w).Encode([]interface{}{})
	}))
	defer server.Close()

	client := NewClient("", WithBaseURL(server.URL))

	_, _ = client.FetchRecentCommits(context.Background(), "evil/../admin")

	if strings.Contains(capturedPath, "evil/../admin") {
		t.Error("username must be path-escaped to prevent path injection")
	}
}

func TestCanonicalCommitURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://api.github.com/repos/octo/site/commits/abc123", "https://github.com/octo/site/commit/abc123"},
		{"https://github.com/octo/site/commit/abc123", "https://github.com/octo/site/commit/abc123"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := canonicalCommitURL(tt.in); got != tt.want {
			t.Errorf("canonicalCommitURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
