// Package leetcode tests document the expected behavior of the LeetCode client.
//
// Test requirements (this file serves as documentation):
// - Client posts the calendar query with the username as a variable
// - Client reports unknown users as not found
// - Calendar keys become UTC calendar dates, one entry per key
// - Keys falling on the same date are summed, never overwritten
// - A malformed calendar fails the whole source
package leetcode

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gauthierbraillon/contribmix/internal/contrib"
)

func userResponse(calendar string) map[string]interface{} {
	return map[string]interface{}{
		"data": map[string]interface{}{
			"matchedUser": map[string]interface{}{
				"username":           "walker",
				"submissionCalendar": calendar,
			},
		},
	}
}

func sortedDays(days []contrib.Day) []contrib.Day {
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}

func TestClient_FetchUser_PostsCalendarQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/graphql" {
			t.Errorf("expected POST /graphql, got %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Referer") != "https://leetcode.com/walker/" {
			t.Errorf("expected profile Referer, got %q", r.Header.Get("Referer"))
		}

		var req struct {
			Variables map[string]string `json:"variables"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Variables["username"] != "walker" {
			t.Errorf("expected username variable walker, got %q", req.Variables["username"])
		}

		_ = json.NewEncoder(w).Encode(userResponse(`{"1700000000": 3}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	user, err := client.FetchUser(context.Background(), "walker")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Username != "walker" || user.SubmissionCalendar != `{"1700000000": 3}` {
		t.Errorf("raw user should be passed through unchanged, got %+v", user)
	}
}

func TestClient_Contributions_ConvertsUnixDaysToDates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(userResponse(`{"1700000000": 3, "1700086400": 1}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	days, err := client.Contributions(context.Background(), "walker", contrib.DefaultWindow(time.Now()))

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	days = sortedDays(days)
	want := []contrib.Day{
		{Date: "2023-11-14", Count: 3},
		{Date: "2023-11-15", Count: 1},
	}
	if len(days) != len(want) {
		t.Fatalf("expected %d days, got %d: %+v", len(want), len(days), days)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Errorf("day %d: expected %+v, got %+v", i, want[i], days[i])
		}
	}
}

func TestClient_FetchUser_UnknownUserIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data":   map[string]interface{}{"matchedUser": nil},
			"errors": []map[string]interface{}{{"message": "That user does not exist."}},
		})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	_, err := client.Contributions(context.Background(), "nobody", contrib.DefaultWindow(time.Now()))

	if !errors.Is(err, contrib.ErrUpstreamNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestClient_FetchUser_ServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	_, err := client.FetchUser(context.Background(), "walker")

	if !errors.Is(err, contrib.ErrUpstreamUnavailable) {
		t.Errorf("expected unavailable, got %v", err)
	}
}

func TestClient_FetchUser_RequiresUsername(t *testing.T) {
	_, err := NewClient().FetchUser(context.Background(), "")

	if !errors.Is(err, contrib.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestClient_Contributions_MalformedCalendarFailsAtomically(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(userResponse(`{"1700000000": 3, "yesterday": 1}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	days, err := client.Contributions(context.Background(), "walker", contrib.DefaultWindow(time.Now()))

	if !errors.Is(err, contrib.ErrUpstreamUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if days != nil {
		t.Errorf("failed source must not return partial days, got %+v", days)
	}
}

func TestParseCalendar_SumsKeysOnTheSameDate(t *testing.T) {
	// 1700000000 is 2023-11-14T22:13:20Z, 1699920000 is 2023-11-14T00:00:00Z.
	days, err := ParseCalendar(`{"1700000000": 3, "1699920000": 4}`)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("keys on one date should collapse into one entry, got %+v", days)
	}
	if days[0] != (contrib.Day{Date: "2023-11-14", Count: 7}) {
		t.Errorf("expected 2023-11-14 with 7, got %+v", days[0])
	}
}

func TestParseCalendar_EmptyCalendar(t *testing.T) {
	for _, raw := range []string{"", "{}"} {
		days, err := ParseCalendar(raw)
		if err != nil {
			t.Fatalf("ParseCalendar(%q) unexpected error: %v", raw, err)
		}
		if days == nil || len(days) != 0 {
			t.Errorf("ParseCalendar(%q) should be empty and non-nil, got %v", raw, days)
		}
	}
}
