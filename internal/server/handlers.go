package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gauthierbraillon/contribmix/internal/aggregator"
	"github.com/gauthierbraillon/contribmix/internal/contrib"
	"github.com/gauthierbraillon/contribmix/internal/mailer"
	"github.com/gauthierbraillon/contribmix/internal/metrics"
)

type usernameRequest struct {
	Username string `json:"username"`
}

type calendarRequest struct {
	Username string `json:"username"`
	From     string `json:"from"`
	To       string `json:"to"`
}

type dsaRequest struct {
	LeetCodeUsername string `json:"leetcodeUsername"`
	GFGUsername      string `json:"gfgUsername"`
	Code360Username  string `json:"code360Username"`
	From             string `json:"from"`
	To               string `json:"to"`
}

// POST /api/leetcode
func (s *Server) leetCode(c *gin.Context) {
	var req usernameRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "Username is required"})
		return
	}

	ctx, cancel := s.adapterContext(c)
	defer cancel()

	start := time.Now()
	user, err := s.deps.LeetCode.FetchUser(ctx, req.Username)
	metrics.RecordUpstream(contrib.SourceLeetCode, err, time.Since(start))
	if err != nil {
		status := statusFor(err)
		s.requestLogger(c).Warn("leetcode_fetch_failed", slog.Int("status", status), slog.String("error", err.Error()))
		if status == http.StatusNotFound {
			c.JSON(status, gin.H{"errors": "User not found"})
			return
		}
		c.JSON(status, gin.H{"errors": "Failed to fetch LeetCode data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"matchedUser": user}})
}

// POST /api/github-contributions
func (s *Server) githubContributions(c *gin.Context) {
	var req calendarRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || !s.deps.GitHub.HasToken() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and GitHub token required"})
		return
	}

	window, err := contrib.ParseWindow(req.From, req.To, s.opts.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := s.adapterContext(c)
	defer cancel()

	start := time.Now()
	calendar, err := s.deps.GitHub.FetchCalendar(ctx, req.Username, window)
	metrics.RecordUpstream(contrib.SourceGitHub, err, time.Since(start))
	if err != nil {
		status := statusFor(err)
		s.requestLogger(c).Warn("github_calendar_failed", slog.Int("status", status), slog.String("error", err.Error()))
		if status == http.StatusNotFound {
			c.JSON(status, gin.H{"error": "GitHub user not found"})
			return
		}
		c.JSON(status, gin.H{"error": "Failed to fetch GitHub data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": calendar})
}

// POST /api/github-commits
//
// Upstream failures degrade to an empty list so the portfolio still renders.
func (s *Server) githubCommits(c *gin.Context) {
	var req usernameRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username is required"})
		return
	}

	ctx, cancel := s.adapterContext(c)
	defer cancel()

	start := time.Now()
	commits, err := s.deps.GitHub.FetchRecentCommits(ctx, req.Username)
	metrics.RecordUpstream(contrib.SourceGitHub, err, time.Since(start))
	if err != nil {
		s.requestLogger(c).Warn("github_commits_failed", slog.String("error", err.Error()))
		commits = []contrib.Commit{}
	}
	if commits == nil {
		commits = []contrib.Commit{}
	}

	c.JSON(http.StatusOK, gin.H{"data": commits})
}

// POST /api/dsa-contributions
//
// Per-source failures never fail the request; only a malformed body or an
// invalid window does.
func (s *Server) dsaContributions(c *gin.Context) {
	var req dsaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	window, err := contrib.ParseWindow(req.From, req.To, s.opts.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requests := []aggregator.Request{
		{Source: s.deps.LeetCode, Username: req.LeetCodeUsername},
		{Source: s.deps.GFG, Username: req.GFGUsername},
		{Source: s.deps.Code360, Username: req.Code360Username},
	}

	// Without bounds the client gets the whole history.
	var days []contrib.Day
	if req.From == "" && req.To == "" {
		days = s.deps.Aggregator.All(c.Request.Context(), requests, window)
	} else {
		days = s.deps.Aggregator.Combined(c.Request.Context(), requests, window)
	}
	c.JSON(http.StatusOK, gin.H{"data": days})
}

// POST /send-email
func (s *Server) sendEmail(c *gin.Context) {
	var msg mailer.Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		metrics.RecordContact(contrib.ErrValidation)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Name, a valid email, subject and message are required"})
		return
	}

	err := s.deps.Mailer.Send(c.Request.Context(), msg)
	metrics.RecordContact(err)
	if err != nil {
		s.requestLogger(c).Error("contact_send_failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to send email"})
		return
	}

	s.requestLogger(c).Info("contact_sent")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email sent successfully"})
}

func (s *Server) adapterContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), s.opts.AdapterTimeout)
}

func (s *Server) requestLogger(c *gin.Context) *slog.Logger {
	return s.logger.With(slog.String("request_id", c.GetString(requestIDKey)))
}

// statusFor maps the adapter error taxonomy onto response codes. Upstream
// auth failures are the server's fault, not the caller's.
func statusFor(err error) int {
	switch {
	case errors.Is(err, contrib.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, contrib.ErrUpstreamNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
