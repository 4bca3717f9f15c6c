// Package server exposes the contribution proxy and the contact relay over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/gauthierbraillon/contribmix/internal/aggregator"
	"github.com/gauthierbraillon/contribmix/internal/contrib"
	"github.com/gauthierbraillon/contribmix/internal/github"
	"github.com/gauthierbraillon/contribmix/internal/leetcode"
	"github.com/gauthierbraillon/contribmix/internal/mailer"
	"github.com/gauthierbraillon/contribmix/internal/metrics"
)

// GitHubService is the GitHub adapter as seen by the handlers.
type GitHubService interface {
	HasToken() bool
	FetchCalendar(ctx context.Context, username string, window contrib.Window) (*github.Calendar, error)
	FetchRecentCommits(ctx context.Context, username string) ([]contrib.Commit, error)
}

// LeetCodeService is the LeetCode adapter: a raw user lookup plus a source
// for the combined DSA series.
type LeetCodeService interface {
	contrib.Source
	FetchUser(ctx context.Context, username string) (*leetcode.MatchedUser, error)
}

// Aggregator merges the DSA sources. Combined limits the series to window,
// All returns every reported day.
type Aggregator interface {
	Combined(ctx context.Context, requests []aggregator.Request, window contrib.Window) []contrib.Day
	All(ctx context.Context, requests []aggregator.Request, window contrib.Window) []contrib.Day
}

// Mailer relays contact form submissions.
type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	GitHub     GitHubService
	LeetCode   LeetCodeService
	GFG        contrib.Source
	Code360    contrib.Source
	Aggregator Aggregator
	Mailer     Mailer
	Logger     *slog.Logger
}

// Options tune the HTTP surface.
type Options struct {
	AllowedOrigins []string
	StaticDir      string
	// AdapterTimeout bounds single-source endpoints; the aggregator applies
	// its own per-source timeout.
	AdapterTimeout time.Duration
	// ContactPerMinute and ContactBurst limit /send-email per client IP.
	ContactPerMinute float64
	ContactBurst     int
	// Now is the clock used for default windows (tests override it).
	Now func() time.Time
}

// Server owns the gin engine and its dependencies.
type Server struct {
	deps    Deps
	opts    Options
	logger  *slog.Logger
	limiter *RateLimiter
	engine  *gin.Engine
}

// New wires the routes. Missing GFG/Code360 sources default to placeholders.
func New(deps Deps, opts Options) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.GFG == nil {
		deps.GFG = contrib.NewUnimplemented(contrib.SourceGFG)
	}
	if deps.Code360 == nil {
		deps.Code360 = contrib.NewUnimplemented(contrib.SourceCode360)
	}
	if opts.AdapterTimeout <= 0 {
		opts.AdapterTimeout = aggregator.DefaultTimeout
	}
	if opts.ContactPerMinute <= 0 {
		opts.ContactPerMinute = 5
	}
	if opts.ContactBurst <= 0 {
		opts.ContactBurst = 3
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		deps:    deps,
		opts:    opts,
		logger:  deps.Logger,
		limiter: NewRateLimiter(rate.Limit(opts.ContactPerMinute/60), opts.ContactBurst),
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server_started", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("server_stopping")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestID())
	r.Use(accessLog(s.logger))
	r.Use(recordMetrics())
	r.Use(cors.New(corsConfig(s.opts.AllowedOrigins)))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.POST("/send-email", s.limiter.Middleware(), s.sendEmail)

	api := r.Group("/api")
	api.POST("/leetcode", s.leetCode)
	api.POST("/github-contributions", s.githubContributions)
	api.POST("/github-commits", s.githubCommits)
	api.POST("/dsa-contributions", s.dsaContributions)

	if s.opts.StaticDir != "" {
		r.NoRoute(serveStatic(s.opts.StaticDir))
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
