package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gauthierbraillon/contribmix/internal/contrib"
	"github.com/gauthierbraillon/contribmix/internal/metrics"
)

// DefaultTimeout bounds each source call.
const DefaultTimeout = 8 * time.Second

// Option configures the Aggregator.
type Option func(*Aggregator)

// WithTimeout sets the per-source timeout.
func WithTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithLogger sets the logger used to report failed sources.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// Aggregator fans requests out to their sources and merges the results.
type Aggregator struct {
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a new Aggregator instance.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Collect queries every source concurrently and waits for all of them.
// The returned results are in request order; a failed or timed-out source
// yields a Result with Err set and no days.
func (a *Aggregator) Collect(ctx context.Context, requests []Request, window contrib.Window) []contrib.Result {
	results := make([]contrib.Result, len(requests))

	var g errgroup.Group
	for i, req := range requests {
		i, req := i, req
		g.Go(func() error {
			results[i] = a.call(ctx, req, window)
			return nil // failures are carried in the result, never abort the join
		})
	}
	_ = g.Wait()

	return results
}

// Combined collects, merges and returns the series inside window, sorted by date.
func (a *Aggregator) Combined(ctx context.Context, requests []Request, window contrib.Window) []contrib.Day {
	return window.Filter(a.All(ctx, requests, window))
}

// All collects and merges every day the sources report, sorted by date.
// window is only passed through to sources that can scope their query.
func (a *Aggregator) All(ctx context.Context, requests []Request, window contrib.Window) []contrib.Day {
	return Merge(a.Collect(ctx, requests, window)).Days()
}

type outcome struct {
	days []contrib.Day
	err  error
}

func (a *Aggregator) call(ctx context.Context, req Request, window contrib.Window) contrib.Result {
	name := req.Source.Name()
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: contrib.NewUpstreamError(name, contrib.ErrUpstreamUnavailable, fmt.Errorf("panic: %v", r))}
			}
		}()
		days, err := req.Source.Contributions(ctx, req.Username, window)
		done <- outcome{days: days, err: err}
	}()

	result := contrib.Result{Source: name}
	if o, ok := await(ctx, done); ok {
		result.Days, result.Err = o.days, o.err
	} else {
		// The source ignored its deadline; abandon it.
		result.Err = contrib.NewUpstreamError(name, contrib.ErrUpstreamUnavailable, ctx.Err())
	}

	elapsed := time.Since(start)
	metrics.RecordUpstream(name, result.Err, elapsed)

	if result.Err != nil {
		result.Days = nil
		a.logger.Warn("source_failed",
			slog.String("source", name),
			slog.String("username", req.Username),
			slog.Duration("elapsed", elapsed),
			slog.String("error", result.Err.Error()))
		return result
	}

	if result.Days == nil {
		result.Days = []contrib.Day{}
	}
	a.logger.Debug("source_collected",
		slog.String("source", name),
		slog.Int("days", len(result.Days)),
		slog.Duration("elapsed", elapsed))
	return result
}

// await waits for the source outcome or the deadline. An outcome that is
// already delivered wins over an expired deadline.
func await(ctx context.Context, done <-chan outcome) (outcome, bool) {
	select {
	case o := <-done:
		return o, true
	case <-ctx.Done():
		select {
		case o := <-done:
			return o, true
		default:
			return outcome{}, false
		}
	}
}
