package contrib

import "context"

// Source names used in logs, metrics and results.
const (
	SourceGitHub   = "github"
	SourceLeetCode = "leetcode"
	SourceGFG      = "gfg"
	SourceCode360  = "code360"
)

// Source is an upstream that yields daily contribution counts for a user.
type Source interface {
	Name() string
	Contributions(ctx context.Context, username string, window Window) ([]Day, error)
}

// Unimplemented is a source with no upstream integration yet. It always
// succeeds with an empty series so the aggregator needs no special case.
type Unimplemented struct {
	name string
}

// NewUnimplemented returns a placeholder source with the given name.
func NewUnimplemented(name string) Unimplemented {
	return Unimplemented{name: name}
}

// Name returns the source name.
func (u Unimplemented) Name() string { return u.name }

// Contributions always returns an empty series.
func (u Unimplemented) Contributions(ctx context.Context, username string, window Window) ([]Day, error) {
	return []Day{}, nil
}
