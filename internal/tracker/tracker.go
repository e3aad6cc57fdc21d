// Package tracker maintains drift issues in an external issue tracker.
// The lifecycle manager owns no issue storage; all state it needs is
// recoverable from each issue's label set.
package tracker

import "context"

// ResolvedLabel marks an open issue whose category passed the most recent
// session. Its presence or absence is the only persisted flap state.
const ResolvedLabel = "resolved"

// Issue is the tracker's view of one tracked alert.
type Issue struct {
	ID     int64    `json:"id"`
	Number int      `json:"number"`
	Title  string   `json:"title"`
	Labels []string `json:"labels"`
}

// HasLabel reports whether the issue carries the given label.
func (i Issue) HasLabel(label string) bool {
	for _, l := range i.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// Client is the minimal tracker surface the lifecycle manager drives.
type Client interface {
	CreateIssue(ctx context.Context, title, body string, labels []string) (Issue, error)
	ListOpenIssuesByLabel(ctx context.Context, label string) ([]Issue, error)
	AddLabel(ctx context.Context, issueNumber int, label string) error
	RemoveLabel(ctx context.Context, issueNumber int, label string) error
	CommentOnIssue(ctx context.Context, issueNumber int, text string) error
	CloseIssue(ctx context.Context, issueNumber int) error
}
