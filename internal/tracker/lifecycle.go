package tracker

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/khanhnv2901/supplywatch/internal/drift"
)

// IssueState classifies a category's tracked issue at session start. It is
// derived once from the label set and drives every transition for that
// category; transitions never re-derive state mid-sequence.
type IssueState int

const (
	StateNone IssueState = iota
	StateOpenUnresolved
	StateOpenResolved
)

func (s IssueState) String() string {
	switch s {
	case StateOpenUnresolved:
		return "open-unresolved"
	case StateOpenResolved:
		return "open-resolved"
	}
	return "none"
}

// Lifecycle converts a drift report into idempotent tracker actions. A
// category must pass two consecutive sessions (resolved, then closed)
// before its issue disappears, which suppresses open/close flapping.
type Lifecycle struct {
	client Client
	logger *zap.SugaredLogger
	site   string
}

// NewLifecycle returns a lifecycle manager for one monitored site.
func NewLifecycle(client Client, site string, logger *zap.SugaredLogger) *Lifecycle {
	return &Lifecycle{client: client, logger: logger, site: site}
}

// Run applies the report to the tracker, one ordered task per category.
// Categories are independent and processed concurrently; tracker failures
// are logged and never abort the session or other categories.
func (l *Lifecycle) Run(ctx context.Context, report drift.Report) {
	var wg sync.WaitGroup
	for _, cat := range drift.Categories() {
		wg.Add(1)
		go func(cat drift.Category) {
			defer wg.Done()
			l.applyCategory(ctx, cat, report[cat])
		}(cat)
	}
	wg.Wait()
}

// applyCategory runs one category's state transition. Steps within a
// category stay ordered because later calls depend on the label set the
// earlier ones produced.
func (l *Lifecycle) applyCategory(ctx context.Context, cat drift.Category, hosts []string) {
	label := cat.Label()

	open, err := l.client.ListOpenIssuesByLabel(ctx, label)
	if err != nil {
		l.logf(cat, "list open issues", err)
		return
	}

	state := StateNone
	var issue Issue
	if len(open) > 0 {
		// at most one open issue per category by construction; act on the
		// first if the tracker ever holds more
		issue = open[0]
		if issue.HasLabel(ResolvedLabel) {
			state = StateOpenResolved
		} else {
			state = StateOpenUnresolved
		}
	}

	l.logger.Infow("issue lifecycle",
		"category", string(cat), "state", state.String(), "unauthorized", len(hosts))

	if len(hosts) > 0 {
		l.applyFailing(ctx, cat, state, issue, hosts)
		return
	}
	l.applyPassing(ctx, cat, state, issue)
}

func (l *Lifecycle) applyFailing(ctx context.Context, cat drift.Category, state IssueState, issue Issue, hosts []string) {
	switch state {
	case StateNone:
		title := fmt.Sprintf("[supplywatch] unauthorized %s on %s", cat.Title(), l.site)
		_, err := l.client.CreateIssue(ctx, title, issueBody(cat, hosts), []string{cat.Label()})
		l.logf(cat, "create issue", err)
	case StateOpenUnresolved:
		// already unresolved; restate the current offenders
		err := l.client.CommentOnIssue(ctx, issue.Number, issueBody(cat, hosts))
		l.logf(cat, "comment", err)
	case StateOpenResolved:
		err := l.client.RemoveLabel(ctx, issue.Number, ResolvedLabel)
		l.logf(cat, "remove resolved label", err)
		err = l.client.CommentOnIssue(ctx, issue.Number, "Unauthorized hosts found.\n\n"+issueBody(cat, hosts))
		l.logf(cat, "comment", err)
	}
}

func (l *Lifecycle) applyPassing(ctx context.Context, cat drift.Category, state IssueState, issue Issue) {
	switch state {
	case StateNone:
		// nothing tracked, nothing observed
	case StateOpenUnresolved:
		err := l.client.AddLabel(ctx, issue.Number, ResolvedLabel)
		l.logf(cat, "add resolved label", err)
		err = l.client.CommentOnIssue(ctx, issue.Number, "No unauthorized hosts found.")
		l.logf(cat, "comment", err)
	case StateOpenResolved:
		err := l.client.CommentOnIssue(ctx, issue.Number, "No unauthorized hosts found in two consecutive sessions, closing.")
		l.logf(cat, "closing comment", err)
		err = l.client.CloseIssue(ctx, issue.Number)
		l.logf(cat, "close issue", err)
	}
}

func (l *Lifecycle) logf(cat drift.Category, action string, err error) {
	if err != nil {
		l.logger.Warnw("tracker call failed", "category", string(cat), "action", action, "error", err)
		return
	}
	l.logger.Infow("tracker call ok", "category", string(cat), "action", action)
}

func issueBody(cat drift.Category, hosts []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Unauthorized %s observed:\n\n", strings.ToLower(cat.Title()))
	for _, h := range hosts {
		fmt.Fprintf(&b, "- `%s`\n", h)
	}
	return b.String()
}
