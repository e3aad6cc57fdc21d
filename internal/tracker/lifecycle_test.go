package tracker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/khanhnv2901/supplywatch/internal/drift"
)

type fakeCall struct {
	action string
	number int
	label  string
	text   string
}

// fakeClient records calls; the lifecycle fans out across categories so
// every method takes the mutex.
type fakeClient struct {
	mu      sync.Mutex
	open    map[string][]Issue
	calls   []fakeCall
	created []Issue
}

func newFakeClient() *fakeClient {
	return &fakeClient{open: make(map[string][]Issue)}
}

func (f *fakeClient) CreateIssue(_ context.Context, title, body string, labels []string) (Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	issue := Issue{Number: len(f.created) + 1, Title: title, Labels: labels}
	f.created = append(f.created, issue)
	f.calls = append(f.calls, fakeCall{action: "create", text: body, label: strings.Join(labels, ",")})
	return issue, nil
}

func (f *fakeClient) ListOpenIssuesByLabel(_ context.Context, label string) ([]Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{action: "list", label: label})
	return f.open[label], nil
}

func (f *fakeClient) AddLabel(_ context.Context, number int, label string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{action: "add-label", number: number, label: label})
	return nil
}

func (f *fakeClient) RemoveLabel(_ context.Context, number int, label string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{action: "remove-label", number: number, label: label})
	return nil
}

func (f *fakeClient) CommentOnIssue(_ context.Context, number int, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{action: "comment", number: number, text: text})
	return nil
}

func (f *fakeClient) CloseIssue(_ context.Context, number int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{action: "close", number: number})
	return nil
}

func (f *fakeClient) actions() []string {
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		if c.action == "list" {
			continue
		}
		out = append(out, c.action)
	}
	return out
}

// erroringClient records like fakeClient but fails the configured calls.
type erroringClient struct {
	*fakeClient
	trackerErr   error
	listErrLabel string // list fails for this label only
	failWrites   bool   // every mutating call fails
}

func newErroringClient() *erroringClient {
	return &erroringClient{fakeClient: newFakeClient(), trackerErr: errors.New("tracker unavailable")}
}

func (e *erroringClient) ListOpenIssuesByLabel(ctx context.Context, label string) ([]Issue, error) {
	issues, err := e.fakeClient.ListOpenIssuesByLabel(ctx, label)
	if label == e.listErrLabel {
		return nil, e.trackerErr
	}
	return issues, err
}

func (e *erroringClient) CreateIssue(ctx context.Context, title, body string, labels []string) (Issue, error) {
	issue, err := e.fakeClient.CreateIssue(ctx, title, body, labels)
	if e.failWrites {
		return Issue{}, e.trackerErr
	}
	return issue, err
}

func (e *erroringClient) AddLabel(ctx context.Context, number int, label string) error {
	err := e.fakeClient.AddLabel(ctx, number, label)
	if e.failWrites {
		return e.trackerErr
	}
	return err
}

func (e *erroringClient) RemoveLabel(ctx context.Context, number int, label string) error {
	err := e.fakeClient.RemoveLabel(ctx, number, label)
	if e.failWrites {
		return e.trackerErr
	}
	return err
}

func (e *erroringClient) CommentOnIssue(ctx context.Context, number int, text string) error {
	err := e.fakeClient.CommentOnIssue(ctx, number, text)
	if e.failWrites {
		return e.trackerErr
	}
	return err
}

func (e *erroringClient) CloseIssue(ctx context.Context, number int) error {
	err := e.fakeClient.CloseIssue(ctx, number)
	if e.failWrites {
		return e.trackerErr
	}
	return err
}

func emptyReport() drift.Report {
	report := make(drift.Report)
	for _, c := range drift.Categories() {
		report[c] = nil
	}
	return report
}

func testLifecycle(client Client) *Lifecycle {
	return NewLifecycle(client, "app.example.com", zap.NewNop().Sugar())
}

func TestLifecycleCreatesIssueOnFirstFailure(t *testing.T) {
	client := newFakeClient()
	report := emptyReport()
	report[drift.CategoryScriptHosts] = []string{"evil.io"}

	testLifecycle(client).Run(context.Background(), report)

	if len(client.created) != 1 {
		t.Fatalf("expected 1 created issue, got %d", len(client.created))
	}
	issue := client.created[0]
	if !issue.HasLabel(drift.CategoryScriptHosts.Label()) {
		t.Fatalf("created issue missing category label: %v", issue.Labels)
	}
	if !strings.Contains(findCall(t, client, "create").text, "evil.io") {
		t.Fatal("issue body does not list the unauthorized host")
	}
}

func TestLifecyclePassingWithoutIssueIsNoop(t *testing.T) {
	client := newFakeClient()
	testLifecycle(client).Run(context.Background(), emptyReport())

	if got := client.actions(); len(got) != 0 {
		t.Fatalf("expected no tracker actions, got %v", got)
	}
}

func TestLifecycleResolvesOpenIssueOnPass(t *testing.T) {
	client := newFakeClient()
	label := drift.CategoryXHRHosts.Label()
	client.open[label] = []Issue{{Number: 7, Labels: []string{label}}}

	testLifecycle(client).Run(context.Background(), emptyReport())

	add := findCall(t, client, "add-label")
	if add.number != 7 || add.label != ResolvedLabel {
		t.Fatalf("unexpected add-label call %+v", add)
	}
	comment := findCall(t, client, "comment")
	if !strings.Contains(comment.text, "No unauthorized hosts") {
		t.Fatalf("unexpected comment %q", comment.text)
	}
	for _, c := range client.calls {
		if c.action == "close" {
			t.Fatal("issue must not close on first pass")
		}
	}
}

func TestLifecycleClosesResolvedIssueOnSecondPass(t *testing.T) {
	client := newFakeClient()
	label := drift.CategoryXHRHosts.Label()
	client.open[label] = []Issue{{Number: 7, Labels: []string{label, ResolvedLabel}}}

	testLifecycle(client).Run(context.Background(), emptyReport())

	closeCall := findCall(t, client, "close")
	if closeCall.number != 7 {
		t.Fatalf("unexpected close call %+v", closeCall)
	}
	// closing comment precedes the close
	var sawComment bool
	for _, c := range client.calls {
		if c.action == "comment" {
			sawComment = true
		}
		if c.action == "close" && !sawComment {
			t.Fatal("close issued before the closing comment")
		}
	}
}

func TestLifecycleUnresolvesOnRegression(t *testing.T) {
	client := newFakeClient()
	label := drift.CategoryScriptHosts.Label()
	client.open[label] = []Issue{{Number: 3, Labels: []string{label, ResolvedLabel}}}

	report := emptyReport()
	report[drift.CategoryScriptHosts] = []string{"evil.io"}
	testLifecycle(client).Run(context.Background(), report)

	remove := findCall(t, client, "remove-label")
	if remove.number != 3 || remove.label != ResolvedLabel {
		t.Fatalf("unexpected remove-label call %+v", remove)
	}
	comment := findCall(t, client, "comment")
	if !strings.Contains(comment.text, "evil.io") {
		t.Fatalf("regression comment does not restate hosts: %q", comment.text)
	}
	if len(client.created) != 0 {
		t.Fatal("regression must reuse the open issue, not create a new one")
	}
}

func TestLifecycleFailingUnresolvedCommentsOnly(t *testing.T) {
	client := newFakeClient()
	label := drift.CategoryScriptHosts.Label()
	client.open[label] = []Issue{{Number: 3, Labels: []string{label}}}

	report := emptyReport()
	report[drift.CategoryScriptHosts] = []string{"evil.io"}
	testLifecycle(client).Run(context.Background(), report)

	if got := client.actions(); len(got) != 1 || got[0] != "comment" {
		t.Fatalf("expected a single comment action, got %v", got)
	}
}

func TestLifecycleTrackerFailuresDoNotAbort(t *testing.T) {
	client := newErroringClient()
	client.failWrites = true
	label := drift.CategoryXHRHosts.Label()
	client.open[label] = []Issue{{Number: 5, Labels: []string{label, ResolvedLabel}}}

	report := emptyReport()
	report[drift.CategoryScriptHosts] = []string{"evil.io"}
	report[drift.CategoryWebSocketHosts] = []string{"c2.evil.io"}

	testLifecycle(client).Run(context.Background(), report)

	// both failing categories still attempted their create despite every
	// write erroring
	if len(client.created) != 2 {
		t.Fatalf("create attempts = %d, want 2", len(client.created))
	}
	// the resolved category's close is still attempted after its comment
	// failed; failures are logged, never retried
	findCall(t, client.fakeClient, "close")
	for _, c := range client.calls {
		if c.action == "close" && c.number != 5 {
			t.Fatalf("unexpected close call %+v", c)
		}
	}
}

func TestLifecycleListFailureIsolatedToCategory(t *testing.T) {
	client := newErroringClient()
	client.listErrLabel = drift.CategoryScriptHosts.Label()

	report := emptyReport()
	report[drift.CategoryScriptHosts] = []string{"evil.io"}
	report[drift.CategoryXHRHosts] = []string{"api.evil.io"}

	testLifecycle(client).Run(context.Background(), report)

	if len(client.created) != 1 {
		t.Fatalf("created = %v, want only the healthy category's issue", client.created)
	}
	if !client.created[0].HasLabel(drift.CategoryXHRHosts.Label()) {
		t.Fatalf("surviving issue carries wrong label: %v", client.created[0].Labels)
	}
}

func findCall(t *testing.T, client *fakeClient, action string) fakeCall {
	t.Helper()
	for _, c := range client.calls {
		if c.action == action {
			return c
		}
	}
	t.Fatalf("no %q call recorded in %v", action, client.calls)
	return fakeCall{}
}
