package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const defaultEndpoint = "https://api.github.com"

// GitHubConfig carries the externally supplied tracker settings.
type GitHubConfig struct {
	Endpoint string // defaults to the public API
	Owner    string
	Repo     string
	Token    string
	Timeout  time.Duration
}

// Configured reports whether credentials and a target repository are set.
// Without them the lifecycle manager must stay silent.
func (c GitHubConfig) Configured() bool {
	return c.Owner != "" && c.Repo != "" && c.Token != ""
}

// GitHubClient implements Client against the GitHub issues REST API.
// Requests are rate limited so a report touching every category cannot
// burst past secondary limits.
type GitHubClient struct {
	cfg     GitHubConfig
	http    *http.Client
	limiter *rate.Limiter
}

// NewGitHubClient builds a client from config; zero values get defaults.
func NewGitHubClient(cfg GitHubConfig) *GitHubClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &GitHubClient{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(2), 2),
	}
}

type issueDTO struct {
	ID     int64  `json:"id"`
	Number int    `json:"number"`
	Title  string `json:"title"`
	Labels []struct {
		Name string `json:"name"`
	} `json:"labels"`
}

func (d issueDTO) toIssue() Issue {
	labels := make([]string, 0, len(d.Labels))
	for _, l := range d.Labels {
		labels = append(labels, l.Name)
	}
	return Issue{ID: d.ID, Number: d.Number, Title: d.Title, Labels: labels}
}

// CreateIssue opens a new issue with the given labels.
func (c *GitHubClient) CreateIssue(ctx context.Context, title, body string, labels []string) (Issue, error) {
	payload := map[string]interface{}{"title": title, "body": body, "labels": labels}
	var dto issueDTO
	err := c.do(ctx, http.MethodPost, c.repoPath("issues"), payload, &dto)
	if err != nil {
		return Issue{}, err
	}
	return dto.toIssue(), nil
}

// ListOpenIssuesByLabel returns the open issues carrying label.
func (c *GitHubClient) ListOpenIssuesByLabel(ctx context.Context, label string) ([]Issue, error) {
	path := c.repoPath("issues") + "?state=open&labels=" + url.QueryEscape(label)
	var dtos []issueDTO
	if err := c.do(ctx, http.MethodGet, path, nil, &dtos); err != nil {
		return nil, err
	}
	issues := make([]Issue, 0, len(dtos))
	for _, d := range dtos {
		issues = append(issues, d.toIssue())
	}
	return issues, nil
}

// AddLabel attaches label to an issue.
func (c *GitHubClient) AddLabel(ctx context.Context, issueNumber int, label string) error {
	payload := map[string]interface{}{"labels": []string{label}}
	return c.do(ctx, http.MethodPost, c.issuePath(issueNumber, "labels"), payload, nil)
}

// RemoveLabel detaches label from an issue.
func (c *GitHubClient) RemoveLabel(ctx context.Context, issueNumber int, label string) error {
	path := c.issuePath(issueNumber, "labels") + "/" + url.PathEscape(label)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// CommentOnIssue appends a comment.
func (c *GitHubClient) CommentOnIssue(ctx context.Context, issueNumber int, text string) error {
	payload := map[string]interface{}{"body": text}
	return c.do(ctx, http.MethodPost, c.issuePath(issueNumber, "comments"), payload, nil)
}

// CloseIssue closes an issue.
func (c *GitHubClient) CloseIssue(ctx context.Context, issueNumber int) error {
	payload := map[string]interface{}{"state": "closed"}
	return c.do(ctx, http.MethodPatch, c.issuePath(issueNumber, ""), payload, nil)
}

func (c *GitHubClient) repoPath(suffix string) string {
	return fmt.Sprintf("%s/repos/%s/%s/%s", c.cfg.Endpoint, c.cfg.Owner, c.cfg.Repo, suffix)
}

func (c *GitHubClient) issuePath(number int, suffix string) string {
	base := fmt.Sprintf("%s/repos/%s/%s/issues/%d", c.cfg.Endpoint, c.cfg.Owner, c.cfg.Repo, number)
	if suffix == "" {
		return base
	}
	return base + "/" + suffix
}

func (c *GitHubClient) do(ctx context.Context, method, target string, payload, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, target, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
