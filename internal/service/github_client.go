package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"surveyrelay/internal/config"
	"surveyrelay/internal/metrics"
	"surveyrelay/internal/model"
)

// Upstream failure stages reported to clients.
const (
	StageFetchGitHub  = "fetch_github"
	StageGitHubNon2xx = "github_non_2xx"
)

// ErrMissingToken means no GitHub token is configured.
var ErrMissingToken = errors.New("missing GITHUB_TOKEN")

// FetchError is a failure to reach GitHub or read its response, including
// the request timeout.
type FetchError struct {
	URL     string
	Timeout time.Duration
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("github request failed: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Stage returns the client-facing failure stage.
func (e *FetchError) Stage() string { return StageFetchGitHub }

// StatusError is a non-2xx GitHub response.
type StatusError struct {
	URL        string
	StatusCode int
	StatusText string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("github api error %d: %s", e.StatusCode, LimitText(e.Body, 200))
}

// Stage returns the client-facing failure stage.
func (e *StatusError) Stage() string { return StageGitHubNon2xx }

// GitHubClient wraps the GitHub issues API calls
type GitHubClient struct {
	cfg        config.GitHubConfig
	httpClient *http.Client
	log        logrus.FieldLogger
}

// NewGitHubClient creates a new GitHub API client. Each call is bounded by
// cfg.Timeout through its context.
func NewGitHubClient(cfg config.GitHubConfig, log logrus.FieldLogger) *GitHubClient {
	return &GitHubClient{
		cfg:        cfg,
		httpClient: &http.Client{},
		log:        log.WithField("component", "github"),
	}
}

// IssuesURL returns the issues endpoint requests are sent to
func (c *GitHubClient) IssuesURL() string {
	return c.cfg.IssuesURL()
}

// Timeout returns the per-request time budget
func (c *GitHubClient) Timeout() time.Duration {
	return c.cfg.Timeout
}

type apiResponse struct {
	StatusCode int
	StatusText string
	Body       []byte
}

// doRequest performs one HTTP request. There is no retry: callers report
// failures as they happen.
func (c *GitHubClient) doRequest(ctx context.Context, method, target string, body []byte) (*apiResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.cfg.HasToken() {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamDuration.WithLabelValues(method, "error").Observe(time.Since(start).Seconds())
		c.log.WithError(err).WithField("method", method).Warn("request failed")
		return nil, &FetchError{URL: target, Timeout: c.cfg.Timeout, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	metrics.UpstreamDuration.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())
	if err != nil {
		c.log.WithError(err).Warn("failed to read response body")
		return nil, &FetchError{URL: target, Timeout: c.cfg.Timeout, Err: err}
	}

	c.log.WithFields(logrus.Fields{
		"method": method,
		"status": resp.StatusCode,
		"bytes":  len(respBody),
	}).Debug("response received")

	out := &apiResponse{
		StatusCode: resp.StatusCode,
		StatusText: statusText(resp),
		Body:       respBody,
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, &StatusError{
			URL:        target,
			StatusCode: resp.StatusCode,
			StatusText: out.StatusText,
			Body:       string(respBody),
		}
	}
	return out, nil
}

// CreateIssue opens an issue in the default repository. The returned issue
// is nil when GitHub answered 2xx with a body that is not an issue document.
func (c *GitHubClient) CreateIssue(ctx context.Context, issue model.IssueRequest) (*model.Issue, error) {
	payload, err := json.Marshal(issue)
	if err != nil {
		return nil, fmt.Errorf("failed to encode issue: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, c.IssuesURL(), payload)
	if err != nil {
		return nil, err
	}

	var created model.Issue
	if err := json.Unmarshal(resp.Body, &created); err != nil {
		c.log.WithError(err).Warn("failed to parse created issue")
		return nil, nil
	}
	return &created, nil
}

// ListIssues returns one page of issues carrying label, open and closed,
// as GitHub sent it. The page may contain pull requests.
func (c *GitHubClient) ListIssues(ctx context.Context, label string, page, perPage int) ([]model.Issue, error) {
	q := url.Values{}
	q.Set("labels", label)
	q.Set("state", "all")
	q.Set("sort", "created")
	q.Set("direction", "asc")
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("page", strconv.Itoa(page))

	resp, err := c.doRequest(ctx, http.MethodGet, c.IssuesURL()+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var list []model.Issue
	if err := json.Unmarshal(resp.Body, &list); err != nil {
		return nil, fmt.Errorf("failed to parse issue list: %w", err)
	}
	return list, nil
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// LimitText caps s at max characters, noting how many were cut.
func LimitText(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + fmt.Sprintf(" ...[truncated %d chars]", len(r)-max)
}
