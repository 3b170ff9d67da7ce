// Package github is a small read-only client for the GitHub REST endpoints the
// mirror polls: releases, workflow runs, run artifacts, and binary downloads.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultAPIURL is the public GitHub API endpoint.
const DefaultAPIURL = "https://api.github.com"

// RunsPageSize bounds how many completed runs are requested per poll.
const RunsPageSize = 5

// HTTPClient abstracts HTTP operations for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenSource supplies the bearer token for API requests.
// An empty token means anonymous access.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

func (s StaticToken) Token() string { return string(s) }

// StatusError is returned when GitHub answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// Client talks to the GitHub REST API.
type Client struct {
	BaseURL   string
	HTTP      HTTPClient
	Tokens    TokenSource
	UserAgent string
}

// Options configures NewClient.
type Options struct {
	BaseURL string
	Tokens  TokenSource
	// HeaderTimeout bounds the wait for response headers. Bodies are streamed
	// without an overall deadline so large downloads are not cut off.
	HeaderTimeout time.Duration
	UserAgent     string
}

// NewClient creates a Client with a transport tuned for long streamed downloads.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultAPIURL
	}
	if opts.HeaderTimeout <= 0 {
		opts.HeaderTimeout = 60 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "ghmirror"
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ResponseHeaderTimeout: opts.HeaderTimeout,
		IdleConnTimeout:       90 * time.Second,
	}

	return &Client{
		BaseURL:   strings.TrimRight(opts.BaseURL, "/"),
		HTTP:      &http.Client{Transport: transport},
		Tokens:    opts.Tokens,
		UserAgent: opts.UserAgent,
	}
}

// LatestRelease returns the latest non-prerelease, non-draft release.
func (c *Client) LatestRelease(ctx context.Context, repo string) (*Release, error) {
	var rel Release
	if err := c.getJSON(ctx, c.repoURL(repo, "releases/latest"), &rel); err != nil {
		return nil, err
	}
	return &rel, nil
}

// ListReleases returns the first page of releases, newest first.
func (c *Client) ListReleases(ctx context.Context, repo string) ([]Release, error) {
	var rels []Release
	if err := c.getJSON(ctx, c.repoURL(repo, "releases"), &rels); err != nil {
		return nil, err
	}
	return rels, nil
}

// ListRuns returns the most recent completed workflow runs, newest first.
// When workflow is set only runs of that workflow file (or id) are listed.
func (c *Client) ListRuns(ctx context.Context, repo, workflow string) ([]WorkflowRun, error) {
	path := "actions/runs"
	if workflow != "" {
		path = "actions/workflows/" + url.PathEscape(workflow) + "/runs"
	}

	q := url.Values{}
	q.Set("status", "completed")
	q.Set("per_page", fmt.Sprint(RunsPageSize))

	var list WorkflowRunList
	if err := c.getJSON(ctx, c.repoURL(repo, path)+"?"+q.Encode(), &list); err != nil {
		return nil, err
	}
	return list.WorkflowRuns, nil
}

// ListArtifacts returns the artifacts of a workflow run.
func (c *Client) ListArtifacts(ctx context.Context, repo string, run WorkflowRun) ([]Artifact, error) {
	u := run.ArtifactsURL
	if u == "" {
		u = c.repoURL(repo, fmt.Sprintf("actions/runs/%d/artifacts", run.ID))
	}

	var list ArtifactList
	if err := c.getJSON(ctx, u, &list); err != nil {
		return nil, err
	}
	return list.Artifacts, nil
}

// Download streams the body found at rawURL into w and returns the number of
// bytes written. Redirects to storage hosts are followed by the HTTP client,
// which drops the Authorization header when the host changes.
func (c *Client) Download(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	req, err := c.newRequest(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &StatusError{StatusCode: resp.StatusCode, URL: rawURL}
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("reading %s: %w", rawURL, err)
	}
	return n, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := c.newRequest(ctx, rawURL)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return &StatusError{StatusCode: resp.StatusCode, URL: rawURL}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", rawURL, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if c.Tokens != nil {
		if tok := c.Tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return req, nil
}

func (c *Client) repoURL(repo, path string) string {
	base := c.BaseURL
	if base == "" {
		base = DefaultAPIURL
	}
	return base + "/repos/" + repo + "/" + path
}
