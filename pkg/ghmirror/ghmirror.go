// Package ghmirror provides the public Go library API for ghmirror.
//
// ghmirror mirrors the newest GitHub release assets or GitHub Actions
// artifacts of a list of repositories into local directories, downloading
// only when the upstream state changed since the last sync.
//
// # Basic Usage
//
//	client, err := ghmirror.New(ghmirror.Options{
//	    ConfigPath: "projects.yaml",
//	    Token:      os.Getenv("GITHUB_TOKEN"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Mirror every project
//	summary := client.Sync(ctx, ghmirror.SyncOptions{})
//	os.Exit(summary.ExitCode())
//
// A Client must not sync the same configuration concurrently with another
// Client or process.
package ghmirror

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/bianoble/ghmirror/internal/config"
	"github.com/bianoble/ghmirror/internal/engine"
	"github.com/bianoble/ghmirror/internal/github"
	"github.com/bianoble/ghmirror/internal/ledger"
	"github.com/bianoble/ghmirror/internal/source"
)

// SyncOptions configures a sync operation.
type SyncOptions struct {
	DryRun bool
}

// TokenSource supplies the GitHub token per request.
type TokenSource interface {
	Token() string
}

// HTTPClient performs HTTP requests; *http.Client satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a ghmirror client.
type Options struct {
	// ConfigPath is the project list. Default: "projects.yaml".
	ConfigPath string
	// Config, when set, is used instead of loading ConfigPath.
	Config *config.Config

	// Token authenticates API requests. Ignored when Tokens is set.
	// Empty means anonymous access.
	Token string
	// Tokens supplies a token per request.
	Tokens TokenSource

	// APIURL overrides github.api_url from the config.
	APIURL string

	// HTTPClient replaces the default transport.
	HTTPClient HTTPClient

	// Logger receives progress and diagnostics. Default: the logrus standard logger.
	Logger logrus.FieldLogger
}

// Client is the main entry point for the ghmirror library.
type Client struct {
	cfg    *config.Config
	github *github.Client
	ledger *ledger.Store
	logger logrus.FieldLogger
	reg    *source.Registry
}

// New loads the configuration and creates a Client.
func New(opts Options) (*Client, error) {
	if opts.ConfigPath == "" {
		opts.ConfigPath = config.DefaultFileName
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(opts.ConfigPath); err != nil {
			return nil, err
		}
	}

	timeout, err := cfg.HeaderTimeout()
	if err != nil {
		return nil, err
	}

	var tokens github.TokenSource = github.StaticToken(opts.Token)
	if opts.Tokens != nil {
		tokens = opts.Tokens
	}

	apiURL := cfg.GitHub.APIURL
	if opts.APIURL != "" {
		apiURL = opts.APIURL
	}

	gh := github.NewClient(github.Options{
		BaseURL:       apiURL,
		Tokens:        tokens,
		HeaderTimeout: timeout,
	})
	if opts.HTTPClient != nil {
		gh.HTTP = opts.HTTPClient
	}

	return &Client{
		cfg:    cfg,
		github: gh,
		ledger: ledger.NewStore(opts.Logger),
		logger: opts.Logger,
		reg:    source.NewGitHubRegistry(gh),
	}, nil
}

// Config returns the loaded configuration.
func (c *Client) Config() *config.Config {
	return c.cfg
}

func (c *Client) batch(dryRun bool) *engine.BatchEngine {
	return &engine.BatchEngine{
		Syncer: &engine.SyncEngine{
			Registry:   c.reg,
			Ledger:     c.ledger,
			Downloader: c.github,
			Logger:     c.logger,
		},
		Logger: c.logger,
		DryRun: dryRun,
	}
}

// Sync mirrors every configured project and returns the batch summary.
// Per-project failures are recorded in the summary, never returned.
func (c *Client) Sync(ctx context.Context, opts SyncOptions) *Summary {
	return c.batch(opts.DryRun).Run(ctx, c.cfg)
}

// Check reports which projects have a pending update without changing anything.
func (c *Client) Check(ctx context.Context) *Summary {
	return c.batch(true).Run(ctx, c.cfg)
}

// Status reports the recorded state of every project from the local ledgers.
func (c *Client) Status() []ProjectStatus {
	return (&engine.StatusEngine{Ledger: c.ledger}).Status(c.cfg)
}
