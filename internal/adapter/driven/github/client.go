// Package github implements the CheckSuiteFetcher port using the go-github library.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/waitforworkflows/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CheckSuiteFetcher = (*Client)(nil)

const (
	defaultAPIURL     = "https://api.github.com"
	defaultGraphQLURL = "https://api.github.com/graphql"
)

// commitSHAPattern matches a full hex object id in either letter case.
var commitSHAPattern = regexp.MustCompile(`^(?i)[0-9a-f]{40}$`)

// Client implements the driven.CheckSuiteFetcher port using the go-github library.
type Client struct {
	gh         *gh.Client
	graphqlURL string // "https://api.github.com/graphql" in production; derived from baseURL in tests.
}

// Options configures the endpoints and retry behaviour of a Client.
type Options struct {
	APIURL     string       // REST API root, e.g. GITHUB_API_URL. Empty means github.com.
	GraphQLURL string       // GraphQL endpoint, e.g. GITHUB_GRAPHQL_URL. Empty means github.com.
	RetryMax   int          // Retries for connection errors and 5xx responses.
	Logger     *slog.Logger // Receives retry logs. Nil means slog.Default().
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-retryablehttp (retries connection errors and 5xx with backoff)
//  3. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  4. go-github (GitHub API client with token auth)
func NewClient(token string, opts Options) (*Client, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.RetryMax
	retryClient.Logger = logger
	retryClient.HTTPClient.Transport = httpcache.NewMemoryCacheTransport()

	rateLimitClient := github_ratelimit.NewClient(&retryablehttp.RoundTripper{Client: retryClient})
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	if opts.APIURL != "" && strings.TrimSuffix(opts.APIURL, "/") != defaultAPIURL {
		var err error
		client, err = client.WithEnterpriseURLs(opts.APIURL, opts.APIURL)
		if err != nil {
			return nil, fmt.Errorf("configuring API URL %q: %w", opts.APIURL, err)
		}
	}

	graphqlURL := opts.GraphQLURL
	if graphqlURL == "" {
		graphqlURL = defaultGraphQLURL
	}

	return &Client{
		gh:         client,
		graphqlURL: graphqlURL,
	}, nil
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) (*Client, error) {
	client := gh.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	// Derive graphqlURL from baseURL so httptest servers can intercept GraphQL requests.
	graphqlU := *u
	graphqlU.Path = "/graphql"

	return &Client{
		gh:         client,
		graphqlURL: graphqlU.String(),
	}, nil
}

// ResolveCommitSHA returns ref lowercased when it already is a full commit
// SHA. Otherwise ref is treated as a branch or tag name and resolved through
// the commits API.
func (c *Client) ResolveCommitSHA(ctx context.Context, repoFullName string, ref string) (string, error) {
	if commitSHAPattern.MatchString(ref) {
		return strings.ToLower(ref), nil
	}

	owner, repo, err := SplitRepo(repoFullName)
	if err != nil {
		return "", err
	}

	sha, resp, err := c.gh.Repositories.GetCommitSHA1(ctx, owner, repo, ref, "")
	if err != nil {
		return "", fmt.Errorf("resolving ref %q of %s: %w", ref, repoFullName, err)
	}

	logRateLimit(resp, repoFullName+"/commits", 0, 1)

	sha = strings.ToLower(strings.TrimSpace(sha))
	if !commitSHAPattern.MatchString(sha) {
		return "", fmt.Errorf("resolving ref %q of %s: unexpected commit id %q", ref, repoFullName, sha)
	}

	slog.Info("resolved ref", "ref", ref, "sha", sha)
	return sha, nil
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

// SplitRepo splits a "owner/repo" string into its two components.
func SplitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}
