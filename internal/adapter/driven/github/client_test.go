package github_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ghAdapter "github.com/ericfisherdev/waitforworkflows/internal/adapter/driven/github"
)

const resolvedSHA = "89abcdef0123456789abcdef0123456789abcdef"

func TestResolveCommitSHA_FullSHAIsUsedAsIs(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be called for a full commit SHA")
	}))

	sha, err := client.ResolveCommitSHA(context.Background(), "owner/repo", resolvedSHA)
	require.NoError(t, err)
	assert.Equal(t, resolvedSHA, sha)
}

func TestResolveCommitSHA_UppercaseSHAIsNotResolved(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be called for a full commit SHA")
	}))

	sha, err := client.ResolveCommitSHA(context.Background(), "owner/repo", strings.ToUpper(resolvedSHA))
	require.NoError(t, err)
	assert.Equal(t, resolvedSHA, sha)
}

func TestResolveCommitSHA_Branch(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/repos/owner/repo/commits/main", r.URL.Path)
		assert.Equal(t, "application/vnd.github.v3.sha", r.Header.Get("Accept"))
		w.Write([]byte(resolvedSHA))
	}))

	sha, err := client.ResolveCommitSHA(context.Background(), "owner/repo", "main")
	require.NoError(t, err)
	assert.Equal(t, resolvedSHA, sha)
}

func TestResolveCommitSHA_UnknownRef(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"No commit found for SHA: nope"}`))
	}))

	_, err := client.ResolveCommitSHA(context.Background(), "owner/repo", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `resolving ref "nope"`)
}

func TestResolveCommitSHA_InvalidRepoName(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be called for invalid repo name")
	}))

	tests := []struct {
		name string
		repo string
	}{
		{name: "no slash", repo: "invalid"},
		{name: "empty owner", repo: "/repo"},
		{name: "empty repo", repo: "owner/"},
		{name: "empty string", repo: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := client.ResolveCommitSHA(context.Background(), tc.repo, "main")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid repo name")
		})
	}
}

func TestSplitRepo(t *testing.T) {
	owner, repo, err := ghAdapter.SplitRepo("int128/wait-for-workflows-action")
	require.NoError(t, err)
	assert.Equal(t, "int128", owner)
	assert.Equal(t, "wait-for-workflows-action", repo)
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name string
		opts ghAdapter.Options
	}{
		{name: "defaults", opts: ghAdapter.Options{}},
		{name: "github.com with trailing slash", opts: ghAdapter.Options{APIURL: "https://api.github.com/"}},
		{name: "enterprise", opts: ghAdapter.Options{
			APIURL:     "https://ghe.example.com/api/v3",
			GraphQLURL: "https://ghe.example.com/api/graphql",
			RetryMax:   2,
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client, err := ghAdapter.NewClient("test-token", tc.opts)
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}
