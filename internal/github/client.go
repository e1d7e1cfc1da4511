// internal/github/client.go
package github

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"portfolio-service/internal/model"
)

const listPageSize = 100

// Client is a wrapper around the go-github client, scoped to the
// configured account. Errors are returned explicitly; degrading a failed
// fetch to an empty result is the caller's policy, not the client's, so
// "empty" and "failed" stay distinguishable.
type Client struct {
	gh       *github.Client
	username string
	logger   *slog.Logger
}

// NewClient creates and configures a new Client instance. When token is
// empty the client runs unauthenticated with GitHub's lower rate limits.
func NewClient(username, token string, logger *slog.Logger) *Client {
	var tc = github.NewClient(nil)
	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		tc = github.NewClient(oauth2.NewClient(context.Background(), ts))
	}

	return &Client{
		gh:       tc,
		username: username,
		logger:   logger,
	}
}

// OverrideBaseURL points the client at a different API endpoint. Used by
// tests against a local mock server.
func (c *Client) OverrideBaseURL(raw string) error {
	u, err := url.Parse(strings.TrimSuffix(raw, "/") + "/")
	if err != nil {
		return err
	}
	c.gh.BaseURL = u
	return nil
}

// ListRepositories fetches the account's repositories sorted by most
// recently updated, one page of up to 100 items.
func (c *Client) ListRepositories(ctx context.Context) ([]model.Repository, error) {
	opts := &github.RepositoryListByUserOptions{
		Sort: "updated",
		ListOptions: github.ListOptions{
			PerPage: listPageSize,
		},
	}

	repos, _, err := c.gh.Repositories.ListByUser(ctx, c.username, opts)
	if err != nil {
		c.logger.Error("Failed to list repositories", "user", c.username, "error", err)
		return nil, err
	}

	result := make([]model.Repository, 0, len(repos))
	for _, r := range repos {
		result = append(result, toInternalRepository(r))
	}
	return result, nil
}

// GetRepository fetches one repository's full detail by short name.
func (c *Client) GetRepository(ctx context.Context, name string) (*model.Repository, error) {
	repo, _, err := c.gh.Repositories.Get(ctx, c.username, name)
	if err != nil {
		c.logger.Error("Failed to fetch repository", "repo", name, "error", err)
		return nil, err
	}
	r := toInternalRepository(repo)
	return &r, nil
}

// GetLanguages fetches the language name to byte-count mapping for a
// repository.
func (c *Client) GetLanguages(ctx context.Context, name string) (map[string]int, error) {
	langs, _, err := c.gh.Repositories.ListLanguages(ctx, c.username, name)
	if err != nil {
		c.logger.Error("Failed to fetch languages", "repo", name, "error", err)
		return nil, err
	}
	return langs, nil
}

// GetCommits fetches the most recent commits for a repository, capped at
// limit entries.
func (c *Client) GetCommits(ctx context.Context, name string, limit int) ([]model.Commit, error) {
	if limit <= 0 || limit > listPageSize {
		limit = listPageSize
	}
	opts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{
			PerPage: limit,
		},
	}

	commits, _, err := c.gh.Repositories.ListCommits(ctx, c.username, name, opts)
	if err != nil {
		c.logger.Error("Failed to fetch commits", "repo", name, "error", err)
		return nil, err
	}

	result := make([]model.Commit, 0, len(commits))
	for _, commit := range commits {
		result = append(result, toInternalCommit(commit))
	}
	return result, nil
}

// toInternalRepository translates a github.Repository object to our
// internal model.Repository. Missing optional fields take their zero
// value; timestamps absent upstream stay nil rather than zero-valued.
func toInternalRepository(r *github.Repository) model.Repository {
	return model.Repository{
		GithubID:        r.GetID(),
		Name:            r.GetName(),
		FullName:        r.GetFullName(),
		Description:     r.Description,
		URL:             r.GetHTMLURL(),
		Homepage:        r.GetHomepage(),
		StarsCount:      r.GetStargazersCount(),
		ForksCount:      r.GetForksCount(),
		WatchersCount:   r.GetWatchersCount(),
		OpenIssuesCount: r.GetOpenIssuesCount(),
		SizeKB:          r.GetSize(),
		PrimaryLanguage: r.Language,
		Topics:          r.Topics,
		IsFork:          r.GetFork(),
		IsPrivate:       r.GetPrivate(),
		IsArchived:      r.GetArchived(),
		RepoCreatedAt:   toTimePtr(r.CreatedAt),
		RepoUpdatedAt:   toTimePtr(r.UpdatedAt),
		RepoPushedAt:    toTimePtr(r.PushedAt),
	}
}

// toInternalCommit translates a github.RepositoryCommit object to our
// internal model.Commit.
func toInternalCommit(c *github.RepositoryCommit) model.Commit {
	return model.Commit{
		SHA:         c.GetSHA(),
		AuthorName:  c.GetCommit().GetAuthor().GetName(),
		AuthorEmail: c.GetCommit().GetAuthor().GetEmail(),
		Message:     c.GetCommit().GetMessage(),
		URL:         c.GetHTMLURL(),
		CommittedAt: c.GetCommit().GetAuthor().GetDate().Time,
	}
}

func toTimePtr(ts *github.Timestamp) *time.Time {
	if ts == nil || ts.Time.IsZero() {
		return nil
	}
	t := ts.Time.UTC()
	return &t
}
