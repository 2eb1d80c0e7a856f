package github

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	github_ratelimit "github.com/gofri/go-github-ratelimit/github_ratelimit"
	gh "github.com/google/go-github/v68/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/dvaldez/termfolio/internal/provider"
)

// detailTimeout bounds the per-repository languages/README sub-fetches so one
// slow repository cannot stall the whole snapshot.
const detailTimeout = 5 * time.Second

// readmeLimit caps how much README content is kept per repository.
const readmeLimit = 16 * 1024

// Backend implements provider.Source for GitHub.
type Backend struct {
	client    *gh.Client
	gqlOnce   sync.Once
	gqlClient *githubv4.Client
	username  string
	orgs      []string
	token     string
}

// NewBackend creates a GitHub snapshot source for the given account.
// Uses go-github-ratelimit middleware for automatic rate limit handling.
func NewBackend(username string, orgs []string, token string) *Backend {
	rateLimiter, _ := github_ratelimit.NewRateLimitWaiterClient(nil)
	client := gh.NewClient(rateLimiter)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &Backend{
		client:   client,
		username: username,
		orgs:     orgs,
		token:    token,
	}
}

// ListRepositories fetches the portfolio snapshot: the user's own repositories
// plus the configured organizations' repositories, each enriched with its
// language list and README content. Pinned repositories sort first.
func (b *Backend) ListRepositories(ctx context.Context) ([]provider.Repository, error) {
	var repos []provider.Repository

	userRepos, err := b.listUserRepos(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing repositories for %s: %w", b.username, err)
	}
	repos = append(repos, userRepos...)

	for _, org := range b.orgs {
		orgRepos, err := b.listOrgRepos(ctx, org)
		if err != nil {
			// Missing org access shouldn't sink the personal snapshot.
			slog.Warn("failed to list org repositories", "org", org, "error", err)
			continue
		}
		repos = append(repos, orgRepos...)
	}

	for i := range repos {
		b.fillDetails(ctx, &repos[i])
	}

	b.markPinned(ctx, repos)

	// Pinned first, then alphabetical for a stable listing.
	sort.SliceStable(repos, func(i, j int) bool {
		if repos[i].Pinned != repos[j].Pinned {
			return repos[i].Pinned
		}
		return repos[i].Name < repos[j].Name
	})

	return repos, nil
}

func (b *Backend) listUserRepos(ctx context.Context) ([]provider.Repository, error) {
	var out []provider.Repository
	opts := &gh.RepositoryListByUserOptions{
		Type:        "owner",
		Sort:        "updated",
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	for {
		page, resp, err := b.client.Repositories.ListByUser(ctx, b.username, opts)
		if err != nil {
			return nil, err
		}
		for _, r := range page {
			if r.GetFork() || r.GetArchived() {
				continue
			}
			out = append(out, mapRepository(r, false))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

func (b *Backend) listOrgRepos(ctx context.Context, org string) ([]provider.Repository, error) {
	var out []provider.Repository
	opts := &gh.RepositoryListByOrgOptions{
		Type:        "public",
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	for {
		page, resp, err := b.client.Repositories.ListByOrg(ctx, org, opts)
		if err != nil {
			return nil, err
		}
		for _, r := range page {
			if r.GetFork() || r.GetArchived() {
				continue
			}
			out = append(out, mapRepository(r, true))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// fillDetails fetches languages and README for one repository. Failures are
// logged and leave the corresponding field empty.
func (b *Backend) fillDetails(ctx context.Context, repo *provider.Repository) {
	detailCtx, cancel := context.WithTimeout(ctx, detailTimeout)
	defer cancel()

	langs, _, err := b.client.Repositories.ListLanguages(detailCtx, repo.Owner, repo.Name)
	if err != nil {
		slog.Debug("failed to list languages", "repo", repo.Name, "error", err)
	} else {
		repo.Languages = sortLanguages(langs)
	}

	readme, _, err := b.client.Repositories.GetReadme(detailCtx, repo.Owner, repo.Name, nil)
	if err != nil {
		slog.Debug("failed to get readme", "repo", repo.Name, "error", err)
		return
	}
	content, err := readme.GetContent()
	if err != nil {
		slog.Debug("failed to decode readme", "repo", repo.Name, "error", err)
		return
	}
	if len(content) > readmeLimit {
		content = content[:readmeLimit]
	}
	repo.ReadmeContent = content
}

// markPinned flags repositories pinned on the user's profile using the
// GraphQL API; the REST API does not expose pinned items.
func (b *Backend) markPinned(ctx context.Context, repos []provider.Repository) {
	if b.token == "" {
		return // GraphQL requires authentication
	}

	var query struct {
		User struct {
			PinnedItems struct {
				Nodes []struct {
					Repository struct {
						Name githubv4.String
					} `graphql:"... on Repository"`
				}
			} `graphql:"pinnedItems(first: 6, types: REPOSITORY)"`
		} `graphql:"user(login: $login)"`
	}
	vars := map[string]any{
		"login": githubv4.String(b.username),
	}

	gql := b.getGraphQLClient(ctx)
	if err := gql.Query(ctx, &query, vars); err != nil {
		slog.Warn("failed to query pinned repositories", "error", err)
		return
	}

	pinned := make(map[string]bool, len(query.User.PinnedItems.Nodes))
	for _, n := range query.User.PinnedItems.Nodes {
		pinned[string(n.Repository.Name)] = true
	}
	for i := range repos {
		if pinned[repos[i].Name] {
			repos[i].Pinned = true
		}
	}
}

// getGraphQLClient returns (and lazily creates) the GitHub GraphQL client.
// Thread-safe via sync.Once.
func (b *Backend) getGraphQLClient(ctx context.Context) *githubv4.Client {
	b.gqlOnce.Do(func() {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: b.token})
		httpClient := oauth2.NewClient(ctx, ts)
		b.gqlClient = githubv4.NewClient(httpClient)
	})
	return b.gqlClient
}

// mapRepository converts a go-github Repository to a snapshot entry.
func mapRepository(r *gh.Repository, org bool) provider.Repository {
	return provider.Repository{
		ID:                 r.GetID(),
		Name:               r.GetName(),
		Description:        r.GetDescription(),
		HTMLURL:            r.GetHTMLURL(),
		Owner:              r.GetOwner().GetLogin(),
		IsOrganizationRepo: org,
	}
}

// sortLanguages orders the language map by byte count descending.
func sortLanguages(langs map[string]int) []string {
	names := make([]string, 0, len(langs))
	for name := range langs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if langs[names[i]] != langs[names[j]] {
			return langs[names[i]] > langs[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

// Verify Backend implements Source at compile time.
var _ provider.Source = (*Backend)(nil)
