package github

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v69/github"
	"golang.org/x/oauth2"
)

const (
	perPage = 100
	// maxPages bounds pagination for accounts with very many repositories.
	maxPages = 10
)

// Repository is the subset of the GitHub repository resource the portfolio shows.
type Repository struct {
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	Description string    `json:"description"`
	HTMLURL     string    `json:"html_url"`
	Homepage    string    `json:"homepage"`
	Language    string    `json:"language"`
	Topics      []string  `json:"topics"`
	Stars       int       `json:"stargazers_count"`
	Forks       int       `json:"forks_count"`
	Fork        bool      `json:"fork"`
	Archived    bool      `json:"archived"`
	PushedAt    time.Time `json:"pushed_at"`
}

// Client talks to the GitHub REST API.
type Client struct {
	api *gh.Client
}

// Option customizes a Client.
type Option func(*Client) error

// WithBaseURL points the client at another API root (GitHub Enterprise, tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
		if err != nil {
			return fmt.Errorf("invalid GitHub base URL: %w", err)
		}
		c.api.BaseURL = u
		return nil
	}
}

// NewClient creates a client. A non-empty token authenticates requests,
// which raises the rate limit. An invalid option is logged and skipped.
func NewClient(ctx context.Context, token string, opts ...Option) *Client {
	httpClient := &http.Client{Timeout: 15 * time.Second}
	if token != "" {
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
		httpClient.Timeout = 15 * time.Second
	}

	c := &Client{api: gh.NewClient(httpClient)}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			log.Printf("[GitHub] %v", err)
		}
	}
	return c
}

// ListUserRepos returns the public repositories owned by user, following pagination.
func (c *Client) ListUserRepos(ctx context.Context, user string) ([]Repository, error) {
	opts := &gh.RepositoryListByUserOptions{
		Type:        "owner",
		Sort:        "pushed",
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	var all []Repository
	for page := 0; page < maxPages; page++ {
		repos, resp, err := c.api.Repositories.ListByUser(ctx, user, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list GitHub repos: %w", err)
		}
		for _, r := range repos {
			all = append(all, fromAPI(r))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

func fromAPI(r *gh.Repository) Repository {
	return Repository{
		Name:        r.GetName(),
		FullName:    r.GetFullName(),
		Description: r.GetDescription(),
		HTMLURL:     r.GetHTMLURL(),
		Homepage:    r.GetHomepage(),
		Language:    r.GetLanguage(),
		Topics:      r.Topics,
		Stars:       r.GetStargazersCount(),
		Forks:       r.GetForksCount(),
		Fork:        r.GetFork(),
		Archived:    r.GetArchived(),
		PushedAt:    r.GetPushedAt().Time,
	}
}
