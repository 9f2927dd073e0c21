package usecase

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"portfolio-backend/internal/github/domain"
	"portfolio-backend/internal/github/repository"
	"portfolio-backend/pkg/github"
)

// RepoFetcher lists a user's repositories from GitHub
type RepoFetcher interface {
	ListUserRepos(ctx context.Context, user string) ([]github.Repository, error)
}

// GitHubUsecase defines the interface for the repo cache
type GitHubUsecase interface {
	// Sync refreshes the cache from GitHub and returns the number of repos kept
	Sync(ctx context.Context) (int, error)

	// List returns pinned repos first, then the most recently pushed
	List(ctx context.Context, includeHidden bool) ([]*domain.Repo, error)

	SetFlags(ctx context.Context, name string, flags domain.Flags) (*domain.Repo, error)
}

type githubUsecase struct {
	repo     repository.RepoRepository
	fetcher  RepoFetcher
	username string
	now      func() time.Time
}

func NewGitHubUsecase(repo repository.RepoRepository, fetcher RepoFetcher, username string) GitHubUsecase {
	return &githubUsecase{
		repo:     repo,
		fetcher:  fetcher,
		username: username,
		now:      time.Now,
	}
}

func (u *githubUsecase) Sync(ctx context.Context) (int, error) {
	if u.username == "" {
		return 0, fmt.Errorf("GITHUB_USERNAME is not configured")
	}

	remote, err := u.fetcher.ListUserRepos(ctx, u.username)
	if err != nil {
		return 0, err
	}

	syncedAt := u.now()
	keep := make(map[string]bool, len(remote))
	repos := make([]*domain.Repo, 0, len(remote))
	for _, r := range remote {
		if r.Fork {
			continue
		}
		keep[r.Name] = true
		repos = append(repos, fromGitHub(r, syncedAt))
	}

	if err := u.repo.SaveSynced(ctx, repos); err != nil {
		return 0, err
	}

	cached, err := u.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	var stale []string
	for _, c := range cached {
		if !keep[c.Name] {
			stale = append(stale, c.Name)
		}
	}
	if err := u.repo.Delete(ctx, stale); err != nil {
		return 0, err
	}

	log.Printf("[GitHub] Synced %d repos for %s (%d removed)", len(repos), u.username, len(stale))
	return len(repos), nil
}

func fromGitHub(r github.Repository, syncedAt time.Time) *domain.Repo {
	topics := r.Topics
	if topics == nil {
		topics = []string{}
	}
	return &domain.Repo{
		Name:        r.Name,
		FullName:    r.FullName,
		Description: r.Description,
		URL:         r.HTMLURL,
		Homepage:    r.Homepage,
		Language:    r.Language,
		Topics:      topics,
		Stars:       r.Stars,
		Forks:       r.Forks,
		Archived:    r.Archived,
		PushedAt:    r.PushedAt,
		SyncedAt:    syncedAt,
	}
}

func (u *githubUsecase) List(ctx context.Context, includeHidden bool) ([]*domain.Repo, error) {
	cached, err := u.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	repos := make([]*domain.Repo, 0, len(cached))
	for _, r := range cached {
		if r.Hidden && !includeHidden {
			continue
		}
		repos = append(repos, r)
	}
	sort.SliceStable(repos, func(i, j int) bool {
		if repos[i].Pinned != repos[j].Pinned {
			return repos[i].Pinned
		}
		if !repos[i].PushedAt.Equal(repos[j].PushedAt) {
			return repos[i].PushedAt.After(repos[j].PushedAt)
		}
		return repos[i].Name < repos[j].Name
	})
	return repos, nil
}

func (u *githubUsecase) SetFlags(ctx context.Context, name string, flags domain.Flags) (*domain.Repo, error) {
	if err := u.repo.SetFlags(ctx, name, flags); err != nil {
		return nil, err
	}
	repo, err := u.repo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if repo == nil {
		return nil, domain.ErrRepoNotFound
	}
	return repo, nil
}
