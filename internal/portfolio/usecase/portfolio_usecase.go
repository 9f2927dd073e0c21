package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"portfolio-backend/internal/portfolio/domain"
	"portfolio-backend/internal/portfolio/repository"
)

// PortfolioUsecase defines the interface for portfolio content
type PortfolioUsecase interface {
	// GetPortfolio loads every section concurrently
	GetPortfolio(ctx context.Context) (*domain.Portfolio, error)

	UpdateAbout(ctx context.Context, about domain.About) (*domain.About, error)
	UpdateSkills(ctx context.Context, skills []domain.Skill) ([]domain.Skill, error)
	UpdateProjects(ctx context.Context, projects []domain.Project) ([]domain.Project, error)
	UpdateSnippets(ctx context.Context, snippets []domain.Snippet) ([]domain.Snippet, error)

	// UpdateLayout validates and saves the section order
	UpdateLayout(ctx context.Context, sections []string) (*domain.Layout, error)
}

type portfolioUsecase struct {
	repo repository.ContentRepository
}

func NewPortfolioUsecase(repo repository.ContentRepository) PortfolioUsecase {
	return &portfolioUsecase{repo: repo}
}

func (u *portfolioUsecase) GetPortfolio(ctx context.Context) (*domain.Portfolio, error) {
	var (
		about    domain.About
		hasAbout bool
		layout   domain.Layout
		result   domain.Portfolio
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		hasAbout, err = u.repo.Get(gctx, repository.DocAbout, &about)
		return err
	})
	g.Go(func() error {
		var err error
		result.Skills, err = repository.GetList[domain.Skill](gctx, u.repo, repository.DocSkills)
		return err
	})
	g.Go(func() error {
		var err error
		result.Projects, err = repository.GetList[domain.Project](gctx, u.repo, repository.DocProjects)
		return err
	})
	g.Go(func() error {
		var err error
		result.Snippets, err = repository.GetList[domain.Snippet](gctx, u.repo, repository.DocSnippets)
		return err
	})
	g.Go(func() error {
		_, err := u.repo.Get(gctx, repository.DocLayout, &layout)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if hasAbout {
		result.About = &about
	}
	// A stored layout may predate newer sections
	sections, err := NormalizeLayout(layout.Sections)
	if err != nil {
		log.Printf("[Portfolio] Stored layout is invalid, using default: %v", err)
		sections = append([]string(nil), domain.DefaultSections...)
	}
	result.Layout = domain.Layout{Sections: sections}
	return &result, nil
}

func (u *portfolioUsecase) UpdateAbout(ctx context.Context, about domain.About) (*domain.About, error) {
	about.Name = strings.TrimSpace(about.Name)
	if about.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidContent)
	}
	socials := make([]domain.SocialLink, 0, len(about.Socials))
	for _, s := range about.Socials {
		if strings.TrimSpace(s.URL) == "" {
			return nil, fmt.Errorf("%w: social link %q has no url", domain.ErrInvalidContent, s.Label)
		}
		socials = append(socials, s)
	}
	about.Socials = socials

	if err := u.repo.Set(ctx, repository.DocAbout, about); err != nil {
		return nil, err
	}
	return &about, nil
}

func (u *portfolioUsecase) UpdateSkills(ctx context.Context, skills []domain.Skill) ([]domain.Skill, error) {
	for i := range skills {
		s := &skills[i]
		s.Name = strings.TrimSpace(s.Name)
		if s.Name == "" {
			return nil, fmt.Errorf("%w: skill %d has no name", domain.ErrInvalidContent, i)
		}
		if s.Level < 0 || s.Level > 100 {
			return nil, fmt.Errorf("%w: skill %q level must be between 0 and 100", domain.ErrInvalidContent, s.Name)
		}
		s.ID = ensureID(s.ID)
	}
	return saveList(ctx, u.repo, repository.DocSkills, skills)
}

func (u *portfolioUsecase) UpdateProjects(ctx context.Context, projects []domain.Project) ([]domain.Project, error) {
	for i := range projects {
		p := &projects[i]
		p.Title = strings.TrimSpace(p.Title)
		if p.Title == "" {
			return nil, fmt.Errorf("%w: project %d has no title", domain.ErrInvalidContent, i)
		}
		if p.TechStack == nil {
			p.TechStack = []string{}
		}
		p.ID = ensureID(p.ID)
	}
	return saveList(ctx, u.repo, repository.DocProjects, projects)
}

func (u *portfolioUsecase) UpdateSnippets(ctx context.Context, snippets []domain.Snippet) ([]domain.Snippet, error) {
	for i := range snippets {
		s := &snippets[i]
		s.Title = strings.TrimSpace(s.Title)
		if s.Title == "" || strings.TrimSpace(s.Code) == "" {
			return nil, fmt.Errorf("%w: snippet %d needs a title and code", domain.ErrInvalidContent, i)
		}
		s.Language = strings.ToLower(strings.TrimSpace(s.Language))
		s.ID = ensureID(s.ID)
	}
	return saveList(ctx, u.repo, repository.DocSnippets, snippets)
}

func (u *portfolioUsecase) UpdateLayout(ctx context.Context, sections []string) (*domain.Layout, error) {
	normalized, err := NormalizeLayout(sections)
	if err != nil {
		return nil, err
	}
	layout := domain.Layout{Sections: normalized}
	if err := u.repo.Set(ctx, repository.DocLayout, layout); err != nil {
		return nil, err
	}
	log.Printf("[Portfolio] Layout updated: %s", strings.Join(normalized, ","))
	return &layout, nil
}

// NormalizeLayout rejects unknown or repeated section ids and appends any
// missing sections in their default order.
func NormalizeLayout(sections []string) ([]string, error) {
	seen := make(map[string]bool, len(domain.DefaultSections))
	out := make([]string, 0, len(domain.DefaultSections))
	for _, id := range sections {
		id = strings.ToLower(strings.TrimSpace(id))
		if !domain.IsSection(id) {
			return nil, fmt.Errorf("%w: unknown section %q", domain.ErrInvalidLayout, id)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate section %q", domain.ErrInvalidLayout, id)
		}
		seen[id] = true
		out = append(out, id)
	}
	for _, id := range domain.DefaultSections {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

func saveList[T any](ctx context.Context, repo repository.ContentRepository, doc string, items []T) ([]T, error) {
	if items == nil {
		items = []T{}
	}
	if err := repository.SetList(ctx, repo, doc, items); err != nil {
		return nil, err
	}
	return items, nil
}

func ensureID(id string) string {
	if strings.TrimSpace(id) == "" {
		return uuid.New().String()
	}
	return id
}
