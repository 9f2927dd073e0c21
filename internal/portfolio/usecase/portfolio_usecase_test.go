package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"portfolio-backend/internal/portfolio/domain"
	"portfolio-backend/internal/portfolio/repository"
)

func TestNormalizeLayout(t *testing.T) {
	got, err := NormalizeLayout([]string{"Blog", " projects "})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	want := []string{"blog", "projects", "about", "skills", "github", "snippets"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, err := NormalizeLayout([]string{"about", "about"}); !errors.Is(err, domain.ErrInvalidLayout) {
		t.Errorf("duplicate: expected ErrInvalidLayout, got %v", err)
	}
	if _, err := NormalizeLayout([]string{"guestbook"}); !errors.Is(err, domain.ErrInvalidLayout) {
		t.Errorf("unknown: expected ErrInvalidLayout, got %v", err)
	}

	empty, err := NormalizeLayout(nil)
	if err != nil || !reflect.DeepEqual(empty, domain.DefaultSections) {
		t.Errorf("empty layout should be the default, got %v %v", empty, err)
	}
}

func TestGetPortfolioEmpty(t *testing.T) {
	uc := NewPortfolioUsecase(repository.NewMemoryContentRepository())

	p, err := uc.GetPortfolio(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.About != nil {
		t.Errorf("about should be nil before it is saved")
	}
	if p.Skills == nil || p.Projects == nil || p.Snippets == nil {
		t.Errorf("list sections should be empty slices: %+v", p)
	}
	if !reflect.DeepEqual(p.Layout.Sections, domain.DefaultSections) {
		t.Errorf("unexpected default layout %v", p.Layout.Sections)
	}
}

func TestUpdateSectionsRoundTrip(t *testing.T) {
	uc := NewPortfolioUsecase(repository.NewMemoryContentRepository())
	ctx := context.Background()

	if _, err := uc.UpdateAbout(ctx, domain.About{Name: " Jane ", Headline: "Go developer"}); err != nil {
		t.Fatalf("about: %v", err)
	}
	skills, err := uc.UpdateSkills(ctx, []domain.Skill{{Name: "Go", Level: 90}, {ID: "keep", Name: "Firebase", Level: 70}})
	if err != nil {
		t.Fatalf("skills: %v", err)
	}
	if skills[0].ID == "" || skills[1].ID != "keep" {
		t.Errorf("ids not assigned correctly: %+v", skills)
	}
	if _, err := uc.UpdateProjects(ctx, []domain.Project{{Title: "Bridge"}}); err != nil {
		t.Fatalf("projects: %v", err)
	}
	if _, err := uc.UpdateSnippets(ctx, []domain.Snippet{{Title: "hello", Language: " Go ", Code: "fmt.Println()"}}); err != nil {
		t.Fatalf("snippets: %v", err)
	}
	if _, err := uc.UpdateLayout(ctx, []string{"projects"}); err != nil {
		t.Fatalf("layout: %v", err)
	}

	p, err := uc.GetPortfolio(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.About == nil || p.About.Name != "Jane" {
		t.Errorf("about not saved: %+v", p.About)
	}
	if len(p.Skills) != 2 || len(p.Projects) != 1 || p.Projects[0].TechStack == nil {
		t.Errorf("lists not saved: %+v", p)
	}
	if len(p.Snippets) != 1 || p.Snippets[0].Language != "go" {
		t.Errorf("snippet not normalized: %+v", p.Snippets)
	}
	if p.Layout.Sections[0] != "projects" || len(p.Layout.Sections) != len(domain.DefaultSections) {
		t.Errorf("layout not saved: %v", p.Layout.Sections)
	}
}

func TestUpdateValidation(t *testing.T) {
	uc := NewPortfolioUsecase(repository.NewMemoryContentRepository())
	ctx := context.Background()

	cases := []struct {
		name string
		run  func() error
	}{
		{"about without name", func() error { _, err := uc.UpdateAbout(ctx, domain.About{}); return err }},
		{"social without url", func() error {
			_, err := uc.UpdateAbout(ctx, domain.About{Name: "x", Socials: []domain.SocialLink{{Label: "gh"}}})
			return err
		}},
		{"skill level", func() error { _, err := uc.UpdateSkills(ctx, []domain.Skill{{Name: "Go", Level: 101}}); return err }},
		{"skill name", func() error { _, err := uc.UpdateSkills(ctx, []domain.Skill{{Level: 1}}); return err }},
		{"project title", func() error { _, err := uc.UpdateProjects(ctx, []domain.Project{{}}); return err }},
		{"snippet code", func() error { _, err := uc.UpdateSnippets(ctx, []domain.Snippet{{Title: "t"}}); return err }},
	}
	for _, tc := range cases {
		if err := tc.run(); !errors.Is(err, domain.ErrInvalidContent) {
			t.Errorf("%s: expected ErrInvalidContent, got %v", tc.name, err)
		}
	}

	cleared, err := uc.UpdateSkills(ctx, nil)
	if err != nil || cleared == nil || len(cleared) != 0 {
		t.Errorf("clearing skills should store an empty list, got %v %v", cleared, err)
	}
}

type failingRepo struct{}

func (failingRepo) Get(context.Context, string, any) (bool, error) {
	return false, errors.New("firestore unavailable")
}

func (failingRepo) Set(context.Context, string, any) error { return nil }

func TestGetPortfolioPropagatesErrors(t *testing.T) {
	uc := NewPortfolioUsecase(failingRepo{})
	if _, err := uc.GetPortfolio(context.Background()); err == nil {
		t.Fatal("expected error from repository")
	}
}
