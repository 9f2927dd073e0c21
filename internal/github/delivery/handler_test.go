package delivery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"portfolio-backend/internal/github/repository"
	"portfolio-backend/internal/github/usecase"
	"portfolio-backend/pkg/github"

	"github.com/gin-gonic/gin"
)

type fetcher []github.Repository

func (f fetcher) ListUserRepos(ctx context.Context, user string) ([]github.Repository, error) {
	return f, nil
}

func TestGitHubEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	uc := usecase.NewGitHubUsecase(repository.NewMemoryRepoRepository(), fetcher{{Name: "bridge"}, {Name: "site"}}, "jane")
	h := NewGitHubHandler(uc)

	r := gin.New()
	r.GET("/repos", h.ListRepos)
	r.POST("/sync", h.Sync)
	r.PATCH("/repos/:name", h.SetFlags)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/sync", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"synced":2`) {
		t.Fatalf("sync: %d %s", w.Code, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodPatch, "/repos/site", strings.NewReader(`{"hidden":true}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"hidden":true`) {
		t.Fatalf("hide: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/repos", nil))
	if strings.Contains(w.Body.String(), `"site"`) || !strings.Contains(w.Body.String(), `"bridge"`) {
		t.Errorf("hidden repo listed publicly: %s", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodPatch, "/repos/nope", strings.NewReader(`{"pinned":true}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing repo: expected 404, got %d", w.Code)
	}
}
