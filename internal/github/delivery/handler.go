package delivery

import (
	"errors"
	"net/http"

	authdelivery "portfolio-backend/internal/auth/delivery"
	"portfolio-backend/internal/github/domain"
	"portfolio-backend/internal/github/usecase"

	"github.com/gin-gonic/gin"
)

type GitHubHandler struct {
	githubUsecase usecase.GitHubUsecase
}

func NewGitHubHandler(githubUsecase usecase.GitHubUsecase) *GitHubHandler {
	return &GitHubHandler{githubUsecase: githubUsecase}
}

// ListRepos returns the cached repositories. Hidden repos are only listed for the master.
// GET /api/github/repos
func (h *GitHubHandler) ListRepos(c *gin.Context) {
	repos, err := h.githubUsecase.List(c.Request.Context(), authdelivery.IsMasterRequest(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"repos": repos})
}

// Sync refreshes the cache now
// POST /api/admin/github/sync
func (h *GitHubHandler) Sync(c *gin.Context) {
	n, err := h.githubUsecase.Sync(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"synced": n})
}

// SetFlags pins or hides a repo
// PATCH /api/admin/github/repos/:name
func (h *GitHubHandler) SetFlags(c *gin.Context) {
	var req domain.Flags
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	repo, err := h.githubUsecase.SetFlags(c.Request.Context(), c.Param("name"), req)
	if err != nil {
		if errors.Is(err, domain.ErrRepoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, repo)
}
