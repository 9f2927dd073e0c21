package delivery

import (
	"errors"
	"net/http"

	"portfolio-backend/internal/portfolio/domain"
	"portfolio-backend/internal/portfolio/usecase"

	"github.com/gin-gonic/gin"
)

type PortfolioHandler struct {
	portfolioUsecase usecase.PortfolioUsecase
}

func NewPortfolioHandler(portfolioUsecase usecase.PortfolioUsecase) *PortfolioHandler {
	return &PortfolioHandler{portfolioUsecase: portfolioUsecase}
}

// GetPortfolio returns every section of the landing page
// GET /api/portfolio
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	p, err := h.portfolioUsecase.GetPortfolio(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

// PUT /api/admin/portfolio/about
func (h *PortfolioHandler) UpdateAbout(c *gin.Context) {
	var req domain.About
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	about, err := h.portfolioUsecase.UpdateAbout(c.Request.Context(), req)
	respond(c, about, err)
}

type skillsRequest struct {
	Items []domain.Skill `json:"items"`
}

type projectsRequest struct {
	Items []domain.Project `json:"items"`
}

type snippetsRequest struct {
	Items []domain.Snippet `json:"items"`
}

// PUT /api/admin/portfolio/skills
func (h *PortfolioHandler) UpdateSkills(c *gin.Context) {
	var req skillsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	items, err := h.portfolioUsecase.UpdateSkills(c.Request.Context(), req.Items)
	respond(c, gin.H{"items": items}, err)
}

// PUT /api/admin/portfolio/projects
func (h *PortfolioHandler) UpdateProjects(c *gin.Context) {
	var req projectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	items, err := h.portfolioUsecase.UpdateProjects(c.Request.Context(), req.Items)
	respond(c, gin.H{"items": items}, err)
}

// PUT /api/admin/portfolio/snippets
func (h *PortfolioHandler) UpdateSnippets(c *gin.Context) {
	var req snippetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	items, err := h.portfolioUsecase.UpdateSnippets(c.Request.Context(), req.Items)
	respond(c, gin.H{"items": items}, err)
}

// PUT /api/admin/portfolio/layout
func (h *PortfolioHandler) UpdateLayout(c *gin.Context) {
	var req domain.Layout
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	layout, err := h.portfolioUsecase.UpdateLayout(c.Request.Context(), req.Sections)
	respond(c, layout, err)
}

func respond(c *gin.Context, body any, err error) {
	if err != nil {
		if errors.Is(err, domain.ErrInvalidContent) || errors.Is(err, domain.ErrInvalidLayout) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, body)
}
