package delivery

import (
	"errors"
	"net/http"
	"strconv"

	authdelivery "portfolio-backend/internal/auth/delivery"
	"portfolio-backend/internal/blog/domain"
	"portfolio-backend/internal/blog/usecase"

	"github.com/gin-gonic/gin"
)

// MaxImageSize caps blog image uploads
const MaxImageSize = 10 << 20

type BlogHandler struct {
	blogUsecase usecase.BlogUsecase
}

func NewBlogHandler(blogUsecase usecase.BlogUsecase) *BlogHandler {
	return &BlogHandler{blogUsecase: blogUsecase}
}

// ListPosts returns published posts, ranked by relevance when q is set
// GET /api/blog/posts?category=&q=&page=&limit=
func (h *BlogHandler) ListPosts(c *gin.Context) {
	page, limit := pagingParams(c)

	var (
		result *domain.PostPage
		err    error
	)
	if q := c.Query("q"); q != "" {
		result, err = h.blogUsecase.Search(c.Request.Context(), q, page, limit)
	} else {
		result, err = h.blogUsecase.ListPublished(c.Request.Context(), c.Query("category"), page, limit)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetPost returns a single post. The master account can preview drafts.
// GET /api/blog/posts/:slug
func (h *BlogHandler) GetPost(c *gin.Context) {
	post, err := h.blogUsecase.GetBySlug(c.Request.Context(), c.Param("slug"), authdelivery.IsMasterRequest(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// GET /api/blog/categories
func (h *BlogHandler) ListCategories(c *gin.Context) {
	categories, err := h.blogUsecase.Categories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// ListAllPosts includes drafts
// GET /api/admin/blog/posts
func (h *BlogHandler) ListAllPosts(c *gin.Context) {
	page, limit := pagingParams(c)
	result, err := h.blogUsecase.ListAll(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// POST /api/admin/blog/posts
func (h *BlogHandler) CreatePost(c *gin.Context) {
	var req usecase.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.blogUsecase.CreatePost(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// PATCH /api/admin/blog/posts/:id
func (h *BlogHandler) UpdatePost(c *gin.Context) {
	var req usecase.PostUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.blogUsecase.UpdatePost(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DELETE /api/admin/blog/posts/:id
func (h *BlogHandler) DeletePost(c *gin.Context) {
	if err := h.blogUsecase.DeletePost(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

// UploadImage accepts a multipart "image" field
// POST /api/admin/blog/images
func (h *BlogHandler) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxImageSize+1<<20)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	if fileHeader.Size > MaxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds 10MB"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	url, err := h.blogUsecase.UploadImage(c.Request.Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

func pagingParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	return page, limit
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrPostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrSlugTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidPost), errors.Is(err, domain.ErrInvalidImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
