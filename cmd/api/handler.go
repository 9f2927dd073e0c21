package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"slices"
	"strings"
	"time"

	authUsecase "portfolio-backend/internal/auth/usecase"
	blogDelivery "portfolio-backend/internal/blog/delivery"
	blogUsecase "portfolio-backend/internal/blog/usecase"
	githubDelivery "portfolio-backend/internal/github/delivery"
	githubUsecase "portfolio-backend/internal/github/usecase"
	mobileDelivery "portfolio-backend/internal/mobile/delivery"
	"portfolio-backend/internal/mobile/hub"
	mobileUsecase "portfolio-backend/internal/mobile/usecase"
	portfolioDelivery "portfolio-backend/internal/portfolio/delivery"
	portfolioUsecase "portfolio-backend/internal/portfolio/usecase"
	"portfolio-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

// Dependencies are the usecases the HTTP layer serves. A nil AuthUsecase
// disables sign-in and every master-only route.
type Dependencies struct {
	Config           *config.Config
	AuthUsecase      authUsecase.AuthUsecase
	BlogUsecase      blogUsecase.BlogUsecase
	PortfolioUsecase portfolioUsecase.PortfolioUsecase
	GitHubUsecase    githubUsecase.GitHubUsecase
	MobileUsecase    mobileUsecase.MobileUsecase
	RateLimiter      *hub.RateLimiter
}

type Handler struct {
	authUsecase      authUsecase.AuthUsecase
	blogHandler      *blogDelivery.BlogHandler
	portfolioHandler *portfolioDelivery.PortfolioHandler
	githubHandler    *githubDelivery.GitHubHandler
	mobileHandler    *mobileDelivery.MobileHandler
	config           *config.Config
	server           *http.Server
}

func NewHandler(deps Dependencies) *Handler {
	if deps.AuthUsecase == nil {
		log.Println("Warning: auth is not configured. Sign-in and admin routes are disabled.")
	}

	allowed := allowedOrigins(deps.Config.CORSOrigin)
	var checkOrigin func(r *http.Request) bool
	if len(allowed) > 0 {
		checkOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// native shells connect without an Origin header
			return origin == "" || slices.Contains(allowed, origin)
		}
	}

	return &Handler{
		authUsecase:      deps.AuthUsecase,
		blogHandler:      blogDelivery.NewBlogHandler(deps.BlogUsecase),
		portfolioHandler: portfolioDelivery.NewPortfolioHandler(deps.PortfolioUsecase),
		githubHandler:    githubDelivery.NewGitHubHandler(deps.GitHubUsecase),
		mobileHandler:    mobileDelivery.NewMobileHandler(deps.MobileUsecase, deps.RateLimiter, checkOrigin),
		config:           deps.Config,
	}
}

// Router builds the gin engine with CORS and every route.
func (h *Handler) Router() *gin.Engine {
	r := gin.Default()
	r.Use(corsMiddleware(allowedOrigins(h.config.CORSOrigin)))

	SetupRoutes(r, h)
	return r
}

func (h *Handler) Start(addr string) error {
	gin.SetMode(gin.ReleaseMode)
	h.server = &http.Server{
		Addr:              addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	err := h.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and waits for in-flight ones.
// Hijacked bridge sockets are closed by the mobile usecase.
func (h *Handler) Shutdown(ctx context.Context) error {
	if h.server == nil {
		return nil
	}
	return h.server.Shutdown(ctx)
}

func allowedOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// corsMiddleware echoes the request origin when it is allowed. With no
// configured origins every origin is allowed.
func corsMiddleware(allowed []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		switch {
		case origin == "":
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case len(allowed) == 0 || slices.Contains(allowed, origin):
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Add("Vary", "Origin")
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
