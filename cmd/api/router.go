package api

import (
	"net/http"

	"portfolio-backend/internal/auth/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *Handler) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "auth": h.authUsecase != nil})
		})

		// Native shells open their bridge socket here
		api.GET("/mobile/bridge", h.mobileHandler.Connect)

		// Public content. A master token unlocks drafts and hidden repos.
		public := api.Group("")
		if h.authUsecase != nil {
			public.Use(delivery.OptionalAuthMiddleware(h.authUsecase))
		}
		{
			public.GET("/portfolio", h.portfolioHandler.GetPortfolio)
			public.GET("/blog/posts", h.blogHandler.ListPosts)
			public.GET("/blog/posts/:slug", h.blogHandler.GetPost)
			public.GET("/blog/categories", h.blogHandler.ListCategories)
			public.GET("/github/repos", h.githubHandler.ListRepos)
		}

		if h.authUsecase == nil {
			return
		}
		authHandler := delivery.NewAuthHandler(h.authUsecase)
		requireAuth := delivery.AuthMiddleware(h.authUsecase)

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/session", authHandler.CreateSession)
			auth.GET("/me", requireAuth, authHandler.Me)
		}

		// FCM routes (protected)
		fcm := api.Group("/fcm")
		fcm.Use(requireAuth)
		{
			fcm.POST("/register", authHandler.RegisterFCMToken)
			fcm.DELETE("/:token", authHandler.UnregisterFCMToken)
		}

		// Master-only routes
		admin := api.Group("/admin")
		admin.Use(requireAuth, delivery.MasterMiddleware())
		{
			admin.GET("/blog/posts", h.blogHandler.ListAllPosts)
			admin.POST("/blog/posts", h.blogHandler.CreatePost)
			admin.PATCH("/blog/posts/:id", h.blogHandler.UpdatePost)
			admin.DELETE("/blog/posts/:id", h.blogHandler.DeletePost)
			admin.POST("/blog/images", h.blogHandler.UploadImage)

			admin.PUT("/portfolio/about", h.portfolioHandler.UpdateAbout)
			admin.PUT("/portfolio/skills", h.portfolioHandler.UpdateSkills)
			admin.PUT("/portfolio/projects", h.portfolioHandler.UpdateProjects)
			admin.PUT("/portfolio/snippets", h.portfolioHandler.UpdateSnippets)
			admin.PUT("/portfolio/layout", h.portfolioHandler.UpdateLayout)

			admin.POST("/github/sync", h.githubHandler.Sync)
			admin.PATCH("/github/repos/:name", h.githubHandler.SetFlags)
		}

		// Mobile session control (master only)
		sessions := api.Group("/mobile/sessions")
		sessions.Use(requireAuth, delivery.MasterMiddleware())
		{
			sessions.GET("", h.mobileHandler.ListSessions)
			sessions.GET("/:id", h.mobileHandler.GetSession)
			sessions.POST("/:id/login", h.mobileHandler.Login)
			sessions.POST("/:id/status", h.mobileHandler.Status)
			sessions.POST("/:id/logout", h.mobileHandler.Logout)
			sessions.POST("/:id/fcm-token", h.mobileHandler.StoreFCMToken)
			sessions.POST("/:id/user-data", h.mobileHandler.SendUserData)
			sessions.POST("/:id/dispatch", h.mobileHandler.Dispatch)
		}
	}
}
