package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "portfolio-backend/cmd/api"
	authRepo "portfolio-backend/internal/auth/repository"
	authUsecase "portfolio-backend/internal/auth/usecase"
	blogRepo "portfolio-backend/internal/blog/repository"
	blogUsecase "portfolio-backend/internal/blog/usecase"
	githubRepo "portfolio-backend/internal/github/repository"
	githubScheduler "portfolio-backend/internal/github/scheduler"
	githubUsecase "portfolio-backend/internal/github/usecase"
	"portfolio-backend/internal/mobile/hub"
	mobileRepo "portfolio-backend/internal/mobile/repository"
	mobileUsecase "portfolio-backend/internal/mobile/usecase"
	"portfolio-backend/internal/notification"
	portfolioRepo "portfolio-backend/internal/portfolio/repository"
	portfolioUsecase "portfolio-backend/internal/portfolio/usecase"
	"portfolio-backend/pkg/config"
	"portfolio-backend/pkg/fcm"
	"portfolio-backend/pkg/firebase"
	"portfolio-backend/pkg/gcs"
	"portfolio-backend/pkg/github"
)

func main() {
	// Load configuration
	cfg := config.Load()
	ctx := context.Background()

	// Initialize Firebase. Without it the site runs read-only from memory.
	var clients *firebase.Clients
	if cfg.FirebaseProjectID != "" || cfg.FirebaseCredentials != "" {
		var err error
		clients, err = firebase.NewClients(ctx, cfg)
		if err != nil {
			log.Printf("[WARN] Firebase unavailable, falling back to in-memory storage: %v", err)
			clients = nil
		}
	} else {
		log.Println("[WARN] FIREBASE_PROJECT_ID not set, using in-memory storage")
	}

	// Initialize repositories (dependency injection)
	var (
		postRepository    blogRepo.PostRepository
		contentRepository portfolioRepo.ContentRepository
		repoRepository    githubRepo.RepoRepository
		storeFactory      mobileRepo.StoreFactory
	)
	if clients != nil {
		postRepository = blogRepo.NewFirestorePostRepository(clients.Firestore)
		contentRepository = portfolioRepo.NewFirestoreContentRepository(clients.Firestore)
		repoRepository = githubRepo.NewFirestoreRepoRepository(clients.Firestore)
		storeFactory = mobileRepo.NewFirestoreStoreFactory(clients.Firestore)
	} else {
		postRepository = blogRepo.NewMemoryPostRepository()
		contentRepository = portfolioRepo.NewMemoryContentRepository()
		repoRepository = githubRepo.NewMemoryRepoRepository()
		storeFactory = mobileRepo.NewMemoryStoreFactory()
	}

	// Auth, push notifications and image uploads need Firebase
	var (
		authUc      authUsecase.AuthUsecase
		notifier    *notification.Service
		publishHook blogUsecase.PublishNotifier
		images      blogUsecase.ImageStore
	)
	if clients != nil {
		userRepository := authRepo.NewUserRepository(clients.Firestore)
		fcmTokenRepository := authRepo.NewFCMTokenRepository(clients.Firestore)
		authUc = authUsecase.NewAuthUsecase(clients.Auth, userRepository, fcmTokenRepository, cfg)

		fcmClient, err := fcm.NewClient(ctx, clients.App)
		if err != nil {
			log.Printf("[WARN] Failed to initialize FCM client (push notifications disabled): %v", err)
		} else {
			notifier = notification.NewService(fcmTokenRepository, fcmClient, cfg.SiteURL)
			publishHook = notifier
		}

		if uploader, err := newUploader(ctx, clients, cfg); err != nil {
			log.Printf("[WARN] Image uploads disabled: %v", err)
		} else {
			images = uploader
		}
	}

	// Initialize usecases
	blogUc := blogUsecase.NewBlogUsecase(postRepository, publishHook, images)
	portfolioUc := portfolioUsecase.NewPortfolioUsecase(contentRepository)

	githubClient := github.NewClient(ctx, cfg.GitHubToken)
	githubUc := githubUsecase.NewGitHubUsecase(repoRepository, githubClient, cfg.GitHubUsername)

	syncScheduler := githubScheduler.NewSyncScheduler(githubUc, cfg.GitHubSyncInterval)
	if cfg.GitHubUsername != "" {
		syncScheduler.Start()
	}

	sessionHub := hub.NewHub()
	mobileUc := mobileUsecase.NewMobileUsecase(sessionHub, authUc, hub.SessionConfig{
		Stores:      storeFactory,
		AuthTimeout: cfg.BridgeAuthTimeout,
	})
	limiter := hub.NewRateLimiter(cfg.MobileRateLimitRPM, 5)

	// Initialize handlers
	handler := api.NewHandler(api.Dependencies{
		Config:           cfg,
		AuthUsecase:      authUc,
		BlogUsecase:      blogUc,
		PortfolioUsecase: portfolioUc,
		GitHubUsecase:    githubUc,
		MobileUsecase:    mobileUc,
		RateLimiter:      limiter,
	})

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := handler.Start(":" + cfg.Port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	syncScheduler.Stop()
	mobileUc.Shutdown()
	limiter.Stop()
	if err := handler.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if notifier != nil {
		notifier.Wait()
	}
	clients.Close()

	log.Println("Server exited")
}

// newUploader resolves the configured bucket, or the project's default bucket.
func newUploader(ctx context.Context, clients *firebase.Clients, cfg *config.Config) (*gcs.Uploader, error) {
	storageClient, err := clients.App.Storage(ctx)
	if err != nil {
		return nil, err
	}

	if cfg.StorageBucket == "" {
		bucket, err := storageClient.DefaultBucket()
		if err != nil {
			return nil, err
		}
		return gcs.NewUploader(bucket, bucket.BucketName()), nil
	}

	bucket, err := storageClient.Bucket(cfg.StorageBucket)
	if err != nil {
		return nil, err
	}
	return gcs.NewUploader(bucket, cfg.StorageBucket), nil
}
