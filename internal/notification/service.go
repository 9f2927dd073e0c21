package notification

import (
	"context"
	"log"
	"sync"
	"time"

	authrepo "portfolio-backend/internal/auth/repository"
	blogdomain "portfolio-backend/internal/blog/domain"
	"portfolio-backend/pkg/fcm"
)

const sendTimeout = 30 * time.Second

// Pusher delivers a notification to many devices and returns the tokens that failed
type Pusher interface {
	SendToDevices(ctx context.Context, tokens []string, notification fcm.NotificationData) ([]fcm.Failure, error)
}

// Service pushes blog announcements to every registered device
type Service struct {
	fcmRepo authrepo.FCMTokenRepository
	pusher  Pusher
	siteURL string
	wg      sync.WaitGroup
}

func NewService(fcmRepo authrepo.FCMTokenRepository, pusher Pusher, siteURL string) *Service {
	return &Service{
		fcmRepo: fcmRepo,
		pusher:  pusher,
		siteURL: siteURL,
	}
}

// PostPublished announces a newly published post. Delivery happens in the
// background and never fails the caller.
func (s *Service) PostPublished(ctx context.Context, post *blogdomain.Post) {
	if s.pusher == nil || s.fcmRepo == nil {
		log.Printf("[FCM] FCM client or repo not available (client=%v, repo=%v)", s.pusher != nil, s.fcmRepo != nil)
		return
	}

	notification := fcm.NotificationData{
		Title:    post.Title,
		Body:     post.Excerpt,
		ImageURL: post.CoverImage,
		Data: map[string]string{
			"type":     "blog_post",
			"post_id":  post.ID,
			"slug":     post.Slug,
			"category": post.Category,
		},
		ClickAction: s.siteURL + "/blog/" + post.Slug,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		s.broadcast(ctx, notification)
	}()
}

func (s *Service) broadcast(ctx context.Context, notification fcm.NotificationData) {
	tokens, err := s.fcmRepo.GetAllTokens(ctx)
	if err != nil {
		log.Printf("[FCM] Error getting FCM tokens: %v", err)
		return
	}
	if len(tokens) == 0 {
		log.Printf("[FCM] No registered devices, skipping push notification")
		return
	}

	tokenStrings := make([]string, 0, len(tokens))
	for _, t := range tokens {
		tokenStrings = append(tokenStrings, t.Token)
	}

	failures, err := s.pusher.SendToDevices(ctx, tokenStrings, notification)
	if err != nil {
		log.Printf("[FCM] Error sending notifications: %v", err)
	} else {
		log.Printf("[FCM] Announced %q to %d devices", notification.Title, len(tokenStrings)-len(failures))
	}

	// Only stale tokens are removed; transient failures keep their registration
	var stale []string
	for _, f := range failures {
		if f.Stale {
			stale = append(stale, f.Token)
		}
	}
	if len(stale) == 0 {
		return
	}
	log.Printf("[FCM] Cleaning up %d stale tokens (%d transient failures kept)", len(stale), len(failures)-len(stale))
	for _, token := range stale {
		if err := s.fcmRepo.DeleteToken(ctx, token); err != nil {
			log.Printf("[FCM] Failed to delete token %s: %v", fcm.Redact(token), err)
		}
	}
}

// Wait blocks until in-flight announcements finish
func (s *Service) Wait() {
	s.wg.Wait()
}
