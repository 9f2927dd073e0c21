package notification

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	authdomain "portfolio-backend/internal/auth/domain"
	blogdomain "portfolio-backend/internal/blog/domain"
	"portfolio-backend/pkg/fcm"
)

type tokenRepo struct {
	mu      sync.Mutex
	tokens  []string
	deleted []string
	listErr error
}

func (r *tokenRepo) SaveToken(context.Context, *authdomain.FCMToken) error { return nil }

func (r *tokenRepo) FindToken(context.Context, string) (*authdomain.FCMToken, error) {
	return nil, nil
}

func (r *tokenRepo) GetTokensByUserID(context.Context, string) ([]authdomain.FCMToken, error) {
	return nil, nil
}

func (r *tokenRepo) GetAllTokens(context.Context) ([]authdomain.FCMToken, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]authdomain.FCMToken, 0, len(r.tokens))
	for _, t := range r.tokens {
		out = append(out, authdomain.FCMToken{Token: t})
	}
	return out, nil
}

func (r *tokenRepo) DeleteToken(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, token)
	return nil
}

type fakePusher struct {
	mu     sync.Mutex
	sent   [][]string
	last   fcm.NotificationData
	failed []fcm.Failure
	err    error
}

func (p *fakePusher) SendToDevices(_ context.Context, tokens []string, n fcm.NotificationData) ([]fcm.Failure, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, tokens)
	p.last = n
	return p.failed, p.err
}

func TestPostPublishedBroadcastsAndCleansUp(t *testing.T) {
	repo := &tokenRepo{tokens: []string{"a", "b", "c", "d"}}
	pusher := &fakePusher{failed: []fcm.Failure{
		{Token: "b", Err: errors.New("unregistered"), Stale: true},
		{Token: "c", Err: errors.New("invalid registration"), Stale: true},
		{Token: "d", Err: errors.New("unavailable")},
	}}
	s := NewService(repo, pusher, "https://jane.dev")

	s.PostPublished(context.Background(), &blogdomain.Post{ID: "p1", Slug: "hello", Title: "Hello", Excerpt: "First"})
	s.Wait()

	if len(pusher.sent) != 1 || len(pusher.sent[0]) != 4 {
		t.Fatalf("expected one send to 4 tokens, got %v", pusher.sent)
	}
	if pusher.last.Title != "Hello" || pusher.last.ClickAction != "https://jane.dev/blog/hello" || pusher.last.Data["slug"] != "hello" {
		t.Errorf("unexpected notification %+v", pusher.last)
	}

	sort.Strings(repo.deleted)
	if len(repo.deleted) != 2 || repo.deleted[0] != "b" || repo.deleted[1] != "c" {
		t.Errorf("want only stale tokens b and c deleted, transient d kept; got %v", repo.deleted)
	}
}

func TestPostPublishedSkipsWithoutDevices(t *testing.T) {
	pusher := &fakePusher{}
	s := NewService(&tokenRepo{}, pusher, "")
	s.PostPublished(context.Background(), &blogdomain.Post{Slug: "x"})
	s.Wait()

	if len(pusher.sent) != 0 {
		t.Errorf("should not send without devices")
	}

	s = NewService(&tokenRepo{listErr: errors.New("down")}, pusher, "")
	s.PostPublished(context.Background(), &blogdomain.Post{Slug: "x"})
	s.Wait()
	if len(pusher.sent) != 0 {
		t.Errorf("should not send when tokens cannot be listed")
	}
}

func TestPostPublishedSendErrorKeepsTokens(t *testing.T) {
	repo := &tokenRepo{tokens: []string{"a"}}
	pusher := &fakePusher{err: errors.New("fcm down")}
	s := NewService(repo, pusher, "")
	s.PostPublished(context.Background(), &blogdomain.Post{Slug: "x"})
	s.Wait()

	if len(repo.deleted) != 0 {
		t.Errorf("tokens deleted on transport error: %v", repo.deleted)
	}
}

func TestPostPublishedWithoutPusher(t *testing.T) {
	s := NewService(&tokenRepo{tokens: []string{"a"}}, nil, "")
	s.PostPublished(context.Background(), &blogdomain.Post{Slug: "x"})
	s.Wait()
}
