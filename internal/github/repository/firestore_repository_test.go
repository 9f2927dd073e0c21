package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"

	"portfolio-backend/internal/github/domain"
)

// newEmulatorRepository needs FIRESTORE_EMULATOR_HOST, e.g. from `firebase emulators:start --only firestore`
func newEmulatorRepository(t *testing.T) RepoRepository {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()
	client, err := firestore.NewClient(ctx, fmt.Sprintf("portfolio-test-%d", time.Now().UnixNano()))
	if err != nil {
		t.Fatalf("firestore client: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return NewFirestoreRepoRepository(client)
}

func TestFirestoreDeleteWaitsForResults(t *testing.T) {
	repo := newEmulatorRepository(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	err := repo.SaveSynced(ctx, []*domain.Repo{
		{Name: "alpha", FullName: "me/alpha", PushedAt: now, SyncedAt: now},
		{Name: "beta", FullName: "me/beta", PushedAt: now, SyncedAt: now},
	})
	if err != nil {
		t.Fatalf("SaveSynced: %v", err)
	}

	if err := repo.Delete(ctx, []string{"alpha", "missing"}); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	got, err := repo.FindByName(ctx, "alpha")
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if got != nil {
		t.Fatal("alpha should be gone once Delete returns")
	}
	if got, _ := repo.FindByName(ctx, "beta"); got == nil {
		t.Fatal("beta should survive")
	}
}
