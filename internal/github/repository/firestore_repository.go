package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"portfolio-backend/internal/github/domain"
)

const reposCollection = "githubRepos"

type firestoreRepoRepository struct {
	client *firestore.Client
}

func NewFirestoreRepoRepository(client *firestore.Client) RepoRepository {
	return &firestoreRepoRepository{client: client}
}

func (r *firestoreRepoRepository) repos() *firestore.CollectionRef {
	return r.client.Collection(reposCollection)
}

func (r *firestoreRepoRepository) List(ctx context.Context) ([]*domain.Repo, error) {
	iter := r.repos().Documents(ctx)
	defer iter.Stop()

	var repos []*domain.Repo
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list github repos: %w", err)
		}
		repo, err := decodeRepo(doc)
		if err != nil {
			return nil, err
		}
		repos = append(repos, repo)
	}
	return repos, nil
}

func (r *firestoreRepoRepository) FindByName(ctx context.Context, name string) (*domain.Repo, error) {
	snap, err := r.repos().Doc(name).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}
	return decodeRepo(snap)
}

func (r *firestoreRepoRepository) SaveSynced(ctx context.Context, repos []*domain.Repo) error {
	if len(repos) == 0 {
		return nil
	}

	bw := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(repos))
	for _, repo := range repos {
		job, err := bw.Set(r.repos().Doc(repo.Name), syncedFields(repo), firestore.MergeAll)
		if err != nil {
			bw.End()
			return fmt.Errorf("queue github repo %s: %w", repo.Name, err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			return fmt.Errorf("save github repo %s: %w", repos[i].Name, err)
		}
	}
	return nil
}

// syncedFields lists everything except the master flags so MergeAll leaves them alone
func syncedFields(repo *domain.Repo) map[string]any {
	return map[string]any{
		"fullName":    repo.FullName,
		"description": repo.Description,
		"url":         repo.URL,
		"homepage":    repo.Homepage,
		"language":    repo.Language,
		"topics":      repo.Topics,
		"stars":       repo.Stars,
		"forks":       repo.Forks,
		"archived":    repo.Archived,
		"pushedAt":    repo.PushedAt,
		"syncedAt":    repo.SyncedAt,
	}
}

func (r *firestoreRepoRepository) SetFlags(ctx context.Context, name string, flags domain.Flags) error {
	var updates []firestore.Update
	if flags.Pinned != nil {
		updates = append(updates, firestore.Update{Path: "pinned", Value: *flags.Pinned})
	}
	if flags.Hidden != nil {
		updates = append(updates, firestore.Update{Path: "hidden", Value: *flags.Hidden})
	}
	if len(updates) == 0 {
		return nil
	}

	_, err := r.repos().Doc(name).Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return domain.ErrRepoNotFound
	}
	return err
}

func (r *firestoreRepoRepository) Delete(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	bw := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(names))
	for _, name := range names {
		job, err := bw.Delete(r.repos().Doc(name))
		if err != nil {
			bw.End()
			return fmt.Errorf("queue delete github repo %s: %w", name, err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			return fmt.Errorf("delete github repo %s: %w", names[i], err)
		}
	}
	return nil
}

func decodeRepo(snap *firestore.DocumentSnapshot) (*domain.Repo, error) {
	var repo domain.Repo
	if err := snap.DataTo(&repo); err != nil {
		return nil, fmt.Errorf("decode github repo %s: %w", snap.Ref.ID, err)
	}
	repo.Name = snap.Ref.ID
	return &repo, nil
}
