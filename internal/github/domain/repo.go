package domain

import (
	"errors"
	"time"
)

var ErrRepoNotFound = errors.New("repository not found")

// Repo is a cached GitHub repository. Pinned and Hidden are set by the
// master and survive re-syncs.
type Repo struct {
	Name        string    `json:"name" firestore:"-"`
	FullName    string    `json:"full_name" firestore:"fullName"`
	Description string    `json:"description" firestore:"description"`
	URL         string    `json:"url" firestore:"url"`
	Homepage    string    `json:"homepage,omitempty" firestore:"homepage"`
	Language    string    `json:"language,omitempty" firestore:"language"`
	Topics      []string  `json:"topics" firestore:"topics"`
	Stars       int       `json:"stars" firestore:"stars"`
	Forks       int       `json:"forks" firestore:"forks"`
	Archived    bool      `json:"archived" firestore:"archived"`
	PushedAt    time.Time `json:"pushed_at" firestore:"pushedAt"`
	SyncedAt    time.Time `json:"synced_at" firestore:"syncedAt"`
	Pinned      bool      `json:"pinned" firestore:"pinned"`
	Hidden      bool      `json:"hidden" firestore:"hidden"`
}

// Flags are the master-controlled display settings
type Flags struct {
	Pinned *bool `json:"pinned,omitempty"`
	Hidden *bool `json:"hidden,omitempty"`
}
