package storage

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("storage: not found")

// StateKey is the fixed key the application state blob lives under.
const StateKey = "delusional-leap-storage"

// BlobStore holds opaque serialized blobs by key.
type BlobStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type OutboxRepository interface {
	EnqueueIntent(ctx context.Context, in OutboxRecord) error
	ListDueIntents(ctx context.Context, now time.Time, limit int) ([]OutboxRecord, error)
	RescheduleIntent(ctx context.Context, id string, attempts int, nextAttemptAt time.Time, lastError string) error
	DeleteIntent(ctx context.Context, id string) error
	CountIntents(ctx context.Context) (int, error)
	ClearIntents(ctx context.Context) error
}
