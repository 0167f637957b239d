package history

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a record does not exist or belongs to
// another user.
var ErrNotFound = errors.New("history record not found")

// Repo defines persistence operations for history records. Every query
// is scoped to one owning user identifier.
type Repo interface {
	Create(ctx context.Context, rec Record) (Record, error)
	ListByUser(ctx context.Context, userID string) ([]Record, error)
	Delete(ctx context.Context, userID, recordID string) error
}

// Watcher is implemented by repos that support live queries. The
// returned channel receives a full snapshot of the user's records
// (newest first) on subscription and after every change, and is closed
// when ctx is done.
type Watcher interface {
	Watch(ctx context.Context, userID string) (<-chan []Record, error)
}
