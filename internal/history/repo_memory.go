package history

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo and Watcher, used
// in dev when neither Firestore nor Postgres is configured.
type MemoryRepo struct {
	mu      sync.Mutex
	data    map[string][]Record // userID -> records
	nextSub int
	subs    map[string]map[int]chan []Record // userID -> subscriber channels
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string][]Record),
		subs: make(map[string]map[int]chan []Record),
	}
}

// Create stores a record, assigning the creation timestamp.
func (r *MemoryRepo) Create(ctx context.Context, rec Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	r.data[rec.UserID] = append(r.data[rec.UserID], rec)
	r.broadcastLocked(rec.UserID)
	return rec, nil
}

// ListByUser returns the user's records, newest first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked(userID), nil
}

// Delete removes a record owned by the user.
func (r *MemoryRepo) Delete(ctx context.Context, userID, recordID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	records := r.data[userID]
	idx := -1
	for i := range records {
		if records[i].ID == recordID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}
	r.data[userID] = append(records[:idx], records[idx+1:]...)
	r.broadcastLocked(userID)
	return nil
}

// Watch subscribes to live snapshots of the user's records. The channel
// is closed and the subscription dropped when ctx is done.
func (r *MemoryRepo) Watch(ctx context.Context, userID string) (<-chan []Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(chan []Record, 4)

	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	if r.subs[userID] == nil {
		r.subs[userID] = make(map[int]chan []Record)
	}
	r.subs[userID][id] = out
	out <- r.snapshotLocked(userID)
	r.mu.Unlock()

	go func() {
		<-ctx.Done()
		// Close under the lock: broadcastLocked sends under the same
		// lock, so a send can never race this close.
		r.mu.Lock()
		if ch, ok := r.subs[userID][id]; ok {
			delete(r.subs[userID], id)
			close(ch)
		}
		r.mu.Unlock()
	}()

	return out, nil
}

func (r *MemoryRepo) snapshotLocked(userID string) []Record {
	records := r.data[userID]
	out := make([]Record, len(records))
	copy(out, records)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *MemoryRepo) broadcastLocked(userID string) {
	subs := r.subs[userID]
	if len(subs) == 0 {
		return
	}
	snapshot := r.snapshotLocked(userID)
	for _, ch := range subs {
		select {
		case ch <- snapshot:
		default:
			// Slow subscriber; it will catch up on the next change.
		}
	}
}

var _ Repo = (*MemoryRepo)(nil)
var _ Watcher = (*MemoryRepo)(nil)
