package history

import (
	"context"

	"github.com/google/uuid"

	"datamind-backend/internal/extraction"
)

// Service owns the history use cases on top of a Repo.
type Service struct {
	Repo Repo
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Record persists one extraction for a user and returns the record ID.
// It satisfies the extraction package's Recorder.
func (s *Service) Record(ctx context.Context, userID string, doc extraction.Document) (string, error) {
	rec := Record{
		ID:       uuid.NewString(),
		UserID:   userID,
		Document: doc,
	}
	created, err := s.Repo.Create(ctx, rec)
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

// List returns the user's records, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Record, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// Delete removes one of the user's records.
func (s *Service) Delete(ctx context.Context, userID, recordID string) error {
	return s.Repo.Delete(ctx, userID, recordID)
}

// Watch streams live snapshots when the underlying repo supports it.
// The second return value reports whether live queries are available.
func (s *Service) Watch(ctx context.Context, userID string) (<-chan []Record, bool, error) {
	watcher, ok := s.Repo.(Watcher)
	if !ok {
		return nil, false, nil
	}
	ch, err := watcher.Watch(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return ch, true, nil
}

var _ extraction.Recorder = (*Service)(nil)
