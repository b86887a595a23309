package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"firedesk/internal/modules/notes/domain"
	notesout "firedesk/internal/modules/notes/port/out"
	apperrors "firedesk/internal/platform/errors"
)

const seedConcurrency = 4

type NotesService struct {
	store notesout.DocumentStore
}

func NewNotesService(store notesout.DocumentStore) *NotesService {
	return &NotesService{store: store}
}

// AuthenticatedWrite records a test document owned by uid. An empty uid
// fails before the store is touched.
func (s *NotesService) AuthenticatedWrite(ctx context.Context, uid string) (domain.Record, bool, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return domain.Record{}, false, apperrors.ErrNotSignedIn
	}
	id, err := s.newID(domain.CollectionAuthTests)
	if err != nil {
		return domain.Record{}, false, err
	}
	record := domain.Record{
		ID:         id,
		Collection: domain.CollectionAuthTests,
		Fields: domain.Fields{
			"uid":       uid,
			"message":   domain.AuthTestMessage,
			"timestamp": domain.ServerTimestamp,
		},
	}
	queued, err := s.store.Put(ctx, record.Collection, record.ID, record.Fields)
	if err != nil {
		return domain.Record{}, false, err
	}
	return record, queued, nil
}

// newID fails when the store hands out no id, which only a store that
// never started does. Its startup error is reported when it has one.
func (s *NotesService) newID(collection string) (string, error) {
	id := s.store.NewID(collection)
	if id != "" {
		return id, nil
	}
	if r, ok := s.store.(notesout.StartupReporter); ok {
		if err := r.StartupErr(); err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: no document id allocated in %s", apperrors.ErrStoreUnavailable, collection)
}

func (s *NotesService) Probe(ctx context.Context) (bool, error) {
	return s.store.Ping(ctx)
}

// Seed writes every note under a fresh id and returns how many landed.
// The first failure cancels the writes still in flight.
func (s *NotesService) Seed(ctx context.Context, notes []domain.Note) (int, error) {
	for _, note := range notes {
		if err := note.Validate(); err != nil {
			return 0, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(seedConcurrency)
	written := make([]bool, len(notes))
	for i, note := range notes {
		g.Go(func() error {
			id, err := s.newID(domain.CollectionNotes)
			if err != nil {
				return fmt.Errorf("seed %q: %w", note.Title, err)
			}
			if _, err := s.store.Put(gctx, domain.CollectionNotes, id, note.Fields()); err != nil {
				return fmt.Errorf("seed %q: %w", note.Title, err)
			}
			written[i] = true
			return nil
		})
	}
	err := g.Wait()
	n := 0
	for _, ok := range written {
		if ok {
			n++
		}
	}
	return n, err
}

func (s *NotesService) Fetch(ctx context.Context) ([]domain.Record, error) {
	return s.store.List(ctx, domain.CollectionNotes)
}
