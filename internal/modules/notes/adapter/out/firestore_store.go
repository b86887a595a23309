package out

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"firedesk/internal/modules/notes/domain"
	notesout "firedesk/internal/modules/notes/port/out"
)

type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

var _ notesout.DocumentStore = (*FirestoreStore)(nil)

func (s *FirestoreStore) NewID(collection string) string {
	return s.client.Collection(collection).NewDoc().ID
}

func (s *FirestoreStore) Put(ctx context.Context, collection, id string, fields domain.Fields) (bool, error) {
	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, toFirestore(fields)); err != nil {
		return false, fmt.Errorf("write %s/%s: %w", collection, id, err)
	}
	return false, nil
}

func (s *FirestoreStore) List(ctx context.Context, collection string) ([]domain.Record, error) {
	snaps, err := s.client.Collection(collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	out := make([]domain.Record, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, domain.Record{
			ID:         snap.Ref.ID,
			Collection: collection,
			Fields:     domain.Fields(snap.Data()),
		})
	}
	return out, nil
}

// Ping reads at most one document from the probe collection. An empty
// collection still counts as reachable.
func (s *FirestoreStore) Ping(ctx context.Context) (bool, error) {
	it := s.client.Collection(domain.CollectionProbe).Limit(1).Documents(ctx)
	defer it.Stop()
	_, err := it.Next()
	switch {
	case err == nil, errors.Is(err, iterator.Done):
		return true, nil
	case IsUnavailable(err):
		return false, nil
	default:
		return false, err
	}
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

// IsUnavailable reports whether err means the backend could not be reached,
// as opposed to rejecting the request.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded:
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func toFirestore(fields domain.Fields) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if domain.IsServerTimestamp(v) {
			out[k] = firestore.ServerTimestamp
			continue
		}
		out[k] = v
	}
	return out
}
