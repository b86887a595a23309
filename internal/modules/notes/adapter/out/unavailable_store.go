package out

import (
	"context"
	"errors"
	"fmt"

	"firedesk/internal/modules/notes/domain"
	apperrors "firedesk/internal/platform/errors"
)

// UnavailableStore stands in for a document store that failed to start.
// Every call reports the construction error, wrapped in
// apperrors.ErrStoreUnavailable. It allocates no ids.
type UnavailableStore struct {
	err error
}

func NewUnavailableStore(err error) *UnavailableStore {
	if err == nil {
		err = errors.New("not configured")
	}
	return &UnavailableStore{err: fmt.Errorf("%w: %w", apperrors.ErrStoreUnavailable, err)}
}

func (s *UnavailableStore) NewID(string) string { return "" }

func (s *UnavailableStore) StartupErr() error { return s.err }

func (s *UnavailableStore) Put(context.Context, string, string, domain.Fields) (bool, error) {
	return false, s.err
}

func (s *UnavailableStore) List(context.Context, string) ([]domain.Record, error) {
	return nil, s.err
}

func (s *UnavailableStore) Ping(context.Context) (bool, error) {
	return false, s.err
}
