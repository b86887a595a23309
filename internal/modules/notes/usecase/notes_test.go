package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"firedesk/internal/modules/notes/domain"
	"firedesk/internal/modules/notes/dto"
	notesin "firedesk/internal/modules/notes/port/in"
	"firedesk/internal/modules/notes/service"
	"firedesk/internal/modules/notes/usecase"
	apperrors "firedesk/internal/platform/errors"
	"firedesk/internal/platform/logging"
)

type put struct {
	collection string
	id         string
	fields     domain.Fields
}

type memStore struct {
	mu        sync.Mutex
	next      int
	puts      []put
	putErr    error
	failTitle string
	reachable bool
	pingErr   error

	// startupErr makes the store behave like one that never started.
	startupErr error
}

func (s *memStore) StartupErr() error { return s.startupErr }

func (s *memStore) NewID(collection string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startupErr != nil {
		return ""
	}
	s.next++
	return fmt.Sprintf("%s-%d", collection, s.next)
}

func (s *memStore) Put(_ context.Context, collection, id string, fields domain.Fields) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return false, s.putErr
	}
	if s.failTitle != "" && fields["title"] == s.failTitle {
		return false, errors.New("permission denied")
	}
	s.puts = append(s.puts, put{collection: collection, id: id, fields: fields})
	return false, nil
}

func (s *memStore) List(_ context.Context, collection string) ([]domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Record{}
	for _, p := range s.puts {
		if p.collection == collection {
			out = append(out, domain.Record{ID: p.id, Collection: collection, Fields: p.fields})
		}
	}
	return out, nil
}

func (s *memStore) Ping(context.Context) (bool, error) {
	return s.reachable, s.pingErr
}

func (s *memStore) putCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.puts)
}

type staticSamples []domain.Note

func (s staticSamples) Notes() ([]domain.Note, error) { return s, nil }

type fakeQueue struct {
	enabled  bool
	pending  int
	rejected int
	err      error
}

func (q *fakeQueue) QueueEnabled() bool { return q.enabled }

func (q *fakeQueue) PendingCount(context.Context) (int, error) { return q.pending, nil }

func (q *fakeQueue) RejectedCount(context.Context) (int, error) { return q.rejected, nil }

func (q *fakeQueue) Flush(context.Context) (int, error) {
	if q.err != nil {
		return 0, q.err
	}
	n := q.pending
	q.pending = 0
	return n, nil
}

func newNotes(store *memStore, samples staticSamples, queue *fakeQueue) notesin.Usecase {
	if queue == nil {
		return usecase.NewInteractor(service.NewNotesService(store), samples, nil, logging.Discard())
	}
	return usecase.NewInteractor(service.NewNotesService(store), samples, queue, logging.Discard())
}

func TestAuthenticatedWriteWithoutSessionNeverTouchesStore(t *testing.T) {
	t.Parallel()
	store := &memStore{}
	notes := newNotes(store, nil, nil)

	_, err := notes.AuthenticatedWrite(context.Background(), dto.AuthWriteInput{UID: " "})
	if !errors.Is(err, apperrors.ErrNotSignedIn) {
		t.Fatalf("expected ErrNotSignedIn, got %v", err)
	}
	if store.putCount() != 0 {
		t.Fatalf("store must not be written without a session")
	}
}

func TestAuthenticatedWriteRecordsOwner(t *testing.T) {
	t.Parallel()
	store := &memStore{}
	notes := newNotes(store, nil, nil)

	out, err := notes.AuthenticatedWrite(context.Background(), dto.AuthWriteInput{UID: "uid-1"})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if out.ID != "auth-tests-1" || out.Queued {
		t.Fatalf("unexpected output %+v", out)
	}
	p := store.puts[0]
	if p.collection != domain.CollectionAuthTests || p.fields["uid"] != "uid-1" || p.fields["message"] != domain.AuthTestMessage {
		t.Fatalf("unexpected write %+v", p)
	}
	if !domain.IsServerTimestamp(p.fields["timestamp"]) {
		t.Fatalf("timestamp must be server-assigned")
	}
}

func TestAuthenticatedWritePropagatesStoreError(t *testing.T) {
	t.Parallel()
	store := &memStore{putErr: errors.New("permission denied")}
	notes := newNotes(store, nil, nil)
	if _, err := notes.AuthenticatedWrite(context.Background(), dto.AuthWriteInput{UID: "uid-1"}); err == nil || err.Error() != "permission denied" {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestProbe(t *testing.T) {
	t.Parallel()
	out, err := newNotes(&memStore{reachable: true}, nil, nil).Probe(context.Background())
	if err != nil || !out.Reachable {
		t.Fatalf("expected reachable, got %+v %v", out, err)
	}
	out, err = newNotes(&memStore{}, nil, nil).Probe(context.Background())
	if err != nil || out.Reachable {
		t.Fatalf("expected unreachable, got %+v %v", out, err)
	}
	if _, err := newNotes(&memStore{pingErr: errors.New("boom")}, nil, nil).Probe(context.Background()); err == nil {
		t.Fatalf("expected probe error")
	}
}

func TestSeedThenFetch(t *testing.T) {
	t.Parallel()
	store := &memStore{}
	samples := staticSamples{
		{Title: "one", Content: "first"},
		{Title: "two", Content: "second"},
		{Title: "three", Content: "third"},
	}
	notes := newNotes(store, samples, nil)

	seeded, err := notes.SeedSampleData(context.Background())
	if err != nil || seeded.Written != 3 {
		t.Fatalf("seed: %+v %v", seeded, err)
	}
	fetched, err := notes.FetchNotes(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(fetched) != 3 {
		t.Fatalf("expected 3 notes, got %d", len(fetched))
	}
	titles := map[string]bool{}
	for _, n := range fetched {
		titles[n.Title] = true
	}
	for _, want := range []string{"one", "two", "three"} {
		if !titles[want] {
			t.Fatalf("missing note %q in %+v", want, fetched)
		}
	}
}

func TestSeedReportsPartialFailure(t *testing.T) {
	t.Parallel()
	store := &memStore{failTitle: "bad"}
	notes := newNotes(store, staticSamples{{Title: "good"}, {Title: "bad"}}, nil)
	out, err := notes.SeedSampleData(context.Background())
	if err == nil {
		t.Fatalf("expected seed failure")
	}
	if out.Written > 1 {
		t.Fatalf("at most one note can land, got %d", out.Written)
	}
}

func TestSeedRejectsInvalidNotesUpFront(t *testing.T) {
	t.Parallel()
	store := &memStore{}
	notes := newNotes(store, staticSamples{{Title: "ok"}, {Title: ""}}, nil)
	if _, err := notes.SeedSampleData(context.Background()); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if store.putCount() != 0 {
		t.Fatalf("nothing should be written when a note is invalid")
	}
}

func TestQueueStatusAndFlush(t *testing.T) {
	t.Parallel()
	status, err := newNotes(&memStore{}, nil, nil).QueueStatus(context.Background())
	if err != nil || status.Enabled {
		t.Fatalf("no queue means disabled: %+v %v", status, err)
	}
	if _, err := newNotes(&memStore{}, nil, nil).Flush(context.Background()); !errors.Is(err, apperrors.ErrQueueDisabled) {
		t.Fatalf("expected ErrQueueDisabled, got %v", err)
	}

	q := &fakeQueue{enabled: true, pending: 2, rejected: 1}
	notes := newNotes(&memStore{}, nil, q)
	status, err = notes.QueueStatus(context.Background())
	if err != nil || !status.Enabled || status.Pending != 2 || status.Rejected != 1 {
		t.Fatalf("unexpected status %+v %v", status, err)
	}
	flushed, err := notes.Flush(context.Background())
	if err != nil || flushed.Replayed != 2 || flushed.Remaining != 0 || flushed.Rejected != 1 {
		t.Fatalf("unexpected flush %+v %v", flushed, err)
	}
}

func TestWriteToUnstartedStoreReportsStartupError(t *testing.T) {
	t.Parallel()
	startup := fmt.Errorf("%w: project id is required", apperrors.ErrStoreUnavailable)
	store := &memStore{startupErr: startup}
	notes := newNotes(store, staticSamples{{Title: "one"}}, nil)

	out, err := notes.AuthenticatedWrite(context.Background(), dto.AuthWriteInput{UID: "uid-1"})
	if !errors.Is(err, apperrors.ErrStoreUnavailable) || err.Error() != startup.Error() {
		t.Fatalf("expected the startup error, got %v", err)
	}
	if out.ID != "" || out.Queued {
		t.Fatalf("a failed write has no id and is not queued: %+v", out)
	}
	seeded, err := notes.SeedSampleData(context.Background())
	if !errors.Is(err, apperrors.ErrStoreUnavailable) || seeded.Written != 0 {
		t.Fatalf("seed into an unstarted store: %+v %v", seeded, err)
	}
	if store.putCount() != 0 {
		t.Fatalf("nothing may be written without a document id")
	}
}

func TestFetchLogsPayloadAtDefaultLevel(t *testing.T) {
	t.Parallel()
	store := &memStore{}
	var buf bytes.Buffer
	notes := usecase.NewInteractor(service.NewNotesService(store), staticSamples{{Title: "hello", Content: "world"}}, nil, logging.NewText(&buf, slog.LevelInfo))

	if _, err := notes.SeedSampleData(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := notes.FetchNotes(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.Contains(buf.String(), "fetched notes") || !strings.Contains(buf.String(), "hello") {
		t.Fatalf("fetched payload missing from info log: %q", buf.String())
	}
}
