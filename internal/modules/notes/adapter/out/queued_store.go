package out

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"firedesk/internal/modules/notes/domain"
	notesout "firedesk/internal/modules/notes/port/out"
	"firedesk/internal/platform/clock"
	"firedesk/internal/platform/connectivity"
	apperrors "firedesk/internal/platform/errors"
	"firedesk/internal/platform/lockfile"
)

type QueueOpener func() (notesout.WriteQueue, error)

// QueuedStore wraps a DocumentStore with a local write queue. Until
// EnableOfflineQueue succeeds it is a plain pass-through. Once enabled,
// writes made while offline, or rejected as unreachable, are held locally
// and replayed in order when the monitor reports the host online again.
// A write never overtakes one queued before it. A store that failed to
// start is not an outage, so its writes are never queued.
type QueuedStore struct {
	inner    notesout.DocumentStore
	monitor  *connectivity.Monitor
	clock    clock.Clock
	logger   *slog.Logger
	lockPath string
	open     QueueOpener

	mu    sync.Mutex
	queue notesout.WriteQueue
	lock  lockfile.Lock
	unsub func()

	// flushMu is held exclusively by Flush and shared by direct writes.
	flushMu sync.RWMutex
}

func NewQueuedStore(inner notesout.DocumentStore, monitor *connectivity.Monitor, clk clock.Clock, logger *slog.Logger, lockPath string, open QueueOpener) *QueuedStore {
	return &QueuedStore{
		inner:    inner,
		monitor:  monitor,
		clock:    clk,
		logger:   logger,
		lockPath: lockPath,
		open:     open,
	}
}

var (
	_ notesout.DocumentStore   = (*QueuedStore)(nil)
	_ notesout.QueueController = (*QueuedStore)(nil)
	_ notesout.StartupReporter = (*QueuedStore)(nil)
)

// EnableOfflineQueue takes the queue lock and opens the queue. The error
// wraps apperrors.ErrQueueLocked when another process owns the queue and
// apperrors.ErrQueueUnsupported when the host cannot provide one.
func (s *QueuedStore) EnableOfflineQueue(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	if s.queue != nil {
		s.mu.Unlock()
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.lockPath), 0o755); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", apperrors.ErrQueueUnsupported, err)
	}
	lock, err := lockfile.Acquire(s.lockPath)
	switch {
	case errors.Is(err, lockfile.ErrHeld):
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", apperrors.ErrQueueLocked, err)
	case errors.Is(err, lockfile.ErrUnsupported):
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", apperrors.ErrQueueUnsupported, err)
	case err != nil:
		s.mu.Unlock()
		return fmt.Errorf("acquire queue lock: %w", err)
	}
	queue, err := s.open()
	if err != nil {
		_ = lock.Unlock()
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", apperrors.ErrQueueUnsupported, err)
	}
	s.queue, s.lock = queue, lock
	s.unsub = s.monitor.Subscribe(func(online bool) {
		if online {
			go s.replay()
		}
	})
	s.mu.Unlock()

	if s.monitor.Online() {
		go s.replay()
	}
	return nil
}

func (s *QueuedStore) activeQueue() notesout.WriteQueue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue
}

func (s *QueuedStore) QueueEnabled() bool {
	return s.activeQueue() != nil
}

func (s *QueuedStore) NewID(collection string) string {
	return s.inner.NewID(collection)
}

// broken reports whether the wrapped store failed to start.
func (s *QueuedStore) broken() bool {
	_, ok := s.inner.(*UnavailableStore)
	return ok
}

func (s *QueuedStore) StartupErr() error {
	if u, ok := s.inner.(*UnavailableStore); ok {
		return u.StartupErr()
	}
	return nil
}

func (s *QueuedStore) Put(ctx context.Context, collection, id string, fields domain.Fields) (bool, error) {
	if s.broken() {
		return s.inner.Put(ctx, collection, id, fields)
	}
	if id == "" {
		return false, fmt.Errorf("%w: empty document id for %s", apperrors.ErrInvalidInput, collection)
	}
	queue := s.activeQueue()
	if queue == nil {
		return s.inner.Put(ctx, collection, id, fields)
	}

	s.flushMu.RLock()
	defer s.flushMu.RUnlock()
	if !s.monitor.Online() {
		if err := s.enqueue(ctx, queue, collection, id, fields); err != nil {
			return false, err
		}
		return true, nil
	}
	backlog, err := queue.Count(ctx)
	if err != nil {
		return false, err
	}
	if backlog > 0 {
		if err := s.enqueue(ctx, queue, collection, id, fields); err != nil {
			return false, err
		}
		go s.replay()
		return true, nil
	}

	queued, err := s.inner.Put(ctx, collection, id, fields)
	if err == nil || !IsUnavailable(err) {
		return queued, err
	}
	s.logger.Warn("document store unreachable, queueing write", "collection", collection, "id", id, "error", err)
	s.monitor.Set(false)
	if qerr := s.enqueue(context.WithoutCancel(ctx), queue, collection, id, fields); qerr != nil {
		return false, errors.Join(err, qerr)
	}
	return true, nil
}

func (s *QueuedStore) enqueue(ctx context.Context, queue notesout.WriteQueue, collection, id string, fields domain.Fields) error {
	return queue.Enqueue(ctx, domain.PendingWrite{
		Collection: collection,
		DocID:      id,
		Fields:     fields,
		QueuedAt:   s.clock.Now(),
	})
}

func (s *QueuedStore) List(ctx context.Context, collection string) ([]domain.Record, error) {
	return s.inner.List(ctx, collection)
}

func (s *QueuedStore) Ping(ctx context.Context) (bool, error) {
	return s.inner.Ping(ctx)
}

func (s *QueuedStore) PendingCount(ctx context.Context) (int, error) {
	queue := s.activeQueue()
	if queue == nil {
		return 0, apperrors.ErrQueueDisabled
	}
	return queue.Count(ctx)
}

func (s *QueuedStore) RejectedCount(ctx context.Context) (int, error) {
	queue := s.activeQueue()
	if queue == nil {
		return 0, apperrors.ErrQueueDisabled
	}
	rejected, err := queue.Rejected(ctx)
	if err != nil {
		return 0, err
	}
	return len(rejected), nil
}

// Flush replays queued writes oldest first. It stops at the first write
// that fails because the store is unreachable, leaving it and everything
// after it queued. A write the store refuses for any other reason is moved
// to the rejected set and replay continues.
func (s *QueuedStore) Flush(ctx context.Context) (int, error) {
	queue := s.activeQueue()
	if queue == nil {
		return 0, apperrors.ErrQueueDisabled
	}
	if s.broken() {
		return 0, s.StartupErr()
	}
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	pending, err := queue.Pending(ctx)
	if err != nil {
		return 0, err
	}
	replayed := 0
	for _, w := range pending {
		var putErr error
		if w.DocID == "" {
			putErr = fmt.Errorf("%w: empty document id", apperrors.ErrInvalidInput)
		} else {
			_, putErr = s.inner.Put(ctx, w.Collection, w.DocID, w.Fields)
		}
		switch {
		case putErr == nil:
			if err := queue.Remove(ctx, w.Seq); err != nil {
				return replayed, err
			}
			replayed++
		case IsUnavailable(putErr) || ctx.Err() != nil:
			return replayed, fmt.Errorf("replay %s/%s: %w", w.Collection, w.DocID, putErr)
		default:
			s.logger.Warn("queued write rejected", "collection", w.Collection, "id", w.DocID, "error", putErr)
			if err := queue.Reject(ctx, w.Seq, putErr.Error(), s.clock.Now()); err != nil {
				return replayed, err
			}
		}
	}
	return replayed, nil
}

func (s *QueuedStore) replay() {
	n, err := s.Flush(context.Background())
	if err != nil {
		s.logger.Warn("offline queue replay stopped", "replayed", n, "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("offline queue replayed", "writes", n)
	}
}

// Close releases the queue and its lock. The wrapped store is not closed.
func (s *QueuedStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue == nil {
		return nil
	}
	s.unsub()
	err := errors.Join(s.queue.Close(), s.lock.Unlock())
	s.queue, s.lock, s.unsub = nil, nil, nil
	return err
}
