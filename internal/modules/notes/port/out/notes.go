package out

import (
	"context"
	"time"

	"firedesk/internal/modules/notes/domain"
)

type DocumentStore interface {
	// NewID allocates a document id without touching the network.
	NewID(collection string) string
	// Put writes fields under id. queued is true when the write was held
	// locally instead of reaching the store.
	Put(ctx context.Context, collection, id string, fields domain.Fields) (queued bool, err error)
	List(ctx context.Context, collection string) ([]domain.Record, error)
	// Ping reports reachability. An error means the probe itself failed for
	// a reason other than the network being down.
	Ping(ctx context.Context) (bool, error)
}

// StartupReporter is implemented by stores that can tell why they never
// started. StartupErr is nil for a working store.
type StartupReporter interface {
	StartupErr() error
}

type WriteQueue interface {
	Enqueue(ctx context.Context, write domain.PendingWrite) error
	Pending(ctx context.Context) ([]domain.PendingWrite, error)
	Count(ctx context.Context) (int, error)
	Remove(ctx context.Context, seq int64) error
	// Reject moves a pending write to the rejected set.
	Reject(ctx context.Context, seq int64, reason string, at time.Time) error
	Rejected(ctx context.Context) ([]domain.RejectedWrite, error)
	Close() error
}

// QueueController exposes the offline queue to operators.
type QueueController interface {
	QueueEnabled() bool
	PendingCount(ctx context.Context) (int, error)
	RejectedCount(ctx context.Context) (int, error)
	Flush(ctx context.Context) (replayed int, err error)
}

type SampleSource interface {
	Notes() ([]domain.Note, error)
}
