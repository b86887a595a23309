package components

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// FeedMsg carries one value from a Feed. Models compare Feed against their
// own to drop messages from a feed they have already closed.
type FeedMsg[T any] struct {
	Value T
	Feed  *Feed[T]
}

// Feed adapts a callback subscription to Bubble Tea. Only the latest
// undelivered value is kept.
type Feed[T any] struct {
	mu      sync.Mutex
	updates chan T
	done    chan struct{}
	once    sync.Once
	unsub   func()
}

// NewFeed calls subscribe with a callback that feeds the returned Feed.
// subscribe may invoke the callback before it returns.
func NewFeed[T any](subscribe func(func(T)) func()) *Feed[T] {
	f := &Feed[T]{
		updates: make(chan T, 1),
		done:    make(chan struct{}),
	}
	f.unsub = subscribe(f.push)
	return f
}

func (f *Feed[T]) push(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	select {
	case <-f.updates:
	default:
	}
	f.updates <- v
}

// Next waits for the next value. After Close it yields nil.
func (f *Feed[T]) Next() tea.Cmd {
	return func() tea.Msg {
		select {
		case v := <-f.updates:
			return FeedMsg[T]{Value: v, Feed: f}
		case <-f.done:
			return nil
		}
	}
}

// Close unsubscribes and releases any pending Next. Safe to call twice.
func (f *Feed[T]) Close() {
	f.once.Do(func() {
		if f.unsub != nil {
			f.unsub()
		}
		close(f.done)
	})
}

// Closed reports whether Close has been called.
func (f *Feed[T]) Closed() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
