// Package connectivity tracks whether the host can reach the network.
//
// A Monitor holds the latest online/offline value and fans transitions out
// to subscribers. It keeps no history. A Prober is the host signal source
// that feeds it.
package connectivity

import "sync"

// Monitor is safe for concurrent use.
type Monitor struct {
	// notifyMu keeps deliveries in the order the states were set.
	notifyMu  sync.Mutex
	mu        sync.Mutex
	online    bool
	nextID    int
	listeners map[int]func(online bool)
}

// NewMonitor starts in the given state.
func NewMonitor(online bool) *Monitor {
	return &Monitor{online: online, listeners: map[int]func(bool){}}
}

// Online reports the latest known state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Set records a host signal. Listeners are called only when the state
// actually changes, outside the state lock. Transitions reach listeners in
// the order they happened, so a listener must not call Set itself.
func (m *Monitor) Set(online bool) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	fns := make([]func(bool), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(online)
	}
}

// Subscribe registers fn for future transitions. The returned func removes
// it and may be called more than once.
func (m *Monitor) Subscribe(fn func(online bool)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, id)
			m.mu.Unlock()
		})
	}
}

// Subscribers returns the number of registered listeners.
func (m *Monitor) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners)
}
