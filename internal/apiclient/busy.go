package apiclient

import "sync"

// Busy is a reference-counted loading indicator shared by all requests of a
// Client. It stays active while at least one request is in flight, so
// overlapping requests never clear it early.
type Busy struct {
	mu        sync.Mutex
	inflight  int
	observers []func(active bool, inflight int)
}

// Acquire marks one request as in flight. The returned release func is
// idempotent; callers defer it so the indicator is cleared on every path.
func (b *Busy) Acquire() (release func()) {
	b.mu.Lock()
	b.inflight++
	b.notifyLocked()
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			b.inflight--
			b.notifyLocked()
			b.mu.Unlock()
		})
	}
}

// Active reports whether any request is in flight.
func (b *Busy) Active() bool {
	return b.InFlight() > 0
}

// InFlight returns the number of outstanding requests.
func (b *Busy) InFlight() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inflight
}

// OnChange registers an observer called after every acquire and release.
// Observers run under the indicator lock and must not call back into it.
func (b *Busy) OnChange(fn func(active bool, inflight int)) {
	if fn == nil {
		return
	}
	b.mu.Lock()
	b.observers = append(b.observers, fn)
	b.mu.Unlock()
}

func (b *Busy) notifyLocked() {
	for _, fn := range b.observers {
		fn(b.inflight > 0, b.inflight)
	}
}
