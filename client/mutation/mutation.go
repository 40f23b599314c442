// Package mutation wraps a single write against the backend and invalidates
// the affected query keys once it succeeds.
package mutation

import (
	"context"
	"sync"

	"eudaimonia/cache"
)

type Status int

const (
	Idle Status = iota
	Pending
	Error
	Success
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Error:
		return "error"
	case Success:
		return "success"
	}
	return "idle"
}

type State[Out any] struct {
	Status Status
	Err    error
	Result Out
}

// KeyFunc names a query key made stale by a successful run.
type KeyFunc[In, Out any] func(in In, out Out) cache.Key

// Static invalidates the same key on every run.
func Static[In, Out any](key ...string) KeyFunc[In, Out] {
	return func(In, Out) cache.Key { return cache.Key(key) }
}

type Mutation[In, Out any] struct {
	mu    sync.Mutex
	fn    func(ctx context.Context, in In) (Out, error)
	cache *cache.Cache
	keys  []KeyFunc[In, Out]
	state State[Out]
}

func New[In, Out any](c *cache.Cache, fn func(ctx context.Context, in In) (Out, error), keys ...KeyFunc[In, Out]) *Mutation[In, Out] {
	return &Mutation[In, Out]{fn: fn, cache: c, keys: keys}
}

// Run performs the write. On success every key (and every key below it) is
// invalidated before Run returns.
func (m *Mutation[In, Out]) Run(ctx context.Context, in In) (Out, error) {
	m.set(State[Out]{Status: Pending})

	out, err := m.fn(ctx, in)
	if err != nil {
		m.set(State[Out]{Status: Error, Err: err})
		return out, err
	}

	for _, key := range m.keys {
		if k := key(in, out); len(k) > 0 {
			m.cache.InvalidatePrefix(k)
		}
	}
	m.set(State[Out]{Status: Success, Result: out})
	return out, nil
}

func (m *Mutation[In, Out]) State() State[Out] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Reset returns the mutation to Idle.
func (m *Mutation[In, Out]) Reset() {
	m.set(State[Out]{})
}

func (m *Mutation[In, Out]) set(s State[Out]) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}
