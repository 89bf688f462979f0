package resilience

import "sync"

// Flight deduplicates concurrent calls that share a key: one caller runs fn,
// the rest wait for that result. The boolean reports whether the result was
// shared from another caller's execution.
type Flight[V any] struct {
	mu      sync.Mutex
	flights map[string]*flightCall[V]
}

type flightCall[V any] struct {
	done  chan struct{}
	value V
	err   error
}

func (f *Flight[V]) Do(key string, fn func() (V, error)) (V, error, bool) {
	f.mu.Lock()
	if f.flights == nil {
		f.flights = make(map[string]*flightCall[V])
	}
	if c, ok := f.flights[key]; ok {
		f.mu.Unlock()
		<-c.done
		return c.value, c.err, true
	}

	c := &flightCall[V]{done: make(chan struct{})}
	f.flights[key] = c
	f.mu.Unlock()

	c.value, c.err = fn()
	close(c.done)

	f.mu.Lock()
	delete(f.flights, key)
	f.mu.Unlock()

	return c.value, c.err, false
}
