// Package semaphore provides a counting gate built on sync.Cond, the
// same primitive the original walker/semaphore package used for its
// own wait-for-drain helper, here reshaped into a capacity-bounding
// semaphore: PutUrls uses it to cap how many KV-store round trips are
// in flight at once, so a burst of items on the input channel can't
// open unbounded concurrent store operations.
//
// sync.Cond is used instead of a buffered channel so Release can be
// called more times than Acquire without panicking.
package semaphore

import "sync"

// Semaphore bounds concurrency to at most `capacity` held permits.
// The zero value is not usable; construct with New.
type Semaphore struct {
	cond     *sync.Cond
	lock     sync.Mutex
	capacity int
	held     int
}

// New returns a Semaphore allowing up to capacity concurrently held
// permits.
func New(capacity int) *Semaphore {
	s := &Semaphore{capacity: capacity}
	s.cond = sync.NewCond(&s.lock)
	return s
}

// Acquire blocks until a permit is available, then consumes one.
func (s *Semaphore) Acquire() {
	s.lock.Lock()
	defer s.lock.Unlock()
	for s.held >= s.capacity {
		s.cond.Wait()
	}
	s.held++
}

// Release returns one permit, waking a blocked Acquire if any.
func (s *Semaphore) Release() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.held--
	s.cond.Signal()
}

// Held reports how many permits are currently held, for tests and
// diagnostics.
func (s *Semaphore) Held() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.held
}
