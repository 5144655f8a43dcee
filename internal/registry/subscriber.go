//go:build !windows

package registry

import (
	"context"
	"slices"
	"sync"

	"tools.zach/dev/sigflow/internal/errdefs"
)

// Subscriber is one consumer's view of the registry: a set of held tokens
// plus a private pending-count table refilled by the dispatch loop. It is the
// Unix backing for the public Listener.
type Subscriber struct {
	reg *Registry

	mu      sync.Mutex
	numbers map[int]struct{} // numbers this subscriber holds tokens for
	pending map[int]uint64   // drained occurrences awaiting delivery
	term    error            // terminal channel error, surfaced once
	ended   bool             // stream over: closed, or terminal error delivered

	wake chan struct{} // capacity 1; a send is a wake edge, not a count
	done chan struct{} // closed on unsubscribe
}

// has/put/drop guard the number set with the subscriber lock so the dispatch
// loop can read it while registration mutates it.
func (s *Subscriber) has(n int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.numbers[n]
	return ok
}

func (s *Subscriber) put(n int) {
	s.mu.Lock()
	s.numbers[n] = struct{}{}
	s.mu.Unlock()
}

func (s *Subscriber) drop(n int) {
	s.mu.Lock()
	delete(s.numbers, n)
	s.mu.Unlock()
}

// offer credits count occurrences of number if the subscriber holds a token
// for it. Called by the dispatch loop with the registry lock held; lock order
// is always registry then subscriber.
func (s *Subscriber) offer(number int, count uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	if _, ok := s.numbers[number]; !ok {
		return
	}
	s.pending[number] += count
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// terminate records a process-wide channel failure to be surfaced on the
// next poll.
func (s *Subscriber) terminate(err error) {
	s.mu.Lock()
	if s.term == nil && !s.ended {
		s.term = err
	}
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// takeLocked removes and returns one pending occurrence, lowest signal
// number first.
func (s *Subscriber) takeLocked() (int, bool) {
	if len(s.pending) == 0 {
		return 0, false
	}
	nums := make([]int, 0, len(s.pending))
	for n := range s.pending {
		nums = append(nums, n)
	}
	n := slices.Min(nums)
	s.pending[n]--
	if s.pending[n] == 0 {
		delete(s.pending, n)
	}
	return n, true
}

// Next blocks until an occurrence is available and returns its signal
// number. Pending occurrences are delivered before a terminal error; the
// terminal error is delivered exactly once, after which Next returns
// [errdefs.ErrListenerClosed].
func (s *Subscriber) Next(ctx context.Context) (int, error) {
	for {
		s.mu.Lock()
		if n, ok := s.takeLocked(); ok {
			s.mu.Unlock()
			return n, nil
		}
		if s.term != nil {
			err := s.term
			s.term = nil
			s.ended = true
			s.mu.Unlock()
			return 0, err
		}
		if s.ended {
			s.mu.Unlock()
			return 0, errdefs.ErrListenerClosed
		}
		s.mu.Unlock()

		select {
		case <-s.wake:
		case <-s.done:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

// Add registers additional signal numbers on a live subscriber. Numbers
// already held are ignored; on error nothing new is retained.
func (s *Subscriber) Add(numbers []int) error {
	r := s.reg
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[s]; !ok {
		return errdefs.ErrListenerClosed
	}
	return r.registerLocked(s, numbers)
}

// Remove releases the tokens for the given numbers. Numbers not held are
// ignored. Occurrences already drained into the pending table are still
// delivered.
func (s *Subscriber) Remove(numbers []int) {
	r := s.reg
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[s]; !ok {
		return
	}
	for _, n := range numbers {
		if !s.has(n) {
			continue
		}
		s.drop(n)
		r.releaseLocked(n)
	}
}

// Close releases every held token synchronously and ends the stream. An
// occurrence in flight at close time is discarded, never delivered to a
// closed subscriber. Close is idempotent.
func (s *Subscriber) Close() {
	s.reg.unsubscribe(s)
}
