package console

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"tools.zach/dev/sigflow/internal/errdefs"
)

// DefaultAckTimeout bounds how long [Router.Deliver] waits for subscribers
// to acknowledge an event. It is a tuning parameter, not a correctness
// constant: a conservative half second keeps the OS from perceiving the
// handler as hung while giving consumers ample time to poll.
const DefaultAckTimeout = 500 * time.Millisecond

// HookFacility installs the single process-wide console handler. The
// production implementation wraps SetConsoleCtrlHandler; tests inject a fake.
type HookFacility interface {
	// Install registers handler to be invoked, on an OS-owned thread, for
	// each console control event. handler returns whether the event was
	// taken.
	Install(handler func(Event) bool) error
	// Remove unregisters the handler installed by Install.
	Remove()
}

// Options configure a Router.
type Options struct {
	// AckTimeout overrides DefaultAckTimeout when positive.
	AckTimeout time.Duration
}

// ///////////////////////////////////////////////
// Router
// ///////////////////////////////////////////////

// Router fans console events out to subscribers. The OS hook is installed
// when the first subscriber arrives and removed when the last one closes;
// len(subs) is the reference count over the one shared hook.
type Router struct {
	hooks HookFacility
	// ackTimeout holds the grace period in nanoseconds. Atomic so it can be
	// retuned while the handler thread reads it.
	ackTimeout atomic.Int64

	mu        sync.Mutex
	subs      map[*Subscriber]struct{}
	installed bool

	timeouts atomic.Uint64
}

// NewRouter creates a router over the given hook facility.
func NewRouter(hooks HookFacility, opts Options) *Router {
	t := opts.AckTimeout
	if t <= 0 {
		t = DefaultAckTimeout
	}
	r := &Router{
		hooks: hooks,
		subs:  make(map[*Subscriber]struct{}),
	}
	r.ackTimeout.Store(int64(t))
	return r
}

// SetAckTimeout retunes the acknowledgment grace period. Non-positive
// values are ignored.
func (r *Router) SetAckTimeout(d time.Duration) {
	if d > 0 {
		r.ackTimeout.Store(int64(d))
	}
}

// Subscribe registers a subscriber for the events in mask, installing the OS
// hook if this is the first subscriber.
func (r *Router) Subscribe(mask Mask) (*Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.installed {
		if err := r.hooks.Install(r.Deliver); err != nil {
			return nil, fmt.Errorf("%w: set console handler: %v", errdefs.ErrRegistrationFailed, err)
		}
		r.installed = true
	}
	s := &Subscriber{
		r:    r,
		mask: mask,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	r.subs[s] = struct{}{}
	return s, nil
}

// Installed reports whether the OS hook is currently registered. Exposed for
// teardown verification.
func (r *Router) Installed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.installed
}

// AckTimeouts reports how many deliveries have timed out waiting for an
// acknowledgment. Timeouts are internal: the event was already delivered to
// whichever subscribers acknowledged in time.
func (r *Router) AckTimeouts() uint64 {
	return r.timeouts.Load()
}

// Deliver routes one console event to every subscriber whose mask includes
// it, then waits up to the ack timeout for each to acknowledge consuming
// it. The router lock is released before waiting so acknowledging
// subscribers can make progress. It returns true when at least one
// subscriber took the event.
//
// Deliver runs on the OS handler thread: an ordinary thread, not signal
// context, so taking the lock is safe — holding it across the wait is not.
func (r *Router) Deliver(e Event) bool {
	r.mu.Lock()
	var acks []<-chan struct{}
	for s := range r.subs {
		if ack, ok := s.push(e); ok {
			acks = append(acks, ack)
		}
	}
	r.mu.Unlock()

	if len(acks) == 0 {
		return false
	}

	timer := time.NewTimer(time.Duration(r.ackTimeout.Load()))
	defer timer.Stop()
	for _, ack := range acks {
		select {
		case <-ack:
		case <-timer.C:
			r.timeouts.Add(1)
			slog.Warn("console event acknowledgment timed out", "event", e.String())
			return true
		}
	}
	return true
}

// unsubscribe removes s, uninstalling the OS hook when the last subscriber
// leaves. Pending deliveries are acknowledged on the subscriber's behalf so
// a handler thread mid-wait is released.
func (r *Router) unsubscribe(s *Subscriber) {
	r.mu.Lock()
	if _, ok := r.subs[s]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.subs, s)
	removeHook := len(r.subs) == 0 && r.installed
	if removeHook {
		r.installed = false
	}
	r.mu.Unlock()

	s.mu.Lock()
	s.closed = true
	queue := s.queue
	s.queue = nil
	s.mu.Unlock()

	close(s.done)
	for _, d := range queue {
		close(d.ack)
	}
	if removeHook {
		r.hooks.Remove()
	}
}

// ///////////////////////////////////////////////
// Subscriber
// ///////////////////////////////////////////////

// delivery is one queued event awaiting consumption and acknowledgment.
type delivery struct {
	event Event
	ack   chan struct{}
}

// Subscriber is one consumer's waker entry plus its queue of undelivered
// events. It is the Windows backing for the public Listener.
type Subscriber struct {
	r *Router

	mu     sync.Mutex
	mask   Mask
	queue  []delivery
	closed bool

	wake chan struct{}
	done chan struct{}
}

// push queues e if the subscriber's mask includes it, returning the ack
// channel the handler thread should wait on. Called by Deliver with the
// router lock held.
func (s *Subscriber) push(e Event) (<-chan struct{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.mask.Has(e) {
		return nil, false
	}
	ack := make(chan struct{})
	s.queue = append(s.queue, delivery{event: e, ack: ack})
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return ack, true
}

// Next blocks until an event is available, acknowledges it, and returns it.
func (s *Subscriber) Next(ctx context.Context) (Event, error) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			d := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()
			close(d.ack)
			return d.event, nil
		}
		if s.closed {
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

// Add extends the subscriber's event mask.
func (s *Subscriber) Add(m Mask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errdefs.ErrListenerClosed
	}
	s.mask |= m
	return nil
}

// Remove shrinks the subscriber's event mask. Events already queued are
// still delivered.
func (s *Subscriber) Remove(m Mask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.mask &^= m
}

// Close drops the subscriber's waker entry, acknowledging any queued
// deliveries so a waiting handler thread is not held to its timeout. Close
// is idempotent.
func (s *Subscriber) Close() {
	s.r.unsubscribe(s)
}
