// Package registry implements the Unix signal backend: a process-wide,
// reference-counted table of installed signal hooks, a lock-free counter
// table incremented from handler context, and a self-pipe wake channel
// drained by a single dispatch loop.
//
// Handler-context contract: the fire path touches only the counter table and
// the wake pipe's write descriptor, both lock-free. All registry bookkeeping
// (refcounts, hook install/remove, subscriber membership) happens under a
// mutex the fire path never takes.
//
// The wake pipe and dispatch loop are created when the first subscriber
// arrives and torn down when the last one closes. A read failure on the pipe
// is a process-level condition: every live subscriber observes the error once
// and then end-of-stream, and new subscribers joining the failed epoch do the
// same. A fresh epoch starts only after the subscriber count returns to zero.

//go:build !windows

package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"tools.zach/dev/sigflow/internal/errdefs"
)

// ///////////////////////////////////////////////
// Registry
// ///////////////////////////////////////////////

// registration is the process-wide hook state for one signal number.
type registration struct {
	refs   int
	handle HookHandle
}

// Registry owns the hook refcounts, the counter table and the wake pipe for
// one process (or one test). Most callers use [Default].
type Registry struct {
	hooks HookFacility

	mu       sync.Mutex
	regs     map[int]*registration
	subs     map[*Subscriber]struct{}
	failed   error         // terminal wake-channel error for the current epoch
	loopDone chan struct{} // closed when the dispatch loop exits

	counters counterTable
	pipe     atomic.Pointer[wakePipe]
}

// New creates an empty registry over the given hook facility.
func New(hooks HookFacility) *Registry {
	return &Registry{
		hooks: hooks,
		regs:  make(map[int]*registration),
		subs:  make(map[*Subscriber]struct{}),
	}
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide registry backed by os/signal.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = New(osHooks{})
	})
	return defaultReg
}

// Refs reports the current reference count for a signal number: the number
// of live subscribers holding a token for it. Zero means no hook is
// installed.
func (r *Registry) Refs(number int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reg := r.regs[number]; reg != nil {
		return reg.refs
	}
	return 0
}

// fire is the handler-context entry point: one atomic counter increment and
// one nonblocking poke. Nothing else is permitted here.
func (r *Registry) fire(number int) {
	r.counters.inc(number)
	if p := r.pipe.Load(); p != nil {
		p.poke()
	}
}

// Subscribe registers the given signal numbers and returns a Subscriber
// holding one token per number. Duplicates are collapsed. On any failure the
// registrations made so far are rolled back.
func (r *Registry) Subscribe(numbers []int) (*Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.startLocked(); err != nil {
		return nil, err
	}

	s := &Subscriber{
		reg:     r,
		numbers: make(map[int]struct{}),
		pending: make(map[int]uint64),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	if err := r.registerLocked(s, numbers); err != nil {
		return nil, err
	}
	if r.failed != nil {
		s.term = r.failed
	}
	r.subs[s] = struct{}{}
	return s, nil
}

// startLocked begins a fresh epoch if no subscriber exists: new wake pipe,
// new dispatch loop, failure state cleared, counter table emptied.
func (r *Registry) startLocked() error {
	if len(r.subs) > 0 {
		return nil
	}
	r.failed = nil
	// An occurrence that fired between the last close and now belongs to no
	// registration; it must not surface in the new epoch.
	r.counters.drain()
	p, err := newWakePipe()
	if err != nil {
		return fmt.Errorf("%w: %v", errdefs.ErrRegistrationFailed, err)
	}
	r.pipe.Store(p)
	r.loopDone = make(chan struct{})
	go r.drainLoop(p, r.loopDone)
	return nil
}

// catchable reports whether the number is hookable at all.
func catchable(n int) bool {
	if n <= 0 || n >= numSig {
		return false
	}
	return n != int(unix.SIGKILL) && n != int(unix.SIGSTOP)
}

// registerLocked adds numbers to s, retaining a registry reference for each.
// On error every retention made by this call is undone.
func (r *Registry) registerLocked(s *Subscriber, numbers []int) error {
	var added []int
	rollback := func() {
		for _, n := range added {
			r.releaseLocked(n)
			s.drop(n)
		}
	}
	for _, n := range numbers {
		if s.has(n) {
			continue
		}
		if !catchable(n) {
			rollback()
			return fmt.Errorf("signal %d: %w", n, errdefs.ErrInvalidSignal)
		}
		if err := r.retainLocked(n); err != nil {
			rollback()
			return err
		}
		s.put(n)
		added = append(added, n)
	}
	return nil
}

// retainLocked bumps the refcount for number, installing the OS hook on the
// zero-to-one transition.
func (r *Registry) retainLocked(n int) error {
	if reg := r.regs[n]; reg != nil {
		reg.refs++
		return nil
	}
	h, err := r.hooks.Install(n, r.fire)
	if err != nil {
		return fmt.Errorf("%w: install hook for signal %d: %v", errdefs.ErrRegistrationFailed, n, err)
	}
	r.regs[n] = &registration{refs: 1, handle: h}
	return nil
}

// releaseLocked drops one reference for number, removing the OS hook and the
// handle on the one-to-zero transition. Underflow is an invariant violation.
func (r *Registry) releaseLocked(n int) {
	reg := r.regs[n]
	if reg == nil || reg.refs <= 0 {
		panic(fmt.Sprintf("sigflow: refcount underflow for signal %d", n))
	}
	reg.refs--
	if reg.refs == 0 {
		r.hooks.Remove(reg.handle)
		delete(r.regs, n)
	}
}

// ///////////////////////////////////////////////
// Dispatch
// ///////////////////////////////////////////////

// drainLoop blocks on the wake pipe and dispatches counter drains until the
// pipe is closed (teardown) or fails (terminal error).
func (r *Registry) drainLoop(p *wakePipe, done chan struct{}) {
	defer close(done)
	for {
		if err := p.wait(); err != nil {
			if errors.Is(err, os.ErrClosed) {
				return
			}
			r.fail(p, err)
			return
		}
		r.dispatch()
	}
}

// dispatch drains the counter table and re-broadcasts each occurrence to
// every subscriber registered for that number. Occurrences of a number with
// no remaining subscriber are discarded.
func (r *Registry) dispatch() {
	batch := r.counters.drain()
	if len(batch) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range batch {
		for s := range r.subs {
			s.offer(f.number, f.count)
		}
	}
}

// fail marks the current epoch as terminally broken and notifies every live
// subscriber. Hooks stay installed until their holders close.
func (r *Registry) fail(p *wakePipe, err error) {
	slog.Error("signal wake channel failed", "error", err)
	r.pipe.CompareAndSwap(p, nil)
	p.close()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = fmt.Errorf("wake channel: %w", err)
	for s := range r.subs {
		s.terminate(r.failed)
	}
}

// unsubscribe releases every token held by s and removes it from the
// registry. The last subscriber out tears the epoch down: the pipe is closed
// and the dispatch loop is joined before returning, so no notification can
// arrive for a fully-disposed registration.
func (r *Registry) unsubscribe(s *Subscriber) {
	r.mu.Lock()
	if _, ok := r.subs[s]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.subs, s)

	s.mu.Lock()
	for n := range s.numbers {
		r.releaseLocked(n)
	}
	clear(s.numbers)
	clear(s.pending)
	s.ended = true
	s.mu.Unlock()

	var p *wakePipe
	var loopDone chan struct{}
	if len(r.subs) == 0 {
		p = r.pipe.Swap(nil)
		loopDone = r.loopDone
		r.loopDone = nil
	}
	r.mu.Unlock()

	close(s.done)
	if p != nil {
		p.close()
	}
	if loopDone != nil {
		<-loopDone
	}
}
