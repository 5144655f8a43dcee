// Package sigflow delivers operating-system signals to asynchronous consumers
// as a non-blocking stream of typed events.
//
// On Unix-like systems, deliveries are counted per signal number from handler
// context and a self-pipe wakes a dispatch loop that re-broadcasts each
// occurrence to every registered [Listener]. On Windows, a single process-wide
// console control handler fans events out to listeners through a bounded
// wake/acknowledgment protocol. Both backends expose identical Listener
// semantics; the choice between them is made at build time.
//
// Basic usage:
//
//	l, err := sigflow.New(sigflow.SIGINT, sigflow.SIGTERM)
//	if err != nil {
//		return err
//	}
//	defer l.Close()
//
//	for {
//		kind, err := l.Next(ctx)
//		if err != nil {
//			return err
//		}
//		slog.Info("signal received", "kind", kind)
//	}
//
// Delivery guarantees: no occurrence is lost to coalescing (N rapid
// deliveries of one signal before a drain yield exactly N events), every
// listener registered for a kind observes every occurrence independently, and
// occurrences drain in ascending signal-number order. There is no ordering
// guarantee between events of different kinds that fired before the same
// drain.
package sigflow

import (
	"context"
	"sync"
	"sync/atomic"

	"tools.zach/dev/sigflow/internal/errdefs"
)

// Registration and delivery errors. These alias the shared internal
// definitions so errors.Is works across package boundaries.
var (
	ErrInvalidSignal      = errdefs.ErrInvalidSignal
	ErrRegistrationFailed = errdefs.ErrRegistrationFailed
	ErrListenerClosed     = errdefs.ErrListenerClosed
)

// ///////////////////////////////////////////////
// Listener States
// ///////////////////////////////////////////////

// State describes where a [Listener] is in its lifecycle. Exposed for
// diagnostics; transitions are driven entirely by Next and Close.
type State int32

const (
	// StateRegistered means tokens are held but Next has not been called.
	StateRegistered State = iota
	// StatePolling means the listener is suspended awaiting a wake-up.
	StatePolling
	// StateDelivering means the listener is draining available events.
	StateDelivering
	// StateClosed means every token has been released.
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateRegistered:
		return "registered"
	case StatePolling:
		return "polling"
	case StateDelivering:
		return "delivering"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ///////////////////////////////////////////////
// Listener
// ///////////////////////////////////////////////

// backend is the per-platform capability behind a Listener. backend_unix.go
// and backend_windows.go each provide newBackend.
type backend interface {
	add(kinds []Kind) error
	remove(kinds []Kind)
	next(ctx context.Context) (Kind, error)
	close()
}

// Listener is a per-consumer handle on a set of signal kinds. It holds one
// registration token per requested kind and produces events one at a time
// through [Listener.Next]. A Listener is safe for use by a single consumer;
// create one Listener per consumer rather than sharing.
type Listener struct {
	b backend
	// state tracks the lifecycle for diagnostics. Guarded by atomics, not
	// the backend's locks, so it is advisory under concurrent Close.
	state     atomic.Int32
	closeOnce sync.Once
}

// New registers hooks for every requested kind and returns a Listener in the
// registered state. If any kind is unsupported or an OS hook cannot be
// installed, every registration made so far is rolled back and New fails with
// [ErrInvalidSignal] or [ErrRegistrationFailed].
//
// The caller must call [Listener.Close] when done; tokens are released only
// on Close.
func New(kinds ...Kind) (*Listener, error) {
	b, err := newBackend(kinds)
	if err != nil {
		return nil, err
	}
	l := &Listener{b: b}
	l.state.Store(int32(StateRegistered))
	return l, nil
}

// Next blocks until an event for one of the listener's kinds is available and
// returns it. It returns ctx.Err() if the context ends first, and
// [ErrListenerClosed] once the listener is closed. A process-wide notification
// channel failure is surfaced exactly once; afterwards the stream is
// permanently closed.
func (l *Listener) Next(ctx context.Context) (Kind, error) {
	if State(l.state.Load()) == StateClosed {
		return 0, ErrListenerClosed
	}
	l.state.Store(int32(StatePolling))
	k, err := l.b.next(ctx)
	if err != nil {
		if ctx.Err() == nil {
			// Terminal: closed or channel failure, never recoverable.
			l.state.Store(int32(StateClosed))
		}
		return 0, err
	}
	l.state.Store(int32(StateDelivering))
	return k, nil
}

// Add registers additional kinds on a live listener. Kinds already held are
// ignored. On error, no new registration is retained.
func (l *Listener) Add(kinds ...Kind) error {
	if State(l.state.Load()) == StateClosed {
		return ErrListenerClosed
	}
	return l.b.add(kinds)
}

// Remove releases the tokens for the given kinds. Kinds not held are ignored.
// Occurrences already drained for a removed kind are still delivered.
func (l *Listener) Remove(kinds ...Kind) {
	if State(l.state.Load()) == StateClosed {
		return
	}
	l.b.remove(kinds)
}

// Close releases every held token synchronously. If this listener was the
// last holder for a kind, the OS hook is removed before Close returns, so no
// new notification can arrive for a fully-disposed registration. Close is
// idempotent.
func (l *Listener) Close() {
	l.closeOnce.Do(func() {
		l.state.Store(int32(StateClosed))
		l.b.close()
	})
}

// State reports the listener's current lifecycle state.
func (l *Listener) State() State {
	return State(l.state.Load())
}
