// Tests for the console event router: wake and acknowledgment protocol,
// bounded handler-thread waits, mask filtering, and hook install/remove at
// the subscriber-count edges. The protocol is platform-neutral, so these run
// everywhere; only the SetConsoleCtrlHandler glue is Windows-only.

package console

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"tools.zach/dev/sigflow/internal/errdefs"
)

// fakeConsoleHooks records installs and removes in place of
// SetConsoleCtrlHandler.
type fakeConsoleHooks struct {
	mu       sync.Mutex
	handler  func(Event) bool
	installs int
	removes  int
	fail     bool
}

func (f *fakeConsoleHooks) Install(handler func(Event) bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return fmt.Errorf("console handler refused")
	}
	f.handler = handler
	f.installs++
	return nil
}

func (f *fakeConsoleHooks) Remove() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = nil
	f.removes++
}

func nextEvent(t *testing.T, s *Subscriber) Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	e, err := s.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	return e
}

func TestDeliverWakesAllMatchingSubscribers(t *testing.T) {
	r := NewRouter(&fakeConsoleHooks{}, Options{})

	a, err := r.Subscribe(MaskOf(CtrlC))
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer a.Close()
	b, err := r.Subscribe(MaskOf(CtrlC, Break))
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer b.Close()

	type result struct {
		e   Event
		err error
	}
	results := make(chan result, 2)
	for _, s := range []*Subscriber{a, b} {
		s := s
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			e, err := s.Next(ctx)
			results <- result{e, err}
		}()
	}

	if !r.Deliver(CtrlC) {
		t.Fatal("Deliver = false, want true")
	}
	for i := 0; i < 2; i++ {
		res := <-results
		if res.err != nil {
			t.Fatalf("Next: %v", res.err)
		}
		if res.e != CtrlC {
			t.Errorf("Next = %v, want CTRL_C", res.e)
		}
	}
	if got := r.AckTimeouts(); got != 0 {
		t.Errorf("AckTimeouts = %d, want 0", got)
	}
}

func TestDeliverReturnsFalseWhenUnmatched(t *testing.T) {
	r := NewRouter(&fakeConsoleHooks{}, Options{})

	s, err := r.Subscribe(MaskOf(CtrlC))
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer s.Close()

	if r.Deliver(Shutdown) {
		t.Error("Deliver(Shutdown) = true with no matching subscriber, want false")
	}
}

func TestDeliverNoSubscribers(t *testing.T) {
	r := NewRouter(&fakeConsoleHooks{}, Options{})
	if r.Deliver(CtrlC) {
		t.Error("Deliver = true with no subscribers, want false")
	}
}

func TestDeliverBoundedWhenSubscriberNeverPolls(t *testing.T) {
	r := NewRouter(&fakeConsoleHooks{}, Options{AckTimeout: 50 * time.Millisecond})

	s, err := r.Subscribe(MaskOf(CtrlC))
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer s.Close()

	start := time.Now()
	if !r.Deliver(CtrlC) {
		t.Error("Deliver = false, want true: the event was queued")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Deliver blocked %v, want bounded by the ack timeout", elapsed)
	}
	if got := r.AckTimeouts(); got != 1 {
		t.Errorf("AckTimeouts = %d, want 1", got)
	}

	// The event is still in the queue and consumable after the timeout.
	if e := nextEvent(t, s); e != CtrlC {
		t.Errorf("Next = %v, want CTRL_C", e)
	}
}

func TestCloseReleasesWaitingHandlerThread(t *testing.T) {
	r := NewRouter(&fakeConsoleHooks{}, Options{AckTimeout: 5 * time.Second})

	s, err := r.Subscribe(MaskOf(CtrlC))
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	delivered := make(chan bool, 1)
	go func() { delivered <- r.Deliver(CtrlC) }()

	// Let Deliver queue the event and start waiting, then close underneath
	// it. The queued ack must be released on the subscriber's behalf.
	time.Sleep(50 * time.Millisecond)
	s.Close()

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("Deliver still blocked after subscriber close")
	}
	if got := r.AckTimeouts(); got != 0 {
		t.Errorf("AckTimeouts = %d, want 0: close acknowledged, not timed out", got)
	}
}

func TestHookInstalledAtFirstSubscriberRemovedAtLast(t *testing.T) {
	hooks := &fakeConsoleHooks{}
	r := NewRouter(hooks, Options{})

	if r.Installed() {
		t.Fatal("hook installed before any subscriber")
	}
	a, err := r.Subscribe(MaskOf(CtrlC))
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	b, err := r.Subscribe(MaskOf(Break))
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if hooks.installs != 1 {
		t.Errorf("installs = %d, want 1", hooks.installs)
	}

	a.Close()
	if !r.Installed() {
		t.Fatal("hook removed while a subscriber remains")
	}
	b.Close()
	if r.Installed() {
		t.Error("hook still installed after last close")
	}
	if hooks.removes != 1 {
		t.Errorf("removes = %d, want 1", hooks.removes)
	}
}

func TestSubscribeInstallFailure(t *testing.T) {
	r := NewRouter(&fakeConsoleHooks{fail: true}, Options{})
	if _, err := r.Subscribe(MaskOf(CtrlC)); !errors.Is(err, errdefs.ErrRegistrationFailed) {
		t.Errorf("Subscribe = %v, want ErrRegistrationFailed", err)
	}
}

func TestSubscriberMaskAddRemove(t *testing.T) {
	r := NewRouter(&fakeConsoleHooks{}, Options{AckTimeout: 50 * time.Millisecond})

	s, err := r.Subscribe(MaskOf(CtrlC))
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer s.Close()

	if r.Deliver(Break) {
		t.Fatal("Break delivered before Add")
	}
	if err := s.Add(MaskOf(Break)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	go r.Deliver(Break)
	if e := nextEvent(t, s); e != Break {
		t.Errorf("Next = %v, want CTRL_BREAK", e)
	}

	s.Remove(MaskOf(Break))
	if r.Deliver(Break) {
		t.Error("Break delivered after Remove")
	}
}

func TestNextAfterClose(t *testing.T) {
	r := NewRouter(&fakeConsoleHooks{}, Options{})

	s, err := r.Subscribe(MaskOf(CtrlC))
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	s.Close()
	s.Close() // idempotent

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := s.Next(ctx); !errors.Is(err, errdefs.ErrListenerClosed) {
		t.Errorf("Next after close = %v, want ErrListenerClosed", err)
	}
	if err := s.Add(MaskOf(Break)); !errors.Is(err, errdefs.ErrListenerClosed) {
		t.Errorf("Add after close = %v, want ErrListenerClosed", err)
	}
}

func TestQueuedEventsDeliveredInOrder(t *testing.T) {
	r := NewRouter(&fakeConsoleHooks{}, Options{AckTimeout: 50 * time.Millisecond})

	s, err := r.Subscribe(MaskOf(CtrlC, Break, Shutdown))
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer s.Close()

	for _, e := range []Event{Shutdown, CtrlC, Break} {
		r.Deliver(e) // times out; the queue keeps the event
	}
	for _, want := range []Event{Shutdown, CtrlC, Break} {
		if got := nextEvent(t, s); got != want {
			t.Errorf("Next = %v, want %v", got, want)
		}
	}
}
