// hooks.go is the boundary to the OS signal-hook chaining facility. The
// production implementation relays through os/signal, which chains with the
// Go runtime's own handlers; tests substitute a fake to drive deliveries
// deterministically.

//go:build !windows

package registry

import (
	"os"
	"os/signal"
	"syscall"
)

// HookHandle is an opaque token for one installed hook.
type HookHandle any

// HookFacility installs and removes process-level hooks for individual
// signal numbers. Implementations must invoke fire in handler context — a
// context permitted to touch only the counter table and the wake pipe.
type HookFacility interface {
	// Install arranges for fire(number) to run once per delivery of the
	// signal. The previous disposition is restored by Remove.
	Install(number int, fire func(int)) (HookHandle, error)
	// Remove uninstalls the hook identified by h.
	Remove(h HookHandle)
}

// osHooks relays signals through os/signal, one buffered channel and relay
// goroutine per installed number. The relay goroutine is this backend's
// handler context: it calls fire and nothing else.
type osHooks struct{}

type osHook struct {
	ch   chan os.Signal
	done chan struct{}
}

// hookBuffer sizes the per-number relay channel. Deliveries beyond the
// buffer while the relay is descheduled coalesce at the os/signal layer; the
// kernel coalesces pending standard signals the same way.
const hookBuffer = 64

func (osHooks) Install(number int, fire func(int)) (HookHandle, error) {
	h := &osHook{
		ch:   make(chan os.Signal, hookBuffer),
		done: make(chan struct{}),
	}
	signal.Notify(h.ch, syscall.Signal(number))
	go func() {
		for {
			select {
			case <-h.ch:
				fire(number)
			case <-h.done:
				return
			}
		}
	}()
	return h, nil
}

func (osHooks) Remove(handle HookHandle) {
	h := handle.(*osHook)
	signal.Stop(h.ch)
	close(h.done)
}
