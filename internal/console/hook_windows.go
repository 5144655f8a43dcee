// hook_windows.go binds the router to the Win32 console API via
// [golang.org/x/sys/windows]. SetConsoleCtrlHandler chains our routine in
// front of any previously installed handlers; returning 1 stops the chain
// for suppressible events.

//go:build windows

package console

import (
	"log/slog"
	"sync"

	"golang.org/x/sys/windows"
)

// consoleHooks installs the process-wide handler with SetConsoleCtrlHandler.
type consoleHooks struct{}

var (
	handlerMu sync.Mutex
	handlerFn func(Event) bool

	routineOnce sync.Once
	routine     uintptr
)

// ctrlHandler is the PHANDLER_ROUTINE. The OS invokes it on its own worker
// thread and serializes invocations. The handler function is fetched under
// the lock but invoked outside it, since Deliver blocks on acknowledgments.
func ctrlHandler(ctrlType uint32) uintptr {
	e, ok := eventFromCode(ctrlType)
	if !ok {
		return 0
	}
	handlerMu.Lock()
	fn := handlerFn
	handlerMu.Unlock()
	if fn == nil {
		return 0
	}
	if fn(e) {
		return 1
	}
	return 0
}

// eventFromCode maps a raw CTRL_*_EVENT code to its Event.
func eventFromCode(code uint32) (Event, bool) {
	switch code {
	case windows.CTRL_C_EVENT:
		return CtrlC, true
	case windows.CTRL_BREAK_EVENT:
		return Break, true
	case windows.CTRL_CLOSE_EVENT:
		return Close, true
	case windows.CTRL_LOGOFF_EVENT:
		return Logoff, true
	case windows.CTRL_SHUTDOWN_EVENT:
		return Shutdown, true
	}
	return 0, false
}

func (consoleHooks) Install(handler func(Event) bool) error {
	routineOnce.Do(func() {
		routine = windows.NewCallback(ctrlHandler)
	})
	handlerMu.Lock()
	handlerFn = handler
	handlerMu.Unlock()
	if err := windows.SetConsoleCtrlHandler(routine, true); err != nil {
		handlerMu.Lock()
		handlerFn = nil
		handlerMu.Unlock()
		return err
	}
	return nil
}

func (consoleHooks) Remove() {
	if err := windows.SetConsoleCtrlHandler(routine, false); err != nil {
		slog.Warn("remove console handler failed", "error", err)
	}
	handlerMu.Lock()
	handlerFn = nil
	handlerMu.Unlock()
}

var (
	defaultOnce   sync.Once
	defaultRouter *Router
)

// Default returns the process-wide router bound to the OS console handler.
func Default() *Router {
	defaultOnce.Do(func() {
		defaultRouter = NewRouter(consoleHooks{}, Options{})
	})
	return defaultRouter
}
