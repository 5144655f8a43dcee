// kind_windows.go defines the console control event kinds. Windows has no
// POSIX signal numbers; the five console events are the deliverable set.

//go:build windows

package sigflow

import "tools.zach/dev/sigflow/internal/console"

// The Windows console control events. CtrlC and CtrlBreak can be suppressed
// by handling them; Close, Logoff and Shutdown terminate the process
// regardless of handling.
const (
	CtrlC Kind = iota + 1
	CtrlBreak
	ConsoleClose
	Logoff
	Shutdown
)

// kindNames maps each supported kind to its canonical name.
var kindNames = map[Kind]string{
	CtrlC:        "CTRL_C",
	CtrlBreak:    "CTRL_BREAK",
	ConsoleClose: "CLOSE",
	Logoff:       "LOGOFF",
	Shutdown:     "SHUTDOWN",
}

// consoleEvents maps kinds to the router's event type.
var consoleEvents = map[Kind]console.Event{
	CtrlC:        console.CtrlC,
	CtrlBreak:    console.Break,
	ConsoleClose: console.Close,
	Logoff:       console.Logoff,
	Shutdown:     console.Shutdown,
}

// consoleKinds is the reverse of consoleEvents.
var consoleKinds = func() map[console.Event]Kind {
	m := make(map[console.Event]Kind, len(consoleEvents))
	for k, e := range consoleEvents {
		m[e] = k
	}
	return m
}()
