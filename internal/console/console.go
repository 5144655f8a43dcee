// Package console implements the Windows console control event backend: one
// process-wide handler callback fanned out to subscribers through a
// wake/acknowledgment protocol.
//
// The handler runs on an OS-spawned thread, never overlapping with a prior
// invocation (the OS serializes calls). It stores the event, wakes every
// registered subscriber, then waits up to the ack timeout for each to
// acknowledge, so the OS is never stalled indefinitely before applying
// default termination for Close/Logoff/Shutdown.
//
// The protocol itself is platform-neutral and unit-tested on every platform;
// hook_windows.go binds it to SetConsoleCtrlHandler.
package console

import "fmt"

// Event is a console control event delivered by the OS.
type Event int

const (
	CtrlC Event = iota
	Break
	Close
	Logoff
	Shutdown
	numEvents
)

var eventNames = [numEvents]string{"CTRL_C", "CTRL_BREAK", "CLOSE", "LOGOFF", "SHUTDOWN"}

// String returns the event name.
func (e Event) String() string {
	if e >= 0 && e < numEvents {
		return eventNames[e]
	}
	return fmt.Sprintf("EVENT(%d)", int(e))
}

// Suppressible reports whether handling the event stops default processing.
// Close, Logoff and Shutdown terminate the process regardless of the
// handler's return value; for those the return only affects bookkeeping.
func (e Event) Suppressible() bool {
	return e == CtrlC || e == Break
}

// Mask selects a subset of console events.
type Mask uint8

// MaskOf builds a mask covering the given events.
func MaskOf(events ...Event) Mask {
	var m Mask
	for _, e := range events {
		m = m.With(e)
	}
	return m
}

// With returns m with e included.
func (m Mask) With(e Event) Mask {
	return m | 1<<uint(e)
}

// Without returns m with e excluded.
func (m Mask) Without(e Event) Mask {
	return m &^ (1 << uint(e))
}

// Has reports whether e is in the mask.
func (m Mask) Has(e Event) bool {
	return m&(1<<uint(e)) != 0
}
