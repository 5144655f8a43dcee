// Package errdefs defines the error taxonomy shared by the sigflow backends.
//
// The sentinels live here so the root package and both platform backends can
// wrap them without import cycles; errors.Is comparisons work across all of
// them.
package errdefs

import "errors"

var (
	// ErrInvalidSignal reports a registration attempt for a signal number or
	// console event outside the supported set, including the uncatchable
	// SIGKILL and SIGSTOP.
	ErrInvalidSignal = errors.New("sigflow: invalid or unsupported signal")

	// ErrRegistrationFailed reports an OS-level failure installing or
	// removing a hook. Any partial registration is rolled back before this
	// is returned.
	ErrRegistrationFailed = errors.New("sigflow: signal registration failed")

	// ErrListenerClosed reports an operation on a listener whose tokens have
	// already been released, or whose event stream has ended.
	ErrListenerClosed = errors.New("sigflow: listener closed")
)
