// kind_unix.go defines the POSIX signal kinds. Values are the host's signal
// numbers via [golang.org/x/sys/unix], so they match the running OS (SIGUSR1
// is 10 on Linux, 30 on macOS).

//go:build !windows

package sigflow

import "golang.org/x/sys/unix"

// The catchable POSIX signals. SIGKILL and SIGSTOP are deliberately absent:
// the OS does not allow hooking them, and registering either fails with
// [ErrInvalidSignal].
const (
	SIGHUP    = Kind(unix.SIGHUP)
	SIGINT    = Kind(unix.SIGINT)
	SIGQUIT   = Kind(unix.SIGQUIT)
	SIGILL    = Kind(unix.SIGILL)
	SIGTRAP   = Kind(unix.SIGTRAP)
	SIGABRT   = Kind(unix.SIGABRT)
	SIGBUS    = Kind(unix.SIGBUS)
	SIGFPE    = Kind(unix.SIGFPE)
	SIGUSR1   = Kind(unix.SIGUSR1)
	SIGSEGV   = Kind(unix.SIGSEGV)
	SIGUSR2   = Kind(unix.SIGUSR2)
	SIGPIPE   = Kind(unix.SIGPIPE)
	SIGALRM   = Kind(unix.SIGALRM)
	SIGTERM   = Kind(unix.SIGTERM)
	SIGCHLD   = Kind(unix.SIGCHLD)
	SIGCONT   = Kind(unix.SIGCONT)
	SIGTSTP   = Kind(unix.SIGTSTP)
	SIGTTIN   = Kind(unix.SIGTTIN)
	SIGTTOU   = Kind(unix.SIGTTOU)
	SIGURG    = Kind(unix.SIGURG)
	SIGXCPU   = Kind(unix.SIGXCPU)
	SIGXFSZ   = Kind(unix.SIGXFSZ)
	SIGVTALRM = Kind(unix.SIGVTALRM)
	SIGPROF   = Kind(unix.SIGPROF)
	SIGWINCH  = Kind(unix.SIGWINCH)
	SIGIO     = Kind(unix.SIGIO)
	SIGSYS    = Kind(unix.SIGSYS)
)

// kindNames maps each supported kind to its canonical name. Aliases
// (SIGIOT, SIGPOLL) are intentionally not listed; their numbers resolve to
// the canonical entry.
var kindNames = map[Kind]string{
	SIGHUP:    "SIGHUP",
	SIGINT:    "SIGINT",
	SIGQUIT:   "SIGQUIT",
	SIGILL:    "SIGILL",
	SIGTRAP:   "SIGTRAP",
	SIGABRT:   "SIGABRT",
	SIGBUS:    "SIGBUS",
	SIGFPE:    "SIGFPE",
	SIGUSR1:   "SIGUSR1",
	SIGSEGV:   "SIGSEGV",
	SIGUSR2:   "SIGUSR2",
	SIGPIPE:   "SIGPIPE",
	SIGALRM:   "SIGALRM",
	SIGTERM:   "SIGTERM",
	SIGCHLD:   "SIGCHLD",
	SIGCONT:   "SIGCONT",
	SIGTSTP:   "SIGTSTP",
	SIGTTIN:   "SIGTTIN",
	SIGTTOU:   "SIGTTOU",
	SIGURG:    "SIGURG",
	SIGXCPU:   "SIGXCPU",
	SIGXFSZ:   "SIGXFSZ",
	SIGVTALRM: "SIGVTALRM",
	SIGPROF:   "SIGPROF",
	SIGWINCH:  "SIGWINCH",
	SIGIO:     "SIGIO",
	SIGSYS:    "SIGSYS",
}
