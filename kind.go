package sigflow

import (
	"fmt"
	"slices"
	"strings"
)

// Kind identifies a deliverable OS event: a POSIX signal number on Unix-like
// systems, or a console control event on Windows. The set of valid values is
// platform-defined; see kind_unix.go and kind_windows.go.
type Kind int

// String returns the conventional name for the kind ("SIGUSR1", "CTRL_C"),
// or "KIND(n)" for values outside the supported set.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KIND(%d)", int(k))
}

// Supported reports whether k can be registered on this platform. SIGKILL and
// SIGSTOP cannot be caught and are not supported.
func (k Kind) Supported() bool {
	_, ok := kindNames[k]
	return ok
}

// kindsByName is the reverse of kindNames, keyed by upper-case name.
var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

// ParseKind resolves a kind from its conventional name, case-insensitively.
// Unix signal names are accepted with or without the "SIG" prefix.
func ParseKind(name string) (Kind, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if k, ok := kindsByName[upper]; ok {
		return k, nil
	}
	if k, ok := kindsByName["SIG"+upper]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSignal, name)
}

// Kinds returns every kind supported on this platform in ascending order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindNames))
	for k := range kindNames {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
