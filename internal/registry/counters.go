//go:build !windows

package registry

import "sync/atomic"

// numSig bounds the counter table. Signal numbers on the supported platforms
// fit in 1..64, including the Linux realtime range.
const numSig = 65

// counterTable holds one pending-occurrence counter per signal number.
// Counters are incremented only from handler context and read-and-reset only
// by the dispatch loop, with atomics on both sides and no locks. A counter
// that wraps uint64 between drains would undercount; that is a documented
// limitation, not a handled case.
type counterTable struct {
	counts [numSig]atomic.Uint64
}

// inc records one occurrence of signal n. Safe from handler context.
func (t *counterTable) inc(n int) {
	if n > 0 && n < numSig {
		t.counts[n].Add(1)
	}
}

// fired is one non-zero entry drained from the table.
type fired struct {
	number int
	count  uint64
}

// drain atomically reads and resets every counter, returning the non-zero
// entries in ascending signal-number order.
func (t *counterTable) drain() []fired {
	var out []fired
	for n := 1; n < numSig; n++ {
		if c := t.counts[n].Swap(0); c != 0 {
			out = append(out, fired{number: n, count: c})
		}
	}
	return out
}
